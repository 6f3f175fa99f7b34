package listPending

import (
	"context"
	"log/slog"
	"net/http"

	"eventRegistrar/internal/lib/api/response"
	"eventRegistrar/internal/lib/logger/sl"
	"eventRegistrar/internal/models"

	"github.com/go-chi/render"
)

type Response struct {
	response.Response
	Registrations []models.Registration `json:"registrations"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=PendingLister
type PendingLister interface {
	ListPendingRegistrations(ctx context.Context) ([]models.Registration, error)
}

func New(log *slog.Logger, lister PendingLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.registration.listPending.New"

		log := log.With(slog.String("op", op))

		regs, err := lister.ListPendingRegistrations(r.Context())
		if err != nil {
			log.Error("failed to list pending registrations", sl.Err(err))
			status, resp := response.FromError(err, "failed to list pending registrations")
			render.Status(r, status)
			render.JSON(w, r, resp)
			return
		}

		if regs == nil {
			regs = []models.Registration{}
		}

		log.Info("pending registrations listed", slog.Int("count", len(regs)))

		render.JSON(w, r, Response{
			Response:      response.OK(),
			Registrations: regs,
		})
	}
}
