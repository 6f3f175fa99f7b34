package myRegistration

import (
	"context"
	"log/slog"
	"net/http"

	"eventRegistrar/internal/lib/api/response"
	"eventRegistrar/internal/lib/logger/sl"
	"eventRegistrar/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// Response carries a null registration when the caller never registered.
type Response struct {
	response.Response
	Registration *models.Registration `json:"registration"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=RegistrationGetter
type RegistrationGetter interface {
	MyRegistration(ctx context.Context, eventID string) (*models.Registration, error)
}

func New(log *slog.Logger, getter RegistrationGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.registration.myRegistration.New"

		log := log.With(slog.String("op", op))

		eventID := chi.URLParam(r, "id")
		if eventID == "" {
			log.Error("event id is required")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("event id is required"))
			return
		}

		reg, err := getter.MyRegistration(r.Context(), eventID)
		if err != nil {
			log.Error("failed to get registration", slog.String("event_id", eventID), sl.Err(err))
			status, resp := response.FromError(err, "failed to get registration")
			render.Status(r, status)
			render.JSON(w, r, resp)
			return
		}

		render.JSON(w, r, Response{
			Response:     response.OK(),
			Registration: reg,
		})
	}
}
