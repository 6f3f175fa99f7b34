package listEvents

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
	Events []models.Event `json:"events"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=EventLister
type EventLister interface {
	ListEvents(ctx context.Context) ([]models.Event, error)
}

func New(log *slog.Logger, lister EventLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.event.listEvents.New"

		log := log.With(slog.String("op", op))

		events, err := lister.ListEvents(r.Context())
		if err != nil {
			log.Error("failed to list events", sl.Err(err))
			status, resp := response.FromError(err, "failed to list events")
			render.Status(r, status)
			render.JSON(w, r, resp)
			return
		}

		log.Info("events listed", slog.Int("count", len(events)))

		responseOK(w, r, events)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, events []models.Event) {
	if events == nil {
		events = []models.Event{}
	}

	render.JSON(w, r, Response{
		Response: response.OK(),
		Events:   events,
	})
}
