package getEvent

import (
	"context"
	"log/slog"
	"net/http"

	"eventRegistrar/internal/lib/api/response"
	"eventRegistrar/internal/lib/logger/sl"
	"eventRegistrar/internal/registrar"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type Response struct {
	response.Response
	Event *registrar.EventDetails `json:"event"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=EventGetter
type EventGetter interface {
	GetEvent(ctx context.Context, id string) (*registrar.EventDetails, error)
}

func New(log *slog.Logger, getter EventGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.event.getEvent.New"

		log := log.With(slog.String("op", op))

		id := chi.URLParam(r, "id")
		if id == "" {
			log.Error("event id is required")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("event id is required"))
			return
		}

		log = log.With(slog.String("event_id", id))

		event, err := getter.GetEvent(r.Context(), id)
		if err != nil {
			log.Error("failed to get event", sl.Err(err))
			status, resp := response.FromError(err, "failed to get event")
			render.Status(r, status)
			render.JSON(w, r, resp)
			return
		}

		log.Info("event retrieved", slog.Int("attendees", event.AttendeeCount))

		render.JSON(w, r, Response{
			Response: response.OK(),
			Event:    event,
		})
	}
}
