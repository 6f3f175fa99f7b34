package deleteEvent

import (
	"context"
	"log/slog"
	"net/http"

	"eventRegistrar/internal/lib/api/response"
	"eventRegistrar/internal/lib/logger/sl"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=EventDeleter
type EventDeleter interface {
	DeleteEvent(ctx context.Context, id string) error
}

func New(log *slog.Logger, deleter EventDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.event.deleteEvent.New"

		log := log.With(slog.String("op", op))

		id := chi.URLParam(r, "id")
		if id == "" {
			log.Error("event id is required")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("event id is required"))
			return
		}

		log = log.With(slog.String("event_id", id))

		if err := deleter.DeleteEvent(r.Context(), id); err != nil {
			log.Error("failed to delete event", sl.Err(err))
			status, resp := response.FromError(err, "failed to delete event")
			render.Status(r, status)
			render.JSON(w, r, resp)
			return
		}

		log.Info("event deleted")

		render.JSON(w, r, response.OK())
	}
}
