// Package attendeeCount streams the number of approved registrations of one
// event.
package attendeeCount

import (
	"context"
	"log/slog"
	"net/http"

	"eventRegistrar/internal/dispatcher"
	"eventRegistrar/internal/lib/api/stream"
	"eventRegistrar/internal/lib/logger/sl"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

type Snapshot struct {
	EventID       string `json:"event_id"`
	AttendeeCount int    `json:"attendee_count"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=AttendeeCountSubscriber
type AttendeeCountSubscriber interface {
	SubscribeAttendeeCount(ctx context.Context, eventID string, onUpdate func(int), onError func(error)) (dispatcher.Handle, error)
}

func New(log *slog.Logger, sub AttendeeCountSubscriber, up *websocket.Upgrader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.live.attendeeCount.New"

		eventID := chi.URLParam(r, "id")

		log := log.With(
			slog.String("op", op),
			slog.String("event_id", eventID),
		)

		conn, err := stream.Upgrade(w, r, up, log)
		if err != nil {
			log.Error("failed to upgrade connection", sl.Err(err))
			return
		}
		defer conn.Close()

		h, err := sub.SubscribeAttendeeCount(r.Context(), eventID, func(count int) {
			conn.Snapshot(Snapshot{EventID: eventID, AttendeeCount: count})
		}, conn.Fail)
		if err != nil {
			log.Warn("subscription refused", sl.Err(err))
			conn.Fail(err)
			return
		}
		defer h.Unsubscribe()

		conn.Wait(r.Context())
	}
}
