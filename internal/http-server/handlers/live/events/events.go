// Package events streams the event list to WebSocket clients.
package events

import (
	"context"
	"log/slog"
	"net/http"

	"eventRegistrar/internal/dispatcher"
	"eventRegistrar/internal/lib/api/stream"
	"eventRegistrar/internal/lib/logger/sl"
	"eventRegistrar/internal/models"

	"github.com/gorilla/websocket"
)

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=EventsSubscriber
type EventsSubscriber interface {
	SubscribeEvents(ctx context.Context, onUpdate func([]models.Event), onError func(error)) (dispatcher.Handle, error)
}

func New(log *slog.Logger, sub EventsSubscriber, up *websocket.Upgrader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.live.events.New"

		log := log.With(slog.String("op", op))

		conn, err := stream.Upgrade(w, r, up, log)
		if err != nil {
			log.Error("failed to upgrade connection", sl.Err(err))
			return
		}
		defer conn.Close()

		h, err := sub.SubscribeEvents(r.Context(), func(events []models.Event) {
			conn.Snapshot(events)
		}, conn.Fail)
		if err != nil {
			log.Warn("subscription refused", sl.Err(err))
			conn.Fail(err)
			return
		}
		defer h.Unsubscribe()

		log.Info("event list stream opened")

		conn.Wait(r.Context())

		log.Info("event list stream closed")
	}
}
