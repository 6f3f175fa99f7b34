// Package pendingRegistrations streams the registrations awaiting the
// caller's decision.
package pendingRegistrations

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

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=PendingSubscriber
type PendingSubscriber interface {
	SubscribePendingRegistrations(
		ctx context.Context, onUpdate func([]models.Registration), onError func(error),
	) (dispatcher.Handle, error)
}

func New(log *slog.Logger, sub PendingSubscriber, up *websocket.Upgrader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.live.pendingRegistrations.New"

		log := log.With(slog.String("op", op))

		conn, err := stream.Upgrade(w, r, up, log)
		if err != nil {
			log.Error("failed to upgrade connection", sl.Err(err))
			return
		}
		defer conn.Close()

		h, err := sub.SubscribePendingRegistrations(r.Context(), func(regs []models.Registration) {
			conn.Snapshot(regs)
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
