// Package myRegistration streams one user's registration for an event. The
// caller's own registration is streamed unless the user query parameter names
// someone else, which only administrators may do.
package myRegistration

import (
	"context"
	"log/slog"
	"net/http"

	"eventRegistrar/internal/dispatcher"
	"eventRegistrar/internal/lib/api/stream"
	"eventRegistrar/internal/lib/logger/sl"
	"eventRegistrar/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=RegistrationSubscriber
type RegistrationSubscriber interface {
	SubscribeMyRegistration(
		ctx context.Context, eventID, userID string, onUpdate func(*models.Registration), onError func(error),
	) (dispatcher.Handle, error)
}

func New(log *slog.Logger, sub RegistrationSubscriber, up *websocket.Upgrader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.live.myRegistration.New"

		eventID := chi.URLParam(r, "id")
		userID := r.URL.Query().Get("user")

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

		h, err := sub.SubscribeMyRegistration(r.Context(), eventID, userID, func(reg *models.Registration) {
			conn.Snapshot(reg)
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
