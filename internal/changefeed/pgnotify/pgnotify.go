// Package pgnotify turns the notifications emitted by the registrar triggers
// into a change stream.
package pgnotify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"eventRegistrar/internal/changefeed"
	"eventRegistrar/internal/lib/logger/sl"
	"eventRegistrar/internal/models"

	"github.com/lib/pq"
)

// Channel is the notification channel the migrations install triggers for.
const Channel = "registrar_changes"

const pingInterval = 90 * time.Second

type Source struct {
	log          *slog.Logger
	dsn          string
	minReconnect time.Duration
	maxReconnect time.Duration
}

func New(log *slog.Logger, dsn string, minReconnect, maxReconnect time.Duration) *Source {
	return &Source{
		log:          log,
		dsn:          dsn,
		minReconnect: minReconnect,
		maxReconnect: maxReconnect,
	}
}

// Subscribe opens a dedicated listener connection. Notifications may be lost
// while it reconnects, so every reconnect is reported as a resync.
func (s *Source) Subscribe(ctx context.Context) (<-chan models.Change, error) {
	const op = "changefeed.pgnotify.Subscribe"

	log := s.log.With(slog.String("op", op))

	listener := pq.NewListener(s.dsn, s.minReconnect, s.maxReconnect, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Warn("listener connection problem", slog.Int("event", int(ev)), sl.Err(err))
		}
	})

	if err := listener.Listen(Channel); err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make(chan models.Change)

	go func() {
		defer close(out)
		defer listener.Close()

		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				go func() {
					if err := listener.Ping(); err != nil {
						log.Warn("listener ping failed", sl.Err(err))
					}
				}()
			case n, ok := <-listener.Notify:
				if !ok {
					return
				}

				change := toChange(log, n)

				select {
				case out <- change:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// toChange maps a notification to a change. A nil notification is pq's signal
// that the connection was re-established.
func toChange(log *slog.Logger, n *pq.Notification) models.Change {
	if n == nil {
		log.Info("listener reconnected, resyncing")
		return models.Resync()
	}

	change, err := changefeed.Decode([]byte(n.Extra))
	if err != nil {
		log.Warn("dropping malformed notification, resyncing", slog.String("payload", n.Extra), sl.Err(err))
		return models.Resync()
	}

	return change
}

var _ changefeed.Source = (*Source)(nil)
