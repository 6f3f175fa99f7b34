// Package redisfeed shares changes between registrar processes over Redis
// pub/sub.
package redisfeed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventRegistrar/internal/changefeed"
	"eventRegistrar/internal/lib/logger/sl"
	"eventRegistrar/internal/models"
	"eventRegistrar/internal/storage"

	"github.com/redis/rueidis"
)

const retryDelay = time.Second

type Feed struct {
	log     *slog.Logger
	client  rueidis.Client
	channel string
}

func New(log *slog.Logger, client rueidis.Client, channel string) *Feed {
	return &Feed{
		log:     log,
		client:  client,
		channel: channel,
	}
}

func (f *Feed) Publish(ctx context.Context, change models.Change) error {
	const op = "changefeed.redisfeed.Publish"

	payload, err := changefeed.Encode(change)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	cmd := f.client.B().Publish().Channel(f.channel).Message(string(payload)).Build()
	if err = f.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Subscribe keeps a SUBSCRIBE running until ctx is done. Messages published
// while the subscription was down are lost, so every re-subscribe is preceded
// by a resync.
func (f *Feed) Subscribe(ctx context.Context) (<-chan models.Change, error) {
	const op = "changefeed.redisfeed.Subscribe"

	log := f.log.With(slog.String("op", op), slog.String("channel", f.channel))

	out := make(chan models.Change)

	send := func(change models.Change) bool {
		select {
		case out <- change:
			return true
		case <-ctx.Done():
			return false
		}
	}

	go func() {
		defer close(out)

		for {
			cmd := f.client.B().Subscribe().Channel(f.channel).Build()

			err := f.client.Receive(ctx, cmd, func(msg rueidis.PubSubMessage) {
				change, err := changefeed.Decode([]byte(msg.Message))
				if err != nil {
					log.Warn("dropping malformed message, resyncing", sl.Err(err))
					change = models.Resync()
				}
				send(change)
			})

			if ctx.Err() != nil {
				return
			}

			if err != nil && !errors.Is(err, context.Canceled) {
				log.Warn("subscription interrupted", sl.Err(err))
			}

			select {
			case <-time.After(retryDelay):
			case <-ctx.Done():
				return
			}

			if !send(models.Resync()) {
				return
			}
		}
	}()

	return out, nil
}

var (
	_ changefeed.Source       = (*Feed)(nil)
	_ storage.ChangePublisher = (*Feed)(nil)
)
