// Package changefeed carries committed-write notifications from the entity
// store to the subscription dispatcher.
package changefeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"eventRegistrar/internal/models"
)

// ErrClosed is returned by Subscribe on a feed that has been shut down.
var ErrClosed = errors.New("change feed closed")

// Source is a stream of changes. The returned channel is closed when ctx is
// done or the feed stops; consumers must treat a closed channel as the end of
// the stream.
type Source interface {
	Subscribe(ctx context.Context) (<-chan models.Change, error)
}

// Encode renders a change in the wire form shared by every out-of-process feed.
func Encode(change models.Change) ([]byte, error) {
	data, err := json.Marshal(change)
	if err != nil {
		return nil, fmt.Errorf("encode change: %w", err)
	}

	return data, nil
}

func Decode(data []byte) (models.Change, error) {
	var change models.Change
	if err := json.Unmarshal(data, &change); err != nil {
		return models.Change{}, fmt.Errorf("decode change: %w", err)
	}

	switch change.Collection {
	case models.CollectionUsers, models.CollectionEvents, models.CollectionRegistrations:
	default:
		return models.Change{}, fmt.Errorf("decode change: unknown collection %q", change.Collection)
	}

	return change, nil
}
