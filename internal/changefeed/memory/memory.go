// Package memory is an in-process change broker. Publish blocks until every
// subscriber has taken the change, so a lagging consumer slows writers down
// instead of losing changes.
package memory

import (
	"context"
	"sync"
	"sync/atomic"

	"eventRegistrar/internal/changefeed"
	"eventRegistrar/internal/models"
)

type subscriber struct {
	ch   chan models.Change
	done chan struct{}
	once sync.Once
}

type Broker struct {
	mu     sync.RWMutex
	subs   map[*subscriber]struct{}
	buffer int
	closed atomic.Bool
}

func New(buffer int) *Broker {
	if buffer < 0 {
		buffer = 0
	}

	return &Broker{
		subs:   make(map[*subscriber]struct{}),
		buffer: buffer,
	}
}

func (b *Broker) Publish(ctx context.Context, change models.Change) error {
	if b.closed.Load() {
		return changefeed.ErrClosed
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subs {
		select {
		case sub.ch <- change:
		case <-sub.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}

func (b *Broker) Subscribe(ctx context.Context) (<-chan models.Change, error) {
	sub := &subscriber{
		ch:   make(chan models.Change, b.buffer),
		done: make(chan struct{}),
	}

	b.mu.Lock()
	if b.closed.Load() {
		b.mu.Unlock()
		return nil, changefeed.ErrClosed
	}
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
		case <-sub.done:
		}
		b.remove(sub)
	}()

	return sub.ch, nil
}

// Close ends every subscription. Later Publish and Subscribe calls fail with
// changefeed.ErrClosed.
func (b *Broker) Close() {
	if b.closed.Swap(true) {
		return
	}

	b.mu.RLock()
	subs := make([]*subscriber, 0, len(b.subs))
	for sub := range b.subs {
		subs = append(subs, sub)
	}
	b.mu.RUnlock()

	for _, sub := range subs {
		b.remove(sub)
	}
}

// remove unblocks publishers waiting on sub before taking the write lock, so
// the channel is closed only once no Publish can be sending on it.
func (b *Broker) remove(sub *subscriber) {
	sub.once.Do(func() {
		close(sub.done)

		b.mu.Lock()
		delete(b.subs, sub)
		close(sub.ch)
		b.mu.Unlock()
	})
}

var _ changefeed.Source = (*Broker)(nil)
