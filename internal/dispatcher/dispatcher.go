// Package dispatcher keeps live queries current. Every subscription owns a
// goroutine that re-evaluates its query whenever a relevant change is
// announced and hands the result to its observer.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"eventRegistrar/internal/changefeed"
	"eventRegistrar/internal/lib/logger/sl"
	"eventRegistrar/internal/models"
)

var (
	ErrClosed      = errors.New("dispatcher closed")
	ErrFeedStopped = errors.New("change feed stopped")
)

// Query describes a live query. Affects may be nil, in which case every
// change marks the query dirty.
type Query[T any] struct {
	Name    string
	Affects func(models.Change) bool
	Eval    func(ctx context.Context) (T, error)
}

// Handle is what callers outside this package hold on to.
type Handle interface {
	Unsubscribe()
}

type Dispatcher struct {
	log            *slog.Logger
	resyncInterval time.Duration

	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	closed bool
}

// New returns a dispatcher that forces a re-evaluation of every subscription
// each resyncInterval while Run is active. Zero disables the periodic resync.
func New(log *slog.Logger, resyncInterval time.Duration) *Dispatcher {
	return &Dispatcher{
		log:            log,
		resyncInterval: resyncInterval,
		subs:           make(map[*Subscription]struct{}),
	}
}

type Subscription struct {
	d       *Dispatcher
	name    string
	affects func(models.Change) bool
	dirty   chan struct{}
	cancel  context.CancelFunc
	done    chan struct{}

	mu     sync.Mutex
	closed bool
}

// Subscribe registers q and schedules its first evaluation. onUpdate receives
// the baseline result and then every changed result, one call at a time and
// in evaluation order. If an evaluation fails, onError (when set) receives
// the error and the subscription ends; resubscribe to recover.
func Subscribe[T any](d *Dispatcher, q Query[T], onUpdate func(T), onError func(error)) (*Subscription, error) {
	const op = "dispatcher.Subscribe"

	if q.Eval == nil || onUpdate == nil {
		return nil, fmt.Errorf("%s: query %q needs an evaluator and an observer", op, q.Name)
	}

	ctx, cancel := context.WithCancel(context.Background())

	sub := &Subscription{
		d:       d,
		name:    q.Name,
		affects: q.Affects,
		dirty:   make(chan struct{}, 1),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	sub.dirty <- struct{}{}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		cancel()
		return nil, fmt.Errorf("%s: %w", op, ErrClosed)
	}
	d.subs[sub] = struct{}{}
	d.mu.Unlock()

	d.log.Debug("subscription opened", slog.String("query", q.Name))

	go run(ctx, sub, q, onUpdate, onError)

	return sub, nil
}

func run[T any](ctx context.Context, sub *Subscription, q Query[T], onUpdate func(T), onError func(error)) {
	defer close(sub.done)

	var (
		last      T
		delivered bool
	)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.dirty:
		}

		value, err := q.Eval(ctx)
		if ctx.Err() != nil {
			return
		}

		if err != nil {
			sub.d.log.Warn("live query failed",
				slog.String("query", sub.name),
				sl.Err(err),
			)
			sub.fail(func() {
				if onError != nil {
					onError(err)
				}
			})
			return
		}

		if delivered && reflect.DeepEqual(last, value) {
			continue
		}

		if !sub.deliver(func() { onUpdate(value) }) {
			return
		}

		last, delivered = value, true
	}
}

// deliver runs fn unless the subscription has been closed.
func (s *Subscription) deliver(fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	fn()

	return true
}

// fail reports the error and closes the subscription in one step, so no
// update can follow the error.
func (s *Subscription) fail(report func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	report()
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.d.remove(s)
}

// Unsubscribe stops the subscription. When it returns, no callback is running
// and none will start. It is safe to call more than once and on nil, but it
// must not be called from the subscription's own callbacks.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.d.remove(s)

	s.d.log.Debug("subscription closed", slog.String("query", s.name))
}

// Done is closed once the subscription's goroutine has exited.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

func (s *Subscription) mark() {
	select {
	case s.dirty <- struct{}{}:
	default:
	}
}

func (d *Dispatcher) remove(s *Subscription) {
	d.mu.Lock()
	delete(d.subs, s)
	d.mu.Unlock()
}

// Notify marks every subscription the change may affect as dirty. It never
// blocks on an evaluation or an observer.
func (d *Dispatcher) Notify(change models.Change) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for sub := range d.subs {
		if change.IsResync() || sub.affects == nil || sub.affects(change) {
			sub.mark()
		}
	}
}

// Len reports the number of open subscriptions.
func (d *Dispatcher) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.subs)
}

// Run feeds changes from src into Notify until ctx is done. Changes that
// happened before the feed was attached are covered by a resync once it is.
func (d *Dispatcher) Run(ctx context.Context, src changefeed.Source) error {
	const op = "dispatcher.Run"

	log := d.log.With(slog.String("op", op))

	changes, err := src.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	d.Notify(models.Resync())

	var tick <-chan time.Time
	if d.resyncInterval > 0 {
		ticker := time.NewTicker(d.resyncInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	log.Info("dispatcher started", slog.Duration("resync_interval", d.resyncInterval))

	for {
		select {
		case <-ctx.Done():
			log.Info("dispatcher stopped")
			return nil
		case change, ok := <-changes:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("%s: %w", op, ErrFeedStopped)
			}
			log.Debug("change received",
				slog.String("collection", string(change.Collection)),
				slog.String("change_op", string(change.Op)),
				slog.String("id", change.ID),
			)
			d.Notify(change)
		case <-tick:
			d.Notify(models.Resync())
		}
	}
}

// Close ends every subscription and rejects new ones.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	subs := make([]*Subscription, 0, len(d.subs))
	for sub := range d.subs {
		subs = append(subs, sub)
	}
	d.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
}
