// Package views derives the values observers watch from the registration set.
// Nothing here is stored; every value is recomputed from the store on demand.
package views

import (
	"context"
	"fmt"

	"eventRegistrar/internal/dispatcher"
	"eventRegistrar/internal/models"
	"eventRegistrar/internal/storage"
)

type Store interface {
	ListEvents(ctx context.Context) ([]models.Event, error)
	ListRegistrations(ctx context.Context, filter storage.RegistrationFilter) ([]models.Registration, error)
	CountRegistrations(ctx context.Context, filter storage.RegistrationFilter) (int, error)
}

type Materializer struct {
	store Store
}

func New(store Store) *Materializer {
	return &Materializer{store: store}
}

// AttendeeCount is the number of approved registrations for the event.
func (m *Materializer) AttendeeCount(ctx context.Context, eventID string) (int, error) {
	const op = "views.AttendeeCount"

	count, err := m.store.CountRegistrations(ctx, storage.RegistrationFilter{
		EventID: eventID,
		Status:  models.StatusApproved,
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return count, nil
}

// RegistrationFor returns the user's most recent registration for the event,
// or nil when there is none or the event no longer exists.
func (m *Materializer) RegistrationFor(ctx context.Context, eventID, userID string) (*models.Registration, error) {
	const op = "views.RegistrationFor"

	regs, err := m.store.ListRegistrations(ctx, storage.RegistrationFilter{
		EventID:        eventID,
		UserID:         userID,
		LiveEventsOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if len(regs) == 0 {
		return nil, nil
	}

	return &regs[0], nil
}

func (m *Materializer) Events(ctx context.Context) ([]models.Event, error) {
	const op = "views.Events"

	events, err := m.store.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if events == nil {
		events = []models.Event{}
	}

	return events, nil
}

// Pending lists pending registrations of live events, newest first. A
// non-empty organizerID narrows the list to that organizer's events.
func (m *Materializer) Pending(ctx context.Context, organizerID string) ([]models.Registration, error) {
	const op = "views.Pending"

	regs, err := m.store.ListRegistrations(ctx, storage.RegistrationFilter{
		Status:         models.StatusPending,
		LiveEventsOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pending := make([]models.Registration, 0, len(regs))

	if organizerID == "" {
		return append(pending, regs...), nil
	}

	events, err := m.store.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	organized := make(map[string]struct{})
	for _, event := range events {
		if event.OrganizerID == organizerID {
			organized[event.ID] = struct{}{}
		}
	}

	for _, reg := range regs {
		if _, ok := organized[reg.EventID]; ok {
			pending = append(pending, reg)
		}
	}

	return pending, nil
}

func (m *Materializer) AttendeeCountQuery(eventID string) dispatcher.Query[int] {
	return dispatcher.Query[int]{
		Name:    "attendee_count:" + eventID,
		Affects: RegistrationsOf(eventID),
		Eval: func(ctx context.Context) (int, error) {
			return m.AttendeeCount(ctx, eventID)
		},
	}
}

func (m *Materializer) RegistrationQuery(eventID, userID string) dispatcher.Query[*models.Registration] {
	ofPair := RegistrationsOfUser(eventID, userID)
	event := EventChanges(eventID)

	return dispatcher.Query[*models.Registration]{
		Name: "registration:" + eventID + ":" + userID,
		Affects: func(c models.Change) bool {
			return ofPair(c) || event(c)
		},
		Eval: func(ctx context.Context) (*models.Registration, error) {
			return m.RegistrationFor(ctx, eventID, userID)
		},
	}
}

func (m *Materializer) EventsQuery() dispatcher.Query[[]models.Event] {
	return dispatcher.Query[[]models.Event]{
		Name:    "events",
		Affects: EventChanges(""),
		Eval:    m.Events,
	}
}

func (m *Materializer) PendingQuery(organizerID string) dispatcher.Query[[]models.Registration] {
	return dispatcher.Query[[]models.Registration]{
		Name: "pending:" + organizerID,
		Affects: func(c models.Change) bool {
			return c.Collection == models.CollectionRegistrations || c.Collection == models.CollectionEvents
		},
		Eval: func(ctx context.Context) ([]models.Registration, error) {
			return m.Pending(ctx, organizerID)
		},
	}
}

// RegistrationsOf matches registration changes for one event.
func RegistrationsOf(eventID string) func(models.Change) bool {
	return func(c models.Change) bool {
		return c.Collection == models.CollectionRegistrations && c.EventID == eventID
	}
}

func RegistrationsOfUser(eventID, userID string) func(models.Change) bool {
	return func(c models.Change) bool {
		return c.Collection == models.CollectionRegistrations && c.EventID == eventID && c.UserID == userID
	}
}

// EventChanges matches changes to one event, or to any event when eventID is empty.
func EventChanges(eventID string) func(models.Change) bool {
	return func(c models.Change) bool {
		return c.Collection == models.CollectionEvents && (eventID == "" || c.ID == eventID)
	}
}
