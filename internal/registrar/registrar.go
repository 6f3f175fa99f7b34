// Package registrar is the operation surface of the system: one-shot reads,
// the writes each role may perform, and the live subscriptions.
package registrar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventRegistrar/internal/actor"
	"eventRegistrar/internal/dispatcher"
	"eventRegistrar/internal/models"
	"eventRegistrar/internal/registration"
	"eventRegistrar/internal/storage"
	"eventRegistrar/internal/views"
)

// EventDetails is an event together with its live attendee count.
type EventDetails struct {
	models.Event
	AttendeeCount int `json:"attendee_count"`
}

type Service struct {
	log        *slog.Logger
	store      storage.Store
	machine    *registration.Machine
	views      *views.Materializer
	dispatcher *dispatcher.Dispatcher
}

func New(log *slog.Logger, store storage.Store, d *dispatcher.Dispatcher) *Service {
	return &Service{
		log:        log,
		store:      store,
		machine:    registration.New(store),
		views:      views.New(store),
		dispatcher: d,
	}
}

func (s *Service) ListEvents(ctx context.Context) ([]models.Event, error) {
	const op = "registrar.ListEvents"

	if _, err := actor.Require(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	events, err := s.views.Events(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return events, nil
}

func (s *Service) GetEvent(ctx context.Context, id string) (*EventDetails, error) {
	const op = "registrar.GetEvent"

	if _, err := actor.Require(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	event, err := s.store.GetEvent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	count, err := s.views.AttendeeCount(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &EventDetails{Event: *event, AttendeeCount: count}, nil
}

// CreateEvent stores a new event. Its organizer must be an existing approver.
func (s *Service) CreateEvent(ctx context.Context, event models.Event) (*models.Event, error) {
	const op = "registrar.CreateEvent"

	a, err := actor.Require(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = a.CanManageEvents(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = validateEvent(event.Name, event.Date); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	organizer, err := s.store.GetUser(ctx, event.OrganizerID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%s: organizer %q: %w", op, event.OrganizerID, models.ErrReference)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if organizer.Role != models.RoleApprover {
		return nil, fmt.Errorf("%s: organizer %q is a %s, not an approver: %w", op, organizer.ID, organizer.Role, models.ErrReference)
	}

	event.ID = ""
	created, err := s.store.CreateEvent(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("event created",
		slog.String("op", op),
		slog.String("event_id", created.ID),
		slog.String("by", a.UserID),
	)

	return created, nil
}

func (s *Service) UpdateEvent(ctx context.Context, id string, upd models.EventUpdate) (*models.Event, error) {
	const op = "registrar.UpdateEvent"

	a, err := actor.Require(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = a.CanManageEvents(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = validateEvent(upd.Name, upd.Date); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	event, err := s.store.UpdateEvent(ctx, id, upd)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return event, nil
}

// DeleteEvent removes the event only. Its registrations stay in the store and
// drop out of every view that requires a live event.
func (s *Service) DeleteEvent(ctx context.Context, id string) error {
	const op = "registrar.DeleteEvent"

	a, err := actor.Require(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = a.CanManageEvents(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = s.store.DeleteEvent(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("event deleted",
		slog.String("op", op),
		slog.String("event_id", id),
		slog.String("by", a.UserID),
	)

	return nil
}

func (s *Service) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	const op = "registrar.CreateUser"

	a, err := actor.Require(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = a.CanManageUsers(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if strings.TrimSpace(user.DisplayName) == "" {
		return nil, fmt.Errorf("%s: display name is required: %w", op, models.ErrInvalidInput)
	}

	if !user.Role.Valid() {
		return nil, fmt.Errorf("%s: unknown role %q: %w", op, user.Role, models.ErrInvalidInput)
	}

	created, err := s.store.CreateUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return created, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	const op = "registrar.ListUsers"

	a, err := actor.Require(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = a.CanManageUsers(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if users == nil {
		users = []models.User{}
	}

	return users, nil
}

func (s *Service) CreateRegistration(ctx context.Context, eventID, userID, userName string) (*models.Registration, error) {
	const op = "registrar.CreateRegistration"

	reg, err := s.machine.Create(ctx, eventID, userID, userName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("registration created",
		slog.String("op", op),
		slog.String("registration_id", reg.ID),
		slog.String("event_id", eventID),
		slog.String("user_id", userID),
	)

	return reg, nil
}

// ListPendingRegistrations lists the pending registrations the actor may
// decide on. Administrators see all of them.
func (s *Service) ListPendingRegistrations(ctx context.Context) ([]models.Registration, error) {
	const op = "registrar.ListPendingRegistrations"

	scope, err := pendingScope(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	regs, err := s.views.Pending(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return regs, nil
}

func (s *Service) SetRegistrationStatus(ctx context.Context, id string, status models.RegistrationStatus) (*models.Registration, error) {
	const op = "registrar.SetRegistrationStatus"

	reg, err := s.machine.Transition(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("registration decided",
		slog.String("op", op),
		slog.String("registration_id", id),
		slog.String("status", string(reg.Status)),
	)

	return reg, nil
}

// MyRegistration returns the actor's registration for the event, or nil.
func (s *Service) MyRegistration(ctx context.Context, eventID string) (*models.Registration, error) {
	const op = "registrar.MyRegistration"

	a, err := actor.Require(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	reg, err := s.views.RegistrationFor(ctx, eventID, a.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return reg, nil
}

func (s *Service) SubscribeAttendeeCount(
	ctx context.Context, eventID string, onUpdate func(int), onError func(error),
) (dispatcher.Handle, error) {
	const op = "registrar.SubscribeAttendeeCount"

	if _, err := actor.Require(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.store.GetEvent(ctx, eventID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sub, err := dispatcher.Subscribe(s.dispatcher, s.views.AttendeeCountQuery(eventID), onUpdate, onError)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return sub, nil
}

func (s *Service) SubscribeMyRegistration(
	ctx context.Context, eventID, userID string, onUpdate func(*models.Registration), onError func(error),
) (dispatcher.Handle, error) {
	const op = "registrar.SubscribeMyRegistration"

	a, err := actor.Require(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if userID == "" {
		userID = a.UserID
	}

	if err = a.CanWatchRegistration(userID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sub, err := dispatcher.Subscribe(s.dispatcher, s.views.RegistrationQuery(eventID, userID), onUpdate, onError)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return sub, nil
}

func (s *Service) SubscribeEvents(
	ctx context.Context, onUpdate func([]models.Event), onError func(error),
) (dispatcher.Handle, error) {
	const op = "registrar.SubscribeEvents"

	if _, err := actor.Require(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sub, err := dispatcher.Subscribe(s.dispatcher, s.views.EventsQuery(), onUpdate, onError)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return sub, nil
}

func (s *Service) SubscribePendingRegistrations(
	ctx context.Context, onUpdate func([]models.Registration), onError func(error),
) (dispatcher.Handle, error) {
	const op = "registrar.SubscribePendingRegistrations"

	scope, err := pendingScope(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sub, err := dispatcher.Subscribe(s.dispatcher, s.views.PendingQuery(scope), onUpdate, onError)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return sub, nil
}

func pendingScope(ctx context.Context) (string, error) {
	a, err := actor.Require(ctx)
	if err != nil {
		return "", err
	}

	return a.PendingScope()
}

func validateEvent(name, date string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("event name is required: %w", models.ErrInvalidInput)
	}

	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return fmt.Errorf("event date %q is not in %s format: %w", date, models.DateLayout, models.ErrInvalidInput)
	}

	return nil
}
