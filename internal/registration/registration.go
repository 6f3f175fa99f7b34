// Package registration owns the registration lifecycle: creation in the
// pending state and the single decision that moves it to approved or rejected.
package registration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventRegistrar/internal/actor"
	"eventRegistrar/internal/models"
)

type Store interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	CreateRegistration(ctx context.Context, reg models.Registration) (*models.Registration, error)
	GetRegistration(ctx context.Context, id string) (*models.Registration, error)
	TransitionRegistration(ctx context.Context, id string, from, to models.RegistrationStatus, at time.Time) (*models.Registration, error)
}

type Machine struct {
	store Store
	now   func() time.Time
}

func New(store Store) *Machine {
	return &Machine{
		store: store,
		now:   time.Now,
	}
}

// Create registers userID for eventID. The acting user must be that requester.
// An empty userName falls back to the user's display name.
func (m *Machine) Create(ctx context.Context, eventID, userID, userName string) (*models.Registration, error) {
	const op = "registration.Create"

	a, err := actor.Require(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = a.CanRegister(userID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err = m.store.GetEvent(ctx, eventID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, asReference(err))
	}

	user, err := m.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, asReference(err))
	}

	if userName == "" {
		userName = user.DisplayName
	}

	reg, err := m.store.CreateRegistration(ctx, models.Registration{
		EventID:  eventID,
		UserID:   userID,
		UserName: userName,
		Status:   models.StatusPending,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return reg, nil
}

// Transition decides a pending registration. Only the approver organizing the
// registration's event may do so, and only once.
func (m *Machine) Transition(ctx context.Context, id string, target models.RegistrationStatus) (*models.Registration, error) {
	const op = "registration.Transition"

	a, err := actor.Require(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if a.Role != models.RoleApprover {
		return nil, fmt.Errorf("%s: %s %s may not decide registrations: %w", op, a.Role, a.UserID, models.ErrForbidden)
	}

	reg, err := m.store.GetRegistration(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	event, err := m.store.GetEvent(ctx, reg.EventID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, asReference(err))
	}

	if err = a.CanDecide(event); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !reg.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("%s: %s -> %q: %w", op, reg.Status, target, models.ErrInvalidTransition)
	}

	updated, err := m.store.TransitionRegistration(ctx, id, reg.Status, target, m.now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return updated, nil
}

// asReference reports a missing referenced entity as ErrReference rather than
// ErrNotFound, which is reserved for the entity an operation targets.
func asReference(err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("%w: %s", models.ErrReference, err.Error())
	}

	return err
}
