// Package actor carries the acting user through a request and decides what
// that user may do. Roles always come from the stored user record.
package actor

import (
	"context"
	"fmt"

	"eventRegistrar/internal/models"
)

type Actor struct {
	UserID string
	Role   models.Role
}

type ctxKey struct{}

func FromUser(user *models.User) Actor {
	return Actor{UserID: user.ID, Role: user.Role}
}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

func FromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(ctxKey{}).(Actor)
	return a, ok && a.UserID != ""
}

// Require returns the acting user or models.ErrForbidden when there is none.
func Require(ctx context.Context) (Actor, error) {
	a, ok := FromContext(ctx)
	if !ok {
		return Actor{}, fmt.Errorf("no acting user: %w", models.ErrForbidden)
	}

	return a, nil
}

func (a Actor) forbidden(action string) error {
	return fmt.Errorf("%s %s may not %s: %w", a.Role, a.UserID, action, models.ErrForbidden)
}

// CanRegister allows requesters to register themselves only.
func (a Actor) CanRegister(userID string) error {
	if a.Role != models.RoleRequester || a.UserID != userID {
		return a.forbidden("register user " + userID)
	}

	return nil
}

// CanDecide allows the approver who organizes the event to approve or reject
// its registrations.
func (a Actor) CanDecide(event *models.Event) error {
	if a.Role != models.RoleApprover || event.OrganizerID != a.UserID {
		return a.forbidden("decide registrations of event " + event.ID)
	}

	return nil
}

func (a Actor) CanManageEvents() error {
	if a.Role != models.RoleAdministrator {
		return a.forbidden("manage events")
	}

	return nil
}

func (a Actor) CanManageUsers() error {
	if a.Role != models.RoleAdministrator {
		return a.forbidden("manage users")
	}

	return nil
}

// CanWatchRegistration allows users to watch their own registrations, and
// administrators to watch anyone's.
func (a Actor) CanWatchRegistration(userID string) error {
	if a.UserID != userID && a.Role != models.RoleAdministrator {
		return a.forbidden("watch registrations of " + userID)
	}

	return nil
}

// PendingScope returns the organizer the actor's pending-registration view is
// narrowed to. Administrators see every event, so their scope is empty.
func (a Actor) PendingScope() (string, error) {
	switch a.Role {
	case models.RoleApprover:
		return a.UserID, nil
	case models.RoleAdministrator:
		return "", nil
	default:
		return "", a.forbidden("list pending registrations")
	}
}
