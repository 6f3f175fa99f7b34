// Package storage defines the entity store the registrar is built on. Drivers
// live in the postgres and sqlite subpackages.
package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strings"
	"time"

	"eventRegistrar/internal/models"
)

// RegistrationFilter is the predicate registrations are listed and counted by.
// Zero-valued fields do not constrain the result.
type RegistrationFilter struct {
	EventID string
	UserID  string
	Status  models.RegistrationStatus
	// LiveEventsOnly skips registrations whose event has been deleted.
	LiveEventsOnly bool
}

type Store interface {
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)

	CreateEvent(ctx context.Context, event models.Event) (*models.Event, error)
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
	UpdateEvent(ctx context.Context, id string, upd models.EventUpdate) (*models.Event, error)
	DeleteEvent(ctx context.Context, id string) error

	// CreateRegistration inserts a pending registration. It fails with
	// models.ErrConflict when the user already holds a pending or approved
	// registration for the same event.
	CreateRegistration(ctx context.Context, reg models.Registration) (*models.Registration, error)
	GetRegistration(ctx context.Context, id string) (*models.Registration, error)
	// ListRegistrations returns matching registrations, newest first.
	ListRegistrations(ctx context.Context, filter RegistrationFilter) ([]models.Registration, error)
	CountRegistrations(ctx context.Context, filter RegistrationFilter) (int, error)
	// TransitionRegistration moves a registration from one status to another
	// atomically. When the stored status is not from it fails with
	// models.ErrInvalidTransition, so of two racing transitions only one wins.
	TransitionRegistration(ctx context.Context, id string, from, to models.RegistrationStatus, at time.Time) (*models.Registration, error)

	Close() error
}

// ChangePublisher receives a Change after every committed write. Stores whose
// database emits change notifications natively are built without one.
type ChangePublisher interface {
	Publish(ctx context.Context, change models.Change) error
}

const errDBClosed = "sql: database is closed"

// IsUnavailable reports whether err is a transient connectivity failure that
// is not specific to one driver.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, models.ErrStoreUnavailable) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	// database/sql does not export the error it returns once the pool is closed.
	return strings.Contains(err.Error(), errDBClosed)
}
