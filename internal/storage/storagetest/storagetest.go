// Package storagetest holds the behaviour every storage.Store driver must share.
package storagetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"eventRegistrar/internal/models"
	"eventRegistrar/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty or shared store. Tests only look at rows they
// created themselves, so one database may serve the whole run.
type Factory func(t *testing.T) storage.Store

func Run(t *testing.T, newStore Factory) {
	t.Run("Users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("Events", func(t *testing.T) { testEvents(t, newStore(t)) })
	t.Run("CreateRegistration", func(t *testing.T) { testCreateRegistration(t, newStore(t)) })
	t.Run("TransitionRegistration", func(t *testing.T) { testTransition(t, newStore(t)) })
	t.Run("ConcurrentTransitions", func(t *testing.T) { testConcurrentTransitions(t, newStore(t)) })
	t.Run("ConcurrentCreates", func(t *testing.T) { testConcurrentCreates(t, newStore(t)) })
	t.Run("DeletedEvent", func(t *testing.T) { testDeletedEvent(t, newStore(t)) })
	t.Run("Filters", func(t *testing.T) { testFilters(t, newStore(t)) })
}

func id(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

func mustUser(t *testing.T, s storage.Store, role models.Role) *models.User {
	t.Helper()

	user, err := s.CreateUser(context.Background(), models.User{
		ID:          id("user"),
		DisplayName: "User " + string(role),
		Role:        role,
	})
	require.NoError(t, err)

	return user
}

func mustEvent(t *testing.T, s storage.Store, organizerID string) *models.Event {
	t.Helper()

	event, err := s.CreateEvent(context.Background(), models.Event{
		Name:        "Tech Conference",
		Description: "Talks",
		Date:        "2025-10-15",
		Location:    "Main Auditorium",
		OrganizerID: organizerID,
	})
	require.NoError(t, err)

	return event
}

func mustRegister(t *testing.T, s storage.Store, eventID string, user *models.User) *models.Registration {
	t.Helper()

	reg, err := s.CreateRegistration(context.Background(), models.Registration{
		EventID:  eventID,
		UserID:   user.ID,
		UserName: user.DisplayName,
	})
	require.NoError(t, err)

	return reg
}

func testUsers(t *testing.T, s storage.Store) {
	ctx := context.Background()

	user := mustUser(t, s, models.RoleRequester)
	assert.False(t, user.CreatedAt.IsZero())

	got, err := s.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.DisplayName, got.DisplayName)
	assert.Equal(t, models.RoleRequester, got.Role)

	_, err = s.CreateUser(ctx, models.User{ID: user.ID, DisplayName: "again", Role: models.RoleRequester})
	assert.ErrorIs(t, err, models.ErrConflict)

	_, err = s.GetUser(ctx, id("missing"))
	assert.ErrorIs(t, err, models.ErrNotFound)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)

	var found bool
	for _, u := range users {
		if u.ID == user.ID {
			found = true
		}
	}
	assert.True(t, found)
}

func testEvents(t *testing.T, s storage.Store) {
	ctx := context.Background()

	organizer := mustUser(t, s, models.RoleApprover)
	event := mustEvent(t, s, organizer.ID)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "2025-10-15", event.Date)
	assert.Equal(t, organizer.ID, event.OrganizerID)

	got, err := s.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, event.Name, got.Name)
	assert.Equal(t, event.Date, got.Date)

	updated, err := s.UpdateEvent(ctx, event.ID, models.EventUpdate{
		Name:        "Renamed",
		Description: "More talks",
		Date:        "2025-10-16",
		Location:    "Hall B",
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "2025-10-16", updated.Date)
	assert.Equal(t, organizer.ID, updated.OrganizerID)

	_, err = s.UpdateEvent(ctx, id("missing"), models.EventUpdate{Name: "x", Date: "2025-01-01"})
	assert.ErrorIs(t, err, models.ErrNotFound)

	events, err := s.ListEvents(ctx)
	require.NoError(t, err)

	var found bool
	for _, e := range events {
		if e.ID == event.ID {
			found = true
		}
	}
	assert.True(t, found)

	require.NoError(t, s.DeleteEvent(ctx, event.ID))

	_, err = s.GetEvent(ctx, event.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.ErrorIs(t, s.DeleteEvent(ctx, event.ID), models.ErrNotFound)
}

func testCreateRegistration(t *testing.T, s storage.Store) {
	ctx := context.Background()

	organizer := mustUser(t, s, models.RoleApprover)
	student := mustUser(t, s, models.RoleRequester)
	event := mustEvent(t, s, organizer.ID)

	reg := mustRegister(t, s, event.ID, student)
	assert.NotEmpty(t, reg.ID)
	assert.Equal(t, models.StatusPending, reg.Status)
	assert.Equal(t, student.DisplayName, reg.UserName)
	assert.Nil(t, reg.DecidedAt)

	_, err := s.CreateRegistration(ctx, models.Registration{EventID: event.ID, UserID: student.ID, UserName: student.DisplayName})
	assert.ErrorIs(t, err, models.ErrConflict)

	_, err = s.TransitionRegistration(ctx, reg.ID, models.StatusPending, models.StatusRejected, time.Now())
	require.NoError(t, err)

	again := mustRegister(t, s, event.ID, student)
	assert.NotEqual(t, reg.ID, again.ID)

	_, err = s.TransitionRegistration(ctx, again.ID, models.StatusPending, models.StatusApproved, time.Now())
	require.NoError(t, err)

	_, err = s.CreateRegistration(ctx, models.Registration{EventID: event.ID, UserID: student.ID, UserName: student.DisplayName})
	assert.ErrorIs(t, err, models.ErrConflict)
}

func testTransition(t *testing.T, s storage.Store) {
	ctx := context.Background()

	organizer := mustUser(t, s, models.RoleApprover)
	student := mustUser(t, s, models.RoleRequester)
	event := mustEvent(t, s, organizer.ID)
	reg := mustRegister(t, s, event.ID, student)

	at := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

	approved, err := s.TransitionRegistration(ctx, reg.ID, models.StatusPending, models.StatusApproved, at)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, approved.Status)
	require.NotNil(t, approved.DecidedAt)
	assert.True(t, at.Equal(*approved.DecidedAt))

	_, err = s.TransitionRegistration(ctx, reg.ID, models.StatusPending, models.StatusRejected, at)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	got, err := s.GetRegistration(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)

	_, err = s.TransitionRegistration(ctx, id("missing"), models.StatusPending, models.StatusApproved, at)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func testConcurrentTransitions(t *testing.T, s storage.Store) {
	ctx := context.Background()

	organizer := mustUser(t, s, models.RoleApprover)
	student := mustUser(t, s, models.RoleRequester)
	event := mustEvent(t, s, organizer.ID)
	reg := mustRegister(t, s, event.ID, student)

	targets := []models.RegistrationStatus{models.StatusApproved, models.StatusRejected}
	errs := make([]error, len(targets))

	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = s.TransitionRegistration(ctx, reg.ID, models.StatusPending, target, time.Now())
		}()
	}
	wg.Wait()

	var winners int
	for _, err := range errs {
		if err == nil {
			winners++
			continue
		}
		assert.ErrorIs(t, err, models.ErrInvalidTransition)
	}
	assert.Equal(t, 1, winners)

	got, err := s.GetRegistration(ctx, reg.ID)
	require.NoError(t, err)
	assert.True(t, got.Status.Terminal())
}

func testConcurrentCreates(t *testing.T, s storage.Store) {
	ctx := context.Background()

	organizer := mustUser(t, s, models.RoleApprover)
	student := mustUser(t, s, models.RoleRequester)
	event := mustEvent(t, s, organizer.ID)

	const attempts = 4
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = s.CreateRegistration(ctx, models.Registration{
				EventID:  event.ID,
				UserID:   student.ID,
				UserName: student.DisplayName,
			})
		}()
	}
	wg.Wait()

	var created int
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, models.ErrConflict)
	}
	assert.Equal(t, 1, created)

	count, err := s.CountRegistrations(ctx, storage.RegistrationFilter{EventID: event.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func testDeletedEvent(t *testing.T, s storage.Store) {
	ctx := context.Background()

	organizer := mustUser(t, s, models.RoleApprover)
	student := mustUser(t, s, models.RoleRequester)
	event := mustEvent(t, s, organizer.ID)
	reg := mustRegister(t, s, event.ID, student)

	require.NoError(t, s.DeleteEvent(ctx, event.ID))

	got, err := s.GetRegistration(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)

	all, err := s.ListRegistrations(ctx, storage.RegistrationFilter{EventID: event.ID})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	live, err := s.ListRegistrations(ctx, storage.RegistrationFilter{EventID: event.ID, LiveEventsOnly: true})
	require.NoError(t, err)
	assert.Empty(t, live)

	count, err := s.CountRegistrations(ctx, storage.RegistrationFilter{UserID: student.ID, LiveEventsOnly: true})
	require.NoError(t, err)
	assert.Zero(t, count)
}

func testFilters(t *testing.T, s storage.Store) {
	ctx := context.Background()

	organizer := mustUser(t, s, models.RoleApprover)
	first := mustUser(t, s, models.RoleRequester)
	second := mustUser(t, s, models.RoleRequester)
	event := mustEvent(t, s, organizer.ID)

	r1 := mustRegister(t, s, event.ID, first)
	r2 := mustRegister(t, s, event.ID, second)

	_, err := s.TransitionRegistration(ctx, r1.ID, models.StatusPending, models.StatusApproved, time.Now())
	require.NoError(t, err)

	approved, err := s.CountRegistrations(ctx, storage.RegistrationFilter{EventID: event.ID, Status: models.StatusApproved})
	require.NoError(t, err)
	assert.Equal(t, 1, approved)

	pending, err := s.ListRegistrations(ctx, storage.RegistrationFilter{EventID: event.ID, Status: models.StatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, r2.ID, pending[0].ID)

	mine, err := s.ListRegistrations(ctx, storage.RegistrationFilter{EventID: event.ID, UserID: first.ID})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, r1.ID, mine[0].ID)
	assert.Equal(t, models.StatusApproved, mine[0].Status)

	total, err := s.CountRegistrations(ctx, storage.RegistrationFilter{EventID: event.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}
