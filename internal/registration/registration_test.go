package registration

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"eventRegistrar/internal/actor"
	"eventRegistrar/internal/lib/logger/handlers/slogdiscard"
	"eventRegistrar/internal/models"
	"eventRegistrar/internal/storage/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	student   = actor.Actor{UserID: "student1", Role: models.RoleRequester}
	organizer = actor.Actor{UserID: "organizer1", Role: models.RoleApprover}
	stranger  = actor.Actor{UserID: "organizer2", Role: models.RoleApprover}
	admin     = actor.Actor{UserID: "admin1", Role: models.RoleAdministrator}
)

func as(a actor.Actor) context.Context {
	return actor.WithActor(context.Background(), a)
}

func newMachine(t *testing.T) (*Machine, *sqlite.Storage) {
	t.Helper()

	store, err := sqlite.New(slogdiscard.NewDiscardLogger(), filepath.Join(t.TempDir(), "registration.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	for _, u := range []models.User{
		{ID: "student1", DisplayName: "Alice", Role: models.RoleRequester},
		{ID: "organizer1", DisplayName: "Charlie", Role: models.RoleApprover},
		{ID: "organizer2", DisplayName: "Erin", Role: models.RoleApprover},
		{ID: "admin1", DisplayName: "Diana", Role: models.RoleAdministrator},
	} {
		_, err = store.CreateUser(ctx, u)
		require.NoError(t, err)
	}

	_, err = store.CreateEvent(ctx, models.Event{ID: "e1", Name: "Tech Conference 2025", Date: "2025-10-15", OrganizerID: "organizer1"})
	require.NoError(t, err)

	return New(store), store
}

func TestCreate(t *testing.T) {
	t.Parallel()

	m, _ := newMachine(t)

	reg, err := m.Create(as(student), "e1", "student1", "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, reg.Status)
	assert.Equal(t, "Alice", reg.UserName)

	_, err = m.Create(as(student), "e1", "student1", "Alice")
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestCreateErrors(t *testing.T) {
	t.Parallel()

	m, _ := newMachine(t)

	testCases := []struct {
		name    string
		ctx     context.Context
		eventID string
		userID  string
		wantErr error
	}{
		{name: "no actor", ctx: context.Background(), eventID: "e1", userID: "student1", wantErr: models.ErrForbidden},
		{name: "for someone else", ctx: as(student), eventID: "e1", userID: "student2", wantErr: models.ErrForbidden},
		{name: "approver", ctx: as(organizer), eventID: "e1", userID: "organizer1", wantErr: models.ErrForbidden},
		{name: "unknown event", ctx: as(student), eventID: "missing", userID: "student1", wantErr: models.ErrReference},
		{name: "unknown user", ctx: as(actor.Actor{UserID: "ghost", Role: models.RoleRequester}), eventID: "e1", userID: "ghost", wantErr: models.ErrReference},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := m.Create(tc.ctx, tc.eventID, tc.userID, "")
			require.ErrorIs(t, err, tc.wantErr)
			if tc.wantErr == models.ErrReference {
				assert.NotErrorIs(t, err, models.ErrNotFound)
			}
		})
	}
}

func TestTransition(t *testing.T) {
	t.Parallel()

	m, _ := newMachine(t)

	reg, err := m.Create(as(student), "e1", "student1", "")
	require.NoError(t, err)

	_, err = m.Transition(as(stranger), reg.ID, models.StatusApproved)
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = m.Transition(as(admin), reg.ID, models.StatusApproved)
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = m.Transition(as(student), reg.ID, models.StatusApproved)
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = m.Transition(as(organizer), reg.ID, models.StatusPending)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = m.Transition(as(organizer), reg.ID, "cancelled")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	approved, err := m.Transition(as(organizer), reg.ID, models.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, approved.Status)
	assert.NotNil(t, approved.DecidedAt)

	// repeating the same decision is not idempotent
	_, err = m.Transition(as(organizer), reg.ID, models.StatusApproved)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = m.Transition(as(organizer), reg.ID, models.StatusRejected)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = m.Transition(as(organizer), "missing", models.StatusApproved)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestTransitionOrphan(t *testing.T) {
	t.Parallel()

	m, store := newMachine(t)

	reg, err := m.Create(as(student), "e1", "student1", "")
	require.NoError(t, err)

	require.NoError(t, store.DeleteEvent(context.Background(), "e1"))

	_, err = m.Transition(as(organizer), reg.ID, models.StatusApproved)
	assert.ErrorIs(t, err, models.ErrReference)

	got, err := store.GetRegistration(context.Background(), reg.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
}

func TestRejectedRequesterMayReapply(t *testing.T) {
	t.Parallel()

	m, _ := newMachine(t)

	first, err := m.Create(as(student), "e1", "student1", "")
	require.NoError(t, err)

	_, err = m.Transition(as(organizer), first.ID, models.StatusRejected)
	require.NoError(t, err)

	second, err := m.Create(as(student), "e1", "student1", "")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, models.StatusPending, second.Status)
}

func TestConcurrentDecisionsHaveOneWinner(t *testing.T) {
	t.Parallel()

	m, store := newMachine(t)

	reg, err := m.Create(as(student), "e1", "student1", "")
	require.NoError(t, err)

	targets := []models.RegistrationStatus{models.StatusApproved, models.StatusRejected, models.StatusApproved}
	errs := make([]error, len(targets))

	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = m.Transition(as(organizer), reg.ID, target)
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

	got, err := store.GetRegistration(context.Background(), reg.ID)
	require.NoError(t, err)
	assert.True(t, got.Status.Terminal())
}

func TestDecidedAtUsesClock(t *testing.T) {
	t.Parallel()

	m, _ := newMachine(t)
	at := time.Date(2025, 10, 1, 9, 30, 0, 0, time.UTC)
	m.now = func() time.Time { return at }

	reg, err := m.Create(as(student), "e1", "student1", "")
	require.NoError(t, err)

	decided, err := m.Transition(as(organizer), reg.ID, models.StatusRejected)
	require.NoError(t, err)
	require.NotNil(t, decided.DecidedAt)
	assert.True(t, at.Equal(*decided.DecidedAt))
}
