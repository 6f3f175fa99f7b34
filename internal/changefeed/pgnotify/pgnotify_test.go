package pgnotify

import (
	"context"
	"os"
	"testing"
	"time"

	"eventRegistrar/internal/lib/logger/handlers/slogdiscard"
	"eventRegistrar/internal/models"
	"eventRegistrar/internal/storage/postgres"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToChange(t *testing.T) {
	t.Parallel()

	log := slogdiscard.NewDiscardLogger()

	testCases := []struct {
		name string
		n    *pq.Notification
		want models.Change
	}{
		{
			name: "reconnect",
			n:    nil,
			want: models.Resync(),
		},
		{
			name: "registration",
			n: &pq.Notification{
				Channel: Channel,
				Extra:   `{"collection":"registrations","op":"insert","id":"r1","event_id":"e1","user_id":"student1"}`,
			},
			want: models.Change{
				Collection: models.CollectionRegistrations,
				Op:         models.OpInsert,
				ID:         "r1",
				EventID:    "e1",
				UserID:     "student1",
			},
		},
		{
			name: "malformed payload",
			n:    &pq.Notification{Channel: Channel, Extra: `{`},
			want: models.Resync(),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, toChange(log, tc.n))
		})
	}
}

func TestTriggersNotify(t *testing.T) {
	dsn := os.Getenv("REGISTRAR_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("REGISTRAR_TEST_POSTGRES_DSN is not set")
	}

	log := slogdiscard.NewDiscardLogger()

	store, err := postgres.Open(log, dsn, nil)
	require.NoError(t, err)
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	changes, err := New(log, dsn, 10*time.Millisecond, time.Second).Subscribe(ctx)
	require.NoError(t, err)

	user, err := store.CreateUser(ctx, models.User{DisplayName: "Listener", Role: models.RoleRequester})
	require.NoError(t, err)

	for {
		select {
		case change := <-changes:
			if change.Collection == models.CollectionUsers && change.ID == user.ID {
				assert.Equal(t, models.OpInsert, change.Op)
				return
			}
		case <-ctx.Done():
			t.Fatal("no notification for the inserted user")
		}
	}
}
