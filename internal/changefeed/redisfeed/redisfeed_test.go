package redisfeed

import (
	"context"
	"os"
	"testing"
	"time"

	"eventRegistrar/internal/lib/logger/handlers/slogdiscard"
	"eventRegistrar/internal/models"

	"github.com/google/uuid"
	"github.com/redis/rueidis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFeed(t *testing.T) *Feed {
	t.Helper()

	addr := os.Getenv("REGISTRAR_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("REGISTRAR_TEST_REDIS_ADDR is not set")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{InitAddress: []string{addr}})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return New(slogdiscard.NewDiscardLogger(), client, "registrar:test:"+uuid.NewString())
}

func TestPublishSubscribe(t *testing.T) {
	feed := newTestFeed(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	changes, err := feed.Subscribe(ctx)
	require.NoError(t, err)

	want := models.Change{
		Collection: models.CollectionRegistrations,
		Op:         models.OpUpdate,
		ID:         "r1",
		EventID:    "e1",
		UserID:     "student1",
	}

	// the subscription is established asynchronously; keep publishing until it lands
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case got := <-changes:
			if got.IsResync() {
				continue
			}
			assert.Equal(t, want, got)
			return
		case <-ticker.C:
			require.NoError(t, feed.Publish(ctx, want))
		case <-ctx.Done():
			t.Fatal("no change received")
		}
	}
}

func TestSubscribeClosesOnCancel(t *testing.T) {
	feed := newTestFeed(t)

	ctx, cancel := context.WithCancel(context.Background())

	changes, err := feed.Subscribe(ctx)
	require.NoError(t, err)

	cancel()

	for range changes {
	}
}
