package events

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"eventRegistrar/internal/dispatcher"
	"eventRegistrar/internal/http-server/handlers/live/events/mocks"
	"eventRegistrar/internal/lib/api/stream"
	"eventRegistrar/internal/lib/logger/handlers/slogdiscard"
	"eventRegistrar/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeHandle struct {
	once sync.Once
	done chan struct{}
}

func newFakeHandle() *fakeHandle {
	return &fakeHandle{done: make(chan struct{})}
}

func (h *fakeHandle) Unsubscribe() {
	h.once.Do(func() { close(h.done) })
}

func dial(t *testing.T, sub EventsSubscriber) *websocket.Conn {
	t.Helper()

	router := chi.NewRouter()
	router.Get("/ws/events", New(slogdiscard.NewDiscardLogger(), sub, stream.NewUpgrader(nil)))

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/events", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	return conn
}

func TestEventsStream(t *testing.T) {
	t.Parallel()

	handle := newFakeHandle()

	sub := mocks.NewEventsSubscriber(t)
	sub.On("SubscribeEvents", mock.Anything, mock.Anything, mock.Anything).Return(
		func(_ context.Context, onUpdate func([]models.Event), _ func(error)) (dispatcher.Handle, error) {
			onUpdate([]models.Event{})
			onUpdate([]models.Event{{ID: "e1", Name: "AI Workshop", Date: "2025-12-15", OrganizerID: "organizer1"}})
			return handle, nil
		},
	)

	conn := dial(t, sub)

	var frame stream.Frame
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, stream.FrameSnapshot, frame.Type)
	assert.Equal(t, []any{}, frame.Data)

	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"snapshot","data":[{"id":"e1","name":"AI Workshop","description":"","date":"2025-12-15",
		"location":"","organizer_id":"organizer1","created_at":"0001-01-01T00:00:00Z"}]}`, string(data))

	require.NoError(t, conn.Close())

	select {
	case <-handle.done:
	case <-time.After(2 * time.Second):
		t.Fatal("subscription was not released after the client left")
	}
}

func TestEventsStreamRefused(t *testing.T) {
	t.Parallel()

	sub := mocks.NewEventsSubscriber(t)
	sub.On("SubscribeEvents", mock.Anything, mock.Anything, mock.Anything).Return(nil, models.ErrForbidden)

	conn := dial(t, sub)

	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"error","error":"forbidden"}`, string(data))

	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation))
}
