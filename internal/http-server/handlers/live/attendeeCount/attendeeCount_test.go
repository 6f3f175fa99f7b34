package attendeeCount

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"eventRegistrar/internal/dispatcher"
	"eventRegistrar/internal/http-server/handlers/live/attendeeCount/mocks"
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

func (h *fakeHandle) Unsubscribe() {
	h.once.Do(func() { close(h.done) })
}

func TestAttendeeCountStream(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		subscribe func(h *fakeHandle) any
		subErr    error
		frames    []string
		closeCode int
		released  bool
	}{
		{
			name: "Snapshots",
			subscribe: func(h *fakeHandle) any {
				return func(_ context.Context, _ string, onUpdate func(int), _ func(error)) (dispatcher.Handle, error) {
					onUpdate(0)
					onUpdate(2)
					return h, nil
				}
			},
			frames: []string{
				`{"type":"snapshot","data":{"event_id":"e1","attendee_count":0}}`,
				`{"type":"snapshot","data":{"event_id":"e1","attendee_count":2}}`,
			},
			released: true,
		},
		{
			name: "Query fails later",
			subscribe: func(h *fakeHandle) any {
				return func(_ context.Context, _ string, onUpdate func(int), onError func(error)) (dispatcher.Handle, error) {
					onUpdate(1)
					go onError(fmt.Errorf("views.AttendeeCount: %w", models.ErrStoreUnavailable))
					return h, nil
				}
			},
			frames: []string{
				`{"type":"snapshot","data":{"event_id":"e1","attendee_count":1}}`,
				`{"type":"error","error":"store unavailable"}`,
			},
			closeCode: websocket.ClosePolicyViolation,
			released:  true,
		},
		{
			name:      "Unknown event",
			subErr:    fmt.Errorf("event e1: %w", models.ErrNotFound),
			frames:    []string{`{"type":"error","error":"not found"}`},
			closeCode: websocket.ClosePolicyViolation,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			handle := &fakeHandle{done: make(chan struct{})}

			sub := mocks.NewAttendeeCountSubscriber(t)
			if tc.subscribe != nil {
				sub.On("SubscribeAttendeeCount", mock.Anything, "e1", mock.Anything, mock.Anything).
					Return(tc.subscribe(handle))
			} else {
				sub.On("SubscribeAttendeeCount", mock.Anything, "e1", mock.Anything, mock.Anything).
					Return(nil, tc.subErr)
			}

			router := chi.NewRouter()
			router.Get("/ws/events/{id}/attendees", New(slogdiscard.NewDiscardLogger(), sub, stream.NewUpgrader([]string{"*"})))

			srv := httptest.NewServer(router)
			defer srv.Close()

			conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/events/e1/attendees", nil)
			require.NoError(t, err)
			defer conn.Close()

			_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

			for _, want := range tc.frames {
				_, data, err := conn.ReadMessage()
				require.NoError(t, err)
				assert.JSONEq(t, want, string(data))
			}

			if tc.closeCode != 0 {
				_, _, err = conn.ReadMessage()
				assert.True(t, websocket.IsCloseError(err, tc.closeCode), "unexpected read result: %v", err)
			} else {
				require.NoError(t, conn.Close())
			}

			if tc.released {
				select {
				case <-handle.done:
				case <-time.After(2 * time.Second):
					t.Fatal("subscription was not released")
				}
			}
		})
	}
}
