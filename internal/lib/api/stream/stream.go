// Package stream pushes live query results to WebSocket clients.
package stream

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"eventRegistrar/internal/lib/api/response"
	"eventRegistrar/internal/lib/logger/sl"

	"github.com/gorilla/websocket"
)

const (
	FrameSnapshot = "snapshot"
	FrameError    = "error"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

type Frame struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// NewUpgrader accepts connections from the listed origins. "*" allows any.
func NewUpgrader(allowedOrigins []string) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || slices.Contains(allowedOrigins, "*") {
				return true
			}
			return slices.Contains(allowedOrigins, origin)
		},
	}
}

// Conn serializes writes to one client. Snapshot and Fail may be called from
// subscription callbacks while Wait runs on the handler goroutine.
type Conn struct {
	ws  *websocket.Conn
	log *slog.Logger

	mu     sync.Mutex
	closed bool
}

func Upgrade(w http.ResponseWriter, r *http.Request, up *websocket.Upgrader, log *slog.Logger) (*Conn, error) {
	ws, err := up.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}

	return &Conn{ws: ws, log: log}, nil
}

func (c *Conn) Snapshot(data any) {
	c.write(Frame{Type: FrameSnapshot, Data: data})
}

// Fail sends an error frame and closes the connection, which ends Wait.
func (c *Conn) Fail(err error) {
	_, resp := response.FromError(err, "live query failed")

	c.write(Frame{Type: FrameError, Error: resp.Error})

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	_ = c.ws.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, resp.Error),
		time.Now().Add(writeWait),
	)
	c.closeLocked()
}

func (c *Conn) write(frame Frame) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.ws.WriteJSON(frame); err != nil {
		c.log.Debug("failed to write frame", slog.String("type", frame.Type), sl.Err(err))
		c.closeLocked()
	}
}

// Wait reads until the client goes away, the connection is closed or ctx is
// done, keeping it alive with pings meanwhile. Client messages are ignored.
func (c *Conn) Wait(ctx context.Context) {
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)

	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				c.Close()
				return
			case <-ticker.C:
				c.mu.Lock()
				if !c.closed {
					_ = c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
				}
				c.mu.Unlock()
			}
		}
	}()

	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closeLocked()
}

func (c *Conn) closeLocked() {
	if c.closed {
		return
	}

	c.closed = true
	_ = c.ws.Close()
}
