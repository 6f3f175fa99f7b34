package slogpretty

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestPrettyHandlerKeepsAttrsAcrossWith(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer

	opts := PrettyHandlerOptions{SlogOpts: &slog.HandlerOptions{Level: slog.LevelDebug}}
	log := slog.New(opts.NewPrettyHandler(&buf))

	log.With(slog.String("op", "first")).With(slog.String("event_id", "e1")).Info("attendee count delivered", slog.Int("count", 2))

	out := buf.String()
	assert.Contains(t, out, "INFO:")
	assert.Contains(t, out, "attendee count delivered")
	assert.Contains(t, out, `"op": "first"`)
	assert.Contains(t, out, `"event_id": "e1"`)
	assert.Contains(t, out, `"count": 2`)
}
