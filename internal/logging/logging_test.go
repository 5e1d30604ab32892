package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingHandler struct{ calls int }

func (f *failingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (f *failingHandler) Handle(context.Context, slog.Record) error {
	f.calls++
	return errors.New("sink down")
}
func (f *failingHandler) WithAttrs([]slog.Attr) slog.Handler { return f }
func (f *failingHandler) WithGroup(string) slog.Handler      { return f }

func TestMultiHandlerContinuesPastFailure(t *testing.T) {
	var buf bytes.Buffer
	failing := &failingHandler{}
	m := NewMultiHandler(failing, slog.NewJSONHandler(&buf, nil))

	logger := slog.New(m).With("request_id", "r-1")
	logger.Info("hello")

	assert.Equal(t, 1, failing.calls)
	assert.Contains(t, buf.String(), `"request_id":"r-1"`)
	assert.Contains(t, buf.String(), `"msg":"hello"`)
}

func TestToSystemLog(t *testing.T) {
	rec := slog.NewRecord(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), slog.LevelError, "payment failed", 0)
	rec.AddAttrs(
		slog.String("user_id", "u-1"),
		slog.String("error", "conflict"),
		slog.Float64("latency_ms", 12.6),
		slog.String("milestone_id", "m-1"),
	)

	entry := toSystemLog(rec, []slog.Attr{slog.String("request_id", "req-9"), slog.String("action", "pay")})

	assert.Equal(t, "ERROR", entry.Level)
	assert.Equal(t, "payment failed", entry.Message)
	assert.Equal(t, "req-9", entry.RequestID)
	assert.Equal(t, "pay", entry.Action)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, "u-1", *entry.UserID)
	assert.Equal(t, "conflict", entry.Error)
	assert.Equal(t, 13, entry.LatencyMs)
	assert.JSONEq(t, `{"milestone_id":"m-1"}`, string(entry.Extra))
}

func TestPGHandlerLevels(t *testing.T) {
	h := &PGHandler{}
	assert.False(t, h.Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}
