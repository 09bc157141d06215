package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel(" WARN "))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Level: "info", Format: "json", Output: &buf})

	logger.WithQueryID("q-1").Info("query complete", slog.Int("rows", 3))
	logger.Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, `"msg":"query complete"`)
	assert.Contains(t, out, `"query_id":"q-1"`)
	assert.Contains(t, out, `"rows":3`)
	assert.NotContains(t, out, "hidden")
}

func TestWithFieldsKeepsParentFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Format: "json", Output: &buf}).WithQueryID("q-3")

	logger.WithFields(slog.String("method", "join")).Info("eager load finished")
	logger.Info("untagged")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Contains(t, string(lines[0]), `"method":"join"`)
	assert.Contains(t, string(lines[0]), `"query_id":"q-3"`)
	assert.NotContains(t, string(lines[1]), "method", "WithFields returns a copy")
}

func TestMultiHandlerFansOut(t *testing.T) {
	var first, second bytes.Buffer
	handler := newMultiHandler(
		slog.NewTextHandler(&first, nil),
		slog.NewTextHandler(&second, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)
	logger := slog.New(handler).With(slog.String("entity", "planets"))

	logger.Info("info line")
	logger.Warn("warn line")

	assert.Contains(t, first.String(), "info line")
	assert.Contains(t, first.String(), "warn line")
	assert.NotContains(t, second.String(), "info line")
	assert.Contains(t, second.String(), "entity=planets")
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	require.NotNil(t, FromContext(ctx).Logger, "default logger when none is attached")
	assert.Empty(t, GetQueryID(ctx))

	logger := NewLogger(Config{Output: &bytes.Buffer{}})
	ctx = WithLogger(ctx, logger)
	ctx = WithQueryIDContext(ctx, "q-2")

	assert.Same(t, logger, FromContext(ctx))
	assert.Equal(t, "q-2", GetQueryID(ctx))
}
