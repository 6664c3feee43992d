package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestLogger_WritesJSONThroughZerolog(t *testing.T) {
	var buf bytes.Buffer
	logger := New("info", "json", &buf)

	logger.Info("team created",
		slog.String("team_id", "t1"),
		slog.Int("players", 3),
		slog.Duration("took", 2*time.Millisecond),
		slog.Any("error", errors.New("boom")),
	)

	line := decodeLine(t, &buf)
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "team created", line["message"])
	assert.Equal(t, "t1", line["team_id"])
	assert.EqualValues(t, 3, line["players"])
	assert.Equal(t, "boom", line["error"])
	assert.Contains(t, line, "time")
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := New("warn", "json", &buf)

	logger.Info("ignored")
	assert.Zero(t, buf.Len())
	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))

	logger.Error("kept")
	assert.Equal(t, "error", decodeLine(t, &buf)["level"])
}

func TestHandler_GroupsAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := New("debug", "json", &buf).With("component", "hub").WithGroup("session")

	logger.Debug("registered", slog.Uint64("id", 7), slog.Group("subs", slog.Int("count", 2)))

	line := decodeLine(t, &buf)
	assert.Equal(t, "hub", line["component"])
	assert.EqualValues(t, 7, line["session.id"])
	assert.EqualValues(t, 2, line["session.subs.count"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "debug", ParseLevel("DEBUG").String())
	assert.Equal(t, "warn", ParseLevel("warning").String())
	assert.Equal(t, "info", ParseLevel("nonsense").String())
	assert.Equal(t, "error", LevelName(slog.LevelError))
}
