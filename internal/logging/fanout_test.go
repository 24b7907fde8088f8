package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFanoutDeliversToInterestedTargets(t *testing.T) {
	var info, errOnly bytes.Buffer
	fanout := NewFanout(
		slog.NewJSONHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&errOnly, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	logger := slog.New(fanout)

	logger.Info("routine")
	logger.Error("broken")

	assert.Contains(t, info.String(), "routine")
	assert.Contains(t, info.String(), "broken")
	assert.NotContains(t, errOnly.String(), "routine")
	assert.Contains(t, errOnly.String(), "broken")
}

func TestFanoutEnabledWhenAnyTargetIs(t *testing.T) {
	var buf bytes.Buffer
	fanout := NewFanout(
		slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	require.False(t, fanout.Enabled(context.Background(), slog.LevelInfo))
	require.True(t, fanout.Enabled(context.Background(), slog.LevelError))
}
