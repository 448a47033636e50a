package telemetry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInfoWritesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	prev := L()
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(prev) })

	Info("analysis.status", map[string]any{
		"analysis_id":       "a1",
		"status_transition": "queued->processing",
	})
	Error("analysis.failed", map[string]any{"err": errors.New("boom")})

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "analysis.status", entries[0].Message)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "a1", fields["analysis_id"])
	assert.Equal(t, "queued->processing", fields["status_transition"])

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[1].ContextMap()["err"])
}

func TestSetLoggerNil(t *testing.T) {
	prev := L()
	t.Cleanup(func() { SetLogger(prev) })

	SetLogger(nil)
	assert.NotNil(t, L())
	Info("ignored", nil)
}

func TestNewLevels(t *testing.T) {
	assert.True(t, New("debug", "json").Core().Enabled(zapcore.DebugLevel))
	assert.False(t, New("warn", "console").Core().Enabled(zapcore.InfoLevel))
	assert.True(t, New("", "").Core().Enabled(zapcore.InfoLevel))
}
