package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFromEnv(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, levelFromEnv(in), in)
	}
}

func TestNewLoggerDropsTime(t *testing.T) {
	t.Setenv("OSMIUM_LOG_LEVEL", "")
	var buf bytes.Buffer
	log := newLogger(&buf, false)

	log.Debug("hidden")
	log.Info("shown", "component", "Test")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "component=Test")
	assert.NotContains(t, out, "time=")
}

func TestNewLoggerDebug(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, true)
	log.Debug("visible")
	assert.Contains(t, buf.String(), "msg=visible")
	assert.Contains(t, buf.String(), "source=")
}

func TestShortPath(t *testing.T) {
	assert.Equal(t, "internal/router/router.go", shortPath("/home/u/src/osmium-cli/internal/router/router.go"))
	assert.Equal(t, "main.go", shortPath("/elsewhere/main.go"))
}
