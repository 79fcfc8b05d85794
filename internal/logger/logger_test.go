package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelSetByName(t *testing.T) {
	defer Level.Set(slog.LevelInfo)

	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"err":     slog.LevelError,
	}
	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			Level.SetByName(name)
			assert.Equal(t, want, Level.lvl.Level())
		})
	}
}

func TestLoggerWith(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithHandler(slog.NewTextHandler(&buf, nil)).With(slog.String("component", "test"))

	l.Infof("compiled %d dashboards", 2)

	assert.Contains(t, buf.String(), "component=test")
	assert.Contains(t, buf.String(), "compiled 2 dashboards")
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() { l.Info("nothing") })
}
