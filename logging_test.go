package actorloop

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type capturingLogger struct {
	lines []string
}

func (l *capturingLogger) Logf(level LogLevel, format string, args ...any) {
	l.lines = append(l.lines, level.String())
}

func TestSetLoggerInstallsGlobal(t *testing.T) {
	defer SetLogger(nil)

	cl := &capturingLogger{}
	SetLogger(cl)
	getGlobalLogger().Logf(LevelWarn, "test")

	assert.Equal(t, []string{"WARN"}, cl.lines)
}

func TestSetLoggerNilFallsBackToNoOp(t *testing.T) {
	defer SetLogger(nil)

	SetLogger(nil)
	assert.NotPanics(t, func() { getGlobalLogger().Logf(LevelError, "unreachable") })
}

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Contains(t, LogLevel(99).String(), "UNKNOWN")
}
