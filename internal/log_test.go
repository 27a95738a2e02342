package internal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelError, ParseLogLevel("ERROR"))
	assert.Equal(t, LogLevelWarn, ParseLogLevel("warn"))
	assert.Equal(t, LogLevelDebug, ParseLogLevel(" debug "))
	assert.Equal(t, LogLevelTrace, ParseLogLevel("TRACE"))
	assert.Equal(t, LogLevelInfo, ParseLogLevel(""))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("verbose"))
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(LogLevelWarn, &buf)

	logger.Info("hidden %d", 1)
	logger.Debug("hidden %d", 2)
	assert.Empty(t, buf.String())

	logger.Warn("shown %s", "warning")
	assert.Contains(t, buf.String(), "shown warning")
	assert.Contains(t, buf.String(), `"level":"warn"`)

	logger.Error("failure")
	assert.Contains(t, buf.String(), "failure")
	assert.Equal(t, LogLevelWarn, logger.GetLevel())
}
