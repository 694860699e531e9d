package log

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LogLevelDebug},
		{" INFO ", LogLevelInfo},
		{"warning", LogLevelWarn},
		{"WARN", LogLevelWarn},
		{"error", LogLevelError},
		{"none", LogLevelNone},
		{"", LogLevelInfo},
		{"verbose", LogLevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestDefaultLogger_Prefix(t *testing.T) {
	var buf bytes.Buffer
	logger := NewCustomLogger(&buf, LogLevelInfo)

	logger.Debug("hidden")
	logger.Info("stage=%s", "lookup")

	out := buf.String()
	assert.Contains(t, out, "[ontollm] ")
	assert.Contains(t, out, "[INFO] stage=lookup")
	assert.NotContains(t, out, "hidden")
}

func TestSetDefaultLogger(t *testing.T) {
	prev := GetDefaultLogger()
	defer SetDefaultLogger(prev)

	var buf bytes.Buffer
	SetDefaultLogger(NewCustomLogger(&buf, LogLevelDebug))
	Debug("value=%d", 3)

	assert.Contains(t, buf.String(), "[DEBUG] value=3")
}

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "WARN", LogLevelWarn.String())
	assert.Equal(t, "UNKNOWN(9)", LogLevel(9).String())
}

func TestNoneDisablesDefaultLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewCustomLogger(&buf, LogLevelNone)
	logger.Error("boom")
	assert.Empty(t, buf.String())
}

func TestSetDefaultLoggerNil(t *testing.T) {
	prev := GetDefaultLogger()
	defer SetDefaultLogger(prev)

	SetDefaultLogger(nil)
	assert.IsType(t, &NoOpLogger{}, GetDefaultLogger())
}
