package log

import (
	"bytes"
	"testing"

	"github.com/kataras/golog"
	"github.com/stretchr/testify/assert"
)

func TestNewGologLogger(t *testing.T) {
	logger := NewGologLogger(golog.New())

	assert.NotNil(t, logger)
	assert.Equal(t, LogLevelInfo, logger.GetLevel())
}

func TestGologLogger_LevelControl(t *testing.T) {
	logger := NewGologLogger(golog.New())

	logger.SetLevel(LogLevelDebug)
	assert.Equal(t, LogLevelDebug, logger.GetLevel())

	logger.SetLevel(LogLevelError)
	assert.Equal(t, LogLevelError, logger.GetLevel())

	logger.SetLevel(LogLevelNone)
	assert.Equal(t, LogLevelNone, logger.GetLevel())
}

func TestGologLogger_FormatsMessages(t *testing.T) {
	var buf bytes.Buffer
	glogger := golog.New()
	glogger.SetOutput(&buf)
	logger := NewGologLogger(glogger)
	logger.SetLevel(LogLevelDebug)

	logger.Info("PromptBudget model=%s threshold=%d", "all-MiniLM-L6-v2", 220)

	assert.Contains(t, buf.String(), "PromptBudget model=all-MiniLM-L6-v2 threshold=220")
}

func TestGologLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	glogger := golog.New()
	glogger.SetOutput(&buf)
	logger := NewGologLogger(glogger)
	logger.SetLevel(LogLevelWarn)

	logger.Debug("debug %d", 1)
	logger.Info("info %d", 2)
	assert.Empty(t, buf.String())

	logger.Warn("Token budget exceeded (threshold=%d)", 220)
	assert.Contains(t, buf.String(), "Token budget exceeded (threshold=220)")
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger(LogLevelError)
	assert.Equal(t, LogLevelError, logger.GetLevel())
}
