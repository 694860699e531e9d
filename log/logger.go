package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

// Prefix starts every line written by the loggers of this package.
const Prefix = "[ontollm] "

// LogLevel is a logging severity. Messages below a logger's level are
// dropped.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
	// LogLevelNone disables all logging.
	LogLevelNone
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR", "NONE"}

func (l LogLevel) String() string {
	if l >= 0 && int(l) < len(levelNames) {
		return levelNames[l]
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(l))
}

// ParseLevel maps a LOG_LEVEL value such as "debug" or "WARNING" to a
// LogLevel. Unknown names resolve to LogLevelInfo.
func ParseLevel(name string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return LogLevelDebug
	case "WARN", "WARNING":
		return LogLevelWarn
	case "ERROR", "CRITICAL", "FATAL":
		return LogLevelError
	case "NONE", "OFF", "DISABLE":
		return LogLevelNone
	default:
		return LogLevelInfo
	}
}

// Logger is the leveled, printf-style logger every component accepts.
type Logger interface {
	Debug(format string, v ...any)
	Info(format string, v ...any)
	Warn(format string, v ...any)
	Error(format string, v ...any)
}

// DefaultLogger writes "[LEVEL] message" lines through the standard
// library logger. It is the fallback before NewLogger is configured.
type DefaultLogger struct {
	out   *log.Logger
	level LogLevel
}

// NewDefaultLogger logs to stderr at level.
func NewDefaultLogger(level LogLevel) *DefaultLogger {
	return NewCustomLogger(os.Stderr, level)
}

// NewCustomLogger logs to w at level.
func NewCustomLogger(w io.Writer, level LogLevel) *DefaultLogger {
	return &DefaultLogger{out: log.New(w, Prefix, log.LstdFlags), level: level}
}

func (l *DefaultLogger) logf(level LogLevel, format string, v []any) {
	if level < l.level || l.level == LogLevelNone {
		return
	}
	l.out.Printf("["+level.String()+"] "+format, v...)
}

func (l *DefaultLogger) Debug(format string, v ...any) { l.logf(LogLevelDebug, format, v) }
func (l *DefaultLogger) Info(format string, v ...any)  { l.logf(LogLevelInfo, format, v) }
func (l *DefaultLogger) Warn(format string, v ...any)  { l.logf(LogLevelWarn, format, v) }
func (l *DefaultLogger) Error(format string, v ...any) { l.logf(LogLevelError, format, v) }

// NoOpLogger discards everything.
type NoOpLogger struct{}

func (*NoOpLogger) Debug(string, ...any) {}
func (*NoOpLogger) Info(string, ...any)  {}
func (*NoOpLogger) Warn(string, ...any)  {}
func (*NoOpLogger) Error(string, ...any) {}

type holder struct{ Logger }

// the stream goroutines of the agent read it while the CLI may replace it
var defaultLogger atomic.Pointer[holder]

func init() {
	defaultLogger.Store(&holder{NewDefaultLogger(LogLevelInfo)})
}

// SetDefaultLogger replaces the package-level logger used by components
// built without an explicit logger. A nil logger disables logging.
func SetDefaultLogger(logger Logger) {
	if logger == nil {
		logger = &NoOpLogger{}
	}
	defaultLogger.Store(&holder{logger})
}

// GetDefaultLogger returns the package-level logger.
func GetDefaultLogger() Logger {
	return defaultLogger.Load().Logger
}

// SetLogLevel installs a stderr DefaultLogger at level.
func SetLogLevel(level LogLevel) {
	SetDefaultLogger(NewDefaultLogger(level))
}

func Debug(format string, v ...any) { GetDefaultLogger().Debug(format, v...) }
func Info(format string, v ...any)  { GetDefaultLogger().Info(format, v...) }
func Warn(format string, v ...any)  { GetDefaultLogger().Warn(format, v...) }
func Error(format string, v ...any) { GetDefaultLogger().Error(format, v...) }
