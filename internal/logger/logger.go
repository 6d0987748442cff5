package logger

import (
	"sync"
)

// Log levels accepted in the log.level config key.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

var (
	globalLogger *Logger
	once         sync.Once
)

// Get returns the process-wide logger. The first call fixes the level;
// later calls return the same instance regardless of level.
func Get(level string) *Logger {
	once.Do(func() {
		globalLogger = newZapLogger(level)
	})
	return globalLogger
}

// Nop returns a logger that discards everything. Used by tests and by
// components constructed without a logger.
func Nop() *Logger {
	return nopLogger
}

// OrNop returns l, or the no-op logger when l is nil.
func OrNop(l *Logger) *Logger {
	if l == nil {
		return nopLogger
	}
	return l
}
