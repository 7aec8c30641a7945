// Package throttle reproduces the throttled logging macros the original
// servo implementation built on (ROS's *_THROTTLE_NAMED family): a log
// statement keyed by name fires at most once per window, regardless of how
// often the call site is reached.
package throttle

import (
	"sync"
	"time"

	"go.viam.com/rdk/logging"
)

// Logger wraps a logging.Logger with a per-key cooldown window. The zero
// value is not usable; construct with New.
type Logger struct {
	logger logging.Logger
	window time.Duration

	mu   sync.Mutex
	last map[string]time.Time
}

// New returns a throttled logger that suppresses repeat log lines for the
// same key within window.
func New(logger logging.Logger, window time.Duration) *Logger {
	return &Logger{
		logger: logger,
		window: window,
		last:   make(map[string]time.Time),
	}
}

func (l *Logger) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	if t, ok := l.last[key]; ok && now.Sub(t) < l.window {
		return false
	}
	l.last[key] = now
	return true
}

// Warnf logs at Warn level, throttled by key.
func (l *Logger) Warnf(key, format string, args ...interface{}) {
	if l.allow(key) {
		l.logger.Warnf(format, args...)
	}
}

// Debugf logs at Debug level, throttled by key.
func (l *Logger) Debugf(key, format string, args ...interface{}) {
	if l.allow(key) {
		l.logger.Debugf(format, args...)
	}
}

// Errorf logs at Error level, throttled by key.
func (l *Logger) Errorf(key, format string, args ...interface{}) {
	if l.allow(key) {
		l.logger.Errorf(format, args...)
	}
}
