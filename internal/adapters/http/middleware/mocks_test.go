package middleware

import (
	"context"
	"sync"

	"github.com/shyjal/goplaces/internal/domain"
)

type logEntry struct {
	level string
	msg   string
	args  []any
}

type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) record(level, msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, args: args})
}

func (l *recordingLogger) Debug(msg string, args ...any) { l.record("debug", msg, args...) }
func (l *recordingLogger) Info(msg string, args ...any)  { l.record("info", msg, args...) }
func (l *recordingLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args...) }
func (l *recordingLogger) Error(msg string, args ...any) { l.record("error", msg, args...) }

func (l *recordingLogger) With(args ...any) domain.LoggingRepository {
	return l
}

func (l *recordingLogger) countByMessage(msg string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	count := 0
	for _, e := range l.entries {
		if e.msg == msg {
			count++
		}
	}
	return count
}

type fakeLimiter struct {
	allow   bool
	err     error
	lastKey string
}

func (f *fakeLimiter) Allow(ctx context.Context, key string) (bool, error) {
	f.lastKey = key
	if f.err != nil {
		return false, f.err
	}
	return f.allow, nil
}
