package capture

import (
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const skipLogInterval = 5 * time.Second

// skipLogger logs at most one message per key every interval and reports
// how many were dropped in between.
type skipLogger struct {
	mu         sync.Mutex
	logger     *slog.Logger
	interval   time.Duration
	limiters   map[string]*rate.Limiter
	suppressed map[string]int
}

func newSkipLogger(logger *slog.Logger, interval time.Duration) *skipLogger {
	return &skipLogger{
		logger:     logger,
		interval:   interval,
		limiters:   make(map[string]*rate.Limiter),
		suppressed: make(map[string]int),
	}
}

// Warn logs msg unless key was logged within the interval. Returns whether
// the message was written.
func (l *skipLogger) Warn(key, msg string, args ...any) bool {
	l.mu.Lock()
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(rate.Every(l.interval), 1)
		l.limiters[key] = lim
	}
	if !lim.Allow() {
		l.suppressed[key]++
		l.mu.Unlock()
		return false
	}
	dropped := l.suppressed[key]
	delete(l.suppressed, key)
	l.mu.Unlock()

	if dropped > 0 {
		args = append(args, "suppressed", dropped)
	}
	l.logger.Warn(msg, args...)
	return true
}
