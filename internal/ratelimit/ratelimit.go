package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"timeliner/internal/logger"
)

// ModelLimiter caps the number of completion calls issued per budget window.
// A run that exhausts the budget keeps going: callers are expected to degrade
// (emit a marked error record) instead of blocking on the limiter.
type ModelLimiter struct {
	mu        sync.Mutex
	count     int
	max       int // 0 = unlimited
	resetTime time.Time
	window    time.Duration
}

func NewModelLimiter(max int) *ModelLimiter {
	return &ModelLimiter{
		max:       max,
		window:    24 * time.Hour,
		resetTime: time.Now().Add(24 * time.Hour),
	}
}

// Allow checks whether another completion call may be issued.
func (rl *ModelLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.checkReset()

	if rl.max > 0 && rl.count >= rl.max {
		logger.Warn("model call budget reached", "used", rl.count, "max", rl.max)
		return false
	}
	return true
}

// Use records one completion call against the budget.
func (rl *ModelLimiter) Use() error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.checkReset()

	if rl.max > 0 && rl.count >= rl.max {
		return fmt.Errorf("model call budget exceeded (%d/%d)", rl.count, rl.max)
	}

	rl.count++
	logger.Debug("model call budget", "used", rl.count, "max", rl.max)
	return nil
}

// Used reports how many calls were charged in the current window.
func (rl *ModelLimiter) Used() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.checkReset()
	return rl.count
}

func (rl *ModelLimiter) checkReset() {
	if time.Now().After(rl.resetTime) {
		rl.count = 0
		rl.resetTime = time.Now().Add(rl.window)
	}
}
