package core

import (
	"fmt"
	"sync"
)

// BuildLimiter enforces a maximum number of allowed builder invocations per
// run. Catalog and knowledge builds are expensive (typically model-backed),
// so runaway retry loops in callers are capped here.
type BuildLimiter struct {
	max   int
	count int
	mu    sync.Mutex
}

// NewBuildLimiter creates a new limiter with a max number of builds.
// If max == 0, unlimited builds are allowed.
func NewBuildLimiter(max int) *BuildLimiter {
	return &BuildLimiter{max: max}
}

// Increment increases the build counter and returns an error if the limit is exceeded.
func (bl *BuildLimiter) Increment() error {
	bl.mu.Lock()
	defer bl.mu.Unlock()

	bl.count++
	if bl.max > 0 && bl.count > bl.max {
		return fmt.Errorf("exceeded max builder invocations: %d", bl.max)
	}

	return nil
}

// Count returns the current number of builds made.
func (bl *BuildLimiter) Count() int {
	bl.mu.Lock()
	defer bl.mu.Unlock()

	return bl.count
}

// Remaining returns how many builds are left before hitting the limit.
func (bl *BuildLimiter) Remaining() int {
	bl.mu.Lock()
	defer bl.mu.Unlock()

	if bl.max == 0 {
		return -1 // unlimited
	}

	return bl.max - bl.count
}
