package orchestrator

import "sync/atomic"

// backendCounter tracks rolling attempts and successes for one backend.
// Atomics keep concurrent orchestrations from losing updates; selection
// reads may lag slightly behind in-flight runs.
type backendCounter struct {
	attempts  atomic.Int64
	successes atomic.Int64
}

func (c *backendCounter) record(success bool) {
	c.attempts.Add(1)
	if success {
		c.successes.Add(1)
	}
}

// ratio returns successes/attempts. A backend with no attempts reads 1.0
// so an untried backend is never starved by one that has already failed.
func (c *backendCounter) ratio() float64 {
	attempts := c.attempts.Load()
	if attempts == 0 {
		return 1.0
	}
	return float64(c.successes.Load()) / float64(attempts)
}
