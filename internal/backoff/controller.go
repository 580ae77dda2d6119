// Package backoff decides whether transport failures are worth retrying and
// how long to wait before the next attempt.
package backoff

import (
	"time"
)

// Attempt records one retry decision. Appended, never mutated; kept for
// diagnostics only.
type Attempt struct {
	Number    int           `json:"attempt"`
	ErrorKind Kind          `json:"error_kind"`
	Delay     time.Duration `json:"delay"`
	Strategy  string        `json:"strategy"`
}

// Controller classifies failures and selects delays for one logical fetch.
// It is not safe for concurrent use; each fetch owns its own controller.
type Controller struct {
	strategy    Strategy
	maxAttempts int
	history     []Attempt
}

// New creates a controller. maxAttempts includes the initial attempt and is
// floored at 1.
func New(strategy Strategy, maxAttempts int) *Controller {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Controller{strategy: strategy, maxAttempts: maxAttempts}
}

// Decide reports whether the failed attempt (zero-based) should be retried
// and, if so, the delay to sleep first. A retry decision is recorded to the
// attempt history.
func (c *Controller) Decide(attempt int, err error, statusCode int) (time.Duration, bool) {
	if attempt >= c.maxAttempts-1 {
		return 0, false
	}
	kind, retriable := Classify(err, statusCode)
	if !retriable {
		return 0, false
	}
	delay := c.strategy.Delay(attempt)
	c.history = append(c.history, Attempt{
		Number:    attempt + 1,
		ErrorKind: kind,
		Delay:     delay,
		Strategy:  c.strategy.Name(),
	})
	return delay, true
}

// History returns the retry attempts recorded so far.
func (c *Controller) History() []Attempt {
	return c.history
}

// MaxAttempts returns the configured attempt budget.
func (c *Controller) MaxAttempts() int {
	return c.maxAttempts
}
