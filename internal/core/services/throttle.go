package services

import "time"

// Throttle forwards at most one event per threshold window and drops the rest.
// It is leading-edge: the first event of a burst goes through immediately and
// nothing is queued or delayed.
//
// A Throttle is owned by the goroutine that delivers input and is not safe for
// concurrent use.
type Throttle struct {
	threshold time.Duration
	last      time.Time
	primed    bool
}

// NewThrottle creates a throttle with the given window.
func NewThrottle(threshold time.Duration) *Throttle {
	return &Throttle{threshold: threshold}
}

// Accept reports whether an event observed at now should be forwarded.
// An event is forwarded only if more than threshold has passed since the
// last forwarded event; dropped events do not move the window.
func (t *Throttle) Accept(now time.Time) bool {
	if t.primed && now.Sub(t.last) <= t.threshold {
		return false
	}
	t.last = now
	t.primed = true
	return true
}

// Threshold returns the configured window.
func (t *Throttle) Threshold() time.Duration {
	return t.threshold
}
