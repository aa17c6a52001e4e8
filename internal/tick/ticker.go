package tick

import "time"

// StdTicker wraps time.Ticker.
//
// Wait blocks on the ticker channel; C exposes it for a caller's own select.
// Ticks missed while the caller was busy are dropped by time.Ticker, so the
// producer keeps its rate instead of bursting.
type StdTicker struct {
	ticker   *time.Ticker
	interval time.Duration
}

// NewTicker creates a StdTicker with the specified interval.
// The interval must be positive.
func NewTicker(interval time.Duration) *StdTicker {
	return &StdTicker{
		ticker:   time.NewTicker(interval),
		interval: interval,
	}
}

// Wait blocks until the next tick or until wake is closed.
func (t *StdTicker) Wait(wake <-chan struct{}) bool {
	select {
	case <-t.ticker.C:
		return true
	case <-wake:
		return false
	}
}

// C returns the ticker channel for use in a caller's own select.
func (t *StdTicker) C() <-chan time.Time {
	return t.ticker.C
}

// Stop stops the ticker and releases resources.
func (t *StdTicker) Stop() {
	t.ticker.Stop()
}

// Interval returns the ticker's interval.
func (t *StdTicker) Interval() time.Duration {
	return t.interval
}
