package tick

import "time"

// Sleep waits a full interval from each call to Wait.
//
// A single time.Timer is reused across calls.
type Sleep struct {
	interval time.Duration
	timer    *time.Timer
}

// NewSleep creates a Sleep with the specified interval.
func NewSleep(interval time.Duration) *Sleep {
	t := time.NewTimer(interval)
	t.Stop()
	return &Sleep{
		interval: interval,
		timer:    t,
	}
}

// Wait blocks for the interval or until wake is closed.
func (s *Sleep) Wait(wake <-chan struct{}) bool {
	s.timer.Reset(s.interval)

	select {
	case <-s.timer.C:
		return true
	case <-wake:
		s.timer.Stop()
		return false
	}
}

// Interval returns the sleep's interval.
func (s *Sleep) Interval() time.Duration {
	return s.interval
}

// Stop stops the underlying timer.
func (s *Sleep) Stop() {
	s.timer.Stop()
}
