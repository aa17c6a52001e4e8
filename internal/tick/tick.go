// Package tick paces a periodic producer.
//
// This package offers two implementations of the Delay interface:
//   - Sleep: a fixed gap after each call, the next interval starts when Wait is called
//   - StdTicker: a fixed rate driven by time.Ticker, slow iterations do not drift
//
// Both wait on a wake channel so a cancelled producer does not sleep out
// the rest of its interval.
package tick

import (
	"errors"
	"fmt"
	"time"
)

// Delay suspends a loop between iterations.
//
// Implementations are used by a single goroutine.
type Delay interface {
	// Wait blocks for one interval. It returns false if wake was closed
	// before the interval elapsed. A nil wake channel never fires.
	Wait(wake <-chan struct{}) bool

	// Interval returns the configured interval.
	Interval() time.Duration

	// Stop releases any resources held by the delay.
	// After Stop, the delay should not be used.
	Stop()
}

// DefaultInterval is the gap between two producer publishes.
const DefaultInterval = time.Second

// Pacing selects a Delay implementation.
type Pacing int

const (
	// PaceSleep waits a full interval after each publish, so a slow
	// iteration pushes every later publish back.
	PaceSleep Pacing = iota
	// PaceTicker publishes at a fixed rate; ticks missed while the
	// producer was busy are dropped, not queued.
	PaceTicker
)

// ErrUnknownPacing is returned by ParsePacing for a name other than
// "sleep" or "ticker".
var ErrUnknownPacing = errors.New("tick: unknown pacing")

// ParsePacing maps "sleep" and "ticker" to a Pacing.
func ParsePacing(s string) (Pacing, error) {
	switch s {
	case "sleep", "":
		return PaceSleep, nil
	case "ticker":
		return PaceTicker, nil
	}
	return PaceSleep, fmt.Errorf("%w: %q", ErrUnknownPacing, s)
}

func (p Pacing) String() string {
	switch p {
	case PaceSleep:
		return "sleep"
	case PaceTicker:
		return "ticker"
	}
	return fmt.Sprintf("Pacing(%d)", int(p))
}

// New creates the Delay selected by p. A non-positive interval always
// yields a Sleep, since time.Ticker rejects it.
func New(p Pacing, interval time.Duration) Delay {
	if p == PaceTicker && interval > 0 {
		return NewTicker(interval)
	}
	return NewSleep(interval)
}
