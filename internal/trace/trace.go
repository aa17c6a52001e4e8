// Package trace records the diagnostic events of the relay loops.
//
// Events are observational only; their text is not a stable interface.
// Three Tracer implementations are provided:
//   - Logger: formats each event synchronously through a LoggerFunc
//   - Ring: buffers events in a sharded lock-free ring, drained by one goroutine
//   - Recorder: keeps events in memory, for tests
package trace

import (
	"time"

	"github.com/petermattis/goid"

	"github.com/randomizedcoder/tick-relay/internal/translate"
)

var f = translate.From

// LoggerFunc receives formatted diagnostic lines.
type LoggerFunc func(format string, args ...any)

// Tracer receives events from any goroutine.
type Tracer interface {
	Trace(e Event)
}

// Kind identifies what happened.
type Kind uint8

const (
	ProducerStart Kind = iota
	ProducerSent
	ProducerStop
	ConsumerStart
	ConsumerReceived
	ConsumerLagged
	ConsumerStop
	CallbackPanic
	CancelRequested
)

// Reason explains why a loop stopped.
type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonSentinel
	ReasonSignal
	ReasonClosed
	ReasonContext
)

func (r Reason) String() string {
	switch r {
	case ReasonSentinel:
		return "sentinel"
	case ReasonSignal:
		return "signal"
	case ReasonClosed:
		return "closed"
	case ReasonContext:
		return "context"
	}
	return "none"
}

// Event is one diagnostic record.
type Event struct {
	Kind Kind

	// Value is the counter value for sends and receives, or the number
	// of skipped values for ConsumerLagged.
	Value  uint64
	Reason Reason

	// Goroutine is the id of the emitting goroutine.
	Goroutine int64
	Time      time.Time
}

// New stamps an event with the calling goroutine and the current time.
func New(kind Kind) Event {
	return Event{
		Kind:      kind,
		Goroutine: goid.Get(),
		Time:      time.Now(),
	}
}

// WithValue returns a copy of e carrying v.
func (e Event) WithValue(v uint64) Event {
	e.Value = v
	return e
}

// WithReason returns a copy of e carrying r.
func (e Event) WithReason(r Reason) Event {
	e.Reason = r
	return e
}

func (e Event) String() string {
	switch e.Kind {
	case ProducerStart:
		return f("producer: started")
	case ProducerSent:
		return f("producer: sent %d", e.Value)
	case ProducerStop:
		return f("producer: stopped (%s)", e.Reason)
	case ConsumerStart:
		return f("consumer: started")
	case ConsumerReceived:
		return f("consumer: received %d", e.Value)
	case ConsumerLagged:
		return f("consumer: lagged, skipped %d", e.Value)
	case ConsumerStop:
		return f("consumer: stopped (%s)", e.Reason)
	case CallbackPanic:
		return f("consumer: callback panicked on %d", e.Value)
	case CancelRequested:
		return f("cancel requested")
	}
	return f("unknown event %d", e.Kind)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Trace(Event) {}

// Logger writes each event as it happens.
type Logger struct {
	logf LoggerFunc
}

// NewLogger creates a Logger writing through logf.
func NewLogger(logf LoggerFunc) *Logger {
	return &Logger{logf: logf}
}

func (l *Logger) Trace(e Event) {
	l.logf("[g%d] %s", e.Goroutine, e)
}
