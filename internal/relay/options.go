package relay

import (
	"time"

	"github.com/randomizedcoder/tick-relay/internal/cancel"
	"github.com/randomizedcoder/tick-relay/internal/tick"
	"github.com/randomizedcoder/tick-relay/internal/trace"
)

type options struct {
	interval time.Duration
	pacing   tick.Pacing
	capacity int
	logf     trace.LoggerFunc
	tracer   trace.Tracer
	signal   cancel.Canceler
}

func defaultOptions() options {
	return options{
		interval: tick.DefaultInterval,
		pacing:   tick.PaceSleep,
		capacity: Capacity,
		logf:     func(string, ...any) {},
		tracer:   trace.Nop{},
	}
}

// Option configures a Relay.
type Option func(*options)

// WithInterval sets the producer's delay between publishes.
func WithInterval(d time.Duration) Option {
	return func(o *options) { o.interval = d }
}

// WithPacing selects how the producer waits between publishes.
func WithPacing(p tick.Pacing) Option {
	return func(o *options) { o.pacing = p }
}

// WithCapacity sets the bus size. Smaller buffers lose values sooner
// when the callback is slow.
func WithCapacity(n int) Option {
	return func(o *options) { o.capacity = n }
}

// WithLogger sets where diagnostic lines go. Unless WithTracer is also
// given, loop events are written there too.
func WithLogger(l trace.LoggerFunc) Option {
	return func(o *options) {
		o.logf = l
		if _, ok := o.tracer.(trace.Nop); ok {
			o.tracer = trace.NewLogger(l)
		}
	}
}

// WithTracer sets the receiver of loop events.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// WithCanceler replaces the relay's signal. cancel.NewAtomic gives a
// purely polled flag: the producer then always sleeps a full interval.
func WithCanceler(c cancel.Canceler) Option {
	return func(o *options) { o.signal = c }
}
