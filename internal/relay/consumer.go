package relay

import (
	"errors"

	"github.com/randomizedcoder/tick-relay/internal/bus"
	"github.com/randomizedcoder/tick-relay/internal/trace"
)

// consume forwards every received value to the callback until it sees the
// sentinel, a closed bus or the signal.
func (r *Relay) consume(rx *bus.Receiver[uint8], running chan<- struct{}) {
	defer close(r.done)
	defer rx.Close()

	r.trace(trace.New(trace.ConsumerStart))
	close(running)

	wake := r.signal.Wake()
	for {
		v, err := rx.Recv(wake)
		switch {
		case err == nil:
			r.trace(trace.New(trace.ConsumerReceived).WithValue(uint64(v)))
			r.deliver(v)
			if v == Sentinel {
				r.stopConsumer(trace.ReasonSentinel)
				return
			}
		case errors.Is(err, bus.ErrClosed):
			r.stopConsumer(trace.ReasonClosed)
			return
		default:
			// Lag and wake-ups are transient; the signal check decides.
			var lagged *bus.LaggedError
			if errors.As(err, &lagged) {
				r.trace(trace.New(trace.ConsumerLagged).WithValue(lagged.Skipped))
			}
		}

		if r.signal.Done() {
			r.stopConsumer(trace.ReasonSignal)
			return
		}
	}
}

func (r *Relay) stopConsumer(reason trace.Reason) {
	r.trace(trace.New(trace.ConsumerStop).WithReason(reason))
}

// deliver calls the callback, recovering a panic so later values still
// reach it.
func (r *Relay) deliver(v uint8) {
	defer func() {
		if rec := recover(); rec != nil {
			r.trace(trace.New(trace.CallbackPanic).WithValue(uint64(v)))
			r.opts.logf("%s", f("relay: callback panic on %d: %v", v, rec))
		}
	}()
	r.cb.Progress(v)
}
