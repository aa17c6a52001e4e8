package relay

import (
	"context"

	"github.com/randomizedcoder/tick-relay/internal/tick"
	"github.com/randomizedcoder/tick-relay/internal/trace"
)

// Run counts from 1 to Sentinel, publishing each value and waiting one
// interval in between, until the sentinel is sent or the signal is set.
//
// Run returns nil in both cases. If ctx ends the run, the relay is
// cancelled and ctx.Err() returned. There is a single producer per
// relay: any later call returns ErrAlreadyRunning. The bus is closed when
// Run returns.
func (r *Relay) Run(ctx context.Context) error {
	if !r.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer r.bus.Close()

	// AfterFunc cancels from another goroutine; an expired ctx must stop
	// the producer before its first send.
	if ctx.Err() != nil {
		r.Cancel()
	}
	stop := context.AfterFunc(ctx, r.Cancel)
	defer stop()

	delay := tick.New(r.opts.pacing, r.opts.interval)
	defer delay.Stop()

	r.trace(trace.New(trace.ProducerStart))
	reason := r.produce(delay)

	var err error
	if reason == trace.ReasonSignal && ctx.Err() != nil {
		reason, err = trace.ReasonContext, ctx.Err()
	}
	r.trace(trace.New(trace.ProducerStop).WithReason(reason))
	return err
}

func (r *Relay) produce(delay tick.Delay) trace.Reason {
	wake := r.signal.Wake()

	var val uint8
	for {
		// Checked before the send so nothing is published once the
		// signal has been seen, including right after a wake-up.
		if r.signal.Done() {
			return trace.ReasonSignal
		}

		val++
		r.mu.Lock()
		r.counter = val
		r.mu.Unlock()

		// No receivers or a closed bus is not an error for the producer.
		if _, err := r.bus.Send(val); err == nil {
			r.trace(trace.New(trace.ProducerSent).WithValue(uint64(val)))
		}

		if val == Sentinel {
			return trace.ReasonSentinel
		}
		if r.signal.Done() {
			return trace.ReasonSignal
		}

		delay.Wait(wake)
	}
}
