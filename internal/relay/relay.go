// Package relay runs a periodic uint8 producer and fans every value out to a
// consumer goroutine that forwards it to a Callback.
//
// The producer and the consumer share only a cancellation signal and a
// broadcast bus. Each loop stops on its own when it sees the sentinel value
// (255) or the signal; Cancel never interrupts a loop, it only sets the
// signal, wakes waits and closes the bus.
//
// Typical use:
//
//	r, err := relay.New(ctx, relay.CallbackFunc(func(v uint8) { ... }))
//	if err != nil {
//		return err
//	}
//	go r.Run(ctx)
//	...
//	r.Cancel()
//	r.Wait(ctx)
package relay

import (
	"context"
	"errors"
	"math"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/randomizedcoder/tick-relay/internal/bus"
	"github.com/randomizedcoder/tick-relay/internal/cancel"
	"github.com/randomizedcoder/tick-relay/internal/trace"
	"github.com/randomizedcoder/tick-relay/internal/translate"
)

var f = translate.From

const (
	// Sentinel is the last value produced. Receiving it ends both loops.
	Sentinel = math.MaxUint8

	// Capacity is the default bus size, one slot per uint8 value.
	Capacity = math.MaxUint8 + 1
)

var (
	// ErrInvalidCallback is returned by New for a nil callback.
	ErrInvalidCallback = errors.New(f("relay: invalid callback"))

	// ErrAlreadyRunning is returned by Run when the producer already ran.
	ErrAlreadyRunning = errors.New(f("relay: producer already started"))
)

// Callback receives every value the consumer observes.
//
// Progress is called synchronously from the consumer goroutine; a callback
// that blocks stalls all later deliveries.
type Callback interface {
	Progress(v uint8)
}

// CallbackFunc is an adapter to allow the use of ordinary functions as callbacks.
type CallbackFunc func(v uint8)

// Progress calls fn(v).
func (fn CallbackFunc) Progress(v uint8) {
	fn(v)
}

// Relay owns the signal, the bus and the diagnostic counter.
type Relay struct {
	cb     Callback
	opts   options
	signal cancel.Canceler
	bus    *bus.Bus[uint8]

	// counter mirrors the last produced value. Any reader takes mu.
	mu      sync.Mutex
	counter uint8

	started atomic.Bool
	done    chan struct{}
}

// New validates cb, subscribes the consumer and starts it.
//
// New returns once the consumer goroutine is executing. If ctx ends first
// the relay is cancelled and ctx.Err() returned.
func New(ctx context.Context, cb Callback, opts ...Option) (*Relay, error) {
	if isNil(cb) {
		return nil, ErrInvalidCallback
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	r := &Relay{
		cb:     cb,
		opts:   o,
		signal: o.signal,
		bus:    bus.New[uint8](o.capacity),
		done:   make(chan struct{}),
	}
	if r.signal == nil {
		// Derived from Background, so nothing registers with a parent and no
		// goroutine is started: a relay that ends on the sentinel without
		// Cancel leaves nothing behind once it is garbage collected.
		r.signal = cancel.NewContext(context.Background())
	}

	// Subscribe before the goroutine exists so no send can be missed.
	rx := r.bus.Subscribe()
	running := make(chan struct{})
	go r.consume(rx, running)

	select {
	case <-running:
		return r, nil
	case <-ctx.Done():
		r.Cancel()
		return nil, ctx.Err()
	}
}

// Cancel sets the signal, wakes any wait and closes the bus.
// It returns immediately and is safe to call any number of times.
func (r *Relay) Cancel() {
	r.trace(trace.New(trace.CancelRequested))
	r.signal.Cancel()
	r.bus.Close()
}

// Cancelled reports whether Cancel has been called.
func (r *Relay) Cancelled() bool {
	return r.signal.Done()
}

// Done returns a channel closed when the consumer has stopped.
func (r *Relay) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the consumer has stopped or ctx ends.
func (r *Relay) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Progress returns the last value written by the producer.
func (r *Relay) Progress() uint8 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counter
}

func (r *Relay) trace(e trace.Event) {
	r.opts.tracer.Trace(e)
}

func isNil(cb Callback) bool {
	if cb == nil {
		return true
	}
	v := reflect.ValueOf(cb)
	switch v.Kind() {
	case reflect.Func, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}
