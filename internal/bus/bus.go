// Package bus provides a bounded broadcast ring with a single sender and
// any number of receivers.
//
// # Delivery
//
// Every receiver sees every value sent after it subscribed, in order, as
// long as it keeps up. The ring is shared by all receivers: when the sender
// wraps around, the oldest slot is overwritten. A receiver that fell behind
// gets a *LaggedError reporting how many values it lost, and resumes at the
// oldest value still retained.
//
// # Receiver Safety (IMPORTANT)
//
// A Receiver holds its own read position. It is NOT safe for multiple
// goroutines to call Recv() on the same Receiver concurrently; the
// implementation panics on misuse. Subscribe once per goroutine instead.
package bus

import (
	"errors"
	"sync"

	"github.com/randomizedcoder/tick-relay/internal/translate"
)

var f = translate.From

var (
	// ErrClosed is returned by Send after Close, and by Recv once a closed
	// bus has nothing left for the receiver.
	ErrClosed = errors.New(f("bus: closed"))

	// ErrNoReceivers is returned by Send when nobody is subscribed.
	// The value is not retained.
	ErrNoReceivers = errors.New(f("bus: no receivers"))

	// ErrWoken is returned by Recv when the wake channel closes first.
	ErrWoken = errors.New(f("bus: receive interrupted"))
)

// LaggedError reports values overwritten before a receiver could read them.
type LaggedError struct {
	Skipped uint64
}

func (e *LaggedError) Error() string {
	return f("bus: receiver lagged, skipped %d values", e.Skipped)
}

// Bus is a bounded broadcast ring.
//
// Send must only be called from one goroutine. Subscribe, Close and the
// accessors are safe from any goroutine.
type Bus[T any] struct {
	mu   sync.RWMutex
	buf  []T
	mask uint64

	head      uint64 // sequence number of the next send
	receivers int
	closed    bool

	// notify is closed and replaced on every send and on Close.
	notify chan struct{}
}

// New creates a Bus holding at least size values.
// Size will be rounded up to the next power of 2.
func New[T any](size int) *Bus[T] {
	n := uint64(1)
	for n < uint64(size) {
		n <<= 1
	}

	return &Bus[T]{
		buf:    make([]T, n),
		mask:   n - 1,
		notify: make(chan struct{}),
	}
}

// Send publishes v to every current receiver and returns how many there were.
//
// With no receivers the value is dropped and ErrNoReceivers returned.
// When the ring is full the oldest value is overwritten.
func (b *Bus[T]) Send(v T) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, ErrClosed
	}
	if b.receivers == 0 {
		return 0, ErrNoReceivers
	}

	b.buf[b.head&b.mask] = v
	b.head++

	close(b.notify)
	b.notify = make(chan struct{})

	return b.receivers, nil
}

// Subscribe creates a receiver positioned at the next send.
// Values sent before Subscribe returns are never delivered to it.
func (b *Bus[T]) Subscribe() *Receiver[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.receivers++
	r := &Receiver[T]{bus: b}
	r.next.Store(b.head)
	return r
}

// Close marks the bus closed and wakes all blocked receivers.
// Receivers still drain retained values before seeing ErrClosed.
// Safe to call multiple times.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	close(b.notify)
}

// Len returns the number of values currently retained in the ring.
func (b *Bus[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return int(min(b.head, uint64(len(b.buf))))
}

// Cap returns the capacity of the ring.
func (b *Bus[T]) Cap() int {
	return len(b.buf)
}

// Receivers returns the number of subscribed receivers.
func (b *Bus[T]) Receivers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.receivers
}

// oldest returns the sequence number of the oldest retained value.
// Must be called with b.mu held.
func (b *Bus[T]) oldest() uint64 {
	size := uint64(len(b.buf))
	if b.head < size {
		return 0
	}
	return b.head - size
}
