package bus

import "sync/atomic"

// Receiver is one subscriber's view of a Bus.
//
// CONTRACT: Only ONE goroutine may call Recv() or TryRecv().
type Receiver[T any] struct {
	bus  *Bus[T]
	next atomic.Uint64 // written only by the receiving goroutine

	closed atomic.Bool

	// guard: detect concurrent misuse
	recvActive atomic.Uint32
}

// Recv blocks until a value is available, the bus is closed and drained,
// or wake is closed.
//
// Returns *LaggedError when values were overwritten before they could be
// read; the next call continues from the oldest retained value.
// A nil wake channel never fires.
func (r *Receiver[T]) Recv(wake <-chan struct{}) (T, error) {
	r.enter()
	defer r.recvActive.Store(0)

	for {
		v, notify, err := r.poll()
		if notify == nil {
			return v, err
		}

		select {
		case <-notify:
		case <-wake:
			// A value may have raced the wake-up; deliver it first.
			if v, notify, err := r.poll(); notify == nil {
				return v, err
			}
			var zero T
			return zero, ErrWoken
		}
	}
}

// TryRecv returns the next value without blocking.
// Returns false if nothing is available; err reports lag or closure.
func (r *Receiver[T]) TryRecv() (T, bool, error) {
	r.enter()
	defer r.recvActive.Store(0)

	v, notify, err := r.poll()
	if notify != nil {
		return v, false, nil
	}
	return v, err == nil, err
}

// Len returns how many retained values this receiver has not read yet.
func (r *Receiver[T]) Len() int {
	b := r.bus
	b.mu.RLock()
	defer b.mu.RUnlock()

	next := max(r.next.Load(), b.oldest())
	return int(b.head - next)
}

// Close unsubscribes the receiver. Safe to call multiple times.
func (r *Receiver[T]) Close() {
	if !r.closed.CompareAndSwap(false, true) {
		return
	}

	b := r.bus
	b.mu.Lock()
	b.receivers--
	b.mu.Unlock()
}

func (r *Receiver[T]) enter() {
	if !r.recvActive.CompareAndSwap(0, 1) {
		panic("bus: concurrent Recv on Receiver - only one goroutine may receive")
	}
}

// poll reads the next value under the read lock. A non-nil notify channel
// means nothing is ready and the caller should wait on it.
func (r *Receiver[T]) poll() (v T, notify <-chan struct{}, err error) {
	b := r.bus
	b.mu.RLock()
	defer b.mu.RUnlock()

	if r.closed.Load() {
		return v, nil, ErrClosed
	}

	next := r.next.Load()
	if next < b.head {
		if oldest := b.oldest(); next < oldest {
			r.next.Store(oldest)
			return v, nil, &LaggedError{Skipped: oldest - next}
		}

		r.next.Store(next + 1)
		return b.buf[next&b.mask], nil, nil
	}

	if b.closed {
		return v, nil, ErrClosed
	}
	return v, b.notify, nil
}
