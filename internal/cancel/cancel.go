// Package cancel provides the cancellation signal shared by the relay loops.
//
// This package offers two implementations of the Canceler interface:
//   - AtomicCanceler: a polled atomic.Bool, observed only when a loop checks it
//   - ContextCanceler: the same flag backed by context.Context, which also
//     wakes goroutines blocked on Wake()
//
// Both are write-once: after Cancel, Done reports true forever.
package cancel

// Canceler provides cancellation signaling to workers.
//
// Implementations must be safe for concurrent use:
//   - Multiple goroutines may call Done() concurrently
//   - Cancel() may be called concurrently with Done()
type Canceler interface {
	// Done returns true if cancellation has been triggered.
	Done() bool

	// Cancel triggers cancellation. Safe to call multiple times.
	Cancel()

	// Wake returns a channel that is closed on cancellation.
	// A nil channel means the implementation can only be polled.
	Wake() <-chan struct{}
}
