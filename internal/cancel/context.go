package cancel

import "context"

// ContextCanceler wraps context.Context for cancellation signaling.
//
// Done performs a non-blocking select on ctx.Done(). Unlike AtomicCanceler,
// blocked goroutines can select on Wake() and return as soon as Cancel runs.
type ContextCanceler struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewContext creates a ContextCanceler from a parent context.
// Cancelling the parent cancels the ContextCanceler.
func NewContext(parent context.Context) *ContextCanceler {
	ctx, cancel := context.WithCancel(parent)
	return &ContextCanceler{
		ctx:    ctx,
		cancel: cancel,
	}
}

// Done returns true if the context has been cancelled.
func (c *ContextCanceler) Done() bool {
	select {
	case <-c.ctx.Done():
		return true
	default:
		return false
	}
}

// Cancel triggers cancellation of the context.
func (c *ContextCanceler) Cancel() {
	c.cancel()
}

// Wake returns the context's Done channel.
func (c *ContextCanceler) Wake() <-chan struct{} {
	return c.ctx.Done()
}
