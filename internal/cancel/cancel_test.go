package cancel_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randomizedcoder/tick-relay/internal/cancel"
)

func TestCanceler(t *testing.T) {
	testCases := []struct {
		name   string
		create func() cancel.Canceler
	}{
		{"Atomic", func() cancel.Canceler { return cancel.NewAtomic() }},
		{"Context", func() cancel.Canceler { return cancel.NewContext(context.Background()) }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := tc.create()
			assert.False(t, c.Done(), "Done() before Cancel()")

			c.Cancel()
			assert.True(t, c.Done(), "Done() after Cancel()")

			// Idempotent
			c.Cancel()
			c.Cancel()
			assert.True(t, c.Done(), "Done() after repeated Cancel()")
		})
	}
}

func TestAtomicCanceler_WakeIsNil(t *testing.T) {
	c := cancel.NewAtomic()
	assert.Nil(t, c.Wake())

	c.Cancel()
	assert.Nil(t, c.Wake())
}

func TestContextCanceler_Wake(t *testing.T) {
	c := cancel.NewContext(context.Background())
	wake := c.Wake()
	require.NotNil(t, wake)

	select {
	case <-wake:
		t.Fatal("wake channel closed before Cancel()")
	default:
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		c.Cancel()
	}()

	select {
	case <-wake:
	case <-time.After(time.Second):
		t.Fatal("wake channel not closed after Cancel()")
	}
	assert.True(t, c.Done())
}

func TestContextCanceler_Parent(t *testing.T) {
	parent, stop := context.WithCancel(context.Background())
	c := cancel.NewContext(parent)
	wake := c.Wake()
	require.NotNil(t, wake)
	assert.False(t, c.Done())

	stop()
	assert.True(t, c.Done(), "cancelling the parent cancels the child")
	select {
	case <-wake:
	case <-time.After(time.Second):
		t.Fatal("parent cancellation did not close the wake channel")
	}
}

// Run with: go test -race ./internal/cancel
func TestCanceler_Race(t *testing.T) {
	for _, c := range []cancel.Canceler{
		cancel.NewAtomic(),
		cancel.NewContext(context.Background()),
	} {
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Go(func() {
				for j := 0; j < 10000; j++ {
					_ = c.Done()
				}
			})
		}
		for i := 0; i < 3; i++ {
			wg.Go(c.Cancel)
		}
		wg.Wait()

		assert.True(t, c.Done())
	}
}
