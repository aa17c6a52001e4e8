package trace

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	ring "github.com/randomizedcoder/go-lock-free-ring"

	"github.com/randomizedcoder/tick-relay/internal/cancel"
	"github.com/randomizedcoder/tick-relay/internal/tick"
)

// Ring defers formatting to a single drain goroutine.
//
// Trace never blocks: events are written to a sharded lock-free ring,
// one shard picked per emitting goroutine. When the shard is full the
// event is dropped and counted. The drain goroutine empties the ring
// every flush interval and once more on Close.
type Ring struct {
	ring   *ring.ShardedRing
	shards uint64
	logf   LoggerFunc

	ticker *tick.StdTicker
	stop   *cancel.ContextCanceler
	done   chan struct{}

	pending atomic.Uint64 // drops not yet reported
	dropped atomic.Uint64
}

// NewRing starts a Ring with the given total capacity and shard count.
func NewRing(capacity, shards uint64, flush time.Duration, logf LoggerFunc) (*Ring, error) {
	if shards == 0 {
		shards = 1
	}
	rb, err := ring.NewShardedRing(capacity, shards)
	if err != nil {
		return nil, fmt.Errorf("trace: ring: %w", err)
	}

	r := &Ring{
		ring:   rb,
		shards: shards,
		logf:   logf,
		ticker: tick.NewTicker(flush),
		stop:   cancel.NewContext(context.Background()),
		done:   make(chan struct{}),
	}
	go r.run()
	return r, nil
}

func (r *Ring) Trace(e Event) {
	if !r.ring.Write(uint64(e.Goroutine)%r.shards, e) {
		r.pending.Add(1)
		r.dropped.Add(1)
	}
}

// Dropped returns how many events were lost to a full shard.
func (r *Ring) Dropped() uint64 {
	return r.dropped.Load()
}

// Close drains the remaining events and stops the drain goroutine.
// Events traced after Close are never written out.
func (r *Ring) Close() {
	r.stop.Cancel()
	<-r.done
}

func (r *Ring) run() {
	defer close(r.done)
	defer r.ticker.Stop()

	for {
		select {
		case <-r.ticker.C():
			r.drain()
		case <-r.stop.Wake():
			r.drain()
			return
		}
	}
}

func (r *Ring) drain() {
	for {
		v, ok := r.ring.TryRead()
		if !ok {
			break
		}
		if e, ok := v.(Event); ok {
			r.logf("[g%d] %s", e.Goroutine, e)
		}
	}

	if n := r.pending.Swap(0); n > 0 {
		r.logf("%s", f("trace: dropped %d events", n))
	}
}
