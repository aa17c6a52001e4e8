package bus_test

import (
	"testing"

	"github.com/randomizedcoder/tick-relay/internal/bus"
)

// Sink variables to prevent compiler from eliminating benchmark loops
var sinkU8 uint8
var sinkErr error

func BenchmarkBus_SendRecv_OneReceiver(b *testing.B) {
	q := bus.New[uint8](256)
	r := q.Subscribe()
	b.ReportAllocs()

	var val uint8
	var err error
	for i := 0; b.Loop(); i++ {
		_, _ = q.Send(uint8(i))
		val, err = r.Recv(nil)
	}
	sinkU8 = val
	sinkErr = err
}

func BenchmarkBus_SendRecv_FourReceivers(b *testing.B) {
	q := bus.New[uint8](256)
	rs := []*bus.Receiver[uint8]{q.Subscribe(), q.Subscribe(), q.Subscribe(), q.Subscribe()}
	b.ReportAllocs()

	var val uint8
	for i := 0; b.Loop(); i++ {
		_, _ = q.Send(uint8(i))
		for _, r := range rs {
			val, _ = r.Recv(nil)
		}
	}
	sinkU8 = val
}

func BenchmarkChannel_SendRecv(b *testing.B) {
	ch := make(chan uint8, 256)
	b.ReportAllocs()

	var val uint8
	for i := 0; b.Loop(); i++ {
		ch <- uint8(i)
		val = <-ch
	}
	sinkU8 = val
}
