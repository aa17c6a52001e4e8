// Command busbench compares the broadcast bus with a buffered channel.
//
// Usage:
//
//	go run ./cmd/busbench -n 10000000 -size 256 -receivers 1
//	go run ./cmd/busbench -batch 64 -receivers 4
//
// With -batch > 0 each round sends that many values before every receiver
// drains its backlog with TryRecv; a batch larger than the bus overflows it
// and the skipped values are counted.
package main

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/randomizedcoder/tick-relay/internal/bus"
)

func main() {
	iterations := flag.Int("n", 10_000_000, "number of iterations")
	size := flag.Int("size", 256, "bus size")
	receivers := flag.Int("receivers", 1, "bus receivers")
	batch := flag.Int("batch", 0, "values sent per round before a non-blocking drain (0 = lockstep)")
	flag.Parse()

	if *receivers < 1 {
		*receivers = 1
	}

	fmt.Printf("Benchmarking broadcast bus (%d iterations, size=%d, receivers=%d)\n", *iterations, *size, *receivers)
	fmt.Println("─────────────────────────────────────────────────")

	// Benchmark channel (one receiver only, a channel cannot broadcast)
	ch := make(chan uint8, *size)
	start := time.Now()
	for i := 0; i < *iterations; i++ {
		ch <- uint8(i)
		<-ch
	}
	chDur := time.Since(start)

	// Benchmark bus
	b := bus.New[uint8](*size)
	rs := make([]*bus.Receiver[uint8], *receivers)
	for i := range rs {
		rs[i] = b.Subscribe()
	}
	fmt.Printf("  bus: cap=%d receivers=%d\n", b.Cap(), b.Receivers())

	var skipped, peak uint64
	start = time.Now()
	if *batch > 0 {
		skipped, peak = runBatched(b, rs, *iterations, *batch)
	} else {
		for i := 0; i < *iterations; i++ {
			b.Send(uint8(i))
			for _, r := range rs {
				r.Recv(nil)
			}
		}
	}
	busDur := time.Since(start)

	// Results
	chPerOp := float64(chDur.Nanoseconds()) / float64(*iterations)
	busPerOp := float64(busDur.Nanoseconds()) / float64(*iterations)

	fmt.Printf("\nResults (send + receive per iteration):\n")
	fmt.Printf("  Channel:  %v (%.2f ns/op)\n", chDur, chPerOp)
	fmt.Printf("  Bus:      %v (%.2f ns/op, %.2f ns per receiver)\n", busDur, busPerOp, busPerOp/float64(*receivers))

	if busPerOp < chPerOp {
		fmt.Printf("\n  Speedup:  %.2fx (Bus faster)\n", chPerOp/busPerOp)
	} else {
		fmt.Printf("\n  Speedup:  %.2fx (Channel faster)\n", busPerOp/chPerOp)
	}

	if *batch > 0 {
		fmt.Printf("\nBatched drain:\n")
		fmt.Printf("  Peak backlog:  %d of %d\n", peak, b.Cap())
		fmt.Printf("  Skipped:       %d (lagged receivers)\n", skipped)
	}

	fmt.Printf("\nThroughput (theoretical max):\n")
	fmt.Printf("  Channel:  %.2f M ops/sec\n", 1000/chPerOp)
	fmt.Printf("  Bus:      %.2f M ops/sec\n", 1000/busPerOp)
}

// runBatched sends batch values per round, then drains every receiver
// without blocking. It returns the values lost to lag and the largest
// backlog a receiver saw before draining.
func runBatched(b *bus.Bus[uint8], rs []*bus.Receiver[uint8], n, batch int) (skipped, peak uint64) {
	for sent := 0; sent < n; {
		for i := 0; i < batch && sent < n; i++ {
			b.Send(uint8(sent))
			sent++
		}
		peak = max(peak, uint64(b.Len()))
		for _, r := range rs {
			peak = max(peak, uint64(r.Len()))
			for {
				_, ok, err := r.TryRecv()
				var lag *bus.LaggedError
				if errors.As(err, &lag) {
					skipped += lag.Skipped
					continue
				}
				if !ok {
					break
				}
			}
		}
	}
	return skipped, peak
}
