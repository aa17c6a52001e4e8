// Command relay counts from 1 to 255, one value per interval, and hands
// each value to a callback running in its own goroutine.
//
// Usage:
//
//	go run ./cmd/relay -interval 100ms
//	go run ./cmd/relay -script progress.star -func progress -cancel-after 2s
//
// Interrupt (Ctrl-C) cancels the run.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/randomizedcoder/tick-relay/internal/relay"
	"github.com/randomizedcoder/tick-relay/internal/script"
	"github.com/randomizedcoder/tick-relay/internal/tick"
	"github.com/randomizedcoder/tick-relay/internal/trace"
)

func main() {
	interval := flag.Duration("interval", tick.DefaultInterval, "delay between values")
	pace := flag.String("pace", "sleep", "pacing: sleep or ticker")
	capacity := flag.Int("capacity", relay.Capacity, "bus capacity")
	scriptPath := flag.String("script", "", "Starlark file defining the callback")
	funcName := flag.String("func", script.DefaultFunc, "callback function name in -script")
	cancelAfter := flag.Duration("cancel-after", 0, "cancel the run after this long (0 = never)")
	traceMode := flag.String("trace", "log", "loop events: off, log or ring")
	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	pacing, err := tick.ParsePacing(*pace)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cb relay.Callback = relay.CallbackFunc(func(v uint8) {
		fmt.Printf("progress %d/%d\n", v, relay.Sentinel)
	})
	if *scriptPath != "" {
		cb, err = script.Load(*scriptPath, nil, *funcName, log.Printf)
		if err != nil {
			log.Fatal(err)
		}
	}

	opts := []relay.Option{
		relay.WithInterval(*interval),
		relay.WithPacing(pacing),
		relay.WithCapacity(*capacity),
		relay.WithLogger(log.Printf),
	}

	switch *traceMode {
	case "off":
		opts = append(opts, relay.WithTracer(trace.Nop{}))
	case "log":
	case "ring":
		tr, err := trace.NewRing(1024, 4, 100*time.Millisecond, log.Printf)
		if err != nil {
			log.Fatal(err)
		}
		defer tr.Close()
		opts = append(opts, relay.WithTracer(tr))
	default:
		log.Fatalf("%v: unknown -trace %q", os.Args[0], *traceMode)
	}

	r, err := relay.New(ctx, cb, opts...)
	if err != nil {
		log.Fatal(err)
	}

	if *cancelAfter > 0 {
		t := time.AfterFunc(*cancelAfter, r.Cancel)
		defer t.Stop()
	}

	if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Print(err)
	}

	if err := r.Wait(context.Background()); err != nil {
		log.Print(err)
	}
}
