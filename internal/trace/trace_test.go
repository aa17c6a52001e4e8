package trace_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/petermattis/goid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/randomizedcoder/tick-relay/internal/trace"
	"github.com/randomizedcoder/tick-relay/internal/translate"
)

func init() {
	translate.Use(language.AmericanEnglish)
}

type lines struct {
	mu  sync.Mutex
	out []string
}

func (l *lines) logf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = append(l.out, fmt.Sprintf(format, args...))
}

func (l *lines) get() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.out...)
}

func TestEvent_String(t *testing.T) {
	testCases := []struct {
		event trace.Event
		want  string
	}{
		{trace.New(trace.ProducerStart), "producer: started"},
		{trace.New(trace.ProducerSent).WithValue(3), "producer: sent 3"},
		{trace.New(trace.ProducerStop).WithReason(trace.ReasonSentinel), "producer: stopped (sentinel)"},
		{trace.New(trace.ConsumerStart), "consumer: started"},
		{trace.New(trace.ConsumerReceived).WithValue(255), "consumer: received 255"},
		{trace.New(trace.ConsumerLagged).WithValue(7), "consumer: lagged, skipped 7"},
		{trace.New(trace.ConsumerStop).WithReason(trace.ReasonClosed), "consumer: stopped (closed)"},
		{trace.New(trace.CallbackPanic).WithValue(1), "consumer: callback panicked on 1"},
		{trace.New(trace.CancelRequested), "cancel requested"},
	}

	for _, tc := range testCases {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.event.String())
		})
	}
}

func TestNew_StampsGoroutine(t *testing.T) {
	e := trace.New(trace.ProducerStart)
	assert.Equal(t, goid.Get(), e.Goroutine)
	assert.False(t, e.Time.IsZero())

	other := make(chan int64)
	go func() { other <- trace.New(trace.ConsumerStart).Goroutine }()
	assert.NotEqual(t, e.Goroutine, <-other)
}

func TestLogger(t *testing.T) {
	var l lines
	tr := trace.NewLogger(l.logf)

	e := trace.New(trace.ProducerSent).WithValue(9)
	tr.Trace(e)

	assert.Equal(t, []string{fmt.Sprintf("[g%d] producer: sent 9", e.Goroutine)}, l.get())
}

func TestRecorder(t *testing.T) {
	var r trace.Recorder
	r.Trace(trace.New(trace.ProducerSent).WithValue(1))
	r.Trace(trace.New(trace.ConsumerReceived).WithValue(1))
	r.Trace(trace.New(trace.ProducerSent).WithValue(2))

	assert.Len(t, r.Events(), 3)
	sent := r.Filter(trace.ProducerSent)
	require.Len(t, sent, 2)
	assert.Equal(t, uint64(2), sent[1].Value)
}

func TestRing_DrainsOnClose(t *testing.T) {
	var l lines
	r, err := trace.NewRing(1024, 4, time.Hour, l.logf)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Go(func() {
			for j := 0; j < 10; j++ {
				r.Trace(trace.New(trace.ProducerSent).WithValue(uint64(j)))
			}
		})
	}
	wg.Wait()

	r.Close()
	assert.Len(t, l.get(), 40)
	assert.Zero(t, r.Dropped())
}

func TestRing_PeriodicFlush(t *testing.T) {
	var l lines
	r, err := trace.NewRing(64, 1, 5*time.Millisecond, l.logf)
	require.NoError(t, err)
	defer r.Close()

	r.Trace(trace.New(trace.CancelRequested))

	assert.Eventually(t, func() bool {
		return len(l.get()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Contains(t, l.get()[0], "cancel requested")
}
