// Package script binds a Starlark function as a relay callback.
//
// The script is executed once at load time; the named global must be
// callable with one integer argument. Two globals are predeclared:
// "sentinel" holds the last value the relay produces, and "state" is a
// dict the callback may mutate. Module globals are frozen once loading
// finishes, so state kept between calls has to live in "state".
//
//	def progress(v):
//	    state["last"] = v
//	    if v == sentinel:
//	        print("done")
package script

import (
	"fmt"
	"sync"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/randomizedcoder/tick-relay/internal/relay"
	"github.com/randomizedcoder/tick-relay/internal/trace"
	"github.com/randomizedcoder/tick-relay/internal/translate"
)

var f = translate.From

// DefaultFunc is the global looked up when no function name is given.
const DefaultFunc = "progress"

// Callback calls a Starlark function for every value.
//
// Starlark threads are not safe for concurrent use; calls are serialised.
type Callback struct {
	mu     sync.Mutex
	thread *starlark.Thread
	fn     starlark.Callable
	state  *starlark.Dict
	logf   trace.LoggerFunc
}

// Load executes the script and binds the global called name.
//
// src follows starlark.ExecFileOptions: nil reads filename, otherwise a
// string, []byte or io.Reader. Any failure to produce a callable is
// reported as relay.ErrInvalidCallback. Output of print() and errors
// raised by the function go to logf.
func Load(filename string, src any, name string, logf trace.LoggerFunc) (*Callback, error) {
	if name == "" {
		name = DefaultFunc
	}
	if logf == nil {
		logf = func(string, ...any) {}
	}

	thread := &starlark.Thread{
		Name: "relay",
		Print: func(_ *starlark.Thread, msg string) {
			logf("%s", msg)
		},
	}
	state := starlark.NewDict(0)
	predeclared := starlark.StringDict{
		"sentinel": starlark.MakeInt(relay.Sentinel),
		"state":    state,
	}

	globals, err := starlark.ExecFileOptions(&syntax.FileOptions{}, thread, filename, src, predeclared)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", relay.ErrInvalidCallback, filename, err)
	}

	v, ok := globals[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", relay.ErrInvalidCallback, f("%s does not define %s", filename, name))
	}
	fn, ok := v.(starlark.Callable)
	if !ok {
		return nil, fmt.Errorf("%w: %s", relay.ErrInvalidCallback, f("%s: %s is a %s, not a function", filename, name, v.Type()))
	}

	return &Callback{
		thread: thread,
		fn:     fn,
		state:  state,
		logf:   logf,
	}, nil
}

// Progress calls the bound function with v. Errors are logged.
func (c *Callback) Progress(v uint8) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := starlark.Call(c.thread, c.fn, starlark.Tuple{starlark.MakeInt(int(v))}, nil)
	if err != nil {
		c.logf("%s", f("script: %s(%d): %v", c.fn.Name(), v, err))
	}
}

// State returns the value stored under key in the script's state dict,
// or nil.
func (c *Callback) State(key string) starlark.Value {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, found, err := c.state.Get(starlark.String(key))
	if err != nil || !found {
		return nil
	}
	return v
}
