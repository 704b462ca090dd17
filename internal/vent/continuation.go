package vent

import (
	stderrors "errors"
	"sync/atomic"
)

// ErrAlreadyInvoked is returned when a continuation is invoked a second time.
var ErrAlreadyInvoked = stderrors.New("continuation already invoked")

// Continuation is a single-use completion callback passed along with a
// published request. The receiver calls Invoke when the requested work is
// done; only the first call runs the callback.
type Continuation struct {
	name string
	fn   func()
	used atomic.Bool
}

// NewContinuation wraps fn. The name shows up in logs and errors only.
func NewContinuation(name string, fn func()) *Continuation {
	return &Continuation{name: name, fn: fn}
}

// Name returns the label given at construction.
func (c *Continuation) Name() string {
	if c == nil {
		return ""
	}
	return c.name
}

// Invoke runs the callback the first time it is called and returns
// ErrAlreadyInvoked on every later call. A nil continuation is a no-op.
func (c *Continuation) Invoke() error {
	if c == nil {
		return nil
	}
	if !c.used.CompareAndSwap(false, true) {
		return ErrAlreadyInvoked
	}
	if c.fn != nil {
		c.fn()
	}
	return nil
}

// Invoked reports whether Invoke has already run.
func (c *Continuation) Invoked() bool {
	return c != nil && c.used.Load()
}

// ContinuationArg extracts the first *Continuation from a published argument
// list, or nil when there is none.
func ContinuationArg(args []any) *Continuation {
	for _, a := range args {
		if c, ok := a.(*Continuation); ok {
			return c
		}
	}
	return nil
}
