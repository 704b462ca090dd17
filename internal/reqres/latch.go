package reqres

import (
	"context"
	"sync"
)

// Latch is a one-way gate: it starts closed and, once opened, stays open.
// It backs the get:ready query.
type Latch struct {
	once sync.Once
	ch   chan struct{}
}

// NewLatch creates a closed latch.
func NewLatch() *Latch {
	return &Latch{ch: make(chan struct{})}
}

// Open releases every current and future waiter. Safe to call repeatedly.
func (l *Latch) Open() {
	l.once.Do(func() { close(l.ch) })
}

// IsOpen reports whether Open has been called.
func (l *Latch) IsOpen() bool {
	select {
	case <-l.ch:
		return true
	default:
		return false
	}
}

// Wait blocks until the latch opens or ctx ends.
func (l *Latch) Wait(ctx context.Context) error {
	select {
	case <-l.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Responder answers with true once the latch is open.
func (l *Latch) Responder() Responder {
	return func(ctx context.Context) (any, error) {
		if err := l.Wait(ctx); err != nil {
			return nil, err
		}
		return true, nil
	}
}
