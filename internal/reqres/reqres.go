// Package reqres is the dashboard's request/response service.
//
// Components ask for ambient data by query name and get back a Future that
// resolves once the registered responder answers. Responders run on their
// own goroutine so Request never blocks the caller.
package reqres

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rileyhilliard/cephdash/internal/errors"
	"github.com/rileyhilliard/cephdash/internal/logger"
)

// Queries answered inside the dashboard.
const (
	// QueryReady resolves once the initial data load has completed.
	QueryReady = "get:ready"
	// QueryHosts resolves to the current set of known host identifiers ([]string).
	QueryHosts = "get:hosts"
)

// Responder answers a query.
type Responder func(ctx context.Context) (any, error)

// Service routes queries to responders.
type Service struct {
	mu         sync.RWMutex
	responders map[string]Responder
	log        logger.Logger
}

// New creates an empty service. A nil logger discards output.
func New(log logger.Logger) *Service {
	if log == nil {
		log = logger.Noop()
	}
	return &Service{
		responders: make(map[string]Responder),
		log:        log,
	}
}

// Handle registers (or replaces) the responder for query.
func (s *Service) Handle(query string, r Responder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responders[query] = r
}

// Request asks query and returns a Future for the answer. Unknown queries
// resolve immediately with an ErrQuery error.
func (s *Service) Request(ctx context.Context, query string) *Future {
	f := newFuture(query)

	s.mu.RLock()
	r, ok := s.responders[query]
	s.mu.RUnlock()

	if !ok {
		f.resolve(nil, errors.New(errors.ErrQuery,
			fmt.Sprintf("Nothing answers '%s'", query),
			"Register a responder before requesting it."))
		return f
	}

	s.log.Debug("request %s (%s)", query, f.ID)
	go func() {
		v, err := r(ctx)
		if err != nil {
			s.log.Debug("request %s (%s) failed: %v", query, f.ID, err)
		}
		f.resolve(v, err)
	}()
	return f
}

// Future is the pending answer to one request.
type Future struct {
	ID    string
	Query string

	once  sync.Once
	done  chan struct{}
	value any
	err   error
}

func newFuture(query string) *Future {
	return &Future{
		ID:    uuid.NewString(),
		Query: query,
		done:  make(chan struct{}),
	}
}

func (f *Future) resolve(v any, err error) {
	f.once.Do(func() {
		f.value = v
		f.err = err
		close(f.done)
	})
}

// Done is closed once the future resolves.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the future resolves or ctx ends.
func (f *Future) Wait(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Resolved returns a future that is already resolved with v and err.
func Resolved(query string, v any, err error) *Future {
	f := newFuture(query)
	f.resolve(v, err)
	return f
}

// Hosts waits on a get:hosts future and type-checks the answer.
func Hosts(ctx context.Context, f *Future) ([]string, error) {
	v, err := f.Wait(ctx)
	if err != nil {
		return nil, err
	}
	hosts, ok := v.([]string)
	if !ok {
		return nil, errors.New(errors.ErrQuery,
			fmt.Sprintf("'%s' answered %T, want []string", f.Query, v), "")
	}
	return hosts, nil
}
