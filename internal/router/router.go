// Package router maps slash paths such as "graph/cephnode1/iops" onto
// handlers. Navigation is how intents on the event bus turn into mode
// transitions.
package router

import (
	stderrors "errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rileyhilliard/cephdash/internal/errors"
)

// Params holds the named segments captured by a route pattern.
type Params map[string]string

// ErrSkip is returned by a handler that declined the navigation. Navigate
// then drops the history entry it recorded and returns nil.
var ErrSkip = stderrors.New("navigation skipped")

// Handler runs when a navigation with Trigger matches its route.
type Handler func(p Params) error

// Options controls a single Navigate call.
type Options struct {
	// Trigger runs the matched handler. Without it the path is only recorded.
	Trigger bool
	// Replace overwrites the current history entry instead of pushing.
	Replace bool
}

type route struct {
	pattern  string
	segments []string
	handler  Handler
}

// match compares path segments to the pattern. ":name" segments capture;
// a trailing "*name" segment is optional and captures one segment.
func (r route) match(segs []string) (Params, bool) {
	params := Params{}
	i := 0
	for _, pat := range r.segments {
		switch {
		case strings.HasPrefix(pat, "*"):
			if i < len(segs) {
				params[pat[1:]] = segs[i]
				i++
			}
		case i >= len(segs):
			return nil, false
		case strings.HasPrefix(pat, ":"):
			params[pat[1:]] = segs[i]
			i++
		case pat == segs[i]:
			i++
		default:
			return nil, false
		}
	}
	if i != len(segs) {
		return nil, false
	}
	return params, true
}

// Router holds routes and navigation history.
type Router struct {
	mu      sync.Mutex
	routes  []route
	history []string
}

// New creates a router with no routes.
func New() *Router {
	return &Router{}
}

// Handle registers pattern. Patterns are matched in registration order.
func (r *Router) Handle(pattern string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route{
		pattern:  pattern,
		segments: split(pattern),
		handler:  h,
	})
}

// Patterns lists the registered patterns in order.
func (r *Router) Patterns() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.routes))
	for i, rt := range r.routes {
		out[i] = rt.pattern
	}
	return out
}

// Navigate records path and, with opts.Trigger, runs the matching handler.
// A path no route matches returns an ErrRoute error and is not recorded.
func (r *Router) Navigate(path string, opts Options) error {
	path = Clean(path)
	segs := split(path)

	r.mu.Lock()
	var (
		matched route
		params  Params
		found   bool
	)
	for _, rt := range r.routes {
		if p, ok := rt.match(segs); ok {
			matched, params, found = rt, p, true
			break
		}
	}
	if !found {
		r.mu.Unlock()
		return errors.New(errors.ErrRoute,
			fmt.Sprintf("No route matches '%s'", path),
			"Run 'cephdash routes' to see the available paths.")
	}
	prev := make([]string, len(r.history))
	copy(prev, r.history)
	if opts.Replace && len(r.history) > 0 {
		r.history[len(r.history)-1] = path
	} else {
		r.history = append(r.history, path)
	}
	r.mu.Unlock()

	if !opts.Trigger || matched.handler == nil {
		return nil
	}
	err := matched.handler(params)
	if stderrors.Is(err, ErrSkip) {
		r.mu.Lock()
		r.history = prev
		r.mu.Unlock()
		return nil
	}
	return err
}

// Back pops the current entry and triggers the previous one. It is a no-op
// when there is no previous entry.
func (r *Router) Back() error {
	r.mu.Lock()
	if len(r.history) < 2 {
		r.mu.Unlock()
		return nil
	}
	r.history = r.history[:len(r.history)-1]
	prev := r.history[len(r.history)-1]
	r.mu.Unlock()

	return r.Navigate(prev, Options{Trigger: true, Replace: true})
}

// Current returns the most recent path, or "" before any navigation.
func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.history) == 0 {
		return ""
	}
	return r.history[len(r.history)-1]
}

// History returns a copy of the navigation history, oldest first.
func (r *Router) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.history))
	copy(out, r.history)
	return out
}

// Clean trims surrounding slashes and a leading "#" so "#/graph/all/" and
// "graph/all" address the same route.
func Clean(path string) string {
	path = strings.TrimSpace(path)
	path = strings.TrimPrefix(path, "#")
	return strings.Trim(path, "/")
}

// Join builds a path from segments, skipping empty ones.
func Join(segs ...string) string {
	var parts []string
	for _, s := range segs {
		if s = Clean(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "/")
}

func split(path string) []string {
	path = Clean(path)
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
