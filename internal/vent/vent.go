// Package vent is the dashboard's publish/subscribe event bus.
//
// Components announce intents on named topics without holding references to
// each other. Dispatch is synchronous: Publish returns after every current
// subscriber of the topic has run, in subscription order.
package vent

import (
	"sync"
)

// Topics published and consumed inside the dashboard.
const (
	AppFullscreen    = "app:fullscreen"
	AppDashboard     = "app:dashboard"
	AppGraph         = "app:graph"
	GaugesDisappear  = "gauges:disappear"
	GaugesReappear   = "gauges:reappear"
	GaugesCollapse   = "gauges:collapse"
	GaugesExpand     = "gauges:expand"
	VizFullscreen    = "viz:fullscreen"
	VizDashboard     = "viz:dashboard"
	DashboardRefresh = "dashboard:refresh"
)

// Handler receives the arguments passed to Publish.
type Handler func(args ...any)

type subscription struct {
	id      uint64
	handler Handler
}

// Bus is a topic-keyed publish/subscribe channel.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string][]subscription
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{subs: make(map[string][]subscription)}
}

// Subscribe registers handler for topic and returns a function that removes it.
// The returned function is safe to call more than once.
func (b *Bus) Subscribe(topic string, handler Handler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscription{id: id, handler: handler})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.unsubscribe(topic, id) })
	}
}

func (b *Bus) unsubscribe(topic string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[topic]
	for i, s := range subs {
		if s.id == id {
			b.subs[topic] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subs[topic]) == 0 {
		delete(b.subs, topic)
	}
}

// Publish delivers args to every current subscriber of topic and returns how
// many handlers ran. Handlers may publish or subscribe themselves; a handler
// added during dispatch receives the next publish, not this one.
func (b *Bus) Publish(topic string, args ...any) int {
	b.mu.RLock()
	subs := make([]subscription, len(b.subs[topic]))
	copy(subs, b.subs[topic])
	b.mu.RUnlock()

	for _, s := range subs {
		s.handler(args...)
	}
	return len(subs)
}

// Subscribers returns the number of handlers registered for topic.
func (b *Bus) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}
