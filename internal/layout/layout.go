// Package layout models the visible page: a set of body classes plus named
// elements that carry their own classes and visibility. Views consult it to
// decide what to draw; mode callbacks mutate it.
package layout

import (
	"sort"
	"sync"
)

// Class names toggled by the mode callbacks.
const (
	// ClassWorkbench is the body class applied while visualization mode is active.
	ClassWorkbench = "workbench-mode"
	// ClassDashboardRow marks elements hidden while graph mode is active.
	ClassDashboardRow = "dashboard-row"
	// ClassInitialHide marks elements kept hidden until the dashboard is first shown.
	ClassInitialHide = "initial-hide"
)

// Element is a named, styleable region of the page.
type Element struct {
	ID      string
	classes map[string]bool
	hidden  bool
}

// HasClass reports whether the element carries class.
func (e *Element) HasClass(class string) bool {
	return e.classes[class]
}

// Hidden reports whether the element has been hidden explicitly.
func (e *Element) Hidden() bool {
	return e.hidden
}

// Page holds body classes and elements.
type Page struct {
	mu       sync.RWMutex
	body     map[string]bool
	elements map[string]*Element
	order    []string
}

// New creates an empty page.
func New() *Page {
	return &Page{
		body:     make(map[string]bool),
		elements: make(map[string]*Element),
	}
}

// Add registers an element with the given classes. Re-adding an id replaces
// its classes and makes it visible again.
func (p *Page) Add(id string, classes ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	el := &Element{ID: id, classes: make(map[string]bool, len(classes))}
	for _, c := range classes {
		el.classes[c] = true
	}
	if _, exists := p.elements[id]; !exists {
		p.order = append(p.order, id)
	}
	p.elements[id] = el
}

// AddClass adds class to the body.
func (p *Page) AddClass(class string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.body[class] = true
}

// RemoveClass removes class from the body. Removing an absent class is a no-op.
func (p *Page) RemoveClass(class string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.body, class)
}

// HasClass reports whether the body carries class.
func (p *Page) HasClass(class string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.body[class]
}

// BodyClasses returns the body classes sorted by name.
func (p *Page) BodyClasses() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, 0, len(p.body))
	for c := range p.body {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Hide hides every element carrying class and returns how many matched.
func (p *Page) Hide(class string) int {
	return p.setHidden(class, true)
}

// Show un-hides every element carrying class and returns how many matched.
func (p *Page) Show(class string) int {
	return p.setHidden(class, false)
}

func (p *Page) setHidden(class string, hidden bool) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, el := range p.elements {
		if el.classes[class] {
			el.hidden = hidden
			n++
		}
	}
	return n
}

// StripClass removes class from every element carrying it and returns how
// many elements changed. Elements without it are skipped.
func (p *Page) StripClass(class string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, el := range p.elements {
		if el.classes[class] {
			delete(el.classes, class)
			n++
		}
	}
	return n
}

// WithClass returns the ids of elements carrying class, in registration order.
func (p *Page) WithClass(class string) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var ids []string
	for _, id := range p.order {
		if p.elements[id].classes[class] {
			ids = append(ids, id)
		}
	}
	return ids
}

// Visible reports whether the element exists, is not hidden, and is not
// still marked initial-hide.
func (p *Page) Visible(id string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	el, ok := p.elements[id]
	if !ok {
		return false
	}
	return !el.hidden && !el.classes[ClassInitialHide]
}
