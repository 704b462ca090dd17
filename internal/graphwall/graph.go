// Package graphwall builds graph descriptors from metric history and lays
// them out as a scrollable wall of braille graphs.
package graphwall

import "github.com/rileyhilliard/cephdash/internal/ui"

// Series is one labelled line of a graph, oldest point first.
type Series struct {
	Label  string
	Points []float64
}

// Last returns the newest point, or 0 for an empty series.
func (s Series) Last() float64 {
	if len(s.Points) == 0 {
		return 0
	}
	return s.Points[len(s.Points)-1]
}

// Descriptor is everything needed to draw one graph.
type Descriptor struct {
	Title  string
	Unit   ui.Unit
	Series []Series
}

// Empty reports whether no series has any points.
func (d Descriptor) Empty() bool {
	for _, s := range d.Series {
		if len(s.Points) > 0 {
			return false
		}
	}
	return true
}

// Result is what a make function produces: one group of descriptors per
// host, device or metric, depending on the view.
type Result [][]Descriptor

// Flatten concatenates the groups in order into the single sequence the
// wall renders.
func (r Result) Flatten() []Descriptor {
	n := 0
	for _, g := range r {
		n += len(g)
	}
	out := make([]Descriptor, 0, n)
	for _, g := range r {
		out = append(out, g...)
	}
	return out
}

// Source is the time series store graphs are built from.
// *metrics.History satisfies it.
type Source interface {
	Hosts() []string
	Series(host, key string, count int) []float64
	Objects(host, group string) []string
	Last(host, key string) (float64, bool)
}
