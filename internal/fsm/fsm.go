// Package fsm implements the dashboard's mode state machine.
//
// The machine has three modes (dashboard, visualization, graph) and three
// transition events. Transition is a pure function from (mode, event) to the
// destination mode and the ordered list of effects to run; Machine applies it
// and hands each effect to a Handler. The handler is where the actual
// orchestration lives (see internal/app).
package fsm

import (
	"sync"

	"github.com/rileyhilliard/cephdash/internal/logger"
)

// Mode is the single discrete UI state.
type Mode int

const (
	// None is only ever the "from" side of the startup transition.
	None Mode = iota
	Dashboard
	Visualization
	Graph
)

// String returns the route-style name of the mode.
func (m Mode) String() string {
	switch m {
	case None:
		return "none"
	case Dashboard:
		return "dashboard"
	case Visualization:
		return "visualization"
	case Graph:
		return "graph"
	default:
		return "unknown"
	}
}

// ParseMode converts a config or flag value into a Mode.
// "workbench" and "viz" are accepted as aliases for visualization.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "dashboard", "":
		return Dashboard, true
	case "visualization", "viz", "workbench":
		return Visualization, true
	case "graph":
		return Graph, true
	default:
		return None, false
	}
}

// Event is a named request to change mode.
type Event int

const (
	// Startup is the pseudo event used once by Machine.Start.
	Startup Event = iota
	ToDashboard
	ToVisualization
	ToGraph
)

// String returns the event name.
func (e Event) String() string {
	switch e {
	case Startup:
		return "startup"
	case ToDashboard:
		return "toDashboard"
	case ToVisualization:
		return "toVisualization"
	case ToGraph:
		return "toGraph"
	default:
		return "unknown"
	}
}

// Events lists the declared transition events (Startup excluded).
var Events = []Event{ToDashboard, ToVisualization, ToGraph}

// Modes lists the modes the machine can rest in.
var Modes = []Mode{Dashboard, Visualization, Graph}

// rule declares the guard set and destination of one event.
type rule struct {
	from []Mode
	to   Mode
}

var table = map[Event]rule{
	ToDashboard:     {from: []Mode{Visualization, Graph}, to: Dashboard},
	ToVisualization: {from: []Mode{Dashboard, Graph}, to: Visualization},
	ToGraph:         {from: []Mode{Dashboard, Visualization, Graph}, to: Graph},
}

// Hook identifies which callback an effect runs.
type Hook int

const (
	HookLeave Hook = iota
	HookEnter
	HookPost
)

// String returns the hook name.
func (h Hook) String() string {
	switch h {
	case HookLeave:
		return "leave"
	case HookEnter:
		return "enter"
	case HookPost:
		return "post"
	default:
		return "unknown"
	}
}

// Effect is one callback invocation produced by a transition.
// Mode is set for leave/enter effects, Event for post effects.
type Effect struct {
	Hook  Hook
	Mode  Mode
	Event Event
}

// Transition looks up the declared destination for ev from the given mode.
// The returned effects are, in order: leave(from), enter(to), post(ev).
// ok is false when the pair is not declared; no effects are returned then.
func Transition(from Mode, ev Event) (to Mode, effects []Effect, ok bool) {
	r, found := table[ev]
	if !found {
		return from, nil, false
	}
	for _, m := range r.from {
		if m == from {
			return r.to, []Effect{
				{Hook: HookLeave, Mode: from},
				{Hook: HookEnter, Mode: r.to},
				{Hook: HookPost, Event: ev},
			}, true
		}
	}
	return from, nil, false
}

// Args carries the extra arguments of a Fire call. Host and ID are used by
// graph transitions; other events ignore them.
type Args struct {
	Host string
	ID   string
}

// Change describes the transition an effect belongs to.
type Change struct {
	Event Event
	From  Mode
	To    Mode
	Args  Args
}

// IsStartup reports whether this is the initial transition out of None.
func (c Change) IsStartup() bool {
	return c.Event == Startup && c.From == None
}

// Handler runs transition effects. Implementations must not block; async
// work is scheduled and resumed later.
type Handler interface {
	Run(effect Effect, change Change)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(effect Effect, change Change)

// Run calls f.
func (f HandlerFunc) Run(effect Effect, change Change) { f(effect, change) }

// Machine holds the current mode and applies transitions.
type Machine struct {
	mu      sync.Mutex
	current Mode
	initial Mode
	started bool
	firing  bool
	handler Handler
	log     logger.Logger
}

// New creates a machine that will start in initial. Call Start to run the
// initial entry callback. A nil logger discards output.
func New(initial Mode, handler Handler, log logger.Logger) *Machine {
	if log == nil {
		log = logger.Noop()
	}
	if initial == None {
		initial = Dashboard
	}
	return &Machine{
		current: None,
		initial: initial,
		handler: handler,
		log:     log,
	}
}

// Current returns the active mode. Before Start it is None.
func (m *Machine) Current() Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Can reports whether ev is declared from the current mode.
func (m *Machine) Can(ev Event) bool {
	_, _, ok := Transition(m.Current(), ev)
	return ok
}

// Start performs the startup transition None -> initial, running only the
// destination's enter effect. Subsequent calls are ignored.
func (m *Machine) Start(args Args) bool {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return false
	}
	m.started = true
	m.firing = true
	m.current = m.initial
	change := Change{Event: Startup, From: None, To: m.initial, Args: args}
	m.mu.Unlock()

	m.log.Debug("startup -> %s", change.To)
	m.run(Effect{Hook: HookEnter, Mode: change.To}, change)

	m.mu.Lock()
	m.firing = false
	m.mu.Unlock()
	return true
}

// Fire requests a transition. It returns false and leaves the mode unchanged
// when ev is not declared from the current mode, when the machine has not
// been started, or when called from inside a running effect.
func (m *Machine) Fire(ev Event, args Args) bool {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		m.log.Warn("fire %s before start ignored", ev)
		return false
	}
	if m.firing {
		m.mu.Unlock()
		m.log.Warn("fire %s from inside a transition ignored", ev)
		return false
	}
	from := m.current
	to, effects, ok := Transition(from, ev)
	if !ok {
		m.mu.Unlock()
		m.log.Debug("rejected %s from %s", ev, from)
		return false
	}
	m.firing = true
	m.mu.Unlock()

	change := Change{Event: ev, From: from, To: to, Args: args}
	m.log.Debug("%s: %s -> %s", ev, from, to)

	for _, eff := range effects {
		if eff.Hook == HookEnter {
			m.mu.Lock()
			m.current = to
			m.mu.Unlock()
		}
		m.run(eff, change)
	}

	m.mu.Lock()
	m.firing = false
	m.mu.Unlock()
	return true
}

func (m *Machine) run(eff Effect, change Change) {
	if m.handler == nil {
		return
	}
	m.handler.Run(eff, change)
}
