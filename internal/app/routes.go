package app

import (
	"github.com/rileyhilliard/cephdash/internal/fsm"
	"github.com/rileyhilliard/cephdash/internal/logger"
	"github.com/rileyhilliard/cephdash/internal/router"
	"github.com/rileyhilliard/cephdash/internal/vent"
)

// Route patterns.
const (
	RouteDashboard = "dashboard"
	RouteWorkbench = "workbench"
	RouteGraph     = "graph/:host/*id"
)

// GraphPath returns the route of t. An empty host means the cluster view.
func GraphPath(t GraphTarget) string {
	if t.Host == "" {
		t.Host = TargetAll
	}
	return router.Join("graph", t.Host, t.ID)
}

// ModePath returns the route that leads to m.
func ModePath(m fsm.Mode) string {
	switch m {
	case fsm.Visualization:
		return RouteWorkbench
	case fsm.Graph:
		return GraphPath(GraphTarget{Host: TargetAll})
	default:
		return RouteDashboard
	}
}

// Routes registers the mode routes on r. A navigation the machine rejects,
// such as "dashboard" while already on the dashboard, is ignored and left
// out of the router history.
func Routes(r *router.Router, m *fsm.Machine, log logger.Logger) {
	if log == nil {
		log = logger.Noop()
	}
	fire := func(ev fsm.Event, args fsm.Args) error {
		if !m.Fire(ev, args) {
			log.Debug("route: %s ignored in %s", ev, m.Current())
			return router.ErrSkip
		}
		return nil
	}
	r.Handle(RouteDashboard, func(router.Params) error {
		return fire(fsm.ToDashboard, fsm.Args{})
	})
	r.Handle(RouteWorkbench, func(router.Params) error {
		return fire(fsm.ToVisualization, fsm.Args{})
	})
	r.Handle(RouteGraph, func(p router.Params) error {
		return fire(fsm.ToGraph, fsm.Args{Host: p["host"], ID: p["id"]})
	})
}

// Intents turns the app:* topics into navigations. app:graph takes either a
// GraphTarget or (host, id) strings. The returned func unsubscribes.
func Intents(bus *vent.Bus, r *router.Router, log logger.Logger) func() {
	if log == nil {
		log = logger.Noop()
	}
	nav := func(path string) {
		if err := r.Navigate(path, router.Options{Trigger: true}); err != nil {
			log.Warn("navigate %s: %v", path, err)
		}
	}
	offs := []func(){
		bus.Subscribe(vent.AppFullscreen, func(...any) { nav(RouteWorkbench) }),
		bus.Subscribe(vent.AppDashboard, func(...any) { nav(RouteDashboard) }),
		bus.Subscribe(vent.AppGraph, func(args ...any) { nav(GraphPath(targetArg(args))) }),
	}
	return func() {
		for _, off := range offs {
			off()
		}
	}
}

func targetArg(args []any) GraphTarget {
	var t GraphTarget
	var strs []string
	for _, a := range args {
		switch v := a.(type) {
		case GraphTarget:
			return v
		case string:
			strs = append(strs, v)
		}
	}
	if len(strs) > 0 {
		t.Host = strs[0]
	}
	if len(strs) > 1 {
		t.ID = strs[1]
	}
	return t
}
