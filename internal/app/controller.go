// Package app holds the mode controller: the leave, enter and post
// callbacks of the mode state machine. The controller hides and shows page
// elements, talks to the gauges and workbench widgets over the event bus and
// drives the graph wall.
//
// The controller never blocks. Work that waits (the ready query, the host
// list, graph building) is queued as tea.Cmds, collected with Flush, and
// comes back through Update as messages stamped with a generation. Messages
// from an older generation are dropped.
package app

import (
	"context"
	"slices"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/cephdash/internal/fsm"
	"github.com/rileyhilliard/cephdash/internal/graphwall"
	"github.com/rileyhilliard/cephdash/internal/layout"
	"github.com/rileyhilliard/cephdash/internal/logger"
	"github.com/rileyhilliard/cephdash/internal/reqres"
	"github.com/rileyhilliard/cephdash/internal/vent"
)

// Graph targets that are not host aliases.
const (
	TargetAll  = "all"
	TargetIOPS = "iops"
)

// Wall titles and button ids.
const (
	TitleCluster  = "Cluster"
	TitlePoolIOPS = "Per Pool IOPS"
	BtnOverview   = "overview"
)

// GraphTarget is what a graph dispatch renders: the cluster (Host "all"),
// the pools (Host "iops") or a host, optionally narrowed to a metric id.
type GraphTarget struct {
	Host string
	ID   string
}

// TargetOf extracts the graph target from transition arguments.
func TargetOf(a fsm.Args) GraphTarget {
	return GraphTarget{Host: a.Host, ID: a.ID}
}

// readyMsg reports that the dashboard finished its first collection.
type readyMsg struct {
	session uint64
	gen     uint64
	startup bool
	err     error
}

// hostsMsg carries the answer to a get:hosts query.
type hostsMsg struct {
	gen     uint64
	host    string
	hosts   []string
	refresh bool
	err     error
}

// graphsMsg carries the result of a make function.
type graphsMsg struct {
	gen    uint64
	title  string
	result graphwall.Result
	err    error
}

// Controller implements fsm.Handler. All methods must be called from the
// update loop.
type Controller struct {
	bus  *vent.Bus
	rr   *reqres.Service
	wall Wall
	page *layout.Page
	log  logger.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mode    fsm.Mode
	session uint64 // bumped on every graph enter and leave
	gen     uint64 // bumped on every graph dispatch and graph leave
	vizSeq  uint64 // bumped on every visualization enter
	last    GraphTarget
	shown   bool // wall rendered in the current graph session
	pending []tea.Cmd
}

var _ fsm.Handler = (*Controller)(nil)

// NewController creates a controller. A nil logger discards output.
func NewController(bus *vent.Bus, rr *reqres.Service, wall Wall, page *layout.Page, log logger.Logger) *Controller {
	if log == nil {
		log = logger.Noop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		bus:    bus,
		rr:     rr,
		wall:   wall,
		page:   page,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Shutdown cancels queued work that is still waiting.
func (c *Controller) Shutdown() {
	c.cancel()
}

// Mode returns the mode the controller last entered.
func (c *Controller) Mode() fsm.Mode { return c.mode }

// Generation returns the current graph dispatch generation.
func (c *Controller) Generation() uint64 { return c.gen }

// LastTarget returns the target of the most recent graph dispatch.
func (c *Controller) LastTarget() GraphTarget { return c.last }

// Run dispatches one transition effect.
func (c *Controller) Run(eff fsm.Effect, ch fsm.Change) {
	switch eff.Hook {
	case fsm.HookLeave:
		c.leave(eff.Mode)
	case fsm.HookEnter:
		c.mode = eff.Mode
		c.enter(eff.Mode, ch)
	case fsm.HookPost:
		c.post(eff.Event, ch)
	}
}

func (c *Controller) leave(m fsm.Mode) {
	switch m {
	case fsm.Graph:
		c.onLeaveGraph()
	case fsm.Visualization:
		c.onLeaveVisualization()
	}
}

func (c *Controller) enter(m fsm.Mode, ch fsm.Change) {
	switch m {
	case fsm.Dashboard:
		c.onEnterDashboard()
	case fsm.Visualization:
		c.onEnterVisualization(ch)
	case fsm.Graph:
		c.onEnterGraph(ch)
	}
}

func (c *Controller) post(ev fsm.Event, ch fsm.Change) {
	switch ev {
	case fsm.ToDashboard:
		c.bus.Publish(vent.DashboardRefresh)
	case fsm.ToGraph:
		c.Dispatch(TargetOf(ch.Args))
	}
}

// Flush returns the work queued since the last call.
func (c *Controller) Flush() tea.Cmd {
	cmds := c.pending
	c.pending = nil
	return tea.Batch(cmds...)
}

func (c *Controller) enqueue(cmd tea.Cmd) {
	c.pending = append(c.pending, cmd)
}

// publish sends cont on topic. With no subscriber the continuation runs
// right away so the chain still completes.
func (c *Controller) publish(topic string, cont *vent.Continuation) {
	if c.bus.Publish(topic, cont) == 0 {
		_ = cont.Invoke()
	}
}

func (c *Controller) onEnterDashboard() {
	if n := c.page.StripClass(layout.ClassInitialHide); n > 0 {
		c.log.Debug("dashboard: revealed %d elements", n)
	}
}

func (c *Controller) onEnterVisualization(ch fsm.Change) {
	c.vizSeq++
	seq := c.vizSeq
	proceed := func() {
		if c.mode != fsm.Visualization || c.vizSeq != seq {
			c.log.Debug("workbench: left before gauges finished")
			return
		}
		c.page.AddClass(layout.ClassWorkbench)
		c.publish(vent.VizFullscreen, vent.NewContinuation(vent.VizFullscreen, func() {
			c.bus.Publish(vent.GaugesCollapse)
		}))
	}
	if ch.From == fsm.Dashboard {
		c.publish(vent.GaugesDisappear, vent.NewContinuation(vent.GaugesDisappear, proceed))
		return
	}
	proceed()
}

func (c *Controller) onLeaveVisualization() {
	c.page.RemoveClass(layout.ClassWorkbench)
	c.publish(vent.VizDashboard, vent.NewContinuation(vent.VizDashboard, func() {
		c.publish(vent.GaugesExpand, vent.NewContinuation(vent.GaugesExpand, func() {
			c.bus.Publish(vent.GaugesReappear)
		}))
	}))
}

func (c *Controller) onEnterGraph(ch fsm.Change) {
	c.page.Hide(layout.ClassDashboardRow)
	c.session++
	session, gen, startup := c.session, c.gen, ch.IsStartup()
	ctx := c.ctx
	f := c.rr.Request(ctx, reqres.QueryReady)
	c.enqueue(func() tea.Msg {
		_, err := f.Wait(ctx)
		return readyMsg{session: session, gen: gen, startup: startup, err: err}
	})
}

func (c *Controller) onLeaveGraph() {
	c.wall.Close()
	c.shown = false
	c.page.Show(layout.ClassDashboardRow)
	c.session++
	c.gen++
}

// Dispatch renders t on the wall. It is the post hook of the graph event
// and is also used for the startup view.
func (c *Controller) Dispatch(t GraphTarget) {
	c.dispatch(t, false)
}

// Refresh rebuilds the last target from the latest history once a
// collection cycle completes. The current graphs stay up until the new ones
// arrive. It does nothing outside graph mode or before the wall is shown.
func (c *Controller) Refresh() {
	if c.mode != fsm.Graph || !c.shown || c.last.Host == "" {
		return
	}
	c.dispatch(c.last, true)
}

func (c *Controller) dispatch(t GraphTarget, refresh bool) {
	if !refresh {
		c.wall.HideGraphs()
	}
	c.gen++
	gen := c.gen
	c.last = t

	if t.Host == TargetAll {
		c.wall.HideButtons()
		c.fetch(gen, TitleCluster, refresh, c.wall.MakeClusterWideMetrics)
		return
	}
	if t.Host == TargetIOPS {
		c.wall.HideButtons()
		c.fetch(gen, TitlePoolIOPS, refresh, c.wall.MakePoolIOPS)
		return
	}
	if k, ok := Lookup(t.ID); ok {
		c.wall.ShowButtons()
		c.wall.UpdateSelect(t.Host)
		c.wall.UpdateBtns(k.ID)
		c.fetchHost(gen, k, t.Host, refresh)
		return
	}

	ctx := c.ctx
	f := c.rr.Request(ctx, reqres.QueryHosts)
	c.enqueue(func() tea.Msg {
		hosts, err := reqres.Hosts(ctx, f)
		return hostsMsg{gen: gen, host: t.Host, hosts: hosts, refresh: refresh, err: err}
	})
}

// fetch builds graphs once the first collection finished; before that the
// history is empty and every make function would fail.
func (c *Controller) fetch(gen uint64, title string, refresh bool, build func(context.Context) (graphwall.Result, error)) {
	if !refresh {
		c.wall.Loading(title)
	}
	ctx := c.ctx
	ready := c.rr.Request(ctx, reqres.QueryReady)
	c.enqueue(func() tea.Msg {
		if _, err := ready.Wait(ctx); err != nil {
			return graphsMsg{gen: gen, title: title, err: err}
		}
		res, err := build(ctx)
		return graphsMsg{gen: gen, title: title, result: res, err: err}
	})
}

func (c *Controller) fetchHost(gen uint64, k MetricKind, host string, refresh bool) {
	wall := c.wall
	c.fetch(gen, k.Title(host), refresh, func(ctx context.Context) (graphwall.Result, error) {
		return k.Make(wall, ctx, host)
	})
}

// Update applies a message produced by queued work. It reports whether msg
// belonged to the controller; follow it with Flush.
func (c *Controller) Update(msg tea.Msg) bool {
	switch msg := msg.(type) {
	case readyMsg:
		c.onReady(msg)
	case hostsMsg:
		c.onHosts(msg)
	case graphsMsg:
		c.onGraphs(msg)
	default:
		return false
	}
	return true
}

func (c *Controller) onReady(msg readyMsg) {
	if msg.session != c.session || c.mode != fsm.Graph {
		c.log.Debug("graph: dropping stale ready (session %d, now %d)", msg.session, c.session)
		return
	}
	if msg.err != nil {
		c.log.Warn("graph: waiting for first collection: %v", msg.err)
		return
	}
	c.wall.Render()
	c.shown = true
	// A navigation that landed while waiting wins over the startup view.
	if msg.startup && msg.gen == c.gen {
		c.Dispatch(GraphTarget{Host: TargetAll})
	}
}

func (c *Controller) onHosts(msg hostsMsg) {
	if msg.gen != c.gen {
		c.log.Debug("graph: dropping stale host list (gen %d, now %d)", msg.gen, c.gen)
		return
	}
	title := Overview.Title(msg.host)
	if msg.err != nil {
		c.log.Error("graph: %s: %v", title, msg.err)
		c.wall.ShowError(title, msg.err)
		return
	}
	if !slices.Contains(msg.hosts, msg.host) {
		c.log.Debug("graph: unknown host %q", msg.host)
		return
	}
	c.wall.ShowButtons()
	c.wall.UpdateSelect(msg.host)
	c.wall.UpdateBtns(BtnOverview)
	c.fetchHost(msg.gen, Overview, msg.host, msg.refresh)
}

func (c *Controller) onGraphs(msg graphsMsg) {
	if msg.gen != c.gen {
		c.log.Debug("graph: dropping stale %q (gen %d, now %d)", msg.title, msg.gen, c.gen)
		return
	}
	if msg.err != nil {
		c.log.Error("graph: %s: %v", msg.title, msg.err)
		c.wall.ShowError(msg.title, msg.err)
		return
	}
	c.wall.RenderGraphs(msg.title, msg.result.Flatten())
}
