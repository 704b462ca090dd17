package dashboard

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/cephdash/internal/app"
	"github.com/rileyhilliard/cephdash/internal/collect"
	"github.com/rileyhilliard/cephdash/internal/fsm"
	"github.com/rileyhilliard/cephdash/internal/graphwall"
	"github.com/rileyhilliard/cephdash/internal/layout"
	"github.com/rileyhilliard/cephdash/internal/logger"
	"github.com/rileyhilliard/cephdash/internal/metrics"
	"github.com/rileyhilliard/cephdash/internal/reqres"
	"github.com/rileyhilliard/cephdash/internal/router"
	"github.com/rileyhilliard/cephdash/internal/vent"
)

// Collector gathers the samples the dashboard shows. *collect.Collector
// implements it.
type Collector interface {
	Hosts() []string
	Monitor() string
	CollectStreaming(ctx context.Context) <-chan collect.HostResult
	Cluster(ctx context.Context) (*metrics.ClusterStatus, error)
}

var _ Collector = (*collect.Collector)(nil)

// Options configures New.
type Options struct {
	// Name is the cluster name shown in the header.
	Name string
	// Interval between collection cycles.
	Interval time.Duration
	// Timeout bounds one collection cycle.
	Timeout time.Duration
	// HistorySize is the number of samples kept per series.
	HistorySize int
	// Mode is the mode the machine starts in.
	Mode fsm.Mode
	// Route, when set, is navigated to right after startup.
	Route string
	Log   logger.Logger
}

// Model is the Bubble Tea model of the dashboard.
type Model struct {
	opts      Options
	log       logger.Logger
	collector Collector
	history   *metrics.History

	bus     *vent.Bus
	rr      *reqres.Service
	ready   *reqres.Latch
	page    *layout.Page
	router  *router.Router
	machine *fsm.Machine
	ctrl    *app.Controller
	wall    *graphwall.Wall
	gauges  *Gauges
	bench   *Workbench
	offs    []func()

	hosts    []string
	state    map[string]*hostState
	seen     *seenHosts
	selected int

	cluster    *metrics.ClusterStatus
	clusterErr string
	lastUpdate time.Time

	ctx         context.Context
	cancel      context.CancelFunc
	parts       int // outstanding parts of the running cycle
	cycleCancel context.CancelFunc
	cycles      int

	width, height int
	help          help.Model
	showHelp      bool
	quitting      bool
	closed        bool
	animating     bool
	spinning      bool
}

// tickMsg starts a collection cycle.
type tickMsg time.Time

// hostResultMsg carries one host of a streaming cycle and the channel the
// rest arrives on.
type hostResultMsg struct {
	result collect.HostResult
	ch     <-chan collect.HostResult
}

// hostsDoneMsg reports that every host of the cycle answered.
type hostsDoneMsg struct{}

// clusterMsg carries the monitor's view of the cluster.
type clusterMsg struct {
	status *metrics.ClusterStatus
	err    error
}

// New wires a dashboard around collector.
func New(collector Collector, opts Options) *Model {
	if opts.Log == nil {
		opts.Log = logger.Noop()
	}
	if opts.Interval <= 0 {
		opts.Interval = 2 * time.Second
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 8 * time.Second
	}
	if opts.HistorySize <= 0 {
		opts.HistorySize = metrics.DefaultHistorySize
	}
	if opts.Name == "" {
		opts.Name = "ceph"
	}
	log := opts.Log

	m := &Model{
		opts:      opts,
		log:       log,
		collector: collector,
		history:   metrics.NewHistory(opts.HistorySize),
		bus:       vent.New(),
		rr:        reqres.New(log),
		ready:     reqres.NewLatch(),
		page:      layout.New(),
		router:    router.New(),
		hosts:     collector.Hosts(),
		state:     make(map[string]*hostState),
		help:      help.New(),
	}
	m.ctx, m.cancel = context.WithCancel(context.Background())
	for _, h := range m.hosts {
		m.state[h] = &hostState{alias: h}
	}
	m.seen = newSeenHosts(m.hosts)

	m.page.Add(elCluster, layout.ClassDashboardRow, layout.ClassInitialHide)
	m.page.Add(elHosts, layout.ClassDashboardRow, layout.ClassInitialHide)
	m.page.Add(elWall)

	m.wall = graphwall.New(m.history, opts.HistorySize)
	m.wall.SetButtons(append([]string{app.BtnOverview}, app.MetricIDs()...))

	m.gauges = NewGauges(m.bus, log)
	m.bench = NewWorkbench(m.bus, log)

	m.ctrl = app.NewController(m.bus, m.rr, m.wall, m.page, log)
	m.machine = fsm.New(opts.Mode, m.ctrl, log)
	app.Routes(m.router, m.machine, log)
	m.offs = append(m.offs, app.Intents(m.bus, m.router, log))

	m.rr.Handle(reqres.QueryReady, m.ready.Responder())
	m.rr.Handle(reqres.QueryHosts, m.seen.responder())
	return m
}

// Init starts the machine, records the initial route and kicks off the
// first collection.
func (m *Model) Init() tea.Cmd {
	m.machine.Start(fsm.Args{})
	if err := m.router.Navigate(app.ModePath(m.machine.Current()), router.Options{}); err != nil {
		m.log.Warn("record initial route: %v", err)
	}
	if m.opts.Route != "" {
		if err := m.router.Navigate(m.opts.Route, router.Options{Trigger: true}); err != nil {
			m.log.Warn("navigate %s: %v", m.opts.Route, err)
		}
	}
	return m.settle(m.collectCmd(), m.tickCmd())
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.ctrl.Update(msg) {
		return m, m.settle()
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.settle(m.handleKey(msg))

	case tea.MouseMsg:
		if m.machine.Current() == fsm.Graph {
			return m, m.wall.Update(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.wall.SetSize(msg.Width, max(1, msg.Height-chromeLines))

	case tickMsg:
		return m, m.settle(m.tickCmd(), m.collectCmd())

	case hostResultMsg:
		m.applyHost(msg.result)
		return m, m.settle(pollCmd(msg.ch))

	case hostsDoneMsg:
		m.partDone()

	case clusterMsg:
		m.applyCluster(msg)
		m.partDone()

	case animMsg:
		m.animating = false
		m.gauges.Step()
		m.bench.Step()

	case spinner.TickMsg:
		if m.wall.IsLoading() {
			return m, m.wall.Update(msg)
		}
		m.spinning = false
		return m, nil
	}

	return m, m.settle()
}

// settle adds the work a state change leaves behind: queued controller
// commands, widget animation frames and the wall spinner.
func (m *Model) settle(cmds ...tea.Cmd) tea.Cmd {
	cmds = append(cmds, m.ctrl.Flush())
	if !m.animating && (m.gauges.Animating() || m.bench.Animating()) {
		m.animating = true
		cmds = append(cmds, animCmd())
	}
	if !m.spinning && m.wall.IsLoading() {
		m.spinning = true
		cmds = append(cmds, m.wall.Tick())
	}
	return tea.Batch(cmds...)
}

// Close stops pending work and detaches the widgets. Safe to call twice.
func (m *Model) Close() {
	if m.closed {
		return
	}
	m.closed = true
	m.ctrl.Shutdown()
	if m.cycleCancel != nil {
		m.cycleCancel()
	}
	m.cancel()
	for _, off := range m.offs {
		off()
	}
	m.gauges.Close()
	m.bench.Close()
}

// Mode returns the active mode.
func (m *Model) Mode() fsm.Mode { return m.machine.Current() }

// Router returns the dashboard's router.
func (m *Model) Router() *router.Router { return m.router }

func (m *Model) selectedHost() string {
	if m.selected < 0 || m.selected >= len(m.hosts) {
		return ""
	}
	return m.hosts[m.selected]
}

func (m *Model) snapshot() snapshot {
	s := snapshot{
		name:       m.opts.Name,
		cluster:    m.cluster,
		clusterErr: m.clusterErr,
		selected:   m.selected,
		history:    m.history,
		hosts:      make([]hostState, 0, len(m.hosts)),
	}
	for _, h := range m.hosts {
		s.hosts = append(s.hosts, *m.state[h])
	}
	return s
}
