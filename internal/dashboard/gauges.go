package dashboard

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/cephdash/internal/layout"
	"github.com/rileyhilliard/cephdash/internal/logger"
	"github.com/rileyhilliard/cephdash/internal/metrics"
	"github.com/rileyhilliard/cephdash/internal/ui"
	"github.com/rileyhilliard/cephdash/internal/vent"
)

// Page element ids.
const (
	elCluster = "cluster"
	elHosts   = "hosts"
	elWall    = "wall"
)

const (
	hostCardWidth = 36
	sparkPoints   = 60
)

// hostState is what the shell knows about one configured host.
type hostState struct {
	alias   string
	sample  *metrics.HostSample
	err     string
	latency time.Duration
	via     string
}

// snapshot is the data the widgets draw from.
type snapshot struct {
	name       string
	cluster    *metrics.ClusterStatus
	clusterErr string
	hosts      []hostState
	selected   int
	history    *metrics.History
}

// Gauges is the dashboard-mode widget: the cluster health card and one card
// per host. It hides, collapses to a summary line and expands again on
// request over the bus.
type Gauges struct {
	anim      animator
	hidden    bool
	collapsed bool
	refreshes int
	offs      []func()
}

// NewGauges subscribes a gauges widget to bus.
func NewGauges(bus *vent.Bus, log logger.Logger) *Gauges {
	g := &Gauges{anim: animator{log: log}}
	g.offs = []func(){
		bus.Subscribe(vent.GaugesDisappear, func(args ...any) {
			g.anim.start(vent.GaugesDisappear, true, vent.ContinuationArg(args), func() { g.hidden = true })
		}),
		bus.Subscribe(vent.GaugesCollapse, func(args ...any) {
			g.anim.start(vent.GaugesCollapse, true, vent.ContinuationArg(args), func() { g.collapsed = true })
		}),
		bus.Subscribe(vent.GaugesExpand, func(args ...any) {
			g.anim.start(vent.GaugesExpand, false, vent.ContinuationArg(args), func() { g.collapsed = false })
		}),
		bus.Subscribe(vent.GaugesReappear, func(...any) {
			g.anim.finish()
			g.hidden = false
			g.collapsed = false
		}),
		bus.Subscribe(vent.DashboardRefresh, func(...any) {
			g.refreshes++
		}),
	}
	return g
}

// Close unsubscribes the widget.
func (g *Gauges) Close() {
	for _, off := range g.offs {
		off()
	}
	g.offs = nil
}

// Hidden reports whether the gauges disappeared.
func (g *Gauges) Hidden() bool { return g.hidden }

// Collapsed reports whether the gauges are reduced to the summary line.
func (g *Gauges) Collapsed() bool { return g.collapsed }

// Animating reports whether a transition is in flight.
func (g *Gauges) Animating() bool { return g.anim.active() }

// Refreshes counts dashboard:refresh requests.
func (g *Gauges) Refreshes() int { return g.refreshes }

// Step advances the running transition by one frame.
func (g *Gauges) Step() { g.anim.step() }

// View draws the rows of page that are visible.
func (g *Gauges) View(s snapshot, width int, page *layout.Page) string {
	if g.hidden {
		return ""
	}
	if g.collapsed && !g.anim.active() {
		return summaryLine(s, width)
	}

	var rows []string
	if page.Visible(elCluster) {
		rows = append(rows, clusterCard(s, width))
	}
	if page.Visible(elHosts) {
		rows = append(rows, hostCards(s, width))
	}
	return clip(strings.Join(rows, "\n"), g.anim.visible())
}

// summaryLine is the collapsed form: health, usage and host count.
func summaryLine(s snapshot, width int) string {
	health := "unknown"
	used := "–"
	if s.cluster != nil {
		health = s.cluster.Health
		used = ui.FormatValue(s.cluster.UsedPercent(), ui.UnitPercent)
	}
	online := 0
	for _, h := range s.hosts {
		if h.sample != nil && h.err == "" {
			online++
		}
	}
	line := ui.TitleStyle.Render(s.name) + " " +
		lipgloss.NewStyle().Foreground(ui.HealthColor(healthOrEmpty(s.cluster))).Render(health) +
		ui.LabelStyle.Render(fmt.Sprintf(" · %s used · %d/%d hosts", used, online, len(s.hosts)))
	return lipgloss.NewStyle().MaxWidth(width).Render(line)
}

func healthOrEmpty(c *metrics.ClusterStatus) string {
	if c == nil {
		return ""
	}
	return c.Health
}

func clusterCard(s snapshot, width int) string {
	width = max(40, width-1)
	inner := width - 4

	value := "unknown"
	if s.cluster != nil {
		value = s.cluster.Health
	}
	lines := []string{ui.SectionHeader(s.name, value, width)}
	add := func(content string) {
		content = lipgloss.NewStyle().MaxWidth(inner).Render(content)
		lines = append(lines, ui.SectionContentLine(content, width))
	}

	switch c := s.cluster; {
	case c == nil && s.clusterErr != "":
		add(ui.ErrorStyle.Render("✗ " + s.clusterErr))
	case c == nil:
		add(ui.MutedStyle.Render("waiting for ceph status"))
	default:
		pct := c.UsedPercent()
		usage := fmt.Sprintf(" %5.1f%% %s / %s", pct, ui.FormatBytes(c.BytesUsed), ui.FormatBytes(c.BytesTotal))
		add(ui.RenderGradientBar(max(10, inner-lipgloss.Width(usage)), pct) + ui.ValueStyle.Render(usage))

		used := s.history.Series(metrics.ClusterHost, metrics.Key(metrics.GroupUsed, "", metrics.FieldPercent), sparkPoints)
		if spark := ui.RenderColoredSparkline(used, inner); spark != "" {
			add(spark)
		}

		osd := ui.LabelStyle.Render("OSDs ") + ui.ValueStyle.Render(fmt.Sprintf("%d", c.OSDsTotal)) +
			ui.LabelStyle.Render(" · up ") + countStyle(c.OSDsUp, c.OSDsTotal).Render(fmt.Sprintf("%d", c.OSDsUp)) +
			ui.LabelStyle.Render(" · in ") + countStyle(c.OSDsIn, c.OSDsTotal).Render(fmt.Sprintf("%d", c.OSDsIn))
		add(osd)
		add(ui.LabelStyle.Render(fmt.Sprintf("PGs %d", c.PGsTotal)) + pgSummary(c.PGStates))
		for _, check := range c.Checks {
			add(lipgloss.NewStyle().Foreground(ui.HealthColor(c.Health)).Render("! " + check))
		}
	}
	lines = append(lines, ui.SectionFooter(width))
	return strings.Join(lines, "\n")
}

func countStyle(n, total int) lipgloss.Style {
	if n < total {
		return lipgloss.NewStyle().Foreground(ui.ColorWarning)
	}
	return ui.ValueStyle
}

// pgSummary lists placement group states, most common first.
func pgSummary(states map[string]int) string {
	type pair struct {
		state string
		n     int
	}
	pairs := make([]pair, 0, len(states))
	for st, n := range states {
		pairs = append(pairs, pair{st, n})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].n != pairs[j].n {
			return pairs[i].n > pairs[j].n
		}
		return pairs[i].state < pairs[j].state
	})

	var b strings.Builder
	for _, p := range pairs {
		b.WriteString(ui.LabelStyle.Render(" · "+p.state+" ") + ui.ValueStyle.Render(fmt.Sprintf("%d", p.n)))
	}
	return b.String()
}

func hostCards(s snapshot, width int) string {
	if len(s.hosts) == 0 {
		return ui.MutedStyle.Render("No hosts configured")
	}
	perRow := max(1, width/(hostCardWidth+1))

	var rows []string
	for i := 0; i < len(s.hosts); i += perRow {
		end := min(i+perRow, len(s.hosts))
		cards := make([]string, 0, perRow)
		for j := i; j < end; j++ {
			cards = append(cards, hostCard(s, j))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return strings.Join(rows, "\n")
}

func hostCard(s snapshot, i int) string {
	h := s.hosts[i]
	width := hostCardWidth
	inner := width - 4

	name := h.alias
	if i == s.selected {
		name = "▸ " + name
	}
	latency := ""
	if h.latency > 0 {
		latency = h.latency.Round(time.Millisecond).String()
	}
	lines := []string{ui.SectionHeader(name, latency, width)}
	add := func(content string) {
		content = lipgloss.NewStyle().MaxWidth(inner).Render(content)
		lines = append(lines, ui.SectionContentLine(content, width))
	}

	switch {
	case h.err != "":
		add(ui.ErrorStyle.Render("✗ " + h.err))
	case h.sample == nil:
		add(ui.MutedStyle.Render("connecting…"))
	default:
		cpu := h.sample.CPU.Percent
		add(ui.LabelStyle.Render("CPU ") + ui.ProgressBar(inner-12, cpu) + ui.ValueStyle.Render(fmt.Sprintf(" %6.1f%%", cpu)))
		series := s.history.Series(h.alias, metrics.Key(metrics.GroupCPU, "", metrics.FieldPercent), sparkPoints)
		if spark := ui.RenderColoredSparkline(series, inner); spark != "" {
			add(spark)
		}
		ram := h.sample.RAM.Percent()
		add(ui.LabelStyle.Render("RAM ") + ui.ProgressBar(inner-12, ram) + ui.ValueStyle.Render(fmt.Sprintf(" %6.1f%%", ram)))
		load := h.sample.CPU.LoadAvg
		add(ui.LabelStyle.Render("load ") + ui.ValueStyle.Render(fmt.Sprintf("%.2f %.2f %.2f", load[0], load[1], load[2])) +
			ui.MutedStyle.Render(fmt.Sprintf(" · %d cores", h.sample.CPU.Cores)))
	}
	if h.via != "" && h.via != h.alias {
		add(ui.MutedStyle.Render("via " + h.via))
	}
	lines = append(lines, ui.SectionFooter(width))
	return lipgloss.NewStyle().MarginRight(1).Render(strings.Join(lines, "\n"))
}
