package dashboard

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/cephdash/internal/app"
	"github.com/rileyhilliard/cephdash/internal/fsm"
	"github.com/rileyhilliard/cephdash/internal/vent"
)

// keyMap holds the dashboard key bindings.
type keyMap struct {
	Dashboard key.Binding
	Workbench key.Binding
	Cluster   key.Binding
	Pools     key.Binding
	Overview  key.Binding
	Metric    key.Binding
	NextHost  key.Binding
	PrevHost  key.Binding
	Back      key.Binding
	Refresh   key.Binding
	Help      key.Binding
	Close     key.Binding
	Quit      key.Binding
}

var keys = keyMap{
	Dashboard: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dashboard")),
	Workbench: key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "workbench")),
	Cluster:   key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "cluster graphs")),
	Pools:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pool IOPS")),
	Overview:  key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "host overview")),
	Metric: key.NewBinding(
		key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8"),
		key.WithHelp("1-8", "host metric"),
	),
	NextHost: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next host")),
	PrevHost: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous host")),
	Back:     key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "back")),
	Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Close:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close help")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// ShortHelp is the footer line.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Dashboard, k.Workbench, k.Cluster, k.Overview, k.Help, k.Quit}
}

// FullHelp is the help overlay, one column per group.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Dashboard, k.Workbench, k.Cluster, k.Pools, k.Overview, k.Metric},
		{k.NextHost, k.PrevHost, k.Back, k.Refresh},
		{k.Help, k.Close, k.Quit},
	}
}

// handleKey maps a key press to an intent. Mode changes go through the bus
// so keys and other publishers take the same path.
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		m.Close()
		return tea.Quit

	case key.Matches(msg, keys.Help):
		m.showHelp = !m.showHelp

	case m.showHelp && key.Matches(msg, keys.Close):
		m.showHelp = false

	case key.Matches(msg, keys.Dashboard):
		m.bus.Publish(vent.AppDashboard)

	case key.Matches(msg, keys.Workbench):
		m.bus.Publish(vent.AppFullscreen)

	case key.Matches(msg, keys.Cluster):
		m.bus.Publish(vent.AppGraph, app.GraphTarget{Host: app.TargetAll})

	case key.Matches(msg, keys.Pools):
		m.bus.Publish(vent.AppGraph, app.GraphTarget{Host: app.TargetIOPS})

	case key.Matches(msg, keys.Overview):
		if host := m.selectedHost(); host != "" {
			m.bus.Publish(vent.AppGraph, app.GraphTarget{Host: host})
		}

	case key.Matches(msg, keys.Metric):
		idx := int(msg.String()[0] - '1')
		if host := m.selectedHost(); host != "" && idx < len(app.Registry) {
			m.bus.Publish(vent.AppGraph, app.GraphTarget{Host: host, ID: app.Registry[idx].ID})
		}

	case key.Matches(msg, keys.NextHost):
		m.selectHost(1)

	case key.Matches(msg, keys.PrevHost):
		m.selectHost(-1)

	case key.Matches(msg, keys.Back):
		if err := m.router.Back(); err != nil {
			m.log.Warn("back: %v", err)
		}

	case key.Matches(msg, keys.Refresh):
		// The wall rebuilds when the cycle completes.
		return m.collectCmd()

	default:
		if m.machine.Current() == fsm.Graph {
			return m.wall.Update(msg)
		}
	}
	return nil
}

// selectHost moves the selection by delta, wrapping around. On a host graph
// the same view follows the selection.
func (m *Model) selectHost(delta int) {
	n := len(m.hosts)
	if n == 0 {
		return
	}
	m.selected = ((m.selected+delta)%n + n) % n

	if m.machine.Current() != fsm.Graph {
		return
	}
	last := m.ctrl.LastTarget()
	if last.Host == app.TargetAll || last.Host == app.TargetIOPS || last.Host == "" {
		return
	}
	m.bus.Publish(vent.AppGraph, app.GraphTarget{Host: m.selectedHost(), ID: last.ID})
}
