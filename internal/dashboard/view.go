package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/cephdash/internal/fsm"
	"github.com/rileyhilliard/cephdash/internal/layout"
	"github.com/rileyhilliard/cephdash/internal/ui"
)

// chromeLines is the header, the blank line under it and the footer.
const chromeLines = 3

var helpBoxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ui.ColorAccent).
	Padding(1, 2)

// View renders the dashboard.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderBody())
	b.WriteString("\n")
	b.WriteString(ui.FooterStyle.Render(m.help.View(keys)))
	return b.String()
}

func (m *Model) renderHeader() string {
	online := 0
	for _, h := range m.hosts {
		if st := m.state[h]; st.sample != nil && st.err == "" {
			online++
		}
	}

	title := ui.TitleStyle.Render("cephdash") + ui.LabelStyle.Render(" · ") + ui.HostNameStyle.Render(m.opts.Name)
	mode := ui.ButtonActiveStyle.Render(modeLabel(m.machine.Current()))

	health := "waiting"
	if m.cluster != nil {
		health = m.cluster.Health
	}
	healthStyle := lipgloss.NewStyle().Foreground(ui.HealthColor(healthOrEmpty(m.cluster)))

	stats := ui.LabelStyle.Render(fmt.Sprintf(" %d/%d hosts · updated %s", online, len(m.hosts), ui.FormatAge(m.lastUpdate)))
	return ui.HeaderStyle.Render(title + "  " + mode + " " + healthStyle.Render(health) + stats)
}

func modeLabel(mode fsm.Mode) string {
	if mode == fsm.Visualization {
		return "workbench"
	}
	return mode.String()
}

// renderBody draws what the page says is showing: the wall in graph mode,
// otherwise the gauges and, with the workbench body class, the workbench.
func (m *Model) renderBody() string {
	if m.machine.Current() == fsm.Graph {
		if !m.wall.IsRendered() || !m.page.Visible(elWall) {
			if m.ready.IsOpen() {
				return ui.MutedStyle.Render("Loading graphs…")
			}
			return ui.MutedStyle.Render("Waiting for the first collection…")
		}
		return m.wall.View()
	}

	s := m.snapshot()
	width := m.width
	if width <= 0 {
		width = 80
	}
	var parts []string
	if g := m.gauges.View(s, width, m.page); g != "" {
		parts = append(parts, g)
	}
	if m.page.HasClass(layout.ClassWorkbench) || m.bench.Animating() {
		if wb := m.bench.View(s, width); wb != "" {
			parts = append(parts, wb)
		}
	}
	return strings.Join(parts, "\n\n")
}

func (m *Model) renderHelp() string {
	content := ui.TitleStyle.Render("Keyboard Shortcuts") + "\n\n" +
		m.help.FullHelpView(keys.FullHelp()) + "\n\n" +
		ui.LabelStyle.Render("Press ? to close")
	box := helpBoxStyle.Render(content)
	if m.width <= 0 || m.height <= 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
