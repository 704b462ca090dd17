package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/cephdash/internal/logger"
	"github.com/rileyhilliard/cephdash/internal/ui"
	"github.com/rileyhilliard/cephdash/internal/vent"
)

const tileWidth = 18

// Workbench is the visualization-mode widget: a tile per host colored by CPU
// load and a table of pool client I/O.
type Workbench struct {
	anim       animator
	fullscreen bool
	offs       []func()
}

// NewWorkbench subscribes a workbench widget to bus.
func NewWorkbench(bus *vent.Bus, log logger.Logger) *Workbench {
	wb := &Workbench{anim: animator{log: log}}
	wb.offs = []func(){
		bus.Subscribe(vent.VizFullscreen, func(args ...any) {
			wb.anim.start(vent.VizFullscreen, false, vent.ContinuationArg(args), func() { wb.fullscreen = true })
		}),
		bus.Subscribe(vent.VizDashboard, func(args ...any) {
			wb.anim.start(vent.VizDashboard, true, vent.ContinuationArg(args), func() { wb.fullscreen = false })
		}),
	}
	return wb
}

// Close unsubscribes the widget.
func (wb *Workbench) Close() {
	for _, off := range wb.offs {
		off()
	}
	wb.offs = nil
}

// Fullscreen reports whether the workbench owns the screen.
func (wb *Workbench) Fullscreen() bool { return wb.fullscreen }

// Animating reports whether a transition is in flight.
func (wb *Workbench) Animating() bool { return wb.anim.active() }

// Step advances the running transition by one frame.
func (wb *Workbench) Step() { wb.anim.step() }

// View draws the tile map and the pool table.
func (wb *Workbench) View(s snapshot, width int) string {
	if !wb.fullscreen && !wb.anim.active() {
		return ""
	}
	parts := []string{
		ui.TitleStyle.Render("Workbench") + ui.MutedStyle.Render("  host load and pool I/O"),
		"",
		tileMap(s, width),
		"",
		poolTable(s, width),
	}
	return clip(strings.Join(parts, "\n"), wb.anim.visible())
}

func tileMap(s snapshot, width int) string {
	if len(s.hosts) == 0 {
		return ui.MutedStyle.Render("No hosts configured")
	}
	perRow := max(1, width/(tileWidth+1))
	var rows []string
	for i := 0; i < len(s.hosts); i += perRow {
		end := min(i+perRow, len(s.hosts))
		tiles := make([]string, 0, perRow)
		for j := i; j < end; j++ {
			tiles = append(tiles, tile(s.hosts[j], j == s.selected))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, tiles...))
	}
	return strings.Join(rows, "\n")
}

func tile(h hostState, selected bool) string {
	style := lipgloss.NewStyle().
		Width(tileWidth).
		Padding(0, 1).
		MarginRight(1).
		Foreground(ui.ColorDarkBg)

	var label string
	switch {
	case h.err != "":
		style = style.Background(ui.ColorCritical)
		label = "offline"
	case h.sample == nil:
		style = style.Background(ui.ColorBorder).Foreground(ui.ColorTextMuted)
		label = "…"
	default:
		style = style.Background(ui.MetricColor(h.sample.CPU.Percent))
		label = ui.FormatValue(h.sample.CPU.Percent, ui.UnitPercent)
	}
	if selected {
		style = style.Bold(true).Underline(true)
	}
	return style.Render(truncate(h.alias, tileWidth-2) + "\n" + label)
}

func poolTable(s snapshot, width int) string {
	if s.cluster == nil || len(s.cluster.Pools) == 0 {
		return ui.MutedStyle.Render("No pool statistics yet")
	}
	const row = "%-20s %12s %12s %12s %12s"
	lines := []string{ui.LabelStyle.Render(fmt.Sprintf(row, "pool", "read ops", "write ops", "read", "write"))}
	for _, p := range s.cluster.Pools {
		lines = append(lines, ui.ValueStyle.Render(fmt.Sprintf(row,
			truncate(p.Name, 20),
			ui.FormatValue(p.ReadOpsPerSec, ui.UnitOpsPerSec),
			ui.FormatValue(p.WriteOpsPerSec, ui.UnitOpsPerSec),
			ui.FormatValue(p.ReadBytesPerSec, ui.UnitBytesPerSec),
			ui.FormatValue(p.WriteBytesPerSec, ui.UnitBytesPerSec),
		)))
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(strings.Join(lines, "\n"))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
