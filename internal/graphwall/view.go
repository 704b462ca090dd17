package graphwall

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/cephdash/internal/ui"
)

const (
	minCardWidth = 48
	stripHeight  = 2
	chromeHeight = 3 // title line, button line, blank
)

// SetSize resizes the wall to the area it may draw in.
func (w *Wall) SetSize(width, height int) {
	w.width = width
	w.height = height
	w.viewport.Width = width
	w.viewport.Height = max(1, height-chromeHeight)
	w.refresh()
}

// Tick starts the spinner animation.
func (w *Wall) Tick() tea.Cmd {
	return w.spinner.Tick
}

// Update handles spinner ticks and scrolling.
func (w *Wall) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		w.spinner, cmd = w.spinner.Update(msg)
		return cmd
	case tea.KeyMsg, tea.MouseMsg:
		var cmd tea.Cmd
		w.viewport, cmd = w.viewport.Update(msg)
		return cmd
	}
	return nil
}

// View draws the wall; a closed wall draws nothing.
func (w *Wall) View() string {
	if !w.rendered {
		return ""
	}
	var b strings.Builder
	b.WriteString(w.renderTitle())
	b.WriteString("\n")
	if w.buttons {
		b.WriteString(w.renderButtons())
	}
	b.WriteString("\n\n")

	switch {
	case w.loading:
		b.WriteString(w.spinner.View() + " " + ui.MutedStyle.Render("fetching graphs"))
	case w.errMsg != "":
		b.WriteString(ui.ErrorStyle.Render("✗ " + w.errMsg))
	case len(w.graphs) == 0:
		b.WriteString(ui.MutedStyle.Render("Pick a view: g cluster, p pools, o host overview, 1-8 host metrics"))
	default:
		b.WriteString(w.viewport.View())
	}
	return b.String()
}

func (w *Wall) renderTitle() string {
	title := ui.TitleStyle.Render(w.title)
	if w.buttons && w.selected != "" {
		title += ui.LabelStyle.Render("  ◀ ") + ui.HostNameStyle.Render(w.selected) + ui.LabelStyle.Render(" ▶")
	}
	return title
}

func (w *Wall) renderButtons() string {
	btns := make([]string, 0, len(w.btnIDs))
	for i, id := range w.btnIDs {
		label := id
		if i > 0 {
			label = fmt.Sprintf("%d %s", i, id)
		}
		if id == w.btnMode {
			btns = append(btns, ui.ButtonActiveStyle.Render(label))
		} else {
			btns = append(btns, ui.ButtonStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, btns...)
}

// refresh re-lays the graphs into the viewport.
func (w *Wall) refresh() {
	if w.width <= 0 || len(w.graphs) == 0 {
		w.viewport.SetContent("")
		return
	}
	w.viewport.SetContent(w.layout())
}

func (w *Wall) layout() string {
	cols := max(1, w.width/minCardWidth)
	cardWidth := w.width / cols

	var rows []string
	for i := 0; i < len(w.graphs); i += cols {
		end := min(i+cols, len(w.graphs))
		cards := make([]string, 0, cols)
		for _, d := range w.graphs[i:end] {
			cards = append(cards, renderCard(d, cardWidth))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return strings.Join(rows, "\n")
}

// renderCard draws one graph of the given total width, margin included: a
// header with the title, then a braille strip and legend line per series,
// all on a shared scale.
func renderCard(d Descriptor, width int) string {
	inner := max(10, width-5)

	all := make([][]float64, len(d.Series))
	for i, s := range d.Series {
		all[i] = s.Points
	}
	scale := ui.AutoScale(d.Unit.IsPercent(), all...)

	lines := []string{ui.SectionHeader(d.Title, ui.FormatValue(scale.Max, d.Unit), inner+4)}
	if d.Empty() {
		lines = append(lines, ui.SectionContentLine(ui.MutedStyle.Render("no samples yet"), inner+4))
	}
	for i, s := range d.Series {
		if d.Empty() {
			break
		}
		color := ui.SeriesColor(i)
		strip := ui.RenderBraille(s.Points, inner, stripHeight, scale, color)
		for _, line := range strings.Split(strip, "\n") {
			lines = append(lines, ui.SectionContentLine(line, inner+4))
		}
		legend := lipgloss.NewStyle().Foreground(color).Render("● "+s.Label) + " " +
			ui.ValueStyle.Render(ui.FormatValue(s.Last(), d.Unit))
		lines = append(lines, ui.SectionContentLine(legend, inner+4))
	}
	lines = append(lines, ui.SectionFooter(inner+4))
	return lipgloss.NewStyle().MarginRight(1).Render(strings.Join(lines, "\n"))
}
