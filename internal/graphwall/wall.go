package graphwall

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/cephdash/internal/errors"
	"github.com/rileyhilliard/cephdash/internal/ui"
)

// Wall is the graph area of the graph mode: a title, an optional host
// selector with view buttons, and a scrollable set of graphs. It embeds the
// Builder so callers reach the make functions through the wall.
//
// All methods except the embedded make functions must be called from the
// update loop.
type Wall struct {
	*Builder

	rendered bool
	buttons  bool
	loading  bool
	selected string
	btnMode  string
	btnIDs   []string
	title    string
	graphs   []Descriptor
	errMsg   string

	width, height int
	viewport      viewport.Model
	spinner       spinner.Model
}

// New creates a closed wall reading from src.
func New(src Source, points int) *Wall {
	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"◐", "◓", "◑", "◒"},
		FPS:    spinner.Dot.FPS,
	}
	sp.Style = lipgloss.NewStyle().Foreground(ui.ColorAccent)

	return &Wall{
		Builder:  NewBuilder(src, points),
		viewport: viewport.New(0, 0),
		spinner:  sp,
	}
}

// Render attaches the wall to the screen.
func (w *Wall) Render() {
	w.rendered = true
	w.refresh()
}

// Close detaches the wall and drops its content. Closing a wall that was
// never rendered does nothing.
func (w *Wall) Close() {
	if !w.rendered {
		return
	}
	w.rendered = false
	w.buttons = false
	w.loading = false
	w.clear()
}

// HideGraphs removes the displayed graphs. Safe to call when none are shown.
func (w *Wall) HideGraphs() {
	w.loading = false
	w.clear()
}

func (w *Wall) clear() {
	w.title = ""
	w.graphs = nil
	w.errMsg = ""
	w.refresh()
}

// ShowButtons shows the host selector and view buttons.
func (w *Wall) ShowButtons() { w.buttons = true }

// HideButtons hides the host selector and view buttons.
func (w *Wall) HideButtons() { w.buttons = false }

// UpdateSelect sets the host shown in the selector.
func (w *Wall) UpdateSelect(host string) { w.selected = host }

// UpdateBtns marks the button for mode as active.
func (w *Wall) UpdateBtns(mode string) { w.btnMode = mode }

// SetButtons sets the view button ids in display order.
func (w *Wall) SetButtons(ids []string) { w.btnIDs = ids }

// Loading shows title with a spinner until graphs or an error arrive.
func (w *Wall) Loading(title string) {
	w.loading = true
	w.title = title
	w.graphs = nil
	w.errMsg = ""
	w.refresh()
}

// RenderGraphs replaces the displayed graphs. Redrawing the same title
// keeps the scroll position.
func (w *Wall) RenderGraphs(title string, graphs []Descriptor) {
	fresh := title != w.title || len(w.graphs) == 0
	w.loading = false
	w.title = title
	w.graphs = graphs
	w.errMsg = ""
	if fresh {
		w.viewport.GotoTop()
	}
	w.refresh()
}

// ShowError replaces the graphs with a failure message.
func (w *Wall) ShowError(title string, err error) {
	w.loading = false
	w.title = title
	w.graphs = nil
	w.errMsg = errors.OneLine(err)
	w.refresh()
}

// IsRendered reports whether the wall is attached.
func (w *Wall) IsRendered() bool { return w.rendered }

// ButtonsVisible reports whether the selector and buttons are shown.
func (w *Wall) ButtonsVisible() bool { return w.buttons }

// IsLoading reports whether a fetch is pending.
func (w *Wall) IsLoading() bool { return w.loading }

// Selected returns the host in the selector.
func (w *Wall) Selected() string { return w.selected }

// ActiveButton returns the active view button.
func (w *Wall) ActiveButton() string { return w.btnMode }

// Title returns the displayed title.
func (w *Wall) Title() string { return w.title }

// Graphs returns the displayed graphs.
func (w *Wall) Graphs() []Descriptor { return w.graphs }

// Err returns the displayed error line, empty when none.
func (w *Wall) Err() string { return w.errMsg }
