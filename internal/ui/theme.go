package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Dashboard color palette
const (
	ColorDarkBg    = lipgloss.Color("#0B0E14")
	ColorSurfaceBg = lipgloss.Color("#121722")
	ColorBorder    = lipgloss.Color("#2B3245")

	ColorHealthy  = lipgloss.Color("#3FD47A")
	ColorWarning  = lipgloss.Color("#F2B33D")
	ColorCritical = lipgloss.Color("#F2545B")

	ColorTextPrimary   = lipgloss.Color("#E6E9EF")
	ColorTextSecondary = lipgloss.Color("#A7B0C4")
	ColorTextMuted     = lipgloss.Color("#5F6A82")

	// Ceph red, used for titles and the selected card.
	ColorAccent    = lipgloss.Color("#EF5B5B")
	ColorAccentDim = lipgloss.Color("#8E6CEF")

	ColorGraph = lipgloss.Color("#4FC3F7")
)

// Status symbols
const (
	SymbolSuccess = "✓"
	SymbolFail    = "✗"
)

// SeriesColors cycle across the series of one graph.
var SeriesColors = []lipgloss.Color{
	ColorGraph,
	lipgloss.Color("#F48FB1"),
	lipgloss.Color("#AED581"),
	lipgloss.Color("#FFD54F"),
	lipgloss.Color("#BA68C8"),
	lipgloss.Color("#4DB6AC"),
}

// SeriesColor returns the color of the i-th series.
func SeriesColor(i int) lipgloss.Color {
	return SeriesColors[i%len(SeriesColors)]
}

// Thresholds for metric severity levels
const (
	WarningThreshold  = 70.0
	CriticalThreshold = 90.0
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1).
			MarginRight(1).
			MarginBottom(1)

	CardSelectedStyle = CardStyle.
				BorderForeground(ColorAccent)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	HostNameStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorCritical)

	ButtonStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary).
			Padding(0, 1)

	ButtonActiveStyle = ButtonStyle.
				Foreground(ColorDarkBg).
				Background(ColorAccent).
				Bold(true)
)

// MetricColor returns the severity color for a percentage.
func MetricColor(percent float64) lipgloss.Color {
	switch {
	case percent >= CriticalThreshold:
		return ColorCritical
	case percent >= WarningThreshold:
		return ColorWarning
	default:
		return ColorHealthy
	}
}

// HealthColor maps a ceph health string to a severity color.
func HealthColor(health string) lipgloss.Color {
	switch health {
	case "HEALTH_OK":
		return ColorHealthy
	case "HEALTH_WARN":
		return ColorWarning
	case "":
		return ColorTextMuted
	default:
		return ColorCritical
	}
}

// ProgressBar renders a bracketless bar colored by percentage.
func ProgressBar(width int, percent float64) string {
	if width < 1 {
		width = 1
	}
	filled := int(clampPercent(percent) / 100.0 * float64(width))
	bar := strings.Repeat("▰", filled) + strings.Repeat("▱", width-filled)
	return lipgloss.NewStyle().Foreground(MetricColor(percent)).Render(bar)
}

// SectionHeader renders a header line with the title on the left and value
// on the right: ╭─ Title ───────── Value ╮
func SectionHeader(title, value string, width int) string {
	if width < 10 {
		width = 10
	}
	leftWidth := 3 + lipgloss.Width(title) + 1
	rightWidth := 1 + lipgloss.Width(value) + 2
	fillWidth := width - leftWidth - rightWidth
	if fillWidth < 1 {
		fillWidth = 1
	}

	border := lipgloss.NewStyle().Foreground(ColorBorder)
	valueStyle := lipgloss.NewStyle().Foreground(ColorGraph).Bold(true)
	return border.Render("╭─ ") +
		TitleStyle.Render(title) +
		border.Render(" "+strings.Repeat("─", fillWidth)+" ") +
		valueStyle.Render(value) +
		border.Render(" ╮")
}

// SectionFooter renders the bottom border of a section.
func SectionFooter(width int) string {
	if width < 2 {
		width = 2
	}
	return lipgloss.NewStyle().Foreground(ColorBorder).Render("╰" + strings.Repeat("─", width-2) + "╯")
}

// SectionContentLine renders │ content │ padded to width.
func SectionContentLine(content string, width int) string {
	if width < 4 {
		width = 4
	}
	border := lipgloss.NewStyle().Foreground(ColorBorder)
	padding := width - 4 - lipgloss.Width(content)
	if padding < 0 {
		padding = 0
	}
	return border.Render("│") + " " + content + strings.Repeat(" ", padding) + " " + border.Render("│")
}

func clampPercent(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
