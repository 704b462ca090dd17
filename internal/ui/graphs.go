package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille patterns use a 2x4 dot matrix per character starting at U+2800;
// bit n sets dot n+1, with dots 7 and 8 on the bottom row.
const brailleBase = '\u2800'

var sparklineBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// brailleDots maps [row][col] to the bit offset of that dot.
var brailleDots = [4][2]uint8{
	{0, 3},
	{1, 4},
	{2, 5},
	{6, 7},
}

// Scale is the value range a graph is drawn against.
type Scale struct {
	Min, Max float64
}

// PercentScale is the fixed 0-100 range.
var PercentScale = Scale{0, 100}

// AutoScale returns 0..max(data), or PercentScale when percent is true.
// An all-zero series gets a 0..1 range so it draws as a flat floor.
func AutoScale(percent bool, series ...[]float64) Scale {
	if percent {
		return PercentScale
	}
	maxVal := 0.0
	for _, data := range series {
		for _, v := range data {
			if v > maxVal {
				maxVal = v
			}
		}
	}
	if maxVal <= 0 {
		maxVal = 1
	}
	return Scale{0, maxVal}
}

func (s Scale) normalize(v float64) float64 {
	if s.Max <= s.Min {
		return 0.5
	}
	n := (v - s.Min) / (s.Max - s.Min)
	if n < 0 {
		return 0
	}
	if n > 1 {
		return 1
	}
	return n
}

// RenderBraille renders a right-aligned braille area graph of data. Each
// character covers two samples and four vertical levels. When color is
// empty, columns are colored by severity, which only makes sense on
// PercentScale.
func RenderBraille(data []float64, width, height int, scale Scale, color lipgloss.Color) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	totalDots := height * 4
	targetPoints := width * 2
	resampled := data
	if len(data) > targetPoints {
		resampled = resample(data, targetPoints)
	}

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = make([]rune, width)
		for j := range grid[i] {
			grid[i][j] = brailleBase
		}
	}
	colMax := make([]float64, width)

	offset := targetPoints - len(resampled)
	for i, val := range resampled {
		pos := i + offset
		charCol := pos / 2
		if val > colMax[charCol] {
			colMax[charCol] = val
		}
		dotHeight := int(scale.normalize(val) * float64(totalDots))
		for dot := 0; dot < dotHeight; dot++ {
			row := height - 1 - dot/4
			grid[row][charCol] |= rune(1) << brailleDots[3-dot%4][pos%2]
		}
	}

	lines := make([]string, height)
	for r, row := range grid {
		var sb strings.Builder
		for c, ch := range row {
			fg := color
			if fg == "" {
				fg = MetricColor(colMax[c])
			}
			sb.WriteString(lipgloss.NewStyle().Foreground(fg).Render(string(ch)))
		}
		lines[r] = sb.String()
	}
	return strings.Join(lines, "\n")
}

// RenderMiniSparkline renders a single-row block sparkline.
func RenderMiniSparkline(data []float64, width int, scale Scale) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}
	var sb strings.Builder
	for _, val := range resample(data, width) {
		idx := int(scale.normalize(val) * float64(len(sparklineBlocks)-1))
		sb.WriteRune(sparklineBlocks[idx])
	}
	return sb.String()
}

// RenderColoredSparkline colors a percentage sparkline by its latest value.
func RenderColoredSparkline(data []float64, width int) string {
	line := RenderMiniSparkline(data, width, PercentScale)
	if line == "" {
		return line
	}
	return lipgloss.NewStyle().Foreground(MetricColor(data[len(data)-1])).Render(line)
}

// RenderGradientBar renders a bar whose filled cells shade green to red by
// position.
func RenderGradientBar(width int, percent float64) string {
	if width < 1 {
		width = 1
	}
	filled := int(clampPercent(percent) / 100.0 * float64(width))

	var sb strings.Builder
	for i := 0; i < width; i++ {
		if i < filled {
			pos := float64(i+1) / float64(width) * 100
			sb.WriteString(lipgloss.NewStyle().Foreground(MetricColor(pos)).Render("█"))
		} else {
			sb.WriteString(lipgloss.NewStyle().Foreground(ColorTextMuted).Render("░"))
		}
	}
	return sb.String()
}

// resample resizes data to targetSize. Downsampling keeps the max of each
// bucket so spikes survive; upsampling interpolates linearly.
func resample(data []float64, targetSize int) []float64 {
	if len(data) == 0 || targetSize <= 0 {
		return nil
	}
	if len(data) == targetSize {
		return data
	}

	result := make([]float64, targetSize)
	if len(data) == 1 {
		for i := range result {
			result[i] = data[0]
		}
		return result
	}

	if len(data) > targetSize {
		bucket := float64(len(data)) / float64(targetSize)
		for i := 0; i < targetSize; i++ {
			start := int(float64(i) * bucket)
			end := int(float64(i+1) * bucket)
			if end > len(data) {
				end = len(data)
			}
			if start >= end {
				start = end - 1
			}
			maxVal := data[start]
			for _, v := range data[start+1 : end] {
				if v > maxVal {
					maxVal = v
				}
			}
			result[i] = maxVal
		}
		return result
	}

	scale := float64(len(data)-1) / float64(targetSize-1)
	for i := 0; i < targetSize; i++ {
		pos := float64(i) * scale
		idx := int(pos)
		frac := pos - float64(idx)
		if idx >= len(data)-1 {
			result[i] = data[len(data)-1]
		} else {
			result[i] = data[idx]*(1-frac) + data[idx+1]*frac
		}
	}
	return result
}
