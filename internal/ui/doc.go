// Package ui holds the dashboard palette, shared lipgloss styles, and the
// braille and block graph renderers used by the gauges and the graph wall.
package ui
