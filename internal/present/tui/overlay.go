package tui

import (
	"github.com/charmbracelet/lipgloss/v2"
)

// renderOverlay centers fg over a dimmed base view.
func (m model) renderOverlay(base, fg string, overlayW, overlayH int) string {
	termW, termH := m.width, m.height
	if termW <= 0 {
		termW = 80
	}
	if termH <= 0 {
		termH = 24
	}
	x := max(0, (termW-overlayW)/2)
	y := max(0, (termH-overlayH)/2)
	dimBase := lipgloss.NewStyle().Faint(true).Render(base)

	baseLayer := lipgloss.NewLayer(dimBase).
		Width(termW).
		Height(termH)
	fgLayer := lipgloss.NewLayer(fg).
		Width(overlayW).
		Height(overlayH).
		X(x).
		Y(y)

	return lipgloss.NewCanvas(baseLayer, fgLayer).Render()
}
