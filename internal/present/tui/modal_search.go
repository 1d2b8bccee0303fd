package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	lipglossv2 "github.com/charmbracelet/lipgloss/v2"
)

// searchModal is a foreground modal with a single query input.
type searchModal struct {
	input  textinput.Model
	width  int
	height int
	padX   int
	padY   int
	box    lipglossv2.Style
}

func newSearchModal(query string, termW, termH int) *searchModal {
	m := &searchModal{padX: 2, padY: 1}
	m.input = textinput.New()
	m.input.Prompt = "search: "
	m.input.Placeholder = "code, name or category"
	m.input.SetValue(query)
	m.input.Focus()
	m.resizeForTerm(termW, termH)
	return m
}

func (m *searchModal) resizeForTerm(termW, termH int) {
	if termW <= 0 || termH <= 0 {
		termW, termH = 80, 24
	}
	w := min(72, max(40, termW*6/10))
	if termW < 44 {
		w = max(20, termW-2)
	}
	h := 7
	m.width, m.height = w, h
	m.box = lipglossv2.NewStyle().
		Width(w).
		Height(h).
		Padding(m.padY, m.padX).
		Border(lipglossv2.RoundedBorder()).
		BorderForeground(lipglossv2.Color("63"))
	inner := w - 2 - m.padX*2
	m.input.Width = max(10, inner-lipgloss.Width(m.input.Prompt))
}

func (m *searchModal) value() string { return m.input.Value() }

func (m *searchModal) update(msg tea.Msg) (*searchModal, tea.Cmd) {
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *searchModal) Init() tea.Cmd { return textinput.Blink }

func (m *searchModal) View() string {
	header := lipgloss.NewStyle().Bold(true).Render("Search products")
	help := lipgloss.NewStyle().Faint(true).Render("enter=apply • empty=show all • esc=cancel")
	return m.box.Render(strings.Join([]string{header, "", m.input.View(), "", help}, "\n"))
}
