package tui

import (
	"bytes"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	lipglossv2 "github.com/charmbracelet/lipgloss/v2"

	"github.com/mithrel/sheetsite/internal/present/format"
	"github.com/mithrel/sheetsite/pkg/api"
)

// productModal shows the rendered product inside a scrollable viewport.
type productModal struct {
	p       api.Product
	lang    api.Lang
	vp      viewport.Model
	width   int
	height  int
	padX    int
	padY    int
	box     lipglossv2.Style
	content string
}

func newProductModal(p api.Product, lang api.Lang, termW, termH int) *productModal {
	m := &productModal{p: p, lang: lang, padX: 2, padY: 1}
	m.resizeForTerm(termW, termH)
	return m
}

func (m *productModal) resizeForTerm(termW, termH int) {
	if termW <= 0 || termH <= 0 {
		termW, termH = 80, 24
	}
	w := termW * 6 / 10
	if termW < 80 {
		w = termW - 4
	}
	if w < 40 {
		w = max(32, termW-2)
	}
	h := termH * 7 / 10
	if termH < 20 {
		h = termH - 2
	}
	if h < 10 {
		h = max(8, termH-1)
	}
	m.width, m.height = w, h
	m.box = lipglossv2.NewStyle().
		Width(w).
		Height(h).
		Padding(m.padY, m.padX).
		Border(lipglossv2.RoundedBorder()).
		BorderForeground(lipglossv2.Color("63"))

	innerW := max(10, w-2-m.padX*2)
	innerH := max(5, h-2-m.padY*2)
	if m.vp.Width == 0 {
		m.vp = viewport.New(innerW, innerH)
	} else {
		m.vp.Width = innerW
		m.vp.Height = innerH
	}
	// Re-render so glamour wraps to the new width.
	var buf bytes.Buffer
	if err := format.WritePrettyProduct(&buf, m.p, m.lang, innerW); err != nil {
		m.content = format.ProductMarkdown(m.p, m.lang)
	} else {
		m.content = buf.String()
	}
	m.vp.SetContent(m.content)
}

func (m *productModal) update(msg tea.Msg) (*productModal, tea.Cmd) {
	if _, ok := msg.(tea.KeyMsg); !ok {
		return m, nil
	}
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m *productModal) View() string { return m.box.Render(m.vp.View()) }
