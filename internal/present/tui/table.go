package tui

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mithrel/sheetsite/internal/present/format"
	"github.com/mithrel/sheetsite/pkg/api"
)

// SearchFunc returns the products matching query; an empty query means all.
type SearchFunc func(ctx context.Context, query string) ([]api.Product, error)

// Options configures the catalog browser.
type Options struct {
	Lang    api.Lang
	Headers bool
	Status  string
	Search  SearchFunc
}

// Browse opens an interactive table over products. On exit with enter
// the selected product is printed to out.
func Browse(ctx context.Context, out io.Writer, products []api.Product, opts Options) error {
	m := newModel(ctx, products, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(model); ok && fm.chosen >= 0 && fm.chosen < len(fm.products) {
		return format.WritePrettyProduct(out, fm.products[fm.chosen], fm.lang, 80)
	}
	return nil
}

type model struct {
	ctx      context.Context
	table    table.Model
	products []api.Product
	all      []api.Product
	lang     api.Lang
	headers  bool
	search   SearchFunc
	query    string
	chosen   int
	width    int
	height   int
	status   string
	lastDur  time.Duration

	searchModal  *searchModal
	productModal *productModal
}

func newModel(ctx context.Context, products []api.Product, opts Options) model {
	lang := opts.Lang
	if lang == "" {
		lang = api.LangZH
	}
	m := model{
		ctx:      ctx,
		products: products,
		all:      products,
		lang:     lang,
		headers:  opts.Headers,
		search:   opts.Search,
		chosen:   -1,
		status:   opts.Status,
	}
	m.initTable()
	return m
}

func (m *model) initTable() {
	m.table = table.New(table.WithColumns(m.columnsFor(10, 36, 16, 14)), table.WithFocused(true))
	m.updateRows()
	m.applyStyles()
}

func (m *model) updateRows() {
	rows := make([]table.Row, 0, len(m.products))
	for _, p := range m.products {
		rows = append(rows, table.Row{p.Code, p.Name(m.lang), p.Category, p.PackingLabel()})
	}
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) {
		m.table.SetCursor(max(0, len(rows)-1))
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = ws.Width, ws.Height
		m.applyLayout()
		if m.searchModal != nil {
			m.searchModal.resizeForTerm(ws.Width, ws.Height)
		}
		if m.productModal != nil {
			m.productModal.resizeForTerm(ws.Width, ws.Height)
		}
		return m, nil
	}
	if res, ok := msg.(searchResultMsg); ok {
		return m.applySearch(res), nil
	}

	if m.searchModal != nil {
		return m.updateSearchModal(msg)
	}
	if m.productModal != nil {
		if k, ok := msg.(tea.KeyMsg); ok {
			switch k.String() {
			case "esc", "q", "enter":
				m.productModal = nil
				return m, nil
			}
		}
		var cmd tea.Cmd
		m.productModal, cmd = m.productModal.update(msg)
		return m, cmd
	}

	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "enter":
			if idx := m.table.Cursor(); idx >= 0 && idx < len(m.products) {
				m.chosen = idx
			}
			return m, tea.Quit
		case " ", "v":
			if idx := m.table.Cursor(); idx >= 0 && idx < len(m.products) {
				m.productModal = newProductModal(m.products[idx], m.lang, m.width, m.height)
			}
			return m, nil
		case "/":
			m.searchModal = newSearchModal(m.query, m.width, m.height)
			return m, m.searchModal.Init()
		case "l":
			m.lang = m.lang.Toggle()
			m.updateRows()
			m.status = "Language: " + string(m.lang)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m model) updateSearchModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "esc", "ctrl+c":
			m.searchModal = nil
			return m, nil
		case "enter":
			q := strings.TrimSpace(m.searchModal.value())
			m.searchModal = nil
			m.query = q
			if q == "" {
				return m.applySearch(searchResultMsg{query: "", products: m.all}), nil
			}
			m.status = fmt.Sprintf("Searching %q…", q)
			return m, searchCmd(m.ctx, m.search, q, m.all, m.lang)
		}
	}
	var cmd tea.Cmd
	m.searchModal, cmd = m.searchModal.update(msg)
	return m, cmd
}

func (m model) applySearch(res searchResultMsg) model {
	m.lastDur = res.dur
	if res.err != nil {
		m.status = fmt.Sprintf("Search failed: %v", res.err)
		return m
	}
	m.query = res.query
	m.products = res.products
	m.table.SetCursor(0)
	m.updateRows()
	if res.query == "" {
		m.status = ""
	} else {
		m.status = fmt.Sprintf("%d matches for %q", len(res.products), res.query)
	}
	return m
}

func (m model) renderFooter() string {
	left := "↑/↓ navigate • space=details • /=search • l=language • enter=print • q=exit"

	var right string
	if m.status != "" {
		if m.lastDur > 0 {
			right = fmt.Sprintf("%s (%s) • ", m.status, m.lastDur.Round(time.Millisecond))
		} else {
			right = m.status + " • "
		}
	}
	right += strconv.Itoa(len(m.products)) + " products "

	space := m.table.Width() - lipgloss.Width(left) - lipgloss.Width(right)
	if space < 1 {
		space = 1
	}
	return left + strings.Repeat(" ", space) + right
}

func (m model) View() string {
	if len(m.products) == 0 && m.query == "" {
		return "(no products) \n"
	}
	base := m.table.View() + "\n" + m.renderFooter() + "\n"
	switch {
	case m.searchModal != nil:
		return m.renderOverlay(base, m.searchModal.View(), m.searchModal.width, m.searchModal.height)
	case m.productModal != nil:
		return m.renderOverlay(base, m.productModal.View(), m.productModal.width, m.productModal.height)
	}
	return base
}

func (m *model) applyLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	m.table.SetHeight(max(6, m.height-1))
	m.table.SetWidth(m.width)
	avail := m.width - 4
	if avail < 40 {
		return
	}
	codeW, packW := 10, 14
	rem := avail - codeW - packW
	catW := max(8, rem/3)
	nameW := max(12, rem-catW)
	m.table.SetColumns(m.columnsFor(codeW, nameW, catW, packW))
}

func (m *model) applyStyles() {
	s := table.DefaultStyles()
	if m.headers {
		s.Header = s.Header.
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			BorderBottom(true).
			Bold(true)
	} else {
		s.Header = s.Header.BorderBottom(false).Bold(false)
	}
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	m.table.SetStyles(s)
}

func (m *model) columnsFor(codeW, nameW, catW, packW int) []table.Column {
	titles := []string{"Code", "Name", "Category", "Packing"}
	if !m.headers {
		titles = []string{"", "", "", ""}
	}
	return []table.Column{
		{Title: titles[0], Width: codeW},
		{Title: titles[1], Width: nameW},
		{Title: titles[2], Width: catW},
		{Title: titles[3], Width: packW},
	}
}
