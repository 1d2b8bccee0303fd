package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mithrel/sheetsite/internal/util"
	"github.com/mithrel/sheetsite/pkg/api"
)

// searchResultMsg carries the products matching a query back to Update.
type searchResultMsg struct {
	query    string
	products []api.Product
	err      error
	dur      time.Duration
}

// searchCmd runs search, or ranks the loaded products locally when no
// search function was supplied.
func searchCmd(ctx context.Context, search SearchFunc, query string, all []api.Product, lang api.Lang) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		if search != nil {
			ps, err := search(ctx, query)
			return searchResultMsg{query: query, products: ps, err: err, dur: time.Since(start)}
		}
		return searchResultMsg{query: query, products: rankLocal(query, all, lang), dur: time.Since(start)}
	}
}

func rankLocal(query string, all []api.Product, lang api.Lang) []api.Product {
	texts := make([]string, len(all))
	for i, p := range all {
		texts[i] = p.Code + " " + p.Name(lang) + " " + p.Name(lang.Toggle()) + " " + p.Category
	}
	idx := util.RankMatches(query, texts, 0)
	out := make([]api.Product, 0, len(idx))
	for _, i := range idx {
		out = append(out, all[i])
	}
	return out
}
