package content

import (
	"context"
	"strings"

	"github.com/mithrel/sheetsite/internal/util"
	"github.com/mithrel/sheetsite/pkg/api"
)

// Search fuzzy-matches query against each product's code, names and
// category, best match first. An empty query returns nothing.
func (s *Service) Search(ctx context.Context, query string, lang api.Lang, limit int) ([]api.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	ps, err := s.Products(ctx)
	if err != nil {
		return nil, err
	}
	cands := make([]string, len(ps))
	for i, p := range ps {
		cands[i] = searchText(p, lang)
	}
	idx := util.RankMatches(query, cands, limit)
	out := make([]api.Product, len(idx))
	for i, j := range idx {
		out[i] = ps[j]
	}
	return out, nil
}

// searchText puts the visitor's language first so its matches score higher.
func searchText(p api.Product, lang api.Lang) string {
	return strings.Join([]string{p.Name(lang), p.Name(lang.Toggle()), p.Code, p.Category}, " ")
}
