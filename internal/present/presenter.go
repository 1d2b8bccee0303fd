// Package present renders catalog data for the terminal.
package present

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/mithrel/sheetsite/internal/present/format"
	"github.com/mithrel/sheetsite/internal/present/tui"
	"github.com/mithrel/sheetsite/pkg/api"
)

type Mode int

const (
	ModePlain Mode = iota
	ModePretty
	ModeJSON
	ModeNDJSON
	ModeYAML
	ModeTUI
)

// ModeNames lists the accepted --output values.
var ModeNames = []string{"plain", "pretty", "json", "ndjson", "yaml", "tui"}

type Options struct {
	Mode       Mode
	Lang       api.Lang
	JSONIndent bool
	Headers    bool
	Width      int
	Now        time.Time
	Status     string
	Search     tui.SearchFunc
}

// ParseMode parses a string like "plain", "pretty", "json", "ndjson", "yaml", "tui".
func ParseMode(s string) (Mode, bool) {
	for i, name := range ModeNames {
		if s == name {
			return Mode(i), true
		}
	}
	return ModePlain, false
}

// RenderProducts renders a product list according to options.
func RenderProducts(ctx context.Context, w io.Writer, products []api.Product, opts Options) error {
	switch opts.Mode {
	case ModeJSON:
		return format.WriteJSON(w, nonNil(products), opts.JSONIndent)
	case ModeNDJSON:
		return format.WriteNDJSON(w, products)
	case ModeYAML:
		return format.WriteYAML(w, nonNil(products))
	case ModePretty:
		return format.WritePrettyProducts(w, products, opts.Lang)
	case ModeTUI:
		return tui.Browse(ctx, w, products, tui.Options{
			Lang:    opts.Lang,
			Headers: opts.Headers,
			Status:  opts.Status,
			Search:  opts.Search,
		})
	default:
		return format.WritePlainProducts(w, products, opts.Lang, opts.Headers)
	}
}

// RenderProduct renders a single product according to options.
func RenderProduct(w io.Writer, p api.Product, opts Options) error {
	switch opts.Mode {
	case ModeJSON:
		return format.WriteJSON(w, p, opts.JSONIndent)
	case ModeNDJSON:
		return format.WriteNDJSON(w, []api.Product{p})
	case ModeYAML:
		return format.WriteYAML(w, p)
	case ModePretty:
		return format.WritePrettyProduct(w, p, opts.Lang, opts.Width)
	case ModeTUI:
		return errors.New("tui output is only available for product lists")
	default:
		return format.WritePlainProduct(w, p, opts.Lang)
	}
}

// RenderSheet renders a spreadsheet tab according to options.
func RenderSheet(w io.Writer, sheet api.Sheet, opts Options) error {
	switch opts.Mode {
	case ModeJSON:
		return format.WriteJSON(w, sheet, opts.JSONIndent)
	case ModeNDJSON:
		return format.WriteNDJSON(w, sheet.Rows)
	case ModeYAML:
		return format.WriteYAML(w, sheet)
	case ModePretty:
		return format.WritePrettyRows(w, sheet)
	case ModeTUI:
		return errors.New("tui output is only available for product lists")
	default:
		return format.WritePlainRows(w, sheet, opts.Headers)
	}
}

// RenderSnapshots renders stored snapshot metadata according to options.
func RenderSnapshots(w io.Writer, infos []api.SnapshotInfo, opts Options) error {
	switch opts.Mode {
	case ModeJSON:
		return format.WriteJSON(w, nonNil(infos), opts.JSONIndent)
	case ModeNDJSON:
		return format.WriteNDJSON(w, infos)
	case ModeYAML:
		return format.WriteYAML(w, nonNil(infos))
	case ModeTUI:
		return errors.New("tui output is only available for product lists")
	default:
		now := opts.Now
		if now.IsZero() {
			now = time.Now()
		}
		return format.WritePlainSnapshots(w, infos, now, opts.Headers)
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
