// Package sheets fetches page content from a published spreadsheet and the
// product catalog from its JSON feed.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mithrel/sheetsite/pkg/api"
)

// ErrUpstream wraps every failure reported by, or while talking to, an upstream.
var ErrUpstream = errors.New("upstream")

// Source yields spreadsheet tabs and catalog products.
type Source interface {
	Sheet(ctx context.Context, name string) (api.Sheet, error)
	Products(ctx context.Context) ([]api.Product, error)
}

// New selects a Source from source.mode.
func New(cfg *viper.Viper) (Source, error) {
	switch mode := strings.ToLower(strings.TrimSpace(cfg.GetString("source.mode"))); mode {
	case "", "google":
		timeout := cfg.GetDuration("source.timeout")
		if timeout <= 0 {
			timeout = 20 * time.Second
		}
		return NewGoogle(GoogleConfig{
			SpreadsheetID: cfg.GetString("source.spreadsheet_id"),
			ProductsURL:   cfg.GetString("source.products_url"),
			Timeout:       timeout,
			Retries:       cfg.GetInt("source.retries"),
		}), nil
	case "dir":
		dir := strings.TrimSpace(cfg.GetString("source.dir"))
		if dir == "" {
			return nil, fmt.Errorf("source.dir is required when source.mode is dir")
		}
		return NewDir(dir), nil
	default:
		return nil, fmt.Errorf("unknown source.mode %q", mode)
	}
}
