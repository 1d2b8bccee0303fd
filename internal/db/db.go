// Package db persists the last good copy of every upstream snapshot so the
// site can start warm and keep serving while the spreadsheet is unreachable.
package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mithrel/sheetsite/pkg/api"
)

// Snapshot kinds.
const (
	KindSheet    = "sheet"
	KindProducts = "products"

	// catalogName is the single row name used for the products snapshot.
	catalogName = "catalog"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// Store keeps one snapshot per sheet plus one for the product catalog.
// Save methods report whether the stored content changed.
type Store interface {
	SaveSheet(ctx context.Context, s api.Sheet) (bool, error)
	LoadSheet(ctx context.Context, name string) (api.Sheet, error)
	SaveProducts(ctx context.Context, products []api.Product, fetchedAt time.Time) (bool, error)
	LoadProducts(ctx context.Context) ([]api.Product, error)
	ListSnapshots(ctx context.Context) ([]api.SnapshotInfo, error)
	// Batch runs fn so that every write inside it commits together.
	Batch(ctx context.Context, fn func(ctx context.Context) error) error
	Close() error
}

// Open returns a Store for url: sqlite://<path> or mem://.
func Open(ctx context.Context, url string) (Store, error) {
	switch {
	case strings.HasPrefix(url, "sqlite://"):
		return openSQLite(ctx, url)
	case strings.HasPrefix(url, "mem://"):
		return newMemStore(), nil
	case url == "":
		return nil, fmt.Errorf("db_url is empty")
	default:
		return nil, fmt.Errorf("unsupported db_url %q (want sqlite:// or mem://)", url)
	}
}
