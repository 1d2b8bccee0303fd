// Package content serves spreadsheet tabs and catalog products with
// in-process caching and a persisted last-good fallback.
package content

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mithrel/sheetsite/internal/cache"
	"github.com/mithrel/sheetsite/internal/db"
	"github.com/mithrel/sheetsite/internal/metrics"
	"github.com/mithrel/sheetsite/internal/sheets"
	"github.com/mithrel/sheetsite/pkg/api"
)

var ErrProductNotFound = errors.New("product not found")

// DefaultTabs are the navigable spreadsheet tabs in menu order.
var DefaultTabs = []string{"Content", "About Us", "Business Scope", "Product Catalog", "Join Us", "Contact Us"}

const productsKey = "products"

// NavItem is one menu entry.
type NavItem struct {
	Tab   string `json:"tab" yaml:"tab"`
	Title string `json:"title" yaml:"title"`
}

type Options struct {
	Tabs []string
	// TTL bounds how long fetched data is reused; zero keeps it until invalidated.
	TTL    time.Duration
	Logger *zap.Logger
}

// Service is safe for concurrent use.
type Service struct {
	src   sheets.Source
	store db.Store
	log   *zap.Logger
	tabs  []string

	sheets   *cache.Memo[api.Sheet]
	products *cache.Memo[[]api.Product]
	titles   *cache.Memo[[]NavItem]
}

// New wires a Service. store may be nil, which disables the fallback.
func New(src sheets.Source, store db.Store, opts Options) *Service {
	tabs := opts.Tabs
	if len(tabs) == 0 {
		tabs = DefaultTabs
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		src:      src,
		store:    store,
		log:      log.Named("content"),
		tabs:     append([]string(nil), tabs...),
		sheets:   cache.New[api.Sheet]("sheets", opts.TTL),
		products: cache.New[[]api.Product]("products", opts.TTL),
		titles:   cache.New[[]NavItem]("nav", opts.TTL),
	}
}

// Tabs returns the configured tab names.
func (s *Service) Tabs() []string { return append([]string(nil), s.tabs...) }

// IsTab reports whether name is one of the configured tabs.
func (s *Service) IsTab(name string) bool {
	for _, t := range s.tabs {
		if t == name {
			return true
		}
	}
	return false
}

// Sheet returns a tab from cache, then upstream, then the stored snapshot.
// Snapshot fallbacks are not cached so the next call retries upstream.
func (s *Service) Sheet(ctx context.Context, name string) (api.Sheet, error) {
	sh, err := s.sheets.GetOrLoad(ctx, name, func(ctx context.Context) (api.Sheet, error) {
		return s.fetchSheet(ctx, name)
	})
	if err == nil {
		return sh, nil
	}
	if s.store == nil {
		return api.Sheet{}, err
	}
	snap, serr := s.store.LoadSheet(ctx, name)
	if serr != nil {
		if !errors.Is(serr, db.ErrNotFound) {
			s.log.Warn("snapshot load failed", zap.String("sheet", name), zap.Error(serr))
		}
		return api.Sheet{}, err
	}
	metrics.SnapshotFallbacks.WithLabelValues(db.KindSheet).Inc()
	s.log.Warn("serving stored snapshot",
		zap.String("sheet", name), zap.Time("fetched_at", snap.FetchedAt), zap.Error(err))
	return snap, nil
}

func (s *Service) fetchSheet(ctx context.Context, name string) (api.Sheet, error) {
	sh, err := s.src.Sheet(ctx, name)
	if err != nil {
		return api.Sheet{}, err
	}
	if s.store != nil {
		if changed, err := s.store.SaveSheet(ctx, sh); err != nil {
			s.log.Warn("snapshot save failed", zap.String("sheet", name), zap.Error(err))
		} else if changed {
			s.log.Debug("snapshot updated", zap.String("sheet", name), zap.Int("rows", len(sh.Rows)))
		}
	}
	return sh, nil
}

// Products returns the catalog with the same cache and fallback rules as Sheet.
func (s *Service) Products(ctx context.Context) ([]api.Product, error) {
	ps, err := s.products.GetOrLoad(ctx, productsKey, s.fetchProducts)
	if err == nil {
		return ps, nil
	}
	if s.store == nil {
		return nil, err
	}
	snap, serr := s.store.LoadProducts(ctx)
	if serr != nil {
		if !errors.Is(serr, db.ErrNotFound) {
			s.log.Warn("snapshot load failed", zap.String("kind", db.KindProducts), zap.Error(serr))
		}
		return nil, err
	}
	metrics.SnapshotFallbacks.WithLabelValues(db.KindProducts).Inc()
	s.log.Warn("serving stored product snapshot", zap.Int("products", len(snap)), zap.Error(err))
	return snap, nil
}

func (s *Service) fetchProducts(ctx context.Context) ([]api.Product, error) {
	ps, err := s.src.Products(ctx)
	if err != nil {
		return nil, err
	}
	if s.store != nil {
		if _, err := s.store.SaveProducts(ctx, ps, time.Now()); err != nil {
			s.log.Warn("snapshot save failed", zap.String("kind", db.KindProducts), zap.Error(err))
		}
	}
	return ps, nil
}

// Product looks a product up by item code. Codes compare as trimmed strings.
func (s *Service) Product(ctx context.Context, code string) (api.Product, error) {
	ps, err := s.Products(ctx)
	if err != nil {
		return api.Product{}, err
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return api.Product{}, ErrProductNotFound
	}
	for _, p := range ps {
		if strings.TrimSpace(p.Code) == code {
			return p, nil
		}
	}
	return api.Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, code)
}

// HasProduct reports whether code names a product, without surfacing feed errors.
func (s *Service) HasProduct(ctx context.Context, code string) bool {
	_, err := s.Product(ctx, code)
	return err == nil
}

// Category returns the products whose category equals name, ignoring case
// and surrounding space, in feed order.
func (s *Service) Category(ctx context.Context, name string) ([]api.Product, error) {
	ps, err := s.Products(ctx)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	var out []api.Product
	for _, p := range ps {
		if strings.EqualFold(strings.TrimSpace(p.Category), name) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Categories lists distinct non-empty categories in first-seen order.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	ps, err := s.Products(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var out []string
	for _, p := range ps {
		c := strings.TrimSpace(p.Category)
		k := strings.ToLower(c)
		if c == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, c)
	}
	return out, nil
}

// NavTitles returns the menu in lang, loading every tab in parallel. A tab
// that fails to load shows its tab name; such a partial menu is returned but
// not cached, so the next call retries the failed tabs.
func (s *Service) NavTitles(ctx context.Context, lang api.Lang) ([]NavItem, error) {
	items, err := s.titles.GetOrLoad(ctx, string(lang)+"/titles", func(ctx context.Context) ([]NavItem, error) {
		items := make([]NavItem, len(s.tabs))
		failed := make([]bool, len(s.tabs))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(len(s.tabs))
		for i, tab := range s.tabs {
			g.Go(func() error {
				items[i] = NavItem{Tab: tab, Title: tab}
				sh, err := s.Sheet(gctx, tab)
				if err != nil {
					s.log.Debug("nav title fallback", zap.String("sheet", tab), zap.Error(err))
					failed[i] = true
					return nil
				}
				items[i].Title = sh.Title(lang)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		if slices.Contains(failed, true) {
			return nil, &partialTitles{items: items}
		}
		return items, nil
	})
	var partial *partialTitles
	if errors.As(err, &partial) {
		return partial.items, nil
	}
	return items, err
}

// partialTitles carries a menu with fallback titles out of the cache loader
// without storing it.
type partialTitles struct{ items []NavItem }

func (p *partialTitles) Error() string { return "some tab titles fell back to tab names" }

// Invalidate drops every cached sheet, product and title.
func (s *Service) Invalidate() {
	s.sheets.Purge()
	s.products.Purge()
	s.titles.Purge()
}

// InvalidateLanguage drops the cached titles of one language only.
func (s *Service) InvalidateLanguage(lang api.Lang) int {
	return s.titles.InvalidatePrefix(string(lang) + "/")
}

// Refresh drops the caches and reloads everything. Each failure is
// reported; the rest still loads.
func (s *Service) Refresh(ctx context.Context) error {
	s.Invalidate()
	return s.Warm(ctx)
}

// Warm loads every tab and the catalog into the cache.
func (s *Service) Warm(ctx context.Context) error {
	var (
		g    errgroup.Group
		errs = make([]error, len(s.tabs)+1)
	)
	for i, tab := range s.tabs {
		g.Go(func() error {
			if _, err := s.sheets.GetOrLoad(ctx, tab, func(ctx context.Context) (api.Sheet, error) {
				return s.fetchSheet(ctx, tab)
			}); err != nil {
				errs[i] = fmt.Errorf("sheet %q: %w", tab, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		if _, err := s.products.GetOrLoad(ctx, productsKey, s.fetchProducts); err != nil {
			errs[len(s.tabs)] = fmt.Errorf("products: %w", err)
		}
		return nil
	})
	_ = g.Wait()
	return errors.Join(errs...)
}

// Snapshots lists what the store holds.
func (s *Service) Snapshots(ctx context.Context) ([]api.SnapshotInfo, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.ListSnapshots(ctx)
}

// CacheStats reports every cache the service owns.
func (s *Service) CacheStats() []cache.Stats {
	return []cache.Stats{s.sheets.Stats(), s.products.Stats(), s.titles.Stats()}
}
