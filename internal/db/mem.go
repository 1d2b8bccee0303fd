package db

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mithrel/sheetsite/pkg/api"
)

type memSnapshot struct {
	info     api.SnapshotInfo
	rows     []api.Row
	products []api.Product
}

type memStore struct {
	mu   sync.RWMutex
	snap map[string]memSnapshot
}

func newMemStore() *memStore {
	return &memStore{snap: make(map[string]memSnapshot)}
}

func memKey(kind, name string) string { return kind + "\x00" + name }

func (m *memStore) Close() error { return nil }

// Batch has nothing to commit; each write is applied as it happens.
func (m *memStore) Batch(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *memStore) SaveSheet(ctx context.Context, s api.Sheet) (bool, error) {
	if s.Name == "" {
		return false, fmt.Errorf("save sheet: %w: empty name", ErrConflict)
	}
	fetched := s.FetchedAt
	if fetched.IsZero() {
		fetched = time.Now()
	}
	rows := copyRows(s.Rows)
	return m.put(memSnapshot{
		info: api.SnapshotInfo{Kind: KindSheet, Name: s.Name, Hash: s.Hash(), Items: len(rows), FetchedAt: fetched.UTC()},
		rows: rows,
	}), nil
}

func (m *memStore) LoadSheet(ctx context.Context, name string) (api.Sheet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sn, ok := m.snap[memKey(KindSheet, name)]
	if !ok {
		return api.Sheet{}, ErrNotFound
	}
	return api.Sheet{Name: name, Rows: copyRows(sn.rows), FetchedAt: sn.info.FetchedAt}, nil
}

func (m *memStore) SaveProducts(ctx context.Context, products []api.Product, fetchedAt time.Time) (bool, error) {
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}
	return m.put(memSnapshot{
		info:     api.SnapshotInfo{Kind: KindProducts, Name: catalogName, Hash: api.CatalogHash(products), Items: len(products), FetchedAt: fetchedAt.UTC()},
		products: append([]api.Product(nil), products...),
	}), nil
}

func (m *memStore) LoadProducts(ctx context.Context) ([]api.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sn, ok := m.snap[memKey(KindProducts, catalogName)]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]api.Product(nil), sn.products...), nil
}

func (m *memStore) ListSnapshots(ctx context.Context) ([]api.SnapshotInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]api.SnapshotInfo, 0, len(m.snap))
	for _, sn := range m.snap {
		out = append(out, sn.info)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (m *memStore) put(sn memSnapshot) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := memKey(sn.info.Kind, sn.info.Name)
	if cur, ok := m.snap[k]; ok && cur.info.Hash == sn.info.Hash {
		cur.info.FetchedAt = sn.info.FetchedAt
		m.snap[k] = cur
		return false
	}
	m.snap[k] = sn
	return true
}

func copyRows(in []api.Row) []api.Row {
	out := make([]api.Row, len(in))
	for i, r := range in {
		out[i] = make(api.Row, len(r))
		copy(out[i], r)
	}
	return out
}
