// Package cache provides a keyed, load-once memo for upstream data.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mithrel/sheetsite/internal/metrics"
)

type entry[V any] struct {
	value  V
	stored time.Time
}

// Memo is a thread-safe key-value memo. Entries live until invalidated or,
// when a TTL is set, until they are older than the TTL. Concurrent loads of
// the same key share one call.
type Memo[V any] struct {
	name  string
	mu    sync.RWMutex
	data  map[string]entry[V]
	ttl   time.Duration
	group singleflight.Group
	now   func() time.Time

	hits, misses int64
}

// Stats is a point-in-time view of a Memo.
type Stats struct {
	Name    string `json:"name" yaml:"name"`
	Entries int    `json:"entries" yaml:"entries"`
	Hits    int64  `json:"hits" yaml:"hits"`
	Misses  int64  `json:"misses" yaml:"misses"`
}

// New creates a Memo. A ttl of zero means entries never expire.
func New[V any](name string, ttl time.Duration) *Memo[V] {
	return &Memo[V]{
		name: name,
		data: make(map[string]entry[V]),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Get returns the value for key if present and fresh.
func (m *Memo[V]) Get(key string) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.data[key]
	if ok && m.expiredLocked(e) {
		delete(m.data, key)
		ok = false
	}
	if !ok {
		m.misses++
		metrics.CacheLookups.WithLabelValues(m.name, "miss").Inc()
		var zero V
		return zero, false
	}
	m.hits++
	metrics.CacheLookups.WithLabelValues(m.name, "hit").Inc()
	return e.value, true
}

// Set stores value under key.
func (m *Memo[V]) Set(key string, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = entry[V]{value: value, stored: m.now()}
}

// GetOrLoad returns the cached value or calls load once, even when many
// callers miss at the same time. Failed loads are not cached.
//
// The shared load runs detached from the caller that started it, so one
// caller giving up does not fail the others. Each caller still returns as
// soon as its own ctx is done.
func (m *Memo[V]) GetOrLoad(ctx context.Context, key string, load func(context.Context) (V, error)) (V, error) {
	var zero V
	if v, ok := m.Get(key); ok {
		return v, nil
	}
	loadCtx := context.WithoutCancel(ctx)
	ch := m.group.DoChan(key, func() (res any, err error) {
		// DoChan runs this on its own goroutine; hand panics to the callers.
		defer func() {
			if r := recover(); r != nil {
				err = &loadPanic{value: r}
			}
		}()
		// Another caller may have filled the key while we queued.
		m.mu.RLock()
		e, ok := m.data[key]
		fresh := ok && !m.expiredLocked(e)
		m.mu.RUnlock()
		if fresh {
			return e.value, nil
		}
		v, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		m.Set(key, v)
		return v, nil
	})
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			var p *loadPanic
			if errors.As(r.Err, &p) {
				panic(p.value)
			}
			return zero, r.Err
		}
		return r.Val.(V), nil
	}
}

type loadPanic struct{ value any }

func (p *loadPanic) Error() string { return fmt.Sprintf("cache load panicked: %v", p.value) }

// Invalidate drops key.
func (m *Memo[V]) Invalidate(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}

// InvalidatePrefix drops every key starting with prefix and returns how many
// were removed.
func (m *Memo[V]) InvalidatePrefix(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
			n++
		}
	}
	return n
}

// Purge drops everything.
func (m *Memo[V]) Purge() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]entry[V])
}

// Len counts stored entries, including expired ones not yet evicted.
func (m *Memo[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

func (m *Memo[V]) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Stats{Name: m.name, Entries: len(m.data), Hits: m.hits, Misses: m.misses}
}

// expiredLocked MUST be called with at least a read lock held.
func (m *Memo[V]) expiredLocked(e entry[V]) bool {
	return m.ttl > 0 && m.now().Sub(e.stored) >= m.ttl
}
