// Package cache memoizes the fetch+transform pipeline behind a bounded LRU
// so interactive re-rendering stays responsive without an unbounded
// in-process cache growing for the life of the service.
package cache

import (
	"container/list"
	"context"
	"sort"
	"strings"
	"sync"

	"MarketLens/internal/model"
)

// DefaultCapacity bounds the cache when no capacity is configured.
const DefaultCapacity = 64

// Loader computes the table for a cache miss.
type Loader func(ctx context.Context) (model.Table, error)

type entry struct {
	key   string
	table model.Table
}

// LRU is a bounded least-recently-used cache of tidy tables keyed by the
// canonical request key. All bookkeeping (lookup, insert, touch, evict) runs
// under one mutex so the recency order stays consistent with concurrent
// evictions.
type LRU struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List
	items    map[string]*list.Element
}

// New creates an LRU with the given capacity (DefaultCapacity when <= 0).
func New(capacity int) *LRU {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &LRU{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[string]*list.Element),
	}
}

// Key builds the canonical request key: tickers deduped and sorted so the
// order of selection does not create distinct entries for the same query.
func Key(tickers []string, interval string) string {
	uniq := make([]string, 0, len(tickers))
	seen := make(map[string]bool, len(tickers))
	for _, t := range tickers {
		if !seen[t] {
			seen[t] = true
			uniq = append(uniq, t)
		}
	}
	sort.Strings(uniq)
	return strings.Join(uniq, ",") + "|" + interval
}

// GetOrCompute returns the cached table for the key, or runs loader on a
// miss and stores the result. The loader runs outside the lock; a stale
// in-flight result is written under its own key and cannot corrupt a newer
// request's entry.
func (c *LRU) GetOrCompute(ctx context.Context, key string, loader Loader) (model.Table, bool, error) {
	c.mu.Lock()
	if el, ok := c.items[key]; ok {
		c.ll.MoveToFront(el)
		t := el.Value.(*entry).table
		c.mu.Unlock()
		return t, true, nil
	}
	c.mu.Unlock()

	t, err := loader(ctx)
	if err != nil {
		return nil, false, err
	}
	c.Put(key, t)
	return t, false, nil
}

// Get returns the cached table and touches its recency.
func (c *LRU) Get(key string) (model.Table, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*entry).table, true
}

// Put inserts or overwrites the entry for key, evicting the least recently
// used entry when past capacity.
func (c *LRU) Put(key string, t model.Table) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*entry).table = t
		c.ll.MoveToFront(el)
		return
	}
	c.items[key] = c.ll.PushFront(&entry{key: key, table: t})
	for c.ll.Len() > c.capacity {
		oldest := c.ll.Back()
		c.ll.Remove(oldest)
		delete(c.items, oldest.Value.(*entry).key)
	}
}

// Len reports the number of resident entries.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}
