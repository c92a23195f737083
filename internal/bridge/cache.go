package bridge

import (
	"sync"

	"github.com/dshills/langbridge/internal/dispose"
)

// Cache keeps the native results of Provide calls so later Resolve calls can
// find them by (id, index). Every batch owns a dispose.Store for resources
// created while converting it, such as delegated commands.
//
// There is no expiry. A batch lives until Delete or Clear.
type Cache[T any] struct {
	mu      sync.Mutex
	pool    int
	batches map[int]*cacheBatch[T]
}

type cacheBatch[T any] struct {
	items []T
	store *dispose.Store
}

// NewCache creates an empty cache.
func NewCache[T any]() *Cache[T] {
	return &Cache[T]{pool: 1, batches: make(map[int]*cacheBatch[T])}
}

// Add stores items under a fresh id and returns it.
func (c *Cache[T]) Add(items []T) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.pool
	c.pool++
	c.batches[id] = &cacheBatch[T]{items: items, store: dispose.NewStore()}
	return id
}

// Get returns item idx of batch id.
func (c *Cache[T]) Get(id, idx int) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	b, ok := c.batches[id]
	if !ok || idx < 0 || idx >= len(b.items) {
		return zero, false
	}
	return b.items[idx], true
}

// Store returns the dispose store of batch id, or nil once the batch is gone.
func (c *Cache[T]) Store(id int) *dispose.Store {
	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.batches[id]; ok {
		return b.store
	}
	return nil
}

// Delete removes batch id and disposes its store.
func (c *Cache[T]) Delete(id int) {
	c.mu.Lock()
	b, ok := c.batches[id]
	delete(c.batches, id)
	c.mu.Unlock()

	if ok {
		b.store.Dispose()
	}
}

// Len returns the number of live batches.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.batches)
}

// Clear removes every batch.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	batches := c.batches
	c.batches = make(map[int]*cacheBatch[T])
	c.mu.Unlock()

	for _, b := range batches {
		b.store.Dispose()
	}
}
