package bridge

import "sync"

// ReferenceMap hands out integer ids for values that must outlive a call.
type ReferenceMap[T any] struct {
	mu     sync.Mutex
	pool   int
	values map[int]T
}

// NewReferenceMap creates an empty map.
func NewReferenceMap[T any]() *ReferenceMap[T] {
	return &ReferenceMap[T]{pool: 1, values: make(map[int]T)}
}

// Create stores v and returns its id.
func (m *ReferenceMap[T]) Create(v T) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.pool
	m.pool++
	m.values[id] = v
	return id
}

// Get returns the value stored under id.
func (m *ReferenceMap[T]) Get(id int) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[id]
	return v, ok
}

// Dispose removes id and returns its value so the caller can clean it up.
func (m *ReferenceMap[T]) Dispose(id int) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[id]
	delete(m.values, id)
	return v, ok
}

// Drain removes and returns every value.
func (m *ReferenceMap[T]) Drain() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]T, 0, len(m.values))
	for id, v := range m.values {
		out = append(out, v)
		delete(m.values, id)
	}
	return out
}

// Len returns the number of live values.
func (m *ReferenceMap[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.values)
}
