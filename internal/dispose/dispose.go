// Package dispose provides scoped cleanup values.
//
// A Disposable releases whatever it guards when Dispose is called. A Store
// collects cleanups and runs them in reverse registration order, so resources
// acquired later are released first.
package dispose

import "sync"

// Disposable releases a resource.
type Disposable interface {
	Dispose()
}

// Func adapts a plain function to Disposable. The function runs at most once.
type Func func()

// Dispose calls f.
func (f Func) Dispose() {
	if f != nil {
		f()
	}
}

// Once wraps fn so repeated Dispose calls run it a single time.
func Once(fn func()) Disposable {
	var once sync.Once
	return Func(func() {
		once.Do(fn)
	})
}

// None is a Disposable that does nothing.
var None Disposable = Func(nil)

// Store holds a list of cleanups.
//
// Store is safe for concurrent use. Adding to a disposed Store disposes the
// added value immediately.
type Store struct {
	mu       sync.Mutex
	items    []Disposable
	disposed bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Add registers d and returns it for chaining.
func (s *Store) Add(d Disposable) Disposable {
	if d == nil {
		return d
	}

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		d.Dispose()
		return d
	}
	s.items = append(s.items, d)
	s.mu.Unlock()

	return d
}

// AddFunc registers fn as a cleanup.
func (s *Store) AddFunc(fn func()) {
	s.Add(Func(fn))
}

// Len returns the number of pending cleanups.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// IsDisposed reports whether Dispose has been called.
func (s *Store) IsDisposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}

// Clear runs all pending cleanups but keeps the store usable.
func (s *Store) Clear() {
	s.mu.Lock()
	items := s.items
	s.items = nil
	s.mu.Unlock()

	runReverse(items)
}

// Dispose runs all cleanups in reverse order. Later calls are no-ops.
func (s *Store) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	items := s.items
	s.items = nil
	s.mu.Unlock()

	runReverse(items)
}

func runReverse(items []Disposable) {
	for i := len(items) - 1; i >= 0; i-- {
		items[i].Dispose()
	}
}

// Combine returns a Disposable that disposes all of ds in reverse order.
func Combine(ds ...Disposable) Disposable {
	return Once(func() {
		runReverse(ds)
	})
}
