package bridge

import (
	"sync"

	"github.com/dshills/langbridge/internal/extapi"
)

// adapter is implemented by every feature adapter.
type adapter interface {
	kind() Kind
	// dispose drops every cached result and session held by the adapter.
	dispose()
}

type adapterData struct {
	adapter   adapter
	extension extapi.Extension
}

// registry issues handles and maps them to adapters. Handles are never
// reused.
type registry struct {
	mu       sync.Mutex
	pool     int
	adapters map[int]adapterData
}

func newRegistry() *registry {
	return &registry{adapters: make(map[int]adapterData)}
}

// nextHandle returns a fresh handle without binding it.
func (r *registry) nextHandle() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nextHandleLocked()
}

func (r *registry) nextHandleLocked() int {
	h := r.pool
	r.pool++
	return h
}

// add binds a to a fresh handle.
func (r *registry) add(a adapter, ext extapi.Extension) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := r.nextHandleLocked()
	r.adapters[h] = adapterData{adapter: a, extension: ext}
	return h
}

func (r *registry) get(handle int) (adapterData, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, ok := r.adapters[handle]
	return data, ok
}

func (r *registry) remove(handle int) (adapterData, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, ok := r.adapters[handle]
	if ok {
		delete(r.adapters, handle)
	}
	return data, ok
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.adapters)
}
