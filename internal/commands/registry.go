package commands

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dshills/langbridge/internal/dispose"
	"github.com/dshills/langbridge/internal/logging"
)

// Handler runs a command.
type Handler func(ctx context.Context, args ...any) (any, error)

type entry struct {
	handler Handler
	owner   string
}

// Registry maps command ids to handlers.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]*entry
	log      *logging.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(log *logging.Logger) Option {
	return func(r *Registry) {
		if log != nil {
			r.log = log
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		commands: make(map[string]*entry),
		log:      logging.Null(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.WithComponent("commands")
	return r
}

// Register binds id to h on behalf of owner. Disposing the result removes
// the command.
func (r *Registry) Register(owner, id string, h Handler) (dispose.Disposable, error) {
	if id == "" || h == nil {
		return nil, ErrInvalidCommand
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.commands[id]; ok {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRegistered, id)
	}
	e := &entry{handler: h, owner: owner}
	r.commands[id] = e
	r.log.Debug("registered command %s for %s", id, owner)

	return dispose.Once(func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.commands[id] == e {
			delete(r.commands, id)
		}
	}), nil
}

// UnregisterOwner removes every command owner registered.
func (r *Registry) UnregisterOwner(owner string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, e := range r.commands {
		if e.owner == owner {
			delete(r.commands, id)
			n++
		}
	}
	return n
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.commands[id]
	return ok
}

// List returns all registered ids, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.commands))
	for id := range r.commands {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Execute runs id with args. A panicking handler yields ErrHandlerPanic.
func (r *Registry) Execute(ctx context.Context, id string, args ...any) (result any, err error) {
	r.mu.RLock()
	e, ok := r.commands[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, id)
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("command %s panicked: %v", id, rec)
			result = nil
			err = fmt.Errorf("%w: %s: %v", ErrHandlerPanic, id, rec)
		}
	}()
	return e.handler(ctx, args...)
}
