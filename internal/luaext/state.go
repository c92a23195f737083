package luaext

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/langbridge/internal/logging"
)

// Default limits for a Lua state.
const (
	DefaultMemoryLimit      = 64 << 20
	DefaultExecutionTimeout = 5 * time.Second

	// lvalueSize approximates the bytes held by one registry slot.
	lvalueSize = 16
	// registryInitial is the starting registry size in slots.
	registryInitial = 1024 * 20
)

// State is a sandboxed gopher-lua state.
//
// gopher-lua's LState is not goroutine-safe. Every entry point takes the
// state's mutex, so calls from concurrent provider requests run one at a
// time.
type State struct {
	mu      sync.Mutex
	L       *lua.LState
	closed  bool
	modules map[string]*lua.LTable

	memoryLimit      int64
	executionTimeout time.Duration
	log              *logging.Logger
}

// StateOption configures a State.
type StateOption func(*State)

// WithMemoryLimit bounds the value stack of the state. gopher-lua has no
// heap limit, so the budget is converted into registry slots.
func WithMemoryLimit(bytes int64) StateOption {
	return func(s *State) {
		s.memoryLimit = bytes
	}
}

// WithExecutionTimeout sets the time budget of a single call. Zero
// disables the budget.
func WithExecutionTimeout(d time.Duration) StateOption {
	return func(s *State) {
		s.executionTimeout = d
	}
}

// WithStateLogger receives the output of print.
func WithStateLogger(log *logging.Logger) StateOption {
	return func(s *State) {
		s.log = log
	}
}

// NewState creates a sandboxed Lua state.
func NewState(opts ...StateOption) *State {
	s := &State{
		memoryLimit:      DefaultMemoryLimit,
		executionTimeout: DefaultExecutionTimeout,
		log:              logging.Null(),
		modules:          make(map[string]*lua.LTable),
	}
	for _, opt := range opts {
		opt(s)
	}

	lopts := lua.Options{SkipOpenLibs: true}
	if slots := int(s.memoryLimit / lvalueSize); slots > registryInitial {
		lopts.RegistrySize = registryInitial
		lopts.RegistryMaxSize = slots
		lopts.RegistryGrowStep = 32
	}
	s.L = lua.NewState(lopts)

	openSafeLibraries(s.L)
	s.installSandbox()
	return s
}

// openSafeLibraries opens the libraries without file system or process
// access. io, os, debug and package stay closed.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

func (s *State) installSandbox() {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		s.L.SetGlobal(name, lua.LNil)
	}

	s.L.SetGlobal("print", s.L.NewFunction(func(L *lua.LState) int {
		n := L.GetTop()
		parts := make([]string, n)
		for i := 1; i <= n; i++ {
			parts[i-1] = L.ToStringMeta(L.Get(i)).String()
		}
		s.log.Info("%s", strings.Join(parts, "\t"))
		return 0
	}))

	// require only serves modules registered with Preload. It runs inside
	// Do, so the modules map is already guarded.
	s.L.SetGlobal("require", s.L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		if mod, ok := s.modules[name]; ok {
			L.Push(mod)
			return 1
		}
		L.RaiseError("module %q is not available", name)
		return 0
	}))
}

// Preload makes the table built by build available to require(name) and
// as the global name.
func (s *State) Preload(name string, build func(L *lua.LState) *lua.LTable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	mod := build(s.L)
	s.modules[name] = mod
	s.L.SetGlobal(name, mod)
}

// Do runs fn with exclusive access to the state. ctx, bounded by the
// execution timeout, interrupts running Lua code.
func (s *State) Do(ctx context.Context, fn func(L *lua.LState) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	runCtx := ctx
	if s.executionTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.executionTimeout)
		defer cancel()
	}
	s.L.SetContext(runCtx)
	defer s.L.RemoveContext()

	top := s.L.GetTop()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrScriptPanic, r)
		}
		s.L.SetTop(top)
		if err != nil && runCtx.Err() != nil {
			err = interrupted(ctx, s.executionTimeout, err)
		}
	}()
	return fn(s.L)
}

// interrupted reports whether the caller gave up or the time budget ran out.
func interrupted(parent context.Context, budget time.Duration, err error) error {
	if parent.Err() != nil {
		return fmt.Errorf("%w: %v", parent.Err(), err)
	}
	return fmt.Errorf("%w after %s", ErrExecutionTimeout, budget)
}

// DoString executes a chunk of Lua code.
func (s *State) DoString(ctx context.Context, code string) error {
	return s.Do(ctx, func(L *lua.LState) error {
		return L.DoString(code)
	})
}

// DoFile executes a Lua file.
func (s *State) DoFile(ctx context.Context, path string) error {
	return s.Do(ctx, func(L *lua.LState) error {
		return L.DoFile(path)
	})
}

// Invoke calls fn with the values produced by args and hands its first
// result to decode. Both callbacks run while the state is held.
func (s *State) Invoke(ctx context.Context, fn *lua.LFunction, args func(L *lua.LState) []lua.LValue, decode func(ret lua.LValue) error) error {
	return s.Do(ctx, func(L *lua.LState) error {
		L.Push(fn)
		n := 0
		if args != nil {
			for _, a := range args(L) {
				L.Push(a)
				n++
			}
		}
		if err := L.PCall(n, 1, nil); err != nil {
			return err
		}
		ret := L.Get(-1)
		L.Pop(1)
		if decode == nil {
			return nil
		}
		return decode(ret)
	})
}

// GetGlobal returns a global variable.
func (s *State) GetGlobal(name string) lua.LValue {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return lua.LNil
	}
	return s.L.GetGlobal(name)
}

// IsClosed reports whether Close was called.
func (s *State) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close releases the state. Later calls return ErrStateClosed.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.L.Close()
	s.closed = true
	return nil
}
