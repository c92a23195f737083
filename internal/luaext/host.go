package luaext

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/langbridge/internal/bridge"
	"github.com/dshills/langbridge/internal/commands"
	"github.com/dshills/langbridge/internal/diagnostics"
	"github.com/dshills/langbridge/internal/dispose"
	"github.com/dshills/langbridge/internal/extapi"
	"github.com/dshills/langbridge/internal/logging"
)

// maxParallelLoads bounds concurrent script loading in LoadPaths.
const maxParallelLoads = 4

// Dependencies are the services extensions register with.
type Dependencies struct {
	Features    *bridge.LanguageFeatures
	Commands    *commands.Registry
	Diagnostics *diagnostics.Collection
	Logger      *logging.Logger
}

// Host loads Lua extensions and tracks everything they register.
type Host struct {
	mu         sync.RWMutex
	extensions map[string]*Extension
	loading    map[string]bool

	features    *bridge.LanguageFeatures
	commands    *commands.Registry
	diagnostics *diagnostics.Collection
	log         *logging.Logger

	stateOpts []StateOption
}

// Option configures a Host.
type Option func(*Host)

// WithHostExecutionTimeout sets the time budget of each script call.
func WithHostExecutionTimeout(d time.Duration) Option {
	return func(h *Host) {
		h.stateOpts = append(h.stateOpts, WithExecutionTimeout(d))
	}
}

// WithHostMemoryLimit bounds each extension state.
func WithHostMemoryLimit(bytes int64) Option {
	return func(h *Host) {
		if bytes > 0 {
			h.stateOpts = append(h.stateOpts, WithMemoryLimit(bytes))
		}
	}
}

// NewHost creates a host. Missing dependencies get private instances.
func NewHost(deps Dependencies, opts ...Option) *Host {
	if deps.Logger == nil {
		deps.Logger = logging.Null()
	}
	if deps.Features == nil {
		deps.Features = bridge.New(bridge.Dependencies{Logger: deps.Logger})
	}
	if deps.Commands == nil {
		deps.Commands = commands.NewRegistry(commands.WithLogger(deps.Logger))
	}
	if deps.Diagnostics == nil {
		deps.Diagnostics = diagnostics.New()
	}
	h := &Host{
		extensions:  make(map[string]*Extension),
		loading:     make(map[string]bool),
		features:    deps.Features,
		commands:    deps.Commands,
		diagnostics: deps.Diagnostics,
		log:         deps.Logger.WithComponent("luaext"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Extension is a loaded script.
type Extension struct {
	manifest    *Manifest
	info        extapi.Extension
	path        string
	source      string
	state       *State
	host        *Host
	disposables *dispose.Store
	log         *logging.Logger
}

// ID returns the extension id.
func (e *Extension) ID() string { return e.info.ID }

// Info returns the identity the extension registers under.
func (e *Extension) Info() extapi.Extension { return e.info }

// Manifest returns the extension manifest.
func (e *Extension) Manifest() *Manifest { return e.manifest }

// Path is the directory or script the extension was loaded from. Inline
// extensions have no path.
func (e *Extension) Path() string { return e.path }

// Registrations counts the live providers and commands of the extension.
func (e *Extension) Registrations() int { return e.disposables.Len() }

func (e *Extension) unload() {
	e.disposables.Dispose()
	e.host.commands.UnregisterOwner(e.info.ID)
	e.host.diagnostics.Clear(e.info.ID)
	_ = e.state.Close()
}

// Inspect resolves path to a manifest. A directory needs a manifest or an
// init.lua; a file must be a .lua script.
func Inspect(path string) (*Manifest, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if filepath.Ext(path) != ".lua" {
			return nil, fmt.Errorf("%w: %s is not a lua script", ErrNoEntryPoint, path)
		}
		return manifestForScript(path), nil
	}

	m, err := FindManifest(path)
	if err == nil {
		return m, nil
	}
	if !isNotExist(err) {
		return nil, err
	}
	if _, err := os.Stat(filepath.Join(path, DefaultMain)); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoEntryPoint, path)
	}
	m = &Manifest{Name: strings.ToLower(filepath.Base(path)), dir: path}
	m.applyDefaults()
	return m, nil
}

// Discover lists the extension paths directly below root: directories
// with an entry point and .lua files. A missing root has none.
func Discover(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if isNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(root, name)
		if entry.IsDir() {
			if _, err := Inspect(path); errors.Is(err, ErrNoEntryPoint) {
				continue
			}
			paths = append(paths, path)
			continue
		}
		if filepath.Ext(name) == ".lua" {
			paths = append(paths, path)
		}
	}
	return paths, nil
}

// LoadPaths loads every extension found below roots. Failures are logged
// and joined into the returned error; the remaining extensions still load.
func (h *Host) LoadPaths(ctx context.Context, roots ...string) error {
	var (
		mu   sync.Mutex
		errs []error
	)
	fail := func(err error) {
		h.log.Error("%v", err)
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	var g errgroup.Group
	g.SetLimit(maxParallelLoads)
	for _, root := range roots {
		paths, err := Discover(root)
		if err != nil {
			fail(fmt.Errorf("discover %s: %w", root, err))
			continue
		}
		for _, path := range paths {
			path := path
			g.Go(func() error {
				if _, err := h.LoadPath(ctx, path); err != nil {
					fail(err)
				}
				return nil
			})
		}
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// LoadPath loads the extension at path.
func (h *Host) LoadPath(ctx context.Context, path string) (*Extension, error) {
	m, err := Inspect(path)
	if err != nil {
		return nil, fmt.Errorf("inspect %s: %w", path, err)
	}
	return h.load(ctx, m, path, "")
}

// Load loads the extension described by m.
func (h *Host) Load(ctx context.Context, m *Manifest) (*Extension, error) {
	return h.load(ctx, m, m.Origin(), "")
}

// LoadSource loads an extension from code. An empty or invalid name gets
// a generated one.
func (h *Host) LoadSource(ctx context.Context, name, code string) (*Extension, error) {
	m := &Manifest{Name: name, Main: "inline.lua"}
	m.applyDefaults()
	if m.Validate() != nil {
		m.Name = "script-" + uuid.NewString()
	}
	return h.load(ctx, m, "", code)
}

func (h *Host) load(ctx context.Context, m *Manifest, path, source string) (*Extension, error) {
	info := m.Extension()
	if info.DisplayName == "" {
		info.DisplayName = m.Name
	}
	if source == "" {
		if _, err := os.Stat(m.MainPath()); err != nil {
			return nil, fmt.Errorf("load %s: %w: %s", info.ID, ErrNoEntryPoint, m.MainPath())
		}
	}

	if err := h.reserve(info.ID); err != nil {
		return nil, err
	}
	defer h.release(info.ID)

	ext := &Extension{
		manifest:    m,
		info:        info,
		path:        path,
		source:      source,
		host:        h,
		disposables: dispose.NewStore(),
		log:         h.log.WithField("extension", info.ID),
	}
	ext.state = NewState(append(h.stateOpts, WithStateLogger(ext.log))...)
	ext.state.Preload(ModuleName, ext.module)

	var err error
	if source != "" {
		err = ext.state.DoString(ctx, source)
	} else {
		err = ext.state.DoFile(ctx, m.MainPath())
	}
	if err != nil {
		ext.unload()
		return nil, fmt.Errorf("load %s: %w", info.ID, err)
	}

	for _, c := range m.Commands {
		if !h.commands.Has(c.ID) {
			ext.log.Warn("declared command %s was not registered", c.ID)
		}
	}

	h.mu.Lock()
	h.extensions[info.ID] = ext
	h.mu.Unlock()
	ext.log.Info("loaded %s %s with %d registrations", info.DisplayName, info.Version, ext.Registrations())
	return ext, nil
}

func (h *Host) reserve(id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.extensions[id]; ok || h.loading[id] {
		return fmt.Errorf("%w: %s", ErrAlreadyLoaded, id)
	}
	h.loading[id] = true
	return nil
}

func (h *Host) release(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.loading, id)
}

// Unload removes an extension and everything it registered.
func (h *Host) Unload(id string) error {
	h.mu.Lock()
	ext, ok := h.extensions[id]
	delete(h.extensions, id)
	h.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotLoaded, id)
	}
	ext.unload()
	h.log.Info("unloaded extension %s", id)
	return nil
}

// Reload unloads an extension and loads it again from its origin.
func (h *Host) Reload(ctx context.Context, id string) (*Extension, error) {
	ext, ok := h.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotLoaded, id)
	}
	if err := h.Unload(id); err != nil {
		return nil, err
	}
	if ext.path == "" {
		return h.load(ctx, ext.manifest, "", ext.source)
	}
	return h.LoadPath(ctx, ext.path)
}

// Get returns a loaded extension.
func (h *Host) Get(id string) (*Extension, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ext, ok := h.extensions[id]
	return ext, ok
}

// byPath returns the extension loaded from path.
func (h *Host) byPath(path string) (*Extension, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ext := range h.extensions {
		if ext.path != "" && ext.path == path {
			return ext, true
		}
	}
	return nil, false
}

// Extensions returns the loaded extensions sorted by id.
func (h *Host) Extensions() []*Extension {
	h.mu.RLock()
	out := make([]*Extension, 0, len(h.extensions))
	for _, ext := range h.extensions {
		out = append(out, ext)
	}
	h.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].info.ID < out[j].info.ID })
	return out
}

// Close unloads every extension.
func (h *Host) Close() {
	for _, ext := range h.Extensions() {
		_ = h.Unload(ext.info.ID)
	}
}
