package bridge

import (
	"fmt"
	"sync"

	"github.com/dshills/langbridge/internal/convert"
	"github.com/dshills/langbridge/internal/dispose"
	"github.com/dshills/langbridge/internal/extapi"
	"github.com/dshills/langbridge/internal/logging"
	"github.com/dshills/langbridge/internal/protocol"
)

// Default limits.
const (
	DefaultHoverHistory             = 10
	DefaultMaxCodeActionDiagnostics = 1000
)

// Dependencies are the collaborators of LanguageFeatures. Nil fields fall
// back to no-op implementations.
type Dependencies struct {
	Remote      MainThread
	Documents   DocumentResolver
	Commands    CommandConverter
	Diagnostics DiagnosticsReader
	Telemetry   TelemetryReporter
	Logger      *logging.Logger
}

// Option configures LanguageFeatures.
type Option func(*options)

type options struct {
	logInvocations           bool
	hoverHistory             int
	maxCodeActionDiagnostics int
}

// WithInvocationLogging enables or disables debug logs for every provider call.
func WithInvocationLogging(enabled bool) Option {
	return func(o *options) { o.logInvocations = enabled }
}

// WithHoverHistory sets how many hovers are kept for verbosity requests.
func WithHoverHistory(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.hoverHistory = n
		}
	}
}

// WithMaxCodeActionDiagnostics caps the diagnostics passed to code action providers.
func WithMaxCodeActionDiagnostics(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxCodeActionDiagnostics = n
		}
	}
}

// env is shared by all adapters of one LanguageFeatures.
type env struct {
	docs        DocumentResolver
	commands    CommandConverter
	diagnostics DiagnosticsReader
	log         *logging.Logger
	opts        options
	deprecation *deprecationReporter
}

func (e *env) document(uri protocol.DocumentURI) (extapi.Document, error) {
	doc, err := e.docs.Document(uri)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", uri, err)
	}
	return doc, nil
}

// deprecationReporter logs each deprecated API use once per extension.
type deprecationReporter struct {
	mu   sync.Mutex
	seen map[string]struct{}
	log  *logging.Logger
}

func (d *deprecationReporter) report(api string, ext extapi.Extension, migration string) {
	key := ext.ID + "\x00" + api
	d.mu.Lock()
	_, dup := d.seen[key]
	d.seen[key] = struct{}{}
	d.mu.Unlock()
	if dup {
		return
	}
	d.log.Warn("[%s] uses deprecated API %q. %s", ext, api, migration)
}

// LanguageFeatures owns the provider registry and every adapter.
type LanguageFeatures struct {
	registry  *registry
	remote    MainThread
	telemetry TelemetryReporter
	log       *logging.Logger
	env       *env
}

// New creates a LanguageFeatures.
func New(deps Dependencies, opts ...Option) *LanguageFeatures {
	o := options{
		logInvocations:           true,
		hoverHistory:             DefaultHoverHistory,
		maxCodeActionDiagnostics: DefaultMaxCodeActionDiagnostics,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if deps.Remote == nil {
		deps.Remote = nopMainThread{}
	}
	if deps.Documents == nil {
		deps.Documents = nopDocuments{}
	}
	if deps.Commands == nil {
		deps.Commands = plainCommands{}
	}
	if deps.Diagnostics == nil {
		deps.Diagnostics = nopDiagnostics{}
	}
	if deps.Telemetry == nil {
		deps.Telemetry = nopTelemetry{}
	}
	if deps.Logger == nil {
		deps.Logger = logging.Null()
	}
	log := deps.Logger.WithComponent("bridge")

	return &LanguageFeatures{
		registry:  newRegistry(),
		remote:    deps.Remote,
		telemetry: deps.Telemetry,
		log:       log,
		env: &env{
			docs:        deps.Documents,
			commands:    deps.Commands,
			diagnostics: deps.Diagnostics,
			log:         log,
			opts:        o,
			deprecation: &deprecationReporter{seen: make(map[string]struct{}), log: log},
		},
	}
}

// ProviderCount returns the number of registered providers.
func (lf *LanguageFeatures) ProviderCount() int {
	return lf.registry.len()
}

// register binds a to a handle, announces it to the remote side and returns
// the disposable that undoes both. provider is inspected for change events.
func (lf *LanguageFeatures) register(ext extapi.Extension, selector extapi.DocumentSelector, a adapter, provider any, reg protocol.Registration) dispose.Disposable {
	handle := lf.registry.add(a, ext)

	reg.Handle = handle
	reg.Selector = convert.DocumentSelector(selector)
	reg.Extension = protocol.ExtensionRef{ID: ext.ID, DisplayName: ext.DisplayName}

	var subscription dispose.Disposable = dispose.None
	if notifier, ok := provider.(extapi.ChangeNotifier); ok {
		eventHandle := lf.registry.nextHandle()
		reg.EventHandle = &eventHandle
		kind := a.kind()
		if d := notifier.OnDidChange(func() { lf.remote.EmitEvent(kind, eventHandle) }); d != nil {
			subscription = d
		}
	}

	lf.remote.RegisterProvider(a.kind(), reg)
	lf.log.Debug("[%s] registered %s provider with handle %d", ext, a.kind(), handle)

	return dispose.Combine(lf.createDisposable(handle), subscription)
}

// createDisposable returns the cleanup for handle: forget the adapter, drop
// its cached state and tell the remote side.
func (lf *LanguageFeatures) createDisposable(handle int) dispose.Disposable {
	return dispose.Once(func() {
		if data, ok := lf.registry.remove(handle); ok {
			data.adapter.dispose()
		}
		lf.remote.Unregister(handle)
	})
}

// stateless is embedded by adapters that keep nothing between calls.
type stateless struct{}

func (stateless) dispose() {}
