package hostrpc

import (
	"context"
	"sort"
	"sync"

	"github.com/dshills/langbridge/internal/bridge"
	"github.com/dshills/langbridge/internal/convert"
	"github.com/dshills/langbridge/internal/extapi"
	"github.com/dshills/langbridge/internal/logging"
	"github.com/dshills/langbridge/internal/protocol"
)

// Notifier sends notifications to the UI process. *wire.Conn implements it.
type Notifier interface {
	Notify(ctx context.Context, method string, params any) error
}

type unregisterParams struct {
	Handle int `json:"handle"`
}

type eventParams struct {
	EventHandle int `json:"eventHandle"`
}

type publishDiagnosticsParams struct {
	URI         protocol.DocumentURI  `json:"uri"`
	Diagnostics []protocol.Diagnostic `json:"diagnostics"`
}

type activeRegistration struct {
	kind bridge.Kind
	reg  protocol.Registration
}

// MainThread forwards registrations and events to the attached notifier.
// It remembers live registrations so that a newly attached notifier, such
// as a reconnecting websocket client, learns about every provider.
type MainThread struct {
	mu       sync.Mutex
	notifier Notifier
	active   map[int]activeRegistration
	log      *logging.Logger
}

// NewMainThread creates a MainThread without a notifier. Messages sent
// before Attach are only recorded.
func NewMainThread(log *logging.Logger) *MainThread {
	if log == nil {
		log = logging.Null()
	}
	return &MainThread{
		active: make(map[int]activeRegistration),
		log:    log.WithComponent("mainthread"),
	}
}

// Attach makes n the notifier and replays live registrations to it in
// handle order.
func (m *MainThread) Attach(n Notifier) {
	m.mu.Lock()
	m.notifier = n
	regs := make([]activeRegistration, 0, len(m.active))
	for _, a := range m.active {
		regs = append(regs, a)
	}
	m.mu.Unlock()

	sort.Slice(regs, func(i, j int) bool { return regs[i].reg.Handle < regs[j].reg.Handle })
	for _, a := range regs {
		m.send(n, registerMethod(a.kind.String()), a.reg)
	}
}

// Detach forgets n if it is the current notifier.
func (m *MainThread) Detach(n Notifier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.notifier == n {
		m.notifier = nil
	}
}

func (m *MainThread) current() Notifier {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notifier
}

func (m *MainThread) send(n Notifier, method string, params any) {
	if n == nil {
		return
	}
	if err := n.Notify(context.Background(), method, params); err != nil {
		m.log.Warn("sending %s: %v", method, err)
	}
}

// RegisterProvider implements bridge.MainThread.
func (m *MainThread) RegisterProvider(kind bridge.Kind, reg protocol.Registration) {
	m.mu.Lock()
	m.active[reg.Handle] = activeRegistration{kind: kind, reg: reg}
	n := m.notifier
	m.mu.Unlock()

	m.send(n, registerMethod(kind.String()), reg)
}

// Unregister implements bridge.MainThread.
func (m *MainThread) Unregister(handle int) {
	m.mu.Lock()
	delete(m.active, handle)
	n := m.notifier
	m.mu.Unlock()

	m.send(n, MethodUnregister, unregisterParams{Handle: handle})
}

// EmitEvent implements bridge.MainThread.
func (m *MainThread) EmitEvent(kind bridge.Kind, eventHandle int) {
	m.send(m.current(), emitMethod(kind.String()), eventParams{EventHandle: eventHandle})
}

// PublishDiagnostics sends the diagnostics of uri. It has the shape of a
// diagnostics change handler.
func (m *MainThread) PublishDiagnostics(uri extapi.URI, diags []extapi.Diagnostic) {
	out := convert.Diagnostics(diags)
	if out == nil {
		out = []protocol.Diagnostic{}
	}
	m.send(m.current(), MethodPublishDiagnostics, publishDiagnosticsParams{
		URI:         protocol.DocumentURI(uri),
		Diagnostics: out,
	})
}

// Registrations returns the number of live registrations.
func (m *MainThread) Registrations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}
