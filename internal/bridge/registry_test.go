package bridge

import (
	"context"
	"testing"

	"github.com/dshills/langbridge/internal/dispose"
	"github.com/dshills/langbridge/internal/extapi"
)

type symbolsFunc func(ctx context.Context, doc extapi.Document) (*extapi.DocumentSymbols, error)

func (f symbolsFunc) ProvideDocumentSymbols(ctx context.Context, doc extapi.Document) (*extapi.DocumentSymbols, error) {
	return f(ctx, doc)
}

// notifyingFolding is a folding provider with change events.
type notifyingFolding struct {
	listener func()
	disposed bool
}

func (p *notifyingFolding) ProvideFoldingRanges(context.Context, extapi.Document) ([]extapi.FoldingRange, error) {
	return []extapi.FoldingRange{{Start: 0, End: 2}}, nil
}

func (p *notifyingFolding) OnDidChange(listener func()) dispose.Disposable {
	p.listener = listener
	return dispose.Func(func() { p.disposed = true })
}

func TestRegistry_HandlesAreUnique(t *testing.T) {
	te := newTestEnv(t)
	provider := symbolsFunc(func(context.Context, extapi.Document) (*extapi.DocumentSymbols, error) { return nil, nil })

	seen := make(map[int]bool)
	for i := 0; i < 20; i++ {
		te.lf.RegisterDocumentSymbolProvider(testExt, nil, provider, "")
		h := te.remote.last().reg.Handle
		if seen[h] {
			t.Fatalf("handle %d issued twice", h)
		}
		seen[h] = true
	}
	if te.lf.ProviderCount() != 20 {
		t.Errorf("Expected 20 providers, got %d", te.lf.ProviderCount())
	}
	if !seen[0] {
		t.Error("Expected handles to start at 0")
	}
}

func TestRegistry_UnregisterFallsBack(t *testing.T) {
	te := newTestEnv(t)
	te.docs.add(testURI, "package main")

	calls := 0
	provider := symbolsFunc(func(context.Context, extapi.Document) (*extapi.DocumentSymbols, error) {
		calls++
		return &extapi.DocumentSymbols{Tree: []*extapi.DocumentSymbol{{Name: "main"}}}, nil
	})
	d := te.lf.RegisterDocumentSymbolProvider(testExt, nil, provider, "")
	handle := te.remote.last().reg.Handle

	got, err := te.lf.ProvideDocumentSymbols(context.Background(), handle, testURI)
	if err != nil || len(got) != 1 {
		t.Fatalf("ProvideDocumentSymbols = %v, %v", got, err)
	}

	d.Dispose()
	d.Dispose()

	got, err = te.lf.ProvideDocumentSymbols(context.Background(), handle, testURI)
	if err != nil {
		t.Fatalf("Expected no error after unregister, got %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil after unregister, got %v", got)
	}
	if calls != 1 {
		t.Errorf("Expected provider to be called once, got %d", calls)
	}
	if len(te.remote.unregistered) != 1 || te.remote.unregistered[0] != handle {
		t.Errorf("Expected a single unregister of %d, got %v", handle, te.remote.unregistered)
	}
}

func TestRegistry_KindMismatchFallsBack(t *testing.T) {
	te := newTestEnv(t)
	te.docs.add(testURI, "package main")
	te.lf.RegisterDocumentSymbolProvider(testExt, nil,
		symbolsFunc(func(context.Context, extapi.Document) (*extapi.DocumentSymbols, error) { return nil, nil }), "")
	handle := te.remote.last().reg.Handle

	colors, err := te.lf.ProvideDocumentColors(context.Background(), handle, testURI)
	if err != nil {
		t.Fatalf("ProvideDocumentColors error: %v", err)
	}
	if colors == nil || len(colors) != 0 {
		t.Errorf("Expected empty color list, got %#v", colors)
	}
}

func TestRegistry_ChangeEvents(t *testing.T) {
	te := newTestEnv(t)
	provider := &notifyingFolding{}
	d := te.lf.RegisterFoldingRangeProvider(testExt, extapi.DocumentSelector{{Language: "go"}}, provider)

	reg := te.remote.last().reg
	if reg.EventHandle == nil {
		t.Fatal("Expected an event handle")
	}
	if *reg.EventHandle == reg.Handle {
		t.Error("Event handle must differ from the provider handle")
	}
	if len(reg.Selector) != 1 || reg.Selector[0].Language != "go" {
		t.Errorf("Unexpected selector %v", reg.Selector)
	}

	provider.listener()
	if len(te.remote.events) != 1 || te.remote.events[0] != *reg.EventHandle {
		t.Errorf("Expected event %d, got %v", *reg.EventHandle, te.remote.events)
	}

	d.Dispose()
	if !provider.disposed {
		t.Error("Expected change subscription to be disposed")
	}
}

func TestCache_AddGetDelete(t *testing.T) {
	c := NewCache[string]()
	items := []string{"a", "b", "c"}
	id := c.Add(items)
	if id != 1 {
		t.Errorf("Expected first id 1, got %d", id)
	}
	for i, want := range items {
		got, ok := c.Get(id, i)
		if !ok || got != want {
			t.Errorf("Get(%d, %d) = %q, %v", id, i, got, ok)
		}
	}
	if _, ok := c.Get(id, 3); ok {
		t.Error("Expected out of range index to miss")
	}

	cleaned := false
	c.Store(id).AddFunc(func() { cleaned = true })

	other := c.Add([]string{"x"})
	if other == id {
		t.Error("Expected fresh id for second batch")
	}

	c.Delete(id)
	for i := range items {
		if _, ok := c.Get(id, i); ok {
			t.Errorf("Get(%d, %d) after delete should miss", id, i)
		}
	}
	if !cleaned {
		t.Error("Expected store cleanups to run on delete")
	}
	if c.Store(id) != nil {
		t.Error("Expected nil store after delete")
	}
	if c.Len() != 1 {
		t.Errorf("Expected 1 live batch, got %d", c.Len())
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Expected empty cache, got %d", c.Len())
	}
}

func TestReferenceMap(t *testing.T) {
	m := NewReferenceMap[string]()
	a := m.Create("a")
	b := m.Create("b")
	if a == b {
		t.Fatal("Expected distinct ids")
	}
	if v, ok := m.Dispose(a); !ok || v != "a" {
		t.Errorf("Dispose(%d) = %q, %v", a, v, ok)
	}
	if _, ok := m.Get(a); ok {
		t.Error("Expected disposed id to miss")
	}
	if _, ok := m.Dispose(a); ok {
		t.Error("Expected second dispose to miss")
	}
	if rest := m.Drain(); len(rest) != 1 || rest[0] != "b" {
		t.Errorf("Drain = %v", rest)
	}
	if m.Len() != 0 {
		t.Errorf("Expected empty map, got %d", m.Len())
	}
}

func TestSessionMap(t *testing.T) {
	s := NewSessionMap[string]()
	session := s.NewSession()
	ids := make(map[string]bool)
	for i := 0; i < 40; i++ {
		id, ok := s.Add(session, "item")
		if !ok {
			t.Fatal("Add to live session failed")
		}
		if ids[id] {
			t.Fatalf("item id %q reused", id)
		}
		ids[id] = true
	}
	if !ids["z"] || !ids["10"] {
		t.Error("Expected base-36 item ids")
	}

	if other := s.NewSession(); other == session {
		t.Error("Expected distinct session ids")
	}

	s.Release(session)
	if _, ok := s.Get(session, "0"); ok {
		t.Error("Expected released session to miss")
	}
	if _, ok := s.Add(session, "late"); ok {
		t.Error("Expected Add to released session to fail")
	}
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindHover, "Hover"},
		{KindDocumentSemanticTokens, "DocumentSemanticTokens"},
		{KindTypeHierarchy, "TypeHierarchy"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
	if len(Kinds()) != int(KindTypeHierarchy) {
		t.Errorf("Expected %d kinds, got %d", KindTypeHierarchy, len(Kinds()))
	}
}
