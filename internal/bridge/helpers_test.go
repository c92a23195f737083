package bridge

import (
	"bytes"
	"errors"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/dshills/langbridge/internal/extapi"
	"github.com/dshills/langbridge/internal/logging"
	"github.com/dshills/langbridge/internal/protocol"
)

const testURI protocol.DocumentURI = "file:///test/main.go"

var testExt = extapi.Extension{ID: "acme.go", DisplayName: "Acme Go"}

// fakeDoc is an ASCII-only document.
type fakeDoc struct {
	uri   extapi.URI
	lines []string
}

func newFakeDoc(uri protocol.DocumentURI, text string) *fakeDoc {
	return &fakeDoc{uri: extapi.URI(uri), lines: strings.Split(text, "\n")}
}

func (d *fakeDoc) URI() extapi.URI    { return d.uri }
func (d *fakeDoc) LanguageID() string { return "go" }
func (d *fakeDoc) Version() int       { return 1 }
func (d *fakeDoc) LineCount() int     { return len(d.lines) }
func (d *fakeDoc) Text() string       { return strings.Join(d.lines, "\n") }

func (d *fakeDoc) LineAt(line int) string {
	if line < 0 || line >= len(d.lines) {
		return ""
	}
	return d.lines[line]
}

func (d *fakeDoc) GetText(rng extapi.Range) string {
	rng = d.ValidateRange(rng)
	if rng.Start.Line == rng.End.Line {
		return d.lines[rng.Start.Line][rng.Start.Character:rng.End.Character]
	}
	var b strings.Builder
	b.WriteString(d.lines[rng.Start.Line][rng.Start.Character:])
	for l := rng.Start.Line + 1; l < rng.End.Line; l++ {
		b.WriteString("\n" + d.lines[l])
	}
	b.WriteString("\n" + d.lines[rng.End.Line][:rng.End.Character])
	return b.String()
}

func isWordByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func (d *fakeDoc) WordRangeAtPosition(pos extapi.Position, _ *regexp.Regexp) (extapi.Range, bool) {
	line := d.LineAt(pos.Line)
	start, end := pos.Character, pos.Character
	for start > 0 && isWordByte(line[start-1]) {
		start--
	}
	for end < len(line) && isWordByte(line[end]) {
		end++
	}
	if start == end {
		return extapi.Range{}, false
	}
	return extapi.NewRange(pos.Line, start, pos.Line, end), true
}

func (d *fakeDoc) ValidatePosition(pos extapi.Position) extapi.Position {
	if pos.Line < 0 {
		return extapi.NewPosition(0, 0)
	}
	if pos.Line >= len(d.lines) {
		last := len(d.lines) - 1
		return extapi.NewPosition(last, len(d.lines[last]))
	}
	if pos.Character < 0 {
		pos.Character = 0
	}
	if n := len(d.lines[pos.Line]); pos.Character > n {
		pos.Character = n
	}
	return pos
}

func (d *fakeDoc) ValidateRange(rng extapi.Range) extapi.Range {
	return extapi.RangeFrom(d.ValidatePosition(rng.Start), d.ValidatePosition(rng.End))
}

type fakeDocs struct {
	mu   sync.Mutex
	docs map[protocol.DocumentURI]extapi.Document
}

func (f *fakeDocs) add(uri protocol.DocumentURI, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[uri] = newFakeDoc(uri, text)
}

func (f *fakeDocs) Document(uri protocol.DocumentURI) (extapi.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[uri]
	if !ok {
		return nil, errors.New("unknown document")
	}
	return doc, nil
}

type registration struct {
	kind Kind
	reg  protocol.Registration
}

type fakeMainThread struct {
	mu            sync.Mutex
	registrations []registration
	unregistered  []int
	events        []int
}

func (m *fakeMainThread) RegisterProvider(kind Kind, reg protocol.Registration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registrations = append(m.registrations, registration{kind: kind, reg: reg})
}

func (m *fakeMainThread) Unregister(handle int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unregistered = append(m.unregistered, handle)
}

func (m *fakeMainThread) EmitEvent(_ Kind, eventHandle int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, eventHandle)
}

func (m *fakeMainThread) last() registration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.registrations[len(m.registrations)-1]
}

type fakeTelemetry struct {
	mu      sync.Mutex
	reports []ProviderFailure
	notify  chan struct{}
}

func (f *fakeTelemetry) ReportProviderError(pf ProviderFailure) {
	f.mu.Lock()
	f.reports = append(f.reports, pf)
	f.mu.Unlock()
	if f.notify != nil {
		f.notify <- struct{}{}
	}
}

func (f *fakeTelemetry) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reports)
}

type fakeDiagnostics map[extapi.URI][]extapi.Diagnostic

func (f fakeDiagnostics) Diagnostics(uri extapi.URI) []extapi.Diagnostic { return f[uri] }

// syncBuffer is a goroutine-safe log sink.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type testEnv struct {
	lf        *LanguageFeatures
	docs      *fakeDocs
	remote    *fakeMainThread
	telemetry *fakeTelemetry
	diags     fakeDiagnostics
	logs      *syncBuffer
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	te := &testEnv{
		docs:      &fakeDocs{docs: make(map[protocol.DocumentURI]extapi.Document)},
		remote:    &fakeMainThread{},
		telemetry: &fakeTelemetry{},
		diags:     make(fakeDiagnostics),
		logs:      &syncBuffer{},
	}
	logger := logging.New(logging.Config{Level: logging.LevelDebug, Output: te.logs, Prefix: "test"})
	te.lf = New(Dependencies{
		Remote:      te.remote,
		Documents:   te.docs,
		Telemetry:   te.telemetry,
		Diagnostics: te.diags,
		Logger:      logger,
	}, opts...)
	return te
}

func pos(line, char int) protocol.Position {
	return protocol.Position{Line: line, Character: char}
}

func rng(sl, sc, el, ec int) protocol.Range {
	return protocol.Range{Start: pos(sl, sc), End: pos(el, ec)}
}
