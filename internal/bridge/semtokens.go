package bridge

import (
	"context"
	"sync"

	"github.com/dshills/langbridge/internal/convert"
	"github.com/dshills/langbridge/internal/dispose"
	"github.com/dshills/langbridge/internal/extapi"
	"github.com/dshills/langbridge/internal/protocol"
	"github.com/dshills/langbridge/internal/semtok"
)

// previousTokens is what the adapter remembers about a result it sent.
// tokens is nil when the provider answered with edits and the full buffer
// is unknown.
type previousTokens struct {
	resultID string
	tokens   []uint32
}

type semanticTokensAdapter struct {
	env      *env
	provider extapi.DocumentSemanticTokensProvider

	mu       sync.Mutex
	nextID   int
	previous map[int]*previousTokens
}

func newSemanticTokensAdapter(e *env, provider extapi.DocumentSemanticTokensProvider) *semanticTokensAdapter {
	return &semanticTokensAdapter{env: e, provider: provider, nextID: 1, previous: make(map[int]*previousTokens)}
}

func (*semanticTokensAdapter) kind() Kind { return KindDocumentSemanticTokens }

func (a *semanticTokensAdapter) dispose() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.previous = make(map[int]*previousTokens)
}

// take removes and returns the result stored under id. id 0 means none.
func (a *semanticTokensAdapter) take(id int) *previousTokens {
	if id == 0 {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	prev := a.previous[id]
	delete(a.previous, id)
	return prev
}

func (a *semanticTokensAdapter) store(prev *previousTokens) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.nextID
	a.nextID++
	a.previous[id] = prev
	return id
}

func (a *semanticTokensAdapter) release(id int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.previous, id)
}

func (a *semanticTokensAdapter) provide(ctx context.Context, uri protocol.DocumentURI, previousResultID int) ([]byte, error) {
	doc, err := a.env.document(uri)
	if err != nil {
		return nil, err
	}

	prev := a.take(previousResultID)

	var value extapi.SemanticTokensResult
	edits, canEdit := a.provider.(extapi.SemanticTokensEditsProvider)
	if prev != nil && prev.resultID != "" && canEdit {
		value, err = edits.ProvideDocumentSemanticTokensEdits(ctx, doc, prev.resultID)
	} else {
		var full *extapi.SemanticTokens
		full, err = a.provider.ProvideDocumentSemanticTokens(ctx, doc)
		if full != nil {
			value = full
		}
	}
	if err != nil {
		return nil, err
	}

	value = normalizeSemanticTokens(value)
	if value == nil {
		return nil, nil
	}
	return a.send(toEdits(prev, value), value), nil
}

// normalizeSemanticTokens copies a provider result into fresh buffers so
// later mutation by the provider cannot corrupt retained data. Nil results
// stay nil.
func normalizeSemanticTokens(v extapi.SemanticTokensResult) extapi.SemanticTokensResult {
	switch t := v.(type) {
	case *extapi.SemanticTokens:
		if t == nil {
			return nil
		}
		return &extapi.SemanticTokens{ResultID: t.ResultID, Data: append([]uint32{}, t.Data...)}
	case *extapi.SemanticTokensEdits:
		if t == nil {
			return nil
		}
		out := &extapi.SemanticTokensEdits{ResultID: t.ResultID, Edits: make([]extapi.SemanticTokensEdit, len(t.Edits))}
		for i, e := range t.Edits {
			out.Edits[i] = extapi.SemanticTokensEdit{Start: e.Start, DeleteCount: e.DeleteCount, Data: append([]uint32{}, e.Data...)}
		}
		return out
	default:
		return nil
	}
}

// toEdits turns a full result into edits against the previous full buffer
// when there is one.
func toEdits(prev *previousTokens, v extapi.SemanticTokensResult) extapi.SemanticTokensResult {
	full, ok := v.(*extapi.SemanticTokens)
	if !ok || prev == nil || prev.tokens == nil {
		return v
	}
	diff := semtok.Diff(prev.tokens, full.Data)
	out := &extapi.SemanticTokensEdits{ResultID: full.ResultID, Edits: make([]extapi.SemanticTokensEdit, len(diff))}
	for i, e := range diff {
		out.Edits[i] = extapi.SemanticTokensEdit{Start: e.Start, DeleteCount: e.DeleteCount, Data: e.Data}
	}
	return out
}

// send assigns a result id and encodes v. The full buffer of original is
// retained under that id even when v is a delta.
func (a *semanticTokensAdapter) send(v, original extapi.SemanticTokensResult) []byte {
	switch t := v.(type) {
	case *extapi.SemanticTokens:
		id := a.store(&previousTokens{resultID: t.ResultID, tokens: t.Data})
		return semtok.Encode(semtok.DTO{ID: id, Kind: semtok.KindFull, Data: t.Data})
	case *extapi.SemanticTokensEdits:
		prev := &previousTokens{resultID: t.ResultID}
		if full, ok := original.(*extapi.SemanticTokens); ok {
			prev = &previousTokens{resultID: full.ResultID, tokens: full.Data}
		}
		id := a.store(prev)
		deltas := make([]semtok.Edit, len(t.Edits))
		for i, e := range t.Edits {
			deltas[i] = semtok.Edit{Start: e.Start, DeleteCount: e.DeleteCount, Data: e.Data}
		}
		return semtok.Encode(semtok.DTO{ID: id, Kind: semtok.KindDelta, Deltas: deltas})
	}
	return nil
}

type rangeSemanticTokensAdapter struct {
	stateless
	env      *env
	provider extapi.DocumentRangeSemanticTokensProvider
}

func (*rangeSemanticTokensAdapter) kind() Kind { return KindDocumentRangeSemanticTokens }

func (a *rangeSemanticTokensAdapter) provide(ctx context.Context, uri protocol.DocumentURI, rng protocol.Range) ([]byte, error) {
	doc, err := a.env.document(uri)
	if err != nil {
		return nil, err
	}
	value, err := a.provider.ProvideDocumentRangeSemanticTokens(ctx, doc, convert.ToRange(rng))
	if err != nil || value == nil {
		return nil, err
	}
	return semtok.Encode(semtok.DTO{ID: 0, Kind: semtok.KindFull, Data: value.Data}), nil
}

// RegisterDocumentSemanticTokensProvider registers a semantic tokens
// provider. Providers implementing extapi.SemanticTokensEditsProvider are
// asked for deltas when a previous result exists.
func (lf *LanguageFeatures) RegisterDocumentSemanticTokensProvider(ext extapi.Extension, selector extapi.DocumentSelector, provider extapi.DocumentSemanticTokensProvider, legend extapi.SemanticTokensLegend) dispose.Disposable {
	a := newSemanticTokensAdapter(lf.env, provider)
	_, edits := provider.(extapi.SemanticTokensEditsProvider)
	return lf.register(ext, selector, a, provider, protocol.Registration{
		Legend:        convert.SemanticTokensLegend(legend),
		SupportsEdits: edits,
	})
}

// RegisterDocumentRangeSemanticTokensProvider registers a range semantic tokens provider.
func (lf *LanguageFeatures) RegisterDocumentRangeSemanticTokensProvider(ext extapi.Extension, selector extapi.DocumentSelector, provider extapi.DocumentRangeSemanticTokensProvider, legend extapi.SemanticTokensLegend) dispose.Disposable {
	a := &rangeSemanticTokensAdapter{env: lf.env, provider: provider}
	return lf.register(ext, selector, a, provider, protocol.Registration{Legend: convert.SemanticTokensLegend(legend)})
}

// ProvideDocumentSemanticTokens returns an encoded token buffer (see package
// semtok), or nil. previousResultID is the id of the last buffer the caller
// holds for this document, or 0.
func (lf *LanguageFeatures) ProvideDocumentSemanticTokens(ctx context.Context, handle int, uri protocol.DocumentURI, previousResultID int) ([]byte, error) {
	return withAdapter(ctx, lf, handle, KindDocumentSemanticTokens, "provideDocumentSemanticTokens", []byte(nil),
		func(ctx context.Context, a *semanticTokensAdapter) ([]byte, error) {
			return a.provide(ctx, uri, previousResultID)
		})
}

// ReleaseDocumentSemanticTokens drops the buffer retained for a result id.
func (lf *LanguageFeatures) ReleaseDocumentSemanticTokens(handle, resultID int) {
	_, _ = withAdapter(context.Background(), lf, handle, KindDocumentSemanticTokens, "releaseDocumentSemanticTokens", struct{}{},
		func(_ context.Context, a *semanticTokensAdapter) (struct{}, error) {
			a.release(resultID)
			return struct{}{}, nil
		}, quiet())
}

// ProvideDocumentRangeSemanticTokens returns an encoded full buffer with id 0, or nil.
func (lf *LanguageFeatures) ProvideDocumentRangeSemanticTokens(ctx context.Context, handle int, uri protocol.DocumentURI, rng protocol.Range) ([]byte, error) {
	return withAdapter(ctx, lf, handle, KindDocumentRangeSemanticTokens, "provideDocumentRangeSemanticTokens", []byte(nil),
		func(ctx context.Context, a *rangeSemanticTokensAdapter) ([]byte, error) {
			return a.provide(ctx, uri, rng)
		})
}
