package bridge

import (
	"context"
	"sync"

	"github.com/dshills/langbridge/internal/convert"
	"github.com/dshills/langbridge/internal/dispose"
	"github.com/dshills/langbridge/internal/extapi"
	"github.com/dshills/langbridge/internal/protocol"
)

// hoverAdapter keeps the last few hovers so the UI can ask for a more or less
// verbose version of one of them.
type hoverAdapter struct {
	env      *env
	provider extapi.HoverProvider

	mu      sync.Mutex
	counter int
	hovers  map[int]*extapi.Hover
}

func (*hoverAdapter) kind() Kind { return KindHover }

func (a *hoverAdapter) dispose() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hovers = make(map[int]*extapi.Hover)
}

func (a *hoverAdapter) provide(ctx context.Context, uri protocol.DocumentURI, pos protocol.Position, hctx *protocol.HoverContext) (*protocol.Hover, error) {
	doc, err := a.env.document(uri)
	if err != nil {
		return nil, err
	}
	p := convert.ToPosition(pos)

	var verbosity *extapi.HoverContext
	if hctx != nil && hctx.VerbosityRequest != nil {
		req := hctx.VerbosityRequest
		previous, ok := a.lookup(req.PreviousHoverID)
		if !ok {
			return nil, usageErrorf("provideHover", "hover with id %d not found", req.PreviousHoverID)
		}
		verbosity = &extapi.HoverContext{VerbosityDelta: req.VerbosityDelta, PreviousHover: previous}
	}

	value, err := a.provider.ProvideHover(ctx, doc, p, verbosity)
	if err != nil || value == nil || len(value.Contents) == 0 {
		return nil, err
	}

	hover := *value
	if hover.Range == nil {
		rng, ok := doc.WordRangeAtPosition(p, nil)
		if !ok {
			rng = extapi.Range{Start: p, End: p}
		}
		hover.Range = &rng
	}

	out := convert.Hover(&hover)
	out.ID = a.remember(&hover)
	return &out, nil
}

func (a *hoverAdapter) lookup(id int) (*extapi.Hover, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	h, ok := a.hovers[id]
	return h, ok
}

// remember stores h under a fresh id, evicting the oldest entry when the
// history is full.
func (a *hoverAdapter) remember(h *extapi.Hover) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.hovers) >= a.env.opts.hoverHistory {
		oldest := -1
		for id := range a.hovers {
			if oldest < 0 || id < oldest {
				oldest = id
			}
		}
		delete(a.hovers, oldest)
	}

	id := a.counter
	a.counter++
	a.hovers[id] = h
	return id
}

func (a *hoverAdapter) release(id int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.hovers, id)
}

// RegisterHoverProvider registers a hover provider.
func (lf *LanguageFeatures) RegisterHoverProvider(ext extapi.Extension, selector extapi.DocumentSelector, provider extapi.HoverProvider) dispose.Disposable {
	a := &hoverAdapter{env: lf.env, provider: provider, hovers: make(map[int]*extapi.Hover)}
	return lf.register(ext, selector, a, provider, protocol.Registration{})
}

// ProvideHover returns the hover at pos, or nil. hctx may reference an earlier
// hover by id to request a different verbosity; an unknown id is a
// *UsageError.
func (lf *LanguageFeatures) ProvideHover(ctx context.Context, handle int, uri protocol.DocumentURI, pos protocol.Position, hctx *protocol.HoverContext) (*protocol.Hover, error) {
	return withAdapter(ctx, lf, handle, KindHover, "provideHover", (*protocol.Hover)(nil),
		func(ctx context.Context, a *hoverAdapter) (*protocol.Hover, error) {
			return a.provide(ctx, uri, pos, hctx)
		})
}

// ReleaseHover forgets a hover kept for verbosity requests.
func (lf *LanguageFeatures) ReleaseHover(handle, id int) {
	_, _ = withAdapter(context.Background(), lf, handle, KindHover, "releaseHover", struct{}{},
		func(_ context.Context, a *hoverAdapter) (struct{}, error) {
			a.release(id)
			return struct{}{}, nil
		}, quiet())
}

// --- Debugger support ---

type evaluatableExpressionAdapter struct {
	stateless
	env      *env
	provider extapi.EvaluatableExpressionProvider
}

func (*evaluatableExpressionAdapter) kind() Kind { return KindEvaluatableExpression }

func (a *evaluatableExpressionAdapter) provide(ctx context.Context, uri protocol.DocumentURI, pos protocol.Position) (*protocol.EvaluatableExpression, error) {
	doc, err := a.env.document(uri)
	if err != nil {
		return nil, err
	}
	value, err := a.provider.ProvideEvaluatableExpression(ctx, doc, convert.ToPosition(pos))
	if err != nil {
		return nil, err
	}
	return convert.EvaluatableExpression(value), nil
}

// RegisterEvaluatableExpressionProvider registers a debugger expression provider.
func (lf *LanguageFeatures) RegisterEvaluatableExpressionProvider(ext extapi.Extension, selector extapi.DocumentSelector, provider extapi.EvaluatableExpressionProvider) dispose.Disposable {
	a := &evaluatableExpressionAdapter{env: lf.env, provider: provider}
	return lf.register(ext, selector, a, provider, protocol.Registration{})
}

// ProvideEvaluatableExpression returns the expression at pos, or nil.
func (lf *LanguageFeatures) ProvideEvaluatableExpression(ctx context.Context, handle int, uri protocol.DocumentURI, pos protocol.Position) (*protocol.EvaluatableExpression, error) {
	return withAdapter(ctx, lf, handle, KindEvaluatableExpression, "provideEvaluatableExpression", (*protocol.EvaluatableExpression)(nil),
		func(ctx context.Context, a *evaluatableExpressionAdapter) (*protocol.EvaluatableExpression, error) {
			return a.provide(ctx, uri, pos)
		})
}

type inlineValuesAdapter struct {
	stateless
	env      *env
	provider extapi.InlineValuesProvider
}

func (*inlineValuesAdapter) kind() Kind { return KindInlineValues }

func (a *inlineValuesAdapter) provide(ctx context.Context, uri protocol.DocumentURI, viewport protocol.Range, ictx protocol.InlineValueContext) ([]protocol.InlineValue, error) {
	doc, err := a.env.document(uri)
	if err != nil {
		return nil, err
	}
	value, err := a.provider.ProvideInlineValues(ctx, doc, convert.ToRange(viewport), convert.ToInlineValueContext(ictx))
	if err != nil || value == nil {
		return nil, err
	}
	out := make([]protocol.InlineValue, len(value))
	for i, v := range value {
		out[i] = convert.InlineValue(v)
	}
	return out, nil
}

// RegisterInlineValuesProvider registers an inline values provider.
func (lf *LanguageFeatures) RegisterInlineValuesProvider(ext extapi.Extension, selector extapi.DocumentSelector, provider extapi.InlineValuesProvider) dispose.Disposable {
	a := &inlineValuesAdapter{env: lf.env, provider: provider}
	return lf.register(ext, selector, a, provider, protocol.Registration{})
}

// ProvideInlineValues returns inline debug values, or nil.
func (lf *LanguageFeatures) ProvideInlineValues(ctx context.Context, handle int, uri protocol.DocumentURI, viewport protocol.Range, ictx protocol.InlineValueContext) ([]protocol.InlineValue, error) {
	return withAdapter(ctx, lf, handle, KindInlineValues, "provideInlineValues", []protocol.InlineValue(nil),
		func(ctx context.Context, a *inlineValuesAdapter) ([]protocol.InlineValue, error) {
			return a.provide(ctx, uri, viewport, ictx)
		})
}
