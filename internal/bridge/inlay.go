package bridge

import (
	"context"

	"github.com/dshills/langbridge/internal/convert"
	"github.com/dshills/langbridge/internal/dispose"
	"github.com/dshills/langbridge/internal/extapi"
	"github.com/dshills/langbridge/internal/protocol"
)

type inlayHintsAdapter struct {
	env      *env
	provider extapi.InlayHintsProvider
	cache    *Cache[*extapi.InlayHint]
}

func (*inlayHintsAdapter) kind() Kind { return KindInlayHints }
func (a *inlayHintsAdapter) dispose() { a.cache.Clear() }

// validHint reports whether a hint has a label and sits inside rng.
func validHint(h *extapi.InlayHint, rng extapi.Range) bool {
	if h == nil {
		return false
	}
	if h.Label == "" && len(h.LabelParts) == 0 {
		return false
	}
	return rng.Contains(h.Position)
}

func (a *inlayHintsAdapter) provide(ctx context.Context, uri protocol.DocumentURI, rng protocol.Range) (*protocol.InlayHintList, error) {
	doc, err := a.env.document(uri)
	if err != nil {
		return nil, err
	}
	r := convert.ToRange(rng)
	hints, err := a.provider.ProvideInlayHints(ctx, doc, r)
	if err != nil || len(hints) == 0 || ctx.Err() != nil {
		return nil, err
	}

	id := a.cache.Add(hints)
	store := a.cache.Store(id)
	out := &protocol.InlayHintList{CacheID: id, Hints: make([]protocol.InlayHint, 0, len(hints))}
	for i, h := range hints {
		if !validHint(h, r) {
			continue
		}
		out.Hints = append(out.Hints, a.convertHint(h, protocol.ChainedCacheID{id, i}, store))
	}
	return out, nil
}

func (a *inlayHintsAdapter) convertHint(h *extapi.InlayHint, id protocol.ChainedCacheID, store *dispose.Store) protocol.InlayHint {
	out := protocol.InlayHint{
		CacheID:      id,
		Label:        h.Label,
		Tooltip:      convert.MarkdownPtr(h.Tooltip),
		Position:     convert.Position(h.Position),
		Kind:         int(h.Kind),
		TextEdits:    convert.TextEdits(h.TextEdits),
		PaddingLeft:  h.PaddingLeft,
		PaddingRight: h.PaddingRight,
	}
	if len(h.LabelParts) > 0 {
		out.Label = ""
		out.LabelParts = make([]protocol.InlayHintLabelPart, len(h.LabelParts))
		for i, p := range h.LabelParts {
			out.LabelParts[i] = protocol.InlayHintLabelPart{
				Label:    p.Value,
				Tooltip:  convert.MarkdownPtr(p.Tooltip),
				Location: convert.LocationPtr(p.Location),
				Command:  a.env.commands.ToInternal(p.Command, store),
			}
		}
	}
	return out
}

func (a *inlayHintsAdapter) resolve(ctx context.Context, id protocol.ChainedCacheID) (*protocol.InlayHint, error) {
	resolver, ok := a.provider.(extapi.InlayHintResolver)
	if !ok {
		return nil, nil
	}
	item, ok := a.cache.Get(id.Session(), id.Index())
	if !ok || item == nil {
		return nil, nil
	}
	hint, err := resolver.ResolveInlayHint(ctx, item)
	if err != nil || hint == nil {
		return nil, err
	}
	store := a.cache.Store(id.Session())
	if store == nil {
		return nil, nil
	}
	if hint.Label == "" && len(hint.LabelParts) == 0 {
		return nil, nil
	}
	out := a.convertHint(hint, id, store)
	return &out, nil
}

// RegisterInlayHintsProvider registers an inlay hints provider.
func (lf *LanguageFeatures) RegisterInlayHintsProvider(ext extapi.Extension, selector extapi.DocumentSelector, provider extapi.InlayHintsProvider) dispose.Disposable {
	a := &inlayHintsAdapter{env: lf.env, provider: provider, cache: NewCache[*extapi.InlayHint]()}
	_, resolves := provider.(extapi.InlayHintResolver)
	return lf.register(ext, selector, a, provider, protocol.Registration{
		DisplayName:     extensionLabel(ext),
		SupportsResolve: resolves,
	})
}

// ProvideInlayHints returns the hints inside rng, or nil. Hints without a
// label or outside rng are dropped.
func (lf *LanguageFeatures) ProvideInlayHints(ctx context.Context, handle int, uri protocol.DocumentURI, rng protocol.Range) (*protocol.InlayHintList, error) {
	return withAdapter(ctx, lf, handle, KindInlayHints, "provideInlayHints", (*protocol.InlayHintList)(nil),
		func(ctx context.Context, a *inlayHintsAdapter) (*protocol.InlayHintList, error) {
			return a.provide(ctx, uri, rng)
		})
}

// ResolveInlayHint fills in a cached hint, or returns nil.
func (lf *LanguageFeatures) ResolveInlayHint(ctx context.Context, handle int, id protocol.ChainedCacheID) (*protocol.InlayHint, error) {
	return withAdapter(ctx, lf, handle, KindInlayHints, "resolveInlayHint", (*protocol.InlayHint)(nil),
		func(ctx context.Context, a *inlayHintsAdapter) (*protocol.InlayHint, error) {
			return a.resolve(ctx, id)
		})
}

// ReleaseInlayHints drops a batch of hints.
func (lf *LanguageFeatures) ReleaseInlayHints(handle, cacheID int) {
	_, _ = withAdapter(context.Background(), lf, handle, KindInlayHints, "releaseInlayHints", struct{}{},
		func(_ context.Context, a *inlayHintsAdapter) (struct{}, error) {
			a.cache.Delete(cacheID)
			return struct{}{}, nil
		}, quiet())
}
