package bridge

import (
	"context"

	"github.com/dshills/langbridge/internal/convert"
	"github.com/dshills/langbridge/internal/dispose"
	"github.com/dshills/langbridge/internal/extapi"
	"github.com/dshills/langbridge/internal/protocol"
)

// badLensCommand stands in for a lens that stayed unresolved.
var badLensCommand = &extapi.Command{Command: "missing", Title: "!!MISSING: command!!"}

type codeLensAdapter struct {
	env      *env
	provider extapi.CodeLensProvider
	cache    *Cache[*extapi.CodeLens]
}

func (*codeLensAdapter) kind() Kind { return KindCodeLens }
func (a *codeLensAdapter) dispose() { a.cache.Clear() }

func (a *codeLensAdapter) provide(ctx context.Context, uri protocol.DocumentURI) (*protocol.CodeLensList, error) {
	doc, err := a.env.document(uri)
	if err != nil {
		return nil, err
	}
	lenses, err := a.provider.ProvideCodeLenses(ctx, doc)
	if err != nil || lenses == nil || ctx.Err() != nil {
		return nil, err
	}

	id := a.cache.Add(lenses)
	store := a.cache.Store(id)
	out := &protocol.CodeLensList{CacheID: id, Lenses: make([]protocol.CodeLens, 0, len(lenses))}
	for i, lens := range lenses {
		if lens == nil {
			continue
		}
		out.Lenses = append(out.Lenses, protocol.CodeLens{
			CacheID: protocol.ChainedCacheID{id, i},
			Range:   convert.Range(lens.Range),
			Command: a.env.commands.ToInternal(lens.Command, store),
		})
	}
	return out, nil
}

func (a *codeLensAdapter) resolve(ctx context.Context, id protocol.ChainedCacheID) (*protocol.CodeLens, error) {
	lens, ok := a.cache.Get(id.Session(), id.Index())
	if !ok || lens == nil {
		return nil, nil
	}

	resolved := lens
	if r, ok := a.provider.(extapi.CodeLensResolver); ok && !lens.IsResolved() {
		value, err := r.ResolveCodeLens(ctx, lens)
		if err != nil {
			return nil, err
		}
		if value != nil {
			resolved = value
		}
	}
	if ctx.Err() != nil {
		return nil, nil
	}

	store := a.cache.Store(id.Session())
	if store == nil {
		// released while resolving
		return nil, nil
	}
	cmd := resolved.Command
	if cmd == nil {
		cmd = badLensCommand
	}
	return &protocol.CodeLens{
		CacheID: id,
		Range:   convert.Range(resolved.Range),
		Command: a.env.commands.ToInternal(cmd, store),
	}, nil
}

// RegisterCodeLensProvider registers a code lens provider.
func (lf *LanguageFeatures) RegisterCodeLensProvider(ext extapi.Extension, selector extapi.DocumentSelector, provider extapi.CodeLensProvider) dispose.Disposable {
	a := &codeLensAdapter{env: lf.env, provider: provider, cache: NewCache[*extapi.CodeLens]()}
	_, resolves := provider.(extapi.CodeLensResolver)
	return lf.register(ext, selector, a, provider, protocol.Registration{SupportsResolve: resolves})
}

// ProvideCodeLenses returns the lenses of a document, or nil.
func (lf *LanguageFeatures) ProvideCodeLenses(ctx context.Context, handle int, uri protocol.DocumentURI) (*protocol.CodeLensList, error) {
	return withAdapter(ctx, lf, handle, KindCodeLens, "provideCodeLenses", (*protocol.CodeLensList)(nil),
		func(ctx context.Context, a *codeLensAdapter) (*protocol.CodeLensList, error) {
			return a.provide(ctx, uri)
		})
}

// ResolveCodeLens fills in the command of a cached lens, or returns nil.
func (lf *LanguageFeatures) ResolveCodeLens(ctx context.Context, handle int, id protocol.ChainedCacheID) (*protocol.CodeLens, error) {
	return withAdapter(ctx, lf, handle, KindCodeLens, "resolveCodeLens", (*protocol.CodeLens)(nil),
		func(ctx context.Context, a *codeLensAdapter) (*protocol.CodeLens, error) {
			return a.resolve(ctx, id)
		})
}

// ReleaseCodeLenses drops a batch of lenses.
func (lf *LanguageFeatures) ReleaseCodeLenses(handle, cacheID int) {
	_, _ = withAdapter(context.Background(), lf, handle, KindCodeLens, "releaseCodeLenses", struct{}{},
		func(_ context.Context, a *codeLensAdapter) (struct{}, error) {
			a.cache.Delete(cacheID)
			return struct{}{}, nil
		}, quiet())
}
