package bridge

import (
	"context"
	"errors"

	"github.com/dshills/langbridge/internal/convert"
	"github.com/dshills/langbridge/internal/dispose"
	"github.com/dshills/langbridge/internal/extapi"
	"github.com/dshills/langbridge/internal/protocol"
)

// --- Workspace symbols ---

type workspaceSymbolAdapter struct {
	env      *env
	provider extapi.WorkspaceSymbolProvider
	cache    *Cache[*extapi.SymbolInformation]
}

func (*workspaceSymbolAdapter) kind() Kind { return KindWorkspaceSymbol }
func (a *workspaceSymbolAdapter) dispose() { a.cache.Clear() }

func (a *workspaceSymbolAdapter) provide(ctx context.Context, query string) (*protocol.WorkspaceSymbols, error) {
	value, err := a.provider.ProvideWorkspaceSymbols(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(value) == 0 || ctx.Err() != nil {
		return &protocol.WorkspaceSymbols{Symbols: []protocol.WorkspaceSymbol{}}, nil
	}

	id := a.cache.Add(value)
	out := &protocol.WorkspaceSymbols{CacheID: &id, Symbols: make([]protocol.WorkspaceSymbol, 0, len(value))}
	for i, item := range value {
		if item == nil || item.Name == "" {
			a.env.log.Warn("INVALID SymbolInformation at index %d of %q", i, query)
			continue
		}
		sym := convert.WorkspaceSymbol(item)
		sym.CacheID = &protocol.ChainedCacheID{id, i}
		out.Symbols = append(out.Symbols, sym)
	}
	return out, nil
}

func (a *workspaceSymbolAdapter) resolve(ctx context.Context, symbol protocol.WorkspaceSymbol) (*protocol.WorkspaceSymbol, error) {
	resolver, ok := a.provider.(extapi.WorkspaceSymbolResolver)
	if !ok || symbol.CacheID == nil {
		return &symbol, nil
	}
	item, ok := a.cache.Get(symbol.CacheID.Session(), symbol.CacheID.Index())
	if !ok || item == nil {
		return nil, nil
	}
	value, err := resolver.ResolveWorkspaceSymbol(ctx, item)
	if err != nil || value == nil {
		return nil, err
	}
	out := convert.WorkspaceSymbol(value)
	out.CacheID = symbol.CacheID
	return &out, nil
}

// RegisterWorkspaceSymbolProvider registers a workspace symbol search.
func (lf *LanguageFeatures) RegisterWorkspaceSymbolProvider(ext extapi.Extension, provider extapi.WorkspaceSymbolProvider) dispose.Disposable {
	a := &workspaceSymbolAdapter{env: lf.env, provider: provider, cache: NewCache[*extapi.SymbolInformation]()}
	_, resolves := provider.(extapi.WorkspaceSymbolResolver)
	return lf.register(ext, nil, a, provider, protocol.Registration{SupportsResolve: resolves})
}

// ProvideWorkspaceSymbols searches symbols. The result is never nil; no
// match yields an empty symbol list.
func (lf *LanguageFeatures) ProvideWorkspaceSymbols(ctx context.Context, handle int, query string) (*protocol.WorkspaceSymbols, error) {
	return withAdapter(ctx, lf, handle, KindWorkspaceSymbol, "provideWorkspaceSymbols",
		&protocol.WorkspaceSymbols{Symbols: []protocol.WorkspaceSymbol{}},
		func(ctx context.Context, a *workspaceSymbolAdapter) (*protocol.WorkspaceSymbols, error) {
			return a.provide(ctx, query)
		})
}

// ResolveWorkspaceSymbol fills in a symbol found earlier, or returns nil.
func (lf *LanguageFeatures) ResolveWorkspaceSymbol(ctx context.Context, handle int, symbol protocol.WorkspaceSymbol) (*protocol.WorkspaceSymbol, error) {
	return withAdapter(ctx, lf, handle, KindWorkspaceSymbol, "resolveWorkspaceSymbol", (*protocol.WorkspaceSymbol)(nil),
		func(ctx context.Context, a *workspaceSymbolAdapter) (*protocol.WorkspaceSymbol, error) {
			return a.resolve(ctx, symbol)
		})
}

// ReleaseWorkspaceSymbols drops a batch of symbols.
func (lf *LanguageFeatures) ReleaseWorkspaceSymbols(handle, cacheID int) {
	_, _ = withAdapter(context.Background(), lf, handle, KindWorkspaceSymbol, "releaseWorkspaceSymbols", struct{}{},
		func(_ context.Context, a *workspaceSymbolAdapter) (struct{}, error) {
			a.cache.Delete(cacheID)
			return struct{}{}, nil
		}, quiet())
}

// --- Rename ---

const invalidRenameLocation = "INVALID rename location: position line must be within range start/end lines"

type renameAdapter struct {
	stateless
	env      *env
	provider extapi.RenameProvider
}

func (*renameAdapter) kind() Kind { return KindRename }

func (a *renameAdapter) provide(ctx context.Context, uri protocol.DocumentURI, pos protocol.Position, newName string) (*protocol.RenameEdits, error) {
	doc, err := a.env.document(uri)
	if err != nil {
		return nil, err
	}
	value, err := a.provider.ProvideRenameEdits(ctx, doc, convert.ToPosition(pos), newName)
	if err != nil {
		if reason, ok := rejection(err); ok {
			return &protocol.RenameEdits{RejectReason: reason}, nil
		}
		return nil, err
	}
	if value == nil {
		return nil, nil
	}
	return &protocol.RenameEdits{Edits: convert.WorkspaceTextEdits(value)}, nil
}

// rejection reports whether err is a rename refusal rather than a failure.
func rejection(err error) (string, bool) {
	var rej *extapi.RenameRejection
	if errors.As(err, &rej) {
		return rej.Reason, true
	}
	return "", false
}

func (a *renameAdapter) resolveLocation(ctx context.Context, uri protocol.DocumentURI, pos protocol.Position) (*protocol.RenameLocation, error) {
	preparer, ok := a.provider.(extapi.RenamePreparer)
	if !ok {
		return nil, nil
	}
	doc, err := a.env.document(uri)
	if err != nil {
		return nil, err
	}
	p := convert.ToPosition(pos)

	loc, err := preparer.PrepareRename(ctx, doc, p)
	if err != nil {
		if reason, ok := rejection(err); ok {
			return &protocol.RenameLocation{RejectReason: reason}, nil
		}
		return nil, err
	}
	if loc == nil {
		return nil, nil
	}

	text := loc.Placeholder
	if text == "" {
		text = doc.GetText(loc.Range)
	}
	if text == "" {
		return nil, nil
	}
	if loc.Range.Start.Line > p.Line || loc.Range.End.Line < p.Line {
		a.env.log.Warn(invalidRenameLocation)
		return nil, nil
	}
	rng := convert.Range(loc.Range)
	return &protocol.RenameLocation{Range: &rng, Text: text}, nil
}

// RegisterRenameProvider registers a rename provider.
func (lf *LanguageFeatures) RegisterRenameProvider(ext extapi.Extension, selector extapi.DocumentSelector, provider extapi.RenameProvider) dispose.Disposable {
	a := &renameAdapter{env: lf.env, provider: provider}
	_, prepares := provider.(extapi.RenamePreparer)
	return lf.register(ext, selector, a, provider, protocol.Registration{SupportsResolve: prepares})
}

// ProvideRenameEdits computes rename edits. An extapi.RenameRejection
// becomes a reject reason; other provider errors yield nil.
func (lf *LanguageFeatures) ProvideRenameEdits(ctx context.Context, handle int, uri protocol.DocumentURI, pos protocol.Position, newName string) (*protocol.RenameEdits, error) {
	return withAdapter(ctx, lf, handle, KindRename, "provideRenameEdits", (*protocol.RenameEdits)(nil),
		func(ctx context.Context, a *renameAdapter) (*protocol.RenameEdits, error) {
			return a.provide(ctx, uri, pos, newName)
		})
}

// ResolveRenameLocation validates where a rename would apply. Locations whose
// range does not span the line of pos are dropped.
func (lf *LanguageFeatures) ResolveRenameLocation(ctx context.Context, handle int, uri protocol.DocumentURI, pos protocol.Position) (*protocol.RenameLocation, error) {
	return withAdapter(ctx, lf, handle, KindRename, "resolveRenameLocation", (*protocol.RenameLocation)(nil),
		func(ctx context.Context, a *renameAdapter) (*protocol.RenameLocation, error) {
			return a.resolveLocation(ctx, uri, pos)
		})
}

// --- New symbol names ---

type newSymbolNamesAdapter struct {
	stateless
	env      *env
	provider extapi.NewSymbolNamesProvider
}

func (*newSymbolNamesAdapter) kind() Kind { return KindNewSymbolNames }

func (a *newSymbolNamesAdapter) provide(ctx context.Context, uri protocol.DocumentURI, rng protocol.Range, trigger int) ([]protocol.NewSymbolName, error) {
	doc, err := a.env.document(uri)
	if err != nil {
		return nil, err
	}
	value, err := a.provider.ProvideNewSymbolNames(ctx, doc, convert.ToRange(rng), extapi.NewSymbolNameTriggerKind(trigger))
	if err != nil || value == nil {
		return nil, err
	}
	out := make([]protocol.NewSymbolName, len(value))
	for i, n := range value {
		out[i] = protocol.NewSymbolName{NewSymbolName: n.NewSymbolName, Tags: n.Tags}
	}
	return out, nil
}

// RegisterNewSymbolNamesProvider registers a name suggestion provider.
func (lf *LanguageFeatures) RegisterNewSymbolNamesProvider(ext extapi.Extension, selector extapi.DocumentSelector, provider extapi.NewSymbolNamesProvider) dispose.Disposable {
	a := &newSymbolNamesAdapter{env: lf.env, provider: provider}
	return lf.register(ext, selector, a, provider, protocol.Registration{})
}

// ProvideNewSymbolNames suggests names for the symbol at rng, or nil.
func (lf *LanguageFeatures) ProvideNewSymbolNames(ctx context.Context, handle int, uri protocol.DocumentURI, rng protocol.Range, trigger int) ([]protocol.NewSymbolName, error) {
	return withAdapter(ctx, lf, handle, KindNewSymbolNames, "provideNewSymbolNames", []protocol.NewSymbolName(nil),
		func(ctx context.Context, a *newSymbolNamesAdapter) ([]protocol.NewSymbolName, error) {
			return a.provide(ctx, uri, rng, trigger)
		})
}
