package bridge

import (
	"context"

	"github.com/dshills/langbridge/internal/convert"
	"github.com/dshills/langbridge/internal/dispose"
	"github.com/dshills/langbridge/internal/extapi"
	"github.com/dshills/langbridge/internal/protocol"
)

type codeActionAdapter struct {
	env       *env
	extension extapi.Extension
	provider  extapi.CodeActionProvider
	cache     *Cache[extapi.CodeActionOrCommand]
}

func (*codeActionAdapter) kind() Kind { return KindCodeAction }
func (a *codeActionAdapter) dispose() { a.cache.Clear() }

// diagnosticsFor returns the entries of all that touch rng, at most limit.
func diagnosticsFor(all []extapi.Diagnostic, rng extapi.Range, limit int) []extapi.Diagnostic {
	var out []extapi.Diagnostic
	for _, d := range all {
		if _, ok := rng.Intersection(d.Range); !ok {
			continue
		}
		out = append(out, d)
		if len(out) >= limit {
			break
		}
	}
	return out
}

func (a *codeActionAdapter) provide(ctx context.Context, uri protocol.DocumentURI, rng protocol.Range, cctx protocol.CodeActionContext) (*protocol.CodeActionList, error) {
	doc, err := a.env.document(uri)
	if err != nil {
		return nil, err
	}
	r := convert.ToRange(rng)

	nativeCtx := extapi.CodeActionContext{
		Diagnostics: diagnosticsFor(a.env.diagnostics.Diagnostics(doc.URI()), r, a.env.opts.maxCodeActionDiagnostics),
		Only:        extapi.CodeActionKind(cctx.Only),
		TriggerKind: extapi.CodeActionTriggerKind(cctx.Trigger),
	}

	items, err := a.provider.ProvideCodeActions(ctx, doc, r, nativeCtx)
	if err != nil || len(items) == 0 || ctx.Err() != nil {
		return nil, err
	}

	id := a.cache.Add(items)
	store := a.cache.Store(id)
	out := &protocol.CodeActionList{CacheID: id, Actions: make([]protocol.CodeAction, 0, len(items))}
	for i, item := range items {
		switch v := item.(type) {
		case *extapi.Command:
			if v == nil {
				continue
			}
			a.env.deprecation.report("CodeActionProvider.ProvideCodeActions - return commands", a.extension,
				"Return CodeAction values instead.")
			out.Actions = append(out.Actions, protocol.CodeAction{
				Title:       v.Title,
				Command:     a.env.commands.ToInternal(v, store),
				IsSynthetic: true,
			})
		case *extapi.CodeAction:
			if v == nil {
				continue
			}
			a.checkKind(nativeCtx.Only, v.Kind)
			cacheID := protocol.ChainedCacheID{id, i}
			out.Actions = append(out.Actions, protocol.CodeAction{
				CacheID:     &cacheID,
				Title:       v.Title,
				Command:     a.env.commands.ToInternal(v.Command, store),
				Diagnostics: convert.Diagnostics(v.Diagnostics),
				Edit:        convert.WorkspaceEdit(v.Edit),
				Kind:        string(v.Kind),
				IsPreferred: v.IsPreferred,
				Disabled:    v.Disabled,
			})
		}
	}
	return out, nil
}

// checkKind warns about actions that do not match the requested kind.
func (a *codeActionAdapter) checkKind(only, got extapi.CodeActionKind) {
	if only == extapi.CodeActionEmpty {
		return
	}
	switch {
	case got == extapi.CodeActionEmpty:
		a.env.log.Warn("[%s] code actions of kind %q requested but returned code action does not have a kind", a.extension, only)
	case !only.Contains(got):
		a.env.log.Warn("[%s] code actions of kind %q requested but returned code action is of kind %q", a.extension, only, got)
	}
}

func (a *codeActionAdapter) resolve(ctx context.Context, id protocol.ChainedCacheID) (*protocol.CodeActionResolution, error) {
	empty := &protocol.CodeActionResolution{}

	item, ok := a.cache.Get(id.Session(), id.Index())
	if !ok {
		return empty, nil
	}
	action, ok := item.(*extapi.CodeAction)
	if !ok || action == nil {
		return empty, nil
	}
	resolver, ok := a.provider.(extapi.CodeActionResolver)
	if !ok {
		return empty, nil
	}

	resolved, err := resolver.ResolveCodeAction(ctx, action)
	if err != nil {
		return nil, err
	}
	if resolved == nil {
		resolved = action
	}

	out := &protocol.CodeActionResolution{Edit: convert.WorkspaceEdit(resolved.Edit)}
	if resolved.Command != nil {
		if store := a.cache.Store(id.Session()); store != nil {
			out.Command = a.env.commands.ToInternal(resolved.Command, store)
		}
	}
	return out, nil
}

// CodeActionMetadata describes a code action provider at registration.
type CodeActionMetadata struct {
	ProvidedKinds []extapi.CodeActionKind
	DisplayName   string
}

// RegisterCodeActionProvider registers a code action provider.
func (lf *LanguageFeatures) RegisterCodeActionProvider(ext extapi.Extension, selector extapi.DocumentSelector, provider extapi.CodeActionProvider, meta CodeActionMetadata) dispose.Disposable {
	a := &codeActionAdapter{env: lf.env, extension: ext, provider: provider, cache: NewCache[extapi.CodeActionOrCommand]()}

	kinds := make([]string, len(meta.ProvidedKinds))
	for i, k := range meta.ProvidedKinds {
		kinds[i] = string(k)
	}
	_, resolves := provider.(extapi.CodeActionResolver)
	return lf.register(ext, selector, a, provider, protocol.Registration{
		DisplayName:             meta.DisplayName,
		SupportsResolve:         resolves,
		ProvidedCodeActionKinds: kinds,
	})
}

// ProvideCodeActions returns the actions for a range, or nil.
func (lf *LanguageFeatures) ProvideCodeActions(ctx context.Context, handle int, uri protocol.DocumentURI, rng protocol.Range, cctx protocol.CodeActionContext) (*protocol.CodeActionList, error) {
	return withAdapter(ctx, lf, handle, KindCodeAction, "provideCodeActions", (*protocol.CodeActionList)(nil),
		func(ctx context.Context, a *codeActionAdapter) (*protocol.CodeActionList, error) {
			return a.provide(ctx, uri, rng, cctx)
		})
}

// ResolveCodeAction fills in the edit and command of a cached action. It
// returns an empty resolution when there is nothing to resolve.
func (lf *LanguageFeatures) ResolveCodeAction(ctx context.Context, handle int, id protocol.ChainedCacheID) (*protocol.CodeActionResolution, error) {
	return withAdapter(ctx, lf, handle, KindCodeAction, "resolveCodeAction", &protocol.CodeActionResolution{},
		func(ctx context.Context, a *codeActionAdapter) (*protocol.CodeActionResolution, error) {
			return a.resolve(ctx, id)
		})
}

// ReleaseCodeActions drops a batch of actions and their delegated commands.
func (lf *LanguageFeatures) ReleaseCodeActions(handle, cacheID int) {
	_, _ = withAdapter(context.Background(), lf, handle, KindCodeAction, "releaseCodeActions", struct{}{},
		func(_ context.Context, a *codeActionAdapter) (struct{}, error) {
			a.cache.Delete(cacheID)
			return struct{}{}, nil
		}, quiet())
}
