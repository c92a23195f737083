package bridge

import (
	"context"
	"fmt"

	"github.com/dshills/langbridge/internal/convert"
	"github.com/dshills/langbridge/internal/dispose"
	"github.com/dshills/langbridge/internal/extapi"
	"github.com/dshills/langbridge/internal/protocol"
)

func extensionLabel(ext extapi.Extension) string {
	if ext.DisplayName != "" {
		return ext.DisplayName
	}
	return ext.ID
}

func editProposal(id protocol.ChainedCacheID, title, kind, text string, snippet *extapi.SnippetString, additional *extapi.WorkspaceEdit, yieldTo []string) protocol.EditProposal {
	out := protocol.EditProposal{
		CacheID:        id,
		Title:          title,
		Kind:           kind,
		InsertText:     text,
		AdditionalEdit: convert.WorkspaceEdit(additional),
		YieldTo:        yieldTo,
	}
	if snippet != nil {
		out.InsertText = snippet.Value
		out.IsSnippet = true
	}
	return out
}

func insertTextOf(text string, snippet *extapi.SnippetString) *string {
	if snippet != nil {
		return &snippet.Value
	}
	return &text
}

// --- Paste ---

type pasteEditAdapter struct {
	env       *env
	extension extapi.Extension
	provider  extapi.DocumentPasteEditProvider
	cache     *Cache[*extapi.DocumentPasteEdit]
}

func (*pasteEditAdapter) kind() Kind { return KindDocumentPasteEdit }
func (a *pasteEditAdapter) dispose() { a.cache.Clear() }

func (a *pasteEditAdapter) provide(ctx context.Context, uri protocol.DocumentURI, ranges []protocol.Range, data protocol.DataTransfer, pctx protocol.PasteEditContext) ([]protocol.EditProposal, error) {
	doc, err := a.env.document(uri)
	if err != nil {
		return nil, err
	}
	edits, err := a.provider.ProvideDocumentPasteEdits(ctx, doc, convert.ToRanges(ranges), convert.ToDataTransfer(data),
		extapi.DocumentPasteEditContext{Only: pctx.Only, TriggerKind: extapi.DocumentPasteTriggerKind(pctx.TriggerKind)})
	if err != nil {
		return nil, err
	}
	if edits == nil || ctx.Err() != nil {
		return []protocol.EditProposal{}, nil
	}

	id := a.cache.Add(edits)
	out := make([]protocol.EditProposal, 0, len(edits))
	for i, e := range edits {
		if e == nil {
			continue
		}
		title := e.Title
		if title == "" {
			title = fmt.Sprintf("Paste using '%s' extension", extensionLabel(a.extension))
		}
		out = append(out, editProposal(protocol.ChainedCacheID{id, i}, title, e.Kind, e.InsertText, e.InsertSnippet, e.AdditionalEdit, e.YieldTo))
	}
	return out, nil
}

func (a *pasteEditAdapter) resolve(ctx context.Context, id protocol.ChainedCacheID) (*protocol.EditProposalResolution, error) {
	item, ok := a.cache.Get(id.Session(), id.Index())
	resolver, canResolve := a.provider.(extapi.DocumentPasteEditResolver)
	if !ok || item == nil || !canResolve {
		return &protocol.EditProposalResolution{}, nil
	}
	resolved, err := resolver.ResolveDocumentPasteEdit(ctx, item)
	if err != nil {
		return nil, err
	}
	if resolved == nil {
		resolved = item
	}
	return &protocol.EditProposalResolution{
		InsertText:     insertTextOf(resolved.InsertText, resolved.InsertSnippet),
		AdditionalEdit: convert.WorkspaceEdit(resolved.AdditionalEdit),
	}, nil
}

// RegisterDocumentPasteEditProvider registers a paste edit provider for the
// given mime types.
func (lf *LanguageFeatures) RegisterDocumentPasteEditProvider(ext extapi.Extension, selector extapi.DocumentSelector, provider extapi.DocumentPasteEditProvider, mimeTypes []string) dispose.Disposable {
	a := &pasteEditAdapter{env: lf.env, extension: ext, provider: provider, cache: NewCache[*extapi.DocumentPasteEdit]()}
	_, resolves := provider.(extapi.DocumentPasteEditResolver)
	return lf.register(ext, selector, a, provider, protocol.Registration{SupportsResolve: resolves, PasteMimeTypes: mimeTypes})
}

// ProvideDocumentPasteEdits returns paste edits, or nil.
func (lf *LanguageFeatures) ProvideDocumentPasteEdits(ctx context.Context, handle int, uri protocol.DocumentURI, ranges []protocol.Range, data protocol.DataTransfer, pctx protocol.PasteEditContext) ([]protocol.EditProposal, error) {
	return withAdapter(ctx, lf, handle, KindDocumentPasteEdit, "provideDocumentPasteEdits", []protocol.EditProposal(nil),
		func(ctx context.Context, a *pasteEditAdapter) ([]protocol.EditProposal, error) {
			return a.provide(ctx, uri, ranges, data, pctx)
		})
}

// ResolveDocumentPasteEdit fills in a cached paste edit.
func (lf *LanguageFeatures) ResolveDocumentPasteEdit(ctx context.Context, handle int, id protocol.ChainedCacheID) (*protocol.EditProposalResolution, error) {
	return withAdapter(ctx, lf, handle, KindDocumentPasteEdit, "resolveDocumentPasteEdit", &protocol.EditProposalResolution{},
		func(ctx context.Context, a *pasteEditAdapter) (*protocol.EditProposalResolution, error) {
			return a.resolve(ctx, id)
		})
}

// ReleaseDocumentPasteEdits drops a batch of paste edits.
func (lf *LanguageFeatures) ReleaseDocumentPasteEdits(handle, cacheID int) {
	_, _ = withAdapter(context.Background(), lf, handle, KindDocumentPasteEdit, "releaseDocumentPasteEdits", struct{}{},
		func(_ context.Context, a *pasteEditAdapter) (struct{}, error) {
			a.cache.Delete(cacheID)
			return struct{}{}, nil
		}, quiet())
}

// --- Drop ---

type dropEditAdapter struct {
	env       *env
	extension extapi.Extension
	provider  extapi.DocumentDropEditProvider
	cache     *Cache[*extapi.DocumentDropEdit]
}

func (*dropEditAdapter) kind() Kind { return KindDocumentDropEdit }
func (a *dropEditAdapter) dispose() { a.cache.Clear() }

func (a *dropEditAdapter) provide(ctx context.Context, uri protocol.DocumentURI, pos protocol.Position, data protocol.DataTransfer) ([]protocol.EditProposal, error) {
	doc, err := a.env.document(uri)
	if err != nil {
		return nil, err
	}
	edits, err := a.provider.ProvideDocumentDropEdits(ctx, doc, convert.ToPosition(pos), convert.ToDataTransfer(data))
	if err != nil || edits == nil || ctx.Err() != nil {
		return nil, err
	}

	id := a.cache.Add(edits)
	out := make([]protocol.EditProposal, 0, len(edits))
	for i, e := range edits {
		if e == nil {
			continue
		}
		title := e.Title
		if title == "" {
			title = fmt.Sprintf("Drop using '%s' extension", extensionLabel(a.extension))
		}
		out = append(out, editProposal(protocol.ChainedCacheID{id, i}, title, e.Kind, e.InsertText, e.InsertSnippet, e.AdditionalEdit, e.YieldTo))
	}
	return out, nil
}

func (a *dropEditAdapter) resolve(ctx context.Context, id protocol.ChainedCacheID) (*protocol.EditProposalResolution, error) {
	item, ok := a.cache.Get(id.Session(), id.Index())
	resolver, canResolve := a.provider.(extapi.DocumentDropEditResolver)
	if !ok || item == nil || !canResolve {
		return &protocol.EditProposalResolution{}, nil
	}
	resolved, err := resolver.ResolveDocumentDropEdit(ctx, item)
	if err != nil {
		return nil, err
	}
	if resolved == nil {
		resolved = item
	}
	return &protocol.EditProposalResolution{
		InsertText:     insertTextOf(resolved.InsertText, resolved.InsertSnippet),
		AdditionalEdit: convert.WorkspaceEdit(resolved.AdditionalEdit),
	}, nil
}

// RegisterDocumentDropEditProvider registers a drop edit provider for the
// given mime types.
func (lf *LanguageFeatures) RegisterDocumentDropEditProvider(ext extapi.Extension, selector extapi.DocumentSelector, provider extapi.DocumentDropEditProvider, mimeTypes []string) dispose.Disposable {
	a := &dropEditAdapter{env: lf.env, extension: ext, provider: provider, cache: NewCache[*extapi.DocumentDropEdit]()}
	_, resolves := provider.(extapi.DocumentDropEditResolver)
	return lf.register(ext, selector, a, provider, protocol.Registration{SupportsResolve: resolves, DropMimeTypes: mimeTypes})
}

// ProvideDocumentDropEdits returns drop edits, or nil.
func (lf *LanguageFeatures) ProvideDocumentDropEdits(ctx context.Context, handle int, uri protocol.DocumentURI, pos protocol.Position, data protocol.DataTransfer) ([]protocol.EditProposal, error) {
	return withAdapter(ctx, lf, handle, KindDocumentDropEdit, "provideDocumentDropEdits", []protocol.EditProposal(nil),
		func(ctx context.Context, a *dropEditAdapter) ([]protocol.EditProposal, error) {
			return a.provide(ctx, uri, pos, data)
		})
}

// ResolveDocumentDropEdit fills in a cached drop edit.
func (lf *LanguageFeatures) ResolveDocumentDropEdit(ctx context.Context, handle int, id protocol.ChainedCacheID) (*protocol.EditProposalResolution, error) {
	return withAdapter(ctx, lf, handle, KindDocumentDropEdit, "resolveDocumentDropEdit", &protocol.EditProposalResolution{},
		func(ctx context.Context, a *dropEditAdapter) (*protocol.EditProposalResolution, error) {
			return a.resolve(ctx, id)
		})
}

// ReleaseDocumentDropEdits drops a batch of drop edits.
func (lf *LanguageFeatures) ReleaseDocumentDropEdits(handle, cacheID int) {
	_, _ = withAdapter(context.Background(), lf, handle, KindDocumentDropEdit, "releaseDocumentDropEdits", struct{}{},
		func(_ context.Context, a *dropEditAdapter) (struct{}, error) {
			a.cache.Delete(cacheID)
			return struct{}{}, nil
		}, quiet())
}
