package bridge

import (
	"context"

	"github.com/dshills/langbridge/internal/convert"
	"github.com/dshills/langbridge/internal/dispose"
	"github.com/dshills/langbridge/internal/extapi"
	"github.com/dshills/langbridge/internal/protocol"
)

// inlineList is what the adapter keeps for a list until the UI frees it.
type inlineList struct {
	items []*extapi.InlineCompletionItem
	list  *extapi.InlineCompletionList
	store *dispose.Store
}

type inlineCompletionAdapter struct {
	env      *env
	provider extapi.InlineCompletionItemProvider
	lists    *ReferenceMap[*inlineList]
}

func (*inlineCompletionAdapter) kind() Kind { return KindInlineCompletion }

func (a *inlineCompletionAdapter) dispose() {
	for _, l := range a.lists.Drain() {
		l.store.Dispose()
	}
}

func (a *inlineCompletionAdapter) provide(ctx context.Context, uri protocol.DocumentURI, pos protocol.Position, ictx protocol.InlineCompletionContext) (*protocol.InlineCompletionList, error) {
	doc, err := a.env.document(uri)
	if err != nil {
		return nil, err
	}
	list, err := a.provider.ProvideInlineCompletionItems(ctx, doc, convert.ToPosition(pos), convert.ToInlineCompletionContext(ictx))
	if err != nil || list == nil || ctx.Err() != nil {
		return nil, err
	}

	entry := &inlineList{items: list.Items, list: list, store: dispose.NewStore()}
	pid := a.lists.Create(entry)

	out := &protocol.InlineCompletionList{
		PID:                    pid,
		Items:                  make([]protocol.InlineCompletion, 0, len(list.Items)),
		EnableForwardStability: list.EnableForwardStability,
	}
	for i, item := range list.Items {
		if item == nil {
			continue
		}
		c := protocol.InlineCompletion{
			Idx:        i,
			InsertText: item.InsertText,
			FilterText: item.FilterText,
			Range:      convert.RangePtr(item.Range),
			Command:    a.env.commands.ToInternal(item.Command, entry.store),
		}
		if item.InsertSnippet != nil {
			c.InsertText = item.InsertSnippet.Value
			c.IsSnippet = true
		}
		out.Items = append(out.Items, c)
	}
	for _, cmd := range list.Commands {
		if c := a.env.commands.ToInternal(cmd, entry.store); c != nil {
			out.Commands = append(out.Commands, *c)
		}
	}
	return out, nil
}

func (a *inlineCompletionAdapter) item(pid, idx int) (*extapi.InlineCompletionItem, extapi.InlineCompletionEventHandler, bool) {
	handler, ok := a.provider.(extapi.InlineCompletionEventHandler)
	if !ok {
		return nil, nil, false
	}
	entry, ok := a.lists.Get(pid)
	if !ok || idx < 0 || idx >= len(entry.items) || entry.items[idx] == nil {
		return nil, nil, false
	}
	return entry.items[idx], handler, true
}

func (a *inlineCompletionAdapter) didShow(pid, idx int, updatedInsertText string) {
	if item, handler, ok := a.item(pid, idx); ok {
		handler.HandleDidShowCompletionItem(item, updatedInsertText)
	}
}

func (a *inlineCompletionAdapter) partialAccept(pid, idx int, info protocol.PartialAcceptInfo) {
	if item, handler, ok := a.item(pid, idx); ok {
		handler.HandleDidPartiallyAcceptCompletionItem(item, extapi.PartialAcceptInfo{
			Kind:           extapi.PartialAcceptKind(info.Kind),
			AcceptedLength: info.AcceptedLength,
		})
	}
}

func (a *inlineCompletionAdapter) free(pid int) {
	entry, ok := a.lists.Dispose(pid)
	if !ok {
		return
	}
	entry.store.Dispose()
	if disposer, ok := a.provider.(extapi.InlineCompletionListDisposer); ok {
		disposer.DisposeInlineCompletions(entry.list)
	}
}

// RegisterInlineCompletionItemProvider registers an inline completion provider.
func (lf *LanguageFeatures) RegisterInlineCompletionItemProvider(ext extapi.Extension, selector extapi.DocumentSelector, provider extapi.InlineCompletionItemProvider) dispose.Disposable {
	a := &inlineCompletionAdapter{env: lf.env, provider: provider, lists: NewReferenceMap[*inlineList]()}
	return lf.register(ext, selector, a, provider, protocol.Registration{DisplayName: extensionLabel(ext)})
}

// ProvideInlineCompletions returns inline completions, or nil. The list stays
// alive until FreeInlineCompletionsList is called with its pid.
func (lf *LanguageFeatures) ProvideInlineCompletions(ctx context.Context, handle int, uri protocol.DocumentURI, pos protocol.Position, ictx protocol.InlineCompletionContext) (*protocol.InlineCompletionList, error) {
	return withAdapter(ctx, lf, handle, KindInlineCompletion, "provideInlineCompletions", (*protocol.InlineCompletionList)(nil),
		func(ctx context.Context, a *inlineCompletionAdapter) (*protocol.InlineCompletionList, error) {
			return a.provide(ctx, uri, pos, ictx)
		})
}

// HandleInlineCompletionDidShow tells the provider an item was shown.
func (lf *LanguageFeatures) HandleInlineCompletionDidShow(handle, pid, idx int, updatedInsertText string) {
	_, _ = withAdapter(context.Background(), lf, handle, KindInlineCompletion, "handleInlineCompletionDidShow", struct{}{},
		func(_ context.Context, a *inlineCompletionAdapter) (struct{}, error) {
			a.didShow(pid, idx, updatedInsertText)
			return struct{}{}, nil
		}, quiet())
}

// HandleInlineCompletionPartialAccept tells the provider part of an item was accepted.
func (lf *LanguageFeatures) HandleInlineCompletionPartialAccept(handle, pid, idx int, info protocol.PartialAcceptInfo) {
	_, _ = withAdapter(context.Background(), lf, handle, KindInlineCompletion, "handleInlineCompletionPartialAccept", struct{}{},
		func(_ context.Context, a *inlineCompletionAdapter) (struct{}, error) {
			a.partialAccept(pid, idx, info)
			return struct{}{}, nil
		}, quiet())
}

// FreeInlineCompletionsList releases a list and its commands.
func (lf *LanguageFeatures) FreeInlineCompletionsList(handle, pid int) {
	_, _ = withAdapter(context.Background(), lf, handle, KindInlineCompletion, "freeInlineCompletionsList", struct{}{},
		func(_ context.Context, a *inlineCompletionAdapter) (struct{}, error) {
			a.free(pid)
			return struct{}{}, nil
		}, quiet())
}
