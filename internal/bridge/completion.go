package bridge

import (
	"context"
	"time"

	"github.com/dshills/langbridge/internal/convert"
	"github.com/dshills/langbridge/internal/dispose"
	"github.com/dshills/langbridge/internal/extapi"
	"github.com/dshills/langbridge/internal/protocol"
)

type completionAdapter struct {
	env       *env
	extension extapi.Extension
	provider  extapi.CompletionItemProvider
	cache     *Cache[*extapi.CompletionItem]
}

func (*completionAdapter) kind() Kind { return KindCompletion }
func (a *completionAdapter) dispose() { a.cache.Clear() }

func (a *completionAdapter) provide(ctx context.Context, uri protocol.DocumentURI, pos protocol.Position, cctx protocol.CompletionContext) (*protocol.CompletionResult, error) {
	doc, err := a.env.document(uri)
	if err != nil {
		return nil, err
	}
	p := convert.ToPosition(pos)

	// Default ranges are computed before the provider runs.
	replace, ok := doc.WordRangeAtPosition(p, nil)
	if !ok {
		replace = extapi.RangeFrom(p, p)
	}
	insert := replace.WithEnd(p)

	start := time.Now()
	list, err := a.provider.ProvideCompletionItems(ctx, doc, p, convert.ToCompletionContext(cctx))
	if err != nil || list == nil || ctx.Err() != nil {
		return nil, err
	}
	took := time.Since(start)

	var id int
	if _, resolves := a.provider.(extapi.CompletionItemResolver); resolves {
		id = a.cache.Add(list.Items)
	} else {
		id = a.cache.Add(nil)
	}
	store := a.cache.Store(id)

	defaults := protocol.InsertReplaceRange{Insert: convert.Range(insert), Replace: convert.Range(replace)}
	out := &protocol.CompletionResult{
		CacheID:       id,
		DefaultRanges: defaults,
		Items:         make([]protocol.CompletionItem, 0, len(list.Items)),
		IsIncomplete:  list.IsIncomplete,
		Duration:      took.Milliseconds(),
	}
	for i, item := range list.Items {
		if item == nil {
			continue
		}
		out.Items = append(out.Items, a.convertItem(item, protocol.ChainedCacheID{id, i}, defaults, store))
	}
	return out, nil
}

func (a *completionAdapter) convertItem(item *extapi.CompletionItem, id protocol.ChainedCacheID, defaults protocol.InsertReplaceRange, store *dispose.Store) protocol.CompletionItem {
	out := protocol.CompletionItem{
		CacheID:             id,
		Label:               item.Label,
		Kind:                int(item.Kind),
		Detail:              item.Detail,
		Documentation:       convert.MarkdownPtr(item.Documentation),
		SortText:            item.SortText,
		FilterText:          item.FilterText,
		Preselect:           item.Preselect,
		CommitCharacters:    item.CommitCharacters,
		AdditionalTextEdits: convert.TextEdits(item.AdditionalTextEdits),
		Command:             a.env.commands.ToInternal(item.Command, store),
	}
	if item.LabelDetails != nil {
		out.LabelDetails = &protocol.CompletionItemLabel{Detail: item.LabelDetails.Detail, Description: item.LabelDetails.Description}
	}
	for _, t := range item.Tags {
		out.Tags = append(out.Tags, int(t))
	}

	rng := item.Range
	switch {
	case item.TextEdit != nil:
		a.env.deprecation.report("CompletionItem.TextEdit", a.extension, "Use CompletionItem.InsertText and CompletionItem.Range instead.")
		out.InsertText = item.TextEdit.NewText
		rng = &item.TextEdit.Range
	case item.InsertSnippet != nil:
		out.InsertText = item.InsertSnippet.Value
		out.InsertTextRules |= protocol.InsertAsSnippet
	default:
		out.InsertText = item.InsertText
	}
	if item.KeepWhitespace {
		out.InsertTextRules |= protocol.KeepWhitespaceRule
	}

	if rng != nil {
		out.Range = convert.RangePtr(rng)
	} else if item.InsertReplace != nil {
		ir := protocol.InsertReplaceRange{
			Insert:  convert.Range(item.InsertReplace.Inserting),
			Replace: convert.Range(item.InsertReplace.Replacing),
		}
		if ir != defaults {
			out.InsertReplace = &ir
		}
	}
	return out
}

func (a *completionAdapter) resolve(ctx context.Context, id protocol.ChainedCacheID) (*protocol.CompletionItem, error) {
	resolver, ok := a.provider.(extapi.CompletionItemResolver)
	if !ok {
		return nil, nil
	}
	item, ok := a.cache.Get(id.Session(), id.Index())
	if !ok || item == nil {
		return nil, nil
	}

	store := a.cache.Store(id.Session())
	if store == nil {
		return nil, nil
	}

	before := a.convertItem(item, id, protocol.InsertReplaceRange{}, store)
	resolved, err := resolver.ResolveCompletionItem(ctx, item)
	if err != nil {
		return nil, err
	}
	if resolved == nil {
		resolved = item
	}
	after := a.convertItem(resolved, id, protocol.InsertReplaceRange{}, store)

	if before.InsertText != after.InsertText || before.InsertTextRules != after.InsertTextRules || !sameRange(before.Range, after.Range) {
		a.env.deprecation.report("CompletionItem.resolve - changing insert text or range", a.extension,
			"Only documentation, detail, additional edits and command may change on resolve.")
	}

	before.Documentation = after.Documentation
	before.Detail = after.Detail
	before.AdditionalTextEdits = after.AdditionalTextEdits
	before.Command = after.Command
	return &before, nil
}

func sameRange(a, b *protocol.Range) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// RegisterCompletionItemProvider registers a completion provider that is
// triggered by the given characters as well as on request.
func (lf *LanguageFeatures) RegisterCompletionItemProvider(ext extapi.Extension, selector extapi.DocumentSelector, provider extapi.CompletionItemProvider, triggerCharacters []string) dispose.Disposable {
	a := &completionAdapter{env: lf.env, extension: ext, provider: provider, cache: NewCache[*extapi.CompletionItem]()}
	_, resolves := provider.(extapi.CompletionItemResolver)
	return lf.register(ext, selector, a, provider, protocol.Registration{
		DisplayName:       extensionLabel(ext),
		TriggerCharacters: triggerCharacters,
		SupportsResolve:   resolves,
	})
}

// ProvideCompletionItems returns completions, or nil.
func (lf *LanguageFeatures) ProvideCompletionItems(ctx context.Context, handle int, uri protocol.DocumentURI, pos protocol.Position, cctx protocol.CompletionContext) (*protocol.CompletionResult, error) {
	return withAdapter(ctx, lf, handle, KindCompletion, "provideCompletionItems", (*protocol.CompletionResult)(nil),
		func(ctx context.Context, a *completionAdapter) (*protocol.CompletionResult, error) {
			return a.provide(ctx, uri, pos, cctx)
		})
}

// ResolveCompletionItem fills in documentation, detail, additional edits and
// command of a cached item. Everything else keeps its original value.
func (lf *LanguageFeatures) ResolveCompletionItem(ctx context.Context, handle int, id protocol.ChainedCacheID) (*protocol.CompletionItem, error) {
	return withAdapter(ctx, lf, handle, KindCompletion, "resolveCompletionItem", (*protocol.CompletionItem)(nil),
		func(ctx context.Context, a *completionAdapter) (*protocol.CompletionItem, error) {
			return a.resolve(ctx, id)
		})
}

// ReleaseCompletionItems drops a batch of completions.
func (lf *LanguageFeatures) ReleaseCompletionItems(handle, cacheID int) {
	_, _ = withAdapter(context.Background(), lf, handle, KindCompletion, "releaseCompletionItems", struct{}{},
		func(_ context.Context, a *completionAdapter) (struct{}, error) {
			a.cache.Delete(cacheID)
			return struct{}{}, nil
		}, quiet())
}
