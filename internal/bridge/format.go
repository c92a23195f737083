package bridge

import (
	"context"

	"github.com/dshills/langbridge/internal/convert"
	"github.com/dshills/langbridge/internal/dispose"
	"github.com/dshills/langbridge/internal/extapi"
	"github.com/dshills/langbridge/internal/protocol"
)

func textEditsOrNil(edits []extapi.TextEdit, err error) ([]protocol.TextEdit, error) {
	if err != nil || edits == nil {
		return nil, err
	}
	return convert.TextEdits(edits), nil
}

type documentFormattingAdapter struct {
	stateless
	env      *env
	provider extapi.DocumentFormattingEditProvider
}

func (*documentFormattingAdapter) kind() Kind { return KindDocumentFormatting }

func (a *documentFormattingAdapter) provide(ctx context.Context, uri protocol.DocumentURI, opts protocol.FormattingOptions) ([]protocol.TextEdit, error) {
	doc, err := a.env.document(uri)
	if err != nil {
		return nil, err
	}
	return textEditsOrNil(a.provider.ProvideDocumentFormattingEdits(ctx, doc, convert.ToFormattingOptions(opts)))
}

type rangeFormattingAdapter struct {
	stateless
	env      *env
	provider extapi.DocumentRangeFormattingEditProvider
}

func (*rangeFormattingAdapter) kind() Kind { return KindRangeFormatting }

func (a *rangeFormattingAdapter) provide(ctx context.Context, uri protocol.DocumentURI, rng protocol.Range, opts protocol.FormattingOptions) ([]protocol.TextEdit, error) {
	doc, err := a.env.document(uri)
	if err != nil {
		return nil, err
	}
	return textEditsOrNil(a.provider.ProvideDocumentRangeFormattingEdits(ctx, doc, convert.ToRange(rng), convert.ToFormattingOptions(opts)))
}

func (a *rangeFormattingAdapter) provideRanges(ctx context.Context, uri protocol.DocumentURI, ranges []protocol.Range, opts protocol.FormattingOptions) ([]protocol.TextEdit, error) {
	multi, ok := a.provider.(extapi.DocumentRangesFormattingEditProvider)
	if !ok {
		return nil, usageErrorf("provideDocumentRangesFormattingEdits", "provider cannot format multiple ranges")
	}
	doc, err := a.env.document(uri)
	if err != nil {
		return nil, err
	}
	return textEditsOrNil(multi.ProvideDocumentRangesFormattingEdits(ctx, doc, convert.ToRanges(ranges), convert.ToFormattingOptions(opts)))
}

type onTypeFormattingAdapter struct {
	stateless
	env      *env
	provider extapi.OnTypeFormattingEditProvider
}

func (*onTypeFormattingAdapter) kind() Kind { return KindOnTypeFormatting }

func (a *onTypeFormattingAdapter) provide(ctx context.Context, uri protocol.DocumentURI, pos protocol.Position, ch string, opts protocol.FormattingOptions) ([]protocol.TextEdit, error) {
	doc, err := a.env.document(uri)
	if err != nil {
		return nil, err
	}
	return textEditsOrNil(a.provider.ProvideOnTypeFormattingEdits(ctx, doc, convert.ToPosition(pos), ch, convert.ToFormattingOptions(opts)))
}

// RegisterDocumentFormattingEditProvider registers a whole-document formatter.
func (lf *LanguageFeatures) RegisterDocumentFormattingEditProvider(ext extapi.Extension, selector extapi.DocumentSelector, provider extapi.DocumentFormattingEditProvider) dispose.Disposable {
	a := &documentFormattingAdapter{env: lf.env, provider: provider}
	return lf.register(ext, selector, a, provider, protocol.Registration{DisplayName: extensionLabel(ext)})
}

// RegisterDocumentRangeFormattingEditProvider registers a range formatter.
// Providers that also implement extapi.DocumentRangesFormattingEditProvider
// are announced as able to format several ranges at once.
func (lf *LanguageFeatures) RegisterDocumentRangeFormattingEditProvider(ext extapi.Extension, selector extapi.DocumentSelector, provider extapi.DocumentRangeFormattingEditProvider) dispose.Disposable {
	a := &rangeFormattingAdapter{env: lf.env, provider: provider}
	_, multi := provider.(extapi.DocumentRangesFormattingEditProvider)
	return lf.register(ext, selector, a, provider, protocol.Registration{DisplayName: extensionLabel(ext), SupportsRanges: multi})
}

// RegisterOnTypeFormattingEditProvider registers a formatter that runs after
// one of triggerCharacters is typed.
func (lf *LanguageFeatures) RegisterOnTypeFormattingEditProvider(ext extapi.Extension, selector extapi.DocumentSelector, provider extapi.OnTypeFormattingEditProvider, triggerCharacters []string) dispose.Disposable {
	a := &onTypeFormattingAdapter{env: lf.env, provider: provider}
	return lf.register(ext, selector, a, provider, protocol.Registration{TriggerCharacters: triggerCharacters})
}

// ProvideDocumentFormattingEdits formats a document. It returns nil when the
// provider has nothing to say.
func (lf *LanguageFeatures) ProvideDocumentFormattingEdits(ctx context.Context, handle int, uri protocol.DocumentURI, opts protocol.FormattingOptions) ([]protocol.TextEdit, error) {
	return withAdapter(ctx, lf, handle, KindDocumentFormatting, "provideDocumentFormattingEdits", []protocol.TextEdit(nil),
		func(ctx context.Context, a *documentFormattingAdapter) ([]protocol.TextEdit, error) {
			return a.provide(ctx, uri, opts)
		})
}

// ProvideDocumentRangeFormattingEdits formats a range.
func (lf *LanguageFeatures) ProvideDocumentRangeFormattingEdits(ctx context.Context, handle int, uri protocol.DocumentURI, rng protocol.Range, opts protocol.FormattingOptions) ([]protocol.TextEdit, error) {
	return withAdapter(ctx, lf, handle, KindRangeFormatting, "provideDocumentRangeFormattingEdits", []protocol.TextEdit(nil),
		func(ctx context.Context, a *rangeFormattingAdapter) ([]protocol.TextEdit, error) {
			return a.provide(ctx, uri, rng, opts)
		})
}

// ProvideDocumentRangesFormattingEdits formats several ranges. Calling it for
// a provider that was not announced with SupportsRanges is a *UsageError.
func (lf *LanguageFeatures) ProvideDocumentRangesFormattingEdits(ctx context.Context, handle int, uri protocol.DocumentURI, ranges []protocol.Range, opts protocol.FormattingOptions) ([]protocol.TextEdit, error) {
	return withAdapter(ctx, lf, handle, KindRangeFormatting, "provideDocumentRangesFormattingEdits", []protocol.TextEdit(nil),
		func(ctx context.Context, a *rangeFormattingAdapter) ([]protocol.TextEdit, error) {
			return a.provideRanges(ctx, uri, ranges, opts)
		})
}

// ProvideOnTypeFormattingEdits formats after a typed character.
func (lf *LanguageFeatures) ProvideOnTypeFormattingEdits(ctx context.Context, handle int, uri protocol.DocumentURI, pos protocol.Position, ch string, opts protocol.FormattingOptions) ([]protocol.TextEdit, error) {
	return withAdapter(ctx, lf, handle, KindOnTypeFormatting, "provideOnTypeFormattingEdits", []protocol.TextEdit(nil),
		func(ctx context.Context, a *onTypeFormattingAdapter) ([]protocol.TextEdit, error) {
			return a.provide(ctx, uri, pos, ch, opts)
		})
}
