package bridge

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/langbridge/internal/convert"
	"github.com/dshills/langbridge/internal/dispose"
	"github.com/dshills/langbridge/internal/extapi"
	"github.com/dshills/langbridge/internal/protocol"
)

// locationFunc is the common shape of definition-like providers.
type locationFunc func(ctx context.Context, doc extapi.Document, pos extapi.Position) ([]extapi.LocationLink, error)

// locationLinkAdapter serves definitions, declarations, implementations and
// type definitions. k tells them apart.
type locationLinkAdapter struct {
	stateless
	env     *env
	k       Kind
	provide locationFunc
}

func (a *locationLinkAdapter) kind() Kind { return a.k }

func (a *locationLinkAdapter) links(ctx context.Context, uri protocol.DocumentURI, pos protocol.Position) ([]protocol.LocationLink, error) {
	doc, err := a.env.document(uri)
	if err != nil {
		return nil, err
	}
	value, err := a.provide(ctx, doc, convert.ToPosition(pos))
	if err != nil {
		return nil, err
	}
	return convert.LocationLinks(value), nil
}

func (lf *LanguageFeatures) registerLocationLinks(ext extapi.Extension, selector extapi.DocumentSelector, k Kind, provider any, fn locationFunc) dispose.Disposable {
	a := &locationLinkAdapter{env: lf.env, k: k, provide: fn}
	return lf.register(ext, selector, a, provider, protocol.Registration{})
}

func (lf *LanguageFeatures) provideLocationLinks(ctx context.Context, handle int, k Kind, method string, uri protocol.DocumentURI, pos protocol.Position) ([]protocol.LocationLink, error) {
	return withAdapter(ctx, lf, handle, k, method, []protocol.LocationLink{},
		func(ctx context.Context, a *locationLinkAdapter) ([]protocol.LocationLink, error) {
			return a.links(ctx, uri, pos)
		})
}

// RegisterDefinitionProvider registers a definition provider.
func (lf *LanguageFeatures) RegisterDefinitionProvider(ext extapi.Extension, selector extapi.DocumentSelector, provider extapi.DefinitionProvider) dispose.Disposable {
	return lf.registerLocationLinks(ext, selector, KindDefinition, provider, provider.ProvideDefinition)
}

// RegisterDeclarationProvider registers a declaration provider.
func (lf *LanguageFeatures) RegisterDeclarationProvider(ext extapi.Extension, selector extapi.DocumentSelector, provider extapi.DeclarationProvider) dispose.Disposable {
	return lf.registerLocationLinks(ext, selector, KindDeclaration, provider, provider.ProvideDeclaration)
}

// RegisterImplementationProvider registers an implementation provider.
func (lf *LanguageFeatures) RegisterImplementationProvider(ext extapi.Extension, selector extapi.DocumentSelector, provider extapi.ImplementationProvider) dispose.Disposable {
	return lf.registerLocationLinks(ext, selector, KindImplementation, provider, provider.ProvideImplementation)
}

// RegisterTypeDefinitionProvider registers a type definition provider.
func (lf *LanguageFeatures) RegisterTypeDefinitionProvider(ext extapi.Extension, selector extapi.DocumentSelector, provider extapi.TypeDefinitionProvider) dispose.Disposable {
	return lf.registerLocationLinks(ext, selector, KindTypeDefinition, provider, provider.ProvideTypeDefinition)
}

// ProvideDefinition returns definition links, or an empty list.
func (lf *LanguageFeatures) ProvideDefinition(ctx context.Context, handle int, uri protocol.DocumentURI, pos protocol.Position) ([]protocol.LocationLink, error) {
	return lf.provideLocationLinks(ctx, handle, KindDefinition, "provideDefinition", uri, pos)
}

// ProvideDeclaration returns declaration links, or an empty list.
func (lf *LanguageFeatures) ProvideDeclaration(ctx context.Context, handle int, uri protocol.DocumentURI, pos protocol.Position) ([]protocol.LocationLink, error) {
	return lf.provideLocationLinks(ctx, handle, KindDeclaration, "provideDeclaration", uri, pos)
}

// ProvideImplementation returns implementation links, or an empty list.
func (lf *LanguageFeatures) ProvideImplementation(ctx context.Context, handle int, uri protocol.DocumentURI, pos protocol.Position) ([]protocol.LocationLink, error) {
	return lf.provideLocationLinks(ctx, handle, KindImplementation, "provideImplementation", uri, pos)
}

// ProvideTypeDefinition returns type definition links, or an empty list.
func (lf *LanguageFeatures) ProvideTypeDefinition(ctx context.Context, handle int, uri protocol.DocumentURI, pos protocol.Position) ([]protocol.LocationLink, error) {
	return lf.provideLocationLinks(ctx, handle, KindTypeDefinition, "provideTypeDefinition", uri, pos)
}

// --- References ---

type referenceAdapter struct {
	stateless
	env      *env
	provider extapi.ReferenceProvider
}

func (*referenceAdapter) kind() Kind { return KindReference }

func (a *referenceAdapter) provide(ctx context.Context, uri protocol.DocumentURI, pos protocol.Position, rctx protocol.ReferenceContext) ([]protocol.Location, error) {
	doc, err := a.env.document(uri)
	if err != nil {
		return nil, err
	}
	value, err := a.provider.ProvideReferences(ctx, doc, convert.ToPosition(pos), extapi.ReferenceContext{IncludeDeclaration: rctx.IncludeDeclaration})
	if err != nil || len(value) == 0 {
		return nil, err
	}
	return convert.Locations(value), nil
}

// RegisterReferenceProvider registers a reference provider.
func (lf *LanguageFeatures) RegisterReferenceProvider(ext extapi.Extension, selector extapi.DocumentSelector, provider extapi.ReferenceProvider) dispose.Disposable {
	a := &referenceAdapter{env: lf.env, provider: provider}
	return lf.register(ext, selector, a, provider, protocol.Registration{})
}

// ProvideReferences returns reference locations, or nil.
func (lf *LanguageFeatures) ProvideReferences(ctx context.Context, handle int, uri protocol.DocumentURI, pos protocol.Position, rctx protocol.ReferenceContext) ([]protocol.Location, error) {
	return withAdapter(ctx, lf, handle, KindReference, "provideReferences", []protocol.Location(nil),
		func(ctx context.Context, a *referenceAdapter) ([]protocol.Location, error) {
			return a.provide(ctx, uri, pos, rctx)
		})
}

// --- Document highlights ---

type documentHighlightAdapter struct {
	stateless
	env      *env
	provider extapi.DocumentHighlightProvider
}

func (*documentHighlightAdapter) kind() Kind { return KindDocumentHighlight }

func (a *documentHighlightAdapter) provide(ctx context.Context, uri protocol.DocumentURI, pos protocol.Position) ([]protocol.DocumentHighlight, error) {
	doc, err := a.env.document(uri)
	if err != nil {
		return nil, err
	}
	value, err := a.provider.ProvideDocumentHighlights(ctx, doc, convert.ToPosition(pos))
	if err != nil || value == nil {
		return nil, err
	}
	return convert.DocumentHighlights(value), nil
}

// RegisterDocumentHighlightProvider registers a document highlight provider.
func (lf *LanguageFeatures) RegisterDocumentHighlightProvider(ext extapi.Extension, selector extapi.DocumentSelector, provider extapi.DocumentHighlightProvider) dispose.Disposable {
	a := &documentHighlightAdapter{env: lf.env, provider: provider}
	return lf.register(ext, selector, a, provider, protocol.Registration{})
}

// ProvideDocumentHighlights returns highlights, or nil.
func (lf *LanguageFeatures) ProvideDocumentHighlights(ctx context.Context, handle int, uri protocol.DocumentURI, pos protocol.Position) ([]protocol.DocumentHighlight, error) {
	return withAdapter(ctx, lf, handle, KindDocumentHighlight, "provideDocumentHighlights", []protocol.DocumentHighlight(nil),
		func(ctx context.Context, a *documentHighlightAdapter) ([]protocol.DocumentHighlight, error) {
			return a.provide(ctx, uri, pos)
		})
}

// --- Multi-document highlights ---

type multiDocumentHighlightAdapter struct {
	stateless
	env      *env
	provider extapi.MultiDocumentHighlightProvider
}

func (*multiDocumentHighlightAdapter) kind() Kind { return KindMultiDocumentHighlight }

func (a *multiDocumentHighlightAdapter) provide(ctx context.Context, uri protocol.DocumentURI, pos protocol.Position, others []protocol.DocumentURI) ([]protocol.MultiDocumentHighlight, error) {
	doc, err := a.env.document(uri)
	if err != nil {
		return nil, err
	}
	otherDocs := a.resolveOthers(ctx, others)

	value, err := a.provider.ProvideMultiDocumentHighlights(ctx, doc, convert.ToPosition(pos), otherDocs)
	if err != nil || value == nil {
		return nil, err
	}
	out := make([]protocol.MultiDocumentHighlight, len(value))
	for i, m := range value {
		out[i] = convert.MultiDocumentHighlight(m)
	}
	return out, nil
}

// resolveOthers looks up the other documents concurrently. Documents that
// cannot be resolved are skipped; order is preserved.
func (a *multiDocumentHighlightAdapter) resolveOthers(ctx context.Context, uris []protocol.DocumentURI) []extapi.Document {
	resolved := make([]extapi.Document, len(uris))
	g, _ := errgroup.WithContext(ctx)
	for i, uri := range uris {
		i, uri := i, uri
		g.Go(func() error {
			if doc, err := a.env.docs.Document(uri); err == nil {
				resolved[i] = doc
			}
			return nil
		})
	}
	_ = g.Wait()

	out := make([]extapi.Document, 0, len(resolved))
	for _, d := range resolved {
		if d != nil {
			out = append(out, d)
		}
	}
	return out
}

// RegisterMultiDocumentHighlightProvider registers a multi-document highlight provider.
func (lf *LanguageFeatures) RegisterMultiDocumentHighlightProvider(ext extapi.Extension, selector extapi.DocumentSelector, provider extapi.MultiDocumentHighlightProvider) dispose.Disposable {
	a := &multiDocumentHighlightAdapter{env: lf.env, provider: provider}
	return lf.register(ext, selector, a, provider, protocol.Registration{})
}

// ProvideMultiDocumentHighlights returns highlights across documents, or nil.
func (lf *LanguageFeatures) ProvideMultiDocumentHighlights(ctx context.Context, handle int, uri protocol.DocumentURI, pos protocol.Position, others []protocol.DocumentURI) ([]protocol.MultiDocumentHighlight, error) {
	return withAdapter(ctx, lf, handle, KindMultiDocumentHighlight, "provideMultiDocumentHighlights", []protocol.MultiDocumentHighlight(nil),
		func(ctx context.Context, a *multiDocumentHighlightAdapter) ([]protocol.MultiDocumentHighlight, error) {
			return a.provide(ctx, uri, pos, others)
		})
}

// --- Linked editing ---

type linkedEditingRangeAdapter struct {
	stateless
	env      *env
	provider extapi.LinkedEditingRangeProvider
}

func (*linkedEditingRangeAdapter) kind() Kind { return KindLinkedEditingRange }

func (a *linkedEditingRangeAdapter) provide(ctx context.Context, uri protocol.DocumentURI, pos protocol.Position) (*protocol.LinkedEditingRanges, error) {
	doc, err := a.env.document(uri)
	if err != nil {
		return nil, err
	}
	value, err := a.provider.ProvideLinkedEditingRanges(ctx, doc, convert.ToPosition(pos))
	if err != nil || value == nil || len(value.Ranges) == 0 {
		return nil, err
	}
	return &protocol.LinkedEditingRanges{
		Ranges:      convert.Ranges(value.Ranges),
		WordPattern: value.WordPattern,
	}, nil
}

// RegisterLinkedEditingRangeProvider registers a linked editing provider.
func (lf *LanguageFeatures) RegisterLinkedEditingRangeProvider(ext extapi.Extension, selector extapi.DocumentSelector, provider extapi.LinkedEditingRangeProvider) dispose.Disposable {
	a := &linkedEditingRangeAdapter{env: lf.env, provider: provider}
	return lf.register(ext, selector, a, provider, protocol.Registration{})
}

// ProvideLinkedEditingRanges returns linked ranges, or nil.
func (lf *LanguageFeatures) ProvideLinkedEditingRanges(ctx context.Context, handle int, uri protocol.DocumentURI, pos protocol.Position) (*protocol.LinkedEditingRanges, error) {
	return withAdapter(ctx, lf, handle, KindLinkedEditingRange, "provideLinkedEditingRanges", (*protocol.LinkedEditingRanges)(nil),
		func(ctx context.Context, a *linkedEditingRangeAdapter) (*protocol.LinkedEditingRanges, error) {
			return a.provide(ctx, uri, pos)
		})
}
