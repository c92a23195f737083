package bridge

import (
	"context"

	"github.com/dshills/langbridge/internal/convert"
	"github.com/dshills/langbridge/internal/dispose"
	"github.com/dshills/langbridge/internal/extapi"
	"github.com/dshills/langbridge/internal/protocol"
)

type colorAdapter struct {
	stateless
	env      *env
	provider extapi.DocumentColorProvider
}

func (*colorAdapter) kind() Kind { return KindColor }

func (a *colorAdapter) provideColors(ctx context.Context, uri protocol.DocumentURI) ([]protocol.ColorInformation, error) {
	doc, err := a.env.document(uri)
	if err != nil {
		return nil, err
	}
	colors, err := a.provider.ProvideDocumentColors(ctx, doc)
	if err != nil {
		return nil, err
	}
	return convert.ColorInformation(colors), nil
}

func (a *colorAdapter) providePresentations(ctx context.Context, uri protocol.DocumentURI, req protocol.ColorPresentationRequest) ([]protocol.ColorPresentation, error) {
	doc, err := a.env.document(uri)
	if err != nil {
		return nil, err
	}
	ps, err := a.provider.ProvideColorPresentations(ctx, convert.ToColor(req.Color), doc, convert.ToRange(req.Range))
	if err != nil || ps == nil {
		return nil, err
	}
	return convert.ColorPresentations(ps), nil
}

// RegisterColorProvider registers a color provider.
func (lf *LanguageFeatures) RegisterColorProvider(ext extapi.Extension, selector extapi.DocumentSelector, provider extapi.DocumentColorProvider) dispose.Disposable {
	a := &colorAdapter{env: lf.env, provider: provider}
	return lf.register(ext, selector, a, provider, protocol.Registration{})
}

// ProvideDocumentColors returns the colors of a document. It never returns nil.
func (lf *LanguageFeatures) ProvideDocumentColors(ctx context.Context, handle int, uri protocol.DocumentURI) ([]protocol.ColorInformation, error) {
	return withAdapter(ctx, lf, handle, KindColor, "provideDocumentColors", []protocol.ColorInformation{},
		func(ctx context.Context, a *colorAdapter) ([]protocol.ColorInformation, error) {
			return a.provideColors(ctx, uri)
		})
}

// ProvideColorPresentations renders a color, or returns nil.
func (lf *LanguageFeatures) ProvideColorPresentations(ctx context.Context, handle int, uri protocol.DocumentURI, req protocol.ColorPresentationRequest) ([]protocol.ColorPresentation, error) {
	return withAdapter(ctx, lf, handle, KindColor, "provideColorPresentations", []protocol.ColorPresentation(nil),
		func(ctx context.Context, a *colorAdapter) ([]protocol.ColorPresentation, error) {
			return a.providePresentations(ctx, uri, req)
		})
}
