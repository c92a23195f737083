package bridge

import (
	"context"
	"sync"

	"github.com/dshills/langbridge/internal/convert"
	"github.com/dshills/langbridge/internal/dispose"
	"github.com/dshills/langbridge/internal/extapi"
	"github.com/dshills/langbridge/internal/protocol"
)

type signatureHelpAdapter struct {
	env      *env
	provider extapi.SignatureHelpProvider
	cache    *Cache[*extapi.SignatureHelp]

	// revival guards cached values handed back to the provider. It is held
	// from revive until the provider returns.
	revival sync.Mutex
}

func (*signatureHelpAdapter) kind() Kind { return KindSignatureHelp }
func (a *signatureHelpAdapter) dispose() { a.cache.Clear() }

// revive rebuilds the native context. When the active help is still cached
// the cached value itself is handed back to the provider, updated with the
// UI's current selection. Callers hold a.revival.
func (a *signatureHelpAdapter) revive(sctx protocol.SignatureHelpContext) extapi.SignatureHelpContext {
	out := extapi.SignatureHelpContext{
		TriggerKind:      extapi.SignatureHelpTriggerKind(sctx.TriggerKind),
		TriggerCharacter: sctx.TriggerCharacter,
		IsRetrigger:      sctx.IsRetrigger,
	}
	active := sctx.ActiveSignatureHelp
	if active == nil {
		return out
	}
	if cached, ok := a.cache.Get(active.ID, 0); ok && cached != nil {
		cached.ActiveSignature = active.ActiveSignature
		cached.ActiveParameter = active.ActiveParameter
		out.ActiveSignatureHelp = cached
		return out
	}
	out.ActiveSignatureHelp = &extapi.SignatureHelp{
		ActiveSignature: active.ActiveSignature,
		ActiveParameter: active.ActiveParameter,
	}
	return out
}

func (a *signatureHelpAdapter) provide(ctx context.Context, uri protocol.DocumentURI, pos protocol.Position, sctx protocol.SignatureHelpContext) (*protocol.SignatureHelp, error) {
	doc, err := a.env.document(uri)
	if err != nil {
		return nil, err
	}
	if sctx.ActiveSignatureHelp != nil {
		a.revival.Lock()
		defer a.revival.Unlock()
	}
	value, err := a.provider.ProvideSignatureHelp(ctx, doc, convert.ToPosition(pos), a.revive(sctx))
	if err != nil || value == nil || ctx.Err() != nil {
		return nil, err
	}
	out := convert.SignatureHelp(value)
	out.ID = a.cache.Add([]*extapi.SignatureHelp{value})
	return &out, nil
}

// SignatureHelpMetadata lists the characters that open or refresh signature help.
type SignatureHelpMetadata struct {
	TriggerCharacters   []string
	RetriggerCharacters []string
}

// RegisterSignatureHelpProvider registers a signature help provider.
func (lf *LanguageFeatures) RegisterSignatureHelpProvider(ext extapi.Extension, selector extapi.DocumentSelector, provider extapi.SignatureHelpProvider, meta SignatureHelpMetadata) dispose.Disposable {
	a := &signatureHelpAdapter{env: lf.env, provider: provider, cache: NewCache[*extapi.SignatureHelp]()}
	return lf.register(ext, selector, a, provider, protocol.Registration{
		TriggerCharacters:   meta.TriggerCharacters,
		RetriggerCharacters: meta.RetriggerCharacters,
	})
}

// ProvideSignatureHelp returns signature help, or nil.
func (lf *LanguageFeatures) ProvideSignatureHelp(ctx context.Context, handle int, uri protocol.DocumentURI, pos protocol.Position, sctx protocol.SignatureHelpContext) (*protocol.SignatureHelp, error) {
	return withAdapter(ctx, lf, handle, KindSignatureHelp, "provideSignatureHelp", (*protocol.SignatureHelp)(nil),
		func(ctx context.Context, a *signatureHelpAdapter) (*protocol.SignatureHelp, error) {
			return a.provide(ctx, uri, pos, sctx)
		})
}

// ReleaseSignatureHelp drops a cached signature help.
func (lf *LanguageFeatures) ReleaseSignatureHelp(handle, id int) {
	_, _ = withAdapter(context.Background(), lf, handle, KindSignatureHelp, "releaseSignatureHelp", struct{}{},
		func(_ context.Context, a *signatureHelpAdapter) (struct{}, error) {
			a.cache.Delete(id)
			return struct{}{}, nil
		}, quiet())
}
