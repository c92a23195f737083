package bridge

import (
	"context"

	"github.com/dshills/langbridge/internal/convert"
	"github.com/dshills/langbridge/internal/dispose"
	"github.com/dshills/langbridge/internal/extapi"
	"github.com/dshills/langbridge/internal/protocol"
)

// --- Call hierarchy ---

type callHierarchyAdapter struct {
	env      *env
	provider extapi.CallHierarchyProvider
	sessions *SessionMap[*extapi.CallHierarchyItem]
}

func (*callHierarchyAdapter) kind() Kind { return KindCallHierarchy }
func (a *callHierarchyAdapter) dispose() { a.sessions.Clear() }

// add caches item in session and converts it. The boolean is false when the
// session has been released.
func (a *callHierarchyAdapter) add(session string, item *extapi.CallHierarchyItem) (protocol.CallHierarchyItem, bool) {
	id, ok := a.sessions.Add(session, item)
	if !ok {
		return protocol.CallHierarchyItem{}, false
	}
	return convert.CallHierarchyItem(item, session, id), true
}

func (a *callHierarchyAdapter) prepare(ctx context.Context, uri protocol.DocumentURI, pos protocol.Position) ([]protocol.CallHierarchyItem, error) {
	doc, err := a.env.document(uri)
	if err != nil {
		return nil, err
	}
	items, err := a.provider.PrepareCallHierarchy(ctx, doc, convert.ToPosition(pos))
	if err != nil || items == nil || ctx.Err() != nil {
		return nil, err
	}

	session := a.sessions.NewSession()
	out := make([]protocol.CallHierarchyItem, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		dto, _ := a.add(session, item)
		out = append(out, dto)
	}
	return out, nil
}

func (a *callHierarchyAdapter) incoming(ctx context.Context, session, itemID string) ([]protocol.IncomingCall, error) {
	item, ok := a.sessions.Get(session, itemID)
	if !ok {
		return nil, usageErrorf("provideCallHierarchyIncomingCalls", "missing call hierarchy item %s/%s", session, itemID)
	}
	calls, err := a.provider.ProvideCallHierarchyIncomingCalls(ctx, item)
	if err != nil || calls == nil {
		return nil, err
	}
	out := make([]protocol.IncomingCall, 0, len(calls))
	for _, c := range calls {
		if c.From == nil {
			continue
		}
		from, ok := a.add(session, c.From)
		if !ok {
			return nil, usageErrorf("provideCallHierarchyIncomingCalls", "call hierarchy session %s was released", session)
		}
		out = append(out, protocol.IncomingCall{From: from, FromRanges: convert.Ranges(c.FromRanges)})
	}
	return out, nil
}

func (a *callHierarchyAdapter) outgoing(ctx context.Context, session, itemID string) ([]protocol.OutgoingCall, error) {
	item, ok := a.sessions.Get(session, itemID)
	if !ok {
		return nil, usageErrorf("provideCallHierarchyOutgoingCalls", "missing call hierarchy item %s/%s", session, itemID)
	}
	calls, err := a.provider.ProvideCallHierarchyOutgoingCalls(ctx, item)
	if err != nil || calls == nil {
		return nil, err
	}
	out := make([]protocol.OutgoingCall, 0, len(calls))
	for _, c := range calls {
		if c.To == nil {
			continue
		}
		to, ok := a.add(session, c.To)
		if !ok {
			return nil, usageErrorf("provideCallHierarchyOutgoingCalls", "call hierarchy session %s was released", session)
		}
		out = append(out, protocol.OutgoingCall{To: to, FromRanges: convert.Ranges(c.FromRanges)})
	}
	return out, nil
}

// RegisterCallHierarchyProvider registers a call hierarchy provider.
func (lf *LanguageFeatures) RegisterCallHierarchyProvider(ext extapi.Extension, selector extapi.DocumentSelector, provider extapi.CallHierarchyProvider) dispose.Disposable {
	a := &callHierarchyAdapter{env: lf.env, provider: provider, sessions: NewSessionMap[*extapi.CallHierarchyItem]()}
	return lf.register(ext, selector, a, provider, protocol.Registration{})
}

// PrepareCallHierarchy starts a call hierarchy session, or returns nil.
func (lf *LanguageFeatures) PrepareCallHierarchy(ctx context.Context, handle int, uri protocol.DocumentURI, pos protocol.Position) ([]protocol.CallHierarchyItem, error) {
	return withAdapter(ctx, lf, handle, KindCallHierarchy, "prepareCallHierarchy", []protocol.CallHierarchyItem(nil),
		func(ctx context.Context, a *callHierarchyAdapter) ([]protocol.CallHierarchyItem, error) {
			return a.prepare(ctx, uri, pos)
		})
}

// ProvideCallHierarchyIncomingCalls lists callers of an item found earlier in
// the same session. An unknown item is a *UsageError.
func (lf *LanguageFeatures) ProvideCallHierarchyIncomingCalls(ctx context.Context, handle int, session, itemID string) ([]protocol.IncomingCall, error) {
	return withAdapter(ctx, lf, handle, KindCallHierarchy, "provideCallHierarchyIncomingCalls", []protocol.IncomingCall(nil),
		func(ctx context.Context, a *callHierarchyAdapter) ([]protocol.IncomingCall, error) {
			return a.incoming(ctx, session, itemID)
		})
}

// ProvideCallHierarchyOutgoingCalls lists callees of an item found earlier in
// the same session. An unknown item is a *UsageError.
func (lf *LanguageFeatures) ProvideCallHierarchyOutgoingCalls(ctx context.Context, handle int, session, itemID string) ([]protocol.OutgoingCall, error) {
	return withAdapter(ctx, lf, handle, KindCallHierarchy, "provideCallHierarchyOutgoingCalls", []protocol.OutgoingCall(nil),
		func(ctx context.Context, a *callHierarchyAdapter) ([]protocol.OutgoingCall, error) {
			return a.outgoing(ctx, session, itemID)
		})
}

// ReleaseCallHierarchy ends a session.
func (lf *LanguageFeatures) ReleaseCallHierarchy(handle int, session string) {
	_, _ = withAdapter(context.Background(), lf, handle, KindCallHierarchy, "releaseCallHierarchy", struct{}{},
		func(_ context.Context, a *callHierarchyAdapter) (struct{}, error) {
			a.sessions.Release(session)
			return struct{}{}, nil
		}, quiet())
}

// --- Type hierarchy ---

type typeHierarchyAdapter struct {
	env      *env
	provider extapi.TypeHierarchyProvider
	sessions *SessionMap[*extapi.TypeHierarchyItem]
}

func (*typeHierarchyAdapter) kind() Kind { return KindTypeHierarchy }
func (a *typeHierarchyAdapter) dispose() { a.sessions.Clear() }

func (a *typeHierarchyAdapter) prepare(ctx context.Context, uri protocol.DocumentURI, pos protocol.Position) ([]protocol.TypeHierarchyItem, error) {
	doc, err := a.env.document(uri)
	if err != nil {
		return nil, err
	}
	items, err := a.provider.PrepareTypeHierarchy(ctx, doc, convert.ToPosition(pos))
	if err != nil || items == nil || ctx.Err() != nil {
		return nil, err
	}
	session := a.sessions.NewSession()
	return a.convertAll(session, items, "prepareTypeHierarchy")
}

func (a *typeHierarchyAdapter) convertAll(session string, items []*extapi.TypeHierarchyItem, op string) ([]protocol.TypeHierarchyItem, error) {
	out := make([]protocol.TypeHierarchyItem, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		id, ok := a.sessions.Add(session, item)
		if !ok {
			return nil, usageErrorf(op, "type hierarchy session %s was released", session)
		}
		out = append(out, convert.TypeHierarchyItem(item, session, id))
	}
	return out, nil
}

type typeRelation func(context.Context, *extapi.TypeHierarchyItem) ([]*extapi.TypeHierarchyItem, error)

func (a *typeHierarchyAdapter) related(ctx context.Context, op, session, itemID string, relation typeRelation) ([]protocol.TypeHierarchyItem, error) {
	item, ok := a.sessions.Get(session, itemID)
	if !ok {
		return nil, usageErrorf(op, "missing type hierarchy item %s/%s", session, itemID)
	}
	items, err := relation(ctx, item)
	if err != nil || items == nil {
		return nil, err
	}
	return a.convertAll(session, items, op)
}

// RegisterTypeHierarchyProvider registers a type hierarchy provider.
func (lf *LanguageFeatures) RegisterTypeHierarchyProvider(ext extapi.Extension, selector extapi.DocumentSelector, provider extapi.TypeHierarchyProvider) dispose.Disposable {
	a := &typeHierarchyAdapter{env: lf.env, provider: provider, sessions: NewSessionMap[*extapi.TypeHierarchyItem]()}
	return lf.register(ext, selector, a, provider, protocol.Registration{})
}

// PrepareTypeHierarchy starts a type hierarchy session, or returns nil.
func (lf *LanguageFeatures) PrepareTypeHierarchy(ctx context.Context, handle int, uri protocol.DocumentURI, pos protocol.Position) ([]protocol.TypeHierarchyItem, error) {
	return withAdapter(ctx, lf, handle, KindTypeHierarchy, "prepareTypeHierarchy", []protocol.TypeHierarchyItem(nil),
		func(ctx context.Context, a *typeHierarchyAdapter) ([]protocol.TypeHierarchyItem, error) {
			return a.prepare(ctx, uri, pos)
		})
}

// ProvideTypeHierarchySupertypes lists the supertypes of an item.
func (lf *LanguageFeatures) ProvideTypeHierarchySupertypes(ctx context.Context, handle int, session, itemID string) ([]protocol.TypeHierarchyItem, error) {
	return withAdapter(ctx, lf, handle, KindTypeHierarchy, "provideTypeHierarchySupertypes", []protocol.TypeHierarchyItem(nil),
		func(ctx context.Context, a *typeHierarchyAdapter) ([]protocol.TypeHierarchyItem, error) {
			return a.related(ctx, "provideTypeHierarchySupertypes", session, itemID, a.provider.ProvideTypeHierarchySupertypes)
		})
}

// ProvideTypeHierarchySubtypes lists the subtypes of an item.
func (lf *LanguageFeatures) ProvideTypeHierarchySubtypes(ctx context.Context, handle int, session, itemID string) ([]protocol.TypeHierarchyItem, error) {
	return withAdapter(ctx, lf, handle, KindTypeHierarchy, "provideTypeHierarchySubtypes", []protocol.TypeHierarchyItem(nil),
		func(ctx context.Context, a *typeHierarchyAdapter) ([]protocol.TypeHierarchyItem, error) {
			return a.related(ctx, "provideTypeHierarchySubtypes", session, itemID, a.provider.ProvideTypeHierarchySubtypes)
		})
}

// ReleaseTypeHierarchy ends a session.
func (lf *LanguageFeatures) ReleaseTypeHierarchy(handle int, session string) {
	_, _ = withAdapter(context.Background(), lf, handle, KindTypeHierarchy, "releaseTypeHierarchy", struct{}{},
		func(_ context.Context, a *typeHierarchyAdapter) (struct{}, error) {
			a.sessions.Release(session)
			return struct{}{}, nil
		}, quiet())
}
