package bridge

import (
	"context"

	"github.com/dshills/langbridge/internal/convert"
	"github.com/dshills/langbridge/internal/dispose"
	"github.com/dshills/langbridge/internal/extapi"
	"github.com/dshills/langbridge/internal/protocol"
)

// maxLinkTarget is the longest link target sent to the UI.
const maxLinkTarget = 50000

type documentLinkAdapter struct {
	env      *env
	provider extapi.DocumentLinkProvider
	cache    *Cache[*extapi.DocumentLink]
}

func (*documentLinkAdapter) kind() Kind { return KindDocumentLink }
func (a *documentLinkAdapter) dispose() { a.cache.Clear() }

func (a *documentLinkAdapter) provide(ctx context.Context, uri protocol.DocumentURI) (*protocol.DocumentLinkList, error) {
	doc, err := a.env.document(uri)
	if err != nil {
		return nil, err
	}
	links, err := a.provider.ProvideDocumentLinks(ctx, doc)
	if err != nil || len(links) == 0 || ctx.Err() != nil {
		return nil, err
	}

	out := &protocol.DocumentLinkList{Links: make([]protocol.DocumentLink, 0, len(links))}
	if _, resolves := a.provider.(extapi.DocumentLinkResolver); !resolves {
		for _, l := range links {
			if usableLink(l) {
				out.Links = append(out.Links, convert.DocumentLink(l))
			}
		}
		return out, nil
	}

	id := a.cache.Add(links)
	out.CacheID = &id
	for i, l := range links {
		if !usableLink(l) {
			continue
		}
		link := convert.DocumentLink(l)
		link.CacheID = &protocol.ChainedCacheID{id, i}
		out.Links = append(out.Links, link)
	}
	return out, nil
}

func usableLink(l *extapi.DocumentLink) bool {
	return l != nil && len(l.Target) <= maxLinkTarget
}

func (a *documentLinkAdapter) resolve(ctx context.Context, id protocol.ChainedCacheID) (*protocol.DocumentLink, error) {
	resolver, ok := a.provider.(extapi.DocumentLinkResolver)
	if !ok {
		return nil, nil
	}
	item, ok := a.cache.Get(id.Session(), id.Index())
	if !ok || item == nil {
		return nil, nil
	}
	link, err := resolver.ResolveDocumentLink(ctx, item)
	if err != nil || !usableLink(link) {
		return nil, err
	}
	out := convert.DocumentLink(link)
	out.CacheID = &id
	return &out, nil
}

// RegisterDocumentLinkProvider registers a document link provider.
func (lf *LanguageFeatures) RegisterDocumentLinkProvider(ext extapi.Extension, selector extapi.DocumentSelector, provider extapi.DocumentLinkProvider) dispose.Disposable {
	a := &documentLinkAdapter{env: lf.env, provider: provider, cache: NewCache[*extapi.DocumentLink]()}
	_, resolves := provider.(extapi.DocumentLinkResolver)
	return lf.register(ext, selector, a, provider, protocol.Registration{SupportsResolve: resolves})
}

// ProvideDocumentLinks returns the links of a document, or nil. Links are
// only cached when the provider can resolve them.
func (lf *LanguageFeatures) ProvideDocumentLinks(ctx context.Context, handle int, uri protocol.DocumentURI) (*protocol.DocumentLinkList, error) {
	return withAdapter(ctx, lf, handle, KindDocumentLink, "provideDocumentLinks", (*protocol.DocumentLinkList)(nil),
		func(ctx context.Context, a *documentLinkAdapter) (*protocol.DocumentLinkList, error) {
			return a.provide(ctx, uri)
		})
}

// ResolveDocumentLink fills in a cached link, or returns nil.
func (lf *LanguageFeatures) ResolveDocumentLink(ctx context.Context, handle int, id protocol.ChainedCacheID) (*protocol.DocumentLink, error) {
	return withAdapter(ctx, lf, handle, KindDocumentLink, "resolveDocumentLink", (*protocol.DocumentLink)(nil),
		func(ctx context.Context, a *documentLinkAdapter) (*protocol.DocumentLink, error) {
			return a.resolve(ctx, id)
		})
}

// ReleaseDocumentLinks drops a batch of links.
func (lf *LanguageFeatures) ReleaseDocumentLinks(handle, cacheID int) {
	_, _ = withAdapter(context.Background(), lf, handle, KindDocumentLink, "releaseDocumentLinks", struct{}{},
		func(_ context.Context, a *documentLinkAdapter) (struct{}, error) {
			a.cache.Delete(cacheID)
			return struct{}{}, nil
		}, quiet())
}
