package bridge

import (
	"context"
	"sort"

	"github.com/dshills/langbridge/internal/convert"
	"github.com/dshills/langbridge/internal/dispose"
	"github.com/dshills/langbridge/internal/extapi"
	"github.com/dshills/langbridge/internal/protocol"
)

const missingSymbolName = "!!MISSING: name!!"

type documentSymbolAdapter struct {
	stateless
	env      *env
	provider extapi.DocumentSymbolProvider
}

func (*documentSymbolAdapter) kind() Kind { return KindDocumentSymbol }

func (a *documentSymbolAdapter) provide(ctx context.Context, uri protocol.DocumentURI) ([]protocol.DocumentSymbol, error) {
	doc, err := a.env.document(uri)
	if err != nil {
		return nil, err
	}
	value, err := a.provider.ProvideDocumentSymbols(ctx, doc)
	if err != nil {
		return nil, err
	}
	if value.Len() == 0 {
		return nil, nil
	}
	if len(value.Tree) > 0 {
		out := make([]protocol.DocumentSymbol, 0, len(value.Tree))
		for _, s := range value.Tree {
			if s != nil {
				out = append(out, convert.DocumentSymbol(s))
			}
		}
		return out, nil
	}
	return buildSymbolTree(value.Flat), nil
}

// symbolNode is a DocumentSymbol under construction.
type symbolNode struct {
	sym      protocol.DocumentSymbol
	rng      extapi.Range
	children []*symbolNode
}

func (n *symbolNode) finish() protocol.DocumentSymbol {
	out := n.sym
	if len(n.children) > 0 {
		out.Children = make([]protocol.DocumentSymbol, len(n.children))
		for i, c := range n.children {
			out.Children[i] = c.finish()
		}
	}
	return out
}

// buildSymbolTree nests flat symbols by range containment. Symbols are sorted
// by start ascending, then end descending, and each symbol becomes a child of
// the nearest open ancestor that strictly contains it.
func buildSymbolTree(infos []*extapi.SymbolInformation) []protocol.DocumentSymbol {
	sorted := make([]*extapi.SymbolInformation, 0, len(infos))
	for _, info := range infos {
		if info != nil {
			sorted = append(sorted, info)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Location.Range, sorted[j].Location.Range
		if c := a.Start.Compare(b.Start); c != 0 {
			return c < 0
		}
		return b.End.Compare(a.End) < 0
	})

	var roots []*symbolNode
	var stack []*symbolNode
	for _, info := range sorted {
		name := info.Name
		if name == "" {
			name = missingSymbolName
		}
		rng := info.Location.Range
		node := &symbolNode{
			rng: rng,
			sym: protocol.DocumentSymbol{
				Name:           name,
				Kind:           int(info.Kind),
				Tags:           convert.SymbolTags(info.Tags),
				ContainerName:  info.ContainerName,
				Range:          convert.Range(rng),
				SelectionRange: convert.Range(rng),
			},
		}

		for {
			if len(stack) == 0 {
				stack = append(stack, node)
				roots = append(roots, node)
				break
			}
			parent := stack[len(stack)-1]
			if parent.rng.StrictlyContains(rng) {
				parent.children = append(parent.children, node)
				stack = append(stack, node)
				break
			}
			stack = stack[:len(stack)-1]
		}
	}

	out := make([]protocol.DocumentSymbol, len(roots))
	for i, r := range roots {
		out[i] = r.finish()
	}
	return out
}

// RegisterDocumentSymbolProvider registers an outline provider. displayName
// labels the provider when several apply to one document.
func (lf *LanguageFeatures) RegisterDocumentSymbolProvider(ext extapi.Extension, selector extapi.DocumentSelector, provider extapi.DocumentSymbolProvider, displayName string) dispose.Disposable {
	a := &documentSymbolAdapter{env: lf.env, provider: provider}
	return lf.register(ext, selector, a, provider, protocol.Registration{DisplayName: displayName})
}

// ProvideDocumentSymbols returns the outline of a document, or nil.
func (lf *LanguageFeatures) ProvideDocumentSymbols(ctx context.Context, handle int, uri protocol.DocumentURI) ([]protocol.DocumentSymbol, error) {
	return withAdapter(ctx, lf, handle, KindDocumentSymbol, "provideDocumentSymbols", []protocol.DocumentSymbol(nil),
		func(ctx context.Context, a *documentSymbolAdapter) ([]protocol.DocumentSymbol, error) {
			return a.provide(ctx, uri)
		})
}
