package bridge

import (
	"context"
	"fmt"

	"github.com/dshills/langbridge/internal/convert"
	"github.com/dshills/langbridge/internal/dispose"
	"github.com/dshills/langbridge/internal/extapi"
	"github.com/dshills/langbridge/internal/protocol"
)

// --- Folding ---

type foldingRangeAdapter struct {
	stateless
	env      *env
	provider extapi.FoldingRangeProvider
}

func (*foldingRangeAdapter) kind() Kind { return KindFoldingRange }

func (a *foldingRangeAdapter) provide(ctx context.Context, uri protocol.DocumentURI) ([]protocol.FoldingRange, error) {
	doc, err := a.env.document(uri)
	if err != nil {
		return nil, err
	}
	ranges, err := a.provider.ProvideFoldingRanges(ctx, doc)
	if err != nil || ranges == nil {
		return nil, err
	}
	out := make([]protocol.FoldingRange, 0, len(ranges))
	for _, r := range ranges {
		if r.Start < 0 || r.End < 0 || r.Start > r.End {
			continue
		}
		out = append(out, convert.FoldingRange(r))
	}
	return out, nil
}

// RegisterFoldingRangeProvider registers a folding range provider.
// Providers implementing extapi.ChangeNotifier get an event handle.
func (lf *LanguageFeatures) RegisterFoldingRangeProvider(ext extapi.Extension, selector extapi.DocumentSelector, provider extapi.FoldingRangeProvider) dispose.Disposable {
	a := &foldingRangeAdapter{env: lf.env, provider: provider}
	return lf.register(ext, selector, a, provider, protocol.Registration{})
}

// ProvideFoldingRanges returns the folding ranges of a document, or nil.
// Inverted or negative ranges are dropped.
func (lf *LanguageFeatures) ProvideFoldingRanges(ctx context.Context, handle int, uri protocol.DocumentURI) ([]protocol.FoldingRange, error) {
	return withAdapter(ctx, lf, handle, KindFoldingRange, "provideFoldingRanges", []protocol.FoldingRange(nil),
		func(ctx context.Context, a *foldingRangeAdapter) ([]protocol.FoldingRange, error) {
			return a.provide(ctx, uri)
		})
}

// --- Selection ranges ---

type selectionRangeAdapter struct {
	stateless
	env      *env
	provider extapi.SelectionRangeProvider
}

func (*selectionRangeAdapter) kind() Kind { return KindSelectionRange }

func (a *selectionRangeAdapter) provide(ctx context.Context, uri protocol.DocumentURI, positions []protocol.Position) ([][]protocol.SelectionRange, error) {
	doc, err := a.env.document(uri)
	if err != nil {
		return nil, err
	}
	ps := convert.ToPositions(positions)
	chains, err := a.provider.ProvideSelectionRanges(ctx, doc, ps)
	if err != nil {
		return nil, err
	}
	if len(chains) == 0 {
		return [][]protocol.SelectionRange{}, nil
	}
	if len(chains) != len(ps) {
		a.env.log.Warn("BAD selection ranges, provider must return ranges for each position")
		return [][]protocol.SelectionRange{}, nil
	}

	out := make([][]protocol.SelectionRange, len(chains))
	for i, sel := range chains {
		chain, err := flattenSelection(sel, ps[i])
		if err != nil {
			return nil, err
		}
		out[i] = chain
	}
	return out, nil
}

// flattenSelection walks a selection range chain from the innermost range
// outwards. Each range must contain the previous one, and the first must
// contain pos.
func flattenSelection(sel *extapi.SelectionRange, pos extapi.Position) ([]protocol.SelectionRange, error) {
	var out []protocol.SelectionRange
	prev := extapi.RangeFrom(pos, pos)
	for s := sel; s != nil; s = s.Parent {
		if !s.Range.ContainsRange(prev) {
			return nil, fmt.Errorf("%w: %s does not contain %s", ErrInvalidSelectionRange, s.Range, prev)
		}
		out = append(out, protocol.SelectionRange{Range: convert.Range(s.Range)})
		prev = s.Range
	}
	return out, nil
}

// RegisterSelectionRangeProvider registers a selection range provider.
func (lf *LanguageFeatures) RegisterSelectionRangeProvider(ext extapi.Extension, selector extapi.DocumentSelector, provider extapi.SelectionRangeProvider) dispose.Disposable {
	a := &selectionRangeAdapter{env: lf.env, provider: provider}
	return lf.register(ext, selector, a, provider, protocol.Registration{})
}

// ProvideSelectionRanges returns one chain per position, innermost first.
// It never returns nil; an invalid chain yields an empty result.
func (lf *LanguageFeatures) ProvideSelectionRanges(ctx context.Context, handle int, uri protocol.DocumentURI, positions []protocol.Position) ([][]protocol.SelectionRange, error) {
	return withAdapter(ctx, lf, handle, KindSelectionRange, "provideSelectionRanges", [][]protocol.SelectionRange{},
		func(ctx context.Context, a *selectionRangeAdapter) ([][]protocol.SelectionRange, error) {
			return a.provide(ctx, uri, positions)
		})
}
