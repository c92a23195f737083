package bridge

import (
	"context"
	"testing"

	"github.com/dshills/langbridge/internal/extapi"
)

func flatSymbol(name string, sl, el int) *extapi.SymbolInformation {
	return &extapi.SymbolInformation{
		Name:     name,
		Kind:     extapi.SymbolKindFunction,
		Location: extapi.Location{URI: extapi.URI(testURI), Range: extapi.NewRange(sl, 0, el, 1)},
	}
}

func TestDocumentSymbols_FlatIsNested(t *testing.T) {
	te := newTestEnv(t)
	te.docs.add(testURI, "package main")
	te.lf.RegisterDocumentSymbolProvider(testExt, nil, symbolsFunc(func(context.Context, extapi.Document) (*extapi.DocumentSymbols, error) {
		return &extapi.DocumentSymbols{Flat: []*extapi.SymbolInformation{
			flatSymbol("method", 2, 4),
			flatSymbol("Type", 1, 10),
			flatSymbol("other", 6, 8),
			flatSymbol("", 12, 14),
		}}, nil
	}), "Outline")
	reg := te.remote.last().reg
	if reg.DisplayName != "Outline" {
		t.Errorf("Expected display name Outline, got %q", reg.DisplayName)
	}

	got, err := te.lf.ProvideDocumentSymbols(context.Background(), reg.Handle, testURI)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 roots, got %d: %+v", len(got), got)
	}
	root := got[0]
	if root.Name != "Type" || len(root.Children) != 2 {
		t.Fatalf("Expected Type with 2 children, got %+v", root)
	}
	if root.Children[0].Name != "method" || root.Children[1].Name != "other" {
		t.Errorf("Unexpected children %+v", root.Children)
	}
	if got[1].Name != missingSymbolName {
		t.Errorf("Expected placeholder name, got %q", got[1].Name)
	}
	if root.SelectionRange != root.Range {
		t.Error("Expected selection range to equal range for flat symbols")
	}
}

func TestDocumentSymbols_EqualRangesAreSiblings(t *testing.T) {
	tree := buildSymbolTree([]*extapi.SymbolInformation{
		flatSymbol("a", 1, 3),
		flatSymbol("b", 1, 3),
	})
	if len(tree) != 2 {
		t.Errorf("Expected 2 roots, got %+v", tree)
	}
}

func TestDocumentSymbols_EmptyIsNil(t *testing.T) {
	te := newTestEnv(t)
	te.docs.add(testURI, "package main")
	te.lf.RegisterDocumentSymbolProvider(testExt, nil, symbolsFunc(func(context.Context, extapi.Document) (*extapi.DocumentSymbols, error) {
		return &extapi.DocumentSymbols{}, nil
	}), "")
	got, err := te.lf.ProvideDocumentSymbols(context.Background(), te.remote.last().reg.Handle, testURI)
	if err != nil || got != nil {
		t.Errorf("Expected nil, got %v, %v", got, err)
	}
}
