package bridge

import (
	"context"
	"reflect"
	"testing"

	"github.com/dshills/langbridge/internal/extapi"
	"github.com/dshills/langbridge/internal/semtok"
)

// tokenSource returns a scripted sequence of full results.
type tokenSource struct {
	results [][]uint32
	calls   int
}

func (s *tokenSource) ProvideDocumentSemanticTokens(context.Context, extapi.Document) (*extapi.SemanticTokens, error) {
	data := s.results[s.calls]
	s.calls++
	return &extapi.SemanticTokens{Data: data}, nil
}

// editingTokenSource answers edit requests itself.
type editingTokenSource struct {
	tokenSource
	previousIDs []string
}

func (s *editingTokenSource) ProvideDocumentSemanticTokens(ctx context.Context, doc extapi.Document) (*extapi.SemanticTokens, error) {
	t, err := s.tokenSource.ProvideDocumentSemanticTokens(ctx, doc)
	t.ResultID = "r1"
	return t, err
}

func (s *editingTokenSource) ProvideDocumentSemanticTokensEdits(_ context.Context, _ extapi.Document, previousResultID string) (extapi.SemanticTokensResult, error) {
	s.previousIDs = append(s.previousIDs, previousResultID)
	return &extapi.SemanticTokensEdits{
		ResultID: "r2",
		Edits:    []extapi.SemanticTokensEdit{{Start: 0, DeleteCount: 1, Data: []uint32{9}}},
	}, nil
}

func decodeTokens(t *testing.T, buf []byte) semtok.DTO {
	t.Helper()
	if buf == nil {
		t.Fatal("Expected a token buffer, got nil")
	}
	dto, err := semtok.Decode(buf)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	return dto
}

func TestSemanticTokens_DeltaRoundTrip(t *testing.T) {
	te := newTestEnv(t)
	te.docs.add(testURI, "package main")

	first := []uint32{0, 0, 7, 1, 0, 0, 8, 4, 2, 0}
	second := []uint32{0, 0, 7, 1, 0, 1, 0, 4, 2, 0}
	third := append([]uint32{}, second...)
	source := &tokenSource{results: [][]uint32{first, second, third}}
	te.lf.RegisterDocumentSemanticTokensProvider(testExt, nil, source, extapi.SemanticTokensLegend{TokenTypes: []string{"keyword"}})
	reg := te.remote.last().reg
	if reg.Legend == nil || reg.Legend.TokenTypes[0] != "keyword" {
		t.Errorf("Expected legend on registration, got %+v", reg.Legend)
	}
	if reg.SupportsEdits {
		t.Error("Plain provider must not announce edits")
	}
	ctx := context.Background()

	buf, err := te.lf.ProvideDocumentSemanticTokens(ctx, reg.Handle, testURI, 0)
	if err != nil {
		t.Fatal(err)
	}
	full := decodeTokens(t, buf)
	if full.Kind != semtok.KindFull {
		t.Fatalf("First result must be full, got %s", full.Kind)
	}
	if !reflect.DeepEqual(full.Data, first) {
		t.Errorf("Expected %v, got %v", first, full.Data)
	}

	buf, err = te.lf.ProvideDocumentSemanticTokens(ctx, reg.Handle, testURI, full.ID)
	if err != nil {
		t.Fatal(err)
	}
	delta := decodeTokens(t, buf)
	if delta.Kind != semtok.KindDelta {
		t.Fatalf("Expected delta, got %s", delta.Kind)
	}
	if delta.ID == full.ID {
		t.Error("Expected a fresh result id")
	}
	applied, err := semtok.Apply(first, delta.Deltas)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(applied, second) {
		t.Errorf("Applying delta gave %v, want %v", applied, second)
	}

	// The full buffer behind the delta is retained, so an unchanged third
	// result diffs to no edits.
	buf, err = te.lf.ProvideDocumentSemanticTokens(ctx, reg.Handle, testURI, delta.ID)
	if err != nil {
		t.Fatal(err)
	}
	same := decodeTokens(t, buf)
	if same.Kind != semtok.KindDelta || len(same.Deltas) != 0 {
		t.Errorf("Expected empty delta, got %+v", same)
	}
}

func TestSemanticTokens_UnknownPreviousIsFull(t *testing.T) {
	te := newTestEnv(t)
	te.docs.add(testURI, "package main")
	source := &tokenSource{results: [][]uint32{{1, 2, 3, 4, 5}, {1, 2, 3, 4, 5}}}
	te.lf.RegisterDocumentSemanticTokensProvider(testExt, nil, source, extapi.SemanticTokensLegend{})
	handle := te.remote.last().reg.Handle
	ctx := context.Background()

	buf, _ := te.lf.ProvideDocumentSemanticTokens(ctx, handle, testURI, 0)
	first := decodeTokens(t, buf)

	te.lf.ReleaseDocumentSemanticTokens(handle, first.ID)
	buf, _ = te.lf.ProvideDocumentSemanticTokens(ctx, handle, testURI, first.ID)
	if got := decodeTokens(t, buf); got.Kind != semtok.KindFull {
		t.Errorf("Expected full result after release, got %s", got.Kind)
	}
}

func TestSemanticTokens_ProviderEdits(t *testing.T) {
	te := newTestEnv(t)
	te.docs.add(testURI, "package main")
	source := &editingTokenSource{tokenSource: tokenSource{results: [][]uint32{{1, 2, 3, 4, 5}}}}
	te.lf.RegisterDocumentSemanticTokensProvider(testExt, nil, source, extapi.SemanticTokensLegend{})
	reg := te.remote.last().reg
	if !reg.SupportsEdits {
		t.Error("Expected SupportsEdits")
	}
	ctx := context.Background()

	buf, _ := te.lf.ProvideDocumentSemanticTokens(ctx, reg.Handle, testURI, 0)
	first := decodeTokens(t, buf)

	buf, _ = te.lf.ProvideDocumentSemanticTokens(ctx, reg.Handle, testURI, first.ID)
	second := decodeTokens(t, buf)
	if second.Kind != semtok.KindDelta || len(second.Deltas) != 1 {
		t.Fatalf("Expected provider delta, got %+v", second)
	}
	if len(source.previousIDs) != 1 || source.previousIDs[0] != "r1" {
		t.Errorf("Expected edits request for r1, got %v", source.previousIDs)
	}
}

func TestSemanticTokens_NilResult(t *testing.T) {
	te := newTestEnv(t)
	te.docs.add(testURI, "package main")
	te.lf.RegisterDocumentSemanticTokensProvider(testExt, nil, nilTokens{}, extapi.SemanticTokensLegend{})
	handle := te.remote.last().reg.Handle

	buf, err := te.lf.ProvideDocumentSemanticTokens(context.Background(), handle, testURI, 0)
	if err != nil || buf != nil {
		t.Errorf("Expected nil buffer, got %v, %v", buf, err)
	}
}

type nilTokens struct{}

func (nilTokens) ProvideDocumentSemanticTokens(context.Context, extapi.Document) (*extapi.SemanticTokens, error) {
	return nil, nil
}

type rangeTokens struct{}

func (rangeTokens) ProvideDocumentRangeSemanticTokens(context.Context, extapi.Document, extapi.Range) (*extapi.SemanticTokens, error) {
	return &extapi.SemanticTokens{Data: []uint32{0, 1, 2, 3, 4}}, nil
}

func TestRangeSemanticTokens_EncodedFullWithZeroID(t *testing.T) {
	te := newTestEnv(t)
	te.docs.add(testURI, "package main")
	te.lf.RegisterDocumentRangeSemanticTokensProvider(testExt, nil, rangeTokens{}, extapi.SemanticTokensLegend{})
	handle := te.remote.last().reg.Handle

	buf, err := te.lf.ProvideDocumentRangeSemanticTokens(context.Background(), handle, testURI, rng(0, 0, 0, 7))
	if err != nil {
		t.Fatal(err)
	}
	dto := decodeTokens(t, buf)
	if dto.Kind != semtok.KindFull || dto.ID != 0 {
		t.Errorf("Expected full result with id 0, got %+v", dto)
	}
}
