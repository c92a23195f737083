package bridge

import (
	"context"
	"fmt"
	"testing"

	"github.com/dshills/langbridge/internal/extapi"
	"github.com/dshills/langbridge/internal/protocol"
)

func TestHover_RangeDefaultsToWord(t *testing.T) {
	te := newTestEnv(t)
	te.docs.add(testURI, "func main() {}")
	te.lf.RegisterHoverProvider(testExt, nil, hoverFunc(func(context.Context, extapi.Document, extapi.Position, *extapi.HoverContext) (*extapi.Hover, error) {
		return &extapi.Hover{Contents: []extapi.MarkdownString{extapi.Markdown("entry point")}}, nil
	}))
	handle := te.remote.last().reg.Handle

	h, err := te.lf.ProvideHover(context.Background(), handle, testURI, pos(0, 6), nil)
	if err != nil || h == nil {
		t.Fatalf("ProvideHover = %v, %v", h, err)
	}
	if h.Range == nil || *h.Range != rng(0, 5, 0, 9) {
		t.Errorf("Expected word range 0:5-0:9, got %v", h.Range)
	}
	if h.Contents[0].Value != "entry point" {
		t.Errorf("Unexpected contents %v", h.Contents)
	}
}

func TestHover_EmptyContentsIsNoResult(t *testing.T) {
	te := newTestEnv(t)
	te.docs.add(testURI, "x")
	te.lf.RegisterHoverProvider(testExt, nil, hoverFunc(func(context.Context, extapi.Document, extapi.Position, *extapi.HoverContext) (*extapi.Hover, error) {
		return &extapi.Hover{}, nil
	}))
	handle := te.remote.last().reg.Handle

	h, err := te.lf.ProvideHover(context.Background(), handle, testURI, pos(0, 0), nil)
	if err != nil || h != nil {
		t.Errorf("Expected nil hover, got %v, %v", h, err)
	}
}

func TestHover_VerbosityPassesPreviousHover(t *testing.T) {
	te := newTestEnv(t)
	te.docs.add(testURI, "var answer = 42")

	var seen *extapi.HoverContext
	level := 0
	te.lf.RegisterHoverProvider(testExt, nil, hoverFunc(func(_ context.Context, _ extapi.Document, _ extapi.Position, hctx *extapi.HoverContext) (*extapi.Hover, error) {
		seen = hctx
		if hctx != nil {
			level += hctx.VerbosityDelta
		}
		return &extapi.Hover{
			Contents:             []extapi.MarkdownString{extapi.Markdown(fmt.Sprintf("level %d", level))},
			CanIncreaseVerbosity: true,
		}, nil
	}))
	handle := te.remote.last().reg.Handle
	ctx := context.Background()

	first, err := te.lf.ProvideHover(ctx, handle, testURI, pos(0, 5), nil)
	if err != nil || first == nil {
		t.Fatalf("ProvideHover = %v, %v", first, err)
	}
	if seen != nil {
		t.Error("Expected no hover context on the first request")
	}

	req := &protocol.HoverContext{VerbosityRequest: &protocol.HoverVerbosityRequest{VerbosityDelta: 1, PreviousHoverID: first.ID}}
	second, err := te.lf.ProvideHover(ctx, handle, testURI, pos(0, 5), req)
	if err != nil || second == nil {
		t.Fatalf("ProvideHover = %v, %v", second, err)
	}
	if seen == nil || seen.PreviousHover == nil || seen.PreviousHover.Contents[0].Value != "level 0" {
		t.Errorf("Expected previous hover to be passed, got %+v", seen)
	}
	if second.ID == first.ID {
		t.Error("Expected a new hover id")
	}
	if second.Contents[0].Value != "level 1" || !second.CanIncreaseVerbosity {
		t.Errorf("Unexpected hover %+v", second)
	}
}

func TestHover_UnknownPreviousIsUsageError(t *testing.T) {
	te := newTestEnv(t)
	te.docs.add(testURI, "x")
	te.lf.RegisterHoverProvider(testExt, nil, hoverFunc(func(context.Context, extapi.Document, extapi.Position, *extapi.HoverContext) (*extapi.Hover, error) {
		t.Error("provider must not run for an unknown hover")
		return nil, nil
	}))
	handle := te.remote.last().reg.Handle

	req := &protocol.HoverContext{VerbosityRequest: &protocol.HoverVerbosityRequest{VerbosityDelta: 1, PreviousHoverID: 99}}
	h, err := te.lf.ProvideHover(context.Background(), handle, testURI, pos(0, 0), req)
	if h != nil {
		t.Errorf("Expected nil hover, got %v", h)
	}
	if !IsUsageError(err) {
		t.Errorf("Expected usage error, got %v", err)
	}
	if te.telemetry.count() != 0 {
		t.Error("Usage errors must not be reported to telemetry")
	}
}

func TestHover_HistoryEvictsOldest(t *testing.T) {
	te := newTestEnv(t, WithHoverHistory(2))
	te.docs.add(testURI, "x")
	te.lf.RegisterHoverProvider(testExt, nil, hoverFunc(func(context.Context, extapi.Document, extapi.Position, *extapi.HoverContext) (*extapi.Hover, error) {
		return &extapi.Hover{Contents: []extapi.MarkdownString{extapi.Markdown("x")}}, nil
	}))
	handle := te.remote.last().reg.Handle
	ctx := context.Background()

	var ids []int
	for i := 0; i < 3; i++ {
		h, err := te.lf.ProvideHover(ctx, handle, testURI, pos(0, 0), nil)
		if err != nil || h == nil {
			t.Fatalf("ProvideHover = %v, %v", h, err)
		}
		ids = append(ids, h.ID)
	}

	verbose := func(id int) error {
		req := &protocol.HoverContext{VerbosityRequest: &protocol.HoverVerbosityRequest{VerbosityDelta: 1, PreviousHoverID: id}}
		_, err := te.lf.ProvideHover(ctx, handle, testURI, pos(0, 0), req)
		return err
	}
	if err := verbose(ids[0]); !IsUsageError(err) {
		t.Errorf("Expected evicted hover %d to be unknown, got %v", ids[0], err)
	}
	if err := verbose(ids[2]); err != nil {
		t.Errorf("Expected hover %d to be kept, got %v", ids[2], err)
	}

	te.lf.ReleaseHover(handle, ids[2])
	if err := verbose(ids[2]); !IsUsageError(err) {
		t.Errorf("Expected released hover to be unknown, got %v", err)
	}
}
