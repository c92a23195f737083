package bridge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dshills/langbridge/internal/extapi"
	"github.com/dshills/langbridge/internal/protocol"
)

// --- Completion ---

type completionFunc func(ctx context.Context, doc extapi.Document, pos extapi.Position, cctx extapi.CompletionContext) (*extapi.CompletionList, error)

func (f completionFunc) ProvideCompletionItems(ctx context.Context, doc extapi.Document, pos extapi.Position, cctx extapi.CompletionContext) (*extapi.CompletionList, error) {
	return f(ctx, doc, pos, cctx)
}

type resolvingCompletions struct {
	completionFunc
	resolve func(*extapi.CompletionItem) *extapi.CompletionItem
}

func (r resolvingCompletions) ResolveCompletionItem(_ context.Context, item *extapi.CompletionItem) (*extapi.CompletionItem, error) {
	return r.resolve(item), nil
}

func TestCompletion_DefaultRangesAndItems(t *testing.T) {
	te := newTestEnv(t)
	te.docs.add(testURI, "fmt.Pri")

	defaults := extapi.InsertReplaceRange{Inserting: extapi.NewRange(0, 4, 0, 5), Replacing: extapi.NewRange(0, 4, 0, 7)}
	other := extapi.InsertReplaceRange{Inserting: extapi.NewRange(0, 0, 0, 5), Replacing: extapi.NewRange(0, 0, 0, 7)}
	edit := extapi.TextEdit{Range: extapi.NewRange(0, 0, 0, 7), NewText: "fmt.Println"}

	te.lf.RegisterCompletionItemProvider(testExt, nil, completionFunc(func(context.Context, extapi.Document, extapi.Position, extapi.CompletionContext) (*extapi.CompletionList, error) {
		return &extapi.CompletionList{
			IsIncomplete: true,
			Items: []*extapi.CompletionItem{
				{Label: "Print", InsertText: "Print"},
				{Label: "Printf", InsertReplace: &defaults},
				{Label: "Println", InsertReplace: &other},
				{Label: "Sprint", InsertSnippet: &extapi.SnippetString{Value: "Sprint($0)"}, KeepWhitespace: true},
				nil,
				{Label: "Legacy", TextEdit: &edit},
			},
		}, nil
	}), []string{"."})
	reg := te.remote.last().reg
	if len(reg.TriggerCharacters) != 1 || reg.TriggerCharacters[0] != "." {
		t.Errorf("Unexpected trigger characters %v", reg.TriggerCharacters)
	}
	if reg.SupportsResolve {
		t.Error("Expected SupportsResolve to be false")
	}

	res, err := te.lf.ProvideCompletionItems(context.Background(), reg.Handle, testURI, pos(0, 5), protocol.CompletionContext{})
	if err != nil || res == nil {
		t.Fatalf("ProvideCompletionItems = %v, %v", res, err)
	}
	if res.DefaultRanges.Replace != rng(0, 4, 0, 7) || res.DefaultRanges.Insert != rng(0, 4, 0, 5) {
		t.Errorf("Unexpected default ranges %+v", res.DefaultRanges)
	}
	if !res.IsIncomplete {
		t.Error("Expected IsIncomplete")
	}
	if len(res.Items) != 5 {
		t.Fatalf("Expected 5 items, got %d", len(res.Items))
	}

	byLabel := make(map[string]protocol.CompletionItem)
	for _, item := range res.Items {
		byLabel[item.Label] = item
	}
	if it := byLabel["Print"]; it.Range != nil || it.InsertReplace != nil {
		t.Errorf("Expected Print to use default ranges, got %+v", it)
	}
	if it := byLabel["Printf"]; it.InsertReplace != nil {
		t.Errorf("Expected ranges equal to the defaults to be omitted, got %+v", it.InsertReplace)
	}
	if it := byLabel["Println"]; it.InsertReplace == nil || it.InsertReplace.Insert != rng(0, 0, 0, 5) {
		t.Errorf("Expected custom insert/replace ranges, got %+v", it.InsertReplace)
	}
	sprint := byLabel["Sprint"]
	if sprint.InsertText != "Sprint($0)" || sprint.InsertTextRules != protocol.InsertAsSnippet|protocol.KeepWhitespaceRule {
		t.Errorf("Unexpected snippet item %+v", sprint)
	}
	legacy := byLabel["Legacy"]
	if legacy.InsertText != "fmt.Println" || legacy.Range == nil || *legacy.Range != rng(0, 0, 0, 7) {
		t.Errorf("Unexpected text edit item %+v", legacy)
	}
	if legacy.CacheID != (protocol.ChainedCacheID{res.CacheID, 5}) {
		t.Errorf("Expected cache id [%d 5], got %v", res.CacheID, legacy.CacheID)
	}
	if !strings.Contains(te.logs.String(), "CompletionItem.TextEdit") {
		t.Error("Expected a deprecation warning")
	}

	resolved, err := te.lf.ResolveCompletionItem(context.Background(), reg.Handle, legacy.CacheID)
	if err != nil || resolved != nil {
		t.Errorf("Expected nil resolve without a resolver, got %v, %v", resolved, err)
	}
}

func TestCompletion_ResolveOnlyMergesAllowedFields(t *testing.T) {
	te := newTestEnv(t)
	te.docs.add(testURI, "fmt.Pri")

	provider := resolvingCompletions{
		completionFunc: func(context.Context, extapi.Document, extapi.Position, extapi.CompletionContext) (*extapi.CompletionList, error) {
			return &extapi.CompletionList{Items: []*extapi.CompletionItem{{Label: "Println", InsertText: "Println"}}}, nil
		},
		resolve: func(item *extapi.CompletionItem) *extapi.CompletionItem {
			doc := extapi.Markdown("prints a line")
			return &extapi.CompletionItem{
				Label:         item.Label,
				InsertText:    "Changed",
				Detail:        "func(a ...any)",
				Documentation: &doc,
			}
		},
	}
	te.lf.RegisterCompletionItemProvider(testExt, nil, provider, nil)
	reg := te.remote.last().reg
	if !reg.SupportsResolve {
		t.Error("Expected SupportsResolve")
	}
	ctx := context.Background()

	res, err := te.lf.ProvideCompletionItems(ctx, reg.Handle, testURI, pos(0, 7), protocol.CompletionContext{})
	if err != nil || res == nil {
		t.Fatalf("ProvideCompletionItems = %v, %v", res, err)
	}
	id := res.Items[0].CacheID

	item, err := te.lf.ResolveCompletionItem(ctx, reg.Handle, id)
	if err != nil || item == nil {
		t.Fatalf("ResolveCompletionItem = %v, %v", item, err)
	}
	if item.InsertText != "Println" {
		t.Errorf("Expected insert text to be kept, got %q", item.InsertText)
	}
	if item.Detail != "func(a ...any)" || item.Documentation == nil || item.Documentation.Value != "prints a line" {
		t.Errorf("Expected detail and documentation to be merged, got %+v", item)
	}
	if !strings.Contains(te.logs.String(), "changing insert text or range") {
		t.Error("Expected a warning about changed insert text")
	}

	te.lf.ReleaseCompletionItems(reg.Handle, res.CacheID)
	item, err = te.lf.ResolveCompletionItem(ctx, reg.Handle, id)
	if err != nil || item != nil {
		t.Errorf("Expected nil after release, got %v, %v", item, err)
	}
}

// --- Code actions ---

type codeActionsFunc func(ctx context.Context, doc extapi.Document, rng extapi.Range, cctx extapi.CodeActionContext) ([]extapi.CodeActionOrCommand, error)

func (f codeActionsFunc) ProvideCodeActions(ctx context.Context, doc extapi.Document, rng extapi.Range, cctx extapi.CodeActionContext) ([]extapi.CodeActionOrCommand, error) {
	return f(ctx, doc, rng, cctx)
}

type resolvingCodeActions struct {
	codeActionsFunc
}

func (resolvingCodeActions) ResolveCodeAction(_ context.Context, action *extapi.CodeAction) (*extapi.CodeAction, error) {
	edit := &extapi.WorkspaceEdit{}
	edit.Replace(extapi.URI(testURI), extapi.NewRange(0, 0, 0, 1), "y")
	return &extapi.CodeAction{Title: action.Title, Edit: edit, Command: &extapi.Command{Title: "After", Command: "acme.after"}}, nil
}

func TestCodeActions_WrapsCommandsAndCapsDiagnostics(t *testing.T) {
	te := newTestEnv(t, WithMaxCodeActionDiagnostics(2))
	te.docs.add(testURI, "x := 1\ny := 2\nz := 3")
	te.diags[extapi.URI(testURI)] = []extapi.Diagnostic{
		{Range: extapi.NewRange(0, 0, 0, 1), Message: "one"},
		{Range: extapi.NewRange(2, 0, 2, 1), Message: "elsewhere"},
		{Range: extapi.NewRange(0, 2, 0, 4), Message: "two"},
		{Range: extapi.NewRange(0, 5, 0, 6), Message: "three"},
	}

	var seen extapi.CodeActionContext
	te.lf.RegisterCodeActionProvider(testExt, nil, resolvingCodeActions{func(_ context.Context, _ extapi.Document, _ extapi.Range, cctx extapi.CodeActionContext) ([]extapi.CodeActionOrCommand, error) {
		seen = cctx
		return []extapi.CodeActionOrCommand{
			&extapi.Command{Title: "Run", Command: "acme.run"},
			&extapi.CodeAction{Title: "Fix", Kind: extapi.CodeActionQuickFix},
		}, nil
	}}, CodeActionMetadata{ProvidedKinds: []extapi.CodeActionKind{extapi.CodeActionQuickFix}})
	reg := te.remote.last().reg
	if len(reg.ProvidedCodeActionKinds) != 1 || reg.ProvidedCodeActionKinds[0] != "quickfix" || !reg.SupportsResolve {
		t.Errorf("Unexpected registration %+v", reg)
	}
	ctx := context.Background()

	list, err := te.lf.ProvideCodeActions(ctx, reg.Handle, testURI, rng(0, 0, 0, 6), protocol.CodeActionContext{Only: "quickfix"})
	if err != nil || list == nil {
		t.Fatalf("ProvideCodeActions = %v, %v", list, err)
	}
	if len(seen.Diagnostics) != 2 || seen.Diagnostics[0].Message != "one" || seen.Diagnostics[1].Message != "two" {
		t.Errorf("Expected the first two overlapping diagnostics, got %+v", seen.Diagnostics)
	}
	if seen.Only != extapi.CodeActionQuickFix {
		t.Errorf("Expected only quickfix, got %q", seen.Only)
	}
	if len(list.Actions) != 2 {
		t.Fatalf("Expected 2 actions, got %d", len(list.Actions))
	}

	synthetic := list.Actions[0]
	if !synthetic.IsSynthetic || synthetic.CacheID != nil || synthetic.Command == nil || synthetic.Command.ID != "acme.run" {
		t.Errorf("Unexpected synthetic action %+v", synthetic)
	}
	fix := list.Actions[1]
	if fix.IsSynthetic || fix.CacheID == nil || *fix.CacheID != (protocol.ChainedCacheID{list.CacheID, 1}) || fix.Kind != "quickfix" {
		t.Errorf("Unexpected code action %+v", fix)
	}

	res, err := te.lf.ResolveCodeAction(ctx, reg.Handle, *fix.CacheID)
	if err != nil || res == nil || res.Edit == nil || res.Command == nil || res.Command.ID != "acme.after" {
		t.Errorf("Unexpected resolution %+v, %v", res, err)
	}

	te.lf.ReleaseCodeActions(reg.Handle, list.CacheID)
	res, err = te.lf.ResolveCodeAction(ctx, reg.Handle, *fix.CacheID)
	if err != nil || res == nil || res.Edit != nil || res.Command != nil {
		t.Errorf("Expected empty resolution after release, got %+v, %v", res, err)
	}
}

func TestDiagnosticsFor_Limit(t *testing.T) {
	all := make([]extapi.Diagnostic, 1500)
	for i := range all {
		all[i] = extapi.Diagnostic{Range: extapi.NewRange(0, 0, 0, 1)}
	}
	got := diagnosticsFor(all, extapi.NewRange(0, 0, 0, 1), DefaultMaxCodeActionDiagnostics)
	if len(got) != DefaultMaxCodeActionDiagnostics {
		t.Errorf("Expected %d diagnostics, got %d", DefaultMaxCodeActionDiagnostics, len(got))
	}
}

// --- Rename ---

type renamer struct {
	err error
	loc *extapi.RenameLocation
}

func (r renamer) ProvideRenameEdits(_ context.Context, _ extapi.Document, _ extapi.Position, newName string) (*extapi.WorkspaceEdit, error) {
	if r.err != nil {
		return nil, r.err
	}
	edit := &extapi.WorkspaceEdit{}
	edit.Replace(extapi.URI(testURI), extapi.NewRange(0, 4, 0, 7), newName)
	return edit, nil
}

func (r renamer) PrepareRename(context.Context, extapi.Document, extapi.Position) (*extapi.RenameLocation, error) {
	return r.loc, r.err
}

func TestRename_ErrorBecomesRejectReason(t *testing.T) {
	te := newTestEnv(t)
	te.docs.add(testURI, "var foo = 1")
	te.lf.RegisterRenameProvider(testExt, nil, renamer{err: fmt.Errorf("prepare: %w", extapi.RejectRename("cannot rename a keyword"))})
	handle := te.remote.last().reg.Handle
	ctx := context.Background()

	edits, err := te.lf.ProvideRenameEdits(ctx, handle, testURI, pos(0, 1), "bar")
	if err != nil || edits == nil || edits.RejectReason != "cannot rename a keyword" {
		t.Errorf("Expected reject reason, got %+v, %v", edits, err)
	}
	loc, err := te.lf.ResolveRenameLocation(ctx, handle, testURI, pos(0, 1))
	if err != nil || loc == nil || loc.RejectReason != "cannot rename a keyword" {
		t.Errorf("Expected reject reason, got %+v, %v", loc, err)
	}
	if te.telemetry.count() != 0 {
		t.Error("Rejected renames must not be reported")
	}
}

func TestRename_FailureIsReported(t *testing.T) {
	te := newTestEnv(t)
	te.docs.add(testURI, "var foo = 1")
	te.telemetry.notify = make(chan struct{}, 2)
	te.lf.RegisterRenameProvider(testExt, nil, renamer{err: errors.New("runtime error: index out of range [3] with length 2")})
	handle := te.remote.last().reg.Handle
	ctx := context.Background()

	edits, err := te.lf.ProvideRenameEdits(ctx, handle, testURI, pos(0, 1), "bar")
	if err != nil || edits != nil {
		t.Errorf("Expected nil fallback, got %+v, %v", edits, err)
	}
	<-te.telemetry.notify
	if te.telemetry.count() != 1 {
		t.Errorf("Expected 1 telemetry report, got %d", te.telemetry.count())
	}

	loc, err := te.lf.ResolveRenameLocation(ctx, handle, testURI, pos(0, 1))
	if err != nil || loc != nil {
		t.Errorf("Expected nil fallback, got %+v, %v", loc, err)
	}
	<-te.telemetry.notify
	if te.telemetry.count() != 2 {
		t.Errorf("Expected 2 telemetry reports, got %d", te.telemetry.count())
	}
}

func TestRename_Edits(t *testing.T) {
	te := newTestEnv(t)
	te.docs.add(testURI, "var foo = 1")
	te.lf.RegisterRenameProvider(testExt, nil, renamer{})
	handle := te.remote.last().reg.Handle

	edits, err := te.lf.ProvideRenameEdits(context.Background(), handle, testURI, pos(0, 5), "bar")
	if err != nil || edits == nil || len(edits.Edits) != 1 || edits.RejectReason != "" {
		t.Errorf("Unexpected rename edits %+v, %v", edits, err)
	}
}

func TestRename_ResolveLocation(t *testing.T) {
	tests := []struct {
		name     string
		loc      *extapi.RenameLocation
		wantText string
	}{
		{"placeholder", &extapi.RenameLocation{Range: extapi.NewRange(0, 4, 0, 7), Placeholder: "fooBar"}, "fooBar"},
		{"document text", &extapi.RenameLocation{Range: extapi.NewRange(0, 4, 0, 7)}, "foo"},
		{"other line", &extapi.RenameLocation{Range: extapi.NewRange(1, 0, 1, 3)}, ""},
		{"empty", &extapi.RenameLocation{Range: extapi.NewRange(0, 4, 0, 4)}, ""},
		{"none", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			te := newTestEnv(t)
			te.docs.add(testURI, "var foo = 1\nbar")
			te.lf.RegisterRenameProvider(testExt, nil, renamer{loc: tt.loc})
			handle := te.remote.last().reg.Handle

			loc, err := te.lf.ResolveRenameLocation(context.Background(), handle, testURI, pos(0, 5))
			if err != nil {
				t.Fatal(err)
			}
			if tt.wantText == "" {
				if loc != nil {
					t.Errorf("Expected nil location, got %+v", loc)
				}
				return
			}
			if loc == nil || loc.Text != tt.wantText || loc.Range == nil {
				t.Errorf("Expected text %q, got %+v", tt.wantText, loc)
			}
		})
	}
}

// --- Signature help ---

type signatureFunc func(ctx context.Context, doc extapi.Document, pos extapi.Position, sctx extapi.SignatureHelpContext) (*extapi.SignatureHelp, error)

func (f signatureFunc) ProvideSignatureHelp(ctx context.Context, doc extapi.Document, pos extapi.Position, sctx extapi.SignatureHelpContext) (*extapi.SignatureHelp, error) {
	return f(ctx, doc, pos, sctx)
}

func TestSignatureHelp_RevivesCachedValue(t *testing.T) {
	te := newTestEnv(t)
	te.docs.add(testURI, "f(a, b)")

	var returned []*extapi.SignatureHelp
	var active []*extapi.SignatureHelp
	te.lf.RegisterSignatureHelpProvider(testExt, nil, signatureFunc(func(_ context.Context, _ extapi.Document, _ extapi.Position, sctx extapi.SignatureHelpContext) (*extapi.SignatureHelp, error) {
		active = append(active, sctx.ActiveSignatureHelp)
		h := &extapi.SignatureHelp{Signatures: []extapi.SignatureInformation{{Label: "f(a, b int)"}}}
		returned = append(returned, h)
		return h, nil
	}), SignatureHelpMetadata{TriggerCharacters: []string{"("}, RetriggerCharacters: []string{","}})
	reg := te.remote.last().reg
	if len(reg.RetriggerCharacters) != 1 || reg.RetriggerCharacters[0] != "," {
		t.Errorf("Unexpected retrigger characters %v", reg.RetriggerCharacters)
	}
	ctx := context.Background()

	first, err := te.lf.ProvideSignatureHelp(ctx, reg.Handle, testURI, pos(0, 2), protocol.SignatureHelpContext{})
	if err != nil || first == nil {
		t.Fatalf("ProvideSignatureHelp = %v, %v", first, err)
	}
	if active[0] != nil {
		t.Error("Expected no active help on first request")
	}

	retrigger := protocol.SignatureHelpContext{
		IsRetrigger:         true,
		ActiveSignatureHelp: &protocol.ActiveSignatureHelp{ID: first.ID, ActiveParameter: 1},
	}
	if _, err := te.lf.ProvideSignatureHelp(ctx, reg.Handle, testURI, pos(0, 5), retrigger); err != nil {
		t.Fatal(err)
	}
	if active[1] != returned[0] {
		t.Error("Expected the cached value to be handed back")
	}
	if active[1].ActiveParameter != 1 {
		t.Errorf("Expected active parameter 1, got %d", active[1].ActiveParameter)
	}

	te.lf.ReleaseSignatureHelp(reg.Handle, first.ID)
	if _, err := te.lf.ProvideSignatureHelp(ctx, reg.Handle, testURI, pos(0, 5), retrigger); err != nil {
		t.Fatal(err)
	}
	if active[2] == returned[0] || active[2].ActiveParameter != 1 {
		t.Errorf("Expected a fresh value after release, got %+v", active[2])
	}
}

func TestSignatureHelp_ConcurrentRevivalIsSerialized(t *testing.T) {
	te := newTestEnv(t)
	te.docs.add(testURI, "f(a, b, c, d, e, f, g, h)")

	var mismatches atomic.Int32
	te.lf.RegisterSignatureHelpProvider(testExt, nil, signatureFunc(func(_ context.Context, _ extapi.Document, p extapi.Position, sctx extapi.SignatureHelpContext) (*extapi.SignatureHelp, error) {
		if active := sctx.ActiveSignatureHelp; active != nil {
			time.Sleep(time.Millisecond)
			if active.ActiveParameter != p.Character {
				mismatches.Add(1)
			}
		}
		return &extapi.SignatureHelp{Signatures: []extapi.SignatureInformation{{Label: "f(...)"}}}, nil
	}), SignatureHelpMetadata{})
	handle := te.remote.last().reg.Handle
	ctx := context.Background()

	first, err := te.lf.ProvideSignatureHelp(ctx, handle, testURI, pos(0, 0), protocol.SignatureHelpContext{})
	if err != nil || first == nil {
		t.Fatalf("ProvideSignatureHelp = %v, %v", first, err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(param int) {
			defer wg.Done()
			sctx := protocol.SignatureHelpContext{
				IsRetrigger:         true,
				ActiveSignatureHelp: &protocol.ActiveSignatureHelp{ID: first.ID, ActiveParameter: param},
			}
			if _, err := te.lf.ProvideSignatureHelp(ctx, handle, testURI, pos(0, param), sctx); err != nil {
				t.Errorf("ProvideSignatureHelp(%d) error: %v", param, err)
			}
		}(i)
	}
	wg.Wait()

	if n := mismatches.Load(); n != 0 {
		t.Errorf("Expected each provider call to see its own active parameter, %d did not", n)
	}
}

// --- Inlay hints ---

type inlayFunc func(ctx context.Context, doc extapi.Document, rng extapi.Range) ([]*extapi.InlayHint, error)

func (f inlayFunc) ProvideInlayHints(ctx context.Context, doc extapi.Document, rng extapi.Range) ([]*extapi.InlayHint, error) {
	return f(ctx, doc, rng)
}

func TestInlayHints_DropsInvalidHints(t *testing.T) {
	te := newTestEnv(t)
	te.docs.add(testURI, "x := compute(1, 2)\ny := 3")
	te.lf.RegisterInlayHintsProvider(testExt, nil, inlayFunc(func(context.Context, extapi.Document, extapi.Range) ([]*extapi.InlayHint, error) {
		return []*extapi.InlayHint{
			{Position: extapi.NewPosition(0, 13), Label: "a:"},
			{Position: extapi.NewPosition(0, 16)},
			{Position: extapi.NewPosition(1, 0), Label: "outside"},
			nil,
			{Position: extapi.NewPosition(0, 1), LabelParts: []extapi.InlayHintLabelPart{{Value: "int"}}},
		}, nil
	}))
	handle := te.remote.last().reg.Handle

	list, err := te.lf.ProvideInlayHints(context.Background(), handle, testURI, rng(0, 0, 0, 18))
	if err != nil || list == nil {
		t.Fatalf("ProvideInlayHints = %v, %v", list, err)
	}
	if len(list.Hints) != 2 {
		t.Fatalf("Expected 2 hints, got %+v", list.Hints)
	}
	if list.Hints[0].Label != "a:" || list.Hints[0].CacheID != (protocol.ChainedCacheID{list.CacheID, 0}) {
		t.Errorf("Unexpected first hint %+v", list.Hints[0])
	}
	if len(list.Hints[1].LabelParts) != 1 || list.Hints[1].LabelParts[0].Label != "int" {
		t.Errorf("Unexpected label parts %+v", list.Hints[1])
	}
	if list.Hints[1].CacheID.Index() != 4 {
		t.Errorf("Expected index 4, got %d", list.Hints[1].CacheID.Index())
	}
}

// --- Links ---

type linksFunc func(ctx context.Context, doc extapi.Document) ([]*extapi.DocumentLink, error)

func (f linksFunc) ProvideDocumentLinks(ctx context.Context, doc extapi.Document) ([]*extapi.DocumentLink, error) {
	return f(ctx, doc)
}

func TestDocumentLinks_WithoutResolver(t *testing.T) {
	te := newTestEnv(t)
	te.docs.add(testURI, "// see https://go.dev")
	te.lf.RegisterDocumentLinkProvider(testExt, nil, linksFunc(func(context.Context, extapi.Document) ([]*extapi.DocumentLink, error) {
		return []*extapi.DocumentLink{
			{Range: extapi.NewRange(0, 7, 0, 21), Target: "https://go.dev"},
			{Range: extapi.NewRange(0, 0, 0, 2), Target: "https://" + strings.Repeat("a", maxLinkTarget)},
		}, nil
	}))
	handle := te.remote.last().reg.Handle

	list, err := te.lf.ProvideDocumentLinks(context.Background(), handle, testURI)
	if err != nil || list == nil {
		t.Fatalf("ProvideDocumentLinks = %v, %v", list, err)
	}
	if list.CacheID != nil {
		t.Errorf("Expected no cache id without a resolver, got %d", *list.CacheID)
	}
	if len(list.Links) != 1 || list.Links[0].URL != "https://go.dev" || list.Links[0].CacheID != nil {
		t.Errorf("Unexpected links %+v", list.Links)
	}
}

// --- Folding and selection ---

type foldingFunc func(ctx context.Context, doc extapi.Document) ([]extapi.FoldingRange, error)

func (f foldingFunc) ProvideFoldingRanges(ctx context.Context, doc extapi.Document) ([]extapi.FoldingRange, error) {
	return f(ctx, doc)
}

func TestFoldingRanges_DropsInvalid(t *testing.T) {
	te := newTestEnv(t)
	te.docs.add(testURI, "a\nb\nc\nd")
	te.lf.RegisterFoldingRangeProvider(testExt, nil, foldingFunc(func(context.Context, extapi.Document) ([]extapi.FoldingRange, error) {
		return []extapi.FoldingRange{{Start: 0, End: 2}, {Start: 3, End: 1}, {Start: -1, End: 2}, {Start: 1, End: 1}}, nil
	}))
	handle := te.remote.last().reg.Handle

	got, err := te.lf.ProvideFoldingRanges(context.Background(), handle, testURI)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].End != 2 || got[1].Start != 1 {
		t.Errorf("Unexpected ranges %+v", got)
	}
}

type selectionFunc func(ctx context.Context, doc extapi.Document, positions []extapi.Position) ([]*extapi.SelectionRange, error)

func (f selectionFunc) ProvideSelectionRanges(ctx context.Context, doc extapi.Document, positions []extapi.Position) ([]*extapi.SelectionRange, error) {
	return f(ctx, doc, positions)
}

func TestSelectionRanges(t *testing.T) {
	word := &extapi.SelectionRange{Range: extapi.NewRange(0, 4, 0, 7)}
	line := &extapi.SelectionRange{Range: extapi.NewRange(0, 0, 0, 11), Parent: nil}
	word.Parent = line
	broken := &extapi.SelectionRange{Range: extapi.NewRange(0, 4, 0, 7), Parent: &extapi.SelectionRange{Range: extapi.NewRange(0, 5, 0, 6)}}

	tests := []struct {
		name   string
		chains []*extapi.SelectionRange
		want   []int
	}{
		{"valid", []*extapi.SelectionRange{word}, []int{2}},
		{"not expanding", []*extapi.SelectionRange{broken}, nil},
		{"count mismatch", []*extapi.SelectionRange{word, word}, nil},
		{"empty", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			te := newTestEnv(t)
			te.docs.add(testURI, "var foo = 1")
			te.lf.RegisterSelectionRangeProvider(testExt, nil, selectionFunc(func(context.Context, extapi.Document, []extapi.Position) ([]*extapi.SelectionRange, error) {
				return tt.chains, nil
			}))
			handle := te.remote.last().reg.Handle

			got, err := te.lf.ProvideSelectionRanges(context.Background(), handle, testURI, []protocol.Position{pos(0, 5)})
			if err != nil {
				t.Fatal(err)
			}
			if got == nil {
				t.Fatal("Expected a non-nil result")
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %d chains, got %+v", len(tt.want), got)
			}
			for i, n := range tt.want {
				if len(got[i]) != n {
					t.Errorf("Chain %d: expected %d ranges, got %d", i, n, len(got[i]))
				}
			}
		})
	}
}

// --- Call hierarchy ---

type callGraph struct {
	root    *extapi.CallHierarchyItem
	callers []extapi.CallHierarchyIncomingCall
}

func (g *callGraph) PrepareCallHierarchy(context.Context, extapi.Document, extapi.Position) ([]*extapi.CallHierarchyItem, error) {
	return []*extapi.CallHierarchyItem{g.root}, nil
}

func (g *callGraph) ProvideCallHierarchyIncomingCalls(_ context.Context, item *extapi.CallHierarchyItem) ([]extapi.CallHierarchyIncomingCall, error) {
	if item != g.root {
		return nil, nil
	}
	return g.callers, nil
}

func (g *callGraph) ProvideCallHierarchyOutgoingCalls(context.Context, *extapi.CallHierarchyItem) ([]extapi.CallHierarchyOutgoingCall, error) {
	return []extapi.CallHierarchyOutgoingCall{}, nil
}

func TestCallHierarchy_Sessions(t *testing.T) {
	te := newTestEnv(t)
	te.docs.add(testURI, "func main() { run() }")
	graph := &callGraph{
		root: &extapi.CallHierarchyItem{Name: "run", URI: extapi.URI(testURI)},
		callers: []extapi.CallHierarchyIncomingCall{
			{From: &extapi.CallHierarchyItem{Name: "main", URI: extapi.URI(testURI)}, FromRanges: []extapi.Range{extapi.NewRange(0, 14, 0, 17)}},
			{From: nil},
		},
	}
	te.lf.RegisterCallHierarchyProvider(testExt, nil, graph)
	handle := te.remote.last().reg.Handle
	ctx := context.Background()

	items, err := te.lf.PrepareCallHierarchy(ctx, handle, testURI, pos(0, 15))
	if err != nil || len(items) != 1 {
		t.Fatalf("PrepareCallHierarchy = %v, %v", items, err)
	}
	root := items[0]
	if root.Name != "run" || root.SessionID == "" {
		t.Errorf("Unexpected item %+v", root)
	}

	calls, err := te.lf.ProvideCallHierarchyIncomingCalls(ctx, handle, root.SessionID, root.ItemID)
	if err != nil || len(calls) != 1 {
		t.Fatalf("ProvideCallHierarchyIncomingCalls = %v, %v", calls, err)
	}
	if calls[0].From.SessionID != root.SessionID || calls[0].From.ItemID == root.ItemID {
		t.Errorf("Expected caller in the same session with a new id, got %+v", calls[0].From)
	}
	if len(calls[0].FromRanges) != 1 {
		t.Errorf("Unexpected ranges %v", calls[0].FromRanges)
	}

	_, err = te.lf.ProvideCallHierarchyOutgoingCalls(ctx, handle, root.SessionID, "nope")
	if !IsUsageError(err) {
		t.Errorf("Expected usage error for unknown item, got %v", err)
	}

	again, _ := te.lf.PrepareCallHierarchy(ctx, handle, testURI, pos(0, 15))
	if len(again) != 1 || again[0].SessionID == root.SessionID {
		t.Error("Expected a new session per prepare")
	}

	te.lf.ReleaseCallHierarchy(handle, root.SessionID)
	_, err = te.lf.ProvideCallHierarchyIncomingCalls(ctx, handle, root.SessionID, root.ItemID)
	if !IsUsageError(err) {
		t.Errorf("Expected usage error after release, got %v", err)
	}
}

// --- Workspace symbols ---

type workspaceSymbolsFunc func(ctx context.Context, query string) ([]*extapi.SymbolInformation, error)

func (f workspaceSymbolsFunc) ProvideWorkspaceSymbols(ctx context.Context, query string) ([]*extapi.SymbolInformation, error) {
	return f(ctx, query)
}

func TestWorkspaceSymbols(t *testing.T) {
	te := newTestEnv(t)
	te.lf.RegisterWorkspaceSymbolProvider(testExt, workspaceSymbolsFunc(func(_ context.Context, query string) ([]*extapi.SymbolInformation, error) {
		if query == "" {
			return nil, nil
		}
		return []*extapi.SymbolInformation{flatSymbol("Handler", 1, 3), {Name: ""}}, nil
	}))
	handle := te.remote.last().reg.Handle
	ctx := context.Background()

	empty, err := te.lf.ProvideWorkspaceSymbols(ctx, handle, "")
	if err != nil || empty == nil || empty.Symbols == nil || len(empty.Symbols) != 0 {
		t.Errorf("Expected empty symbol list, got %+v, %v", empty, err)
	}

	got, err := te.lf.ProvideWorkspaceSymbols(ctx, handle, "Hand")
	if err != nil || got == nil || got.CacheID == nil {
		t.Fatalf("ProvideWorkspaceSymbols = %+v, %v", got, err)
	}
	if len(got.Symbols) != 1 || got.Symbols[0].Name != "Handler" {
		t.Errorf("Expected nameless symbols to be dropped, got %+v", got.Symbols)
	}
}

// --- Inline completions ---

type inlineProvider struct {
	list     *extapi.InlineCompletionList
	shown    []string
	accepted []int
	disposed []*extapi.InlineCompletionList
}

func (p *inlineProvider) ProvideInlineCompletionItems(context.Context, extapi.Document, extapi.Position, extapi.InlineCompletionContext) (*extapi.InlineCompletionList, error) {
	return p.list, nil
}

func (p *inlineProvider) HandleDidShowCompletionItem(item *extapi.InlineCompletionItem, updatedInsertText string) {
	p.shown = append(p.shown, item.InsertText+"|"+updatedInsertText)
}

func (p *inlineProvider) HandleDidPartiallyAcceptCompletionItem(_ *extapi.InlineCompletionItem, info extapi.PartialAcceptInfo) {
	p.accepted = append(p.accepted, info.AcceptedLength)
}

func (p *inlineProvider) DisposeInlineCompletions(list *extapi.InlineCompletionList) {
	p.disposed = append(p.disposed, list)
}

func TestInlineCompletions_Lifecycle(t *testing.T) {
	te := newTestEnv(t)
	te.docs.add(testURI, "fmt.")
	provider := &inlineProvider{list: &extapi.InlineCompletionList{
		Items: []*extapi.InlineCompletionItem{
			{InsertText: "Println()"},
			{InsertSnippet: &extapi.SnippetString{Value: "Printf(\"$1\")"}},
		},
		Commands: []*extapi.Command{{Title: "Settings", Command: "acme.settings"}},
	}}
	te.lf.RegisterInlineCompletionItemProvider(testExt, nil, provider)
	handle := te.remote.last().reg.Handle

	list, err := te.lf.ProvideInlineCompletions(context.Background(), handle, testURI, pos(0, 4), protocol.InlineCompletionContext{})
	if err != nil || list == nil {
		t.Fatalf("ProvideInlineCompletions = %v, %v", list, err)
	}
	if len(list.Items) != 2 || !list.Items[1].IsSnippet || list.Items[1].Idx != 1 {
		t.Errorf("Unexpected items %+v", list.Items)
	}
	if len(list.Commands) != 1 || list.Commands[0].ID != "acme.settings" {
		t.Errorf("Unexpected commands %+v", list.Commands)
	}

	te.lf.HandleInlineCompletionDidShow(handle, list.PID, 0, "Println()")
	te.lf.HandleInlineCompletionPartialAccept(handle, list.PID, 0, protocol.PartialAcceptInfo{AcceptedLength: 3})
	te.lf.HandleInlineCompletionDidShow(handle, list.PID, 7, "")
	if len(provider.shown) != 1 || provider.shown[0] != "Println()|Println()" {
		t.Errorf("Unexpected show events %v", provider.shown)
	}
	if len(provider.accepted) != 1 || provider.accepted[0] != 3 {
		t.Errorf("Unexpected accept events %v", provider.accepted)
	}

	te.lf.FreeInlineCompletionsList(handle, list.PID)
	te.lf.FreeInlineCompletionsList(handle, list.PID)
	if len(provider.disposed) != 1 || provider.disposed[0] != provider.list {
		t.Errorf("Expected a single dispose of the list, got %d", len(provider.disposed))
	}

	te.lf.HandleInlineCompletionDidShow(handle, list.PID, 0, "")
	if len(provider.shown) != 1 {
		t.Error("Events for a freed list must be ignored")
	}
}
