package luaext

import (
	"context"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/langbridge/internal/extapi"
)

// luaProvider is a Lua function serving one provider method.
type luaProvider struct {
	state *State
	fn    *lua.LFunction
}

func (p luaProvider) call(ctx context.Context, args func(L *lua.LState) []lua.LValue, decode func(ret lua.LValue) error) error {
	return p.state.Invoke(ctx, p.fn, args, decode)
}

// docPos builds the (doc, pos) arguments most providers take.
func docPos(doc extapi.Document, pos extapi.Position, extra ...func(L *lua.LState) lua.LValue) func(L *lua.LState) []lua.LValue {
	return func(L *lua.LState) []lua.LValue {
		args := []lua.LValue{documentToLua(L, doc), positionToLua(L, pos)}
		for _, e := range extra {
			args = append(args, e(L))
		}
		return args
	}
}

func docOnly(doc extapi.Document) func(L *lua.LState) []lua.LValue {
	return func(L *lua.LState) []lua.LValue {
		return []lua.LValue{documentToLua(L, doc)}
	}
}

type hoverProvider struct{ luaProvider }

func (p hoverProvider) ProvideHover(ctx context.Context, doc extapi.Document, pos extapi.Position, hctx *extapi.HoverContext) (hover *extapi.Hover, err error) {
	verbosity := func(L *lua.LState) lua.LValue {
		t := L.CreateTable(0, 2)
		if hctx != nil {
			t.RawSetString("verbosityDelta", lua.LNumber(hctx.VerbosityDelta))
			if hctx.PreviousHover != nil {
				t.RawSetString("previousHover", hoverToLua(L, hctx.PreviousHover))
			}
		}
		return t
	}
	err = p.call(ctx, docPos(doc, pos, verbosity), func(ret lua.LValue) error {
		hover, err = decodeHover(ret)
		return err
	})
	return hover, err
}

type definitionProvider struct{ luaProvider }

func (p definitionProvider) ProvideDefinition(ctx context.Context, doc extapi.Document, pos extapi.Position) (links []extapi.LocationLink, err error) {
	err = p.call(ctx, docPos(doc, pos), func(ret lua.LValue) error {
		locs, err := decodeLocations(ret)
		links = extapi.LinksFromLocations(locs)
		return err
	})
	return links, err
}

type referenceProvider struct{ luaProvider }

func (p referenceProvider) ProvideReferences(ctx context.Context, doc extapi.Document, pos extapi.Position, rctx extapi.ReferenceContext) (locs []extapi.Location, err error) {
	refCtx := func(L *lua.LState) lua.LValue {
		t := L.CreateTable(0, 1)
		t.RawSetString("includeDeclaration", lua.LBool(rctx.IncludeDeclaration))
		return t
	}
	err = p.call(ctx, docPos(doc, pos, refCtx), func(ret lua.LValue) error {
		locs, err = decodeLocations(ret)
		return err
	})
	return locs, err
}

type highlightProvider struct{ luaProvider }

func (p highlightProvider) ProvideDocumentHighlights(ctx context.Context, doc extapi.Document, pos extapi.Position) (hl []extapi.DocumentHighlight, err error) {
	err = p.call(ctx, docPos(doc, pos), func(ret lua.LValue) error {
		hl, err = decodeHighlights(ret)
		return err
	})
	return hl, err
}

type symbolProvider struct{ luaProvider }

func (p symbolProvider) ProvideDocumentSymbols(ctx context.Context, doc extapi.Document) (syms *extapi.DocumentSymbols, err error) {
	err = p.call(ctx, docOnly(doc), func(ret lua.LValue) error {
		syms, err = decodeSymbols(ret)
		return err
	})
	return syms, err
}

type completionProvider struct{ luaProvider }

func (p completionProvider) ProvideCompletionItems(ctx context.Context, doc extapi.Document, pos extapi.Position, cctx extapi.CompletionContext) (list *extapi.CompletionList, err error) {
	trigger := func(L *lua.LState) lua.LValue {
		t := L.CreateTable(0, 2)
		t.RawSetString("triggerKind", lua.LNumber(cctx.TriggerKind))
		t.RawSetString("triggerCharacter", lua.LString(cctx.TriggerCharacter))
		return t
	}
	err = p.call(ctx, docPos(doc, pos, trigger), func(ret lua.LValue) error {
		list, err = decodeCompletions(ret)
		return err
	})
	return list, err
}

type foldingProvider struct{ luaProvider }

func (p foldingProvider) ProvideFoldingRanges(ctx context.Context, doc extapi.Document) (ranges []extapi.FoldingRange, err error) {
	err = p.call(ctx, docOnly(doc), func(ret lua.LValue) error {
		ranges, err = decodeFoldingRanges(ret)
		return err
	})
	return ranges, err
}

type formattingProvider struct{ luaProvider }

func (p formattingProvider) ProvideDocumentFormattingEdits(ctx context.Context, doc extapi.Document, opts extapi.FormattingOptions) (edits []extapi.TextEdit, err error) {
	args := func(L *lua.LState) []lua.LValue {
		o := L.CreateTable(0, 2)
		o.RawSetString("tabSize", lua.LNumber(opts.TabSize))
		o.RawSetString("insertSpaces", lua.LBool(opts.InsertSpaces))
		return []lua.LValue{documentToLua(L, doc), o}
	}
	err = p.call(ctx, args, func(ret lua.LValue) error {
		edits, err = decodeTextEdits("edit", ret)
		return err
	})
	return edits, err
}

type codeLensProvider struct{ luaProvider }

func (p codeLensProvider) ProvideCodeLenses(ctx context.Context, doc extapi.Document) (lenses []*extapi.CodeLens, err error) {
	err = p.call(ctx, docOnly(doc), func(ret lua.LValue) error {
		lenses, err = decodeCodeLenses(ret)
		return err
	})
	return lenses, err
}

type codeActionProvider struct{ luaProvider }

func (p codeActionProvider) ProvideCodeActions(ctx context.Context, doc extapi.Document, rng extapi.Range, cctx extapi.CodeActionContext) (actions []extapi.CodeActionOrCommand, err error) {
	args := func(L *lua.LState) []lua.LValue {
		diags := L.CreateTable(len(cctx.Diagnostics), 0)
		for i, d := range cctx.Diagnostics {
			diags.RawSetInt(i+1, diagnosticToLua(L, d))
		}
		c := L.CreateTable(0, 3)
		c.RawSetString("diagnostics", diags)
		c.RawSetString("only", lua.LString(cctx.Only))
		c.RawSetString("triggerKind", lua.LNumber(cctx.TriggerKind))
		return []lua.LValue{documentToLua(L, doc), rangeToLua(L, rng), c}
	}
	err = p.call(ctx, args, func(ret lua.LValue) error {
		actions, err = decodeCodeActions(ret)
		return err
	})
	return actions, err
}

type signatureHelpProvider struct{ luaProvider }

func (p signatureHelpProvider) ProvideSignatureHelp(ctx context.Context, doc extapi.Document, pos extapi.Position, sctx extapi.SignatureHelpContext) (help *extapi.SignatureHelp, err error) {
	helpCtx := func(L *lua.LState) lua.LValue {
		t := L.CreateTable(0, 4)
		t.RawSetString("triggerKind", lua.LNumber(sctx.TriggerKind))
		t.RawSetString("triggerCharacter", lua.LString(sctx.TriggerCharacter))
		t.RawSetString("isRetrigger", lua.LBool(sctx.IsRetrigger))
		if sctx.ActiveSignatureHelp != nil {
			t.RawSetString("activeSignatureHelp", signatureHelpToLua(L, sctx.ActiveSignatureHelp))
		}
		return t
	}
	err = p.call(ctx, docPos(doc, pos, helpCtx), func(ret lua.LValue) error {
		help, err = decodeSignatureHelp(ret)
		return err
	})
	return help, err
}

type inlayHintsProvider struct{ luaProvider }

func (p inlayHintsProvider) ProvideInlayHints(ctx context.Context, doc extapi.Document, rng extapi.Range) (hints []*extapi.InlayHint, err error) {
	args := func(L *lua.LState) []lua.LValue {
		return []lua.LValue{documentToLua(L, doc), rangeToLua(L, rng)}
	}
	err = p.call(ctx, args, func(ret lua.LValue) error {
		hints, err = decodeInlayHints(ret)
		return err
	})
	return hints, err
}

type renameProvider struct{ luaProvider }

func (p renameProvider) ProvideRenameEdits(ctx context.Context, doc extapi.Document, pos extapi.Position, newName string) (edit *extapi.WorkspaceEdit, err error) {
	name := func(*lua.LState) lua.LValue { return lua.LString(newName) }
	err = p.call(ctx, docPos(doc, pos, name), func(ret lua.LValue) error {
		edit, err = decodeRenameEdits(ret)
		return err
	})
	return edit, err
}

// preparingRenameProvider also validates rename locations.
type preparingRenameProvider struct {
	renameProvider
	prepare luaProvider
}

func (p preparingRenameProvider) PrepareRename(ctx context.Context, doc extapi.Document, pos extapi.Position) (loc *extapi.RenameLocation, err error) {
	err = p.prepare.call(ctx, docPos(doc, pos), func(ret lua.LValue) error {
		loc, err = decodeRenameLocation(ret)
		return err
	})
	return loc, err
}
