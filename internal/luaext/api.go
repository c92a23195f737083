package luaext

import (
	"context"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/langbridge/internal/bridge"
	"github.com/dshills/langbridge/internal/dispose"
	"github.com/dshills/langbridge/internal/extapi"
)

// ModuleName is the name scripts require.
const ModuleName = "langbridge"

var (
	symbolKindNames = []string{
		"File", "Module", "Namespace", "Package", "Class", "Method", "Property",
		"Field", "Constructor", "Enum", "Interface", "Function", "Variable",
		"Constant", "String", "Number", "Boolean", "Array", "Object", "Key",
		"Null", "EnumMember", "Struct", "Event", "Operator", "TypeParameter",
	}
	completionKindNames = []string{
		"Method", "Function", "Constructor", "Field", "Variable", "Class",
		"Struct", "Interface", "Module", "Property", "Event", "Operator",
		"Unit", "Value", "Constant", "Enum", "EnumMember", "Keyword", "Text",
		"Color", "File", "Reference", "CustomColor", "Folder", "TypeParameter",
		"User", "Issue", "Snippet",
	}
	severityNames  = []string{"Error", "Warning", "Information", "Hint"}
	highlightNames = []string{"Text", "Read", "Write"}
	inlayKindNames = []string{"Other", "Type", "Parameter"}
)

// registerFunc registers p with the bridge. opts is the optional third
// argument and may be nil.
type registerFunc func(sel extapi.DocumentSelector, p luaProvider, opts *lua.LTable) dispose.Disposable

// module builds the langbridge table for ext.
func (e *Extension) module(L *lua.LState) *lua.LTable {
	lf := e.host.features
	info := e.info

	mod := L.NewTable()
	L.SetFuncs(mod, map[string]lua.LGFunction{
		"registerHoverProvider": e.registrar(func(sel extapi.DocumentSelector, p luaProvider, _ *lua.LTable) dispose.Disposable {
			return lf.RegisterHoverProvider(info, sel, hoverProvider{p})
		}),
		"registerDefinitionProvider": e.registrar(func(sel extapi.DocumentSelector, p luaProvider, _ *lua.LTable) dispose.Disposable {
			return lf.RegisterDefinitionProvider(info, sel, definitionProvider{p})
		}),
		"registerReferenceProvider": e.registrar(func(sel extapi.DocumentSelector, p luaProvider, _ *lua.LTable) dispose.Disposable {
			return lf.RegisterReferenceProvider(info, sel, referenceProvider{p})
		}),
		"registerDocumentHighlightProvider": e.registrar(func(sel extapi.DocumentSelector, p luaProvider, _ *lua.LTable) dispose.Disposable {
			return lf.RegisterDocumentHighlightProvider(info, sel, highlightProvider{p})
		}),
		"registerDocumentSymbolProvider": e.registrar(func(sel extapi.DocumentSelector, p luaProvider, opts *lua.LTable) dispose.Disposable {
			return lf.RegisterDocumentSymbolProvider(info, sel, symbolProvider{p}, optString(opts, "displayName", info.DisplayName))
		}),
		"registerCompletionItemProvider": e.registrar(func(sel extapi.DocumentSelector, p luaProvider, opts *lua.LTable) dispose.Disposable {
			return lf.RegisterCompletionItemProvider(info, sel, completionProvider{p}, optStrings(opts, "triggerCharacters"))
		}),
		"registerFoldingRangeProvider": e.registrar(func(sel extapi.DocumentSelector, p luaProvider, _ *lua.LTable) dispose.Disposable {
			return lf.RegisterFoldingRangeProvider(info, sel, foldingProvider{p})
		}),
		"registerDocumentFormattingEditProvider": e.registrar(func(sel extapi.DocumentSelector, p luaProvider, _ *lua.LTable) dispose.Disposable {
			return lf.RegisterDocumentFormattingEditProvider(info, sel, formattingProvider{p})
		}),
		"registerCodeLensProvider": e.registrar(func(sel extapi.DocumentSelector, p luaProvider, _ *lua.LTable) dispose.Disposable {
			return lf.RegisterCodeLensProvider(info, sel, codeLensProvider{p})
		}),
		"registerCodeActionProvider": e.registrar(func(sel extapi.DocumentSelector, p luaProvider, opts *lua.LTable) dispose.Disposable {
			meta := bridge.CodeActionMetadata{DisplayName: optString(opts, "displayName", info.DisplayName)}
			for _, k := range optStrings(opts, "providedKinds") {
				meta.ProvidedKinds = append(meta.ProvidedKinds, extapi.CodeActionKind(k))
			}
			return lf.RegisterCodeActionProvider(info, sel, codeActionProvider{p}, meta)
		}),
		"registerSignatureHelpProvider": e.registrar(func(sel extapi.DocumentSelector, p luaProvider, opts *lua.LTable) dispose.Disposable {
			return lf.RegisterSignatureHelpProvider(info, sel, signatureHelpProvider{p}, bridge.SignatureHelpMetadata{
				TriggerCharacters:   optStrings(opts, "triggerCharacters"),
				RetriggerCharacters: optStrings(opts, "retriggerCharacters"),
			})
		}),
		"registerInlayHintsProvider": e.registrar(func(sel extapi.DocumentSelector, p luaProvider, _ *lua.LTable) dispose.Disposable {
			return lf.RegisterInlayHintsProvider(info, sel, inlayHintsProvider{p})
		}),
		"registerRenameProvider": e.registrar(func(sel extapi.DocumentSelector, p luaProvider, opts *lua.LTable) dispose.Disposable {
			if opts != nil {
				if prepare, ok := opts.RawGetString("prepare").(*lua.LFunction); ok {
					return lf.RegisterRenameProvider(info, sel, preparingRenameProvider{
						renameProvider: renameProvider{p},
						prepare:        luaProvider{state: p.state, fn: prepare},
					})
				}
			}
			return lf.RegisterRenameProvider(info, sel, renameProvider{p})
		}),

		"registerCommand":  e.registerCommand,
		"setDiagnostics":   e.setDiagnostics,
		"clearDiagnostics": e.clearDiagnostics,
		"getDiagnostics":   e.getDiagnostics,
		"log":              e.luaLog,
	})

	mod.RawSetString("extensionId", lua.LString(info.ID))
	mod.RawSetString("SymbolKind", enumNames(L, int(extapi.SymbolKindFile), symbolKindNames...))
	mod.RawSetString("CompletionItemKind", enumNames(L, int(extapi.CompletionKindMethod), completionKindNames...))
	mod.RawSetString("DiagnosticSeverity", enumNames(L, int(extapi.SeverityError), severityNames...))
	mod.RawSetString("DocumentHighlightKind", enumNames(L, int(extapi.HighlightText), highlightNames...))
	mod.RawSetString("InlayHintKind", enumNames(L, int(extapi.InlayHintKindOther), inlayKindNames...))
	return mod
}

// registrar adapts register to the (selector, fn [, options]) calling
// convention. The registration is owned by the extension and the script
// gets a handle with a dispose method.
func (e *Extension) registrar(register registerFunc) lua.LGFunction {
	return func(L *lua.LState) int {
		sel, err := decodeSelector(L.CheckAny(1))
		if err != nil {
			L.ArgError(1, err.Error())
			return 0
		}
		fn := L.CheckFunction(2)
		opts, _ := L.Get(3).(*lua.LTable)

		d := register(sel, luaProvider{state: e.state, fn: fn}, opts)
		L.Push(disposableToLua(L, e.disposables.Add(dispose.Once(d.Dispose))))
		return 1
	}
}

func disposableToLua(L *lua.LState, d dispose.Disposable) *lua.LTable {
	t := L.CreateTable(0, 1)
	t.RawSetString("dispose", L.NewFunction(func(*lua.LState) int {
		d.Dispose()
		return 0
	}))
	return t
}

func (e *Extension) registerCommand(L *lua.LState) int {
	id := L.CheckString(1)
	fn := L.CheckFunction(2)

	d, err := e.host.commands.Register(e.info.ID, id, func(ctx context.Context, args ...any) (result any, err error) {
		err = e.state.Invoke(ctx, fn, func(L *lua.LState) []lua.LValue {
			values := make([]lua.LValue, len(args))
			for i, a := range args {
				values[i] = toLua(L, a)
			}
			return values
		}, func(ret lua.LValue) error {
			result = toGo(ret)
			return nil
		})
		return result, err
	})
	if err != nil {
		L.RaiseError("registerCommand %q: %v", id, err)
		return 0
	}
	L.Push(disposableToLua(L, e.disposables.Add(dispose.Once(d.Dispose))))
	return 1
}

func (e *Extension) setDiagnostics(L *lua.LState) int {
	uri := L.CheckString(1)
	diags, err := decodeDiagnostics(L.Get(2))
	if err != nil {
		L.ArgError(2, err.Error())
		return 0
	}
	for i := range diags {
		if diags[i].Source == "" {
			diags[i].Source = e.info.DisplayName
		}
	}
	e.host.diagnostics.Set(e.info.ID, extapi.URI(uri), diags)
	return 0
}

// clearDiagnostics removes the diagnostics of one document, or of all
// documents when called without a uri.
func (e *Extension) clearDiagnostics(L *lua.LState) int {
	if L.GetTop() == 0 || L.Get(1) == lua.LNil {
		e.host.diagnostics.Clear(e.info.ID)
		return 0
	}
	e.host.diagnostics.Delete(e.info.ID, extapi.URI(L.CheckString(1)))
	return 0
}

func (e *Extension) getDiagnostics(L *lua.LState) int {
	diags := e.host.diagnostics.Diagnostics(extapi.URI(L.CheckString(1)))
	t := L.CreateTable(len(diags), 0)
	for i, d := range diags {
		t.RawSetInt(i+1, diagnosticToLua(L, d))
	}
	L.Push(t)
	return 1
}

// luaLog implements log([level,] message).
func (e *Extension) luaLog(L *lua.LState) int {
	level, msg := "info", L.CheckString(1)
	if L.GetTop() >= 2 {
		level, msg = msg, L.CheckString(2)
	}
	switch level {
	case "debug":
		e.log.Debug("%s", msg)
	case "warn":
		e.log.Warn("%s", msg)
	case "error":
		e.log.Error("%s", msg)
	default:
		e.log.Info("%s", msg)
	}
	return 0
}

func optString(opts *lua.LTable, key, fallback string) string {
	if opts == nil {
		return fallback
	}
	if s := getString(opts, key); s != "" {
		return s
	}
	return fallback
}

func optStrings(opts *lua.LTable, key string) []string {
	if opts == nil {
		return nil
	}
	var out []string
	for _, e := range elements(opts.RawGetString(key)) {
		if s, ok := e.(lua.LString); ok {
			out = append(out, string(s))
		}
	}
	return out
}
