package luaext

import (
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/langbridge/internal/extapi"
)

func positionToLua(L *lua.LState, p extapi.Position) *lua.LTable {
	t := L.CreateTable(0, 2)
	t.RawSetString("line", lua.LNumber(p.Line))
	t.RawSetString("character", lua.LNumber(p.Character))
	return t
}

func rangeToLua(L *lua.LState, r extapi.Range) *lua.LTable {
	t := L.CreateTable(0, 2)
	t.RawSetString("start", positionToLua(L, r.Start))
	t.RawSetString("end", positionToLua(L, r.End))
	return t
}

// documentToLua exposes doc to a script. The functions close over the
// document snapshot of the current request.
func documentToLua(L *lua.LState, doc extapi.Document) *lua.LTable {
	t := L.CreateTable(0, 8)
	t.RawSetString("uri", lua.LString(doc.URI()))
	t.RawSetString("languageId", lua.LString(doc.LanguageID()))
	t.RawSetString("version", lua.LNumber(doc.Version()))
	t.RawSetString("lineCount", lua.LNumber(doc.LineCount()))

	t.RawSetString("lineAt", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(doc.LineAt(L.CheckInt(1))))
		return 1
	}))
	t.RawSetString("getText", L.NewFunction(func(L *lua.LState) int {
		if L.GetTop() == 0 || L.Get(1) == lua.LNil {
			L.Push(lua.LString(doc.Text()))
			return 1
		}
		rng, err := decodeRange("range", L.Get(1))
		if err != nil {
			L.ArgError(1, err.Error())
			return 0
		}
		L.Push(lua.LString(doc.GetText(rng)))
		return 1
	}))
	t.RawSetString("wordAt", L.NewFunction(func(L *lua.LState) int {
		pos, err := decodePosition("position", L.Get(1))
		if err != nil {
			L.ArgError(1, err.Error())
			return 0
		}
		rng, ok := doc.WordRangeAtPosition(pos, nil)
		if !ok {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LString(doc.GetText(rng)))
		L.Push(rangeToLua(L, rng))
		return 2
	}))
	return t
}

func decodePosition(field string, lv lua.LValue) (extapi.Position, error) {
	t, err := checkTable(field, lv)
	if err != nil {
		return extapi.Position{}, err
	}
	line, okLine := getInt(t, "line")
	char, okChar := getInt(t, "character")
	if !okLine || !okChar {
		return extapi.Position{}, &ValueError{Field: field, Expected: "{line, character}", Got: "table"}
	}
	return extapi.NewPosition(line, char), nil
}

// decodeRange accepts {start, end} or {l1, c1, l2, c2}.
func decodeRange(field string, lv lua.LValue) (extapi.Range, error) {
	t, err := checkTable(field, lv)
	if err != nil {
		return extapi.Range{}, err
	}
	if start := t.RawGetString("start"); start != lua.LNil {
		s, err := decodePosition(field+".start", start)
		if err != nil {
			return extapi.Range{}, err
		}
		e, err := decodePosition(field+".end", t.RawGetString("end"))
		if err != nil {
			return extapi.Range{}, err
		}
		return extapi.RangeFrom(s, e), nil
	}
	var n [4]int
	for i := range n {
		v, ok := t.RawGetInt(i + 1).(lua.LNumber)
		if !ok {
			return extapi.Range{}, &ValueError{Field: field, Expected: "{start, end} or {l1, c1, l2, c2}", Got: "table"}
		}
		n[i] = int(v)
	}
	return extapi.NewRange(n[0], n[1], n[2], n[3]), nil
}

func decodeOptionalRange(field string, t *lua.LTable, key string) (*extapi.Range, error) {
	lv := t.RawGetString(key)
	if lv == lua.LNil {
		return nil, nil
	}
	r, err := decodeRange(field+"."+key, lv)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// decodeSelector accepts a language id, a filter table or a list of both.
func decodeSelector(lv lua.LValue) (extapi.DocumentSelector, error) {
	var sel extapi.DocumentSelector
	for i, e := range elements(lv) {
		switch v := e.(type) {
		case lua.LString:
			sel = append(sel, extapi.DocumentFilter{Language: string(v)})
		case *lua.LTable:
			sel = append(sel, extapi.DocumentFilter{
				Language: getString(v, "language"),
				Scheme:   getString(v, "scheme"),
				Pattern:  getString(v, "pattern"),
			})
		default:
			return nil, &ValueError{Field: fmt.Sprintf("selector[%d]", i+1), Expected: "string or table", Got: typeName(e)}
		}
	}
	return sel, nil
}

func decodeMarkdown(field string, lv lua.LValue) ([]extapi.MarkdownString, error) {
	var out []extapi.MarkdownString
	for i, e := range elements(lv) {
		s, ok := e.(lua.LString)
		if !ok {
			return nil, &ValueError{Field: fmt.Sprintf("%s[%d]", field, i+1), Expected: "string", Got: typeName(e)}
		}
		out = append(out, extapi.Markdown(string(s)))
	}
	return out, nil
}

func optionalMarkdown(t *lua.LTable, key string) *extapi.MarkdownString {
	if s := getString(t, key); s != "" {
		md := extapi.Markdown(s)
		return &md
	}
	return nil
}

// decodeHover accepts a string or {contents, range}.
func decodeHover(lv lua.LValue) (*extapi.Hover, error) {
	switch v := lv.(type) {
	case *lua.LNilType:
		return nil, nil
	case lua.LString:
		return &extapi.Hover{Contents: []extapi.MarkdownString{extapi.Markdown(string(v))}}, nil
	case *lua.LTable:
		contents, err := decodeMarkdown("hover.contents", v.RawGetString("contents"))
		if err != nil {
			return nil, err
		}
		rng, err := decodeOptionalRange("hover", v, "range")
		if err != nil {
			return nil, err
		}
		return &extapi.Hover{Contents: contents, Range: rng}, nil
	default:
		return nil, &ValueError{Field: "hover", Expected: "string or table", Got: typeName(lv)}
	}
}

func decodeLocation(field string, lv lua.LValue) (extapi.Location, error) {
	t, err := checkTable(field, lv)
	if err != nil {
		return extapi.Location{}, err
	}
	uri := getString(t, "uri")
	if uri == "" {
		return extapi.Location{}, &ValueError{Field: field + ".uri", Expected: "string", Got: typeName(t.RawGetString("uri"))}
	}
	rng, err := decodeRange(field+".range", t.RawGetString("range"))
	if err != nil {
		return extapi.Location{}, err
	}
	return extapi.Location{URI: extapi.URI(uri), Range: rng}, nil
}

func decodeLocations(lv lua.LValue) ([]extapi.Location, error) {
	items := elements(lv)
	out := make([]extapi.Location, 0, len(items))
	for i, e := range items {
		loc, err := decodeLocation(fmt.Sprintf("location[%d]", i+1), e)
		if err != nil {
			return nil, err
		}
		out = append(out, loc)
	}
	return out, nil
}

func decodeHighlights(lv lua.LValue) ([]extapi.DocumentHighlight, error) {
	items := elements(lv)
	out := make([]extapi.DocumentHighlight, 0, len(items))
	for i, e := range items {
		field := fmt.Sprintf("highlight[%d]", i+1)
		t, err := checkTable(field, e)
		if err != nil {
			return nil, err
		}
		rng, err := decodeRange(field+".range", t.RawGetString("range"))
		if err != nil {
			return nil, err
		}
		kind, _ := getInt(t, "kind")
		out = append(out, extapi.DocumentHighlight{Range: rng, Kind: extapi.DocumentHighlightKind(kind)})
	}
	return out, nil
}

func decodeSymbol(field string, lv lua.LValue) (*extapi.DocumentSymbol, error) {
	t, err := checkTable(field, lv)
	if err != nil {
		return nil, err
	}
	rng, err := decodeRange(field+".range", t.RawGetString("range"))
	if err != nil {
		return nil, err
	}
	sel := rng
	if r, err := decodeOptionalRange(field, t, "selectionRange"); err != nil {
		return nil, err
	} else if r != nil {
		sel = *r
	}
	kind, _ := getInt(t, "kind")
	sym := &extapi.DocumentSymbol{
		Name:           getString(t, "name"),
		Detail:         getString(t, "detail"),
		Kind:           extapi.SymbolKind(kind),
		Range:          rng,
		SelectionRange: sel,
	}
	for i, c := range elements(t.RawGetString("children")) {
		child, err := decodeSymbol(fmt.Sprintf("%s.children[%d]", field, i+1), c)
		if err != nil {
			return nil, err
		}
		sym.Children = append(sym.Children, child)
	}
	return sym, nil
}

func decodeSymbols(lv lua.LValue) (*extapi.DocumentSymbols, error) {
	if lv == lua.LNil {
		return nil, nil
	}
	var tree []*extapi.DocumentSymbol
	for i, e := range elements(lv) {
		sym, err := decodeSymbol(fmt.Sprintf("symbol[%d]", i+1), e)
		if err != nil {
			return nil, err
		}
		tree = append(tree, sym)
	}
	return &extapi.DocumentSymbols{Tree: tree}, nil
}

func decodeCompletionItem(field string, lv lua.LValue) (*extapi.CompletionItem, error) {
	if s, ok := lv.(lua.LString); ok {
		return &extapi.CompletionItem{Label: string(s)}, nil
	}
	t, err := checkTable(field, lv)
	if err != nil {
		return nil, err
	}
	kind, _ := getInt(t, "kind")
	item := &extapi.CompletionItem{
		Label:         getString(t, "label"),
		Kind:          extapi.CompletionItemKind(kind),
		Detail:        getString(t, "detail"),
		Documentation: optionalMarkdown(t, "documentation"),
		SortText:      getString(t, "sortText"),
		FilterText:    getString(t, "filterText"),
		InsertText:    getString(t, "insertText"),
		Preselect:     getBool(t, "preselect"),
	}
	if item.Label == "" {
		return nil, &ValueError{Field: field + ".label", Expected: "string", Got: typeName(t.RawGetString("label"))}
	}
	if item.Range, err = decodeOptionalRange(field, t, "range"); err != nil {
		return nil, err
	}
	if cmd := t.RawGetString("command"); cmd != lua.LNil {
		if item.Command, err = decodeCommand(field+".command", cmd); err != nil {
			return nil, err
		}
	}
	return item, nil
}

// decodeCompletions accepts a list of items or {items, isIncomplete}.
func decodeCompletions(lv lua.LValue) (*extapi.CompletionList, error) {
	if lv == lua.LNil {
		return nil, nil
	}
	list := &extapi.CompletionList{}
	items := lv
	if t, ok := lv.(*lua.LTable); ok && t.RawGetString("items") != lua.LNil {
		items = t.RawGetString("items")
		list.IsIncomplete = getBool(t, "isIncomplete")
	}
	for i, e := range elements(items) {
		item, err := decodeCompletionItem(fmt.Sprintf("completion[%d]", i+1), e)
		if err != nil {
			return nil, err
		}
		list.Items = append(list.Items, item)
	}
	return list, nil
}

func decodeFoldingRanges(lv lua.LValue) ([]extapi.FoldingRange, error) {
	items := elements(lv)
	out := make([]extapi.FoldingRange, 0, len(items))
	for i, e := range items {
		field := fmt.Sprintf("foldingRange[%d]", i+1)
		t, err := checkTable(field, e)
		if err != nil {
			return nil, err
		}
		start, okStart := getInt(t, "start")
		end, okEnd := getInt(t, "end")
		if !okStart || !okEnd {
			return nil, &ValueError{Field: field, Expected: "{start, end}", Got: "table"}
		}
		out = append(out, extapi.FoldingRange{Start: start, End: end, Kind: extapi.FoldingRangeKind(getString(t, "kind"))})
	}
	return out, nil
}

func decodeTextEdits(field string, lv lua.LValue) ([]extapi.TextEdit, error) {
	items := elements(lv)
	out := make([]extapi.TextEdit, 0, len(items))
	for i, e := range items {
		f := fmt.Sprintf("%s[%d]", field, i+1)
		t, err := checkTable(f, e)
		if err != nil {
			return nil, err
		}
		rng, err := decodeRange(f+".range", t.RawGetString("range"))
		if err != nil {
			return nil, err
		}
		out = append(out, extapi.TextEdit{Range: rng, NewText: getString(t, "newText")})
	}
	return out, nil
}

// decodeWorkspaceEdit reads {[uri] = edits}. Entries are sorted by uri.
func decodeWorkspaceEdit(field string, lv lua.LValue) (*extapi.WorkspaceEdit, error) {
	t, err := checkTable(field, lv)
	if err != nil {
		return nil, err
	}
	var uris []string
	t.ForEach(func(k, _ lua.LValue) {
		if s, ok := k.(lua.LString); ok {
			uris = append(uris, string(s))
		}
	})
	sort.Strings(uris)

	we := &extapi.WorkspaceEdit{}
	for _, uri := range uris {
		edits, err := decodeTextEdits(field+"."+uri, t.RawGetString(uri))
		if err != nil {
			return nil, err
		}
		we.Entries = append(we.Entries, extapi.WorkspaceEditEntry{URI: extapi.URI(uri), Edits: edits})
	}
	return we, nil
}

func decodeCommand(field string, lv lua.LValue) (*extapi.Command, error) {
	t, err := checkTable(field, lv)
	if err != nil {
		return nil, err
	}
	cmd := &extapi.Command{
		Title:   getString(t, "title"),
		Command: getString(t, "command"),
		Tooltip: getString(t, "tooltip"),
	}
	if cmd.Command == "" {
		return nil, &ValueError{Field: field + ".command", Expected: "string", Got: typeName(t.RawGetString("command"))}
	}
	if args, ok := toGo(t.RawGetString("arguments")).([]any); ok {
		cmd.Arguments = args
	}
	return cmd, nil
}

func decodeCodeLenses(lv lua.LValue) ([]*extapi.CodeLens, error) {
	items := elements(lv)
	out := make([]*extapi.CodeLens, 0, len(items))
	for i, e := range items {
		field := fmt.Sprintf("codeLens[%d]", i+1)
		t, err := checkTable(field, e)
		if err != nil {
			return nil, err
		}
		rng, err := decodeRange(field+".range", t.RawGetString("range"))
		if err != nil {
			return nil, err
		}
		lens := &extapi.CodeLens{Range: rng}
		if c := t.RawGetString("command"); c != lua.LNil {
			if lens.Command, err = decodeCommand(field+".command", c); err != nil {
				return nil, err
			}
		}
		out = append(out, lens)
	}
	return out, nil
}

// decodeCodeActions reads a list of actions and commands. An entry whose
// command member is a string is a plain command.
func decodeCodeActions(lv lua.LValue) ([]extapi.CodeActionOrCommand, error) {
	items := elements(lv)
	out := make([]extapi.CodeActionOrCommand, 0, len(items))
	for i, e := range items {
		field := fmt.Sprintf("codeAction[%d]", i+1)
		t, err := checkTable(field, e)
		if err != nil {
			return nil, err
		}
		if _, isCommand := t.RawGetString("command").(lua.LString); isCommand {
			cmd, err := decodeCommand(field, t)
			if err != nil {
				return nil, err
			}
			out = append(out, cmd)
			continue
		}
		action := &extapi.CodeAction{
			Title:       getString(t, "title"),
			Kind:        extapi.CodeActionKind(getString(t, "kind")),
			IsPreferred: getBool(t, "isPreferred"),
			Disabled:    getString(t, "disabled"),
		}
		if edit := t.RawGetString("edit"); edit != lua.LNil {
			if action.Edit, err = decodeWorkspaceEdit(field+".edit", edit); err != nil {
				return nil, err
			}
		}
		if c := t.RawGetString("command"); c != lua.LNil {
			if action.Command, err = decodeCommand(field+".command", c); err != nil {
				return nil, err
			}
		}
		out = append(out, action)
	}
	return out, nil
}

func diagnosticToLua(L *lua.LState, d extapi.Diagnostic) *lua.LTable {
	t := L.CreateTable(0, 5)
	t.RawSetString("range", rangeToLua(L, d.Range))
	t.RawSetString("message", lua.LString(d.Message))
	t.RawSetString("severity", lua.LNumber(d.Severity))
	t.RawSetString("source", lua.LString(d.Source))
	t.RawSetString("code", lua.LString(d.Code))
	return t
}

func decodeDiagnostics(lv lua.LValue) ([]extapi.Diagnostic, error) {
	items := elements(lv)
	out := make([]extapi.Diagnostic, 0, len(items))
	for i, e := range items {
		field := fmt.Sprintf("diagnostic[%d]", i+1)
		t, err := checkTable(field, e)
		if err != nil {
			return nil, err
		}
		rng, err := decodeRange(field+".range", t.RawGetString("range"))
		if err != nil {
			return nil, err
		}
		sev, ok := getInt(t, "severity")
		if !ok {
			sev = int(extapi.SeverityError)
		}
		out = append(out, extapi.Diagnostic{
			Range:    rng,
			Message:  getString(t, "message"),
			Severity: extapi.DiagnosticSeverity(sev),
			Source:   getString(t, "source"),
			Code:     getString(t, "code"),
		})
	}
	return out, nil
}

func hoverToLua(L *lua.LState, h *extapi.Hover) *lua.LTable {
	contents := L.CreateTable(len(h.Contents), 0)
	for i, c := range h.Contents {
		contents.RawSetInt(i+1, lua.LString(c.Value))
	}
	t := L.CreateTable(0, 2)
	t.RawSetString("contents", contents)
	if h.Range != nil {
		t.RawSetString("range", rangeToLua(L, *h.Range))
	}
	return t
}

func signatureHelpToLua(L *lua.LState, h *extapi.SignatureHelp) *lua.LTable {
	sigs := L.CreateTable(len(h.Signatures), 0)
	for i, s := range h.Signatures {
		params := L.CreateTable(len(s.Parameters), 0)
		for j, p := range s.Parameters {
			params.RawSetInt(j+1, lua.LString(p.Label))
		}
		st := L.CreateTable(0, 2)
		st.RawSetString("label", lua.LString(s.Label))
		st.RawSetString("parameters", params)
		sigs.RawSetInt(i+1, st)
	}
	t := L.CreateTable(0, 3)
	t.RawSetString("signatures", sigs)
	t.RawSetString("activeSignature", lua.LNumber(h.ActiveSignature))
	t.RawSetString("activeParameter", lua.LNumber(h.ActiveParameter))
	return t
}

// decodeSignatureHelp reads {signatures, activeSignature, activeParameter}.
// A signature is a label string or {label, documentation, parameters}.
func decodeSignatureHelp(lv lua.LValue) (*extapi.SignatureHelp, error) {
	if lv == lua.LNil {
		return nil, nil
	}
	t, err := checkTable("signatureHelp", lv)
	if err != nil {
		return nil, err
	}
	help := &extapi.SignatureHelp{}
	help.ActiveSignature, _ = getInt(t, "activeSignature")
	help.ActiveParameter, _ = getInt(t, "activeParameter")
	for i, e := range elements(t.RawGetString("signatures")) {
		field := fmt.Sprintf("signatureHelp.signatures[%d]", i+1)
		if s, ok := e.(lua.LString); ok {
			help.Signatures = append(help.Signatures, extapi.SignatureInformation{Label: string(s)})
			continue
		}
		st, err := checkTable(field, e)
		if err != nil {
			return nil, err
		}
		sig := extapi.SignatureInformation{
			Label:         getString(st, "label"),
			Documentation: optionalMarkdown(st, "documentation"),
		}
		if sig.Label == "" {
			return nil, &ValueError{Field: field + ".label", Expected: "string", Got: typeName(st.RawGetString("label"))}
		}
		if n, ok := getInt(st, "activeParameter"); ok {
			sig.ActiveParameter = &n
		}
		for j, p := range elements(st.RawGetString("parameters")) {
			switch v := p.(type) {
			case lua.LString:
				sig.Parameters = append(sig.Parameters, extapi.ParameterInformation{Label: string(v)})
			case *lua.LTable:
				sig.Parameters = append(sig.Parameters, extapi.ParameterInformation{
					Label:         getString(v, "label"),
					Documentation: optionalMarkdown(v, "documentation"),
				})
			default:
				return nil, &ValueError{Field: fmt.Sprintf("%s.parameters[%d]", field, j+1), Expected: "string or table", Got: typeName(p)}
			}
		}
		help.Signatures = append(help.Signatures, sig)
	}
	return help, nil
}

func decodeInlayHints(lv lua.LValue) ([]*extapi.InlayHint, error) {
	items := elements(lv)
	out := make([]*extapi.InlayHint, 0, len(items))
	for i, e := range items {
		field := fmt.Sprintf("inlayHint[%d]", i+1)
		t, err := checkTable(field, e)
		if err != nil {
			return nil, err
		}
		p, err := decodePosition(field+".position", t.RawGetString("position"))
		if err != nil {
			return nil, err
		}
		kind, _ := getInt(t, "kind")
		out = append(out, &extapi.InlayHint{
			Position:     p,
			Label:        getString(t, "label"),
			Tooltip:      optionalMarkdown(t, "tooltip"),
			Kind:         extapi.InlayHintKind(kind),
			PaddingLeft:  getBool(t, "paddingLeft"),
			PaddingRight: getBool(t, "paddingRight"),
		})
	}
	return out, nil
}

// rejectReason returns the refusal carried by a {rejectReason = "..."} result.
func rejectReason(lv lua.LValue) error {
	if t, ok := lv.(*lua.LTable); ok {
		if reason := getString(t, "rejectReason"); reason != "" {
			return extapi.RejectRename(reason)
		}
	}
	return nil
}

// decodeRenameEdits reads a workspace edit or {rejectReason}.
func decodeRenameEdits(lv lua.LValue) (*extapi.WorkspaceEdit, error) {
	if lv == lua.LNil {
		return nil, nil
	}
	if err := rejectReason(lv); err != nil {
		return nil, err
	}
	return decodeWorkspaceEdit("rename", lv)
}

// decodeRenameLocation reads {range, placeholder}, a bare range or
// {rejectReason}.
func decodeRenameLocation(lv lua.LValue) (*extapi.RenameLocation, error) {
	if lv == lua.LNil {
		return nil, nil
	}
	if err := rejectReason(lv); err != nil {
		return nil, err
	}
	t, err := checkTable("renameLocation", lv)
	if err != nil {
		return nil, err
	}
	if r := t.RawGetString("range"); r != lua.LNil {
		rng, err := decodeRange("renameLocation.range", r)
		if err != nil {
			return nil, err
		}
		return &extapi.RenameLocation{Range: rng, Placeholder: getString(t, "placeholder")}, nil
	}
	rng, err := decodeRange("renameLocation", t)
	if err != nil {
		return nil, err
	}
	return &extapi.RenameLocation{Range: rng}, nil
}
