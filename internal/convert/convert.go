// Package convert translates between extension-facing values (package
// extapi) and wire DTOs (package protocol).
//
// Functions named after a type convert native values to the wire; functions
// prefixed with To convert wire values to native ones. Commands are not
// handled here because converting them needs a command service.
package convert

import (
	"github.com/dshills/langbridge/internal/extapi"
	"github.com/dshills/langbridge/internal/protocol"
)

// Position converts a native position.
func Position(p extapi.Position) protocol.Position {
	return protocol.Position{Line: p.Line, Character: p.Character}
}

// ToPosition converts a wire position.
func ToPosition(p protocol.Position) extapi.Position {
	return extapi.Position{Line: p.Line, Character: p.Character}
}

// ToPositions converts wire positions.
func ToPositions(ps []protocol.Position) []extapi.Position {
	out := make([]extapi.Position, len(ps))
	for i, p := range ps {
		out[i] = ToPosition(p)
	}
	return out
}

// Range converts a native range.
func Range(r extapi.Range) protocol.Range {
	return protocol.Range{Start: Position(r.Start), End: Position(r.End)}
}

// RangePtr converts an optional native range.
func RangePtr(r *extapi.Range) *protocol.Range {
	if r == nil {
		return nil
	}
	out := Range(*r)
	return &out
}

// Ranges converts native ranges.
func Ranges(rs []extapi.Range) []protocol.Range {
	out := make([]protocol.Range, len(rs))
	for i, r := range rs {
		out[i] = Range(r)
	}
	return out
}

// ToRange converts a wire range. Reversed ends are swapped.
func ToRange(r protocol.Range) extapi.Range {
	return extapi.RangeFrom(ToPosition(r.Start), ToPosition(r.End))
}

// ToRanges converts wire ranges.
func ToRanges(rs []protocol.Range) []extapi.Range {
	out := make([]extapi.Range, len(rs))
	for i, r := range rs {
		out[i] = ToRange(r)
	}
	return out
}

// Location converts a native location.
func Location(l extapi.Location) protocol.Location {
	return protocol.Location{URI: protocol.DocumentURI(l.URI), Range: Range(l.Range)}
}

// LocationPtr converts an optional native location.
func LocationPtr(l *extapi.Location) *protocol.Location {
	if l == nil {
		return nil
	}
	out := Location(*l)
	return &out
}

// Locations converts native locations.
func Locations(ls []extapi.Location) []protocol.Location {
	out := make([]protocol.Location, len(ls))
	for i, l := range ls {
		out[i] = Location(l)
	}
	return out
}

// LocationLinks converts native location links.
func LocationLinks(ls []extapi.LocationLink) []protocol.LocationLink {
	out := make([]protocol.LocationLink, len(ls))
	for i, l := range ls {
		out[i] = protocol.LocationLink{
			OriginSelectionRange: RangePtr(l.OriginSelectionRange),
			URI:                  protocol.DocumentURI(l.TargetURI),
			Range:                Range(l.TargetRange),
			TargetSelectionRange: RangePtr(l.TargetSelectionRange),
		}
	}
	return out
}

// TextEdit converts a native text edit.
func TextEdit(e extapi.TextEdit) protocol.TextEdit {
	return protocol.TextEdit{Range: Range(e.Range), NewText: e.NewText}
}

// TextEditPtr converts an optional native text edit.
func TextEditPtr(e *extapi.TextEdit) *protocol.TextEdit {
	if e == nil {
		return nil
	}
	out := TextEdit(*e)
	return &out
}

// TextEdits converts native text edits. Nil stays nil.
func TextEdits(es []extapi.TextEdit) []protocol.TextEdit {
	if es == nil {
		return nil
	}
	out := make([]protocol.TextEdit, len(es))
	for i, e := range es {
		out[i] = TextEdit(e)
	}
	return out
}

// WorkspaceEdit converts a native workspace edit. Nil stays nil.
func WorkspaceEdit(w *extapi.WorkspaceEdit) *protocol.WorkspaceEdit {
	if w == nil {
		return nil
	}
	return &protocol.WorkspaceEdit{Edits: WorkspaceTextEdits(w)}
}

// WorkspaceTextEdits flattens a native workspace edit.
func WorkspaceTextEdits(w *extapi.WorkspaceEdit) []protocol.WorkspaceTextEdit {
	out := make([]protocol.WorkspaceTextEdit, 0, w.Size())
	for _, entry := range w.Entries {
		for _, e := range entry.Edits {
			out = append(out, protocol.WorkspaceTextEdit{
				Resource: protocol.DocumentURI(entry.URI),
				TextEdit: TextEdit(e),
			})
		}
	}
	return out
}

// Markdown converts a native markdown string.
func Markdown(m extapi.MarkdownString) protocol.MarkdownString {
	return protocol.MarkdownString{Value: m.Value, IsTrusted: m.IsTrusted, SupportThemeIcons: m.SupportThemeIcons}
}

// MarkdownPtr converts an optional native markdown string.
func MarkdownPtr(m *extapi.MarkdownString) *protocol.MarkdownString {
	if m == nil {
		return nil
	}
	out := Markdown(*m)
	return &out
}

// Markdowns converts native markdown strings.
func Markdowns(ms []extapi.MarkdownString) []protocol.MarkdownString {
	out := make([]protocol.MarkdownString, len(ms))
	for i, m := range ms {
		out[i] = Markdown(m)
	}
	return out
}

// Diagnostic converts a native diagnostic.
func Diagnostic(d extapi.Diagnostic) protocol.Diagnostic {
	out := protocol.Diagnostic{
		Range:    Range(d.Range),
		Message:  d.Message,
		Severity: int(d.Severity),
		Source:   d.Source,
		Code:     d.Code,
	}
	for _, tag := range d.Tags {
		out.Tags = append(out.Tags, int(tag))
	}
	return out
}

// Diagnostics converts native diagnostics. Nil stays nil.
func Diagnostics(ds []extapi.Diagnostic) []protocol.Diagnostic {
	if ds == nil {
		return nil
	}
	out := make([]protocol.Diagnostic, len(ds))
	for i, d := range ds {
		out[i] = Diagnostic(d)
	}
	return out
}

// ToDiagnostic converts a wire diagnostic.
func ToDiagnostic(d protocol.Diagnostic) extapi.Diagnostic {
	out := extapi.Diagnostic{
		Range:    ToRange(d.Range),
		Message:  d.Message,
		Severity: extapi.DiagnosticSeverity(d.Severity),
		Source:   d.Source,
		Code:     d.Code,
	}
	for _, tag := range d.Tags {
		out.Tags = append(out.Tags, extapi.DiagnosticTag(tag))
	}
	return out
}

// SymbolTags converts native symbol tags.
func SymbolTags(tags []extapi.SymbolTag) []int {
	if len(tags) == 0 {
		return nil
	}
	out := make([]int, len(tags))
	for i, t := range tags {
		out[i] = int(t)
	}
	return out
}

// DocumentSymbol converts a native symbol tree.
func DocumentSymbol(s *extapi.DocumentSymbol) protocol.DocumentSymbol {
	out := protocol.DocumentSymbol{
		Name:           s.Name,
		Detail:         s.Detail,
		Kind:           int(s.Kind),
		Tags:           SymbolTags(s.Tags),
		Range:          Range(s.Range),
		SelectionRange: Range(s.SelectionRange),
	}
	if len(s.Children) > 0 {
		out.Children = make([]protocol.DocumentSymbol, 0, len(s.Children))
		for _, c := range s.Children {
			if c != nil {
				out.Children = append(out.Children, DocumentSymbol(c))
			}
		}
	}
	return out
}

// WorkspaceSymbol converts a native symbol information.
func WorkspaceSymbol(s *extapi.SymbolInformation) protocol.WorkspaceSymbol {
	return protocol.WorkspaceSymbol{
		Name:          s.Name,
		ContainerName: s.ContainerName,
		Kind:          int(s.Kind),
		Tags:          SymbolTags(s.Tags),
		Location:      Location(s.Location),
	}
}

// Hover converts a native hover. The id is assigned by the caller.
func Hover(h *extapi.Hover) protocol.Hover {
	return protocol.Hover{
		Contents:             Markdowns(h.Contents),
		Range:                RangePtr(h.Range),
		CanIncreaseVerbosity: h.CanIncreaseVerbosity,
		CanDecreaseVerbosity: h.CanDecreaseVerbosity,
	}
}

// EvaluatableExpression converts a native expression.
func EvaluatableExpression(e *extapi.EvaluatableExpression) *protocol.EvaluatableExpression {
	if e == nil {
		return nil
	}
	return &protocol.EvaluatableExpression{Range: Range(e.Range), Expression: e.Expression}
}

// InlineValue converts a native inline value.
func InlineValue(v extapi.InlineValue) protocol.InlineValue {
	out := protocol.InlineValue{Range: Range(v.Range)}
	switch v.Kind {
	case extapi.InlineValueVariableLookup:
		out.Type = protocol.InlineValueVariable
		out.VariableName = v.VariableName
		out.CaseSensitiveLookup = v.CaseSensitiveLookup
	case extapi.InlineValueEvaluatableExpression:
		out.Type = protocol.InlineValueExpression
		out.Expression = v.Expression
	default:
		out.Type = protocol.InlineValueText
		out.Text = v.Text
	}
	return out
}

// ToInlineValueContext converts a wire inline value context.
func ToInlineValueContext(c protocol.InlineValueContext) extapi.InlineValueContext {
	return extapi.InlineValueContext{FrameID: c.FrameID, StoppedLocation: ToRange(c.StoppedLocation)}
}

// DocumentHighlights converts native highlights.
func DocumentHighlights(hs []extapi.DocumentHighlight) []protocol.DocumentHighlight {
	out := make([]protocol.DocumentHighlight, len(hs))
	for i, h := range hs {
		out[i] = protocol.DocumentHighlight{Range: Range(h.Range), Kind: int(h.Kind)}
	}
	return out
}

// MultiDocumentHighlight converts a native per-document highlight group.
func MultiDocumentHighlight(m extapi.MultiDocumentHighlight) protocol.MultiDocumentHighlight {
	return protocol.MultiDocumentHighlight{
		URI:        protocol.DocumentURI(m.URI),
		Highlights: DocumentHighlights(m.Highlights),
	}
}

// ToFormattingOptions converts wire formatting options.
func ToFormattingOptions(o protocol.FormattingOptions) extapi.FormattingOptions {
	return extapi.FormattingOptions{TabSize: o.TabSize, InsertSpaces: o.InsertSpaces}
}

// SemanticTokensLegend converts a native legend.
func SemanticTokensLegend(l extapi.SemanticTokensLegend) *protocol.SemanticTokensLegend {
	return &protocol.SemanticTokensLegend{
		TokenTypes:     append([]string{}, l.TokenTypes...),
		TokenModifiers: append([]string{}, l.TokenModifiers...),
	}
}

// ToCompletionContext converts a wire completion context.
func ToCompletionContext(c protocol.CompletionContext) extapi.CompletionContext {
	return extapi.CompletionContext{
		TriggerKind:      extapi.CompletionTriggerKind(c.TriggerKind),
		TriggerCharacter: c.TriggerCharacter,
	}
}

// ToInlineCompletionContext converts a wire inline completion context.
func ToInlineCompletionContext(c protocol.InlineCompletionContext) extapi.InlineCompletionContext {
	out := extapi.InlineCompletionContext{TriggerKind: extapi.InlineCompletionTriggerKind(c.TriggerKind)}
	if c.SelectedSuggestionInfo != nil {
		out.SelectedCompletionInfo = &extapi.SelectedCompletionInfo{
			Range: ToRange(c.SelectedSuggestionInfo.Range),
			Text:  c.SelectedSuggestionInfo.Text,
		}
	}
	return out
}

// SignatureHelp converts native signature help. The id is assigned by the caller.
func SignatureHelp(h *extapi.SignatureHelp) protocol.SignatureHelp {
	out := protocol.SignatureHelp{
		Signatures:      make([]protocol.SignatureInformation, len(h.Signatures)),
		ActiveSignature: h.ActiveSignature,
		ActiveParameter: h.ActiveParameter,
	}
	for i, s := range h.Signatures {
		sig := protocol.SignatureInformation{
			Label:           s.Label,
			Documentation:   MarkdownPtr(s.Documentation),
			Parameters:      make([]protocol.ParameterInformation, len(s.Parameters)),
			ActiveParameter: s.ActiveParameter,
		}
		for j, p := range s.Parameters {
			sig.Parameters[j] = protocol.ParameterInformation{Label: p.Label, Documentation: MarkdownPtr(p.Documentation)}
		}
		out.Signatures[i] = sig
	}
	return out
}

// DocumentLink converts a native link. The cache id is assigned by the caller.
func DocumentLink(l *extapi.DocumentLink) protocol.DocumentLink {
	return protocol.DocumentLink{Range: Range(l.Range), URL: l.Target, Tooltip: l.Tooltip}
}

// Color converts a native color.
func Color(c extapi.Color) protocol.Color {
	return protocol.Color{Red: c.Red, Green: c.Green, Blue: c.Blue, Alpha: c.Alpha}
}

// ToColor converts a wire color.
func ToColor(c protocol.Color) extapi.Color {
	return extapi.Color{Red: c.Red, Green: c.Green, Blue: c.Blue, Alpha: c.Alpha}
}

// ColorInformation converts native color information.
func ColorInformation(ci []extapi.ColorInformation) []protocol.ColorInformation {
	out := make([]protocol.ColorInformation, len(ci))
	for i, c := range ci {
		out[i] = protocol.ColorInformation{Range: Range(c.Range), Color: Color(c.Color)}
	}
	return out
}

// ColorPresentations converts native color presentations.
func ColorPresentations(ps []extapi.ColorPresentation) []protocol.ColorPresentation {
	out := make([]protocol.ColorPresentation, len(ps))
	for i, p := range ps {
		out[i] = protocol.ColorPresentation{
			Label:               p.Label,
			TextEdit:            TextEditPtr(p.TextEdit),
			AdditionalTextEdits: TextEdits(p.AdditionalTextEdits),
		}
	}
	return out
}

// FoldingRange converts a native folding range.
func FoldingRange(f extapi.FoldingRange) protocol.FoldingRange {
	return protocol.FoldingRange{Start: f.Start, End: f.End, Kind: string(f.Kind)}
}

// CallHierarchyItem converts a native call hierarchy item, tagging it with
// the ids used to find it again.
func CallHierarchyItem(item *extapi.CallHierarchyItem, sessionID, itemID string) protocol.CallHierarchyItem {
	return protocol.CallHierarchyItem{
		SessionID:      sessionID,
		ItemID:         itemID,
		Name:           item.Name,
		Kind:           int(item.Kind),
		Tags:           SymbolTags(item.Tags),
		Detail:         item.Detail,
		URI:            protocol.DocumentURI(item.URI),
		Range:          Range(item.Range),
		SelectionRange: Range(item.SelectionRange),
	}
}

// TypeHierarchyItem converts a native type hierarchy item, tagging it with
// the ids used to find it again.
func TypeHierarchyItem(item *extapi.TypeHierarchyItem, sessionID, itemID string) protocol.TypeHierarchyItem {
	return protocol.TypeHierarchyItem{
		SessionID:      sessionID,
		ItemID:         itemID,
		Name:           item.Name,
		Kind:           int(item.Kind),
		Tags:           SymbolTags(item.Tags),
		Detail:         item.Detail,
		URI:            protocol.DocumentURI(item.URI),
		Range:          Range(item.Range),
		SelectionRange: Range(item.SelectionRange),
	}
}

// ToDataTransfer converts a wire paste/drop payload.
func ToDataTransfer(d protocol.DataTransfer) extapi.DataTransfer {
	out := make(extapi.DataTransfer, len(d))
	for mime, v := range d {
		out[mime] = extapi.DataTransferItem{Value: v}
	}
	return out
}

// DocumentSelector converts a native selector.
func DocumentSelector(sel extapi.DocumentSelector) []protocol.DocumentFilter {
	out := make([]protocol.DocumentFilter, len(sel))
	for i, f := range sel {
		out[i] = protocol.DocumentFilter{Language: f.Language, Scheme: f.Scheme, Pattern: f.Pattern}
	}
	return out
}
