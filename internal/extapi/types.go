// Package extapi defines the extension-facing language API.
//
// Extensions implement the provider interfaces in this package and receive
// the native value types defined here. The bridge converts between these
// values and the wire DTOs in package protocol, so nothing in extapi knows
// about serialization.
//
// Optional provider capabilities (resolving items, incremental semantic
// tokens, change events) are expressed as separate small interfaces that a
// provider may also implement.
package extapi

import (
	"fmt"
	"regexp"
)

// URI identifies a document.
type URI string

// Extension identifies the extension that registered a provider.
type Extension struct {
	ID          string
	DisplayName string
	Version     string
}

// String returns the extension id.
func (e Extension) String() string {
	if e.ID == "" {
		return "<unknown extension>"
	}
	return e.ID
}

// Position is a zero-based line and character offset. Characters are
// counted in UTF-16 code units.
type Position struct {
	Line      int
	Character int
}

// NewPosition creates a position.
func NewPosition(line, character int) Position {
	return Position{Line: line, Character: character}
}

// Compare returns -1, 0 or 1 when p is before, equal to or after o.
func (p Position) Compare(o Position) int {
	switch {
	case p.Line < o.Line:
		return -1
	case p.Line > o.Line:
		return 1
	case p.Character < o.Character:
		return -1
	case p.Character > o.Character:
		return 1
	default:
		return 0
	}
}

// IsBefore reports whether p is strictly before o.
func (p Position) IsBefore(o Position) bool { return p.Compare(o) < 0 }

// IsAfter reports whether p is strictly after o.
func (p Position) IsAfter(o Position) bool { return p.Compare(o) > 0 }

// IsEqual reports whether p and o are the same position.
func (p Position) IsEqual(o Position) bool { return p == o }

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Character)
}

// Range is a pair of positions with Start <= End.
type Range struct {
	Start Position
	End   Position
}

// NewRange creates a range, swapping the ends if they are out of order.
func NewRange(startLine, startChar, endLine, endChar int) Range {
	return RangeFrom(NewPosition(startLine, startChar), NewPosition(endLine, endChar))
}

// RangeFrom creates a range from two positions in any order.
func RangeFrom(a, b Position) Range {
	if b.IsBefore(a) {
		a, b = b, a
	}
	return Range{Start: a, End: b}
}

// IsEmpty reports whether the range has no extent.
func (r Range) IsEmpty() bool { return r.Start == r.End }

// IsSingleLine reports whether the range starts and ends on one line.
func (r Range) IsSingleLine() bool { return r.Start.Line == r.End.Line }

// Contains reports whether p lies inside r, ends inclusive.
func (r Range) Contains(p Position) bool {
	return !p.IsBefore(r.Start) && !p.IsAfter(r.End)
}

// ContainsRange reports whether o lies completely inside r.
func (r Range) ContainsRange(o Range) bool {
	return r.Contains(o.Start) && r.Contains(o.End)
}

// StrictlyContains reports whether r contains o and is not equal to it.
func (r Range) StrictlyContains(o Range) bool {
	return r.ContainsRange(o) && !r.IsEqual(o)
}

// IsEqual reports whether r and o cover the same positions.
func (r Range) IsEqual(o Range) bool { return r == o }

// Intersection returns the overlap of r and o. The boolean is false when the
// ranges do not touch.
func (r Range) Intersection(o Range) (Range, bool) {
	start := r.Start
	if o.Start.IsAfter(start) {
		start = o.Start
	}
	end := r.End
	if o.End.IsBefore(end) {
		end = o.End
	}
	if start.IsAfter(end) {
		return Range{}, false
	}
	return Range{Start: start, End: end}, true
}

// WithEnd returns a copy of r ending at end.
func (r Range) WithEnd(end Position) Range {
	return RangeFrom(r.Start, end)
}

func (r Range) String() string {
	return fmt.Sprintf("[%s-%s]", r.Start, r.End)
}

// Location is a range inside a document.
type Location struct {
	URI   URI
	Range Range
}

// LocationLink connects an origin range with a target range.
type LocationLink struct {
	OriginSelectionRange *Range
	TargetURI            URI
	TargetRange          Range
	TargetSelectionRange *Range
}

// LinksFromLocations wraps plain locations as links.
func LinksFromLocations(locs []Location) []LocationLink {
	out := make([]LocationLink, len(locs))
	for i, l := range locs {
		out[i] = LocationLink{TargetURI: l.URI, TargetRange: l.Range}
	}
	return out
}

// TextEdit replaces a range with new text.
type TextEdit struct {
	Range   Range
	NewText string
}

// WorkspaceEditEntry groups edits for one document.
type WorkspaceEditEntry struct {
	URI   URI
	Edits []TextEdit
}

// WorkspaceEdit is an ordered collection of document edits.
type WorkspaceEdit struct {
	Entries []WorkspaceEditEntry
}

// Replace adds an edit replacing rng in uri.
func (w *WorkspaceEdit) Replace(uri URI, rng Range, text string) {
	for i := range w.Entries {
		if w.Entries[i].URI == uri {
			w.Entries[i].Edits = append(w.Entries[i].Edits, TextEdit{Range: rng, NewText: text})
			return
		}
	}
	w.Entries = append(w.Entries, WorkspaceEditEntry{URI: uri, Edits: []TextEdit{{Range: rng, NewText: text}}})
}

// Insert adds an insertion at pos in uri.
func (w *WorkspaceEdit) Insert(uri URI, pos Position, text string) {
	w.Replace(uri, Range{Start: pos, End: pos}, text)
}

// Size returns the number of edits across all documents.
func (w *WorkspaceEdit) Size() int {
	n := 0
	for _, e := range w.Entries {
		n += len(e.Edits)
	}
	return n
}

// MarkdownString is markdown text shown to the user.
type MarkdownString struct {
	Value             string
	IsTrusted         bool
	SupportThemeIcons bool
}

// Markdown creates a markdown string.
func Markdown(s string) MarkdownString { return MarkdownString{Value: s} }

// SnippetString is text with tab stops and placeholders.
type SnippetString struct {
	Value string
}

// Command references an invokable command.
type Command struct {
	Title     string
	Command   string
	Tooltip   string
	Arguments []any
}

// DocumentFilter narrows which documents a provider applies to.
type DocumentFilter struct {
	Language string
	Scheme   string
	Pattern  string
}

// DocumentSelector is a union of filters.
type DocumentSelector []DocumentFilter

// Document is a live text document owned by the host.
type Document interface {
	URI() URI
	LanguageID() string
	Version() int
	LineCount() int
	// LineAt returns the text of a line without its line break. Out of range
	// lines return the empty string.
	LineAt(line int) string
	Text() string
	// GetText returns the text covered by rng.
	GetText(rng Range) string
	// WordRangeAtPosition returns the range of the word at pos. The boolean
	// is false when pos is not on a word.
	WordRangeAtPosition(pos Position, pattern *regexp.Regexp) (Range, bool)
	// ValidatePosition clamps pos to the document.
	ValidatePosition(pos Position) Position
	// ValidateRange clamps rng to the document.
	ValidateRange(rng Range) Range
}

// DiagnosticSeverity ranks diagnostics.
type DiagnosticSeverity int

const (
	SeverityError DiagnosticSeverity = iota
	SeverityWarning
	SeverityInformation
	SeverityHint
)

// DiagnosticTag adds presentation hints.
type DiagnosticTag int

const (
	DiagnosticTagUnnecessary DiagnosticTag = iota + 1
	DiagnosticTagDeprecated
)

// Diagnostic is a problem reported for a range.
type Diagnostic struct {
	Range    Range
	Message  string
	Severity DiagnosticSeverity
	Source   string
	Code     string
	Tags     []DiagnosticTag
}

// SymbolKind classifies symbols.
type SymbolKind int

const (
	SymbolKindFile SymbolKind = iota
	SymbolKindModule
	SymbolKindNamespace
	SymbolKindPackage
	SymbolKindClass
	SymbolKindMethod
	SymbolKindProperty
	SymbolKindField
	SymbolKindConstructor
	SymbolKindEnum
	SymbolKindInterface
	SymbolKindFunction
	SymbolKindVariable
	SymbolKindConstant
	SymbolKindString
	SymbolKindNumber
	SymbolKindBoolean
	SymbolKindArray
	SymbolKindObject
	SymbolKindKey
	SymbolKindNull
	SymbolKindEnumMember
	SymbolKindStruct
	SymbolKindEvent
	SymbolKindOperator
	SymbolKindTypeParameter
)

// SymbolTag adds extra symbol information.
type SymbolTag int

const (
	SymbolTagDeprecated SymbolTag = 1
)
