package extapi

import "strings"

// DocumentSymbol is a node of a document outline.
type DocumentSymbol struct {
	Name           string
	Detail         string
	Kind           SymbolKind
	Tags           []SymbolTag
	Range          Range
	SelectionRange Range
	Children       []*DocumentSymbol
}

// SymbolInformation is a flat symbol with a container name.
type SymbolInformation struct {
	Name          string
	ContainerName string
	Kind          SymbolKind
	Tags          []SymbolTag
	Location      Location
}

// DocumentSymbols is returned by document symbol providers. Providers set
// either Tree or Flat. A flat list is turned into a tree by containment.
type DocumentSymbols struct {
	Tree []*DocumentSymbol
	Flat []*SymbolInformation
}

// Len returns the number of top-level entries.
func (s *DocumentSymbols) Len() int {
	if s == nil {
		return 0
	}
	if len(s.Tree) > 0 {
		return len(s.Tree)
	}
	return len(s.Flat)
}

// CodeLens is a command shown inline above a range.
type CodeLens struct {
	Range   Range
	Command *Command
}

// IsResolved reports whether the lens carries a command.
func (c *CodeLens) IsResolved() bool { return c.Command != nil }

// Hover is information shown when pointing at text.
type Hover struct {
	Contents             []MarkdownString
	Range                *Range
	CanIncreaseVerbosity bool
	CanDecreaseVerbosity bool
}

// HoverContext asks a provider to change the verbosity of an earlier hover.
type HoverContext struct {
	VerbosityDelta int
	PreviousHover  *Hover
}

// EvaluatableExpression is an expression a debugger can evaluate.
type EvaluatableExpression struct {
	Range      Range
	Expression string
}

// InlineValueKind distinguishes inline value shapes.
type InlineValueKind int

const (
	InlineValueText InlineValueKind = iota
	InlineValueVariableLookup
	InlineValueEvaluatableExpression
)

// InlineValue is a value shown inline while debugging.
type InlineValue struct {
	Kind                InlineValueKind
	Range               Range
	Text                string
	VariableName        string
	CaseSensitiveLookup bool
	Expression          string
}

// InlineValueContext describes the stopped debug frame.
type InlineValueContext struct {
	FrameID         int
	StoppedLocation Range
}

// DocumentHighlightKind classifies highlights.
type DocumentHighlightKind int

const (
	HighlightText DocumentHighlightKind = iota
	HighlightRead
	HighlightWrite
)

// DocumentHighlight marks a range related to the symbol at the cursor.
type DocumentHighlight struct {
	Range Range
	Kind  DocumentHighlightKind
}

// MultiDocumentHighlight groups highlights for one document.
type MultiDocumentHighlight struct {
	URI        URI
	Highlights []DocumentHighlight
}

// LinkedEditingRanges are ranges edited together.
type LinkedEditingRanges struct {
	Ranges      []Range
	WordPattern string
}

// ReferenceContext controls reference lookup.
type ReferenceContext struct {
	IncludeDeclaration bool
}

// CodeActionKind is a hierarchical, dot separated kind.
type CodeActionKind string

const (
	CodeActionEmpty          CodeActionKind = ""
	CodeActionQuickFix       CodeActionKind = "quickfix"
	CodeActionRefactor       CodeActionKind = "refactor"
	CodeActionSource         CodeActionKind = "source"
	CodeActionSourceOrganize CodeActionKind = "source.organizeImports"
	CodeActionSourceFixAll   CodeActionKind = "source.fixAll"
)

// Contains reports whether other is k or a sub kind of k.
func (k CodeActionKind) Contains(other CodeActionKind) bool {
	if k == CodeActionEmpty {
		return true
	}
	return k == other || strings.HasPrefix(string(other), string(k)+".")
}

// Intersects reports whether k and other overlap in either direction.
func (k CodeActionKind) Intersects(other CodeActionKind) bool {
	return k.Contains(other) || other.Contains(k)
}

// CodeActionTriggerKind says why code actions were requested.
type CodeActionTriggerKind int

const (
	CodeActionTriggerInvoke CodeActionTriggerKind = iota + 1
	CodeActionTriggerAutomatic
)

// CodeActionContext is passed to code action providers.
type CodeActionContext struct {
	Diagnostics []Diagnostic
	Only        CodeActionKind
	TriggerKind CodeActionTriggerKind
}

// CodeActionOrCommand is either a *CodeAction or a *Command. Providers that
// still return plain commands get them wrapped as synthetic actions.
type CodeActionOrCommand interface {
	codeActionOrCommand()
}

func (*CodeAction) codeActionOrCommand() {}
func (*Command) codeActionOrCommand()    {}

// CodeAction is a change offered for a range.
type CodeAction struct {
	Title       string
	Kind        CodeActionKind
	Diagnostics []Diagnostic
	Edit        *WorkspaceEdit
	Command     *Command
	IsPreferred bool
	Disabled    string
}

// DataTransferItem is one entry of a paste or drop payload.
type DataTransferItem struct {
	Value string
}

// DataTransfer maps mime types to payload items.
type DataTransfer map[string]DataTransferItem

// DocumentPasteTriggerKind says why paste edits were requested.
type DocumentPasteTriggerKind int

const (
	PasteTriggerAutomatic DocumentPasteTriggerKind = iota
	PasteTriggerPasteAs
)

// DocumentPasteEditContext is passed to paste providers.
type DocumentPasteEditContext struct {
	Only        string
	TriggerKind DocumentPasteTriggerKind
}

// DocumentPasteEdit is an edit applied on paste.
type DocumentPasteEdit struct {
	Title          string
	Kind           string
	InsertText     string
	InsertSnippet  *SnippetString
	AdditionalEdit *WorkspaceEdit
	YieldTo        []string
}

// DocumentDropEdit is an edit applied on drop.
type DocumentDropEdit struct {
	Title          string
	Kind           string
	InsertText     string
	InsertSnippet  *SnippetString
	AdditionalEdit *WorkspaceEdit
	YieldTo        []string
}

// FormattingOptions describe the requested formatting.
type FormattingOptions struct {
	TabSize      int
	InsertSpaces bool
}

// RenameLocation is the range and placeholder for a rename.
type RenameLocation struct {
	Range       Range
	Placeholder string
}

// NewSymbolNameTriggerKind says why names were requested.
type NewSymbolNameTriggerKind int

const (
	NewSymbolNameTriggerInvoke NewSymbolNameTriggerKind = iota
	NewSymbolNameTriggerAutomatic
)

// NewSymbolName is a suggested name.
type NewSymbolName struct {
	NewSymbolName string
	Tags          []string
}

// SemanticTokensLegend names token types and modifiers by index.
type SemanticTokensLegend struct {
	TokenTypes     []string
	TokenModifiers []string
}

// SemanticTokensResult is either *SemanticTokens or *SemanticTokensEdits.
type SemanticTokensResult interface {
	semanticTokensResult()
}

func (*SemanticTokens) semanticTokensResult()      {}
func (*SemanticTokensEdits) semanticTokensResult() {}

// SemanticTokens is a full token array, five integers per token.
type SemanticTokens struct {
	ResultID string
	Data     []uint32
}

// SemanticTokensEdit replaces DeleteCount integers at Start with Data.
type SemanticTokensEdit struct {
	Start       int
	DeleteCount int
	Data        []uint32
}

// SemanticTokensEdits is a delta against an earlier result.
type SemanticTokensEdits struct {
	ResultID string
	Edits    []SemanticTokensEdit
}

// CompletionItemKind classifies completion items.
type CompletionItemKind int

const (
	CompletionKindMethod CompletionItemKind = iota
	CompletionKindFunction
	CompletionKindConstructor
	CompletionKindField
	CompletionKindVariable
	CompletionKindClass
	CompletionKindStruct
	CompletionKindInterface
	CompletionKindModule
	CompletionKindProperty
	CompletionKindEvent
	CompletionKindOperator
	CompletionKindUnit
	CompletionKindValue
	CompletionKindConstant
	CompletionKindEnum
	CompletionKindEnumMember
	CompletionKindKeyword
	CompletionKindText
	CompletionKindColor
	CompletionKindFile
	CompletionKindReference
	CompletionKindCustomColor
	CompletionKindFolder
	CompletionKindTypeParameter
	CompletionKindUser
	CompletionKindIssue
	CompletionKindSnippet
)

// CompletionItemTag adds presentation hints.
type CompletionItemTag int

const (
	CompletionItemTagDeprecated CompletionItemTag = 1
)

// InsertReplaceRange are the ranges used when inserting or replacing.
type InsertReplaceRange struct {
	Inserting Range
	Replacing Range
}

// CompletionItemLabel carries label details.
type CompletionItemLabel struct {
	Detail      string
	Description string
}

// CompletionItem is one completion proposal.
type CompletionItem struct {
	Label               string
	LabelDetails        *CompletionItemLabel
	Kind                CompletionItemKind
	Tags                []CompletionItemTag
	Detail              string
	Documentation       *MarkdownString
	SortText            string
	FilterText          string
	Preselect           bool
	InsertText          string
	InsertSnippet       *SnippetString
	KeepWhitespace      bool
	Range               *Range
	InsertReplace       *InsertReplaceRange
	TextEdit            *TextEdit
	CommitCharacters    []string
	AdditionalTextEdits []TextEdit
	Command             *Command
}

// CompletionList is a list of items, possibly incomplete.
type CompletionList struct {
	Items        []*CompletionItem
	IsIncomplete bool
}

// CompletionTriggerKind says why completion was requested.
type CompletionTriggerKind int

const (
	CompletionTriggerInvoke CompletionTriggerKind = iota
	CompletionTriggerCharacter
	CompletionTriggerForIncomplete
)

// CompletionContext is passed to completion providers.
type CompletionContext struct {
	TriggerKind      CompletionTriggerKind
	TriggerCharacter string
}

// InlineCompletionTriggerKind says why inline completions were requested.
type InlineCompletionTriggerKind int

const (
	InlineCompletionTriggerInvoke InlineCompletionTriggerKind = iota
	InlineCompletionTriggerAutomatic
)

// SelectedCompletionInfo describes the suggest widget selection.
type SelectedCompletionInfo struct {
	Range Range
	Text  string
}

// InlineCompletionContext is passed to inline completion providers.
type InlineCompletionContext struct {
	TriggerKind            InlineCompletionTriggerKind
	SelectedCompletionInfo *SelectedCompletionInfo
}

// InlineCompletionItem is ghost text offered at the cursor.
type InlineCompletionItem struct {
	InsertText    string
	InsertSnippet *SnippetString
	FilterText    string
	Range         *Range
	Command       *Command
}

// InlineCompletionList is the result of an inline completion request.
type InlineCompletionList struct {
	Items                  []*InlineCompletionItem
	Commands               []*Command
	EnableForwardStability bool
}

// PartialAcceptKind says how much of an inline completion was accepted.
type PartialAcceptKind int

const (
	PartialAcceptWord PartialAcceptKind = iota
	PartialAcceptLine
	PartialAcceptSuggest
)

// PartialAcceptInfo describes a partial accept.
type PartialAcceptInfo struct {
	Kind           PartialAcceptKind
	AcceptedLength int
}

// ParameterInformation is one parameter of a signature.
type ParameterInformation struct {
	Label         string
	Documentation *MarkdownString
}

// SignatureInformation is one callable signature.
type SignatureInformation struct {
	Label           string
	Documentation   *MarkdownString
	Parameters      []ParameterInformation
	ActiveParameter *int
}

// SignatureHelp lists signatures and the active one.
type SignatureHelp struct {
	Signatures      []SignatureInformation
	ActiveSignature int
	ActiveParameter int
}

// SignatureHelpTriggerKind says why signature help was requested.
type SignatureHelpTriggerKind int

const (
	SignatureHelpTriggerInvoke SignatureHelpTriggerKind = iota + 1
	SignatureHelpTriggerCharacter
	SignatureHelpTriggerContentChange
)

// SignatureHelpContext is passed to signature help providers.
// ActiveSignatureHelp may be the value the provider returned earlier; it is
// shared with later requests and must not be kept past the call.
type SignatureHelpContext struct {
	TriggerKind         SignatureHelpTriggerKind
	TriggerCharacter    string
	IsRetrigger         bool
	ActiveSignatureHelp *SignatureHelp
}

// InlayHintKind classifies inlay hints.
type InlayHintKind int

const (
	InlayHintKindOther InlayHintKind = iota
	InlayHintKindType
	InlayHintKindParameter
)

// InlayHintLabelPart is one segment of a structured hint label.
type InlayHintLabelPart struct {
	Value    string
	Tooltip  *MarkdownString
	Location *Location
	Command  *Command
}

// InlayHint is an annotation rendered inline.
type InlayHint struct {
	Position     Position
	Label        string
	LabelParts   []InlayHintLabelPart
	Tooltip      *MarkdownString
	Kind         InlayHintKind
	TextEdits    []TextEdit
	PaddingLeft  bool
	PaddingRight bool
}

// DocumentLink is a link inside a document.
type DocumentLink struct {
	Range   Range
	Target  string
	Tooltip string
}

// Color is an RGBA color with components in [0,1].
type Color struct {
	Red, Green, Blue, Alpha float64
}

// ColorInformation is a color found in a document.
type ColorInformation struct {
	Range Range
	Color Color
}

// ColorPresentation is a textual rendering of a color.
type ColorPresentation struct {
	Label               string
	TextEdit            *TextEdit
	AdditionalTextEdits []TextEdit
}

// FoldingRangeKind classifies folding ranges.
type FoldingRangeKind string

const (
	FoldingComment FoldingRangeKind = "comment"
	FoldingImports FoldingRangeKind = "imports"
	FoldingRegion  FoldingRangeKind = "region"
)

// FoldingRange is a foldable line span.
type FoldingRange struct {
	Start int
	End   int
	Kind  FoldingRangeKind
}

// SelectionRange is a range with its enclosing parent.
type SelectionRange struct {
	Range  Range
	Parent *SelectionRange
}

// CallHierarchyItem is a node in a call graph.
type CallHierarchyItem struct {
	Name           string
	Kind           SymbolKind
	Tags           []SymbolTag
	Detail         string
	URI            URI
	Range          Range
	SelectionRange Range
}

// CallHierarchyIncomingCall is a call into an item.
type CallHierarchyIncomingCall struct {
	From       *CallHierarchyItem
	FromRanges []Range
}

// CallHierarchyOutgoingCall is a call made by an item.
type CallHierarchyOutgoingCall struct {
	To         *CallHierarchyItem
	FromRanges []Range
}

// TypeHierarchyItem is a node in a type graph.
type TypeHierarchyItem struct {
	Name           string
	Kind           SymbolKind
	Tags           []SymbolTag
	Detail         string
	URI            URI
	Range          Range
	SelectionRange Range
}
