package protocol

// --- Document Symbols ---

// DocumentSymbol is a node of a document outline.
type DocumentSymbol struct {
	Name           string           `json:"name"`
	Detail         string           `json:"detail"`
	Kind           int              `json:"kind"`
	Tags           []int            `json:"tags,omitempty"`
	ContainerName  string           `json:"containerName,omitempty"`
	Range          Range            `json:"range"`
	SelectionRange Range            `json:"selectionRange"`
	Children       []DocumentSymbol `json:"children,omitempty"`
}

// --- Code Lens ---

// CodeLens is a lens with a cache id for resolve.
type CodeLens struct {
	CacheID ChainedCacheID `json:"cacheId"`
	Range   Range          `json:"range"`
	Command *Command       `json:"command,omitempty"`
}

// CodeLensList is the result of $provideCodeLenses.
type CodeLensList struct {
	CacheID int        `json:"cacheId"`
	Lenses  []CodeLens `json:"lenses"`
}

// --- Hover ---

// Hover is a hover with its id for verbosity requests.
type Hover struct {
	ID                   int              `json:"id"`
	Contents             []MarkdownString `json:"contents"`
	Range                *Range           `json:"range,omitempty"`
	CanIncreaseVerbosity bool             `json:"canIncreaseVerbosity,omitempty"`
	CanDecreaseVerbosity bool             `json:"canDecreaseVerbosity,omitempty"`
}

// HoverVerbosityRequest asks to expand or shrink a previous hover.
type HoverVerbosityRequest struct {
	VerbosityDelta  int `json:"verbosityDelta"`
	PreviousHoverID int `json:"previousHoverId"`
}

// HoverContext accompanies $provideHover.
type HoverContext struct {
	VerbosityRequest *HoverVerbosityRequest `json:"verbosityRequest,omitempty"`
}

// --- Debugging ---

// EvaluatableExpression is an expression a debugger can evaluate.
type EvaluatableExpression struct {
	Range      Range  `json:"range"`
	Expression string `json:"expression,omitempty"`
}

// InlineValue kinds.
const (
	InlineValueText       = "text"
	InlineValueVariable   = "variable"
	InlineValueExpression = "expression"
)

// InlineValue is a value shown inline while debugging.
type InlineValue struct {
	Type                string `json:"type"`
	Range               Range  `json:"range"`
	Text                string `json:"text,omitempty"`
	VariableName        string `json:"variableName,omitempty"`
	CaseSensitiveLookup bool   `json:"caseSensitiveLookup,omitempty"`
	Expression          string `json:"expression,omitempty"`
}

// InlineValueContext describes the stopped debug frame.
type InlineValueContext struct {
	FrameID         int   `json:"frameId"`
	StoppedLocation Range `json:"stoppedLocation"`
}

// --- Highlights and linked editing ---

// DocumentHighlight marks a range related to the symbol at the cursor.
type DocumentHighlight struct {
	Range Range `json:"range"`
	Kind  int   `json:"kind"`
}

// MultiDocumentHighlight groups highlights for one document.
type MultiDocumentHighlight struct {
	URI        DocumentURI         `json:"uri"`
	Highlights []DocumentHighlight `json:"highlights"`
}

// LinkedEditingRanges are ranges edited together.
type LinkedEditingRanges struct {
	Ranges      []Range `json:"ranges"`
	WordPattern string  `json:"wordPattern,omitempty"`
}

// ReferenceContext controls reference lookup.
type ReferenceContext struct {
	IncludeDeclaration bool `json:"includeDeclaration"`
}

// --- Code Actions ---

// CodeActionContext accompanies $provideCodeActions.
type CodeActionContext struct {
	Only    string `json:"only,omitempty"`
	Trigger int    `json:"trigger"`
}

// CodeAction is a code action with its cache id for resolve.
type CodeAction struct {
	CacheID     *ChainedCacheID `json:"cacheId,omitempty"`
	Title       string          `json:"title"`
	Command     *Command        `json:"command,omitempty"`
	Edit        *WorkspaceEdit  `json:"edit,omitempty"`
	Diagnostics []Diagnostic    `json:"diagnostics,omitempty"`
	Kind        string          `json:"kind,omitempty"`
	IsPreferred bool            `json:"isPreferred,omitempty"`
	Disabled    string          `json:"disabled,omitempty"`
	IsSynthetic bool            `json:"isSynthetic,omitempty"`
}

// CodeActionList is the result of $provideCodeActions.
type CodeActionList struct {
	CacheID int          `json:"cacheId"`
	Actions []CodeAction `json:"actions"`
}

// CodeActionResolution is the result of $resolveCodeAction.
type CodeActionResolution struct {
	Edit    *WorkspaceEdit `json:"edit,omitempty"`
	Command *Command       `json:"command,omitempty"`
}

// --- Paste and drop ---

// DataTransfer maps mime types to string payloads.
type DataTransfer map[string]string

// PasteEditContext accompanies $provideDocumentPasteEdits.
type PasteEditContext struct {
	Only        string `json:"only,omitempty"`
	TriggerKind int    `json:"triggerKind"`
}

// EditProposal is a paste or drop edit.
type EditProposal struct {
	CacheID        ChainedCacheID `json:"cacheId"`
	Title          string         `json:"title"`
	Kind           string         `json:"kind,omitempty"`
	InsertText     string         `json:"insertText"`
	IsSnippet      bool           `json:"isSnippet,omitempty"`
	AdditionalEdit *WorkspaceEdit `json:"additionalEdit,omitempty"`
	YieldTo        []string       `json:"yieldTo,omitempty"`
}

// EditProposalResolution is the result of resolving a paste or drop edit.
type EditProposalResolution struct {
	InsertText     *string        `json:"insertText,omitempty"`
	AdditionalEdit *WorkspaceEdit `json:"additionalEdit,omitempty"`
}

// --- Formatting ---

// FormattingOptions describe the requested formatting.
type FormattingOptions struct {
	TabSize      int  `json:"tabSize"`
	InsertSpaces bool `json:"insertSpaces"`
}

// --- Workspace Symbols ---

// WorkspaceSymbol is a symbol found by a workspace search.
type WorkspaceSymbol struct {
	CacheID       *ChainedCacheID `json:"cacheId,omitempty"`
	Name          string          `json:"name"`
	ContainerName string          `json:"containerName,omitempty"`
	Kind          int             `json:"kind"`
	Tags          []int           `json:"tags,omitempty"`
	Location      Location        `json:"location"`
}

// WorkspaceSymbols is the result of $provideWorkspaceSymbols.
type WorkspaceSymbols struct {
	CacheID *int              `json:"cacheId,omitempty"`
	Symbols []WorkspaceSymbol `json:"symbols"`
}

// --- Rename ---

// RenameEdits is a workspace edit, or a reason why renaming is impossible.
type RenameEdits struct {
	Edits        []WorkspaceTextEdit `json:"edits"`
	RejectReason string              `json:"rejectReason,omitempty"`
}

// RenameLocation is the result of $resolveRenameLocation.
type RenameLocation struct {
	Range        *Range `json:"range,omitempty"`
	Text         string `json:"text,omitempty"`
	RejectReason string `json:"rejectReason,omitempty"`
}

// NewSymbolName is a suggested name.
type NewSymbolName struct {
	NewSymbolName string   `json:"newSymbolName"`
	Tags          []string `json:"tags,omitempty"`
}

// --- Semantic Tokens ---

// SemanticTokensLegend names token types and modifiers by index.
type SemanticTokensLegend struct {
	TokenTypes     []string `json:"tokenTypes"`
	TokenModifiers []string `json:"tokenModifiers"`
}

// --- Completion ---

// Completion insert text rules.
const (
	InsertAsSnippet    = 4
	KeepWhitespaceRule = 1
)

// CompletionContext accompanies $provideCompletionItems.
type CompletionContext struct {
	TriggerKind      int    `json:"triggerKind"`
	TriggerCharacter string `json:"triggerCharacter,omitempty"`
}

// InsertReplaceRange is a pair of insert and replace ranges.
type InsertReplaceRange struct {
	Insert  Range `json:"insert"`
	Replace Range `json:"replace"`
}

// CompletionItemLabel carries label details.
type CompletionItemLabel struct {
	Detail      string `json:"detail,omitempty"`
	Description string `json:"description,omitempty"`
}

// CompletionItem is one proposal. Range and InsertReplace are omitted when
// the item uses the list default ranges.
type CompletionItem struct {
	CacheID             ChainedCacheID       `json:"cacheId"`
	Label               string               `json:"label"`
	LabelDetails        *CompletionItemLabel `json:"labelDetails,omitempty"`
	Kind                int                  `json:"kind"`
	Tags                []int                `json:"tags,omitempty"`
	Detail              string               `json:"detail,omitempty"`
	Documentation       *MarkdownString      `json:"documentation,omitempty"`
	SortText            string               `json:"sortText,omitempty"`
	FilterText          string               `json:"filterText,omitempty"`
	Preselect           bool                 `json:"preselect,omitempty"`
	InsertText          string               `json:"insertText,omitempty"`
	InsertTextRules     int                  `json:"insertTextRules,omitempty"`
	Range               *Range               `json:"range,omitempty"`
	InsertReplace       *InsertReplaceRange  `json:"insertReplace,omitempty"`
	CommitCharacters    []string             `json:"commitCharacters,omitempty"`
	AdditionalTextEdits []TextEdit           `json:"additionalTextEdits,omitempty"`
	Command             *Command             `json:"command,omitempty"`
}

// CompletionResult is the result of $provideCompletionItems.
type CompletionResult struct {
	CacheID       int                `json:"cacheId"`
	DefaultRanges InsertReplaceRange `json:"defaultRanges"`
	Items         []CompletionItem   `json:"items"`
	IsIncomplete  bool               `json:"isIncomplete,omitempty"`
	Duration      int64              `json:"duration"`
}

// --- Inline Completions ---

// SelectedSuggestionInfo describes the suggest widget selection.
type SelectedSuggestionInfo struct {
	Range Range  `json:"range"`
	Text  string `json:"text"`
}

// InlineCompletionContext accompanies $provideInlineCompletions.
type InlineCompletionContext struct {
	TriggerKind            int                     `json:"triggerKind"`
	SelectedSuggestionInfo *SelectedSuggestionInfo `json:"selectedSuggestionInfo,omitempty"`
}

// InlineCompletion is one inline proposal.
type InlineCompletion struct {
	Idx        int      `json:"idx"`
	InsertText string   `json:"insertText"`
	IsSnippet  bool     `json:"isSnippet,omitempty"`
	FilterText string   `json:"filterText,omitempty"`
	Range      *Range   `json:"range,omitempty"`
	Command    *Command `json:"command,omitempty"`
}

// InlineCompletionList is the result of $provideInlineCompletions.
type InlineCompletionList struct {
	PID                    int                `json:"pid"`
	Items                  []InlineCompletion `json:"items"`
	Commands               []Command          `json:"commands,omitempty"`
	EnableForwardStability bool               `json:"enableForwardStability,omitempty"`
}

// PartialAcceptInfo describes a partial accept.
type PartialAcceptInfo struct {
	Kind           int `json:"kind"`
	AcceptedLength int `json:"acceptedLength"`
}

// --- Signature Help ---

// ParameterInformation is one parameter of a signature.
type ParameterInformation struct {
	Label         string          `json:"label"`
	Documentation *MarkdownString `json:"documentation,omitempty"`
}

// SignatureInformation is one callable signature.
type SignatureInformation struct {
	Label           string                 `json:"label"`
	Documentation   *MarkdownString        `json:"documentation,omitempty"`
	Parameters      []ParameterInformation `json:"parameters"`
	ActiveParameter *int                   `json:"activeParameter,omitempty"`
}

// SignatureHelp is signature help with its cache id.
type SignatureHelp struct {
	ID              int                    `json:"id"`
	Signatures      []SignatureInformation `json:"signatures"`
	ActiveSignature int                    `json:"activeSignature"`
	ActiveParameter int                    `json:"activeParameter"`
}

// ActiveSignatureHelp refers to an earlier signature help result.
type ActiveSignatureHelp struct {
	ID              int `json:"id"`
	ActiveSignature int `json:"activeSignature"`
	ActiveParameter int `json:"activeParameter"`
}

// SignatureHelpContext accompanies $provideSignatureHelp.
type SignatureHelpContext struct {
	TriggerKind         int                  `json:"triggerKind"`
	TriggerCharacter    string               `json:"triggerCharacter,omitempty"`
	IsRetrigger         bool                 `json:"isRetrigger"`
	ActiveSignatureHelp *ActiveSignatureHelp `json:"activeSignatureHelp,omitempty"`
}

// --- Inlay Hints ---

// InlayHintLabelPart is one segment of a structured hint label.
type InlayHintLabelPart struct {
	Label    string          `json:"label"`
	Tooltip  *MarkdownString `json:"tooltip,omitempty"`
	Location *Location       `json:"location,omitempty"`
	Command  *Command        `json:"command,omitempty"`
}

// InlayHint is an annotation rendered inline.
type InlayHint struct {
	CacheID      ChainedCacheID       `json:"cacheId"`
	Label        string               `json:"label,omitempty"`
	LabelParts   []InlayHintLabelPart `json:"labelParts,omitempty"`
	Tooltip      *MarkdownString      `json:"tooltip,omitempty"`
	Position     Position             `json:"position"`
	Kind         int                  `json:"kind,omitempty"`
	TextEdits    []TextEdit           `json:"textEdits,omitempty"`
	PaddingLeft  bool                 `json:"paddingLeft,omitempty"`
	PaddingRight bool                 `json:"paddingRight,omitempty"`
}

// InlayHintList is the result of $provideInlayHints.
type InlayHintList struct {
	CacheID int         `json:"cacheId"`
	Hints   []InlayHint `json:"hints"`
}

// --- Links ---

// DocumentLink is a link inside a document.
type DocumentLink struct {
	CacheID *ChainedCacheID `json:"cacheId,omitempty"`
	Range   Range           `json:"range"`
	URL     string          `json:"url,omitempty"`
	Tooltip string          `json:"tooltip,omitempty"`
}

// DocumentLinkList is the result of $provideDocumentLinks.
type DocumentLinkList struct {
	CacheID *int           `json:"cacheId,omitempty"`
	Links   []DocumentLink `json:"links"`
}

// --- Colors ---

// Color is an RGBA color with components in [0,1].
type Color struct {
	Red   float64 `json:"red"`
	Green float64 `json:"green"`
	Blue  float64 `json:"blue"`
	Alpha float64 `json:"alpha"`
}

// ColorInformation is a color found in a document.
type ColorInformation struct {
	Range Range `json:"range"`
	Color Color `json:"color"`
}

// ColorPresentation is a textual rendering of a color.
type ColorPresentation struct {
	Label               string     `json:"label"`
	TextEdit            *TextEdit  `json:"textEdit,omitempty"`
	AdditionalTextEdits []TextEdit `json:"additionalTextEdits,omitempty"`
}

// ColorPresentationRequest accompanies $provideColorPresentations.
type ColorPresentationRequest struct {
	Color Color `json:"color"`
	Range Range `json:"range"`
}

// --- Folding and selection ---

// FoldingRange is a foldable line span.
type FoldingRange struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Kind  string `json:"kind,omitempty"`
}

// SelectionRange is one step of an expanding selection.
type SelectionRange struct {
	Range Range `json:"range"`
}

// --- Hierarchies ---

// CallHierarchyItem is a node in a call graph, addressable by session and item id.
type CallHierarchyItem struct {
	SessionID      string      `json:"_sessionId"`
	ItemID         string      `json:"_itemId"`
	Name           string      `json:"name"`
	Kind           int         `json:"kind"`
	Tags           []int       `json:"tags,omitempty"`
	Detail         string      `json:"detail,omitempty"`
	URI            DocumentURI `json:"uri"`
	Range          Range       `json:"range"`
	SelectionRange Range       `json:"selectionRange"`
}

// IncomingCall is a call into an item.
type IncomingCall struct {
	From       CallHierarchyItem `json:"from"`
	FromRanges []Range           `json:"fromRanges"`
}

// OutgoingCall is a call made by an item.
type OutgoingCall struct {
	To         CallHierarchyItem `json:"to"`
	FromRanges []Range           `json:"fromRanges"`
}

// TypeHierarchyItem is a node in a type graph, addressable by session and item id.
type TypeHierarchyItem struct {
	SessionID      string      `json:"_sessionId"`
	ItemID         string      `json:"_itemId"`
	Name           string      `json:"name"`
	Kind           int         `json:"kind"`
	Tags           []int       `json:"tags,omitempty"`
	Detail         string      `json:"detail,omitempty"`
	URI            DocumentURI `json:"uri"`
	Range          Range       `json:"range"`
	SelectionRange Range       `json:"selectionRange"`
}
