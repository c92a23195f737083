package extapi

import (
	"context"

	"github.com/dshills/langbridge/internal/dispose"
)

// Every provider method receives the request context. Providers should stop
// work when it is cancelled; the bridge stops waiting either way.

// ChangeNotifier is implemented by providers whose results can go stale.
// The bridge forwards change events to the UI process.
type ChangeNotifier interface {
	OnDidChange(listener func()) dispose.Disposable
}

// DocumentSymbolProvider supplies the document outline.
type DocumentSymbolProvider interface {
	ProvideDocumentSymbols(ctx context.Context, doc Document) (*DocumentSymbols, error)
}

// CodeLensProvider supplies code lenses.
type CodeLensProvider interface {
	ProvideCodeLenses(ctx context.Context, doc Document) ([]*CodeLens, error)
}

// CodeLensResolver fills in the command of a lens.
type CodeLensResolver interface {
	ResolveCodeLens(ctx context.Context, lens *CodeLens) (*CodeLens, error)
}

// DefinitionProvider finds definitions.
type DefinitionProvider interface {
	ProvideDefinition(ctx context.Context, doc Document, pos Position) ([]LocationLink, error)
}

// DeclarationProvider finds declarations.
type DeclarationProvider interface {
	ProvideDeclaration(ctx context.Context, doc Document, pos Position) ([]LocationLink, error)
}

// ImplementationProvider finds implementations.
type ImplementationProvider interface {
	ProvideImplementation(ctx context.Context, doc Document, pos Position) ([]LocationLink, error)
}

// TypeDefinitionProvider finds type definitions.
type TypeDefinitionProvider interface {
	ProvideTypeDefinition(ctx context.Context, doc Document, pos Position) ([]LocationLink, error)
}

// HoverProvider supplies hovers. hctx is nil unless the UI asks to change
// the verbosity of an earlier hover.
type HoverProvider interface {
	ProvideHover(ctx context.Context, doc Document, pos Position, hctx *HoverContext) (*Hover, error)
}

// EvaluatableExpressionProvider supplies debugger expressions.
type EvaluatableExpressionProvider interface {
	ProvideEvaluatableExpression(ctx context.Context, doc Document, pos Position) (*EvaluatableExpression, error)
}

// InlineValuesProvider supplies inline debug values.
type InlineValuesProvider interface {
	ProvideInlineValues(ctx context.Context, doc Document, viewport Range, ictx InlineValueContext) ([]InlineValue, error)
}

// DocumentHighlightProvider highlights related ranges.
type DocumentHighlightProvider interface {
	ProvideDocumentHighlights(ctx context.Context, doc Document, pos Position) ([]DocumentHighlight, error)
}

// MultiDocumentHighlightProvider highlights across documents.
type MultiDocumentHighlightProvider interface {
	ProvideMultiDocumentHighlights(ctx context.Context, doc Document, pos Position, others []Document) ([]MultiDocumentHighlight, error)
}

// LinkedEditingRangeProvider supplies linked ranges.
type LinkedEditingRangeProvider interface {
	ProvideLinkedEditingRanges(ctx context.Context, doc Document, pos Position) (*LinkedEditingRanges, error)
}

// ReferenceProvider finds references.
type ReferenceProvider interface {
	ProvideReferences(ctx context.Context, doc Document, pos Position, rctx ReferenceContext) ([]Location, error)
}

// CodeActionProvider supplies code actions.
type CodeActionProvider interface {
	ProvideCodeActions(ctx context.Context, doc Document, rng Range, cctx CodeActionContext) ([]CodeActionOrCommand, error)
}

// CodeActionResolver fills in the edit of a code action.
type CodeActionResolver interface {
	ResolveCodeAction(ctx context.Context, action *CodeAction) (*CodeAction, error)
}

// DocumentPasteEditProvider supplies edits on paste.
type DocumentPasteEditProvider interface {
	ProvideDocumentPasteEdits(ctx context.Context, doc Document, ranges []Range, data DataTransfer, pctx DocumentPasteEditContext) ([]*DocumentPasteEdit, error)
}

// DocumentPasteEditResolver fills in a paste edit.
type DocumentPasteEditResolver interface {
	ResolveDocumentPasteEdit(ctx context.Context, edit *DocumentPasteEdit) (*DocumentPasteEdit, error)
}

// DocumentDropEditProvider supplies edits on drop.
type DocumentDropEditProvider interface {
	ProvideDocumentDropEdits(ctx context.Context, doc Document, pos Position, data DataTransfer) ([]*DocumentDropEdit, error)
}

// DocumentDropEditResolver fills in a drop edit.
type DocumentDropEditResolver interface {
	ResolveDocumentDropEdit(ctx context.Context, edit *DocumentDropEdit) (*DocumentDropEdit, error)
}

// DocumentFormattingEditProvider formats whole documents.
type DocumentFormattingEditProvider interface {
	ProvideDocumentFormattingEdits(ctx context.Context, doc Document, opts FormattingOptions) ([]TextEdit, error)
}

// DocumentRangeFormattingEditProvider formats a range.
type DocumentRangeFormattingEditProvider interface {
	ProvideDocumentRangeFormattingEdits(ctx context.Context, doc Document, rng Range, opts FormattingOptions) ([]TextEdit, error)
}

// DocumentRangesFormattingEditProvider formats several ranges at once.
type DocumentRangesFormattingEditProvider interface {
	ProvideDocumentRangesFormattingEdits(ctx context.Context, doc Document, ranges []Range, opts FormattingOptions) ([]TextEdit, error)
}

// OnTypeFormattingEditProvider formats after a typed character.
type OnTypeFormattingEditProvider interface {
	ProvideOnTypeFormattingEdits(ctx context.Context, doc Document, pos Position, ch string, opts FormattingOptions) ([]TextEdit, error)
}

// WorkspaceSymbolProvider searches symbols across the workspace.
type WorkspaceSymbolProvider interface {
	ProvideWorkspaceSymbols(ctx context.Context, query string) ([]*SymbolInformation, error)
}

// WorkspaceSymbolResolver fills in the location of a symbol.
type WorkspaceSymbolResolver interface {
	ResolveWorkspaceSymbol(ctx context.Context, symbol *SymbolInformation) (*SymbolInformation, error)
}

// RenameProvider computes rename edits.
type RenameProvider interface {
	ProvideRenameEdits(ctx context.Context, doc Document, pos Position, newName string) (*WorkspaceEdit, error)
}

// RenameRejection refuses a rename. Rename providers return it (or wrap it)
// to show Reason to the user; any other error is a provider failure.
type RenameRejection struct {
	Reason string
}

func (e *RenameRejection) Error() string { return e.Reason }

// RejectRename returns a *RenameRejection with reason.
func RejectRename(reason string) error {
	return &RenameRejection{Reason: reason}
}

// RenamePreparer validates a rename location before the user types a name.
type RenamePreparer interface {
	PrepareRename(ctx context.Context, doc Document, pos Position) (*RenameLocation, error)
}

// NewSymbolNamesProvider suggests names for a symbol.
type NewSymbolNamesProvider interface {
	ProvideNewSymbolNames(ctx context.Context, doc Document, rng Range, trigger NewSymbolNameTriggerKind) ([]NewSymbolName, error)
}

// DocumentSemanticTokensProvider supplies full semantic tokens.
type DocumentSemanticTokensProvider interface {
	ProvideDocumentSemanticTokens(ctx context.Context, doc Document) (*SemanticTokens, error)
}

// SemanticTokensEditsProvider can answer relative to an earlier result. It
// may still return full tokens.
type SemanticTokensEditsProvider interface {
	ProvideDocumentSemanticTokensEdits(ctx context.Context, doc Document, previousResultID string) (SemanticTokensResult, error)
}

// DocumentRangeSemanticTokensProvider supplies tokens for a range.
type DocumentRangeSemanticTokensProvider interface {
	ProvideDocumentRangeSemanticTokens(ctx context.Context, doc Document, rng Range) (*SemanticTokens, error)
}

// CompletionItemProvider supplies completions.
type CompletionItemProvider interface {
	ProvideCompletionItems(ctx context.Context, doc Document, pos Position, cctx CompletionContext) (*CompletionList, error)
}

// CompletionItemResolver fills in expensive completion fields.
type CompletionItemResolver interface {
	ResolveCompletionItem(ctx context.Context, item *CompletionItem) (*CompletionItem, error)
}

// InlineCompletionItemProvider supplies inline completions.
type InlineCompletionItemProvider interface {
	ProvideInlineCompletionItems(ctx context.Context, doc Document, pos Position, ictx InlineCompletionContext) (*InlineCompletionList, error)
}

// InlineCompletionEventHandler observes the life of inline completions.
type InlineCompletionEventHandler interface {
	HandleDidShowCompletionItem(item *InlineCompletionItem, updatedInsertText string)
	HandleDidPartiallyAcceptCompletionItem(item *InlineCompletionItem, info PartialAcceptInfo)
}

// InlineCompletionListDisposer is told when a list is no longer used.
type InlineCompletionListDisposer interface {
	DisposeInlineCompletions(list *InlineCompletionList)
}

// SignatureHelpProvider supplies signature help.
type SignatureHelpProvider interface {
	ProvideSignatureHelp(ctx context.Context, doc Document, pos Position, sctx SignatureHelpContext) (*SignatureHelp, error)
}

// InlayHintsProvider supplies inlay hints.
type InlayHintsProvider interface {
	ProvideInlayHints(ctx context.Context, doc Document, rng Range) ([]*InlayHint, error)
}

// InlayHintResolver fills in hint tooltips and label parts.
type InlayHintResolver interface {
	ResolveInlayHint(ctx context.Context, hint *InlayHint) (*InlayHint, error)
}

// DocumentLinkProvider supplies links.
type DocumentLinkProvider interface {
	ProvideDocumentLinks(ctx context.Context, doc Document) ([]*DocumentLink, error)
}

// DocumentLinkResolver fills in link targets.
type DocumentLinkResolver interface {
	ResolveDocumentLink(ctx context.Context, link *DocumentLink) (*DocumentLink, error)
}

// DocumentColorProvider finds and presents colors.
type DocumentColorProvider interface {
	ProvideDocumentColors(ctx context.Context, doc Document) ([]ColorInformation, error)
	ProvideColorPresentations(ctx context.Context, color Color, doc Document, rng Range) ([]ColorPresentation, error)
}

// FoldingRangeProvider supplies folding ranges.
type FoldingRangeProvider interface {
	ProvideFoldingRanges(ctx context.Context, doc Document) ([]FoldingRange, error)
}

// SelectionRangeProvider supplies expanding selections.
type SelectionRangeProvider interface {
	ProvideSelectionRanges(ctx context.Context, doc Document, positions []Position) ([]*SelectionRange, error)
}

// CallHierarchyProvider navigates calls.
type CallHierarchyProvider interface {
	PrepareCallHierarchy(ctx context.Context, doc Document, pos Position) ([]*CallHierarchyItem, error)
	ProvideCallHierarchyIncomingCalls(ctx context.Context, item *CallHierarchyItem) ([]CallHierarchyIncomingCall, error)
	ProvideCallHierarchyOutgoingCalls(ctx context.Context, item *CallHierarchyItem) ([]CallHierarchyOutgoingCall, error)
}

// TypeHierarchyProvider navigates type relations.
type TypeHierarchyProvider interface {
	PrepareTypeHierarchy(ctx context.Context, doc Document, pos Position) ([]*TypeHierarchyItem, error)
	ProvideTypeHierarchySupertypes(ctx context.Context, item *TypeHierarchyItem) ([]*TypeHierarchyItem, error)
	ProvideTypeHierarchySubtypes(ctx context.Context, item *TypeHierarchyItem) ([]*TypeHierarchyItem, error)
}
