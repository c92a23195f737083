package hostrpc

// Incoming method names.
const (
	MethodProvideDocumentSymbols = "$provideDocumentSymbols"

	MethodProvideCodeLenses = "$provideCodeLenses"
	MethodResolveCodeLens   = "$resolveCodeLens"
	MethodReleaseCodeLenses = "$releaseCodeLenses"

	MethodProvideDefinition     = "$provideDefinition"
	MethodProvideDeclaration    = "$provideDeclaration"
	MethodProvideImplementation = "$provideImplementation"
	MethodProvideTypeDefinition = "$provideTypeDefinition"

	MethodProvideHover                 = "$provideHover"
	MethodReleaseHover                 = "$releaseHover"
	MethodProvideEvaluatableExpression = "$provideEvaluatableExpression"
	MethodProvideInlineValues          = "$provideInlineValues"

	MethodProvideDocumentHighlights      = "$provideDocumentHighlights"
	MethodProvideMultiDocumentHighlights = "$provideMultiDocumentHighlights"
	MethodProvideLinkedEditingRanges     = "$provideLinkedEditingRanges"
	MethodProvideReferences              = "$provideReferences"

	MethodProvideCodeActions = "$provideCodeActions"
	MethodResolveCodeAction  = "$resolveCodeAction"
	MethodReleaseCodeActions = "$releaseCodeActions"

	MethodProvideDocumentPasteEdits = "$provideDocumentPasteEdits"
	MethodResolveDocumentPasteEdit  = "$resolveDocumentPasteEdit"
	MethodReleaseDocumentPasteEdits = "$releaseDocumentPasteEdits"
	MethodProvideDocumentDropEdits  = "$provideDocumentDropEdits"
	MethodResolveDocumentDropEdit   = "$resolveDocumentDropEdit"
	MethodReleaseDocumentDropEdits  = "$releaseDocumentDropEdits"

	MethodProvideDocumentFormattingEdits       = "$provideDocumentFormattingEdits"
	MethodProvideDocumentRangeFormattingEdits  = "$provideDocumentRangeFormattingEdits"
	MethodProvideDocumentRangesFormattingEdits = "$provideDocumentRangesFormattingEdits"
	MethodProvideOnTypeFormattingEdits         = "$provideOnTypeFormattingEdits"

	MethodProvideWorkspaceSymbols = "$provideWorkspaceSymbols"
	MethodResolveWorkspaceSymbol  = "$resolveWorkspaceSymbol"
	MethodReleaseWorkspaceSymbols = "$releaseWorkspaceSymbols"

	MethodProvideRenameEdits    = "$provideRenameEdits"
	MethodResolveRenameLocation = "$resolveRenameLocation"
	MethodProvideNewSymbolNames = "$provideNewSymbolNames"

	MethodProvideDocumentSemanticTokens      = "$provideDocumentSemanticTokens"
	MethodReleaseDocumentSemanticTokens      = "$releaseDocumentSemanticTokens"
	MethodProvideDocumentRangeSemanticTokens = "$provideDocumentRangeSemanticTokens"

	MethodProvideCompletionItems = "$provideCompletionItems"
	MethodResolveCompletionItem  = "$resolveCompletionItem"
	MethodReleaseCompletionItems = "$releaseCompletionItems"

	MethodProvideInlineCompletions            = "$provideInlineCompletions"
	MethodHandleInlineCompletionDidShow       = "$handleInlineCompletionDidShow"
	MethodHandleInlineCompletionPartialAccept = "$handleInlineCompletionPartialAccept"
	MethodFreeInlineCompletionsList           = "$freeInlineCompletionsList"

	MethodProvideSignatureHelp = "$provideSignatureHelp"
	MethodReleaseSignatureHelp = "$releaseSignatureHelp"

	MethodProvideInlayHints = "$provideInlayHints"
	MethodResolveInlayHint  = "$resolveInlayHint"
	MethodReleaseInlayHints = "$releaseInlayHints"

	MethodProvideDocumentLinks = "$provideDocumentLinks"
	MethodResolveDocumentLink  = "$resolveDocumentLink"
	MethodReleaseDocumentLinks = "$releaseDocumentLinks"

	MethodProvideDocumentColors     = "$provideDocumentColors"
	MethodProvideColorPresentations = "$provideColorPresentations"

	MethodProvideFoldingRanges   = "$provideFoldingRanges"
	MethodProvideSelectionRanges = "$provideSelectionRanges"

	MethodPrepareCallHierarchy              = "$prepareCallHierarchy"
	MethodProvideCallHierarchyIncomingCalls = "$provideCallHierarchyIncomingCalls"
	MethodProvideCallHierarchyOutgoingCalls = "$provideCallHierarchyOutgoingCalls"
	MethodReleaseCallHierarchy              = "$releaseCallHierarchy"

	MethodPrepareTypeHierarchy           = "$prepareTypeHierarchy"
	MethodProvideTypeHierarchySupertypes = "$provideTypeHierarchySupertypes"
	MethodProvideTypeHierarchySubtypes   = "$provideTypeHierarchySubtypes"
	MethodReleaseTypeHierarchy           = "$releaseTypeHierarchy"

	// Documents
	MethodAcceptDocumentOpened  = "$acceptDocumentOpened"
	MethodAcceptDocumentChanged = "$acceptDocumentChanged"
	MethodAcceptDocumentClosed  = "$acceptDocumentClosed"

	// Commands
	MethodExecuteCommand = "$executeCommand"
	MethodGetCommands    = "$getCommands"
)

// Outgoing method names. Provider registrations and events are built
// from the feature kind, e.g. $registerHoverProvider and $emitCodeLensEvent.
const (
	MethodUnregister         = "$unregister"
	MethodPublishDiagnostics = "$publishDiagnostics"
)

func registerMethod(kind string) string { return "$register" + kind + "Provider" }

func emitMethod(kind string) string { return "$emit" + kind + "Event" }
