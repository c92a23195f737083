package bridge

// Kind identifies the language feature an adapter serves.
type Kind int

// Feature kinds.
const (
	KindDocumentSymbol Kind = iota + 1
	KindCodeLens
	KindDefinition
	KindDeclaration
	KindImplementation
	KindTypeDefinition
	KindHover
	KindEvaluatableExpression
	KindInlineValues
	KindDocumentHighlight
	KindMultiDocumentHighlight
	KindLinkedEditingRange
	KindReference
	KindCodeAction
	KindDocumentPasteEdit
	KindDocumentDropEdit
	KindDocumentFormatting
	KindRangeFormatting
	KindOnTypeFormatting
	KindWorkspaceSymbol
	KindRename
	KindNewSymbolNames
	KindDocumentSemanticTokens
	KindDocumentRangeSemanticTokens
	KindCompletion
	KindInlineCompletion
	KindSignatureHelp
	KindInlayHints
	KindDocumentLink
	KindColor
	KindFoldingRange
	KindSelectionRange
	KindCallHierarchy
	KindTypeHierarchy
)

var kindNames = map[Kind]string{
	KindDocumentSymbol:              "DocumentSymbol",
	KindCodeLens:                    "CodeLens",
	KindDefinition:                  "Definition",
	KindDeclaration:                 "Declaration",
	KindImplementation:              "Implementation",
	KindTypeDefinition:              "TypeDefinition",
	KindHover:                       "Hover",
	KindEvaluatableExpression:       "EvaluatableExpression",
	KindInlineValues:                "InlineValues",
	KindDocumentHighlight:           "DocumentHighlight",
	KindMultiDocumentHighlight:      "MultiDocumentHighlight",
	KindLinkedEditingRange:          "LinkedEditingRange",
	KindReference:                   "Reference",
	KindCodeAction:                  "CodeAction",
	KindDocumentPasteEdit:           "DocumentPasteEdit",
	KindDocumentDropEdit:            "DocumentDropEdit",
	KindDocumentFormatting:          "DocumentFormatting",
	KindRangeFormatting:             "RangeFormatting",
	KindOnTypeFormatting:            "OnTypeFormatting",
	KindWorkspaceSymbol:             "WorkspaceSymbol",
	KindRename:                      "Rename",
	KindNewSymbolNames:              "NewSymbolNames",
	KindDocumentSemanticTokens:      "DocumentSemanticTokens",
	KindDocumentRangeSemanticTokens: "DocumentRangeSemanticTokens",
	KindCompletion:                  "Completion",
	KindInlineCompletion:            "InlineCompletion",
	KindSignatureHelp:               "SignatureHelp",
	KindInlayHints:                  "InlayHints",
	KindDocumentLink:                "DocumentLink",
	KindColor:                       "Color",
	KindFoldingRange:                "FoldingRange",
	KindSelectionRange:              "SelectionRange",
	KindCallHierarchy:               "CallHierarchy",
	KindTypeHierarchy:               "TypeHierarchy",
}

// String returns the feature name used in wire method names.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Kinds returns every feature kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kindNames))
	for k := KindDocumentSymbol; k <= KindTypeHierarchy; k++ {
		out = append(out, k)
	}
	return out
}
