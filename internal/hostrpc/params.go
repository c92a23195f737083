package hostrpc

import "github.com/dshills/langbridge/internal/protocol"

// documentParams addresses a provider and a document.
type documentParams struct {
	Handle int                  `json:"handle"`
	URI    protocol.DocumentURI `json:"uri"`
}

type positionParams struct {
	Handle   int                  `json:"handle"`
	URI      protocol.DocumentURI `json:"uri"`
	Position protocol.Position    `json:"position"`
}

type rangeParams struct {
	Handle int                  `json:"handle"`
	URI    protocol.DocumentURI `json:"uri"`
	Range  protocol.Range       `json:"range"`
}

type resolveParams struct {
	Handle int                     `json:"handle"`
	ID     protocol.ChainedCacheID `json:"id"`
}

type releaseParams struct {
	Handle  int `json:"handle"`
	CacheID int `json:"cacheId"`
}

type releaseIDParams struct {
	Handle int `json:"handle"`
	ID     int `json:"id"`
}

type sessionParams struct {
	Handle    int    `json:"handle"`
	SessionID string `json:"sessionId"`
	ItemID    string `json:"itemId"`
}

type hoverParams struct {
	Handle   int                    `json:"handle"`
	URI      protocol.DocumentURI   `json:"uri"`
	Position protocol.Position      `json:"position"`
	Context  *protocol.HoverContext `json:"context,omitempty"`
}

type inlineValuesParams struct {
	Handle   int                         `json:"handle"`
	URI      protocol.DocumentURI        `json:"uri"`
	Viewport protocol.Range              `json:"viewport"`
	Context  protocol.InlineValueContext `json:"context"`
}

type multiHighlightParams struct {
	Handle         int                    `json:"handle"`
	URI            protocol.DocumentURI   `json:"uri"`
	Position       protocol.Position      `json:"position"`
	OtherDocuments []protocol.DocumentURI `json:"otherDocuments"`
}

type referencesParams struct {
	Handle   int                       `json:"handle"`
	URI      protocol.DocumentURI      `json:"uri"`
	Position protocol.Position         `json:"position"`
	Context  protocol.ReferenceContext `json:"context"`
}

type codeActionParams struct {
	Handle  int                        `json:"handle"`
	URI     protocol.DocumentURI       `json:"uri"`
	Range   protocol.Range             `json:"range"`
	Context protocol.CodeActionContext `json:"context"`
}

type pasteParams struct {
	Handle       int                       `json:"handle"`
	URI          protocol.DocumentURI      `json:"uri"`
	Ranges       []protocol.Range          `json:"ranges"`
	DataTransfer protocol.DataTransfer     `json:"dataTransfer"`
	Context      protocol.PasteEditContext `json:"context"`
}

type dropParams struct {
	Handle       int                   `json:"handle"`
	URI          protocol.DocumentURI  `json:"uri"`
	Position     protocol.Position     `json:"position"`
	DataTransfer protocol.DataTransfer `json:"dataTransfer"`
}

type formattingParams struct {
	Handle  int                        `json:"handle"`
	URI     protocol.DocumentURI       `json:"uri"`
	Options protocol.FormattingOptions `json:"options"`
}

type rangeFormattingParams struct {
	Handle  int                        `json:"handle"`
	URI     protocol.DocumentURI       `json:"uri"`
	Range   protocol.Range             `json:"range"`
	Options protocol.FormattingOptions `json:"options"`
}

type rangesFormattingParams struct {
	Handle  int                        `json:"handle"`
	URI     protocol.DocumentURI       `json:"uri"`
	Ranges  []protocol.Range           `json:"ranges"`
	Options protocol.FormattingOptions `json:"options"`
}

type onTypeFormattingParams struct {
	Handle   int                        `json:"handle"`
	URI      protocol.DocumentURI       `json:"uri"`
	Position protocol.Position          `json:"position"`
	Ch       string                     `json:"ch"`
	Options  protocol.FormattingOptions `json:"options"`
}

type workspaceSymbolsParams struct {
	Handle int    `json:"handle"`
	Query  string `json:"query"`
}

type resolveWorkspaceSymbolParams struct {
	Handle int                      `json:"handle"`
	Symbol protocol.WorkspaceSymbol `json:"symbol"`
}

type renameParams struct {
	Handle   int                  `json:"handle"`
	URI      protocol.DocumentURI `json:"uri"`
	Position protocol.Position    `json:"position"`
	NewName  string               `json:"newName"`
}

type newSymbolNamesParams struct {
	Handle      int                  `json:"handle"`
	URI         protocol.DocumentURI `json:"uri"`
	Range       protocol.Range       `json:"range"`
	TriggerKind int                  `json:"triggerKind"`
}

type semanticTokensParams struct {
	Handle           int                  `json:"handle"`
	URI              protocol.DocumentURI `json:"uri"`
	PreviousResultID int                  `json:"previousResultId"`
}

type completionParams struct {
	Handle   int                        `json:"handle"`
	URI      protocol.DocumentURI       `json:"uri"`
	Position protocol.Position          `json:"position"`
	Context  protocol.CompletionContext `json:"context"`
}

type inlineCompletionParams struct {
	Handle   int                              `json:"handle"`
	URI      protocol.DocumentURI             `json:"uri"`
	Position protocol.Position                `json:"position"`
	Context  protocol.InlineCompletionContext `json:"context"`
}

type inlineDidShowParams struct {
	Handle            int    `json:"handle"`
	Pid               int    `json:"pid"`
	Idx               int    `json:"idx"`
	UpdatedInsertText string `json:"updatedInsertText"`
}

type inlinePartialAcceptParams struct {
	Handle int                        `json:"handle"`
	Pid    int                        `json:"pid"`
	Idx    int                        `json:"idx"`
	Info   protocol.PartialAcceptInfo `json:"info"`
}

type inlineFreeParams struct {
	Handle int `json:"handle"`
	Pid    int `json:"pid"`
}

type signatureHelpParams struct {
	Handle   int                           `json:"handle"`
	URI      protocol.DocumentURI          `json:"uri"`
	Position protocol.Position             `json:"position"`
	Context  protocol.SignatureHelpContext `json:"context"`
}

type colorPresentationParams struct {
	Handle  int                               `json:"handle"`
	URI     protocol.DocumentURI              `json:"uri"`
	Request protocol.ColorPresentationRequest `json:"request"`
}

type selectionRangeParams struct {
	Handle    int                  `json:"handle"`
	URI       protocol.DocumentURI `json:"uri"`
	Positions []protocol.Position  `json:"positions"`
}

type releaseSessionParams struct {
	Handle    int    `json:"handle"`
	SessionID string `json:"sessionId"`
}

type executeCommandParams struct {
	ID        string `json:"id"`
	Arguments []any  `json:"arguments"`
}
