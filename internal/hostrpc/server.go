package hostrpc

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dshills/langbridge/internal/bridge"
	"github.com/dshills/langbridge/internal/commands"
	"github.com/dshills/langbridge/internal/documents"
	"github.com/dshills/langbridge/internal/logging"
	"github.com/dshills/langbridge/internal/protocol"
	"github.com/dshills/langbridge/internal/wire"
)

// Registrar accepts method handlers. *wire.Conn implements it.
type Registrar interface {
	Handle(method string, h wire.Handler)
}

// Server exposes the bridge, the document store and the command registry
// as wire methods.
type Server struct {
	features *bridge.LanguageFeatures
	docs     *documents.Store
	commands *commands.Registry
	log      *logging.Logger
}

// NewServer creates a server. docs and cmds may be nil, in which case the
// document and command methods are not bound.
func NewServer(features *bridge.LanguageFeatures, docs *documents.Store, cmds *commands.Registry, log *logging.Logger) *Server {
	if log == nil {
		log = logging.Null()
	}
	return &Server{
		features: features,
		docs:     docs,
		commands: cmds,
		log:      log.WithComponent("hostrpc"),
	}
}

// MapError maps bridge errors onto JSON-RPC error codes. Use it with
// wire.WithErrorMapper.
func MapError(err error) *wire.RPCError {
	switch {
	case bridge.IsCancellation(err):
		return &wire.RPCError{Code: wire.CodeRequestCancelled, Message: err.Error()}
	case bridge.IsUsageError(err):
		return &wire.RPCError{Code: wire.CodeInvalidParams, Message: err.Error()}
	case errors.Is(err, commands.ErrUnknownCommand):
		return &wire.RPCError{Code: wire.CodeMethodNotFound, Message: err.Error()}
	case errors.Is(err, commands.ErrInvalidCommand), errors.Is(err, commands.ErrStaleDelegation):
		return &wire.RPCError{Code: wire.CodeInvalidParams, Message: err.Error()}
	default:
		return wire.DefaultErrorMapper(err)
	}
}

// bind registers fn under method, decoding its params into P. Missing or
// null params decode to the zero P.
func bind[P any](r Registrar, method string, fn func(ctx context.Context, p P) (any, error)) {
	r.Handle(method, func(ctx context.Context, raw json.RawMessage) (any, error) {
		var p P
		if len(raw) > 0 && string(raw) != "null" {
			if err := json.Unmarshal(raw, &p); err != nil {
				return nil, wire.InvalidParams(err)
			}
		}
		return fn(ctx, p)
	})
}

// Bind registers every method on r.
func (s *Server) Bind(r Registrar) {
	s.bindNavigation(r)
	s.bindEditing(r)
	s.bindCached(r)
	s.bindHierarchies(r)
	if s.docs != nil {
		s.bindDocuments(r)
	}
	if s.commands != nil {
		s.bindCommands(r)
	}
}

func (s *Server) bindNavigation(r Registrar) {
	lf := s.features

	bind(r, MethodProvideDocumentSymbols, func(ctx context.Context, p documentParams) (any, error) {
		return lf.ProvideDocumentSymbols(ctx, p.Handle, p.URI)
	})
	bind(r, MethodProvideDefinition, func(ctx context.Context, p positionParams) (any, error) {
		return lf.ProvideDefinition(ctx, p.Handle, p.URI, p.Position)
	})
	bind(r, MethodProvideDeclaration, func(ctx context.Context, p positionParams) (any, error) {
		return lf.ProvideDeclaration(ctx, p.Handle, p.URI, p.Position)
	})
	bind(r, MethodProvideImplementation, func(ctx context.Context, p positionParams) (any, error) {
		return lf.ProvideImplementation(ctx, p.Handle, p.URI, p.Position)
	})
	bind(r, MethodProvideTypeDefinition, func(ctx context.Context, p positionParams) (any, error) {
		return lf.ProvideTypeDefinition(ctx, p.Handle, p.URI, p.Position)
	})
	bind(r, MethodProvideHover, func(ctx context.Context, p hoverParams) (any, error) {
		return lf.ProvideHover(ctx, p.Handle, p.URI, p.Position, p.Context)
	})
	bind(r, MethodReleaseHover, func(_ context.Context, p releaseIDParams) (any, error) {
		lf.ReleaseHover(p.Handle, p.ID)
		return nil, nil
	})
	bind(r, MethodProvideEvaluatableExpression, func(ctx context.Context, p positionParams) (any, error) {
		return lf.ProvideEvaluatableExpression(ctx, p.Handle, p.URI, p.Position)
	})
	bind(r, MethodProvideInlineValues, func(ctx context.Context, p inlineValuesParams) (any, error) {
		return lf.ProvideInlineValues(ctx, p.Handle, p.URI, p.Viewport, p.Context)
	})
	bind(r, MethodProvideDocumentHighlights, func(ctx context.Context, p positionParams) (any, error) {
		return lf.ProvideDocumentHighlights(ctx, p.Handle, p.URI, p.Position)
	})
	bind(r, MethodProvideMultiDocumentHighlights, func(ctx context.Context, p multiHighlightParams) (any, error) {
		return lf.ProvideMultiDocumentHighlights(ctx, p.Handle, p.URI, p.Position, p.OtherDocuments)
	})
	bind(r, MethodProvideLinkedEditingRanges, func(ctx context.Context, p positionParams) (any, error) {
		return lf.ProvideLinkedEditingRanges(ctx, p.Handle, p.URI, p.Position)
	})
	bind(r, MethodProvideReferences, func(ctx context.Context, p referencesParams) (any, error) {
		return lf.ProvideReferences(ctx, p.Handle, p.URI, p.Position, p.Context)
	})
	bind(r, MethodProvideDocumentColors, func(ctx context.Context, p documentParams) (any, error) {
		return lf.ProvideDocumentColors(ctx, p.Handle, p.URI)
	})
	bind(r, MethodProvideColorPresentations, func(ctx context.Context, p colorPresentationParams) (any, error) {
		return lf.ProvideColorPresentations(ctx, p.Handle, p.URI, p.Request)
	})
	bind(r, MethodProvideFoldingRanges, func(ctx context.Context, p documentParams) (any, error) {
		return lf.ProvideFoldingRanges(ctx, p.Handle, p.URI)
	})
	bind(r, MethodProvideSelectionRanges, func(ctx context.Context, p selectionRangeParams) (any, error) {
		return lf.ProvideSelectionRanges(ctx, p.Handle, p.URI, p.Positions)
	})
	bind(r, MethodProvideSignatureHelp, func(ctx context.Context, p signatureHelpParams) (any, error) {
		return lf.ProvideSignatureHelp(ctx, p.Handle, p.URI, p.Position, p.Context)
	})
	bind(r, MethodReleaseSignatureHelp, func(_ context.Context, p releaseIDParams) (any, error) {
		lf.ReleaseSignatureHelp(p.Handle, p.ID)
		return nil, nil
	})
}

func (s *Server) bindEditing(r Registrar) {
	lf := s.features

	bind(r, MethodProvideDocumentFormattingEdits, func(ctx context.Context, p formattingParams) (any, error) {
		return lf.ProvideDocumentFormattingEdits(ctx, p.Handle, p.URI, p.Options)
	})
	bind(r, MethodProvideDocumentRangeFormattingEdits, func(ctx context.Context, p rangeFormattingParams) (any, error) {
		return lf.ProvideDocumentRangeFormattingEdits(ctx, p.Handle, p.URI, p.Range, p.Options)
	})
	bind(r, MethodProvideDocumentRangesFormattingEdits, func(ctx context.Context, p rangesFormattingParams) (any, error) {
		return lf.ProvideDocumentRangesFormattingEdits(ctx, p.Handle, p.URI, p.Ranges, p.Options)
	})
	bind(r, MethodProvideOnTypeFormattingEdits, func(ctx context.Context, p onTypeFormattingParams) (any, error) {
		return lf.ProvideOnTypeFormattingEdits(ctx, p.Handle, p.URI, p.Position, p.Ch, p.Options)
	})
	bind(r, MethodProvideRenameEdits, func(ctx context.Context, p renameParams) (any, error) {
		return lf.ProvideRenameEdits(ctx, p.Handle, p.URI, p.Position, p.NewName)
	})
	bind(r, MethodResolveRenameLocation, func(ctx context.Context, p positionParams) (any, error) {
		return lf.ResolveRenameLocation(ctx, p.Handle, p.URI, p.Position)
	})
	bind(r, MethodProvideNewSymbolNames, func(ctx context.Context, p newSymbolNamesParams) (any, error) {
		return lf.ProvideNewSymbolNames(ctx, p.Handle, p.URI, p.Range, p.TriggerKind)
	})
	bind(r, MethodProvideDocumentSemanticTokens, func(ctx context.Context, p semanticTokensParams) (any, error) {
		return lf.ProvideDocumentSemanticTokens(ctx, p.Handle, p.URI, p.PreviousResultID)
	})
	bind(r, MethodReleaseDocumentSemanticTokens, func(_ context.Context, p releaseIDParams) (any, error) {
		lf.ReleaseDocumentSemanticTokens(p.Handle, p.ID)
		return nil, nil
	})
	bind(r, MethodProvideDocumentRangeSemanticTokens, func(ctx context.Context, p rangeParams) (any, error) {
		return lf.ProvideDocumentRangeSemanticTokens(ctx, p.Handle, p.URI, p.Range)
	})
	bind(r, MethodProvideInlineCompletions, func(ctx context.Context, p inlineCompletionParams) (any, error) {
		return lf.ProvideInlineCompletions(ctx, p.Handle, p.URI, p.Position, p.Context)
	})
	bind(r, MethodHandleInlineCompletionDidShow, func(_ context.Context, p inlineDidShowParams) (any, error) {
		lf.HandleInlineCompletionDidShow(p.Handle, p.Pid, p.Idx, p.UpdatedInsertText)
		return nil, nil
	})
	bind(r, MethodHandleInlineCompletionPartialAccept, func(_ context.Context, p inlinePartialAcceptParams) (any, error) {
		lf.HandleInlineCompletionPartialAccept(p.Handle, p.Pid, p.Idx, p.Info)
		return nil, nil
	})
	bind(r, MethodFreeInlineCompletionsList, func(_ context.Context, p inlineFreeParams) (any, error) {
		lf.FreeInlineCompletionsList(p.Handle, p.Pid)
		return nil, nil
	})
}

// bindCached binds the features whose results live in a cache and are
// resolved and released by id.
func (s *Server) bindCached(r Registrar) {
	lf := s.features

	bind(r, MethodProvideCodeLenses, func(ctx context.Context, p documentParams) (any, error) {
		return lf.ProvideCodeLenses(ctx, p.Handle, p.URI)
	})
	bind(r, MethodResolveCodeLens, func(ctx context.Context, p resolveParams) (any, error) {
		return lf.ResolveCodeLens(ctx, p.Handle, p.ID)
	})
	bind(r, MethodReleaseCodeLenses, func(_ context.Context, p releaseParams) (any, error) {
		lf.ReleaseCodeLenses(p.Handle, p.CacheID)
		return nil, nil
	})

	bind(r, MethodProvideCodeActions, func(ctx context.Context, p codeActionParams) (any, error) {
		return lf.ProvideCodeActions(ctx, p.Handle, p.URI, p.Range, p.Context)
	})
	bind(r, MethodResolveCodeAction, func(ctx context.Context, p resolveParams) (any, error) {
		return lf.ResolveCodeAction(ctx, p.Handle, p.ID)
	})
	bind(r, MethodReleaseCodeActions, func(_ context.Context, p releaseParams) (any, error) {
		lf.ReleaseCodeActions(p.Handle, p.CacheID)
		return nil, nil
	})

	bind(r, MethodProvideDocumentPasteEdits, func(ctx context.Context, p pasteParams) (any, error) {
		return lf.ProvideDocumentPasteEdits(ctx, p.Handle, p.URI, p.Ranges, p.DataTransfer, p.Context)
	})
	bind(r, MethodResolveDocumentPasteEdit, func(ctx context.Context, p resolveParams) (any, error) {
		return lf.ResolveDocumentPasteEdit(ctx, p.Handle, p.ID)
	})
	bind(r, MethodReleaseDocumentPasteEdits, func(_ context.Context, p releaseParams) (any, error) {
		lf.ReleaseDocumentPasteEdits(p.Handle, p.CacheID)
		return nil, nil
	})

	bind(r, MethodProvideDocumentDropEdits, func(ctx context.Context, p dropParams) (any, error) {
		return lf.ProvideDocumentDropEdits(ctx, p.Handle, p.URI, p.Position, p.DataTransfer)
	})
	bind(r, MethodResolveDocumentDropEdit, func(ctx context.Context, p resolveParams) (any, error) {
		return lf.ResolveDocumentDropEdit(ctx, p.Handle, p.ID)
	})
	bind(r, MethodReleaseDocumentDropEdits, func(_ context.Context, p releaseParams) (any, error) {
		lf.ReleaseDocumentDropEdits(p.Handle, p.CacheID)
		return nil, nil
	})

	bind(r, MethodProvideWorkspaceSymbols, func(ctx context.Context, p workspaceSymbolsParams) (any, error) {
		return lf.ProvideWorkspaceSymbols(ctx, p.Handle, p.Query)
	})
	bind(r, MethodResolveWorkspaceSymbol, func(ctx context.Context, p resolveWorkspaceSymbolParams) (any, error) {
		return lf.ResolveWorkspaceSymbol(ctx, p.Handle, p.Symbol)
	})
	bind(r, MethodReleaseWorkspaceSymbols, func(_ context.Context, p releaseParams) (any, error) {
		lf.ReleaseWorkspaceSymbols(p.Handle, p.CacheID)
		return nil, nil
	})

	bind(r, MethodProvideCompletionItems, func(ctx context.Context, p completionParams) (any, error) {
		return lf.ProvideCompletionItems(ctx, p.Handle, p.URI, p.Position, p.Context)
	})
	bind(r, MethodResolveCompletionItem, func(ctx context.Context, p resolveParams) (any, error) {
		return lf.ResolveCompletionItem(ctx, p.Handle, p.ID)
	})
	bind(r, MethodReleaseCompletionItems, func(_ context.Context, p releaseParams) (any, error) {
		lf.ReleaseCompletionItems(p.Handle, p.CacheID)
		return nil, nil
	})

	bind(r, MethodProvideInlayHints, func(ctx context.Context, p rangeParams) (any, error) {
		return lf.ProvideInlayHints(ctx, p.Handle, p.URI, p.Range)
	})
	bind(r, MethodResolveInlayHint, func(ctx context.Context, p resolveParams) (any, error) {
		return lf.ResolveInlayHint(ctx, p.Handle, p.ID)
	})
	bind(r, MethodReleaseInlayHints, func(_ context.Context, p releaseParams) (any, error) {
		lf.ReleaseInlayHints(p.Handle, p.CacheID)
		return nil, nil
	})

	bind(r, MethodProvideDocumentLinks, func(ctx context.Context, p documentParams) (any, error) {
		return lf.ProvideDocumentLinks(ctx, p.Handle, p.URI)
	})
	bind(r, MethodResolveDocumentLink, func(ctx context.Context, p resolveParams) (any, error) {
		return lf.ResolveDocumentLink(ctx, p.Handle, p.ID)
	})
	bind(r, MethodReleaseDocumentLinks, func(_ context.Context, p releaseParams) (any, error) {
		lf.ReleaseDocumentLinks(p.Handle, p.CacheID)
		return nil, nil
	})
}

func (s *Server) bindHierarchies(r Registrar) {
	lf := s.features

	bind(r, MethodPrepareCallHierarchy, func(ctx context.Context, p positionParams) (any, error) {
		return lf.PrepareCallHierarchy(ctx, p.Handle, p.URI, p.Position)
	})
	bind(r, MethodProvideCallHierarchyIncomingCalls, func(ctx context.Context, p sessionParams) (any, error) {
		return lf.ProvideCallHierarchyIncomingCalls(ctx, p.Handle, p.SessionID, p.ItemID)
	})
	bind(r, MethodProvideCallHierarchyOutgoingCalls, func(ctx context.Context, p sessionParams) (any, error) {
		return lf.ProvideCallHierarchyOutgoingCalls(ctx, p.Handle, p.SessionID, p.ItemID)
	})
	bind(r, MethodReleaseCallHierarchy, func(_ context.Context, p releaseSessionParams) (any, error) {
		lf.ReleaseCallHierarchy(p.Handle, p.SessionID)
		return nil, nil
	})

	bind(r, MethodPrepareTypeHierarchy, func(ctx context.Context, p positionParams) (any, error) {
		return lf.PrepareTypeHierarchy(ctx, p.Handle, p.URI, p.Position)
	})
	bind(r, MethodProvideTypeHierarchySupertypes, func(ctx context.Context, p sessionParams) (any, error) {
		return lf.ProvideTypeHierarchySupertypes(ctx, p.Handle, p.SessionID, p.ItemID)
	})
	bind(r, MethodProvideTypeHierarchySubtypes, func(ctx context.Context, p sessionParams) (any, error) {
		return lf.ProvideTypeHierarchySubtypes(ctx, p.Handle, p.SessionID, p.ItemID)
	})
	bind(r, MethodReleaseTypeHierarchy, func(_ context.Context, p releaseSessionParams) (any, error) {
		lf.ReleaseTypeHierarchy(p.Handle, p.SessionID)
		return nil, nil
	})
}

func (s *Server) bindDocuments(r Registrar) {
	bind(r, MethodAcceptDocumentOpened, func(_ context.Context, p protocol.DocumentData) (any, error) {
		return nil, s.docs.Open(p)
	})
	bind(r, MethodAcceptDocumentChanged, func(_ context.Context, p protocol.DocumentChange) (any, error) {
		return nil, s.docs.Change(p)
	})
	bind(r, MethodAcceptDocumentClosed, func(_ context.Context, p protocol.DocumentClose) (any, error) {
		return nil, s.docs.Close(p.URI)
	})
}

func (s *Server) bindCommands(r Registrar) {
	bind(r, MethodExecuteCommand, func(ctx context.Context, p executeCommandParams) (any, error) {
		s.log.Debug("executing %s", p.ID)
		return s.commands.Execute(ctx, p.ID, p.Arguments...)
	})
	bind(r, MethodGetCommands, func(context.Context, struct{}) (any, error) {
		return s.commands.List(), nil
	})
}
