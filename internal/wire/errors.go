package wire

import (
	"context"
	"errors"
	"fmt"
)

// Standard errors returned by the connection.
var (
	// ErrClosed indicates the connection has been closed.
	ErrClosed = errors.New("wire: connection closed")

	// ErrMissingContentLength indicates a frame without a Content-Length header.
	ErrMissingContentLength = errors.New("wire: missing Content-Length header")

	// ErrMessageTooLarge indicates a frame above the configured limit.
	ErrMessageTooLarge = errors.New("wire: message too large")
)

// RPCError is a JSON-RPC error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	if e.Data != nil {
		return fmt.Sprintf("rpc error %d: %s (data: %v)", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Standard JSON-RPC error codes.
const (
	CodeParseError       = -32700
	CodeInvalidRequest   = -32600
	CodeMethodNotFound   = -32601
	CodeInvalidParams    = -32602
	CodeInternalError    = -32603
	CodeRequestCancelled = -32800
)

// InvalidParams wraps err as an invalid params error.
func InvalidParams(err error) *RPCError {
	return &RPCError{Code: CodeInvalidParams, Message: err.Error()}
}

// ErrorMapper turns a handler error into the error object sent to the peer.
type ErrorMapper func(err error) *RPCError

// DefaultErrorMapper passes *RPCError through, maps context errors to
// CodeRequestCancelled and everything else to CodeInternalError.
func DefaultErrorMapper(err error) *RPCError {
	var rpcErr *RPCError
	switch {
	case errors.As(err, &rpcErr):
		return rpcErr
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &RPCError{Code: CodeRequestCancelled, Message: err.Error()}
	default:
		return &RPCError{Code: CodeInternalError, Message: err.Error()}
	}
}
