package bridge

import (
	"context"
	"errors"
	"fmt"
)

// Standard errors returned by the bridge.
var (
	// ErrCancelled indicates the caller stopped waiting for a provider.
	ErrCancelled = errors.New("request cancelled")

	// ErrProviderPanic indicates a provider panicked while handling a request.
	ErrProviderPanic = errors.New("provider panicked")

	// ErrInvalidSelectionRange indicates a selection range chain that does not
	// expand outward from the requested position.
	ErrInvalidSelectionRange = errors.New("invalid selection range, must contain the previous range")
)

// UsageError reports a request that references state the bridge never
// handed out, such as an unknown hover id or hierarchy item.
type UsageError struct {
	Op      string
	Message string
}

// Error implements the error interface.
func (e *UsageError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func usageErrorf(op, format string, args ...any) error {
	return &UsageError{Op: op, Message: fmt.Sprintf(format, args...)}
}

// IsUsageError reports whether err is or wraps a *UsageError.
func IsUsageError(err error) bool {
	var ue *UsageError
	return errors.As(err, &ue)
}

// IsCancellation reports whether err stems from a cancelled or expired context.
func IsCancellation(err error) bool {
	return errors.Is(err, ErrCancelled) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func cancelled(cause error) error {
	if cause == nil || errors.Is(cause, ErrCancelled) {
		return ErrCancelled
	}
	return fmt.Errorf("%w: %w", ErrCancelled, cause)
}
