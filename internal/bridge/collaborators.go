package bridge

import (
	"errors"
	"time"

	"github.com/dshills/langbridge/internal/dispose"
	"github.com/dshills/langbridge/internal/extapi"
	"github.com/dshills/langbridge/internal/protocol"
)

// MainThread is the remote side that learns about registrations.
type MainThread interface {
	// RegisterProvider announces a provider of kind.
	RegisterProvider(kind Kind, reg protocol.Registration)
	// Unregister tells the remote side to forget handle.
	Unregister(handle int)
	// EmitEvent signals that results of the provider behind eventHandle changed.
	EmitEvent(kind Kind, eventHandle int)
}

// DocumentResolver turns a resource identifier into a live document.
type DocumentResolver interface {
	Document(uri protocol.DocumentURI) (extapi.Document, error)
}

// CommandConverter turns native commands into wire commands. Resources
// created for a command are tied to store.
type CommandConverter interface {
	ToInternal(cmd *extapi.Command, store *dispose.Store) *protocol.Command
}

// DiagnosticsReader returns the current diagnostics of a document.
type DiagnosticsReader interface {
	Diagnostics(uri extapi.URI) []extapi.Diagnostic
}

// ProviderFailure describes a provider call that returned an error or
// panicked.
type ProviderFailure struct {
	Extension extapi.Extension
	Method    string
	RequestID string
	Duration  time.Duration
	Err       error
}

// TelemetryReporter receives provider failures.
type TelemetryReporter interface {
	ReportProviderError(f ProviderFailure)
}

// ErrNoDocuments is returned by the default document resolver.
var ErrNoDocuments = errors.New("no document resolver configured")

type nopMainThread struct{}

func (nopMainThread) RegisterProvider(Kind, protocol.Registration) {}
func (nopMainThread) Unregister(int)                               {}
func (nopMainThread) EmitEvent(Kind, int)                          {}

type nopDocuments struct{}

func (nopDocuments) Document(protocol.DocumentURI) (extapi.Document, error) {
	return nil, ErrNoDocuments
}

type nopDiagnostics struct{}

func (nopDiagnostics) Diagnostics(extapi.URI) []extapi.Diagnostic { return nil }

type nopTelemetry struct{}

func (nopTelemetry) ReportProviderError(ProviderFailure) {}

// plainCommands converts commands without delegation support.
type plainCommands struct{}

func (plainCommands) ToInternal(cmd *extapi.Command, _ *dispose.Store) *protocol.Command {
	if cmd == nil {
		return nil
	}
	return &protocol.Command{
		ID:        cmd.Command,
		Title:     cmd.Title,
		Tooltip:   cmd.Tooltip,
		Arguments: cmd.Arguments,
	}
}
