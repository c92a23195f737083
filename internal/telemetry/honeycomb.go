package telemetry

import (
	"errors"
	"fmt"

	libhoney "github.com/honeycombio/libhoney-go"
	"github.com/honeycombio/libhoney-go/transmission"

	"github.com/dshills/langbridge/internal/bridge"
	"github.com/dshills/langbridge/internal/logging"
)

// ErrMissingKey is returned when a Honeycomb reporter has no API key.
var ErrMissingKey = errors.New("telemetry: missing Honeycomb API key")

// HoneycombConfig configures a Honeycomb reporter.
type HoneycombConfig struct {
	APIKey  string
	Dataset string
	// APIHost overrides the Honeycomb endpoint. Empty uses the default.
	APIHost string
	// ServiceVersion is attached to every event.
	ServiceVersion string
	// Transmission replaces the network sender, mainly for tests.
	Transmission transmission.Sender
}

// Honeycomb sends provider failures to Honeycomb.
type Honeycomb struct {
	client  *libhoney.Client
	builder *libhoney.Builder
	log     *logging.Logger
}

// NewHoneycomb creates a reporter. Close flushes pending events.
func NewHoneycomb(cfg HoneycombConfig, log *logging.Logger) (*Honeycomb, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingKey
	}
	if log == nil {
		log = logging.Null()
	}
	client, err := libhoney.NewClient(libhoney.ClientConfig{
		APIKey:       cfg.APIKey,
		Dataset:      cfg.Dataset,
		APIHost:      cfg.APIHost,
		Transmission: cfg.Transmission,
	})
	if err != nil {
		return nil, fmt.Errorf("telemetry: creating honeycomb client: %w", err)
	}

	builder := client.NewBuilder()
	builder.AddField("service", "langbridge")
	if cfg.ServiceVersion != "" {
		builder.AddField("service_version", cfg.ServiceVersion)
	}

	return &Honeycomb{
		client:  client,
		builder: builder,
		log:     log.WithComponent("telemetry"),
	}, nil
}

// ReportProviderError sends one event for f.
func (h *Honeycomb) ReportProviderError(f bridge.ProviderFailure) {
	e := h.builder.NewEvent()
	e.AddField("request_id", f.RequestID)
	e.AddField("extension_id", f.Extension.ID)
	if f.Extension.Version != "" {
		e.AddField("extension_version", f.Extension.Version)
	}
	e.AddField("method", f.Method)
	e.AddField("duration_ms", f.Duration.Milliseconds())
	e.AddField("error", errorText(f.Err))
	e.AddField("panic", errors.Is(f.Err, bridge.ErrProviderPanic))
	if err := e.Send(); err != nil {
		h.log.Warn("dropping telemetry event for %s: %v", f.Extension, err)
	}
}

// Close flushes and stops the client.
func (h *Honeycomb) Close() {
	h.client.Close()
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
