package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Transport modes.
const (
	TransportStdio     = "stdio"
	TransportWebSocket = "websocket"
)

// Config is the complete langbridge configuration.
type Config struct {
	Log        LogConfig        `toml:"log"`
	Bridge     BridgeConfig     `toml:"bridge"`
	Transport  TransportConfig  `toml:"transport"`
	Extensions ExtensionsConfig `toml:"extensions"`
	Telemetry  TelemetryConfig  `toml:"telemetry"`
	Highlight  HighlightConfig  `toml:"highlight"`
}

// LogConfig controls logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`
	// File receives log output. Empty means stderr.
	File string `toml:"file"`
}

// BridgeConfig tunes the language feature bridge.
type BridgeConfig struct {
	LogInvocations           bool `toml:"log_invocations"`
	HoverHistory             int  `toml:"hover_history"`
	MaxCodeActionDiagnostics int  `toml:"max_code_action_diagnostics"`
}

// TransportConfig selects how the UI process connects.
type TransportConfig struct {
	Mode   string `toml:"mode"`
	Listen string `toml:"listen"`
	// Path is the websocket endpoint.
	Path string `toml:"path"`
}

// ExtensionsConfig controls Lua extension loading.
type ExtensionsConfig struct {
	Paths            []string `toml:"paths"`
	Watch            bool     `toml:"watch"`
	ExecutionTimeout Duration `toml:"execution_timeout"`
	MemoryLimit      int      `toml:"memory_limit"`
}

// TelemetryConfig controls provider failure reporting.
type TelemetryConfig struct {
	Enabled bool   `toml:"enabled"`
	Dataset string `toml:"dataset"`
	APIKey  string `toml:"api_key"`
	APIHost string `toml:"api_host"`
}

// HighlightConfig controls the built-in semantic tokens provider.
type HighlightConfig struct {
	Enabled bool `toml:"enabled"`
	// Languages limits the provider to these language ids. Empty means
	// every language chroma knows.
	Languages []string `toml:"languages"`
}

// Duration is a time.Duration written as a string such as "5s".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		Bridge: BridgeConfig{
			LogInvocations:           true,
			HoverHistory:             10,
			MaxCodeActionDiagnostics: 1000,
		},
		Transport: TransportConfig{
			Mode:   TransportStdio,
			Listen: "127.0.0.1:7373",
			Path:   "/langbridge",
		},
		Extensions: ExtensionsConfig{
			Paths:            []string{filepath.Join(defaultConfigDir(), "extensions")},
			Watch:            true,
			ExecutionTimeout: Duration{5 * time.Second},
			MemoryLimit:      64 * 1024 * 1024,
		},
		Telemetry: TelemetryConfig{Dataset: "langbridge"},
		Highlight: HighlightConfig{Enabled: true},
	}
}

// DefaultPath returns the default configuration file location.
func DefaultPath() string {
	return filepath.Join(defaultConfigDir(), "config.toml")
}

func defaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "langbridge")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".langbridge"
	}
	return filepath.Join(home, ".config", "langbridge")
}

// Load reads path on top of the defaults and applies environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		default:
			if err := cfg.decode(path, bytes.NewReader(data)); err != nil {
				return nil, err
			}
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.expandPaths()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromReader parses r on top of the defaults. Environment variables are
// not consulted.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := cfg.decode("<reader>", r); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(source string, r io.Reader) error {
	// A paths array in the file replaces the default list.
	paths := c.Extensions.Paths
	c.Extensions.Paths = nil
	defer func() {
		if c.Extensions.Paths == nil {
			c.Extensions.Paths = paths
		}
	}()

	if err := toml.NewDecoder(r).Decode(c); err != nil {
		pe := &ParseError{Path: source, Message: err.Error(), Err: err}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			pe.Line, pe.Column = derr.Position()
		}
		return pe
	}
	return nil
}

// Validate checks values that the rest of the program relies on.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "trace", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "log.level", Message: "unknown level", Value: c.Log.Level}
	}
	switch c.Transport.Mode {
	case TransportStdio:
	case TransportWebSocket:
		if c.Transport.Listen == "" {
			return &ValidationError{Path: "transport.listen", Message: "required for websocket transport", Value: c.Transport.Listen}
		}
		if !strings.HasPrefix(c.Transport.Path, "/") {
			return &ValidationError{Path: "transport.path", Message: "must start with /", Value: c.Transport.Path}
		}
	default:
		return &ValidationError{Path: "transport.mode", Message: "must be stdio or websocket", Value: c.Transport.Mode}
	}
	if c.Bridge.HoverHistory < 1 {
		return &ValidationError{Path: "bridge.hover_history", Message: "must be at least 1", Value: c.Bridge.HoverHistory}
	}
	if c.Bridge.MaxCodeActionDiagnostics < 0 {
		return &ValidationError{Path: "bridge.max_code_action_diagnostics", Message: "must not be negative", Value: c.Bridge.MaxCodeActionDiagnostics}
	}
	if c.Extensions.ExecutionTimeout.Duration < 0 {
		return &ValidationError{Path: "extensions.execution_timeout", Message: "must not be negative", Value: c.Extensions.ExecutionTimeout}
	}
	if c.Telemetry.Enabled && c.Telemetry.APIKey == "" {
		return &ValidationError{Path: "telemetry.api_key", Message: "required when telemetry is enabled", Value: ""}
	}
	return nil
}

// expandPaths resolves a leading ~ in extension paths.
func (c *Config) expandPaths() {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	for i, p := range c.Extensions.Paths {
		if p == "~" {
			c.Extensions.Paths[i] = home
		} else if strings.HasPrefix(p, "~/") {
			c.Extensions.Paths[i] = filepath.Join(home, p[2:])
		}
	}
}
