package config

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix starts every environment override.
const EnvPrefix = "LANGBRIDGE_"

// LookupFunc reads an environment variable.
type LookupFunc func(key string) (string, bool)

type envSetter func(c *Config, value string) error

// envMapping returns the supported environment variables.
func envMapping() map[string]envSetter {
	return map[string]envSetter{
		"LANGBRIDGE_LOG_LEVEL": func(c *Config, v string) error {
			c.Log.Level = v
			return nil
		},
		"LANGBRIDGE_LOG_FILE": func(c *Config, v string) error {
			c.Log.File = v
			return nil
		},
		"LANGBRIDGE_LOG_INVOCATIONS": func(c *Config, v string) error {
			return setBool(&c.Bridge.LogInvocations, v)
		},
		"LANGBRIDGE_TRANSPORT": func(c *Config, v string) error {
			c.Transport.Mode = strings.ToLower(v)
			return nil
		},
		"LANGBRIDGE_LISTEN": func(c *Config, v string) error {
			c.Transport.Listen = v
			return nil
		},
		"LANGBRIDGE_EXTENSIONS_PATH": func(c *Config, v string) error {
			c.Extensions.Paths = filepath.SplitList(v)
			return nil
		},
		"LANGBRIDGE_EXTENSIONS_WATCH": func(c *Config, v string) error {
			return setBool(&c.Extensions.Watch, v)
		},
		"LANGBRIDGE_EXECUTION_TIMEOUT": func(c *Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return err
			}
			c.Extensions.ExecutionTimeout = Duration{d}
			return nil
		},
		"LANGBRIDGE_TELEMETRY_ENABLED": func(c *Config, v string) error {
			return setBool(&c.Telemetry.Enabled, v)
		},
		"LANGBRIDGE_TELEMETRY_DATASET": func(c *Config, v string) error {
			c.Telemetry.Dataset = v
			return nil
		},
		// Sensitive settings
		"LANGBRIDGE_HONEYCOMB_KEY": func(c *Config, v string) error {
			c.Telemetry.APIKey = v
			return nil
		},
		"LANGBRIDGE_HIGHLIGHT": func(c *Config, v string) error {
			return setBool(&c.Highlight.Enabled, v)
		},
	}
}

// ApplyEnv overrides settings from environment variables read with lookup.
// Empty values count as set.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	for name, set := range envMapping() {
		v, ok := lookup(name)
		if !ok {
			continue
		}
		if err := set(c, v); err != nil {
			return &ParseError{Path: "$" + name, Message: err.Error(), Err: err}
		}
	}
	return nil
}

func setBool(dst *bool, s string) error {
	switch strings.ToLower(s) {
	case "true", "yes", "on", "1":
		*dst = true
	case "false", "no", "off", "0", "":
		*dst = false
	default:
		if b, err := strconv.ParseBool(s); err == nil {
			*dst = b
			return nil
		}
		return fmt.Errorf("not a boolean: %q", s)
	}
	return nil
}
