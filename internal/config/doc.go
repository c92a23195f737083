// Package config loads the langbridge configuration.
//
// Configuration comes from three sources, later ones overriding earlier:
//
//  1. Built-in defaults (Default)
//  2. A TOML file, usually ~/.config/langbridge/config.toml
//  3. LANGBRIDGE_* environment variables
//
// Command line flags are applied by the caller on top of the result.
//
// # Configuration File
//
//	[log]
//	level = "debug"
//
//	[bridge]
//	log_invocations = true
//	hover_history = 10
//	max_code_action_diagnostics = 1000
//
//	[transport]
//	mode = "websocket"
//	listen = "127.0.0.1:7373"
//
//	[extensions]
//	paths = ["~/.langbridge/extensions"]
//	watch = true
//	execution_timeout = "5s"
//
//	[telemetry]
//	enabled = true
//	dataset = "langbridge"
//	api_key = "..."
//
//	[highlight]
//	enabled = true
//	languages = ["go", "python"]
//
// A missing file yields the defaults. Unknown keys are ignored. Syntax
// errors are returned as *ParseError; values out of range as
// *ValidationError.
package config
