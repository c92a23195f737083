// Package main is the entry point for the langbridge extension host.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/dshills/langbridge/internal/config"
	"github.com/dshills/langbridge/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// options holds command line overrides. Empty values keep the configured
// setting.
type options struct {
	ConfigPath string
	LogLevel   string
	Transport  string
	Listen     string
	Extensions string
	NoWatch    bool
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	log, closeLog, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open log: %v\n", err)
		return 1
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := newServices(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer svc.Close()

	if err := svc.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.Transport, "transport", "", "Transport to the editor (stdio, websocket)")
	flag.StringVar(&opts.Listen, "listen", "", "Listen address for the websocket transport")
	flag.StringVar(&opts.Extensions, "extensions", "", "Extension directories, separated by the OS path list separator")
	flag.StringVar(&opts.Extensions, "e", "", "Extension directories (shorthand)")
	flag.BoolVar(&opts.NoWatch, "no-watch", false, "Do not reload extensions when their files change")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "langbridge - language feature host for editor extensions\n\n")
		fmt.Fprintf(os.Stderr, "Usage: langbridge [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  langbridge                              Serve on stdin/stdout\n")
		fmt.Fprintf(os.Stderr, "  langbridge -transport websocket         Serve on %s\n", config.Default().Transport.Listen)
		fmt.Fprintf(os.Stderr, "  langbridge -e ./exts -log-level debug   Load extensions from ./exts\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("langbridge %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	return opts
}

// loadConfig reads the configuration file and applies flag overrides.
func loadConfig(opts options) (*config.Config, error) {
	path := opts.ConfigPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.Transport != "" {
		cfg.Transport.Mode = strings.ToLower(opts.Transport)
	}
	if opts.Listen != "" {
		cfg.Transport.Listen = opts.Listen
	}
	if opts.Extensions != "" {
		cfg.Extensions.Paths = filepath.SplitList(opts.Extensions)
	}
	if opts.NoWatch {
		cfg.Extensions.Watch = false
	}

	// The watcher matches events against absolute roots.
	for i, p := range cfg.Extensions.Paths {
		if abs, err := filepath.Abs(p); err == nil {
			cfg.Extensions.Paths[i] = abs
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger writes to stderr unless a log file is configured. Stdout is
// reserved for the stdio transport.
func newLogger(cfg config.LogConfig) (*logging.Logger, func(), error) {
	lc := logging.Config{
		Level:  logging.ParseLevel(cfg.Level),
		Output: os.Stderr,
		Prefix: "langbridge",
	}
	closeFn := func() {}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		lc.Output = f
		closeFn = func() { f.Close() }
	}
	return logging.New(lc), closeFn, nil
}
