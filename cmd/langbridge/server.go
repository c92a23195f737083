package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/langbridge/internal/bridge"
	"github.com/dshills/langbridge/internal/commands"
	"github.com/dshills/langbridge/internal/config"
	"github.com/dshills/langbridge/internal/diagnostics"
	"github.com/dshills/langbridge/internal/documents"
	"github.com/dshills/langbridge/internal/highlight"
	"github.com/dshills/langbridge/internal/hostrpc"
	"github.com/dshills/langbridge/internal/logging"
	"github.com/dshills/langbridge/internal/luaext"
	"github.com/dshills/langbridge/internal/telemetry"
	"github.com/dshills/langbridge/internal/wire"
)

const (
	diagnosticsDebounce = 50 * time.Millisecond
	shutdownTimeout     = 5 * time.Second
)

// services is the assembled extension host.
type services struct {
	cfg *config.Config
	log *logging.Logger

	mainThread  *hostrpc.MainThread
	documents   *documents.Store
	diagnostics *diagnostics.Collection
	commands    *commands.Registry
	features    *bridge.LanguageFeatures
	server      *hostrpc.Server
	extensions  *luaext.Host
	honeycomb   *telemetry.Honeycomb
}

func newServices(ctx context.Context, cfg *config.Config, log *logging.Logger) (*services, error) {
	s := &services{
		cfg:        cfg,
		log:        log,
		mainThread: hostrpc.NewMainThread(log.WithComponent("mainthread")),
		documents:  documents.NewStore(),
		commands:   commands.NewRegistry(commands.WithLogger(log.WithComponent("commands"))),
	}
	s.diagnostics = diagnostics.New(
		diagnostics.WithDebounce(diagnosticsDebounce),
		diagnostics.WithChangeHandler(s.mainThread.PublishDiagnostics),
	)

	converter, err := commands.NewConverter(s.commands)
	if err != nil {
		s.diagnostics.Close()
		return nil, fmt.Errorf("command converter: %w", err)
	}

	var reporter bridge.TelemetryReporter = telemetry.NewLog(log.WithComponent("telemetry"))
	if cfg.Telemetry.Enabled {
		hc, err := telemetry.NewHoneycomb(telemetry.HoneycombConfig{
			APIKey:         cfg.Telemetry.APIKey,
			Dataset:        cfg.Telemetry.Dataset,
			APIHost:        cfg.Telemetry.APIHost,
			ServiceVersion: version,
		}, log)
		if err != nil {
			s.diagnostics.Close()
			return nil, fmt.Errorf("telemetry: %w", err)
		}
		s.honeycomb = hc
		reporter = telemetry.Multi{reporter, hc}
	}

	s.features = bridge.New(bridge.Dependencies{
		Remote:      s.mainThread,
		Documents:   s.documents,
		Commands:    converter,
		Diagnostics: s.diagnostics,
		Telemetry:   reporter,
		Logger:      log.WithComponent("bridge"),
	},
		bridge.WithInvocationLogging(cfg.Bridge.LogInvocations),
		bridge.WithHoverHistory(cfg.Bridge.HoverHistory),
		bridge.WithMaxCodeActionDiagnostics(cfg.Bridge.MaxCodeActionDiagnostics),
	)
	s.server = hostrpc.NewServer(s.features, s.documents, s.commands, log.WithComponent("server"))

	if cfg.Highlight.Enabled {
		highlight.New(cfg.Highlight.Languages...).Register(s.features)
	}

	s.extensions = luaext.NewHost(luaext.Dependencies{
		Features:    s.features,
		Commands:    s.commands,
		Diagnostics: s.diagnostics,
		Logger:      log.WithComponent("luaext"),
	},
		luaext.WithHostExecutionTimeout(cfg.Extensions.ExecutionTimeout.Duration),
		luaext.WithHostMemoryLimit(int64(cfg.Extensions.MemoryLimit)),
	)
	if err := s.extensions.LoadPaths(ctx, cfg.Extensions.Paths...); err != nil {
		// A broken extension must not keep the others from serving.
		log.Error("loading extensions: %v", err)
	}
	log.Info("%d extensions loaded, %d providers registered", len(s.extensions.Extensions()), s.features.ProviderCount())

	return s, nil
}

// Run serves the editor and watches extension directories until ctx is
// cancelled or the editor goes away.
func (s *services) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	if s.cfg.Extensions.Watch && len(s.cfg.Extensions.Paths) > 0 {
		w, err := luaext.NewWatcher(s.extensions, s.cfg.Extensions.Paths)
		if err != nil {
			s.log.Warn("extension watcher disabled: %v", err)
		} else {
			g.Go(func() error { return w.Run(ctx) })
		}
	}

	g.Go(func() error {
		// Stop the watcher once the editor is gone.
		defer cancel()
		if s.cfg.Transport.Mode == config.TransportWebSocket {
			return s.serveWebSocket(ctx)
		}
		return s.serveStdio(ctx)
	})

	return g.Wait()
}

// serveConn runs one editor connection to completion.
func (s *services) serveConn(ctx context.Context, stream wire.Stream) error {
	conn := wire.NewConn(stream,
		wire.WithLogger(s.log.WithComponent("wire")),
		wire.WithErrorMapper(hostrpc.MapError),
	)
	s.server.Bind(conn)
	s.mainThread.Attach(conn)
	defer s.mainThread.Detach(conn)

	err := conn.Run(ctx)
	if err != nil && wire.IsClosedError(err) {
		return nil
	}
	return err
}

func (s *services) serveStdio(ctx context.Context) error {
	s.log.Info("serving on stdio")
	return s.serveConn(ctx, wire.NewHeaderStream(os.Stdin, os.Stdout, os.Stdin))
}

func (s *services) serveWebSocket(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle(s.cfg.Transport.Path, wire.NewAcceptor(func(stream wire.Stream) {
		if err := s.serveConn(ctx, stream); err != nil {
			s.log.Warn("connection ended: %v", err)
		}
	}, s.log.WithComponent("acceptor")))

	srv := &http.Server{
		Addr:              s.cfg.Transport.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		srv.Shutdown(sctx)
	}()

	s.log.Info("serving on ws://%s%s", s.cfg.Transport.Listen, s.cfg.Transport.Path)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close releases extensions and flushes telemetry.
func (s *services) Close() {
	s.extensions.Close()
	s.diagnostics.Close()
	if s.honeycomb != nil {
		s.honeycomb.Close()
	}
}
