package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/ffaiyaz23/querywidget/internal/backend"
	"github.com/ffaiyaz23/querywidget/internal/config"
	"github.com/ffaiyaz23/querywidget/internal/console"
	"github.com/ffaiyaz23/querywidget/internal/logging"
	"github.com/ffaiyaz23/querywidget/internal/otel"
	"github.com/ffaiyaz23/querywidget/internal/slack"
	"github.com/ffaiyaz23/querywidget/internal/tui"
)

const (
	readHeaderTimeout = 20 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("querywidget: %s", err)
	}
}

func run() error {
	// 0) Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// the terminal UI owns stdout; everything else may log to stderr
	ownsStdout := cfg.Frontend == config.FrontendTUI

	// 1) Initialize OpenTelemetry tracing
	if cfg.OTel.Enabled {
		var spans io.Writer = os.Stderr
		if ownsStdout {
			spans = nil
		}
		tp, err := otel.InitTracer(ctx, spans)
		if err != nil {
			return fmt.Errorf("failed to init OTEL: %w", err)
		}
		defer func() { _ = tp.Shutdown(context.Background()) }()
	}

	// 2) Initialize Zap logger and replace globals
	logPath := cfg.Log.Path
	if logPath == "" && !ownsStdout {
		logPath = "stderr"
	}
	logger, err := logging.New(cfg.Log.Level, logPath)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	// 3) Start the stub backend when asked to
	backendURL := cfg.Backend.URL
	if cfg.Backend.Mode == config.BackendStub {
		server, addr, err := backend.StartStubServer("127.0.0.1:0", logger.Sugar())
		if err != nil {
			return err
		}
		defer server.Close()
		backendURL = "http://" + addr + "/query/"
	}
	zap.S().Infow("using backend", "url", backendURL, "mode", cfg.Backend.Mode, "frontend", cfg.Frontend)

	client := backend.NewClient(backendURL, cfg.Backend.Timeout)

	// 4) Run the chosen front end
	switch cfg.Frontend {
	case config.FrontendConsole:
		return console.Run(ctx, client, os.Stdin, os.Stdout)
	case config.FrontendSlack:
		return serveSlack(ctx, cfg.Slack, client)
	default:
		p := tea.NewProgram(tui.New(ctx, client), tea.WithAltScreen(), tea.WithContext(ctx))
		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("terminal UI: %w", err)
		}
		return nil
	}
}

func serveSlack(ctx context.Context, cfg config.SlackConfig, client *backend.Client) error {
	eventsHandler, relay := slack.EventsHandler(ctx,
		cfg.BotToken,
		cfg.SigningSecret,
		cfg.WorkerPoolSize,
		cfg.StreamMode,
		client,
	)

	mux := http.NewServeMux()
	mux.Handle("/events", otelhttp.NewHandler(eventsHandler, "SlackEvents"))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.S().Infow("listening for Events API", "address", server.Addr+"/events")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	relay.Stop()
	return nil
}
