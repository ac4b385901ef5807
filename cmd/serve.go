package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/fizzy-mcp/internal/config"
	"github.com/teemow/fizzy-mcp/internal/instrumentation"
	"github.com/teemow/fizzy-mcp/internal/resources"
	"github.com/teemow/fizzy-mcp/internal/server"
	"github.com/teemow/fizzy-mcp/internal/tools/account_tools"
	"github.com/teemow/fizzy-mcp/internal/tools/board_tools"
	"github.com/teemow/fizzy-mcp/internal/tools/card_tools"
	"github.com/teemow/fizzy-mcp/internal/tools/comment_tools"
	"github.com/teemow/fizzy-mcp/internal/tools/step_tools"
)

// Supported transports.
const (
	transportStdio          = "stdio"
	transportStreamableHTTP = "streamable-http"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

// serveOptions collects the flags of the serve command.
type serveOptions struct {
	configFile       string
	debug            bool
	transport        string
	httpAddr         string
	readOnly         bool
	disableStreaming bool
	rateLimit        float64
	rateBurst        int
	trustProxy       bool
	metrics          MetricsConfig
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server to provide Fizzy tools
for AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport

Authentication:
  Set FIZZY_TOKEN to a Fizzy personal access token, or put token in
  ~/.config/fizzy-mcp/config.yaml.

Account selection:
  Tools accept an optional account argument. Without it the selected account
  is used, then FIZZY_ACCOUNT, then the only account the token can reach.

Safety Mode:
  Use --read-only to register only tools that do not change Fizzy data.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyServeEnv(cmd, &opts)
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.configFile, "config", "", "Config file (default: $XDG_CONFIG_HOME/fizzy-mcp/config.yaml)")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&opts.transport, "transport", transportStdio, "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&opts.httpAddr, "http-addr", server.DefaultHTTPAddr, "HTTP server address (for streamable-http transport)")
	cmd.Flags().BoolVar(&opts.readOnly, "read-only", false, "Only register tools that do not modify Fizzy data. Can also use FIZZY_READ_ONLY env var.")
	cmd.Flags().BoolVar(&opts.disableStreaming, "disable-streaming", false, "Disable streaming for HTTP transport (for compatibility with certain clients)")
	cmd.Flags().Float64Var(&opts.rateLimit, "rate-limit", server.DefaultRateLimit, "Requests per second allowed per client IP on the MCP endpoint (0 disables)")
	cmd.Flags().IntVar(&opts.rateBurst, "rate-burst", server.DefaultRateBurst, "Burst size of the per-IP rate limit")
	cmd.Flags().BoolVar(&opts.trustProxy, "trust-proxy", false, "Use X-Forwarded-For and X-Real-IP to identify clients (only behind a trusted proxy)")

	// Metrics server flags
	cmd.Flags().BoolVar(&opts.metrics.Enabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&opts.metrics.Addr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	config.RegisterFlags(cmd.Flags())

	return cmd
}

// applyServeEnv fills flags that were not set on the command line from
// their environment variables.
func applyServeEnv(cmd *cobra.Command, opts *serveOptions) {
	flags := cmd.Flags()

	if !flags.Changed("read-only") {
		if v, err := strconv.ParseBool(os.Getenv("FIZZY_READ_ONLY")); err == nil {
			opts.readOnly = v
		}
	}
	if !flags.Changed("metrics-enabled") {
		if v, err := strconv.ParseBool(os.Getenv("METRICS_ENABLED")); err == nil {
			opts.metrics.Enabled = v
		}
	}
	if !flags.Changed("metrics-addr") {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			opts.metrics.Addr = addr
		}
	}
}

func runServe(cmd *cobra.Command, opts serveOptions) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// stdout carries the protocol on stdio, so logs always go to stderr
	logger := newLogger(os.Stderr, opts.debug)
	slog.SetDefault(logger)

	cfg, err := loadConfig(opts.configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if cfg.File != "" {
		logger.Debug("loaded config file", "path", cfg.File)
	}

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Warn("error during instrumentation shutdown", "error", err)
		}
	}()

	// Start metrics server if enabled and not in stdio mode
	if opts.transport != transportStdio && opts.metrics.Enabled && provider.Enabled() {
		metricsServer, err := startMetricsServer(provider, opts.metrics.Addr, logger)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Warn("error during metrics server shutdown", "error", err)
			}
		}()
	}

	var metrics *instrumentation.Metrics
	if provider.Enabled() {
		metrics = provider.Metrics()
	}

	client, err := newClient(cfg, logger, metrics)
	if err != nil {
		return err
	}

	scOpts := []server.Option{
		server.WithLogger(logger),
		server.WithReadOnly(opts.readOnly),
	}
	if provider.Enabled() {
		scOpts = append(scOpts,
			server.WithMetrics(metrics),
			server.WithAuditLogger(provider.AuditLogger(logger)),
		)
	}
	serverContext, err := server.NewServerContext(shutdownCtx, client, scOpts...)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Warn("error during server context shutdown", "error", err)
		}
	}()

	mcpSrv := newMCPServer(metrics, logger)
	if err := registerAllTools(mcpSrv, serverContext); err != nil {
		return err
	}

	if opts.readOnly {
		logger.Info("starting server in read-only mode")
	}

	switch opts.transport {
	case transportStdio:
		return runStdioServer(mcpSrv)
	case transportStreamableHTTP:
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, serverContext, opts, metrics, logger)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", opts.transport)
	}
}

func newMCPServer(metrics *instrumentation.Metrics, logger *slog.Logger) *mcpserver.MCPServer {
	return mcpserver.NewMCPServer("fizzy-mcp", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false), // Subscribe and listChanged
		mcpserver.WithHooks(server.SessionHooks(metrics, logger)),
		mcpserver.WithRecovery(),
	)
}

func startMetricsServer(provider *instrumentation.Provider, addr string, logger *slog.Logger) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    addr,
		Enabled:                 true,
		InstrumentationProvider: provider,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	// Use ready channel to confirm metrics server started successfully
	metricsReady := make(chan struct{})
	metricsErr := make(chan error, 1)
	go func() {
		if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && !errors.Is(err, http.ErrServerClosed) {
			metricsErr <- err
		}
		close(metricsErr)
	}()

	// Wait for metrics server to be ready or fail
	select {
	case <-metricsReady:
		logger.Info("metrics server started", "addr", metricsServer.Addr())
	case err := <-metricsErr:
		return nil, fmt.Errorf("metrics server failed to start: %w", err)
	case <-time.After(5 * time.Second):
		return nil, fmt.Errorf("metrics server startup timed out")
	}
	return metricsServer, nil
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func registerAllTools(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext) error {
	type toolRegistration struct {
		name     string
		register func(*mcpserver.MCPServer, *server.ServerContext) error
	}

	registrations := []toolRegistration{
		{name: "account tools", register: account_tools.RegisterAccountTools},
		{name: "board tools", register: board_tools.RegisterBoardTools},
		{name: "card tools", register: card_tools.RegisterCardTools},
		{name: "step tools", register: step_tools.RegisterStepTools},
		{name: "comment tools", register: comment_tools.RegisterCommentTools},
		{name: "session resources", register: resources.RegisterSessionResources},
	}

	for _, reg := range registrations {
		if err := reg.register(mcpSrv, sc); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}

	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, opts serveOptions, metrics *instrumentation.Metrics, logger *slog.Logger) error {
	httpServer, err := server.NewHTTPServer(mcpSrv, server.HTTPServerConfig{
		Addr:             opts.httpAddr,
		DisableStreaming: opts.disableStreaming,
		RateLimit:        opts.rateLimit,
		RateBurst:        opts.rateBurst,
		TrustProxy:       opts.trustProxy,
		Metrics:          metrics,
		HealthChecker:    server.NewHealthChecker(sc),
	})
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	logger.Info("starting fizzy-mcp MCP server",
		"transport", transportStreamableHTTP,
		"addr", opts.httpAddr,
		"endpoint", httpServer.EndpointPath(),
		"read_only", opts.readOnly,
		"rate_limit", opts.rateLimit)

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
	}

	logger.Info("HTTP server gracefully stopped")
	return nil
}
