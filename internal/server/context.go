package server

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/teemow/fizzy-mcp/internal/account"
	"github.com/teemow/fizzy-mcp/internal/fizzy"
	"github.com/teemow/fizzy-mcp/internal/instrumentation"
	"github.com/teemow/fizzy-mcp/internal/orchestrator"
)

// ServerContext holds the context for the MCP server: the Fizzy client, the
// account resolver that owns the process-wide session, and the orchestrator
// built on top of the client.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	client       *fizzy.Client
	resolver     *account.Resolver
	orchestrator *orchestrator.Orchestrator

	logger      *slog.Logger
	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger
	getenv      func(string) string
	readOnly    bool

	mu       sync.RWMutex
	shutdown bool
}

// Option configures a ServerContext.
type Option func(*ServerContext)

// WithLogger sets the logger shared by the resolver and orchestrator.
func WithLogger(l *slog.Logger) Option {
	return func(sc *ServerContext) { sc.logger = l }
}

// WithMetrics sets the metrics recorder. A nil recorder disables metrics.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(sc *ServerContext) { sc.metrics = m }
}

// WithAuditLogger sets the audit logger for tool invocations.
func WithAuditLogger(al *instrumentation.AuditLogger) Option {
	return func(sc *ServerContext) { sc.auditLogger = al }
}

// WithReadOnly marks the server as read-only so mutating tools are not
// registered.
func WithReadOnly(readOnly bool) Option {
	return func(sc *ServerContext) { sc.readOnly = readOnly }
}

// WithGetenv replaces the environment lookup used by the account resolver.
func WithGetenv(getenv func(string) string) Option {
	return func(sc *ServerContext) { sc.getenv = getenv }
}

// NewServerContext creates a new server context around client.
func NewServerContext(ctx context.Context, client *fizzy.Client, opts ...Option) (*ServerContext, error) {
	if client == nil {
		return nil, errors.New("a Fizzy client is required")
	}

	shutdownCtx, cancel := context.WithCancel(ctx)
	sc := &ServerContext{
		ctx:    shutdownCtx,
		cancel: cancel,
		client: client,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(sc)
	}

	resolverOpts := []account.Option{
		account.WithLogger(sc.logger),
		account.WithMetrics(sc.metrics),
	}
	if sc.getenv != nil {
		resolverOpts = append(resolverOpts, account.WithGetenv(sc.getenv))
	}
	sc.resolver = account.NewResolver(client, resolverOpts...)

	orchOpts := []orchestrator.Option{orchestrator.WithLogger(sc.logger)}
	if sc.metrics != nil {
		orchOpts = append(orchOpts, orchestrator.WithMetrics(sc.metrics))
	}
	sc.orchestrator = orchestrator.New(client, orchOpts...)

	return sc, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Client returns the Fizzy API client.
func (sc *ServerContext) Client() *fizzy.Client {
	return sc.client
}

// Resolver returns the account resolver.
func (sc *ServerContext) Resolver() *account.Resolver {
	return sc.resolver
}

// Orchestrator returns the task and bulk-close engine.
func (sc *ServerContext) Orchestrator() *orchestrator.Orchestrator {
	return sc.orchestrator
}

// ResolveAccount resolves the account slug for a call, explicit taking
// precedence over the session, FIZZY_ACCOUNT and auto-detection.
func (sc *ServerContext) ResolveAccount(ctx context.Context, explicit string) (string, error) {
	return sc.resolver.Resolve(ctx, explicit)
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// Metrics returns the metrics recorder, or nil when instrumentation is off.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// AuditLogger returns the audit logger, or nil when audit logging is off.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.auditLogger
}

// ReadOnly reports whether mutating tools are disabled.
func (sc *ServerContext) ReadOnly() bool {
	return sc.readOnly
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
