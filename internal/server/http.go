package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/fizzy-mcp/internal/instrumentation"
)

const (
	// DefaultHTTPAddr is the default listen address of the MCP HTTP server.
	DefaultHTTPAddr = ":8080"

	// DefaultEndpointPath is where the streamable HTTP transport is mounted.
	DefaultEndpointPath = "/mcp"
)

// HTTPServerConfig configures the streamable HTTP transport.
type HTTPServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string

	// EndpointPath is the MCP endpoint (default "/mcp").
	EndpointPath string

	// DisableStreaming turns off SSE streaming of responses.
	DisableStreaming bool

	// RateLimit is the number of requests per second allowed per client IP.
	// Zero or less disables rate limiting.
	RateLimit float64

	// RateBurst is the per-IP burst (default DefaultRateBurst).
	RateBurst int

	// TrustProxy makes X-Forwarded-For and X-Real-IP authoritative for
	// rate limiting.
	TrustProxy bool

	// Metrics records one sample per HTTP request when set.
	Metrics *instrumentation.Metrics

	// HealthChecker serves /healthz, /readyz and /healthz/detailed when set.
	HealthChecker *HealthChecker
}

// HTTPServer serves an MCP server over the streamable HTTP transport.
type HTTPServer struct {
	boundServer
	mcpServer *mcpserver.MCPServer
	config    HTTPServerConfig
}

// NewHTTPServer creates an HTTP server for mcpServer.
func NewHTTPServer(mcpServer *mcpserver.MCPServer, config HTTPServerConfig) (*HTTPServer, error) {
	if mcpServer == nil {
		return nil, errors.New("an MCP server is required")
	}
	if config.Addr == "" {
		config.Addr = DefaultHTTPAddr
	}
	if config.EndpointPath == "" {
		config.EndpointPath = DefaultEndpointPath
	}
	if config.RateBurst <= 0 {
		config.RateBurst = DefaultRateBurst
	}

	return &HTTPServer{
		boundServer: boundServer{addr: config.Addr},
		mcpServer:   mcpServer,
		config:      config,
	}, nil
}

// Handler builds the request handler: health endpoints, the rate-limited
// MCP endpoint and per-request metrics around everything.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	routes := map[string]bool{s.config.EndpointPath: true}

	if s.config.HealthChecker != nil {
		s.config.HealthChecker.RegisterHealthEndpoints(mux)
		for _, path := range healthPaths {
			routes[path] = true
		}
	}

	streamOpts := []mcpserver.StreamableHTTPOption{
		mcpserver.WithEndpointPath(s.config.EndpointPath),
	}
	if s.config.DisableStreaming {
		streamOpts = append(streamOpts, mcpserver.WithDisableStreaming(true))
	}
	var mcpHandler http.Handler = mcpserver.NewStreamableHTTPServer(s.mcpServer, streamOpts...)

	if s.config.RateLimit > 0 {
		limiter := NewRateLimiter(s.config.RateLimit, s.config.RateBurst, s.config.TrustProxy)
		mcpHandler = limiter.Middleware(mcpHandler)
	}
	mux.Handle(s.config.EndpointPath, mcpHandler)

	return metricsMiddleware(s.config.Metrics, routes, mux)
}

// Start binds the listen address and serves until Shutdown.
func (s *HTTPServer) Start() error {
	return s.StartWithReadySignal(nil)
}

// StartWithReadySignal is Start, closing ready once the listener is bound.
func (s *HTTPServer) StartWithReadySignal(ready chan<- struct{}) error {
	return s.serve(&http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}, ready, "starting MCP HTTP server", "endpoint", s.config.EndpointPath)
}

// Shutdown stops the server gracefully. It is a no-op before Start.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.shutdown(ctx)
}

// Addr returns the bound address once listening, the configured one before.
func (s *HTTPServer) Addr() string {
	return s.boundAddr()
}

// EndpointPath returns the MCP endpoint path.
func (s *HTTPServer) EndpointPath() string {
	return s.config.EndpointPath
}
