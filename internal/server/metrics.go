package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/teemow/fizzy-mcp/internal/instrumentation"
)

const (
	// DefaultMetricsAddr is where the Prometheus endpoint listens by default.
	DefaultMetricsAddr = ":9090"

	// DefaultShutdownTimeout bounds graceful shutdown of the HTTP listeners.
	DefaultShutdownTimeout = 30 * time.Second
)

// MetricsServerConfig configures the dedicated metrics listener.
type MetricsServerConfig struct {
	// Addr defaults to DefaultMetricsAddr.
	Addr string

	Enabled bool

	// InstrumentationProvider must be enabled and use the prometheus
	// exporter.
	InstrumentationProvider *instrumentation.Provider
}

// MetricsServer exposes /metrics on its own port so scrapers never reach
// the MCP endpoint.
type MetricsServer struct {
	boundServer
	handler http.Handler
}

// NewMetricsServer validates config and prepares the server without binding.
func NewMetricsServer(config MetricsServerConfig) (*MetricsServer, error) {
	p := config.InstrumentationProvider
	switch {
	case p == nil:
		return nil, errors.New("instrumentation provider is required for metrics server")
	case !p.Enabled():
		return nil, errors.New("instrumentation provider is not enabled")
	case p.PrometheusHandler() == nil:
		return nil, errors.New("metrics server requires the prometheus exporter")
	}

	addr := config.Addr
	if addr == "" {
		addr = DefaultMetricsAddr
	}
	return &MetricsServer{
		boundServer: boundServer{addr: addr},
		handler:     p.PrometheusHandler(),
	}, nil
}

// Start serves until Shutdown.
func (s *MetricsServer) Start() error {
	return s.StartWithReadySignal(nil)
}

// StartWithReadySignal is Start, closing ready once the port is bound.
func (s *MetricsServer) StartWithReadySignal(ready chan<- struct{}) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", s.handler)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	return s.serve(&http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       time.Minute,
	}, ready, "starting metrics server")
}

// Shutdown stops the server gracefully. It is a no-op before Start.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	return s.shutdown(ctx)
}

// Addr returns the bound address, or the configured one before Start.
func (s *MetricsServer) Addr() string {
	return s.boundAddr()
}
