package server

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/fizzy-mcp/internal/instrumentation"
)

func newProvider(t *testing.T, enabled bool) *instrumentation.Provider {
	t.Helper()
	p, err := instrumentation.NewProvider(context.Background(), instrumentation.Config{
		ServiceName:     instrumentation.ServiceFizzy,
		ServiceVersion:  "test",
		Enabled:         enabled,
		MetricsExporter: instrumentation.ExporterPrometheus,
		TracingExporter: "none",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })
	return p
}

func TestNewMetricsServer(t *testing.T) {
	enabled := newProvider(t, true)

	s, err := NewMetricsServer(MetricsServerConfig{Enabled: true, InstrumentationProvider: enabled})
	require.NoError(t, err)
	assert.Equal(t, DefaultMetricsAddr, s.Addr())

	s, err = NewMetricsServer(MetricsServerConfig{Addr: ":9191", Enabled: true, InstrumentationProvider: enabled})
	require.NoError(t, err)
	assert.Equal(t, ":9191", s.Addr())

	_, err = NewMetricsServer(MetricsServerConfig{Enabled: true})
	require.ErrorContains(t, err, "instrumentation provider is required")

	_, err = NewMetricsServer(MetricsServerConfig{Enabled: true, InstrumentationProvider: newProvider(t, false)})
	require.ErrorContains(t, err, "instrumentation provider is not enabled")
}

func TestMetricsServer_ServesMetricsAndHealth(t *testing.T) {
	s, err := NewMetricsServer(MetricsServerConfig{
		Addr:                    "127.0.0.1:0",
		Enabled:                 true,
		InstrumentationProvider: newProvider(t, true),
	})
	require.NoError(t, err)

	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- s.StartWithReadySignal(ready) }()

	select {
	case <-ready:
	case err := <-done:
		t.Fatalf("metrics server failed to start: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("metrics server did not become ready")
	}

	for _, path := range []string{"/healthz", "/metrics"} {
		resp, err := http.Get("http://" + s.Addr() + path)
		require.NoError(t, err, path)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
	assert.ErrorIs(t, <-done, http.ErrServerClosed)
}

func TestMetricsServer_BindErrorDoesNotSignalReady(t *testing.T) {
	s, err := NewMetricsServer(MetricsServerConfig{
		Addr:                    "256.0.0.1:0",
		Enabled:                 true,
		InstrumentationProvider: newProvider(t, true),
	})
	require.NoError(t, err)

	ready := make(chan struct{})
	require.Error(t, s.StartWithReadySignal(ready))

	select {
	case <-ready:
		t.Error("ready closed after a failed bind")
	default:
	}
}

func TestMetricsServer_ShutdownBeforeStart(t *testing.T) {
	s, err := NewMetricsServer(MetricsServerConfig{Enabled: true, InstrumentationProvider: newProvider(t, true)})
	require.NoError(t, err)
	assert.NoError(t, s.Shutdown(context.Background()))
}
