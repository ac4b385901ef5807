package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/fizzy-mcp/internal/fizzy"
)

const identityJSON = `{"accounts":[{"id":"acc1","name":"Acme","slug":"/897362094","user":{"id":"u1","name":"Ada","role":"owner"}}]}`

// newTestServerContext returns a ServerContext whose client talks to a fake
// API answering the identity endpoint with a single account.
func newTestServerContext(t *testing.T, opts ...Option) (*ServerContext, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/my/identity" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(identityJSON))
	}))
	t.Cleanup(api.Close)

	client, err := fizzy.NewClient(api.URL, "test-token")
	require.NoError(t, err)

	opts = append([]Option{WithGetenv(func(string) string { return "" })}, opts...)
	sc, err := NewServerContext(context.Background(), client, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc, &calls
}

func TestNewServerContext_RequiresClient(t *testing.T) {
	_, err := NewServerContext(context.Background(), nil)
	require.Error(t, err)
}

func TestServerContext_ResolveAccount(t *testing.T) {
	sc, calls := newTestServerContext(t)

	slug, err := sc.ResolveAccount(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "897362094", slug)

	slug, err = sc.ResolveAccount(context.Background(), "/111")
	require.NoError(t, err)
	assert.Equal(t, "111", slug)

	assert.Equal(t, int32(1), calls.Load())
	assert.NotNil(t, sc.Orchestrator())
}

func TestServerContext_Shutdown(t *testing.T) {
	sc, _ := newTestServerContext(t, WithReadOnly(true))
	assert.True(t, sc.ReadOnly())
	assert.False(t, sc.IsShutdown())

	require.NoError(t, sc.Shutdown())
	assert.True(t, sc.IsShutdown())
	assert.Error(t, sc.Context().Err())

	// second shutdown is a no-op
	require.NoError(t, sc.Shutdown())
}

func TestHealthChecker_Liveness(t *testing.T) {
	h := NewHealthChecker(nil)

	rec := httptest.NewRecorder()
	h.LivenessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestHealthChecker_Readiness(t *testing.T) {
	sc, _ := newTestServerContext(t)

	tests := []struct {
		name     string
		setup    func(h *HealthChecker)
		wantCode int
	}{
		{
			name:     "ready",
			setup:    func(*HealthChecker) {},
			wantCode: http.StatusOK,
		},
		{
			name:     "not ready",
			setup:    func(h *HealthChecker) { h.SetReady(false) },
			wantCode: http.StatusServiceUnavailable,
		},
		{
			name:     "shutting down",
			setup:    func(*HealthChecker) { _ = sc.Shutdown() },
			wantCode: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthChecker(sc)
			tt.setup(h)

			rec := httptest.NewRecorder()
			h.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestHealthChecker_DetailedReportsSession(t *testing.T) {
	sc, _ := newTestServerContext(t, WithReadOnly(true))
	h := NewHealthChecker(sc)

	get := func() DetailedHealthResponse {
		rec := httptest.NewRecorder()
		h.DetailedHealthHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz/detailed", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp DetailedHealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return resp
	}

	before := get()
	assert.Equal(t, sc.Client().BaseURL(), before.BaseURL)
	assert.True(t, before.ReadOnly)
	assert.Empty(t, before.Account)

	_, err := sc.ResolveAccount(context.Background(), "")
	require.NoError(t, err)

	after := get()
	assert.Equal(t, "897362094", after.Account)
	assert.Equal(t, "auto-detect", after.AccountSource)
}
