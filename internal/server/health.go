package server

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

const (
	healthStatusOK           = "ok"
	healthStatusNotReady     = "not ready"
	healthStatusShuttingDown = "shutting down"
)

// healthPaths are the endpoints registered by RegisterHealthEndpoints.
var healthPaths = []string{"/healthz", "/readyz", "/healthz/detailed"}

// HealthChecker serves liveness and readiness checks for the HTTP
// transport. It starts out ready.
type HealthChecker struct {
	ready     atomic.Bool
	sc        *ServerContext
	startedAt time.Time
}

// NewHealthChecker creates a HealthChecker reporting on sc. A nil sc only
// reports the ready flag.
func NewHealthChecker(sc *ServerContext) *HealthChecker {
	h := &HealthChecker{sc: sc, startedAt: time.Now()}
	h.ready.Store(true)
	return h
}

// SetReady flips the readiness flag, e.g. while draining.
func (h *HealthChecker) SetReady(ready bool) { h.ready.Store(ready) }

// IsReady reports the readiness flag.
func (h *HealthChecker) IsReady() bool { return h.ready.Load() }

// HealthResponse is the body of /healthz and /readyz.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// DetailedHealthResponse is the body of /healthz/detailed.
type DetailedHealthResponse struct {
	Status   string `json:"status"`
	Uptime   string `json:"uptime"`
	BaseURL  string `json:"base_url,omitempty"`
	ReadOnly bool   `json:"read_only"`
	// Account is the session account slug, empty until one is selected
	// or auto-detected.
	Account       string `json:"account,omitempty"`
	AccountSource string `json:"account_source,omitempty"`
}

// readiness evaluates every readiness check and returns the overall status
// next to the per-check results.
func (h *HealthChecker) readiness() (string, map[string]string) {
	checks := map[string]string{
		"ready":    healthStatusOK,
		"shutdown": healthStatusOK,
	}
	status := healthStatusOK

	if !h.ready.Load() {
		checks["ready"] = healthStatusNotReady
		status = healthStatusNotReady
	}
	if h.sc != nil && h.sc.IsShutdown() {
		checks["shutdown"] = healthStatusShuttingDown
		if status == healthStatusOK {
			status = healthStatusShuttingDown
		}
	}
	return status, checks
}

func writeHealth(w http.ResponseWriter, status string, body any) {
	code := http.StatusOK
	if status != healthStatusOK {
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

// LivenessHandler answers 200 as long as the process serves requests.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, healthStatusOK, HealthResponse{Status: healthStatusOK})
	})
}

// ReadinessHandler answers 503 while the checker is not ready or the
// server context has been shut down.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		status, checks := h.readiness()
		resp := HealthResponse{Status: status, Checks: checks}
		if status != healthStatusOK {
			resp.Status = healthStatusNotReady
		}
		writeHealth(w, status, resp)
	})
}

// DetailedHealthHandler reports readiness together with the Fizzy API base
// URL, the read-only flag and the current session account.
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		status, _ := h.readiness()
		resp := DetailedHealthResponse{
			Status: status,
			Uptime: time.Since(h.startedAt).Truncate(time.Second).String(),
		}
		if h.sc != nil {
			resp.BaseURL = h.sc.Client().BaseURL()
			resp.ReadOnly = h.sc.ReadOnly()
			if session, ok := h.sc.Resolver().Session(); ok {
				resp.Account = session.Account.Slug
				resp.AccountSource = session.Source
			}
		}
		writeHealth(w, status, resp)
	})
}

// RegisterHealthEndpoints mounts the health endpoints on mux.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.Handle(healthPaths[0], h.LivenessHandler())
	mux.Handle(healthPaths[1], h.ReadinessHandler())
	mux.Handle(healthPaths[2], h.DetailedHealthHandler())
}
