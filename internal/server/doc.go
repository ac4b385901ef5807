// Package server provides the MCP server context, health checks, metrics
// server and the streamable HTTP transport for fizzy-mcp.
//
// # Key Components
//
// ServerContext owns the Fizzy API client, the account resolver that holds
// the process-wide session, and the orchestrator used by the task and
// bulk-close tools. Tools receive the ServerContext at registration time.
//
// HTTPServer mounts the streamable HTTP transport at /mcp next to the
// Kubernetes health endpoints:
//   - /healthz: liveness
//   - /readyz: readiness
//   - /healthz/detailed: uptime, API base URL and session account
//
// The MCP endpoint is rate limited per client IP, and every request is
// recorded in the http_requests_total and http_request_duration_seconds
// metrics when instrumentation is enabled.
//
// MetricsServer serves Prometheus metrics on a dedicated port, away from the
// MCP traffic.
package server
