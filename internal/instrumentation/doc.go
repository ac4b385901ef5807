// Package instrumentation provides OpenTelemetry instrumentation for the
// fizzy-mcp server.
//
// It covers:
//   - OpenTelemetry metrics for HTTP requests, Fizzy API calls, account
//     resolution and orchestrated operations
//   - Distributed tracing for tool invocations and API calls
//   - Prometheus metrics export via /metrics endpoint on dedicated port
//   - OTLP export support for modern observability platforms
//
// # Metrics
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//   - active_sessions: Gauge of active MCP sessions
//
// Fizzy API Metrics:
//   - fizzy_api_operations_total: Counter of API calls by operation and status
//   - fizzy_api_operation_duration_seconds: Histogram of API call durations
//
// Orchestration Metrics:
//   - account_resolutions_total: Counter of account resolutions by source and status
//   - orchestrator_step_failures_total: Counter of non-fatal step failures by mode and step kind
//   - bulk_close_cards_total: Counter of cards processed by bulk close, by status
//
// MCP Tool Metrics:
//   - mcp_tool_invocations_total: Counter of MCP tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of MCP tool execution durations
//
// # Tracing
//
// Spans are created for:
//   - MCP tool invocations (tool.<name>)
//   - Fizzy API calls (fizzy.<resource>.<action>)
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: fizzy-mcp)
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
//		ServiceName:    "fizzy-mcp",
//		ServiceVersion: "0.1.0",
//		Enabled:        true,
//	})
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	recorder := provider.Metrics()
//	recorder.RecordAPIOperation(ctx, "cards.list", "success", time.Since(start))
//	recorder.RecordToolInvocation(ctx, "fizzy_list_cards", "success", time.Since(start))
package instrumentation
