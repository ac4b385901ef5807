package instrumentation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
const (
	attrMethod    = "method"
	attrPath      = "path"
	attrStatus    = "status"
	attrOperation = "operation"
	attrService   = "service"
	attrSource    = "source"
	attrMode      = "mode"
	attrTool      = "tool"
	attrAccount   = "account"
)

var (
	httpBuckets = []float64{0.001, 0.01, 0.1, 0.5, 1, 2.5, 5, 10}
	callBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}
)

// timed is a request counter paired with a duration histogram sharing the
// same attributes.
type timed struct {
	total    metric.Int64Counter
	duration metric.Float64Histogram
}

func (t timed) record(ctx context.Context, d time.Duration, attrs ...attribute.KeyValue) {
	opt := metric.WithAttributes(attrs...)
	t.total.Add(ctx, 1, opt)
	t.duration.Record(ctx, d.Seconds(), opt)
}

// instruments creates instruments on a meter and collects the errors so
// NewMetrics can report them all at once.
type instruments struct {
	meter metric.Meter
	errs  []error
}

func (in *instruments) counter(name, desc, unit string) metric.Int64Counter {
	c, err := in.meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	if err != nil {
		in.errs = append(in.errs, fmt.Errorf("counter %s: %w", name, err))
	}
	return c
}

// timed creates <counter>_total and <histogram>_duration_seconds.
func (in *instruments) timed(counter, histogram, desc, unit string, buckets []float64) timed {
	name := histogram + "_duration_seconds"
	h, err := in.meter.Float64Histogram(name,
		metric.WithDescription(desc+" duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(buckets...),
	)
	if err != nil {
		in.errs = append(in.errs, fmt.Errorf("histogram %s: %w", name, err))
	}
	return timed{
		total:    in.counter(counter+"_total", "Total number of "+desc+"s", unit),
		duration: h,
	}
}

// Metrics records the server's OpenTelemetry metrics. All methods are safe
// on a nil *Metrics, which records nothing.
type Metrics struct {
	httpRequests   timed
	apiOperations  timed
	toolCalls      timed
	activeSessions metric.Int64UpDownCounter

	accountResolutions metric.Int64Counter
	stepFailures       metric.Int64Counter
	bulkClosed         metric.Int64Counter

	// detailedLabels adds the account slug to tool metrics.
	detailedLabels bool
}

// NewMetrics creates every instrument on meter.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	in := &instruments{meter: meter}
	m := &Metrics{
		httpRequests:       in.timed("http_requests", "http_request", "HTTP request", "{request}", httpBuckets),
		apiOperations:      in.timed("fizzy_api_operations", "fizzy_api_operation", "Fizzy API operation", "{operation}", callBuckets),
		toolCalls:          in.timed("mcp_tool_invocations", "mcp_tool", "MCP tool invocation", "{invocation}", callBuckets),
		accountResolutions: in.counter("account_resolutions_total", "Total number of account resolutions by source", "{resolution}"),
		stepFailures:       in.counter("orchestrator_step_failures_total", "Total number of non-fatal step failures in task operations", "{failure}"),
		bulkClosed:         in.counter("bulk_close_cards_total", "Total number of cards processed by bulk close", "{card}"),
		detailedLabels:     detailedLabels,
	}

	sessions, err := meter.Int64UpDownCounter("active_sessions",
		metric.WithDescription("Number of active MCP sessions"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		in.errs = append(in.errs, fmt.Errorf("up-down counter active_sessions: %w", err))
	}
	m.activeSessions = sessions

	if err := errors.Join(in.errs...); err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}
	return m, nil
}

// RecordHTTPRequest records one HTTP request. The path must already be a
// bounded route.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.record(ctx, duration,
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	)
}

// RecordAPIOperation records a single Fizzy REST call such as "cards.list".
func (m *Metrics) RecordAPIOperation(ctx context.Context, operation, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.apiOperations.record(ctx, duration,
		attribute.String(attrService, ServiceFizzy),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	)
}

// RecordAccountResolution records which source an account was resolved from.
// Source is one of the ResolutionSource* constants.
func (m *Metrics) RecordAccountResolution(ctx context.Context, source, status string) {
	if m == nil {
		return
	}
	m.accountResolutions.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrSource, source),
		attribute.String(attrStatus, status),
	))
}

// RecordStepFailure records a non-fatal step failure inside a task operation.
// The kind is the step kind without its detail (e.g. "tag_add").
func (m *Metrics) RecordStepFailure(ctx context.Context, mode, kind string) {
	if m == nil {
		return
	}
	m.stepFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrMode, mode),
		attribute.String(attrOperation, kind),
	))
}

// RecordBulkClose records the outcome counts of a bulk close run.
func (m *Metrics) RecordBulkClose(ctx context.Context, closed, failed int) {
	if m == nil {
		return
	}
	for status, n := range map[string]int{StatusSuccess: closed, StatusError: failed} {
		if n > 0 {
			m.bulkClosed.Add(ctx, int64(n), metric.WithAttributes(attribute.String(attrStatus, status)))
		}
	}
}

// RecordToolInvocation records an MCP tool call without account detail.
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	m.RecordToolInvocationWithAccount(ctx, toolName, status, "", duration)
}

// RecordToolInvocationWithAccount records an MCP tool call. The account slug
// is only attached when detailed labels are enabled.
func (m *Metrics) RecordToolInvocationWithAccount(ctx context.Context, toolName, status, account string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}
	if m.detailedLabels && account != "" {
		attrs = append(attrs, attribute.String(attrAccount, account))
	}
	m.toolCalls.record(ctx, duration, attrs...)
}

// IncrementActiveSessions counts a newly registered MCP session.
func (m *Metrics) IncrementActiveSessions(ctx context.Context) {
	if m == nil {
		return
	}
	m.activeSessions.Add(ctx, 1)
}

// DecrementActiveSessions counts an unregistered MCP session.
func (m *Metrics) DecrementActiveSessions(ctx context.Context) {
	if m == nil {
		return
	}
	m.activeSessions.Add(ctx, -1)
}
