package instrumentation

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Config holds the configuration for OpenTelemetry instrumentation.
type Config struct {
	// ServiceName is the name of the service (default: fizzy-mcp)
	ServiceName string

	// ServiceVersion is the version of the service
	ServiceVersion string

	// ServiceInstanceID identifies this process (default: hostname)
	ServiceInstanceID string

	// K8sNamespace and K8sPodName are attached to the resource when set.
	K8sNamespace string
	K8sPodName   string

	// Enabled turns metrics and tracing on (default: true)
	Enabled bool

	// MetricsExporter is one of prometheus, otlp or stdout (default: prometheus)
	MetricsExporter string

	// TracingExporter is one of otlp, stdout or none (default: none)
	TracingExporter string

	// OTLPEndpoint is the collector address without scheme, e.g. "localhost:4318".
	OTLPEndpoint string

	// OTLPInsecure sends OTLP over plain HTTP. Spans carry account slugs, so
	// keep TLS outside local development.
	OTLPInsecure bool

	// TraceSamplingRate is the parent-based sampling ratio (default: 0.1)
	TraceSamplingRate float64

	// PrometheusEndpoint is the path of the metrics endpoint (default: /metrics)
	PrometheusEndpoint string

	// DetailedLabels adds the account slug to tool metrics. Leave it off when
	// the server talks to many accounts.
	DetailedLabels bool

	// AuditLogging configures audit logging behavior.
	AuditLogging AuditLoggingConfig
}

// AuditLoggingConfig holds configuration for audit logging.
type AuditLoggingConfig struct {
	// Enabled determines if audit logging is active (default: true)
	Enabled bool

	// IncludePII logs account slugs and user IDs in clear instead of hashed.
	IncludePII bool

	// LogLevel is the slog level of tool invocation records: debug, info,
	// warn or error (default: info). Audit records ignore it.
	LogLevel string
}

var (
	metricsExporters = []string{ExporterPrometheus, ExporterOTLP, ExporterStdout}
	tracingExporters = []string{ExporterOTLP, ExporterStdout, ExporterNone}
)

// DefaultConfig reads the instrumentation settings from the process
// environment.
func DefaultConfig() Config {
	return ConfigFromEnv(os.Getenv)
}

// ConfigFromEnv builds a Config from the variables getenv returns. Unset or
// unparseable values fall back to the defaults.
func ConfigFromEnv(getenv func(string) string) Config {
	env := envReader(getenv)

	return Config{
		ServiceName:        env.str("OTEL_SERVICE_NAME", "fizzy-mcp"),
		ServiceVersion:     "unknown",
		ServiceInstanceID:  env.str("OTEL_SERVICE_INSTANCE_ID", ""),
		K8sNamespace:       env.str("K8S_NAMESPACE", env.str("POD_NAMESPACE", "")),
		K8sPodName:         env.str("K8S_POD_NAME", env.str("HOSTNAME", "")),
		Enabled:            env.boolean("INSTRUMENTATION_ENABLED", true),
		MetricsExporter:    strings.ToLower(env.str("METRICS_EXPORTER", ExporterPrometheus)),
		TracingExporter:    strings.ToLower(env.str("TRACING_EXPORTER", ExporterNone)),
		OTLPEndpoint:       env.str("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTLPInsecure:       env.boolean("OTEL_EXPORTER_OTLP_INSECURE", false),
		TraceSamplingRate:  env.float("OTEL_TRACES_SAMPLER_ARG", 0.1),
		PrometheusEndpoint: env.str("PROMETHEUS_ENDPOINT", "/metrics"),
		DetailedLabels:     env.boolean("METRICS_DETAILED_LABELS", false),
		AuditLogging: AuditLoggingConfig{
			Enabled:    env.boolean("AUDIT_LOGGING_ENABLED", true),
			IncludePII: env.boolean("AUDIT_LOGGING_INCLUDE_PII", false),
			LogLevel:   env.str("AUDIT_LOGGING_LEVEL", "info"),
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.TraceSamplingRate < 0 || c.TraceSamplingRate > 1 {
		return fmt.Errorf("trace sampling rate must be between 0.0 and 1.0, got %f", c.TraceSamplingRate)
	}
	if c.MetricsExporter != "" && !slices.Contains(metricsExporters, c.MetricsExporter) {
		return fmt.Errorf("invalid metrics exporter %q, must be one of: %s", c.MetricsExporter, strings.Join(metricsExporters, ", "))
	}
	if c.TracingExporter != "" && !slices.Contains(tracingExporters, c.TracingExporter) {
		return fmt.Errorf("invalid tracing exporter %q, must be one of: %s", c.TracingExporter, strings.Join(tracingExporters, ", "))
	}
	if c.OTLPEndpoint == "" {
		if c.TracingExporter == ExporterOTLP {
			return fmt.Errorf("OTLP endpoint is required when using OTLP tracing exporter")
		}
		if c.MetricsExporter == ExporterOTLP {
			return fmt.Errorf("OTLP endpoint is required when using OTLP metrics exporter")
		}
	}
	return nil
}

type envReader func(string) string

func (e envReader) str(key, fallback string) string {
	if v := e(key); v != "" {
		return v
	}
	return fallback
}

func (e envReader) boolean(key string, fallback bool) bool {
	v, err := strconv.ParseBool(e(key))
	if err != nil {
		return fallback
	}
	return v
}

func (e envReader) float(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(e(key), 64)
	if err != nil {
		return fallback
	}
	return v
}

// Constants for metric label values.
const (
	// Status values
	StatusSuccess = "success"
	StatusError   = "error"
	StatusUnknown = "unknown"

	// Account resolution sources
	ResolutionSourceExplicit   = "explicit"
	ResolutionSourceSession    = "session"
	ResolutionSourceEnv        = "env"
	ResolutionSourceCache      = "cache"
	ResolutionSourceAutoDetect = "auto-detect"

	// Service name attached to API operation metrics
	ServiceFizzy = "fizzy"

	// Exporter types
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"

	// Metric recording intervals
	DefaultMetricInterval = 10 * time.Second
)
