package instrumentation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testUser     = "03f5v9zkft4hj9qq0lsn9ohcm"
	testAccount  = "897362094"
	testToolList = "fizzy_list_cards"
	testToolTask = "fizzy_task"
)

func attrsByKey(attrs []slog.Attr) map[string]string {
	m := make(map[string]string, len(attrs))
	for _, attr := range attrs {
		m[attr.Key] = attr.Value.String()
	}
	return m
}

func TestToolInvocation_Complete(t *testing.T) {
	ti := NewToolInvocation(testToolList)
	assert.False(t, ti.StartTime.IsZero())

	ti.CompleteSuccess()
	assert.True(t, ti.Success)
	assert.Equal(t, StatusSuccess, ti.Status())
	assert.GreaterOrEqual(t, ti.Duration.Nanoseconds(), int64(0))
	assert.Empty(t, ti.Error)

	ti = NewToolInvocation(testToolTask).CompleteWithError(errors.New("card not found"))
	assert.False(t, ti.Success)
	assert.Equal(t, StatusError, ti.Status())
	assert.Equal(t, "card not found", ti.Error)
}

func TestToolInvocation_LogAttrs(t *testing.T) {
	ti := NewToolInvocation(testToolTask).
		WithUser(testUser).
		WithAccount("/" + testAccount).
		WithOperation(OperationUpdate).
		CompleteWithError(errors.New("Invalid title: is required"))
	ti.TraceID = "abc123"
	ti.SpanID = "def456"

	hashed := attrsByKey(ti.LogAttrs(false))
	assert.Equal(t, testToolTask, hashed["tool"])
	assert.Equal(t, StatusError, hashed["status"])
	assert.Equal(t, testAccount, hashed["account"])
	assert.Equal(t, OperationUpdate, hashed["operation"])
	assert.Equal(t, "abc123", hashed["trace_id"])
	assert.Equal(t, "def456", hashed["span_id"])
	assert.Equal(t, "Invalid title: is required", hashed["error"])
	assert.True(t, strings.HasPrefix(hashed["user_hash"], "user:"))
	assert.NotContains(t, hashed, "user")

	raw := attrsByKey(ti.LogAttrs(true))
	assert.Equal(t, testUser, raw["user"])
	assert.NotContains(t, raw, "user_hash")
}

func TestToolInvocation_LogAttrs_OmitsEmptyFields(t *testing.T) {
	attrs := attrsByKey(NewToolInvocation(testToolList).CompleteSuccess().LogAttrs(false))

	for _, key := range []string{"user", "user_hash", "account", "operation", "trace_id", "error"} {
		assert.NotContains(t, attrs, key)
	}
}

func TestToolInvocation_WithSpanContext_NoSpan(t *testing.T) {
	ti := NewToolInvocation(testToolList).WithSpanContext(context.Background())

	assert.Empty(t, ti.TraceID)
	assert.Empty(t, ti.SpanID)
}

func TestAuditLogger_LogToolInvocation(t *testing.T) {
	tests := []struct {
		name      string
		config    AuditLoggingConfig
		err       error
		wantMsg   string
		wantLevel string
		wantRaw   bool
	}{
		{
			name:      "success at default level",
			config:    AuditLoggingConfig{Enabled: true},
			wantMsg:   "tool_executed",
			wantLevel: "INFO",
		},
		{
			name:      "success at configured level",
			config:    AuditLoggingConfig{Enabled: true, LogLevel: "debug"},
			wantMsg:   "tool_executed",
			wantLevel: "DEBUG",
		},
		{
			name:      "failure is always a warning",
			config:    AuditLoggingConfig{Enabled: true, LogLevel: "debug"},
			err:       errors.New("boom"),
			wantMsg:   "tool_failed",
			wantLevel: "WARN",
		},
		{
			name:      "unknown level falls back to info",
			config:    AuditLoggingConfig{Enabled: true, LogLevel: "loud"},
			wantMsg:   "tool_executed",
			wantLevel: "INFO",
		},
		{
			name:      "raw user with PII",
			config:    AuditLoggingConfig{Enabled: true, IncludePII: true},
			wantMsg:   "tool_executed",
			wantLevel: "INFO",
			wantRaw:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
			al := NewAuditLoggerWithConfig(logger, tt.config)

			ti := NewToolInvocation(testToolTask).WithUser(testUser).WithAccount(testAccount)
			al.LogToolInvocation(ti.Complete(tt.err == nil, tt.err))

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, tt.wantMsg, entry["msg"])
			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.Equal(t, tt.wantRaw, strings.Contains(buf.String(), testUser))
		})
	}
}

func TestAuditLogger_Disabled(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLoggerWithConfig(slog.New(slog.NewTextHandler(&buf, nil)), AuditLoggingConfig{Enabled: false})
	al.LogToolInvocation(NewToolInvocation(testToolList).CompleteSuccess())

	var nilLogger *AuditLogger
	nilLogger.LogToolInvocation(NewToolInvocation(testToolList).CompleteSuccess())

	assert.Zero(t, buf.Len())
}

func TestNewAuditLogger_DefaultsToSlogDefault(t *testing.T) {
	al := NewAuditLogger(nil)

	assert.Equal(t, slog.Default(), al.logger)
	assert.True(t, al.enabled)
	assert.False(t, al.includePII)
	assert.Equal(t, slog.LevelInfo, al.level)
}
