package common

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/teemow/fizzy-mcp/internal/account"
	"github.com/teemow/fizzy-mcp/internal/fizzy"
	"github.com/teemow/fizzy-mcp/internal/instrumentation"
	"github.com/teemow/fizzy-mcp/internal/server"
)

func newNoopMetrics(t *testing.T) *instrumentation.Metrics {
	t.Helper()
	metrics, err := instrumentation.NewMetrics(noop.NewMeterProvider().Meter("test"), false)
	require.NoError(t, err)
	return metrics
}

func TestInstrumentedToolHandler_Success(t *testing.T) {
	sc := newTestServerContext(t)

	called := false
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		called = true
		return mcp.NewToolResultText("success"), nil
	}

	result, err := InstrumentedToolHandler("test_tool", sc, handler)(context.Background(), mcp.CallToolRequest{})

	require.NoError(t, err)
	assert.True(t, called)
	require.NotNil(t, result)
	assert.False(t, result.IsError)
}

func TestInstrumentedToolHandler_Error(t *testing.T) {
	sc := newTestServerContext(t, server.WithMetrics(newNoopMetrics(t)))

	expectedErr := errors.New("test error")
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, expectedErr
	}

	_, err := InstrumentedToolHandler("test_tool", sc, handler)(context.Background(), mcp.CallToolRequest{})
	assert.Equal(t, expectedErr, err)
}

func TestInstrumentedToolHandler_AuditsToolErrors(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	audit := instrumentation.NewAuditLogger(logger)

	sc := newTestServerContext(t,
		server.WithMetrics(newNoopMetrics(t)),
		server.WithAuditLogger(audit),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultError("Card 7 was not found"), nil
	}
	wrapped := InstrumentedToolHandlerWithOperation("fizzy_get_card", instrumentation.OperationGet, sc, handler)

	result, err := wrapped(context.Background(), callRequest(map[string]interface{}{"account": "/111"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "fizzy_get_card", entry["tool"])
	assert.Equal(t, "111", entry["account"])
	assert.Equal(t, instrumentation.OperationGet, entry["operation"])
	assert.Equal(t, instrumentation.StatusError, entry["status"])
	assert.Equal(t, "Card 7 was not found", entry["error"])
}

func TestInstrumentedToolHandler_LabelsAutoDetectedAccount(t *testing.T) {
	var buf bytes.Buffer
	audit := instrumentation.NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)))
	sc := newTestServerContext(t, server.WithAuditLogger(audit))

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		slug, err := ResolveAccount(ctx, sc, req.GetArguments())
		if err != nil {
			return ErrorResult(err, ""), nil
		}
		return JSONResult(map[string]string{"account": slug})
	}

	result, err := InstrumentedToolHandler("fizzy_whoami", sc, handler)(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "897362094", entry["account"])
	assert.Equal(t, instrumentation.StatusSuccess, entry["status"])
}

func TestErrorResult(t *testing.T) {
	err := &fizzy.Error{Kind: fizzy.KindNotFound, Status: 404, Resource: "card", ResourceID: "7"}

	result := ErrorResult(err, "897362094")
	require.True(t, result.IsError)
	assert.Equal(t, fizzy.Describe(err, "897362094"), resultText(result))
}

func TestJSONResult(t *testing.T) {
	result, err := JSONResult(map[string]int{"total": 2})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.JSONEq(t, `{"total":2}`, resultText(result))
}

func TestErrorResult_KeepsAccountResolutionMessage(t *testing.T) {
	cause := &fizzy.Error{Kind: fizzy.KindAuthentication, Status: 401}
	err := &account.NoAccountError{Cause: cause}

	result := ErrorResult(err, "")
	assert.Contains(t, resultText(result), "No account specified")
}

func TestAccountHandler(t *testing.T) {
	sc := newTestServerContext(t)

	var gotSlug string
	handler := AccountHandler(sc, func(ctx context.Context, slug string, args map[string]interface{}) (any, error) {
		gotSlug = slug
		if args["fail"] == true {
			return nil, &fizzy.Error{Kind: fizzy.KindNotFound, Status: 404, Resource: "card", ResourceID: "7"}
		}
		return nil, nil
	})

	result, err := handler(context.Background(), callRequest(map[string]interface{}{"account": "111"}))
	require.NoError(t, err)
	assert.Equal(t, "111", gotSlug)
	assert.JSONEq(t, `{"success":true}`, resultText(result))

	result, err = handler(context.Background(), callRequest(map[string]interface{}{"account": "111", "fail": true}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(result), "in account 111")
}

func TestAccountHandler_FailingCheckSkipsResolution(t *testing.T) {
	sc := newTestServerContext(t)

	called := false
	handler := AccountHandler(sc, func(ctx context.Context, slug string, args map[string]interface{}) (any, error) {
		called = true
		return nil, nil
	}, func(args map[string]interface{}) error {
		return fizzy.NewValidationError("cursor", "is not a valid pagination cursor")
	})

	result, err := handler(context.Background(), callRequest(map[string]interface{}{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(result), "Invalid cursor")
	assert.False(t, called)
	_, ok := sc.Resolver().Session()
	assert.False(t, ok)
}
