package common

import (
	"context"
	"errors"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/trace"

	"github.com/teemow/fizzy-mcp/internal/instrumentation"
	"github.com/teemow/fizzy-mcp/internal/server"
)

// ToolHandler is the signature of an MCP tool handler.
type ToolHandler = mcpserver.ToolHandlerFunc

// InstrumentedToolHandler wraps a tool handler with tracing, metrics and
// audit logging.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("my_tool", sc, handler))
func InstrumentedToolHandler(toolName string, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return InstrumentedToolHandlerWithOperation(toolName, "", sc, handler)
}

// InstrumentedToolHandlerWithOperation is like InstrumentedToolHandler but
// also records the operation type (list, get, create, ...) on the span and
// the audit record.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandlerWithOperation("fizzy_list_cards", instrumentation.OperationList, sc, handler))
func InstrumentedToolHandlerWithOperation(toolName, operation string, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		account := accountLabel(sc, args)

		attrs := instrumentation.NewSpanAttributeBuilder().
			WithAccount(account).
			WithReadOnly(sc.ReadOnly())
		if operation != "" {
			attrs.WithOperation(operation)
		}
		ctx, span := instrumentation.StartToolSpan(ctx, toolName, attrs.Build()...)
		defer span.End()

		metrics := sc.Metrics()
		auditLogger := sc.AuditLogger()

		// If no instrumentation configured, just call the handler
		if metrics == nil && auditLogger == nil {
			result, err := handler(ctx, request)
			finishSpan(span, result, err)
			return result, err
		}

		start := time.Now()
		invocation := instrumentation.NewToolInvocation(toolName).
			WithSpanContext(ctx)
		if operation != "" {
			invocation.WithOperation(operation)
		}

		result, err := handler(ctx, request)
		duration := time.Since(start)
		finishSpan(span, result, err)

		// the handler may have auto-detected the account
		if account == "" {
			account = accountLabel(sc, args)
		}
		if account != "" {
			invocation.WithAccount(account)
		}
		if session, ok := sc.Resolver().Session(); ok && session.Account.Slug == account {
			invocation.WithUser(session.User.ID)
		}

		status := instrumentation.StatusSuccess
		if err != nil || (result != nil && result.IsError) {
			status = instrumentation.StatusError
			if err != nil {
				invocation.CompleteWithError(err)
			} else {
				invocation.CompleteWithError(errors.New(resultText(result)))
			}
		} else {
			invocation.CompleteSuccess()
		}

		if metrics != nil {
			metrics.RecordToolInvocationWithAccount(ctx, toolName, status, account, duration)
		}

		if auditLogger != nil {
			auditLogger.LogToolInvocation(invocation)
		}

		return result, err
	}
}

func finishSpan(span trace.Span, result *mcp.CallToolResult, err error) {
	switch {
	case err != nil:
		instrumentation.SetSpanError(span, err)
	case result != nil && result.IsError:
		instrumentation.SetSpanError(span, errors.New(resultText(result)))
	default:
		instrumentation.SetSpanSuccess(span)
	}
}

// resultText returns the text of the first text content of result.
func resultText(result *mcp.CallToolResult) string {
	for _, c := range result.Content {
		if text, ok := mcp.AsTextContent(c); ok {
			return text.Text
		}
	}
	return "tool returned an error"
}
