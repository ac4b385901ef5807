package server

import (
	"context"
	"log/slog"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/fizzy-mcp/internal/instrumentation"
)

// SessionHooks tracks MCP client sessions in the active_sessions gauge and
// logs their lifecycle at debug level.
func SessionHooks(metrics *instrumentation.Metrics, logger *slog.Logger) *mcpserver.Hooks {
	if logger == nil {
		logger = slog.Default()
	}

	hooks := &mcpserver.Hooks{}
	hooks.AddOnRegisterSession(func(ctx context.Context, session mcpserver.ClientSession) {
		metrics.IncrementActiveSessions(ctx)
		logger.Debug("mcp session registered", "session", session.SessionID())
	})
	hooks.AddOnUnregisterSession(func(ctx context.Context, session mcpserver.ClientSession) {
		metrics.DecrementActiveSessions(ctx)
		logger.Debug("mcp session unregistered", "session", session.SessionID())
	})
	return hooks
}
