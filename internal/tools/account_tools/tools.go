package account_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/fizzy-mcp/internal/account"
	"github.com/teemow/fizzy-mcp/internal/instrumentation"
	"github.com/teemow/fizzy-mcp/internal/server"
	"github.com/teemow/fizzy-mcp/internal/tools/common"
)

// Reset scopes of fizzy_reset_account.
const (
	ScopeSession = "session"
	ScopeCache   = "cache"
	ScopeAll     = "all"
)

// WhoAmI is the result of fizzy_whoami.
type WhoAmI struct {
	Accounts []AccountSummary `json:"accounts"`
	Session  *account.Session `json:"session,omitempty"`
}

// AccountSummary describes one reachable account and the caller's role in it.
type AccountSummary struct {
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	Role     string `json:"role"`
}

// RegisterAccountTools registers the account selection tools with the MCP
// server. They only touch process state, so read-only mode keeps them.
func RegisterAccountTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	whoamiTool := mcp.NewTool("fizzy_whoami",
		mcp.WithDescription("List the Fizzy accounts the access token can reach, the caller's role in each, and the current session account"),
	)
	s.AddTool(whoamiTool, common.InstrumentedToolHandlerWithOperation("fizzy_whoami", instrumentation.OperationGet, sc, handleWhoAmI(sc)))

	selectTool := mcp.NewTool("fizzy_select_account",
		mcp.WithDescription("Select the account that tool calls without an explicit account argument apply to"),
		mcp.WithString("account",
			mcp.Required(),
			mcp.Description("Account slug to select (e.g. 897362094). Use fizzy_whoami to list them."),
		),
	)
	s.AddTool(selectTool, common.InstrumentedToolHandlerWithOperation("fizzy_select_account", instrumentation.OperationUpdate, sc, handleSelectAccount(sc)))

	resetTool := mcp.NewTool("fizzy_reset_account",
		mcp.WithDescription("Forget the selected account so the next call resolves it again from FIZZY_ACCOUNT or auto-detection"),
		mcp.WithString("scope",
			mcp.Description("What to clear: 'session' (default) drops the selected account, 'cache' drops the auto-detected account, 'all' drops both"),
			mcp.Enum(ScopeSession, ScopeCache, ScopeAll),
		),
	)
	s.AddTool(resetTool, common.InstrumentedToolHandlerWithOperation("fizzy_reset_account", instrumentation.OperationDelete, sc, handleResetAccount(sc)))

	return nil
}

func handleWhoAmI(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		identity, err := sc.Client().Identity(ctx)
		if err != nil {
			return common.ErrorResult(err, ""), nil
		}

		out := WhoAmI{Accounts: make([]AccountSummary, 0, len(identity.Accounts))}
		for _, a := range identity.Accounts {
			out.Accounts = append(out.Accounts, AccountSummary{
				Slug:     a.CleanSlug(),
				Name:     a.Name,
				ID:       a.ID,
				UserID:   a.User.ID,
				UserName: a.User.Name,
				Role:     a.User.Role,
			})
		}
		if session, ok := sc.Resolver().Session(); ok {
			out.Session = &session
		}
		return common.JSONResult(out)
	}
}

func handleSelectAccount(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		slug := common.GetAccountFromArgs(request.GetArguments())
		if slug == "" {
			return mcp.NewToolResultError("account is required"), nil
		}

		session, err := sc.Resolver().SelectAccount(ctx, slug)
		if err != nil {
			return common.ErrorResult(err, slug), nil
		}
		return common.JSONResult(session)
	}
}

func handleResetAccount(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		scope := common.StringArg(request.GetArguments(), "scope")
		if scope == "" {
			scope = ScopeSession
		}

		resolver := sc.Resolver()
		switch scope {
		case ScopeSession:
			resolver.ClearSession()
		case ScopeCache:
			resolver.ClearCache()
		case ScopeAll:
			resolver.Reset()
		default:
			return mcp.NewToolResultError(fmt.Sprintf("unknown scope %q: use %s, %s or %s", scope, ScopeSession, ScopeCache, ScopeAll)), nil
		}

		return common.JSONResult(map[string]string{"reset": scope})
	}
}
