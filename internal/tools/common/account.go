package common

import (
	"context"
	"strings"

	"github.com/teemow/fizzy-mcp/internal/server"
)

// AccountParamDescription documents the optional account argument every
// tool accepts.
const AccountParamDescription = "Account slug (e.g. 897362094). Defaults to the selected account, then FIZZY_ACCOUNT, then the only account of the token."

// GetAccountFromArgs returns the explicit account argument without its
// leading "/", or "" when absent.
func GetAccountFromArgs(args map[string]interface{}) string {
	if accountVal, ok := args["account"].(string); ok {
		return strings.TrimPrefix(strings.TrimSpace(accountVal), "/")
	}
	return ""
}

// ResolveAccount resolves the account slug a tool call applies to.
//
// Priority order:
//  1. Explicit "account" argument in request
//  2. Session account (selected or auto-detected)
//  3. FIZZY_ACCOUNT environment variable
//  4. Auto-detection from the token's identity
func ResolveAccount(ctx context.Context, sc *server.ServerContext, args map[string]interface{}) (string, error) {
	return sc.ResolveAccount(ctx, GetAccountFromArgs(args))
}

// accountLabel names the account for metrics and audit without triggering
// a resolution: the explicit argument, else the session account.
func accountLabel(sc *server.ServerContext, args map[string]interface{}) string {
	if account := GetAccountFromArgs(args); account != "" {
		return account
	}
	if session, ok := sc.Resolver().Session(); ok {
		return session.Account.Slug
	}
	return ""
}
