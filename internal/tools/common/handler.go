package common

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/fizzy-mcp/internal/server"
)

// AccountFunc performs a tool call for a resolved account slug. The returned
// value is rendered as JSON; a nil value renders as {"success": true}.
type AccountFunc func(ctx context.Context, slug string, args map[string]interface{}) (any, error)

// ArgCheck validates tool arguments locally. It must not call the API.
type ArgCheck func(args map[string]interface{}) error

// CursorCheck rejects a malformed or foreign cursor argument.
func CursorCheck(sc *server.ServerContext) ArgCheck {
	return func(args map[string]interface{}) error {
		return sc.Client().CheckCursor(StringArg(args, "cursor"))
	}
}

// AccountHandler runs checks, resolves the account of a call, runs fn and
// renders its result. Checks run before account resolution, so a rejected
// call sends no request and leaves the session untouched. Errors become
// tool errors with instructive messages.
func AccountHandler(sc *server.ServerContext, fn AccountFunc, checks ...ArgCheck) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		for _, check := range checks {
			if err := check(args); err != nil {
				return ErrorResult(err, GetAccountFromArgs(args)), nil
			}
		}

		slug, err := ResolveAccount(ctx, sc, args)
		if err != nil {
			return ErrorResult(err, ""), nil
		}

		out, err := fn(ctx, slug, args)
		if err != nil {
			return ErrorResult(err, slug), nil
		}
		if out == nil {
			out = map[string]bool{"success": true}
		}
		return JSONResult(out)
	}
}

// AccountParam is the optional account argument every tool accepts.
func AccountParam() mcp.ToolOption {
	return mcp.WithString("account", mcp.Description(AccountParamDescription))
}

// CursorParam is the optional cursor argument of list tools.
func CursorParam() mcp.ToolOption {
	return mcp.WithString("cursor",
		mcp.Description("Opaque next_cursor from a previous page. Other filters are ignored when a cursor is given."),
	)
}

// CardNumberParam is the card number argument of card-level tools.
func CardNumberParam(required bool) mcp.ToolOption {
	opts := []mcp.PropertyOption{mcp.Description("Card number as shown in Fizzy (e.g. 42)")}
	if required {
		opts = append(opts, mcp.Required())
	}
	return mcp.WithNumber("card_number", opts...)
}
