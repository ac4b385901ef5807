package common

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/fizzy-mcp/internal/account"
	"github.com/teemow/fizzy-mcp/internal/fizzy"
)

// JSONResult renders v as indented JSON tool output.
func JSONResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// ErrorResult turns err into a tool error with an instructive message.
// Account resolution failures keep their own message, even when caused by
// a failed identity lookup.
func ErrorResult(err error, account string) *mcp.CallToolResult {
	if isAccountError(err) {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultError(fizzy.Describe(err, account))
}

func isAccountError(err error) bool {
	var unknown *account.UnknownAccountError
	return errors.Is(err, account.ErrNoAccount) || errors.As(err, &unknown)
}
