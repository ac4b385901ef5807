package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/fizzy-mcp/internal/account"
	"github.com/teemow/fizzy-mcp/internal/server"
)

// Resource URIs.
const (
	SessionURI  = "fizzy://session"
	AccountsURI = "fizzy://accounts"
)

// SessionData is the content of the session resource. Session is nil until
// an account has been selected or auto-detected.
type SessionData struct {
	Session  *account.Session `json:"session"`
	BaseURL  string           `json:"base_url"`
	ReadOnly bool             `json:"read_only"`
}

// RegisterSessionResources registers the session and accounts resources.
func RegisterSessionResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	sessionResource := mcp.NewResource(
		SessionURI,
		"Current Fizzy Session",
		mcp.WithResourceDescription("The account tool calls apply to when no account argument is given"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(sessionResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleSession(request, sc)
	})

	accountsResource := mcp.NewResource(
		AccountsURI,
		"Fizzy Accounts",
		mcp.WithResourceDescription("Every account the access token can reach, with the caller's role"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(accountsResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleAccounts(ctx, request, sc)
	})

	return nil
}

func handleSession(request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	data := SessionData{
		BaseURL:  sc.Client().BaseURL(),
		ReadOnly: sc.ReadOnly(),
	}
	if session, ok := sc.Resolver().Session(); ok {
		data.Session = &session
	}
	return jsonContents(request.Params.URI, data)
}

func handleAccounts(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	identity, err := sc.Client().Identity(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get identity: %w", err)
	}
	return jsonContents(request.Params.URI, identity)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
