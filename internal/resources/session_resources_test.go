package resources

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/fizzy-mcp/internal/fizzy"
	"github.com/teemow/fizzy-mcp/internal/server"
	"github.com/teemow/fizzy-mcp/internal/tools/toolstest"
)

func readRequest(uri string) mcp.ReadResourceRequest {
	req := mcp.ReadResourceRequest{}
	req.Params.URI = uri
	return req
}

func decodeContents(t *testing.T, contents []mcp.ResourceContents, v any) {
	t.Helper()
	require.Len(t, contents, 1)
	text, ok := contents[0].(*mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, "application/json", text.MIMEType)
	require.NoError(t, json.Unmarshal([]byte(text.Text), v))
}

func TestSessionResource(t *testing.T) {
	api := toolstest.NewAPI(t)
	sc := toolstest.NewServerContext(t, api, server.WithReadOnly(true))

	contents, err := handleSession(readRequest(SessionURI), sc)
	require.NoError(t, err)
	var before SessionData
	decodeContents(t, contents, &before)
	assert.Nil(t, before.Session)
	assert.True(t, before.ReadOnly)
	assert.Equal(t, api.URL, before.BaseURL)

	_, err = sc.ResolveAccount(context.Background(), "")
	require.NoError(t, err)

	contents, err = handleSession(readRequest(SessionURI), sc)
	require.NoError(t, err)
	var after SessionData
	decodeContents(t, contents, &after)
	require.NotNil(t, after.Session)
	assert.Equal(t, toolstest.Account, after.Session.Account.Slug)
	assert.Equal(t, "Ada", after.Session.User.Name)
}

func TestAccountsResource(t *testing.T) {
	api := toolstest.NewAPI(t)
	sc := toolstest.NewServerContext(t, api)

	contents, err := handleAccounts(context.Background(), readRequest(AccountsURI), sc)
	require.NoError(t, err)

	var identity fizzy.Identity
	decodeContents(t, contents, &identity)
	assert.Equal(t, []string{toolstest.Account}, identity.Slugs())
}

func TestRegisterSessionResources(t *testing.T) {
	api := toolstest.NewAPI(t)
	s := toolstest.NewMCPServer()

	require.NoError(t, RegisterSessionResources(s, toolstest.NewServerContext(t, api)))

	msg := s.HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"resources/list"}`))
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.Contains(t, string(data), SessionURI)
	assert.Contains(t, string(data), AccountsURI)
}
