package common

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/teemow/fizzy-mcp/internal/fizzy"
	"github.com/teemow/fizzy-mcp/internal/server"
)

const identityJSON = `{"accounts":[{"id":"acc1","name":"Acme","slug":"/897362094","user":{"id":"u1","name":"Ada","role":"owner"}}]}`

func newTestServerContext(t *testing.T, opts ...server.Option) *server.ServerContext {
	t.Helper()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/my/identity" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(identityJSON))
	}))
	t.Cleanup(api.Close)

	client, err := fizzy.NewClient(api.URL, "test-token")
	require.NoError(t, err)

	opts = append([]server.Option{server.WithGetenv(func(string) string { return "" })}, opts...)
	sc, err := server.NewServerContext(context.Background(), client, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}
