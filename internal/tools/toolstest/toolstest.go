// Package toolstest provides a fake Fizzy API and helpers for testing MCP
// tool handlers.
package toolstest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/require"

	"github.com/teemow/fizzy-mcp/internal/fizzy"
	"github.com/teemow/fizzy-mcp/internal/server"
)

// Account is the slug of the only account the fake identity returns.
const Account = "897362094"

// IdentityJSON is the default /my/identity response.
const IdentityJSON = `{"accounts":[{"id":"acc1","name":"Acme","slug":"/897362094","user":{"id":"u1","name":"Ada","role":"owner"}}]}`

// Request is one request seen by the fake API.
type Request struct {
	Method string
	Path   string
	Query  string
	Body   map[string]any
}

// API is a fake Fizzy API answering registered routes and 404 otherwise.
type API struct {
	*httptest.Server

	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []Request
}

// NewAPI starts a fake API that already answers the identity endpoint.
func NewAPI(t *testing.T) *API {
	t.Helper()

	a := &API{routes: make(map[string]http.HandlerFunc)}
	a.Server = httptest.NewServer(http.HandlerFunc(a.serve))
	t.Cleanup(a.Close)

	a.JSON(http.MethodGet, "/my/identity", http.StatusOK, json.RawMessage(IdentityJSON))
	return a
}

func (a *API) serve(w http.ResponseWriter, r *http.Request) {
	req := Request{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery}
	if body, _ := io.ReadAll(r.Body); len(body) > 0 {
		_ = json.Unmarshal(body, &req.Body)
	}

	a.mu.Lock()
	a.requests = append(a.requests, req)
	h, ok := a.routes[r.Method+" "+r.URL.Path]
	a.mu.Unlock()

	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not found"}`))
		return
	}
	h(w, r)
}

// Handle registers h for method and exact path.
func (a *API) Handle(method, path string, h http.HandlerFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.routes[method+" "+path] = h
}

// JSON registers a route answering status with body encoded as JSON. A nil
// body sends no content.
func (a *API) JSON(method, path string, status int, body any) {
	a.Handle(method, path, func(w http.ResponseWriter, _ *http.Request) {
		if body == nil {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	})
}

// Requests returns every request seen so far.
func (a *API) Requests() []Request {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Request(nil), a.requests...)
}

// Calls returns "METHOD /path" for every request except identity lookups.
func (a *API) Calls() []string {
	var calls []string
	for _, r := range a.Requests() {
		if r.Path == "/my/identity" {
			continue
		}
		calls = append(calls, r.Method+" "+r.Path)
	}
	return calls
}

// NewServerContext returns a ServerContext talking to api with
// FIZZY_ACCOUNT unset.
func NewServerContext(t *testing.T, api *API, opts ...server.Option) *server.ServerContext {
	t.Helper()

	client, err := fizzy.NewClient(api.URL, "test-token")
	require.NoError(t, err)

	opts = append([]server.Option{server.WithGetenv(func(string) string { return "" })}, opts...)
	sc, err := server.NewServerContext(context.Background(), client, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

// Call invokes handler with args.
func Call(t *testing.T, handler mcpserver.ToolHandlerFunc, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()

	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

// Text returns the text of the first text content of result.
func Text(result *mcp.CallToolResult) string {
	for _, c := range result.Content {
		if text, ok := mcp.AsTextContent(c); ok {
			return text.Text
		}
	}
	return ""
}

// Decode unmarshals a successful JSON tool result into v.
func Decode(t *testing.T, result *mcp.CallToolResult, v any) {
	t.Helper()
	require.False(t, result.IsError, "tool error: %s", Text(result))
	require.NoError(t, json.Unmarshal([]byte(Text(result)), v))
}

// ToolNames lists the tools registered on s, sorted.
func ToolNames(t *testing.T, s *mcpserver.MCPServer) []string {
	t.Helper()

	msg := s.HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var resp struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(data, &resp))

	names := make([]string, 0, len(resp.Result.Tools))
	for _, tool := range resp.Result.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	return names
}

// NewMCPServer returns an MCP server with tool capabilities.
func NewMCPServer() *mcpserver.MCPServer {
	return mcpserver.NewMCPServer("fizzy-mcp-test", "0.0.0",
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false),
	)
}
