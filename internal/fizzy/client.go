// Package fizzy provides a client and data types for the Fizzy REST API.
package fizzy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/oauth2"

	"github.com/teemow/fizzy-mcp/internal/instrumentation"
	"github.com/teemow/fizzy-mcp/internal/logging"
	"github.com/teemow/fizzy-mcp/internal/richtext"
)

const (
	// DefaultBaseURL is the hosted Fizzy API.
	DefaultBaseURL = "https://app.fizzy.do"

	// DefaultTimeout bounds a single HTTP request.
	DefaultTimeout = 30 * time.Second

	// DefaultTagCacheTTL is how long an account's tag list is reused for
	// title lookups.
	DefaultTagCacheTTL = 5 * time.Minute

	// DefaultTagCacheSize is the number of accounts whose tags are cached.
	DefaultTagCacheSize = 32

	// MaxPages caps how many pages ListAll will follow.
	MaxPages = 100

	maxResponseSize = 10 * 1024 * 1024
	userAgent       = "fizzy-mcp"
)

// Client talks to the Fizzy API with a personal access token.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	renderer   *richtext.Renderer
	tags       *expirable.LRU[string, []Tag]
	metrics    *instrumentation.Metrics
	logger     *slog.Logger

	baseTransport http.RoundTripper
	timeout       time.Duration
	tagCacheSize  int
	tagCacheTTL   time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTransport sets the transport the bearer-token transport wraps.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.baseTransport = rt }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithTagCache sizes the tag lookup cache.
func WithTagCache(size int, ttl time.Duration) Option {
	return func(c *Client) {
		c.tagCacheSize = size
		c.tagCacheTTL = ttl
	}
}

// WithMetrics records every API call on m.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the logger used for request debug logs.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithRenderer sets the Markdown renderer used for descriptions and comments.
func WithRenderer(r *richtext.Renderer) Option {
	return func(c *Client) { c.renderer = r }
}

// NewClient creates a client for the API at baseURL authenticated with token.
func NewClient(baseURL, token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, errors.New("a Fizzy access token is required")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: must be an absolute http(s) URL", baseURL)
	}

	c := &Client{
		baseURL:       u,
		baseTransport: http.DefaultTransport,
		timeout:       DefaultTimeout,
		tagCacheSize:  DefaultTagCacheSize,
		tagCacheTTL:   DefaultTagCacheTTL,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.renderer == nil {
		c.renderer = richtext.New()
	}

	base := &http.Client{Transport: c.baseTransport}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	c.httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
	c.httpClient.Timeout = c.timeout

	c.tags = expirable.NewLRU[string, []Tag](c.tagCacheSize, nil, c.tagCacheTTL)

	c.logger.Debug("fizzy client configured",
		slog.String("base_url", u.String()),
		slog.String("token", logging.SanitizeToken(token)))

	return c, nil
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// endpoint builds an absolute URL from path segments and an optional query.
func (c *Client) endpoint(query url.Values, segments ...string) string {
	u := *c.baseURL
	parts := append([]string{"/", u.Path}, segments...)
	u.Path = path.Join(parts...)
	u.RawQuery = ""
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// accountPath returns the path segment for an account slug.
func accountPath(slug string) string {
	return strings.Trim(slug, "/")
}

// sameOrigin reports whether raw points at the configured API host.
func (c *Client) sameOrigin(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, c.baseURL.Scheme) && strings.EqualFold(u.Host, c.baseURL.Host)
}

type request struct {
	op         string
	method     string
	url        string
	body       any
	resource   string
	resourceID string
}

type response struct {
	status int
	header http.Header
	body   []byte
}

// decode unmarshals the payload into out. It reports false when the response
// carried no payload.
func (r *response) decode(out any) (bool, error) {
	if len(bytes.TrimSpace(r.body)) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(r.body, out); err != nil {
		return false, fmt.Errorf("failed to parse response: %w", err)
	}
	return true, nil
}

// do performs one API call with tracing and metrics. Non-2xx responses come
// back as *Error.
func (c *Client) do(ctx context.Context, r request) (*response, error) {
	ctx, span := instrumentation.StartAPISpan(ctx, r.op,
		instrumentation.NewSpanAttributeBuilder().WithResource(r.resource, r.resourceID).Build()...)
	defer span.End()

	start := time.Now()
	resp, err := c.send(ctx, r)
	duration := time.Since(start)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	} else {
		span.SetAttributes(attribute.Int(instrumentation.SpanAttrHTTPStatus, resp.status))
		instrumentation.SetSpanSuccess(span)
	}
	c.metrics.RecordAPIOperation(ctx, r.op, status, duration)

	c.logger.DebugContext(ctx, "fizzy api call",
		logging.Operation(r.op),
		slog.String("method", r.method),
		logging.Status(status),
		slog.Duration(logging.KeyDuration, duration),
		logging.Err(err))

	return resp, err
}

func (c *Client) send(ctx context.Context, r request) (*response, error) {
	var body io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, r.url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", r.op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", r.op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newResponseError(resp.StatusCode, respBody, r.resource, r.resourceID)
	}

	return &response{status: resp.StatusCode, header: resp.Header, body: respBody}, nil
}

// render converts caller Markdown to HTML, passing nil through.
func (c *Client) render(markdown *string) (*string, error) {
	if markdown == nil {
		return nil, nil
	}
	html, err := c.renderer.ToHTML(*markdown)
	if err != nil {
		return nil, fmt.Errorf("failed to render markdown: %w", err)
	}
	return &html, nil
}
