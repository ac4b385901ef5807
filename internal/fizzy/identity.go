package fizzy

import (
	"context"
	"fmt"
	"net/http"
)

// Identity returns the accounts reachable with the configured token.
func (c *Client) Identity(ctx context.Context) (*Identity, error) {
	resp, err := c.do(ctx, request{
		op:       "identity.get",
		method:   http.MethodGet,
		url:      c.endpoint(nil, "my", "identity"),
		resource: "identity",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get identity: %w", err)
	}

	var identity Identity
	if _, err := resp.decode(&identity); err != nil {
		return nil, err
	}
	return &identity, nil
}
