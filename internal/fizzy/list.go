package fizzy

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/teemow/fizzy-mcp/internal/pagination"
)

// resolveListURL returns the URL for one page of a listing: the decoded cursor
// when one is given, otherwise the first-page URL. Cursor problems are local
// validation errors and never reach the network.
func (c *Client) resolveListURL(cursor string, firstPage func() string) (string, error) {
	if cursor == "" {
		return firstPage(), nil
	}

	next, ok := pagination.DecodeCursor(cursor)
	if !ok {
		return "", NewValidationError("cursor", "is not a valid pagination cursor; pass next_cursor exactly as returned")
	}
	if !c.sameOrigin(next) {
		return "", NewValidationError("cursor", "points at a different host than the configured Fizzy API")
	}
	return next, nil
}

// CheckCursor validates a list cursor without sending a request. An empty
// cursor is valid.
func (c *Client) CheckCursor(cursor string) error {
	_, err := c.resolveListURL(cursor, func() string { return "" })
	return err
}

// absoluteLink resolves a Link target against the URL of the request that
// returned it. Relative targets are allowed by RFC 8288.
func absoluteLink(requestURL, target string) string {
	if target == "" {
		return ""
	}
	ref, err := url.Parse(target)
	if err != nil {
		return target
	}
	base, err := url.Parse(requestURL)
	if err != nil {
		return target
	}
	return base.ResolveReference(ref).String()
}

// listPage fetches one page of a listing and wraps it in the pagination
// envelope.
func listPage[T any](ctx context.Context, c *Client, op, resource, cursor string, order pagination.Order, firstPage func() string) (*pagination.Page[T], error) {
	target, err := c.resolveListURL(cursor, firstPage)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, request{op: op, method: http.MethodGet, url: target, resource: resource})
	if err != nil {
		return nil, err
	}

	var items []T
	if _, err := resp.decode(&items); err != nil {
		return nil, err
	}

	next := absoluteLink(target, pagination.NextLink(resp.header.Get("Link")))
	page := pagination.NewPage(items, next, cursor == "", order)
	return &page, nil
}

// ListAll follows a listing through every page, up to MaxPages.
func ListAll[T any](ctx context.Context, list func(ctx context.Context, cursor string) (*pagination.Page[T], error)) ([]T, error) {
	var all []T
	cursor := ""

	for pages := 0; ; pages++ {
		if pages >= MaxPages {
			return nil, fmt.Errorf("listing exceeded %d pages; narrow the filters", MaxPages)
		}

		page, err := list(ctx, cursor)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)

		if !page.Pagination.HasMore {
			return all, nil
		}
		cursor = page.Pagination.NextCursor
	}
}
