package pagination

import (
	"regexp"
	"slices"
)

// Info describes where a page sits in a listing.
type Info struct {
	Returned   int    `json:"returned"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// Page is one page of items plus its pagination info.
type Page[T any] struct {
	Items      []T  `json:"items"`
	Pagination Info `json:"pagination"`
}

// Order selects how items of a page are arranged before being returned.
type Order int

const (
	// Natural keeps the API order on every page.
	Natural Order = iota
	// NewestFirstOnFirstPage reverses the first page only. Later pages,
	// fetched through a cursor, keep the API order.
	NewestFirstOnFirstPage
)

// NewPage builds a Page from one fetched page.
//
// nextURL is the forward link reported by the API ("" when there is none).
// firstPage must be true when the page was fetched without a cursor.
func NewPage[T any](items []T, nextURL string, firstPage bool, order Order) Page[T] {
	out := make([]T, len(items))
	copy(out, items)

	if order == NewestFirstOnFirstPage && firstPage {
		slices.Reverse(out)
	}

	info := Info{
		Returned: len(out),
		HasMore:  nextURL != "",
	}
	if info.HasMore {
		info.NextCursor = EncodeCursor(nextURL)
	}

	return Page[T]{Items: out, Pagination: info}
}

// linkNextPattern matches the rel="next" target of an RFC 8288 Link header.
var linkNextPattern = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

// NextLink extracts the rel="next" URL from a Link header value.
// It returns "" when the header has no next link.
func NextLink(header string) string {
	if header == "" {
		return ""
	}
	m := linkNextPattern.FindStringSubmatch(header)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}
