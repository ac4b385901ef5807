package fizzy

import (
	"context"
	"fmt"
	"strings"

	"github.com/teemow/fizzy-mcp/internal/pagination"
)

// ListTags returns one page of the account's tags.
func (c *Client) ListTags(ctx context.Context, slug, cursor string) (*pagination.Page[Tag], error) {
	return listPage[Tag](ctx, c, "tags.list", "tag", cursor, pagination.Natural, func() string {
		return c.endpoint(nil, accountPath(slug), "tags")
	})
}

// ListUsers returns one page of the account's users.
func (c *Client) ListUsers(ctx context.Context, slug, cursor string) (*pagination.Page[User], error) {
	return listPage[User](ctx, c, "users.list", "user", cursor, pagination.Natural, func() string {
		return c.endpoint(nil, accountPath(slug), "users")
	})
}

// FindTag resolves a tag title to a tag, ignoring case and a leading "#".
// The account's tag list is cached; a miss on a cached list refetches once
// before reporting NotFound.
func (c *Client) FindTag(ctx context.Context, slug, title string) (*Tag, error) {
	key := accountPath(slug)
	want := NormalizeTag(title)

	if tags, ok := c.tags.Get(key); ok {
		if tag := matchTag(tags, want); tag != nil {
			return tag, nil
		}
	}

	tags, err := ListAll(ctx, func(ctx context.Context, cursor string) (*pagination.Page[Tag], error) {
		return c.ListTags(ctx, slug, cursor)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	c.tags.Add(key, tags)

	if tag := matchTag(tags, want); tag != nil {
		return tag, nil
	}
	return nil, &Error{
		Kind:       KindNotFound,
		Resource:   "tag",
		ResourceID: want,
		Message:    "no tag with this title exists",
	}
}

func matchTag(tags []Tag, title string) *Tag {
	for i := range tags {
		if strings.EqualFold(NormalizeTag(tags[i].Title), title) {
			return &tags[i]
		}
	}
	return nil
}
