package fizzy

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/teemow/fizzy-mcp/internal/pagination"
)

// ListComments returns one page of a card's comments. The first page is
// returned newest first; pages reached through a cursor keep API order.
func (c *Client) ListComments(ctx context.Context, slug string, number int, cursor string) (*pagination.Page[Comment], error) {
	return listPage[Comment](ctx, c, "comments.list", "comment", cursor, pagination.NewestFirstOnFirstPage, func() string {
		return c.endpoint(nil, accountPath(slug), "cards", strconv.Itoa(number), "comments")
	})
}

// CreateComment posts a Markdown comment on a card.
func (c *Client) CreateComment(ctx context.Context, slug string, number int, markdown string) (*Comment, error) {
	body, err := c.render(&markdown)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, request{
		op:         "comments.create",
		method:     http.MethodPost,
		url:        c.endpoint(nil, accountPath(slug), "cards", strconv.Itoa(number), "comments"),
		body:       map[string]any{"comment": map[string]string{"body": *body}},
		resource:   "card",
		resourceID: strconv.Itoa(number),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	var comment Comment
	ok, err := resp.decode(&comment)
	if err != nil {
		return nil, err
	}
	if !ok {
		comment = Comment{Body: CommentBody{PlainText: markdown, HTML: *body}, URL: resp.header.Get("Location")}
	}
	return &comment, nil
}

// DeleteComment removes a comment from a card.
func (c *Client) DeleteComment(ctx context.Context, slug string, number int, commentID string) error {
	_, err := c.do(ctx, request{
		op:         "comments.delete",
		method:     http.MethodDelete,
		url:        c.endpoint(nil, accountPath(slug), "cards", strconv.Itoa(number), "comments", commentID),
		resource:   "comment",
		resourceID: commentID,
	})
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}
