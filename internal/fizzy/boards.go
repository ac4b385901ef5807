package fizzy

import (
	"context"
	"fmt"
	"net/http"

	"github.com/teemow/fizzy-mcp/internal/pagination"
)

// ListBoards returns one page of the account's boards.
func (c *Client) ListBoards(ctx context.Context, slug, cursor string) (*pagination.Page[Board], error) {
	return listPage[Board](ctx, c, "boards.list", "board", cursor, pagination.Natural, func() string {
		return c.endpoint(nil, accountPath(slug), "boards")
	})
}

// GetBoard returns a single board.
func (c *Client) GetBoard(ctx context.Context, slug, boardID string) (*Board, error) {
	resp, err := c.do(ctx, request{
		op:         "boards.get",
		method:     http.MethodGet,
		url:        c.endpoint(nil, accountPath(slug), "boards", boardID),
		resource:   "board",
		resourceID: boardID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get board: %w", err)
	}

	var board Board
	if _, err := resp.decode(&board); err != nil {
		return nil, err
	}
	return &board, nil
}

// ListColumns returns one page of a board's columns.
func (c *Client) ListColumns(ctx context.Context, slug, boardID, cursor string) (*pagination.Page[Column], error) {
	return listPage[Column](ctx, c, "columns.list", "column", cursor, pagination.Natural, func() string {
		return c.endpoint(nil, accountPath(slug), "boards", boardID, "columns")
	})
}
