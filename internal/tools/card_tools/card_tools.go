package card_tools

import (
	"context"
	"fmt"
	"slices"

	"github.com/teemow/fizzy-mcp/internal/fizzy"
	"github.com/teemow/fizzy-mcp/internal/server"
	"github.com/teemow/fizzy-mcp/internal/tools/common"
)

func listCards(sc *server.ServerContext) common.AccountFunc {
	return func(ctx context.Context, slug string, args map[string]interface{}) (any, error) {
		cursor := common.StringArg(args, "cursor")
		if cursor != "" {
			return sc.Client().ListCards(ctx, slug, fizzy.CardFilter{}, cursor)
		}

		filter, err := cardFilter(ctx, sc, slug, args)
		if err != nil {
			return nil, err
		}
		return sc.Client().ListCards(ctx, slug, filter, "")
	}
}

// cardFilter builds the listing filter from the tool arguments. Tag titles
// are resolved to IDs.
func cardFilter(ctx context.Context, sc *server.ServerContext, slug string, args map[string]interface{}) (fizzy.CardFilter, error) {
	var filter fizzy.CardFilter
	var err error

	lists := []struct {
		name string
		dst  *[]string
	}{
		{"board_ids", &filter.BoardIDs},
		{"column_ids", &filter.ColumnIDs},
		{"tag_ids", &filter.TagIDs},
		{"assignee_ids", &filter.AssigneeIDs},
		{"terms", &filter.Terms},
	}
	for _, l := range lists {
		if *l.dst, err = common.StringList(args, l.name); err != nil {
			return filter, err
		}
	}

	titles, err := common.StringList(args, "tags")
	if err != nil {
		return filter, err
	}
	for _, title := range titles {
		tag, err := sc.Client().FindTag(ctx, slug, title)
		if err != nil {
			return filter, err
		}
		if !slices.Contains(filter.TagIDs, tag.ID) {
			filter.TagIDs = append(filter.TagIDs, tag.ID)
		}
	}

	if view := common.StringArg(args, "indexed_by"); view != "" {
		if !slices.Contains(indexViews, view) {
			return filter, fizzy.NewValidationError("indexed_by", fmt.Sprintf("unknown view %q", view))
		}
		filter.IndexedBy = view
	}
	return filter, nil
}

func getCard(sc *server.ServerContext) common.AccountFunc {
	return func(ctx context.Context, slug string, args map[string]interface{}) (any, error) {
		number, err := common.RequiredNumber(args, "card_number")
		if err != nil {
			return nil, err
		}
		return sc.Client().GetCard(ctx, slug, number)
	}
}

func toggleTag(sc *server.ServerContext) common.AccountFunc {
	return func(ctx context.Context, slug string, args map[string]interface{}) (any, error) {
		number, err := common.RequiredNumber(args, "card_number")
		if err != nil {
			return nil, err
		}
		tag := fizzy.NormalizeTag(common.StringArg(args, "tag"))
		if tag == "" {
			return nil, fizzy.NewValidationError("tag", "is required")
		}
		if err := sc.Client().ToggleTag(ctx, slug, number, tag); err != nil {
			return nil, err
		}
		return map[string]any{"success": true, "card_number": number, "tag": tag}, nil
	}
}

func toggleAssignee(sc *server.ServerContext) common.AccountFunc {
	return func(ctx context.Context, slug string, args map[string]interface{}) (any, error) {
		number, err := common.RequiredNumber(args, "card_number")
		if err != nil {
			return nil, err
		}
		userID, err := common.RequiredString(args, "user_id")
		if err != nil {
			return nil, err
		}
		if err := sc.Client().ToggleAssignee(ctx, slug, number, userID); err != nil {
			return nil, err
		}
		return map[string]any{"success": true, "card_number": number, "user_id": userID}, nil
	}
}

func deleteCard(sc *server.ServerContext) common.AccountFunc {
	return func(ctx context.Context, slug string, args map[string]interface{}) (any, error) {
		number, err := common.RequiredNumber(args, "card_number")
		if err != nil {
			return nil, err
		}
		if err := sc.Client().DeleteCard(ctx, slug, number); err != nil {
			return nil, err
		}
		return map[string]any{"success": true, "deleted": number}, nil
	}
}
