package card_tools

import (
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/fizzy-mcp/internal/instrumentation"
	"github.com/teemow/fizzy-mcp/internal/orchestrator"
	"github.com/teemow/fizzy-mcp/internal/server"
	"github.com/teemow/fizzy-mcp/internal/tools/common"
)

// Views accepted by fizzy_list_cards.
var indexViews = []string{"all", "closed", "not_now", "stalled", "golden"}

// RegisterCardTools registers the card tools with the MCP server. Write tools
// are skipped in read-only mode.
func RegisterCardTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	registerReadTools(s, sc)
	if sc.ReadOnly() {
		return nil
	}
	registerWriteTools(s, sc)
	return nil
}

func registerReadTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	listCardsTool := mcp.NewTool("fizzy_list_cards",
		mcp.WithDescription("List cards. Filters combine with AND; each filter accepts a single value or an array."),
		common.AccountParam(),
		mcp.WithString("board_ids",
			mcp.Description("Board ID or array of board IDs"),
		),
		mcp.WithString("column_ids",
			mcp.Description("Column ID or array of column IDs"),
		),
		mcp.WithString("tags",
			mcp.Description("Tag title or array of tag titles (e.g. \"bug\" or [\"bug\", \"#urgent\"])"),
		),
		mcp.WithString("tag_ids",
			mcp.Description("Tag ID or array of tag IDs"),
		),
		mcp.WithString("assignee_ids",
			mcp.Description("User ID or array of user IDs"),
		),
		mcp.WithString("terms",
			mcp.Description("Search term or array of search terms"),
		),
		mcp.WithString("indexed_by",
			mcp.Description("View to list: 'all' (open cards, default), 'closed', 'not_now', 'stalled' or 'golden'"),
			mcp.Enum(indexViews...),
		),
		common.CursorParam(),
	)
	s.AddTool(listCardsTool, common.InstrumentedToolHandlerWithOperation("fizzy_list_cards", instrumentation.OperationList, sc,
		listCardsHandler(sc)))

	getCardTool := mcp.NewTool("fizzy_get_card",
		mcp.WithDescription("Get a card with its tags, assignees and steps"),
		common.AccountParam(),
		common.CardNumberParam(true),
	)
	s.AddTool(getCardTool, common.InstrumentedToolHandlerWithOperation("fizzy_get_card", instrumentation.OperationGet, sc,
		common.AccountHandler(sc, getCard(sc))))
}

func registerWriteTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	taskTool := mcp.NewTool("fizzy_task",
		mcp.WithDescription(`Create or update a card in one call.

Without card_number a card is created on board_id (title required). With card_number the card is updated.
Steps, tags, assignees, status and column are applied after the card exists; a failing step is reported in "failures" and does not undo the others.`),
		common.AccountParam(),
		common.CardNumberParam(false),
		mcp.WithString("board_id",
			mcp.Description("Board to create the card on (required when card_number is omitted)"),
		),
		mcp.WithString("title",
			mcp.Description("Card title"),
		),
		mcp.WithString("description",
			mcp.Description("Card description in Markdown"),
		),
		mcp.WithString("status",
			mcp.Description("Target status: 'open', 'closed' or 'not_now'. Only existing cards can change status."),
			mcp.Enum("open", "closed", "not_now"),
		),
		mcp.WithString("column_id",
			mcp.Description("Column to move the card to"),
		),
		mcp.WithString("steps",
			mcp.Description("Checklist item or array of checklist items to append"),
		),
		mcp.WithString("add_tags",
			mcp.Description("Tag title or array of tag titles to add. Unknown titles create the tag."),
		),
		mcp.WithString("tags",
			mcp.Description("Alias of add_tags"),
		),
		mcp.WithString("remove_tags",
			mcp.Description("Tag title or array of tag titles to remove"),
		),
		mcp.WithString("add_assignees",
			mcp.Description("User ID or array of user IDs to assign"),
		),
		mcp.WithString("remove_assignees",
			mcp.Description("User ID or array of user IDs to unassign"),
		),
	)
	s.AddTool(taskTool, common.InstrumentedToolHandlerWithOperation("fizzy_task", instrumentation.OperationUpdate, sc,
		common.AccountHandler(sc, task(sc))))

	cardActionTool := mcp.NewTool("fizzy_card_action",
		mcp.WithDescription("Apply a lifecycle action to one card (card_number) or several (card_numbers). Several cards return a per-card result."),
		common.AccountParam(),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Description("Action: "+strings.Join(orchestrator.ActionNames(), ", ")),
			mcp.Enum(orchestrator.ActionNames()...),
		),
		common.CardNumberParam(false),
		mcp.WithString("card_numbers",
			mcp.Description("Card number or array of card numbers (e.g. [1, 2, 3])"),
		),
		mcp.WithString("column_id",
			mcp.Description("Target column (required for 'triage')"),
		),
	)
	s.AddTool(cardActionTool, common.InstrumentedToolHandlerWithOperation("fizzy_card_action", instrumentation.OperationMove, sc,
		common.AccountHandler(sc, cardAction(sc))))

	toggleTagTool := mcp.NewTool("fizzy_toggle_tag",
		mcp.WithDescription("Add a tag to a card, or remove it when the card already has it. Unknown titles create the tag."),
		common.AccountParam(),
		common.CardNumberParam(true),
		mcp.WithString("tag",
			mcp.Required(),
			mcp.Description("Tag title, with or without a leading #"),
		),
	)
	s.AddTool(toggleTagTool, common.InstrumentedToolHandlerWithOperation("fizzy_toggle_tag", instrumentation.OperationToggle, sc,
		common.AccountHandler(sc, toggleTag(sc))))

	toggleAssigneeTool := mcp.NewTool("fizzy_toggle_assignee",
		mcp.WithDescription("Assign a user to a card, or unassign when already assigned"),
		common.AccountParam(),
		common.CardNumberParam(true),
		mcp.WithString("user_id",
			mcp.Required(),
			mcp.Description("User ID (see fizzy_list_users)"),
		),
	)
	s.AddTool(toggleAssigneeTool, common.InstrumentedToolHandlerWithOperation("fizzy_toggle_assignee", instrumentation.OperationToggle, sc,
		common.AccountHandler(sc, toggleAssignee(sc))))

	deleteCardTool := mcp.NewTool("fizzy_delete_card",
		mcp.WithDescription("Permanently delete a card. Prefer closing cards; deletion cannot be undone."),
		common.AccountParam(),
		common.CardNumberParam(true),
	)
	s.AddTool(deleteCardTool, common.InstrumentedToolHandlerWithOperation("fizzy_delete_card", instrumentation.OperationDelete, sc,
		common.AccountHandler(sc, deleteCard(sc))))

	bulkCloseTool := mcp.NewTool("fizzy_bulk_close",
		mcp.WithDescription(`Close many cards at once.

Select cards either by card_numbers or by filters (board_id, column_id, tag, older_than_days), not both. Filters combine with AND and only match open cards.
Nothing is closed unless confirm is true. Use dry_run to list the cards that would be closed.`),
		common.AccountParam(),
		mcp.WithString("card_numbers",
			mcp.Description("Card number or array of card numbers"),
		),
		mcp.WithString("board_id",
			mcp.Description("Only cards on this board"),
		),
		mcp.WithString("column_id",
			mcp.Description("Only cards in this column"),
		),
		mcp.WithString("tag",
			mcp.Description("Only cards with this tag title"),
		),
		mcp.WithNumber("older_than_days",
			mcp.Description("Only cards with no activity for this many days"),
		),
		mcp.WithBoolean("confirm",
			mcp.Description("Must be true to close cards"),
		),
		mcp.WithBoolean("dry_run",
			mcp.Description("List the matching cards without closing them"),
		),
	)
	s.AddTool(bulkCloseTool, common.InstrumentedToolHandlerWithOperation("fizzy_bulk_close", instrumentation.OperationUpdate, sc,
		bulkCloseHandler(sc)))
}


func listCardsHandler(sc *server.ServerContext) common.ToolHandler {
	return common.AccountHandler(sc, listCards(sc), common.CursorCheck(sc))
}

func bulkCloseHandler(sc *server.ServerContext) common.ToolHandler {
	return common.AccountHandler(sc, bulkClose(sc), checkBulkClose)
}
