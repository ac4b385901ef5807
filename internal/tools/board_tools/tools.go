package board_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/fizzy-mcp/internal/fizzy"
	"github.com/teemow/fizzy-mcp/internal/instrumentation"
	"github.com/teemow/fizzy-mcp/internal/server"
	"github.com/teemow/fizzy-mcp/internal/tools/common"
)

// RegisterBoardTools registers the read-only account structure tools.
func RegisterBoardTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listBoardsTool := mcp.NewTool("fizzy_list_boards",
		mcp.WithDescription("List the boards of the account"),
		common.AccountParam(),
		common.CursorParam(),
	)
	s.AddTool(listBoardsTool, common.InstrumentedToolHandlerWithOperation("fizzy_list_boards", instrumentation.OperationList, sc,
		listBoardsHandler(sc)))

	getBoardTool := mcp.NewTool("fizzy_get_board",
		mcp.WithDescription("Get a board by ID"),
		common.AccountParam(),
		mcp.WithString("board_id",
			mcp.Required(),
			mcp.Description("The board ID"),
		),
	)
	s.AddTool(getBoardTool, common.InstrumentedToolHandlerWithOperation("fizzy_get_board", instrumentation.OperationGet, sc,
		common.AccountHandler(sc, getBoard(sc))))

	listColumnsTool := mcp.NewTool("fizzy_list_columns",
		mcp.WithDescription("List the columns of a board. Column IDs are the targets of card moves."),
		common.AccountParam(),
		mcp.WithString("board_id",
			mcp.Required(),
			mcp.Description("The board ID"),
		),
		common.CursorParam(),
	)
	s.AddTool(listColumnsTool, common.InstrumentedToolHandlerWithOperation("fizzy_list_columns", instrumentation.OperationList, sc,
		listColumnsHandler(sc)))

	listTagsTool := mcp.NewTool("fizzy_list_tags",
		mcp.WithDescription("List the tags of the account"),
		common.AccountParam(),
		common.CursorParam(),
	)
	s.AddTool(listTagsTool, common.InstrumentedToolHandlerWithOperation("fizzy_list_tags", instrumentation.OperationList, sc,
		listTagsHandler(sc)))

	listUsersTool := mcp.NewTool("fizzy_list_users",
		mcp.WithDescription("List the users of the account. User IDs are used for assignments."),
		common.AccountParam(),
		common.CursorParam(),
	)
	s.AddTool(listUsersTool, common.InstrumentedToolHandlerWithOperation("fizzy_list_users", instrumentation.OperationList, sc,
		listUsersHandler(sc)))

	return nil
}

func listBoards(sc *server.ServerContext) common.AccountFunc {
	return func(ctx context.Context, slug string, args map[string]interface{}) (any, error) {
		return sc.Client().ListBoards(ctx, slug, common.StringArg(args, "cursor"))
	}
}

func getBoard(sc *server.ServerContext) common.AccountFunc {
	return func(ctx context.Context, slug string, args map[string]interface{}) (any, error) {
		boardID, err := common.RequiredString(args, "board_id")
		if err != nil {
			return nil, err
		}
		return sc.Client().GetBoard(ctx, slug, boardID)
	}
}

func listColumns(sc *server.ServerContext) common.AccountFunc {
	return func(ctx context.Context, slug string, args map[string]interface{}) (any, error) {
		cursor := common.StringArg(args, "cursor")
		boardID := common.StringArg(args, "board_id")
		if boardID == "" && cursor == "" {
			return nil, fizzy.NewValidationError("board_id", "is required")
		}
		return sc.Client().ListColumns(ctx, slug, boardID, cursor)
	}
}

func listTags(sc *server.ServerContext) common.AccountFunc {
	return func(ctx context.Context, slug string, args map[string]interface{}) (any, error) {
		return sc.Client().ListTags(ctx, slug, common.StringArg(args, "cursor"))
	}
}

func listUsers(sc *server.ServerContext) common.AccountFunc {
	return func(ctx context.Context, slug string, args map[string]interface{}) (any, error) {
		return sc.Client().ListUsers(ctx, slug, common.StringArg(args, "cursor"))
	}
}


func listBoardsHandler(sc *server.ServerContext) common.ToolHandler {
	return common.AccountHandler(sc, listBoards(sc), common.CursorCheck(sc))
}

func listColumnsHandler(sc *server.ServerContext) common.ToolHandler {
	return common.AccountHandler(sc, listColumns(sc), common.CursorCheck(sc))
}

func listTagsHandler(sc *server.ServerContext) common.ToolHandler {
	return common.AccountHandler(sc, listTags(sc), common.CursorCheck(sc))
}

func listUsersHandler(sc *server.ServerContext) common.ToolHandler {
	return common.AccountHandler(sc, listUsers(sc), common.CursorCheck(sc))
}
