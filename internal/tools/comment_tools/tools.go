package comment_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/fizzy-mcp/internal/instrumentation"
	"github.com/teemow/fizzy-mcp/internal/server"
	"github.com/teemow/fizzy-mcp/internal/tools/common"
)

// RegisterCommentTools registers the comment tools with the MCP server.
func RegisterCommentTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listCommentsTool := mcp.NewTool("fizzy_list_comments",
		mcp.WithDescription("List the comments of a card. The first page shows the newest comments first."),
		common.AccountParam(),
		common.CardNumberParam(false),
		common.CursorParam(),
	)
	s.AddTool(listCommentsTool, common.InstrumentedToolHandlerWithOperation("fizzy_list_comments", instrumentation.OperationList, sc,
		listCommentsHandler(sc)))

	if sc.ReadOnly() {
		return nil
	}

	addCommentTool := mcp.NewTool("fizzy_add_comment",
		mcp.WithDescription("Post a comment on a card. The body is Markdown."),
		common.AccountParam(),
		common.CardNumberParam(true),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Comment text in Markdown"),
		),
	)
	s.AddTool(addCommentTool, common.InstrumentedToolHandlerWithOperation("fizzy_add_comment", instrumentation.OperationCreate, sc,
		common.AccountHandler(sc, addComment(sc))))

	deleteCommentTool := mcp.NewTool("fizzy_delete_comment",
		mcp.WithDescription("Delete a comment from a card"),
		common.AccountParam(),
		common.CardNumberParam(true),
		mcp.WithString("comment_id",
			mcp.Required(),
			mcp.Description("Comment ID (see fizzy_list_comments)"),
		),
	)
	s.AddTool(deleteCommentTool, common.InstrumentedToolHandlerWithOperation("fizzy_delete_comment", instrumentation.OperationDelete, sc,
		common.AccountHandler(sc, deleteComment(sc))))

	return nil
}

func listComments(sc *server.ServerContext) common.AccountFunc {
	return func(ctx context.Context, slug string, args map[string]interface{}) (any, error) {
		cursor := common.StringArg(args, "cursor")
		// the cursor already addresses the card
		var number int
		var err error
		if cursor == "" {
			number, err = common.RequiredNumber(args, "card_number")
		} else {
			number, err = common.OptionalNumber(args, "card_number")
		}
		if err != nil {
			return nil, err
		}
		return sc.Client().ListComments(ctx, slug, number, cursor)
	}
}

func addComment(sc *server.ServerContext) common.AccountFunc {
	return func(ctx context.Context, slug string, args map[string]interface{}) (any, error) {
		number, err := common.RequiredNumber(args, "card_number")
		if err != nil {
			return nil, err
		}
		body, err := common.RequiredString(args, "body")
		if err != nil {
			return nil, err
		}
		return sc.Client().CreateComment(ctx, slug, number, body)
	}
}

func deleteComment(sc *server.ServerContext) common.AccountFunc {
	return func(ctx context.Context, slug string, args map[string]interface{}) (any, error) {
		number, err := common.RequiredNumber(args, "card_number")
		if err != nil {
			return nil, err
		}
		commentID, err := common.RequiredString(args, "comment_id")
		if err != nil {
			return nil, err
		}
		return nil, sc.Client().DeleteComment(ctx, slug, number, commentID)
	}
}


func listCommentsHandler(sc *server.ServerContext) common.ToolHandler {
	return common.AccountHandler(sc, listComments(sc), common.CursorCheck(sc))
}
