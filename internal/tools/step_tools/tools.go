package step_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/fizzy-mcp/internal/fizzy"
	"github.com/teemow/fizzy-mcp/internal/instrumentation"
	"github.com/teemow/fizzy-mcp/internal/server"
	"github.com/teemow/fizzy-mcp/internal/tools/common"
)

// RegisterStepTools registers the step tools with the MCP server.
func RegisterStepTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listStepsTool := mcp.NewTool("fizzy_list_steps",
		mcp.WithDescription("List the checklist steps of a card"),
		common.AccountParam(),
		common.CardNumberParam(true),
	)
	s.AddTool(listStepsTool, common.InstrumentedToolHandlerWithOperation("fizzy_list_steps", instrumentation.OperationList, sc,
		common.AccountHandler(sc, listSteps(sc))))

	if sc.ReadOnly() {
		return nil
	}

	createStepTool := mcp.NewTool("fizzy_create_step",
		mcp.WithDescription("Append a checklist step to a card"),
		common.AccountParam(),
		common.CardNumberParam(true),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Step text"),
		),
	)
	s.AddTool(createStepTool, common.InstrumentedToolHandlerWithOperation("fizzy_create_step", instrumentation.OperationCreate, sc,
		common.AccountHandler(sc, createStep(sc))))

	updateStepTool := mcp.NewTool("fizzy_update_step",
		mcp.WithDescription("Change the text of a step or mark it (in)complete"),
		common.AccountParam(),
		common.CardNumberParam(true),
		mcp.WithString("step_id",
			mcp.Required(),
			mcp.Description("Step ID (see fizzy_list_steps)"),
		),
		mcp.WithString("content",
			mcp.Description("New step text"),
		),
		mcp.WithBoolean("completed",
			mcp.Description("Whether the step is done"),
		),
	)
	s.AddTool(updateStepTool, common.InstrumentedToolHandlerWithOperation("fizzy_update_step", instrumentation.OperationUpdate, sc,
		common.AccountHandler(sc, updateStep(sc))))

	deleteStepTool := mcp.NewTool("fizzy_delete_step",
		mcp.WithDescription("Remove a step from a card"),
		common.AccountParam(),
		common.CardNumberParam(true),
		mcp.WithString("step_id",
			mcp.Required(),
			mcp.Description("Step ID (see fizzy_list_steps)"),
		),
	)
	s.AddTool(deleteStepTool, common.InstrumentedToolHandlerWithOperation("fizzy_delete_step", instrumentation.OperationDelete, sc,
		common.AccountHandler(sc, deleteStep(sc))))

	return nil
}

func listSteps(sc *server.ServerContext) common.AccountFunc {
	return func(ctx context.Context, slug string, args map[string]interface{}) (any, error) {
		number, err := common.RequiredNumber(args, "card_number")
		if err != nil {
			return nil, err
		}
		return sc.Client().ListSteps(ctx, slug, number)
	}
}

func createStep(sc *server.ServerContext) common.AccountFunc {
	return func(ctx context.Context, slug string, args map[string]interface{}) (any, error) {
		number, err := common.RequiredNumber(args, "card_number")
		if err != nil {
			return nil, err
		}
		content, err := common.RequiredString(args, "content")
		if err != nil {
			return nil, err
		}
		step, err := sc.Client().CreateStep(ctx, slug, number, content)
		if err != nil {
			return nil, err
		}
		if step == nil {
			return map[string]any{"success": true, "content": content}, nil
		}
		return step, nil
	}
}

func updateStep(sc *server.ServerContext) common.AccountFunc {
	return func(ctx context.Context, slug string, args map[string]interface{}) (any, error) {
		number, err := common.RequiredNumber(args, "card_number")
		if err != nil {
			return nil, err
		}
		stepID, err := common.RequiredString(args, "step_id")
		if err != nil {
			return nil, err
		}

		var in fizzy.StepInput
		if content := common.StringArg(args, "content"); content != "" {
			in.Content = &content
		}
		if common.HasArg(args, "completed") {
			completed := common.BoolArg(args, "completed")
			in.Completed = &completed
		}
		if in.Content == nil && in.Completed == nil {
			return nil, fizzy.NewValidationError("content", "pass content or completed")
		}

		step, err := sc.Client().UpdateStep(ctx, slug, number, stepID, in)
		if err != nil {
			return nil, err
		}
		if step == nil {
			return map[string]any{"success": true, "step_id": stepID}, nil
		}
		return step, nil
	}
}

func deleteStep(sc *server.ServerContext) common.AccountFunc {
	return func(ctx context.Context, slug string, args map[string]interface{}) (any, error) {
		number, err := common.RequiredNumber(args, "card_number")
		if err != nil {
			return nil, err
		}
		stepID, err := common.RequiredString(args, "step_id")
		if err != nil {
			return nil, err
		}
		return nil, sc.Client().DeleteStep(ctx, slug, number, stepID)
	}
}
