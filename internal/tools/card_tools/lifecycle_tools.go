package card_tools

import (
	"context"
	"errors"

	"github.com/teemow/fizzy-mcp/internal/fizzy"
	"github.com/teemow/fizzy-mcp/internal/orchestrator"
	"github.com/teemow/fizzy-mcp/internal/server"
	"github.com/teemow/fizzy-mcp/internal/tools/batch"
	"github.com/teemow/fizzy-mcp/internal/tools/common"
)

func task(sc *server.ServerContext) common.AccountFunc {
	return func(ctx context.Context, slug string, args map[string]interface{}) (any, error) {
		params, err := taskParams(args)
		if err != nil {
			return nil, err
		}
		return sc.Orchestrator().Task(ctx, slug, params)
	}
}

func taskParams(args map[string]interface{}) (orchestrator.TaskParams, error) {
	var p orchestrator.TaskParams
	var err error

	if p.Number, err = common.OptionalNumber(args, "card_number"); err != nil {
		return p, err
	}
	p.BoardID = common.StringArg(args, "board_id")
	p.Title = common.OptionalString(args, "title")
	p.Description = common.OptionalString(args, "description")
	p.Status = common.StringArg(args, "status")
	p.ColumnID = common.StringArg(args, "column_id")

	lists := []struct {
		name string
		dst  *[]string
	}{
		{"steps", &p.Steps},
		{"add_tags", &p.AddTags},
		{"remove_tags", &p.RemoveTags},
		{"add_assignees", &p.AddAssignees},
		{"remove_assignees", &p.RemoveAssignees},
	}
	for _, l := range lists {
		if *l.dst, err = common.StringList(args, l.name); err != nil {
			return p, err
		}
	}

	alias, err := common.StringList(args, "tags")
	if err != nil {
		return p, err
	}
	p.AddTags = append(p.AddTags, alias...)
	return p, nil
}

// cardActionResult is the result of an action on a single card.
type cardActionResult struct {
	Success    bool        `json:"success"`
	Action     string      `json:"action"`
	CardNumber int         `json:"card_number"`
	Card       *fizzy.Card `json:"card,omitempty"`
}

func cardAction(sc *server.ServerContext) common.AccountFunc {
	return func(ctx context.Context, slug string, args map[string]interface{}) (any, error) {
		action, err := orchestrator.ParseAction(common.StringArg(args, "action"))
		if err != nil {
			return nil, err
		}
		columnID := common.StringArg(args, "column_id")
		if action == orchestrator.ActionTriage && columnID == "" {
			return nil, fizzy.NewValidationError("column_id", "is required to triage a card")
		}

		numbers, err := common.NumberList(args, "card_numbers")
		if err != nil {
			return nil, err
		}
		number, err := common.OptionalNumber(args, "card_number")
		if err != nil {
			return nil, err
		}

		switch {
		case number != 0 && len(numbers) > 0:
			return nil, fizzy.NewValidationError("card_number", "pass either card_number or card_numbers, not both")
		case number == 0 && len(numbers) == 0:
			return nil, fizzy.NewValidationError("card_number", "is required")
		case number != 0:
			card, err := sc.Orchestrator().Apply(ctx, slug, number, action, columnID)
			if err != nil {
				return nil, err
			}
			return cardActionResult{Success: true, Action: action.String(), CardNumber: number, Card: card}, nil
		}

		results := batch.ProcessBatch(numbers, func(n int) (any, error) {
			card, err := sc.Orchestrator().Apply(ctx, slug, n, action, columnID)
			if err != nil {
				return nil, errors.New(fizzy.Describe(err, slug))
			}
			if card == nil {
				return map[string]string{"action": action.String()}, nil
			}
			return card, nil
		})
		return batch.Summarize(results), nil
	}
}

// dryRunResult lists the cards a bulk close would act on.
type dryRunResult struct {
	DryRun bool `json:"dry_run"`
	*orchestrator.Preview
}

func bulkClose(sc *server.ServerContext) common.AccountFunc {
	return func(ctx context.Context, slug string, args map[string]interface{}) (any, error) {
		params, err := bulkCloseParams(args)
		if err != nil {
			return nil, err
		}

		if common.BoolArg(args, "dry_run") {
			preview, err := sc.Orchestrator().BulkCandidates(ctx, slug, params)
			if err != nil {
				return nil, err
			}
			return dryRunResult{DryRun: true, Preview: preview}, nil
		}
		return sc.Orchestrator().BulkClose(ctx, slug, params)
	}
}

// checkBulkClose validates the selection and confirmation before the
// account is resolved.
func checkBulkClose(args map[string]interface{}) error {
	params, err := bulkCloseParams(args)
	if err != nil {
		return err
	}
	return params.Validate(!common.BoolArg(args, "dry_run"))
}

func bulkCloseParams(args map[string]interface{}) (orchestrator.BulkCloseParams, error) {
	var p orchestrator.BulkCloseParams
	var err error

	if p.Numbers, err = common.NumberList(args, "card_numbers"); err != nil {
		return p, err
	}
	if p.OlderThanDays, err = common.NonNegativeNumber(args, "older_than_days"); err != nil {
		return p, err
	}
	p.BoardID = common.StringArg(args, "board_id")
	p.ColumnID = common.StringArg(args, "column_id")
	p.Tag = common.StringArg(args, "tag")
	p.Confirm = common.BoolArg(args, "confirm")
	return p, nil
}
