package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/teemow/fizzy-mcp/internal/fizzy"
)

// Action is a lifecycle transition of a card.
type Action int

// Lifecycle actions. Apply handles every one of them; adding an action means
// adding a case there and to actionNames.
const (
	ActionClose Action = iota + 1
	ActionReopen
	ActionNotNow
	ActionTriage
	ActionUntriage
)

var actionNames = map[Action]string{
	ActionClose:    "close",
	ActionReopen:   "reopen",
	ActionNotNow:   "not_now",
	ActionTriage:   "triage",
	ActionUntriage: "untriage",
}

// Actions lists every lifecycle action in declaration order.
func Actions() []Action {
	return []Action{ActionClose, ActionReopen, ActionNotNow, ActionTriage, ActionUntriage}
}

// ActionNames lists the wire names of every action.
func ActionNames() []string {
	names := make([]string, 0, len(actionNames))
	for _, a := range Actions() {
		names = append(names, a.String())
	}
	return names
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// ParseAction maps a wire name to an Action.
func ParseAction(s string) (Action, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, a := range Actions() {
		if a.String() == name {
			return a, nil
		}
	}
	return 0, fizzy.NewValidationError("action",
		fmt.Sprintf("unknown action %q; expected one of %s", s, strings.Join(ActionNames(), ", ")))
}

// actionForStatus maps a target status to the action reaching it.
func actionForStatus(status string) (Action, error) {
	switch status {
	case fizzy.StatusClosed:
		return ActionClose, nil
	case fizzy.StatusOpen:
		return ActionReopen, nil
	case fizzy.StatusNotNow:
		return ActionNotNow, nil
	default:
		return 0, fizzy.NewValidationError("status",
			fmt.Sprintf("unknown status %q; expected open, closed or not_now", status))
	}
}

// Apply performs a lifecycle action on a card. columnID is required for
// ActionTriage and ignored otherwise. The returned card is nil when the API
// answered without a payload.
func (o *Orchestrator) Apply(ctx context.Context, slug string, number int, action Action, columnID string) (*fizzy.Card, error) {
	switch action {
	case ActionClose:
		return o.api.CloseCard(ctx, slug, number)
	case ActionReopen:
		return o.api.ReopenCard(ctx, slug, number)
	case ActionNotNow:
		return o.api.DeferCard(ctx, slug, number)
	case ActionTriage:
		if columnID == "" {
			return nil, fizzy.NewValidationError("column_id", "is required to triage a card")
		}
		return o.api.TriageCard(ctx, slug, number, columnID)
	case ActionUntriage:
		return o.api.UntriageCard(ctx, slug, number)
	default:
		return nil, fmt.Errorf("unhandled action %s", action)
	}
}

// project applies the local effect of a successful action to a card
// snapshot, for responses that carried no payload.
func project(card *fizzy.Card, action Action, columnID string) {
	switch action {
	case ActionClose:
		card.Closed = true
		card.Postponed = false
	case ActionReopen:
		card.Closed = false
		card.Postponed = false
	case ActionNotNow:
		card.Closed = false
		card.Postponed = true
	case ActionTriage:
		card.Column = &fizzy.Column{ID: columnID}
		card.Postponed = false
	case ActionUntriage:
		card.Column = nil
	}
}
