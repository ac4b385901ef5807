package fizzy

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// StepInput carries the editable fields of a step. Nil fields are left
// untouched.
type StepInput struct {
	Content   *string `json:"content,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// ListSteps returns the checklist of a card.
func (c *Client) ListSteps(ctx context.Context, slug string, number int) ([]Step, error) {
	card, err := c.GetCard(ctx, slug, number)
	if err != nil {
		return nil, err
	}
	if card.Steps == nil {
		return []Step{}, nil
	}
	return card.Steps, nil
}

// CreateStep appends a checklist item to a card.
func (c *Client) CreateStep(ctx context.Context, slug string, number int, content string) (*Step, error) {
	return c.stepRequest(ctx, "steps.create", http.MethodPost, slug, number, "", StepInput{Content: &content})
}

// UpdateStep edits a checklist item.
func (c *Client) UpdateStep(ctx context.Context, slug string, number int, stepID string, in StepInput) (*Step, error) {
	return c.stepRequest(ctx, "steps.update", http.MethodPut, slug, number, stepID, in)
}

// DeleteStep removes a checklist item.
func (c *Client) DeleteStep(ctx context.Context, slug string, number int, stepID string) error {
	_, err := c.stepRequest(ctx, "steps.delete", http.MethodDelete, slug, number, stepID, nil)
	return err
}

func (c *Client) stepRequest(ctx context.Context, op, method, slug string, number int, stepID string, in any) (*Step, error) {
	segments := []string{accountPath(slug), "cards", strconv.Itoa(number), "steps"}
	resourceID := strconv.Itoa(number)
	resource := "card"
	if stepID != "" {
		segments = append(segments, stepID)
		resource = "step"
		resourceID = stepID
	}

	var body any
	if in != nil {
		body = map[string]any{"step": in}
	}

	resp, err := c.do(ctx, request{
		op:         op,
		method:     method,
		url:        c.endpoint(nil, segments...),
		body:       body,
		resource:   resource,
		resourceID: resourceID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to %s step: %w", strings.TrimPrefix(op, "steps."), err)
	}

	var step Step
	ok, err := resp.decode(&step)
	if err != nil || !ok {
		return nil, err
	}
	return &step, nil
}
