package orchestrator

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/teemow/fizzy-mcp/internal/fizzy"
	"github.com/teemow/fizzy-mcp/internal/instrumentation"
	"github.com/teemow/fizzy-mcp/internal/logging"
	"github.com/teemow/fizzy-mcp/internal/result"
)

// Task modes.
const (
	ModeCreate = "create"
	ModeUpdate = "update"
)

// Operation keys of a TaskResult.
const (
	OpStepsAdded       = "steps_added"
	OpTagsAdded        = "tags_added"
	OpTagsRemoved      = "tags_removed"
	OpAssigneesAdded   = "assignees_added"
	OpAssigneesRemoved = "assignees_removed"
	OpUpdated          = "updated"
	OpStatus           = "status"
	OpMovedTo          = "moved_to"
)

// TaskParams describes a create-or-update run. A zero Number creates a card
// on BoardID; otherwise the card with that number is updated.
type TaskParams struct {
	Number          int
	BoardID         string
	Title           *string
	Description     *string
	Status          string
	ColumnID        string
	Steps           []string
	AddTags         []string
	RemoveTags      []string
	AddAssignees    []string
	RemoveAssignees []string
}

// Entity is the net state of the card after a task run.
type Entity struct {
	ID     string `json:"id"`
	Number int    `json:"number"`
	Title  string `json:"title"`
	URL    string `json:"url,omitempty"`
	Status string `json:"status"`
}

// Failure is a non-fatal step that did not succeed.
type Failure struct {
	Operation string `json:"operation"`
	Error     string `json:"error"`
}

// TaskResult reports what a task run did.
type TaskResult struct {
	Mode       string         `json:"mode"`
	Entity     Entity         `json:"entity"`
	Operations map[string]any `json:"operations"`
	Failures   []Failure      `json:"failures"`
}

// Task creates or updates a card and applies the requested side effects.
//
// The create call and the initial fetch of an updated card are fatal: their
// error is returned and no result is produced. Every other step is
// best-effort and lands in TaskResult.Failures when it fails.
func (o *Orchestrator) Task(ctx context.Context, slug string, p TaskParams) (*TaskResult, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if p.Number == 0 {
		return o.create(ctx, slug, p)
	}
	return o.update(ctx, slug, p)
}

func (p TaskParams) validate() error {
	if p.Number < 0 {
		return fizzy.NewValidationError("card_number", "must be a positive number")
	}
	if p.Status != "" {
		if _, err := actionForStatus(p.Status); err != nil {
			return err
		}
	}
	if p.Number != 0 {
		return nil
	}

	if strings.TrimSpace(p.BoardID) == "" {
		return fizzy.NewValidationError("board_id", "is required to create a card")
	}
	if p.Title == nil || strings.TrimSpace(*p.Title) == "" {
		return fizzy.NewValidationError("title", "is required to create a card")
	}
	if p.Status != "" && p.Status != fizzy.StatusOpen {
		return fizzy.NewValidationError("status", "can only be changed on existing cards")
	}
	return nil
}

// taskRun carries the card snapshot and the result through one task.
type taskRun struct {
	o      *Orchestrator
	slug   string
	card   *fizzy.Card
	result *TaskResult
}

func (o *Orchestrator) newRun(slug, mode string, card *fizzy.Card) *taskRun {
	return &taskRun{
		o:    o,
		slug: slug,
		card: card,
		result: &TaskResult{
			Mode:       mode,
			Operations: map[string]any{},
			Failures:   []Failure{},
		},
	}
}

func (o *Orchestrator) create(ctx context.Context, slug string, p TaskParams) (*TaskResult, error) {
	card, err := o.api.CreateCard(ctx, slug, p.BoardID, fizzy.CardInput{Title: p.Title, Description: p.Description})
	if err != nil {
		return nil, err
	}

	run := o.newRun(slug, ModeCreate, card)

	var added []string
	for _, content := range p.Steps {
		if strings.TrimSpace(content) == "" {
			continue
		}
		step, err := o.api.CreateStep(ctx, slug, card.Number, content)
		if err != nil {
			run.fail(ctx, "step:"+content, err)
			continue
		}
		if step == nil {
			step = &fizzy.Step{Content: content}
		}
		run.card.Steps = append(run.card.Steps, *step)
		added = append(added, content)
	}
	run.collect(OpStepsAdded, added)

	run.collect(OpTagsAdded, run.toggleTags(ctx, p.AddTags, true, "tag"))
	run.collect(OpAssigneesAdded, run.toggleAssignees(ctx, p.AddAssignees, true))
	run.move(ctx, p.ColumnID)

	return run.finish(), nil
}

func (o *Orchestrator) update(ctx context.Context, slug string, p TaskParams) (*TaskResult, error) {
	card, err := o.api.GetCard(ctx, slug, p.Number)
	if err != nil {
		return nil, err
	}

	run := o.newRun(slug, ModeUpdate, card)

	if p.Title != nil || p.Description != nil {
		in := fizzy.CardInput{Title: p.Title, Description: p.Description}
		ok := run.apply(ctx, "update", result.Of(o.api.UpdateCard(ctx, slug, card.Number, in)), func(c *fizzy.Card) {
			if in.Title != nil {
				c.Title = *in.Title
			}
			if in.Description != nil {
				c.Description = *in.Description
			}
		})
		if ok {
			run.result.Operations[OpUpdated] = updatedFields(in)
		}
	}

	if p.Status != "" && p.Status != run.card.Status() {
		action, _ := actionForStatus(p.Status)
		r := result.Of(o.Apply(ctx, slug, card.Number, action, ""))
		if run.apply(ctx, "status:"+p.Status, r, func(c *fizzy.Card) { project(c, action, "") }) {
			run.result.Operations[OpStatus] = p.Status
		}
	}

	run.collect(OpTagsAdded, run.toggleTags(ctx, p.AddTags, true, "tag_add"))
	run.collect(OpTagsRemoved, run.toggleTags(ctx, p.RemoveTags, false, "tag_remove"))
	run.collect(OpAssigneesAdded, run.toggleAssignees(ctx, p.AddAssignees, true))
	run.collect(OpAssigneesRemoved, run.toggleAssignees(ctx, p.RemoveAssignees, false))
	run.move(ctx, p.ColumnID)

	return run.finish(), nil
}

func updatedFields(in fizzy.CardInput) []string {
	var fields []string
	if in.Title != nil {
		fields = append(fields, "title")
	}
	if in.Description != nil {
		fields = append(fields, "description")
	}
	return fields
}

// apply folds the outcome of one step into the run. On success the snapshot
// becomes the returned card, or is updated by projectFn when the API sent no
// payload. On failure the step is recorded under op.
func (r *taskRun) apply(ctx context.Context, op string, res result.Result[*fizzy.Card], projectFn func(*fizzy.Card)) bool {
	return result.Match(res,
		func(card *fizzy.Card) bool {
			if card != nil && (card.ID != "" || card.Number != 0) {
				r.card = card
			} else {
				projectFn(r.card)
			}
			return true
		},
		func(err error) bool {
			r.fail(ctx, op, err)
			return false
		},
	)
}

// toggled lifts a toggle call into a Result carrying no card.
func toggled(err error) result.Result[*fizzy.Card] {
	return result.Of[*fizzy.Card](nil, err)
}

// toggleTags adds (add == true) or removes tags, skipping tags whose presence
// already matches. It returns the titles that were changed.
func (r *taskRun) toggleTags(ctx context.Context, titles []string, add bool, kind string) []string {
	var changed []string
	for _, raw := range titles {
		title := fizzy.NormalizeTag(raw)
		if title == "" || r.card.HasTag(title) == add {
			continue
		}
		res := toggled(r.o.api.ToggleTag(ctx, r.slug, r.card.Number, title))
		ok := r.apply(ctx, kind+":"+title, res, func(c *fizzy.Card) {
			if add {
				c.Tags = append(c.Tags, title)
				return
			}
			c.Tags = slices.DeleteFunc(c.Tags, func(t string) bool {
				return strings.EqualFold(fizzy.NormalizeTag(t), title)
			})
		})
		if ok {
			changed = append(changed, title)
		}
	}
	return changed
}

// toggleAssignees assigns (add == true) or unassigns users, skipping users
// whose assignment already matches.
func (r *taskRun) toggleAssignees(ctx context.Context, userIDs []string, add bool) []string {
	kind := "assignee_add"
	if !add {
		kind = "assignee_remove"
	}

	var changed []string
	for _, id := range userIDs {
		id = strings.TrimSpace(id)
		if id == "" || r.card.HasAssignee(id) == add {
			continue
		}
		res := toggled(r.o.api.ToggleAssignee(ctx, r.slug, r.card.Number, id))
		ok := r.apply(ctx, kind+":"+id, res, func(c *fizzy.Card) {
			if add {
				c.Assignees = append(c.Assignees, fizzy.User{ID: id})
				return
			}
			c.Assignees = slices.DeleteFunc(c.Assignees, func(u fizzy.User) bool { return u.ID == id })
		})
		if ok {
			changed = append(changed, id)
		}
	}
	return changed
}

// move places the card in columnID. A card already in another column is
// untriaged first; when that fails the triage call is never issued.
func (r *taskRun) move(ctx context.Context, columnID string) {
	current := r.card.ColumnID()
	if columnID == "" || columnID == current {
		return
	}

	if current != "" {
		res := result.Of(r.o.api.UntriageCard(ctx, r.slug, r.card.Number))
		if !r.apply(ctx, "untriage:"+current, res, func(c *fizzy.Card) { project(c, ActionUntriage, "") }) {
			return
		}
	}

	res := result.Of(r.o.api.TriageCard(ctx, r.slug, r.card.Number, columnID))
	if r.apply(ctx, "triage:"+columnID, res, func(c *fizzy.Card) { project(c, ActionTriage, columnID) }) {
		r.result.Operations[OpMovedTo] = columnID
	}
}

// collect stores a non-empty list under key.
func (r *taskRun) collect(key string, values []string) {
	if len(values) > 0 {
		r.result.Operations[key] = values
	}
}

func (r *taskRun) fail(ctx context.Context, op string, err error) {
	r.result.Failures = append(r.result.Failures, Failure{Operation: op, Error: err.Error()})

	r.o.recordStepFailure(ctx, r.result.Mode, instrumentation.BoundedOperation(op))
	r.o.logger.WarnContext(ctx, "task step failed",
		logging.Operation(op),
		logging.Account(r.slug),
		logging.Card(r.card.Number),
		logging.Err(err))
}

func (r *taskRun) finish() *TaskResult {
	r.result.Entity = Entity{
		ID:     r.card.ID,
		Number: r.card.Number,
		Title:  r.card.Title,
		URL:    r.card.URL,
		Status: r.card.Status(),
	}
	return r.result
}

// String renders a failure for logs and CLI output.
func (f Failure) String() string {
	return fmt.Sprintf("%s: %s", f.Operation, f.Error)
}
