package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/fizzy-mcp/internal/fizzy"
)

func ptr(s string) *string { return &s }

func cardInColumn(number int, column string) *fizzy.Card {
	card := &fizzy.Card{ID: "card-id", Number: number, Title: "Fix login", Tags: []string{"bug"}}
	if column != "" {
		card.Column = &fizzy.Column{ID: column}
	}
	return card
}

func TestTask_MoveBetweenColumns(t *testing.T) {
	api := newFakeAPI()
	api.cards[7] = cardInColumn(7, "A")
	o := New(api)

	res, err := o.Task(context.Background(), "1", TaskParams{Number: 7, ColumnID: "B"})
	require.NoError(t, err)

	assert.Equal(t, []string{"get:7", "untriage:7", "triage:7:B"}, api.calls)
	assert.Equal(t, "B", res.Operations[OpMovedTo])
	assert.Empty(t, res.Failures)
}

func TestTask_MoveToSameColumnIsNoop(t *testing.T) {
	api := newFakeAPI()
	api.cards[7] = cardInColumn(7, "A")
	o := New(api)

	res, err := o.Task(context.Background(), "1", TaskParams{Number: 7, ColumnID: "A"})
	require.NoError(t, err)

	assert.Equal(t, []string{"get:7"}, api.calls)
	assert.NotContains(t, res.Operations, OpMovedTo)
}

func TestTask_MoveWithoutCurrentColumnTriagesDirectly(t *testing.T) {
	api := newFakeAPI()
	api.cards[7] = cardInColumn(7, "")
	o := New(api)

	res, err := o.Task(context.Background(), "1", TaskParams{Number: 7, ColumnID: "B"})
	require.NoError(t, err)

	assert.Equal(t, []string{"get:7", "triage:7:B"}, api.calls)
	assert.Equal(t, "B", res.Operations[OpMovedTo])
}

func TestTask_FailedUntriageSkipsTriage(t *testing.T) {
	api := newFakeAPI()
	api.cards[7] = cardInColumn(7, "A")
	api.failOn("untriage:7")
	o := New(api)

	res, err := o.Task(context.Background(), "1", TaskParams{Number: 7, ColumnID: "B"})
	require.NoError(t, err)

	assert.Equal(t, []string{"get:7", "untriage:7"}, api.calls)
	assert.NotContains(t, res.Operations, OpMovedTo)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "untriage:A", res.Failures[0].Operation)
	assert.Contains(t, res.Failures[0].Error, "boom")
}

func TestTask_FailedTriageRecordsOneFailure(t *testing.T) {
	api := newFakeAPI()
	api.cards[7] = cardInColumn(7, "")
	api.failOn("triage:7:B")
	o := New(api)

	res, err := o.Task(context.Background(), "1", TaskParams{Number: 7, ColumnID: "B"})
	require.NoError(t, err)

	require.Len(t, res.Failures, 1)
	assert.Equal(t, "triage:B", res.Failures[0].Operation)
	assert.NotContains(t, res.Operations, OpMovedTo)
}

func TestTask_ExistingTagIsNotToggled(t *testing.T) {
	api := newFakeAPI()
	api.cards[7] = cardInColumn(7, "")
	o := New(api)

	res, err := o.Task(context.Background(), "1", TaskParams{Number: 7, AddTags: []string{"#BUG", "urgent"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"get:7", "toggle_tag:7:urgent"}, api.calls)
	assert.Equal(t, []string{"urgent"}, res.Operations[OpTagsAdded])
}

func TestTask_RemoveMissingTagIsNotToggled(t *testing.T) {
	api := newFakeAPI()
	api.cards[7] = cardInColumn(7, "")
	o := New(api)

	res, err := o.Task(context.Background(), "1", TaskParams{Number: 7, RemoveTags: []string{"bug", "missing"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"get:7", "toggle_tag:7:bug"}, api.calls)
	assert.Equal(t, []string{"bug"}, res.Operations[OpTagsRemoved])
}

func TestTask_TagFailuresDoNotAbort(t *testing.T) {
	api := newFakeAPI()
	api.cards[7] = cardInColumn(7, "A")
	api.failOn("toggle_tag:7:one")
	o := New(api)

	res, err := o.Task(context.Background(), "1", TaskParams{
		Number:   7,
		AddTags:  []string{"one", "two"},
		ColumnID: "B",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"get:7", "toggle_tag:7:one", "toggle_tag:7:two", "untriage:7", "triage:7:B"}, api.calls)
	assert.Equal(t, []string{"two"}, res.Operations[OpTagsAdded])
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "tag_add:one", res.Failures[0].Operation)
}

func TestTask_StatusTransitions(t *testing.T) {
	tests := []struct {
		name       string
		card       fizzy.Card
		target     string
		wantCalls  []string
		wantStatus string
		wantOp     bool
	}{
		{
			name:       "close open card",
			card:       fizzy.Card{Number: 7},
			target:     fizzy.StatusClosed,
			wantCalls:  []string{"get:7", "close:7"},
			wantStatus: fizzy.StatusClosed,
			wantOp:     true,
		},
		{
			name:       "reopen closed card",
			card:       fizzy.Card{Number: 7, Closed: true},
			target:     fizzy.StatusOpen,
			wantCalls:  []string{"get:7", "reopen:7"},
			wantStatus: fizzy.StatusOpen,
			wantOp:     true,
		},
		{
			name:       "defer open card",
			card:       fizzy.Card{Number: 7},
			target:     fizzy.StatusNotNow,
			wantCalls:  []string{"get:7", "not_now:7"},
			wantStatus: fizzy.StatusNotNow,
			wantOp:     true,
		},
		{
			name:       "same status is skipped",
			card:       fizzy.Card{Number: 7, Closed: true},
			target:     fizzy.StatusClosed,
			wantCalls:  []string{"get:7"},
			wantStatus: fizzy.StatusClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI()
			card := tt.card
			api.cards[7] = &card
			o := New(api)

			res, err := o.Task(context.Background(), "1", TaskParams{Number: 7, Status: tt.target})
			require.NoError(t, err)

			assert.Equal(t, tt.wantCalls, api.calls)
			assert.Equal(t, tt.wantStatus, res.Entity.Status)
			_, hasOp := res.Operations[OpStatus]
			assert.Equal(t, tt.wantOp, hasOp)
			assert.Empty(t, res.Failures)
		})
	}
}

func TestTask_UpdateOrderAndSnapshot(t *testing.T) {
	api := newFakeAPI()
	api.cards[7] = &fizzy.Card{ID: "c7", Number: 7, Title: "Old", Column: &fizzy.Column{ID: "A"}, Assignees: []fizzy.User{{ID: "u1"}}}
	o := New(api)

	res, err := o.Task(context.Background(), "1", TaskParams{
		Number:          7,
		Title:           ptr("New"),
		Status:          fizzy.StatusClosed,
		AddTags:         []string{"x"},
		RemoveTags:      []string{"y"},
		AddAssignees:    []string{"u2"},
		RemoveAssignees: []string{"u1"},
		ColumnID:        "B",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"get:7",
		"update:7",
		"close:7",
		"toggle_tag:7:x",
		"toggle_assignee:7:u2",
		"toggle_assignee:7:u1",
		"untriage:7",
		"triage:7:B",
	}, api.calls)

	assert.Equal(t, ModeUpdate, res.Mode)
	assert.Equal(t, Entity{ID: "c7", Number: 7, Title: "New", Status: fizzy.StatusClosed}, res.Entity)
	assert.Equal(t, []string{"title"}, res.Operations[OpUpdated])
	assert.Equal(t, []string{"u2"}, res.Operations[OpAssigneesAdded])
	assert.Equal(t, []string{"u1"}, res.Operations[OpAssigneesRemoved])
	assert.Empty(t, res.Failures)
}

func TestTask_UpdateUsesResponsePayload(t *testing.T) {
	api := newFakeAPI()
	api.payloads = true
	api.cards[7] = &fizzy.Card{ID: "c7", Number: 7, Title: "Old", URL: "https://app.fizzy.do/1/cards/7"}
	o := New(api)

	res, err := o.Task(context.Background(), "1", TaskParams{Number: 7, Title: ptr("Server title")})
	require.NoError(t, err)

	assert.Equal(t, "Server title", res.Entity.Title)
	assert.Equal(t, "https://app.fizzy.do/1/cards/7", res.Entity.URL)
}

func TestTask_UpdateFailureIsNotFatal(t *testing.T) {
	api := newFakeAPI()
	api.cards[7] = &fizzy.Card{ID: "c7", Number: 7, Title: "Old"}
	api.failOn("update:7")
	o := New(api)

	res, err := o.Task(context.Background(), "1", TaskParams{Number: 7, Title: ptr("New"), AddTags: []string{"x"}})
	require.NoError(t, err)

	assert.Equal(t, "Old", res.Entity.Title)
	assert.NotContains(t, res.Operations, OpUpdated)
	assert.Equal(t, []string{"x"}, res.Operations[OpTagsAdded])
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "update", res.Failures[0].Operation)
}

func TestTask_FetchFailureIsFatal(t *testing.T) {
	api := newFakeAPI()
	o := New(api)

	res, err := o.Task(context.Background(), "1", TaskParams{Number: 404, AddTags: []string{"x"}})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, fizzy.IsNotFound(err))
	assert.Equal(t, []string{"get:404"}, api.calls)
}

func TestTask_Create(t *testing.T) {
	api := newFakeAPI()
	api.failOn("step:100:two")
	o := New(api)

	res, err := o.Task(context.Background(), "1", TaskParams{
		BoardID:  "b1",
		Title:    ptr("Ship it"),
		Steps:    []string{"one", "two", "three"},
		AddTags:  []string{"release"},
		ColumnID: "doing",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"create:b1",
		"step:100:one",
		"step:100:two",
		"step:100:three",
		"toggle_tag:100:release",
		"triage:100:doing",
	}, api.calls)

	assert.Equal(t, ModeCreate, res.Mode)
	assert.Equal(t, 100, res.Entity.Number)
	assert.Equal(t, "Ship it", res.Entity.Title)
	assert.Equal(t, fizzy.StatusOpen, res.Entity.Status)
	assert.Equal(t, []string{"one", "three"}, res.Operations[OpStepsAdded])
	assert.Equal(t, []string{"release"}, res.Operations[OpTagsAdded])
	assert.Equal(t, "doing", res.Operations[OpMovedTo])
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "step:two", res.Failures[0].Operation)
}

func TestTask_CreateFailureIsFatal(t *testing.T) {
	api := newFakeAPI()
	api.failOn("create:b1")
	o := New(api)

	res, err := o.Task(context.Background(), "1", TaskParams{BoardID: "b1", Title: ptr("x"), AddTags: []string{"a"}})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Equal(t, []string{"create:b1"}, api.calls)
}

func TestTask_Validation(t *testing.T) {
	tests := []struct {
		name  string
		p     TaskParams
		field string
	}{
		{"create without board", TaskParams{Title: ptr("x")}, "board_id"},
		{"create without title", TaskParams{BoardID: "b1"}, "title"},
		{"create with blank title", TaskParams{BoardID: "b1", Title: ptr("  ")}, "title"},
		{"create closed", TaskParams{BoardID: "b1", Title: ptr("x"), Status: fizzy.StatusClosed}, "status"},
		{"unknown status", TaskParams{Number: 7, Status: "done"}, "status"},
		{"negative number", TaskParams{Number: -1}, "card_number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI()
			o := New(api)

			_, err := o.Task(context.Background(), "1", tt.p)
			require.Error(t, err)

			var apiErr *fizzy.Error
			require.ErrorAs(t, err, &apiErr)
			assert.True(t, apiErr.Local)
			assert.Contains(t, apiErr.Fields, tt.field)
			assert.Empty(t, api.calls)
		})
	}
}

type recordingMetrics struct {
	failures []string
	closed   int
	failed   int
}

func (m *recordingMetrics) RecordStepFailure(ctx context.Context, mode, kind string) {
	m.failures = append(m.failures, mode+"/"+kind)
}

func (m *recordingMetrics) RecordBulkClose(ctx context.Context, closed, failed int) {
	m.closed += closed
	m.failed += failed
}

func TestTask_RecordsBoundedFailureKinds(t *testing.T) {
	api := newFakeAPI()
	api.cards[7] = cardInColumn(7, "")
	api.failOn("toggle_tag:7:secret-project")
	metrics := &recordingMetrics{}
	o := New(api, WithMetrics(metrics))

	_, err := o.Task(context.Background(), "1", TaskParams{Number: 7, AddTags: []string{"secret-project"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"update/tag_add"}, metrics.failures)
}
