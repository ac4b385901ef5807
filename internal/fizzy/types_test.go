package fizzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCard_Status(t *testing.T) {
	assert.Equal(t, StatusOpen, (&Card{}).Status())
	assert.Equal(t, StatusClosed, (&Card{Closed: true}).Status())
	assert.Equal(t, StatusNotNow, (&Card{Postponed: true}).Status())
	assert.Equal(t, StatusClosed, (&Card{Closed: true, Postponed: true}).Status())
}

func TestCard_HasTag(t *testing.T) {
	card := &Card{Tags: []string{"#Bug", "design"}}

	assert.True(t, card.HasTag("bug"))
	assert.True(t, card.HasTag("#DESIGN"))
	assert.True(t, card.HasTag("  design "))
	assert.False(t, card.HasTag("ops"))
}

func TestCard_ColumnAndAssignees(t *testing.T) {
	card := &Card{}
	assert.Empty(t, card.ColumnID())

	card.Column = &Column{ID: "c1"}
	card.Assignees = []User{{ID: "u1"}}
	assert.Equal(t, "c1", card.ColumnID())
	assert.True(t, card.HasAssignee("u1"))
	assert.False(t, card.HasAssignee("u2"))
}

func TestIdentity_Slugs(t *testing.T) {
	id := &Identity{Accounts: []Account{{Slug: "/1"}, {Slug: "2"}}}
	assert.Equal(t, []string{"1", "2"}, id.Slugs())
	assert.Empty(t, (&Identity{}).Slugs())
}
