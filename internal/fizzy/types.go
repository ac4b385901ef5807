package fizzy

import (
	"strings"
	"time"
)

// Card statuses as reported to callers.
const (
	StatusOpen   = "open"
	StatusClosed = "closed"
	StatusNotNow = "not_now"
)

// Identity is the authenticated user's view of the accounts it can reach.
type Identity struct {
	Accounts []Account `json:"accounts"`
}

// Slugs returns the slugs of every account, without leading "/".
func (i *Identity) Slugs() []string {
	slugs := make([]string, 0, len(i.Accounts))
	for _, a := range i.Accounts {
		slugs = append(slugs, a.CleanSlug())
	}
	return slugs
}

// Account is one account the user belongs to.
type Account struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
	User User   `json:"user"`
}

// CleanSlug returns the slug without its leading "/".
func (a Account) CleanSlug() string {
	return strings.TrimPrefix(a.Slug, "/")
}

// User is a person within an account.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role,omitempty"`
	Email     string    `json:"email_address,omitempty"`
	Active    bool      `json:"active,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// Board is a container of cards.
type Board struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	AllAccess bool      `json:"all_access"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
	Creator   *User     `json:"creator,omitempty"`
}

// Column is a workflow location on a board.
type Column struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Tag is an account-wide label.
type Tag struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Step is a checklist item on a card.
type Step struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	Completed bool   `json:"completed"`
}

// Comment is a message on a card.
type Comment struct {
	ID        string      `json:"id"`
	Body      CommentBody `json:"body"`
	Creator   *User       `json:"creator,omitempty"`
	CreatedAt time.Time   `json:"created_at,omitzero"`
	UpdatedAt time.Time   `json:"updated_at,omitzero"`
	URL       string      `json:"url,omitempty"`
}

// CommentBody carries both renditions of a comment.
type CommentBody struct {
	PlainText string `json:"plain_text"`
	HTML      string `json:"html"`
}

// Card is a work item.
type Card struct {
	ID           string    `json:"id"`
	Number       int       `json:"number"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Tags         []string  `json:"tags"`
	Closed       bool      `json:"closed"`
	Postponed    bool      `json:"postponed"`
	Golden       bool      `json:"golden,omitempty"`
	URL          string    `json:"url,omitempty"`
	Board        *Board    `json:"board,omitempty"`
	Column       *Column   `json:"column,omitempty"`
	Creator      *User     `json:"creator,omitempty"`
	Assignees    []User    `json:"assignees,omitempty"`
	Steps        []Step    `json:"steps,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitzero"`
	LastActiveAt time.Time `json:"last_active_at,omitzero"`
}

// Status reports the lifecycle state of the card.
func (c *Card) Status() string {
	switch {
	case c.Closed:
		return StatusClosed
	case c.Postponed:
		return StatusNotNow
	default:
		return StatusOpen
	}
}

// ColumnID returns the ID of the card's column, or "" when untriaged.
func (c *Card) ColumnID() string {
	if c.Column == nil {
		return ""
	}
	return c.Column.ID
}

// HasTag reports whether the card carries a tag title, ignoring case and a
// leading "#".
func (c *Card) HasTag(title string) bool {
	want := NormalizeTag(title)
	for _, t := range c.Tags {
		if strings.EqualFold(NormalizeTag(t), want) {
			return true
		}
	}
	return false
}

// HasAssignee reports whether the user is assigned to the card.
func (c *Card) HasAssignee(userID string) bool {
	for _, u := range c.Assignees {
		if u.ID == userID {
			return true
		}
	}
	return false
}

// NormalizeTag trims whitespace and a leading "#" from a tag title.
func NormalizeTag(title string) string {
	return strings.TrimPrefix(strings.TrimSpace(title), "#")
}

// CardInput carries the editable fields of a card. Nil fields are left
// untouched on update.
type CardInput struct {
	Title       *string
	Description *string
}

// CardFilter narrows a card listing. Every field is optional.
type CardFilter struct {
	BoardIDs    []string
	ColumnIDs   []string
	TagIDs      []string
	AssigneeIDs []string
	Terms       []string
	// IndexedBy selects a server-side view: "all" (open cards), "closed",
	// "not_now", "stalled", "golden".
	IndexedBy string
}
