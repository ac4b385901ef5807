package fizzy

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/teemow/fizzy-mcp/internal/pagination"
)

// ListCards returns one page of cards matching filter. With a cursor the
// filter is ignored: the cursor already encodes it.
func (c *Client) ListCards(ctx context.Context, slug string, filter CardFilter, cursor string) (*pagination.Page[Card], error) {
	return listPage[Card](ctx, c, "cards.list", "card", cursor, pagination.Natural, func() string {
		return c.endpoint(filter.query(), accountPath(slug), "cards")
	})
}

func (f CardFilter) query() url.Values {
	q := url.Values{}
	for _, id := range f.BoardIDs {
		q.Add("board_ids[]", id)
	}
	for _, id := range f.ColumnIDs {
		q.Add("column_ids[]", id)
	}
	for _, id := range f.TagIDs {
		q.Add("tag_ids[]", id)
	}
	for _, id := range f.AssigneeIDs {
		q.Add("assignee_ids[]", id)
	}
	for _, term := range f.Terms {
		q.Add("terms[]", term)
	}
	if f.IndexedBy != "" {
		q.Set("indexed_by", f.IndexedBy)
	}
	return q
}

// GetCard returns a card by its account-scoped number.
func (c *Client) GetCard(ctx context.Context, slug string, number int) (*Card, error) {
	return c.getCard(ctx, slug, strconv.Itoa(number))
}

// GetCardByID returns a card by its opaque ID. The cards endpoint accepts
// either identifier.
func (c *Client) GetCardByID(ctx context.Context, slug, id string) (*Card, error) {
	return c.getCard(ctx, slug, id)
}

func (c *Client) getCard(ctx context.Context, slug, ref string) (*Card, error) {
	resp, err := c.do(ctx, request{
		op:         "cards.get",
		method:     http.MethodGet,
		url:        c.endpoint(nil, accountPath(slug), "cards", ref),
		resource:   "card",
		resourceID: ref,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}

	var card Card
	if _, err := resp.decode(&card); err != nil {
		return nil, err
	}
	return &card, nil
}

type cardPayload struct {
	Card cardFields `json:"card"`
}

type cardFields struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (c *Client) cardPayload(in CardInput) (cardPayload, error) {
	description, err := c.render(in.Description)
	if err != nil {
		return cardPayload{}, err
	}
	return cardPayload{Card: cardFields{Title: in.Title, Description: description}}, nil
}

// CreateCard creates a card on a board. When the API answers with only a
// Location header, the returned card is built from the request and the number
// found in that header.
func (c *Client) CreateCard(ctx context.Context, slug, boardID string, in CardInput) (*Card, error) {
	payload, err := c.cardPayload(in)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, request{
		op:         "cards.create",
		method:     http.MethodPost,
		url:        c.endpoint(nil, accountPath(slug), "boards", boardID, "cards"),
		body:       payload,
		resource:   "board",
		resourceID: boardID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create card: %w", err)
	}

	var card Card
	ok, err := resp.decode(&card)
	if err != nil {
		return nil, err
	}
	if ok {
		return &card, nil
	}

	location := resp.header.Get("Location")
	number, err := numberFromLocation(location)
	if err != nil {
		return nil, fmt.Errorf("card created but response carried no card: %w", err)
	}

	card = Card{
		Number: number,
		URL:    strings.TrimSuffix(location, ".json"),
		Board:  &Board{ID: boardID},
		Tags:   []string{},
	}
	if in.Title != nil {
		card.Title = *in.Title
	}
	if in.Description != nil {
		card.Description = *in.Description
	}
	return &card, nil
}

// numberFromLocation extracts the card number from a Location such as
// "https://app.fizzy.do/123/cards/42.json".
func numberFromLocation(location string) (int, error) {
	if location == "" {
		return 0, fmt.Errorf("missing Location header")
	}
	u, err := url.Parse(location)
	if err != nil {
		return 0, fmt.Errorf("invalid Location header %q: %w", location, err)
	}
	last := strings.TrimSuffix(path.Base(u.Path), ".json")
	number, err := strconv.Atoi(last)
	if err != nil {
		return 0, fmt.Errorf("no card number in Location header %q", location)
	}
	return number, nil
}

// UpdateCard changes a card's title and/or description. The returned card is
// nil when the API answered without a payload.
func (c *Client) UpdateCard(ctx context.Context, slug string, number int, in CardInput) (*Card, error) {
	payload, err := c.cardPayload(in)
	if err != nil {
		return nil, err
	}
	return c.cardMutation(ctx, "cards.update", http.MethodPut, slug, number, payload)
}

// DeleteCard permanently deletes a card.
func (c *Client) DeleteCard(ctx context.Context, slug string, number int) error {
	_, err := c.cardMutation(ctx, "cards.delete", http.MethodDelete, slug, number, nil)
	return err
}

// CloseCard closes a card.
func (c *Client) CloseCard(ctx context.Context, slug string, number int) (*Card, error) {
	return c.cardMutation(ctx, "cards.close", http.MethodPost, slug, number, nil, "closure")
}

// ReopenCard reopens a closed card.
func (c *Client) ReopenCard(ctx context.Context, slug string, number int) (*Card, error) {
	return c.cardMutation(ctx, "cards.reopen", http.MethodDelete, slug, number, nil, "closure")
}

// DeferCard moves a card to "not now".
func (c *Client) DeferCard(ctx context.Context, slug string, number int) (*Card, error) {
	return c.cardMutation(ctx, "cards.not_now", http.MethodPost, slug, number, nil, "not_now")
}

// TriageCard moves a card into a column.
func (c *Client) TriageCard(ctx context.Context, slug string, number int, columnID string) (*Card, error) {
	body := map[string]string{"column_id": columnID}
	return c.cardMutation(ctx, "cards.triage", http.MethodPost, slug, number, body, "triage")
}

// UntriageCard removes a card from its column, sending it back to the stream.
func (c *Client) UntriageCard(ctx context.Context, slug string, number int) (*Card, error) {
	return c.cardMutation(ctx, "cards.untriage", http.MethodDelete, slug, number, nil, "triage")
}

// ToggleTag adds the tag to the card, or removes it when already present.
// Unknown titles create the tag.
func (c *Client) ToggleTag(ctx context.Context, slug string, number int, title string) error {
	body := map[string]string{"tag_title": NormalizeTag(title)}
	_, err := c.cardMutation(ctx, "cards.toggle_tag", http.MethodPost, slug, number, body, "taggings")
	if err == nil {
		c.tags.Remove(accountPath(slug))
	}
	return err
}

// ToggleAssignee assigns the user to the card, or unassigns when already
// assigned.
func (c *Client) ToggleAssignee(ctx context.Context, slug string, number int, userID string) error {
	body := map[string]string{"assignee_id": userID}
	_, err := c.cardMutation(ctx, "cards.toggle_assignee", http.MethodPost, slug, number, body, "assignments")
	return err
}

// cardMutation issues a request against a card or one of its sub-resources
// and returns the card payload when the API sent one.
func (c *Client) cardMutation(ctx context.Context, op, method, slug string, number int, body any, sub ...string) (*Card, error) {
	ref := strconv.Itoa(number)
	segments := append([]string{accountPath(slug), "cards", ref}, sub...)

	resp, err := c.do(ctx, request{
		op:         op,
		method:     method,
		url:        c.endpoint(nil, segments...),
		body:       body,
		resource:   "card",
		resourceID: ref,
	})
	if err != nil {
		return nil, err
	}

	var card Card
	ok, err := resp.decode(&card)
	if err != nil || !ok {
		return nil, err
	}
	// Some endpoints answer with a status object rather than the card.
	if card.ID == "" && card.Number == 0 {
		return nil, nil
	}
	return &card, nil
}
