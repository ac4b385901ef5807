package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/teemow/fizzy-mcp/internal/fizzy"
	"github.com/teemow/fizzy-mcp/internal/pagination"
)

// fakeAPI records every call as a short string and fails the calls listed in
// failures.
type fakeAPI struct {
	cards    map[int]*fizzy.Card
	pages    [][]fizzy.Card
	tags     []fizzy.Tag
	failures map[string]error
	// payloads makes mutations answer with the card instead of no content.
	payloads bool

	calls   []string
	filters []fizzy.CardFilter
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{cards: map[int]*fizzy.Card{}, failures: map[string]error{}}
}

func (f *fakeAPI) call(name string) error {
	f.calls = append(f.calls, name)
	if err, ok := f.failures[name]; ok {
		return err
	}
	return nil
}

func (f *fakeAPI) failOn(name string) {
	f.failures[name] = errors.New("boom: " + name)
}

func (f *fakeAPI) payload(number int) *fizzy.Card {
	if !f.payloads {
		return nil
	}
	c := *f.cards[number]
	return &c
}

func (f *fakeAPI) GetCard(ctx context.Context, slug string, number int) (*fizzy.Card, error) {
	if err := f.call(fmt.Sprintf("get:%d", number)); err != nil {
		return nil, err
	}
	card, ok := f.cards[number]
	if !ok {
		return nil, &fizzy.Error{Kind: fizzy.KindNotFound, Status: 404, Resource: "card", ResourceID: fmt.Sprint(number)}
	}
	c := *card
	return &c, nil
}

func (f *fakeAPI) CreateCard(ctx context.Context, slug, boardID string, in fizzy.CardInput) (*fizzy.Card, error) {
	if err := f.call("create:" + boardID); err != nil {
		return nil, err
	}
	card := &fizzy.Card{ID: "new", Number: 100, Title: *in.Title, URL: "https://app.fizzy.do/1/cards/100"}
	f.cards[100] = card
	c := *card
	return &c, nil
}

func (f *fakeAPI) UpdateCard(ctx context.Context, slug string, number int, in fizzy.CardInput) (*fizzy.Card, error) {
	if err := f.call(fmt.Sprintf("update:%d", number)); err != nil {
		return nil, err
	}
	if in.Title != nil {
		f.cards[number].Title = *in.Title
	}
	return f.payload(number), nil
}

func (f *fakeAPI) CloseCard(ctx context.Context, slug string, number int) (*fizzy.Card, error) {
	return nil, f.call(fmt.Sprintf("close:%d", number))
}

func (f *fakeAPI) ReopenCard(ctx context.Context, slug string, number int) (*fizzy.Card, error) {
	return nil, f.call(fmt.Sprintf("reopen:%d", number))
}

func (f *fakeAPI) DeferCard(ctx context.Context, slug string, number int) (*fizzy.Card, error) {
	return nil, f.call(fmt.Sprintf("not_now:%d", number))
}

func (f *fakeAPI) TriageCard(ctx context.Context, slug string, number int, columnID string) (*fizzy.Card, error) {
	return nil, f.call(fmt.Sprintf("triage:%d:%s", number, columnID))
}

func (f *fakeAPI) UntriageCard(ctx context.Context, slug string, number int) (*fizzy.Card, error) {
	return nil, f.call(fmt.Sprintf("untriage:%d", number))
}

func (f *fakeAPI) ToggleTag(ctx context.Context, slug string, number int, title string) error {
	return f.call(fmt.Sprintf("toggle_tag:%d:%s", number, title))
}

func (f *fakeAPI) ToggleAssignee(ctx context.Context, slug string, number int, userID string) error {
	return f.call(fmt.Sprintf("toggle_assignee:%d:%s", number, userID))
}

func (f *fakeAPI) CreateStep(ctx context.Context, slug string, number int, content string) (*fizzy.Step, error) {
	if err := f.call(fmt.Sprintf("step:%d:%s", number, content)); err != nil {
		return nil, err
	}
	return &fizzy.Step{ID: "s-" + content, Content: content}, nil
}

func (f *fakeAPI) ListCards(ctx context.Context, slug string, filter fizzy.CardFilter, cursor string) (*pagination.Page[fizzy.Card], error) {
	if err := f.call("list:" + cursor); err != nil {
		return nil, err
	}
	f.filters = append(f.filters, filter)

	index := 0
	if cursor != "" {
		_, _ = fmt.Sscanf(cursor, "page-%d", &index)
	}
	if index >= len(f.pages) {
		page := pagination.NewPage[fizzy.Card](nil, "", cursor == "", pagination.Natural)
		return &page, nil
	}

	page := pagination.NewPage(f.pages[index], "", cursor == "", pagination.Natural)
	if index+1 < len(f.pages) {
		page.Pagination.HasMore = true
		page.Pagination.NextCursor = fmt.Sprintf("page-%d", index+1)
	}
	return &page, nil
}

func (f *fakeAPI) FindTag(ctx context.Context, slug, title string) (*fizzy.Tag, error) {
	if err := f.call("find_tag:" + title); err != nil {
		return nil, err
	}
	for _, t := range f.tags {
		if strings.EqualFold(t.Title, fizzy.NormalizeTag(title)) {
			tag := t
			return &tag, nil
		}
	}
	return nil, &fizzy.Error{Kind: fizzy.KindNotFound, Resource: "tag", ResourceID: title}
}
