package orchestrator

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/teemow/fizzy-mcp/internal/fizzy"
	"github.com/teemow/fizzy-mcp/internal/logging"
	"github.com/teemow/fizzy-mcp/internal/pagination"
)

// BulkCloseParams selects the cards to close: either explicit Numbers, or
// filters combined with AND. Confirm must be true to close anything.
type BulkCloseParams struct {
	Numbers       []int
	BoardID       string
	ColumnID      string
	Tag           string
	OlderThanDays int
	Confirm       bool
}

func (p BulkCloseParams) hasFilter() bool {
	return p.BoardID != "" || p.ColumnID != "" || strings.TrimSpace(p.Tag) != "" || p.OlderThanDays > 0
}

// Validate checks the selection locally, before any API call. Confirm is
// only required when requireConfirm is set, as for an actual close.
func (p BulkCloseParams) Validate(requireConfirm bool) error {
	if requireConfirm && !p.Confirm {
		return fizzy.NewValidationError("confirm", "must be true to close cards")
	}
	if p.OlderThanDays < 0 {
		return fizzy.NewValidationError("older_than_days", "must not be negative")
	}
	if len(p.Numbers) == 0 && !p.hasFilter() {
		return fizzy.NewValidationError("card_numbers", "pass card numbers or at least one filter (board_id, column_id, tag, older_than_days)")
	}
	if len(p.Numbers) > 0 && p.hasFilter() {
		return fizzy.NewValidationError("card_numbers", "cannot be combined with filters")
	}
	for _, n := range p.Numbers {
		if n <= 0 {
			return fizzy.NewValidationError("card_numbers", "must all be positive numbers")
		}
	}
	return nil
}

// BulkFailure is a card that could not be closed.
type BulkFailure struct {
	Number int    `json:"id"`
	Error  string `json:"error"`
}

// BulkResult reports a bulk close. Every candidate appears in exactly one of
// Closed or Failed.
type BulkResult struct {
	Closed       []int         `json:"closed"`
	Failed       []BulkFailure `json:"failed"`
	Total        int           `json:"total"`
	SuccessCount int           `json:"success_count"`
	// Duplicates are explicit card numbers given more than once. Each card
	// is closed once and counted once in Total.
	Duplicates []int `json:"duplicates,omitempty"`
}

// Candidate is a card a bulk close would act on.
type Candidate struct {
	Number       int       `json:"number"`
	Title        string    `json:"title,omitempty"`
	LastActiveAt time.Time `json:"last_active_at,omitzero"`
}

// Preview lists the cards a bulk close would act on.
type Preview struct {
	Candidates []Candidate `json:"candidates"`
	Total      int         `json:"total"`
	Duplicates []int       `json:"duplicates,omitempty"`
}

// BulkClose closes the selected cards one at a time. Validation and tag
// resolution errors are fatal; per-card failures land in BulkResult.Failed.
func (o *Orchestrator) BulkClose(ctx context.Context, slug string, p BulkCloseParams) (*BulkResult, error) {
	if err := p.Validate(true); err != nil {
		return nil, err
	}

	candidates, duplicates, err := o.candidates(ctx, slug, p)
	if err != nil {
		return nil, err
	}

	res := &BulkResult{
		Closed:     []int{},
		Failed:     []BulkFailure{},
		Total:      len(candidates),
		Duplicates: duplicates,
	}
	for _, c := range candidates {
		if _, err := o.api.CloseCard(ctx, slug, c.Number); err != nil {
			res.Failed = append(res.Failed, BulkFailure{Number: c.Number, Error: err.Error()})
			o.logger.WarnContext(ctx, "bulk close failed for card",
				logging.Account(slug), logging.Card(c.Number), logging.Err(err))
			continue
		}
		res.Closed = append(res.Closed, c.Number)
	}
	res.SuccessCount = len(res.Closed)

	o.recordBulkClose(ctx, len(res.Closed), len(res.Failed))
	o.logger.InfoContext(ctx, "bulk close finished",
		logging.Account(slug),
		logging.Board(p.BoardID),
		logging.Column(p.ColumnID),
		slog.Int("total", res.Total),
		slog.Int("closed", len(res.Closed)),
		slog.Int("failed", len(res.Failed)))

	return res, nil
}

// BulkCandidates returns the cards BulkClose would act on without closing
// anything. Confirm is not required.
func (o *Orchestrator) BulkCandidates(ctx context.Context, slug string, p BulkCloseParams) (*Preview, error) {
	if err := p.Validate(false); err != nil {
		return nil, err
	}

	candidates, duplicates, err := o.candidates(ctx, slug, p)
	if err != nil {
		return nil, err
	}
	return &Preview{Candidates: candidates, Total: len(candidates), Duplicates: duplicates}, nil
}

// candidates returns the cards to act on and, for explicit numbers, the
// numbers that were repeated in the input.
func (o *Orchestrator) candidates(ctx context.Context, slug string, p BulkCloseParams) ([]Candidate, []int, error) {
	if len(p.Numbers) > 0 {
		out, duplicates := explicitCandidates(p.Numbers)
		return out, duplicates, nil
	}

	filter := fizzy.CardFilter{IndexedBy: "all"}
	if p.BoardID != "" {
		filter.BoardIDs = []string{p.BoardID}
	}
	if p.ColumnID != "" {
		filter.ColumnIDs = []string{p.ColumnID}
	}
	if strings.TrimSpace(p.Tag) != "" {
		tag, err := o.api.FindTag(ctx, slug, p.Tag)
		if err != nil {
			return nil, nil, err
		}
		filter.TagIDs = []string{tag.ID}
	}

	cards, err := fizzy.ListAll(ctx, func(ctx context.Context, cursor string) (*pagination.Page[fizzy.Card], error) {
		return o.api.ListCards(ctx, slug, filter, cursor)
	})
	if err != nil {
		return nil, nil, err
	}

	var cutoff time.Time
	if p.OlderThanDays > 0 {
		cutoff = o.now().AddDate(0, 0, -p.OlderThanDays)
	}

	out := make([]Candidate, 0, len(cards))
	for _, card := range cards {
		if card.Status() != fizzy.StatusOpen {
			continue
		}
		if !cutoff.IsZero() && (card.LastActiveAt.IsZero() || !card.LastActiveAt.Before(cutoff)) {
			continue
		}
		out = append(out, Candidate{Number: card.Number, Title: card.Title, LastActiveAt: card.LastActiveAt})
	}
	return out, nil, nil
}

// explicitCandidates keeps the first occurrence of every number and reports
// each repeated number once.
func explicitCandidates(numbers []int) ([]Candidate, []int) {
	seen := make(map[int]int, len(numbers))
	out := make([]Candidate, 0, len(numbers))
	var duplicates []int
	for _, n := range numbers {
		seen[n]++
		switch seen[n] {
		case 1:
			out = append(out, Candidate{Number: n})
		case 2:
			duplicates = append(duplicates, n)
		}
	}
	return out, duplicates
}
