package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"github.com/teemow/fizzy-mcp/internal/fizzy"
	"github.com/teemow/fizzy-mcp/internal/pagination"
)

// API is the set of remote operations the orchestrator composes.
// *fizzy.Client implements it.
type API interface {
	GetCard(ctx context.Context, slug string, number int) (*fizzy.Card, error)
	CreateCard(ctx context.Context, slug, boardID string, in fizzy.CardInput) (*fizzy.Card, error)
	UpdateCard(ctx context.Context, slug string, number int, in fizzy.CardInput) (*fizzy.Card, error)
	CloseCard(ctx context.Context, slug string, number int) (*fizzy.Card, error)
	ReopenCard(ctx context.Context, slug string, number int) (*fizzy.Card, error)
	DeferCard(ctx context.Context, slug string, number int) (*fizzy.Card, error)
	TriageCard(ctx context.Context, slug string, number int, columnID string) (*fizzy.Card, error)
	UntriageCard(ctx context.Context, slug string, number int) (*fizzy.Card, error)
	ToggleTag(ctx context.Context, slug string, number int, title string) error
	ToggleAssignee(ctx context.Context, slug string, number int, userID string) error
	CreateStep(ctx context.Context, slug string, number int, content string) (*fizzy.Step, error)
	ListCards(ctx context.Context, slug string, filter fizzy.CardFilter, cursor string) (*pagination.Page[fizzy.Card], error)
	FindTag(ctx context.Context, slug, title string) (*fizzy.Tag, error)
}

// StepRecorder receives non-fatal step failures and bulk outcomes.
// *instrumentation.Metrics implements it.
type StepRecorder interface {
	RecordStepFailure(ctx context.Context, mode, kind string)
	RecordBulkClose(ctx context.Context, closed, failed int)
}

// Orchestrator runs task and bulk-close operations against an API.
type Orchestrator struct {
	api     API
	now     func() time.Time
	logger  *slog.Logger
	metrics StepRecorder
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock sets the time source used for age filters.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithMetrics records step failures and bulk outcomes.
func WithMetrics(m StepRecorder) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// New creates an Orchestrator.
func New(api API, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		api:    api,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) recordStepFailure(ctx context.Context, mode, kind string) {
	if o.metrics != nil {
		o.metrics.RecordStepFailure(ctx, mode, kind)
	}
}

func (o *Orchestrator) recordBulkClose(ctx context.Context, closed, failed int) {
	if o.metrics != nil {
		o.metrics.RecordBulkClose(ctx, closed, failed)
	}
}
