package account

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/teemow/fizzy-mcp/internal/fizzy"
	"github.com/teemow/fizzy-mcp/internal/instrumentation"
	"github.com/teemow/fizzy-mcp/internal/logging"
)

// EnvAccount names the environment variable holding a default account slug.
const EnvAccount = "FIZZY_ACCOUNT"

// Session sources.
const (
	SourceExplicit   = "explicit"
	SourceAutoDetect = "auto-detect"
)

// IdentityFetcher looks up the accounts reachable with the configured token.
// *fizzy.Client implements it.
type IdentityFetcher interface {
	Identity(ctx context.Context) (*fizzy.Identity, error)
}

// Session is the account the process is currently working in.
type Session struct {
	Account SessionAccount `json:"account"`
	User    SessionUser    `json:"user"`
	Source  string         `json:"source"`
}

// SessionAccount identifies the session's account.
type SessionAccount struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
	ID   string `json:"id"`
}

// SessionUser is the caller's user within the session's account.
type SessionUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

func newSession(a fizzy.Account, source string) *Session {
	return &Session{
		Account: SessionAccount{Slug: a.CleanSlug(), Name: a.Name, ID: a.ID},
		User:    SessionUser{ID: a.User.ID, Name: a.User.Name, Role: a.User.Role},
		Source:  source,
	}
}

// Resolver owns the Session and the auto-detect cache. It is safe for
// concurrent use; two racing first resolutions may both hit the identity
// endpoint.
type Resolver struct {
	identity IdentityFetcher
	getenv   func(string) string
	logger   *slog.Logger
	metrics  *instrumentation.Metrics

	mu       sync.Mutex
	session  *Session
	detected string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithGetenv replaces os.Getenv, for tests.
func WithGetenv(getenv func(string) string) Option {
	return func(r *Resolver) { r.getenv = getenv }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// WithMetrics records each resolution by source.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

// NewResolver creates a Resolver that auto-detects through identity.
func NewResolver(identity IdentityFetcher, opts ...Option) *Resolver {
	r := &Resolver{
		identity: identity,
		getenv:   os.Getenv,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// normalize strips the leading "/" an account slug carries in API payloads.
func normalize(slug string) string {
	return strings.TrimPrefix(strings.TrimSpace(slug), "/")
}

// Resolve returns the account slug a call should use.
func (r *Resolver) Resolve(ctx context.Context, explicit string) (string, error) {
	if slug := normalize(explicit); slug != "" {
		return r.resolved(ctx, slug, instrumentation.ResolutionSourceExplicit), nil
	}

	r.mu.Lock()
	session, detected := r.session, r.detected
	r.mu.Unlock()

	if session != nil && session.Account.Slug != "" {
		return r.resolved(ctx, session.Account.Slug, instrumentation.ResolutionSourceSession), nil
	}
	if slug := normalize(r.getenv(EnvAccount)); slug != "" {
		return r.resolved(ctx, slug, instrumentation.ResolutionSourceEnv), nil
	}
	if detected != "" {
		return r.resolved(ctx, detected, instrumentation.ResolutionSourceCache), nil
	}

	return r.autoDetect(ctx)
}

func (r *Resolver) resolved(ctx context.Context, slug, source string) string {
	r.metrics.RecordAccountResolution(ctx, source, instrumentation.StatusSuccess)
	r.logger.DebugContext(ctx, "account resolved", logging.Account(slug), logging.Source(source))
	return slug
}

func (r *Resolver) autoDetect(ctx context.Context) (string, error) {
	identity, err := r.identity.Identity(ctx)
	if err != nil {
		r.metrics.RecordAccountResolution(ctx, instrumentation.ResolutionSourceAutoDetect, instrumentation.StatusError)
		return "", &NoAccountError{Cause: err}
	}

	if len(identity.Accounts) != 1 {
		r.metrics.RecordAccountResolution(ctx, instrumentation.ResolutionSourceAutoDetect, instrumentation.StatusError)
		return "", &NoAccountError{Available: identity.Slugs()}
	}

	session := newSession(identity.Accounts[0], SourceAutoDetect)

	r.mu.Lock()
	r.detected = session.Account.Slug
	r.session = session
	r.mu.Unlock()

	r.logger.InfoContext(ctx, "account auto-detected",
		logging.Account(session.Account.Slug),
		slog.String("account_name", session.Account.Name))

	return r.resolved(ctx, session.Account.Slug, instrumentation.ResolutionSourceAutoDetect), nil
}

// SelectAccount makes slug the Session account after checking that the token
// can reach it.
func (r *Resolver) SelectAccount(ctx context.Context, slug string) (Session, error) {
	want := normalize(slug)

	identity, err := r.identity.Identity(ctx)
	if err != nil {
		return Session{}, err
	}

	for _, a := range identity.Accounts {
		if a.CleanSlug() != want {
			continue
		}
		session := newSession(a, SourceExplicit)

		r.mu.Lock()
		r.session = session
		r.mu.Unlock()

		r.logger.InfoContext(ctx, "account selected", logging.Account(want))
		return *session, nil
	}

	return Session{}, &UnknownAccountError{Slug: want, Available: identity.Slugs()}
}

// Session returns the current Session, if any.
func (r *Resolver) Session() (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session == nil {
		return Session{}, false
	}
	return *r.session, true
}

// ClearSession drops the Session. The auto-detect cache is kept.
func (r *Resolver) ClearSession() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.session = nil
}

// ClearCache forgets the auto-detected account so the next ambiguous
// resolution asks the identity endpoint again. The Session is kept.
func (r *Resolver) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.detected = ""
}

// Reset clears both the Session and the auto-detect cache.
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.session = nil
	r.detected = ""
}
