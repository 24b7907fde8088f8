// Package ratelimit implements fixed-window request throttling keyed by
// (action, identifier). State lives in an injected TTL store so the
// process-local backing can later be swapped for a shared one; with the
// default in-memory store the limit is per-instance and best-effort.
package ratelimit

import (
	"sync"
	"time"
)

// Action names used across the API.
const (
	ActionLogin            = "login"
	ActionRegister         = "register"
	ActionPasswordReset    = "password_reset"
	ActionReportSubmission = "report_submission"
	ActionCommentPosting   = "comment_posting"
	ActionEvidenceUpload   = "evidence_upload"
)

// Config is the static limit for one action.
type Config struct {
	MaxAttempts int
	Window      time.Duration
}

// DefaultLimits mirrors the product's published throttling table.
func DefaultLimits() map[string]Config {
	return map[string]Config{
		ActionLogin:            {MaxAttempts: 5, Window: 15 * time.Minute},
		ActionRegister:         {MaxAttempts: 3, Window: time.Hour},
		ActionPasswordReset:    {MaxAttempts: 3, Window: time.Hour},
		ActionReportSubmission: {MaxAttempts: 10, Window: time.Hour},
		ActionCommentPosting:   {MaxAttempts: 20, Window: 10 * time.Minute},
		ActionEvidenceUpload:   {MaxAttempts: 50, Window: time.Hour},
	}
}

// Entry tracks one counter window.
type Entry struct {
	Attempts    int
	WindowStart time.Time
}

// Store is the TTL-keyed backing for limiter state.
type Store interface {
	Get(key string) (*Entry, bool)
	Set(key string, e *Entry, ttl time.Duration)
	Delete(key string)
}

// Result reports the outcome of a Check call. RemainingAttempts is -1 when
// the action has no configured limit.
type Result struct {
	Allowed           bool
	RemainingAttempts int
	RetryAfter        time.Duration
}

type Limiter struct {
	limits map[string]Config
	store  Store
	mu     sync.Mutex
	now    func() time.Time
}

func New(store Store) *Limiter {
	return NewWithLimits(store, DefaultLimits())
}

func NewWithLimits(store Store, limits map[string]Config) *Limiter {
	return &Limiter{
		limits: limits,
		store:  store,
		now:    time.Now,
	}
}

// Check records one attempt for (action, identifier) and reports whether it
// is allowed. The counter is a fixed window: it restarts only once the full
// window duration has elapsed from the original window start, so bursts at
// window boundaries are possible. That tradeoff is intentional.
func (l *Limiter) Check(action, identifier string) Result {
	cfg, ok := l.limits[action]
	if !ok {
		return Result{Allowed: true, RemainingAttempts: -1}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := action + ":" + identifier
	now := l.now()

	entry, found := l.store.Get(key)
	if !found || now.Sub(entry.WindowStart) >= cfg.Window {
		l.store.Set(key, &Entry{Attempts: 1, WindowStart: now}, cfg.Window)
		return Result{Allowed: true, RemainingAttempts: cfg.MaxAttempts - 1}
	}

	if entry.Attempts >= cfg.MaxAttempts {
		return Result{
			Allowed:    false,
			RetryAfter: cfg.Window - now.Sub(entry.WindowStart),
		}
	}

	entry.Attempts++
	l.store.Set(key, entry, cfg.Window-now.Sub(entry.WindowStart))
	return Result{Allowed: true, RemainingAttempts: cfg.MaxAttempts - entry.Attempts}
}

// Reset clears the counter for (action, identifier), e.g. after a successful
// login. Resetting a missing entry is a no-op.
func (l *Limiter) Reset(action, identifier string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.store.Delete(action + ":" + identifier)
}
