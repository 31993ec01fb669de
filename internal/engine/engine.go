package engine

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/astroadvisor/internal/auth"
	"github.com/jon4hz/astroadvisor/internal/config"
	"github.com/jon4hz/astroadvisor/internal/database"
	"github.com/jon4hz/astroadvisor/internal/llm"
	"github.com/jon4hz/astroadvisor/internal/notify/email"
)

// Completer sends chat completion requests.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
}

// Mailer sends account related emails.
type Mailer interface {
	SendWelcome(welcome email.Welcome) error
}

// Engine orchestrates the Astro Advisor use cases on top of the database,
// the credential primitives and the chat completion API.
type Engine struct {
	cfg    *config.Config
	db     database.DB
	hasher *auth.Hasher
	tokens *auth.Tokens
	llm    Completer
	mailer Mailer

	// pending tracks welcome emails that are still being sent
	pending sync.WaitGroup
}

// New creates a new Engine instance. mailer may be nil.
func New(cfg *config.Config, db database.DB, completer Completer, mailer Mailer) *Engine {
	return &Engine{
		cfg:    cfg,
		db:     db,
		hasher: auth.NewHasher(cfg.Auth.BcryptCost),
		tokens: auth.NewTokens(cfg.Auth),
		llm:    completer,
		mailer: mailer,
	}
}

// Tokens returns the bearer token issuer used by the engine.
func (e *Engine) Tokens() *auth.Tokens {
	return e.tokens
}

// DB returns the underlying database.
func (e *Engine) DB() database.DB {
	return e.db
}

// Ping checks that the database is reachable.
func (e *Engine) Ping(ctx context.Context) error {
	return e.db.Ping(ctx)
}

// Close waits for outstanding emails.
func (e *Engine) Close() error {
	e.pending.Wait()
	log.Debug("Engine closed")
	return nil
}

// recordAction appends a history entry for userID.
// Failures are logged and never affect the triggering operation.
func (e *Engine) recordAction(ctx context.Context, userID uint, action string, details map[string]any) {
	entry := &database.UserHistory{
		UserID:     userID,
		ActionType: action,
		Details:    details,
	}
	if err := e.db.CreateHistory(ctx, entry); err != nil {
		log.Warn("failed to record user action", "user_id", userID, "action", action, "error", err)
	}
}
