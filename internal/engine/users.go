package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/astroadvisor/internal/auth"
	"github.com/jon4hz/astroadvisor/internal/database"
	"github.com/jon4hz/astroadvisor/internal/notify/email"
)

// Registration holds the data of a new account.
type Registration struct {
	Email     string
	Username  string
	Password  string
	BirthDate string
	BirthTime *string
	Location  string
}

// Token is an issued bearer token.
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

// Register creates a new account.
// The email is checked before the username, a unique index violation from a
// concurrent registration is reported the same way as a failed check.
func (e *Engine) Register(ctx context.Context, reg Registration) (*database.User, error) {
	reg.Email = strings.TrimSpace(reg.Email)
	reg.Username = strings.TrimSpace(reg.Username)
	if reg.Username == "" {
		return nil, fmt.Errorf("%w: username must not be empty", ErrInvalidInput)
	}

	if err := e.ensureAvailable(ctx, reg.Email, reg.Username); err != nil {
		return nil, err
	}

	hash, err := e.hasher.Hash(reg.Password)
	if err != nil {
		if auth.IsPasswordTooLong(err) {
			return nil, fmt.Errorf("%w: password is too long", ErrInvalidInput)
		}
		return nil, err
	}

	user := &database.User{
		Email:          reg.Email,
		Username:       reg.Username,
		HashedPassword: hash,
		BirthDate:      reg.BirthDate,
		BirthTime:      reg.BirthTime,
		Location:       reg.Location,
		IsActive:       true,
	}
	if err := e.db.CreateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, e.duplicateUserError(ctx, reg.Email)
		}
		return nil, err
	}

	log.Info("User registered", "user_id", user.ID, "username", user.Username)
	e.sendWelcome(user)

	return user, nil
}

func (e *Engine) ensureAvailable(ctx context.Context, emailAddr, username string) error {
	_, err := e.db.GetUserByEmail(ctx, emailAddr)
	switch {
	case err == nil:
		return ErrEmailTaken
	case !errors.Is(err, database.ErrNotFound):
		return err
	}

	_, err = e.db.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		return ErrUsernameTaken
	case !errors.Is(err, database.ErrNotFound):
		return err
	}

	return nil
}

func (e *Engine) duplicateUserError(ctx context.Context, emailAddr string) error {
	if _, err := e.db.GetUserByEmail(ctx, emailAddr); err == nil {
		return ErrEmailTaken
	}
	return ErrUsernameTaken
}

func (e *Engine) sendWelcome(user *database.User) {
	if e.mailer == nil {
		return
	}
	welcome := email.Welcome{
		UserEmail: user.Email,
		Username:  user.Username,
		BirthDate: user.BirthDate,
		Location:  user.Location,
	}
	e.pending.Add(1)
	go func() {
		defer e.pending.Done()
		if err := e.mailer.SendWelcome(welcome); err != nil {
			log.Warn("Failed to send welcome email", "user", welcome.Username, "error", err)
		}
	}()
}

// Login verifies the credentials and issues a bearer token.
// An unknown email and a wrong password both yield ErrInvalidCredentials.
func (e *Engine) Login(ctx context.Context, emailAddr, password string) (*Token, error) {
	user, err := e.db.GetUserByEmail(ctx, strings.TrimSpace(emailAddr))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !e.hasher.Verify(password, user.HashedPassword) {
		return nil, ErrInvalidCredentials
	}

	raw, expiresAt, err := e.tokens.Issue(user.Email)
	if err != nil {
		return nil, err
	}

	log.Debug("User logged in", "user_id", user.ID)
	return &Token{
		AccessToken: raw,
		TokenType:   auth.TokenType,
		ExpiresAt:   expiresAt,
	}, nil
}

// UpdateUser applies a partial update to the user. Fields left nil are untouched.
func (e *Engine) UpdateUser(ctx context.Context, user *database.User, update database.UserUpdate) (*database.User, error) {
	if update.Username != nil {
		trimmed := strings.TrimSpace(*update.Username)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: username must not be empty", ErrInvalidInput)
		}
		update.Username = &trimmed
	}

	updated, err := e.db.UpdateUser(ctx, user.ID, update)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrDuplicate):
			return nil, ErrUsernameTaken
		case errors.Is(err, database.ErrNotFound):
			return nil, notFound("User")
		}
		return nil, err
	}
	return updated, nil
}

// DeleteUser removes the user together with everything the user owns.
// Readings are removed before the user, all in one transaction.
func (e *Engine) DeleteUser(ctx context.Context, user *database.User) error {
	var removed int64
	err := e.db.Transaction(ctx, func(tx database.DB) error {
		var err error
		if removed, err = tx.DeleteReadingsByUser(ctx, user.ID); err != nil {
			return err
		}
		if err := tx.DeleteHistoryByUser(ctx, user.ID); err != nil {
			return err
		}
		if err := tx.DeletePreferencesByUser(ctx, user.ID); err != nil {
			return err
		}
		return tx.DeleteUser(ctx, user.ID)
	})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return notFound("User")
		}
		return err
	}

	log.Info("User deleted", "user_id", user.ID, "readings", removed)
	return nil
}
