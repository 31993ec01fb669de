package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jon4hz/astroadvisor/internal/config"
)

// ErrInvalidToken is returned for missing, malformed, expired or forged tokens.
var ErrInvalidToken = errors.New("invalid token")

// TokenType is the token type reported to clients.
const TokenType = "bearer"

// Tokens issues and verifies HS256 signed bearer tokens.
// The subject of a token is the email of the user it was issued for.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens creates a token issuer from the auth configuration.
func NewTokens(cfg *config.AuthConfig) *Tokens {
	return &Tokens{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TokenTTL,
		now:    time.Now,
	}
}

// Issue returns a signed token for subject and its expiry time.
func (t *Tokens) Issue(subject string) (string, time.Time, error) {
	now := t.now()
	expiresAt := now.Add(t.ttl)

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks the signature and expiry of raw and returns its subject.
func (t *Tokens) Verify(raw string) (string, error) {
	if raw == "" {
		return "", ErrInvalidToken
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
