package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/astroadvisor/internal/database"
)

const (
	// ContextKeyUser holds the authenticated *database.User.
	ContextKeyUser = "user"
	// ContextKeyUserID holds the id of the authenticated user.
	ContextKeyUserID = "user_id"
)

// UserResolver looks up the user a token was issued for.
type UserResolver interface {
	GetUserByEmail(ctx context.Context, email string) (*database.User, error)
}

// Provider authenticates requests carrying a bearer token.
type Provider struct {
	tokens *Tokens
	users  UserResolver
}

// NewProvider creates a new bearer token provider.
func NewProvider(tokens *Tokens, users UserResolver) *Provider {
	return &Provider{
		tokens: tokens,
		users:  users,
	}
}

// RequireAuth rejects requests without a valid bearer token for an existing user.
// The user is re-read on every request so deleted accounts lose access immediately.
func (p *Provider) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			Unauthorized(c, "Not authenticated")
			return
		}

		email, err := p.tokens.Verify(raw)
		if err != nil {
			log.Debug("rejected bearer token", "error", err)
			Unauthorized(c, "Could not validate credentials")
			return
		}

		user, err := p.users.GetUserByEmail(c.Request.Context(), email)
		if err != nil {
			if err != database.ErrNotFound {
				log.Error("failed to resolve token subject", "error", err)
			}
			Unauthorized(c, "Could not validate credentials")
			return
		}

		c.Set(ContextKeyUserID, user.ID)
		c.Set(ContextKeyUser, user)
		c.Next()
	}
}

// CurrentUser returns the user stored by RequireAuth.
func CurrentUser(c *gin.Context) (*database.User, bool) {
	v, ok := c.Get(ContextKeyUser)
	if !ok {
		return nil, false
	}
	user, ok := v.(*database.User)
	return user, ok && user != nil
}

// Unauthorized aborts the request with a bearer challenge.
func Unauthorized(c *gin.Context, detail string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": detail})
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
