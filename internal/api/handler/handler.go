package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ccoveille/go-safecast"
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/astroadvisor/internal/api/models"
	"github.com/jon4hz/astroadvisor/internal/auth"
	"github.com/jon4hz/astroadvisor/internal/database"
	"github.com/jon4hz/astroadvisor/internal/engine"
	"github.com/jon4hz/astroadvisor/internal/gravatar"
)

const (
	defaultReadingsLimit = 10
	defaultLimit         = 100
	maxLimit             = 100
)

type Handler struct {
	engine  *engine.Engine
	avatars *gravatar.Avatars
}

// New creates the HTTP handlers. avatars may be nil.
func New(eng *engine.Engine, avatars *gravatar.Avatars) *Handler {
	return &Handler{
		engine:  eng,
		avatars: avatars,
	}
}

// Root greets API clients.
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, models.Message{Message: "Welcome to Astro Advisor API"})
}

// Healthz reports whether the database is reachable.
func (h *Handler) Healthz(c *gin.Context) {
	if err := h.engine.Ping(c.Request.Context()); err != nil {
		log.Error("Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// writeError maps engine errors onto status codes.
// Upstream and internal failures are logged and answered with a generic message.
func writeError(c *gin.Context, err error) {
	var nf *engine.NotFoundError
	switch {
	case errors.As(err, &nf):
		detail(c, http.StatusNotFound, nf.Error())
	case errors.Is(err, engine.ErrEmailTaken):
		detail(c, http.StatusBadRequest, "Email already registered")
	case errors.Is(err, engine.ErrUsernameTaken):
		detail(c, http.StatusBadRequest, "Username already registered")
	case errors.Is(err, engine.ErrPreferencesExist):
		detail(c, http.StatusBadRequest, "Preferences already exist")
	case errors.Is(err, engine.ErrInvalidInput):
		detail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, engine.ErrInvalidCredentials):
		auth.Unauthorized(c, "Incorrect email or password")
	case errors.Is(err, engine.ErrForbidden):
		detail(c, http.StatusForbidden, "Not authorized")
	case errors.Is(err, engine.ErrUpstream):
		log.Error("Upstream request failed", "path", c.FullPath(), "error", err)
		detail(c, http.StatusBadGateway, "The advice service is currently unavailable")
	default:
		log.Error("Request failed", "path", c.FullPath(), "error", err)
		detail(c, http.StatusInternalServerError, "Internal server error")
	}
}

func detail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{Detail: msg})
}

// invalidRequest answers a body or query that failed validation.
func invalidRequest(c *gin.Context, err error) {
	log.Debug("Invalid request", "path", c.FullPath(), "error", err)
	detail(c, http.StatusBadRequest, err.Error())
}

func currentUser(c *gin.Context) *database.User {
	user, _ := auth.CurrentUser(c)
	return user
}

func parseUintParam(param string) (uint, error) {
	var id uint64
	var err error
	if id, err = strconv.ParseUint(param, 10, 0); err != nil {
		return 0, err
	}
	return uint(id), nil
}

// idParam parses the named path parameter. It writes a 400 response and returns false on failure.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := parseUintParam(c.Param(name))
	if err != nil {
		detail(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// pagination reads skip and limit from the query. A limit above maxLimit is clamped.
func pagination(c *gin.Context, fallbackLimit int) (database.Page, bool) {
	page := database.Page{Limit: fallbackLimit}

	if skipStr := c.Query("skip"); skipStr != "" {
		s, err := parseUintParam(skipStr)
		if err == nil {
			page.Skip, err = safecast.ToInt(s)
		}
		if err != nil {
			detail(c, http.StatusBadRequest, "Invalid skip parameter")
			return page, false
		}
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		l, err := parseUintParam(limitStr)
		if err == nil && l > 0 {
			page.Limit, err = safecast.ToInt(min(l, maxLimit))
		}
		if err != nil || l == 0 {
			detail(c, http.StatusBadRequest, "Invalid limit parameter")
			return page, false
		}
	}

	return page, true
}
