package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jon4hz/astroadvisor/internal/api/models"
)

// Register creates a new account.
func (h *Handler) Register(c *gin.Context) {
	var req models.UserCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	user, err := h.engine.Register(c.Request.Context(), req.ToRegistration())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ToUser(user, h.avatars))
}

// Token exchanges email and password for a bearer token.
func (h *Handler) Token(c *gin.Context) {
	var req models.TokenRequest
	if err := c.ShouldBind(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	token, err := h.engine.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Token{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
	})
}

func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, models.ToUser(currentUser(c), h.avatars))
}

// UpdateMe applies the fields present in the body to the current user.
func (h *Handler) UpdateMe(c *gin.Context) {
	var req models.UserUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	update, err := req.ToUpdate()
	if err != nil {
		invalidRequest(c, err)
		return
	}

	user, err := h.engine.UpdateUser(c.Request.Context(), currentUser(c), update)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ToUser(user, h.avatars))
}

// DeleteMe removes the current user and everything the user owns.
func (h *Handler) DeleteMe(c *gin.Context) {
	if err := h.engine.DeleteUser(c.Request.Context(), currentUser(c)); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Message{Message: "User deleted successfully"})
}
