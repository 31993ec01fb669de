package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jon4hz/astroadvisor/internal/api/models"
)

func (h *Handler) CreatePreferences(c *gin.Context) {
	userID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req models.UserPreferencesCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	prefs, err := h.engine.CreatePreferences(c.Request.Context(), currentUser(c), userID, req.ToPreferences())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ToUserPreferences(prefs))
}

func (h *Handler) GetPreferences(c *gin.Context) {
	userID, ok := idParam(c, "id")
	if !ok {
		return
	}

	prefs, err := h.engine.GetPreferences(c.Request.Context(), currentUser(c), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ToUserPreferences(prefs))
}

func (h *Handler) UpdatePreferences(c *gin.Context) {
	userID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req models.UserPreferencesCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	prefs, err := h.engine.UpdatePreferences(c.Request.Context(), currentUser(c), userID, req.ToPreferences())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ToUserPreferences(prefs))
}

func (h *Handler) CreateHistory(c *gin.Context) {
	userID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req models.UserHistoryCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	entry, err := h.engine.CreateHistory(c.Request.Context(), currentUser(c), userID, req.ActionType, req.Details)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ToUserHistory(*entry))
}

func (h *Handler) ListHistory(c *gin.Context) {
	userID, ok := idParam(c, "id")
	if !ok {
		return
	}
	page, ok := pagination(c, defaultLimit)
	if !ok {
		return
	}

	entries, err := h.engine.ListHistory(c.Request.Context(), currentUser(c), userID, page)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ToUserHistories(entries))
}
