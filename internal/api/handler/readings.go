package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jon4hz/astroadvisor/internal/api/models"
	"github.com/jon4hz/astroadvisor/internal/database"
)

// GetAdvice generates a reading for the current user.
func (h *Handler) GetAdvice(c *gin.Context) {
	var req models.UserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	reading, err := h.engine.GetAdvice(c.Request.Context(), currentUser(c), req.ToBirthData())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ToReading(*reading))
}

// QuickAdvice generates an anonymous reading.
func (h *Handler) QuickAdvice(c *gin.Context) {
	var req models.UserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	reading, err := h.engine.QuickAdvice(c.Request.Context(), req.ToBirthData())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ToReading(*reading))
}

// ListReadings returns the current user's readings, oldest first.
func (h *Handler) ListReadings(c *gin.Context) {
	h.listReadings(c, database.SortOrderAsc)
}

// MyReadings returns the current user's readings, newest first.
func (h *Handler) MyReadings(c *gin.Context) {
	h.listReadings(c, database.SortOrderDesc)
}

func (h *Handler) listReadings(c *gin.Context, order database.SortOrder) {
	page, ok := pagination(c, defaultReadingsLimit)
	if !ok {
		return
	}

	readings, err := h.engine.ListReadings(c.Request.Context(), currentUser(c), page, order)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ToReadings(readings))
}

func (h *Handler) GetReading(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	reading, err := h.engine.GetReading(c.Request.Context(), currentUser(c), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ToReading(*reading))
}

// CreateReading stores a reading supplied by the client.
func (h *Handler) CreateReading(c *gin.Context) {
	var req models.ReadingCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	reading, err := h.engine.CreateReading(c.Request.Context(), currentUser(c), req.ToBirthData(), req.Advice)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ToReading(*reading))
}

func (h *Handler) DeleteReading(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.engine.DeleteReading(c.Request.Context(), currentUser(c), id); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Message{Message: "Reading deleted successfully"})
}
