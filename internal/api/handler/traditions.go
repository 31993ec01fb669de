package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jon4hz/astroadvisor/internal/api/models"
	"github.com/jon4hz/astroadvisor/internal/database"
)

func (h *Handler) ListPhilosophies(c *gin.Context) {
	page, ok := pagination(c, defaultLimit)
	if !ok {
		return
	}
	items, err := h.engine.ListPhilosophies(c.Request.Context(), page)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ToPhilosophies(items))
}

func (h *Handler) GetPhilosophy(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	item, err := h.engine.GetPhilosophy(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ToPhilosophy(*item))
}

func (h *Handler) ListReligions(c *gin.Context) {
	page, ok := pagination(c, defaultLimit)
	if !ok {
		return
	}
	items, err := h.engine.ListReligions(c.Request.Context(), page)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ToReligions(items))
}

func (h *Handler) GetReligion(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	item, err := h.engine.GetReligion(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ToReligion(*item))
}

func (h *Handler) ListAstrologicalSystems(c *gin.Context) {
	page, ok := pagination(c, defaultLimit)
	if !ok {
		return
	}
	items, err := h.engine.ListAstrologicalSystems(c.Request.Context(), page)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ToAstrologicalSystems(items))
}

func (h *Handler) GetAstrologicalSystem(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	item, err := h.engine.GetAstrologicalSystem(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ToAstrologicalSystem(*item))
}

// Search matches the query parameter against all reference records.
func (h *Handler) Search(c *gin.Context) {
	query, ok := c.GetQuery("query")
	if !ok {
		detail(c, http.StatusBadRequest, "query parameter is required")
		return
	}

	catalog, err := h.engine.Search(c.Request.Context(), query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ToCatalog(catalog))
}

// Knowledge returns the complete reference catalog.
func (h *Handler) Knowledge(c *gin.Context) {
	catalog, err := h.engine.Knowledge(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ToCatalog(catalog))
}

// GuruChat answers a message in the voice of a tradition.
// The type segment selects the catalog; "philosophy" and "religion" are
// matched, any other value selects the astrological systems.
func (h *Handler) GuruChat(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req models.GuruMessage
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	kind := database.ParseTraditionKind(c.Param("type"))
	answer, err := h.engine.GuruChat(c.Request.Context(), kind, id, req.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ToGuruResponse(answer))
}
