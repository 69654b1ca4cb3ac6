package transport

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mateolafalce/padelpro/internal/service"
)

type HistoryHandler struct {
	history service.HistoryService
}

func NewHistoryHandler(history service.HistoryService) *HistoryHandler {
	return &HistoryHandler{history: history}
}

func (h *HistoryHandler) Users(c *gin.Context) {
	page, err := h.history.ListUsers(c.Request.Context(), queryInt(c, "page", 1), queryInt(c, "per_page", 10))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"usuarios": page.Users,
		"page":     page.Page,
		"per_page": page.PerPage,
		"total":    page.Total,
		"pages":    page.Pages,
	})
}

func (h *HistoryHandler) UserHistory(c *gin.Context) {
	res, err := h.history.UserHistory(c.Request.Context(), c.Param("usuario"), queryInt(c, "limite", 50))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"usuario":      res.User,
		"mensajes":     res.Messages,
		"estadisticas": res.Stats,
	})
}

func (h *HistoryHandler) Clear(c *gin.Context) {
	user := c.Param("usuario")
	if _, err := h.history.Clear(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: fmt.Sprintf("Historial de %s eliminado correctamente", user)})
}

func (h *HistoryHandler) Stats(c *gin.Context) {
	stats, err := h.history.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "estadisticas": stats})
}
