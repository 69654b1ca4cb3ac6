package transport

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mateolafalce/padelpro/internal/service"
)

type BlockHandler struct {
	block service.BlockService
}

func NewBlockHandler(block service.BlockService) *BlockHandler {
	return &BlockHandler{block: block}
}

// WeeklyGrid returns the state of every court and time range on a date.
func (h *BlockHandler) WeeklyGrid(c *gin.Context) {
	date := strings.TrimSpace(c.Query("fecha"))
	if date == "" {
		badRequest(c, "Fecha requerida")
		return
	}

	rows, err := h.block.WeeklyGrid(c.Request.Context(), date)
	if err != nil {
		respondError(c, err)
		return
	}
	if rows == nil {
		rows = []*service.GridRow{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "horarios": rows})
}

func (h *BlockHandler) Toggle(c *gin.Context) {
	var req service.ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Faltan datos")
		return
	}

	res, err := h.block.Toggle(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "accion": res.Action, "reserva_id": res.ReservationID})
}
