package transport

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mateolafalce/padelpro/internal/entity"
	"github.com/mateolafalce/padelpro/internal/service"
)

type ConfigHandler struct {
	business service.BusinessService
}

func NewConfigHandler(business service.BusinessService) *ConfigHandler {
	return &ConfigHandler{business: business}
}

func (h *ConfigHandler) Get(c *gin.Context) {
	b, err := h.business.Get(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":                    true,
		entity.ConfigCBU:             b.CBU,
		entity.ConfigAlias:           b.Alias,
		entity.ConfigBusinessName:    b.Name,
		entity.ConfigBusinessKind:    b.Kind,
		entity.ConfigBusinessAddress: b.Address,
	})
}

func (h *ConfigHandler) Update(c *gin.Context) {
	var b entity.Business
	if err := c.ShouldBindJSON(&b); err != nil {
		badRequest(c, "No se recibieron datos")
		return
	}
	if err := h.business.Update(c.Request.Context(), &b); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "Configuración actualizada correctamente"})
}
