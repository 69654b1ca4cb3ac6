package transport

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mateolafalce/padelpro/internal/entity"
	"github.com/mateolafalce/padelpro/internal/service"
)

type CourtHandler struct {
	catalog service.CatalogService
	courts  service.CourtService
}

func NewCourtHandler(catalog service.CatalogService, courts service.CourtService) *CourtHandler {
	return &CourtHandler{catalog: catalog, courts: courts}
}

// ListSlots returns every bookable slot ordered by weekday then time range.
func (h *CourtHandler) ListSlots(c *gin.Context) {
	slots, err := h.catalog.ListAllSlots(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if slots == nil {
		slots = []*entity.Slot{}
	}
	c.JSON(http.StatusOK, slots)
}

func (h *CourtHandler) ListCourts(c *gin.Context) {
	courts, err := h.catalog.CourtsWithSlots(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if courts == nil {
		courts = []*entity.CourtWithSlots{}
	}
	c.JSON(http.StatusOK, courts)
}

func (h *CourtHandler) CreateCourt(c *gin.Context) {
	var req service.CreateCourtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Faltan campos requeridos: nombre, cantidad")
		return
	}

	court, err := h.courts.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":          court.ID,
		"nombre":      court.Name,
		"cantidad":    court.Capacity,
		"descripcion": court.Description,
		"precio":      court.Price,
		"mensaje":     "Cancha creada exitosamente",
	})
}

func (h *CourtHandler) UpdateCourt(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req service.UpdateCourtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	court, err := h.courts.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":          court.ID,
		"nombre":      court.Name,
		"cantidad":    court.Capacity,
		"descripcion": court.Description,
		"precio":      court.Price,
		"mensaje":     "Cancha actualizada exitosamente",
	})
}

func (h *CourtHandler) DeleteCourt(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.courts.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "Cancha eliminada exitosamente"})
}
