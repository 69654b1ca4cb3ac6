package transport

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mateolafalce/padelpro/internal/entity"
	"github.com/mateolafalce/padelpro/internal/service"
)

const missingSlotFields = "Faltan datos: cancha_nombre, fecha, hora"

type ReservationHandler struct {
	reservations service.ReservationService
	availability service.AvailabilityService
}

func NewReservationHandler(reservations service.ReservationService, availability service.AvailabilityService) *ReservationHandler {
	return &ReservationHandler{reservations: reservations, availability: availability}
}

func (h *ReservationHandler) List(c *gin.Context) {
	rows, err := h.reservations.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if rows == nil {
		rows = []*entity.ReservationDetails{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "reservas": rows})
}

func (h *ReservationHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	reservation, err := h.reservations.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "reserva": reservation})
}

func (h *ReservationHandler) Create(c *gin.Context) {
	var req service.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil || blank(req.CourtName, req.Date, req.Time) {
		badRequest(c, missingSlotFields)
		return
	}

	res, err := h.reservations.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"reserva_id": res.ReservationID,
		"cliente_id": res.ClientID,
		"hora":       res.TimeRange,
		"monto":      res.Amount,
		"mensaje":    res.Message,
	})
}

func (h *ReservationHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req service.UpdateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	reservation, err := h.reservations.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "mensaje": "Reserva actualizada", "reserva": reservation})
}

func (h *ReservationHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.reservations.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "mensaje": "Reserva eliminada"})
}

// Cancel is the operator path: no ownership check.
func (h *ReservationHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	res, err := h.reservations.Cancel(c.Request.Context(), id, "")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "reserva_id": res.ReservationID, "mensaje": res.Message})
}

func (h *ReservationHandler) CheckAvailability(c *gin.Context) {
	var req service.AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil || blank(req.CourtName, req.Date, req.Time) {
		badRequest(c, missingSlotFields)
		return
	}

	res, err := h.availability.Check(c.Request.Context(), req.CourtName, req.Date, req.Time)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"disponible":       res.Available,
		"mensaje":          res.Message,
		"hora_normalizada": res.TimeRange,
	})
}

func (h *ReservationHandler) ListForClient(c *gin.Context) {
	res, err := h.reservations.ListForClient(c.Request.Context(), c.Param("telefono"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "reservas": res.Reservations, "mensaje": res.Message})
}

func blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}
