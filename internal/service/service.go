package service

import (
	"context"
	"time"

	"github.com/mateolafalce/padelpro/internal/entity"
	"github.com/mateolafalce/padelpro/internal/schedule"
)

// CatalogService exposes the bookable slots.
type CatalogService interface {
	Grid() schedule.Grid
	ListAllSlots(ctx context.Context) ([]*entity.Slot, error)
	SlotsForCourt(ctx context.Context, courtID int64) ([]*entity.Slot, error)
	CourtsWithSlots(ctx context.Context) ([]*entity.CourtWithSlots, error)
}

// AvailabilityService decides whether a court is free at a date and time.
// It never writes.
type AvailabilityService interface {
	Check(ctx context.Context, courtName, date, timeInput string) (*AvailabilityResult, error)
}

type ReservationService interface {
	Create(ctx context.Context, req *CreateReservationRequest) (*BookingResult, error)
	ListForClient(ctx context.Context, phone string) (*ReservationListResult, error)
	// Cancel checks ownership only when phone is not empty
	Cancel(ctx context.Context, id int64, phone string) (*CancelResult, error)
	Update(ctx context.Context, id int64, req *UpdateReservationRequest) (*entity.ReservationDetails, error)
	ListAll(ctx context.Context) ([]*entity.ReservationDetails, error)
	Get(ctx context.Context, id int64) (*entity.ReservationDetails, error)
	Delete(ctx context.Context, id int64) error
}

// BlockService lets operators take a slot out of sale without a customer.
type BlockService interface {
	Toggle(ctx context.Context, req *ToggleRequest) (*ToggleResult, error)
	WeeklyGrid(ctx context.Context, date string) ([]*GridRow, error)
}

type CourtService interface {
	Create(ctx context.Context, req *CreateCourtRequest) (*entity.Court, error)
	Update(ctx context.Context, id int64, req *UpdateCourtRequest) (*entity.Court, error)
	Delete(ctx context.Context, id int64) error
}

type BusinessService interface {
	Get(ctx context.Context) (*entity.Business, error)
	Update(ctx context.Context, b *entity.Business) error
}

// HistoryService stores chat exchanges per identity.
type HistoryService interface {
	Save(ctx context.Context, user, role, message string) error
	Recent(ctx context.Context, user string) ([]*entity.ConversationMessage, error)
	Prune(ctx context.Context, user string) error
	PruneAll(ctx context.Context) (int64, error)
	Clear(ctx context.Context, user string) (int64, error)
	ListUsers(ctx context.Context, page, perPage int) (*UserPage, error)
	UserHistory(ctx context.Context, user string, limit int) (*UserHistory, error)
	Stats(ctx context.Context) (*entity.ConversationStats, error)
}

// EventPublisher delivers reservation events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event *entity.ReservationEvent) error
}

// TaskPublisher is the queue side of event delivery.
type TaskPublisher interface {
	Publish(ctx context.Context, task *Task) error
}

type Task struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	ExecuteAt  time.Time              `json:"execute_at"`
	MaxRetries int                    `json:"max_retries"`
	Attempts   int                    `json:"attempts"`
}

const TaskTypeNotifyAdmin = "notify_admin"

type AvailabilityRequest struct {
	CourtName string `json:"cancha_nombre" binding:"required"`
	Date      string `json:"fecha" binding:"required"`
	Time      string `json:"hora" binding:"required"`
}

type AvailabilityResult struct {
	Available bool   `json:"disponible"`
	Message   string `json:"mensaje"`
	CourtID   int64  `json:"cancha_id,omitempty"`
	TimeRange string `json:"hora_normalizada,omitempty"`
}

type CreateReservationRequest struct {
	CourtName  string `json:"cancha_nombre" binding:"required"`
	Date       string `json:"fecha" binding:"required"`
	Time       string `json:"hora" binding:"required"`
	ClientName string `json:"cliente_nombre"`
	Phone      string `json:"telefono"`
}

type BookingResult struct {
	ReservationID int64   `json:"reserva_id"`
	ClientID      int64   `json:"cliente_id"`
	TimeRange     string  `json:"hora"`
	Amount        float64 `json:"monto"`
	Message       string  `json:"mensaje"`
}

// UpdateReservationRequest fields left empty are not changed.
type UpdateReservationRequest struct {
	Date      string `json:"fecha"`
	Time      string `json:"hora"`
	CourtName string `json:"cancha_nombre"`
}

type ClientReservation struct {
	ID        int64   `json:"id"`
	Court     string  `json:"cancha"`
	Date      string  `json:"fecha"`
	TimeRange string  `json:"hora"`
	Amount    float64 `json:"monto"`
	State     string  `json:"estado"`
}

type ReservationListResult struct {
	Reservations []ClientReservation `json:"reservas"`
	Message      string              `json:"mensaje"`
}

type CancelResult struct {
	ReservationID int64  `json:"reserva_id"`
	Message       string `json:"mensaje"`
}

type ToggleRequest struct {
	CourtID int64  `json:"cancha_id" binding:"required"`
	Date    string `json:"fecha" binding:"required"`
	Time    string `json:"hora" binding:"required"`
}

const (
	ActionBlocked   = "bloqueada"
	ActionUnblocked = "desbloqueada"
)

type ToggleResult struct {
	Action        string `json:"accion"`
	ReservationID int64  `json:"reserva_id"`
}

// GridAvailable marks a cell with no active reservation.
const GridAvailable = "disponible"

type GridCell struct {
	CourtID   int64  `json:"cancha_id"`
	CourtName string `json:"cancha_nombre"`
	State     string `json:"estado"`
}

type GridRow struct {
	TimeRange string     `json:"hora"`
	Courts    []GridCell `json:"canchas"`
}

type CreateCourtRequest struct {
	Name        string  `json:"nombre" binding:"required"`
	Capacity    int     `json:"cantidad" binding:"required,min=1"`
	Description string  `json:"descripcion"`
	Price       float64 `json:"precio" binding:"min=0"`
	Slots       []int64 `json:"horarios"`
}

// UpdateCourtRequest applies only the fields present in the payload.
type UpdateCourtRequest struct {
	Name        *string  `json:"nombre"`
	Capacity    *int     `json:"cantidad"`
	Description *string  `json:"descripcion"`
	Price       *float64 `json:"precio"`
	Slots       *[]int64 `json:"horarios"`
}

type UserPage struct {
	Users   []*entity.ConversationUser `json:"usuarios"`
	Page    int                        `json:"page"`
	PerPage int                        `json:"per_page"`
	Total   int64                      `json:"total"`
	Pages   int64                      `json:"pages"`
}

type UserHistory struct {
	User     string                        `json:"usuario"`
	Messages []*entity.ConversationMessage `json:"mensajes"`
	Stats    *entity.UserConversationStats `json:"estadisticas"`
}
