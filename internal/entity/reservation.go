package entity

import "time"

type ReservationState string

const (
	StateStarted   ReservationState = "iniciada"
	StateExecuted  ReservationState = "ejecutada"
	StateCancelled ReservationState = "cancelada"
	StateBlocked   ReservationState = "bloqueada"
)

// Seeded estado ids. They are fixed so storage can index on the cancelled id.
const (
	StateStartedID   int64 = 1
	StateExecutedID  int64 = 2
	StateCancelledID int64 = 3
	StateBlockedID   int64 = 4
)

// States lists the reference rows seeded into estado, in id order.
var States = []ReservationState{StateStarted, StateExecuted, StateCancelled, StateBlocked}

// Occupies reports whether a reservation in this state holds its slot.
func (s ReservationState) Occupies() bool {
	return s != StateCancelled
}

type State struct {
	ID   int64            `json:"id" db:"id"`
	Name ReservationState `json:"nombre" db:"nombre"`
}

type Reservation struct {
	ID        int64   `json:"id" db:"id"`
	Date      Date    `json:"fecha" db:"fecha"`
	TimeRange string  `json:"hora" db:"hora"`
	CourtID   int64   `json:"cancha_id" db:"cancha_id"`
	ClientID  int64   `json:"cliente_id" db:"cliente_id"`
	StateID   int64   `json:"estado_id" db:"estado_id"`
	Amount    float64 `json:"monto" db:"monto"`
}

// ReservationDetails is a reservation joined with its court, client and state names.
// Missing references come back empty.
type ReservationDetails struct {
	Reservation
	CourtName   string           `json:"cancha"`
	ClientName  string           `json:"cliente"`
	ClientPhone string           `json:"telefono"`
	State       ReservationState `json:"estado"`
}

type ReservationEventType string

const (
	EventReservationCreated   ReservationEventType = "reserva.creada"
	EventReservationCancelled ReservationEventType = "reserva.cancelada"
	EventSlotBlocked          ReservationEventType = "horario.bloqueado"
	EventSlotUnblocked        ReservationEventType = "horario.desbloqueado"
)

type ReservationEvent struct {
	ID            string               `json:"id"`
	Type          ReservationEventType `json:"type"`
	ReservationID int64                `json:"reserva_id"`
	Court         string               `json:"cancha"`
	Date          string               `json:"fecha"`
	TimeRange     string               `json:"hora"`
	Phone         string               `json:"telefono,omitempty"`
	Amount        float64              `json:"monto"`
	At            time.Time            `json:"at"`
}
