package entity

type Court struct {
	ID          int64   `json:"id" db:"id"`
	Name        string  `json:"nombre" db:"nombre"`
	Capacity    int     `json:"cantidad" db:"cantidad"`
	Description string  `json:"descripcion" db:"descripcion"`
	Price       float64 `json:"precio" db:"precio"`
}

type CourtWithSlots struct {
	Court
	Slots []Slot `json:"horarios"`
}

// Slot is a bookable (weekday, time-range) pair shared across courts.
type Slot struct {
	ID        int64  `json:"id" db:"id"`
	Weekday   string `json:"dia" db:"dia"`
	TimeRange string `json:"hora" db:"hora"`
}
