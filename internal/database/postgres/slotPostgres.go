package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/mateolafalce/padelpro/internal/entity"
	"github.com/mateolafalce/padelpro/internal/schedule"
)

type slotRepository struct {
	db *sql.DB
}

func NewSlotRepository(db *sql.DB) SlotRepository {
	return &slotRepository{db: db}
}

// Weekdays sort Monday first, ranges sort as zero padded strings.
const slotOrder = `ORDER BY array_position($1::text[], h.dia::text), h.hora`

func (r *slotRepository) GetAll(ctx context.Context) ([]*entity.Slot, error) {
	query := `SELECT h.id, h.dia, h.hora FROM horario h ` + slotOrder
	return r.query(ctx, query, pq.Array(schedule.Weekdays))
}

func (r *slotRepository) GetByCourt(ctx context.Context, courtID int64) ([]*entity.Slot, error) {
	query := `
		SELECT h.id, h.dia, h.hora
		FROM horario h
		JOIN cancha_horario ch ON ch.horario_id = h.id
		WHERE ch.cancha_id = $2
	` + slotOrder
	return r.query(ctx, query, pq.Array(schedule.Weekdays), courtID)
}

func (r *slotRepository) GetByWeekday(ctx context.Context, weekday string) ([]*entity.Slot, error) {
	query := `SELECT id, dia, hora FROM horario WHERE dia = $1 ORDER BY hora`
	return r.query(ctx, query, weekday)
}

func (r *slotRepository) query(ctx context.Context, query string, args ...interface{}) ([]*entity.Slot, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get slots: %w", err)
	}
	defer rows.Close()

	var slots []*entity.Slot
	for rows.Next() {
		var slot entity.Slot
		if err := rows.Scan(&slot.ID, &slot.Weekday, &slot.TimeRange); err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		slots = append(slots, &slot)
	}
	return slots, rows.Err()
}
