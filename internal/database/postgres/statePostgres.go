package repository

import (
	"context"
	"database/sql"

	"github.com/mateolafalce/padelpro/internal/entity"
)

type stateRepository struct {
	db *sql.DB
}

func NewStateRepository(db *sql.DB) StateRepository {
	return &stateRepository{db: db}
}

func (r *stateRepository) GetByName(ctx context.Context, name entity.ReservationState) (*entity.State, error) {
	var state entity.State
	err := r.db.QueryRowContext(ctx, `SELECT id, nombre FROM estado WHERE nombre = $1`, string(name)).
		Scan(&state.ID, &state.Name)
	if err != nil {
		return nil, notFoundOr(err, "state "+string(name))
	}
	return &state, nil
}

func (r *stateRepository) GetByID(ctx context.Context, id int64) (*entity.State, error) {
	var state entity.State
	err := r.db.QueryRowContext(ctx, `SELECT id, nombre FROM estado WHERE id = $1`, id).
		Scan(&state.ID, &state.Name)
	if err != nil {
		return nil, notFoundOr(err, "state")
	}
	return &state, nil
}
