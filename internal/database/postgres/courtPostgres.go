package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mateolafalce/padelpro/internal/entity"
)

type courtRepository struct {
	db *sql.DB
}

func NewCourtRepository(db *sql.DB) CourtRepository {
	return &courtRepository{db: db}
}

func (r *courtRepository) Create(ctx context.Context, court *entity.Court, slotIDs []int64) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO cancha (nombre, cantidad, descripcion, precio)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err = tx.QueryRowContext(ctx, query,
		court.Name,
		court.Capacity,
		court.Description,
		court.Price,
	).Scan(&court.ID)
	if err != nil {
		return fmt.Errorf("failed to create court: %w", err)
	}

	if err := linkSlots(ctx, tx, court.ID, slotIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func linkSlots(ctx context.Context, tx *sql.Tx, courtID int64, slotIDs []int64) error {
	for _, slotID := range slotIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO cancha_horario (cancha_id, horario_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			courtID, slotID)
		if err != nil {
			return fmt.Errorf("failed to link slot %d: %w", slotID, err)
		}
	}
	return nil
}

func (r *courtRepository) GetByID(ctx context.Context, id int64) (*entity.Court, error) {
	query := `SELECT id, nombre, cantidad, descripcion, precio FROM cancha WHERE id = $1`
	court, err := scanCourt(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err, "court")
	}
	return court, nil
}

func (r *courtRepository) GetByName(ctx context.Context, name string) (*entity.Court, error) {
	query := `SELECT id, nombre, cantidad, descripcion, precio FROM cancha WHERE nombre = $1 ORDER BY id LIMIT 1`
	court, err := scanCourt(r.db.QueryRowContext(ctx, query, name))
	if err != nil {
		return nil, notFoundOr(err, "court")
	}
	return court, nil
}

func (r *courtRepository) GetAll(ctx context.Context) ([]*entity.Court, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, nombre, cantidad, descripcion, precio FROM cancha ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get courts: %w", err)
	}
	defer rows.Close()

	var courts []*entity.Court
	for rows.Next() {
		court, err := scanCourt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan court: %w", err)
		}
		courts = append(courts, court)
	}
	return courts, rows.Err()
}

func (r *courtRepository) Update(ctx context.Context, court *entity.Court, slotIDs []int64) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE cancha SET nombre = $1, cantidad = $2, descripcion = $3, precio = $4 WHERE id = $5`,
		court.Name, court.Capacity, court.Description, court.Price, court.ID)
	if err != nil {
		return fmt.Errorf("failed to update court: %w", err)
	}
	if err := checkAffected(res, "court"); err != nil {
		return err
	}

	if slotIDs != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM cancha_horario WHERE cancha_id = $1`, court.ID); err != nil {
			return fmt.Errorf("failed to clear court slots: %w", err)
		}
		if err := linkSlots(ctx, tx, court.ID, slotIDs); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Delete removes the court together with its slot links and reservations.
func (r *courtRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cancha WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete court: %w", err)
	}
	return checkAffected(res, "court")
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCourt(row rowScanner) (*entity.Court, error) {
	var court entity.Court
	if err := row.Scan(&court.ID, &court.Name, &court.Capacity, &court.Description, &court.Price); err != nil {
		return nil, err
	}
	return &court, nil
}
