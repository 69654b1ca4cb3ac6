package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mateolafalce/padelpro/internal/entity"
)

type reservationRepository struct {
	db *sql.DB
}

func NewReservationRepository(db *sql.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

const detailsQuery = `
	SELECT
		r.id, r.fecha, r.hora, r.cancha_id, COALESCE(r.cliente_id, 0), r.estado_id, r.monto,
		COALESCE(c.nombre, ''),
		COALESCE(TRIM(cl.nombre || ' ' || cl.apellido), ''),
		COALESCE(cl.telefono, ''),
		COALESCE(e.nombre, '')
	FROM reserva r
	LEFT JOIN cancha c ON c.id = r.cancha_id
	LEFT JOIN cliente cl ON cl.id = r.cliente_id
	LEFT JOIN estado e ON e.id = r.estado_id
`

// Create relies on uq_reserva_activa so two concurrent attempts for one slot
// cannot both commit.
func (r *reservationRepository) Create(ctx context.Context, reservation *entity.Reservation) error {
	query := `
		INSERT INTO reserva (fecha, hora, cancha_id, cliente_id, estado_id, monto)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		reservation.Date,
		reservation.TimeRange,
		reservation.CourtID,
		reservation.ClientID,
		reservation.StateID,
		reservation.Amount,
	).Scan(&reservation.ID)
	if err != nil {
		return mapWriteError("create reservation", err)
	}
	return nil
}

func (r *reservationRepository) GetByID(ctx context.Context, id int64) (*entity.Reservation, error) {
	query := `
		SELECT id, fecha, hora, cancha_id, COALESCE(cliente_id, 0), estado_id, monto
		FROM reserva
		WHERE id = $1
	`
	var res entity.Reservation
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&res.ID,
		&res.Date,
		&res.TimeRange,
		&res.CourtID,
		&res.ClientID,
		&res.StateID,
		&res.Amount,
	)
	if err != nil {
		return nil, notFoundOr(err, "reservation")
	}
	return &res, nil
}

func (r *reservationRepository) GetDetails(ctx context.Context, id int64) (*entity.ReservationDetails, error) {
	details, err := scanDetails(r.db.QueryRowContext(ctx, detailsQuery+` WHERE r.id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err, "reservation")
	}
	return details, nil
}

func (r *reservationRepository) FindActive(ctx context.Context, courtID int64, date entity.Date, timeRange string) (*entity.ReservationDetails, error) {
	query := detailsQuery + `
		WHERE r.cancha_id = $1 AND r.fecha = $2 AND r.hora = $3 AND r.estado_id <> $4
		ORDER BY r.id
		LIMIT 1
	`
	details, err := scanDetails(r.db.QueryRowContext(ctx, query, courtID, date, timeRange, entity.StateCancelledID))
	if err != nil {
		return nil, notFoundOr(err, "reservation")
	}
	return details, nil
}

func (r *reservationRepository) ListByClientAndState(ctx context.Context, clientID, stateID int64) ([]*entity.ReservationDetails, error) {
	query := detailsQuery + `
		WHERE r.cliente_id = $1 AND r.estado_id = $2
		ORDER BY r.fecha, r.hora
	`
	return r.list(ctx, query, clientID, stateID)
}

func (r *reservationRepository) ListActiveByDate(ctx context.Context, date entity.Date) ([]*entity.ReservationDetails, error) {
	query := detailsQuery + `
		WHERE r.fecha = $1 AND r.estado_id <> $2
		ORDER BY r.hora, r.cancha_id
	`
	return r.list(ctx, query, date, entity.StateCancelledID)
}

func (r *reservationRepository) ListAll(ctx context.Context) ([]*entity.ReservationDetails, error) {
	return r.list(ctx, detailsQuery+` ORDER BY r.fecha, r.hora, r.id`)
}

func (r *reservationRepository) UpdateState(ctx context.Context, id, stateID int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reserva SET estado_id = $1 WHERE id = $2 AND estado_id <> $1`, stateID, id)
	if err != nil {
		return mapWriteError("update reservation state", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM reserva WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check reservation: %w", err)
	}
	if !exists {
		return fmt.Errorf("reservation: %w", entity.ErrNotFound)
	}
	return ErrStateUnchanged
}

func (r *reservationRepository) Update(ctx context.Context, reservation *entity.Reservation) error {
	query := `
		UPDATE reserva
		SET fecha = $1, hora = $2, cancha_id = $3, estado_id = $4, monto = $5
		WHERE id = $6
	`
	res, err := r.db.ExecContext(ctx, query,
		reservation.Date,
		reservation.TimeRange,
		reservation.CourtID,
		reservation.StateID,
		reservation.Amount,
		reservation.ID,
	)
	if err != nil {
		return mapWriteError("update reservation", err)
	}
	return checkAffected(res, "reservation")
}

func (r *reservationRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reserva WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete reservation: %w", err)
	}
	return checkAffected(res, "reservation")
}

func (r *reservationRepository) list(ctx context.Context, query string, args ...interface{}) ([]*entity.ReservationDetails, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get reservations: %w", err)
	}
	defer rows.Close()

	var out []*entity.ReservationDetails
	for rows.Next() {
		details, err := scanDetails(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		out = append(out, details)
	}
	return out, rows.Err()
}

func scanDetails(row rowScanner) (*entity.ReservationDetails, error) {
	var d entity.ReservationDetails
	err := row.Scan(
		&d.ID,
		&d.Date,
		&d.TimeRange,
		&d.CourtID,
		&d.ClientID,
		&d.StateID,
		&d.Amount,
		&d.CourtName,
		&d.ClientName,
		&d.ClientPhone,
		&d.State,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
