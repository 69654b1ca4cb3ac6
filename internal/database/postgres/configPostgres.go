package repository

import (
	"context"
	"database/sql"
	"fmt"
)

type configRepository struct {
	db *sql.DB
}

func NewConfigRepository(db *sql.DB) ConfigRepository {
	return &configRepository{db: db}
}

func (r *configRepository) GetAll(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT clave, valor FROM configuracion`)
	if err != nil {
		return nil, fmt.Errorf("failed to get configuration: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan configuration: %w", err)
		}
		values[key] = value
	}
	return values, rows.Err()
}

// Upsert writes every key in one transaction.
func (r *configRepository) Upsert(ctx context.Context, values map[string]string) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO configuracion (clave, valor) VALUES ($1, $2)
		ON CONFLICT (clave) DO UPDATE SET valor = EXCLUDED.valor
	`
	for key, value := range values {
		if _, err := tx.ExecContext(ctx, query, key, value); err != nil {
			return fmt.Errorf("failed to upsert %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
