package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mateolafalce/padelpro/config"
	"github.com/mateolafalce/padelpro/internal/entity"
	"github.com/mateolafalce/padelpro/internal/schedule"
	"github.com/sirupsen/logrus"

	_ "github.com/lib/pq"
)

func NewPostgresDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)
	return Open(connStr, cfg)
}

// Open connects with a ready-made DSN. cfg may be nil.
func Open(dsn string, cfg *config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg != nil {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.Info("Successfully connected to PostgreSQL")
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS horario (
		id SERIAL PRIMARY KEY,
		dia VARCHAR(20) NOT NULL,
		hora VARCHAR(20) NOT NULL,
		UNIQUE (dia, hora)
	)`,

	`CREATE TABLE IF NOT EXISTS cancha (
		id SERIAL PRIMARY KEY,
		nombre VARCHAR(100) NOT NULL,
		cantidad INTEGER NOT NULL DEFAULT 4,
		descripcion TEXT NOT NULL DEFAULT '',
		precio NUMERIC(12,2) NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS cancha_horario (
		id SERIAL PRIMARY KEY,
		cancha_id INTEGER NOT NULL REFERENCES cancha(id) ON DELETE CASCADE,
		horario_id INTEGER NOT NULL REFERENCES horario(id) ON DELETE CASCADE,
		UNIQUE (cancha_id, horario_id)
	)`,

	`CREATE TABLE IF NOT EXISTS cliente (
		id SERIAL PRIMARY KEY,
		nombre VARCHAR(100) NOT NULL,
		apellido VARCHAR(100) NOT NULL DEFAULT '',
		telefono VARCHAR(30) NOT NULL DEFAULT '',
		categoria INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS estado (
		id INTEGER PRIMARY KEY,
		nombre VARCHAR(20) NOT NULL UNIQUE
	)`,

	`CREATE TABLE IF NOT EXISTS reserva (
		id SERIAL PRIMARY KEY,
		fecha DATE NOT NULL,
		hora VARCHAR(20) NOT NULL,
		cancha_id INTEGER NOT NULL REFERENCES cancha(id) ON DELETE CASCADE,
		cliente_id INTEGER REFERENCES cliente(id) ON DELETE SET NULL,
		estado_id INTEGER NOT NULL REFERENCES estado(id),
		monto NUMERIC(12,2) NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS configuracion (
		id SERIAL PRIMARY KEY,
		clave VARCHAR(50) NOT NULL UNIQUE,
		valor TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS conversacion (
		id SERIAL PRIMARY KEY,
		fecha TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		usuario VARCHAR(30) NOT NULL,
		rol VARCHAR(20) NOT NULL,
		mensaje TEXT NOT NULL
	)`,

	// At most one non-cancelled reservation per court, date and time range.
	fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS uq_reserva_activa
		ON reserva(cancha_id, fecha, hora) WHERE estado_id <> %d`, entity.StateCancelledID),

	`CREATE INDEX IF NOT EXISTS idx_reserva_cliente ON reserva(cliente_id)`,
	`CREATE INDEX IF NOT EXISTS idx_reserva_fecha_hora ON reserva(fecha, hora)`,
	`CREATE INDEX IF NOT EXISTS idx_cliente_telefono ON cliente(telefono)`,
	`CREATE INDEX IF NOT EXISTS idx_conversacion_usuario_fecha ON conversacion(usuario, fecha)`,
}

// RunMigrations creates the schema and seeds reference data: the four
// reservation states and one horario row per weekday and range of grid.
func RunMigrations(ctx context.Context, db *sql.DB, grid schedule.Grid) error {
	for _, migration := range schema {
		if _, err := db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	for i, state := range entity.States {
		_, err := db.ExecContext(ctx,
			`INSERT INTO estado (id, nombre) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
			i+1, string(state))
		if err != nil {
			return fmt.Errorf("failed to seed state %s: %w", state, err)
		}
	}

	for _, day := range schedule.Weekdays {
		for _, timeRange := range grid.Ranges() {
			_, err := db.ExecContext(ctx,
				`INSERT INTO horario (dia, hora) VALUES ($1, $2) ON CONFLICT (dia, hora) DO NOTHING`,
				day, timeRange)
			if err != nil {
				return fmt.Errorf("failed to seed slot %s %s: %w", day, timeRange, err)
			}
		}
	}

	logrus.WithField("grid", grid.Name()).Info("Database migrations completed successfully")
	return nil
}
