package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mateolafalce/padelpro/internal/entity"
)

type clientRepository struct {
	db *sql.DB
}

func NewClientRepository(db *sql.DB) ClientRepository {
	return &clientRepository{db: db}
}

const clientColumns = `id, nombre, apellido, telefono, categoria`

func (r *clientRepository) Create(ctx context.Context, client *entity.Client) error {
	query := `
		INSERT INTO cliente (nombre, apellido, telefono, categoria)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		client.FirstName,
		client.LastName,
		client.Phone,
		client.Category,
	).Scan(&client.ID)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

func (r *clientRepository) GetByID(ctx context.Context, id int64) (*entity.Client, error) {
	return r.getOne(ctx, `SELECT `+clientColumns+` FROM cliente WHERE id = $1`, id)
}

func (r *clientRepository) GetByPhone(ctx context.Context, phone string) (*entity.Client, error) {
	return r.getOne(ctx, `SELECT `+clientColumns+` FROM cliente WHERE telefono = $1 ORDER BY id LIMIT 1`, phone)
}

func (r *clientRepository) GetByName(ctx context.Context, firstName, lastName string) (*entity.Client, error) {
	return r.getOne(ctx,
		`SELECT `+clientColumns+` FROM cliente WHERE nombre = $1 AND apellido = $2 ORDER BY id LIMIT 1`,
		firstName, lastName)
}

func (r *clientRepository) GetByFirstName(ctx context.Context, firstName string) (*entity.Client, error) {
	return r.getOne(ctx, `SELECT `+clientColumns+` FROM cliente WHERE nombre = $1 ORDER BY id LIMIT 1`, firstName)
}

func (r *clientRepository) Update(ctx context.Context, client *entity.Client) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE cliente SET nombre = $1, apellido = $2, telefono = $3, categoria = $4 WHERE id = $5`,
		client.FirstName, client.LastName, client.Phone, client.Category, client.ID)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	return checkAffected(res, "client")
}

func (r *clientRepository) getOne(ctx context.Context, query string, args ...interface{}) (*entity.Client, error) {
	var client entity.Client
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&client.ID,
		&client.FirstName,
		&client.LastName,
		&client.Phone,
		&client.Category,
	)
	if err != nil {
		return nil, notFoundOr(err, "client")
	}
	return &client, nil
}
