package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mateolafalce/padelpro/internal/entity"
)

type conversationRepository struct {
	db *sql.DB
}

func NewConversationRepository(db *sql.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) Save(ctx context.Context, message *entity.ConversationMessage) error {
	if message.At.IsZero() {
		message.At = time.Now()
	}
	query := `INSERT INTO conversacion (fecha, usuario, rol, mensaje) VALUES ($1, $2, $3, $4) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, message.At, message.User, message.Role, message.Message).
		Scan(&message.ID)
	if err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}
	return nil
}

func (r *conversationRepository) Recent(ctx context.Context, user string, limit int) ([]*entity.ConversationMessage, error) {
	query := `
		SELECT id, fecha, usuario, rol, mensaje FROM (
			SELECT id, fecha, usuario, rol, mensaje
			FROM conversacion
			WHERE usuario = $1
			ORDER BY fecha DESC, id DESC
			LIMIT $2
		) last
		ORDER BY fecha, id
	`
	rows, err := r.db.QueryContext(ctx, query, user, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var messages []*entity.ConversationMessage
	for rows.Next() {
		var m entity.ConversationMessage
		if err := rows.Scan(&m.ID, &m.At, &m.User, &m.Role, &m.Message); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}

func (r *conversationRepository) Prune(ctx context.Context, user string, keep int) (int64, error) {
	query := `
		DELETE FROM conversacion
		WHERE usuario = $1 AND id NOT IN (
			SELECT id FROM conversacion WHERE usuario = $1 ORDER BY fecha DESC, id DESC LIMIT $2
		)
	`
	res, err := r.db.ExecContext(ctx, query, user, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune history: %w", err)
	}
	return res.RowsAffected()
}

func (r *conversationRepository) PruneAll(ctx context.Context, keep int) (int64, error) {
	query := `
		DELETE FROM conversacion
		WHERE id IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (PARTITION BY usuario ORDER BY fecha DESC, id DESC) AS rn
				FROM conversacion
			) ranked
			WHERE rn > $1
		)
	`
	res, err := r.db.ExecContext(ctx, query, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune histories: %w", err)
	}
	return res.RowsAffected()
}

func (r *conversationRepository) Clear(ctx context.Context, user string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM conversacion WHERE usuario = $1`, user)
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}
	return res.RowsAffected()
}

func (r *conversationRepository) ListUsers(ctx context.Context, offset, limit int) ([]*entity.ConversationUser, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT usuario) FROM conversacion`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query := `
		SELECT usuario, COUNT(id), MAX(fecha)
		FROM conversacion
		GROUP BY usuario
		ORDER BY MAX(fecha) DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*entity.ConversationUser
	for rows.Next() {
		var u entity.ConversationUser
		if err := rows.Scan(&u.User, &u.TotalMessages, &u.LastMessage); err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		u.Kind = entity.ConversationKind(u.User)
		users = append(users, &u)
	}
	return users, total, rows.Err()
}

func (r *conversationRepository) UserStats(ctx context.Context, user string) (*entity.UserConversationStats, error) {
	query := `
		SELECT
			COUNT(id),
			COUNT(id) FILTER (WHERE rol = $2),
			COUNT(id) FILTER (WHERE rol = $3),
			MIN(fecha),
			MAX(fecha)
		FROM conversacion
		WHERE usuario = $1
	`
	var stats entity.UserConversationStats
	var first, last sql.NullTime
	err := r.db.QueryRowContext(ctx, query, user, entity.RoleUser, entity.RoleAssistant).Scan(
		&stats.TotalMessages,
		&stats.UserMessages,
		&stats.AssistantMessages,
		&first,
		&last,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}
	if first.Valid {
		stats.FirstMessage = &first.Time
	}
	if last.Valid {
		stats.LastMessage = &last.Time
	}
	return &stats, nil
}

func (r *conversationRepository) Stats(ctx context.Context) (*entity.ConversationStats, error) {
	stats := entity.ConversationStats{MessagesByRole: make(map[string]int64)}

	query := `
		SELECT
			COUNT(id),
			COUNT(DISTINCT usuario),
			COUNT(DISTINCT usuario) FILTER (WHERE fecha::date = CURRENT_DATE)
		FROM conversacion
	`
	if err := r.db.QueryRowContext(ctx, query).Scan(&stats.TotalMessages, &stats.TotalUsers, &stats.ActiveUsersToday); err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT rol, COUNT(id) FROM conversacion GROUP BY rol`)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages by role: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var role string
		var count int64
		if err := rows.Scan(&role, &count); err != nil {
			return nil, fmt.Errorf("failed to scan role count: %w", err)
		}
		stats.MessagesByRole[role] = count
	}
	return &stats, rows.Err()
}
