package chat

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"chatline/pkg/errors"
	"chatline/pkg/models"
)

type Repository interface {
	Create(ctx context.Context, msg models.Message) (models.Message, error)
	GetByID(ctx context.Context, id int64) (models.Message, error)
	List(ctx context.Context, groupID int64, limit, offset int) ([]models.Message, error)
	Update(ctx context.Context, id int64, content string) (models.Message, error)
	Delete(ctx context.Context, id int64) (models.Message, error)
	Censor(ctx context.Context, id int64, content string) (bool, error)
}

type PostgresRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, msg models.Message) (models.Message, error) {
	now := time.Now().UTC()
	msg.CreatedAt = now
	msg.UpdatedAt = now

	query := `
		INSERT INTO messages (group_id, sender_id, sender_username, sender_bg_color, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		msg.GroupID,
		msg.SenderID,
		msg.SenderUsername,
		msg.SenderBgColor,
		msg.Content,
		msg.CreatedAt,
		msg.UpdatedAt,
	).Scan(&msg.ID)
	if err != nil {
		return models.Message{}, fmt.Errorf("failed to insert message: %w", err)
	}

	return msg, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (models.Message, error) {
	query := `
		SELECT id, group_id, sender_id, sender_username, sender_bg_color, content, created_at, updated_at
		FROM messages
		WHERE id = $1
	`

	var msg models.Message
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&msg.ID,
		&msg.GroupID,
		&msg.SenderID,
		&msg.SenderUsername,
		&msg.SenderBgColor,
		&msg.Content,
		&msg.CreatedAt,
		&msg.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return models.Message{}, errors.ErrNotFound.WithDetail("id", id)
	}
	if err != nil {
		return models.Message{}, fmt.Errorf("failed to get message: %w", err)
	}

	return msg, nil
}

func (r *PostgresRepository) List(ctx context.Context, groupID int64, limit, offset int) ([]models.Message, error) {
	query := `
		SELECT id, group_id, sender_id, sender_username, sender_bg_color, content, created_at, updated_at
		FROM messages
		WHERE group_id = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, groupID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.GroupID,
			&msg.SenderID,
			&msg.SenderUsername,
			&msg.SenderBgColor,
			&msg.Content,
			&msg.CreatedAt,
			&msg.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return messages, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id int64, content string) (models.Message, error) {
	query := `
		UPDATE messages
		SET content = $2, updated_at = $3
		WHERE id = $1
		RETURNING id, group_id, sender_id, sender_username, sender_bg_color, content, created_at, updated_at
	`

	var msg models.Message
	err := r.db.QueryRowContext(ctx, query, id, content, time.Now().UTC()).Scan(
		&msg.ID,
		&msg.GroupID,
		&msg.SenderID,
		&msg.SenderUsername,
		&msg.SenderBgColor,
		&msg.Content,
		&msg.CreatedAt,
		&msg.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return models.Message{}, errors.ErrNotFound.WithDetail("id", id)
	}
	if err != nil {
		return models.Message{}, fmt.Errorf("failed to update message: %w", err)
	}

	return msg, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) (models.Message, error) {
	query := `
		DELETE FROM messages
		WHERE id = $1
		RETURNING id, group_id, sender_id, sender_username, sender_bg_color, content, created_at, updated_at
	`

	var msg models.Message
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&msg.ID,
		&msg.GroupID,
		&msg.SenderID,
		&msg.SenderUsername,
		&msg.SenderBgColor,
		&msg.Content,
		&msg.CreatedAt,
		&msg.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return models.Message{}, errors.ErrNotFound.WithDetail("id", id)
	}
	if err != nil {
		return models.Message{}, fmt.Errorf("failed to delete message: %w", err)
	}

	return msg, nil
}

// Censor overwrites the content of a message. It reports false when the
// message no longer exists, which the caller treats as a no-op rather than
// an error.
func (r *PostgresRepository) Censor(ctx context.Context, id int64, content string) (bool, error) {
	query := `
		UPDATE messages
		SET content = $2, updated_at = $3
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, content, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("failed to censor message: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return affected > 0, nil
}
