package moderation

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"chatline/pkg/errors"
)

type Repository interface {
	Upsert(ctx context.Context, record Record) (Record, error)
	GetByMessageID(ctx context.Context, messageID int64) (Record, error)
	DeleteByMessageID(ctx context.Context, messageID int64) error
	ListRecords(ctx context.Context, limit, offset int) ([]Record, error)
}

type TermRepository interface {
	ListEnabledTerms(ctx context.Context) ([]string, error)
	ListTerms(ctx context.Context) ([]Term, error)
	CreateTerm(ctx context.Context, term string, enabled bool) (Term, error)
	DeleteTerm(ctx context.Context, id string) error
}

type PostgresRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert inserts a moderation record, or refreshes the existing row when the
// message was already recorded. The message_id unique constraint is what
// keeps re-scans of the same message from piling up rows.
func (r *PostgresRepository) Upsert(ctx context.Context, record Record) (Record, error) {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	query := `
		INSERT INTO moderation_records (
			id, message_id, group_id, sender_id, sender_username,
			sender_bg_color, content, invalid_terms, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (message_id) DO UPDATE SET
			content = EXCLUDED.content,
			invalid_terms = EXCLUDED.invalid_terms,
			sender_username = EXCLUDED.sender_username,
			sender_bg_color = EXCLUDED.sender_bg_color,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		record.ID,
		record.MessageID,
		record.GroupID,
		record.SenderID,
		record.SenderUsername,
		record.SenderBgColor,
		record.Content,
		pq.Array(record.InvalidTerms),
		record.CreatedAt,
		record.UpdatedAt,
	).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		return Record{}, fmt.Errorf("failed to upsert moderation record: %w", err)
	}

	return record, nil
}

func (r *PostgresRepository) GetByMessageID(ctx context.Context, messageID int64) (Record, error) {
	query := `
		SELECT id, message_id, group_id, sender_id, sender_username,
		       sender_bg_color, content, invalid_terms, created_at, updated_at
		FROM moderation_records
		WHERE message_id = $1
	`

	var record Record
	err := r.db.QueryRowContext(ctx, query, messageID).Scan(
		&record.ID,
		&record.MessageID,
		&record.GroupID,
		&record.SenderID,
		&record.SenderUsername,
		&record.SenderBgColor,
		&record.Content,
		pq.Array(&record.InvalidTerms),
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return Record{}, errors.ErrNotFound.WithDetail("message_id", messageID)
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to get moderation record: %w", err)
	}

	return record, nil
}

// DeleteByMessageID removes the record for a deleted message. Deleting a
// message that was never recorded is a no-op.
func (r *PostgresRepository) DeleteByMessageID(ctx context.Context, messageID int64) error {
	query := `DELETE FROM moderation_records WHERE message_id = $1`

	if _, err := r.db.ExecContext(ctx, query, messageID); err != nil {
		return fmt.Errorf("failed to delete moderation record: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListRecords(ctx context.Context, limit, offset int) ([]Record, error) {
	query := `
		SELECT id, message_id, group_id, sender_id, sender_username,
		       sender_bg_color, content, invalid_terms, created_at, updated_at
		FROM moderation_records
		ORDER BY updated_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query moderation records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var record Record
		if err := rows.Scan(
			&record.ID,
			&record.MessageID,
			&record.GroupID,
			&record.SenderID,
			&record.SenderUsername,
			&record.SenderBgColor,
			&record.Content,
			pq.Array(&record.InvalidTerms),
			&record.CreatedAt,
			&record.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan moderation record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return records, nil
}

func (r *PostgresRepository) ListEnabledTerms(ctx context.Context) ([]string, error) {
	query := `
		SELECT term
		FROM forbidden_terms
		WHERE enabled = true
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query forbidden terms: %w", err)
	}
	defer rows.Close()

	var terms []string
	for rows.Next() {
		var term string
		if err := rows.Scan(&term); err != nil {
			return nil, fmt.Errorf("failed to scan forbidden term: %w", err)
		}
		terms = append(terms, term)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return terms, nil
}

func (r *PostgresRepository) ListTerms(ctx context.Context) ([]Term, error) {
	query := `
		SELECT id, term, enabled, created_at
		FROM forbidden_terms
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query forbidden terms: %w", err)
	}
	defer rows.Close()

	var terms []Term
	for rows.Next() {
		var t Term
		if err := rows.Scan(&t.ID, &t.Term, &t.Enabled, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan forbidden term: %w", err)
		}
		terms = append(terms, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return terms, nil
}

func (r *PostgresRepository) CreateTerm(ctx context.Context, term string, enabled bool) (Term, error) {
	t := Term{
		ID:        uuid.New().String(),
		Term:      term,
		Enabled:   enabled,
		CreatedAt: time.Now().UTC(),
	}

	query := `
		INSERT INTO forbidden_terms (id, term, enabled, created_at)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := r.db.ExecContext(ctx, query, t.ID, t.Term, t.Enabled, t.CreatedAt); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return Term{}, errors.ErrConflict.WithDetail("term", term)
		}
		return Term{}, fmt.Errorf("failed to create forbidden term: %w", err)
	}

	return t, nil
}

func (r *PostgresRepository) DeleteTerm(ctx context.Context, id string) error {
	query := `DELETE FROM forbidden_terms WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete forbidden term: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return errors.ErrNotFound.WithDetail("id", id)
	}

	return nil
}
