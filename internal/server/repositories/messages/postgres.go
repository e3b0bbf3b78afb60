// Package messages stores the per-group ciphertext log. The server never
// interprets encrypted_text.
package messages

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/defcomm/internal/common"
	"github.com/dmitrijs2005/defcomm/internal/dbx"
	"github.com/dmitrijs2005/defcomm/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create appends a message and returns it with the sender embedded.
func (r *PostgresRepository) Create(ctx context.Context, groupID, senderID int64, encryptedText string) (*models.Message, error) {
	query :=
		`WITH ins AS (
		     INSERT INTO messages (group_id, sender_id, encrypted_text)
		     VALUES ($1, $2, $3)
		     RETURNING id, group_id, sender_id, encrypted_text, created_at
		 )
		 SELECT ins.id, ins.group_id, ins.sender_id, u.username, ins.encrypted_text, ins.created_at
		 FROM ins
		 LEFT JOIN users u ON u.id = ins.sender_id`

	m, err := scanMessage(r.db.QueryRowContext(ctx, query, groupID, senderID, encryptedText))
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

// ListByGroup returns a window of the group's log in chronological order.
func (r *PostgresRepository) ListByGroup(ctx context.Context, groupID int64, limit, offset int) ([]*models.Message, error) {
	query :=
		`SELECT m.id, m.group_id, m.sender_id, u.username, m.encrypted_text, m.created_at
		 FROM messages m
		 LEFT JOIN users u ON u.id = m.sender_id
		 WHERE m.group_id = $1
		 ORDER BY m.created_at ASC, m.id ASC
		 LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, groupID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Message, 0, limit)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) CountByGroup(ctx context.Context, groupID int64) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages WHERE group_id = $1`, groupID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// Recent lists metadata of the latest messages across all groups, newest
// first. encrypted_text is never selected.
func (r *PostgresRepository) Recent(ctx context.Context, limit int) ([]*models.MessageMeta, error) {
	query :=
		`SELECT m.id, m.sender_id, u.username, m.group_id, g.name, m.created_at
		 FROM messages m
		 JOIN groups g ON g.id = m.group_id
		 LEFT JOIN users u ON u.id = m.sender_id
		 ORDER BY m.created_at DESC, m.id DESC
		 LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.MessageMeta, 0, limit)
	for rows.Next() {
		var (
			meta     models.MessageMeta
			senderID sql.NullInt64
			name     sql.NullString
		)
		if err := rows.Scan(&meta.ID, &senderID, &name, &meta.GroupID, &meta.GroupName, &meta.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if senderID.Valid {
			id := senderID.Int64
			meta.SenderID = &id
		}
		meta.SenderName = name.String
		result = append(result, &meta)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (*models.Message, error) {
	var (
		m        models.Message
		senderID sql.NullInt64
		name     sql.NullString
	)
	if err := row.Scan(&m.ID, &m.GroupID, &senderID, &name, &m.EncryptedText, &m.CreatedAt); err != nil {
		return nil, err
	}
	if senderID.Valid {
		id := senderID.Int64
		m.SenderID = &id
		m.Sender = &models.Sender{ID: id, UserName: name.String}
	}
	return &m, nil
}
