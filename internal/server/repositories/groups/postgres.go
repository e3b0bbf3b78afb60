// Package groups owns group rows and the user-group membership relation.
package groups

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

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

func (r *PostgresRepository) Create(ctx context.Context, name string, createdBy int64) (*models.Group, error) {
	query :=
		`INSERT INTO groups (name, created_by)
		 VALUES ($1, $2)
		 RETURNING id, created_at, updated_at`

	g := &models.Group{Name: name, CreatedBy: &createdBy, Members: []models.Member{}}
	err := r.db.QueryRowContext(ctx, query, name, createdBy).Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return g, nil
}

// AddMembers inserts membership rows in one statement. Pairs that already
// exist are left alone. A missing user or group yields common.ErrorNotFound.
func (r *PostgresRepository) AddMembers(ctx context.Context, groupID int64, userIDs ...int64) error {
	if len(userIDs) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO group_members (group_id, user_id) VALUES `)
	args := make([]any, 0, len(userIDs)+1)
	args = append(args, groupID)
	for i, id := range userIDs {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "($1, $%d)", i+2)
		args = append(args, id)
	}
	sb.WriteString(` ON CONFLICT (group_id, user_id) DO NOTHING`)

	if _, err := r.db.ExecContext(ctx, sb.String(), args...); err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) RemoveMember(ctx context.Context, groupID, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM group_members WHERE group_id = $1 AND user_id = $2`, groupID, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func (r *PostgresRepository) IsMember(ctx context.Context, groupID, userID int64) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2)`,
		groupID, userID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}

func (r *PostgresRepository) Get(ctx context.Context, groupID int64) (*models.Group, error) {
	query :=
		`SELECT id, name, created_by, created_at, updated_at FROM groups
		 WHERE id = $1`

	g := &models.Group{Members: []models.Member{}}
	var createdBy sql.NullInt64
	err := r.db.QueryRowContext(ctx, query, groupID).Scan(&g.ID, &g.Name, &createdBy, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	g.CreatedBy = nullableID(createdBy)

	rows, err := r.db.QueryContext(ctx,
		`SELECT u.id, u.username, u.role, u.status FROM group_members gm
		 JOIN users u ON u.id = gm.user_id
		 WHERE gm.group_id = $1
		 ORDER BY u.id`, groupID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.ID, &m.UserName, &m.Role, &m.Status); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		g.Members = append(g.Members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return g, nil
}

// ListForUser returns every group the user belongs to with the full member
// list of each, newest group first.
func (r *PostgresRepository) ListForUser(ctx context.Context, userID int64) ([]*models.Group, error) {
	query :=
		`SELECT g.id, g.name, g.created_by, g.created_at, g.updated_at,
		        u.id, u.username, u.role, u.status
		 FROM groups g
		 LEFT JOIN group_members gm ON gm.group_id = g.id
		 LEFT JOIN users u ON u.id = gm.user_id
		 WHERE g.id IN (SELECT group_id FROM group_members WHERE user_id = $1)
		 ORDER BY g.created_at DESC, g.id DESC, u.id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Group, 0)
	var current *models.Group
	for rows.Next() {
		var (
			g         models.Group
			createdBy sql.NullInt64
			memberID  sql.NullInt64
			username  sql.NullString
			role      sql.NullString
			status    sql.NullString
		)
		if err := rows.Scan(&g.ID, &g.Name, &createdBy, &g.CreatedAt, &g.UpdatedAt,
			&memberID, &username, &role, &status); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}

		if current == nil || current.ID != g.ID {
			g.CreatedBy = nullableID(createdBy)
			g.Members = []models.Member{}
			current = &g
			result = append(result, current)
		}
		if memberID.Valid {
			current.Members = append(current.Members, models.Member{
				ID:       memberID.Int64,
				UserName: username.String,
				Role:     models.Role(role.String),
				Status:   models.Status(status.String),
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Rename(ctx context.Context, groupID int64, name string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE groups SET name = $2, updated_at = clock_timestamp() WHERE id = $1`, groupID, name)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

// Delete removes the group; memberships and messages go with it through
// ON DELETE CASCADE.
func (r *PostgresRepository) Delete(ctx context.Context, groupID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, groupID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM groups`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func nullableID(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	id := v.Int64
	return &id
}
