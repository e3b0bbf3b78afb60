package groups

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/defcomm/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+groups\s*\(name,\s*created_by\).*RETURNING\s+id,\s*created_at,\s*updated_at$`).
		WithArgs("alpha", int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(10), now, now))

	g, err := repo.Create(context.Background(), "alpha", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(10), g.ID)
	require.NotNil(t, g.CreatedBy)
	assert.Equal(t, int64(1), *g.CreatedBy)
	assert.NotNil(t, g.Members)
}

func TestAddMembers_BulkInsertIgnoresExisting(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+group_members\s*\(group_id,\s*user_id\)\s+VALUES\s+\(\$1,\s*\$2\),\s*\(\$1,\s*\$3\),\s*\(\$1,\s*\$4\)\s+ON\s+CONFLICT\s+\(group_id,\s*user_id\)\s+DO\s+NOTHING$`).
		WithArgs(int64(10), int64(2), int64(3), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, repo.AddMembers(context.Background(), 10, 2, 3, 1))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddMembers_NoIDsIsNoop(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	require.NoError(t, repo.AddMembers(context.Background(), 10))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddMembers_UnknownUser(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`INSERT\s+INTO\s+group_members`).WillReturnError(&pgconn.PgError{Code: "23503"})

	err := repo.AddMembers(context.Background(), 10, 99)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestRemoveMember(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`^DELETE\s+FROM\s+group_members\s+WHERE\s+group_id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2$`).
		WithArgs(int64(10), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE\s+FROM\s+group_members`).
		WithArgs(int64(10), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.RemoveMember(context.Background(), 10, 2))
	assert.ErrorIs(t, repo.RemoveMember(context.Background(), 10, 5), common.ErrorNotFound)
}

func TestIsMember(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`SELECT\s+EXISTS\s+\(SELECT\s+1\s+FROM\s+group_members`).
		WithArgs(int64(10), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT\s+EXISTS`).
		WithArgs(int64(10), int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := repo.IsMember(context.Background(), 10, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.IsMember(context.Background(), 10, 3)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGet_WithMembers(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)FROM\s+groups\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_by", "created_at", "updated_at"}).
			AddRow(int64(10), "alpha", nil, now, now))
	mock.ExpectQuery(`(?s)FROM\s+group_members\s+gm\s+JOIN\s+users\s+u`).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "role", "status"}).
			AddRow(int64(1), "hq", "hq", "approved").
			AddRow(int64(2), "bob", "user", "pending"))

	g, err := repo.Get(context.Background(), 10)
	require.NoError(t, err)
	assert.Nil(t, g.CreatedBy)
	require.Len(t, g.Members, 2)
	assert.Equal(t, "bob", g.Members[1].UserName)
}

func TestGet_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+groups`).WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_by", "created_at", "updated_at"}))

	_, err := repo.Get(context.Background(), 11)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestListForUser_GroupsRowsByGroup(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	newer := time.Now()
	older := newer.Add(-time.Hour)

	cols := []string{"id", "name", "created_by", "created_at", "updated_at", "id", "username", "role", "status"}
	mock.ExpectQuery(`(?s)FROM\s+groups\s+g.*WHERE\s+g\.id\s+IN.*ORDER\s+BY\s+g\.created_at\s+DESC`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(int64(20), "newer", int64(1), newer, newer, int64(1), "hq", "hq", "approved").
			AddRow(int64(20), "newer", int64(1), newer, newer, int64(2), "bob", "user", "approved").
			AddRow(int64(10), "older", int64(1), older, older, int64(2), "bob", "user", "approved"))

	got, err := repo.ListForUser(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "newer", got[0].Name)
	assert.Len(t, got[0].Members, 2)
	assert.Equal(t, "older", got[1].Name)
	assert.Len(t, got[1].Members, 1)
}

func TestRenameAndDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`^UPDATE\s+groups\s+SET\s+name\s*=\s*\$2`).WithArgs(int64(10), "beta").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`^UPDATE\s+groups`).WithArgs(int64(11), "beta").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`^DELETE\s+FROM\s+groups\s+WHERE\s+id\s*=\s*\$1$`).WithArgs(int64(10)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`^DELETE\s+FROM\s+groups`).WithArgs(int64(11)).WillReturnError(errors.New("boom"))

	require.NoError(t, repo.Rename(context.Background(), 10, "beta"))
	assert.ErrorIs(t, repo.Rename(context.Background(), 11, "beta"), common.ErrorNotFound)
	require.NoError(t, repo.Delete(context.Background(), 10))

	err := repo.Delete(context.Background(), 11)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error: boom")
}
