package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockManager(t *testing.T) (*PostgresRepositoryManager, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return newPostgresRepositoryManager(db), mock
}

func TestNew_PicksBackend(t *testing.T) {
	m, err := New("memory://")
	require.NoError(t, err)
	assert.IsType(t, &MemoryRepositoryManager{}, m)

	m, err = New("postgres://u:p@localhost:5432/defcomm?sslmode=disable")
	require.NoError(t, err)
	assert.IsType(t, &PostgresRepositoryManager{}, m)
	require.NoError(t, m.Close())

	_, err = New("")
	assert.Error(t, err)
}

func TestFactories_ReturnRepos(t *testing.T) {
	m, _ := newMockManager(t)

	assert.NotNil(t, m.Users())
	assert.NotNil(t, m.Groups())
	assert.NotNil(t, m.Messages())
	var _ RepositoryManager = m
}

func TestWithTx_CommitsAndRollsBack(t *testing.T) {
	m, mock := newMockManager(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE\s+FROM\s+groups`).WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := m.WithTx(context.Background(), func(ctx context.Context, repos Repositories) error {
		return repos.Groups().Delete(ctx, 1)
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err = m.WithTx(context.Background(), func(ctx context.Context, repos Repositories) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_Success(t *testing.T) {
	m, _ := newMockManager(t)

	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		return nil
	}

	require.NoError(t, m.RunMigrations(context.Background()))
}

func TestRunMigrations_Error(t *testing.T) {
	m, _ := newMockManager(t)

	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}

	err := m.RunMigrations(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestMemoryManager_WithTx(t *testing.T) {
	m := NewMemoryRepositoryManager()
	ctx := context.Background()
	require.NoError(t, m.RunMigrations(ctx))
	require.NoError(t, m.Ping(ctx))

	err := m.WithTx(ctx, func(ctx context.Context, repos Repositories) error {
		_, err := repos.Groups().Create(ctx, "alpha", 1)
		return err
	})
	require.Error(t, err)

	n, err := m.Groups().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
