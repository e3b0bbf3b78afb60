// Package repomanager vends repository implementations for a configured
// backend and runs work that must be atomic across repositories.
package repomanager

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/defcomm/internal/server/repositories/groups"
	"github.com/dmitrijs2005/defcomm/internal/server/repositories/messages"
	"github.com/dmitrijs2005/defcomm/internal/server/repositories/users"
)

// MemoryDSN selects the in-process backend.
const MemoryDSN = "memory://"

// Repositories is a set of repositories sharing one connection or
// transaction.
type Repositories interface {
	Users() users.Repository
	Groups() groups.Repository
	Messages() messages.Repository
}

type RepositoryManager interface {
	Repositories
	RunMigrations(ctx context.Context) error
	// WithTx runs fn in a single transaction; repositories obtained from
	// repos see and commit together.
	WithTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
	Ping(ctx context.Context) error
	Close() error
}

// New picks the backend from the DSN scheme.
func New(dsn string) (RepositoryManager, error) {
	switch {
	case dsn == "":
		return nil, errors.New("database url is empty")
	case strings.HasPrefix(dsn, MemoryDSN):
		return NewMemoryRepositoryManager(), nil
	}

	m, err := NewPostgresRepositoryManager(dsn)
	if err != nil {
		return nil, err
	}
	return m, nil
}
