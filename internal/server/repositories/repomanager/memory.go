package repomanager

import (
	"context"

	"github.com/dmitrijs2005/defcomm/internal/server/repositories/groups"
	"github.com/dmitrijs2005/defcomm/internal/server/repositories/memory"
	"github.com/dmitrijs2005/defcomm/internal/server/repositories/messages"
	"github.com/dmitrijs2005/defcomm/internal/server/repositories/users"
)

// MemoryRepositoryManager keeps all data in process memory. State is lost
// on restart.
type MemoryRepositoryManager struct {
	store *memory.Store
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{store: memory.NewStore()}
}

func (m *MemoryRepositoryManager) Users() users.Repository       { return m.store.Users() }
func (m *MemoryRepositoryManager) Groups() groups.Repository     { return m.store.Groups() }
func (m *MemoryRepositoryManager) Messages() messages.Repository { return m.store.Messages() }

func (m *MemoryRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	return m.store.Tx(func(tx *memory.Store) error {
		return fn(ctx, &MemoryRepositoryManager{store: tx})
	})
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Ping(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Close() error { return nil }
