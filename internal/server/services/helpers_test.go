package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/defcomm/internal/server/auth"
	"github.com/dmitrijs2005/defcomm/internal/server/models"
	"github.com/dmitrijs2005/defcomm/internal/server/repositories/groups"
	"github.com/dmitrijs2005/defcomm/internal/server/repositories/messages"
	"github.com/dmitrijs2005/defcomm/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/defcomm/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService(t *testing.T, rm repomanager.RepositoryManager) *AuthService {
	t.Helper()
	issuer, err := auth.NewIssuer("test-secret", time.Hour)
	require.NoError(t, err)
	s := NewAuthService(rm, issuer)
	s.cost = bcrypt.MinCost
	return s
}

func seedUser(t *testing.T, rm repomanager.RepositoryManager, name string, role models.Role, status models.Status) *models.User {
	t.Helper()
	u, err := rm.Users().Create(context.Background(), &models.User{
		UserName: name, PasswordHash: []byte("x"), Role: role, Status: status,
	})
	require.NoError(t, err)
	return u
}

// fakeRepoManager hands out the configured repositories and counts
// transactions.
type fakeRepoManager struct {
	users    users.Repository
	groups   groups.Repository
	messages messages.Repository
	txCalls  int
}

func (m *fakeRepoManager) Users() users.Repository             { return m.users }
func (m *fakeRepoManager) Groups() groups.Repository           { return m.groups }
func (m *fakeRepoManager) Messages() messages.Repository       { return m.messages }
func (m *fakeRepoManager) RunMigrations(context.Context) error { return nil }
func (m *fakeRepoManager) Ping(context.Context) error          { return nil }
func (m *fakeRepoManager) Close() error                        { return nil }

func (m *fakeRepoManager) WithTx(ctx context.Context, fn func(ctx context.Context, repos repomanager.Repositories) error) error {
	m.txCalls++
	return fn(ctx, m)
}

// recordingUsers counts mutating store calls.
type recordingUsers struct {
	users.Repository
	calls int
}

func (r *recordingUsers) Update(context.Context, int64, models.UserUpdate) (*models.User, error) {
	r.calls++
	return nil, nil
}

func (r *recordingUsers) Delete(context.Context, int64) error {
	r.calls++
	return nil
}

type failingUsers struct {
	users.Repository
	err error
}

func (f *failingUsers) GetByUsername(context.Context, string) (*models.User, error) {
	return nil, f.err
}

func (f *failingUsers) Count(context.Context) (int64, error) { return 0, f.err }

func (f *failingUsers) CountByStatus(context.Context, models.Status) (int64, error) {
	return 0, f.err
}
