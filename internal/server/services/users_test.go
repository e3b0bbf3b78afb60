package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/defcomm/internal/common"
	"github.com/dmitrijs2005/defcomm/internal/server/models"
	"github.com/dmitrijs2005/defcomm/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_SelfActionsNeverReachStore(t *testing.T) {
	rec := &recordingUsers{}
	s := NewUserService(&fakeRepoManager{users: rec})
	ctx := context.Background()
	role := models.RoleUser

	_, err := s.Approve(ctx, 7, 7)
	assert.ErrorIs(t, err, common.ErrSelfAction)
	assert.EqualError(t, err, "Cannot approve yourself")

	_, err = s.Reject(ctx, 7, 7)
	assert.ErrorIs(t, err, common.ErrSelfAction)

	_, err = s.Update(ctx, 7, 7, models.UserUpdate{Role: &role})
	assert.ErrorIs(t, err, common.ErrSelfAction)

	err = s.Delete(ctx, 7, 7)
	assert.ErrorIs(t, err, common.ErrSelfAction)
	assert.EqualError(t, err, "Cannot delete yourself")

	assert.Zero(t, rec.calls)
}

func TestUserService_ApproveRejectUpdate(t *testing.T) {
	rm := repomanager.NewMemoryRepositoryManager()
	s := NewUserService(rm)
	ctx := context.Background()

	hq := seedUser(t, rm, "hq", models.RoleHQ, models.StatusApproved)
	bob := seedUser(t, rm, "bob", models.RoleUser, models.StatusPending)
	seedUser(t, rm, "pending_hq", models.RoleHQ, models.StatusPending)

	pending, err := s.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, bob.ID, pending[0].ID)

	u, err := s.Approve(ctx, hq.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, u.IsApproved())

	u, err = s.Reject(ctx, hq.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, u.Status)

	role := models.RoleHQ
	u, err = s.Update(ctx, hq.ID, bob.ID, models.UserUpdate{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, models.RoleHQ, u.Role)
	assert.Equal(t, models.StatusRejected, u.Status)

	_, err = s.Approve(ctx, hq.ID, 999)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.EqualError(t, err, "User not found")

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestUserService_UpdateValidation(t *testing.T) {
	s := NewUserService(repomanager.NewMemoryRepositoryManager())
	ctx := context.Background()

	_, err := s.Update(ctx, 1, 2, models.UserUpdate{})
	assert.ErrorIs(t, err, common.ErrorValidation)

	bad := models.Role("general")
	_, err = s.Update(ctx, 1, 2, models.UserUpdate{Role: &bad})
	assert.ErrorIs(t, err, common.ErrorValidation)

	badStatus := models.Status("frozen")
	_, err = s.Update(ctx, 1, 2, models.UserUpdate{Status: &badStatus})
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestUserService_Delete(t *testing.T) {
	rm := repomanager.NewMemoryRepositoryManager()
	s := NewUserService(rm)
	ctx := context.Background()

	hq := seedUser(t, rm, "hq", models.RoleHQ, models.StatusApproved)
	bob := seedUser(t, rm, "bob", models.RoleUser, models.StatusApproved)

	require.NoError(t, s.Delete(ctx, hq.ID, bob.ID))
	assert.ErrorIs(t, s.Delete(ctx, hq.ID, bob.ID), common.ErrorNotFound)
}
