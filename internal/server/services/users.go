package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/defcomm/internal/common"
	"github.com/dmitrijs2005/defcomm/internal/server/models"
	"github.com/dmitrijs2005/defcomm/internal/server/repositories/repomanager"
)

// UserService implements the HQ account administration actions. Every
// mutating call takes the acting user's id and refuses to target it
// before touching the store.
type UserService struct {
	repomanager repomanager.RepositoryManager
}

func NewUserService(m repomanager.RepositoryManager) *UserService {
	return &UserService{repomanager: m}
}

func (s *UserService) ListAll(ctx context.Context) ([]*models.User, error) {
	users, err := s.repomanager.Users().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	return users, nil
}

func (s *UserService) ListPending(ctx context.Context) ([]*models.User, error) {
	users, err := s.repomanager.Users().ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing pending users: %w", err)
	}
	return users, nil
}

func (s *UserService) Approve(ctx context.Context, actorID, targetID int64) (*models.User, error) {
	if actorID == targetID {
		return nil, common.NewError(common.ErrSelfAction, "Cannot approve yourself")
	}
	status := models.StatusApproved
	return s.update(ctx, targetID, models.UserUpdate{Status: &status})
}

func (s *UserService) Reject(ctx context.Context, actorID, targetID int64) (*models.User, error) {
	if actorID == targetID {
		return nil, common.NewError(common.ErrSelfAction, "Cannot reject yourself")
	}
	status := models.StatusRejected
	return s.update(ctx, targetID, models.UserUpdate{Status: &status})
}

// Update changes role and/or status. Nil fields are kept.
func (s *UserService) Update(ctx context.Context, actorID, targetID int64, upd models.UserUpdate) (*models.User, error) {
	if actorID == targetID {
		return nil, common.NewError(common.ErrSelfAction, "Cannot update yourself")
	}
	if upd.Role == nil && upd.Status == nil {
		return nil, common.NewError(common.ErrorValidation, "Nothing to update")
	}
	if upd.Role != nil && !upd.Role.Valid() {
		return nil, common.NewError(common.ErrorValidation, "Role must be either user or hq")
	}
	if upd.Status != nil && !upd.Status.Valid() {
		return nil, common.NewError(common.ErrorValidation, "Status must be pending, approved or rejected")
	}
	return s.update(ctx, targetID, upd)
}

func (s *UserService) Delete(ctx context.Context, actorID, targetID int64) error {
	if actorID == targetID {
		return common.NewError(common.ErrSelfAction, "Cannot delete yourself")
	}
	if err := s.repomanager.Users().Delete(ctx, targetID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrUserNotFound
		}
		return fmt.Errorf("error deleting user: %w", err)
	}
	return nil
}

func (s *UserService) update(ctx context.Context, targetID int64, upd models.UserUpdate) (*models.User, error) {
	user, err := s.repomanager.Users().Update(ctx, targetID, upd)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("error updating user: %w", err)
	}
	return user, nil
}
