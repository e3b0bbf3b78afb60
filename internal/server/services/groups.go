package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/defcomm/internal/common"
	"github.com/dmitrijs2005/defcomm/internal/server/models"
	"github.com/dmitrijs2005/defcomm/internal/server/repositories/repomanager"
)

const maxGroupNameLength = 100

type GroupService struct {
	repomanager repomanager.RepositoryManager
}

func NewGroupService(m repomanager.RepositoryManager) *GroupService {
	return &GroupService{repomanager: m}
}

// Create inserts the group and its memberships in one transaction. The
// creator is always a member; repeated ids collapse to one membership.
// An unknown member id aborts the whole operation with common.ErrUserNotFound.
func (s *GroupService) Create(ctx context.Context, name string, creatorID int64, memberIDs []int64) (*models.Group, error) {
	name, err := normalizeGroupName(name)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(memberIDs)+1)
	seen := make(map[int64]bool, len(memberIDs)+1)
	for _, id := range append([]int64{creatorID}, memberIDs...) {
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}

	var group *models.Group
	err = s.repomanager.WithTx(ctx, func(ctx context.Context, repos repomanager.Repositories) error {
		g, err := repos.Groups().Create(ctx, name, creatorID)
		if err != nil {
			return err
		}
		if err := repos.Groups().AddMembers(ctx, g.ID, ids...); err != nil {
			return err
		}
		group, err = repos.Groups().Get(ctx, g.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("error creating group: %w", err)
	}
	return group, nil
}

func (s *GroupService) ListForUser(ctx context.Context, userID int64) ([]*models.Group, error) {
	groups, err := s.repomanager.Groups().ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing groups: %w", err)
	}
	return groups, nil
}

// Get returns the group to one of its members. Membership is checked
// first, so a missing group looks the same as a foreign one to a
// non-member.
func (s *GroupService) Get(ctx context.Context, groupID, userID int64) (*models.Group, error) {
	if err := s.RequireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}
	return s.get(ctx, groupID)
}

func (s *GroupService) IsMember(ctx context.Context, groupID, userID int64) (bool, error) {
	ok, err := s.repomanager.Groups().IsMember(ctx, groupID, userID)
	if err != nil {
		return false, fmt.Errorf("error checking membership: %w", err)
	}
	return ok, nil
}

// RequireMember returns common.ErrNotGroupMember unless userID belongs to
// groupID. Role does not matter.
func (s *GroupService) RequireMember(ctx context.Context, groupID, userID int64) error {
	ok, err := s.IsMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrNotGroupMember
	}
	return nil
}

// AddMember is idempotent for an existing membership.
func (s *GroupService) AddMember(ctx context.Context, groupID, userID int64) (*models.Group, error) {
	if _, err := s.get(ctx, groupID); err != nil {
		return nil, err
	}
	if _, err := s.repomanager.Users().GetByID(ctx, userID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	if err := s.repomanager.Groups().AddMembers(ctx, groupID, userID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrGroupNotFound
		}
		return nil, fmt.Errorf("error adding member: %w", err)
	}
	return s.get(ctx, groupID)
}

func (s *GroupService) RemoveMember(ctx context.Context, groupID, userID int64) (*models.Group, error) {
	if err := s.repomanager.Groups().RemoveMember(ctx, groupID, userID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrMemberNotFound
		}
		return nil, fmt.Errorf("error removing member: %w", err)
	}
	return s.get(ctx, groupID)
}

func (s *GroupService) Rename(ctx context.Context, groupID int64, name string) (*models.Group, error) {
	name, err := normalizeGroupName(name)
	if err != nil {
		return nil, err
	}
	if err := s.repomanager.Groups().Rename(ctx, groupID, name); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrGroupNotFound
		}
		return nil, fmt.Errorf("error renaming group: %w", err)
	}
	return s.get(ctx, groupID)
}

// Delete removes the group together with its memberships and messages.
func (s *GroupService) Delete(ctx context.Context, groupID int64) error {
	if err := s.repomanager.Groups().Delete(ctx, groupID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrGroupNotFound
		}
		return fmt.Errorf("error deleting group: %w", err)
	}
	return nil
}

func (s *GroupService) get(ctx context.Context, groupID int64) (*models.Group, error) {
	g, err := s.repomanager.Groups().Get(ctx, groupID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrGroupNotFound
		}
		return nil, fmt.Errorf("error loading group: %w", err)
	}
	return g, nil
}

func normalizeGroupName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", common.NewError(common.ErrorValidation, "Group name is required")
	}
	if len([]rune(name)) > maxGroupNameLength {
		return "", common.NewError(common.ErrorValidation, "Group name cannot exceed 100 characters")
	}
	return name, nil
}
