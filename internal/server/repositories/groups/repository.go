package groups

import (
	"context"

	"github.com/dmitrijs2005/defcomm/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, name string, createdBy int64) (*models.Group, error)
	AddMembers(ctx context.Context, groupID int64, userIDs ...int64) error
	RemoveMember(ctx context.Context, groupID, userID int64) error
	IsMember(ctx context.Context, groupID, userID int64) (bool, error)
	Get(ctx context.Context, groupID int64) (*models.Group, error)
	ListForUser(ctx context.Context, userID int64) ([]*models.Group, error)
	Rename(ctx context.Context, groupID int64, name string) error
	Delete(ctx context.Context, groupID int64) error
	Count(ctx context.Context) (int64, error)
}
