package messages

import (
	"context"

	"github.com/dmitrijs2005/defcomm/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, groupID, senderID int64, encryptedText string) (*models.Message, error)
	ListByGroup(ctx context.Context, groupID int64, limit, offset int) ([]*models.Message, error)
	CountByGroup(ctx context.Context, groupID int64) (int64, error)
	Count(ctx context.Context) (int64, error)
	Recent(ctx context.Context, limit int) ([]*models.MessageMeta, error)
}
