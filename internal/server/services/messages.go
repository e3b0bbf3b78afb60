package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/defcomm/internal/common"
	"github.com/dmitrijs2005/defcomm/internal/server/models"
	"github.com/dmitrijs2005/defcomm/internal/server/repositories/repomanager"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// MessageService appends to and pages through group logs. Both calls
// check membership of the caller before the store is touched.
type MessageService struct {
	repomanager repomanager.RepositoryManager
	groups      *GroupService
}

func NewMessageService(m repomanager.RepositoryManager, groups *GroupService) *MessageService {
	return &MessageService{repomanager: m, groups: groups}
}

func (s *MessageService) Send(ctx context.Context, groupID int64, sender *models.User, encryptedText string) (*models.Message, error) {
	if encryptedText == "" {
		return nil, common.ErrEmptyCiphertext
	}
	if err := s.groups.RequireMember(ctx, groupID, sender.ID); err != nil {
		return nil, err
	}

	msg, err := s.repomanager.Messages().Create(ctx, groupID, sender.ID, encryptedText)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrGroupNotFound
		}
		return nil, fmt.Errorf("error creating message: %w", err)
	}
	return msg, nil
}

// List returns one page of the group's log, oldest first. Zero page or
// limit select the defaults.
func (s *MessageService) List(ctx context.Context, groupID, userID int64, page, limit int) (*models.MessagePage, error) {
	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = DefaultPageSize
	}
	if page < 1 {
		return nil, common.NewError(common.ErrorValidation, "Page must be a positive integer")
	}
	if limit < 1 || limit > MaxPageSize {
		return nil, common.NewError(common.ErrorValidation, "Limit must be between 1 and 100")
	}

	if err := s.groups.RequireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}

	repo := s.repomanager.Messages()

	total, err := repo.CountByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("error counting messages: %w", err)
	}

	result := &models.MessagePage{
		Messages: []*models.Message{},
		Page:     page,
		Limit:    limit,
		Total:    total,
		Pages:    (total + int64(limit) - 1) / int64(limit),
	}
	// Pages past the end are empty; skipping the query also keeps the
	// offset from overflowing.
	if int64(page-1) >= result.Pages {
		return result, nil
	}

	msgs, err := repo.ListByGroup(ctx, groupID, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("error listing messages: %w", err)
	}
	result.Messages = msgs
	return result, nil
}
