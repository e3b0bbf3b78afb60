package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/defcomm/internal/common"
	"github.com/dmitrijs2005/defcomm/internal/server/models"
	"github.com/dmitrijs2005/defcomm/internal/server/repositories/repomanager"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultRecentLimit = 10
	MaxRecentLimit     = 100
)

// AdminService serves read-only rollups to HQ. It never exposes message
// payloads.
type AdminService struct {
	repomanager repomanager.RepositoryManager
}

func NewAdminService(m repomanager.RepositoryManager) *AdminService {
	return &AdminService{repomanager: m}
}

// Stats runs the five counts concurrently. They are not taken from one
// snapshot.
func (s *AdminService) Stats(ctx context.Context) (*models.Stats, error) {
	var st models.Stats
	g, ctx := errgroup.WithContext(ctx)

	users := s.repomanager.Users()
	g.Go(func() (err error) {
		st.TotalUsers, err = users.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		st.ApprovedUsers, err = users.CountByStatus(ctx, models.StatusApproved)
		return err
	})
	g.Go(func() (err error) {
		st.PendingUsers, err = users.CountByStatus(ctx, models.StatusPending)
		return err
	})
	g.Go(func() (err error) {
		st.TotalGroups, err = s.repomanager.Groups().Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		st.TotalMessages, err = s.repomanager.Messages().Count(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("error collecting stats: %w", err)
	}
	return &st, nil
}

func (s *AdminService) RecentMessages(ctx context.Context, limit int) ([]*models.MessageMeta, error) {
	if limit == 0 {
		limit = DefaultRecentLimit
	}
	if limit < 1 || limit > MaxRecentLimit {
		return nil, common.NewError(common.ErrorValidation, "Limit must be between 1 and 100")
	}

	metas, err := s.repomanager.Messages().Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("error loading recent messages: %w", err)
	}
	return metas, nil
}
