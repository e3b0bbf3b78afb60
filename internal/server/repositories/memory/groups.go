package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/dmitrijs2005/defcomm/internal/common"
	"github.com/dmitrijs2005/defcomm/internal/server/models"
)

type GroupRepository struct {
	store *Store
}

func (r *GroupRepository) Create(_ context.Context, name string, createdBy int64) (*models.Group, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	st := r.store.state

	if _, ok := st.users[createdBy]; !ok {
		return nil, common.ErrorNotFound
	}

	st.nextGroupID++
	now := r.store.now()
	row := groupRow{id: st.nextGroupID, name: name, createdBy: &createdBy, createdAt: now, updatedAt: now}
	st.groups[row.id] = row
	st.members[row.id] = make(map[int64]struct{})

	return st.toModel(row), nil
}

// AddMembers adds all users or none of them.
func (r *GroupRepository) AddMembers(_ context.Context, groupID int64, userIDs ...int64) error {
	if len(userIDs) == 0 {
		return nil
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	st := r.store.state

	set, ok := st.members[groupID]
	if !ok {
		return common.ErrorNotFound
	}
	for _, id := range userIDs {
		if _, ok := st.users[id]; !ok {
			return common.ErrorNotFound
		}
	}
	for _, id := range userIDs {
		set[id] = struct{}{}
	}
	return nil
}

func (r *GroupRepository) RemoveMember(_ context.Context, groupID, userID int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	set := r.store.state.members[groupID]
	if _, ok := set[userID]; !ok {
		return common.ErrorNotFound
	}
	delete(set, userID)
	return nil
}

func (r *GroupRepository) IsMember(_ context.Context, groupID, userID int64) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	_, ok := r.store.state.members[groupID][userID]
	return ok, nil
}

func (r *GroupRepository) Get(_ context.Context, groupID int64) (*models.Group, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	row, ok := r.store.state.groups[groupID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.store.state.toModel(row), nil
}

func (r *GroupRepository) ListForUser(_ context.Context, userID int64) ([]*models.Group, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	st := r.store.state

	rows := make([]groupRow, 0)
	for gid, set := range st.members {
		if _, ok := set[userID]; ok {
			rows = append(rows, st.groups[gid])
		}
	}
	slices.SortFunc(rows, func(a, b groupRow) int {
		if c := b.createdAt.Compare(a.createdAt); c != 0 {
			return c
		}
		return cmp.Compare(b.id, a.id)
	})

	result := make([]*models.Group, 0, len(rows))
	for _, row := range rows {
		result = append(result, st.toModel(row))
	}
	return result, nil
}

func (r *GroupRepository) Rename(_ context.Context, groupID int64, name string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	st := r.store.state

	row, ok := st.groups[groupID]
	if !ok {
		return common.ErrorNotFound
	}
	row.name = name
	row.updatedAt = r.store.now()
	st.groups[groupID] = row
	return nil
}

func (r *GroupRepository) Delete(_ context.Context, groupID int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	st := r.store.state

	if _, ok := st.groups[groupID]; !ok {
		return common.ErrorNotFound
	}
	delete(st.groups, groupID)
	delete(st.members, groupID)
	st.messages = slices.DeleteFunc(st.messages, func(m messageRow) bool { return m.groupID == groupID })
	return nil
}

func (r *GroupRepository) Count(_ context.Context) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return int64(len(r.store.state.groups)), nil
}

// toModel expands a group row with its members ordered by user id.
func (s *state) toModel(row groupRow) *models.Group {
	g := &models.Group{
		ID:        row.id,
		Name:      row.name,
		CreatedAt: row.createdAt,
		UpdatedAt: row.updatedAt,
		Members:   []models.Member{},
	}
	if row.createdBy != nil {
		id := *row.createdBy
		g.CreatedBy = &id
	}
	for uid := range s.members[row.id] {
		u := s.users[uid]
		g.Members = append(g.Members, models.Member{ID: u.ID, UserName: u.UserName, Role: u.Role, Status: u.Status})
	}
	slices.SortFunc(g.Members, func(a, b models.Member) int { return cmp.Compare(a.ID, b.ID) })
	return g
}
