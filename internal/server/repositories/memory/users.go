package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/dmitrijs2005/defcomm/internal/common"
	"github.com/dmitrijs2005/defcomm/internal/server/models"
)

type UserRepository struct {
	store *Store
}

func (r *UserRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	st := r.store.state

	for _, u := range st.users {
		if u.UserName == user.UserName {
			return nil, common.ErrorAlreadyExists
		}
	}

	st.nextUserID++
	user.ID = st.nextUserID
	user.CreatedAt = r.store.now()
	user.UpdatedAt = user.CreatedAt
	st.users[user.ID] = *user
	return user, nil
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, u := range r.store.state.users {
		if u.UserName == username {
			return &u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	u, ok := r.store.state.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u.PasswordHash = nil
	return &u, nil
}

func (r *UserRepository) List(_ context.Context) ([]*models.User, error) {
	return r.filter(func(*models.User) bool { return true }), nil
}

func (r *UserRepository) ListPending(_ context.Context) ([]*models.User, error) {
	return r.filter(func(u *models.User) bool {
		return u.Status == models.StatusPending && u.Role == models.RoleUser
	}), nil
}

func (r *UserRepository) filter(keep func(*models.User) bool) []*models.User {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]*models.User, 0)
	for _, u := range r.store.state.users {
		u.PasswordHash = nil
		if keep(&u) {
			result = append(result, &u)
		}
	}
	slices.SortFunc(result, func(a, b *models.User) int { return cmp.Compare(a.ID, b.ID) })
	return result
}

func (r *UserRepository) Update(_ context.Context, id int64, upd models.UserUpdate) (*models.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	st := r.store.state

	u, ok := st.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if upd.Status != nil {
		u.Status = *upd.Status
	}
	u.UpdatedAt = r.store.now()
	st.users[id] = u

	u.PasswordHash = nil
	return &u, nil
}

// Delete removes the user with its memberships. Authored messages and
// created groups keep existing with the author cleared.
func (r *UserRepository) Delete(_ context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	st := r.store.state

	if _, ok := st.users[id]; !ok {
		return common.ErrorNotFound
	}
	delete(st.users, id)

	for _, set := range st.members {
		delete(set, id)
	}
	for gid, g := range st.groups {
		if g.createdBy != nil && *g.createdBy == id {
			g.createdBy = nil
			st.groups[gid] = g
		}
	}
	for i := range st.messages {
		if m := &st.messages[i]; m.senderID != nil && *m.senderID == id {
			m.senderID = nil
		}
	}
	return nil
}

func (r *UserRepository) Count(_ context.Context) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return int64(len(r.store.state.users)), nil
}

func (r *UserRepository) CountByStatus(_ context.Context, status models.Status) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var n int64
	for _, u := range r.store.state.users {
		if u.Status == status {
			n++
		}
	}
	return n, nil
}
