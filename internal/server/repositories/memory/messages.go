package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/dmitrijs2005/defcomm/internal/common"
	"github.com/dmitrijs2005/defcomm/internal/server/models"
)

type MessageRepository struct {
	store *Store
}

func (r *MessageRepository) Create(_ context.Context, groupID, senderID int64, encryptedText string) (*models.Message, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	st := r.store.state

	if _, ok := st.groups[groupID]; !ok {
		return nil, common.ErrorNotFound
	}
	if _, ok := st.users[senderID]; !ok {
		return nil, common.ErrorNotFound
	}

	st.nextMessageID++
	row := messageRow{
		id:        st.nextMessageID,
		groupID:   groupID,
		senderID:  &senderID,
		text:      encryptedText,
		createdAt: r.store.now(),
	}
	st.messages = append(st.messages, row)
	return st.message(row), nil
}

// ListByGroup relies on st.messages being kept in insertion order.
func (r *MessageRepository) ListByGroup(_ context.Context, groupID int64, limit, offset int) ([]*models.Message, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	st := r.store.state

	result := make([]*models.Message, 0, limit)
	skipped := 0
	for _, row := range st.messages {
		if row.groupID != groupID {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		if len(result) == limit {
			break
		}
		result = append(result, st.message(row))
	}
	return result, nil
}

func (r *MessageRepository) CountByGroup(_ context.Context, groupID int64) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var n int64
	for _, row := range r.store.state.messages {
		if row.groupID == groupID {
			n++
		}
	}
	return n, nil
}

func (r *MessageRepository) Count(_ context.Context) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return int64(len(r.store.state.messages)), nil
}

func (r *MessageRepository) Recent(_ context.Context, limit int) ([]*models.MessageMeta, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	st := r.store.state

	rows := slices.Clone(st.messages)
	slices.SortFunc(rows, func(a, b messageRow) int {
		if c := b.createdAt.Compare(a.createdAt); c != 0 {
			return c
		}
		return cmp.Compare(b.id, a.id)
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}

	result := make([]*models.MessageMeta, 0, len(rows))
	for _, row := range rows {
		meta := &models.MessageMeta{
			ID:        row.id,
			GroupID:   row.groupID,
			GroupName: st.groups[row.groupID].name,
			CreatedAt: row.createdAt,
		}
		if row.senderID != nil {
			id := *row.senderID
			meta.SenderID = &id
			meta.SenderName = st.users[id].UserName
		}
		result = append(result, meta)
	}
	return result, nil
}

func (s *state) message(row messageRow) *models.Message {
	m := &models.Message{
		ID:            row.id,
		GroupID:       row.groupID,
		EncryptedText: row.text,
		CreatedAt:     row.createdAt,
	}
	if row.senderID != nil {
		id := *row.senderID
		m.SenderID = &id
		m.Sender = &models.Sender{ID: id, UserName: s.users[id].UserName}
	}
	return m
}
