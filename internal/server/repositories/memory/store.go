// Package memory keeps every repository in process memory. It backs the
// memory:// database URL used for local development and end-to-end tests
// and mirrors the constraints of the PostgreSQL schema: unique usernames,
// cascading membership and message deletion, and SET NULL on authors.
package memory

import (
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/defcomm/internal/server/models"
)

type groupRow struct {
	id        int64
	name      string
	createdBy *int64
	createdAt time.Time
	updatedAt time.Time
}

type messageRow struct {
	id        int64
	groupID   int64
	senderID  *int64
	text      string
	createdAt time.Time
}

type state struct {
	users    map[int64]models.User
	groups   map[int64]groupRow
	members  map[int64]map[int64]struct{}
	messages []messageRow

	nextUserID    int64
	nextGroupID   int64
	nextMessageID int64
}

func newState() *state {
	return &state{
		users:   make(map[int64]models.User),
		groups:  make(map[int64]groupRow),
		members: make(map[int64]map[int64]struct{}),
	}
}

func (s *state) clone() *state {
	c := &state{
		users:         maps.Clone(s.users),
		groups:        maps.Clone(s.groups),
		members:       make(map[int64]map[int64]struct{}, len(s.members)),
		messages:      slices.Clone(s.messages),
		nextUserID:    s.nextUserID,
		nextGroupID:   s.nextGroupID,
		nextMessageID: s.nextMessageID,
	}
	for gid, set := range s.members {
		c.members[gid] = maps.Clone(set)
	}
	return c
}

// Store is the shared backing state of the memory repositories.
type Store struct {
	mu    sync.RWMutex
	state *state
	now   func() time.Time
}

func NewStore() *Store {
	return &Store{state: newState(), now: time.Now}
}

// Tx runs fn against a private copy of the store and publishes the copy
// only when fn returns nil. Other callers block until Tx returns, and fn
// must only use the store it is given.
func (s *Store) Tx(fn func(tx *Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Store{state: s.state.clone(), now: s.now}
	if err := fn(tx); err != nil {
		return err
	}
	s.state = tx.state
	return nil
}

func (s *Store) Users() *UserRepository { return &UserRepository{store: s} }

func (s *Store) Groups() *GroupRepository { return &GroupRepository{store: s} }

func (s *Store) Messages() *MessageRepository { return &MessageRepository{store: s} }
