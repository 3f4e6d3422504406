package userstore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrymomot/authsvc/pkg/auth"
)

// MemoryStore keeps users in process memory. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]auth.User
	byEmail map[string]uuid.UUID
	order   []uuid.UUID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[uuid.UUID]auth.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	u := s.byID[id]
	return &u, nil
}

func (s *MemoryStore) GetUserByID(_ context.Context, id uuid.UUID) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return &u, nil
}

func (s *MemoryStore) CreateUser(_ context.Context, user *auth.User) error {
	withDefaults(user)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[user.Email]; taken {
		return auth.ErrEmailAlreadyExists
	}
	if _, taken := s.byID[user.ID]; taken {
		return auth.ErrEmailAlreadyExists
	}

	s.byID[user.ID] = *user
	s.byEmail[user.Email] = user.ID
	s.order = append(s.order, user.ID)
	return nil
}

func (s *MemoryStore) UpdateUser(_ context.Context, user *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.byID[user.ID]
	if !ok {
		return auth.ErrUserNotFound
	}

	current.Name = user.Name
	current.PasswordHash = user.PasswordHash
	current.AuthProvider = user.AuthProvider
	current.GoogleID = user.GoogleID
	current.Avatar = user.Avatar
	current.Location = user.Location
	if user.Role != "" {
		current.Role = user.Role
	}
	s.byID[user.ID] = current
	return nil
}

// ListUsers returns users in creation order without password hashes.
func (s *MemoryStore) ListUsers(_ context.Context) ([]*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*auth.User, 0, len(s.order))
	for _, id := range s.order {
		u := s.byID[id]
		u.PasswordHash = ""
		users = append(users, &u)
	}
	return users, nil
}

var _ auth.UserStorage = (*MemoryStore)(nil)
