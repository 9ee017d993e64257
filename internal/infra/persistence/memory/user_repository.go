package memory

import (
	"context"
	"strings"

	"github.com/team-pig/backend/internal/domain"
	"github.com/team-pig/backend/internal/repository"
)

// UserRepository implements repository.UserRepository on a Store.
type UserRepository struct {
	s *Store
}

// NewUserRepository creates a UserRepository.
func NewUserRepository(s *Store) *UserRepository {
	return &UserRepository{s: s}
}

// FindByUsername implements repository.UserRepository.
func (r *UserRepository) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

// FindByID implements repository.UserRepository.
func (r *UserRepository) FindByID(_ context.Context, id uint) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

// Save implements repository.UserRepository.
func (r *UserRepository) Save(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, u := range r.s.users {
		if id == user.ID {
			continue
		}
		if u.Username == user.Username || (user.Email != "" && strings.EqualFold(u.Email, user.Email)) {
			return repository.ErrDuplicateEntry
		}
	}
	now := r.s.now()
	if user.ID == 0 {
		r.s.nextUserID++
		user.ID = r.s.nextUserID
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	stored := *user
	r.s.users[user.ID] = &stored
	return nil
}
