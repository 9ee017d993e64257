package memory

import (
	"context"
	"sort"

	"gorm.io/datatypes"

	"github.com/team-pig/backend/internal/domain"
	"github.com/team-pig/backend/internal/repository"
)

// ContentRepository implements repository.ContentRepository on a Store.
type ContentRepository struct {
	s *Store
}

// NewContentRepository creates a ContentRepository.
func NewContentRepository(s *Store) *ContentRepository {
	return &ContentRepository{s: s}
}

// FindCard implements repository.ContentRepository.
func (r *ContentRepository) FindCard(_ context.Context, roomID uint, cardID string) (*domain.Card, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.cards[cardID]
	if !ok || c.RoomID != roomID {
		return nil, repository.ErrCardNotFound
	}
	out := copyCard(c)
	return &out, nil
}

// UpdateCard implements repository.ContentRepository.
func (r *ContentRepository) UpdateCard(_ context.Context, roomID uint, cardID string, patch domain.CardPatch) (*domain.Card, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.cards[cardID]
	if !ok || c.RoomID != roomID {
		return nil, repository.ErrCardNotFound
	}
	next := copyCard(c)
	if err := patch.Apply(&next); err != nil {
		return nil, err
	}
	next.Version++
	next.UpdatedAt = r.s.now()
	*c = next
	out := copyCard(c)
	return &out, nil
}

// CreateTodo implements repository.ContentRepository.
func (r *ContentRepository) CreateTodo(_ context.Context, todo *domain.Todo) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.cards[todo.CardID]
	if !ok || c.RoomID != todo.RoomID {
		return repository.ErrCardNotFound
	}
	now := r.s.now()
	if todo.Members == nil {
		todo.Members = datatypes.JSONSlice[uint]{}
	}
	todo.CreatedAt, todo.UpdatedAt = now, now
	stored := copyTodo(todo)
	r.s.todos[todo.ID] = &stored
	return nil
}

// ListTodos implements repository.ContentRepository.
func (r *ContentRepository) ListTodos(_ context.Context, roomID uint) ([]domain.Todo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Todo{}
	for _, t := range r.s.todos {
		if t.RoomID == roomID {
			out = append(out, copyTodo(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// UpdateTodo implements repository.ContentRepository.
func (r *ContentRepository) UpdateTodo(_ context.Context, roomID uint, todoID string, patch domain.TodoPatch) (*domain.Todo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.todos[todoID]
	if !ok || t.RoomID != roomID {
		return nil, repository.ErrTodoNotFound
	}
	patch.Apply(t)
	t.UpdatedAt = r.s.now()
	out := copyTodo(t)
	return &out, nil
}
