package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/team-pig/backend/internal/domain"
	"github.com/team-pig/backend/internal/repository"
)

// GormContentRepository implements repository.ContentRepository.
type GormContentRepository struct {
	db *gorm.DB
}

// NewGormContentRepository creates a GormContentRepository.
func NewGormContentRepository(db *gorm.DB) *GormContentRepository {
	if db == nil {
		panic("database connection cannot be nil for GormContentRepository")
	}
	return &GormContentRepository{db: db}
}

// FindCard implements repository.ContentRepository.
func (r *GormContentRepository) FindCard(ctx context.Context, roomID uint, cardID string) (*domain.Card, error) {
	var card domain.Card
	if err := r.db.WithContext(ctx).Where("id = ? AND room_id = ?", cardID, roomID).First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCardNotFound
		}
		return nil, fmt.Errorf("gorm: find card %s: %w", cardID, err)
	}
	return &card, nil
}

// UpdateCard implements repository.ContentRepository.
func (r *GormContentRepository) UpdateCard(ctx context.Context, roomID uint, cardID string, patch domain.CardPatch) (*domain.Card, error) {
	var card domain.Card
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(forUpdate).Where("id = ? AND room_id = ?", cardID, roomID).First(&card).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repository.ErrCardNotFound
			}
			return fmt.Errorf("gorm: lock card %s: %w", cardID, err)
		}
		if err := patch.Apply(&card); err != nil {
			return err
		}
		cols := patch.Columns(&card)
		cols["version"] = gorm.Expr("version + 1")
		res := tx.Model(&domain.Card{}).Where("id = ? AND version = ?", card.ID, card.Version).Updates(cols)
		if res.Error != nil {
			return fmt.Errorf("gorm: update card %s: %w", cardID, res.Error)
		}
		if res.RowsAffected == 0 {
			return repository.ErrConflict
		}
		return tx.Where("id = ?", card.ID).First(&card).Error
	})
	if err != nil {
		return nil, err
	}
	return &card, nil
}

// CreateTodo implements repository.ContentRepository.
func (r *GormContentRepository) CreateTodo(ctx context.Context, todo *domain.Todo) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var card domain.Card
		if err := tx.Clauses(forUpdate).Select("id").Where("id = ? AND room_id = ?", todo.CardID, todo.RoomID).First(&card).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repository.ErrCardNotFound
			}
			return fmt.Errorf("gorm: lock card %s: %w", todo.CardID, err)
		}
		if todo.Members == nil {
			todo.Members = datatypes.JSONSlice[uint]{}
		}
		if err := tx.Create(todo).Error; err != nil {
			return fmt.Errorf("gorm: create todo on card %s: %w", todo.CardID, err)
		}
		return nil
	})
}

// ListTodos implements repository.ContentRepository.
func (r *GormContentRepository) ListTodos(ctx context.Context, roomID uint) ([]domain.Todo, error) {
	var todos []domain.Todo
	if err := r.db.WithContext(ctx).Where("room_id = ?", roomID).Order("created_at, id").Find(&todos).Error; err != nil {
		return nil, fmt.Errorf("gorm: list todos of room %d: %w", roomID, err)
	}
	return todos, nil
}

// UpdateTodo applies the patch to the locked row, so concurrent member edits serialize.
func (r *GormContentRepository) UpdateTodo(ctx context.Context, roomID uint, todoID string, patch domain.TodoPatch) (*domain.Todo, error) {
	var todo domain.Todo
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(forUpdate).Where("id = ? AND room_id = ?", todoID, roomID).First(&todo).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repository.ErrTodoNotFound
			}
			return fmt.Errorf("gorm: lock todo %s: %w", todoID, err)
		}
		patch.Apply(&todo)
		err := tx.Model(&domain.Todo{}).Where("id = ?", todo.ID).Updates(map[string]interface{}{
			"title":      todo.Title,
			"is_checked": todo.IsChecked,
			"members":    todo.Members,
		}).Error
		if err != nil {
			return fmt.Errorf("gorm: update todo %s: %w", todoID, err)
		}
		return tx.Where("id = ?", todo.ID).First(&todo).Error
	})
	if err != nil {
		return nil, err
	}
	return &todo, nil
}
