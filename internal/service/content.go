package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/team-pig/backend/internal/domain"
	"github.com/team-pig/backend/internal/repository"
)

// ContentService edits card content and todos.
type ContentService struct {
	roomRepo    repository.RoomRepository
	contentRepo repository.ContentRepository
	events      emitter
	newID       func() string
}

// NewContentService creates a ContentService. publisher may be nil.
func NewContentService(roomRepo repository.RoomRepository, contentRepo repository.ContentRepository, publisher EventPublisher) *ContentService {
	if roomRepo == nil || contentRepo == nil {
		panic("repositories cannot be nil for ContentService")
	}
	return &ContentService{
		roomRepo:    roomRepo,
		contentRepo: contentRepo,
		events:      newEmitter(publisher),
		newID:       func() string { return uuid.NewString() },
	}
}

// UpdateCard applies a field-presence patch to a card. Assigned members must
// belong to the room.
func (s *ContentService) UpdateCard(ctx context.Context, actorID, roomID uint, cardID string, patch domain.CardPatch) (*domain.Card, error) {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": actorID, "card_id": cardID})
	if cardID == "" {
		return nil, fmt.Errorf("%w: cardId is required", ErrInvalidInput)
	}
	if patch.IsEmpty() {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}
	if patch.Title != nil {
		trimmed := strings.TrimSpace(*patch.Title)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: card title cannot be empty", ErrInvalidInput)
		}
		patch.Title = &trimmed
	}
	if patch.Members != nil {
		if err := s.requireMembers(ctx, roomID, *patch.Members); err != nil {
			return nil, err
		}
	}

	card, err := s.contentRepo.UpdateCard(ctx, roomID, cardID, patch)
	if err != nil {
		mapped := mapBoardError(err, ErrCardNotFound)
		if errors.Is(mapped, ErrInternalServer) {
			logCtx.WithError(err).Error("ContentService.UpdateCard: failed to update card")
		}
		return nil, mapped
	}
	s.events.emit(ctx, domain.EventCardUpdated, roomID, actorID, card.ID, card)
	return card, nil
}

// CreateTodo adds an unchecked todo under an existing card.
func (s *ContentService) CreateTodo(ctx context.Context, actorID, roomID uint, cardID, title string) (*domain.Todo, error) {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": actorID, "card_id": cardID})
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: todo title is required", ErrInvalidInput)
	}
	if cardID == "" {
		return nil, fmt.Errorf("%w: cardId is required", ErrInvalidInput)
	}

	card, err := s.contentRepo.FindCard(ctx, roomID, cardID)
	if err != nil {
		mapped := mapBoardError(err, ErrCardNotFound)
		if errors.Is(mapped, ErrInternalServer) {
			logCtx.WithError(err).Error("ContentService.CreateTodo: failed to load card")
		}
		return nil, mapped
	}

	todo := &domain.Todo{
		ID:       s.newID(),
		RoomID:   roomID,
		BucketID: card.BucketID,
		CardID:   card.ID,
		Title:    title,
		Members:  datatypes.JSONSlice[uint]{},
	}
	if err := s.contentRepo.CreateTodo(ctx, todo); err != nil {
		mapped := mapBoardError(err, ErrCardNotFound)
		if errors.Is(mapped, ErrInternalServer) {
			logCtx.WithError(err).Error("ContentService.CreateTodo: failed to save todo")
		}
		return nil, mapped
	}
	logCtx.WithField("todo_id", todo.ID).Info("Todo created")
	s.events.emit(ctx, domain.EventTodoCreated, roomID, actorID, todo.ID, todo)
	return todo, nil
}

// UpdateTodo applies title and check state, then member additions, then
// member removals. Added members must belong to the room.
func (s *ContentService) UpdateTodo(ctx context.Context, actorID, roomID uint, todoID string, patch domain.TodoPatch) (*domain.Todo, error) {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": actorID, "todo_id": todoID})
	if todoID == "" {
		return nil, fmt.Errorf("%w: todoId is required", ErrInvalidInput)
	}
	if patch.IsEmpty() {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}
	if patch.Title != nil {
		trimmed := strings.TrimSpace(*patch.Title)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: todo title cannot be empty", ErrInvalidInput)
		}
		patch.Title = &trimmed
	}
	if len(patch.AddMembers) > 0 {
		if err := s.requireMembers(ctx, roomID, patch.AddMembers); err != nil {
			return nil, err
		}
	}

	todo, err := s.contentRepo.UpdateTodo(ctx, roomID, todoID, patch)
	if err != nil {
		mapped := mapBoardError(err, ErrTodoNotFound)
		if errors.Is(mapped, ErrInternalServer) {
			logCtx.WithError(err).Error("ContentService.UpdateTodo: failed to update todo")
		}
		return nil, mapped
	}
	s.events.emit(ctx, domain.EventTodoUpdated, roomID, actorID, todo.ID, todo)
	return todo, nil
}

// requireMembers checks that every id is on the room's roster.
func (s *ContentService) requireMembers(ctx context.Context, roomID uint, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRoomNotFound
		}
		logrus.WithError(err).WithField("room_id", roomID).Error("ContentService: failed to load room")
		return ErrInternalServer
	}
	for _, id := range ids {
		if !room.HasMember(id) {
			return fmt.Errorf("%w: user %d is not a member of this room", ErrInvalidInput, id)
		}
	}
	return nil
}
