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

// BoardService keeps the bucket order and card orders of a room consistent
// with the buckets and cards that exist. Callers are already authorized as
// room members.
type BoardService struct {
	roomRepo    repository.RoomRepository
	boardRepo   repository.BoardRepository
	contentRepo repository.ContentRepository
	events      emitter
	newID       func() string
}

// NewBoardService creates a BoardService. publisher may be nil.
func NewBoardService(roomRepo repository.RoomRepository, boardRepo repository.BoardRepository,
	contentRepo repository.ContentRepository, publisher EventPublisher) *BoardService {
	if roomRepo == nil || boardRepo == nil || contentRepo == nil {
		panic("repositories cannot be nil for BoardService")
	}
	return &BoardService{
		roomRepo:    roomRepo,
		boardRepo:   boardRepo,
		contentRepo: contentRepo,
		events:      newEmitter(publisher),
		newID:       func() string { return uuid.NewString() },
	}
}

// CreateBucket adds an empty bucket at the end of the room's bucket order.
func (s *BoardService) CreateBucket(ctx context.Context, actorID, roomID uint, name string) (*domain.Bucket, error) {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": actorID})
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: bucket name is required", ErrInvalidInput)
	}
	if err := s.requireRoom(ctx, roomID); err != nil {
		return nil, err
	}

	bucket := &domain.Bucket{
		ID:        s.newID(),
		RoomID:    roomID,
		Name:      name,
		CardOrder: datatypes.JSONSlice[string]{},
	}
	if err := s.boardRepo.CreateBucket(ctx, bucket); err != nil {
		mapped := mapBoardError(err, ErrRoomNotFound)
		if errors.Is(mapped, ErrInternalServer) {
			logCtx.WithError(err).Error("BoardService.CreateBucket: failed to save bucket")
		}
		return nil, mapped
	}
	logCtx.WithField("bucket_id", bucket.ID).Info("Bucket created")
	s.events.emit(ctx, domain.EventBucketCreated, roomID, actorID, bucket.ID, bucket)
	return bucket, nil
}

// UpdateBuckets renames a bucket and/or replaces the room's bucket order.
// A new order must be a permutation of the room's buckets.
func (s *BoardService) UpdateBuckets(ctx context.Context, actorID, roomID uint, update domain.BucketUpdate) (*domain.BucketOrder, error) {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": actorID})
	if update.Name == nil && update.Order == nil {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}
	if update.Name != nil {
		if update.BucketID == "" {
			return nil, fmt.Errorf("%w: bucketId is required to rename a bucket", ErrInvalidInput)
		}
		trimmed := strings.TrimSpace(*update.Name)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: bucket name cannot be empty", ErrInvalidInput)
		}
		update.Name = &trimmed
	}
	if update.Order != nil {
		if err := update.Order.Validate(); err != nil {
			return nil, wrapDetail(ErrInvalidOrder, err)
		}
	}

	order, err := s.boardRepo.UpdateBuckets(ctx, roomID, update)
	if err != nil {
		mapped := mapBoardError(err, ErrBucketNotFound)
		if errors.Is(mapped, ErrInternalServer) {
			logCtx.WithError(err).Error("BoardService.UpdateBuckets: failed to update buckets")
		} else {
			logCtx.WithError(err).Warn("BoardService.UpdateBuckets: rejected")
		}
		return nil, mapped
	}
	s.events.emit(ctx, domain.EventBucketUpdated, roomID, actorID, update.BucketID, map[string]interface{}{
		"bucketOrder":        order.Sequence(),
		"bucketOrderVersion": order.Version,
		"bucketId":           update.BucketID,
		"bucketName":         update.Name,
	})
	return order, nil
}

// CreateCard adds a card at the end of the bucket's card order.
func (s *BoardService) CreateCard(ctx context.Context, actorID, roomID uint, bucketID, title string) (*domain.Card, error) {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": actorID, "bucket_id": bucketID})
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: card title is required", ErrInvalidInput)
	}
	if bucketID == "" {
		return nil, fmt.Errorf("%w: bucketId is required", ErrInvalidInput)
	}

	card := &domain.Card{
		ID:       s.newID(),
		RoomID:   roomID,
		BucketID: bucketID,
		Title:    title,
		Members:  datatypes.JSONSlice[uint]{},
	}
	if err := s.boardRepo.CreateCard(ctx, card); err != nil {
		mapped := mapBoardError(err, ErrBucketNotFound)
		if errors.Is(mapped, ErrInternalServer) {
			logCtx.WithError(err).Error("BoardService.CreateCard: failed to save card")
		}
		return nil, mapped
	}
	logCtx.WithField("card_id", card.ID).Info("Card created")
	s.events.emit(ctx, domain.EventCardCreated, roomID, actorID, card.ID, card)
	return card, nil
}

// MoveCard moves a card within its bucket or into another one. The card,
// its old bucket and its new bucket change together or not at all.
func (s *BoardService) MoveCard(ctx context.Context, actorID, roomID uint, move domain.CardMove) (*domain.Card, error) {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": actorID, "card_id": move.CardID})
	if move.CardID == "" || move.SourceBucketID == "" {
		return nil, fmt.Errorf("%w: cardId and sourceBucket are required", ErrInvalidInput)
	}
	if move.SourceOrder == nil {
		move.SourceOrder = domain.Sequence{}
	}
	if !move.SameBucket() && move.DestOrder == nil {
		return nil, fmt.Errorf("%w: destinationBucketOrder is required", ErrInvalidOrder)
	}

	card, err := s.boardRepo.MoveCard(ctx, roomID, move)
	if err != nil {
		mapped := mapBoardError(err, ErrCardNotFound)
		if errors.Is(mapped, ErrInternalServer) {
			logCtx.WithError(err).Error("BoardService.MoveCard: failed to move card")
		} else {
			logCtx.WithError(err).Warn("BoardService.MoveCard: rejected")
		}
		return nil, mapped
	}
	data := map[string]interface{}{
		"cardId":            card.ID,
		"sourceBucket":      move.SourceBucketID,
		"sourceBucketOrder": move.SourceOrder,
	}
	if !move.SameBucket() {
		data["destinationBucket"] = move.DestBucketID
		data["destinationBucketOrder"] = move.DestOrder
	}
	s.events.emit(ctx, domain.EventCardMoved, roomID, actorID, card.ID, data)
	return card, nil
}

// GetBoard returns the room's buckets, cards and todos in display order.
func (s *BoardService) GetBoard(ctx context.Context, roomID uint) (*domain.BoardView, error) {
	logCtx := logrus.WithField("room_id", roomID)
	if err := s.requireRoom(ctx, roomID); err != nil {
		return nil, err
	}

	order, err := s.boardRepo.GetBucketOrder(ctx, roomID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		logCtx.WithError(err).Error("BoardService.GetBoard: failed to load bucket order")
		return nil, ErrInternalServer
	}
	buckets, err := s.boardRepo.ListBuckets(ctx, roomID)
	if err != nil {
		logCtx.WithError(err).Error("BoardService.GetBoard: failed to load buckets")
		return nil, ErrInternalServer
	}
	cards, err := s.boardRepo.ListCards(ctx, roomID)
	if err != nil {
		logCtx.WithError(err).Error("BoardService.GetBoard: failed to load cards")
		return nil, ErrInternalServer
	}
	todos, err := s.contentRepo.ListTodos(ctx, roomID)
	if err != nil {
		logCtx.WithError(err).Error("BoardService.GetBoard: failed to load todos")
		return nil, ErrInternalServer
	}
	return domain.AssembleBoard(roomID, order, buckets, cards, todos), nil
}

func (s *BoardService) requireRoom(ctx context.Context, roomID uint) error {
	if _, err := s.roomRepo.FindByID(ctx, roomID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRoomNotFound
		}
		logrus.WithError(err).WithField("room_id", roomID).Error("BoardService: failed to load room")
		return ErrInternalServer
	}
	return nil
}
