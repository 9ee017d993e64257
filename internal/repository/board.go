package repository

import (
	"context"

	"github.com/team-pig/backend/internal/domain"
)

// BoardRepository stores the positional structure of a board: buckets, the
// room's bucket order and each bucket's card order.
//
// Every method that writes more than one row does so in one transaction and
// checks the stored versions; a lost race yields ErrConflict. Ordering rule
// violations come back as domain.ErrInvalidOrder or domain.ErrStaleBoard.
type BoardRepository interface {
	// CreateBucket inserts the bucket and appends it to the room's bucket
	// order, creating the order document on first use.
	CreateBucket(ctx context.Context, bucket *domain.Bucket) error

	// ListBuckets returns every bucket of the room.
	ListBuckets(ctx context.Context, roomID uint) ([]domain.Bucket, error)

	// GetBucketOrder returns ErrNotFound when the room has no order yet.
	GetBucketOrder(ctx context.Context, roomID uint) (*domain.BucketOrder, error)

	// UpdateBuckets renames a bucket and/or replaces the bucket order after
	// validating it against the room's buckets.
	UpdateBuckets(ctx context.Context, roomID uint, update domain.BucketUpdate) (*domain.BucketOrder, error)

	// CreateCard inserts the card and appends it to its bucket's card order.
	CreateCard(ctx context.Context, card *domain.Card) error

	// ListCards returns every card of the room.
	ListCards(ctx context.Context, roomID uint) ([]domain.Card, error)

	// MoveCard reassigns the card's bucket and rewrites the touched card orders.
	MoveCard(ctx context.Context, roomID uint, move domain.CardMove) (*domain.Card, error)

	// PurgeRoom removes a soft-deleted room row and everything on its board.
	// Purging a room that no longer exists is not an error; a live room is
	// left untouched and reported with ErrRoomNotDeleted.
	PurgeRoom(ctx context.Context, roomID uint) error
}

// ContentRepository stores card content and todos.
type ContentRepository interface {
	// FindCard returns ErrCardNotFound unless the card is in roomID.
	FindCard(ctx context.Context, roomID uint, cardID string) (*domain.Card, error)

	// UpdateCard applies the patch and returns the updated card.
	UpdateCard(ctx context.Context, roomID uint, cardID string, patch domain.CardPatch) (*domain.Card, error)

	// CreateTodo inserts the todo.
	CreateTodo(ctx context.Context, todo *domain.Todo) error

	// ListTodos returns every todo of the room.
	ListTodos(ctx context.Context, roomID uint) ([]domain.Todo, error)

	// UpdateTodo applies the patch and returns the updated todo.
	UpdateTodo(ctx context.Context, roomID uint, todoID string, patch domain.TodoPatch) (*domain.Todo, error)
}
