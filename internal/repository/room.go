package repository

import (
	"context"
	"time"

	"github.com/team-pig/backend/internal/domain"
)

// RoomRepository stores rooms and their rosters.
// Rooms returned by the Find/List methods carry their Members.
// Soft-deleted rooms behave as missing everywhere except ListDeletedBefore.
type RoomRepository interface {
	// Create inserts the room and its master's member row together.
	// An invite code collision yields ErrDuplicateEntry.
	Create(ctx context.Context, room *domain.Room) error

	// FindByID returns ErrRoomNotFound for unknown or deleted rooms.
	FindByID(ctx context.Context, id uint) (*domain.Room, error)

	// FindByInviteCode returns ErrRoomNotFound when no live room has the code.
	FindByInviteCode(ctx context.Context, code string) (*domain.Room, error)

	// ListByMember returns the rooms userID belongs to, newest first.
	ListByMember(ctx context.Context, userID uint) ([]domain.Room, error)

	// IsMember reports whether userID is on the roster of a live room.
	IsMember(ctx context.Context, roomID, userID uint) (bool, error)

	// AddMember appends userID to the roster.
	// ErrDuplicateEntry when already a member, ErrRoomNotFound when the room is gone.
	AddMember(ctx context.Context, roomID, userID uint) error

	// RemoveMember drops userID from the roster and from the member lists of
	// every card and todo in the room, in one transaction.
	// ErrNotFound when userID is not a member.
	RemoveMember(ctx context.Context, roomID, userID uint) error

	// Update applies the patch and returns the updated room.
	Update(ctx context.Context, roomID uint, patch domain.RoomPatch) (*domain.Room, error)

	// SoftDelete hides the room; its board stays until purged.
	SoftDelete(ctx context.Context, roomID uint) error

	// IsInviteCodeExists checks codes across live and deleted rooms.
	IsInviteCodeExists(ctx context.Context, code string) (bool, error)

	// ListDeletedBefore returns ids of rooms soft-deleted before cutoff.
	ListDeletedBefore(ctx context.Context, cutoff time.Time, limit int) ([]uint, error)
}
