package gormpersistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/team-pig/backend/internal/domain"
	"github.com/team-pig/backend/internal/repository"
)

// GormRoomRepository implements repository.RoomRepository.
// Rosters live in room_members; rooms use gorm soft delete.
type GormRoomRepository struct {
	db *gorm.DB
}

// NewGormRoomRepository creates a GormRoomRepository.
func NewGormRoomRepository(db *gorm.DB) *GormRoomRepository {
	if db == nil {
		panic("database connection cannot be nil for GormRoomRepository")
	}
	return &GormRoomRepository{db: db}
}

// Create inserts the room and its master's member row in one transaction.
func (r *GormRoomRepository) Create(ctx context.Context, room *domain.Room) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(room).Error; err != nil {
			if isDuplicateEntryError(err) {
				return repository.ErrDuplicateEntry
			}
			return fmt.Errorf("gorm: create room (invite_code: %s): %w", room.InviteCode, err)
		}
		member := domain.RoomMember{RoomID: room.ID, UserID: room.MasterID}
		if err := tx.Create(&member).Error; err != nil {
			return fmt.Errorf("gorm: add master %d to room %d: %w", room.MasterID, room.ID, err)
		}
		room.Members = []uint{room.MasterID}
		return nil
	})
}

// FindByID implements repository.RoomRepository.
func (r *GormRoomRepository) FindByID(ctx context.Context, id uint) (*domain.Room, error) {
	db := r.db.WithContext(ctx)
	var room domain.Room
	if err := db.First(&room, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRoomNotFound
		}
		return nil, fmt.Errorf("gorm: find room by id %d: %w", id, err)
	}
	if err := loadMembers(db, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// FindByInviteCode implements repository.RoomRepository.
func (r *GormRoomRepository) FindByInviteCode(ctx context.Context, code string) (*domain.Room, error) {
	db := r.db.WithContext(ctx)
	var room domain.Room
	if err := db.Where("invite_code = ?", code).First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRoomNotFound
		}
		return nil, fmt.Errorf("gorm: find room by invite code: %w", err)
	}
	if err := loadMembers(db, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// ListByMember implements repository.RoomRepository.
func (r *GormRoomRepository) ListByMember(ctx context.Context, userID uint) ([]domain.Room, error) {
	db := r.db.WithContext(ctx)
	var rooms []domain.Room
	err := db.
		Joins("JOIN room_members ON room_members.room_id = rooms.id").
		Where("room_members.user_id = ?", userID).
		Order("rooms.created_at DESC, rooms.id DESC").
		Find(&rooms).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list rooms of user %d: %w", userID, err)
	}
	ptrs := make([]*domain.Room, len(rooms))
	for i := range rooms {
		ptrs[i] = &rooms[i]
	}
	if err := loadMembers(db, ptrs...); err != nil {
		return nil, err
	}
	return rooms, nil
}

// IsMember implements repository.RoomRepository.
func (r *GormRoomRepository) IsMember(ctx context.Context, roomID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.RoomMember{}).
		Joins("JOIN rooms ON rooms.id = room_members.room_id AND rooms.deleted_at IS NULL").
		Where("room_members.room_id = ? AND room_members.user_id = ?", roomID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("gorm: check member %d of room %d: %w", userID, roomID, err)
	}
	return count > 0, nil
}

// AddMember locks the room row so a concurrent delete cannot interleave.
func (r *GormRoomRepository) AddMember(ctx context.Context, roomID, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room domain.Room
		if err := tx.Clauses(forUpdate).Select("id").First(&room, roomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repository.ErrRoomNotFound
			}
			return fmt.Errorf("gorm: lock room %d: %w", roomID, err)
		}
		if err := tx.Create(&domain.RoomMember{RoomID: roomID, UserID: userID}).Error; err != nil {
			if isDuplicateEntryError(err) {
				return repository.ErrDuplicateEntry
			}
			return fmt.Errorf("gorm: add member %d to room %d: %w", userID, roomID, err)
		}
		return nil
	})
}

// RemoveMember deletes the roster row and prunes userID from the room's card
// and todo member lists in the same transaction.
func (r *GormRoomRepository) RemoveMember(ctx context.Context, roomID, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("room_id = ? AND user_id = ?", roomID, userID).Delete(&domain.RoomMember{})
		if res.Error != nil {
			return fmt.Errorf("gorm: remove member %d from room %d: %w", userID, roomID, res.Error)
		}
		if res.RowsAffected == 0 {
			return repository.ErrNotFound
		}

		var cards []domain.Card
		if err := tx.Clauses(forUpdate).Where("room_id = ?", roomID).Find(&cards).Error; err != nil {
			return fmt.Errorf("gorm: lock cards of room %d: %w", roomID, err)
		}
		for _, card := range cards {
			next := domain.RemoveMembers(card.Members, userID)
			if len(next) == len(card.Members) {
				continue
			}
			res := tx.Model(&domain.Card{}).
				Where("id = ? AND version = ?", card.ID, card.Version).
				Updates(map[string]interface{}{
					"members": datatypes.JSONSlice[uint](next),
					"version": gorm.Expr("version + 1"),
				})
			if res.Error != nil {
				return fmt.Errorf("gorm: prune member %d from card %s: %w", userID, card.ID, res.Error)
			}
			if res.RowsAffected == 0 {
				return repository.ErrConflict
			}
		}

		var todos []domain.Todo
		if err := tx.Clauses(forUpdate).Where("room_id = ?", roomID).Find(&todos).Error; err != nil {
			return fmt.Errorf("gorm: lock todos of room %d: %w", roomID, err)
		}
		for _, todo := range todos {
			next := domain.RemoveMembers(todo.Members, userID)
			if len(next) == len(todo.Members) {
				continue
			}
			err := tx.Model(&domain.Todo{}).Where("id = ?", todo.ID).
				Update("members", datatypes.JSONSlice[uint](next)).Error
			if err != nil {
				return fmt.Errorf("gorm: prune member %d from todo %s: %w", userID, todo.ID, err)
			}
		}
		return nil
	})
}

// Update writes only the columns present in the patch.
func (r *GormRoomRepository) Update(ctx context.Context, roomID uint, patch domain.RoomPatch) (*domain.Room, error) {
	var room domain.Room
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(forUpdate).First(&room, roomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repository.ErrRoomNotFound
			}
			return fmt.Errorf("gorm: lock room %d: %w", roomID, err)
		}
		if !patch.IsEmpty() {
			if err := tx.Model(&room).Updates(patch.Columns()).Error; err != nil {
				return fmt.Errorf("gorm: update room %d: %w", roomID, err)
			}
			patch.Apply(&room)
		}
		return loadMembers(tx, &room)
	})
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// SoftDelete implements repository.RoomRepository.
func (r *GormRoomRepository) SoftDelete(ctx context.Context, roomID uint) error {
	res := r.db.WithContext(ctx).Delete(&domain.Room{}, roomID)
	if res.Error != nil {
		return fmt.Errorf("gorm: soft delete room %d: %w", roomID, res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrRoomNotFound
	}
	return nil
}

// IsInviteCodeExists also counts soft-deleted rooms, which still hold their unique code.
func (r *GormRoomRepository) IsInviteCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().Model(&domain.Room{}).Where("invite_code = ?", code).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("gorm: count rooms by invite code: %w", err)
	}
	return count > 0, nil
}

// ListDeletedBefore implements repository.RoomRepository.
func (r *GormRoomRepository) ListDeletedBefore(ctx context.Context, cutoff time.Time, limit int) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Unscoped().Model(&domain.Room{}).
		Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
		Order("deleted_at").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list deleted rooms: %w", err)
	}
	return ids, nil
}

// loadMembers fills Members for each room, in join order.
func loadMembers(db *gorm.DB, rooms ...*domain.Room) error {
	if len(rooms) == 0 {
		return nil
	}
	ids := make([]uint, len(rooms))
	byID := make(map[uint]*domain.Room, len(rooms))
	for i, room := range rooms {
		ids[i] = room.ID
		byID[room.ID] = room
		room.Members = []uint{}
	}
	var rows []domain.RoomMember
	err := db.Where("room_id IN ?", ids).Order("joined_at, user_id").Find(&rows).Error
	if err != nil {
		return fmt.Errorf("gorm: load room members: %w", err)
	}
	for _, row := range rows {
		if room, ok := byID[row.RoomID]; ok {
			room.Members = append(room.Members, row.UserID)
		}
	}
	return nil
}
