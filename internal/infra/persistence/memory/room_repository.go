package memory

import (
	"context"
	"sort"
	"time"

	"gorm.io/datatypes"

	"github.com/team-pig/backend/internal/domain"
	"github.com/team-pig/backend/internal/repository"
)

// RoomRepository implements repository.RoomRepository on a Store.
type RoomRepository struct {
	s *Store
}

// NewRoomRepository creates a RoomRepository.
func NewRoomRepository(s *Store) *RoomRepository {
	return &RoomRepository{s: s}
}

// Create implements repository.RoomRepository.
func (r *RoomRepository) Create(_ context.Context, room *domain.Room) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rec := range r.s.rooms {
		if rec.room.InviteCode == room.InviteCode {
			return repository.ErrDuplicateEntry
		}
	}
	r.s.nextRoomID++
	now := r.s.now()
	room.ID = r.s.nextRoomID
	room.CreatedAt, room.UpdatedAt = now, now
	room.Members = []uint{room.MasterID}
	r.s.rooms[room.ID] = &roomRecord{room: copyRoom(*room)}
	return nil
}

// FindByID implements repository.RoomRepository.
func (r *RoomRepository) FindByID(_ context.Context, id uint) (*domain.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.liveRoom(id)
	if !ok {
		return nil, repository.ErrRoomNotFound
	}
	out := copyRoom(rec.room)
	return &out, nil
}

// FindByInviteCode implements repository.RoomRepository.
func (r *RoomRepository) FindByInviteCode(_ context.Context, code string) (*domain.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rec := range r.s.rooms {
		if rec.deletedAt == nil && rec.room.InviteCode == code {
			out := copyRoom(rec.room)
			return &out, nil
		}
	}
	return nil, repository.ErrRoomNotFound
}

// ListByMember implements repository.RoomRepository.
func (r *RoomRepository) ListByMember(_ context.Context, userID uint) ([]domain.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rooms := []domain.Room{}
	for _, rec := range r.s.rooms {
		if rec.deletedAt == nil && rec.room.HasMember(userID) {
			rooms = append(rooms, copyRoom(rec.room))
		}
	}
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].CreatedAt.Equal(rooms[j].CreatedAt) {
			return rooms[i].ID > rooms[j].ID
		}
		return rooms[i].CreatedAt.After(rooms[j].CreatedAt)
	})
	return rooms, nil
}

// IsMember implements repository.RoomRepository.
func (r *RoomRepository) IsMember(_ context.Context, roomID, userID uint) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.liveRoom(roomID)
	return ok && rec.room.HasMember(userID), nil
}

// AddMember implements repository.RoomRepository.
func (r *RoomRepository) AddMember(_ context.Context, roomID, userID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.liveRoom(roomID)
	if !ok {
		return repository.ErrRoomNotFound
	}
	if rec.room.HasMember(userID) {
		return repository.ErrDuplicateEntry
	}
	rec.room.Members = append(rec.room.Members, userID)
	return nil
}

// RemoveMember implements repository.RoomRepository.
func (r *RoomRepository) RemoveMember(_ context.Context, roomID, userID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.rooms[roomID]
	if !ok || !rec.room.HasMember(userID) {
		return repository.ErrNotFound
	}
	rec.room.Members = domain.RemoveMembers(rec.room.Members, userID)
	now := r.s.now()
	for _, c := range r.s.cards {
		if c.RoomID != roomID {
			continue
		}
		if next := domain.RemoveMembers(c.Members, userID); len(next) != len(c.Members) {
			c.Members = datatypes.JSONSlice[uint](next)
			c.Version++
			c.UpdatedAt = now
		}
	}
	for _, t := range r.s.todos {
		if t.RoomID != roomID {
			continue
		}
		if next := domain.RemoveMembers(t.Members, userID); len(next) != len(t.Members) {
			t.Members = datatypes.JSONSlice[uint](next)
			t.UpdatedAt = now
		}
	}
	return nil
}

// Update implements repository.RoomRepository.
func (r *RoomRepository) Update(_ context.Context, roomID uint, patch domain.RoomPatch) (*domain.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.liveRoom(roomID)
	if !ok {
		return nil, repository.ErrRoomNotFound
	}
	if !patch.IsEmpty() {
		patch.Apply(&rec.room)
		rec.room.UpdatedAt = r.s.now()
	}
	out := copyRoom(rec.room)
	return &out, nil
}

// SoftDelete implements repository.RoomRepository.
func (r *RoomRepository) SoftDelete(_ context.Context, roomID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.liveRoom(roomID)
	if !ok {
		return repository.ErrRoomNotFound
	}
	now := r.s.now()
	rec.deletedAt = &now
	return nil
}

// IsInviteCodeExists implements repository.RoomRepository.
func (r *RoomRepository) IsInviteCodeExists(_ context.Context, code string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rec := range r.s.rooms {
		if rec.room.InviteCode == code {
			return true, nil
		}
	}
	return false, nil
}

// ListDeletedBefore implements repository.RoomRepository.
func (r *RoomRepository) ListDeletedBefore(_ context.Context, cutoff time.Time, limit int) ([]uint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	type deleted struct {
		id uint
		at time.Time
	}
	var found []deleted
	for id, rec := range r.s.rooms {
		if rec.deletedAt != nil && rec.deletedAt.Before(cutoff) {
			found = append(found, deleted{id, *rec.deletedAt})
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].at.Before(found[j].at) })
	ids := []uint{}
	for i, d := range found {
		if limit > 0 && i >= limit {
			break
		}
		ids = append(ids, d.id)
	}
	return ids, nil
}
