package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/team-pig/backend/internal/domain"
	"github.com/team-pig/backend/internal/repository"
)

const maxInviteCodeAttempts = 10

// RoomInput holds the fields of a new room.
type RoomInput struct {
	Name     string
	Image    string
	Subtitle string
	Tag      string
}

// RoomService owns room identity, the roster and invite codes.
type RoomService struct {
	roomRepo repository.RoomRepository
	purger   PurgeScheduler
	events   emitter
	newCode  func() string
}

// NewRoomService creates a RoomService. publisher and purger may be nil.
func NewRoomService(roomRepo repository.RoomRepository, publisher EventPublisher, purger PurgeScheduler) *RoomService {
	if roomRepo == nil {
		panic("RoomRepository cannot be nil for RoomService")
	}
	if purger == nil {
		purger = nopScheduler{}
	}
	return &RoomService{
		roomRepo: roomRepo,
		purger:   purger,
		events:   newEmitter(publisher),
		newCode:  func() string { return uuid.NewString() },
	}
}

// ListRoomsForUser returns the caller's rooms, newest first.
func (s *RoomService) ListRoomsForUser(ctx context.Context, userID uint) ([]domain.Room, error) {
	rooms, err := s.roomRepo.ListByMember(ctx, userID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("RoomService.ListRoomsForUser: repository error")
		return nil, ErrInternalServer
	}
	if rooms == nil {
		rooms = []domain.Room{}
	}
	return rooms, nil
}

// CreateRoom creates a room with userID as master and sole member.
func (s *RoomService) CreateRoom(ctx context.Context, userID uint, in RoomInput) (*domain.Room, error) {
	logCtx := logrus.WithField("user_id", userID)
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: room name is required", ErrInvalidInput)
	}

	for attempt := 1; attempt <= maxInviteCodeAttempts; attempt++ {
		code, err := s.generateUniqueInviteCode(ctx)
		if err != nil {
			logCtx.WithError(err).Error("RoomService.CreateRoom: failed to generate invite code")
			return nil, ErrInternalServer
		}
		room := &domain.Room{
			Name:       name,
			Image:      in.Image,
			Subtitle:   in.Subtitle,
			Tag:        in.Tag,
			MasterID:   userID,
			InviteCode: code,
		}
		err = s.roomRepo.Create(ctx, room)
		if errors.Is(err, repository.ErrDuplicateEntry) {
			// another room took the code between the check and the insert
			logCtx.WithField("attempt", attempt).Warn("RoomService.CreateRoom: invite code collision, retrying")
			continue
		}
		if err != nil {
			logCtx.WithError(err).Error("RoomService.CreateRoom: failed to save room")
			return nil, ErrInternalServer
		}
		room.Members = []uint{userID}
		logCtx.WithField("room_id", room.ID).Info("Room created")
		return room, nil
	}
	logCtx.Error("RoomService.CreateRoom: invite code kept colliding")
	return nil, ErrInternalServer
}

// JoinRoom redeems an invite code. When userID is already a member the room
// is returned together with ErrAlreadyMember and nothing changes.
func (s *RoomService) JoinRoom(ctx context.Context, userID uint, inviteCode string) (*domain.Room, error) {
	logCtx := logrus.WithField("user_id", userID)
	inviteCode = strings.TrimSpace(inviteCode)
	if inviteCode == "" {
		return nil, ErrInvalidInviteCode
	}

	room, err := s.roomRepo.FindByInviteCode(ctx, inviteCode)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logCtx.Warn("RoomService.JoinRoom: unknown invite code")
			return nil, ErrInvalidInviteCode
		}
		logCtx.WithError(err).Error("RoomService.JoinRoom: repository error")
		return nil, ErrInternalServer
	}
	logCtx = logCtx.WithField("room_id", room.ID)

	if room.HasMember(userID) {
		return room, ErrAlreadyMember
	}
	if err := s.roomRepo.AddMember(ctx, room.ID, userID); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEntry):
			return room, ErrAlreadyMember
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrRoomNotFound
		}
		logCtx.WithError(err).Error("RoomService.JoinRoom: failed to add member")
		return nil, ErrInternalServer
	}
	room.Members = append(room.Members, userID)

	logCtx.Info("User joined room")
	s.events.emit(ctx, domain.EventMemberJoined, room.ID, userID, "", map[string]uint{"userId": userID})
	return room, nil
}

// RenameRoom applies patch to the room. Only the master may rename.
func (s *RoomService) RenameRoom(ctx context.Context, userID, roomID uint, patch domain.RoomPatch) (*domain.Room, error) {
	room, err := s.AuthorizeMaster(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, fmt.Errorf("%w: room name cannot be empty", ErrInvalidInput)
	}
	if patch.IsEmpty() {
		return room, nil
	}

	updated, err := s.roomRepo.Update(ctx, roomID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		logrus.WithError(err).WithField("room_id", roomID).Error("RoomService.RenameRoom: failed to update room")
		return nil, ErrInternalServer
	}
	s.events.emit(ctx, domain.EventRoomUpdated, roomID, userID, "", updated)
	return updated, nil
}

// DeleteRoom hides the room at once and queues the purge of its board.
// A failed enqueue is left to the periodic sweep.
func (s *RoomService) DeleteRoom(ctx context.Context, userID, roomID uint) error {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "room_id": roomID})
	if _, err := s.AuthorizeMaster(ctx, roomID, userID); err != nil {
		return err
	}
	if err := s.roomRepo.SoftDelete(ctx, roomID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRoomNotFound
		}
		logCtx.WithError(err).Error("RoomService.DeleteRoom: failed to delete room")
		return ErrInternalServer
	}
	if err := s.purger.SchedulePurge(ctx, roomID); err != nil {
		logCtx.WithError(err).Warn("RoomService.DeleteRoom: failed to schedule purge, sweep will pick it up")
	}
	logCtx.Info("Room deleted")
	s.events.emit(ctx, domain.EventRoomDeleted, roomID, userID, "", nil)
	return nil
}

// LeaveRoom removes userID from the roster and from every card and todo
// member list in the room. The master cannot leave.
func (s *RoomService) LeaveRoom(ctx context.Context, userID, roomID uint) error {
	room, err := s.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if room.IsMaster(userID) {
		return ErrMasterCannotLeave
	}
	if !room.HasMember(userID) {
		return ErrNotRoomMember
	}
	if err := s.roomRepo.RemoveMember(ctx, roomID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotRoomMember
		}
		logrus.WithError(err).WithFields(logrus.Fields{"user_id": userID, "room_id": roomID}).
			Error("RoomService.LeaveRoom: failed to remove member")
		return ErrInternalServer
	}
	s.events.emit(ctx, domain.EventMemberLeft, roomID, userID, "", map[string]uint{"userId": userID})
	return nil
}

// GetRoom returns a live room with its roster.
func (s *RoomService) GetRoom(ctx context.Context, roomID uint) (*domain.Room, error) {
	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		logrus.WithError(err).WithField("room_id", roomID).Error("RoomService.GetRoom: repository error")
		return nil, ErrInternalServer
	}
	return room, nil
}

// AuthorizeMember returns nil when userID is on the roster of the live room.
// The room itself is loaded only when the roster check fails, to tell a
// missing room (ErrRoomNotFound) from an outsider (ErrNotRoomMember).
func (s *RoomService) AuthorizeMember(ctx context.Context, roomID, userID uint) error {
	ok, err := s.roomRepo.IsMember(ctx, roomID, userID)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"room_id": roomID, "user_id": userID}).
			Error("RoomService.AuthorizeMember: repository error")
		return ErrInternalServer
	}
	if ok {
		return nil
	}
	if _, err := s.GetRoom(ctx, roomID); err != nil {
		return err
	}
	return ErrNotRoomMember
}

// AuthorizeMaster returns the room when userID is its master.
func (s *RoomService) AuthorizeMaster(ctx context.Context, roomID, userID uint) (*domain.Room, error) {
	room, err := s.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.IsMaster(userID) {
		return nil, ErrNotRoomMaster
	}
	return room, nil
}

func (s *RoomService) generateUniqueInviteCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxInviteCodeAttempts; attempt++ {
		code := s.newCode()
		exists, err := s.roomRepo.IsInviteCodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check invite code: %w", err)
		}
		if !exists {
			return code, nil
		}
		logrus.WithField("attempt", attempt+1).Warn("Generated invite code already exists, retrying")
	}
	return "", fmt.Errorf("no unique invite code after %d attempts", maxInviteCodeAttempts)
}
