package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/team-pig/backend/internal/domain"
	"github.com/team-pig/backend/internal/middleware"
	"github.com/team-pig/backend/internal/service"
)

// RoomHandler serves the room directory endpoints.
type RoomHandler struct {
	roomService   *service.RoomService
	inviteLimiter *middleware.InviteLimiter
}

// NewRoomHandler creates a RoomHandler. A nil limiter leaves invite
// redemption unthrottled.
func NewRoomHandler(roomService *service.RoomService, inviteLimiter *middleware.InviteLimiter) *RoomHandler {
	if roomService == nil {
		panic("RoomService cannot be nil for RoomHandler")
	}
	return &RoomHandler{roomService: roomService, inviteLimiter: inviteLimiter}
}

// ListRooms handles GET /rooms.
func (h *RoomHandler) ListRooms(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	rooms, err := h.roomService.ListRoomsForUser(c.Request.Context(), userID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Rooms loaded", gin.H{"room": rooms})
}

// CreateOrJoinRoomRequest is the body of POST /room. With an inviteCode the
// caller joins that room and the other fields are ignored.
type CreateOrJoinRoomRequest struct {
	RoomName   string `json:"roomName" binding:"max=100"`
	RoomImage  string `json:"roomImage" binding:"max=512"`
	Subtitle   string `json:"subtitle" binding:"max=255"`
	Tag        string `json:"tag" binding:"max=100"`
	InviteCode string `json:"inviteCode" binding:"max=64"`
}

// CreateOrJoinRoom handles POST /room.
func (h *RoomHandler) CreateOrJoinRoom(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req CreateOrJoinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindingError(c, err)
		return
	}

	if req.InviteCode != "" {
		h.joinRoom(c, userID, req.InviteCode)
		return
	}

	room, err := h.roomService.CreateRoom(c.Request.Context(), userID, service.RoomInput{
		Name:     req.RoomName,
		Image:    req.RoomImage,
		Subtitle: req.Subtitle,
		Tag:      req.Tag,
	})
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	logrus.WithFields(logrus.Fields{"user_id": userID, "room_id": room.ID}).Info("Handler.CreateRoom: Room created successfully")
	SuccessResponse(c, http.StatusCreated, "Room created successfully", gin.H{"room": room})
}

func (h *RoomHandler) joinRoom(c *gin.Context, userID uint, inviteCode string) {
	if h.inviteLimiter != nil && !h.inviteLimiter.Allow(userID) {
		logrus.WithField("user_id", userID).Warn("Handler.JoinRoom: Invite attempts throttled")
		ErrorResponse(c, http.StatusTooManyRequests, "Too many invite attempts, try again later")
		return
	}

	room, err := h.roomService.JoinRoom(c.Request.Context(), userID, inviteCode)
	if errors.Is(err, service.ErrAlreadyMember) && room != nil {
		c.JSON(http.StatusConflict, gin.H{"ok": false, "message": err.Error(), "room": room})
		return
	}
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Joined room successfully", gin.H{"room": room})
}

type RenameRoomRequest struct {
	RoomID    uint    `json:"roomId" binding:"required"`
	RoomName  *string `json:"roomName" binding:"omitempty,max=100"`
	RoomImage *string `json:"roomImage" binding:"omitempty,max=512"`
	Subtitle  *string `json:"subtitle" binding:"omitempty,max=255"`
	Tag       *string `json:"tag" binding:"omitempty,max=100"`
}

// RenameRoom handles PUT /room. Fields left out keep their value.
func (h *RoomHandler) RenameRoom(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req RenameRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindingError(c, err)
		return
	}

	room, err := h.roomService.RenameRoom(c.Request.Context(), userID, req.RoomID, domain.RoomPatch{
		Name:     req.RoomName,
		Image:    req.RoomImage,
		Subtitle: req.Subtitle,
		Tag:      req.Tag,
	})
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Room updated", gin.H{"room": room})
}

type RoomIDRequest struct {
	RoomID uint `json:"roomId" binding:"required"`
}

// DeleteRoom handles DELETE /room.
func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req RoomIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindingError(c, err)
		return
	}
	if err := h.roomService.DeleteRoom(c.Request.Context(), userID, req.RoomID); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Room deleted", gin.H{"roomId": req.RoomID})
}

// LeaveRoom handles PUT /exitroom.
func (h *RoomHandler) LeaveRoom(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req RoomIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindingError(c, err)
		return
	}
	if err := h.roomService.LeaveRoom(c.Request.Context(), userID, req.RoomID); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Left room", gin.H{"roomId": req.RoomID})
}
