package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/team-pig/backend/internal/service"
)

// MemberAuthorizer checks a caller against a room's roster.
type MemberAuthorizer interface {
	AuthorizeMember(ctx context.Context, roomID, userID uint) error
}

// RequireRoomMember resolves the :roomId path parameter and lets the request
// through only when the authenticated user is a member of that live room.
// The room id is stored under RoomIDKey.
func RequireRoomMember(rooms MemberAuthorizer) gin.HandlerFunc {
	if rooms == nil {
		panic("MemberAuthorizer cannot be nil for RequireRoomMember middleware")
	}
	return func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "User not authenticated")
			return
		}
		roomID64, err := strconv.ParseUint(c.Param("roomId"), 10, 32)
		if err != nil || roomID64 == 0 {
			abort(c, http.StatusBadRequest, "Invalid room ID format")
			return
		}
		roomID := uint(roomID64)

		if err := rooms.AuthorizeMember(c.Request.Context(), roomID, userID); err != nil {
			switch {
			case errors.Is(err, service.ErrRoomNotFound):
				abort(c, http.StatusNotFound, err.Error())
			case errors.Is(err, service.ErrNotRoomMember):
				abort(c, http.StatusForbidden, err.Error())
			default:
				logrus.WithError(err).WithFields(logrus.Fields{"room_id": roomID, "user_id": userID}).
					Error("RequireRoomMember: membership check failed")
				abort(c, http.StatusInternalServerError, "An internal error occurred")
			}
			return
		}
		c.Set(RoomIDKey, roomID)
		c.Next()
	}
}
