package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/team-pig/backend/internal/middleware"
)

// currentUser returns the authenticated user or writes a 401.
func currentUser(c *gin.Context) (uint, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		logrus.WithField("path", c.FullPath()).Warn("User ID not found in context, middleware missing or failed?")
		ErrorResponse(c, http.StatusUnauthorized, "User not authenticated")
	}
	return userID, ok
}

// currentMember returns the caller and the room RequireRoomMember resolved.
func currentMember(c *gin.Context) (userID, roomID uint, ok bool) {
	userID, ok = currentUser(c)
	if !ok {
		return 0, 0, false
	}
	roomID, ok = middleware.RoomID(c)
	if !ok {
		logrus.WithField("path", c.FullPath()).Error("Room ID not found in context, membership middleware missing?")
		ErrorResponse(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
	return userID, roomID, ok
}
