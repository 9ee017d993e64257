package middleware

import (
	"github.com/gin-gonic/gin"
)

// Keys set on the gin context by this package.
const (
	UserIDKey = "user_id"
	RoomIDKey = "room_id"
)

// UserID returns the authenticated user set by Auth.
func UserID(c *gin.Context) (uint, bool) {
	return uintFromContext(c, UserIDKey)
}

// RoomID returns the room resolved by RequireRoomMember.
func RoomID(c *gin.Context) (uint, bool) {
	return uintFromContext(c, RoomIDKey)
}

func uintFromContext(c *gin.Context, key string) (uint, bool) {
	v, exists := c.Get(key)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}

// abort ends the chain with the API's error envelope.
func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"ok": false, "message": message})
}
