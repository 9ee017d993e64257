package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/team-pig/backend/internal/service"
)

type fakeAuthorizer struct {
	err error
}

func (f fakeAuthorizer) AuthorizeMember(context.Context, uint, uint) error {
	return f.err
}

func membershipRouter(rooms MemberAuthorizer) *gin.Engine {
	r := gin.New()
	r.GET("/room/:roomId/board",
		func(c *gin.Context) { c.Set(UserIDKey, uint(3)) },
		RequireRoomMember(rooms),
		func(c *gin.Context) {
			id, _ := RoomID(c)
			c.JSON(http.StatusOK, gin.H{"roomId": id})
		})
	return r
}

func TestRequireRoomMember(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		err    error
		status int
	}{
		{"member", "/room/5/board", nil, http.StatusOK},
		{"bad id", "/room/abc/board", nil, http.StatusBadRequest},
		{"zero id", "/room/0/board", nil, http.StatusBadRequest},
		{"not a member", "/room/5/board", service.ErrNotRoomMember, http.StatusForbidden},
		{"no room", "/room/5/board", service.ErrRoomNotFound, http.StatusNotFound},
		{"store down", "/room/5/board", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			membershipRouter(fakeAuthorizer{err: tt.err}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.JSONEq(t, `{"roomId":5}`, w.Body.String())
			}
		})
	}
}
