package http

import (
	"github.com/gin-gonic/gin"

	"github.com/team-pig/backend/internal/middleware"
)

// Routes bundles what RegisterRoutes mounts. RateLimit and WebSocket are optional.
type Routes struct {
	Auth      *AuthHandler
	Room      *RoomHandler
	Board     *BoardHandler
	Content   *ContentHandler
	Members   middleware.MemberAuthorizer
	JWTSecret string

	RateLimit gin.HandlerFunc
	WebSocket gin.HandlerFunc
}

// RegisterRoutes mounts the public API on r.
func RegisterRoutes(r gin.IRouter, rt Routes) {
	api := r
	if rt.RateLimit != nil {
		api = r.Group("", rt.RateLimit)
	}

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", rt.Auth.Register)
		authGroup.POST("/login", rt.Auth.Login)
	}

	authed := api.Group("", middleware.Auth(rt.JWTSecret))
	{
		authed.GET("/rooms", rt.Room.ListRooms)
		authed.POST("/room", rt.Room.CreateOrJoinRoom)
		authed.PUT("/room", rt.Room.RenameRoom)
		authed.DELETE("/room", rt.Room.DeleteRoom)
		authed.PUT("/exitroom", rt.Room.LeaveRoom)
	}

	board := authed.Group("/room/:roomId", middleware.RequireRoomMember(rt.Members))
	{
		board.GET("/board", rt.Board.GetBoard)
		board.POST("/bucket", rt.Board.CreateBucket)
		board.PATCH("/bucket", rt.Board.UpdateBuckets)
		board.POST("/card", rt.Board.CreateCard)
		board.PATCH("/card", rt.Content.UpdateCard)
		board.PATCH("/cardLocation", rt.Board.MoveCard)
		board.POST("/todo", rt.Content.CreateTodo)
		board.PATCH("/todo", rt.Content.UpdateTodo)
	}

	if rt.WebSocket != nil {
		r.GET("/ws/room/:roomId", middleware.Auth(rt.JWTSecret), middleware.RequireRoomMember(rt.Members), rt.WebSocket)
	}
}
