package domain

import "time"

// Board event types published after a successful mutation.
const (
	EventRoomUpdated   = "room.updated"
	EventRoomDeleted   = "room.deleted"
	EventMemberJoined  = "member.joined"
	EventMemberLeft    = "member.left"
	EventBucketCreated = "bucket.created"
	EventBucketUpdated = "bucket.updated"
	EventCardCreated   = "card.created"
	EventCardUpdated   = "card.updated"
	EventCardMoved     = "card.moved"
	EventTodoCreated   = "todo.created"
	EventTodoUpdated   = "todo.updated"
)

// BoardEvent tells the clients of a room that something on its board changed.
type BoardEvent struct {
	Type     string      `json:"type"`
	RoomID   uint        `json:"roomId"`
	ActorID  uint        `json:"actorId"`
	EntityID string      `json:"entityId,omitempty"`
	At       time.Time   `json:"at"`
	Data     interface{} `json:"data,omitempty"`
}
