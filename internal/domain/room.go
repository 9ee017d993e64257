package domain

import (
	"time"

	"gorm.io/gorm"
)

// Room is a shared workspace holding one board.
// The master is always one of the members.
type Room struct {
	ID         uint           `gorm:"primaryKey" json:"roomId"`
	Name       string         `gorm:"size:100;not null" json:"roomName"`
	Image      string         `gorm:"size:512" json:"roomImage"`
	Subtitle   string         `gorm:"size:255" json:"subtitle"`
	Tag        string         `gorm:"size:100" json:"tag"`
	MasterID   uint           `gorm:"index;not null" json:"master"`
	InviteCode string         `gorm:"uniqueIndex;size:64;not null" json:"inviteCode"`
	Members    []uint         `gorm:"-" json:"members"` // loaded from room_members, join order
	CreatedAt  time.Time      `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// RoomMember is one row of a room's roster.
type RoomMember struct {
	RoomID   uint      `gorm:"primaryKey;autoIncrement:false"`
	UserID   uint      `gorm:"primaryKey;autoIncrement:false;index"`
	JoinedAt time.Time `gorm:"autoCreateTime"`
}

// HasMember reports whether userID is on the roster.
func (r *Room) HasMember(userID uint) bool {
	for _, m := range r.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// IsMaster reports whether userID owns the room.
func (r *Room) IsMaster(userID uint) bool {
	return r.MasterID == userID
}

// RoomPatch carries the room fields a rename may change. Nil fields are left alone.
type RoomPatch struct {
	Name     *string
	Image    *string
	Subtitle *string
	Tag      *string
}

// IsEmpty reports whether the patch changes nothing.
func (p RoomPatch) IsEmpty() bool {
	return p.Name == nil && p.Image == nil && p.Subtitle == nil && p.Tag == nil
}

// Apply writes the present fields onto room.
func (p RoomPatch) Apply(room *Room) {
	if p.Name != nil {
		room.Name = *p.Name
	}
	if p.Image != nil {
		room.Image = *p.Image
	}
	if p.Subtitle != nil {
		room.Subtitle = *p.Subtitle
	}
	if p.Tag != nil {
		room.Tag = *p.Tag
	}
}

// Columns returns the column assignments for the present fields.
func (p RoomPatch) Columns() map[string]interface{} {
	cols := make(map[string]interface{}, 4)
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Image != nil {
		cols["image"] = *p.Image
	}
	if p.Subtitle != nil {
		cols["subtitle"] = *p.Subtitle
	}
	if p.Tag != nil {
		cols["tag"] = *p.Tag
	}
	return cols
}
