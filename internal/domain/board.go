package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Bucket is a named column. CardOrder is the authoritative order of the
// cards whose BucketID is this bucket.
type Bucket struct {
	ID        string                      `gorm:"primaryKey;size:36" json:"bucketId"`
	RoomID    uint                        `gorm:"index;not null" json:"roomId"`
	Name      string                      `gorm:"size:100;not null" json:"bucketName"`
	CardOrder datatypes.JSONSlice[string] `json:"cardOrder"`
	Version   uint                        `gorm:"not null;default:0" json:"version"`
	CreatedAt time.Time                   `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time                   `gorm:"autoUpdateTime" json:"updatedAt"`
}

// Order returns the card order as a Sequence.
func (b *Bucket) Order() Sequence {
	return Sequence(b.CardOrder)
}

// BucketOrder is the room-level order of buckets. One row per room.
type BucketOrder struct {
	RoomID    uint                        `gorm:"primaryKey;autoIncrement:false" json:"roomId"`
	Order     datatypes.JSONSlice[string] `gorm:"column:bucket_order" json:"bucketOrder"`
	Version   uint                        `gorm:"not null;default:0" json:"version"`
	UpdatedAt time.Time                   `gorm:"autoUpdateTime" json:"updatedAt"`
}

// Sequence returns the bucket order as a Sequence.
func (o *BucketOrder) Sequence() Sequence {
	return Sequence(o.Order)
}

// Card is a task inside a bucket.
type Card struct {
	ID          string                    `gorm:"primaryKey;size:36" json:"cardId"`
	RoomID      uint                      `gorm:"index;not null" json:"roomId"`
	BucketID    string                    `gorm:"size:36;index;not null" json:"bucketId"`
	Title       string                    `gorm:"size:255;not null" json:"cardTitle"`
	StartDate   *time.Time                `json:"startDate"`
	EndDate     *time.Time                `json:"endDate"`
	Description string                    `gorm:"type:text" json:"desc"`
	Members     datatypes.JSONSlice[uint] `json:"taskMembers"`
	Version     uint                      `gorm:"not null;default:0" json:"version"`
	CreatedAt   time.Time                 `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time                 `gorm:"autoUpdateTime" json:"modifiedAt"`
}

// Todo is a checklist item of a card.
type Todo struct {
	ID        string                    `gorm:"primaryKey;size:36" json:"todoId"`
	RoomID    uint                      `gorm:"index;not null" json:"roomId"`
	BucketID  string                    `gorm:"size:36;not null" json:"bucketId"`
	CardID    string                    `gorm:"size:36;index;not null" json:"cardId"`
	Title     string                    `gorm:"size:255;not null" json:"todoTitle"`
	Members   datatypes.JSONSlice[uint] `json:"members"`
	IsChecked bool                      `gorm:"not null;default:false" json:"isChecked"`
	CreatedAt time.Time                 `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time                 `gorm:"autoUpdateTime" json:"updatedAt"`
}

// BucketUpdate is one PATCH of the bucket list: an optional rename and an
// optional full reorder.
type BucketUpdate struct {
	BucketID        string
	Name            *string
	Order           Sequence // nil leaves the order untouched
	ExpectedVersion *uint
}

// Validate checks a reorder against the ids of the buckets that exist in
// the room and the stored order document.
func (u BucketUpdate) Validate(existing Sequence, current *BucketOrder) error {
	if u.Order == nil {
		return nil
	}
	var version uint
	if current != nil {
		version = current.Version
	}
	if u.ExpectedVersion != nil && *u.ExpectedVersion != version {
		return ErrStaleBoard
	}
	return u.Order.PermutationOf(existing)
}
