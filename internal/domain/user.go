// Package domain holds the board's records and the rules that keep them consistent.
package domain

import "time"

// User is an account that can own and join rooms.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"userId"`
	Username  string    `gorm:"type:varchar(191);uniqueIndex:idx_username;not null" json:"username"`
	Password  string    `gorm:"type:text;not null" json:"-"` // bcrypt hash
	Email     string    `gorm:"type:varchar(191);uniqueIndex:idx_email" json:"email,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`
}
