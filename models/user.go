package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a mobile app account. Passwords arrive pre-hashed from the
// client (deterministic digest, see utils.HashUserPassword) and are
// stored as-is.
type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Username   string    `gorm:"size:64;not null;index" json:"username"`
	Password   string    `gorm:"size:255" json:"-"`
	Nickname   string    `gorm:"size:64" json:"nickname"`
	Avatar     string    `gorm:"size:512" json:"avatar"`
	AvatarType string    `gorm:"size:16;default:emoji" json:"avatar_type"`
	IsDeleted  bool      `gorm:"default:false;index" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// BeforeCreate keeps a client-supplied creation time when present.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = now
	}
	return nil
}
