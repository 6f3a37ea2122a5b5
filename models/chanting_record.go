package models

import "time"

// ChantingRecord marks that a user has practiced a given text. The sync
// protocol keeps at most one record per (chanting, user); the unique
// index settles concurrent uploads racing on that key.
type ChantingRecord struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ChantingID uint      `gorm:"not null;uniqueIndex:uq_records_chanting_user" json:"chanting_id"`
	UserID     *uint     `gorm:"uniqueIndex:uq_records_chanting_user" json:"user_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime:false" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}
