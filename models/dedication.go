package models

import "time"

// Dedication is a user's dedication-of-merit text, optionally linked to
// the chanting it was composed for. Natural key: (title, content, owner).
type Dedication struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"size:255;not null;index:idx_dedications_title" json:"title"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	ChantingID *uint     `gorm:"index" json:"chanting_id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime:false" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}
