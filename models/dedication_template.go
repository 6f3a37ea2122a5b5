package models

import "time"

// DedicationTemplate is a globally shared dedication text. Templates
// are not user-scoped; the title alone is the natural key and the first
// writer of a title wins permanently.
type DedicationTemplate struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:255;not null;uniqueIndex" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	IsBuiltIn bool      `gorm:"default:false" json:"is_built_in"`
	CreatedAt time.Time `gorm:"autoCreateTime:false" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}
