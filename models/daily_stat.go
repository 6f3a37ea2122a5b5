package models

import "time"

// DateLayout is the calendar-date format used by daily stats.
const DateLayout = "2006-01-02"

// DailyStat is one user's practice count for one text on one calendar
// day. Count is a watermark: reconciliation only ever raises it via
// max() comparison, never by summing.
type DailyStat struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ChantingID uint      `gorm:"not null;uniqueIndex:uq_daily_stats_key" json:"chanting_id"`
	UserID     uint      `gorm:"not null;uniqueIndex:uq_daily_stats_key" json:"user_id"`
	Date       string    `gorm:"size:10;not null;uniqueIndex:uq_daily_stats_key" json:"date"`
	Count      int       `gorm:"not null;default:0" json:"count"`
	CreatedAt  time.Time `gorm:"autoCreateTime:false" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}
