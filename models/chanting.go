package models

import "time"

// Chanting types as stored. The client historically sent "buddhaNam"
// for buddha-name texts; incoming values are normalized before use.
const (
	ChantingTypeBuddha    = "buddha"
	ChantingTypeSutra     = "sutra"
	ChantingTypeBuddhaNam = "buddhaNam" // legacy alias of buddha
)

// NormalizeChantingType maps legacy aliases onto stored type values and
// defaults empty input to buddha.
func NormalizeChantingType(t string) string {
	switch t {
	case "", ChantingTypeBuddhaNam:
		return ChantingTypeBuddha
	default:
		return t
	}
}

// Chanting is a chant or sutra text. Built-in rows are owned by an
// administrative account (or nobody) and are visible read-only to all
// users; everything else belongs to exactly one user. The sync natural
// key is (title, content, owner).
//
// Timestamps are managed explicitly because the reconciliation engine
// persists client-supplied times; gorm's automatic tracking would
// overwrite them on every save.
type Chanting struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Title         string    `gorm:"size:255;not null;index:idx_chantings_title" json:"title"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	Pronunciation string    `gorm:"type:text" json:"pronunciation"`
	Type          string    `gorm:"size:32;not null;default:buddha" json:"type"`
	IsBuiltIn     bool      `gorm:"default:false;index" json:"is_built_in"`
	UserID        *uint     `gorm:"index" json:"user_id"`
	IsDeleted     bool      `gorm:"default:false;index" json:"-"`
	CreatedAt     time.Time `gorm:"autoCreateTime:false" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}

// OwnedBy reports whether the chanting belongs to the given user.
func (c *Chanting) OwnedBy(userID uint) bool {
	return c.UserID != nil && *c.UserID == userID
}
