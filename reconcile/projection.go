package reconcile

import (
	"time"

	"gorm.io/gorm"

	"github.com/ronghuaxueleng/chanting-sync-go/models"
)

// Projector builds the download view: a user-scoped, denormalized
// snapshot of every entity kind with foreign keys replaced by natural
// keys. The output is the structural inverse of what upload consumes,
// so a download payload replays cleanly against another store.
type Projector struct {
	db *gorm.DB
}

// NewProjector creates a projector over the given store handle.
func NewProjector(db *gorm.DB) *Projector {
	return &Projector{db: db}
}

// Build assembles the full projection for a resolved user.
func (p *Projector) Build(user *models.User) (*DownloadResult, error) {
	data := &SyncData{
		Users: []UserEntry{{
			Username:   user.Username,
			Password:   user.Password,
			Nickname:   user.Nickname,
			Avatar:     user.Avatar,
			AvatarType: user.AvatarType,
			CreatedAt:  FormatTimestamp(user.CreatedAt),
		}},
		Chantings:           []ChantingEntry{},
		Dedications:         []DedicationEntry{},
		ChantingRecords:     []RecordEntry{},
		DailyStats:          []DailyStatEntry{},
		DedicationTemplates: []TemplateEntry{},
	}

	if err := p.projectChantings(user.ID, data); err != nil {
		return nil, err
	}
	if err := p.projectDedications(user.ID, data); err != nil {
		return nil, err
	}
	if err := p.projectRecords(user.ID, data); err != nil {
		return nil, err
	}
	if err := p.projectDailyStats(user.ID, data); err != nil {
		return nil, err
	}
	if err := p.projectTemplates(data); err != nil {
		return nil, err
	}

	return &DownloadResult{
		Status:    "success",
		Message:   "data downloaded",
		Data:      data,
		UserID:    user.ID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// projectChantings emits live texts that are built-in or owned by the
// user, with the owner's username resolved for display.
func (p *Projector) projectChantings(userID uint, data *SyncData) error {
	type row struct {
		Title         string
		Content       string
		Pronunciation string
		Type          string
		IsBuiltIn     bool
		OwnerUsername *string
		CreatedAt     time.Time
		UpdatedAt     time.Time
	}
	var rows []row
	err := p.db.Table("chantings").
		Select("chantings.title, chantings.content, chantings.pronunciation, chantings.type, chantings.is_built_in, chantings.created_at, chantings.updated_at, users.username AS owner_username").
		Joins("LEFT JOIN users ON users.id = chantings.user_id").
		Where("chantings.is_deleted = ? AND (chantings.is_built_in = ? OR chantings.user_id = ?)", false, true, userID).
		Scan(&rows).Error
	if err != nil {
		return err
	}

	for _, r := range rows {
		entry := ChantingEntry{
			Title:         r.Title,
			Content:       r.Content,
			Pronunciation: r.Pronunciation,
			Type:          r.Type,
			IsBuiltIn:     r.IsBuiltIn,
			CreatedAt:     FormatTimestamp(r.CreatedAt),
			UpdatedAt:     FormatTimestamp(r.UpdatedAt),
		}
		if r.OwnerUsername != nil {
			entry.Username = *r.OwnerUsername
		}
		data.Chantings = append(data.Chantings, entry)
	}
	return nil
}

// projectDedications emits the user's dedications with the linked
// chanting's natural key, if any, via outer join: a dedication survives
// its chanting.
func (p *Projector) projectDedications(userID uint, data *SyncData) error {
	type row struct {
		Title           string
		Content         string
		ChantingTitle   *string
		ChantingContent *string
		CreatedAt       time.Time
		UpdatedAt       time.Time
	}
	var rows []row
	err := p.db.Table("dedications").
		Select("dedications.title, dedications.content, dedications.created_at, dedications.updated_at, chantings.title AS chanting_title, chantings.content AS chanting_content").
		Joins("LEFT JOIN chantings ON chantings.id = dedications.chanting_id").
		Where("dedications.user_id = ?", userID).
		Scan(&rows).Error
	if err != nil {
		return err
	}

	for _, r := range rows {
		entry := DedicationEntry{
			Title:     r.Title,
			Content:   r.Content,
			CreatedAt: FormatTimestamp(r.CreatedAt),
			UpdatedAt: FormatTimestamp(r.UpdatedAt),
		}
		if r.ChantingTitle != nil {
			entry.ChantingTitle = *r.ChantingTitle
		}
		if r.ChantingContent != nil {
			entry.ChantingContent = *r.ChantingContent
		}
		data.Dedications = append(data.Dedications, entry)
	}
	return nil
}

// projectRecords emits the user's practice records via inner join on
// live chantings: soft-deleting a text hides the record from the
// projection even though the record row itself persists.
func (p *Projector) projectRecords(userID uint, data *SyncData) error {
	type row struct {
		ChantingTitle   string
		ChantingContent string
		CreatedAt       time.Time
		UpdatedAt       time.Time
	}
	var rows []row
	err := p.db.Table("chanting_records").
		Select("chanting_records.created_at, chanting_records.updated_at, chantings.title AS chanting_title, chantings.content AS chanting_content").
		Joins("JOIN chantings ON chantings.id = chanting_records.chanting_id").
		Where("chanting_records.user_id = ? AND chantings.is_deleted = ?", userID, false).
		Scan(&rows).Error
	if err != nil {
		return err
	}

	for _, r := range rows {
		data.ChantingRecords = append(data.ChantingRecords, RecordEntry{
			ChantingTitle:   r.ChantingTitle,
			ChantingContent: r.ChantingContent,
			CreatedAt:       FormatTimestamp(r.CreatedAt),
			UpdatedAt:       FormatTimestamp(r.UpdatedAt),
		})
	}
	return nil
}

// projectDailyStats mirrors projectRecords for the daily counters.
func (p *Projector) projectDailyStats(userID uint, data *SyncData) error {
	type row struct {
		ChantingTitle   string
		ChantingContent string
		Date            string
		Count           int
		CreatedAt       time.Time
		UpdatedAt       time.Time
	}
	var rows []row
	err := p.db.Table("daily_stats").
		Select("daily_stats.date, daily_stats.count, daily_stats.created_at, daily_stats.updated_at, chantings.title AS chanting_title, chantings.content AS chanting_content").
		Joins("JOIN chantings ON chantings.id = daily_stats.chanting_id").
		Where("daily_stats.user_id = ? AND chantings.is_deleted = ?", userID, false).
		Scan(&rows).Error
	if err != nil {
		return err
	}

	for _, r := range rows {
		data.DailyStats = append(data.DailyStats, DailyStatEntry{
			ChantingTitle:   r.ChantingTitle,
			ChantingContent: r.ChantingContent,
			Date:            r.Date,
			Count:           r.Count,
			CreatedAt:       FormatTimestamp(r.CreatedAt),
			UpdatedAt:       FormatTimestamp(r.UpdatedAt),
		})
	}
	return nil
}

// projectTemplates emits every template; they are global and unscoped.
func (p *Projector) projectTemplates(data *SyncData) error {
	var templates []models.DedicationTemplate
	if err := p.db.Find(&templates).Error; err != nil {
		return err
	}
	for _, t := range templates {
		data.DedicationTemplates = append(data.DedicationTemplates, TemplateEntry{
			Title:     t.Title,
			Content:   t.Content,
			IsBuiltIn: t.IsBuiltIn,
			CreatedAt: FormatTimestamp(t.CreatedAt),
			UpdatedAt: FormatTimestamp(t.UpdatedAt),
		})
	}
	return nil
}
