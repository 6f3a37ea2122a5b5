package reconcile

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ronghuaxueleng/chanting-sync-go/models"
)

// Policy applies the per-kind merge rules of one upload session. Skip
// decisions (missing key fields, unresolved references, already-
// satisfied matches) are silent and local; only storage errors
// propagate, and those abort the whole batch.
type Policy struct {
	tx      *gorm.DB
	matcher *Matcher
	user    *models.User
	isAdmin bool
	log     *zap.SugaredLogger
}

// NewPolicy builds the merge policy for one authenticated session.
// isAdmin widens what the session may own: only administrative accounts
// may create built-in chantings.
func NewPolicy(tx *gorm.DB, user *models.User, isAdmin bool, log *zap.SugaredLogger) *Policy {
	return &Policy{
		tx:      tx,
		matcher: NewMatcher(tx),
		user:    user,
		isAdmin: isAdmin,
		log:     log,
	}
}

// SyncUsers applies profile updates for the acting user only. Entries
// for any other username are ignored outright, so a payload can never
// touch someone else's account.
func (p *Policy) SyncUsers(items []UserEntry) (Counters, error) {
	var c Counters
	for _, item := range items {
		if item.Username == "" || item.Username != p.user.Username {
			continue
		}

		changed := false
		if item.Nickname != "" && item.Nickname != p.user.Nickname {
			p.user.Nickname = item.Nickname
			changed = true
		}
		if item.Avatar != "" && item.Avatar != p.user.Avatar {
			p.user.Avatar = item.Avatar
			changed = true
		}
		if item.AvatarType != "" && item.AvatarType != p.user.AvatarType {
			p.user.AvatarType = item.AvatarType
			changed = true
		}

		if changed {
			if err := p.tx.Save(p.user).Error; err != nil {
				return c, err
			}
			c.Updated++
		}
	}
	return c, nil
}

// SyncChantings merges chant texts. An existing row owned by the acting
// user takes a pronunciation-only update; a match through the built-in
// fallback is already satisfied and counts as neither synced nor
// updated; no match creates a new row, with is_built_in forced off for
// non-administrative sessions regardless of what the device claimed.
func (p *Policy) SyncChantings(items []ChantingEntry) (Counters, error) {
	var c Counters
	for _, item := range items {
		if item.Title == "" || item.Content == "" {
			continue
		}

		existing, err := p.matcher.FindChanting(p.user.ID, item.Title, item.Content)
		if err != nil {
			return c, err
		}

		switch {
		case existing != nil && existing.OwnedBy(p.user.ID):
			if item.Pronunciation != "" {
				existing.Pronunciation = item.Pronunciation
			}
			existing.UpdatedAt = ParseTimestamp(item.UpdatedAt)
			if err := p.tx.Save(existing).Error; err != nil {
				return c, err
			}
			c.Updated++
		case existing != nil:
			// Built-in fallback matched: the user gains implicit read
			// access, never write access.
			p.log.Debugw("chanting already satisfied by built-in", "title", item.Title)
		default:
			isBuiltIn := item.IsBuiltIn && p.isAdmin
			userID := p.user.ID
			chanting := models.Chanting{
				Title:         item.Title,
				Content:       item.Content,
				Pronunciation: item.Pronunciation,
				Type:          models.NormalizeChantingType(item.Type),
				IsBuiltIn:     isBuiltIn,
				UserID:        &userID,
				CreatedAt:     ParseTimestamp(item.CreatedAt),
				UpdatedAt:     ParseTimestamp(item.UpdatedAt),
			}
			if err := p.tx.Create(&chanting).Error; err != nil {
				return c, err
			}
			c.Synced++
		}
	}
	return c, nil
}

// SyncDedications merges dedications. A match re-resolves the chanting
// reference from the incoming natural-key pair and counts as updated
// even when nothing else changed; no match creates the row with the
// reference left null when unresolved.
func (p *Policy) SyncDedications(items []DedicationEntry) (Counters, error) {
	var c Counters
	for _, item := range items {
		if item.Title == "" || item.Content == "" {
			continue
		}

		existing, err := p.matcher.FindDedication(p.user.ID, item.Title, item.Content)
		if err != nil {
			return c, err
		}

		chantingID, err := p.resolveReference(item.ChantingTitle, item.ChantingContent)
		if err != nil {
			return c, err
		}

		if existing != nil {
			if chantingID != nil {
				existing.ChantingID = chantingID
			}
			existing.UpdatedAt = ParseTimestamp(item.UpdatedAt)
			if err := p.tx.Save(existing).Error; err != nil {
				return c, err
			}
			c.Updated++
			continue
		}

		dedication := models.Dedication{
			Title:      item.Title,
			Content:    item.Content,
			ChantingID: chantingID,
			UserID:     p.user.ID,
			CreatedAt:  ParseTimestamp(item.CreatedAt),
			UpdatedAt:  ParseTimestamp(item.UpdatedAt),
		}
		if err := p.tx.Create(&dedication).Error; err != nil {
			return c, err
		}
		c.Synced++
	}
	return c, nil
}

// SyncRecords merges practice records: first write wins, no update
// path. A record whose referenced text the server does not know is
// skipped whole.
func (p *Policy) SyncRecords(items []RecordEntry) (Counters, error) {
	var c Counters
	for _, item := range items {
		if item.ChantingTitle == "" || item.ChantingContent == "" {
			continue
		}

		chanting, err := p.matcher.ResolveChanting(item.ChantingTitle, item.ChantingContent)
		if err != nil {
			return c, err
		}
		if chanting == nil {
			p.log.Debugw("record references unknown chanting", "title", item.ChantingTitle)
			continue
		}

		existing, err := p.matcher.FindRecord(chanting.ID, p.user.ID)
		if err != nil {
			return c, err
		}
		if existing != nil {
			continue
		}

		userID := p.user.ID
		record := models.ChantingRecord{
			ChantingID: chanting.ID,
			UserID:     &userID,
			CreatedAt:  ParseTimestamp(item.CreatedAt),
			UpdatedAt:  ParseTimestamp(item.UpdatedAt),
		}
		if err := p.tx.Create(&record).Error; err != nil {
			return c, err
		}
		c.Synced++
	}
	return c, nil
}

// SyncDailyStats merges daily counters. The stored count is a
// watermark: it advances only when the incoming count is strictly
// greater and it never decreases.
func (p *Policy) SyncDailyStats(items []DailyStatEntry) (Counters, error) {
	var c Counters
	for _, item := range items {
		if item.ChantingTitle == "" || item.ChantingContent == "" || item.Date == "" {
			continue
		}
		if _, err := time.Parse(models.DateLayout, item.Date); err != nil {
			continue
		}

		chanting, err := p.matcher.ResolveChanting(item.ChantingTitle, item.ChantingContent)
		if err != nil {
			return c, err
		}
		if chanting == nil {
			continue
		}

		existing, err := p.matcher.FindDailyStat(chanting.ID, p.user.ID, item.Date)
		if err != nil {
			return c, err
		}

		if existing != nil {
			if item.Count > existing.Count {
				existing.Count = item.Count
				existing.UpdatedAt = ParseTimestamp(item.UpdatedAt)
				if err := p.tx.Save(existing).Error; err != nil {
					return c, err
				}
				c.Updated++
			}
			continue
		}

		stat := models.DailyStat{
			ChantingID: chanting.ID,
			UserID:     p.user.ID,
			Date:       item.Date,
			Count:      item.Count,
			CreatedAt:  ParseTimestamp(item.CreatedAt),
			UpdatedAt:  ParseTimestamp(item.UpdatedAt),
		}
		if err := p.tx.Create(&stat).Error; err != nil {
			return c, err
		}
		c.Synced++
	}
	return c, nil
}

// SyncTemplates merges global templates. An occupied title suppresses
// the incoming entry entirely; templates have no update path.
func (p *Policy) SyncTemplates(items []TemplateEntry) (Counters, error) {
	var c Counters
	for _, item := range items {
		if item.Title == "" || item.Content == "" {
			continue
		}

		existing, err := p.matcher.FindTemplate(item.Title)
		if err != nil {
			return c, err
		}
		if existing != nil {
			continue
		}

		tpl := models.DedicationTemplate{
			Title:     item.Title,
			Content:   item.Content,
			IsBuiltIn: item.IsBuiltIn,
			CreatedAt: ParseTimestamp(item.CreatedAt),
			UpdatedAt: ParseTimestamp(item.UpdatedAt),
		}
		if err := p.tx.Create(&tpl).Error; err != nil {
			return c, err
		}
		c.Synced++
	}
	return c, nil
}

// resolveReference turns an optional natural-key pair into a chanting
// ID, or nil when the pair is absent or unknown.
func (p *Policy) resolveReference(title, content string) (*uint, error) {
	if title == "" || content == "" {
		return nil, nil
	}
	chanting, err := p.matcher.ResolveChanting(title, content)
	if err != nil || chanting == nil {
		return nil, err
	}
	id := chanting.ID
	return &id, nil
}
