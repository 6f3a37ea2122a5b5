package reconcile

import (
	"errors"

	"gorm.io/gorm"

	"github.com/ronghuaxueleng/chanting-sync-go/models"
)

// Matcher locates existing rows by natural key. All lookups use exact
// equality; surrogate IDs never participate because device IDs and
// server IDs are disjoint. A nil result with nil error means "no
// match", which the merge policy turns into a create or a skip.
//
// A Matcher is bound to the session transaction, so rows created
// earlier in the same upload are visible to later lookups.
type Matcher struct {
	tx *gorm.DB
}

// NewMatcher binds a matcher to a transaction.
func NewMatcher(tx *gorm.DB) *Matcher {
	return &Matcher{tx: tx}
}

func noneOnNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

// FindChanting searches the acting user's own texts first, then falls
// back to global built-ins with the same title and content. The
// fallback lets a device sync a built-in it holds locally without
// duplicating it server-side.
func (m *Matcher) FindChanting(userID uint, title, content string) (*models.Chanting, error) {
	var owned models.Chanting
	err := m.tx.
		Where("title = ? AND content = ? AND user_id = ? AND is_deleted = ?", title, content, userID, false).
		First(&owned).Error
	if err == nil {
		return &owned, nil
	}
	if err := noneOnNotFound(err); err != nil {
		return nil, err
	}

	var builtIn models.Chanting
	err = m.tx.
		Where("title = ? AND content = ? AND is_built_in = ? AND is_deleted = ?", title, content, true, false).
		First(&builtIn).Error
	if err == nil {
		return &builtIn, nil
	}
	return nil, noneOnNotFound(err)
}

// ResolveChanting resolves a natural-key reference from a dedication,
// record, or daily stat. Unlike FindChanting it is not owner-scoped: a
// reference may point at any live text the server knows.
func (m *Matcher) ResolveChanting(title, content string) (*models.Chanting, error) {
	var chanting models.Chanting
	err := m.tx.
		Where("title = ? AND content = ? AND is_deleted = ?", title, content, false).
		First(&chanting).Error
	if err == nil {
		return &chanting, nil
	}
	return nil, noneOnNotFound(err)
}

// FindDedication is scoped strictly to the acting user; there is no
// global fallback for dedications.
func (m *Matcher) FindDedication(userID uint, title, content string) (*models.Dedication, error) {
	var dedication models.Dedication
	err := m.tx.
		Where("title = ? AND content = ? AND user_id = ?", title, content, userID).
		First(&dedication).Error
	if err == nil {
		return &dedication, nil
	}
	return nil, noneOnNotFound(err)
}

// FindRecord looks up the single practice record for (text, user).
func (m *Matcher) FindRecord(chantingID, userID uint) (*models.ChantingRecord, error) {
	var record models.ChantingRecord
	err := m.tx.
		Where("chanting_id = ? AND user_id = ?", chantingID, userID).
		First(&record).Error
	if err == nil {
		return &record, nil
	}
	return nil, noneOnNotFound(err)
}

// FindDailyStat looks up the stat row for (text, user, date).
func (m *Matcher) FindDailyStat(chantingID, userID uint, date string) (*models.DailyStat, error) {
	var stat models.DailyStat
	err := m.tx.
		Where("chanting_id = ? AND user_id = ? AND date = ?", chantingID, userID, date).
		First(&stat).Error
	if err == nil {
		return &stat, nil
	}
	return nil, noneOnNotFound(err)
}

// FindTemplate looks up a template by title alone; templates are global
// and never user-scoped.
func (m *Matcher) FindTemplate(title string) (*models.DedicationTemplate, error) {
	var tpl models.DedicationTemplate
	err := m.tx.Where("title = ?", title).First(&tpl).Error
	if err == nil {
		return &tpl, nil
	}
	return nil, noneOnNotFound(err)
}
