package models

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(
		sqlite.Open(filepath.Join(t.TempDir(), "models.db")),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&Chanting{},
		&Dedication{},
		&ChantingRecord{},
		&DailyStat{},
		&DedicationTemplate{},
	))
	return db
}

// The kinds whose natural key fits in an index carry a composite unique
// constraint, so a duplicate insert racing past the application-level
// existence check is rejected by the database.
func TestUniqueNaturalKeyIndexes(t *testing.T) {
	db := newTestDB(t)
	now := time.Now()
	uid := uint(1)

	record := func() *ChantingRecord {
		return &ChantingRecord{ChantingID: 10, UserID: &uid, CreatedAt: now, UpdatedAt: now}
	}
	require.NoError(t, db.Create(record()).Error)
	require.Error(t, db.Create(record()).Error)

	stat := func(date string) *DailyStat {
		return &DailyStat{ChantingID: 10, UserID: uid, Date: date, Count: 1, CreatedAt: now, UpdatedAt: now}
	}
	require.NoError(t, db.Create(stat("2024-03-01")).Error)
	require.Error(t, db.Create(stat("2024-03-01")).Error)
	require.NoError(t, db.Create(stat("2024-03-02")).Error)

	tpl := func() *DedicationTemplate {
		return &DedicationTemplate{Title: "Universal", Content: "All beings", CreatedAt: now, UpdatedAt: now}
	}
	require.NoError(t, db.Create(tpl()).Error)
	require.Error(t, db.Create(tpl()).Error)
}

// Chantings and dedications have an unbounded text column in their
// natural key, so they carry no unique index: a concurrent-create race
// yields sibling rows and resolves last-writer-wins on the next sync.
func TestTextKeyedKindsAllowSiblingRows(t *testing.T) {
	db := newTestDB(t)
	now := time.Now()
	uid := uint(1)

	chanting := func() *Chanting {
		return &Chanting{Title: "T", Content: "C", Type: ChantingTypeBuddha, UserID: &uid, CreatedAt: now, UpdatedAt: now}
	}
	require.NoError(t, db.Create(chanting()).Error)
	require.NoError(t, db.Create(chanting()).Error)

	dedication := func() *Dedication {
		return &Dedication{Title: "D", Content: "C", UserID: uid, CreatedAt: now, UpdatedAt: now}
	}
	require.NoError(t, db.Create(dedication()).Error)
	require.NoError(t, db.Create(dedication()).Error)
}
