package reconcile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ronghuaxueleng/chanting-sync-go/models"
	"github.com/ronghuaxueleng/chanting-sync-go/utils"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "reconcile-test-secret")
	os.Exit(m.Run())
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(
		sqlite.Open(filepath.Join(t.TempDir(), "sync.db")),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.AdminUser{},
		&models.Chanting{},
		&models.Dedication{},
		&models.ChantingRecord{},
		&models.DailyStat{},
		&models.DedicationTemplate{},
	))
	return db
}

func newTestOrchestrator(db *gorm.DB) *Orchestrator {
	return NewOrchestrator(db, zap.NewNop().Sugar(), []string{"admin"})
}

func seedUser(t *testing.T, db *gorm.DB, username, password string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Password: utils.HashUserPassword(password),
		Nickname: username,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedBuiltInChanting(t *testing.T, db *gorm.DB, title, content string) *models.Chanting {
	t.Helper()
	chanting := &models.Chanting{
		Title:     title,
		Content:   content,
		Type:      models.ChantingTypeBuddha,
		IsBuiltIn: true,
	}
	require.NoError(t, db.Create(chanting).Error)
	return chanting
}

func authPayload(username, password string) *Credentials {
	return &Credentials{Username: username, Password: password}
}

func chantingCounters(t *testing.T, result UploadResult, kind string) Counters {
	t.Helper()
	c, ok := result.Details[kind].(Counters)
	require.True(t, ok, "details for %s should carry synced and updated", kind)
	return c
}

func createOnlyCounters(t *testing.T, result UploadResult, kind string) int {
	t.Helper()
	m, ok := result.Details[kind].(map[string]int)
	require.True(t, ok, "details for %s should carry a synced count", kind)
	return m["synced"]
}
