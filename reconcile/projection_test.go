package reconcile

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ronghuaxueleng/chanting-sync-go/models"
)

func TestDownloadRoundTrip(t *testing.T) {
	db := newTestDB(t)
	o := newTestOrchestrator(db)
	alice := seedUser(t, db, "alice", "pw1")

	upload := fullPayload("alice", "pw1")
	result := o.Upload("", upload)
	require.Equal(t, "data synchronized", result.Message)

	download, err := NewProjector(db).Build(alice)
	require.NoError(t, err)
	require.Equal(t, "success", download.Status)
	require.Equal(t, alice.ID, download.UserID)
	require.NotEmpty(t, download.Timestamp)

	data := download.Data
	require.NotNil(t, data)

	require.Len(t, data.Users, 1)
	require.Equal(t, "alice", data.Users[0].Username)
	require.Equal(t, alice.Password, data.Users[0].Password)

	require.Len(t, data.Chantings, 1)
	require.Equal(t, "Heart Sutra", data.Chantings[0].Title)
	require.Equal(t, "Form is emptiness", data.Chantings[0].Content)
	require.Equal(t, "sutra", data.Chantings[0].Type)
	require.Equal(t, "alice", data.Chantings[0].Username)

	require.Len(t, data.Dedications, 1)
	require.Equal(t, "Heart Sutra", data.Dedications[0].ChantingTitle)
	require.Equal(t, "Form is emptiness", data.Dedications[0].ChantingContent)

	require.Len(t, data.ChantingRecords, 1)
	require.Equal(t, "Heart Sutra", data.ChantingRecords[0].ChantingTitle)

	require.Len(t, data.DailyStats, 1)
	require.Equal(t, "2024-03-01", data.DailyStats[0].Date)
	require.Equal(t, 21, data.DailyStats[0].Count)

	require.Len(t, data.DedicationTemplates, 1)
	require.Equal(t, "Universal", data.DedicationTemplates[0].Title)

	// Nothing on the wire carries a surrogate ID.
	raw, err := json.Marshal(download)
	require.NoError(t, err)
	require.NotContains(t, string(raw), `"id"`)
	require.NotContains(t, string(raw), `"chanting_id"`)
}

func TestDownloadIsReplayable(t *testing.T) {
	db := newTestDB(t)
	o := newTestOrchestrator(db)
	alice := seedUser(t, db, "alice", "pw1")
	require.Equal(t, "data synchronized", o.Upload("", fullPayload("alice", "pw1")).Message)

	download, err := NewProjector(db).Build(alice)
	require.NoError(t, err)

	// A download replayed as an upload against a second store recreates
	// the same set of rows.
	db2 := newTestDB(t)
	o2 := newTestOrchestrator(db2)

	replay := &UploadPayload{
		Auth:                authPayload("alice", "pw1"),
		Users:               download.Data.Users,
		Chantings:           download.Data.Chantings,
		Dedications:         download.Data.Dedications,
		ChantingRecords:     download.Data.ChantingRecords,
		DailyStats:          download.Data.DailyStats,
		DedicationTemplates: download.Data.DedicationTemplates,
	}
	result := o2.Upload("", replay)
	require.Equal(t, "data synchronized", result.Message)

	for table, want := range map[string]int64{
		"users":                1,
		"chantings":            1,
		"dedications":          1,
		"chanting_records":     1,
		"daily_stats":          1,
		"dedication_templates": 1,
	} {
		var n int64
		require.NoError(t, db2.Table(table).Count(&n).Error)
		require.Equal(t, want, n, "row count for %s", table)
	}
}

func TestDownloadScopedToUserAndBuiltIns(t *testing.T) {
	db := newTestDB(t)
	o := newTestOrchestrator(db)
	alice := seedUser(t, db, "alice", "pw1")
	seedUser(t, db, "bob", "pw2")
	seedBuiltInChanting(t, db, "Canonical", "Text")

	o.Upload("", &UploadPayload{
		Auth:      authPayload("alice", "pw1"),
		Chantings: []ChantingEntry{{Title: "Alice own", Content: "A"}},
	})
	o.Upload("", &UploadPayload{
		Auth:        authPayload("bob", "pw2"),
		Chantings:   []ChantingEntry{{Title: "Bob own", Content: "B"}},
		Dedications: []DedicationEntry{{Title: "Bob dedication", Content: "D"}},
	})

	download, err := NewProjector(db).Build(alice)
	require.NoError(t, err)

	titles := make([]string, 0, len(download.Data.Chantings))
	for _, c := range download.Data.Chantings {
		titles = append(titles, c.Title)
	}
	require.ElementsMatch(t, []string{"Canonical", "Alice own"}, titles)

	require.Empty(t, download.Data.Dedications)
	require.Len(t, download.Data.Users, 1)
	require.Equal(t, "alice", download.Data.Users[0].Username)
}

func TestSoftDeletedChantingHidesDependents(t *testing.T) {
	db := newTestDB(t)
	o := newTestOrchestrator(db)
	alice := seedUser(t, db, "alice", "pw1")

	require.Equal(t, "data synchronized", o.Upload("", fullPayload("alice", "pw1")).Message)

	require.NoError(t, db.Model(&models.Chanting{}).
		Where("title = ?", "Heart Sutra").
		Update("is_deleted", true).Error)

	download, err := NewProjector(db).Build(alice)
	require.NoError(t, err)

	require.Empty(t, download.Data.Chantings)
	require.Empty(t, download.Data.ChantingRecords)
	require.Empty(t, download.Data.DailyStats)

	// The rows themselves survive; only the projection hides them.
	var n int64
	require.NoError(t, db.Model(&models.ChantingRecord{}).Count(&n).Error)
	require.Equal(t, int64(1), n)

	// Dedications outlive their chanting.
	require.Len(t, download.Data.Dedications, 1)
}
