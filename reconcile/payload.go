// Package reconcile implements the bidirectional sync engine: the
// upload path that merges a device payload into the store, and the
// download path that projects a user's merged view back out.
//
// Devices and the server assign row IDs independently, so nothing on
// the wire carries a surrogate ID. Every entity is identified by its
// natural key (title/content pairs, dates, usernames) and the engine
// matches on exact field equality.
package reconcile

import "time"

// Collection keys as they appear in the wire payload, in processing
// order. Later kinds depend on rows the earlier kinds may have just
// created (a record's chanting, a dedication's chanting), so the order
// is fixed.
const (
	KindUsers               = "users"
	KindChantings           = "chantings"
	KindDedications         = "dedications"
	KindChantingRecords     = "chanting_records"
	KindDailyStats          = "daily_stats"
	KindDedicationTemplates = "dedication_templates"
)

// Credentials is the embedded username/password pair of upload auth
// strategy two.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UploadPayload is the body of a sync upload. Absent collections are
// valid; the engine only touches what the device sent.
type UploadPayload struct {
	Auth                *Credentials      `json:"auth,omitempty"`
	Users               []UserEntry       `json:"users,omitempty"`
	Chantings           []ChantingEntry   `json:"chantings,omitempty"`
	Dedications         []DedicationEntry `json:"dedications,omitempty"`
	ChantingRecords     []RecordEntry     `json:"chanting_records,omitempty"`
	DailyStats          []DailyStatEntry  `json:"daily_stats,omitempty"`
	DedicationTemplates []TemplateEntry   `json:"dedication_templates,omitempty"`
}

// UserEntry carries account data. The password field is the client's
// deterministic digest, never a plaintext.
type UserEntry struct {
	Username   string `json:"username"`
	Password   string `json:"password,omitempty"`
	Nickname   string `json:"nickname,omitempty"`
	Avatar     string `json:"avatar,omitempty"`
	AvatarType string `json:"avatar_type,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// ChantingEntry is a chant text keyed by (title, content).
type ChantingEntry struct {
	Title         string `json:"title"`
	Content       string `json:"content"`
	Pronunciation string `json:"pronunciation,omitempty"`
	Type          string `json:"type,omitempty"`
	IsBuiltIn     bool   `json:"is_built_in,omitempty"`
	Username      string `json:"username,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
	UpdatedAt     string `json:"updated_at,omitempty"`
}

// DedicationEntry is a dedication keyed by (title, content, owner); the
// chanting_* pair is the natural-key reference to the linked text.
type DedicationEntry struct {
	Title           string `json:"title"`
	Content         string `json:"content"`
	ChantingTitle   string `json:"chanting_title,omitempty"`
	ChantingContent string `json:"chanting_content,omitempty"`
	CreatedAt       string `json:"created_at,omitempty"`
	UpdatedAt       string `json:"updated_at,omitempty"`
}

// RecordEntry is a practice record referencing its text by natural key.
type RecordEntry struct {
	ChantingTitle   string `json:"chanting_title"`
	ChantingContent string `json:"chanting_content"`
	CreatedAt       string `json:"created_at,omitempty"`
	UpdatedAt       string `json:"updated_at,omitempty"`
}

// DailyStatEntry is one day's practice count for one text.
type DailyStatEntry struct {
	ChantingTitle   string `json:"chanting_title"`
	ChantingContent string `json:"chanting_content"`
	Date            string `json:"date"`
	Count           int    `json:"count"`
	CreatedAt       string `json:"created_at,omitempty"`
	UpdatedAt       string `json:"updated_at,omitempty"`
}

// TemplateEntry is a global dedication template keyed by title.
type TemplateEntry struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	IsBuiltIn bool   `json:"is_built_in,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// Counters accumulates the per-kind outcome of an upload session.
type Counters struct {
	Synced  int `json:"synced"`
	Updated int `json:"updated"`
}

// UploadResult is the upload response body. The status is "success"
// even when authentication or the commit failed; Message is the only
// place a device can see that nothing happened, and devices ignore it.
type UploadResult struct {
	Status  string         `json:"status"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	UserID  uint           `json:"user_id,omitempty"`
}

// DownloadResult is the download response body.
type DownloadResult struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Data      *SyncData `json:"data"`
	UserID    uint      `json:"user_id"`
	Timestamp string    `json:"timestamp"`
}

// SyncData is the user-scoped denormalized view emitted by download.
// It reuses the upload entry types so a download payload can be
// replayed as an upload against another store unchanged.
type SyncData struct {
	Users               []UserEntry       `json:"users"`
	Chantings           []ChantingEntry   `json:"chantings"`
	Dedications         []DedicationEntry `json:"dedications"`
	ChantingRecords     []RecordEntry     `json:"chanting_records"`
	DailyStats          []DailyStatEntry  `json:"daily_stats"`
	DedicationTemplates []TemplateEntry   `json:"dedication_templates"`
}

// isoLayouts are the accepted client timestamp shapes: RFC 3339 with
// offset or Z, and the offset-less form some devices emit.
var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
}

// ParseTimestamp parses a client-supplied ISO-8601 timestamp. Absent or
// unparseable input falls back to the current server time; the failure
// is local and never aborts the enclosing merge.
func ParseTimestamp(s string) time.Time {
	if s == "" {
		return time.Now().UTC()
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Now().UTC()
}

// FormatTimestamp renders a stored time for the wire.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
