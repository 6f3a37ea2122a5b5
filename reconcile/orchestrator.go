package reconcile

import (
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ronghuaxueleng/chanting-sync-go/models"
	"github.com/ronghuaxueleng/chanting-sync-go/utils"
)

// Download-path failures. Upload swallows its failures; download is the
// one sync surface allowed to report them.
var (
	ErrNoToken      = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid bearer token")
	ErrUserNotFound = errors.New("user not found")
)

// Messages carried in upload responses. The client treats everything
// with status "success" as delivered, so these are effectively
// server-side diagnostics that happen to ride the wire.
const (
	msgSynchronized = "data synchronized"
	msgAuthFailed   = "authentication failed"
	msgNoData       = "no data"
	msgAttempted    = "sync attempted"
)

// Orchestrator drives upload sessions. One session is one request: the
// auth chain runs first, then the six collections are merged in fixed
// order inside a single transaction, and the whole batch commits or
// rolls back as a unit.
//
// The upload contract is deliberately one-sided: whatever happens, the
// device gets a success-shaped response. A rolled-back session is
// visible only in the server log, keyed by the session ID.
type Orchestrator struct {
	db     *gorm.DB
	log    *zap.SugaredLogger
	admins map[string]struct{}
	chain  []Authenticator
}

// NewOrchestrator wires an orchestrator with its authentication chain.
// adminUsernames are the accounts allowed to own built-in chantings.
func NewOrchestrator(db *gorm.DB, log *zap.SugaredLogger, adminUsernames []string) *Orchestrator {
	admins := make(map[string]struct{}, len(adminUsernames))
	for _, name := range adminUsernames {
		admins[name] = struct{}{}
	}
	return &Orchestrator{
		db:     db,
		log:    log,
		admins: admins,
		chain:  []Authenticator{TokenAuthenticator{}, CredentialAuthenticator{}},
	}
}

// IsAdmin reports whether the username belongs to an administrative
// account.
func (o *Orchestrator) IsAdmin(username string) bool {
	_, ok := o.admins[username]
	return ok
}

// Upload runs one reconciliation session and always produces a
// success-shaped result.
func (o *Orchestrator) Upload(bearerToken string, payload *UploadPayload) UploadResult {
	sessionID := uuid.NewString()
	log := o.log.With("session", sessionID)

	if payload == nil {
		return UploadResult{Status: "success", Message: msgNoData}
	}

	result := UploadResult{
		Status:  "success",
		Message: msgSynchronized,
		Details: map[string]any{},
	}
	authFailed := false

	err := o.db.Transaction(func(tx *gorm.DB) error {
		user, ok := ResolveIdentity(tx, AuthRequest{BearerToken: bearerToken, Payload: payload}, log, o.chain...)
		if !ok {
			authFailed = true
			return nil
		}
		result.UserID = user.ID

		policy := NewPolicy(tx, user, o.IsAdmin(user.Username), log)

		if payload.Users != nil {
			c, err := policy.SyncUsers(payload.Users)
			if err != nil {
				return err
			}
			result.Details[KindUsers] = map[string]int{"updated": c.Updated}
		}
		if payload.Chantings != nil {
			c, err := policy.SyncChantings(payload.Chantings)
			if err != nil {
				return err
			}
			result.Details[KindChantings] = c
		}
		if payload.Dedications != nil {
			c, err := policy.SyncDedications(payload.Dedications)
			if err != nil {
				return err
			}
			result.Details[KindDedications] = c
		}
		if payload.ChantingRecords != nil {
			c, err := policy.SyncRecords(payload.ChantingRecords)
			if err != nil {
				return err
			}
			result.Details[KindChantingRecords] = map[string]int{"synced": c.Synced}
		}
		if payload.DailyStats != nil {
			c, err := policy.SyncDailyStats(payload.DailyStats)
			if err != nil {
				return err
			}
			result.Details[KindDailyStats] = c
		}
		if payload.DedicationTemplates != nil {
			c, err := policy.SyncTemplates(payload.DedicationTemplates)
			if err != nil {
				return err
			}
			result.Details[KindDedicationTemplates] = map[string]int{"synced": c.Synced}
		}
		return nil
	})

	if authFailed {
		log.Warnw("sync upload rejected, no strategy resolved an identity")
		return UploadResult{Status: "success", Message: msgAuthFailed}
	}
	if err != nil {
		// The batch is gone but the device must not know: surfacing an
		// error here would wedge its offline queue. Alerting keys on
		// this log line instead.
		log.Errorw("sync upload failed, session rolled back", "error", err)
		return UploadResult{Status: "success", Message: msgAttempted}
	}

	log.Infow("sync upload committed", "user_id", result.UserID, "details", result.Details)
	return result
}

// ResolveDownloadUser resolves the hard-auth identity for a download.
// Unlike upload, this path fails loudly: no token, no data.
func (o *Orchestrator) ResolveDownloadUser(bearerToken string) (*models.User, error) {
	if bearerToken == "" {
		return nil, ErrNoToken
	}
	claims, err := utils.ParseToken(bearerToken)
	if err != nil || claims.Role != utils.RoleUser {
		return nil, ErrInvalidToken
	}
	var user models.User
	if err := o.db.Where("id = ? AND is_deleted = ?", claims.UserID, false).First(&user).Error; err != nil {
		return nil, ErrUserNotFound
	}
	return &user, nil
}
