package reconcile

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ronghuaxueleng/chanting-sync-go/models"
	"github.com/ronghuaxueleng/chanting-sync-go/utils"
)

// AuthStatus tags the outcome of one authentication strategy.
type AuthStatus int

const (
	// AuthResolved means the strategy produced a trusted identity.
	AuthResolved AuthStatus = iota
	// AuthNotApplicable means the request carries nothing this strategy
	// can act on; the chain moves to the next strategy.
	AuthNotApplicable
	// AuthFailed means the strategy had material to check and it did
	// not verify; the chain still moves on, matching the original
	// protocol where a stale token falls back to embedded credentials.
	AuthFailed
)

// AuthOutcome is a tagged strategy result.
type AuthOutcome struct {
	Status AuthStatus
	User   *models.User
	Reason string
}

// AuthRequest bundles everything the strategies may inspect.
type AuthRequest struct {
	BearerToken string
	Payload     *UploadPayload
}

// Authenticator is one strategy in the ordered chain.
type Authenticator interface {
	Name() string
	// Authenticate runs inside the session transaction so a bootstrapped
	// user is rolled back with everything else on failure.
	Authenticate(tx *gorm.DB, req AuthRequest) AuthOutcome
}

// ResolveIdentity walks the chain in order and returns the first
// resolved identity. Failures are logged and skipped; exhausting the
// chain is an authentication failure, soft or hard depending on the
// caller.
func ResolveIdentity(tx *gorm.DB, req AuthRequest, log *zap.SugaredLogger, chain ...Authenticator) (*models.User, bool) {
	for _, a := range chain {
		outcome := a.Authenticate(tx, req)
		switch outcome.Status {
		case AuthResolved:
			log.Infow("identity resolved", "strategy", a.Name(), "user_id", outcome.User.ID, "username", outcome.User.Username)
			return outcome.User, true
		case AuthFailed:
			log.Infow("authentication strategy failed", "strategy", a.Name(), "reason", outcome.Reason)
		}
	}
	return nil, false
}

// TokenAuthenticator verifies a bearer JWT and looks up the subject.
type TokenAuthenticator struct{}

func (TokenAuthenticator) Name() string { return "token" }

func (TokenAuthenticator) Authenticate(tx *gorm.DB, req AuthRequest) AuthOutcome {
	if req.BearerToken == "" {
		return AuthOutcome{Status: AuthNotApplicable}
	}

	claims, err := utils.ParseToken(req.BearerToken)
	if err != nil {
		return AuthOutcome{Status: AuthFailed, Reason: "invalid token"}
	}
	if claims.Role != utils.RoleUser {
		return AuthOutcome{Status: AuthFailed, Reason: "token is not an app session"}
	}

	var user models.User
	err = tx.Where("id = ? AND is_deleted = ?", claims.UserID, false).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return AuthOutcome{Status: AuthFailed, Reason: "token subject no longer exists"}
	}
	if err != nil {
		return AuthOutcome{Status: AuthFailed, Reason: err.Error()}
	}
	return AuthOutcome{Status: AuthResolved, User: &user}
}

// CredentialAuthenticator verifies the embedded username/password pair
// and, when the username is unknown, bootstraps the account from the
// payload's own users collection: if the device ships a user whose
// pre-hashed password verifies against the supplied password, that user
// is materialized server-side with its hash preserved. This is the only
// account-creation path the sync protocol has.
type CredentialAuthenticator struct{}

func (CredentialAuthenticator) Name() string { return "credentials" }

func (CredentialAuthenticator) Authenticate(tx *gorm.DB, req AuthRequest) AuthOutcome {
	if req.Payload == nil || req.Payload.Auth == nil {
		return AuthOutcome{Status: AuthNotApplicable}
	}
	username := req.Payload.Auth.Username
	password := req.Payload.Auth.Password
	if username == "" || password == "" {
		return AuthOutcome{Status: AuthNotApplicable}
	}

	var user models.User
	err := tx.Where("username = ? AND is_deleted = ?", username, false).First(&user).Error
	switch {
	case err == nil:
		if !utils.VerifyUserPassword(password, user.Password) {
			return AuthOutcome{Status: AuthFailed, Reason: "password mismatch"}
		}
		return AuthOutcome{Status: AuthResolved, User: &user}
	case errors.Is(err, gorm.ErrRecordNotFound):
		return bootstrapUser(tx, req.Payload, username, password)
	default:
		return AuthOutcome{Status: AuthFailed, Reason: err.Error()}
	}
}

func bootstrapUser(tx *gorm.DB, payload *UploadPayload, username, password string) AuthOutcome {
	for _, entry := range payload.Users {
		if entry.Username != username {
			continue
		}
		if entry.Password == "" || !utils.VerifyUserPassword(password, entry.Password) {
			return AuthOutcome{Status: AuthFailed, Reason: "embedded user password mismatch"}
		}

		avatarType := entry.AvatarType
		if avatarType == "" {
			avatarType = "emoji"
		}
		user := models.User{
			Username:   entry.Username,
			Password:   entry.Password, // already hashed on the device
			Nickname:   entry.Nickname,
			Avatar:     entry.Avatar,
			AvatarType: avatarType,
			CreatedAt:  ParseTimestamp(entry.CreatedAt),
		}
		if err := tx.Create(&user).Error; err != nil {
			return AuthOutcome{Status: AuthFailed, Reason: err.Error()}
		}
		return AuthOutcome{Status: AuthResolved, User: &user}
	}
	return AuthOutcome{Status: AuthFailed, Reason: "unknown user and no matching embedded account"}
}
