package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// App-user passwords are hashed on the device before they ever reach
// the network, and the server must be able to reproduce that digest to
// verify a login or to bootstrap an account from a sync payload. The
// scheme is therefore a deterministic salted SHA-256, not bcrypt:
// same input, same output, identical on client and server.
const userPasswordSalt = "xiuxing_app_2024"

// HashUserPassword returns the deterministic digest of an app-user
// password.
func HashUserPassword(password string) string {
	sum := sha256.Sum256([]byte(userPasswordSalt + password))
	return hex.EncodeToString(sum[:])
}

// VerifyUserPassword checks a supplied password against a stored
// digest. Clients sometimes send the digest itself instead of the
// plaintext, so both forms are accepted.
func VerifyUserPassword(password, stored string) bool {
	if password == "" || stored == "" {
		return false
	}
	if IsHashedPassword(password) {
		return password == stored
	}
	return HashUserPassword(password) == stored
}

// IsHashedPassword reports whether s already looks like a digest
// produced by HashUserPassword.
func IsHashedPassword(s string) bool {
	if len(s) != 64 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
