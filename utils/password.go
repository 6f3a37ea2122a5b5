package utils

import "golang.org/x/crypto/bcrypt"

// HashAdminPassword returns the bcrypt hash used for dashboard admin
// accounts. App-user passwords use the deterministic scheme in
// crypto.go instead.
func HashAdminPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckAdminPassword compares a bcrypt hash with its possible plaintext
// equivalent.
func CheckAdminPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
