package utils

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "utils-test-secret")
	os.Exit(m.Run())
}

func TestHashUserPasswordIsDeterministic(t *testing.T) {
	h1 := HashUserPassword("test123")
	h2 := HashUserPassword("test123")
	require.Equal(t, h1, h2)
	require.Len(t, h1, 64)

	require.NotEqual(t, h1, HashUserPassword("test124"))
}

func TestVerifyUserPassword(t *testing.T) {
	stored := HashUserPassword("test123")

	// Both the plaintext and the device-side digest must verify.
	require.True(t, VerifyUserPassword("test123", stored))
	require.True(t, VerifyUserPassword(stored, stored))

	require.False(t, VerifyUserPassword("wrong", stored))
	require.False(t, VerifyUserPassword(HashUserPassword("wrong"), stored))
	require.False(t, VerifyUserPassword("", stored))
	require.False(t, VerifyUserPassword("test123", ""))
}

func TestIsHashedPassword(t *testing.T) {
	require.True(t, IsHashedPassword(HashUserPassword("anything")))
	require.False(t, IsHashedPassword("plaintext"))
	require.False(t, IsHashedPassword("deadbeef"))

	// 64 chars but not hex.
	notHex := "zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz"
	require.False(t, IsHashedPassword(notHex))
}

func TestAdminPasswordHashing(t *testing.T) {
	hash, err := HashAdminPassword("s3cret")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret", hash)

	// bcrypt is salted: two hashes of the same input differ but both
	// verify.
	hash2, err := HashAdminPassword("s3cret")
	require.NoError(t, err)
	require.NotEqual(t, hash, hash2)

	require.True(t, CheckAdminPassword(hash, "s3cret"))
	require.True(t, CheckAdminPassword(hash2, "s3cret"))
	require.False(t, CheckAdminPassword(hash, "wrong"))
}
