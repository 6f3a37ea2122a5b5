package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(42, "alice", RoleUser, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, uint(42), claims.UserID)
	require.Equal(t, "alice", claims.Username)
	require.Equal(t, RoleUser, claims.Role)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, err := ParseToken("not.a.token")
	require.Error(t, err)

	_, err = ParseToken("")
	require.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, err := GenerateToken(42, "alice", RoleUser, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token)
	require.Error(t, err)
}

func TestParseTokenRejectsTampering(t *testing.T) {
	token, err := GenerateToken(42, "alice", RoleAdmin, time.Hour)
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = ParseToken(tampered)
	require.Error(t, err)
}

func TestTokenBlacklist(t *testing.T) {
	token, err := GenerateToken(7, "boss", RoleAdmin, time.Hour)
	require.NoError(t, err)

	require.False(t, IsTokenBlacklisted(token))
	BlacklistToken(token, time.Now().Add(time.Hour))
	require.True(t, IsTokenBlacklisted(token))

	// An entry past its expiry is dropped on lookup.
	expired, err := GenerateToken(8, "boss", RoleAdmin, time.Hour)
	require.NoError(t, err)
	BlacklistToken(expired, time.Now().Add(-time.Minute))
	require.False(t, IsTokenBlacklisted(expired))
}
