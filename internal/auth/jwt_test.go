package auth

import (
	"testing"
	"time"

	"delegation-api/internal/config"

	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken(7, "alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, uint(7), claims.StaffID)
	require.Equal(t, "alice", claims.Name)
}

func TestValidateToken_Invalid(t *testing.T) {
	_, err := ValidateToken("invalid.token")
	require.Error(t, err)
}

func TestValidateToken_WrongAudience(t *testing.T) {
	original := current()
	t.Cleanup(func() { Configure(original) })

	token, err := GenerateToken(1, "bob")
	require.NoError(t, err)

	cfg := original
	cfg.JWTAudience = "someone-else"
	Configure(cfg)
	_, err = ValidateToken(token)
	require.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	original := current()
	t.Cleanup(func() { Configure(original) })

	cfg := config.Default().Auth
	cfg.TokenTTL = -time.Minute
	Configure(cfg)

	token, err := GenerateToken(1, "bob")
	require.NoError(t, err)
	_, err = ValidateToken(token)
	require.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret", hash)

	require.True(t, CheckPassword(hash, "s3cret"))
	require.False(t, CheckPassword(hash, "wrong"))
	require.False(t, CheckPassword("", "s3cret"))
}
