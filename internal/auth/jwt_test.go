package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/lostfound/internal/model"
)

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "test-secret-key"

	token, err := GenerateToken(secret, 1, "admin@example.edu", model.RoleAdmin)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(secret, token)
	require.NoError(t, err)

	assert.Equal(t, int64(1), claims.UserID)
	assert.Equal(t, "admin@example.edu", claims.Email)
	assert.Equal(t, model.RoleAdmin, claims.Role)
	assert.Equal(t, Issuer, claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestTokensHaveDistinctIDs(t *testing.T) {
	a, err := GenerateToken("s", 1, "a@example.edu", model.RoleStudent)
	require.NoError(t, err)
	b, err := GenerateToken("s", 1, "a@example.edu", model.RoleStudent)
	require.NoError(t, err)

	ca, err := ValidateToken("s", a)
	require.NoError(t, err)
	cb, err := ValidateToken("s", b)
	require.NoError(t, err)
	assert.NotEqual(t, ca.ID, cb.ID)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, _ := GenerateToken("secret1", 1, "admin@example.edu", model.RoleAdmin)

	_, err := ValidateToken("secret2", token)
	assert.Error(t, err)
}

func TestValidateTokenInvalid(t *testing.T) {
	_, err := ValidateToken("secret", "not-a-token")
	assert.Error(t, err)
}

func TestValidateTokenExpired(t *testing.T) {
	token, err := generateToken("s", 1, "a@example.edu", model.RoleStudent, time.Now().Add(-2*TokenExpiry))
	require.NoError(t, err)

	_, err = ValidateToken("s", token)
	assert.Error(t, err)
}

func TestTokenExpiry(t *testing.T) {
	secret := "test"
	token, _ := GenerateToken(secret, 1, "test@example.edu", model.RoleStudent)
	claims, err := ValidateToken(secret, token)
	require.NoError(t, err)

	diff := time.Until(claims.ExpiresAt.Time) - TokenExpiry
	assert.InDelta(t, 0, diff.Seconds(), 5)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "wrong horse"))
	assert.False(t, CheckPassword("not-a-hash", "correct horse"))
}
