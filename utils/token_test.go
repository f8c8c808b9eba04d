package utils

import (
	"testing"
	"time"

	"github.com/alum-connect/api-go/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	user := &models.User{
		ID:      42,
		Role:    models.RoleInstitutionAdmin,
		College: "MIT",
	}

	token, err := GenerateToken(user, "secret", time.Minute)
	require.NoError(t, err)

	claims, err := ParseToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, models.RoleInstitutionAdmin, claims.Role)
	assert.Equal(t, "MIT", claims.College)
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken(&models.User{ID: 1}, "secret", time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token, "other-secret")
	assert.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	token, err := GenerateToken(&models.User{ID: 1}, "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token, "secret")
	assert.Error(t, err)
}

func TestTokenGarbage(t *testing.T) {
	_, err := ParseToken("not-a-token", "secret")
	assert.Error(t, err)
}
