package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestNewTokenIssuerRejectsWeakSecrets(t *testing.T) {
	_, err := NewTokenIssuer("", time.Hour)
	assert.Error(t, err)

	_, err = NewTokenIssuer("short", time.Hour)
	assert.Error(t, err)
}

func TestGenerateAndValidate(t *testing.T) {
	issuer, err := NewTokenIssuer(testSecret, time.Hour)
	require.NoError(t, err)

	token, err := issuer.Generate("mapper", RoleAdmin)
	require.NoError(t, err)

	claims, err := issuer.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "mapper", claims.Subject)
	assert.Equal(t, RoleAdmin, claims.Role)
}

func TestGenerateRejectsUnknownRole(t *testing.T) {
	issuer, err := NewTokenIssuer(testSecret, time.Hour)
	require.NoError(t, err)

	_, err = issuer.Generate("mapper", "emperor")
	assert.Error(t, err)
}

func TestValidateRejectsForeignAndExpiredTokens(t *testing.T) {
	issuer, err := NewTokenIssuer(testSecret, time.Hour)
	require.NoError(t, err)

	other, err := NewTokenIssuer(strings.Repeat("x", 32), time.Hour)
	require.NoError(t, err)
	foreign, err := other.Generate("mapper", RoleAdmin)
	require.NoError(t, err)

	_, err = issuer.Validate(foreign)
	assert.Error(t, err)

	token, err := issuer.Generate("mapper", RoleViewer)
	require.NoError(t, err)
	issuer.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = issuer.Validate(token)
	assert.Error(t, err)

	_, err = issuer.Validate("not-a-token")
	assert.Error(t, err)
}
