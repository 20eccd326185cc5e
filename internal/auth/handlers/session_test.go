package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planets-galaxymap/internal/auth"
	"planets-galaxymap/internal/shared/config"
	"planets-galaxymap/internal/shared/cookies"
)

func newHandler(t *testing.T) (*SessionHandler, *auth.TokenIssuer) {
	t.Helper()
	issuer, err := auth.NewTokenIssuer("0123456789abcdef0123456789abcdef", time.Hour)
	require.NoError(t, err)
	return NewSessionHandler(issuer, config.AuthConfig{}, config.FrontendConfig{URL: "http://localhost:3000"}), issuer
}

func TestLoginSetsCookie(t *testing.T) {
	h, issuer := newHandler(t)
	token, err := issuer.Generate("mapper", auth.RoleAdmin)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/session", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	h.Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body SessionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "mapper", body.Subject)
	assert.Equal(t, auth.RoleAdmin, body.Role)

	got := rec.Result().Cookies()
	require.Len(t, got, 1)
	assert.Equal(t, cookies.AuthCookieName, got[0].Name)
	assert.Equal(t, token, got[0].Value)
}

func TestLoginRejectsBadRequests(t *testing.T) {
	h, _ := newHandler(t)

	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodGet, "/api/auth/session", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/auth/session", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/session", nil)
	req.Header.Set("Authorization", "Bearer forged")
	rec = httptest.NewRecorder()
	h.Login(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutClearsCookie(t *testing.T) {
	h, _ := newHandler(t)

	rec := httptest.NewRecorder()
	h.Logout(rec, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	got := rec.Result().Cookies()
	require.Len(t, got, 1)
	assert.Empty(t, got[0].Value)
}
