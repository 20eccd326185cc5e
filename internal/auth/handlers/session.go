package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"planets-galaxymap/internal/auth"
	"planets-galaxymap/internal/shared/config"
	"planets-galaxymap/internal/shared/cookies"
	"planets-galaxymap/internal/shared/errors"
	"planets-galaxymap/internal/shared/response"
)

type SessionResponse struct {
	Subject   string    `json:"subject"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionHandler turns a bearer token issued by planetctl into an HTTP-only
// cookie so that the map frontend never has to store it.
type SessionHandler struct {
	issuer   *auth.TokenIssuer
	auth     config.AuthConfig
	frontend config.FrontendConfig
}

func NewSessionHandler(issuer *auth.TokenIssuer, authCfg config.AuthConfig, frontend config.FrontendConfig) *SessionHandler {
	return &SessionHandler{issuer: issuer, auth: authCfg, frontend: frontend}
}

func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "session_login")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		response.Error(w, r, logger, errors.Unauthorized("bearer token required"))
		return
	}
	token = strings.TrimSpace(token)

	claims, err := h.issuer.Validate(token)
	if err != nil {
		response.Error(w, r, logger, errors.Unauthorized("invalid token"))
		return
	}

	expiration := h.issuer.Expiration()
	if claims.ExpiresAt != nil {
		expiration = time.Until(claims.ExpiresAt.Time)
	}
	cookies.SetAuthCookie(w, token, expiration, h.auth, h.frontend)

	logger.Info("Session started", "subject", claims.Subject, "role", claims.Role)

	resp := SessionResponse{Subject: claims.Subject, Role: claims.Role}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time
	}
	response.Success(w, http.StatusOK, resp)
}

func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "session_logout")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	cookies.ClearAuthCookie(w, h.auth, h.frontend)
	logger.Debug("Session cleared")
	w.WriteHeader(http.StatusNoContent)
}
