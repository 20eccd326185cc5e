package cookies

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"planets-galaxymap/internal/shared/config"
)

const AuthCookieName = "auth_token"

func SetAuthCookie(w http.ResponseWriter, token string, expiration time.Duration, auth config.AuthConfig, frontend config.FrontendConfig) {
	cookie := createAuthCookie(auth, frontend)
	cookie.Value = token
	cookie.MaxAge = int(expiration.Seconds())

	http.SetCookie(w, cookie)
}

func ClearAuthCookie(w http.ResponseWriter, auth config.AuthConfig, frontend config.FrontendConfig) {
	cookie := createAuthCookie(auth, frontend)
	cookie.Value = ""
	cookie.MaxAge = -1

	http.SetCookie(w, cookie)
}

func createAuthCookie(auth config.AuthConfig, frontend config.FrontendConfig) *http.Cookie {
	return &http.Cookie{
		Name:     AuthCookieName,
		Path:     "/",
		Domain:   extractDomain(frontend.URL),
		HttpOnly: true,
		Secure:   auth.CookieSecure,
		SameSite: parseSameSite(auth.CookieSameSite),
	}
}

func extractDomain(frontendURL string) string {
	parsedURL, err := url.Parse(frontendURL)
	if err != nil || parsedURL.Host == "" {
		return ""
	}

	host := strings.Split(parsedURL.Host, ":")[0]
	if host == "localhost" || host == "127.0.0.1" {
		return ""
	}

	return host
}

func parseSameSite(sameSiteStr string) http.SameSite {
	switch strings.ToLower(sameSiteStr) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
