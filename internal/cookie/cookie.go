// Package cookie provides the session cookie helpers for the storefront.
package cookie

import "net/http"

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "vanir_session"

// Config holds cookie settings.
type Config struct {
	// Secure requires HTTPS for the cookie. True in production.
	Secure bool
}

// NewConfig creates a cookie configuration.
func NewConfig(secure bool) *Config {
	return &Config{Secure: secure}
}

// SetSession sets the session cookie: HttpOnly, SameSite=Lax, path-wide.
func (c *Config) SetSession(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Get retrieves a cookie value, or empty string when absent.
func Get(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
