// Package identity carries the session token between the HTTP layer
// and the session registry.
package identity

import (
	"context"
	"net/http"
	"regexp"
	"time"
)

const (
	// SessionCookieName is the cookie holding the session token.
	SessionCookieName = "lingochat_session"

	sessionCookieMaxAge = 24 * time.Hour
)

type contextKey int

const tokenKey contextKey = iota

// uuid v4 as issued by the session registry.
var tokenPattern = regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}$`)

// TokenFromContext extracts the session token from the request context.
// Returns "" when the request carried no valid session cookie.
func TokenFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(tokenKey).(string); ok {
		return v
	}
	return ""
}

// SetSessionCookie attaches the session token to the response.
func SetSessionCookie(w http.ResponseWriter, token string, isDev bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sessionCookieMaxAge.Seconds()),
		Expires:  time.Now().Add(sessionCookieMaxAge),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !isDev,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(w http.ResponseWriter, isDev bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !isDev,
	})
}

// Middleware injects the session token from the cookie into the
// request context. It does not reject unauthenticated requests; the
// handlers decide which operations require a live session.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if c, err := r.Cookie(SessionCookieName); err == nil && tokenPattern.MatchString(c.Value) {
				ctx := context.WithValue(r.Context(), tokenKey, c.Value)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}
