package middleware

import (
	"context"
	"net/http"

	"github.com/dukerupert/vanir/internal/domain"
	"github.com/dukerupert/vanir/internal/service"
)

const userContextKey contextKey = "user"

// WithUser resolves the session's user and adds it to the request context.
// Guests pass through without a user; a stale user reference is dropped
// rather than failing the request.
func WithUser(users service.UserService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := GetSession(r.Context())
			if sess == nil || sess.UserID() == nil {
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetByID(r.Context(), *sess.UserID())
			if err != nil {
				sess.ClearUser()
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserFromContext retrieves the signed-in user, or nil for guests.
func GetUserFromContext(ctx context.Context) *domain.User {
	if user, ok := ctx.Value(userContextKey).(*domain.User); ok {
		return user
	}
	return nil
}

// RequireAuth ensures the user is signed in, redirecting to the login page
// if not.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUserFromContext(r.Context()) == nil {
			returnTo := r.URL.Path
			if r.URL.RawQuery != "" {
				returnTo += "?" + r.URL.RawQuery
			}
			http.Redirect(w, r, "/login?return_to="+returnTo, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
