package middleware

import (
	"context"
	"net/http"

	"github.com/dukerupert/vanir/internal/cookie"
	"github.com/dukerupert/vanir/internal/session"
)

const sessionContextKey contextKey = "session"

// Sessions loads the browser session before the handler runs and writes it
// back afterwards. Requests without a valid session cookie get a fresh
// session and a new cookie.
//
// Handlers that rotate the session token mid-request must re-set the cookie
// themselves before writing the response.
func Sessions(manager *session.Manager, cookies *cookie.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := cookie.Get(r, cookie.SessionCookieName)
			sess, err := manager.Load(r.Context(), token)
			if err != nil {
				respondWithError(w, r, err)
				return
			}
			if sess.Token() != token {
				cookies.SetSession(w, cookie.SessionCookieName, sess.Token(),
					int(session.DefaultTTL.Seconds()))
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))

			if err := manager.Save(r.Context(), sess); err != nil {
				GetLogger(r.Context()).Error("failed to save session", "error", err)
			}
		})
	}
}

// GetSession retrieves the loaded session from the context. Nil outside the
// Sessions middleware.
func GetSession(ctx context.Context) *session.Session {
	if sess, ok := ctx.Value(sessionContextKey).(*session.Session); ok {
		return sess
	}
	return nil
}
