package storefront

import (
	"net/http"

	"github.com/dukerupert/vanir/internal/cookie"
	"github.com/dukerupert/vanir/internal/domain"
	"github.com/dukerupert/vanir/internal/handler"
	"github.com/dukerupert/vanir/internal/middleware"
	"github.com/dukerupert/vanir/internal/service"
	"github.com/dukerupert/vanir/internal/session"
)

// AuthHandler handles sign-in and sign-out outside of checkout.
type AuthHandler struct {
	users    service.UserService
	sessions *session.Manager
	cookies  *cookie.Config
	renderer *handler.Renderer
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(users service.UserService, sessions *session.Manager, cookies *cookie.Config, renderer *handler.Renderer) *AuthHandler {
	return &AuthHandler{users: users, sessions: sessions, cookies: cookies, renderer: renderer}
}

// ShowLogin handles GET /login.
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	data := BaseTemplateData(r)
	data["ReturnTo"] = r.URL.Query().Get("return_to")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	h.renderer.RenderHTTP(w, "login", data)
}

// Login handles POST /login. The guest session's cart carries over into the
// authenticated session under a fresh token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	user, err := h.users.Authenticate(r.Context(), r.FormValue("email"), r.FormValue("password"))
	if err != nil {
		data := BaseTemplateData(r)
		data["Error"] = domain.ErrorMessage(err)
		data["ReturnTo"] = r.FormValue("return_to")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		h.renderer.RenderHTTP(w, "login", data)
		return
	}

	sess := middleware.GetSession(r.Context())
	sess.SetUser(user.ID)
	if err := h.sessions.Rotate(r.Context(), sess); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	h.cookies.SetSession(w, cookie.SessionCookieName, sess.Token(),
		int(session.DefaultTTL.Seconds()))

	returnTo := r.FormValue("return_to")
	if returnTo == "" || returnTo[0] != '/' {
		returnTo = "/"
	}
	http.Redirect(w, r, returnTo, http.StatusSeeOther)
}

// Logout handles POST /logout: the identity is dropped and the token
// rotated, but the cart stays with the browser.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	sess.ClearUser()
	if err := h.sessions.Rotate(r.Context(), sess); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	h.cookies.SetSession(w, cookie.SessionCookieName, sess.Token(),
		int(session.DefaultTTL.Seconds()))

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
