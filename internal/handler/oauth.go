package handler

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/postboard/internal/service"
)

const googleFailedMessage = "Google sign-in failed. Please try again."

// OAuthHandler handles sign-in with Google.
type OAuthHandler struct {
	google       *service.GoogleService
	auth         *service.AuthService
	cookieSecure bool
}

// NewOAuthHandler creates a new OAuthHandler. auth supplies the session lifetime.
func NewOAuthHandler(google *service.GoogleService, auth *service.AuthService, cookieSecure bool) *OAuthHandler {
	return &OAuthHandler{google: google, auth: auth, cookieSecure: cookieSecure}
}

// HandleGoogleLogin redirects to Google's consent page with a fresh state.
// GET /auth/google
func (h *OAuthHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.google.Enabled() {
		setFlash(w, "Google sign-in is not available.", h.cookieSecure)
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}

	state := rand.Text()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/auth/google",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.google.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGoogleCallback completes the OAuth flow and starts a session.
// GET /auth/google/profile
func (h *OAuthHandler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	err := validateOAuthState(r)
	// The state is single use whatever the outcome.
	http.SetCookie(w, &http.Cookie{Name: stateCookieName, Value: "", Path: "/auth/google", MaxAge: -1})
	if err != nil {
		slog.Warn("google callback rejected", "error", err)
		h.fail(w, r)
		return
	}

	if reason := r.URL.Query().Get("error"); reason != "" {
		slog.Info("google consent declined", "reason", reason)
		h.fail(w, r)
		return
	}

	user, token, err := h.google.Callback(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		slog.Error("google callback", "error", err)
		h.fail(w, r)
		return
	}

	slog.Info("google sign-in", "user_id", user.ID)
	setSessionCookie(w, token, h.auth.SessionTTL(), h.cookieSecure)
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func (h *OAuthHandler) fail(w http.ResponseWriter, r *http.Request) {
	setFlash(w, googleFailedMessage, h.cookieSecure)
	http.Redirect(w, r, "/register", http.StatusSeeOther)
}

func validateOAuthState(r *http.Request) error {
	cookie, err := r.Cookie(stateCookieName)
	if err != nil || cookie.Value == "" {
		return errors.New("missing oauth_state cookie")
	}
	queryState := r.URL.Query().Get("state")
	if subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(queryState)) != 1 {
		return errors.New("state mismatch")
	}
	return nil
}
