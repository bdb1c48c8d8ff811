package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/postboard/internal/domain"
	"github.com/msomdec/postboard/internal/service"
	"github.com/msomdec/postboard/internal/view"
)

const loginFailedMessage = "Invalid email or password."

// AuthHandler handles local sign-up, sign-in, sign-out and password changes.
type AuthHandler struct {
	auth         *service.AuthService
	cookieSecure bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{auth: auth, cookieSecure: cookieSecure}
}

// HandleRegisterPage renders the sign-up and sign-in forms, consuming any flash message.
// GET /register
func (h *AuthHandler) HandleRegisterPage(w http.ResponseWriter, r *http.Request) {
	flash := popFlash(w, r)
	renderPage(w, r, http.StatusOK, view.RegisterPage(viewer(r), flash))
}

// HandleRegister creates a local account.
// POST /register (usrEmail, usrPassword, usrConfirmPassword)
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	_, err := h.auth.Register(r.Context(),
		r.FormValue("usrEmail"),
		r.FormValue("usrPassword"),
		r.FormValue("usrConfirmPassword"),
	)
	if err != nil {
		handleServiceError(w, r, "register user", true, err)
		return
	}
	http.Redirect(w, r, "/success", http.StatusSeeOther)
}

// HandleLogin verifies credentials and starts a session.
// POST /login (loginUsername, loginPassword)
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	_, token, err := h.auth.Login(r.Context(), r.FormValue("loginUsername"), r.FormValue("loginPassword"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			setFlash(w, loginFailedMessage, h.cookieSecure)
			http.Redirect(w, r, "/register", http.StatusSeeOther)
			return
		}
		handleServiceError(w, r, "login user", false, err)
		return
	}

	setSessionCookie(w, token, h.auth.SessionTTL(), h.cookieSecure)
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

// HandleLogout clears the session cookie.
// POST /logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w, h.cookieSecure)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleChangePasswordPage renders the password form for the principal.
// GET /changePassword/{id}
func (h *AuthHandler) HandleChangePasswordPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.ownAccount(w, r); !ok {
		return
	}
	renderPage(w, r, http.StatusOK, view.ChangePasswordPage(viewer(r)))
}

// HandleChangePassword replaces the principal's password.
// POST /changePassword/{id} (currentPassword, newPassword, confirmPassword)
func (h *AuthHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := h.ownAccount(w, r)
	if !ok {
		return
	}

	err := h.auth.ChangePassword(r.Context(), user.ID,
		r.FormValue("currentPassword"),
		r.FormValue("newPassword"),
		r.FormValue("confirmPassword"),
	)
	if err != nil {
		handleServiceError(w, r, "change password", true, err)
		return
	}

	slog.Info("password changed", "user_id", user.ID)
	http.Redirect(w, r, "/success", http.StatusSeeOther)
}

// ownAccount checks that the {id} path segment names the principal.
func (h *AuthHandler) ownAccount(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return nil, false
	}
	if r.PathValue("id") != user.ID {
		handleServiceError(w, r, "change password", false, domain.ErrForbidden)
		return nil, false
	}
	return user, true
}
