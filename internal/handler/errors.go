package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/postboard/internal/domain"
)

// handleServiceError maps a service error to a response. Unrecognised
// errors on writes redirect to /servErr; on reads they render a 500.
func handleServiceError(w http.ResponseWriter, r *http.Request, op string, write bool, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		renderError(w, r, http.StatusUnprocessableEntity, "Please check your input", ve.Error())
	case errors.Is(err, domain.ErrValidationFailed), errors.Is(err, domain.ErrInvalidInput):
		renderError(w, r, http.StatusUnprocessableEntity, "Please check your input", err.Error())
	case errors.Is(err, domain.ErrPasswordMismatch):
		renderError(w, r, http.StatusUnprocessableEntity, "Passwords do not match",
			"The password and its confirmation must be identical.")
	case errors.Is(err, domain.ErrInvalidCredentials):
		renderError(w, r, http.StatusUnprocessableEntity, "Incorrect password",
			"The current password you entered is incorrect.")
	case errors.Is(err, domain.ErrDuplicateEmail):
		renderError(w, r, http.StatusConflict, "Email already registered",
			"An account with that email already exists. Try signing in instead.")
	case errors.Is(err, domain.ErrNotFound):
		renderError(w, r, http.StatusNotFound, "Not found", "We could not find what you were looking for.")
	case errors.Is(err, domain.ErrForbidden):
		renderError(w, r, http.StatusForbidden, "Not allowed", "You do not have permission to do that.")
	case errors.Is(err, domain.ErrUnauthorized):
		http.Redirect(w, r, "/register", http.StatusSeeOther)
	default:
		slog.Error(op, "error", err)
		if write {
			http.Redirect(w, r, "/servErr", http.StatusSeeOther)
			return
		}
		renderError(w, r, http.StatusInternalServerError, "Something went wrong",
			"An unexpected error occurred. Please try again.")
	}
}
