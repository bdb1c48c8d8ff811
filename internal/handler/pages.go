package handler

import (
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/msomdec/postboard/internal/view"
)

// HandleHome renders the landing page.
func HandleHome(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, http.StatusOK, view.HomePage(viewer(r)))
}

func HandleContact(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, http.StatusOK, view.ContactPage(viewer(r)))
}

func HandleSuccess(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, http.StatusOK, view.SuccessPage(viewer(r)))
}

func HandleErrorPage(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, http.StatusOK, view.ErrorPage(viewer(r), http.StatusInternalServerError,
		"Something went wrong", "An unexpected error occurred. Please try again."))
}

func HandleServerError(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, http.StatusOK, view.ServerErrorPage(viewer(r)))
}

// HandleNotFound renders the 404 page for unmatched paths.
func HandleNotFound(w http.ResponseWriter, r *http.Request) {
	renderError(w, r, http.StatusNotFound, "Page not found", "There is nothing at this address.")
}

func renderPage(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		slog.Error("render page", "path", r.URL.Path, "error", err)
	}
}

func renderError(w http.ResponseWriter, r *http.Request, status int, heading, message string) {
	renderPage(w, r, status, view.ErrorPage(viewer(r), status, heading, message))
}
