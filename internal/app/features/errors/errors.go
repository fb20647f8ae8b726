// internal/app/features/errors/errors.go
package errors

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/gorilla/csrf"
)

// pageData is the view model for error pages.
type pageData struct {
	Title     string
	Status    int
	Message   string
	BackURL   string
	CSRFToken string
}

// Handler is the errors feature handler.
// No dependencies; it just renders templates.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// NotFound renders the "page not found" page.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	Render(w, r, http.StatusNotFound, "Page not found", "/dashboard")
}

// Forbidden renders the page shown when a form's CSRF token is missing or
// stale.
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	Render(w, r, http.StatusForbidden, "This form has expired. Reload the page and try again.", "/dashboard")
}

// TooManyRequests renders the rate-limit page.
// GET /slow-down
func (h *Handler) TooManyRequests(w http.ResponseWriter, r *http.Request) {
	Render(w, r, http.StatusTooManyRequests, "You're going a little fast. Please wait a minute.", "/dashboard")
}

// WantsJSON reports whether the caller asked for a JSON response.
func WantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// Render writes an error for status. JSON callers get {"error": msg};
// everyone else gets the error page. If backURL is empty it defaults to
// /dashboard.
func Render(w http.ResponseWriter, r *http.Request, status int, msg, backURL string) {
	if WantsJSON(r) {
		WriteJSON(w, status, map[string]string{"error": msg})
		return
	}
	if backURL == "" {
		backURL = "/dashboard"
	}

	w.WriteHeader(status)
	templates.Render(w, r, "error_page", pageData{
		Title:     http.StatusText(status),
		Status:    status,
		Message:   msg,
		BackURL:   backURL,
		CSRFToken: csrf.Token(r),
	})
}

// WriteJSON encodes v with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
