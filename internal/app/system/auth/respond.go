package auth

import (
	"net/http"
	"strings"
)

// Redirect sends the client to dest with 303 See Other. HTMX requests get
// an HX-Redirect header instead so the whole page navigates rather than a
// partial swap.
func Redirect(w http.ResponseWriter, r *http.Request, dest string) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", dest)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

// WantsJSON reports whether the caller asked for a JSON answer.
func WantsJSON(r *http.Request) bool {
	if isHTMX(r) {
		return false
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
