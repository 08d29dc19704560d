package httputil

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// UUIDParam returns the named chi route parameter when it parses as a
// UUID. Record ids are uuid columns, so a malformed id can never match a
// row; callers treat ok == false as not-found rather than handing the
// raw string to the database driver.
func UUIDParam(r *http.Request, name string) (string, bool) {
	id := chi.URLParam(r, name)
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}
