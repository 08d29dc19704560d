package httputil

import (
	"context"
	"errors"
	"net/http"

	"github.com/karthiBP/aegis-incidents/internal/pkg/ctxlog"
)

// ErrorMapping pairs a sentinel error with the HTTP status it maps to.
// An empty Message falls back to the error's own text.
type ErrorMapping struct {
	Error   error
	Status  int
	Message string
}

// HandleError writes the mapped response for err. Errors with no mapping
// are logged and answered with a generic 500 so internals never leak to
// the client.
func HandleError(ctx context.Context, w http.ResponseWriter, err error, mappings []ErrorMapping) {
	for _, m := range mappings {
		if errors.Is(err, m.Error) {
			msg := m.Message
			if msg == "" {
				msg = err.Error()
			}
			Error(w, m.Status, msg)
			return
		}
	}
	ctxlog.FromContext(ctx).Error("internal error", "error", err)
	Error(w, http.StatusInternalServerError, "internal error")
}
