package export

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/karthiBP/aegis-incidents/internal/domain"
	"github.com/karthiBP/aegis-incidents/internal/incidents"
	"github.com/karthiBP/aegis-incidents/internal/pkg/httputil"
)

// IncidentGetter is the slice of the incidents service this package needs.
type IncidentGetter interface {
	Get(ctx context.Context, userID, id string) (*domain.Incident, error)
}

// Handler handles HTTP requests for incident document downloads.
type Handler struct {
	incidents IncidentGetter
	markdown  *MarkdownRenderer
	pdf       *PDFRenderer
}

// NewHandler creates a new export handler.
func NewHandler(getter IncidentGetter, markdown *MarkdownRenderer, pdf *PDFRenderer) *Handler {
	return &Handler{incidents: getter, markdown: markdown, pdf: pdf}
}

// RegisterRoutes registers export routes under /incidents. All routes
// require authentication.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/incidents/{incidentID}/export/markdown", h.Markdown)
	r.Get("/incidents/{incidentID}/export/pdf", h.PDF)
}

// Markdown handles GET /incidents/{incidentID}/export/markdown.
func (h *Handler) Markdown(w http.ResponseWriter, r *http.Request) {
	incident, err := h.getIncident(r)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	doc, err := h.markdown.Render(incident)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}
	httputil.Attachment(w, "text/markdown; charset=utf-8", Filename(incident, "md"), doc)
}

// PDF handles GET /incidents/{incidentID}/export/pdf.
func (h *Handler) PDF(w http.ResponseWriter, r *http.Request) {
	incident, err := h.getIncident(r)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	doc, err := h.pdf.Render(incident)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}
	httputil.Attachment(w, "application/pdf", Filename(incident, "pdf"), doc)
}

// getIncident resolves the {incidentID} parameter to the caller's
// incident. A malformed id can never exist, so it reports not-found.
func (h *Handler) getIncident(r *http.Request) (*domain.Incident, error) {
	id, ok := httputil.UUIDParam(r, "incidentID")
	if !ok {
		return nil, incidents.ErrIncidentNotFound
	}
	return h.incidents.Get(r.Context(), httputil.GetUserID(r.Context()), id)
}

func (h *Handler) handleServiceError(r *http.Request, w http.ResponseWriter, err error) {
	httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
		{Error: incidents.ErrIncidentNotFound, Status: http.StatusNotFound},
	})
}
