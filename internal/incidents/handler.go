package incidents

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/karthiBP/aegis-incidents/internal/domain"
	"github.com/karthiBP/aegis-incidents/internal/generation"
	"github.com/karthiBP/aegis-incidents/internal/pkg/httputil"
	"github.com/karthiBP/aegis-incidents/internal/wizard"
)

// Handler handles HTTP requests for the incidents module.
type Handler struct {
	service *Service
}

// NewHandler creates a new incidents handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers incident routes. All routes require
// authentication; /incidents/all additionally requires the admin role.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/incidents", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.With(httputil.RequireRole(domain.RoleAdmin)).Get("/all", h.ListAll)

		r.Post("/generate", h.Generate)
		r.Get("/generation", h.GenerationStatus)
		r.Get("/preview", h.Preview)
		r.Delete("/preview", h.DiscardPreview)
		r.Post("/confirm", h.Confirm)

		r.Route("/{incidentID}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Patch("/", h.Update)
			r.Delete("/", h.Delete)
			r.Post("/finalize", h.Finalize)
			r.Post("/share", h.Share)
		})
	})
}

// RegisterPublicRoutes registers the unauthenticated share endpoint.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/public/incidents/{incidentID}", h.GetPublic)
}

// Create handles POST /incidents. The body is a full wizard form; a valid
// form becomes a DRAFT incident without a generated report.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var form domain.WizardForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	incident, err := h.service.Create(r.Context(), httputil.GetUserID(r.Context()), form)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}
	httputil.Success(w, http.StatusCreated, incident)
}

// Generate handles POST /incidents/generate.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r.Context())

	result, err := h.service.Generate(r.Context(), userID)
	if err != nil {
		if errors.Is(err, generation.ErrRateLimited) {
			secs := int(math.Ceil(h.service.CooldownRemaining(userID).Seconds()))
			httputil.Error(w, http.StatusTooManyRequests,
				fmt.Sprintf("Please wait %d seconds before regenerating", secs))
			return
		}
		h.handleServiceError(r, w, err)
		return
	}
	httputil.Success(w, http.StatusOK, result)
}

// GenerationStatusResponse reports the generation state for polling.
type GenerationStatusResponse struct {
	State        generation.State `json:"state"`
	ErrorMessage string           `json:"error_message,omitempty"`
	CooldownSecs int              `json:"cooldown_seconds"`
}

// GenerationStatus handles GET /incidents/generation.
func (h *Handler) GenerationStatus(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r.Context())
	state, errMsg := h.service.GenerationStatus(userID)
	httputil.Success(w, http.StatusOK, GenerationStatusResponse{
		State:        state,
		ErrorMessage: errMsg,
		CooldownSecs: int(math.Ceil(h.service.CooldownRemaining(userID).Seconds())),
	})
}

// Preview handles GET /incidents/preview.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	preview := h.service.Preview(httputil.GetUserID(r.Context()))
	if preview == nil {
		httputil.Error(w, http.StatusNotFound, generation.ErrNoPreview.Error())
		return
	}
	httputil.Success(w, http.StatusOK, preview)
}

// DiscardPreview handles DELETE /incidents/preview.
func (h *Handler) DiscardPreview(w http.ResponseWriter, r *http.Request) {
	h.service.DiscardPreview(httputil.GetUserID(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

// Confirm handles POST /incidents/confirm. Commits the pending preview
// and resets the wizard.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	incident, err := h.service.Confirm(r.Context(), httputil.GetUserID(r.Context()))
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}
	httputil.Success(w, http.StatusCreated, incident)
}

// List handles GET /incidents.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context(), httputil.GetUserID(r.Context()))
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}
	httputil.Success(w, http.StatusOK, list)
}

// ListAll handles GET /incidents/all.
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListAll(r.Context())
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}
	httputil.Success(w, http.StatusOK, list)
}

// incidentID extracts the {incidentID} path parameter. A syntactically
// invalid id can never exist, so it reports not-found.
func incidentID(r *http.Request) (string, error) {
	id, ok := httputil.UUIDParam(r, "incidentID")
	if !ok {
		return "", ErrIncidentNotFound
	}
	return id, nil
}

// Get handles GET /incidents/{incidentID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := incidentID(r)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	incident, err := h.service.Get(r.Context(), httputil.GetUserID(r.Context()), id)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}
	httputil.Success(w, http.StatusOK, incident)
}

// GetPublic handles GET /public/incidents/{incidentID}.
func (h *Handler) GetPublic(w http.ResponseWriter, r *http.Request) {
	id, err := incidentID(r)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	incident, err := h.service.GetPublic(r.Context(), id)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}
	httputil.Success(w, http.StatusOK, incident)
}

// Update handles PATCH /incidents/{incidentID}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := incidentID(r)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	var patch UpdatePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	incident, err := h.service.Update(r.Context(), httputil.GetUserID(r.Context()), id, patch)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}
	httputil.Success(w, http.StatusOK, incident)
}

// Delete handles DELETE /incidents/{incidentID}. Always returns 204, even
// for an unknown or malformed id. Admins may delete incidents they do
// not own.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.UUIDParam(r, "incidentID")
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var err error
	if httputil.GetRole(r.Context()) == domain.RoleAdmin {
		err = h.service.DeleteAny(r.Context(), id)
	} else {
		err = h.service.Delete(r.Context(), httputil.GetUserID(r.Context()), id)
	}
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Finalize handles POST /incidents/{incidentID}/finalize.
func (h *Handler) Finalize(w http.ResponseWriter, r *http.Request) {
	id, err := incidentID(r)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	incident, err := h.service.Finalize(r.Context(), httputil.GetUserID(r.Context()), id)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}
	httputil.Success(w, http.StatusOK, incident)
}

// Share handles POST /incidents/{incidentID}/share.
func (h *Handler) Share(w http.ResponseWriter, r *http.Request) {
	id, err := incidentID(r)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	result, err := h.service.Share(r.Context(), httputil.GetUserID(r.Context()), id)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}
	httputil.Success(w, http.StatusOK, result)
}

func (h *Handler) handleServiceError(r *http.Request, w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		httputil.Error(w, http.StatusBadRequest, verr.Message)
		return
	}

	httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
		{Error: ErrIncidentNotFound, Status: http.StatusNotFound},
		{Error: ErrIncidentFinal, Status: http.StatusConflict},
		{Error: wizard.ErrSessionNotFound, Status: http.StatusNotFound},
		{Error: generation.ErrGenerationInFlight, Status: http.StatusConflict},
		{Error: generation.ErrNoPreview, Status: http.StatusConflict},
		{Error: generation.ErrGeneratorBusy, Status: http.StatusServiceUnavailable},
		{Error: generation.ErrGenerationFailed, Status: http.StatusInternalServerError},
	})
}
