package drafts

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/karthiBP/aegis-incidents/internal/pkg/httputil"
	"github.com/karthiBP/aegis-incidents/internal/wizard"
)

// Handler handles HTTP requests for the drafts module.
type Handler struct {
	service *Service
}

// NewHandler creates a new drafts handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers draft routes. All routes require authentication.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/drafts", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Save)

		r.Route("/{draftID}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Put("/", h.Update)
			r.Delete("/", h.Delete)
			r.Post("/load", h.Load)
		})
	})
}

// SaveDraftRequest represents the request body for saving a draft.
type SaveDraftRequest struct {
	Title string `json:"title"`
}

// Save handles POST /drafts. Snapshots the live wizard session.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	var req SaveDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	draft, err := h.service.Save(r.Context(), httputil.GetUserID(r.Context()), req.Title)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}
	httputil.Success(w, http.StatusCreated, draft)
}

// List handles GET /drafts.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context(), httputil.GetUserID(r.Context()))
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}
	httputil.Success(w, http.StatusOK, list)
}

// draftID extracts the {draftID} path parameter. A syntactically invalid
// id can never exist, so it reports not-found.
func draftID(r *http.Request) (string, error) {
	id, ok := httputil.UUIDParam(r, "draftID")
	if !ok {
		return "", ErrDraftNotFound
	}
	return id, nil
}

// Get handles GET /drafts/{draftID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := draftID(r)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	draft, err := h.service.Get(r.Context(), httputil.GetUserID(r.Context()), id)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}
	httputil.Success(w, http.StatusOK, draft)
}

// Load handles POST /drafts/{draftID}/load. Returns the restored wizard
// session.
func (h *Handler) Load(w http.ResponseWriter, r *http.Request) {
	id, err := draftID(r)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	session, err := h.service.Load(r.Context(), httputil.GetUserID(r.Context()), id)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}
	httputil.Success(w, http.StatusOK, session)
}

// Update handles PUT /drafts/{draftID}. Re-snapshots the live session into
// the draft.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := draftID(r)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	var req SaveDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	draft, err := h.service.Update(r.Context(), httputil.GetUserID(r.Context()), id, req.Title)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}
	httputil.Success(w, http.StatusOK, draft)
}

// Delete handles DELETE /drafts/{draftID}. Always returns 204, even for an
// unknown or malformed id.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.UUIDParam(r, "draftID")
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := h.service.Delete(r.Context(), httputil.GetUserID(r.Context()), id); err != nil {
		h.handleServiceError(r, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleServiceError(r *http.Request, w http.ResponseWriter, err error) {
	httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
		{Error: ErrDraftNotFound, Status: http.StatusNotFound},
		{Error: wizard.ErrSessionNotFound, Status: http.StatusNotFound},
	})
}
