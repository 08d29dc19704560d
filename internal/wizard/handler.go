package wizard

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/karthiBP/aegis-incidents/internal/pkg/httputil"
)

// Handler handles HTTP requests for the wizard module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new wizard handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers wizard routes. All routes require authentication.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/wizard", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Patch("/", h.Update)
		r.Post("/step", h.SetStep)
		r.Post("/next", h.Next)
		r.Post("/prev", h.Prev)
		r.Post("/reset", h.Reset)

		r.Route("/timeline", func(r chi.Router) {
			r.Post("/", h.AddTimelineEntry)
			r.Post("/reorder", h.ReorderTimeline)
			r.Patch("/{entryID}", h.UpdateTimelineEntry)
			r.Delete("/{entryID}", h.RemoveTimelineEntry)
		})
	})
}

// Get handles GET /wizard.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Get(r.Context(), httputil.GetUserID(r.Context()))
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}
	httputil.Success(w, http.StatusOK, session)
}

// Update handles PATCH /wizard.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var patch FormPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	session, err := h.service.Update(r.Context(), httputil.GetUserID(r.Context()), patch)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}
	httputil.Success(w, http.StatusOK, session)
}

// SetStepRequest represents the request body for jumping to a step.
type SetStepRequest struct {
	Step int `json:"step" validate:"required"`
}

// SetStep handles POST /wizard/step.
func (h *Handler) SetStep(w http.ResponseWriter, r *http.Request) {
	var req SetStepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	session, err := h.service.SetStep(r.Context(), httputil.GetUserID(r.Context()), req.Step)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}
	httputil.Success(w, http.StatusOK, session)
}

// Next handles POST /wizard/next.
func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Next(r.Context(), httputil.GetUserID(r.Context()))
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}
	httputil.Success(w, http.StatusOK, session)
}

// Prev handles POST /wizard/prev.
func (h *Handler) Prev(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Prev(r.Context(), httputil.GetUserID(r.Context()))
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}
	httputil.Success(w, http.StatusOK, session)
}

// Reset handles POST /wizard/reset.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Reset(r.Context(), httputil.GetUserID(r.Context()))
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}
	httputil.Success(w, http.StatusOK, session)
}

// AddTimelineEntryRequest represents the request body for adding an entry.
type AddTimelineEntryRequest struct {
	Timestamp   string `json:"timestamp" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// AddTimelineEntry handles POST /wizard/timeline.
func (h *Handler) AddTimelineEntry(w http.ResponseWriter, r *http.Request) {
	var req AddTimelineEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	session, err := h.service.AddTimelineEntry(r.Context(), httputil.GetUserID(r.Context()), req.Timestamp, req.Description)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}
	httputil.Success(w, http.StatusOK, session)
}

// UpdateTimelineEntry handles PATCH /wizard/timeline/{entryID}.
func (h *Handler) UpdateTimelineEntry(w http.ResponseWriter, r *http.Request) {
	var patch TimelineEntryPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	session, err := h.service.UpdateTimelineEntry(r.Context(), httputil.GetUserID(r.Context()), chi.URLParam(r, "entryID"), patch)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}
	httputil.Success(w, http.StatusOK, session)
}

// RemoveTimelineEntry handles DELETE /wizard/timeline/{entryID}.
func (h *Handler) RemoveTimelineEntry(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.RemoveTimelineEntry(r.Context(), httputil.GetUserID(r.Context()), chi.URLParam(r, "entryID"))
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}
	httputil.Success(w, http.StatusOK, session)
}

// ReorderTimelineRequest represents the request body for reordering.
type ReorderTimelineRequest struct {
	FromIndex int `json:"from_index" validate:"min=0"`
	ToIndex   int `json:"to_index" validate:"min=0"`
}

// ReorderTimeline handles POST /wizard/timeline/reorder.
func (h *Handler) ReorderTimeline(w http.ResponseWriter, r *http.Request) {
	var req ReorderTimelineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	session, err := h.service.ReorderTimeline(r.Context(), httputil.GetUserID(r.Context()), req.FromIndex, req.ToIndex)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}
	httputil.Success(w, http.StatusOK, session)
}

func (h *Handler) handleServiceError(r *http.Request, w http.ResponseWriter, err error) {
	httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
		{Error: ErrInvalidStep, Status: http.StatusBadRequest},
	})
}
