// Package incidents holds the committed postmortem records and the
// operations that turn a wizard session into one: create, generate,
// confirm, finalize, share.
package incidents

import (
	"context"
	"fmt"
	"time"

	"github.com/karthiBP/aegis-incidents/internal/domain"
	"github.com/karthiBP/aegis-incidents/internal/generation"
	"github.com/karthiBP/aegis-incidents/internal/pkg/ctxlog"
)

// WizardSessions is the slice of the wizard service this package needs.
type WizardSessions interface {
	Get(ctx context.Context, userID string) (*domain.WizardSession, error)
	Reset(ctx context.Context, userID string) (*domain.WizardSession, error)
}

// GenerationWorkflow is the slice of the generation workflow this package
// needs.
type GenerationWorkflow interface {
	CanGenerate(identity string) bool
	CooldownRemaining(identity string) time.Duration
	Generate(ctx context.Context, identity string, req generation.ReportRequest) (*generation.ReportResult, error)
	Preview(identity string) *generation.ReportResult
	Status(identity string) (generation.State, string)
	ConsumePreview(identity string) (*generation.ReportResult, error)
	Discard(identity string)
}

// Service implements incident business logic.
type Service struct {
	repo         Repository
	wizard       WizardSessions
	workflow     GenerationWorkflow
	shareBaseURL string
}

// NewService creates a new incident service.
func NewService(repo Repository, wizard WizardSessions, workflow GenerationWorkflow, shareBaseURL string) *Service {
	return &Service{
		repo:         repo,
		wizard:       wizard,
		workflow:     workflow,
		shareBaseURL: shareBaseURL,
	}
}

// Create validates the submitted form and stores a DRAFT incident: no
// action items, no report. Validation returns the first violation found.
func (s *Service) Create(ctx context.Context, userID string, form domain.WizardForm) (*domain.Incident, error) {
	if verr := domain.ValidateWizardForm(&form); verr != nil {
		return nil, verr
	}

	incident := incidentFromForm(userID, form)
	if err := s.repo.Create(ctx, incident); err != nil {
		return nil, fmt.Errorf("create incident: %w", err)
	}
	return incident, nil
}

// Generate runs the rate-limited report generation against the user's
// live wizard session and stores the result as a preview. Nothing is
// persisted to the incident list here. The cooldown check is
// unconditional, whether this is a first generation or a regeneration.
func (s *Service) Generate(ctx context.Context, userID string) (*generation.ReportResult, error) {
	session, err := s.wizard.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(session.Form.Timeline) > domain.MaxTimelineEntries {
		return nil, &domain.ValidationError{Field: "timeline", Message: "Too many timeline entries"}
	}

	return s.workflow.Generate(ctx, userID, generation.NewReportRequest(&session.Form))
}

// Confirm is the commit half of the two-phase generate flow: it takes the
// previewed payload, builds a GENERATED incident from the live wizard
// session, stores it, and resets the session. This is the only point at
// which wizard data becomes a durable incident.
//
// Re-reading the live session also guards against a stale preview: a
// session reset since generation leaves a form that fails validation, so
// the preview cannot be committed against data the user no longer sees.
func (s *Service) Confirm(ctx context.Context, userID string) (*domain.Incident, error) {
	session, err := s.wizard.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if verr := domain.ValidateWizardForm(&session.Form); verr != nil {
		return nil, verr
	}

	preview, err := s.workflow.ConsumePreview(userID)
	if err != nil {
		return nil, err
	}

	incident := incidentFromForm(userID, session.Form)
	incident.Status = domain.IncidentStatusGenerated
	incident.ActionItems = preview.ActionItems
	incident.ReportMarkdown = preview.ReportMarkdown

	if err := s.repo.Create(ctx, incident); err != nil {
		return nil, fmt.Errorf("create incident: %w", err)
	}

	if _, err := s.wizard.Reset(ctx, userID); err != nil {
		// The incident is committed; a failed reset only leaves stale
		// wizard state behind.
		ctxlog.FromContext(ctx).Error("reset wizard after commit", "error", err)
	}

	return incident, nil
}

// DiscardPreview drops the user's pending preview without committing.
func (s *Service) DiscardPreview(userID string) {
	s.workflow.Discard(userID)
}

// Preview returns the user's pending preview, or nil if none exists.
func (s *Service) Preview(userID string) *generation.ReportResult {
	return s.workflow.Preview(userID)
}

// GenerationStatus reports the user's current generation state together
// with the last error message, if any.
func (s *Service) GenerationStatus(userID string) (generation.State, string) {
	return s.workflow.Status(userID)
}

// CooldownRemaining reports how long the user must wait before
// generating again.
func (s *Service) CooldownRemaining(userID string) time.Duration {
	return s.workflow.CooldownRemaining(userID)
}

// List returns a user's incidents, most recent first.
func (s *Service) List(ctx context.Context, userID string) ([]*domain.Incident, error) {
	return s.repo.List(ctx, userID)
}

// ListAll returns all incidents, most recent first.
func (s *Service) ListAll(ctx context.Context) ([]*domain.Incident, error) {
	return s.repo.ListAll(ctx)
}

// Get returns a user's incident by id.
func (s *Service) Get(ctx context.Context, userID, id string) (*domain.Incident, error) {
	return s.repo.GetByUser(ctx, userID, id)
}

// GetPublic returns an incident by id without ownership scoping, for
// public share pages.
func (s *Service) GetPublic(ctx context.Context, id string) (*domain.Incident, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdatePatch carries a partial incident update.
type UpdatePatch struct {
	Title       *string              `json:"title"`
	RootCause   *string              `json:"root_cause"`
	Impact      *string              `json:"impact"`
	Resolution  *string              `json:"resolution"`
	ActionItems *[]domain.ActionItem `json:"action_items"`
}

// Update merges the patch into the incident. Finalized incidents reject
// edits.
func (s *Service) Update(ctx context.Context, userID, id string, patch UpdatePatch) (*domain.Incident, error) {
	incident, err := s.repo.GetByUser(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if incident.Status == domain.IncidentStatusFinal {
		return nil, ErrIncidentFinal
	}

	if patch.Title != nil {
		incident.Title = domain.TruncateTitle(*patch.Title)
	}
	if patch.RootCause != nil {
		incident.RootCause = domain.TruncateText(*patch.RootCause)
	}
	if patch.Impact != nil {
		incident.Impact = domain.TruncateText(*patch.Impact)
	}
	if patch.Resolution != nil {
		incident.Resolution = domain.TruncateText(*patch.Resolution)
	}
	if patch.ActionItems != nil {
		incident.ActionItems = *patch.ActionItems
	}

	if err := s.repo.Update(ctx, incident); err != nil {
		return nil, fmt.Errorf("update incident: %w", err)
	}
	return incident, nil
}

// Delete removes a user's incident. Deleting an unknown id is a no-op, so
// the call is idempotent.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, userID, id)
}

// DeleteAny removes an incident regardless of owner. Admin-only; the
// handler gates the call on the caller's role.
func (s *Service) DeleteAny(ctx context.Context, id string) error {
	return s.repo.DeleteByID(ctx, id)
}

// Finalize marks an incident FINAL and stamps finalized_at. A thin field
// update; finalizing an already-final incident is a no-op success.
func (s *Service) Finalize(ctx context.Context, userID, id string) (*domain.Incident, error) {
	incident, err := s.repo.GetByUser(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if incident.Status == domain.IncidentStatusFinal {
		return incident, nil
	}

	now := time.Now().UTC()
	incident.Status = domain.IncidentStatusFinal
	incident.FinalizedAt = &now

	if err := s.repo.Update(ctx, incident); err != nil {
		return nil, fmt.Errorf("finalize incident: %w", err)
	}
	return incident, nil
}

// ShareResult is the computed public link for an incident.
type ShareResult struct {
	ShareURL    string `json:"share_url"`
	IncidentID  string `json:"incident_id"`
	SharedCount int    `json:"shared_count"`
}

// Share increments the incident's share counter and returns its public URL.
func (s *Service) Share(ctx context.Context, userID, id string) (*ShareResult, error) {
	count, err := s.repo.IncrementSharedCount(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	return &ShareResult{
		ShareURL:    fmt.Sprintf("%s/public/incident/%s", s.shareBaseURL, id),
		IncidentID:  id,
		SharedCount: count,
	}, nil
}

func incidentFromForm(userID string, form domain.WizardForm) *domain.Incident {
	timeline := form.Timeline
	if timeline == nil {
		timeline = make([]domain.TimelineEntry, 0)
	}
	return &domain.Incident{
		UserID:        userID,
		Title:         form.Title,
		IncidentType:  form.IncidentType,
		Severity:      form.Severity,
		StartTime:     form.StartTime,
		EndTime:       form.EndTime,
		Timeline:      timeline,
		RootCause:     form.RootCause,
		Impact:        form.Impact,
		Resolution:    form.Resolution,
		Logs:          form.Logs,
		Commits:       form.Commits,
		SlackMessages: form.SlackMessages,
		ActionItems:   make([]domain.ActionItem, 0),
		Status:        domain.IncidentStatusDraft,
	}
}
