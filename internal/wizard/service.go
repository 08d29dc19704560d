// Package wizard holds the per-user incident wizard session: the
// partially-filled form and the current position in the fixed 5-step flow,
// including the capacity-limited timeline sub-model.
package wizard

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/karthiBP/aegis-incidents/internal/domain"
)

// Service implements wizard session business logic.
type Service struct {
	repo Repository
}

// NewService creates a new wizard service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the user's active session, creating a default one if none
// exists yet. Exactly one session is active per user.
func (s *Service) Get(ctx context.Context, userID string) (*domain.WizardSession, error) {
	session, err := s.repo.Get(ctx, userID)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, ErrSessionNotFound) {
		return nil, fmt.Errorf("get wizard session: %w", err)
	}

	session = &domain.WizardSession{
		UserID:      userID,
		CurrentStep: domain.FirstWizardStep,
		Form:        domain.DefaultWizardForm(),
	}
	if err := s.repo.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("create wizard session: %w", err)
	}
	return session, nil
}

// SetStep jumps directly to a step, e.g. when resuming a draft.
func (s *Service) SetStep(ctx context.Context, userID string, step int) (*domain.WizardSession, error) {
	if step < domain.FirstWizardStep || step > domain.LastWizardStep {
		return nil, ErrInvalidStep
	}
	return s.mutate(ctx, userID, func(session *domain.WizardSession) {
		session.CurrentStep = step
	})
}

// Next advances one step, stopping silently at the last step.
func (s *Service) Next(ctx context.Context, userID string) (*domain.WizardSession, error) {
	return s.mutate(ctx, userID, func(session *domain.WizardSession) {
		if session.CurrentStep < domain.LastWizardStep {
			session.CurrentStep++
		}
	})
}

// Prev moves one step back, stopping silently at the first step.
func (s *Service) Prev(ctx context.Context, userID string) (*domain.WizardSession, error) {
	return s.mutate(ctx, userID, func(session *domain.WizardSession) {
		if session.CurrentStep > domain.FirstWizardStep {
			session.CurrentStep--
		}
	})
}

// FormPatch carries a shallow-merge update for the wizard form. Only
// non-nil fields are applied; the timeline is managed through the dedicated
// timeline operations and is not part of a patch.
type FormPatch struct {
	Title         *string              `json:"title"`
	IncidentType  *domain.IncidentType `json:"incident_type"`
	Severity      *domain.Severity     `json:"severity"`
	StartTime     *string              `json:"start_time"`
	EndTime       *string              `json:"end_time"`
	RootCause     *string              `json:"root_cause"`
	Resolution    *string              `json:"resolution"`
	Impact        *string              `json:"impact"`
	Logs          *string              `json:"logs"`
	Commits       *string              `json:"commits"`
	SlackMessages *string              `json:"slack_messages"`
}

// Update shallow-merges the patch into the active form. No cross-field
// validation happens here (that is owned by each step's advance gate and by
// incident creation); text limits are enforced at input time by truncation.
func (s *Service) Update(ctx context.Context, userID string, patch FormPatch) (*domain.WizardSession, error) {
	return s.mutate(ctx, userID, func(session *domain.WizardSession) {
		form := &session.Form
		if patch.Title != nil {
			form.Title = domain.TruncateTitle(*patch.Title)
		}
		if patch.IncidentType != nil {
			form.IncidentType = *patch.IncidentType
		}
		if patch.Severity != nil {
			form.Severity = *patch.Severity
		}
		if patch.StartTime != nil {
			form.StartTime = *patch.StartTime
		}
		if patch.EndTime != nil {
			form.EndTime = *patch.EndTime
		}
		if patch.RootCause != nil {
			form.RootCause = domain.TruncateText(*patch.RootCause)
		}
		if patch.Resolution != nil {
			form.Resolution = domain.TruncateText(*patch.Resolution)
		}
		if patch.Impact != nil {
			form.Impact = domain.TruncateText(*patch.Impact)
		}
		if patch.Logs != nil {
			form.Logs = domain.TruncateText(*patch.Logs)
		}
		if patch.Commits != nil {
			form.Commits = domain.TruncateText(*patch.Commits)
		}
		if patch.SlackMessages != nil {
			form.SlackMessages = domain.TruncateText(*patch.SlackMessages)
		}
	})
}

// Reset replaces the form with defaults and rewinds to step 1.
func (s *Service) Reset(ctx context.Context, userID string) (*domain.WizardSession, error) {
	return s.mutate(ctx, userID, func(session *domain.WizardSession) {
		session.CurrentStep = domain.FirstWizardStep
		session.Form = domain.DefaultWizardForm()
	})
}

// Restore overwrites the session with a draft's snapshot.
func (s *Service) Restore(ctx context.Context, userID string, form domain.WizardForm, step int) (*domain.WizardSession, error) {
	if step < domain.FirstWizardStep || step > domain.LastWizardStep {
		step = domain.FirstWizardStep
	}
	return s.mutate(ctx, userID, func(session *domain.WizardSession) {
		session.CurrentStep = step
		session.Form = form
		if session.Form.Timeline == nil {
			session.Form.Timeline = make([]domain.TimelineEntry, 0)
		}
	})
}

// AddTimelineEntry appends an entry with a fresh id. At the capacity limit
// the add is a silent no-op; entry order is insertion order and is never
// re-sorted by timestamp.
func (s *Service) AddTimelineEntry(ctx context.Context, userID, timestamp, description string) (*domain.WizardSession, error) {
	return s.mutate(ctx, userID, func(session *domain.WizardSession) {
		if len(session.Form.Timeline) >= domain.MaxTimelineEntries {
			return
		}
		session.Form.Timeline = append(session.Form.Timeline, domain.TimelineEntry{
			ID:          uuid.NewString(),
			Timestamp:   timestamp,
			Description: domain.TruncateText(description),
		})
	})
}

// TimelineEntryPatch carries a partial update for one timeline entry.
type TimelineEntryPatch struct {
	Timestamp   *string `json:"timestamp"`
	Description *string `json:"description"`
}

// UpdateTimelineEntry updates an entry in place by id. Unknown ids are a
// silent no-op.
func (s *Service) UpdateTimelineEntry(ctx context.Context, userID, entryID string, patch TimelineEntryPatch) (*domain.WizardSession, error) {
	return s.mutate(ctx, userID, func(session *domain.WizardSession) {
		for i := range session.Form.Timeline {
			if session.Form.Timeline[i].ID != entryID {
				continue
			}
			if patch.Timestamp != nil {
				session.Form.Timeline[i].Timestamp = *patch.Timestamp
			}
			if patch.Description != nil {
				session.Form.Timeline[i].Description = domain.TruncateText(*patch.Description)
			}
			return
		}
	})
}

// RemoveTimelineEntry removes an entry by id. Unknown ids are a silent no-op.
func (s *Service) RemoveTimelineEntry(ctx context.Context, userID, entryID string) (*domain.WizardSession, error) {
	return s.mutate(ctx, userID, func(session *domain.WizardSession) {
		timeline := session.Form.Timeline
		for i := range timeline {
			if timeline[i].ID == entryID {
				session.Form.Timeline = append(timeline[:i], timeline[i+1:]...)
				return
			}
		}
	})
}

// ReorderTimeline moves the entry at fromIndex to toIndex, shifting the
// entries in between. Out-of-range indexes are a silent no-op.
func (s *Service) ReorderTimeline(ctx context.Context, userID string, fromIndex, toIndex int) (*domain.WizardSession, error) {
	return s.mutate(ctx, userID, func(session *domain.WizardSession) {
		timeline := session.Form.Timeline
		n := len(timeline)
		if fromIndex < 0 || fromIndex >= n || toIndex < 0 || toIndex >= n {
			return
		}
		entry := timeline[fromIndex]
		timeline = append(timeline[:fromIndex], timeline[fromIndex+1:]...)
		timeline = append(timeline[:toIndex], append([]domain.TimelineEntry{entry}, timeline[toIndex:]...)...)
		session.Form.Timeline = timeline
	})
}

// mutate loads the session (creating a default if needed), applies fn and
// persists the result.
func (s *Service) mutate(ctx context.Context, userID string, fn func(*domain.WizardSession)) (*domain.WizardSession, error) {
	session, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	fn(session)

	if err := s.repo.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save wizard session: %w", err)
	}
	return session, nil
}
