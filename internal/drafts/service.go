// Package drafts lets users park an in-progress wizard session and come
// back to it later. A draft is a named snapshot of the form and step.
package drafts

import (
	"context"
	"fmt"

	"github.com/karthiBP/aegis-incidents/internal/domain"
)

// WizardSessions is the slice of the wizard service this package needs.
type WizardSessions interface {
	Get(ctx context.Context, userID string) (*domain.WizardSession, error)
	Restore(ctx context.Context, userID string, form domain.WizardForm, step int) (*domain.WizardSession, error)
}

// PreviewDiscarder drops any pending generation preview. Loading a draft
// replaces the live session, so a preview built from the old form must go.
type PreviewDiscarder interface {
	Discard(identity string)
}

// Service implements draft business logic.
type Service struct {
	repo     Repository
	wizard   WizardSessions
	previews PreviewDiscarder
}

// NewService creates a new drafts service.
func NewService(repo Repository, wizard WizardSessions, previews PreviewDiscarder) *Service {
	return &Service{repo: repo, wizard: wizard, previews: previews}
}

// Save snapshots the user's live wizard session as a new draft. An empty
// title falls back to the form title, then to "Untitled Draft".
func (s *Service) Save(ctx context.Context, userID, title string) (*domain.Draft, error) {
	session, err := s.wizard.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	draft := &domain.Draft{
		UserID:      userID,
		Title:       draftTitle(title, &session.Form),
		Form:        session.Form,
		CurrentStep: session.CurrentStep,
	}
	if err := s.repo.Create(ctx, draft); err != nil {
		return nil, fmt.Errorf("create draft: %w", err)
	}
	return draft, nil
}

// List returns the user's drafts, most recently updated first.
func (s *Service) List(ctx context.Context, userID string) ([]*domain.Draft, error) {
	return s.repo.List(ctx, userID)
}

// Get returns a single draft.
func (s *Service) Get(ctx context.Context, userID, id string) (*domain.Draft, error) {
	return s.repo.Get(ctx, userID, id)
}

// Load restores a draft into the live wizard session, replacing whatever
// the session held. Any pending preview is discarded since it no longer
// matches the form.
func (s *Service) Load(ctx context.Context, userID, id string) (*domain.WizardSession, error) {
	draft, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	session, err := s.wizard.Restore(ctx, userID, draft.Form, draft.CurrentStep)
	if err != nil {
		return nil, err
	}
	s.previews.Discard(userID)
	return session, nil
}

// Update re-snapshots the user's live wizard session into an existing
// draft, keeping the draft's title unless a new one is given.
func (s *Service) Update(ctx context.Context, userID, id, title string) (*domain.Draft, error) {
	draft, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	session, err := s.wizard.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if title != "" {
		draft.Title = domain.TruncateTitle(title)
	}
	draft.Form = session.Form
	draft.CurrentStep = session.CurrentStep

	if err := s.repo.Update(ctx, draft); err != nil {
		return nil, fmt.Errorf("update draft: %w", err)
	}
	return draft, nil
}

// Delete removes a draft. Deleting an unknown id is a no-op, so the call
// is idempotent.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, userID, id)
}

func draftTitle(title string, form *domain.WizardForm) string {
	if title != "" {
		return domain.TruncateTitle(title)
	}
	if form.Title != "" {
		return form.Title
	}
	return "Untitled Draft"
}
