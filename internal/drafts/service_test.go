package drafts

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/karthiBP/aegis-incidents/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRepository implements Repository for testing.
type mockRepository struct {
	drafts map[string]*domain.Draft
	nextID int
}

func newMockRepository() *mockRepository {
	return &mockRepository{drafts: make(map[string]*domain.Draft)}
}

func (m *mockRepository) Create(_ context.Context, draft *domain.Draft) error {
	m.nextID++
	draft.ID = fmt.Sprintf("draft-%d", m.nextID)
	m.drafts[draft.ID] = draft
	return nil
}

func (m *mockRepository) Get(_ context.Context, userID, id string) (*domain.Draft, error) {
	if d, ok := m.drafts[id]; ok && d.UserID == userID {
		return d, nil
	}
	return nil, ErrDraftNotFound
}

func (m *mockRepository) List(_ context.Context, userID string) ([]*domain.Draft, error) {
	var out []*domain.Draft
	for _, d := range m.drafts {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockRepository) Update(_ context.Context, draft *domain.Draft) error {
	if _, ok := m.drafts[draft.ID]; !ok {
		return ErrDraftNotFound
	}
	m.drafts[draft.ID] = draft
	return nil
}

func (m *mockRepository) Delete(_ context.Context, userID, id string) error {
	if d, ok := m.drafts[id]; ok && d.UserID == userID {
		delete(m.drafts, id)
	}
	return nil
}

// mockWizard implements WizardSessions for testing.
type mockWizard struct {
	session  *domain.WizardSession
	restored *domain.WizardSession
}

func (m *mockWizard) Get(_ context.Context, _ string) (*domain.WizardSession, error) {
	return m.session, nil
}

func (m *mockWizard) Restore(_ context.Context, userID string, form domain.WizardForm, step int) (*domain.WizardSession, error) {
	m.restored = &domain.WizardSession{UserID: userID, CurrentStep: step, Form: form}
	return m.restored, nil
}

// mockDiscarder implements PreviewDiscarder for testing.
type mockDiscarder struct {
	calls int
}

func (m *mockDiscarder) Discard(string) { m.calls++ }

func sessionWithTitle(title string) *domain.WizardSession {
	return &domain.WizardSession{
		UserID:      "user-1",
		CurrentStep: 3,
		Form: domain.WizardForm{
			Title:    title,
			Timeline: []domain.TimelineEntry{{ID: "e1", Description: "noticed"}},
		},
	}
}

func TestSave_SnapshotsSession(t *testing.T) {
	repo := newMockRepository()
	wiz := &mockWizard{session: sessionWithTitle("Network partition")}
	service := NewService(repo, wiz, &mockDiscarder{})

	draft, err := service.Save(context.Background(), "user-1", "My draft")

	require.NoError(t, err)
	assert.Equal(t, "My draft", draft.Title)
	assert.Equal(t, 3, draft.CurrentStep)
	assert.Equal(t, "Network partition", draft.Form.Title)
	assert.Len(t, draft.Form.Timeline, 1)
}

func TestSave_TitleFallbacks(t *testing.T) {
	tests := []struct {
		name      string
		given     string
		formTitle string
		want      string
	}{
		{"explicit title wins", "Named", "Form title", "Named"},
		{"form title fallback", "", "Form title", "Form title"},
		{"untitled fallback", "", "", "Untitled Draft"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			wiz := &mockWizard{session: sessionWithTitle(tc.formTitle)}
			service := NewService(newMockRepository(), wiz, &mockDiscarder{})

			draft, err := service.Save(context.Background(), "user-1", tc.given)
			require.NoError(t, err)
			assert.Equal(t, tc.want, draft.Title)
		})
	}
}

func TestSave_TruncatesTitle(t *testing.T) {
	wiz := &mockWizard{session: sessionWithTitle("x")}
	service := NewService(newMockRepository(), wiz, &mockDiscarder{})

	draft, err := service.Save(context.Background(), "user-1", strings.Repeat("t", domain.MaxTitleLength+10))

	require.NoError(t, err)
	assert.Len(t, draft.Title, domain.MaxTitleLength)
}

func TestLoad_RestoresSessionAndDiscardsPreview(t *testing.T) {
	repo := newMockRepository()
	wiz := &mockWizard{session: sessionWithTitle("Saved state")}
	previews := &mockDiscarder{}
	service := NewService(repo, wiz, previews)

	draft, err := service.Save(context.Background(), "user-1", "")
	require.NoError(t, err)

	session, err := service.Load(context.Background(), "user-1", draft.ID)

	require.NoError(t, err)
	assert.Equal(t, 3, session.CurrentStep)
	assert.Equal(t, "Saved state", session.Form.Title)
	assert.Equal(t, 1, previews.calls, "stale preview discarded on load")
}

func TestLoad_UnknownDraft(t *testing.T) {
	previews := &mockDiscarder{}
	service := NewService(newMockRepository(), &mockWizard{}, previews)

	_, err := service.Load(context.Background(), "user-1", "missing")

	assert.ErrorIs(t, err, ErrDraftNotFound)
	assert.Zero(t, previews.calls)
}

func TestUpdate_ResnapshotsSession(t *testing.T) {
	repo := newMockRepository()
	wiz := &mockWizard{session: sessionWithTitle("Version one")}
	service := NewService(repo, wiz, &mockDiscarder{})

	draft, err := service.Save(context.Background(), "user-1", "Keep this title")
	require.NoError(t, err)

	wiz.session = sessionWithTitle("Version two")
	wiz.session.CurrentStep = 5

	updated, err := service.Update(context.Background(), "user-1", draft.ID, "")

	require.NoError(t, err)
	assert.Equal(t, "Keep this title", updated.Title)
	assert.Equal(t, "Version two", updated.Form.Title)
	assert.Equal(t, 5, updated.CurrentStep)
}

func TestUpdate_RenamesWhenTitleGiven(t *testing.T) {
	repo := newMockRepository()
	wiz := &mockWizard{session: sessionWithTitle("Form")}
	service := NewService(repo, wiz, &mockDiscarder{})

	draft, err := service.Save(context.Background(), "user-1", "Old name")
	require.NoError(t, err)

	updated, err := service.Update(context.Background(), "user-1", draft.ID, "New name")
	require.NoError(t, err)
	assert.Equal(t, "New name", updated.Title)
}

func TestDelete_Idempotent(t *testing.T) {
	repo := newMockRepository()
	wiz := &mockWizard{session: sessionWithTitle("Gone soon")}
	service := NewService(repo, wiz, &mockDiscarder{})

	draft, err := service.Save(context.Background(), "user-1", "")
	require.NoError(t, err)

	require.NoError(t, service.Delete(context.Background(), "user-1", draft.ID))
	require.NoError(t, service.Delete(context.Background(), "user-1", draft.ID))
	assert.Empty(t, repo.drafts)
}

func TestDraftsAreScopedToOwner(t *testing.T) {
	repo := newMockRepository()
	wiz := &mockWizard{session: sessionWithTitle("Private")}
	service := NewService(repo, wiz, &mockDiscarder{})

	draft, err := service.Save(context.Background(), "user-1", "")
	require.NoError(t, err)

	_, err = service.Get(context.Background(), "user-2", draft.ID)
	assert.ErrorIs(t, err, ErrDraftNotFound)
}
