package wizard

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
	sessions map[string]*domain.WizardSession
	saveErr  error
}

func newMockRepository() *mockRepository {
	return &mockRepository{sessions: make(map[string]*domain.WizardSession)}
}

func (m *mockRepository) Get(_ context.Context, userID string) (*domain.WizardSession, error) {
	if s, ok := m.sessions[userID]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, ErrSessionNotFound
}

func (m *mockRepository) Save(_ context.Context, session *domain.WizardSession) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	copied := *session
	m.sessions[session.UserID] = &copied
	return nil
}

func (m *mockRepository) Delete(_ context.Context, userID string) error {
	delete(m.sessions, userID)
	return nil
}

func strPtr(s string) *string { return &s }

func TestGet_CreatesDefaultSession(t *testing.T) {
	service := NewService(newMockRepository())

	session, err := service.Get(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, domain.FirstWizardStep, session.CurrentStep)
	assert.Equal(t, domain.IncidentTypeOutage, session.Form.IncidentType)
	assert.Equal(t, domain.SeverityMedium, session.Form.Severity)
	assert.NotNil(t, session.Form.Timeline)
	assert.Empty(t, session.Form.Timeline)
}

func TestGet_ReturnsExistingSession(t *testing.T) {
	repo := newMockRepository()
	repo.sessions["user-1"] = &domain.WizardSession{
		UserID:      "user-1",
		CurrentStep: 3,
		Form:        domain.WizardForm{Title: "Existing"},
	}
	service := NewService(repo)

	session, err := service.Get(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, 3, session.CurrentStep)
	assert.Equal(t, "Existing", session.Form.Title)
}

func TestSetStep_RejectsOutOfRange(t *testing.T) {
	service := NewService(newMockRepository())

	for _, step := range []int{0, 6, -1} {
		_, err := service.SetStep(context.Background(), "user-1", step)
		assert.ErrorIs(t, err, ErrInvalidStep, "step %d", step)
	}

	session, err := service.SetStep(context.Background(), "user-1", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, session.CurrentStep)
}

func TestNext_ClampsAtLastStep(t *testing.T) {
	service := NewService(newMockRepository())

	_, err := service.SetStep(context.Background(), "user-1", domain.LastWizardStep)
	require.NoError(t, err)

	session, err := service.Next(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.LastWizardStep, session.CurrentStep)
}

func TestPrev_ClampsAtFirstStep(t *testing.T) {
	service := NewService(newMockRepository())

	session, err := service.Prev(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.FirstWizardStep, session.CurrentStep)
}

func TestUpdate_MergesOnlyProvidedFields(t *testing.T) {
	service := NewService(newMockRepository())

	_, err := service.Update(context.Background(), "user-1", FormPatch{
		Title:     strPtr("DB outage"),
		RootCause: strPtr("Connection pool exhausted"),
	})
	require.NoError(t, err)

	session, err := service.Update(context.Background(), "user-1", FormPatch{
		Impact: strPtr("Checkout unavailable"),
	})
	require.NoError(t, err)

	assert.Equal(t, "DB outage", session.Form.Title)
	assert.Equal(t, "Connection pool exhausted", session.Form.RootCause)
	assert.Equal(t, "Checkout unavailable", session.Form.Impact)
}

func TestUpdate_TruncatesOverlongInput(t *testing.T) {
	service := NewService(newMockRepository())

	session, err := service.Update(context.Background(), "user-1", FormPatch{
		Title:     strPtr(strings.Repeat("t", domain.MaxTitleLength+50)),
		RootCause: strPtr(strings.Repeat("r", domain.MaxTextLength+1)),
	})
	require.NoError(t, err)

	assert.Len(t, session.Form.Title, domain.MaxTitleLength)
	assert.Len(t, session.Form.RootCause, domain.MaxTextLength)
}

func TestReset_RestoresDefaults(t *testing.T) {
	service := NewService(newMockRepository())

	_, err := service.Update(context.Background(), "user-1", FormPatch{Title: strPtr("Filled")})
	require.NoError(t, err)
	_, err = service.SetStep(context.Background(), "user-1", 4)
	require.NoError(t, err)
	_, err = service.AddTimelineEntry(context.Background(), "user-1", "10:00", "detected")
	require.NoError(t, err)

	session, err := service.Reset(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, domain.FirstWizardStep, session.CurrentStep)
	assert.Empty(t, session.Form.Title)
	assert.Empty(t, session.Form.Timeline)
}

func TestRestore_OverwritesSession(t *testing.T) {
	service := NewService(newMockRepository())

	form := domain.WizardForm{Title: "From draft", IncidentType: domain.IncidentTypeSecurity}
	session, err := service.Restore(context.Background(), "user-1", form, 4)
	require.NoError(t, err)

	assert.Equal(t, 4, session.CurrentStep)
	assert.Equal(t, "From draft", session.Form.Title)
	assert.NotNil(t, session.Form.Timeline, "nil timeline normalized to empty")
}

func TestRestore_InvalidStepFallsBackToFirst(t *testing.T) {
	service := NewService(newMockRepository())

	session, err := service.Restore(context.Background(), "user-1", domain.WizardForm{}, 12)
	require.NoError(t, err)
	assert.Equal(t, domain.FirstWizardStep, session.CurrentStep)
}

func TestAddTimelineEntry_PreservesInsertionOrder(t *testing.T) {
	service := NewService(newMockRepository())

	_, err := service.AddTimelineEntry(context.Background(), "user-1", "10:30", "mitigated")
	require.NoError(t, err)
	session, err := service.AddTimelineEntry(context.Background(), "user-1", "10:00", "detected")
	require.NoError(t, err)

	// Entries keep the order they were added in, not timestamp order
	require.Len(t, session.Form.Timeline, 2)
	assert.Equal(t, "mitigated", session.Form.Timeline[0].Description)
	assert.Equal(t, "detected", session.Form.Timeline[1].Description)
	assert.NotEmpty(t, session.Form.Timeline[0].ID)
	assert.NotEqual(t, session.Form.Timeline[0].ID, session.Form.Timeline[1].ID)
}

func TestAddTimelineEntry_SilentNoOpAtCapacity(t *testing.T) {
	service := NewService(newMockRepository())

	var session *domain.WizardSession
	var err error
	for i := 0; i < domain.MaxTimelineEntries+5; i++ {
		session, err = service.AddTimelineEntry(context.Background(), "user-1", "10:00", fmt.Sprintf("event %d", i))
		require.NoError(t, err)
	}

	require.Len(t, session.Form.Timeline, domain.MaxTimelineEntries)
	assert.Equal(t, "event 0", session.Form.Timeline[0].Description)
	assert.Equal(t, fmt.Sprintf("event %d", domain.MaxTimelineEntries-1),
		session.Form.Timeline[domain.MaxTimelineEntries-1].Description)
}

func TestUpdateTimelineEntry_ByID(t *testing.T) {
	service := NewService(newMockRepository())

	session, err := service.AddTimelineEntry(context.Background(), "user-1", "10:00", "detected")
	require.NoError(t, err)
	entryID := session.Form.Timeline[0].ID

	session, err = service.UpdateTimelineEntry(context.Background(), "user-1", entryID, TimelineEntryPatch{
		Description: strPtr("detected by alerting"),
	})
	require.NoError(t, err)

	assert.Equal(t, "10:00", session.Form.Timeline[0].Timestamp)
	assert.Equal(t, "detected by alerting", session.Form.Timeline[0].Description)
}

func TestUpdateTimelineEntry_UnknownIDIsNoOp(t *testing.T) {
	service := NewService(newMockRepository())

	session, err := service.AddTimelineEntry(context.Background(), "user-1", "10:00", "detected")
	require.NoError(t, err)

	session, err = service.UpdateTimelineEntry(context.Background(), "user-1", "missing", TimelineEntryPatch{
		Description: strPtr("changed"),
	})
	require.NoError(t, err)
	assert.Equal(t, "detected", session.Form.Timeline[0].Description)
}

func TestRemoveTimelineEntry(t *testing.T) {
	service := NewService(newMockRepository())

	session, err := service.AddTimelineEntry(context.Background(), "user-1", "10:00", "first")
	require.NoError(t, err)
	first := session.Form.Timeline[0].ID
	_, err = service.AddTimelineEntry(context.Background(), "user-1", "10:05", "second")
	require.NoError(t, err)

	session, err = service.RemoveTimelineEntry(context.Background(), "user-1", first)
	require.NoError(t, err)
	require.Len(t, session.Form.Timeline, 1)
	assert.Equal(t, "second", session.Form.Timeline[0].Description)

	// Removing an unknown id is a silent no-op
	session, err = service.RemoveTimelineEntry(context.Background(), "user-1", "missing")
	require.NoError(t, err)
	assert.Len(t, session.Form.Timeline, 1)
}

func TestReorderTimeline(t *testing.T) {
	service := NewService(newMockRepository())

	for _, desc := range []string{"a", "b", "c"} {
		_, err := service.AddTimelineEntry(context.Background(), "user-1", "10:00", desc)
		require.NoError(t, err)
	}

	session, err := service.ReorderTimeline(context.Background(), "user-1", 0, 2)
	require.NoError(t, err)

	got := []string{
		session.Form.Timeline[0].Description,
		session.Form.Timeline[1].Description,
		session.Form.Timeline[2].Description,
	}
	assert.Equal(t, []string{"b", "c", "a"}, got)
}

func TestReorderTimeline_OutOfRangeIsNoOp(t *testing.T) {
	service := NewService(newMockRepository())

	_, err := service.AddTimelineEntry(context.Background(), "user-1", "10:00", "only")
	require.NoError(t, err)

	session, err := service.ReorderTimeline(context.Background(), "user-1", 0, 5)
	require.NoError(t, err)
	assert.Equal(t, "only", session.Form.Timeline[0].Description)
}
