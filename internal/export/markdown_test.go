package export

import (
	"strings"
	"testing"
	"time"

	"github.com/karthiBP/aegis-incidents/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleIncident() *domain.Incident {
	return &domain.Incident{
		ID:           "inc-1",
		Title:        "Database Pool Exhaustion",
		IncidentType: domain.IncidentTypeOutage,
		Severity:     domain.SeverityHigh,
		Status:       domain.IncidentStatusDraft,
		StartTime:    "2026-01-10T09:00",
		Timeline: []domain.TimelineEntry{
			{ID: "e1", Timestamp: "09:00", Description: "Latency alerts fired"},
			{ID: "e2", Timestamp: "09:20", Description: "Pool size increased"},
		},
		RootCause: "Connection leak in the worker",
		CreatedAt: time.Date(2026, 1, 10, 12, 30, 0, 0, time.UTC),
	}
}

func TestMarkdownRenderer_RendersFromFields(t *testing.T) {
	renderer, err := NewMarkdownRenderer()
	require.NoError(t, err)

	doc, err := renderer.Render(sampleIncident())
	require.NoError(t, err)

	out := string(doc)
	assert.Contains(t, out, "# Database Pool Exhaustion")
	assert.Contains(t, out, "**Type:** Outage | **Severity:** HIGH | **Status:** DRAFT")
	assert.Contains(t, out, "**End:** Ongoing")
	assert.Contains(t, out, "- **09:00** - Latency alerts fired")
	assert.Contains(t, out, "Connection leak in the worker")
	assert.Contains(t, out, "*Generated by AEGIS INCIDENTS on Jan 10, 2026 12:30 UTC*")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestMarkdownRenderer_PendingPlaceholders(t *testing.T) {
	renderer, err := NewMarkdownRenderer()
	require.NoError(t, err)

	incident := sampleIncident()
	incident.RootCause = ""
	incident.Impact = ""
	incident.Resolution = ""

	doc, err := renderer.Render(incident)
	require.NoError(t, err)
	assert.Contains(t, string(doc), "_Pending investigation._")
}

func TestMarkdownRenderer_EndTimeShownWhenSet(t *testing.T) {
	renderer, err := NewMarkdownRenderer()
	require.NoError(t, err)

	incident := sampleIncident()
	incident.EndTime = "2026-01-10T10:15"

	doc, err := renderer.Render(incident)
	require.NoError(t, err)
	assert.Contains(t, string(doc), "**End:** 2026-01-10T10:15")
}

func TestMarkdownRenderer_GeneratedReportServedVerbatim(t *testing.T) {
	renderer, err := NewMarkdownRenderer()
	require.NoError(t, err)

	incident := sampleIncident()
	incident.ReportMarkdown = "# Custom generated report\n\nExactly as generated.\n"

	doc, err := renderer.Render(incident)
	require.NoError(t, err)
	assert.Equal(t, incident.ReportMarkdown, string(doc))
}

func TestMarkdownRenderer_ActionItemsTable(t *testing.T) {
	renderer, err := NewMarkdownRenderer()
	require.NoError(t, err)

	incident := sampleIncident()
	incident.ActionItems = []domain.ActionItem{
		{ID: "a1", Action: "Add pool metrics", Owner: "SRE Lead", Priority: domain.PriorityP0, Completed: true},
		{ID: "a2", Action: "Write runbook", Owner: "DevOps", Priority: domain.PriorityP2},
	}

	doc, err := renderer.Render(incident)
	require.NoError(t, err)

	out := string(doc)
	assert.Contains(t, out, "## Action Items")
	assert.Contains(t, out, "| P0 | Add pool metrics | SRE Lead | yes |")
	assert.Contains(t, out, "| P2 | Write runbook | DevOps | no |")
}

func TestFilename(t *testing.T) {
	tests := []struct {
		title string
		ext   string
		want  string
	}{
		{"Database Pool Exhaustion", "md", "database-pool-exhaustion-postmortem.md"},
		{"API   Gateway  Outage", "pdf", "api-gateway-outage-postmortem.pdf"},
		{"single", "md", "single-postmortem.md"},
	}

	for _, tc := range tests {
		incident := &domain.Incident{Title: tc.title}
		assert.Equal(t, tc.want, Filename(incident, tc.ext))
	}
}
