package generation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/karthiBP/aegis-incidents/internal/domain"
)

// MockGenerator produces a canned, deterministic postmortem. It is the
// fallback when no AI provider is configured, keeping the whole workflow
// usable and testable without the live service.
type MockGenerator struct{}

// NewMockGenerator creates a mock generator.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Name implements Generator.
func (g *MockGenerator) Name() string { return "mock" }

var mockActions = []struct {
	action   string
	owner    string
	priority domain.Priority
}{
	{"Implement connection pool usage alerting (>80% threshold)", "DevOps", domain.PriorityP0},
	{"Add query execution time monitoring dashboard", "Platform Team", domain.PriorityP0},
	{"Document emergency procedures in runbook", "SRE Lead", domain.PriorityP1},
	{"Schedule quarterly capacity planning review", "Engineering Manager", domain.PriorityP1},
}

// Generate implements Generator. The report always contains the incident
// title and a non-empty action-item list.
func (g *MockGenerator) Generate(_ context.Context, req ReportRequest) (*ReportResult, error) {
	items := make([]domain.ActionItem, 0, len(mockActions))
	for _, a := range mockActions {
		items = append(items, domain.ActionItem{
			ID:       uuid.NewString(),
			Action:   a.action,
			Owner:    a.owner,
			Priority: a.priority,
		})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", req.Title)

	fmt.Fprintf(&b, "## Executive Summary\n")
	fmt.Fprintf(&b, "On %s, our service experienced an incident that affected operations. "+
		"The team responded quickly to identify and resolve the issue. "+
		"This document outlines the timeline, root cause, and action items to prevent recurrence.\n\n",
		formatMockDate(req.StartTime))

	fmt.Fprintf(&b, "## Incident Overview\n")
	fmt.Fprintf(&b, "| Field | Value |\n|-------|-------|\n")
	fmt.Fprintf(&b, "| Type | %s |\n", req.IncidentType)
	fmt.Fprintf(&b, "| Severity | %s |\n", req.Severity)
	fmt.Fprintf(&b, "| Start Time | %s |\n", req.StartTime)
	endTime := req.EndTime
	if endTime == "" {
		endTime = "N/A"
	}
	fmt.Fprintf(&b, "| End Time | %s |\n\n", endTime)

	fmt.Fprintf(&b, "## Timeline\n")
	if len(req.Timeline) == 0 {
		b.WriteString("No timeline entries provided.\n")
	} else {
		for _, entry := range req.Timeline {
			fmt.Fprintf(&b, "- **%s** - %s\n", entry.Timestamp, entry.Description)
		}
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## Root Cause Analysis\n%s\n\n", orPending(req.RootCause, "Root cause analysis pending."))
	fmt.Fprintf(&b, "## Impact Assessment\n%s\n\n", orPending(req.Impact, "Impact assessment pending."))
	fmt.Fprintf(&b, "## Resolution\n%s\n\n", orPending(req.Resolution, "Resolution details pending."))

	fmt.Fprintf(&b, "## Action Items\n")
	fmt.Fprintf(&b, "| Action | Owner | Priority |\n|--------|-------|----------|\n")
	for _, item := range items {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", item.Action, item.Owner, item.Priority)
	}
	b.WriteString("\n")

	b.WriteString("## Lessons Learned\n")
	b.WriteString("### What went well\n")
	b.WriteString("- Team responded promptly to the incident\n")
	b.WriteString("- Clear communication during the incident\n\n")
	b.WriteString("### What could be improved\n")
	b.WriteString("- Monitoring could be enhanced to detect issues earlier\n")
	b.WriteString("- Documentation of procedures could be improved\n\n")
	b.WriteString("---\n*Generated by AEGIS INCIDENTS*\n")

	return &ReportResult{
		ActionItems:    items,
		ReportMarkdown: b.String(),
	}, nil
}

func orPending(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// formatMockDate renders a wizard timestamp as a date, falling back to the
// raw string when it does not parse.
func formatMockDate(s string) string {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("January 2, 2006")
		}
	}
	return s
}
