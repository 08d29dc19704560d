package generation

import (
	"context"

	"github.com/karthiBP/aegis-incidents/internal/domain"
)

// ReportRequest is the incident context sent to the report generator.
// Optional context fields are truncated to the bound before the call;
// oversized input is never rejected at this layer.
type ReportRequest struct {
	Title         string                 `json:"title"`
	IncidentType  domain.IncidentType    `json:"type"`
	Severity      domain.Severity        `json:"severity"`
	StartTime     string                 `json:"start_time"`
	EndTime       string                 `json:"end_time,omitempty"`
	Timeline      []domain.TimelineEntry `json:"timeline"`
	RootCause     string                 `json:"root_cause"`
	Resolution    string                 `json:"resolution"`
	Impact        string                 `json:"impact"`
	Logs          string                 `json:"logs,omitempty"`
	Commits       string                 `json:"commits,omitempty"`
	SlackMessages string                 `json:"slack_messages,omitempty"`
}

// ReportResult is the generated payload: the postmortem document and its
// action items.
type ReportResult struct {
	ActionItems    []domain.ActionItem `json:"action_items"`
	ReportMarkdown string              `json:"report_markdown"`
}

// Generator produces a postmortem report from incident context.
type Generator interface {
	Generate(ctx context.Context, req ReportRequest) (*ReportResult, error)
	Name() string
}

// NewReportRequest builds a bounded generator request from a wizard form.
func NewReportRequest(form *domain.WizardForm) ReportRequest {
	return ReportRequest{
		Title:         form.Title,
		IncidentType:  form.IncidentType,
		Severity:      form.Severity,
		StartTime:     form.StartTime,
		EndTime:       form.EndTime,
		Timeline:      form.Timeline,
		RootCause:     form.RootCause,
		Resolution:    form.Resolution,
		Impact:        form.Impact,
		Logs:          domain.TruncateContextField(form.Logs),
		Commits:       domain.TruncateContextField(form.Commits),
		SlackMessages: domain.TruncateContextField(form.SlackMessages),
	}
}
