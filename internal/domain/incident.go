package domain

import "time"

// IncidentType classifies what kind of operational incident occurred.
type IncidentType string

// Incident types.
const (
	IncidentTypeOutage     IncidentType = "OUTAGE"
	IncidentTypeSecurity   IncidentType = "SECURITY"
	IncidentTypeDeployment IncidentType = "DEPLOYMENT"
	IncidentTypeData       IncidentType = "DATA"
	IncidentTypeOther      IncidentType = "OTHER"
)

// Severity represents the severity level of an incident.
type Severity string

// Severity levels.
const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// IncidentStatus represents the lifecycle state of an incident record.
// DRAFT incidents carry no generated content; GENERATED incidents hold the
// last successful generation payload; FINAL is terminal for editing.
type IncidentStatus string

// Incident statuses.
const (
	IncidentStatusDraft     IncidentStatus = "DRAFT"
	IncidentStatusGenerated IncidentStatus = "GENERATED"
	IncidentStatusFinal     IncidentStatus = "FINAL"
)

// Priority ranks an action item.
type Priority string

// Action item priorities.
const (
	PriorityP0 Priority = "P0"
	PriorityP1 Priority = "P1"
	PriorityP2 Priority = "P2"
)

// IsValid checks if the incident type is valid.
func (t IncidentType) IsValid() bool {
	switch t {
	case IncidentTypeOutage, IncidentTypeSecurity, IncidentTypeDeployment,
		IncidentTypeData, IncidentTypeOther:
		return true
	}
	return false
}

// IsValid checks if the severity is valid.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// IsValid checks if the status is valid.
func (s IncidentStatus) IsValid() bool {
	return s == IncidentStatusDraft || s == IncidentStatusGenerated || s == IncidentStatusFinal
}

// IsValid checks if the priority is valid.
func (p Priority) IsValid() bool {
	return p == PriorityP0 || p == PriorityP1 || p == PriorityP2
}

// TimelineEntry is one chronological event inside an incident narrative.
// Entries are owned by the form/incident that contains them; the id is used
// for in-place update and removal, never for cross-entity reference.
type TimelineEntry struct {
	ID          string `json:"id"`
	Timestamp   string `json:"timestamp"`
	Description string `json:"description"`
}

// ActionItem is a remediation task produced by report generation.
// Owner is a role (e.g. "SRE Lead"), not a person.
type ActionItem struct {
	ID        string   `json:"id"`
	Action    string   `json:"action"`
	Owner     string   `json:"owner"`
	Priority  Priority `json:"priority"`
	Completed bool     `json:"completed"`
}

// Incident is a committed postmortem record.
type Incident struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	Title          string          `json:"title"`
	IncidentType   IncidentType    `json:"incident_type"`
	Severity       Severity        `json:"severity"`
	StartTime      string          `json:"start_time"`
	EndTime        string          `json:"end_time,omitempty"`
	Timeline       []TimelineEntry `json:"timeline"`
	RootCause      string          `json:"root_cause"`
	Impact         string          `json:"impact"`
	Resolution     string          `json:"resolution"`
	Logs           string          `json:"logs,omitempty"`
	Commits        string          `json:"commits,omitempty"`
	SlackMessages  string          `json:"slack_messages,omitempty"`
	ActionItems    []ActionItem    `json:"action_items"`
	ReportMarkdown string          `json:"report_markdown"`
	Status         IncidentStatus  `json:"status"`
	FinalizedAt    *time.Time      `json:"finalized_at"`
	SharedCount    int             `json:"shared_count"`
	CreatedAt      time.Time       `json:"created_at"`
}
