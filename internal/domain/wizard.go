package domain

import "time"

// Input limits enforced across the wizard and the HTTP surface.
const (
	MaxTimelineEntries = 20
	MaxTextLength      = 2000
	MaxTitleLength     = 200

	// MaxContextFieldLength bounds the optional logs/commits/chat excerpts
	// sent to the report generator. Longer input is truncated, not rejected.
	MaxContextFieldLength = 1000
)

// Wizard step boundaries.
const (
	FirstWizardStep = 1
	LastWizardStep  = 5
)

// RegenerationCooldown is the minimum elapsed time between successive
// report generations for the same identity.
const RegenerationCooldown = 30 * time.Second

// WizardForm is the partially-filled incident form collected across the
// five wizard steps.
type WizardForm struct {
	Title         string          `json:"title"`
	IncidentType  IncidentType    `json:"incident_type"`
	Severity      Severity        `json:"severity"`
	StartTime     string          `json:"start_time"`
	EndTime       string          `json:"end_time"`
	Timeline      []TimelineEntry `json:"timeline"`
	RootCause     string          `json:"root_cause"`
	Resolution    string          `json:"resolution"`
	Impact        string          `json:"impact"`
	Logs          string          `json:"logs"`
	Commits       string          `json:"commits"`
	SlackMessages string          `json:"slack_messages"`
}

// DefaultWizardForm returns the empty form a fresh session starts with.
func DefaultWizardForm() WizardForm {
	return WizardForm{
		IncidentType: IncidentTypeOutage,
		Severity:     SeverityMedium,
		Timeline:     make([]TimelineEntry, 0),
	}
}

// WizardSession is a user's single active wizard state: the form plus the
// current position in the fixed 5-step sequence. One session per user.
type WizardSession struct {
	UserID      string     `json:"user_id"`
	CurrentStep int        `json:"current_step"`
	Form        WizardForm `json:"form"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Draft is a named, timestamped snapshot of a wizard session, kept apart
// from committed incidents and never expiring on its own.
type Draft struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Form        WizardForm `json:"form"`
	CurrentStep int        `json:"current_step"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
