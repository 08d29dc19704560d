package domain

import (
	"fmt"
	"unicode/utf8"
)

// ValidationError reports the first violated constraint in a wizard form,
// naming the field and the limit.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidateWizardForm checks a form's required fields and size limits,
// returning the first violation found. Checks run in field order so the
// surfaced message is stable. Limits count characters, not bytes.
//
// end_time is deliberately not compared against start_time: ongoing
// incidents have no end time and an inverted pair has never been rejected.
func ValidateWizardForm(form *WizardForm) *ValidationError {
	if form.Title == "" {
		return &ValidationError{Field: "title", Message: "Title is required"}
	}
	if utf8.RuneCountInString(form.Title) > MaxTitleLength {
		return &ValidationError{
			Field:   "title",
			Message: fmt.Sprintf("Title must be less than %d characters", MaxTitleLength),
		}
	}

	if form.IncidentType == "" {
		return &ValidationError{Field: "incident_type", Message: "Incident type is required"}
	}
	if !form.IncidentType.IsValid() {
		return &ValidationError{Field: "incident_type", Message: "Invalid incident type"}
	}

	if form.Severity == "" {
		return &ValidationError{Field: "severity", Message: "Severity is required"}
	}
	if !form.Severity.IsValid() {
		return &ValidationError{Field: "severity", Message: "Invalid severity"}
	}

	if form.StartTime == "" {
		return &ValidationError{Field: "start_time", Message: "Start time is required"}
	}

	if len(form.Timeline) == 0 {
		return &ValidationError{Field: "timeline", Message: "At least one timeline entry is required"}
	}
	if len(form.Timeline) > MaxTimelineEntries {
		return &ValidationError{
			Field:   "timeline",
			Message: fmt.Sprintf("Maximum %d timeline entries allowed", MaxTimelineEntries),
		}
	}

	for _, f := range []struct {
		name  string
		label string
		value string
	}{
		{"root_cause", "Root cause", form.RootCause},
		{"resolution", "Resolution", form.Resolution},
		{"impact", "Impact", form.Impact},
		{"logs", "Logs", form.Logs},
		{"commits", "Commits", form.Commits},
		{"slack_messages", "Slack messages", form.SlackMessages},
	} {
		if utf8.RuneCountInString(f.value) > MaxTextLength {
			return &ValidationError{
				Field:   f.name,
				Message: fmt.Sprintf("%s must be less than %d characters", f.label, MaxTextLength),
			}
		}
	}

	return nil
}

// TruncateText caps free text at MaxTextLength characters.
func TruncateText(s string) string {
	return truncateRunes(s, MaxTextLength)
}

// TruncateTitle caps a title at MaxTitleLength characters.
func TruncateTitle(s string) string {
	return truncateRunes(s, MaxTitleLength)
}

// TruncateContextField caps an optional context field (logs, commits, chat
// excerpts) at the bound used for generator requests.
func TruncateContextField(s string) string {
	return truncateRunes(s, MaxContextFieldLength)
}

// truncateRunes cuts s to at most max characters, never splitting a rune.
func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
