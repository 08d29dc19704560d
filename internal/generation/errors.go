package generation

import "errors"

var (
	// ErrRateLimited means the regeneration cooldown has not elapsed.
	ErrRateLimited = errors.New("please wait before regenerating")

	// ErrGenerationInFlight means a generation call for this identity is
	// already outstanding; the design allows one at a time.
	ErrGenerationInFlight = errors.New("a report is already being generated")

	// ErrGeneratorBusy means the external AI service rejected the call as
	// overloaded. Retryable shortly.
	ErrGeneratorBusy = errors.New("AI service is busy. Please try again shortly.")

	// ErrGenerationFailed means the external AI call failed. The user may
	// retry; committed incident data is never touched by this failure.
	ErrGenerationFailed = errors.New("Failed to generate postmortem. Please try again.")

	// ErrNoPreview means a commit was requested with no generated payload
	// to commit, e.g. after a discard or a session reset.
	ErrNoPreview = errors.New("no generated report to save")
)
