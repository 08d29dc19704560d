package wizard

import "errors"

var (
	// ErrSessionNotFound is returned by repositories when no session row
	// exists for a user. The service layer treats it by creating a default
	// session, so it normally never reaches a handler.
	ErrSessionNotFound = errors.New("wizard session not found")

	// ErrInvalidStep is returned when a step outside 1..5 is requested.
	ErrInvalidStep = errors.New("step must be between 1 and 5")
)
