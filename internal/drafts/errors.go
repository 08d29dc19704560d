package drafts

import "errors"

// Domain errors for the drafts module.
var (
	ErrDraftNotFound = errors.New("draft not found")
)
