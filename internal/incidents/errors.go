package incidents

import "errors"

var (
	// ErrIncidentNotFound is returned for operations on an unknown
	// incident id. Deletes stay idempotent no-ops; reads surface 404.
	ErrIncidentNotFound = errors.New("incident not found")

	// ErrIncidentFinal is returned when editing a finalized incident.
	ErrIncidentFinal = errors.New("incident is finalized and can no longer be edited")
)
