package incidents

import (
	"context"

	"github.com/karthiBP/aegis-incidents/internal/domain"
)

// Repository defines the interface for incident storage.
type Repository interface {
	Create(ctx context.Context, incident *domain.Incident) error
	// GetByID returns an incident regardless of owner (public share pages,
	// admin views).
	GetByID(ctx context.Context, id string) (*domain.Incident, error)
	// GetByUser returns an incident only when owned by userID.
	GetByUser(ctx context.Context, userID, id string) (*domain.Incident, error)
	// List returns a user's incidents most-recent-first.
	List(ctx context.Context, userID string) ([]*domain.Incident, error)
	// ListAll returns every incident most-recent-first (admin view).
	ListAll(ctx context.Context) ([]*domain.Incident, error)
	Update(ctx context.Context, incident *domain.Incident) error
	// Delete removes a user's incident. Unknown ids are not an error.
	Delete(ctx context.Context, userID, id string) error
	// DeleteByID removes an incident regardless of owner (admin cleanup).
	DeleteByID(ctx context.Context, id string) error
	// IncrementSharedCount bumps the share counter and returns the new value.
	IncrementSharedCount(ctx context.Context, userID, id string) (int, error)
}
