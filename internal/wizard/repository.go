package wizard

import (
	"context"

	"github.com/karthiBP/aegis-incidents/internal/domain"
)

// Repository defines the interface for wizard session storage.
// A user has at most one session row.
type Repository interface {
	Get(ctx context.Context, userID string) (*domain.WizardSession, error)
	Save(ctx context.Context, session *domain.WizardSession) error
	Delete(ctx context.Context, userID string) error
}
