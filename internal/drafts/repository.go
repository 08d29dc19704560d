package drafts

import (
	"context"

	"github.com/karthiBP/aegis-incidents/internal/domain"
)

// Repository defines draft persistence operations.
type Repository interface {
	Create(ctx context.Context, draft *domain.Draft) error
	Get(ctx context.Context, userID, id string) (*domain.Draft, error)
	List(ctx context.Context, userID string) ([]*domain.Draft, error)
	Update(ctx context.Context, draft *domain.Draft) error
	Delete(ctx context.Context, userID, id string) error
}
