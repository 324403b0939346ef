package tier

import (
	"context"

	domain "stella/internal/domain/tier"
)

// Store persists Tier state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Tier, error)
	GetByLevel(ctx context.Context, level int) (domain.Tier, error)
	Save(ctx context.Context, value domain.Tier) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Tier, error)
}
