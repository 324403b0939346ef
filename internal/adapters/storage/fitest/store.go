package fitest

import (
	"context"

	domain "stella/internal/domain/fitest"
)

// Store persists Fitest results.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Result, error)
	Save(ctx context.Context, value domain.Result) error
	ListByProfileID(ctx context.Context, profileID string) ([]domain.Result, error)
	LatestByProfileID(ctx context.Context, profileID string) (domain.Result, error)
}
