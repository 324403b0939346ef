package profile

import (
	"context"

	domain "stella/internal/domain/profile"
)

// Store persists Profile state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Profile, error)
	GetByAccountID(ctx context.Context, accountID string) (domain.Profile, error)
	GetByLineUserID(ctx context.Context, lineUserID string) (domain.Profile, error)
	Save(ctx context.Context, value domain.Profile) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Profile, error)
	ListByStatus(ctx context.Context, status string) ([]domain.Profile, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Limit  int
	Offset int
}
