package exchange

import (
	"context"

	domain "stella/internal/domain/exchange"
)

// ItemStore persists exchange catalog items.
type ItemStore interface {
	GetByID(ctx context.Context, id string) (domain.Item, error)
	Save(ctx context.Context, value domain.Item) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Item, error)
	ListActive(ctx context.Context) ([]domain.Item, error)
}

// RequestStore persists exchange requests.
type RequestStore interface {
	GetByID(ctx context.Context, id string) (domain.Request, error)
	Save(ctx context.Context, value domain.Request) error
	ListByProfileID(ctx context.Context, profileID string) ([]domain.Request, error)
	ListByStatus(ctx context.Context, status string) ([]domain.Request, error)
}
