package shift

import (
	"context"

	domain "stella/internal/domain/shift"
)

// Store persists staff Shift state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Shift, error)
	Save(ctx context.Context, value domain.Shift) error
	Delete(ctx context.Context, id string) error
	ListByStaffID(ctx context.Context, staffID string) ([]domain.Shift, error)
	ListByKindAndWeekday(ctx context.Context, kind, weekday string) ([]domain.Shift, error)
}
