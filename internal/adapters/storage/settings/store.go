package settings

import (
	"context"

	domain "stella/internal/domain/settings"
)

// Store persists business hours, closures and system settings.
type Store interface {
	GetHours(ctx context.Context, weekday string) (domain.BusinessHours, error)
	SaveHours(ctx context.Context, value domain.BusinessHours) error
	ListHours(ctx context.Context) ([]domain.BusinessHours, error)

	GetClosureByDate(ctx context.Context, date string) (domain.Closure, error)
	// SaveClosure inserts a closure. Fails with domain.ErrDuplicateDate
	// when a closure already exists for the date.
	SaveClosure(ctx context.Context, value domain.Closure) error
	DeleteClosure(ctx context.Context, id string) error
	ListClosures(ctx context.Context) ([]domain.Closure, error)

	GetSetting(ctx context.Context, key string) (domain.Setting, error)
	SaveSetting(ctx context.Context, value domain.Setting) error
	ListSettings(ctx context.Context) ([]domain.Setting, error)
}
