package checkin

import (
	"context"
	"time"

	domain "stella/internal/domain/checkin"
)

// CodeStore persists verification codes.
type CodeStore interface {
	// GetActiveByCode returns the unused, unexpired code matching the
	// 6-digit value.
	GetActiveByCode(ctx context.Context, code string, now time.Time) (domain.VerificationCode, error)
	GetActiveByProfileID(ctx context.Context, profileID string, now time.Time) (domain.VerificationCode, error)
	Save(ctx context.Context, value domain.VerificationCode) error
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// LogStore persists check-in logs.
type LogStore interface {
	Save(ctx context.Context, value domain.Log) error
	ListByProfileID(ctx context.Context, profileID string) ([]domain.Log, error)
	ListByDate(ctx context.Context, date string) ([]domain.Log, error)
	CountByProfileIDAndDate(ctx context.Context, profileID string, date string) (int, error)
}
