package trainingrec

import (
	"context"

	domain "stella/internal/domain/trainingrec"
)

// Store persists training Records.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Record, error)
	// GetByProfileKindDate returns the record for a profile, kind and
	// record date. One record per (profile, kind, date) is the rule.
	GetByProfileKindDate(ctx context.Context, profileID, kind, recordDate string) (domain.Record, error)
	Save(ctx context.Context, value domain.Record) error
	Delete(ctx context.Context, id string) error
	ListByProfileID(ctx context.Context, profileID string) ([]domain.Record, error)
	ListByProfileIDAndKind(ctx context.Context, profileID, kind string) ([]domain.Record, error)
}
