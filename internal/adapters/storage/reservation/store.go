package reservation

import (
	"context"
	"time"

	domain "stella/internal/domain/reservation"
)

// Store persists Reservation state, including admin blocks.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Reservation, error)
	Save(ctx context.Context, value domain.Reservation) error
	Delete(ctx context.Context, id string) error
	ListByProfileID(ctx context.Context, profileID string) ([]domain.Reservation, error)
	// ListByMentorIDAndDate returns reservations and blocks for a mentor on
	// a calendar date (YYYY-MM-DD).
	ListByMentorIDAndDate(ctx context.Context, mentorID string, date string) ([]domain.Reservation, error)
	// HasConflict reports whether a confirmed reservation or block already
	// occupies the mentor at the given instant.
	HasConflict(ctx context.Context, mentorID string, reservedAt time.Time) (bool, error)
	ListBlocksByDate(ctx context.Context, date string) ([]domain.Reservation, error)
	ListByDateRange(ctx context.Context, startDate string, endDate string) ([]domain.Reservation, error)
	ListConfirmedBefore(ctx context.Context, cutoff time.Time) ([]domain.Reservation, error)
}
