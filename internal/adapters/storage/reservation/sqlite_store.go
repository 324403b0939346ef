package reservation

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"stella/internal/adapters/storage"
	domain "stella/internal/domain/reservation"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new reservation Store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const columns = "id, profile_id, mentor_id, reserved_at, status, coins_used, is_blocked, is_all_day_block, block_reason, cancel_reason, created_at"

func scanReservation(scan func(dest ...any) error) (domain.Reservation, error) {
	var entity domain.Reservation
	var reservedStr, createdStr string
	var isBlocked, isAllDay int
	err := scan(
		&entity.ID,
		&entity.ProfileID,
		&entity.MentorID,
		&reservedStr,
		&entity.Status,
		&entity.CoinsUsed,
		&isBlocked,
		&isAllDay,
		&entity.BlockReason,
		&entity.CancelReason,
		&createdStr,
	)
	if err != nil {
		return domain.Reservation{}, err
	}
	entity.IsBlocked = isBlocked != 0
	entity.IsAllDayBlock = isAllDay != 0
	if entity.ReservedAt, err = storage.ParseStoredTime(reservedStr); err != nil {
		return domain.Reservation{}, fmt.Errorf("failed to parse reserved_at: %w", err)
	}
	if entity.CreatedAt, err = storage.ParseStoredTime(createdStr); err != nil {
		return domain.Reservation{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return entity, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// GetByID retrieves a Reservation by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Reservation, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM reservation WHERE id = ?", id)
	entity, err := scanReservation(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Reservation{}, fmt.Errorf("reservation not found: %w", err)
	}
	return entity, err
}

// Save persists a Reservation to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Reservation) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reservation (id, profile_id, mentor_id, reserved_at, status, coins_used, is_blocked, is_all_day_block, block_reason, cancel_reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			status=excluded.status,
			coins_used=excluded.coins_used,
			block_reason=excluded.block_reason,
			cancel_reason=excluded.cancel_reason`,
		entity.ID,
		entity.ProfileID,
		entity.MentorID,
		entity.ReservedAt.UTC().Format(time.RFC3339Nano),
		entity.Status,
		entity.CoinsUsed,
		boolToInt(entity.IsBlocked),
		boolToInt(entity.IsAllDayBlock),
		entity.BlockReason,
		entity.CancelReason,
		entity.CreatedAt.Format(time.RFC3339Nano),
	)
	return err
}

// Delete removes a Reservation from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM reservation WHERE id = ?", id)
	return err
}

// ListByProfileID retrieves all reservations for a profile, newest slot first.
// PRE: profileID is non-empty
// POST: Returns reservations for the profile, excluding blocks
func (s *SQLiteStore) ListByProfileID(ctx context.Context, profileID string) ([]domain.Reservation, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+columns+" FROM reservation WHERE profile_id = ? AND is_blocked = 0 ORDER BY reserved_at DESC",
		profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

// ListByMentorIDAndDate retrieves a mentor's reservations and blocks for a date.
// PRE: mentorID is non-empty, date is YYYY-MM-DD
// POST: Returns entries ordered by slot time ascending
func (s *SQLiteStore) ListByMentorIDAndDate(ctx context.Context, mentorID string, date string) ([]domain.Reservation, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+columns+` FROM reservation
		 WHERE mentor_id = ? AND SUBSTR(reserved_at, 1, 10) = ? AND status != ?
		 ORDER BY reserved_at ASC`,
		mentorID, date, domain.StatusCancelled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

// HasConflict reports whether the mentor is already taken at the instant.
// All-day blocks on the same date conflict regardless of time.
// PRE: mentorID is non-empty
// POST: Returns true when a confirmed entry occupies the slot
func (s *SQLiteStore) HasConflict(ctx context.Context, mentorID string, reservedAt time.Time) (bool, error) {
	slot := reservedAt.UTC().Format(time.RFC3339Nano)
	date := reservedAt.UTC().Format("2006-01-02")

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservation
		 WHERE mentor_id = ? AND status = ?
		   AND (reserved_at = ? OR (is_all_day_block = 1 AND SUBSTR(reserved_at, 1, 10) = ?))`,
		mentorID, domain.StatusConfirmed, slot, date).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListBlocksByDate retrieves admin blocks for a calendar date.
// PRE: date is YYYY-MM-DD
// POST: Returns block entries ordered by slot time ascending
func (s *SQLiteStore) ListBlocksByDate(ctx context.Context, date string) ([]domain.Reservation, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+columns+` FROM reservation
		 WHERE is_blocked = 1 AND SUBSTR(reserved_at, 1, 10) = ? AND status = ?
		 ORDER BY reserved_at ASC`,
		date, domain.StatusConfirmed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

// ListByDateRange retrieves all entries whose slot date falls in the range (inclusive).
// PRE: startDate and endDate are YYYY-MM-DD
// POST: Returns entries ordered by slot time ascending
func (s *SQLiteStore) ListByDateRange(ctx context.Context, startDate string, endDate string) ([]domain.Reservation, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+columns+` FROM reservation
		 WHERE SUBSTR(reserved_at, 1, 10) >= ? AND SUBSTR(reserved_at, 1, 10) <= ?
		 ORDER BY reserved_at ASC`,
		startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

// ListConfirmedBefore retrieves confirmed reservations whose slot has passed.
// Used by the completion sweep; blocks are excluded.
// PRE: cutoff is the comparison instant
// POST: Returns confirmed non-block reservations with reserved_at < cutoff
func (s *SQLiteStore) ListConfirmedBefore(ctx context.Context, cutoff time.Time) ([]domain.Reservation, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+columns+` FROM reservation
		 WHERE status = ? AND is_blocked = 0 AND reserved_at < ?
		 ORDER BY reserved_at ASC`,
		domain.StatusConfirmed, cutoff.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

func collectReservations(rows *sql.Rows) ([]domain.Reservation, error) {
	var results []domain.Reservation
	for rows.Next() {
		entity, err := scanReservation(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
