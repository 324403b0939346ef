package shift

import (
	"context"
	"database/sql"
	"fmt"

	"stella/internal/adapters/storage"
	domain "stella/internal/domain/shift"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new shift Store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const columns = "id, staff_id, role_kind, weekday, start_time, end_time"

func scanShift(scan func(dest ...any) error) (domain.Shift, error) {
	var entity domain.Shift
	err := scan(
		&entity.ID,
		&entity.StaffID,
		&entity.RoleKind,
		&entity.Weekday,
		&entity.StartTime,
		&entity.EndTime,
	)
	return entity, err
}

// GetByID retrieves a Shift by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Shift, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM staff_shift WHERE id = ?", id)
	entity, err := scanShift(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Shift{}, fmt.Errorf("shift not found: %w", err)
	}
	return entity, err
}

// Save persists a Shift to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Shift) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO staff_shift (id, staff_id, role_kind, weekday, start_time, end_time)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			role_kind=excluded.role_kind,
			weekday=excluded.weekday,
			start_time=excluded.start_time,
			end_time=excluded.end_time`,
		entity.ID,
		entity.StaffID,
		entity.RoleKind,
		entity.Weekday,
		entity.StartTime,
		entity.EndTime,
	)
	return err
}

// Delete removes a Shift from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM staff_shift WHERE id = ?", id)
	return err
}

// ListByStaffID retrieves all shifts for one staff member.
// PRE: staffID is non-empty
// POST: Returns matching shifts ordered by weekday then start time
func (s *SQLiteStore) ListByStaffID(ctx context.Context, staffID string) ([]domain.Shift, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+columns+" FROM staff_shift WHERE staff_id = ? ORDER BY weekday ASC, start_time ASC",
		staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectShifts(rows)
}

// ListByKindAndWeekday retrieves shifts of one role kind on one weekday.
// PRE: kind and weekday are valid constants
// POST: Returns matching shifts ordered by start time
func (s *SQLiteStore) ListByKindAndWeekday(ctx context.Context, kind, weekday string) ([]domain.Shift, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+columns+" FROM staff_shift WHERE role_kind = ? AND weekday = ? ORDER BY start_time ASC",
		kind, weekday)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectShifts(rows)
}

func collectShifts(rows *sql.Rows) ([]domain.Shift, error) {
	var results []domain.Shift
	for rows.Next() {
		entity, err := scanShift(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
