package settings

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"stella/internal/adapters/storage"
	domain "stella/internal/domain/settings"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new settings Store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetHours retrieves the opening window for a weekday.
// PRE: weekday is a valid weekday string
// POST: Returns the entity or an error if not configured
func (s *SQLiteStore) GetHours(ctx context.Context, weekday string) (domain.BusinessHours, error) {
	var entity domain.BusinessHours
	var closed int
	err := s.db.QueryRowContext(ctx,
		"SELECT id, weekday, open_time, close_time, closed FROM business_hours WHERE weekday = ?",
		weekday).Scan(&entity.ID, &entity.Weekday, &entity.OpenTime, &entity.CloseTime, &closed)
	if err == sql.ErrNoRows {
		return domain.BusinessHours{}, fmt.Errorf("business hours not found: %w", err)
	}
	entity.Closed = closed != 0
	return entity, err
}

// SaveHours persists a weekday's opening window.
// PRE: entity has been validated
// POST: Entity is persisted, keyed by weekday
func (s *SQLiteStore) SaveHours(ctx context.Context, entity domain.BusinessHours) error {
	closed := 0
	if entity.Closed {
		closed = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO business_hours (id, weekday, open_time, close_time, closed)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(weekday) DO UPDATE SET
			open_time=excluded.open_time,
			close_time=excluded.close_time,
			closed=excluded.closed`,
		entity.ID,
		entity.Weekday,
		entity.OpenTime,
		entity.CloseTime,
		closed,
	)
	return err
}

// ListHours retrieves all configured opening windows.
// PRE: none
// POST: Returns configured weekdays in Monday-first order
func (s *SQLiteStore) ListHours(ctx context.Context) ([]domain.BusinessHours, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, weekday, open_time, close_time, closed FROM business_hours")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byDay := make(map[string]domain.BusinessHours)
	for rows.Next() {
		var entity domain.BusinessHours
		var closed int
		if err := rows.Scan(&entity.ID, &entity.Weekday, &entity.OpenTime, &entity.CloseTime, &closed); err != nil {
			return nil, err
		}
		entity.Closed = closed != 0
		byDay[entity.Weekday] = entity
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var results []domain.BusinessHours
	for _, day := range domain.ValidWeekdays {
		if entity, ok := byDay[day]; ok {
			results = append(results, entity)
		}
	}
	return results, nil
}

// GetClosureByDate retrieves the closure for a calendar date.
// PRE: date is YYYY-MM-DD
// POST: Returns the entity or an error if the date is open
func (s *SQLiteStore) GetClosureByDate(ctx context.Context, date string) (domain.Closure, error) {
	var entity domain.Closure
	var createdStr string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, date, reason, created_at FROM closure WHERE date = ?",
		date).Scan(&entity.ID, &entity.Date, &entity.Reason, &createdStr)
	if err == sql.ErrNoRows {
		return domain.Closure{}, fmt.Errorf("closure not found: %w", err)
	}
	if err != nil {
		return domain.Closure{}, err
	}
	if entity.CreatedAt, err = storage.ParseStoredTime(createdStr); err != nil {
		return domain.Closure{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return entity, nil
}

// SaveClosure inserts a Closure.
// PRE: entity has been validated
// POST: Entity is inserted, or domain.ErrDuplicateDate if the date is taken
func (s *SQLiteStore) SaveClosure(ctx context.Context, entity domain.Closure) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO closure (id, date, reason, created_at) VALUES (?, ?, ?, ?)`,
		entity.ID,
		entity.Date,
		entity.Reason,
		entity.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return domain.ErrDuplicateDate
	}
	return err
}

// DeleteClosure removes a Closure from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) DeleteClosure(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM closure WHERE id = ?", id)
	return err
}

// ListClosures retrieves all closures ordered by date ascending.
// PRE: none
// POST: Returns all closures
func (s *SQLiteStore) ListClosures(ctx context.Context) ([]domain.Closure, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, date, reason, created_at FROM closure ORDER BY date ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Closure
	for rows.Next() {
		var entity domain.Closure
		var createdStr string
		if err := rows.Scan(&entity.ID, &entity.Date, &entity.Reason, &createdStr); err != nil {
			return nil, err
		}
		if entity.CreatedAt, err = storage.ParseStoredTime(createdStr); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// GetSetting retrieves a system setting by key.
// PRE: key is non-empty
// POST: Returns the entity or an error if the key is unset
func (s *SQLiteStore) GetSetting(ctx context.Context, key string) (domain.Setting, error) {
	var entity domain.Setting
	var updatedStr string
	err := s.db.QueryRowContext(ctx,
		"SELECT key, value, updated_at FROM app_setting WHERE key = ?",
		key).Scan(&entity.Key, &entity.Value, &updatedStr)
	if err == sql.ErrNoRows {
		return domain.Setting{}, fmt.Errorf("setting not found: %w", err)
	}
	if err != nil {
		return domain.Setting{}, err
	}
	if entity.UpdatedAt, err = storage.ParseStoredTime(updatedStr); err != nil {
		return domain.Setting{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return entity, nil
}

// SaveSetting persists a system setting.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) SaveSetting(ctx context.Context, entity domain.Setting) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO app_setting (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
			value=excluded.value,
			updated_at=excluded.updated_at`,
		entity.Key,
		entity.Value,
		entity.UpdatedAt.Format(time.RFC3339Nano),
	)
	return err
}

// ListSettings retrieves all system settings ordered by key.
// PRE: none
// POST: Returns all settings
func (s *SQLiteStore) ListSettings(ctx context.Context) ([]domain.Setting, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value, updated_at FROM app_setting ORDER BY key ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Setting
	for rows.Next() {
		var entity domain.Setting
		var updatedStr string
		if err := rows.Scan(&entity.Key, &entity.Value, &updatedStr); err != nil {
			return nil, err
		}
		if entity.UpdatedAt, err = storage.ParseStoredTime(updatedStr); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
