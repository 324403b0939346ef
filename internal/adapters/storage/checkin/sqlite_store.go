package checkin

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"stella/internal/adapters/storage"
	domain "stella/internal/domain/checkin"
)

// SQLiteCodeStore implements CodeStore using SQLite.
type SQLiteCodeStore struct {
	db storage.SQLDB
}

// NewSQLiteCodeStore creates a new CodeStore.
func NewSQLiteCodeStore(db storage.SQLDB) *SQLiteCodeStore {
	return &SQLiteCodeStore{db: db}
}

const codeColumns = "id, profile_id, code, expires_at, used, created_at"

func scanCode(scan func(dest ...any) error) (domain.VerificationCode, error) {
	var entity domain.VerificationCode
	var expiresStr, createdStr string
	var used int
	err := scan(
		&entity.ID,
		&entity.ProfileID,
		&entity.Code,
		&expiresStr,
		&used,
		&createdStr,
	)
	if err != nil {
		return domain.VerificationCode{}, err
	}
	entity.Used = used != 0
	if entity.ExpiresAt, err = storage.ParseStoredTime(expiresStr); err != nil {
		return domain.VerificationCode{}, fmt.Errorf("failed to parse expires_at: %w", err)
	}
	if entity.CreatedAt, err = storage.ParseStoredTime(createdStr); err != nil {
		return domain.VerificationCode{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return entity, nil
}

// GetActiveByCode retrieves the unused, unexpired code with the given value.
// PRE: code is non-empty
// POST: Returns the entity or an error if no live code matches
func (s *SQLiteCodeStore) GetActiveByCode(ctx context.Context, code string, now time.Time) (domain.VerificationCode, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+codeColumns+" FROM verification_code WHERE code = ? AND used = 0 AND expires_at > ? ORDER BY created_at DESC LIMIT 1",
		code, now.UTC().Format(time.RFC3339Nano))
	entity, err := scanCode(row.Scan)
	if err == sql.ErrNoRows {
		return domain.VerificationCode{}, fmt.Errorf("verification code not found: %w", err)
	}
	return entity, err
}

// GetActiveByProfileID retrieves the newest live code for a profile.
// PRE: profileID is non-empty
// POST: Returns the entity or an error if no live code exists
func (s *SQLiteCodeStore) GetActiveByProfileID(ctx context.Context, profileID string, now time.Time) (domain.VerificationCode, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+codeColumns+" FROM verification_code WHERE profile_id = ? AND used = 0 AND expires_at > ? ORDER BY created_at DESC LIMIT 1",
		profileID, now.UTC().Format(time.RFC3339Nano))
	entity, err := scanCode(row.Scan)
	if err == sql.ErrNoRows {
		return domain.VerificationCode{}, fmt.Errorf("verification code not found: %w", err)
	}
	return entity, err
}

// Save persists a VerificationCode to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteCodeStore) Save(ctx context.Context, entity domain.VerificationCode) error {
	used := 0
	if entity.Used {
		used = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO verification_code (id, profile_id, code, expires_at, used, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET used=excluded.used`,
		entity.ID,
		entity.ProfileID,
		entity.Code,
		entity.ExpiresAt.UTC().Format(time.RFC3339Nano),
		used,
		entity.CreatedAt.Format(time.RFC3339Nano),
	)
	return err
}

// DeleteExpired removes codes past their expiry.
// PRE: now is the comparison instant
// POST: Returns the number of removed codes
func (s *SQLiteCodeStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM verification_code WHERE expires_at <= ?",
		now.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	return int(n), err
}

// SQLiteLogStore implements LogStore using SQLite.
type SQLiteLogStore struct {
	db storage.SQLDB
}

// NewSQLiteLogStore creates a new LogStore.
func NewSQLiteLogStore(db storage.SQLDB) *SQLiteLogStore {
	return &SQLiteLogStore{db: db}
}

const logColumns = "id, profile_id, performed_by, method, bonus_coins, checked_in_at"

func scanLog(scan func(dest ...any) error) (domain.Log, error) {
	var entity domain.Log
	var checkedStr string
	err := scan(
		&entity.ID,
		&entity.ProfileID,
		&entity.PerformedBy,
		&entity.Method,
		&entity.BonusCoins,
		&checkedStr,
	)
	if err != nil {
		return domain.Log{}, err
	}
	if entity.CheckedInAt, err = storage.ParseStoredTime(checkedStr); err != nil {
		return domain.Log{}, fmt.Errorf("failed to parse checked_in_at: %w", err)
	}
	return entity, nil
}

// Save persists a check-in Log. Logs are append-only.
// PRE: entity has been validated
// POST: Entity is inserted
func (s *SQLiteLogStore) Save(ctx context.Context, entity domain.Log) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO checkin_log (id, profile_id, performed_by, method, bonus_coins, checked_in_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entity.ID,
		entity.ProfileID,
		entity.PerformedBy,
		entity.Method,
		entity.BonusCoins,
		entity.CheckedInAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// ListByProfileID retrieves check-in logs for a profile, newest first.
// PRE: profileID is non-empty
// POST: Returns matching logs
func (s *SQLiteLogStore) ListByProfileID(ctx context.Context, profileID string) ([]domain.Log, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+logColumns+" FROM checkin_log WHERE profile_id = ? ORDER BY checked_in_at DESC",
		profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLogs(rows)
}

// ListByDate retrieves all check-in logs for a calendar date.
// PRE: date is YYYY-MM-DD
// POST: Returns matching logs, newest first
func (s *SQLiteLogStore) ListByDate(ctx context.Context, date string) ([]domain.Log, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+logColumns+" FROM checkin_log WHERE SUBSTR(checked_in_at, 1, 10) = ? ORDER BY checked_in_at DESC",
		date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLogs(rows)
}

// CountByProfileIDAndDate counts a profile's check-ins on a calendar date.
// PRE: profileID is non-empty, date is YYYY-MM-DD
// POST: Returns count >= 0
func (s *SQLiteLogStore) CountByProfileIDAndDate(ctx context.Context, profileID string, date string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM checkin_log WHERE profile_id = ? AND SUBSTR(checked_in_at, 1, 10) = ?",
		profileID, date).Scan(&count)
	return count, err
}

func collectLogs(rows *sql.Rows) ([]domain.Log, error) {
	var results []domain.Log
	for rows.Next() {
		entity, err := scanLog(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
