package trainingrec

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"stella/internal/adapters/storage"
	domain "stella/internal/domain/trainingrec"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new training record Store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const columns = "id, profile_id, mentor_id, kind, content, record_date, created_at, updated_at"

func scanRecord(scan func(dest ...any) error) (domain.Record, error) {
	var entity domain.Record
	var createdStr string
	var updatedStr sql.NullString
	err := scan(
		&entity.ID,
		&entity.ProfileID,
		&entity.MentorID,
		&entity.Kind,
		&entity.Content,
		&entity.RecordDate,
		&createdStr,
		&updatedStr,
	)
	if err != nil {
		return domain.Record{}, err
	}
	if entity.CreatedAt, err = storage.ParseStoredTime(createdStr); err != nil {
		return domain.Record{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if updatedStr.Valid && updatedStr.String != "" {
		if entity.UpdatedAt, err = storage.ParseStoredTime(updatedStr.String); err != nil {
			return domain.Record{}, fmt.Errorf("failed to parse updated_at: %w", err)
		}
	}
	return entity, nil
}

// GetByID retrieves a Record by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Record, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM training_record WHERE id = ?", id)
	entity, err := scanRecord(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Record{}, fmt.Errorf("training record not found: %w", err)
	}
	return entity, err
}

// GetByProfileKindDate retrieves the record for a profile, kind and date.
// PRE: profileID, kind and recordDate are non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByProfileKindDate(ctx context.Context, profileID, kind, recordDate string) (domain.Record, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+columns+" FROM training_record WHERE profile_id = ? AND kind = ? AND record_date = ?",
		profileID, kind, recordDate)
	entity, err := scanRecord(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Record{}, fmt.Errorf("training record not found: %w", err)
	}
	return entity, err
}

// Save persists a Record to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Record) error {
	var updatedValue any
	if !entity.UpdatedAt.IsZero() {
		updatedValue = entity.UpdatedAt.Format(time.RFC3339Nano)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO training_record (id, profile_id, mentor_id, kind, content, record_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			content=excluded.content,
			updated_at=excluded.updated_at`,
		entity.ID,
		entity.ProfileID,
		entity.MentorID,
		entity.Kind,
		entity.Content,
		entity.RecordDate,
		entity.CreatedAt.Format(time.RFC3339Nano),
		updatedValue,
	)
	return err
}

// Delete removes a Record from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM training_record WHERE id = ?", id)
	return err
}

// ListByProfileID retrieves all records for a profile, newest date first.
// PRE: profileID is non-empty
// POST: Returns matching records
func (s *SQLiteStore) ListByProfileID(ctx context.Context, profileID string) ([]domain.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+columns+" FROM training_record WHERE profile_id = ? ORDER BY record_date DESC",
		profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

// ListByProfileIDAndKind retrieves records of one kind for a profile.
// PRE: profileID is non-empty, kind is a valid kind constant
// POST: Returns matching records, newest date first
func (s *SQLiteStore) ListByProfileIDAndKind(ctx context.Context, profileID, kind string) ([]domain.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+columns+" FROM training_record WHERE profile_id = ? AND kind = ? ORDER BY record_date DESC",
		profileID, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

func collectRecords(rows *sql.Rows) ([]domain.Record, error) {
	var results []domain.Record
	for rows.Next() {
		entity, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
