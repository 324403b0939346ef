package fitest

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"stella/internal/adapters/storage"
	domain "stella/internal/domain/fitest"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new fitest Store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const columns = "id, profile_id, mentor_id, score_strength, score_endurance, score_flexibility, score_technique, current_level, target_level, passed, notes, tested_at"

func scanResult(scan func(dest ...any) error) (domain.Result, error) {
	var entity domain.Result
	var testedStr string
	var passed int
	err := scan(
		&entity.ID,
		&entity.ProfileID,
		&entity.MentorID,
		&entity.ScoreStrength,
		&entity.ScoreEndurance,
		&entity.ScoreFlexibility,
		&entity.ScoreTechnique,
		&entity.CurrentLevel,
		&entity.TargetLevel,
		&passed,
		&entity.Notes,
		&testedStr,
	)
	if err != nil {
		return domain.Result{}, err
	}
	entity.Passed = passed != 0
	if entity.TestedAt, err = storage.ParseStoredTime(testedStr); err != nil {
		return domain.Result{}, fmt.Errorf("failed to parse tested_at: %w", err)
	}
	return entity, nil
}

// GetByID retrieves a Result by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Result, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM fitest_result WHERE id = ?", id)
	entity, err := scanResult(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Result{}, fmt.Errorf("fitest result not found: %w", err)
	}
	return entity, err
}

// Save persists a Result. Results are append-only.
// PRE: entity has been validated
// POST: Entity is inserted
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Result) error {
	passed := 0
	if entity.Passed {
		passed = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO fitest_result (id, profile_id, mentor_id, score_strength, score_endurance, score_flexibility, score_technique, current_level, target_level, passed, notes, tested_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entity.ID,
		entity.ProfileID,
		entity.MentorID,
		entity.ScoreStrength,
		entity.ScoreEndurance,
		entity.ScoreFlexibility,
		entity.ScoreTechnique,
		entity.CurrentLevel,
		entity.TargetLevel,
		passed,
		entity.Notes,
		entity.TestedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// ListByProfileID retrieves test results for a profile, newest first.
// PRE: profileID is non-empty
// POST: Returns matching results
func (s *SQLiteStore) ListByProfileID(ctx context.Context, profileID string) ([]domain.Result, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+columns+" FROM fitest_result WHERE profile_id = ? ORDER BY tested_at DESC",
		profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Result
	for rows.Next() {
		entity, err := scanResult(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// LatestByProfileID retrieves the most recent test result for a profile.
// PRE: profileID is non-empty
// POST: Returns the entity or an error if the profile has never tested
func (s *SQLiteStore) LatestByProfileID(ctx context.Context, profileID string) (domain.Result, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+columns+" FROM fitest_result WHERE profile_id = ? ORDER BY tested_at DESC LIMIT 1",
		profileID)
	entity, err := scanResult(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Result{}, fmt.Errorf("fitest result not found: %w", err)
	}
	return entity, err
}
