package profile

import (
	"context"
	"database/sql"
	"fmt"

	"stella/internal/adapters/storage"
	domain "stella/internal/domain/profile"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new profile Store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const columns = "id, account_id, name, email, status, rank, line_user_id"

func scanProfile(scan func(dest ...any) error) (domain.Profile, error) {
	var entity domain.Profile
	err := scan(
		&entity.ID,
		&entity.AccountID,
		&entity.Name,
		&entity.Email,
		&entity.Status,
		&entity.Rank,
		&entity.LineUserID,
	)
	return entity, err
}

// GetByID retrieves a Profile by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Profile, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM profile WHERE id = ?", id)
	entity, err := scanProfile(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Profile{}, fmt.Errorf("profile not found: %w", err)
	}
	return entity, err
}

// GetByAccountID retrieves the Profile linked to an account.
// PRE: accountID is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByAccountID(ctx context.Context, accountID string) (domain.Profile, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM profile WHERE account_id = ?", accountID)
	entity, err := scanProfile(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Profile{}, fmt.Errorf("profile not found: %w", err)
	}
	return entity, err
}

// GetByLineUserID retrieves the Profile linked to a LINE user.
// PRE: lineUserID is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByLineUserID(ctx context.Context, lineUserID string) (domain.Profile, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM profile WHERE line_user_id = ?", lineUserID)
	entity, err := scanProfile(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Profile{}, fmt.Errorf("profile not found: %w", err)
	}
	return entity, err
}

// Save persists a Profile to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Profile) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profile (id, account_id, name, email, status, rank, line_user_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name=excluded.name,
			email=excluded.email,
			status=excluded.status,
			rank=excluded.rank,
			line_user_id=excluded.line_user_id`,
		entity.ID,
		entity.AccountID,
		entity.Name,
		entity.Email,
		entity.Status,
		entity.Rank,
		entity.LineUserID,
	)
	return err
}

// Delete removes a Profile from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM profile WHERE id = ?", id)
	return err
}

// List retrieves profiles based on the filter, ordered by name.
// PRE: filter has valid parameters
// POST: Returns matching entities
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Profile, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+columns+" FROM profile ORDER BY name ASC LIMIT ? OFFSET ?",
		limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProfiles(rows)
}

// ListByStatus retrieves profiles with the given status.
// PRE: status is a valid status constant
// POST: Returns matching entities
func (s *SQLiteStore) ListByStatus(ctx context.Context, status string) ([]domain.Profile, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+columns+" FROM profile WHERE status = ? ORDER BY name ASC", status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProfiles(rows)
}

func collectProfiles(rows *sql.Rows) ([]domain.Profile, error) {
	var results []domain.Profile
	for rows.Next() {
		entity, err := scanProfile(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
