package tier

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"stella/internal/adapters/storage"
	domain "stella/internal/domain/tier"
)

// SQLiteStore implements Store using SQLite.
// Permissions are stored as a JSON object keyed by category then action.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new tier Store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func scanTier(scan func(dest ...any) error) (domain.Tier, error) {
	var entity domain.Tier
	var permsJSON string
	err := scan(&entity.ID, &entity.Level, &entity.Name, &permsJSON)
	if err != nil {
		return domain.Tier{}, err
	}
	if err := json.Unmarshal([]byte(permsJSON), &entity.Permissions); err != nil {
		return domain.Tier{}, fmt.Errorf("failed to decode tier permissions: %w", err)
	}
	return entity, nil
}

// GetByID retrieves a Tier by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Tier, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, level, name, permissions FROM tier WHERE id = ?", id)
	entity, err := scanTier(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Tier{}, fmt.Errorf("tier not found: %w", err)
	}
	return entity, err
}

// GetByLevel retrieves a Tier by its level.
// PRE: level >= 1
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByLevel(ctx context.Context, level int) (domain.Tier, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, level, name, permissions FROM tier WHERE level = ?", level)
	entity, err := scanTier(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Tier{}, fmt.Errorf("tier not found: %w", err)
	}
	return entity, err
}

// Save persists a Tier to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Tier) error {
	perms := entity.Permissions
	if perms == nil {
		perms = map[string]map[string]bool{}
	}
	permsJSON, err := json.Marshal(perms)
	if err != nil {
		return fmt.Errorf("failed to encode tier permissions: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO tier (id, level, name, permissions)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			level=excluded.level,
			name=excluded.name,
			permissions=excluded.permissions`,
		entity.ID,
		entity.Level,
		entity.Name,
		string(permsJSON),
	)
	return err
}

// Delete removes a Tier from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM tier WHERE id = ?", id)
	return err
}

// List retrieves all tiers ordered by level ascending.
// PRE: none
// POST: Returns all tiers, highest-privilege (lowest level) first
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Tier, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, level, name, permissions FROM tier ORDER BY level ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Tier
	for rows.Next() {
		entity, err := scanTier(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
