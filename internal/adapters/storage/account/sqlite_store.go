package account

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"stella/internal/adapters/storage"
	domain "stella/internal/domain/account"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new account Store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const columns = "id, email, password_hash, role, tier_id, created_at, failed_logins, locked_until"

func scanAccount(scan func(dest ...any) error) (domain.Account, error) {
	var entity domain.Account
	var createdStr string
	var lockedStr sql.NullString
	err := scan(
		&entity.ID,
		&entity.Email,
		&entity.PasswordHash,
		&entity.Role,
		&entity.TierID,
		&createdStr,
		&entity.FailedLogins,
		&lockedStr,
	)
	if err != nil {
		return domain.Account{}, err
	}
	if entity.CreatedAt, err = storage.ParseStoredTime(createdStr); err != nil {
		return domain.Account{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if lockedStr.Valid && lockedStr.String != "" {
		if entity.LockedUntil, err = storage.ParseStoredTime(lockedStr.String); err != nil {
			return domain.Account{}, fmt.Errorf("failed to parse locked_until: %w", err)
		}
	}
	return entity, nil
}

// GetByID retrieves an Account by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM account WHERE id = ?", id)
	entity, err := scanAccount(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Account{}, fmt.Errorf("account not found: %w", err)
	}
	return entity, err
}

// GetByEmail retrieves an Account by email.
// PRE: email is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM account WHERE email = ?", email)
	entity, err := scanAccount(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Account{}, fmt.Errorf("account not found: %w", err)
	}
	return entity, err
}

// Save persists an Account to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Account) error {
	var lockedValue any
	if !entity.LockedUntil.IsZero() {
		lockedValue = entity.LockedUntil.Format(time.RFC3339Nano)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO account (id, email, password_hash, role, tier_id, created_at, failed_logins, locked_until)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			email=excluded.email,
			password_hash=excluded.password_hash,
			role=excluded.role,
			tier_id=excluded.tier_id,
			failed_logins=excluded.failed_logins,
			locked_until=excluded.locked_until`,
		entity.ID,
		entity.Email,
		entity.PasswordHash,
		entity.Role,
		entity.TierID,
		entity.CreatedAt.Format(time.RFC3339Nano),
		entity.FailedLogins,
		lockedValue,
	)
	return err
}

// Delete removes an Account from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM account WHERE id = ?", id)
	return err
}

// List retrieves accounts based on the filter.
// PRE: filter has valid parameters
// POST: Returns matching entities
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Account, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+columns+" FROM account ORDER BY created_at ASC LIMIT ? OFFSET ?",
		limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAccounts(rows)
}

// ListByRole retrieves all accounts with the given role.
// PRE: role is a valid role constant
// POST: Returns matching entities
func (s *SQLiteStore) ListByRole(ctx context.Context, role string) ([]domain.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+columns+" FROM account WHERE role = ? ORDER BY created_at ASC", role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAccounts(rows)
}

// ListByTierID retrieves all accounts assigned to a tier.
// PRE: tierID is non-empty
// POST: Returns matching entities
func (s *SQLiteStore) ListByTierID(ctx context.Context, tierID string) ([]domain.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+columns+" FROM account WHERE tier_id = ? ORDER BY created_at ASC", tierID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAccounts(rows)
}

func collectAccounts(rows *sql.Rows) ([]domain.Account, error) {
	var results []domain.Account
	for rows.Next() {
		entity, err := scanAccount(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
