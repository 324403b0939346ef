package exchange

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"stella/internal/adapters/storage"
	domain "stella/internal/domain/exchange"
)

// SQLiteItemStore implements ItemStore using SQLite.
type SQLiteItemStore struct {
	db storage.SQLDB
}

// NewSQLiteItemStore creates a new ItemStore.
func NewSQLiteItemStore(db storage.SQLDB) *SQLiteItemStore {
	return &SQLiteItemStore{db: db}
}

const itemColumns = "id, name, cost_coins, active, display_order, created_at"

func scanItem(scan func(dest ...any) error) (domain.Item, error) {
	var entity domain.Item
	var createdStr string
	var active int
	err := scan(
		&entity.ID,
		&entity.Name,
		&entity.CostCoins,
		&active,
		&entity.DisplayOrder,
		&createdStr,
	)
	if err != nil {
		return domain.Item{}, err
	}
	entity.Active = active != 0
	if entity.CreatedAt, err = storage.ParseStoredTime(createdStr); err != nil {
		return domain.Item{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return entity, nil
}

// GetByID retrieves an Item by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteItemStore) GetByID(ctx context.Context, id string) (domain.Item, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+itemColumns+" FROM exchange_item WHERE id = ?", id)
	entity, err := scanItem(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Item{}, fmt.Errorf("exchange item not found: %w", err)
	}
	return entity, err
}

// Save persists an Item to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteItemStore) Save(ctx context.Context, entity domain.Item) error {
	active := 0
	if entity.Active {
		active = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exchange_item (id, name, cost_coins, active, display_order, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name=excluded.name,
			cost_coins=excluded.cost_coins,
			active=excluded.active,
			display_order=excluded.display_order`,
		entity.ID,
		entity.Name,
		entity.CostCoins,
		active,
		entity.DisplayOrder,
		entity.CreatedAt.Format(time.RFC3339Nano),
	)
	return err
}

// Delete removes an Item from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteItemStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM exchange_item WHERE id = ?", id)
	return err
}

// List retrieves all items in display order.
// PRE: none
// POST: Returns all items
func (s *SQLiteItemStore) List(ctx context.Context) ([]domain.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+itemColumns+" FROM exchange_item ORDER BY display_order ASC, name ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectItems(rows)
}

// ListActive retrieves active items in display order.
// PRE: none
// POST: Returns items members can currently redeem
func (s *SQLiteItemStore) ListActive(ctx context.Context) ([]domain.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+itemColumns+" FROM exchange_item WHERE active = 1 ORDER BY display_order ASC, name ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectItems(rows)
}

func collectItems(rows *sql.Rows) ([]domain.Item, error) {
	var results []domain.Item
	for rows.Next() {
		entity, err := scanItem(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// SQLiteRequestStore implements RequestStore using SQLite.
type SQLiteRequestStore struct {
	db storage.SQLDB
}

// NewSQLiteRequestStore creates a new RequestStore.
func NewSQLiteRequestStore(db storage.SQLDB) *SQLiteRequestStore {
	return &SQLiteRequestStore{db: db}
}

const requestColumns = "id, profile_id, item_id, item_name, cost_coins, status, decided_by, created_at, decided_at"

func scanRequest(scan func(dest ...any) error) (domain.Request, error) {
	var entity domain.Request
	var createdStr string
	var decidedStr sql.NullString
	err := scan(
		&entity.ID,
		&entity.ProfileID,
		&entity.ItemID,
		&entity.ItemName,
		&entity.CostCoins,
		&entity.Status,
		&entity.DecidedBy,
		&createdStr,
		&decidedStr,
	)
	if err != nil {
		return domain.Request{}, err
	}
	if entity.CreatedAt, err = storage.ParseStoredTime(createdStr); err != nil {
		return domain.Request{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if decidedStr.Valid && decidedStr.String != "" {
		if entity.DecidedAt, err = storage.ParseStoredTime(decidedStr.String); err != nil {
			return domain.Request{}, fmt.Errorf("failed to parse decided_at: %w", err)
		}
	}
	return entity, nil
}

// GetByID retrieves a Request by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteRequestStore) GetByID(ctx context.Context, id string) (domain.Request, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+requestColumns+" FROM exchange_request WHERE id = ?", id)
	entity, err := scanRequest(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Request{}, fmt.Errorf("exchange request not found: %w", err)
	}
	return entity, err
}

// Save persists a Request to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteRequestStore) Save(ctx context.Context, entity domain.Request) error {
	var decidedValue any
	if !entity.DecidedAt.IsZero() {
		decidedValue = entity.DecidedAt.Format(time.RFC3339Nano)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exchange_request (id, profile_id, item_id, item_name, cost_coins, status, decided_by, created_at, decided_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			status=excluded.status,
			decided_by=excluded.decided_by,
			decided_at=excluded.decided_at`,
		entity.ID,
		entity.ProfileID,
		entity.ItemID,
		entity.ItemName,
		entity.CostCoins,
		entity.Status,
		entity.DecidedBy,
		entity.CreatedAt.Format(time.RFC3339Nano),
		decidedValue,
	)
	return err
}

// ListByProfileID retrieves requests for a profile, newest first.
// PRE: profileID is non-empty
// POST: Returns matching requests
func (s *SQLiteRequestStore) ListByProfileID(ctx context.Context, profileID string) ([]domain.Request, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+requestColumns+" FROM exchange_request WHERE profile_id = ? ORDER BY created_at DESC",
		profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

// ListByStatus retrieves requests in the given status, oldest first so the
// staff queue is worked in arrival order.
// PRE: status is a valid status constant
// POST: Returns matching requests
func (s *SQLiteRequestStore) ListByStatus(ctx context.Context, status string) ([]domain.Request, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+requestColumns+" FROM exchange_request WHERE status = ? ORDER BY created_at ASC",
		status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func collectRequests(rows *sql.Rows) ([]domain.Request, error) {
	var results []domain.Request
	for rows.Next() {
		entity, err := scanRequest(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
