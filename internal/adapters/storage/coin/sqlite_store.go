package coin

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"stella/internal/adapters/storage"
	domain "stella/internal/domain/coin"
)

// SQLiteLedgerStore implements LedgerStore using SQLite.
type SQLiteLedgerStore struct {
	db storage.SQLDB
}

// NewSQLiteLedgerStore creates a new LedgerStore.
func NewSQLiteLedgerStore(db storage.SQLDB) *SQLiteLedgerStore {
	return &SQLiteLedgerStore{db: db}
}

const ledgerColumns = "id, profile_id, amount_current, amount_locked, status, expires_at, granted_by, created_at"

func scanLedger(scan func(dest ...any) error) (domain.Ledger, error) {
	var entity domain.Ledger
	var expiresStr, createdStr string
	err := scan(
		&entity.ID,
		&entity.ProfileID,
		&entity.AmountCurrent,
		&entity.AmountLocked,
		&entity.Status,
		&expiresStr,
		&entity.GrantedBy,
		&createdStr,
	)
	if err != nil {
		return domain.Ledger{}, err
	}
	if entity.ExpiresAt, err = storage.ParseStoredTime(expiresStr); err != nil {
		return domain.Ledger{}, fmt.Errorf("failed to parse expires_at: %w", err)
	}
	if entity.CreatedAt, err = storage.ParseStoredTime(createdStr); err != nil {
		return domain.Ledger{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return entity, nil
}

// GetByID retrieves a Ledger by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteLedgerStore) GetByID(ctx context.Context, id string) (domain.Ledger, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+ledgerColumns+" FROM coin_ledger WHERE id = ?", id)
	entity, err := scanLedger(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Ledger{}, fmt.Errorf("coin ledger not found: %w", err)
	}
	return entity, err
}

// Save persists a Ledger to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteLedgerStore) Save(ctx context.Context, entity domain.Ledger) error {
	query := `INSERT INTO coin_ledger (id, profile_id, amount_current, amount_locked, status, expires_at, granted_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			amount_current=excluded.amount_current,
			amount_locked=excluded.amount_locked,
			status=excluded.status,
			expires_at=excluded.expires_at`

	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		entity.ProfileID,
		entity.AmountCurrent,
		entity.AmountLocked,
		entity.Status,
		entity.ExpiresAt.Format(time.RFC3339Nano),
		entity.GrantedBy,
		entity.CreatedAt.Format(time.RFC3339Nano),
	)
	return err
}

// Delete removes a Ledger from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteLedgerStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM coin_ledger WHERE id = ?", id)
	return err
}

// ListByProfileID retrieves all ledgers for a profile, newest grant first.
// PRE: profileID is non-empty
// POST: Returns ledgers for the given profile
func (s *SQLiteLedgerStore) ListByProfileID(ctx context.Context, profileID string) ([]domain.Ledger, error) {
	query := "SELECT " + ledgerColumns + " FROM coin_ledger WHERE profile_id = ? ORDER BY created_at DESC"
	rows, err := s.db.QueryContext(ctx, query, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Ledger
	for rows.Next() {
		entity, err := scanLedger(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// ListSpendableByProfileID retrieves active unexpired ledgers, soonest expiry first.
// A ledger expiring exactly at now is still spendable.
// PRE: profileID is non-empty
// POST: Returns ledgers ordered by expires_at ascending
func (s *SQLiteLedgerStore) ListSpendableByProfileID(ctx context.Context, profileID string, now time.Time) ([]domain.Ledger, error) {
	query := "SELECT " + ledgerColumns + ` FROM coin_ledger
		WHERE profile_id = ? AND status = ? AND expires_at >= ?
		ORDER BY expires_at ASC`
	rows, err := s.db.QueryContext(ctx, query, profileID, domain.StatusActive, now.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Ledger
	for rows.Next() {
		entity, err := scanLedger(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Hold moves amount from current to locked using a conditional update.
// PRE: amount > 0
// POST: amount moved, or domain.ErrInsufficientBalance if funds are missing
func (s *SQLiteLedgerStore) Hold(ctx context.Context, id string, amount int) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE coin_ledger
		 SET amount_current = amount_current - ?, amount_locked = amount_locked + ?
		 WHERE id = ? AND status = ? AND amount_current >= ?`,
		amount, amount, id, domain.StatusActive, amount)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrInsufficientBalance
	}
	return nil
}

// Release moves amount from locked back to current using a conditional update.
// PRE: amount > 0
// POST: amount released, or domain.ErrInsufficientLocked if not enough is locked
func (s *SQLiteLedgerStore) Release(ctx context.Context, id string, amount int) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE coin_ledger
		 SET amount_current = amount_current + ?, amount_locked = amount_locked - ?
		 WHERE id = ? AND amount_locked >= ?`,
		amount, amount, id, amount)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrInsufficientLocked
	}
	return nil
}

// Settle removes amount from locked using a conditional update.
// PRE: amount > 0
// POST: amount settled, or domain.ErrInsufficientLocked if not enough is locked
func (s *SQLiteLedgerStore) Settle(ctx context.Context, id string, amount int) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE coin_ledger
		 SET amount_locked = amount_locked - ?
		 WHERE id = ? AND amount_locked >= ?`,
		amount, id, amount)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrInsufficientLocked
	}
	return nil
}

// ExpireOverdue marks active ledgers past their expiry as expired.
// A ledger expiring exactly at now is not yet overdue.
// PRE: now is the comparison instant
// POST: Returns the ledgers that were transitioned
func (s *SQLiteLedgerStore) ExpireOverdue(ctx context.Context, now time.Time) ([]domain.Ledger, error) {
	cutoff := now.UTC().Format(time.RFC3339Nano)

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+ledgerColumns+" FROM coin_ledger WHERE status = ? AND expires_at < ?",
		domain.StatusActive, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var overdue []domain.Ledger
	for rows.Next() {
		entity, err := scanLedger(rows.Scan)
		if err != nil {
			return nil, err
		}
		overdue = append(overdue, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(overdue) == 0 {
		return nil, nil
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE coin_ledger SET status = ? WHERE status = ? AND expires_at < ?`,
		domain.StatusExpired, domain.StatusActive, cutoff)
	if err != nil {
		return nil, err
	}
	return overdue, nil
}

// SQLiteTransactionStore implements TransactionStore using SQLite.
type SQLiteTransactionStore struct {
	db storage.SQLDB
}

// NewSQLiteTransactionStore creates a new TransactionStore.
func NewSQLiteTransactionStore(db storage.SQLDB) *SQLiteTransactionStore {
	return &SQLiteTransactionStore{db: db}
}

// Save persists a Transaction. Transactions are append-only.
// PRE: entity has been validated
// POST: Entity is inserted
func (s *SQLiteTransactionStore) Save(ctx context.Context, entity domain.Transaction) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO coin_transaction (id, profile_id, ledger_id, amount, type, executor_id, reference_id, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entity.ID,
		entity.ProfileID,
		entity.LedgerID,
		entity.Amount,
		entity.Type,
		entity.ExecutorID,
		entity.ReferenceID,
		entity.Reason,
		entity.CreatedAt.Format(time.RFC3339Nano),
	)
	return err
}

const transactionColumns = "id, profile_id, ledger_id, amount, type, executor_id, reference_id, reason, created_at"

func scanTransaction(scan func(dest ...any) error) (domain.Transaction, error) {
	var entity domain.Transaction
	var createdStr string
	err := scan(
		&entity.ID,
		&entity.ProfileID,
		&entity.LedgerID,
		&entity.Amount,
		&entity.Type,
		&entity.ExecutorID,
		&entity.ReferenceID,
		&entity.Reason,
		&createdStr,
	)
	if err != nil {
		return domain.Transaction{}, err
	}
	if entity.CreatedAt, err = storage.ParseStoredTime(createdStr); err != nil {
		return domain.Transaction{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return entity, nil
}

// ListByProfileID retrieves transactions for a profile, newest first.
// PRE: profileID is non-empty; filter.Limit <= 0 means no limit
// POST: Returns matching transactions
func (s *SQLiteTransactionStore) ListByProfileID(ctx context.Context, profileID string, filter ListFilter) ([]domain.Transaction, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = -1 // SQLite treats negative LIMIT as unlimited
	}
	query := "SELECT " + transactionColumns + ` FROM coin_transaction
		WHERE profile_id = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, query, profileID, limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Transaction
	for rows.Next() {
		entity, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// ListByReferenceID retrieves transactions tied to a reservation or exchange.
// PRE: referenceID is non-empty
// POST: Returns matching transactions, oldest first
func (s *SQLiteTransactionStore) ListByReferenceID(ctx context.Context, referenceID string) ([]domain.Transaction, error) {
	query := "SELECT " + transactionColumns + ` FROM coin_transaction
		WHERE reference_id = ? ORDER BY created_at ASC`
	rows, err := s.db.QueryContext(ctx, query, referenceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Transaction
	for rows.Next() {
		entity, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// MonthlyTotals aggregates earned and spent amounts per calendar month.
// PRE: months > 0
// POST: Returns up to months rows, newest month first
func (s *SQLiteTransactionStore) MonthlyTotals(ctx context.Context, profileID string, months int) ([]MonthlyTotal, error) {
	query := `SELECT SUBSTR(created_at, 1, 7) AS month,
			SUM(CASE WHEN amount > 0 THEN amount ELSE 0 END),
			SUM(CASE WHEN amount < 0 THEN -amount ELSE 0 END)
		FROM coin_transaction
		WHERE profile_id = ?
		GROUP BY month
		ORDER BY month DESC
		LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, profileID, months)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []MonthlyTotal
	for rows.Next() {
		var mt MonthlyTotal
		if err := rows.Scan(&mt.Month, &mt.Earned, &mt.Spent); err != nil {
			return nil, err
		}
		results = append(results, mt)
	}
	return results, rows.Err()
}
