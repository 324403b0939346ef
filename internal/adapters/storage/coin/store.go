package coin

import (
	"context"
	"time"

	domain "stella/internal/domain/coin"
)

// LedgerStore persists coin Ledger state.
type LedgerStore interface {
	GetByID(ctx context.Context, id string) (domain.Ledger, error)
	Save(ctx context.Context, value domain.Ledger) error
	Delete(ctx context.Context, id string) error
	ListByProfileID(ctx context.Context, profileID string) ([]domain.Ledger, error)
	// ListSpendableByProfileID returns active, unexpired ledgers ordered by
	// expiry ascending so the soonest-expiring coins are consumed first.
	ListSpendableByProfileID(ctx context.Context, profileID string, now time.Time) ([]domain.Ledger, error)
	// Hold atomically moves amount from current to locked. Fails with
	// domain.ErrInsufficientBalance when the ledger lacks the funds.
	Hold(ctx context.Context, id string, amount int) error
	// Release atomically moves amount from locked back to current. Fails
	// with domain.ErrInsufficientLocked when less than amount is locked.
	Release(ctx context.Context, id string, amount int) error
	// Settle atomically removes amount from locked. Fails with
	// domain.ErrInsufficientLocked when less than amount is locked.
	Settle(ctx context.Context, id string, amount int) error
	// ExpireOverdue marks active ledgers whose expiry has passed as expired
	// and returns the affected ledgers.
	ExpireOverdue(ctx context.Context, now time.Time) ([]domain.Ledger, error)
}

// TransactionStore persists coin Transaction state.
type TransactionStore interface {
	Save(ctx context.Context, value domain.Transaction) error
	ListByProfileID(ctx context.Context, profileID string, filter ListFilter) ([]domain.Transaction, error)
	ListByReferenceID(ctx context.Context, referenceID string) ([]domain.Transaction, error)
	// MonthlyTotals aggregates earned and spent amounts per calendar month
	// for the trailing months window, newest first.
	MonthlyTotals(ctx context.Context, profileID string, months int) ([]MonthlyTotal, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Limit  int
	Offset int
}

// MonthlyTotal aggregates signed transaction amounts for one calendar month.
type MonthlyTotal struct {
	Month  string // YYYY-MM
	Earned int
	Spent  int
}
