package projections

import (
	"context"
	"time"

	coinStore "stella/internal/adapters/storage/coin"
	"stella/internal/domain/coin"
)

// CoinLedgerStore defines the ledger store interface needed by the coin projections.
type CoinLedgerStore interface {
	ListByProfileID(ctx context.Context, profileID string) ([]coin.Ledger, error)
}

// CoinTransactionStore defines the transaction store interface needed by the coin projections.
type CoinTransactionStore interface {
	ListByProfileID(ctx context.Context, profileID string, filter coinStore.ListFilter) ([]coin.Transaction, error)
	MonthlyTotals(ctx context.Context, profileID string, months int) ([]coinStore.MonthlyTotal, error)
}

// GetCoinSummaryQuery carries input for the coin summary projection.
type GetCoinSummaryQuery struct {
	ProfileID     string
	HistoryLimit  int
	HistoryOffset int
	StatsMonths   int
}

// GetCoinSummaryDeps holds dependencies for the coin summary projection.
type GetCoinSummaryDeps struct {
	LedgerStore      CoinLedgerStore
	TransactionStore CoinTransactionStore
	Now              func() time.Time
}

// ExpiringBatch is one coin batch with its remaining amount and expiry,
// used for the "expiring soon" display.
type ExpiringBatch struct {
	LedgerID  string    `json:"ledger_id"`
	Amount    int       `json:"amount"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CoinSummaryResult carries the output of the coin summary projection.
type CoinSummaryResult struct {
	Balance      coin.Balance            `json:"balance"`
	ExpiringSoon []ExpiringBatch         `json:"expiring_soon"`
	History      []coin.Transaction      `json:"history"`
	MonthlyStats []coinStore.MonthlyTotal `json:"monthly_stats"`
}

// QueryGetCoinSummary aggregates a member's coin position: the balance over
// live batches, batches expiring within 30 days, recent movements, and
// per-month earned/spent totals.
// PRE: ProfileID is non-empty
// POST: Balance counts only active, unexpired batches
func QueryGetCoinSummary(ctx context.Context, query GetCoinSummaryQuery, deps GetCoinSummaryDeps) (CoinSummaryResult, error) {
	now := deps.Now()

	ledgers, err := deps.LedgerStore.ListByProfileID(ctx, query.ProfileID)
	if err != nil {
		return CoinSummaryResult{}, err
	}

	result := CoinSummaryResult{
		Balance:      coin.SumBalance(ledgers, now),
		ExpiringSoon: []ExpiringBatch{},
		History:      []coin.Transaction{},
		MonthlyStats: []coinStore.MonthlyTotal{},
	}

	horizon := now.AddDate(0, 0, 30)
	for _, l := range ledgers {
		if !l.IsSpendable(now) {
			continue
		}
		if l.ExpiresAt.After(horizon) {
			continue
		}
		remaining := l.AmountCurrent + l.AmountLocked
		if remaining == 0 {
			continue
		}
		result.ExpiringSoon = append(result.ExpiringSoon, ExpiringBatch{
			LedgerID:  l.ID,
			Amount:    remaining,
			ExpiresAt: l.ExpiresAt,
		})
	}

	limit := query.HistoryLimit
	if limit <= 0 {
		limit = 50
	}
	history, err := deps.TransactionStore.ListByProfileID(ctx, query.ProfileID, coinStore.ListFilter{Limit: limit, Offset: query.HistoryOffset})
	if err != nil {
		return CoinSummaryResult{}, err
	}
	if history != nil {
		result.History = history
	}

	months := query.StatsMonths
	if months <= 0 {
		months = 6
	}
	stats, err := deps.TransactionStore.MonthlyTotals(ctx, query.ProfileID, months)
	if err != nil {
		return CoinSummaryResult{}, err
	}
	if stats != nil {
		result.MonthlyStats = stats
	}

	return result, nil
}
