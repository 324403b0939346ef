package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"stella/internal/domain/coin"
	"stella/internal/domain/profile"
	"stella/internal/domain/settings"
)

// LedgerStoreForGrant defines the ledger store interface needed by GrantCoins.
type LedgerStoreForGrant interface {
	Save(ctx context.Context, l coin.Ledger) error
}

// TransactionStoreForGrant defines the transaction store interface needed by GrantCoins.
type TransactionStoreForGrant interface {
	Save(ctx context.Context, t coin.Transaction) error
}

// ProfileStoreForGrant defines the profile store interface needed by GrantCoins.
type ProfileStoreForGrant interface {
	GetByID(ctx context.Context, id string) (profile.Profile, error)
}

// SettingsStoreForGrant reads the default expiry window.
type SettingsStoreForGrant interface {
	GetSetting(ctx context.Context, key string) (settings.Setting, error)
}

// GrantCoinsInput carries input for the coin grant orchestrator.
type GrantCoinsInput struct {
	ProfileID  string
	Amount     int
	ExpiryDays int    // 0 means use the configured default
	TxType     string // empty defaults to a plain grant
	Reason     string
	ExecutorID string
}

// GrantCoinsResult carries the created ledger batch.
type GrantCoinsResult struct {
	LedgerID  string
	ExpiresAt time.Time
}

// GrantCoinsDeps holds dependencies for GrantCoins.
type GrantCoinsDeps struct {
	LedgerStore      LedgerStoreForGrant
	TransactionStore TransactionStoreForGrant
	ProfileStore     ProfileStoreForGrant
	SettingsStore    SettingsStoreForGrant
	GenerateID       func() string
	Now              func() time.Time
}

// ErrProfileNotFound is returned when a referenced profile does not exist.
var ErrProfileNotFound = errors.New("profile not found")

// ExecuteGrantCoins creates a new coin batch for a profile and records the
// grant in the transaction log.
// PRE: Amount > 0, profile exists and is not inactive
// POST: New ledger with its own expiry; one positive transaction row
// INVARIANT: Ledgers are never merged; each grant is its own batch
func ExecuteGrantCoins(ctx context.Context, input GrantCoinsInput, deps GrantCoinsDeps) (GrantCoinsResult, error) {
	if input.Amount <= 0 {
		return GrantCoinsResult{}, coin.ErrNegativeAmount
	}

	p, err := deps.ProfileStore.GetByID(ctx, input.ProfileID)
	if err != nil {
		return GrantCoinsResult{}, ErrProfileNotFound
	}
	if p.Status == profile.StatusInactive {
		return GrantCoinsResult{}, errors.New("cannot grant coins to an inactive profile")
	}

	days := input.ExpiryDays
	if days <= 0 {
		days = settings.DefaultExpiryDays
		if deps.SettingsStore != nil {
			if s, err := deps.SettingsStore.GetSetting(ctx, settings.KeyDefaultExpiryDays); err == nil {
				days = s.IntValue(settings.DefaultExpiryDays)
			}
		}
	}

	now := deps.Now()
	ledger := coin.Ledger{
		ID:            deps.GenerateID(),
		ProfileID:     input.ProfileID,
		AmountCurrent: input.Amount,
		Status:        coin.StatusActive,
		ExpiresAt:     now.AddDate(0, 0, days),
		GrantedBy:     input.ExecutorID,
		CreatedAt:     now,
	}
	if err := ledger.Validate(); err != nil {
		return GrantCoinsResult{}, err
	}
	if err := deps.LedgerStore.Save(ctx, ledger); err != nil {
		return GrantCoinsResult{}, err
	}

	txType := input.TxType
	if txType == "" {
		txType = coin.TxGrant
	}
	tx := coin.Transaction{
		ID:         deps.GenerateID(),
		ProfileID:  input.ProfileID,
		LedgerID:   ledger.ID,
		Amount:     input.Amount,
		Type:       txType,
		ExecutorID: input.ExecutorID,
		Reason:     input.Reason,
		CreatedAt:  now,
	}
	if err := tx.Validate(); err != nil {
		return GrantCoinsResult{}, err
	}
	if err := deps.TransactionStore.Save(ctx, tx); err != nil {
		return GrantCoinsResult{}, err
	}

	slog.Info("coin_event", "event", "coins_granted", "profile_id", input.ProfileID, "amount", input.Amount, "expires_at", ledger.ExpiresAt, "executor_id", input.ExecutorID)
	return GrantCoinsResult{LedgerID: ledger.ID, ExpiresAt: ledger.ExpiresAt}, nil
}

// ExtendExpiryInput carries input for the bulk expiry extension orchestrator.
type ExtendExpiryInput struct {
	LedgerIDs  []string
	Days       int
	ExecutorID string
}

// ExtendExpiryResult reports per-ledger outcomes; a failure on one ledger
// does not stop the rest.
type ExtendExpiryResult struct {
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}

// LedgerStoreForExtend defines the ledger store interface needed by ExtendExpiry.
type LedgerStoreForExtend interface {
	GetByID(ctx context.Context, id string) (coin.Ledger, error)
	Save(ctx context.Context, l coin.Ledger) error
}

// ExtendExpiryDeps holds dependencies for ExtendExpiry.
type ExtendExpiryDeps struct {
	LedgerStore LedgerStoreForExtend
}

// ExecuteExtendExpiry pushes the expiry of each listed ledger out by Days,
// relative to each batch's stored expiry. Partial failures are reported,
// never rolled back.
// PRE: Days > 0
// POST: Each active ledger's expiry moved; result counts successes/failures
func ExecuteExtendExpiry(ctx context.Context, input ExtendExpiryInput, deps ExtendExpiryDeps) (ExtendExpiryResult, error) {
	if input.Days <= 0 {
		return ExtendExpiryResult{}, errors.New("additional days must be positive")
	}

	var result ExtendExpiryResult
	for _, id := range input.LedgerIDs {
		ledger, err := deps.LedgerStore.GetByID(ctx, id)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, id+": not found")
			continue
		}
		if ledger.Status != coin.StatusActive {
			result.Failed++
			result.Errors = append(result.Errors, id+": ledger is not active")
			continue
		}
		if err := ledger.ExtendExpiry(input.Days); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, id+": "+err.Error())
			continue
		}
		if err := deps.LedgerStore.Save(ctx, ledger); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, id+": "+err.Error())
			continue
		}
		result.Succeeded++
	}

	slog.Info("coin_event", "event", "expiry_extended", "days", input.Days, "succeeded", result.Succeeded, "failed", result.Failed, "executor_id", input.ExecutorID)
	return result, nil
}

// LedgerStoreForExpire defines the ledger store interface needed by the
// expiry sweep.
type LedgerStoreForExpire interface {
	ExpireOverdue(ctx context.Context, now time.Time) ([]coin.Ledger, error)
}

// ExpireCoinsDeps holds dependencies for the expiry sweep.
type ExpireCoinsDeps struct {
	LedgerStore      LedgerStoreForExpire
	TransactionStore TransactionStoreForGrant
	GenerateID       func() string
	Now              func() time.Time
}

// ExecuteExpireCoins marks overdue batches expired and logs one negative
// expire transaction per batch that still held spendable coins.
// POST: Overdue ledgers have status expired; remaining balances logged
func ExecuteExpireCoins(ctx context.Context, deps ExpireCoinsDeps) (int, error) {
	now := deps.Now()
	expired, err := deps.LedgerStore.ExpireOverdue(ctx, now)
	if err != nil {
		return 0, err
	}

	for _, ledger := range expired {
		lost := ledger.AmountCurrent + ledger.AmountLocked
		if lost == 0 {
			continue
		}
		tx := coin.Transaction{
			ID:        deps.GenerateID(),
			ProfileID: ledger.ProfileID,
			LedgerID:  ledger.ID,
			Amount:    -lost,
			Type:      coin.TxExpire,
			Reason:    "coins expired",
			CreatedAt: now,
		}
		if err := deps.TransactionStore.Save(ctx, tx); err != nil {
			slog.Error("coin_event", "event", "expire_tx_failed", "ledger_id", ledger.ID, "error", err.Error())
		}
	}

	if len(expired) > 0 {
		slog.Info("coin_event", "event", "coins_expired", "batches", len(expired))
	}
	return len(expired), nil
}
