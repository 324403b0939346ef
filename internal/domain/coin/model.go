package coin

import (
	"errors"
	"time"
)

// Ledger status constants
const (
	StatusActive  = "active"
	StatusExpired = "expired"
	StatusVoid    = "void"
)

// Transaction type constants
const (
	TxGrant        = "grant"
	TxSpend        = "spend"
	TxRefund       = "refund"
	TxCheckInBonus = "checkin_bonus"
	TxExchange     = "exchange"
	TxExpire       = "expire"
)

// ValidTxTypes contains all valid transaction type values.
var ValidTxTypes = []string{TxGrant, TxSpend, TxRefund, TxCheckInBonus, TxExchange, TxExpire}

// Domain errors
var (
	ErrNegativeAmount      = errors.New("amount must be positive")
	ErrInsufficientBalance = errors.New("insufficient available balance")
	ErrInsufficientLocked  = errors.New("insufficient locked balance")
	ErrLedgerNotActive     = errors.New("ledger is not active")
	ErrZeroTxAmount        = errors.New("transaction amount cannot be zero")
)

// Ledger is one batch of Stella Coins granted to a profile. A profile's
// balance is the sum over its active, non-expired ledgers; a ledger is never
// the balance by itself.
type Ledger struct {
	ID            string
	ProfileID     string
	AmountCurrent int // spendable coins
	AmountLocked  int // coins held against a pending reservation or exchange
	Status        string
	ExpiresAt     time.Time
	GrantedBy     string
	CreatedAt     time.Time
}

// Validate checks if the Ledger has valid data.
// PRE: Ledger struct is populated
// POST: Returns nil if valid, error otherwise
// INVARIANT: AmountCurrent >= 0, AmountLocked >= 0
func (l *Ledger) Validate() error {
	if l.ProfileID == "" {
		return errors.New("ledger profile ID is required")
	}
	if l.AmountCurrent < 0 {
		return errors.New("amount_current cannot be negative")
	}
	if l.AmountLocked < 0 {
		return errors.New("amount_locked cannot be negative")
	}
	if l.Status != StatusActive && l.Status != StatusExpired && l.Status != StatusVoid {
		return errors.New("status must be 'active', 'expired', or 'void'")
	}
	if l.ExpiresAt.IsZero() {
		return errors.New("expires_at must be set")
	}
	return nil
}

// IsExpired returns true if the ledger's expiry is strictly before now.
// A ledger expiring exactly at the boundary instant still counts.
// INVARIANT: Ledger fields are not mutated
func (l *Ledger) IsExpired(now time.Time) bool {
	return l.ExpiresAt.Before(now)
}

// IsSpendable returns true if the ledger contributes to the balance.
// INVARIANT: Ledger fields are not mutated
func (l *Ledger) IsSpendable(now time.Time) bool {
	return l.Status == StatusActive && !l.IsExpired(now)
}

// Hold moves amount from the spendable pool to the locked pool.
// PRE: amount > 0, ledger is active
// POST: AmountCurrent decreased and AmountLocked increased by amount
func (l *Ledger) Hold(amount int) error {
	if amount <= 0 {
		return ErrNegativeAmount
	}
	if l.Status != StatusActive {
		return ErrLedgerNotActive
	}
	if l.AmountCurrent < amount {
		return ErrInsufficientBalance
	}
	l.AmountCurrent -= amount
	l.AmountLocked += amount
	return nil
}

// Release moves amount from the locked pool back to the spendable pool.
// PRE: amount > 0, AmountLocked >= amount
// POST: AmountLocked decreased and AmountCurrent increased by amount
func (l *Ledger) Release(amount int) error {
	if amount <= 0 {
		return ErrNegativeAmount
	}
	if l.AmountLocked < amount {
		return ErrInsufficientLocked
	}
	l.AmountLocked -= amount
	l.AmountCurrent += amount
	return nil
}

// Settle removes amount from the locked pool permanently.
// PRE: amount > 0, AmountLocked >= amount
// POST: AmountLocked decreased by amount
func (l *Ledger) Settle(amount int) error {
	if amount <= 0 {
		return ErrNegativeAmount
	}
	if l.AmountLocked < amount {
		return ErrInsufficientLocked
	}
	l.AmountLocked -= amount
	return nil
}

// ExtendExpiry pushes the expiry out by the given number of days,
// relative to the stored expiry, never to the current date.
// PRE: days > 0
// POST: ExpiresAt = old ExpiresAt + days
func (l *Ledger) ExtendExpiry(days int) error {
	if days <= 0 {
		return errors.New("additional days must be positive")
	}
	l.ExpiresAt = l.ExpiresAt.AddDate(0, 0, days)
	return nil
}

// Balance is the aggregated coin position for one profile.
type Balance struct {
	Available int `json:"available"`
	Locked    int `json:"locked"`
	Total     int `json:"total"`
}

// SumBalance aggregates ledgers into a Balance. Only active, non-expired
// ledgers count; expired and void batches contribute nothing.
// PRE: ledgers belong to a single profile
// POST: Total = Available + Locked
func SumBalance(ledgers []Ledger, now time.Time) Balance {
	var b Balance
	for _, l := range ledgers {
		if !l.IsSpendable(now) {
			continue
		}
		b.Available += l.AmountCurrent
		b.Locked += l.AmountLocked
	}
	b.Total = b.Available + b.Locked
	return b
}

// Transaction is one immutable row in the coin movement log. Positive amounts
// are grants, negative amounts are spends. The log is for display and
// aggregation only; the ledgers remain the source of truth for balance.
type Transaction struct {
	ID          string
	ProfileID   string
	LedgerID    string
	Amount      int // signed: positive = grant, negative = spend
	Type        string
	ExecutorID  string
	ReferenceID string // reservation or exchange request that caused the movement
	Reason      string
	CreatedAt   time.Time
}

// Validate checks if the Transaction has valid data.
// PRE: Transaction struct is populated
// POST: Returns nil if valid, error otherwise
func (t *Transaction) Validate() error {
	if t.ProfileID == "" {
		return errors.New("transaction profile ID is required")
	}
	if t.Amount == 0 {
		return ErrZeroTxAmount
	}
	if !isValidTxType(t.Type) {
		return errors.New("invalid transaction type")
	}
	if t.CreatedAt.IsZero() {
		return errors.New("created_at must be set")
	}
	return nil
}

func isValidTxType(txType string) bool {
	for _, t := range ValidTxTypes {
		if t == txType {
			return true
		}
	}
	return false
}
