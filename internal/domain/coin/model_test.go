package coin_test

import (
	"testing"
	"time"

	"stella/internal/domain/coin"
)

// TestLedger_Validate tests validation of Ledger.
func TestLedger_Validate(t *testing.T) {
	expiry := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		led     coin.Ledger
		wantErr bool
	}{
		{
			name:    "valid active ledger",
			led:     coin.Ledger{ID: "1", ProfileID: "p1", AmountCurrent: 500, Status: coin.StatusActive, ExpiresAt: expiry},
			wantErr: false,
		},
		{
			name:    "missing profile",
			led:     coin.Ledger{ID: "2", AmountCurrent: 500, Status: coin.StatusActive, ExpiresAt: expiry},
			wantErr: true,
		},
		{
			name:    "negative current amount",
			led:     coin.Ledger{ID: "3", ProfileID: "p1", AmountCurrent: -1, Status: coin.StatusActive, ExpiresAt: expiry},
			wantErr: true,
		},
		{
			name:    "negative locked amount",
			led:     coin.Ledger{ID: "4", ProfileID: "p1", AmountLocked: -1, Status: coin.StatusActive, ExpiresAt: expiry},
			wantErr: true,
		},
		{
			name:    "bad status",
			led:     coin.Ledger{ID: "5", ProfileID: "p1", Status: "frozen", ExpiresAt: expiry},
			wantErr: true,
		},
		{
			name:    "zero expiry",
			led:     coin.Ledger{ID: "6", ProfileID: "p1", Status: coin.StatusActive},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.led.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Ledger.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestLedger_ExpiryBoundary verifies that a ledger expiring exactly at the
// comparison instant is still spendable.
func TestLedger_ExpiryBoundary(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	led := coin.Ledger{ID: "1", ProfileID: "p1", AmountCurrent: 100, Status: coin.StatusActive, ExpiresAt: now}

	if led.IsExpired(now) {
		t.Error("ledger expiring exactly at now should not be expired")
	}
	if !led.IsSpendable(now) {
		t.Error("ledger expiring exactly at now should be spendable")
	}
	if !led.IsExpired(now.Add(time.Second)) {
		t.Error("ledger should be expired one second past its expiry")
	}
}

// TestLedger_HoldReleaseSettle walks coins through the hold lifecycle.
func TestLedger_HoldReleaseSettle(t *testing.T) {
	expiry := time.Now().AddDate(0, 0, 30)
	led := coin.Ledger{ID: "1", ProfileID: "p1", AmountCurrent: 500, Status: coin.StatusActive, ExpiresAt: expiry}

	if err := led.Hold(300); err != nil {
		t.Fatalf("Hold(300) failed: %v", err)
	}
	if led.AmountCurrent != 200 || led.AmountLocked != 300 {
		t.Errorf("after hold: current=%d locked=%d, want 200/300", led.AmountCurrent, led.AmountLocked)
	}

	if err := led.Hold(300); err != coin.ErrInsufficientBalance {
		t.Errorf("Hold beyond balance = %v, want ErrInsufficientBalance", err)
	}

	if err := led.Release(100); err != nil {
		t.Fatalf("Release(100) failed: %v", err)
	}
	if led.AmountCurrent != 300 || led.AmountLocked != 200 {
		t.Errorf("after release: current=%d locked=%d, want 300/200", led.AmountCurrent, led.AmountLocked)
	}

	if err := led.Settle(200); err != nil {
		t.Fatalf("Settle(200) failed: %v", err)
	}
	if led.AmountCurrent != 300 || led.AmountLocked != 0 {
		t.Errorf("after settle: current=%d locked=%d, want 300/0", led.AmountCurrent, led.AmountLocked)
	}

	if err := led.Settle(1); err != coin.ErrInsufficientLocked {
		t.Errorf("Settle with nothing locked = %v, want ErrInsufficientLocked", err)
	}
}

// TestLedger_ExtendExpiry verifies extension is exact and relative to the
// stored expiry, not to the current date.
func TestLedger_ExtendExpiry(t *testing.T) {
	orig := time.Date(2026, 9, 11, 0, 0, 0, 0, time.UTC) // 10 days out
	led := coin.Ledger{ID: "1", ProfileID: "p1", AmountCurrent: 1000, Status: coin.StatusActive, ExpiresAt: orig}

	if err := led.ExtendExpiry(30); err != nil {
		t.Fatalf("ExtendExpiry(30) failed: %v", err)
	}
	want := orig.AddDate(0, 0, 30)
	if !led.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v", led.ExpiresAt, want)
	}
	if led.AmountCurrent != 1000 {
		t.Errorf("AmountCurrent changed by extension: %d", led.AmountCurrent)
	}

	if err := led.ExtendExpiry(0); err == nil {
		t.Error("ExtendExpiry(0) should fail")
	}
	if err := led.ExtendExpiry(-5); err == nil {
		t.Error("ExtendExpiry(-5) should fail")
	}
}

// TestSumBalance verifies balance aggregation over mixed ledgers.
func TestSumBalance(t *testing.T) {
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	future := now.AddDate(0, 0, 10)
	past := now.AddDate(0, 0, -1)

	ledgers := []coin.Ledger{
		{ID: "1", ProfileID: "p1", AmountCurrent: 1000, AmountLocked: 0, Status: coin.StatusActive, ExpiresAt: future},
		{ID: "2", ProfileID: "p1", AmountCurrent: 200, AmountLocked: 300, Status: coin.StatusActive, ExpiresAt: future},
		{ID: "3", ProfileID: "p1", AmountCurrent: 999, AmountLocked: 0, Status: coin.StatusActive, ExpiresAt: past},     // expired
		{ID: "4", ProfileID: "p1", AmountCurrent: 50, AmountLocked: 10, Status: coin.StatusVoid, ExpiresAt: future},    // void
		{ID: "5", ProfileID: "p1", AmountCurrent: 70, AmountLocked: 0, Status: coin.StatusExpired, ExpiresAt: future},  // flagged expired
		{ID: "6", ProfileID: "p1", AmountCurrent: 5, AmountLocked: 0, Status: coin.StatusActive, ExpiresAt: now},       // boundary: counts
	}

	b := coin.SumBalance(ledgers, now)
	if b.Available != 1205 {
		t.Errorf("Available = %d, want 1205", b.Available)
	}
	if b.Locked != 300 {
		t.Errorf("Locked = %d, want 300", b.Locked)
	}
	if b.Total != b.Available+b.Locked {
		t.Errorf("Total = %d, want Available+Locked = %d", b.Total, b.Available+b.Locked)
	}
}

// TestTransaction_Validate tests validation of Transaction.
func TestTransaction_Validate(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		tx      coin.Transaction
		wantErr bool
	}{
		{
			name:    "valid grant",
			tx:      coin.Transaction{ID: "1", ProfileID: "p1", Amount: 500, Type: coin.TxGrant, CreatedAt: now},
			wantErr: false,
		},
		{
			name:    "valid spend",
			tx:      coin.Transaction{ID: "2", ProfileID: "p1", Amount: -500, Type: coin.TxSpend, CreatedAt: now},
			wantErr: false,
		},
		{
			name:    "zero amount",
			tx:      coin.Transaction{ID: "3", ProfileID: "p1", Amount: 0, Type: coin.TxGrant, CreatedAt: now},
			wantErr: true,
		},
		{
			name:    "unknown type",
			tx:      coin.Transaction{ID: "4", ProfileID: "p1", Amount: 10, Type: "bonus", CreatedAt: now},
			wantErr: true,
		},
		{
			name:    "missing profile",
			tx:      coin.Transaction{ID: "5", Amount: 10, Type: coin.TxGrant, CreatedAt: now},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tx.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Transaction.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
