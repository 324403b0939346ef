package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"stella/internal/domain/coin"
	"stella/internal/domain/reservation"
	"stella/internal/domain/settings"
)

// bookedFixture places a confirmed reservation with 5 coins held across two
// batches, exactly as ExecuteReserve would leave them.
func bookedFixture(reservedAt time.Time) (*mockReservationStore, *mockLedgerStore, *mockTxStore) {
	reservations := &mockReservationStore{reservations: map[string]reservation.Reservation{
		"res-1": {
			ID:         "res-1",
			ProfileID:  "prof-1",
			MentorID:   "mentor-1",
			ReservedAt: reservedAt,
			Status:     reservation.StatusConfirmed,
			CoinsUsed:  5,
			CreatedAt:  fixedTime,
		},
	}}
	ledgers := &mockLedgerStore{ledgers: map[string]coin.Ledger{
		"led-soon": {ID: "led-soon", ProfileID: "prof-1", AmountCurrent: 0, AmountLocked: 3, Status: coin.StatusActive, ExpiresAt: fixedTime.AddDate(0, 0, 5), CreatedAt: fixedTime},
		"led-far":  {ID: "led-far", ProfileID: "prof-1", AmountCurrent: 8, AmountLocked: 2, Status: coin.StatusActive, ExpiresAt: fixedTime.AddDate(0, 0, 60), CreatedAt: fixedTime},
	}}
	txs := &mockTxStore{txs: []coin.Transaction{
		{ID: "tx-1", ProfileID: "prof-1", LedgerID: "led-soon", Amount: -3, Type: coin.TxSpend, ReferenceID: "res-1", CreatedAt: fixedTime},
		{ID: "tx-2", ProfileID: "prof-1", LedgerID: "led-far", Amount: -2, Type: coin.TxSpend, ReferenceID: "res-1", CreatedAt: fixedTime},
	}}
	return reservations, ledgers, txs
}

func TestExecuteCancelReservation_RefundsToOriginalBatches(t *testing.T) {
	reservations, ledgers, txs := bookedFixture(fixedTime.Add(72 * time.Hour))

	result, err := ExecuteCancelReservation(context.Background(), CancelReservationInput{
		ReservationID: "res-1",
		ProfileID:     "prof-1",
		Reason:        "schedule conflict",
	}, CancelReservationDeps{
		ReservationStore: reservations,
		LedgerStore:      ledgers,
		TransactionStore: txs,
		GenerateID:       sequentialIDs(),
		Now:              fixedNow,
	})
	if err != nil {
		t.Fatalf("ExecuteCancelReservation: %v", err)
	}
	if !result.Cancelled || result.CoinsRefunded != 5 {
		t.Errorf("result = %+v, want cancelled with 5 refunded", result)
	}

	res := reservations.reservations["res-1"]
	if res.Status != reservation.StatusCancelled {
		t.Errorf("status = %q, want cancelled", res.Status)
	}
	if res.CancelReason != "schedule conflict" {
		t.Errorf("CancelReason = %q", res.CancelReason)
	}

	// Coins return to the batches they came from, keeping each expiry.
	soon := ledgers.ledgers["led-soon"]
	far := ledgers.ledgers["led-far"]
	if soon.AmountCurrent != 3 || soon.AmountLocked != 0 {
		t.Errorf("soon batch = %d/%d, want 3/0", soon.AmountCurrent, soon.AmountLocked)
	}
	if far.AmountCurrent != 10 || far.AmountLocked != 0 {
		t.Errorf("far batch = %d/%d, want 10/0", far.AmountCurrent, far.AmountLocked)
	}

	refunds := 0
	for _, tx := range txs.txs {
		if tx.Type == coin.TxRefund {
			refunds++
			if tx.Amount <= 0 {
				t.Errorf("refund amount = %d, want positive", tx.Amount)
			}
		}
	}
	if refunds != 2 {
		t.Errorf("refund rows = %d, want 2", refunds)
	}
}

func TestExecuteCancelReservation_CutoffPassed(t *testing.T) {
	// Reserved 10 hours out; default cutoff is 24 hours.
	reservations, ledgers, txs := bookedFixture(fixedTime.Add(10 * time.Hour))

	_, err := ExecuteCancelReservation(context.Background(), CancelReservationInput{
		ReservationID: "res-1",
		ProfileID:     "prof-1",
	}, CancelReservationDeps{
		ReservationStore: reservations,
		LedgerStore:      ledgers,
		TransactionStore: txs,
		GenerateID:       sequentialIDs(),
		Now:              fixedNow,
	})
	if !errors.Is(err, reservation.ErrCutoffPassed) {
		t.Fatalf("err = %v, want ErrCutoffPassed", err)
	}
	if reservations.reservations["res-1"].Status != reservation.StatusConfirmed {
		t.Error("reservation must stay confirmed past the cutoff")
	}
}

func TestExecuteCancelReservation_ExactCutoffAllowed(t *testing.T) {
	reservations, ledgers, txs := bookedFixture(fixedTime.Add(24 * time.Hour))

	result, err := ExecuteCancelReservation(context.Background(), CancelReservationInput{
		ReservationID: "res-1",
		ProfileID:     "prof-1",
	}, CancelReservationDeps{
		ReservationStore: reservations,
		LedgerStore:      ledgers,
		TransactionStore: txs,
		GenerateID:       sequentialIDs(),
		Now:              fixedNow,
	})
	if err != nil {
		t.Fatalf("ExecuteCancelReservation at the exact boundary: %v", err)
	}
	if !result.Cancelled {
		t.Error("cancellation landing exactly on the cutoff must succeed")
	}
}

func TestExecuteCancelReservation_ForceIgnoresCutoff(t *testing.T) {
	reservations, ledgers, txs := bookedFixture(fixedTime.Add(1 * time.Hour))

	result, err := ExecuteCancelReservation(context.Background(), CancelReservationInput{
		ReservationID: "res-1",
		Reason:        "mentor unavailable",
		Force:         true,
	}, CancelReservationDeps{
		ReservationStore: reservations,
		LedgerStore:      ledgers,
		TransactionStore: txs,
		GenerateID:       sequentialIDs(),
		Now:              fixedNow,
	})
	if err != nil {
		t.Fatalf("forced cancel: %v", err)
	}
	if result.CoinsRefunded != 5 {
		t.Errorf("CoinsRefunded = %d, want 5", result.CoinsRefunded)
	}
}

func TestExecuteCancelReservation_ConfiguredCutoff(t *testing.T) {
	reservations, ledgers, txs := bookedFixture(fixedTime.Add(10 * time.Hour))
	conf := &mockSettingsStore{settings: map[string]settings.Setting{
		settings.KeyCancelCutoffHours: {Key: settings.KeyCancelCutoffHours, Value: "6"},
	}}

	result, err := ExecuteCancelReservation(context.Background(), CancelReservationInput{
		ReservationID: "res-1",
		ProfileID:     "prof-1",
	}, CancelReservationDeps{
		ReservationStore: reservations,
		LedgerStore:      ledgers,
		TransactionStore: txs,
		SettingsStore:    conf,
		GenerateID:       sequentialIDs(),
		Now:              fixedNow,
	})
	if err != nil {
		t.Fatalf("cancel with 6h cutoff: %v", err)
	}
	if !result.Cancelled {
		t.Error("10 hours out with a 6 hour cutoff must cancel")
	}
}

func TestExecuteCancelReservation_WrongOwner(t *testing.T) {
	reservations, ledgers, txs := bookedFixture(fixedTime.Add(72 * time.Hour))

	_, err := ExecuteCancelReservation(context.Background(), CancelReservationInput{
		ReservationID: "res-1",
		ProfileID:     "prof-other",
	}, CancelReservationDeps{
		ReservationStore: reservations,
		LedgerStore:      ledgers,
		TransactionStore: txs,
		GenerateID:       sequentialIDs(),
		Now:              fixedNow,
	})
	if !errors.Is(err, ErrNotYourReservation) {
		t.Fatalf("err = %v, want ErrNotYourReservation", err)
	}
}

func TestExecuteCompleteReservation_SettlesHolds(t *testing.T) {
	reservations, ledgers, txs := bookedFixture(fixedTime.Add(-time.Hour))

	err := ExecuteCompleteReservation(context.Background(), CompleteReservationInput{
		ReservationID: "res-1",
		ExecutorID:    "mentor-1",
	}, CompleteReservationDeps{
		ReservationStore: reservations,
		LedgerStore:      ledgers,
		TransactionStore: txs,
		Now:              fixedNow,
	})
	if err != nil {
		t.Fatalf("ExecuteCompleteReservation: %v", err)
	}
	if reservations.reservations["res-1"].Status != reservation.StatusCompleted {
		t.Error("status must be completed")
	}
	// Settled coins are gone for good: nothing returns to current.
	soon := ledgers.ledgers["led-soon"]
	far := ledgers.ledgers["led-far"]
	if soon.AmountCurrent != 0 || soon.AmountLocked != 0 {
		t.Errorf("soon batch = %d/%d, want 0/0", soon.AmountCurrent, soon.AmountLocked)
	}
	if far.AmountCurrent != 8 || far.AmountLocked != 0 {
		t.Errorf("far batch = %d/%d, want 8/0", far.AmountCurrent, far.AmountLocked)
	}
}

func TestExecuteCompleteOverdueReservations_SkipsBlocks(t *testing.T) {
	reservations, ledgers, txs := bookedFixture(fixedTime.Add(-2 * time.Hour))
	reservations.reservations["block-1"] = reservation.Reservation{
		ID:         "block-1",
		MentorID:   "mentor-1",
		ReservedAt: fixedTime.Add(-3 * time.Hour),
		Status:     reservation.StatusConfirmed,
		IsBlocked:  true,
		CreatedAt:  fixedTime,
	}

	completed, err := ExecuteCompleteOverdueReservations(context.Background(), CompleteOverdueDeps{
		ReservationStore: reservations,
		LedgerStore:      ledgers,
		TransactionStore: txs,
		Now:              fixedNow,
	})
	if err != nil {
		t.Fatalf("ExecuteCompleteOverdueReservations: %v", err)
	}
	if completed != 1 {
		t.Errorf("completed = %d, want 1", completed)
	}
	if reservations.reservations["block-1"].Status != reservation.StatusConfirmed {
		t.Error("blocks must not be completed by the sweep")
	}
}
