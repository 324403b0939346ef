package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"stella/internal/domain/coin"
	"stella/internal/domain/reservation"
	"stella/internal/domain/settings"
)

// ReservationStoreForCancel defines the reservation store interface needed by Cancel.
type ReservationStoreForCancel interface {
	GetByID(ctx context.Context, id string) (reservation.Reservation, error)
	Save(ctx context.Context, r reservation.Reservation) error
}

// LedgerStoreForSettle releases or settles held coins.
type LedgerStoreForSettle interface {
	Release(ctx context.Context, id string, amount int) error
	Settle(ctx context.Context, id string, amount int) error
}

// TransactionStoreForCancel reads the spend rows linked to a reservation and
// writes the refunds.
type TransactionStoreForCancel interface {
	Save(ctx context.Context, t coin.Transaction) error
	ListByReferenceID(ctx context.Context, referenceID string) ([]coin.Transaction, error)
}

// SettingsStoreForCancel reads the cancellation cutoff.
type SettingsStoreForCancel interface {
	GetSetting(ctx context.Context, key string) (settings.Setting, error)
}

// CancelReservationInput carries input for the cancel orchestrator.
type CancelReservationInput struct {
	ReservationID string
	ProfileID     string // requester's profile; empty when staff cancels
	Reason        string
	Force         bool // staff override: ignore the cutoff
}

// CancelReservationResult reports the outcome, including how many coins
// went back to the member.
type CancelReservationResult struct {
	Cancelled      bool `json:"cancelled"`
	CoinsRefunded  int  `json:"coins_refunded"`
	CutoffEnforced bool `json:"cutoff_enforced"`
}

// CancelReservationDeps holds dependencies for CancelReservation.
type CancelReservationDeps struct {
	ReservationStore ReservationStoreForCancel
	LedgerStore      LedgerStoreForSettle
	TransactionStore TransactionStoreForCancel
	SettingsStore    SettingsStoreForCancel
	GenerateID       func() string
	Now              func() time.Time
}

var (
	ErrReservationNotFound = errors.New("reservation not found")
	ErrNotYourReservation  = errors.New("reservation belongs to another member")
)

// ExecuteCancelReservation cancels a confirmed reservation and refunds the
// held coins to the batches they came from.
// PRE: Reservation is confirmed; requester owns it or Force is set
// POST: Status cancelled; every hold released; one refund row per batch
// INVARIANT: Refund goes to the original batches, keeping their expiry
func ExecuteCancelReservation(ctx context.Context, input CancelReservationInput, deps CancelReservationDeps) (CancelReservationResult, error) {
	res, err := deps.ReservationStore.GetByID(ctx, input.ReservationID)
	if err != nil {
		return CancelReservationResult{}, ErrReservationNotFound
	}
	if input.ProfileID != "" && res.ProfileID != input.ProfileID {
		return CancelReservationResult{}, ErrNotYourReservation
	}
	if res.Status != reservation.StatusConfirmed {
		return CancelReservationResult{}, reservation.ErrNotConfirmed
	}

	now := deps.Now()
	if !input.Force {
		cutoffHours := settings.DefaultCancelCutoffHours
		if deps.SettingsStore != nil {
			if s, err := deps.SettingsStore.GetSetting(ctx, settings.KeyCancelCutoffHours); err == nil {
				cutoffHours = s.IntValue(settings.DefaultCancelCutoffHours)
			}
		}
		if !res.CanCancel(now, time.Duration(cutoffHours)*time.Hour) {
			return CancelReservationResult{CutoffEnforced: true}, reservation.ErrCutoffPassed
		}
	}

	if err := res.Cancel(input.Reason); err != nil {
		return CancelReservationResult{}, err
	}
	if err := deps.ReservationStore.Save(ctx, res); err != nil {
		return CancelReservationResult{}, err
	}

	refunded := 0
	if res.CoinsUsed > 0 {
		spends, err := deps.TransactionStore.ListByReferenceID(ctx, res.ID)
		if err != nil {
			return CancelReservationResult{}, err
		}
		for _, tx := range spends {
			if tx.Type != coin.TxSpend || tx.Amount >= 0 {
				continue
			}
			amount := -tx.Amount
			if err := deps.LedgerStore.Release(ctx, tx.LedgerID, amount); err != nil {
				slog.Error("reservation_event", "event", "refund_release_failed", "reservation_id", res.ID, "ledger_id", tx.LedgerID, "error", err.Error())
				continue
			}
			refund := coin.Transaction{
				ID:          deps.GenerateID(),
				ProfileID:   res.ProfileID,
				LedgerID:    tx.LedgerID,
				Amount:      amount,
				Type:        coin.TxRefund,
				ReferenceID: res.ID,
				Reason:      "reservation cancelled",
				CreatedAt:   now,
			}
			if err := deps.TransactionStore.Save(ctx, refund); err != nil {
				slog.Error("reservation_event", "event", "refund_tx_failed", "reservation_id", res.ID, "error", err.Error())
			}
			refunded += amount
		}
	}

	slog.Info("reservation_event", "event", "reservation_cancelled", "reservation_id", res.ID, "coins_refunded", refunded, "forced", input.Force)
	return CancelReservationResult{Cancelled: true, CoinsRefunded: refunded}, nil
}

// CompleteReservationInput carries input for the completion orchestrator.
type CompleteReservationInput struct {
	ReservationID string
	ExecutorID    string
}

// CompleteReservationDeps holds dependencies for CompleteReservation.
type CompleteReservationDeps struct {
	ReservationStore ReservationStoreForCancel
	LedgerStore      LedgerStoreForSettle
	TransactionStore TransactionStoreForCancel
	Now              func() time.Time
}

// ExecuteCompleteReservation marks a confirmed reservation completed and
// settles the held coins, removing them permanently.
// PRE: Reservation is confirmed
// POST: Status completed; held amounts settled on their batches
func ExecuteCompleteReservation(ctx context.Context, input CompleteReservationInput, deps CompleteReservationDeps) error {
	res, err := deps.ReservationStore.GetByID(ctx, input.ReservationID)
	if err != nil {
		return ErrReservationNotFound
	}
	if err := res.Complete(); err != nil {
		return err
	}
	if err := deps.ReservationStore.Save(ctx, res); err != nil {
		return err
	}

	if res.CoinsUsed > 0 {
		spends, err := deps.TransactionStore.ListByReferenceID(ctx, res.ID)
		if err != nil {
			return err
		}
		for _, tx := range spends {
			if tx.Type != coin.TxSpend || tx.Amount >= 0 {
				continue
			}
			if err := deps.LedgerStore.Settle(ctx, tx.LedgerID, -tx.Amount); err != nil {
				slog.Error("reservation_event", "event", "settle_failed", "reservation_id", res.ID, "ledger_id", tx.LedgerID, "error", err.Error())
			}
		}
	}

	slog.Info("reservation_event", "event", "reservation_completed", "reservation_id", res.ID, "executor_id", input.ExecutorID)
	return nil
}

// ReservationStoreForSweep lists confirmed reservations past their time.
type ReservationStoreForSweep interface {
	ReservationStoreForCancel
	ListConfirmedBefore(ctx context.Context, cutoff time.Time) ([]reservation.Reservation, error)
}

// CompleteOverdueDeps holds dependencies for the completion sweep.
type CompleteOverdueDeps struct {
	ReservationStore ReservationStoreForSweep
	LedgerStore      LedgerStoreForSettle
	TransactionStore TransactionStoreForCancel
	Now              func() time.Time
}

// ExecuteCompleteOverdueReservations completes every confirmed reservation
// whose time has passed. Blocks are skipped.
// POST: Returns how many reservations were completed
func ExecuteCompleteOverdueReservations(ctx context.Context, deps CompleteOverdueDeps) (int, error) {
	overdue, err := deps.ReservationStore.ListConfirmedBefore(ctx, deps.Now())
	if err != nil {
		return 0, err
	}

	completed := 0
	for _, res := range overdue {
		if res.IsBlocked {
			continue
		}
		err := ExecuteCompleteReservation(ctx, CompleteReservationInput{ReservationID: res.ID, ExecutorID: "system"}, CompleteReservationDeps{
			ReservationStore: deps.ReservationStore,
			LedgerStore:      deps.LedgerStore,
			TransactionStore: deps.TransactionStore,
			Now:              deps.Now,
		})
		if err != nil {
			slog.Error("reservation_event", "event", "sweep_complete_failed", "reservation_id", res.ID, "error", err.Error())
			continue
		}
		completed++
	}
	return completed, nil
}
