package orchestrators

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"stella/internal/domain/account"
	"stella/internal/domain/coin"
	"stella/internal/domain/outbox"
	"stella/internal/domain/reservation"
)

// ReservationStoreForReserve defines the reservation store interface needed by Reserve.
type ReservationStoreForReserve interface {
	Save(ctx context.Context, r reservation.Reservation) error
	HasConflict(ctx context.Context, mentorID string, reservedAt time.Time) (bool, error)
}

// LedgerStoreForReserve defines the ledger store interface needed by Reserve.
type LedgerStoreForReserve interface {
	ListSpendableByProfileID(ctx context.Context, profileID string, now time.Time) ([]coin.Ledger, error)
	Hold(ctx context.Context, id string, amount int) error
	Release(ctx context.Context, id string, amount int) error
}

// AccountStoreForReserve verifies the booked mentor.
type AccountStoreForReserve interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
}

// OutboxStoreForReserve enqueues the LINE confirmation push.
type OutboxStoreForReserve interface {
	Save(ctx context.Context, e outbox.Entry) error
}

// ReserveInput carries input for the reserve orchestrator.
type ReserveInput struct {
	ProfileID  string
	MentorID   string
	ReservedAt time.Time
	CoinCost   int
}

// ReserveResult carries the booked reservation.
type ReserveResult struct {
	ReservationID string
	CoinsHeld     int
}

// ReserveDeps holds dependencies for Reserve.
type ReserveDeps struct {
	ReservationStore ReservationStoreForReserve
	LedgerStore      LedgerStoreForReserve
	ProfileStore     ProfileStoreForGrant
	AccountStore     AccountStoreForReserve
	TransactionStore TransactionStoreForGrant
	OutboxStore      OutboxStoreForReserve // optional
	GenerateID       func() string
	Now              func() time.Time
}

var (
	ErrSlotTaken       = errors.New("the mentor is already booked at that time")
	ErrMentorNotFound  = errors.New("mentor not found")
	ErrPastReservation = errors.New("cannot reserve a time in the past")
)

// heldPortion records how much was held against one ledger so a failed
// booking can be unwound.
type heldPortion struct {
	LedgerID string
	Amount   int
}

// holdAcrossLedgers places holds totalling cost, consuming the soonest
// expiring batches first. On any failure the holds already placed are
// released before returning.
// PRE: cost > 0
// POST: On success, sum of returned portions equals cost
func holdAcrossLedgers(ctx context.Context, ledgers LedgerStoreForReserve, profileID string, cost int, now time.Time) ([]heldPortion, error) {
	spendable, err := ledgers.ListSpendableByProfileID(ctx, profileID, now)
	if err != nil {
		return nil, err
	}

	var held []heldPortion
	remaining := cost
	for _, l := range spendable {
		if remaining == 0 {
			break
		}
		portion := l.AmountCurrent
		if portion > remaining {
			portion = remaining
		}
		if portion == 0 {
			continue
		}
		if err := ledgers.Hold(ctx, l.ID, portion); err != nil {
			// Concurrent spend can shrink the batch between list and hold;
			// unwind and report insufficient funds.
			for _, h := range held {
				_ = ledgers.Release(ctx, h.LedgerID, h.Amount)
			}
			if errors.Is(err, coin.ErrInsufficientBalance) {
				return nil, coin.ErrInsufficientBalance
			}
			return nil, err
		}
		held = append(held, heldPortion{LedgerID: l.ID, Amount: portion})
		remaining -= portion
	}

	if remaining > 0 {
		for _, h := range held {
			_ = ledgers.Release(ctx, h.LedgerID, h.Amount)
		}
		return nil, coin.ErrInsufficientBalance
	}
	return held, nil
}

// ExecuteReserve books a session: validates the member and mentor, checks
// the slot, and holds the coin cost across the member's batches.
// PRE: Profile is active; ReservedAt is in the future
// POST: Confirmed reservation saved; CoinCost held; spend transactions
// reference the reservation for later refund
// INVARIANT: Soonest-expiring coins are consumed first
func ExecuteReserve(ctx context.Context, input ReserveInput, deps ReserveDeps) (ReserveResult, error) {
	now := deps.Now()
	if !input.ReservedAt.After(now) {
		return ReserveResult{}, ErrPastReservation
	}
	if input.CoinCost <= 0 {
		return ReserveResult{}, coin.ErrNegativeAmount
	}

	p, err := deps.ProfileStore.GetByID(ctx, input.ProfileID)
	if err != nil {
		return ReserveResult{}, ErrProfileNotFound
	}
	if !p.IsActive() {
		return ReserveResult{}, ErrProfileSuspended
	}

	mentor, err := deps.AccountStore.GetByID(ctx, input.MentorID)
	if err != nil || !mentor.IsStaff() {
		return ReserveResult{}, ErrMentorNotFound
	}

	conflict, err := deps.ReservationStore.HasConflict(ctx, input.MentorID, input.ReservedAt)
	if err != nil {
		return ReserveResult{}, err
	}
	if conflict {
		return ReserveResult{}, ErrSlotTaken
	}

	held, err := holdAcrossLedgers(ctx, deps.LedgerStore, input.ProfileID, input.CoinCost, now)
	if err != nil {
		return ReserveResult{}, err
	}

	res := reservation.Reservation{
		ID:         deps.GenerateID(),
		ProfileID:  input.ProfileID,
		MentorID:   input.MentorID,
		ReservedAt: input.ReservedAt,
		Status:     reservation.StatusConfirmed,
		CoinsUsed:  input.CoinCost,
		CreatedAt:  now,
	}
	if err := res.Validate(); err != nil {
		for _, h := range held {
			_ = deps.LedgerStore.Release(ctx, h.LedgerID, h.Amount)
		}
		return ReserveResult{}, err
	}
	if err := deps.ReservationStore.Save(ctx, res); err != nil {
		for _, h := range held {
			_ = deps.LedgerStore.Release(ctx, h.LedgerID, h.Amount)
		}
		return ReserveResult{}, err
	}

	// One spend row per consumed batch, all pointing at the reservation so
	// cancellation can reconstruct the holds.
	for _, h := range held {
		tx := coin.Transaction{
			ID:          deps.GenerateID(),
			ProfileID:   input.ProfileID,
			LedgerID:    h.LedgerID,
			Amount:      -h.Amount,
			Type:        coin.TxSpend,
			ReferenceID: res.ID,
			Reason:      "session reservation",
			CreatedAt:   now,
		}
		if err := deps.TransactionStore.Save(ctx, tx); err != nil {
			slog.Error("reservation_event", "event", "spend_tx_failed", "reservation_id", res.ID, "ledger_id", h.LedgerID, "error", err.Error())
		}
	}

	if deps.OutboxStore != nil && p.LineUserID != "" {
		payload, _ := json.Marshal(map[string]string{
			"line_user_id": p.LineUserID,
			"text":         "Your session on " + input.ReservedAt.Format("2006-01-02 15:04") + " is confirmed.",
		})
		entry := outbox.Entry{
			ID:          deps.GenerateID(),
			ActionType:  outbox.ActionTypeLinePush,
			Payload:     string(payload),
			Status:      outbox.StatusPending,
			MaxAttempts: 5,
			CreatedAt:   now,
		}
		if err := deps.OutboxStore.Save(ctx, entry); err != nil {
			slog.Error("reservation_event", "event", "outbox_enqueue_failed", "reservation_id", res.ID, "error", err.Error())
		}
	}

	slog.Info("reservation_event", "event", "reservation_created", "reservation_id", res.ID, "profile_id", input.ProfileID, "mentor_id", input.MentorID, "coins", input.CoinCost)
	return ReserveResult{ReservationID: res.ID, CoinsHeld: input.CoinCost}, nil
}
