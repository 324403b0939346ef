package orchestrators

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"stella/internal/domain/coin"
	"stella/internal/domain/exchange"
	"stella/internal/domain/outbox"
)

// ItemStoreForExchange defines the catalog store interface needed by the
// exchange orchestrators.
type ItemStoreForExchange interface {
	GetByID(ctx context.Context, id string) (exchange.Item, error)
}

// RequestStoreForExchange defines the request store interface.
type RequestStoreForExchange interface {
	GetByID(ctx context.Context, id string) (exchange.Request, error)
	Save(ctx context.Context, r exchange.Request) error
}

// CreateExchangeInput carries input for a member redemption request.
type CreateExchangeInput struct {
	ProfileID string
	ItemID    string
}

// CreateExchangeResult carries the created request.
type CreateExchangeResult struct {
	RequestID string
	CostCoins int
}

// CreateExchangeDeps holds dependencies for CreateExchange.
type CreateExchangeDeps struct {
	ItemStore        ItemStoreForExchange
	RequestStore     RequestStoreForExchange
	ProfileStore     ProfileStoreForGrant
	LedgerStore      LedgerStoreForReserve
	TransactionStore TransactionStoreForGrant
	GenerateID       func() string
	Now              func() time.Time
}

// ErrItemNotFound is returned when the catalog item does not exist.
var ErrItemNotFound = errors.New("exchange item not found")

// ExecuteCreateExchange opens a redemption request and holds the item cost
// against the member's coin batches.
// PRE: Item is active; profile is active; balance covers the cost
// POST: Pending request saved; cost held; exchange rows reference the request
// INVARIANT: Soonest-expiring coins are consumed first
func ExecuteCreateExchange(ctx context.Context, input CreateExchangeInput, deps CreateExchangeDeps) (CreateExchangeResult, error) {
	p, err := deps.ProfileStore.GetByID(ctx, input.ProfileID)
	if err != nil {
		return CreateExchangeResult{}, ErrProfileNotFound
	}
	if !p.IsActive() {
		return CreateExchangeResult{}, ErrProfileSuspended
	}

	item, err := deps.ItemStore.GetByID(ctx, input.ItemID)
	if err != nil {
		return CreateExchangeResult{}, ErrItemNotFound
	}
	if !item.Active {
		return CreateExchangeResult{}, exchange.ErrItemInactive
	}

	now := deps.Now()
	held, err := holdAcrossLedgers(ctx, deps.LedgerStore, input.ProfileID, item.CostCoins, now)
	if err != nil {
		return CreateExchangeResult{}, err
	}

	req := exchange.Request{
		ID:        deps.GenerateID(),
		ProfileID: input.ProfileID,
		ItemID:    item.ID,
		ItemName:  item.Name,
		CostCoins: item.CostCoins,
		Status:    exchange.StatusPending,
		CreatedAt: now,
	}
	if err := req.Validate(); err != nil {
		for _, h := range held {
			_ = deps.LedgerStore.Release(ctx, h.LedgerID, h.Amount)
		}
		return CreateExchangeResult{}, err
	}
	if err := deps.RequestStore.Save(ctx, req); err != nil {
		for _, h := range held {
			_ = deps.LedgerStore.Release(ctx, h.LedgerID, h.Amount)
		}
		return CreateExchangeResult{}, err
	}

	for _, h := range held {
		tx := coin.Transaction{
			ID:          deps.GenerateID(),
			ProfileID:   input.ProfileID,
			LedgerID:    h.LedgerID,
			Amount:      -h.Amount,
			Type:        coin.TxExchange,
			ReferenceID: req.ID,
			Reason:      "exchange: " + item.Name,
			CreatedAt:   now,
		}
		if err := deps.TransactionStore.Save(ctx, tx); err != nil {
			slog.Error("exchange_event", "event", "exchange_tx_failed", "request_id", req.ID, "error", err.Error())
		}
	}

	slog.Info("exchange_event", "event", "exchange_requested", "request_id", req.ID, "profile_id", input.ProfileID, "item", item.Name, "cost", item.CostCoins)
	return CreateExchangeResult{RequestID: req.ID, CostCoins: item.CostCoins}, nil
}

// DecideExchangeInput carries a staff decision on a pending or approved
// request. Decision is one of approved, completed, rejected.
type DecideExchangeInput struct {
	RequestID string
	Decision  string
	DecidedBy string
}

// DecideExchangeDeps holds dependencies for DecideExchange.
type DecideExchangeDeps struct {
	RequestStore     RequestStoreForExchange
	LedgerStore      LedgerStoreForSettle
	TransactionStore TransactionStoreForCancel
	ProfileStore     ProfileStoreForGrant
	OutboxStore      OutboxStoreForReserve // optional; notifies the member
	GenerateID       func() string
	Now              func() time.Time
}

// ErrRequestNotFound is returned when the exchange request does not exist.
var ErrRequestNotFound = errors.New("exchange request not found")

// ExecuteDecideExchange advances a request through its state machine.
// Completion settles the held coins; rejection releases them with refund
// rows. Approval only moves the status.
// PRE: Decision is a legal transition from the current status
// POST: Request status updated; coin holds settled or released accordingly
func ExecuteDecideExchange(ctx context.Context, input DecideExchangeInput, deps DecideExchangeDeps) error {
	req, err := deps.RequestStore.GetByID(ctx, input.RequestID)
	if err != nil {
		return ErrRequestNotFound
	}

	now := deps.Now()
	if err := req.Transition(input.Decision, input.DecidedBy, now); err != nil {
		return err
	}
	if err := deps.RequestStore.Save(ctx, req); err != nil {
		return err
	}

	switch input.Decision {
	case exchange.StatusCompleted:
		holds, err := deps.TransactionStore.ListByReferenceID(ctx, req.ID)
		if err != nil {
			return err
		}
		for _, tx := range holds {
			if tx.Type != coin.TxExchange || tx.Amount >= 0 {
				continue
			}
			if err := deps.LedgerStore.Settle(ctx, tx.LedgerID, -tx.Amount); err != nil {
				slog.Error("exchange_event", "event", "settle_failed", "request_id", req.ID, "ledger_id", tx.LedgerID, "error", err.Error())
			}
		}
	case exchange.StatusRejected:
		holds, err := deps.TransactionStore.ListByReferenceID(ctx, req.ID)
		if err != nil {
			return err
		}
		for _, tx := range holds {
			if tx.Type != coin.TxExchange || tx.Amount >= 0 {
				continue
			}
			amount := -tx.Amount
			if err := deps.LedgerStore.Release(ctx, tx.LedgerID, amount); err != nil {
				slog.Error("exchange_event", "event", "release_failed", "request_id", req.ID, "ledger_id", tx.LedgerID, "error", err.Error())
				continue
			}
			refund := coin.Transaction{
				ID:          deps.GenerateID(),
				ProfileID:   req.ProfileID,
				LedgerID:    tx.LedgerID,
				Amount:      amount,
				Type:        coin.TxRefund,
				ReferenceID: req.ID,
				Reason:      "exchange rejected",
				CreatedAt:   now,
			}
			if err := deps.TransactionStore.Save(ctx, refund); err != nil {
				slog.Error("exchange_event", "event", "refund_tx_failed", "request_id", req.ID, "error", err.Error())
			}
		}
	}

	// Best-effort member notification through the outbox.
	if deps.OutboxStore != nil && deps.ProfileStore != nil {
		if p, err := deps.ProfileStore.GetByID(ctx, req.ProfileID); err == nil && p.LineUserID != "" {
			payload, _ := json.Marshal(map[string]string{
				"line_user_id": p.LineUserID,
				"text":         "Your exchange for " + req.ItemName + " is now " + req.Status + ".",
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
				slog.Error("exchange_event", "event", "outbox_enqueue_failed", "request_id", req.ID, "error", err.Error())
			}
		}
	}

	slog.Info("exchange_event", "event", "exchange_decided", "request_id", req.ID, "decision", input.Decision, "decided_by", input.DecidedBy)
	return nil
}
