package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"stella/internal/domain/account"
	"stella/internal/domain/tier"
)

// AccountStoreForTier defines the account store interface needed by AssignTier.
type AccountStoreForTier interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// TierStoreForAssign defines the tier store interface needed by AssignTier.
type TierStoreForAssign interface {
	GetByID(ctx context.Context, id string) (tier.Tier, error)
}

// AssignTierInput carries input for the tier assignment orchestrator.
type AssignTierInput struct {
	AccountID  string
	TierID     string // empty unlinks the tier
	ExecutorID string
}

// AssignTierDeps holds dependencies for AssignTier.
type AssignTierDeps struct {
	AccountStore AccountStoreForTier
	TierStore    TierStoreForAssign
}

// ErrAccountNotFound is returned when the target account does not exist.
var ErrAccountNotFound = errors.New("account not found")

// ExecuteAssignTier links a staff account to a permission tier. Member
// accounts are promoted to mentor; admin and manager roles are preserved.
// PRE: TierID references an existing tier, or is empty to unlink
// POST: Account's TierID updated and role adjusted
func ExecuteAssignTier(ctx context.Context, input AssignTierInput, deps AssignTierDeps) error {
	acct, err := deps.AccountStore.GetByID(ctx, input.AccountID)
	if err != nil {
		return ErrAccountNotFound
	}

	if input.TierID != "" {
		if _, err := deps.TierStore.GetByID(ctx, input.TierID); err != nil {
			return errors.New("tier not found")
		}
	}

	acct.AssignTier(input.TierID)
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return err
	}

	slog.Info("account_event", "event", "tier_assigned", "account_id", acct.ID, "tier_id", input.TierID, "role", acct.Role, "executor_id", input.ExecutorID)
	return nil
}
