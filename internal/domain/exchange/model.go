package exchange

import (
	"errors"
	"time"
)

// Request status constants
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusCompleted = "completed"
	StatusRejected  = "rejected"
)

// Domain errors
var (
	ErrEmptyName         = errors.New("item name is required")
	ErrInvalidCost       = errors.New("item cost must be positive")
	ErrItemInactive      = errors.New("item is not available for exchange")
	ErrInvalidTransition = errors.New("invalid exchange request status transition")
)

// Item is one entry in the redeemable goods/benefits catalog.
type Item struct {
	ID           string
	Name         string
	CostCoins    int
	Active       bool
	DisplayOrder int
	CreatedAt    time.Time
}

// Validate checks if the Item has valid data.
// PRE: Item struct is populated
// POST: Returns nil if valid, error otherwise
func (i *Item) Validate() error {
	if i.Name == "" {
		return ErrEmptyName
	}
	if i.CostCoins <= 0 {
		return ErrInvalidCost
	}
	return nil
}

// allowedTransitions maps each status to the statuses it may move to.
// pending -> approved | rejected ; approved -> completed | rejected.
var allowedTransitions = map[string][]string{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusCompleted, StatusRejected},
}

// Request is a member's redemption request against a catalog item.
// The coin hold is placed at creation; completion settles it, rejection
// releases it.
type Request struct {
	ID        string
	ProfileID string
	ItemID    string
	ItemName  string // denormalized for history display
	CostCoins int
	Status    string
	DecidedBy string
	CreatedAt time.Time
	DecidedAt time.Time
}

// Validate checks if the Request has valid data.
// PRE: Request struct is populated
// POST: Returns nil if valid, error otherwise
func (r *Request) Validate() error {
	if r.ProfileID == "" {
		return errors.New("exchange request profile ID is required")
	}
	if r.ItemID == "" {
		return errors.New("exchange request item ID is required")
	}
	if r.CostCoins <= 0 {
		return ErrInvalidCost
	}
	if !isValidStatus(r.Status) {
		return errors.New("status must be 'pending', 'approved', 'completed', or 'rejected'")
	}
	return nil
}

// IsOpen returns true while the request still holds coins.
// INVARIANT: Request fields are not mutated
func (r *Request) IsOpen() bool {
	return r.Status == StatusPending || r.Status == StatusApproved
}

// Transition moves the request to a new status if the state machine allows it.
// PRE: next is a valid status, decidedBy is the deciding staff account
// POST: Status, DecidedBy, and DecidedAt are updated
func (r *Request) Transition(next, decidedBy string, now time.Time) error {
	for _, allowed := range allowedTransitions[r.Status] {
		if allowed == next {
			r.Status = next
			r.DecidedBy = decidedBy
			r.DecidedAt = now
			return nil
		}
	}
	return ErrInvalidTransition
}

func isValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusApproved, StatusCompleted, StatusRejected:
		return true
	}
	return false
}
