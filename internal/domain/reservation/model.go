package reservation

import (
	"errors"
	"time"
)

// Status constants
const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// Domain errors
var (
	ErrEmptyProfileID = errors.New("reservation profile ID is required")
	ErrEmptyMentorID  = errors.New("reservation mentor ID is required")
	ErrNotConfirmed   = errors.New("reservation is not confirmed")
	ErrCutoffPassed   = errors.New("the cancellation window for this reservation has closed")
	ErrNotBlocked     = errors.New("reservation is not a block")
)

// Reservation is a booked session consuming coins, or a staff-created block.
// Blocks have no ProfileID and bypass coin logic entirely.
// State machine: confirmed -> cancelled | completed.
type Reservation struct {
	ID            string
	ProfileID     string // empty for staff blocks
	MentorID      string
	ReservedAt    time.Time
	Status        string
	CoinsUsed     int
	IsBlocked     bool
	IsAllDayBlock bool
	BlockReason   string
	CancelReason  string
	CreatedAt     time.Time
}

// Validate checks if the Reservation has valid data.
// PRE: Reservation struct is populated
// POST: Returns nil if valid, error otherwise
func (r *Reservation) Validate() error {
	if !r.IsBlocked && r.ProfileID == "" {
		return ErrEmptyProfileID
	}
	if r.MentorID == "" {
		return ErrEmptyMentorID
	}
	if r.ReservedAt.IsZero() {
		return errors.New("reserved_at must be set")
	}
	if r.Status != StatusConfirmed && r.Status != StatusCancelled && r.Status != StatusCompleted {
		return errors.New("status must be 'confirmed', 'cancelled', or 'completed'")
	}
	if r.CoinsUsed < 0 {
		return errors.New("coins_used cannot be negative")
	}
	if r.IsBlocked && r.CoinsUsed != 0 {
		return errors.New("blocks cannot consume coins")
	}
	return nil
}

// CanCancel reports whether the reservation may still be cancelled at the
// given instant. Cancellation closes `cutoff` before the reserved time; a
// request landing exactly on the cutoff boundary is still allowed.
// INVARIANT: Reservation fields are not mutated
func (r *Reservation) CanCancel(now time.Time, cutoff time.Duration) bool {
	if r.Status != StatusConfirmed {
		return false
	}
	deadline := r.ReservedAt.Add(-cutoff)
	return !now.After(deadline)
}

// Cancel transitions the reservation to cancelled.
// PRE: Status is confirmed
// POST: Status is cancelled, CancelReason recorded
func (r *Reservation) Cancel(reason string) error {
	if r.Status != StatusConfirmed {
		return ErrNotConfirmed
	}
	r.Status = StatusCancelled
	r.CancelReason = reason
	return nil
}

// Complete transitions the reservation to completed.
// PRE: Status is confirmed
// POST: Status is completed
func (r *Reservation) Complete() error {
	if r.Status != StatusConfirmed {
		return ErrNotConfirmed
	}
	r.Status = StatusCompleted
	return nil
}
