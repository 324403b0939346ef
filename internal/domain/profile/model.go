package profile

import (
	"errors"
	"strings"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength = 100
)

// Status constants
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
	StatusInactive  = "inactive"
)

// Rank constants, ordered lowest to highest.
const (
	RankBronze   = "bronze"
	RankSilver   = "silver"
	RankGold     = "gold"
	RankPlatinum = "platinum"
	RankDiamond  = "diamond"
)

// ValidRanks contains all valid rank values, lowest first.
var ValidRanks = []string{RankBronze, RankSilver, RankGold, RankPlatinum, RankDiamond}

// Domain errors
var (
	ErrAlreadySuspended = errors.New("profile is already suspended")
	ErrNotSuspended     = errors.New("profile is not suspended")
	ErrAlreadyInactive  = errors.New("profile is already inactive")
)

// Profile holds the member-facing record for one person.
// Profiles are never hard-deleted; Status flips to inactive instead.
type Profile struct {
	ID         string
	AccountID  string
	Name       string
	Email      string
	Status     string
	Rank       string
	LineUserID string
}

// Validate checks if the Profile has valid data.
// PRE: Profile struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: Email must contain '@', Name must not be empty
func (p *Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("profile name cannot be empty")
	}
	if len(p.Name) > MaxNameLength {
		return errors.New("profile name cannot exceed 100 characters")
	}
	if !strings.Contains(p.Email, "@") {
		return errors.New("profile email must be valid")
	}
	if p.Status != StatusActive && p.Status != StatusSuspended && p.Status != StatusInactive {
		return errors.New("status must be 'active', 'suspended', or 'inactive'")
	}
	if !isValidRank(p.Rank) {
		return errors.New("rank must be one of: bronze, silver, gold, platinum, diamond")
	}
	return nil
}

// IsActive returns true if the profile is currently active.
// INVARIANT: Status field is not mutated
func (p *Profile) IsActive() bool {
	return p.Status == StatusActive
}

// IsSuspended returns true if the profile is suspended.
// INVARIANT: Status field is not mutated
func (p *Profile) IsSuspended() bool {
	return p.Status == StatusSuspended
}

// Suspend sets the profile status to suspended.
// PRE: Profile is not already suspended
// POST: Status is set to suspended
func (p *Profile) Suspend() error {
	if p.Status == StatusSuspended {
		return ErrAlreadySuspended
	}
	p.Status = StatusSuspended
	return nil
}

// Reinstate sets a suspended profile back to active.
// PRE: Profile is currently suspended
// POST: Status is set to active
func (p *Profile) Reinstate() error {
	if p.Status != StatusSuspended {
		return ErrNotSuspended
	}
	p.Status = StatusActive
	return nil
}

// Deactivate sets the profile status to inactive. Used in place of deletion.
// PRE: Profile is not already inactive
// POST: Status is set to inactive
func (p *Profile) Deactivate() error {
	if p.Status == StatusInactive {
		return ErrAlreadyInactive
	}
	p.Status = StatusInactive
	return nil
}

func isValidRank(rank string) bool {
	for _, r := range ValidRanks {
		if r == rank {
			return true
		}
	}
	return false
}
