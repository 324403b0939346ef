package tier

import "errors"

// ProtectedLevel is the highest tier; it cannot be edited through the
// settings endpoints.
const ProtectedLevel = 1

// Domain errors
var (
	ErrEmptyName     = errors.New("tier name is required")
	ErrInvalidLevel  = errors.New("tier level must be >= 1")
	ErrTierProtected = errors.New("tier 1 cannot be modified")
)

// Tier is an ordered permission level assigned to staff accounts.
// Level 1 is the highest. Permissions maps category -> action -> allowed.
type Tier struct {
	ID          string
	Level       int
	Name        string
	Permissions map[string]map[string]bool
}

// Validate checks if the Tier has valid data.
// PRE: Tier struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (t *Tier) Validate() error {
	if t.Name == "" {
		return ErrEmptyName
	}
	if t.Level < 1 {
		return ErrInvalidLevel
	}
	return nil
}

// IsProtected returns true if the tier is immutable via the settings UI.
// INVARIANT: Tier fields are not mutated
func (t *Tier) IsProtected() bool {
	return t.Level == ProtectedLevel
}

// Allows reports whether the tier grants the given action in the given
// category. Missing categories or actions deny.
// INVARIANT: Tier fields are not mutated
func (t *Tier) Allows(category, action string) bool {
	actions, ok := t.Permissions[category]
	if !ok {
		return false
	}
	return actions[action]
}
