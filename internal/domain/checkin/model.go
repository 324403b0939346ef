package checkin

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"
)

// CodeTTL is how long a verification code remains valid after issuance.
const CodeTTL = 5 * time.Minute

// Check-in method constants
const (
	MethodSelf   = "self"
	MethodCode   = "code"
	MethodManual = "manual"
)

// ValidMethods contains all valid check-in methods.
var ValidMethods = []string{MethodSelf, MethodCode, MethodManual}

// Domain errors
var (
	ErrCodeUsed    = errors.New("verification code has already been used")
	ErrCodeExpired = errors.New("verification code has expired")
)

// VerificationCode is a short-lived, single-use numeric code a member
// presents at the front desk. At most one active code exists per profile;
// issuing a new code replaces any prior unexpired one.
type VerificationCode struct {
	ID        string
	ProfileID string
	Code      string // 6 digits
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// IsExpired returns true if the code has expired at the given instant.
// INVARIANT: Code fields are not mutated
func (c *VerificationCode) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Consume marks the code as used so it cannot be replayed.
// PRE: Code is unused and unexpired
// POST: Used is true
func (c *VerificationCode) Consume(now time.Time) error {
	if c.Used {
		return ErrCodeUsed
	}
	if c.IsExpired(now) {
		return ErrCodeExpired
	}
	c.Used = true
	return nil
}

// GenerateCode produces a random 6-digit numeric code, zero-padded.
// POST: Returns a string of exactly 6 digits
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Log is the immutable record of one completed check-in.
type Log struct {
	ID          string
	ProfileID   string
	PerformedBy string // account ID of whoever executed the check-in
	Method      string
	BonusCoins  int
	CheckedInAt time.Time
}

// Validate checks if the Log has valid data.
// PRE: Log struct is populated
// POST: Returns nil if valid, error otherwise
func (l *Log) Validate() error {
	if l.ProfileID == "" {
		return errors.New("check-in profile ID is required")
	}
	if l.PerformedBy == "" {
		return errors.New("check-in performer is required")
	}
	if !isValidMethod(l.Method) {
		return errors.New("method must be 'self', 'code', or 'manual'")
	}
	if l.BonusCoins < 0 {
		return errors.New("bonus coins cannot be negative")
	}
	if l.CheckedInAt.IsZero() {
		return errors.New("checked_in_at must be set")
	}
	return nil
}

func isValidMethod(m string) bool {
	for _, v := range ValidMethods {
		if v == m {
			return true
		}
	}
	return false
}
