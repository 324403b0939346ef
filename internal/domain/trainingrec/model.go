package trainingrec

import (
	"errors"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxContentLength = 2000
)

// Kind constants
const (
	KindDaily   = "daily"
	KindMonthly = "monthly"
)

// Domain errors
var (
	ErrEmptyProfileID = errors.New("training record profile ID is required")
	ErrEmptyMentorID  = errors.New("training record mentor ID is required")
	ErrEmptyContent   = errors.New("training record content cannot be empty")
	ErrInvalidKind    = errors.New("kind must be 'daily' or 'monthly'")
)

// Record is a free-text training note written by a mentor for a member.
// RecordDate is YYYY-MM-DD for daily records and YYYY-MM for monthly ones.
type Record struct {
	ID         string
	ProfileID  string
	MentorID   string
	Kind       string
	Content    string
	RecordDate string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Validate checks if the Record has valid data.
// PRE: Record struct is populated
// POST: Returns nil if valid, error otherwise
func (r *Record) Validate() error {
	if r.ProfileID == "" {
		return ErrEmptyProfileID
	}
	if r.MentorID == "" {
		return ErrEmptyMentorID
	}
	if r.Content == "" {
		return ErrEmptyContent
	}
	if len(r.Content) > MaxContentLength {
		return errors.New("training record content cannot exceed 2000 characters")
	}
	if r.Kind != KindDaily && r.Kind != KindMonthly {
		return ErrInvalidKind
	}
	layout := "2006-01-02"
	if r.Kind == KindMonthly {
		layout = "2006-01"
	}
	if _, err := time.Parse(layout, r.RecordDate); err != nil {
		return errors.New("record date format is invalid")
	}
	if r.CreatedAt.IsZero() {
		return errors.New("created_at must be set")
	}
	return nil
}
