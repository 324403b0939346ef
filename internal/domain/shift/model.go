package shift

import (
	"errors"

	"stella/internal/domain/settings"
)

// RoleKind constants distinguish the two bookable staff pools.
const (
	KindMentor  = "mentor"
	KindTrainer = "trainer"
)

// Domain errors
var (
	ErrEmptyStaffID   = errors.New("shift staff ID is required")
	ErrInvalidKind    = errors.New("role kind must be 'mentor' or 'trainer'")
	ErrInvalidWeekday = errors.New("weekday must be a valid day of the week")
	ErrEmptyStartTime = errors.New("start time cannot be empty")
	ErrEmptyEndTime   = errors.New("end time cannot be empty")
)

// Shift is a recurring weekly working window for one staff member.
// A staff member can hold several shift rows for the same weekday.
type Shift struct {
	ID        string
	StaffID   string
	RoleKind  string
	Weekday   string
	StartTime string // HH:MM
	EndTime   string // HH:MM
}

// Validate checks if the Shift has valid data.
// PRE: Shift struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Shift) Validate() error {
	if s.StaffID == "" {
		return ErrEmptyStaffID
	}
	if s.RoleKind != KindMentor && s.RoleKind != KindTrainer {
		return ErrInvalidKind
	}
	if !settings.IsValidWeekday(s.Weekday) {
		return ErrInvalidWeekday
	}
	if s.StartTime == "" {
		return ErrEmptyStartTime
	}
	if s.EndTime == "" {
		return ErrEmptyEndTime
	}
	if s.StartTime >= s.EndTime {
		return errors.New("start time must be before end time")
	}
	return nil
}

// ContainsTime reports whether a HH:MM time falls inside the shift.
// The interval is [start, end): the end minute itself is not covered.
// INVARIANT: Shift fields are not mutated
func (s *Shift) ContainsTime(hhmm string) bool {
	return hhmm >= s.StartTime && hhmm < s.EndTime
}
