package settings

import (
	"errors"
	"strconv"
	"time"
)

// Well-known system setting keys.
const (
	KeyCancelCutoffHours = "reservation_cancel_cutoff_hours"
	KeyCheckInBonusCoins = "checkin_bonus_coins"
	KeyDefaultExpiryDays = "coin_default_expiry_days"
	KeyCoinGrantPresets  = "coin_grant_presets"
)

// Defaults applied when a setting row is absent.
const (
	DefaultCancelCutoffHours = 24
	DefaultCheckInBonusCoins = 0
	DefaultExpiryDays        = 90
)

// Domain errors
var (
	ErrEmptyKey       = errors.New("setting key is required")
	ErrEmptyDate      = errors.New("closure date is required")
	ErrInvalidWeekday = errors.New("weekday must be a valid day of the week")
	ErrDuplicateDate  = errors.New("a closure already exists for that date")
)

// Weekday constants
const (
	Monday    = "monday"
	Tuesday   = "tuesday"
	Wednesday = "wednesday"
	Thursday  = "thursday"
	Friday    = "friday"
	Saturday  = "saturday"
	Sunday    = "sunday"
)

// ValidWeekdays contains all valid weekday values.
var ValidWeekdays = []string{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// BusinessHours is the opening window for one weekday.
type BusinessHours struct {
	ID        string
	Weekday   string
	OpenTime  string // HH:MM
	CloseTime string // HH:MM
	Closed    bool
}

// Validate checks if the BusinessHours has valid data.
// PRE: BusinessHours struct is populated
// POST: Returns nil if valid, error otherwise
func (h *BusinessHours) Validate() error {
	if !IsValidWeekday(h.Weekday) {
		return ErrInvalidWeekday
	}
	if h.Closed {
		return nil
	}
	if h.OpenTime == "" || h.CloseTime == "" {
		return errors.New("open and close times are required unless closed")
	}
	if h.OpenTime >= h.CloseTime {
		return errors.New("open time must be before close time")
	}
	return nil
}

// Contains reports whether a HH:MM time falls inside the opening window.
// The window is [open, close).
// INVARIANT: BusinessHours fields are not mutated
func (h *BusinessHours) Contains(hhmm string) bool {
	if h.Closed {
		return false
	}
	return hhmm >= h.OpenTime && hhmm < h.CloseTime
}

// Closure is an admin-declared day the gym is shut.
type Closure struct {
	ID        string
	Date      string // YYYY-MM-DD, unique
	Reason    string
	CreatedAt time.Time
}

// Validate checks if the Closure has valid data.
// PRE: Closure struct is populated
// POST: Returns nil if valid, error otherwise
func (c *Closure) Validate() error {
	if c.Date == "" {
		return ErrEmptyDate
	}
	if _, err := time.Parse("2006-01-02", c.Date); err != nil {
		return errors.New("closure date must be YYYY-MM-DD")
	}
	return nil
}

// Setting is one admin-managed key/value configuration row.
type Setting struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

// Validate checks if the Setting has valid data.
// PRE: Setting struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Setting) Validate() error {
	if s.Key == "" {
		return ErrEmptyKey
	}
	return nil
}

// IntValue parses the setting value as an int, falling back to def on
// absence or parse failure.
// INVARIANT: Setting fields are not mutated
func (s *Setting) IntValue(def int) int {
	if s.Value == "" {
		return def
	}
	n, err := strconv.Atoi(s.Value)
	if err != nil {
		return def
	}
	return n
}

// IsValidWeekday reports whether day is a recognized weekday string.
func IsValidWeekday(day string) bool {
	for _, d := range ValidWeekdays {
		if d == day {
			return true
		}
	}
	return false
}

// WeekdayOf maps a calendar date (YYYY-MM-DD) to its weekday string.
func WeekdayOf(date string) (string, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", errors.New("date must be YYYY-MM-DD")
	}
	switch t.Weekday() {
	case time.Monday:
		return Monday, nil
	case time.Tuesday:
		return Tuesday, nil
	case time.Wednesday:
		return Wednesday, nil
	case time.Thursday:
		return Thursday, nil
	case time.Friday:
		return Friday, nil
	case time.Saturday:
		return Saturday, nil
	default:
		return Sunday, nil
	}
}
