package projections

import (
	"context"
	"errors"
	"time"

	"stella/internal/domain/account"
	"stella/internal/domain/reservation"
	"stella/internal/domain/settings"
	"stella/internal/domain/shift"
)

// AvailabilitySettingsStore reads business hours and closures.
type AvailabilitySettingsStore interface {
	GetHours(ctx context.Context, weekday string) (settings.BusinessHours, error)
	GetClosureByDate(ctx context.Context, date string) (settings.Closure, error)
}

// AvailabilityShiftStore lists staff shifts for a weekday.
type AvailabilityShiftStore interface {
	ListByKindAndWeekday(ctx context.Context, kind, weekday string) ([]shift.Shift, error)
}

// AvailabilityReservationStore lists existing bookings for a mentor and date.
type AvailabilityReservationStore interface {
	ListByMentorIDAndDate(ctx context.Context, mentorID string, date string) ([]reservation.Reservation, error)
}

// AvailabilityAccountStore resolves shift staff to their accounts.
type AvailabilityAccountStore interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
}

// GetAvailabilityQuery carries input for the availability projection.
type GetAvailabilityQuery struct {
	Date     string // YYYY-MM-DD
	RoleKind string // mentor or trainer
}

// GetAvailabilityDeps holds dependencies for the availability projection.
type GetAvailabilityDeps struct {
	SettingsStore    AvailabilitySettingsStore
	ShiftStore       AvailabilityShiftStore
	ReservationStore AvailabilityReservationStore
	AccountStore     AvailabilityAccountStore
}

// MentorSlots is one bookable staff member with their open HH:MM slots.
type MentorSlots struct {
	MentorID string   `json:"mentor_id"`
	Email    string   `json:"email"`
	Slots    []string `json:"slots"`
}

// AvailabilityResult carries the output of the availability projection.
type AvailabilityResult struct {
	Date    string        `json:"date"`
	Closed  bool          `json:"closed"`
	Reason  string        `json:"reason,omitempty"`
	Mentors []MentorSlots `json:"mentors"`
}

// QueryGetAvailability computes the open one-hour slots per staff member
// for a date: closure days return closed; otherwise slots are the
// intersection of business hours and the member's shifts, minus slots
// already taken by reservations or blocks. An all-day block removes the
// whole day for that mentor.
// PRE: Date is YYYY-MM-DD; RoleKind is mentor or trainer
// POST: Slots are sorted HH:MM strings on the hour
func QueryGetAvailability(ctx context.Context, query GetAvailabilityQuery, deps GetAvailabilityDeps) (AvailabilityResult, error) {
	if _, err := time.Parse("2006-01-02", query.Date); err != nil {
		return AvailabilityResult{}, errors.New("date must be YYYY-MM-DD")
	}
	kind := query.RoleKind
	if kind == "" {
		kind = shift.KindMentor
	}
	if kind != shift.KindMentor && kind != shift.KindTrainer {
		return AvailabilityResult{}, shift.ErrInvalidKind
	}

	result := AvailabilityResult{Date: query.Date, Mentors: []MentorSlots{}}

	if closure, err := deps.SettingsStore.GetClosureByDate(ctx, query.Date); err == nil {
		result.Closed = true
		result.Reason = closure.Reason
		return result, nil
	}

	weekday, err := settings.WeekdayOf(query.Date)
	if err != nil {
		return AvailabilityResult{}, err
	}

	hours, err := deps.SettingsStore.GetHours(ctx, weekday)
	if err != nil || hours.Closed {
		result.Closed = true
		return result, nil
	}

	shifts, err := deps.ShiftStore.ListByKindAndWeekday(ctx, kind, weekday)
	if err != nil {
		return AvailabilityResult{}, err
	}

	// Group multiple shift rows per staff member.
	byStaff := map[string][]shift.Shift{}
	var order []string
	for _, s := range shifts {
		if _, seen := byStaff[s.StaffID]; !seen {
			order = append(order, s.StaffID)
		}
		byStaff[s.StaffID] = append(byStaff[s.StaffID], s)
	}

	for _, staffID := range order {
		acct, err := deps.AccountStore.GetByID(ctx, staffID)
		if err != nil {
			continue
		}

		existing, err := deps.ReservationStore.ListByMentorIDAndDate(ctx, staffID, query.Date)
		if err != nil {
			return AvailabilityResult{}, err
		}

		taken := map[string]bool{}
		blockedAllDay := false
		for _, r := range existing {
			if r.Status != reservation.StatusConfirmed {
				continue
			}
			if r.IsAllDayBlock {
				blockedAllDay = true
				break
			}
			taken[r.ReservedAt.Format("15:04")] = true
		}
		if blockedAllDay {
			continue
		}

		slots := []string{}
		for _, hhmm := range hourlySlots(hours.OpenTime, hours.CloseTime) {
			if taken[hhmm] {
				continue
			}
			covered := false
			for _, s := range byStaff[staffID] {
				if s.ContainsTime(hhmm) {
					covered = true
					break
				}
			}
			if covered {
				slots = append(slots, hhmm)
			}
		}
		if len(slots) == 0 {
			continue
		}
		result.Mentors = append(result.Mentors, MentorSlots{MentorID: staffID, Email: acct.Email, Slots: slots})
	}

	return result, nil
}

// hourlySlots enumerates on-the-hour HH:MM strings in [open, close).
func hourlySlots(open, close string) []string {
	start, err := time.Parse("15:04", open)
	if err != nil {
		return nil
	}
	end, err := time.Parse("15:04", close)
	if err != nil {
		return nil
	}
	// First slot is the top of the opening hour, rounded up.
	if start.Minute() != 0 {
		start = start.Truncate(time.Hour).Add(time.Hour)
	}
	var slots []string
	for t := start; t.Before(end); t = t.Add(time.Hour) {
		slots = append(slots, t.Format("15:04"))
	}
	return slots
}
