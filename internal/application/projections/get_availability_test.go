package projections

import (
	"context"
	"reflect"
	"testing"
	"time"

	"stella/internal/domain/account"
	"stella/internal/domain/reservation"
	"stella/internal/domain/settings"
	"stella/internal/domain/shift"
)

// 2025-06-16 is a Monday.
const mondayDate = "2025-06-16"

func availabilityDeps() (GetAvailabilityDeps, *mockReservationStore) {
	conf := &mockSettingsStore{hours: map[string]settings.BusinessHours{
		settings.Monday: {ID: "h-mon", Weekday: settings.Monday, OpenTime: "09:00", CloseTime: "13:00"},
	}}
	shifts := &mockShiftStore{shifts: []shift.Shift{
		{ID: "s-1", StaffID: "mentor-1", RoleKind: shift.KindMentor, Weekday: settings.Monday, StartTime: "09:00", EndTime: "12:00"},
	}}
	reservations := &mockReservationStore{}
	accounts := &mockAccountStore{accounts: map[string]account.Account{
		"mentor-1": {ID: "mentor-1", Email: "mentor@example.com", Role: account.RoleMentor},
	}}
	return GetAvailabilityDeps{
		SettingsStore:    conf,
		ShiftStore:       shifts,
		ReservationStore: reservations,
		AccountStore:     accounts,
	}, reservations
}

func TestQueryGetAvailability_OpenSlots(t *testing.T) {
	deps, _ := availabilityDeps()

	result, err := QueryGetAvailability(context.Background(), GetAvailabilityQuery{Date: mondayDate}, deps)
	if err != nil {
		t.Fatalf("QueryGetAvailability: %v", err)
	}
	if result.Closed {
		t.Fatal("Monday must be open")
	}
	if len(result.Mentors) != 1 {
		t.Fatalf("mentors = %d, want 1", len(result.Mentors))
	}
	// Shift covers 09:00-12:00 within 09:00-13:00 hours.
	want := []string{"09:00", "10:00", "11:00"}
	if !reflect.DeepEqual(result.Mentors[0].Slots, want) {
		t.Errorf("slots = %v, want %v", result.Mentors[0].Slots, want)
	}
}

func TestQueryGetAvailability_TakenSlotRemoved(t *testing.T) {
	deps, reservations := availabilityDeps()
	slot, _ := time.Parse("2006-01-02 15:04", mondayDate+" 10:00")
	reservations.reservations = append(reservations.reservations, reservation.Reservation{
		ID:         "res-1",
		ProfileID:  "prof-1",
		MentorID:   "mentor-1",
		ReservedAt: slot,
		Status:     reservation.StatusConfirmed,
		CoinsUsed:  1,
	})

	result, err := QueryGetAvailability(context.Background(), GetAvailabilityQuery{Date: mondayDate}, deps)
	if err != nil {
		t.Fatalf("QueryGetAvailability: %v", err)
	}
	want := []string{"09:00", "11:00"}
	if !reflect.DeepEqual(result.Mentors[0].Slots, want) {
		t.Errorf("slots = %v, want %v (10:00 is taken)", result.Mentors[0].Slots, want)
	}
}

func TestQueryGetAvailability_CancelledReservationFreesSlot(t *testing.T) {
	deps, reservations := availabilityDeps()
	slot, _ := time.Parse("2006-01-02 15:04", mondayDate+" 10:00")
	reservations.reservations = append(reservations.reservations, reservation.Reservation{
		ID:         "res-1",
		ProfileID:  "prof-1",
		MentorID:   "mentor-1",
		ReservedAt: slot,
		Status:     reservation.StatusCancelled,
	})

	result, err := QueryGetAvailability(context.Background(), GetAvailabilityQuery{Date: mondayDate}, deps)
	if err != nil {
		t.Fatalf("QueryGetAvailability: %v", err)
	}
	want := []string{"09:00", "10:00", "11:00"}
	if !reflect.DeepEqual(result.Mentors[0].Slots, want) {
		t.Errorf("slots = %v, want %v (cancelled bookings free the slot)", result.Mentors[0].Slots, want)
	}
}

func TestQueryGetAvailability_AllDayBlockHidesMentor(t *testing.T) {
	deps, reservations := availabilityDeps()
	day, _ := time.Parse("2006-01-02", mondayDate)
	reservations.reservations = append(reservations.reservations, reservation.Reservation{
		ID:            "block-1",
		MentorID:      "mentor-1",
		ReservedAt:    day,
		Status:        reservation.StatusConfirmed,
		IsBlocked:     true,
		IsAllDayBlock: true,
	})

	result, err := QueryGetAvailability(context.Background(), GetAvailabilityQuery{Date: mondayDate}, deps)
	if err != nil {
		t.Fatalf("QueryGetAvailability: %v", err)
	}
	if len(result.Mentors) != 0 {
		t.Errorf("mentors = %d, want 0 under an all-day block", len(result.Mentors))
	}
}

func TestQueryGetAvailability_ClosureDay(t *testing.T) {
	deps, _ := availabilityDeps()
	deps.SettingsStore.(*mockSettingsStore).closures = map[string]settings.Closure{
		mondayDate: {ID: "c-1", Date: mondayDate, Reason: "maintenance"},
	}

	result, err := QueryGetAvailability(context.Background(), GetAvailabilityQuery{Date: mondayDate}, deps)
	if err != nil {
		t.Fatalf("QueryGetAvailability: %v", err)
	}
	if !result.Closed || result.Reason != "maintenance" {
		t.Errorf("result = %+v, want closed for maintenance", result)
	}
}

func TestQueryGetAvailability_WeekdayClosed(t *testing.T) {
	deps, _ := availabilityDeps()
	deps.SettingsStore.(*mockSettingsStore).hours[settings.Monday] = settings.BusinessHours{
		ID: "h-mon", Weekday: settings.Monday, Closed: true,
	}

	result, err := QueryGetAvailability(context.Background(), GetAvailabilityQuery{Date: mondayDate}, deps)
	if err != nil {
		t.Fatalf("QueryGetAvailability: %v", err)
	}
	if !result.Closed {
		t.Error("a closed weekday must report closed")
	}
}

func TestQueryGetAvailability_SplitShift(t *testing.T) {
	deps, _ := availabilityDeps()
	store := deps.ShiftStore.(*mockShiftStore)
	store.shifts = []shift.Shift{
		{ID: "s-1", StaffID: "mentor-1", RoleKind: shift.KindMentor, Weekday: settings.Monday, StartTime: "09:00", EndTime: "10:00"},
		{ID: "s-2", StaffID: "mentor-1", RoleKind: shift.KindMentor, Weekday: settings.Monday, StartTime: "11:00", EndTime: "13:00"},
	}

	result, err := QueryGetAvailability(context.Background(), GetAvailabilityQuery{Date: mondayDate}, deps)
	if err != nil {
		t.Fatalf("QueryGetAvailability: %v", err)
	}
	want := []string{"09:00", "11:00", "12:00"}
	if !reflect.DeepEqual(result.Mentors[0].Slots, want) {
		t.Errorf("slots = %v, want %v (gap between split shifts excluded)", result.Mentors[0].Slots, want)
	}
}

func TestQueryGetAvailability_BadInput(t *testing.T) {
	deps, _ := availabilityDeps()

	if _, err := QueryGetAvailability(context.Background(), GetAvailabilityQuery{Date: "June 16"}, deps); err == nil {
		t.Error("expected error for a malformed date")
	}
	if _, err := QueryGetAvailability(context.Background(), GetAvailabilityQuery{Date: mondayDate, RoleKind: "janitor"}, deps); err == nil {
		t.Error("expected error for an unknown role kind")
	}
}
