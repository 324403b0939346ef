package projections

import (
	"context"
	"database/sql"
	"time"

	coinStore "stella/internal/adapters/storage/coin"
	"stella/internal/domain/account"
	"stella/internal/domain/coin"
	"stella/internal/domain/fitest"
	"stella/internal/domain/notice"
	"stella/internal/domain/profile"
	"stella/internal/domain/reservation"
	"stella/internal/domain/settings"
	"stella/internal/domain/shift"
)

// fixedTime is the reference instant used across projection tests.
var fixedTime = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func fixedNow() time.Time {
	return fixedTime
}

type mockLedgerStore struct {
	ledgers []coin.Ledger
}

func (m *mockLedgerStore) ListByProfileID(ctx context.Context, profileID string) ([]coin.Ledger, error) {
	var list []coin.Ledger
	for _, l := range m.ledgers {
		if l.ProfileID == profileID {
			list = append(list, l)
		}
	}
	return list, nil
}

type mockTxStore struct {
	txs    []coin.Transaction
	totals []coinStore.MonthlyTotal
}

func (m *mockTxStore) ListByProfileID(ctx context.Context, profileID string, filter coinStore.ListFilter) ([]coin.Transaction, error) {
	var list []coin.Transaction
	for _, t := range m.txs {
		if t.ProfileID == profileID {
			list = append(list, t)
		}
	}
	if filter.Offset < len(list) {
		list = list[filter.Offset:]
	} else {
		list = nil
	}
	if filter.Limit > 0 && len(list) > filter.Limit {
		list = list[:filter.Limit]
	}
	return list, nil
}

func (m *mockTxStore) MonthlyTotals(ctx context.Context, profileID string, months int) ([]coinStore.MonthlyTotal, error) {
	return m.totals, nil
}

type mockSettingsStore struct {
	hours    map[string]settings.BusinessHours
	closures map[string]settings.Closure
}

func (m *mockSettingsStore) GetHours(ctx context.Context, weekday string) (settings.BusinessHours, error) {
	if h, ok := m.hours[weekday]; ok {
		return h, nil
	}
	return settings.BusinessHours{}, sql.ErrNoRows
}

func (m *mockSettingsStore) GetClosureByDate(ctx context.Context, date string) (settings.Closure, error) {
	if c, ok := m.closures[date]; ok {
		return c, nil
	}
	return settings.Closure{}, sql.ErrNoRows
}

type mockShiftStore struct {
	shifts []shift.Shift
}

func (m *mockShiftStore) ListByKindAndWeekday(ctx context.Context, kind, weekday string) ([]shift.Shift, error) {
	var list []shift.Shift
	for _, s := range m.shifts {
		if s.RoleKind == kind && s.Weekday == weekday {
			list = append(list, s)
		}
	}
	return list, nil
}

type mockReservationStore struct {
	reservations []reservation.Reservation
}

func (m *mockReservationStore) ListByMentorIDAndDate(ctx context.Context, mentorID string, date string) ([]reservation.Reservation, error) {
	var list []reservation.Reservation
	for _, r := range m.reservations {
		if r.MentorID == mentorID && r.ReservedAt.Format("2006-01-02") == date {
			list = append(list, r)
		}
	}
	return list, nil
}

// ListByProfileID returns newest first, matching the SQL store ordering.
func (m *mockReservationStore) ListByProfileID(ctx context.Context, profileID string) ([]reservation.Reservation, error) {
	var list []reservation.Reservation
	for i := len(m.reservations) - 1; i >= 0; i-- {
		if m.reservations[i].ProfileID == profileID {
			list = append(list, m.reservations[i])
		}
	}
	return list, nil
}

type mockAccountStore struct {
	accounts map[string]account.Account
}

func (m *mockAccountStore) GetByID(ctx context.Context, id string) (account.Account, error) {
	if a, ok := m.accounts[id]; ok {
		return a, nil
	}
	return account.Account{}, sql.ErrNoRows
}

type mockProfileStore struct {
	profiles map[string]profile.Profile
}

func (m *mockProfileStore) GetByID(ctx context.Context, id string) (profile.Profile, error) {
	if p, ok := m.profiles[id]; ok {
		return p, nil
	}
	return profile.Profile{}, sql.ErrNoRows
}

type mockNoticeStore struct {
	notices []notice.Notice
}

func (m *mockNoticeStore) ListPublished(ctx context.Context) ([]notice.Notice, error) {
	return m.notices, nil
}

type mockFitestStore struct {
	latest map[string]fitest.Result
}

func (m *mockFitestStore) LatestByProfileID(ctx context.Context, profileID string) (fitest.Result, error) {
	if r, ok := m.latest[profileID]; ok {
		return r, nil
	}
	return fitest.Result{}, sql.ErrNoRows
}
