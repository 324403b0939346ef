package orchestrators

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"stella/internal/domain/account"
	"stella/internal/domain/checkin"
	"stella/internal/domain/coin"
	"stella/internal/domain/exchange"
	"stella/internal/domain/fitest"
	"stella/internal/domain/outbox"
	"stella/internal/domain/profile"
	"stella/internal/domain/reservation"
	"stella/internal/domain/settings"
	"stella/internal/domain/tier"
	"stella/internal/domain/trainingrec"
)

// fixedTime is the reference instant used across orchestrator tests.
var fixedTime = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func fixedNow() time.Time {
	return fixedTime
}

// sequentialIDs returns a generator producing id-1, id-2, ...
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
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

func (m *mockAccountStore) GetByEmail(ctx context.Context, email string) (account.Account, error) {
	for _, a := range m.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return account.Account{}, sql.ErrNoRows
}

func (m *mockAccountStore) Save(ctx context.Context, a account.Account) error {
	if m.accounts == nil {
		m.accounts = make(map[string]account.Account)
	}
	m.accounts[a.ID] = a
	return nil
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

func (m *mockProfileStore) GetByAccountID(ctx context.Context, accountID string) (profile.Profile, error) {
	for _, p := range m.profiles {
		if p.AccountID == accountID {
			return p, nil
		}
	}
	return profile.Profile{}, sql.ErrNoRows
}

func (m *mockProfileStore) Save(ctx context.Context, p profile.Profile) error {
	if m.profiles == nil {
		m.profiles = make(map[string]profile.Profile)
	}
	m.profiles[p.ID] = p
	return nil
}

type mockLedgerStore struct {
	ledgers map[string]coin.Ledger
}

func (m *mockLedgerStore) GetByID(ctx context.Context, id string) (coin.Ledger, error) {
	if l, ok := m.ledgers[id]; ok {
		return l, nil
	}
	return coin.Ledger{}, sql.ErrNoRows
}

func (m *mockLedgerStore) Save(ctx context.Context, l coin.Ledger) error {
	if m.ledgers == nil {
		m.ledgers = make(map[string]coin.Ledger)
	}
	m.ledgers[l.ID] = l
	return nil
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

func (m *mockLedgerStore) ListSpendableByProfileID(ctx context.Context, profileID string, now time.Time) ([]coin.Ledger, error) {
	var list []coin.Ledger
	for _, l := range m.ledgers {
		if l.ProfileID == profileID && l.IsSpendable(now) && l.AmountCurrent > 0 {
			list = append(list, l)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ExpiresAt.Before(list[j].ExpiresAt) })
	return list, nil
}

func (m *mockLedgerStore) Hold(ctx context.Context, id string, amount int) error {
	l, ok := m.ledgers[id]
	if !ok || l.Status != coin.StatusActive || l.AmountCurrent < amount {
		return coin.ErrInsufficientBalance
	}
	l.AmountCurrent -= amount
	l.AmountLocked += amount
	m.ledgers[id] = l
	return nil
}

func (m *mockLedgerStore) Release(ctx context.Context, id string, amount int) error {
	l, ok := m.ledgers[id]
	if !ok || l.AmountLocked < amount {
		return coin.ErrInsufficientLocked
	}
	l.AmountLocked -= amount
	l.AmountCurrent += amount
	m.ledgers[id] = l
	return nil
}

func (m *mockLedgerStore) Settle(ctx context.Context, id string, amount int) error {
	l, ok := m.ledgers[id]
	if !ok || l.AmountLocked < amount {
		return coin.ErrInsufficientLocked
	}
	l.AmountLocked -= amount
	m.ledgers[id] = l
	return nil
}

func (m *mockLedgerStore) ExpireOverdue(ctx context.Context, now time.Time) ([]coin.Ledger, error) {
	var expired []coin.Ledger
	for id, l := range m.ledgers {
		if l.Status == coin.StatusActive && l.IsExpired(now) {
			expired = append(expired, l)
			l.Status = coin.StatusExpired
			m.ledgers[id] = l
		}
	}
	return expired, nil
}

type mockTxStore struct {
	txs []coin.Transaction
}

func (m *mockTxStore) Save(ctx context.Context, t coin.Transaction) error {
	m.txs = append(m.txs, t)
	return nil
}

func (m *mockTxStore) ListByReferenceID(ctx context.Context, referenceID string) ([]coin.Transaction, error) {
	var list []coin.Transaction
	for _, t := range m.txs {
		if t.ReferenceID == referenceID {
			list = append(list, t)
		}
	}
	return list, nil
}

type mockReservationStore struct {
	reservations map[string]reservation.Reservation
}

func (m *mockReservationStore) GetByID(ctx context.Context, id string) (reservation.Reservation, error) {
	if r, ok := m.reservations[id]; ok {
		return r, nil
	}
	return reservation.Reservation{}, sql.ErrNoRows
}

func (m *mockReservationStore) Save(ctx context.Context, r reservation.Reservation) error {
	if m.reservations == nil {
		m.reservations = make(map[string]reservation.Reservation)
	}
	m.reservations[r.ID] = r
	return nil
}

func (m *mockReservationStore) Delete(ctx context.Context, id string) error {
	delete(m.reservations, id)
	return nil
}

func (m *mockReservationStore) HasConflict(ctx context.Context, mentorID string, reservedAt time.Time) (bool, error) {
	date := reservedAt.Format("2006-01-02")
	for _, r := range m.reservations {
		if r.MentorID != mentorID || r.Status != reservation.StatusConfirmed {
			continue
		}
		if r.ReservedAt.Equal(reservedAt) {
			return true, nil
		}
		if r.IsAllDayBlock && r.ReservedAt.Format("2006-01-02") == date {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockReservationStore) ListConfirmedBefore(ctx context.Context, cutoff time.Time) ([]reservation.Reservation, error) {
	var list []reservation.Reservation
	for _, r := range m.reservations {
		if r.Status == reservation.StatusConfirmed && r.ReservedAt.Before(cutoff) {
			list = append(list, r)
		}
	}
	return list, nil
}

type mockSettingsStore struct {
	settings map[string]settings.Setting
}

func (m *mockSettingsStore) GetSetting(ctx context.Context, key string) (settings.Setting, error) {
	if s, ok := m.settings[key]; ok {
		return s, nil
	}
	return settings.Setting{}, sql.ErrNoRows
}

type mockOutboxStore struct {
	entries []outbox.Entry
}

func (m *mockOutboxStore) Save(ctx context.Context, e outbox.Entry) error {
	m.entries = append(m.entries, e)
	return nil
}

type mockCodeStore struct {
	codes map[string]checkin.VerificationCode
}

func (m *mockCodeStore) GetActiveByCode(ctx context.Context, code string, now time.Time) (checkin.VerificationCode, error) {
	for _, c := range m.codes {
		if c.Code == code && !c.Used && !c.IsExpired(now) {
			return c, nil
		}
	}
	return checkin.VerificationCode{}, sql.ErrNoRows
}

func (m *mockCodeStore) GetActiveByProfileID(ctx context.Context, profileID string, now time.Time) (checkin.VerificationCode, error) {
	for _, c := range m.codes {
		if c.ProfileID == profileID && !c.Used && !c.IsExpired(now) {
			return c, nil
		}
	}
	return checkin.VerificationCode{}, sql.ErrNoRows
}

func (m *mockCodeStore) Save(ctx context.Context, c checkin.VerificationCode) error {
	if m.codes == nil {
		m.codes = make(map[string]checkin.VerificationCode)
	}
	m.codes[c.ID] = c
	return nil
}

type mockLogStore struct {
	logs []checkin.Log
}

func (m *mockLogStore) Save(ctx context.Context, l checkin.Log) error {
	m.logs = append(m.logs, l)
	return nil
}

func (m *mockLogStore) CountByProfileIDAndDate(ctx context.Context, profileID string, date string) (int, error) {
	count := 0
	for _, l := range m.logs {
		if l.ProfileID == profileID && l.CheckedInAt.Format("2006-01-02") == date {
			count++
		}
	}
	return count, nil
}

type mockItemStore struct {
	items map[string]exchange.Item
}

func (m *mockItemStore) GetByID(ctx context.Context, id string) (exchange.Item, error) {
	if i, ok := m.items[id]; ok {
		return i, nil
	}
	return exchange.Item{}, sql.ErrNoRows
}

type mockRequestStore struct {
	requests map[string]exchange.Request
}

func (m *mockRequestStore) GetByID(ctx context.Context, id string) (exchange.Request, error) {
	if r, ok := m.requests[id]; ok {
		return r, nil
	}
	return exchange.Request{}, sql.ErrNoRows
}

func (m *mockRequestStore) Save(ctx context.Context, r exchange.Request) error {
	if m.requests == nil {
		m.requests = make(map[string]exchange.Request)
	}
	m.requests[r.ID] = r
	return nil
}

type mockFitestStore struct {
	results []fitest.Result
}

func (m *mockFitestStore) Save(ctx context.Context, r fitest.Result) error {
	m.results = append(m.results, r)
	return nil
}

type mockTierStore struct {
	tiers map[string]tier.Tier
}

func (m *mockTierStore) GetByID(ctx context.Context, id string) (tier.Tier, error) {
	if t, ok := m.tiers[id]; ok {
		return t, nil
	}
	return tier.Tier{}, sql.ErrNoRows
}

type mockRecordStore struct {
	records map[string]trainingrec.Record
}

func (m *mockRecordStore) GetByProfileKindDate(ctx context.Context, profileID, kind, recordDate string) (trainingrec.Record, error) {
	for _, r := range m.records {
		if r.ProfileID == profileID && r.Kind == kind && r.RecordDate == recordDate {
			return r, nil
		}
	}
	return trainingrec.Record{}, sql.ErrNoRows
}

func (m *mockRecordStore) Save(ctx context.Context, r trainingrec.Record) error {
	if m.records == nil {
		m.records = make(map[string]trainingrec.Record)
	}
	m.records[r.ID] = r
	return nil
}

// activeProfile is a convenience fixture builder.
func activeProfile(id string) profile.Profile {
	return profile.Profile{
		ID:        id,
		AccountID: "acct-" + id,
		Name:      "Test Member",
		Email:     id + "@example.com",
		Status:    profile.StatusActive,
		Rank:      profile.RankBronze,
	}
}

// activeLedger is a convenience fixture builder.
func activeLedger(id, profileID string, amount int, expiresAt time.Time) coin.Ledger {
	return coin.Ledger{
		ID:            id,
		ProfileID:     profileID,
		AmountCurrent: amount,
		Status:        coin.StatusActive,
		ExpiresAt:     expiresAt,
		CreatedAt:     fixedTime,
	}
}
