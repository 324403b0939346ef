package web

import (
	"context"
	"database/sql"
	"sort"
	"time"

	accountStorePkg "stella/internal/adapters/storage/account"
	auditStorePkg "stella/internal/adapters/storage/audit"
	coinStorePkg "stella/internal/adapters/storage/coin"
	profileStorePkg "stella/internal/adapters/storage/profile"
	accountDomain "stella/internal/domain/account"
	auditDomain "stella/internal/domain/audit"
	checkinDomain "stella/internal/domain/checkin"
	coinDomain "stella/internal/domain/coin"
	exchangeDomain "stella/internal/domain/exchange"
	fitestDomain "stella/internal/domain/fitest"
	noticeDomain "stella/internal/domain/notice"
	outboxDomain "stella/internal/domain/outbox"
	profileDomain "stella/internal/domain/profile"
	reservationDomain "stella/internal/domain/reservation"
	settingsDomain "stella/internal/domain/settings"
	shiftDomain "stella/internal/domain/shift"
	tierDomain "stella/internal/domain/tier"
	trainingrecDomain "stella/internal/domain/trainingrec"
)

// Map-backed mock stores. Not-found is sql.ErrNoRows, matching the sqlite
// stores' behavior.

type mockAccountStore struct {
	accounts map[string]accountDomain.Account
}

func (m *mockAccountStore) GetByID(_ context.Context, id string) (accountDomain.Account, error) {
	if a, ok := m.accounts[id]; ok {
		return a, nil
	}
	return accountDomain.Account{}, sql.ErrNoRows
}

func (m *mockAccountStore) GetByEmail(_ context.Context, email string) (accountDomain.Account, error) {
	for _, a := range m.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return accountDomain.Account{}, sql.ErrNoRows
}

func (m *mockAccountStore) Save(_ context.Context, a accountDomain.Account) error {
	if m.accounts == nil {
		m.accounts = make(map[string]accountDomain.Account)
	}
	m.accounts[a.ID] = a
	return nil
}

func (m *mockAccountStore) Delete(_ context.Context, id string) error {
	delete(m.accounts, id)
	return nil
}

func (m *mockAccountStore) List(_ context.Context, _ accountStorePkg.ListFilter) ([]accountDomain.Account, error) {
	var list []accountDomain.Account
	for _, a := range m.accounts {
		list = append(list, a)
	}
	return list, nil
}

func (m *mockAccountStore) ListByRole(_ context.Context, role string) ([]accountDomain.Account, error) {
	var list []accountDomain.Account
	for _, a := range m.accounts {
		if a.Role == role {
			list = append(list, a)
		}
	}
	return list, nil
}

func (m *mockAccountStore) ListByTierID(_ context.Context, tierID string) ([]accountDomain.Account, error) {
	var list []accountDomain.Account
	for _, a := range m.accounts {
		if a.TierID == tierID {
			list = append(list, a)
		}
	}
	return list, nil
}

type mockProfileStore struct {
	profiles map[string]profileDomain.Profile
}

func (m *mockProfileStore) GetByID(_ context.Context, id string) (profileDomain.Profile, error) {
	if p, ok := m.profiles[id]; ok {
		return p, nil
	}
	return profileDomain.Profile{}, sql.ErrNoRows
}

func (m *mockProfileStore) GetByAccountID(_ context.Context, accountID string) (profileDomain.Profile, error) {
	for _, p := range m.profiles {
		if p.AccountID == accountID {
			return p, nil
		}
	}
	return profileDomain.Profile{}, sql.ErrNoRows
}

func (m *mockProfileStore) GetByLineUserID(_ context.Context, lineUserID string) (profileDomain.Profile, error) {
	for _, p := range m.profiles {
		if p.LineUserID == lineUserID {
			return p, nil
		}
	}
	return profileDomain.Profile{}, sql.ErrNoRows
}

func (m *mockProfileStore) Save(_ context.Context, p profileDomain.Profile) error {
	if m.profiles == nil {
		m.profiles = make(map[string]profileDomain.Profile)
	}
	m.profiles[p.ID] = p
	return nil
}

func (m *mockProfileStore) Delete(_ context.Context, id string) error {
	delete(m.profiles, id)
	return nil
}

func (m *mockProfileStore) List(_ context.Context, _ profileStorePkg.ListFilter) ([]profileDomain.Profile, error) {
	var list []profileDomain.Profile
	for _, p := range m.profiles {
		list = append(list, p)
	}
	return list, nil
}

func (m *mockProfileStore) ListByStatus(_ context.Context, status string) ([]profileDomain.Profile, error) {
	var list []profileDomain.Profile
	for _, p := range m.profiles {
		if p.Status == status {
			list = append(list, p)
		}
	}
	return list, nil
}

type mockLedgerStore struct {
	ledgers map[string]coinDomain.Ledger
}

func (m *mockLedgerStore) GetByID(_ context.Context, id string) (coinDomain.Ledger, error) {
	if l, ok := m.ledgers[id]; ok {
		return l, nil
	}
	return coinDomain.Ledger{}, sql.ErrNoRows
}

func (m *mockLedgerStore) Save(_ context.Context, l coinDomain.Ledger) error {
	if m.ledgers == nil {
		m.ledgers = make(map[string]coinDomain.Ledger)
	}
	m.ledgers[l.ID] = l
	return nil
}

func (m *mockLedgerStore) Delete(_ context.Context, id string) error {
	delete(m.ledgers, id)
	return nil
}

func (m *mockLedgerStore) ListByProfileID(_ context.Context, profileID string) ([]coinDomain.Ledger, error) {
	var list []coinDomain.Ledger
	for _, l := range m.ledgers {
		if l.ProfileID == profileID {
			list = append(list, l)
		}
	}
	return list, nil
}

func (m *mockLedgerStore) ListSpendableByProfileID(_ context.Context, profileID string, now time.Time) ([]coinDomain.Ledger, error) {
	var list []coinDomain.Ledger
	for _, l := range m.ledgers {
		if l.ProfileID == profileID && l.Status == coinDomain.StatusActive && !l.ExpiresAt.Before(now) {
			list = append(list, l)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ExpiresAt.Before(list[j].ExpiresAt) })
	return list, nil
}

func (m *mockLedgerStore) Hold(_ context.Context, id string, amount int) error {
	l, ok := m.ledgers[id]
	if !ok {
		return sql.ErrNoRows
	}
	if l.AmountCurrent < amount {
		return coinDomain.ErrInsufficientBalance
	}
	l.AmountCurrent -= amount
	l.AmountLocked += amount
	m.ledgers[id] = l
	return nil
}

func (m *mockLedgerStore) Release(_ context.Context, id string, amount int) error {
	l, ok := m.ledgers[id]
	if !ok {
		return sql.ErrNoRows
	}
	if l.AmountLocked < amount {
		return coinDomain.ErrInsufficientLocked
	}
	l.AmountLocked -= amount
	l.AmountCurrent += amount
	m.ledgers[id] = l
	return nil
}

func (m *mockLedgerStore) Settle(_ context.Context, id string, amount int) error {
	l, ok := m.ledgers[id]
	if !ok {
		return sql.ErrNoRows
	}
	if l.AmountLocked < amount {
		return coinDomain.ErrInsufficientLocked
	}
	l.AmountLocked -= amount
	m.ledgers[id] = l
	return nil
}

func (m *mockLedgerStore) ExpireOverdue(_ context.Context, now time.Time) ([]coinDomain.Ledger, error) {
	var expired []coinDomain.Ledger
	for id, l := range m.ledgers {
		if l.Status == coinDomain.StatusActive && l.ExpiresAt.Before(now) {
			l.Status = coinDomain.StatusExpired
			m.ledgers[id] = l
			expired = append(expired, l)
		}
	}
	return expired, nil
}

type mockTransactionStore struct {
	txs []coinDomain.Transaction
}

func (m *mockTransactionStore) Save(_ context.Context, tx coinDomain.Transaction) error {
	m.txs = append(m.txs, tx)
	return nil
}

func (m *mockTransactionStore) ListByProfileID(_ context.Context, profileID string, filter coinStorePkg.ListFilter) ([]coinDomain.Transaction, error) {
	var list []coinDomain.Transaction
	for _, tx := range m.txs {
		if tx.ProfileID == profileID {
			list = append(list, tx)
		}
	}
	if filter.Offset > 0 {
		if filter.Offset >= len(list) {
			return nil, nil
		}
		list = list[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(list) {
		list = list[:filter.Limit]
	}
	return list, nil
}

func (m *mockTransactionStore) ListByReferenceID(_ context.Context, referenceID string) ([]coinDomain.Transaction, error) {
	var list []coinDomain.Transaction
	for _, tx := range m.txs {
		if tx.ReferenceID == referenceID {
			list = append(list, tx)
		}
	}
	return list, nil
}

func (m *mockTransactionStore) MonthlyTotals(_ context.Context, _ string, _ int) ([]coinStorePkg.MonthlyTotal, error) {
	return nil, nil
}

type mockReservationStore struct {
	reservations map[string]reservationDomain.Reservation
}

func (m *mockReservationStore) GetByID(_ context.Context, id string) (reservationDomain.Reservation, error) {
	if r, ok := m.reservations[id]; ok {
		return r, nil
	}
	return reservationDomain.Reservation{}, sql.ErrNoRows
}

func (m *mockReservationStore) Save(_ context.Context, r reservationDomain.Reservation) error {
	if m.reservations == nil {
		m.reservations = make(map[string]reservationDomain.Reservation)
	}
	m.reservations[r.ID] = r
	return nil
}

func (m *mockReservationStore) Delete(_ context.Context, id string) error {
	delete(m.reservations, id)
	return nil
}

func (m *mockReservationStore) ListByProfileID(_ context.Context, profileID string) ([]reservationDomain.Reservation, error) {
	var list []reservationDomain.Reservation
	for _, r := range m.reservations {
		if r.ProfileID == profileID {
			list = append(list, r)
		}
	}
	return list, nil
}

func (m *mockReservationStore) ListByMentorIDAndDate(_ context.Context, mentorID, date string) ([]reservationDomain.Reservation, error) {
	var list []reservationDomain.Reservation
	for _, r := range m.reservations {
		if r.MentorID == mentorID && r.ReservedAt.Format("2006-01-02") == date {
			list = append(list, r)
		}
	}
	return list, nil
}

func (m *mockReservationStore) HasConflict(_ context.Context, mentorID string, reservedAt time.Time) (bool, error) {
	for _, r := range m.reservations {
		if r.MentorID != mentorID || r.Status == reservationDomain.StatusCancelled {
			continue
		}
		if r.ReservedAt.Equal(reservedAt) || (r.IsAllDayBlock && r.ReservedAt.Format("2006-01-02") == reservedAt.Format("2006-01-02")) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockReservationStore) ListBlocksByDate(_ context.Context, date string) ([]reservationDomain.Reservation, error) {
	var list []reservationDomain.Reservation
	for _, r := range m.reservations {
		if r.IsBlocked && r.ReservedAt.Format("2006-01-02") == date {
			list = append(list, r)
		}
	}
	return list, nil
}

func (m *mockReservationStore) ListByDateRange(_ context.Context, startDate, endDate string) ([]reservationDomain.Reservation, error) {
	var list []reservationDomain.Reservation
	for _, r := range m.reservations {
		d := r.ReservedAt.Format("2006-01-02")
		if d >= startDate && d <= endDate {
			list = append(list, r)
		}
	}
	return list, nil
}

func (m *mockReservationStore) ListConfirmedBefore(_ context.Context, cutoff time.Time) ([]reservationDomain.Reservation, error) {
	var list []reservationDomain.Reservation
	for _, r := range m.reservations {
		if r.Status == reservationDomain.StatusConfirmed && r.ReservedAt.Before(cutoff) {
			list = append(list, r)
		}
	}
	return list, nil
}

type mockCodeStore struct {
	codes map[string]checkinDomain.VerificationCode
}

func (m *mockCodeStore) GetActiveByCode(_ context.Context, code string, now time.Time) (checkinDomain.VerificationCode, error) {
	for _, c := range m.codes {
		if c.Code == code && !c.Used && !c.IsExpired(now) {
			return c, nil
		}
	}
	return checkinDomain.VerificationCode{}, sql.ErrNoRows
}

func (m *mockCodeStore) GetActiveByProfileID(_ context.Context, profileID string, now time.Time) (checkinDomain.VerificationCode, error) {
	for _, c := range m.codes {
		if c.ProfileID == profileID && !c.Used && !c.IsExpired(now) {
			return c, nil
		}
	}
	return checkinDomain.VerificationCode{}, sql.ErrNoRows
}

func (m *mockCodeStore) Save(_ context.Context, c checkinDomain.VerificationCode) error {
	if m.codes == nil {
		m.codes = make(map[string]checkinDomain.VerificationCode)
	}
	m.codes[c.ID] = c
	return nil
}

func (m *mockCodeStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	n := 0
	for id, c := range m.codes {
		if c.IsExpired(now) {
			delete(m.codes, id)
			n++
		}
	}
	return n, nil
}

type mockLogStore struct {
	logs []checkinDomain.Log
}

func (m *mockLogStore) Save(_ context.Context, l checkinDomain.Log) error {
	m.logs = append(m.logs, l)
	return nil
}

func (m *mockLogStore) ListByProfileID(_ context.Context, profileID string) ([]checkinDomain.Log, error) {
	var list []checkinDomain.Log
	for _, l := range m.logs {
		if l.ProfileID == profileID {
			list = append(list, l)
		}
	}
	return list, nil
}

func (m *mockLogStore) ListByDate(_ context.Context, date string) ([]checkinDomain.Log, error) {
	var list []checkinDomain.Log
	for _, l := range m.logs {
		if l.CheckedInAt.Format("2006-01-02") == date {
			list = append(list, l)
		}
	}
	return list, nil
}

func (m *mockLogStore) CountByProfileIDAndDate(_ context.Context, profileID, date string) (int, error) {
	n := 0
	for _, l := range m.logs {
		if l.ProfileID == profileID && l.CheckedInAt.Format("2006-01-02") == date {
			n++
		}
	}
	return n, nil
}

type mockItemStore struct {
	items map[string]exchangeDomain.Item
}

func (m *mockItemStore) GetByID(_ context.Context, id string) (exchangeDomain.Item, error) {
	if i, ok := m.items[id]; ok {
		return i, nil
	}
	return exchangeDomain.Item{}, sql.ErrNoRows
}

func (m *mockItemStore) Save(_ context.Context, i exchangeDomain.Item) error {
	if m.items == nil {
		m.items = make(map[string]exchangeDomain.Item)
	}
	m.items[i.ID] = i
	return nil
}

func (m *mockItemStore) Delete(_ context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

func (m *mockItemStore) List(_ context.Context) ([]exchangeDomain.Item, error) {
	var list []exchangeDomain.Item
	for _, i := range m.items {
		list = append(list, i)
	}
	return list, nil
}

func (m *mockItemStore) ListActive(_ context.Context) ([]exchangeDomain.Item, error) {
	var list []exchangeDomain.Item
	for _, i := range m.items {
		if i.Active {
			list = append(list, i)
		}
	}
	return list, nil
}

type mockRequestStore struct {
	requests map[string]exchangeDomain.Request
}

func (m *mockRequestStore) GetByID(_ context.Context, id string) (exchangeDomain.Request, error) {
	if r, ok := m.requests[id]; ok {
		return r, nil
	}
	return exchangeDomain.Request{}, sql.ErrNoRows
}

func (m *mockRequestStore) Save(_ context.Context, r exchangeDomain.Request) error {
	if m.requests == nil {
		m.requests = make(map[string]exchangeDomain.Request)
	}
	m.requests[r.ID] = r
	return nil
}

func (m *mockRequestStore) ListByProfileID(_ context.Context, profileID string) ([]exchangeDomain.Request, error) {
	var list []exchangeDomain.Request
	for _, r := range m.requests {
		if r.ProfileID == profileID {
			list = append(list, r)
		}
	}
	return list, nil
}

func (m *mockRequestStore) ListByStatus(_ context.Context, status string) ([]exchangeDomain.Request, error) {
	var list []exchangeDomain.Request
	for _, r := range m.requests {
		if r.Status == status {
			list = append(list, r)
		}
	}
	return list, nil
}

type mockFitestStore struct {
	results map[string]fitestDomain.Result
}

func (m *mockFitestStore) GetByID(_ context.Context, id string) (fitestDomain.Result, error) {
	if r, ok := m.results[id]; ok {
		return r, nil
	}
	return fitestDomain.Result{}, sql.ErrNoRows
}

func (m *mockFitestStore) Save(_ context.Context, r fitestDomain.Result) error {
	if m.results == nil {
		m.results = make(map[string]fitestDomain.Result)
	}
	m.results[r.ID] = r
	return nil
}

func (m *mockFitestStore) ListByProfileID(_ context.Context, profileID string) ([]fitestDomain.Result, error) {
	var list []fitestDomain.Result
	for _, r := range m.results {
		if r.ProfileID == profileID {
			list = append(list, r)
		}
	}
	return list, nil
}

func (m *mockFitestStore) LatestByProfileID(_ context.Context, profileID string) (fitestDomain.Result, error) {
	var latest fitestDomain.Result
	found := false
	for _, r := range m.results {
		if r.ProfileID == profileID && (!found || r.TestedAt.After(latest.TestedAt)) {
			latest = r
			found = true
		}
	}
	if !found {
		return fitestDomain.Result{}, sql.ErrNoRows
	}
	return latest, nil
}

type mockTrainingStore struct {
	records map[string]trainingrecDomain.Record
}

func (m *mockTrainingStore) GetByID(_ context.Context, id string) (trainingrecDomain.Record, error) {
	if r, ok := m.records[id]; ok {
		return r, nil
	}
	return trainingrecDomain.Record{}, sql.ErrNoRows
}

func (m *mockTrainingStore) GetByProfileKindDate(_ context.Context, profileID, kind, recordDate string) (trainingrecDomain.Record, error) {
	for _, r := range m.records {
		if r.ProfileID == profileID && r.Kind == kind && r.RecordDate == recordDate {
			return r, nil
		}
	}
	return trainingrecDomain.Record{}, sql.ErrNoRows
}

func (m *mockTrainingStore) Save(_ context.Context, r trainingrecDomain.Record) error {
	if m.records == nil {
		m.records = make(map[string]trainingrecDomain.Record)
	}
	m.records[r.ID] = r
	return nil
}

func (m *mockTrainingStore) Delete(_ context.Context, id string) error {
	delete(m.records, id)
	return nil
}

func (m *mockTrainingStore) ListByProfileID(_ context.Context, profileID string) ([]trainingrecDomain.Record, error) {
	var list []trainingrecDomain.Record
	for _, r := range m.records {
		if r.ProfileID == profileID {
			list = append(list, r)
		}
	}
	return list, nil
}

func (m *mockTrainingStore) ListByProfileIDAndKind(_ context.Context, profileID, kind string) ([]trainingrecDomain.Record, error) {
	var list []trainingrecDomain.Record
	for _, r := range m.records {
		if r.ProfileID == profileID && r.Kind == kind {
			list = append(list, r)
		}
	}
	return list, nil
}

type mockNoticeStore struct {
	notices map[string]noticeDomain.Notice
}

func (m *mockNoticeStore) GetByID(_ context.Context, id string) (noticeDomain.Notice, error) {
	if n, ok := m.notices[id]; ok {
		return n, nil
	}
	return noticeDomain.Notice{}, sql.ErrNoRows
}

func (m *mockNoticeStore) Save(_ context.Context, n noticeDomain.Notice) error {
	if m.notices == nil {
		m.notices = make(map[string]noticeDomain.Notice)
	}
	m.notices[n.ID] = n
	return nil
}

func (m *mockNoticeStore) Delete(_ context.Context, id string) error {
	if _, ok := m.notices[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.notices, id)
	return nil
}

func (m *mockNoticeStore) List(_ context.Context) ([]noticeDomain.Notice, error) {
	var list []noticeDomain.Notice
	for _, n := range m.notices {
		list = append(list, n)
	}
	return list, nil
}

func (m *mockNoticeStore) ListPublished(_ context.Context) ([]noticeDomain.Notice, error) {
	var list []noticeDomain.Notice
	for _, n := range m.notices {
		if n.Status == noticeDomain.StatusPublished {
			list = append(list, n)
		}
	}
	return list, nil
}

type mockSettingsStore struct {
	hours    map[string]settingsDomain.BusinessHours
	closures map[string]settingsDomain.Closure
	settings map[string]settingsDomain.Setting
}

func (m *mockSettingsStore) GetHours(_ context.Context, weekday string) (settingsDomain.BusinessHours, error) {
	if h, ok := m.hours[weekday]; ok {
		return h, nil
	}
	return settingsDomain.BusinessHours{}, sql.ErrNoRows
}

func (m *mockSettingsStore) SaveHours(_ context.Context, h settingsDomain.BusinessHours) error {
	if m.hours == nil {
		m.hours = make(map[string]settingsDomain.BusinessHours)
	}
	m.hours[h.Weekday] = h
	return nil
}

func (m *mockSettingsStore) ListHours(_ context.Context) ([]settingsDomain.BusinessHours, error) {
	var list []settingsDomain.BusinessHours
	for _, h := range m.hours {
		list = append(list, h)
	}
	return list, nil
}

func (m *mockSettingsStore) GetClosureByDate(_ context.Context, date string) (settingsDomain.Closure, error) {
	for _, c := range m.closures {
		if c.Date == date {
			return c, nil
		}
	}
	return settingsDomain.Closure{}, sql.ErrNoRows
}

func (m *mockSettingsStore) SaveClosure(_ context.Context, c settingsDomain.Closure) error {
	for _, existing := range m.closures {
		if existing.Date == c.Date {
			return settingsDomain.ErrDuplicateDate
		}
	}
	if m.closures == nil {
		m.closures = make(map[string]settingsDomain.Closure)
	}
	m.closures[c.ID] = c
	return nil
}

func (m *mockSettingsStore) DeleteClosure(_ context.Context, id string) error {
	if _, ok := m.closures[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.closures, id)
	return nil
}

func (m *mockSettingsStore) ListClosures(_ context.Context) ([]settingsDomain.Closure, error) {
	var list []settingsDomain.Closure
	for _, c := range m.closures {
		list = append(list, c)
	}
	return list, nil
}

func (m *mockSettingsStore) GetSetting(_ context.Context, key string) (settingsDomain.Setting, error) {
	if s, ok := m.settings[key]; ok {
		return s, nil
	}
	return settingsDomain.Setting{}, sql.ErrNoRows
}

func (m *mockSettingsStore) SaveSetting(_ context.Context, s settingsDomain.Setting) error {
	if m.settings == nil {
		m.settings = make(map[string]settingsDomain.Setting)
	}
	m.settings[s.Key] = s
	return nil
}

func (m *mockSettingsStore) ListSettings(_ context.Context) ([]settingsDomain.Setting, error) {
	var list []settingsDomain.Setting
	for _, s := range m.settings {
		list = append(list, s)
	}
	return list, nil
}

type mockShiftStore struct {
	shifts map[string]shiftDomain.Shift
}

func (m *mockShiftStore) GetByID(_ context.Context, id string) (shiftDomain.Shift, error) {
	if s, ok := m.shifts[id]; ok {
		return s, nil
	}
	return shiftDomain.Shift{}, sql.ErrNoRows
}

func (m *mockShiftStore) Save(_ context.Context, s shiftDomain.Shift) error {
	if m.shifts == nil {
		m.shifts = make(map[string]shiftDomain.Shift)
	}
	m.shifts[s.ID] = s
	return nil
}

func (m *mockShiftStore) Delete(_ context.Context, id string) error {
	if _, ok := m.shifts[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.shifts, id)
	return nil
}

func (m *mockShiftStore) ListByStaffID(_ context.Context, staffID string) ([]shiftDomain.Shift, error) {
	var list []shiftDomain.Shift
	for _, s := range m.shifts {
		if s.StaffID == staffID {
			list = append(list, s)
		}
	}
	return list, nil
}

func (m *mockShiftStore) ListByKindAndWeekday(_ context.Context, kind, weekday string) ([]shiftDomain.Shift, error) {
	var list []shiftDomain.Shift
	for _, s := range m.shifts {
		if s.RoleKind == kind && s.Weekday == weekday {
			list = append(list, s)
		}
	}
	return list, nil
}

type mockTierStore struct {
	tiers map[string]tierDomain.Tier
}

func (m *mockTierStore) GetByID(_ context.Context, id string) (tierDomain.Tier, error) {
	if t, ok := m.tiers[id]; ok {
		return t, nil
	}
	return tierDomain.Tier{}, sql.ErrNoRows
}

func (m *mockTierStore) GetByLevel(_ context.Context, level int) (tierDomain.Tier, error) {
	for _, t := range m.tiers {
		if t.Level == level {
			return t, nil
		}
	}
	return tierDomain.Tier{}, sql.ErrNoRows
}

func (m *mockTierStore) Save(_ context.Context, t tierDomain.Tier) error {
	if m.tiers == nil {
		m.tiers = make(map[string]tierDomain.Tier)
	}
	m.tiers[t.ID] = t
	return nil
}

func (m *mockTierStore) Delete(_ context.Context, id string) error {
	delete(m.tiers, id)
	return nil
}

func (m *mockTierStore) List(_ context.Context) ([]tierDomain.Tier, error) {
	var list []tierDomain.Tier
	for _, t := range m.tiers {
		list = append(list, t)
	}
	return list, nil
}

type mockAuditStore struct {
	events []auditDomain.Event
}

func (m *mockAuditStore) Save(_ context.Context, e auditDomain.Event) error {
	m.events = append(m.events, e)
	return nil
}

func (m *mockAuditStore) List(_ context.Context, filter auditStorePkg.Filter, limit int) ([]auditDomain.Event, error) {
	var list []auditDomain.Event
	for _, e := range m.events {
		if filter.Category != nil && e.Category != *filter.Category {
			continue
		}
		if filter.Action != nil && e.Action != *filter.Action {
			continue
		}
		if len(list) >= limit {
			break
		}
		list = append(list, e)
	}
	return list, nil
}

func (m *mockAuditStore) GetByID(_ context.Context, id string) (auditDomain.Event, error) {
	for _, e := range m.events {
		if e.ID == id {
			return e, nil
		}
	}
	return auditDomain.Event{}, sql.ErrNoRows
}

type mockOutboxStore struct {
	entries map[string]outboxDomain.Entry
}

func (m *mockOutboxStore) GetByID(_ context.Context, id string) (outboxDomain.Entry, error) {
	if e, ok := m.entries[id]; ok {
		return e, nil
	}
	return outboxDomain.Entry{}, sql.ErrNoRows
}

func (m *mockOutboxStore) Save(_ context.Context, e outboxDomain.Entry) error {
	if m.entries == nil {
		m.entries = make(map[string]outboxDomain.Entry)
	}
	m.entries[e.ID] = e
	return nil
}

func (m *mockOutboxStore) ListPending(_ context.Context, limit int) ([]outboxDomain.Entry, error) {
	var list []outboxDomain.Entry
	for _, e := range m.entries {
		if e.Status == outboxDomain.StatusPending || e.Status == outboxDomain.StatusRetrying {
			list = append(list, e)
		}
		if len(list) >= limit {
			break
		}
	}
	return list, nil
}

func (m *mockOutboxStore) ListFailed(_ context.Context, limit int) ([]outboxDomain.Entry, error) {
	var list []outboxDomain.Entry
	for _, e := range m.entries {
		if e.Status == outboxDomain.StatusFailed {
			list = append(list, e)
		}
		if len(list) >= limit {
			break
		}
	}
	return list, nil
}

func (m *mockOutboxStore) Delete(_ context.Context, id string) error {
	delete(m.entries, id)
	return nil
}

// newTestStores builds a Stores value backed entirely by empty mocks.
func newTestStores() *Stores {
	return &Stores{
		AccountStore:     &mockAccountStore{accounts: map[string]accountDomain.Account{}},
		ProfileStore:     &mockProfileStore{profiles: map[string]profileDomain.Profile{}},
		LedgerStore:      &mockLedgerStore{ledgers: map[string]coinDomain.Ledger{}},
		TransactionStore: &mockTransactionStore{},
		ReservationStore: &mockReservationStore{reservations: map[string]reservationDomain.Reservation{}},
		CodeStore:        &mockCodeStore{codes: map[string]checkinDomain.VerificationCode{}},
		LogStore:         &mockLogStore{},
		ItemStore:        &mockItemStore{items: map[string]exchangeDomain.Item{}},
		RequestStore:     &mockRequestStore{requests: map[string]exchangeDomain.Request{}},
		FitestStore:      &mockFitestStore{results: map[string]fitestDomain.Result{}},
		TrainingStore:    &mockTrainingStore{records: map[string]trainingrecDomain.Record{}},
		NoticeStore:      &mockNoticeStore{notices: map[string]noticeDomain.Notice{}},
		SettingsStore:    &mockSettingsStore{},
		ShiftStore:       &mockShiftStore{shifts: map[string]shiftDomain.Shift{}},
		TierStore:        &mockTierStore{tiers: map[string]tierDomain.Tier{}},
		AuditStore:       &mockAuditStore{},
		OutboxStore:      &mockOutboxStore{entries: map[string]outboxDomain.Entry{}},
	}
}
