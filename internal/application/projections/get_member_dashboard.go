package projections

import (
	"context"
	"time"

	"stella/internal/domain/coin"
	"stella/internal/domain/fitest"
	"stella/internal/domain/notice"
	"stella/internal/domain/profile"
	"stella/internal/domain/reservation"
)

// DashboardProfileStore reads the member's profile.
type DashboardProfileStore interface {
	GetByID(ctx context.Context, id string) (profile.Profile, error)
}

// DashboardReservationStore lists the member's reservations.
type DashboardReservationStore interface {
	ListByProfileID(ctx context.Context, profileID string) ([]reservation.Reservation, error)
}

// DashboardNoticeStore lists published notices.
type DashboardNoticeStore interface {
	ListPublished(ctx context.Context) ([]notice.Notice, error)
}

// DashboardFitestStore reads the member's latest promotion test.
type DashboardFitestStore interface {
	LatestByProfileID(ctx context.Context, profileID string) (fitest.Result, error)
}

// GetMemberDashboardQuery carries input for the member dashboard projection.
type GetMemberDashboardQuery struct {
	ProfileID string
}

// GetMemberDashboardDeps holds dependencies for the member dashboard projection.
type GetMemberDashboardDeps struct {
	ProfileStore     DashboardProfileStore
	LedgerStore      CoinLedgerStore
	ReservationStore DashboardReservationStore
	NoticeStore      DashboardNoticeStore
	FitestStore      DashboardFitestStore // optional
	Now              func() time.Time
}

// MemberDashboardResult carries the output of the member dashboard projection.
type MemberDashboardResult struct {
	Name         string                    `json:"name"`
	Rank         string                    `json:"rank"`
	Status       string                    `json:"status"`
	Balance      coin.Balance              `json:"balance"`
	Upcoming     []reservation.Reservation `json:"upcoming"`
	Notices      []notice.Notice           `json:"notices"`
	LatestFitest *fitest.Result            `json:"latest_fitest,omitempty"`
}

// QueryGetMemberDashboard aggregates the landing-page data for one member:
// profile, coin balance, upcoming confirmed sessions, published notices and
// the most recent promotion test.
// PRE: ProfileID references an existing profile
// POST: Upcoming lists confirmed future reservations, soonest first
func QueryGetMemberDashboard(ctx context.Context, query GetMemberDashboardQuery, deps GetMemberDashboardDeps) (MemberDashboardResult, error) {
	now := deps.Now()

	p, err := deps.ProfileStore.GetByID(ctx, query.ProfileID)
	if err != nil {
		return MemberDashboardResult{}, err
	}

	result := MemberDashboardResult{
		Name:     p.Name,
		Rank:     p.Rank,
		Status:   p.Status,
		Upcoming: []reservation.Reservation{},
		Notices:  []notice.Notice{},
	}

	ledgers, err := deps.LedgerStore.ListByProfileID(ctx, query.ProfileID)
	if err != nil {
		return MemberDashboardResult{}, err
	}
	result.Balance = coin.SumBalance(ledgers, now)

	reservations, err := deps.ReservationStore.ListByProfileID(ctx, query.ProfileID)
	if err != nil {
		return MemberDashboardResult{}, err
	}
	for _, r := range reservations {
		if r.Status == reservation.StatusConfirmed && r.ReservedAt.After(now) {
			result.Upcoming = append(result.Upcoming, r)
		}
	}
	// ListByProfileID returns newest first; upcoming reads better soonest first.
	for i, j := 0, len(result.Upcoming)-1; i < j; i, j = i+1, j-1 {
		result.Upcoming[i], result.Upcoming[j] = result.Upcoming[j], result.Upcoming[i]
	}

	notices, err := deps.NoticeStore.ListPublished(ctx)
	if err == nil && notices != nil {
		result.Notices = notices
	}

	if deps.FitestStore != nil {
		if latest, err := deps.FitestStore.LatestByProfileID(ctx, query.ProfileID); err == nil {
			result.LatestFitest = &latest
		}
	}

	return result, nil
}
