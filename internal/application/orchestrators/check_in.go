package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"stella/internal/domain/checkin"
	"stella/internal/domain/coin"
	"stella/internal/domain/profile"
	"stella/internal/domain/settings"
)

// CodeStoreForCheckIn defines the verification code store interface.
type CodeStoreForCheckIn interface {
	GetActiveByCode(ctx context.Context, code string, now time.Time) (checkin.VerificationCode, error)
	GetActiveByProfileID(ctx context.Context, profileID string, now time.Time) (checkin.VerificationCode, error)
	Save(ctx context.Context, c checkin.VerificationCode) error
}

// LogStoreForCheckIn defines the check-in log store interface.
type LogStoreForCheckIn interface {
	Save(ctx context.Context, l checkin.Log) error
	CountByProfileIDAndDate(ctx context.Context, profileID string, date string) (int, error)
}

// IssueCodeInput carries input for verification code issuance.
type IssueCodeInput struct {
	ProfileID string
}

// IssueCodeResult carries the issued code and its expiry.
type IssueCodeResult struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IssueCodeDeps holds dependencies for IssueCode.
type IssueCodeDeps struct {
	CodeStore    CodeStoreForCheckIn
	ProfileStore ProfileStoreForGrant
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteIssueCode creates a fresh 6-digit verification code for a member.
// Any prior active code for the profile is superseded.
// PRE: Profile is active
// POST: New single-use code valid for the code TTL
// INVARIANT: At most one active code per profile
func ExecuteIssueCode(ctx context.Context, input IssueCodeInput, deps IssueCodeDeps) (IssueCodeResult, error) {
	p, err := deps.ProfileStore.GetByID(ctx, input.ProfileID)
	if err != nil {
		return IssueCodeResult{}, ErrProfileNotFound
	}
	if !p.IsActive() {
		return IssueCodeResult{}, ErrProfileSuspended
	}

	now := deps.Now()

	// Supersede any outstanding code by consuming it.
	if prior, err := deps.CodeStore.GetActiveByProfileID(ctx, input.ProfileID, now); err == nil {
		prior.Used = true
		_ = deps.CodeStore.Save(ctx, prior)
	}

	value, err := checkin.GenerateCode()
	if err != nil {
		return IssueCodeResult{}, err
	}
	code := checkin.VerificationCode{
		ID:        deps.GenerateID(),
		ProfileID: input.ProfileID,
		Code:      value,
		ExpiresAt: now.Add(checkin.CodeTTL),
		CreatedAt: now,
	}
	if err := deps.CodeStore.Save(ctx, code); err != nil {
		return IssueCodeResult{}, err
	}

	slog.Info("checkin_event", "event", "code_issued", "profile_id", input.ProfileID, "expires_at", code.ExpiresAt)
	return IssueCodeResult{Code: value, ExpiresAt: code.ExpiresAt}, nil
}

// CheckInInput carries input for the check-in orchestrator. Exactly one of
// ProfileID (self / manual) or Code (front desk) identifies the member.
type CheckInInput struct {
	ProfileID   string
	Code        string
	Method      string
	PerformedBy string // account ID of the executor
}

// CheckInResult carries the recorded check-in.
type CheckInResult struct {
	LogID      string `json:"log_id"`
	ProfileID  string `json:"profile_id"`
	BonusCoins int    `json:"bonus_coins"`
}

// CheckInDeps holds dependencies for CheckIn.
type CheckInDeps struct {
	CodeStore     CodeStoreForCheckIn
	LogStore      LogStoreForCheckIn
	ProfileStore  ProfileStoreForGrant
	SettingsStore SettingsStoreForGrant
	// GrantDeps wires the bonus grant; nil disables bonuses.
	GrantDeps  *GrantCoinsDeps
	GenerateID func() string
	Now        func() time.Time
}

var (
	ErrCodeInvalid      = errors.New("verification code is invalid or expired")
	ErrAlreadyCheckedIn = errors.New("already checked in today")
)

// ExecuteCheckIn records a gym visit. The code path resolves the profile
// from a live verification code and consumes it; the self and manual paths
// take the profile directly.
// PRE: Member resolves to an active profile; first check-in of the day
// POST: Log row saved; configured bonus coins granted on first daily visit
// INVARIANT: A consumed code can never be replayed
func ExecuteCheckIn(ctx context.Context, input CheckInInput, deps CheckInDeps) (CheckInResult, error) {
	now := deps.Now()
	profileID := input.ProfileID

	var consumed *checkin.VerificationCode
	if input.Method == checkin.MethodCode {
		code, err := deps.CodeStore.GetActiveByCode(ctx, input.Code, now)
		if err != nil {
			return CheckInResult{}, ErrCodeInvalid
		}
		if err := code.Consume(now); err != nil {
			return CheckInResult{}, ErrCodeInvalid
		}
		profileID = code.ProfileID
		consumed = &code
	}

	p, err := deps.ProfileStore.GetByID(ctx, profileID)
	if err != nil {
		return CheckInResult{}, ErrProfileNotFound
	}
	if p.Status == profile.StatusSuspended {
		return CheckInResult{}, ErrProfileSuspended
	}
	if p.Status == profile.StatusInactive {
		return CheckInResult{}, errors.New("inactive memberships cannot check in")
	}

	today := now.Format("2006-01-02")
	count, err := deps.LogStore.CountByProfileIDAndDate(ctx, profileID, today)
	if err != nil {
		return CheckInResult{}, err
	}
	if count > 0 {
		return CheckInResult{}, ErrAlreadyCheckedIn
	}

	// Burn the code only once the visit is certain to be recordable.
	if consumed != nil {
		if err := deps.CodeStore.Save(ctx, *consumed); err != nil {
			return CheckInResult{}, err
		}
	}

	bonus := settings.DefaultCheckInBonusCoins
	if deps.SettingsStore != nil {
		if s, err := deps.SettingsStore.GetSetting(ctx, settings.KeyCheckInBonusCoins); err == nil {
			bonus = s.IntValue(settings.DefaultCheckInBonusCoins)
		}
	}

	// Grant before logging so the log row never overstates the coins that
	// actually landed; a failed grant records a zero-bonus visit.
	granted := 0
	if bonus > 0 && deps.GrantDeps != nil {
		_, err := ExecuteGrantCoins(ctx, GrantCoinsInput{
			ProfileID:  profileID,
			Amount:     bonus,
			TxType:     coin.TxCheckInBonus,
			Reason:     "check-in bonus",
			ExecutorID: input.PerformedBy,
		}, *deps.GrantDeps)
		if err != nil {
			slog.Error("checkin_event", "event", "bonus_grant_failed", "profile_id", profileID, "error", err.Error())
		} else {
			granted = bonus
		}
	}

	entry := checkin.Log{
		ID:          deps.GenerateID(),
		ProfileID:   profileID,
		PerformedBy: input.PerformedBy,
		Method:      input.Method,
		BonusCoins:  granted,
		CheckedInAt: now,
	}
	if err := entry.Validate(); err != nil {
		return CheckInResult{}, err
	}
	if err := deps.LogStore.Save(ctx, entry); err != nil {
		return CheckInResult{}, err
	}

	slog.Info("checkin_event", "event", "checked_in", "profile_id", profileID, "method", input.Method, "bonus", granted)
	return CheckInResult{LogID: entry.ID, ProfileID: profileID, BonusCoins: granted}, nil
}
