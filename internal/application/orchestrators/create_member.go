package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"stella/internal/domain/account"
	"stella/internal/domain/profile"
)

// AccountStoreForCreate defines the account store interface needed by CreateMember.
type AccountStoreForCreate interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// ProfileStoreForCreate defines the profile store interface needed by CreateMember.
type ProfileStoreForCreate interface {
	Save(ctx context.Context, p profile.Profile) error
}

// CreateMemberInput carries input for member registration.
type CreateMemberInput struct {
	Email    string
	Password string
	Name     string
}

// CreateMemberResult carries the created identifiers.
type CreateMemberResult struct {
	AccountID string
	ProfileID string
}

// CreateMemberDeps holds dependencies for CreateMember.
type CreateMemberDeps struct {
	AccountStore AccountStoreForCreate
	ProfileStore ProfileStoreForCreate
	GenerateID   func() string
	Now          func() time.Time
}

// ErrEmailTaken is returned when an account already exists for the email.
var ErrEmailTaken = errors.New("an account already exists for that email")

// ExecuteCreateMember registers a new member: one account with the user role
// plus its linked profile starting at bronze rank.
// PRE: email is unused, password meets policy
// POST: account and profile persisted; profile starts active at bronze
func ExecuteCreateMember(ctx context.Context, input CreateMemberInput, deps CreateMemberDeps) (CreateMemberResult, error) {
	if _, err := deps.AccountStore.GetByEmail(ctx, input.Email); err == nil {
		return CreateMemberResult{}, ErrEmailTaken
	}

	acct := account.Account{
		ID:        deps.GenerateID(),
		Email:     input.Email,
		Role:      account.RoleUser,
		CreatedAt: deps.Now(),
	}
	if err := acct.Validate(); err != nil {
		return CreateMemberResult{}, err
	}
	if err := acct.SetPassword(input.Password); err != nil {
		return CreateMemberResult{}, err
	}

	p := profile.Profile{
		ID:        deps.GenerateID(),
		AccountID: acct.ID,
		Name:      input.Name,
		Email:     input.Email,
		Status:    profile.StatusActive,
		Rank:      profile.RankBronze,
	}
	if err := p.Validate(); err != nil {
		return CreateMemberResult{}, err
	}

	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return CreateMemberResult{}, err
	}
	if err := deps.ProfileStore.Save(ctx, p); err != nil {
		return CreateMemberResult{}, err
	}

	slog.Info("account_event", "event", "member_created", "account_id", acct.ID, "profile_id", p.ID)
	return CreateMemberResult{AccountID: acct.ID, ProfileID: p.ID}, nil
}

// CreateStaffInput carries input for staff account creation.
type CreateStaffInput struct {
	Email    string
	Password string
	Role     string // mentor, manager or admin
	TierID   string
}

// CreateStaffDeps holds dependencies for CreateStaff.
type CreateStaffDeps struct {
	AccountStore AccountStoreForCreate
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteCreateStaff creates a staff account without a member profile.
// PRE: role is mentor, manager or admin; email is unused
// POST: account persisted with the given role and optional tier link
func ExecuteCreateStaff(ctx context.Context, input CreateStaffInput, deps CreateStaffDeps) (string, error) {
	if input.Role == account.RoleUser {
		return "", errors.New("staff accounts cannot use the user role")
	}
	if _, err := deps.AccountStore.GetByEmail(ctx, input.Email); err == nil {
		return "", ErrEmailTaken
	}

	acct := account.Account{
		ID:        deps.GenerateID(),
		Email:     input.Email,
		Role:      input.Role,
		TierID:    input.TierID,
		CreatedAt: deps.Now(),
	}
	if err := acct.Validate(); err != nil {
		return "", err
	}
	if err := acct.SetPassword(input.Password); err != nil {
		return "", err
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return "", err
	}

	slog.Info("account_event", "event", "staff_created", "account_id", acct.ID, "role", acct.Role)
	return acct.ID, nil
}
