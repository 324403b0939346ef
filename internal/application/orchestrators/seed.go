package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"stella/internal/domain/account"
	"stella/internal/domain/settings"
	"stella/internal/domain/tier"
)

// SeedAdminDeps holds dependencies for SeedAdmin.
type SeedAdminDeps struct {
	AccountStore AccountStoreForCreate
}

// ExecuteSeedAdmin creates the initial admin account if no account exists
// for the email. Called on every startup; a no-op once seeded.
// PRE: email and password come from deployment configuration
// POST: Admin account exists for the email
func ExecuteSeedAdmin(ctx context.Context, email, password string, deps SeedAdminDeps) error {
	if email == "" || password == "" {
		return nil
	}
	if _, err := deps.AccountStore.GetByEmail(ctx, email); err == nil {
		return nil
	}

	acct := account.Account{
		ID:        uuid.New().String(),
		Email:     email,
		Role:      account.RoleAdmin,
		CreatedAt: time.Now(),
	}
	if err := acct.SetPassword(password); err != nil {
		return err
	}
	if err := acct.Validate(); err != nil {
		return err
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return err
	}

	slog.Info("seed_event", "event", "admin_seeded", "email", email)
	return nil
}

// SettingsStoreForSeed writes default configuration rows.
type SettingsStoreForSeed interface {
	GetSetting(ctx context.Context, key string) (settings.Setting, error)
	SaveSetting(ctx context.Context, s settings.Setting) error
	GetHours(ctx context.Context, weekday string) (settings.BusinessHours, error)
	SaveHours(ctx context.Context, h settings.BusinessHours) error
}

// TierStoreForSeed writes the protected top tier.
type TierStoreForSeed interface {
	GetByLevel(ctx context.Context, level int) (tier.Tier, error)
	Save(ctx context.Context, t tier.Tier) error
}

// SeedDefaultsDeps holds dependencies for SeedDefaults.
type SeedDefaultsDeps struct {
	SettingsStore SettingsStoreForSeed
	TierStore     TierStoreForSeed
}

// ExecuteSeedDefaults writes the default settings, weekly business hours
// and the protected tier on first startup. Existing rows are left alone.
// POST: Every well-known setting key, weekday and tier 1 exist
func ExecuteSeedDefaults(ctx context.Context, deps SeedDefaultsDeps) error {
	now := time.Now()

	defaults := map[string]string{
		settings.KeyCancelCutoffHours: "24",
		settings.KeyCheckInBonusCoins: "0",
		settings.KeyDefaultExpiryDays: "90",
		settings.KeyCoinGrantPresets:  "[10,30,50,100]",
	}
	for key, value := range defaults {
		if _, err := deps.SettingsStore.GetSetting(ctx, key); err == nil {
			continue
		}
		s := settings.Setting{Key: key, Value: value, UpdatedAt: now}
		if err := deps.SettingsStore.SaveSetting(ctx, s); err != nil {
			return err
		}
	}

	for _, weekday := range settings.ValidWeekdays {
		if _, err := deps.SettingsStore.GetHours(ctx, weekday); err == nil {
			continue
		}
		h := settings.BusinessHours{
			ID:        uuid.New().String(),
			Weekday:   weekday,
			OpenTime:  "09:00",
			CloseTime: "22:00",
		}
		if weekday == settings.Sunday {
			h.Closed = true
			h.OpenTime = ""
			h.CloseTime = ""
		}
		if err := deps.SettingsStore.SaveHours(ctx, h); err != nil {
			return err
		}
	}

	if _, err := deps.TierStore.GetByLevel(ctx, tier.ProtectedLevel); err != nil {
		t := tier.Tier{
			ID:    uuid.New().String(),
			Level: tier.ProtectedLevel,
			Name:  "Head Mentor",
			Permissions: map[string]map[string]bool{
				"members":      {"read": true, "write": true},
				"coins":        {"read": true, "write": true},
				"reservations": {"read": true, "write": true},
				"settings":     {"read": true, "write": true},
			},
		}
		if err := deps.TierStore.Save(ctx, t); err != nil {
			return err
		}
	}

	slog.Info("seed_event", "event", "defaults_seeded")
	return nil
}
