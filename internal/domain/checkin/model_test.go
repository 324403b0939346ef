package checkin_test

import (
	"testing"
	"time"

	"stella/internal/domain/checkin"
)

// TestGenerateCode verifies code shape.
func TestGenerateCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := checkin.GenerateCode()
		if err != nil {
			t.Fatalf("GenerateCode failed: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("code %q is not 6 characters", code)
		}
		for _, c := range code {
			if c < '0' || c > '9' {
				t.Fatalf("code %q contains non-digit", code)
			}
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Error("50 generated codes were all identical")
	}
}

// TestVerificationCode_Consume verifies the single-use and expiry rules.
func TestVerificationCode_Consume(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	code := checkin.VerificationCode{
		ID:        "1",
		ProfileID: "p1",
		Code:      "123456",
		ExpiresAt: now.Add(checkin.CodeTTL),
		CreatedAt: now,
	}

	if err := code.Consume(now); err != nil {
		t.Fatalf("first Consume failed: %v", err)
	}
	if !code.Used {
		t.Error("code not marked used after Consume")
	}
	if err := code.Consume(now); err != checkin.ErrCodeUsed {
		t.Errorf("second Consume = %v, want ErrCodeUsed", err)
	}

	expired := checkin.VerificationCode{
		ID:        "2",
		ProfileID: "p1",
		Code:      "654321",
		ExpiresAt: now.Add(-time.Minute),
		CreatedAt: now.Add(-10 * time.Minute),
	}
	if err := expired.Consume(now); err != checkin.ErrCodeExpired {
		t.Errorf("Consume expired = %v, want ErrCodeExpired", err)
	}
}

// TestLog_Validate tests validation of check-in Log.
func TestLog_Validate(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		log     checkin.Log
		wantErr bool
	}{
		{
			name:    "valid self check-in",
			log:     checkin.Log{ID: "1", ProfileID: "p1", PerformedBy: "a1", Method: checkin.MethodSelf, CheckedInAt: now},
			wantErr: false,
		},
		{
			name:    "valid code check-in with bonus",
			log:     checkin.Log{ID: "2", ProfileID: "p1", PerformedBy: "a2", Method: checkin.MethodCode, BonusCoins: 50, CheckedInAt: now},
			wantErr: false,
		},
		{
			name:    "missing profile",
			log:     checkin.Log{ID: "3", PerformedBy: "a1", Method: checkin.MethodSelf, CheckedInAt: now},
			wantErr: true,
		},
		{
			name:    "missing performer",
			log:     checkin.Log{ID: "4", ProfileID: "p1", Method: checkin.MethodSelf, CheckedInAt: now},
			wantErr: true,
		},
		{
			name:    "bad method",
			log:     checkin.Log{ID: "5", ProfileID: "p1", PerformedBy: "a1", Method: "kiosk", CheckedInAt: now},
			wantErr: true,
		},
		{
			name:    "negative bonus",
			log:     checkin.Log{ID: "6", ProfileID: "p1", PerformedBy: "a1", Method: checkin.MethodSelf, BonusCoins: -1, CheckedInAt: now},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.log.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Log.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
