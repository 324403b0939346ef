package shift_test

import (
	"testing"

	"stella/internal/domain/shift"
)

// TestShift_Validate tests validation of Shift.
func TestShift_Validate(t *testing.T) {
	tests := []struct {
		name    string
		sh      shift.Shift
		wantErr bool
	}{
		{
			name:    "valid mentor shift",
			sh:      shift.Shift{ID: "1", StaffID: "s1", RoleKind: shift.KindMentor, Weekday: "monday", StartTime: "09:00", EndTime: "17:00"},
			wantErr: false,
		},
		{
			name:    "valid trainer shift",
			sh:      shift.Shift{ID: "2", StaffID: "s1", RoleKind: shift.KindTrainer, Weekday: "saturday", StartTime: "10:00", EndTime: "14:00"},
			wantErr: false,
		},
		{
			name:    "missing staff",
			sh:      shift.Shift{ID: "3", RoleKind: shift.KindMentor, Weekday: "monday", StartTime: "09:00", EndTime: "17:00"},
			wantErr: true,
		},
		{
			name:    "bad kind",
			sh:      shift.Shift{ID: "4", StaffID: "s1", RoleKind: "receptionist", Weekday: "monday", StartTime: "09:00", EndTime: "17:00"},
			wantErr: true,
		},
		{
			name:    "bad weekday",
			sh:      shift.Shift{ID: "5", StaffID: "s1", RoleKind: shift.KindMentor, Weekday: "funday", StartTime: "09:00", EndTime: "17:00"},
			wantErr: true,
		},
		{
			name:    "start after end",
			sh:      shift.Shift{ID: "6", StaffID: "s1", RoleKind: shift.KindMentor, Weekday: "monday", StartTime: "18:00", EndTime: "09:00"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sh.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Shift.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestShift_ContainsTime verifies the half-open [start, end) interval.
func TestShift_ContainsTime(t *testing.T) {
	sh := shift.Shift{ID: "1", StaffID: "s1", RoleKind: shift.KindMentor, Weekday: "monday", StartTime: "09:00", EndTime: "17:00"}

	tests := []struct {
		name string
		time string
		want bool
	}{
		{"before start", "08:59", false},
		{"exactly at start", "09:00", true},
		{"middle", "12:30", true},
		{"one minute before end", "16:59", true},
		{"exactly at end", "17:00", false},
		{"after end", "18:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sh.ContainsTime(tt.time); got != tt.want {
				t.Errorf("ContainsTime(%q) = %v, want %v", tt.time, got, tt.want)
			}
		})
	}
}
