package validation

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCheckDonorAge(t *testing.T) {
	today := date(2026, time.October, 16)

	tests := []struct {
		name    string
		dob     time.Time
		wantErr error
	}{
		{
			name:    "seventeen",
			dob:     date(2008, time.October, 17),
			wantErr: ErrUnderage,
		},
		{
			name: "eighteen today",
			dob:  date(2008, time.October, 16),
		},
		{
			name: "sixty five",
			dob:  date(1961, time.March, 1),
		},
		{
			name: "sixty five until tomorrow",
			dob:  date(1960, time.October, 17),
		},
		{
			name:    "sixty six",
			dob:     date(1960, time.October, 16),
			wantErr: ErrTooOld,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckDonorAge(tt.dob, today)
			if err != tt.wantErr {
				t.Fatalf("CheckDonorAge(%s) = %v, want %v", tt.dob.Format(time.DateOnly), err, tt.wantErr)
			}
		})
	}
}

func TestCalendarAge(t *testing.T) {
	at := date(2026, time.October, 16)

	if got := CalendarAge(date(2000, time.October, 17), at); got != 25 {
		t.Fatalf("CalendarAge before birthday = %d, want 25", got)
	}
	if got := CalendarAge(date(2000, time.October, 16), at); got != 26 {
		t.Fatalf("CalendarAge on birthday = %d, want 26", got)
	}
	if got := CalendarAge(date(2000, time.September, 30), at); got != 26 {
		t.Fatalf("CalendarAge after birthday = %d, want 26", got)
	}
}

func TestIsStrongPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{name: "letters and digits", password: "abc12345", valid: true},
		{name: "no digit", password: "abcdefgh", valid: false},
		{name: "no letter", password: "12345678", valid: false},
		{name: "too short", password: "abc1234", valid: false},
		{name: "non latin letters only count as special", password: "пароль123", valid: false},
		{name: "mixed with special", password: "S3cure!pass", valid: true},
		{name: "short multibyte counts characters", password: "ab12жж", valid: false},
		{name: "eight characters with multibyte", password: "ab12жжжж", valid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsStrongPassword(tt.password)
			if got != tt.valid {
				t.Fatalf("IsStrongPassword(%q) = %v, want %v", tt.password, got, tt.valid)
			}
		})
	}
}

func TestCheckNewPassword(t *testing.T) {
	if err := CheckNewPassword("abcdefgh", "abcdefgh"); err != ErrWeakPassword {
		t.Fatalf("weak password: got %v, want %v", err, ErrWeakPassword)
	}
	if err := CheckNewPassword("abc12345", "abc12346"); err != ErrPasswordMismatch {
		t.Fatalf("mismatch: got %v, want %v", err, ErrPasswordMismatch)
	}
	if err := CheckNewPassword("ab12жж", "ab12жж"); err != ErrWeakPassword {
		t.Fatalf("short multibyte password: got %v, want %v", err, ErrWeakPassword)
	}
	if err := CheckNewPassword("abc12345", "abc12345"); err != nil {
		t.Fatalf("valid password: got %v", err)
	}
}

func TestPasswordStrength(t *testing.T) {
	tests := []struct {
		password string
		want     Strength
	}{
		{password: "abc", want: StrengthWeak},
		{password: "abcdefgh", want: StrengthWeak},
		{password: "abc12345", want: StrengthMedium},
		{password: "abc12345!", want: StrengthMedium},
		{password: "abcdef12345!", want: StrengthStrong},
		{password: "ab12жж", want: StrengthWeak},
		{password: "ab1!жжжжжжж", want: StrengthMedium},
	}

	for _, tt := range tests {
		if got := PasswordStrength(tt.password); got != tt.want {
			t.Fatalf("PasswordStrength(%q) = %s, want %s", tt.password, got, tt.want)
		}
	}
}

func TestIsValidStudentID(t *testing.T) {
	tests := []struct {
		id    string
		valid bool
	}{
		{id: "123456", valid: true},
		{id: "12345", valid: false},
		{id: "1234567", valid: false},
		{id: "12a456", valid: false},
		{id: "", valid: false},
	}

	for _, tt := range tests {
		if got := IsValidStudentID(tt.id); got != tt.valid {
			t.Fatalf("IsValidStudentID(%q) = %v, want %v", tt.id, got, tt.valid)
		}
	}
}

func TestIsValidAdminUsername(t *testing.T) {
	tests := []struct {
		username string
		valid    bool
	}{
		{username: "admin", valid: true},
		{username: "admin2026", valid: true},
		{username: "adm", valid: false},
		{username: "admin_user", valid: false},
		{username: "abcdefghijklmnopqrstu", valid: false},
	}

	for _, tt := range tests {
		if got := IsValidAdminUsername(tt.username); got != tt.valid {
			t.Fatalf("IsValidAdminUsername(%q) = %v, want %v", tt.username, got, tt.valid)
		}
	}
}
