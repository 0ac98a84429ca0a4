package auth

import (
	"testing"
	"time"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("correct-horse-battery", 4) // low cost for speed
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPassword(hash, "correct-horse-battery") {
		t.Error("CheckPassword should return true for correct password")
	}
	if CheckPassword(hash, "wrong-password") {
		t.Error("CheckPassword should return false for incorrect password")
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid 8 chars", "12345678", false},
		{"valid long", "a-very-secure-password", false},
		{"too short", "1234567", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
			}
		})
	}
}

func TestRole_AtLeast(t *testing.T) {
	tests := []struct {
		role Role
		min  Role
		want bool
	}{
		{RoleAdmin, RoleEditor, true},
		{RoleEditor, RoleEditor, true},
		{RoleViewer, RoleEditor, false},
		{RoleEditor, RoleAdmin, false},
		{Role("superuser"), RoleViewer, false},
	}
	for _, tt := range tests {
		if got := tt.role.AtLeast(tt.min); got != tt.want {
			t.Errorf("%s.AtLeast(%s) = %v, want %v", tt.role, tt.min, got, tt.want)
		}
	}
	if ValidRoles[Role("operator")] {
		t.Error("operator is not a site role")
	}
}

func TestUser_Locked(t *testing.T) {
	now := time.Now()
	later := now.Add(time.Minute)
	earlier := now.Add(-time.Minute)

	if (&User{}).Locked(now) {
		t.Error("user without lockout should not be locked")
	}
	if !(&User{LockedUntil: &later}).Locked(now) {
		t.Error("user inside lockout window should be locked")
	}
	if (&User{LockedUntil: &earlier}).Locked(now) {
		t.Error("expired lockout should not lock")
	}
}
