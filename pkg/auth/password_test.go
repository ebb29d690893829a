package auth

import (
	"strings"
	"testing"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("test-password-123")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if !strings.HasPrefix(hash, "$2a$") && !strings.HasPrefix(hash, "$2b$") {
		t.Errorf("HashPassword() hash = %q, want bcrypt format", hash)
	}
	if !VerifyPassword("test-password-123", hash) {
		t.Error("VerifyPassword() returned false for correct password")
	}
}

func TestHashPassword_DifferentSalts(t *testing.T) {
	hash1, _ := HashPassword("same-password")
	hash2, _ := HashPassword("same-password")
	if hash1 == hash2 {
		t.Error("HashPassword() generated identical hashes, expected different salts")
	}
}

func TestVerifyPassword_WrongPassword(t *testing.T) {
	hash, _ := HashPassword("correct-password")
	if VerifyPassword("wrong-password", hash) {
		t.Error("VerifyPassword() returned true for wrong password")
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name    string
		pw      string
		wantErr error
	}{
		{"too short", "short", ErrPasswordTooShort},
		{"too long", strings.Repeat("a", 73), ErrPasswordTooLong},
		{"valid", "validpassword", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidatePassword(tt.pw); err != tt.wantErr {
				t.Errorf("ValidatePassword(%q) = %v, want %v", tt.pw, err, tt.wantErr)
			}
		})
	}
}

func TestNeedsRehash(t *testing.T) {
	hash, _ := HashPassword("some-password")
	if NeedsRehash(hash) {
		t.Error("NeedsRehash() true for hash at current cost")
	}
	if !NeedsRehash("not-a-valid-hash") {
		t.Error("NeedsRehash() false for invalid hash")
	}
}
