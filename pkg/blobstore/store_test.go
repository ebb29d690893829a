package blobstore

import "testing"

func TestKeyForOID(t *testing.T) {
	tests := []struct {
		oid  string
		want string
	}{
		{"abcdef0123456789", "sha256/ab/cd/abcdef0123456789"},
		{"ab", "sha256/ab"},
		{"", "sha256/"},
	}
	for _, tc := range tests {
		t.Run(tc.oid, func(t *testing.T) {
			if got := KeyForOID(tc.oid); got != tc.want {
				t.Errorf("KeyForOID(%q) = %q, want %q", tc.oid, got, tc.want)
			}
		})
	}
}

func TestSHA256Hex(t *testing.T) {
	got := SHA256Hex([]byte("hello"))
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if got != want {
		t.Errorf("SHA256Hex() = %q, want %q", got, want)
	}
}
