package auth

import (
	"testing"
	"time"

	"github.com/marmos91/hubd/pkg/metadata"
)

func testJWTService(t *testing.T) *JWTService {
	t.Helper()
	svc, err := NewJWTService(JWTConfig{Secret: "this-is-a-32-character-secret!!!"})
	if err != nil {
		t.Fatalf("NewJWTService() error = %v", err)
	}
	return svc
}

func TestNewJWTService_RejectsShortSecret(t *testing.T) {
	if _, err := NewJWTService(JWTConfig{Secret: "too-short"}); err != ErrInvalidSecretLength {
		t.Errorf("got %v, want ErrInvalidSecretLength", err)
	}
}

func TestGenerateAndValidateTokenPair(t *testing.T) {
	svc := testJWTService(t)
	p := &metadata.Principal{ID: "p1", Username: "alice", Role: metadata.RoleWriter, Groups: []string{"ml-team"}}

	pair, err := svc.GenerateTokenPair(p)
	if err != nil {
		t.Fatalf("GenerateTokenPair() error = %v", err)
	}

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccessToken() error = %v", err)
	}
	if claims.PrincipalID != "p1" || claims.Username != "alice" || claims.Role != metadata.RoleWriter {
		t.Errorf("unexpected claims: %+v", claims)
	}

	if _, err := svc.ValidateAccessToken(pair.RefreshToken); err != ErrInvalidTokenType {
		t.Errorf("validating refresh token as access: got %v, want ErrInvalidTokenType", err)
	}

	refreshClaims, err := svc.ValidateRefreshToken(pair.RefreshToken)
	if err != nil {
		t.Fatalf("ValidateRefreshToken() error = %v", err)
	}
	if refreshClaims.PrincipalID != "p1" {
		t.Errorf("refresh claims principal = %q, want p1", refreshClaims.PrincipalID)
	}
}

func TestValidateToken_Expired(t *testing.T) {
	svc, err := NewJWTService(JWTConfig{
		Secret:              "this-is-a-32-character-secret!!!",
		AccessTokenDuration: time.Nanosecond,
	})
	if err != nil {
		t.Fatalf("NewJWTService() error = %v", err)
	}
	pair, err := svc.GenerateTokenPair(&metadata.Principal{ID: "p1", Username: "alice"})
	if err != nil {
		t.Fatalf("GenerateTokenPair() error = %v", err)
	}
	time.Sleep(time.Millisecond)

	if _, err := svc.ValidateAccessToken(pair.AccessToken); err != ErrExpiredToken {
		t.Errorf("got %v, want ErrExpiredToken", err)
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	svc := testJWTService(t)
	pair, err := svc.GenerateTokenPair(&metadata.Principal{ID: "p1", Username: "alice"})
	if err != nil {
		t.Fatalf("GenerateTokenPair() error = %v", err)
	}

	other, _ := NewJWTService(JWTConfig{Secret: "a-different-32-character-secret!"})
	if _, err := other.ValidateToken(pair.AccessToken); err != ErrInvalidToken {
		t.Errorf("got %v, want ErrInvalidToken", err)
	}
}
