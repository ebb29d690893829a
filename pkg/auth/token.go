package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/hubd/pkg/metadata"
)

// TokenPrefix marks a raw API token as belonging to this hub, mirroring the
// prefixed-token convention (hub_<random>) so tokens are recognizable and
// greppable in logs without ever logging the raw value itself.
const TokenPrefix = "hub_"

// rawTokenBytes is the amount of random entropy in a raw API token, before
// hex-encoding.
const rawTokenBytes = 32

// TokenService issues and verifies long-lived API tokens (hub_<random>),
// storing only their SHA-256 hash so a leaked database dump never exposes
// usable credentials.
type TokenService struct {
	store metadata.TokenStore
}

func NewTokenService(store metadata.TokenStore) *TokenService {
	return &TokenService{store: store}
}

// IssueAPIToken creates a new API token for principalID and returns the raw
// token string. The raw value is returned exactly once; only its hash is
// persisted.
func (s *TokenService) IssueAPIToken(ctx context.Context, principalID, name string, scopes []string, ttl time.Duration) (rawToken string, token *metadata.Token, err error) {
	raw, err := generateRawToken()
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}

	t := &metadata.Token{
		ID:          uuid.NewString(),
		PrincipalID: principalID,
		Kind:        metadata.TokenKindAPI,
		HashedKey:   HashRawToken(raw),
		Name:        name,
		Scopes:      scopes,
		CreatedAt:   time.Now().UTC(),
	}
	if ttl > 0 {
		expiresAt := time.Now().UTC().Add(ttl)
		t.ExpiresAt = &expiresAt
	}

	if err := s.store.CreateToken(ctx, t); err != nil {
		return "", nil, err
	}
	return raw, t, nil
}

// Authenticate resolves a raw bearer token to the Token row it hashes to.
// GetTokenByHash only returns live tokens, so a revoked or expired token
// surfaces here as metadata.ErrNotFound. It touches LastUsedAt on success.
func (s *TokenService) Authenticate(ctx context.Context, rawToken string) (*metadata.Token, error) {
	hashed := HashRawToken(rawToken)
	t, err := s.store.GetTokenByHash(ctx, hashed)
	if err != nil {
		return nil, err
	}

	if err := s.store.TouchToken(ctx, t.ID); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TokenService) Revoke(ctx context.Context, tokenID string) error {
	return s.store.RevokeToken(ctx, tokenID)
}

// HashRawToken computes the SHA-256 hash stored alongside a Token row.
func HashRawToken(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}

func generateRawToken() (string, error) {
	buf := make([]byte, rawTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return TokenPrefix + hex.EncodeToString(buf), nil
}
