package memory

import (
	"context"
	"time"

	"github.com/marmos91/hubd/pkg/metadata"
)

func (s *Store) CreateToken(ctx context.Context, t *metadata.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokensByHash[t.HashedKey]; ok {
		return metadata.NewAlreadyExistsError("token", t.ID)
	}
	clone := *t
	s.tokens[t.ID] = &clone
	s.tokensByHash[t.HashedKey] = t.ID
	return nil
}

func (s *Store) GetTokenByHash(ctx context.Context, hashedKey string) (*metadata.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.tokensByHash[hashedKey]
	if !ok {
		return nil, metadata.NewNotFoundError("token", "")
	}
	t := s.tokens[id]
	if t.Revoked || (t.ExpiresAt != nil && t.ExpiresAt.Before(time.Now())) {
		return nil, metadata.NewNotFoundError("token", "")
	}
	clone := *t
	return &clone, nil
}

func (s *Store) RevokeToken(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[id]
	if !ok {
		return metadata.NewNotFoundError("token", id)
	}
	t.Revoked = true
	return nil
}

func (s *Store) TouchToken(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[id]
	if !ok {
		return metadata.NewNotFoundError("token", id)
	}
	now := time.Now().UTC()
	t.LastUsedAt = &now
	return nil
}

func (s *Store) ListTokens(ctx context.Context, principalID string) ([]*metadata.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*metadata.Token
	for _, id := range sortedKeys(s.tokens) {
		t := s.tokens[id]
		if t.PrincipalID == principalID {
			clone := *t
			out = append(out, &clone)
		}
	}
	return out, nil
}
