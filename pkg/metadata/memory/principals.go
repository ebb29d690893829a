package memory

import (
	"context"

	"github.com/marmos91/hubd/pkg/metadata"
)

func (s *Store) CreatePrincipal(ctx context.Context, p *metadata.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.principalsByName[p.Username]; ok {
		return metadata.NewAlreadyExistsError("principal", p.Username)
	}
	clone := *p
	s.principals[p.ID] = &clone
	s.principalsByName[p.Username] = p.ID
	return nil
}

func (s *Store) GetPrincipalByID(ctx context.Context, id string) (*metadata.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.principals[id]
	if !ok {
		return nil, metadata.NewNotFoundError("principal", id)
	}
	clone := *p
	return &clone, nil
}

func (s *Store) GetPrincipalByUsername(ctx context.Context, username string) (*metadata.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.principalsByName[username]
	if !ok {
		return nil, metadata.NewNotFoundError("principal", username)
	}
	clone := *s.principals[id]
	return &clone, nil
}

func (s *Store) UpdatePrincipal(ctx context.Context, p *metadata.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.principals[p.ID]; !ok {
		return metadata.NewNotFoundError("principal", p.ID)
	}
	clone := *p
	s.principals[p.ID] = &clone
	s.principalsByName[p.Username] = p.ID
	return nil
}

func (s *Store) DeletePrincipal(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.principals[id]
	if !ok {
		return metadata.NewNotFoundError("principal", id)
	}
	delete(s.principals, id)
	delete(s.principalsByName, p.Username)
	return nil
}

func (s *Store) ListPrincipals(ctx context.Context) ([]*metadata.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*metadata.Principal
	for _, id := range sortedKeys(s.principals) {
		clone := *s.principals[id]
		out = append(out, &clone)
	}
	return out, nil
}
