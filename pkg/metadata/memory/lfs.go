package memory

import (
	"context"

	"github.com/marmos91/hubd/pkg/metadata"
)

func (s *Store) UpsertLFSPointer(ctx context.Context, p *metadata.LFSPointer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := lfsKey(p.RepositoryID, p.OID)
	if existing, ok := s.lfs[key]; ok {
		clone := *existing
		clone.Size = p.Size
		s.lfs[key] = &clone
		return nil
	}
	clone := *p
	s.lfs[key] = &clone
	return nil
}

func (s *Store) GetLFSPointer(ctx context.Context, repoID, oid string) (*metadata.LFSPointer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.lfs[lfsKey(repoID, oid)]
	if !ok {
		return nil, metadata.NewNotFoundError("lfs_object", oid)
	}
	clone := *p
	return &clone, nil
}

func (s *Store) IncrementLFSRefCount(ctx context.Context, repoID, oid string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := lfsKey(repoID, oid)
	p, ok := s.lfs[key]
	if !ok {
		return metadata.NewNotFoundError("lfs_object", oid)
	}
	p.ReferenceCount += delta
	return nil
}

func (s *Store) ListUnreferenced(ctx context.Context, repoID string, limit int) ([]*metadata.LFSPointer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 100
	}
	var out []*metadata.LFSPointer
	for _, key := range sortedKeys(s.lfs) {
		p := s.lfs[key]
		if p.RepositoryID == repoID && p.ReferenceCount == 0 {
			clone := *p
			out = append(out, &clone)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (s *Store) DeleteLFSPointer(ctx context.Context, repoID, oid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lfs, lfsKey(repoID, oid))
	return nil
}

func (s *Store) GetLFSConfig(ctx context.Context, repoID string) (*metadata.LFSConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.lfsConfigs[repoID]
	if !ok {
		return nil, metadata.NewNotFoundError("lfs_config", repoID)
	}
	clone := *cfg
	return &clone, nil
}

func (s *Store) SetLFSConfig(ctx context.Context, cfg *metadata.LFSConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *cfg
	s.lfsConfigs[cfg.RepositoryID] = &clone
	return nil
}
