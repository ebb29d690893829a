package memory

import (
	"context"
	"strings"

	"github.com/marmos91/hubd/pkg/metadata"
)

func (s *Store) CreateRepository(ctx context.Context, r *metadata.Repository) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var nsSlug string
	for slug, ns := range s.namespaces {
		if ns.ID == r.NamespaceID {
			nsSlug = slug
			break
		}
	}
	key := repoKey(nsSlug, r.Name)
	if _, ok := s.repoByKey[key]; ok {
		return metadata.NewAlreadyExistsError("repository", r.Name)
	}
	clone := *r
	s.repositories[r.ID] = &clone
	s.repoByKey[key] = r.ID
	return nil
}

func (s *Store) GetRepository(ctx context.Context, namespaceSlug, name string) (*metadata.Repository, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.repoByKey[repoKey(namespaceSlug, name)]
	if !ok {
		return nil, metadata.NewNotFoundError("repository", namespaceSlug+"/"+name)
	}
	clone := *s.repositories[id]
	return &clone, nil
}

func (s *Store) DeleteRepository(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.repositories[id]
	if !ok {
		return metadata.NewNotFoundError("repository", id)
	}
	for k, v := range s.repoByKey {
		if v == id {
			delete(s.repoByKey, k)
		}
	}
	delete(s.repositories, id)
	_ = r
	return nil
}

func (s *Store) ListRepositories(ctx context.Context, namespaceSlug string) ([]*metadata.Repository, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	prefix := namespaceSlug + "/"
	var out []*metadata.Repository
	for _, key := range sortedKeys(s.repoByKey) {
		if strings.HasPrefix(key, prefix) {
			clone := *s.repositories[s.repoByKey[key]]
			out = append(out, &clone)
		}
	}
	return out, nil
}
