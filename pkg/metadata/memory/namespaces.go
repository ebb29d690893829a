package memory

import (
	"context"

	"github.com/marmos91/hubd/pkg/metadata"
)

func (s *Store) CreateNamespace(ctx context.Context, ns *metadata.Namespace) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.namespaces[ns.Slug]; ok {
		return metadata.NewAlreadyExistsError("namespace", ns.Slug)
	}
	clone := *ns
	s.namespaces[ns.Slug] = &clone
	return nil
}

func (s *Store) GetNamespace(ctx context.Context, slug string) (*metadata.Namespace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ns, ok := s.namespaces[slug]
	if !ok {
		return nil, metadata.NewNotFoundError("namespace", slug)
	}
	clone := *ns
	return &clone, nil
}

func (s *Store) DeleteNamespace(ctx context.Context, slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.namespaces[slug]; !ok {
		return metadata.NewNotFoundError("namespace", slug)
	}
	delete(s.namespaces, slug)
	return nil
}

func (s *Store) ListNamespaces(ctx context.Context) ([]*metadata.Namespace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*metadata.Namespace, 0, len(s.namespaces))
	for _, slug := range sortedKeys(s.namespaces) {
		clone := *s.namespaces[slug]
		out = append(out, &clone)
	}
	return out, nil
}
