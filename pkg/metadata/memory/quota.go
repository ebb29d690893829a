package memory

import (
	"context"

	"github.com/marmos91/hubd/pkg/metadata"
)

func (s *Store) GetQuotaPolicy(ctx context.Context, namespaceID string) (*metadata.QuotaPolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quotas[namespaceID]
	if !ok {
		return nil, metadata.NewNotFoundError("quota_policy", namespaceID)
	}
	clone := *q
	return &clone, nil
}

func (s *Store) SetQuotaPolicy(ctx context.Context, q *metadata.QuotaPolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *q
	s.quotas[q.NamespaceID] = &clone
	return nil
}

func (s *Store) ReserveQuota(ctx context.Context, namespaceID string, deltaBytes, deltaObjects int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quotas[namespaceID]
	if !ok {
		return metadata.NewNotFoundError("quota_policy", namespaceID)
	}
	if deltaBytes > 0 && q.MaxBytes != 0 && q.UsedBytes+deltaBytes > q.MaxBytes {
		return metadata.NewQuotaExceededError("namespace", namespaceID)
	}
	if deltaObjects > 0 && q.MaxObjects != 0 && q.UsedObjects+deltaObjects > q.MaxObjects {
		return metadata.NewQuotaExceededError("namespace", namespaceID)
	}
	q.UsedBytes += deltaBytes
	q.UsedObjects += deltaObjects
	return nil
}
