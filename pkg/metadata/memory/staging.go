package memory

import (
	"context"
	"time"

	"github.com/marmos91/hubd/pkg/metadata"
)

func (s *Store) CreateStagingRecord(ctx context.Context, rec *metadata.StagingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *rec
	s.staging[lfsKey(rec.RepositoryID, rec.OID)] = &clone
	return nil
}

func (s *Store) GetStagingRecord(ctx context.Context, repoID, oid string) (*metadata.StagingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.staging[lfsKey(repoID, oid)]
	if !ok {
		return nil, metadata.NewNotFoundError("staging_record", oid)
	}
	clone := *rec
	return &clone, nil
}

func (s *Store) UpdateStagingStatus(ctx context.Context, repoID, oid string, status metadata.StagingRecordStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.staging[lfsKey(repoID, oid)]
	if !ok {
		return metadata.NewNotFoundError("staging_record", oid)
	}
	rec.Status = status
	return nil
}

func (s *Store) SetStagingUploadID(ctx context.Context, repoID, oid, uploadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.staging[lfsKey(repoID, oid)]
	if !ok {
		return metadata.NewNotFoundError("staging_record", oid)
	}
	rec.UploadID = uploadID
	return nil
}

func (s *Store) ListExpired(ctx context.Context, limit int) ([]*metadata.StagingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 100
	}
	now := time.Now()
	var out []*metadata.StagingRecord
	for _, key := range sortedKeys(s.staging) {
		rec := s.staging[key]
		if rec.ExpiresAt.Before(now) && (rec.Status == metadata.StagingPending || rec.Status == metadata.StagingUploaded) {
			clone := *rec
			out = append(out, &clone)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (s *Store) DeleteStagingRecord(ctx context.Context, repoID, oid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.staging, lfsKey(repoID, oid))
	return nil
}
