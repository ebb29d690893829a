package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/marmos91/hubd/pkg/metadata"
)

func (s *Store) UpsertLFSPointer(ctx context.Context, p *metadata.LFSPointer) error {
	_, err := s.q(ctx).Exec(ctx,
		`INSERT INTO lfs_pointers (repository_id, oid, size, uploaded_at, reference_count)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (repository_id, oid) DO UPDATE SET size = EXCLUDED.size`,
		p.RepositoryID, p.OID, p.Size, p.UploadedAt, p.ReferenceCount)
	return err
}

func (s *Store) GetLFSPointer(ctx context.Context, repoID, oid string) (*metadata.LFSPointer, error) {
	row := s.q(ctx).QueryRow(ctx,
		`SELECT repository_id, oid, size, uploaded_at, reference_count FROM lfs_pointers
		 WHERE repository_id = $1 AND oid = $2`, repoID, oid)
	p := &metadata.LFSPointer{}
	err := row.Scan(&p.RepositoryID, &p.OID, &p.Size, &p.UploadedAt, &p.ReferenceCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, metadata.NewNotFoundError("lfs_object", oid)
		}
		return nil, err
	}
	return p, nil
}

func (s *Store) IncrementLFSRefCount(ctx context.Context, repoID, oid string, delta int) error {
	tag, err := s.q(ctx).Exec(ctx,
		`UPDATE lfs_pointers SET reference_count = reference_count + $3
		 WHERE repository_id = $1 AND oid = $2`, repoID, oid, delta)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return metadata.NewNotFoundError("lfs_object", oid)
	}
	return nil
}

func (s *Store) ListUnreferenced(ctx context.Context, repoID string, limit int) ([]*metadata.LFSPointer, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.q(ctx).Query(ctx,
		`SELECT repository_id, oid, size, uploaded_at, reference_count FROM lfs_pointers
		 WHERE repository_id = $1 AND reference_count = 0 LIMIT $2`, repoID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*metadata.LFSPointer
	for rows.Next() {
		p := &metadata.LFSPointer{}
		if err := rows.Scan(&p.RepositoryID, &p.OID, &p.Size, &p.UploadedAt, &p.ReferenceCount); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) DeleteLFSPointer(ctx context.Context, repoID, oid string) error {
	_, err := s.q(ctx).Exec(ctx,
		`DELETE FROM lfs_pointers WHERE repository_id = $1 AND oid = $2`, repoID, oid)
	return err
}

func (s *Store) GetLFSConfig(ctx context.Context, repoID string) (*metadata.LFSConfig, error) {
	row := s.q(ctx).QueryRow(ctx,
		`SELECT repository_id, threshold_bytes, multipart_threshold, suffix_rules
		 FROM lfs_configs WHERE repository_id = $1`, repoID)
	cfg := &metadata.LFSConfig{}
	err := row.Scan(&cfg.RepositoryID, &cfg.ThresholdBytes, &cfg.MultipartThreshold, &cfg.SuffixRules)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, metadata.NewNotFoundError("lfs_config", repoID)
		}
		return nil, err
	}
	return cfg, nil
}

func (s *Store) SetLFSConfig(ctx context.Context, cfg *metadata.LFSConfig) error {
	_, err := s.q(ctx).Exec(ctx,
		`INSERT INTO lfs_configs (repository_id, threshold_bytes, multipart_threshold, suffix_rules)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (repository_id) DO UPDATE SET
		   threshold_bytes = EXCLUDED.threshold_bytes,
		   multipart_threshold = EXCLUDED.multipart_threshold,
		   suffix_rules = EXCLUDED.suffix_rules`,
		cfg.RepositoryID, cfg.ThresholdBytes, cfg.MultipartThreshold, cfg.SuffixRules)
	return err
}
