package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/marmos91/hubd/pkg/metadata"
)

func (s *Store) CreateStagingRecord(ctx context.Context, rec *metadata.StagingRecord) error {
	_, err := s.q(ctx).Exec(ctx,
		`INSERT INTO staging_records (id, repository_id, oid, size, status, upload_id, created_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (repository_id, oid) DO UPDATE SET
		   status = EXCLUDED.status, expires_at = EXCLUDED.expires_at`,
		rec.ID, rec.RepositoryID, rec.OID, rec.Size, rec.Status, rec.UploadID, rec.CreatedAt, rec.ExpiresAt)
	return err
}

func (s *Store) GetStagingRecord(ctx context.Context, repoID, oid string) (*metadata.StagingRecord, error) {
	row := s.q(ctx).QueryRow(ctx,
		`SELECT id, repository_id, oid, size, status, upload_id, created_at, expires_at
		 FROM staging_records WHERE repository_id = $1 AND oid = $2`, repoID, oid)
	rec := &metadata.StagingRecord{}
	err := row.Scan(&rec.ID, &rec.RepositoryID, &rec.OID, &rec.Size, &rec.Status, &rec.UploadID, &rec.CreatedAt, &rec.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, metadata.NewNotFoundError("staging_record", oid)
		}
		return nil, err
	}
	return rec, nil
}

func (s *Store) UpdateStagingStatus(ctx context.Context, repoID, oid string, status metadata.StagingRecordStatus) error {
	tag, err := s.q(ctx).Exec(ctx,
		`UPDATE staging_records SET status = $3 WHERE repository_id = $1 AND oid = $2`, repoID, oid, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return metadata.NewNotFoundError("staging_record", oid)
	}
	return nil
}

func (s *Store) SetStagingUploadID(ctx context.Context, repoID, oid, uploadID string) error {
	tag, err := s.q(ctx).Exec(ctx,
		`UPDATE staging_records SET upload_id = $3 WHERE repository_id = $1 AND oid = $2`, repoID, oid, uploadID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return metadata.NewNotFoundError("staging_record", oid)
	}
	return nil
}

func (s *Store) ListExpired(ctx context.Context, limit int) ([]*metadata.StagingRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.q(ctx).Query(ctx,
		`SELECT id, repository_id, oid, size, status, upload_id, created_at, expires_at
		 FROM staging_records
		 WHERE expires_at < now() AND status IN ('pending', 'uploaded')
		 LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*metadata.StagingRecord
	for rows.Next() {
		rec := &metadata.StagingRecord{}
		if err := rows.Scan(&rec.ID, &rec.RepositoryID, &rec.OID, &rec.Size, &rec.Status, &rec.UploadID, &rec.CreatedAt, &rec.ExpiresAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) DeleteStagingRecord(ctx context.Context, repoID, oid string) error {
	_, err := s.q(ctx).Exec(ctx,
		`DELETE FROM staging_records WHERE repository_id = $1 AND oid = $2`, repoID, oid)
	return err
}
