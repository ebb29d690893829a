package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/marmos91/hubd/pkg/metadata"
)

func (s *Store) GetQuotaPolicy(ctx context.Context, namespaceID string) (*metadata.QuotaPolicy, error) {
	row := s.q(ctx).QueryRow(ctx,
		`SELECT id, namespace_id, max_bytes, max_objects, used_bytes, used_objects
		 FROM quota_policies WHERE namespace_id = $1`, namespaceID)
	q := &metadata.QuotaPolicy{}
	err := row.Scan(&q.ID, &q.NamespaceID, &q.MaxBytes, &q.MaxObjects, &q.UsedBytes, &q.UsedObjects)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, metadata.NewNotFoundError("quota_policy", namespaceID)
		}
		return nil, err
	}
	return q, nil
}

func (s *Store) SetQuotaPolicy(ctx context.Context, q *metadata.QuotaPolicy) error {
	_, err := s.q(ctx).Exec(ctx,
		`INSERT INTO quota_policies (id, namespace_id, max_bytes, max_objects, used_bytes, used_objects)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (namespace_id) DO UPDATE SET
		   max_bytes = EXCLUDED.max_bytes, max_objects = EXCLUDED.max_objects`,
		q.ID, q.NamespaceID, q.MaxBytes, q.MaxObjects, q.UsedBytes, q.UsedObjects)
	return err
}

// ReserveQuota atomically checks usage+delta against the policy limit (0
// means unlimited) and applies the delta if it fits. A negative delta always
// succeeds. Callers invoke this inside the same WithTransaction block as the
// commit it accounts for, so usage is never inconsistent with stored files.
func (s *Store) ReserveQuota(ctx context.Context, namespaceID string, deltaBytes, deltaObjects int64) error {
	if deltaBytes <= 0 && deltaObjects <= 0 {
		_, err := s.q(ctx).Exec(ctx,
			`UPDATE quota_policies SET used_bytes = used_bytes + $2, used_objects = used_objects + $3
			 WHERE namespace_id = $1`, namespaceID, deltaBytes, deltaObjects)
		return err
	}

	tag, err := s.q(ctx).Exec(ctx,
		`UPDATE quota_policies SET used_bytes = used_bytes + $2, used_objects = used_objects + $3
		 WHERE namespace_id = $1
		   AND (max_bytes = 0 OR used_bytes + $2 <= max_bytes)
		   AND (max_objects = 0 OR used_objects + $3 <= max_objects)`,
		namespaceID, deltaBytes, deltaObjects)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return metadata.NewQuotaExceededError("namespace", namespaceID)
	}
	return nil
}
