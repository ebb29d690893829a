package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/marmos91/hubd/pkg/metadata"
)

func (s *Store) CreateRepository(ctx context.Context, r *metadata.Repository) error {
	_, err := s.q(ctx).Exec(ctx,
		`INSERT INTO repositories (id, namespace_id, name, kind, private, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.ID, r.NamespaceID, r.Name, r.Kind, r.Private, r.CreatedBy, r.CreatedAt)
	if isUniqueViolation(err) {
		return metadata.NewAlreadyExistsError("repository", r.Name)
	}
	return err
}

func (s *Store) GetRepository(ctx context.Context, namespaceSlug, name string) (*metadata.Repository, error) {
	row := s.q(ctx).QueryRow(ctx,
		`SELECT r.id, r.namespace_id, r.name, r.kind, r.private, r.created_by, r.created_at
		 FROM repositories r JOIN namespaces n ON n.id = r.namespace_id
		 WHERE n.slug = $1 AND r.name = $2`, namespaceSlug, name)

	r := &metadata.Repository{}
	err := row.Scan(&r.ID, &r.NamespaceID, &r.Name, &r.Kind, &r.Private, &r.CreatedBy, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, metadata.NewNotFoundError("repository", namespaceSlug+"/"+name)
		}
		return nil, err
	}
	return r, nil
}

func (s *Store) DeleteRepository(ctx context.Context, id string) error {
	tag, err := s.q(ctx).Exec(ctx, `DELETE FROM repositories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return metadata.NewNotFoundError("repository", id)
	}
	return nil
}

func (s *Store) ListRepositories(ctx context.Context, namespaceSlug string) ([]*metadata.Repository, error) {
	rows, err := s.q(ctx).Query(ctx,
		`SELECT r.id, r.namespace_id, r.name, r.kind, r.private, r.created_by, r.created_at
		 FROM repositories r JOIN namespaces n ON n.id = r.namespace_id
		 WHERE n.slug = $1 ORDER BY r.name`, namespaceSlug)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*metadata.Repository
	for rows.Next() {
		r := &metadata.Repository{}
		if err := rows.Scan(&r.ID, &r.NamespaceID, &r.Name, &r.Kind, &r.Private, &r.CreatedBy, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
