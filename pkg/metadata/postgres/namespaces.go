package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/marmos91/hubd/pkg/metadata"
)

func (s *Store) CreateNamespace(ctx context.Context, ns *metadata.Namespace) error {
	_, err := s.q(ctx).Exec(ctx,
		`INSERT INTO namespaces (id, slug, kind, created_at) VALUES ($1, $2, $3, $4)`,
		ns.ID, ns.Slug, ns.Kind, ns.CreatedAt)
	if isUniqueViolation(err) {
		return metadata.NewAlreadyExistsError("namespace", ns.Slug)
	}
	return err
}

func (s *Store) GetNamespace(ctx context.Context, slug string) (*metadata.Namespace, error) {
	row := s.q(ctx).QueryRow(ctx,
		`SELECT id, slug, kind, created_at FROM namespaces WHERE slug = $1`, slug)

	ns := &metadata.Namespace{}
	if err := row.Scan(&ns.ID, &ns.Slug, &ns.Kind, &ns.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, metadata.NewNotFoundError("namespace", slug)
		}
		return nil, err
	}
	return ns, nil
}

func (s *Store) DeleteNamespace(ctx context.Context, slug string) error {
	tag, err := s.q(ctx).Exec(ctx, `DELETE FROM namespaces WHERE slug = $1`, slug)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return metadata.NewNotFoundError("namespace", slug)
	}
	return nil
}

func (s *Store) ListNamespaces(ctx context.Context) ([]*metadata.Namespace, error) {
	rows, err := s.q(ctx).Query(ctx, `SELECT id, slug, kind, created_at FROM namespaces ORDER BY slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*metadata.Namespace
	for rows.Next() {
		ns := &metadata.Namespace{}
		if err := rows.Scan(&ns.ID, &ns.Slug, &ns.Kind, &ns.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, ns)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
