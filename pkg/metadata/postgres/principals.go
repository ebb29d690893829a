package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/marmos91/hubd/pkg/metadata"
)

func (s *Store) CreatePrincipal(ctx context.Context, p *metadata.Principal) error {
	_, err := s.q(ctx).Exec(ctx,
		`INSERT INTO principals (id, username, password_hash, role, groups, created_at, disabled)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.Username, p.PasswordHash, p.Role, p.Groups, p.CreatedAt, p.Disabled)
	if isUniqueViolation(err) {
		return metadata.NewAlreadyExistsError("principal", p.Username)
	}
	return err
}

func scanPrincipal(row pgx.Row) (*metadata.Principal, error) {
	p := &metadata.Principal{}
	err := row.Scan(&p.ID, &p.Username, &p.PasswordHash, &p.Role, &p.Groups, &p.CreatedAt, &p.Disabled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, metadata.NewNotFoundError("principal", "")
		}
		return nil, err
	}
	return p, nil
}

const principalColumns = `id, username, password_hash, role, groups, created_at, disabled`

func (s *Store) GetPrincipalByID(ctx context.Context, id string) (*metadata.Principal, error) {
	row := s.q(ctx).QueryRow(ctx, `SELECT `+principalColumns+` FROM principals WHERE id = $1`, id)
	p, err := scanPrincipal(row)
	if metadata.IsNotFound(err) {
		return nil, metadata.NewNotFoundError("principal", id)
	}
	return p, err
}

func (s *Store) GetPrincipalByUsername(ctx context.Context, username string) (*metadata.Principal, error) {
	row := s.q(ctx).QueryRow(ctx, `SELECT `+principalColumns+` FROM principals WHERE username = $1`, username)
	p, err := scanPrincipal(row)
	if metadata.IsNotFound(err) {
		return nil, metadata.NewNotFoundError("principal", username)
	}
	return p, err
}

func (s *Store) UpdatePrincipal(ctx context.Context, p *metadata.Principal) error {
	tag, err := s.q(ctx).Exec(ctx,
		`UPDATE principals SET username = $2, password_hash = $3, role = $4, groups = $5, disabled = $6
		 WHERE id = $1`,
		p.ID, p.Username, p.PasswordHash, p.Role, p.Groups, p.Disabled)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return metadata.NewNotFoundError("principal", p.ID)
	}
	return nil
}

func (s *Store) DeletePrincipal(ctx context.Context, id string) error {
	tag, err := s.q(ctx).Exec(ctx, `DELETE FROM principals WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return metadata.NewNotFoundError("principal", id)
	}
	return nil
}

func (s *Store) ListPrincipals(ctx context.Context) ([]*metadata.Principal, error) {
	rows, err := s.q(ctx).Query(ctx, `SELECT `+principalColumns+` FROM principals ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*metadata.Principal
	for rows.Next() {
		p, err := scanPrincipal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
