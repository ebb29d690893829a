package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/marmos91/hubd/pkg/metadata"
)

func (s *Store) CreateToken(ctx context.Context, t *metadata.Token) error {
	_, err := s.q(ctx).Exec(ctx,
		`INSERT INTO tokens (id, principal_id, kind, hashed_key, name, scopes, created_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.PrincipalID, t.Kind, t.HashedKey, t.Name, t.Scopes, t.CreatedAt, t.ExpiresAt)
	if isUniqueViolation(err) {
		return metadata.NewAlreadyExistsError("token", t.ID)
	}
	return err
}

func scanToken(row pgx.Row) (*metadata.Token, error) {
	t := &metadata.Token{}
	err := row.Scan(&t.ID, &t.PrincipalID, &t.Kind, &t.HashedKey, &t.Name, &t.Scopes,
		&t.CreatedAt, &t.ExpiresAt, &t.LastUsedAt, &t.Revoked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, metadata.NewNotFoundError("token", "")
		}
		return nil, err
	}
	return t, nil
}

const tokenColumns = `id, principal_id, kind, hashed_key, name, scopes, created_at, expires_at, last_used_at, revoked`

func (s *Store) GetTokenByHash(ctx context.Context, hashedKey string) (*metadata.Token, error) {
	row := s.q(ctx).QueryRow(ctx,
		`SELECT `+tokenColumns+` FROM tokens
		 WHERE hashed_key = $1 AND revoked = false AND (expires_at IS NULL OR expires_at > now())`,
		hashedKey)
	t, err := scanToken(row)
	if metadata.IsNotFound(err) {
		return nil, metadata.NewNotFoundError("token", "")
	}
	return t, err
}

func (s *Store) RevokeToken(ctx context.Context, id string) error {
	tag, err := s.q(ctx).Exec(ctx, `UPDATE tokens SET revoked = true WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return metadata.NewNotFoundError("token", id)
	}
	return nil
}

func (s *Store) TouchToken(ctx context.Context, id string) error {
	_, err := s.q(ctx).Exec(ctx, `UPDATE tokens SET last_used_at = $2 WHERE id = $1`, id, time.Now().UTC())
	return err
}

func (s *Store) ListTokens(ctx context.Context, principalID string) ([]*metadata.Token, error) {
	rows, err := s.q(ctx).Query(ctx,
		`SELECT `+tokenColumns+` FROM tokens WHERE principal_id = $1 ORDER BY created_at DESC`, principalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*metadata.Token
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
