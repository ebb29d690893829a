package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/marmos91/hubd/pkg/metadata"
)

// UpsertRevision creates a ref or advances it to rev.CommitID. When
// expectedCommitID is non-empty this is a compare-and-set: zero rows
// affected means another writer moved the ref first, mapped to
// ErrConcurrentUpdate per spec I5.
func (s *Store) UpsertRevision(ctx context.Context, rev *metadata.Revision, expectedCommitID string) error {
	if expectedCommitID == "" {
		_, err := s.q(ctx).Exec(ctx,
			`INSERT INTO revisions (repository_id, name, kind, commit_id, updated_at)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (repository_id, name)
			 DO UPDATE SET commit_id = EXCLUDED.commit_id, updated_at = EXCLUDED.updated_at`,
			rev.RepositoryID, rev.Name, rev.Kind, rev.CommitID, rev.UpdatedAt)
		return err
	}

	tag, err := s.q(ctx).Exec(ctx,
		`UPDATE revisions SET commit_id = $4, updated_at = $5
		 WHERE repository_id = $1 AND name = $2 AND commit_id = $3`,
		rev.RepositoryID, rev.Name, expectedCommitID, rev.CommitID, rev.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return metadata.NewConcurrentUpdateError("revision", rev.Name)
	}
	return nil
}

func (s *Store) GetRevision(ctx context.Context, repoID, name string) (*metadata.Revision, error) {
	row := s.q(ctx).QueryRow(ctx,
		`SELECT repository_id, name, kind, commit_id, updated_at FROM revisions
		 WHERE repository_id = $1 AND name = $2`, repoID, name)
	rev := &metadata.Revision{}
	err := row.Scan(&rev.RepositoryID, &rev.Name, &rev.Kind, &rev.CommitID, &rev.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, metadata.NewNotFoundError("revision", name)
		}
		return nil, err
	}
	return rev, nil
}

func (s *Store) ListRevisions(ctx context.Context, repoID string, kind metadata.RevisionKind) ([]*metadata.Revision, error) {
	rows, err := s.q(ctx).Query(ctx,
		`SELECT repository_id, name, kind, commit_id, updated_at FROM revisions
		 WHERE repository_id = $1 AND ($2 = '' OR kind = $2) ORDER BY name`, repoID, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*metadata.Revision
	for rows.Next() {
		rev := &metadata.Revision{}
		if err := rows.Scan(&rev.RepositoryID, &rev.Name, &rev.Kind, &rev.CommitID, &rev.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rev)
	}
	return out, rows.Err()
}

func (s *Store) DeleteRevision(ctx context.Context, repoID, name string) error {
	tag, err := s.q(ctx).Exec(ctx,
		`DELETE FROM revisions WHERE repository_id = $1 AND name = $2`, repoID, name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return metadata.NewNotFoundError("revision", name)
	}
	return nil
}

// ResolveRevisionName implements the branch -> tag -> commit-prefix ->
// not_found state machine: an empty name means "main"; otherwise a branch
// or tag of that exact name wins, then a commit whose id has that prefix,
// otherwise not_found. name is only tried as a commit prefix when it has
// the shape spec §4.C8 requires (metadata.LooksLikeCommitPrefix), so a
// short or non-hex branch/tag name that simply doesn't exist can never
// accidentally prefix-match an unrelated commit id. LIMIT 2 fetches one row
// past what a unique match needs specifically so an ambiguous prefix (more
// than one commit matching) can be detected and rejected instead of
// silently resolving to whichever row the query happened to scan first.
func (s *Store) ResolveRevisionName(ctx context.Context, repoID, name string) (string, error) {
	if name == "" {
		name = "main"
	}

	if rev, err := s.GetRevision(ctx, repoID, name); err == nil {
		return rev.CommitID, nil
	} else if !metadata.IsNotFound(err) {
		return "", err
	}

	if !metadata.LooksLikeCommitPrefix(name) {
		return "", metadata.NewNotFoundError("revision", name)
	}

	rows, err := s.q(ctx).Query(ctx,
		`SELECT id FROM commits WHERE repository_id = $1 AND id LIKE $2 || '%' LIMIT 2`, repoID, name)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var commitID string
		if err := rows.Scan(&commitID); err != nil {
			return "", err
		}
		matches = append(matches, commitID)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	switch len(matches) {
	case 0:
		return "", metadata.NewNotFoundError("revision", name)
	case 1:
		if !strings.HasPrefix(matches[0], name) {
			return "", metadata.NewNotFoundError("revision", name)
		}
		return matches[0], nil
	default:
		// Two or more commits share this prefix: ambiguous, refuse to
		// guess which one the caller meant.
		return "", metadata.NewNotFoundError("revision", name)
	}
}
