package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/marmos91/hubd/pkg/metadata"
)

// CreateCommit inserts the commit row and every FileEntry it produced,
// atomically. Callers are expected to invoke this from within
// WithTransaction alongside the revision CAS update and quota adjustment, so
// a partial commit can never become visible (spec I5 / commit engine step
// 4-5 combination).
func (s *Store) CreateCommit(ctx context.Context, c *metadata.Commit, files []*metadata.FileEntry) error {
	_, err := s.q(ctx).Exec(ctx,
		`INSERT INTO commits (id, repository_id, parent_id, message, description, author, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.RepositoryID, c.ParentID, c.Message, c.Description, c.Author, c.CreatedAt)
	if err != nil {
		return err
	}

	for _, f := range files {
		f.CommitID = c.ID
		_, err := s.q(ctx).Exec(ctx,
			`INSERT INTO file_entries (id, commit_id, path, kind, oid, size, inline_content, lfs_oid, lfs_size)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			f.ID, f.CommitID, f.Path, f.Kind, f.OID, f.Size, f.InlineContent, f.LFSOID, f.LFSSize)
		if err != nil {
			return fmt.Errorf("insert file entry %q: %w", f.Path, err)
		}
	}
	return nil
}

func (s *Store) GetCommit(ctx context.Context, id string) (*metadata.Commit, error) {
	row := s.q(ctx).QueryRow(ctx,
		`SELECT id, repository_id, parent_id, message, description, author, created_at FROM commits WHERE id = $1`, id)
	c := &metadata.Commit{}
	err := row.Scan(&c.ID, &c.RepositoryID, &c.ParentID, &c.Message, &c.Description, &c.Author, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, metadata.NewNotFoundError("commit", id)
		}
		return nil, err
	}
	return c, nil
}

// ListTree returns file entries materialized at commitID. Because each
// commit carries the full tree (not a diff) per the relational expression
// chosen for the versioning engine, this is a single indexed lookup rather
// than a walk up the parent chain.
func (s *Store) ListTree(ctx context.Context, commitID, pathPrefix string, recursive bool) ([]*metadata.FileEntry, error) {
	query := `SELECT id, commit_id, path, kind, oid, size, inline_content, lfs_oid, lfs_size FROM file_entries WHERE commit_id = $1`
	args := []any{commitID}

	if pathPrefix != "" {
		query += ` AND path LIKE $2`
		args = append(args, strings.TrimSuffix(pathPrefix, "/")+"/%")
	}
	query += ` ORDER BY path`

	rows, err := s.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*metadata.FileEntry
	for rows.Next() {
		f := &metadata.FileEntry{}
		if err := rows.Scan(&f.ID, &f.CommitID, &f.Path, &f.Kind, &f.OID, &f.Size, &f.InlineContent, &f.LFSOID, &f.LFSSize); err != nil {
			return nil, err
		}
		if !recursive && pathPrefix != "" && strings.Contains(strings.TrimPrefix(f.Path, pathPrefix+"/"), "/") {
			continue
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *Store) GetFileEntry(ctx context.Context, commitID, path string) (*metadata.FileEntry, error) {
	row := s.q(ctx).QueryRow(ctx,
		`SELECT id, commit_id, path, kind, oid, size, inline_content, lfs_oid, lfs_size
		 FROM file_entries WHERE commit_id = $1 AND path = $2`, commitID, path)
	f := &metadata.FileEntry{}
	err := row.Scan(&f.ID, &f.CommitID, &f.Path, &f.Kind, &f.OID, &f.Size, &f.InlineContent, &f.LFSOID, &f.LFSSize)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, metadata.NewNotFoundError("file", path)
		}
		return nil, err
	}
	return f, nil
}

func (s *Store) Log(ctx context.Context, commitID string, limit int) ([]*metadata.Commit, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.q(ctx).Query(ctx,
		`WITH RECURSIVE ancestry AS (
			SELECT id, repository_id, parent_id, message, description, author, created_at, 0 AS depth
			FROM commits WHERE id = $1
			UNION ALL
			SELECT c.id, c.repository_id, c.parent_id, c.message, c.description, c.author, c.created_at, a.depth + 1
			FROM commits c JOIN ancestry a ON c.id = a.parent_id
		)
		SELECT id, repository_id, parent_id, message, description, author, created_at FROM ancestry
		ORDER BY depth LIMIT $2`, commitID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*metadata.Commit
	for rows.Next() {
		c := &metadata.Commit{}
		if err := rows.Scan(&c.ID, &c.RepositoryID, &c.ParentID, &c.Message, &c.Description, &c.Author, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
