package memory

import (
	"context"
	"strings"

	"github.com/marmos91/hubd/pkg/metadata"
)

func (s *Store) CreateCommit(ctx context.Context, c *metadata.Commit, files []*metadata.FileEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *c
	s.commits[c.ID] = &clone

	entries := make([]*metadata.FileEntry, 0, len(files))
	for _, f := range files {
		fc := *f
		fc.CommitID = c.ID
		entries = append(entries, &fc)
	}
	s.files[c.ID] = entries
	return nil
}

func (s *Store) GetCommit(ctx context.Context, id string) (*metadata.Commit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.commits[id]
	if !ok {
		return nil, metadata.NewNotFoundError("commit", id)
	}
	clone := *c
	return &clone, nil
}

func (s *Store) ListTree(ctx context.Context, commitID, pathPrefix string, recursive bool) ([]*metadata.FileEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, ok := s.files[commitID]
	if !ok {
		return nil, metadata.NewNotFoundError("commit", commitID)
	}

	var out []*metadata.FileEntry
	for _, f := range entries {
		if pathPrefix != "" && !strings.HasPrefix(f.Path, strings.TrimSuffix(pathPrefix, "/")+"/") {
			continue
		}
		if !recursive && pathPrefix != "" {
			rest := strings.TrimPrefix(f.Path, strings.TrimSuffix(pathPrefix, "/")+"/")
			if strings.Contains(rest, "/") {
				continue
			}
		}
		clone := *f
		out = append(out, &clone)
	}
	return out, nil
}

func (s *Store) GetFileEntry(ctx context.Context, commitID, path string) (*metadata.FileEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.files[commitID] {
		if f.Path == path {
			clone := *f
			return &clone, nil
		}
	}
	return nil, metadata.NewNotFoundError("file", path)
}

func (s *Store) Log(ctx context.Context, commitID string, limit int) ([]*metadata.Commit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 100
	}

	var out []*metadata.Commit
	cur := commitID
	for len(out) < limit {
		c, ok := s.commits[cur]
		if !ok {
			break
		}
		clone := *c
		out = append(out, &clone)
		if c.ParentID == "" {
			break
		}
		cur = c.ParentID
	}
	return out, nil
}
