package memory

import (
	"context"
	"strings"

	"github.com/marmos91/hubd/pkg/metadata"
)

func (s *Store) UpsertRevision(ctx context.Context, rev *metadata.Revision, expectedCommitID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := revisionKey(rev.RepositoryID, rev.Name)
	if expectedCommitID != "" {
		cur, ok := s.revisions[key]
		if !ok || cur.CommitID != expectedCommitID {
			return metadata.NewConcurrentUpdateError("revision", rev.Name)
		}
	}
	clone := *rev
	s.revisions[key] = &clone
	return nil
}

func (s *Store) GetRevision(ctx context.Context, repoID, name string) (*metadata.Revision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rev, ok := s.revisions[revisionKey(repoID, name)]
	if !ok {
		return nil, metadata.NewNotFoundError("revision", name)
	}
	clone := *rev
	return &clone, nil
}

func (s *Store) ListRevisions(ctx context.Context, repoID string, kind metadata.RevisionKind) ([]*metadata.Revision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	prefix := repoID + "/"
	var out []*metadata.Revision
	for _, key := range sortedKeys(s.revisions) {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		rev := s.revisions[key]
		if kind != "" && rev.Kind != kind {
			continue
		}
		clone := *rev
		out = append(out, &clone)
	}
	return out, nil
}

func (s *Store) DeleteRevision(ctx context.Context, repoID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := revisionKey(repoID, name)
	if _, ok := s.revisions[key]; !ok {
		return metadata.NewNotFoundError("revision", name)
	}
	delete(s.revisions, key)
	return nil
}

// ResolveRevisionName implements the branch -> tag -> commit-prefix ->
// not_found state machine (spec §4.C8). A name is only ever tried as a
// commit prefix when it has the shape spec §4.C8 requires
// (metadata.LooksLikeCommitPrefix); otherwise a non-existent branch/tag
// name goes straight to not_found rather than risking an accidental
// prefix match. A prefix matching more than one commit is ambiguous and
// also reported as not_found rather than silently picking one.
func (s *Store) ResolveRevisionName(ctx context.Context, repoID, name string) (string, error) {
	if name == "" {
		name = "main"
	}
	if rev, err := s.GetRevision(ctx, repoID, name); err == nil {
		return rev.CommitID, nil
	}
	if !metadata.LooksLikeCommitPrefix(name) {
		return "", metadata.NewNotFoundError("revision", name)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	match := ""
	for _, id := range sortedKeys(s.commits) {
		c := s.commits[id]
		if c.RepositoryID == repoID && strings.HasPrefix(c.ID, name) {
			if match != "" {
				return "", metadata.NewNotFoundError("revision", name)
			}
			match = c.ID
		}
	}
	if match == "" {
		return "", metadata.NewNotFoundError("revision", name)
	}
	return match, nil
}
