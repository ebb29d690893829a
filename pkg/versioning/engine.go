// Package versioning is the abstraction over a content-addressed
// tree-of-blobs with branches and tags (spec C4): an Engine exposes
// create_root/drop_root/list_tree/stat/branch-tag management/diff/log/
// revert/reset as plain Go methods, backed entirely by metadata.MetadataStore
// so no in-memory object graph is held — every traversal is a store query,
// grounded on the teacher's directory-tree row model in pkg/metadata.
package versioning

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/hubd/pkg/blobstore"
	"github.com/marmos91/hubd/pkg/metadata"
)

// ErrNothingToCommit is returned by Revert/Reset when the commit whose tree
// would be restored is already the branch tip and force was not requested;
// trees of different commits are not compared.
var ErrNothingToCommit = errors.New("versioning: no changes staged for commit")

const mainBranch = "main"

// Engine implements the versioning capability interface over a single
// MetadataStore. It holds no per-repository state; every call resolves
// refs and trees fresh from the store.
type Engine struct {
	store metadata.MetadataStore
}

func NewEngine(store metadata.MetadataStore) *Engine {
	return &Engine{store: store}
}

// CreateRoot initializes a repository's versioning root: an empty initial
// commit with "main" pointing at it, mirroring an empty git repository's
// state immediately after `git init`.
func (e *Engine) CreateRoot(ctx context.Context, repoID string) (string, error) {
	commit := &metadata.Commit{
		RepositoryID: repoID,
		Message:      "initial commit",
		CreatedAt:    time.Now().UTC(),
	}
	commit.ID = computeCommitID(commit, nil)

	err := e.store.WithTransaction(ctx, func(ctx context.Context) error {
		if err := e.store.CreateCommit(ctx, commit, nil); err != nil {
			return err
		}
		rev := &metadata.Revision{
			RepositoryID: repoID,
			Name:         mainBranch,
			Kind:         metadata.RevisionBranch,
			CommitID:     commit.ID,
			UpdatedAt:    commit.CreatedAt,
		}
		return e.store.UpsertRevision(ctx, rev, "")
	})
	if err != nil {
		return "", err
	}
	return commit.ID, nil
}

// DropRoot removes every branch and tag ref for a repository. Commits and
// file entries are reclaimed when the repository row itself is deleted (C3's
// cascading foreign keys); DropRoot only clears the ref set so a repository
// id is never reused with stale branches still resolvable.
func (e *Engine) DropRoot(ctx context.Context, repoID string) error {
	for _, kind := range []metadata.RevisionKind{metadata.RevisionBranch, metadata.RevisionTag} {
		refs, err := e.store.ListRevisions(ctx, repoID, kind)
		if err != nil {
			return err
		}
		for _, r := range refs {
			if err := e.store.DeleteRevision(ctx, repoID, r.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

// Stat resolves revision to a commit and returns the FileEntry at path.
func (e *Engine) Stat(ctx context.Context, repoID, revision, path string) (*metadata.FileEntry, error) {
	commitID, err := e.store.ResolveRevisionName(ctx, repoID, revision)
	if err != nil {
		return nil, err
	}
	return e.store.GetFileEntry(ctx, commitID, path)
}

// ListTree resolves revision to a commit and lists the materialized tree,
// optionally scoped to path and optionally recursive.
func (e *Engine) ListTree(ctx context.Context, repoID, revision, path string, recursive bool) ([]*metadata.FileEntry, error) {
	commitID, err := e.store.ResolveRevisionName(ctx, repoID, revision)
	if err != nil {
		return nil, err
	}
	return e.store.ListTree(ctx, commitID, path, recursive)
}

// CreateBranch points a new branch ref at fromRevision's resolved commit.
func (e *Engine) CreateBranch(ctx context.Context, repoID, name, fromRevision string) error {
	commitID, err := e.store.ResolveRevisionName(ctx, repoID, fromRevision)
	if err != nil {
		return err
	}
	rev := &metadata.Revision{RepositoryID: repoID, Name: name, Kind: metadata.RevisionBranch, CommitID: commitID, UpdatedAt: time.Now().UTC()}
	return e.store.UpsertRevision(ctx, rev, "")
}

// DeleteBranch removes a branch ref. The main branch cannot be deleted
// directly; DropRoot (invoked alongside repository deletion) is the only
// path that removes it.
func (e *Engine) DeleteBranch(ctx context.Context, repoID, name string) error {
	if name == mainBranch {
		return metadata.NewInvalidArgumentError("revision", "main branch cannot be deleted")
	}
	return e.store.DeleteRevision(ctx, repoID, name)
}

// CreateTag points a new tag ref at fromRevision's resolved commit.
func (e *Engine) CreateTag(ctx context.Context, repoID, name, fromRevision string) error {
	commitID, err := e.store.ResolveRevisionName(ctx, repoID, fromRevision)
	if err != nil {
		return err
	}
	rev := &metadata.Revision{RepositoryID: repoID, Name: name, Kind: metadata.RevisionTag, CommitID: commitID, UpdatedAt: time.Now().UTC()}
	return e.store.UpsertRevision(ctx, rev, "")
}

func (e *Engine) DeleteTag(ctx context.Context, repoID, name string) error {
	return e.store.DeleteRevision(ctx, repoID, name)
}

// ListRefs lists branches or tags for a repository (kind == "" lists both).
func (e *Engine) ListRefs(ctx context.Context, repoID string, kind metadata.RevisionKind) ([]*metadata.Revision, error) {
	return e.store.ListRevisions(ctx, repoID, kind)
}

// Log returns commit history reachable from ref, most recent first. When
// cursor is non-empty it names a commit id to resume the walk from instead
// of ref's tip.
func (e *Engine) Log(ctx context.Context, repoID, ref string, limit int, cursor string) ([]*metadata.Commit, error) {
	commitID, err := e.store.ResolveRevisionName(ctx, repoID, ref)
	if err != nil {
		return nil, err
	}
	if cursor != "" {
		commitID = cursor
	}
	return e.store.Log(ctx, commitID, limit)
}

// DiffEntry describes one path's change between two trees.
type DiffEntry struct {
	Path   string
	Change string // "added", "removed", "modified"
	A, B   *metadata.FileEntry
}

// Diff compares the trees at revisions a and b, path by path.
func (e *Engine) Diff(ctx context.Context, repoID, a, b string) ([]DiffEntry, error) {
	commitA, err := e.store.ResolveRevisionName(ctx, repoID, a)
	if err != nil {
		return nil, err
	}
	commitB, err := e.store.ResolveRevisionName(ctx, repoID, b)
	if err != nil {
		return nil, err
	}
	treeA, err := e.store.ListTree(ctx, commitA, "", true)
	if err != nil {
		return nil, err
	}
	treeB, err := e.store.ListTree(ctx, commitB, "", true)
	if err != nil {
		return nil, err
	}

	byPathA := make(map[string]*metadata.FileEntry, len(treeA))
	for _, f := range treeA {
		byPathA[f.Path] = f
	}
	byPathB := make(map[string]*metadata.FileEntry, len(treeB))
	for _, f := range treeB {
		byPathB[f.Path] = f
	}

	var out []DiffEntry
	for path, fb := range byPathB {
		fa, ok := byPathA[path]
		switch {
		case !ok:
			out = append(out, DiffEntry{Path: path, Change: "added", B: fb})
		case fa.OID != fb.OID || fa.Size != fb.Size:
			out = append(out, DiffEntry{Path: path, Change: "modified", A: fa, B: fb})
		}
	}
	for path, fa := range byPathA {
		if _, ok := byPathB[path]; !ok {
			out = append(out, DiffEntry{Path: path, Change: "removed", A: fa})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// LastCommitForPath walks commitID's ancestry to find the most recent
// commit that actually changed path's content. Every commit in this engine
// materializes a full tree (buildCommit clones every FileEntry, not just
// the changed ones), so FileEntry.CommitID alone only tells you which
// snapshot a row belongs to, not when its content last changed — the
// resolver's tree(expand) needs the latter (spec §4.C8).
func (e *Engine) LastCommitForPath(ctx context.Context, repoID, commitID, path string) (*metadata.Commit, error) {
	current, err := e.store.GetFileEntry(ctx, commitID, path)
	if err != nil {
		return nil, err
	}
	commit, err := e.store.GetCommit(ctx, commitID)
	if err != nil {
		return nil, err
	}
	for commit.ParentID != "" {
		parentEntry, err := e.store.GetFileEntry(ctx, commit.ParentID, path)
		if err != nil {
			if metadata.IsNotFound(err) {
				break // path did not exist at the parent: commit introduced it
			}
			return nil, err
		}
		if parentEntry.Kind != current.Kind || parentEntry.OID != current.OID {
			break
		}
		parent, err := e.store.GetCommit(ctx, commit.ParentID)
		if err != nil {
			return nil, err
		}
		commit = parent
	}
	return commit, nil
}

// Revert creates a new forward commit on branch that undoes target: the
// committed tree equals target's *parent* tree, not target's own tree (spec
// S6: reverting C1, which added a.json, yields a new commit C2 whose tree
// equals C0's, C1's parent). Reverting a repository's initial commit (no
// parent) commits an empty tree (spec §8). Target and every commit after it
// remain reachable in history: this never rewrites or removes a commit, it
// only advances the ref.
func (e *Engine) Revert(ctx context.Context, repoID, branch, target, author string, force bool) (string, error) {
	targetCommitID, err := e.store.ResolveRevisionName(ctx, repoID, target)
	if err != nil {
		return "", err
	}
	targetCommit, err := e.store.GetCommit(ctx, targetCommitID)
	if err != nil {
		return "", err
	}
	message := fmt.Sprintf("Revert %s", targetCommitID)
	return e.commitSourceTree(ctx, repoID, branch, targetCommit.ParentID, message, author, force)
}

// Reset moves branch to a tree equal to target's own tree, recorded as a new
// forward commit. "May not discard history" (spec §4.C4): earlier commits
// remain reachable by id even once no ref points at them directly. Unlike
// Revert, Reset restores target's tree as-is rather than undoing it.
func (e *Engine) Reset(ctx context.Context, repoID, branch, target, message, author string, force bool) (string, error) {
	targetCommitID, err := e.store.ResolveRevisionName(ctx, repoID, target)
	if err != nil {
		return "", err
	}
	if message == "" {
		message = fmt.Sprintf("Reset to %s", target)
	}
	return e.commitSourceTree(ctx, repoID, branch, targetCommitID, message, author, force)
}

// commitSourceTree fetches sourceCommitID's materialized tree and commits it
// onto branch as a new forward commit. sourceCommitID == "" means an empty
// tree (Revert of a commit with no parent).
func (e *Engine) commitSourceTree(ctx context.Context, repoID, branch, sourceCommitID, message, author string, force bool) (string, error) {
	tip, err := e.store.GetRevision(ctx, repoID, branch)
	if err != nil {
		return "", err
	}
	if !force && tip.CommitID == sourceCommitID {
		return "", ErrNothingToCommit
	}

	var tree []*metadata.FileEntry
	if sourceCommitID != "" {
		tree, err = e.store.ListTree(ctx, sourceCommitID, "", true)
		if err != nil {
			return "", err
		}
	}
	return e.commitTree(ctx, repoID, branch, tip.CommitID, message, author, tree)
}

// commitTree writes a full-tree commit and advances branch with a
// compare-and-set against parentID. Shared by Revert/Reset and by
// CommitBuilder.Commit.
func (e *Engine) commitTree(ctx context.Context, repoID, branch, parentID, message, author string, tree []*metadata.FileEntry) (string, error) {
	summary, description, _ := strings.Cut(message, "\n\n")
	commit, files := buildCommit(repoID, parentID, summary, description, author, tree)

	err := e.store.WithTransaction(ctx, func(ctx context.Context) error {
		if err := e.store.CreateCommit(ctx, commit, files); err != nil {
			return err
		}
		rev := &metadata.Revision{
			RepositoryID: repoID,
			Name:         branch,
			Kind:         metadata.RevisionBranch,
			CommitID:     commit.ID,
			UpdatedAt:    commit.CreatedAt,
		}
		return e.store.UpsertRevision(ctx, rev, parentID)
	})
	if err != nil {
		return "", err
	}
	return commit.ID, nil
}

// buildCommit computes the commit row and its file-entry rows without
// writing anything, so callers that need to combine the write with other
// operations in a single transaction (the commit engine, C7) can do so
// without nesting a second WithTransaction call.
func buildCommit(repoID, parentID, message, description, author string, tree []*metadata.FileEntry) (*metadata.Commit, []*metadata.FileEntry) {
	commit := &metadata.Commit{
		RepositoryID: repoID,
		ParentID:     parentID,
		Message:      message,
		Description:  description,
		Author:       author,
		CreatedAt:    time.Now().UTC(),
	}
	commit.ID = computeCommitID(commit, tree)

	files := make([]*metadata.FileEntry, len(tree))
	for i, f := range tree {
		clone := *f
		clone.ID = uuid.NewString()
		clone.CommitID = commit.ID
		files[i] = &clone
	}
	return commit, files
}

// computeCommitID derives a content-addressed commit id: sha256 over the
// commit's fields and its file tree, sorted by path so the same logical
// commit always hashes identically regardless of map iteration order.
func computeCommitID(c *metadata.Commit, tree []*metadata.FileEntry) string {
	sorted := make([]*metadata.FileEntry, len(tree))
	copy(sorted, tree)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	var b strings.Builder
	fmt.Fprintf(&b, "repo=%s\nparent=%s\nmessage=%s\ndescription=%s\nauthor=%s\ncreated=%s\n",
		c.RepositoryID, c.ParentID, c.Message, c.Description, c.Author, c.CreatedAt.Format(time.RFC3339Nano))
	for _, f := range sorted {
		fmt.Fprintf(&b, "file=%s:%s:%s:%d:%s:%d\n", f.Path, f.Kind, f.OID, f.Size, f.LFSOID, f.LFSSize)
	}
	return blobstore.SHA256Hex([]byte(b.String()))
}
