package versioning

import (
	"context"
	"fmt"

	"github.com/marmos91/hubd/pkg/blobstore"
	"github.com/marmos91/hubd/pkg/metadata"
)

// CommitBuilder accumulates file operations against a branch's current tip
// and materializes them into a single new commit. It matches the commit
// engine's (C7) streaming discipline: each UploadInline/LinkExternal/Delete
// call mutates the in-memory working tree as its record is decoded from the
// request body, and Commit performs the one durable write at the end.
type CommitBuilder struct {
	engine   *Engine
	repoID   string
	branch   string
	parentID string
	tree     map[string]*metadata.FileEntry // path -> working entry
}

// NewCommitBuilder loads branch's current tip tree as the base a builder
// mutates. branch must already exist (via CreateRoot or CreateBranch).
func (e *Engine) NewCommitBuilder(ctx context.Context, repoID, branch string) (*CommitBuilder, error) {
	rev, err := e.store.GetRevision(ctx, repoID, branch)
	if err != nil {
		return nil, err
	}
	entries, err := e.store.ListTree(ctx, rev.CommitID, "", true)
	if err != nil {
		return nil, err
	}
	tree := make(map[string]*metadata.FileEntry, len(entries))
	for _, f := range entries {
		tree[f.Path] = f
	}
	return &CommitBuilder{engine: e, repoID: repoID, branch: branch, parentID: rev.CommitID, tree: tree}, nil
}

// ParentCommitID returns the commit the builder was opened against — the
// expected_parent a concurrent commit would be compared against.
func (b *CommitBuilder) ParentCommitID() string {
	return b.parentID
}

// UploadInline stages path with bytes embedded directly in the tree (the
// small-file fast path, spec §4.C4/§4.C7). Callers are responsible for
// rejecting oversized content with inline_too_large before calling this —
// the builder itself does not know the repository's effective threshold.
func (b *CommitBuilder) UploadInline(path string, content []byte) {
	b.tree[path] = &metadata.FileEntry{
		Path:          path,
		Kind:          metadata.FileRegular,
		OID:           blobstore.SHA256Hex(content),
		Size:          int64(len(content)),
		InlineContent: content,
	}
}

// LinkExternal registers an already-uploaded-to-C5 blob at path. sha256 is
// the object id; storageKey is its LFS pointer (oid is the key, kept
// separate here since spec distinguishes the file's own content hash from
// the LFS pointer's oid for traceability).
func (b *CommitBuilder) LinkExternal(path, storageKey, sha256 string, size int64) {
	b.tree[path] = &metadata.FileEntry{
		Path:    path,
		Kind:    metadata.FileLFS,
		OID:     sha256,
		Size:    size,
		LFSOID:  storageKey,
		LFSSize: size,
	}
}

// Delete removes path from the working tree. Deleting an absent path is a
// no-op, matching the commit engine's idempotent "deleted" record handling.
func (b *CommitBuilder) Delete(path string) {
	delete(b.tree, path)
}

// Copy duplicates a path into the working tree under a new name (spec
// §4.C7 "copy" record). When fromRevision is non-empty, the source is
// resolved from that revision's commit instead of the in-progress tree.
func (b *CommitBuilder) Copy(ctx context.Context, fromPath, fromRevision, toPath string) error {
	if fromRevision == "" {
		src, ok := b.tree[fromPath]
		if !ok {
			return metadata.NewNotFoundError("file", fromPath)
		}
		clone := *src
		clone.Path = toPath
		b.tree[toPath] = &clone
		return nil
	}

	commitID, err := b.engine.store.ResolveRevisionName(ctx, b.repoID, fromRevision)
	if err != nil {
		return err
	}
	src, err := b.engine.store.GetFileEntry(ctx, commitID, fromPath)
	if err != nil {
		return err
	}
	clone := *src
	clone.Path = toPath
	b.tree[toPath] = &clone
	return nil
}

// Peek returns the working tree's current entry at path, if any. Lets a
// caller composing its own transaction (the commit engine, C7) compute
// size/object-count deltas as it stages mutations without re-reading the
// store.
func (b *CommitBuilder) Peek(path string) (*metadata.FileEntry, bool) {
	f, ok := b.tree[path]
	return f, ok
}

// Prepare computes the commit row and its file-entry rows for the
// currently staged tree without writing anything. Callers that need to
// combine the write with other operations in one transaction (the commit
// engine's quota reservation, LFS ref-count updates, and StagingRecord
// closure, spec §4.C7 step 5) use this plus RevisionUpdate instead of
// Commit.
func (b *CommitBuilder) Prepare(message, description, author string) (*metadata.Commit, []*metadata.FileEntry) {
	entries := make([]*metadata.FileEntry, 0, len(b.tree))
	for _, f := range b.tree {
		entries = append(entries, f)
	}
	return buildCommit(b.repoID, b.parentID, message, description, author, entries)
}

// RevisionUpdate builds the branch ref update a Prepare'd commit must be
// written alongside, carrying this builder's CAS baseline. Pass parentID
// (ParentCommitID()) as the expectedCommitID to UpsertRevision.
func (b *CommitBuilder) RevisionUpdate(commit *metadata.Commit) *metadata.Revision {
	return &metadata.Revision{
		RepositoryID: b.repoID,
		Name:         b.branch,
		Kind:         metadata.RevisionBranch,
		CommitID:     commit.ID,
		UpdatedAt:    commit.CreatedAt,
	}
}

// Commit finalizes the staged tree as a new commit and advances branch with
// a compare-and-set against the parent observed when the builder was
// opened. A concurrent writer that moved the branch first surfaces as
// metadata.ErrConcurrentUpdate here. The wire commit endpoint (spec
// §4.C7 step 4, scenario S3) performs this same CAS itself inside
// pkg/commit.Engine.Apply rather than through this method, and translates
// that race to stale_revision there; direct callers of this method keep the
// untranslated concurrent_update classification.
func (b *CommitBuilder) Commit(ctx context.Context, message, description, author string) (string, error) {
	entries := make([]*metadata.FileEntry, 0, len(b.tree))
	for _, f := range b.tree {
		entries = append(entries, f)
	}
	full := message
	if description != "" {
		full = fmt.Sprintf("%s\n\n%s", message, description)
	}
	return b.engine.commitTree(ctx, b.repoID, b.branch, b.parentID, full, author, entries)
}
