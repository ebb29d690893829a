// Package resolver implements C8, the read path that serves HEAD/GET/tree/
// paths_info requests against a repository's committed trees. It never
// streams a large blob itself (spec §4.C8): external entries are served as
// a redirect to a fresh presigned GET URL, grounded on the teacher's
// S3ContentStore range-read discipline in pkg/store/content/s3/s3.go but
// deliberately diverging from it at the proxy step — the teacher reads and
// forwards object bytes directly, this resolver only ever hands back a
// Location header and lets the client fetch the object store directly.
package resolver

import (
	"context"
	"mime"
	"path/filepath"
	"sort"
	"time"

	"github.com/marmos91/hubd/internal/telemetry"
	"github.com/marmos91/hubd/pkg/blobstore"
	"github.com/marmos91/hubd/pkg/cache"
	"github.com/marmos91/hubd/pkg/metadata"
	"github.com/marmos91/hubd/pkg/versioning"
)

// DefaultPresignTTL is used for GET/HEAD redirects to external entries: long
// enough to cover a realistic large-model download (spec §4.C8).
const DefaultPresignTTL = time.Hour

// StatCache is the optional lookup-cache dependency Head uses to skip a
// metadata-store round trip on a repeat request for the same
// repo/revision/path. pkg/cache.Cache satisfies this in production; tests
// and callers that don't want caching pass nil.
type StatCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
}

// Resolver serves the read-only tree/blob surface of a repository.
type Resolver struct {
	store      metadata.MetadataStore
	versioning *versioning.Engine
	blobs      blobstore.Store
	presignTTL time.Duration
	stats      StatCache
}

func NewResolver(store metadata.MetadataStore, v *versioning.Engine, blobs blobstore.Store) *Resolver {
	return &Resolver{store: store, versioning: v, blobs: blobs, presignTTL: DefaultPresignTTL}
}

// WithStatCache attaches a StatCache to the resolver, enabling Head to
// serve repeat lookups without touching the metadata store or minting a
// fresh presigned URL every time.
func (r *Resolver) WithStatCache(c StatCache) *Resolver {
	r.stats = c
	return r
}

// HeadResult is the outcome of a HEAD request against one path.
type HeadResult struct {
	CommitID string
	Kind     metadata.FileEntryKind
	ETag     string // "sha256:<hex>"
	Size     int64
	Location string // presigned GET URL, set only when Kind == FileLFS
}

// Head resolves revision to a commit, looks up path within it, and for an
// external entry mints a fresh presigned GET redirect.
//
// When a StatCache is attached, a hit short-circuits both the metadata
// lookup and the presign call; the cache's TTL must stay well below
// presignTTL so a cached Location is never served past the point the URL
// it names has expired.
func (r *Resolver) Head(ctx context.Context, repoID, revision, path string) (*HeadResult, error) {
	ctx, span := telemetry.StartResolverSpan(ctx, telemetry.SpanResolverHead, repoID, revision, path)
	defer span.End()

	key := ""
	if r.stats != nil {
		key = cache.StatKey(repoID, revision, path)
		var cached HeadResult
		if hit, err := r.stats.Get(ctx, key, &cached); err == nil && hit {
			span.SetAttributes(telemetry.CacheHit(true))
			return &cached, nil
		}
		span.SetAttributes(telemetry.CacheHit(false))
	}

	commitID, entry, err := r.resolveEntry(ctx, repoID, revision, path)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return nil, err
	}
	span.SetAttributes(telemetry.Commit(commitID))

	res := &HeadResult{
		CommitID: commitID,
		Kind:     entry.Kind,
		ETag:     "sha256:" + entry.OID,
		Size:     entryDisplaySize(entry),
	}
	if entry.Kind == metadata.FileLFS {
		url, err := r.blobs.PresignGet(ctx, entry.LFSOID, r.presignTTL)
		if err != nil {
			return nil, err
		}
		res.Location = url
	}

	if r.stats != nil {
		_ = r.stats.Set(ctx, key, res)
	}
	return res, nil
}

// GetResult is the outcome of a GET request against one path.
type GetResult struct {
	CommitID    string
	Inline      bool
	Content     []byte
	ContentType string
	RedirectURL string // set, and Inline false, when the entry is external
}

// Get resolves revision+path and either returns inline bytes directly or a
// redirect URL for the caller to answer with a 302 — the resolver itself
// never proxies the object bytes for an external entry.
func (r *Resolver) Get(ctx context.Context, repoID, revision, path string) (*GetResult, error) {
	commitID, entry, err := r.resolveEntry(ctx, repoID, revision, path)
	if err != nil {
		return nil, err
	}

	if entry.Kind == metadata.FileLFS {
		url, err := r.blobs.PresignGet(ctx, entry.LFSOID, r.presignTTL)
		if err != nil {
			return nil, err
		}
		return &GetResult{CommitID: commitID, RedirectURL: url}, nil
	}

	return &GetResult{
		CommitID:    commitID,
		Inline:      true,
		Content:     entry.InlineContent,
		ContentType: contentTypeFor(path),
	}, nil
}

func (r *Resolver) resolveEntry(ctx context.Context, repoID, revision, path string) (string, *metadata.FileEntry, error) {
	commitID, err := r.store.ResolveRevisionName(ctx, repoID, revision)
	if err != nil {
		return "", nil, err
	}
	entry, err := r.store.GetFileEntry(ctx, commitID, path)
	if err != nil {
		return "", nil, err
	}
	return commitID, entry, nil
}

func entryDisplaySize(e *metadata.FileEntry) int64 {
	if e.Kind == metadata.FileLFS {
		return e.LFSSize
	}
	return int64(len(e.InlineContent))
}

func contentTypeFor(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// TreeEntry is one path's listing, optionally enriched with its LFS
// pointer and last-modifying-commit summary when expand is requested.
type TreeEntry struct {
	Path       string
	Kind       metadata.FileEntryKind
	Size       int64
	OID        string
	LFSPointer *metadata.LFSPointer
	LastCommit *CommitSummary
}

// CommitSummary is the trimmed commit projection returned by tree(expand)
// and paths_info.
type CommitSummary struct {
	ID      string
	Summary string
	Author  string
	At      time.Time
}

// TreePage is one page of a tree listing.
type TreePage struct {
	Entries    []TreeEntry
	NextCursor string // empty when there is no further page
}

const defaultTreeLimit = 1000

// Tree lists revision's tree under path, optionally recursively, paginated
// by path (cursor is the last path returned by the previous call; empty
// starts from the beginning). expand additionally attaches each entry's
// LFSPointer and its last-modifying commit summary.
func (r *Resolver) Tree(ctx context.Context, repoID, revision, path string, recursive, expand bool, cursor string, limit int) (*TreePage, error) {
	if limit <= 0 {
		limit = defaultTreeLimit
	}

	commitID, err := r.store.ResolveRevisionName(ctx, repoID, revision)
	if err != nil {
		return nil, err
	}
	entries, err := r.store.ListTree(ctx, commitID, path, recursive)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })

	start := 0
	if cursor != "" {
		start = sort.Search(len(entries), func(i int) bool { return entries[i].Path > cursor })
	}
	if start >= len(entries) {
		return &TreePage{}, nil
	}
	end := start + limit
	if end > len(entries) {
		end = len(entries)
	}
	page := entries[start:end]

	out := &TreePage{Entries: make([]TreeEntry, 0, len(page))}
	for _, e := range page {
		te := TreeEntry{Path: e.Path, Kind: e.Kind, Size: entryDisplaySize(e), OID: e.OID}
		if expand {
			if e.Kind == metadata.FileLFS {
				if ptr, err := r.store.GetLFSPointer(ctx, repoID, e.OID); err == nil {
					te.LFSPointer = ptr
				} else if !metadata.IsNotFound(err) {
					return nil, err
				}
			}
			if lc, err := r.versioning.LastCommitForPath(ctx, repoID, commitID, e.Path); err == nil {
				te.LastCommit = &CommitSummary{ID: lc.ID, Summary: lc.Message, Author: lc.Author, At: lc.CreatedAt}
			} else if !metadata.IsNotFound(err) {
				return nil, err
			}
		}
		out.Entries = append(out.Entries, te)
	}
	if end < len(entries) {
		out.NextCursor = page[len(page)-1].Path
	}
	return out, nil
}

// PathInfo is one path's batched-stat result from PathsInfo.
type PathInfo struct {
	Path string
	TreeEntry
	Found bool
}

// PathsInfo batch-stats a list of paths at revision. A path with no entry
// is reported with Found == false rather than aborting the whole batch.
func (r *Resolver) PathsInfo(ctx context.Context, repoID, revision string, paths []string) ([]PathInfo, error) {
	commitID, err := r.store.ResolveRevisionName(ctx, repoID, revision)
	if err != nil {
		return nil, err
	}

	out := make([]PathInfo, 0, len(paths))
	for _, p := range paths {
		entry, err := r.store.GetFileEntry(ctx, commitID, p)
		if err != nil {
			if metadata.IsNotFound(err) {
				out = append(out, PathInfo{Path: p, Found: false})
				continue
			}
			return nil, err
		}
		out = append(out, PathInfo{
			Path:  p,
			Found: true,
			TreeEntry: TreeEntry{
				Path: entry.Path,
				Kind: entry.Kind,
				Size: entryDisplaySize(entry),
				OID:  entry.OID,
			},
		})
	}
	return out, nil
}
