package metadata

import (
	"context"
	"regexp"
)

// MetadataStore is the durable backing store for every entity in this
// package. Implementations must provide read-committed isolation for single
// calls and serializable isolation inside WithTransaction.
//
// All methods return a *StoreError for domain-level failures (not found,
// already exists, concurrent update, quota exceeded); driver-level failures
// (connection refused, context deadline) are returned unwrapped so callers
// can distinguish "the operation is invalid" from "the store is degraded".
type MetadataStore interface {
	// WithTransaction runs fn inside a single serializable transaction and
	// retries fn on serialization failure / deadlock up to an
	// implementation-defined bound. fn must be idempotent: it may run more
	// than once. The transaction commits if fn returns nil and rolls back
	// otherwise.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	NamespaceStore
	PrincipalStore
	TokenStore
	RepositoryStore
	RevisionStore
	CommitStore
	LFSStore
	QuotaStore
	StagingStore

	// Close releases any resources (connection pools, file handles) held by
	// the store. Close is idempotent.
	Close(ctx context.Context) error
}

// NamespaceStore manages Namespace rows.
type NamespaceStore interface {
	CreateNamespace(ctx context.Context, ns *Namespace) error
	GetNamespace(ctx context.Context, slug string) (*Namespace, error)
	DeleteNamespace(ctx context.Context, slug string) error
	// ListNamespaces enumerates every namespace, for administrative sweeps
	// (the LFS GC sweep walks every repository across every namespace).
	ListNamespaces(ctx context.Context) ([]*Namespace, error)
}

// PrincipalStore manages Principal (user/service-account) rows.
type PrincipalStore interface {
	CreatePrincipal(ctx context.Context, p *Principal) error
	GetPrincipalByID(ctx context.Context, id string) (*Principal, error)
	GetPrincipalByUsername(ctx context.Context, username string) (*Principal, error)
	UpdatePrincipal(ctx context.Context, p *Principal) error
	DeletePrincipal(ctx context.Context, id string) error
	ListPrincipals(ctx context.Context) ([]*Principal, error)
}

// TokenStore manages session and API Token rows.
type TokenStore interface {
	CreateToken(ctx context.Context, t *Token) error
	// GetTokenByHash looks up a live (non-revoked, non-expired) token by the
	// SHA-256 hash of its raw key. Callers hash the raw key before calling.
	GetTokenByHash(ctx context.Context, hashedKey string) (*Token, error)
	RevokeToken(ctx context.Context, id string) error
	TouchToken(ctx context.Context, id string) error // updates LastUsedAt
	ListTokens(ctx context.Context, principalID string) ([]*Token, error)
}

// RepositoryStore manages Repository rows, scoped by namespace.
type RepositoryStore interface {
	CreateRepository(ctx context.Context, r *Repository) error
	GetRepository(ctx context.Context, namespaceSlug, name string) (*Repository, error)
	DeleteRepository(ctx context.Context, id string) error
	ListRepositories(ctx context.Context, namespaceSlug string) ([]*Repository, error)
}

// RevisionStore manages branch/tag refs for a repository.
type RevisionStore interface {
	// UpsertRevision creates or updates a named ref. When expectedCommitID
	// is non-empty, the update is a compare-and-set: it fails with
	// ErrConcurrentUpdate if the ref's current commit does not match.
	UpsertRevision(ctx context.Context, rev *Revision, expectedCommitID string) error
	GetRevision(ctx context.Context, repoID, name string) (*Revision, error)
	ListRevisions(ctx context.Context, repoID string, kind RevisionKind) ([]*Revision, error)
	DeleteRevision(ctx context.Context, repoID, name string) error
	// ResolveRevisionName implements the branch -> tag -> commit-prefix ->
	// not_found state machine (spec C8). name may be empty, meaning "main".
	ResolveRevisionName(ctx context.Context, repoID, name string) (commitID string, err error)
}

// commitPrefixPattern is the commit-id shape from spec §4.C8: a lowercase
// hex string between 7 (git's traditional abbreviated length) and 64
// (a full sha256 hex digest) characters long.
var commitPrefixPattern = regexp.MustCompile(`^[0-9a-f]{7,64}$`)

// LooksLikeCommitPrefix reports whether name could possibly name a commit
// by prefix. ResolveRevisionName implementations must check this before
// falling back to a prefix scan over the commit table, so a short or
// non-hex ref name (a branch or tag that simply doesn't exist) can never
// accidentally prefix-match an unrelated commit id.
func LooksLikeCommitPrefix(name string) bool {
	return commitPrefixPattern.MatchString(name)
}

// CommitStore manages the append-only commit graph and the FileEntry rows
// addressed by each commit.
type CommitStore interface {
	// CreateCommit inserts the commit row and every FileEntry produced by
	// the commit engine's tree materialization, atomically.
	CreateCommit(ctx context.Context, c *Commit, files []*FileEntry) error
	GetCommit(ctx context.Context, id string) (*Commit, error)
	// ListTree returns the materialized file listing at a commit, optionally
	// filtered to a path prefix.
	ListTree(ctx context.Context, commitID, pathPrefix string, recursive bool) ([]*FileEntry, error)
	GetFileEntry(ctx context.Context, commitID, path string) (*FileEntry, error)
	// Log returns commits reachable from commitID, most recent first.
	Log(ctx context.Context, commitID string, limit int) ([]*Commit, error)
}

// LFSStore tracks content-addressed large objects independent of commit
// history so they can be garbage-collected once unreferenced.
type LFSStore interface {
	UpsertLFSPointer(ctx context.Context, p *LFSPointer) error
	GetLFSPointer(ctx context.Context, repoID, oid string) (*LFSPointer, error)
	IncrementLFSRefCount(ctx context.Context, repoID, oid string, delta int) error
	// ListUnreferenced returns LFS objects with a zero reference count,
	// for the gc sweep.
	ListUnreferenced(ctx context.Context, repoID string, limit int) ([]*LFSPointer, error)
	DeleteLFSPointer(ctx context.Context, repoID, oid string) error
	GetLFSConfig(ctx context.Context, repoID string) (*LFSConfig, error)
	SetLFSConfig(ctx context.Context, cfg *LFSConfig) error
}

// QuotaStore tracks and enforces per-namespace storage quotas.
type QuotaStore interface {
	GetQuotaPolicy(ctx context.Context, namespaceID string) (*QuotaPolicy, error)
	SetQuotaPolicy(ctx context.Context, q *QuotaPolicy) error
	// ReserveQuota atomically checks usage+delta against the policy limit
	// and, if it fits, applies the delta. Returns ErrQuotaExceeded otherwise.
	// A negative delta always succeeds (it only frees quota).
	ReserveQuota(ctx context.Context, namespaceID string, deltaBytes, deltaObjects int64) error
}

// StagingStore tracks objects between preupload classification and commit.
type StagingStore interface {
	CreateStagingRecord(ctx context.Context, s *StagingRecord) error
	GetStagingRecord(ctx context.Context, repoID, oid string) (*StagingRecord, error)
	UpdateStagingStatus(ctx context.Context, repoID, oid string, status StagingRecordStatus) error
	SetStagingUploadID(ctx context.Context, repoID, oid, uploadID string) error
	// ListExpired returns staging records whose ExpiresAt has passed and
	// whose status is still Pending or Uploaded, for cleanup.
	ListExpired(ctx context.Context, limit int) ([]*StagingRecord, error)
	DeleteStagingRecord(ctx context.Context, repoID, oid string) error
}
