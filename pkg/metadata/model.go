// Package metadata defines the durable entities of the hub (namespaces,
// repositories, revisions, commits, file entries, LFS pointers, tokens,
// quota policies, and LFS configuration) and the MetadataStore contract
// that every backend (postgres, memory) must satisfy.
package metadata

import "time"

// PrincipalRole is the coarse role a Principal holds hub-wide.
type PrincipalRole string

const (
	RoleAdmin  PrincipalRole = "admin"
	RoleWriter PrincipalRole = "writer"
	RoleReader PrincipalRole = "reader"
)

// Principal is an authenticated identity: a human user or a service account.
type Principal struct {
	ID           string
	Username     string
	PasswordHash string // salted hash, empty for service-account-only principals
	Role         PrincipalRole
	Groups       []string
	CreatedAt    time.Time
	Disabled     bool
}

// TokenKind distinguishes session tokens from long-lived API tokens.
type TokenKind string

const (
	TokenKindSession TokenKind = "session"
	TokenKindAPI     TokenKind = "api"
)

// Token is a long-lived API credential (hub_<random>), stored hashed.
type Token struct {
	ID          string
	PrincipalID string
	Kind        TokenKind
	HashedKey   string // SHA-256 of the raw key, never the raw key itself
	Name        string
	Scopes      []string
	CreatedAt   time.Time
	ExpiresAt   *time.Time
	LastUsedAt  *time.Time
	Revoked     bool
}

// Namespace is a top-level owner of repositories: a user namespace or an
// organization namespace.
type Namespace struct {
	ID        string
	Slug      string
	Kind      string // "user" | "org"
	CreatedAt time.Time
}

// QuotaPolicy bounds storage and object counts for a namespace.
type QuotaPolicy struct {
	ID            string
	NamespaceID   string
	MaxBytes      int64 // 0 = unlimited
	MaxObjects    int64 // 0 = unlimited
	UsedBytes     int64
	UsedObjects   int64
}

// RepositoryKind distinguishes model/dataset/space repos, mirroring the
// wire-compatible hub's repo_type.
type RepositoryKind string

const (
	RepoModel   RepositoryKind = "model"
	RepoDataset RepositoryKind = "dataset"
	RepoSpace   RepositoryKind = "space"
)

// Repository is a namespaced, versioned collection of files.
type Repository struct {
	ID          string
	NamespaceID string
	Name        string
	Kind        RepositoryKind
	Private     bool
	// CreatedBy is the principal ID that created the repository. Org-member
	// callers who are not org admins still get write access to repositories
	// they created themselves (authz.Decision.IsCreator).
	CreatedBy string
	CreatedAt time.Time
}

// RevisionKind distinguishes branches, tags, and raw commit-id references.
type RevisionKind string

const (
	RevisionBranch RevisionKind = "branch"
	RevisionTag    RevisionKind = "tag"
	RevisionCommit RevisionKind = "commit"
)

// Revision is a named ref (branch or tag) pointing at a commit, or the
// special resolved-commit-id case which has no stored row.
type Revision struct {
	RepositoryID string
	Name         string
	Kind         RevisionKind
	CommitID     string
	UpdatedAt    time.Time
}

// FileEntryKind distinguishes inline (regular) files from LFS pointer files.
type FileEntryKind string

const (
	FileRegular FileEntryKind = "regular"
	FileLFS     FileEntryKind = "lfs"
)

// FileEntry is one path's content at a specific commit.
type FileEntry struct {
	ID       string
	CommitID string
	Path     string
	Kind     FileEntryKind
	OID      string // sha256 of blob (regular) or of the LFS-pointed object
	Size     int64
	// InlineContent holds the bytes themselves for Kind == FileRegular: per
	// spec, inline means the bytes live in the commit payload, not in the
	// object store. Empty for Kind == FileLFS.
	InlineContent []byte
	// LFSOID holds the blob's storage key (blobstore.KeyForOID(OID)) when
	// Kind == FileLFS; OID itself carries the content sha256 used to look
	// up the LFSPointer row.
	LFSOID  string
	LFSSize int64
}

// Commit is one node of the repository's commit graph.
type Commit struct {
	ID           string
	RepositoryID string
	ParentID     string // empty for the initial commit
	Message      string
	Description  string
	Author       string
	CreatedAt    time.Time
}

// LFSPointer is a content-addressed large object tracked by the transfer
// protocol and garbage-collected independently of commit history.
type LFSPointer struct {
	OID           string
	RepositoryID  string
	Size          int64
	UploadedAt    time.Time
	ReferenceCount int // live linkage count: +1 when a commit links a path to this oid, -1 when that path is superseded or deleted
}

// LFSConfig holds the per-repository classifier thresholds (spec §4.C6).
type LFSConfig struct {
	RepositoryID       string
	ThresholdBytes     int64 // files at or above this size are classified "external"/LFS
	MultipartThreshold int64 // uploads at or above this size use multipart S3 actions
	SuffixRules        []string // e.g. "*.bin", "*.safetensors" forced to LFS regardless of size
}

// StagingRecordStatus tracks a staged upload through the transfer protocol.
type StagingRecordStatus string

const (
	StagingPending   StagingRecordStatus = "pending"
	StagingUploaded  StagingRecordStatus = "uploaded"
	StagingCommitted StagingRecordStatus = "committed"
	StagingExpired   StagingRecordStatus = "expired"
)

// StagingRecord tracks one object staged for upload via the transfer
// protocol, between the preupload classification and the commit that
// references it.
type StagingRecord struct {
	ID           string
	RepositoryID string
	OID          string
	Size         int64
	Status       StagingRecordStatus
	UploadID     string // non-empty when a multipart session is in progress
	CreatedAt    time.Time
	ExpiresAt    time.Time
}
