package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys for hub operations (spec §4.C1-C8). These follow
// OpenTelemetry semantic conventions where applicable; hub-domain keys use
// the "hub." prefix to distinguish them from generic HTTP/gRPC attributes
// a middleware layer might also attach to the same span.
const (
	// ========================================================================
	// Client / request attributes
	// ========================================================================
	AttrClientIP   = "client.ip"
	AttrClientAddr = "client.address"

	// ========================================================================
	// Namespace / repository / revision attributes
	// ========================================================================
	AttrNamespace    = "hub.namespace"
	AttrRepository   = "hub.repository"
	AttrRepoKind     = "hub.repository_kind" // model, dataset, space
	AttrRevision     = "hub.revision"        // branch name or commit id
	AttrCommit       = "hub.commit"
	AttrPath         = "hub.path"
	AttrOID          = "hub.oid"   // LFS object id (sha256)
	AttrSize         = "hub.size"
	AttrEntryKind    = "hub.entry_kind" // regular, lfs, directory

	// ========================================================================
	// Principal / auth attributes
	// ========================================================================
	AttrPrincipal = "hub.principal"
	AttrRole      = "hub.role"
	AttrAuth      = "auth.method"

	// ========================================================================
	// Quota attributes
	// ========================================================================
	AttrQuotaBytes   = "hub.quota.bytes"
	AttrQuotaObjects = "hub.quota.objects"
	AttrQuotaAllowed = "hub.quota.allowed"

	// ========================================================================
	// Transfer attributes (Git-LFS batch API, multipart uploads)
	// ========================================================================
	AttrTransferOp      = "hub.transfer.operation" // upload, download
	AttrTransferObjects = "hub.transfer.object_count"
	AttrUploadID        = "hub.transfer.upload_id"
	AttrMultipart       = "hub.transfer.multipart"

	// ========================================================================
	// Cache attributes
	// ========================================================================
	AttrCacheHit    = "cache.hit"
	AttrCacheSource = "cache.source"
	AttrCacheState  = "cache.state"

	// ========================================================================
	// Storage backend attributes (pkg/blobstore, pkg/metadata)
	// ========================================================================
	AttrStoreName = "store.name"
	AttrStoreType = "store.type"
	AttrBucket    = "storage.bucket"
	AttrKey       = "storage.key"
	AttrRegion    = "storage.region"
)

// Span names for operations.
// Format: <component>.<operation>.
const (
	// Root span for an HTTP API request.
	SpanAPIRequest = "api.request"

	// C8 resolver spans.
	SpanResolverHead       = "resolver.head"
	SpanResolverGet        = "resolver.get"
	SpanResolverTree       = "resolver.tree"
	SpanResolverPathsInfo  = "resolver.paths_info"

	// C7 commit engine spans.
	SpanCommitApply = "commit.apply"

	// C6 transfer spans.
	SpanTransferBatch    = "transfer.batch"
	SpanTransferUpload   = "transfer.upload"
	SpanTransferDownload = "transfer.download"
	SpanPreuploadClassify = "preupload.classify"

	// C1 auth spans.
	SpanAuthLogin   = "auth.login"
	SpanAuthRefresh = "auth.refresh"
	SpanAuthBearer  = "auth.bearer"

	// C2 authorization/quota spans.
	SpanQuotaCheck = "quota.check"

	// C5 object store spans.
	SpanBlobPut    = "blob.put"
	SpanBlobGet    = "blob.get"
	SpanBlobPresign = "blob.presign"

	// Internal cache / metadata spans.
	SpanCacheLookup = "cache.lookup"
	SpanCacheWrite  = "cache.write"
	SpanMetaLookup  = "metadata.lookup"
	SpanMetaUpdate  = "metadata.update"
	SpanMetaCreate  = "metadata.create"
	SpanMetaDelete  = "metadata.delete"

	// Background garbage collection.
	SpanGCSweep = "gc.sweep"
)

// ClientIP returns an attribute for client IP address.
func ClientIP(ip string) attribute.KeyValue {
	return attribute.String(AttrClientIP, ip)
}

// ClientAddr returns an attribute for full client address.
func ClientAddr(addr string) attribute.KeyValue {
	return attribute.String(AttrClientAddr, addr)
}

// Namespace returns an attribute for the namespace slug a request is
// scoped to.
func Namespace(slug string) attribute.KeyValue {
	return attribute.String(AttrNamespace, slug)
}

// Repository returns an attribute for the repository a request is
// scoped to.
func Repository(name string) attribute.KeyValue {
	return attribute.String(AttrRepository, name)
}

// RepoKind returns an attribute for a repository's kind (model, dataset,
// space).
func RepoKind(kind string) attribute.KeyValue {
	return attribute.String(AttrRepoKind, kind)
}

// Revision returns an attribute for the revision (branch or commit id)
// a lookup or mutation targets.
func Revision(revision string) attribute.KeyValue {
	return attribute.String(AttrRevision, revision)
}

// Commit returns an attribute for a resolved commit id.
func Commit(commitID string) attribute.KeyValue {
	return attribute.String(AttrCommit, commitID)
}

// Path returns an attribute for a repository-relative file path.
func Path(path string) attribute.KeyValue {
	return attribute.String(AttrPath, path)
}

// OID returns an attribute for an LFS object's content hash.
func OID(oid string) attribute.KeyValue {
	return attribute.String(AttrOID, oid)
}

// Size returns an attribute for a file or object size in bytes.
func Size(size int64) attribute.KeyValue {
	return attribute.Int64(AttrSize, size)
}

// EntryKind returns an attribute for a tree entry's kind.
func EntryKind(kind string) attribute.KeyValue {
	return attribute.String(AttrEntryKind, kind)
}

// Principal returns an attribute for the authenticated principal ID
// acting on a request.
func Principal(id string) attribute.KeyValue {
	return attribute.String(AttrPrincipal, id)
}

// Username returns an attribute for a principal's username, used before
// authentication resolves an ID (e.g. a login attempt).
func Username(name string) attribute.KeyValue {
	return attribute.String("hub.username", name)
}

// Role returns an attribute for a principal's role.
func Role(role string) attribute.KeyValue {
	return attribute.String(AttrRole, role)
}

// AuthMethod returns an attribute for the authentication method used
// (password, refresh_token, bearer_api_token).
func AuthMethod(method string) attribute.KeyValue {
	return attribute.String(AttrAuth, method)
}

// QuotaAllowed returns an attribute recording a quota gate's verdict.
func QuotaAllowed(allowed bool) attribute.KeyValue {
	return attribute.Bool(AttrQuotaAllowed, allowed)
}

// TransferOp returns an attribute for a Git-LFS batch operation
// direction.
func TransferOp(op string) attribute.KeyValue {
	return attribute.String(AttrTransferOp, op)
}

// TransferObjects returns an attribute for the number of objects in a
// batch transfer request.
func TransferObjects(n int) attribute.KeyValue {
	return attribute.Int(AttrTransferObjects, n)
}

// Multipart returns an attribute recording whether an upload plan used
// multipart.
func Multipart(multipart bool) attribute.KeyValue {
	return attribute.Bool(AttrMultipart, multipart)
}

// CacheHit returns an attribute for a cache hit/miss outcome.
func CacheHit(hit bool) attribute.KeyValue {
	return attribute.Bool(AttrCacheHit, hit)
}

// CacheSource returns an attribute for which lookup path served a
// cache-backed response (stat, ignore).
func CacheSource(source string) attribute.KeyValue {
	return attribute.String(AttrCacheSource, source)
}

// StoreName returns an attribute for the backing store's configured
// name.
func StoreName(name string) attribute.KeyValue {
	return attribute.String(AttrStoreName, name)
}

// StoreType returns an attribute for the backing store's kind
// (postgres, memory, s3).
func StoreType(t string) attribute.KeyValue {
	return attribute.String(AttrStoreType, t)
}

// Bucket returns an attribute for an S3 bucket name.
func Bucket(name string) attribute.KeyValue {
	return attribute.String(AttrBucket, name)
}

// StorageKey returns an attribute for an S3 object key.
func StorageKey(key string) attribute.KeyValue {
	return attribute.String(AttrKey, key)
}

// Region returns an attribute for a cloud region.
func Region(region string) attribute.KeyValue {
	return attribute.String(AttrRegion, region)
}

// StartResolverSpan starts a span for a C8 resolver lookup, scoped to the
// repository/revision/path it resolves.
func StartResolverSpan(ctx context.Context, name, repoID, revision, path string) (context.Context, trace.Span) {
	return StartSpan(ctx, name, trace.WithAttributes(
		Repository(repoID),
		Revision(revision),
		Path(path),
	))
}

// StartCommitSpan starts a span for a C7 commit engine apply, scoped to
// the repository and branch it targets.
func StartCommitSpan(ctx context.Context, repoID, branch, author string) (context.Context, trace.Span) {
	return StartSpan(ctx, SpanCommitApply, trace.WithAttributes(
		Repository(repoID),
		Revision(branch),
		Principal(author),
	))
}

// StartTransferSpan starts a span for a C6 Git-LFS batch operation.
func StartTransferSpan(ctx context.Context, name, repoID string, op string, objectCount int) (context.Context, trace.Span) {
	return StartSpan(ctx, name, trace.WithAttributes(
		Repository(repoID),
		TransferOp(op),
		TransferObjects(objectCount),
	))
}

// StartAuthSpan starts a span for a C1 identity/session operation.
func StartAuthSpan(ctx context.Context, name, method string) (context.Context, trace.Span) {
	return StartSpan(ctx, name, trace.WithAttributes(AuthMethod(method)))
}

// StartCacheSpan starts a span for a pkg/cache lookup or write.
func StartCacheSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, operation, trace.WithAttributes(attrs...))
}

// StartMetadataSpan starts a span for a metadata store operation.
func StartMetadataSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, operation, trace.WithAttributes(attrs...))
}

// StartGCSpan starts a span for a background LFS garbage collection
// sweep of a single repository.
func StartGCSpan(ctx context.Context, repoID string) (context.Context, trace.Span) {
	return StartSpan(ctx, SpanGCSweep, trace.WithAttributes(Repository(repoID)))
}
