package logger

import (
	"log/slog"
)

// Standard field keys for structured logging.
// Use these keys consistently across all log statements for log aggregation
// and querying.
const (
	// Distributed tracing
	KeyTraceID = "trace_id"
	KeySpanID  = "span_id"

	// HTTP request scope
	KeyRequestID = "request_id"
	KeyRoute     = "route"
	KeyMethod    = "method"
	KeyStatus    = "status"
	KeyClientIP  = "client_ip"

	// Identity scope
	KeyPrincipalID = "principal_id"
	KeyTokenID     = "token_id"
	KeyRole        = "role"

	// Repository scope
	KeyNamespace  = "namespace"
	KeyRepository = "repository"
	KeyRevision   = "revision"
	KeyRevType    = "revision_type"
	KeyPath       = "path"
	KeyCommitID   = "commit_id"
	KeyParentID   = "parent_commit_id"

	// Transfer / object store
	KeyOID        = "oid"
	KeySize       = "size"
	KeyBucket     = "bucket"
	KeyObjectKey  = "object_key"
	KeyUploadID   = "upload_id"
	KeyPartNumber = "part_number"
	KeyAttempt    = "attempt"
	KeyMaxRetries = "max_retries"

	// Quota
	KeyQuotaUsed  = "quota_used_bytes"
	KeyQuotaLimit = "quota_limit_bytes"

	// Operation metadata
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
	KeyErrorCode  = "error_code"
	KeyOperation  = "operation"
)

func TraceID(id string) slog.Attr    { return slog.String(KeyTraceID, id) }
func SpanID(id string) slog.Attr     { return slog.String(KeySpanID, id) }
func RequestID(id string) slog.Attr  { return slog.String(KeyRequestID, id) }
func Route(r string) slog.Attr       { return slog.String(KeyRoute, r) }
func Method(m string) slog.Attr      { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr      { return slog.Int(KeyStatus, code) }
func ClientIP(addr string) slog.Attr { return slog.String(KeyClientIP, addr) }

func PrincipalID(id string) slog.Attr { return slog.String(KeyPrincipalID, id) }
func TokenID(id string) slog.Attr     { return slog.String(KeyTokenID, id) }
func Role(r string) slog.Attr         { return slog.String(KeyRole, r) }

func Namespace(ns string) slog.Attr    { return slog.String(KeyNamespace, ns) }
func Repository(repo string) slog.Attr { return slog.String(KeyRepository, repo) }
func Revision(rev string) slog.Attr    { return slog.String(KeyRevision, rev) }
func RevType(t string) slog.Attr       { return slog.String(KeyRevType, t) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func CommitID(id string) slog.Attr     { return slog.String(KeyCommitID, id) }
func ParentID(id string) slog.Attr     { return slog.String(KeyParentID, id) }

func OID(oid string) slog.Attr       { return slog.String(KeyOID, oid) }
func Size(n int64) slog.Attr         { return slog.Int64(KeySize, n) }
func Bucket(name string) slog.Attr   { return slog.String(KeyBucket, name) }
func ObjectKey(key string) slog.Attr { return slog.String(KeyObjectKey, key) }
func UploadID(id string) slog.Attr   { return slog.String(KeyUploadID, id) }
func PartNumber(n int32) slog.Attr   { return slog.Int(KeyPartNumber, int(n)) }
func Attempt(n int) slog.Attr        { return slog.Int(KeyAttempt, n) }
func MaxRetries(n int) slog.Attr     { return slog.Int(KeyMaxRetries, n) }

func QuotaUsed(n int64) slog.Attr  { return slog.Int64(KeyQuotaUsed, n) }
func QuotaLimit(n int64) slog.Attr { return slog.Int64(KeyQuotaLimit, n) }

func DurationMs(ms float64) slog.Attr { return slog.Float64(KeyDurationMs, ms) }

func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

func ErrorCode(code string) slog.Attr { return slog.String(KeyErrorCode, code) }
func Operation(op string) slog.Attr   { return slog.String(KeyOperation, op) }
