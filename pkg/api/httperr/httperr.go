// Package httperr maps domain errors raised anywhere in the hub (metadata
// store, versioning engine, transfer broker, commit engine, authz) onto the
// wire error envelope required by spec §7: an HTTP status code, a JSON body
// of the shape {"error": "<kind>"}, and an X-Error-Code header carrying the
// same kind. Grounded on the teacher's RFC 7807 problem-response helpers
// (pkg/controlplane/api/handlers/problem.go: BadRequest/NotFound/Conflict/
// InternalServerError writing a typed JSON body + status in one call) but
// the body shape here follows the hub wire protocol instead of RFC 7807,
// since HuggingFace Hub client tooling expects {"error": "..."}.
package httperr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/marmos91/hubd/pkg/authz"
	"github.com/marmos91/hubd/pkg/commit"
	"github.com/marmos91/hubd/pkg/metadata"
	"github.com/marmos91/hubd/pkg/transfer"
)

// Kind is one of the error vocabulary entries from spec §7.
type Kind string

const (
	Unauthenticated  Kind = "unauthenticated"
	Forbidden        Kind = "forbidden"
	RevokedToken     Kind = "revoked_token"
	RepoNotFound     Kind = "repo_not_found"
	RevisionNotFound Kind = "revision_not_found"
	PathNotFound     Kind = "path_not_found"
	NameTaken        Kind = "name_taken"
	InvalidName      Kind = "invalid_name"
	QuotaExceeded    Kind = "quota_exceeded"
	InlineTooLarge   Kind = "inline_too_large"
	ObjectTooLarge   Kind = "object_too_large"
	ObjectNotReady   Kind = "object_not_ready"
	SizeMismatch     Kind = "size_mismatch"
	UnsupportedHash  Kind = "unsupported_hash"
	StaleRevision      Kind = "stale_revision"
	ConcurrentUpdate   Kind = "concurrent_update"
	StorageUnavailable Kind = "storage_unavailable"
	BackendUnavailable Kind = "backend_unavailable"
	MalformedPayload   Kind = "malformed_payload"
	Internal           Kind = "internal"
)

// statusFor is the kind -> HTTP status mapping from spec §7. quota_exceeded
// is 413 here (the commit-path status); the preupload handler special-cases
// authz.ErrQuotaWarning itself and never reaches this mapper, since a
// preupload quota warning is a 200 with an advisory field, not an error.
var statusFor = map[Kind]int{
	Unauthenticated:    http.StatusUnauthorized,
	Forbidden:          http.StatusForbidden,
	RevokedToken:       http.StatusUnauthorized,
	RepoNotFound:       http.StatusNotFound,
	RevisionNotFound:   http.StatusNotFound,
	PathNotFound:       http.StatusNotFound,
	NameTaken:          http.StatusConflict,
	InvalidName:        http.StatusUnprocessableEntity,
	QuotaExceeded:      http.StatusRequestEntityTooLarge,
	InlineTooLarge:     http.StatusRequestEntityTooLarge,
	ObjectTooLarge:     http.StatusRequestEntityTooLarge,
	ObjectNotReady:     http.StatusUnprocessableEntity,
	SizeMismatch:       http.StatusUnprocessableEntity,
	UnsupportedHash:    http.StatusUnprocessableEntity,
	StaleRevision:      http.StatusConflict,
	ConcurrentUpdate:   http.StatusConflict,
	StorageUnavailable: http.StatusServiceUnavailable,
	BackendUnavailable: http.StatusServiceUnavailable,
	MalformedPayload:   http.StatusBadRequest,
	Internal:           http.StatusInternalServerError,
}

// body is the wire envelope: {"error": "<kind>"}.
type body struct {
	Error string `json:"error"`
}

// Write sends kind's mapped status, the {"error": "<kind>"} JSON body, and
// the X-Error-Code header in one call.
func Write(w http.ResponseWriter, kind Kind) {
	status, ok := statusFor[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", string(kind))
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body{Error: string(kind)})
}

// HandleError classifies err against the known domain sentinel errors and
// writes the matching envelope. Unrecognized errors map to Internal (500)
// so a bug in a new code path fails safe rather than leaking a kind.
func HandleError(w http.ResponseWriter, err error) {
	Write(w, Classify(err))
}

// Classify maps err onto its wire Kind without writing a response, so
// callers that need the kind for logging or branching (e.g. the preupload
// handler folding quota warnings into a 200) can reuse the same mapping
// HandleError uses.
func Classify(err error) Kind {
	if err == nil {
		return ""
	}

	var storeErr *metadata.StoreError
	if errors.As(err, &storeErr) {
		switch storeErr.Code {
		case metadata.ErrNotFound:
			return notFoundKindFor(storeErr.Resource)
		case metadata.ErrAlreadyExists:
			return NameTaken
		case metadata.ErrConcurrentUpdate:
			return ConcurrentUpdate
		case metadata.ErrStaleRevision:
			return StaleRevision
		case metadata.ErrQuotaExceeded:
			return QuotaExceeded
		case metadata.ErrInvalidArgument:
			return InvalidName
		case metadata.ErrPermissionDenied:
			return Forbidden
		case metadata.ErrConflict:
			return NameTaken
		}
		return Internal
	}

	switch {
	case errors.Is(err, authz.ErrForbidden):
		return Forbidden
	case errors.Is(err, authz.ErrQuotaWarning):
		return QuotaExceeded
	case errors.Is(err, transfer.ErrSizeMismatch):
		return SizeMismatch
	case errors.Is(err, commit.ErrMalformedPayload):
		return MalformedPayload
	case errors.Is(err, commit.ErrInlineTooLarge):
		return InlineTooLarge
	case errors.Is(err, commit.ErrObjectNotReady):
		return ObjectNotReady
	}

	return Internal
}

// notFoundKindFor narrows a generic "not found" store error to the wire
// kind the caller's resource type implies, since spec §7 distinguishes
// repo_not_found/revision_not_found/path_not_found rather than using one
// catch-all 404 kind.
func notFoundKindFor(resource string) Kind {
	switch resource {
	case "repository", "namespace":
		return RepoNotFound
	case "revision", "commit":
		return RevisionNotFound
	case "file", "lfs_object":
		return PathNotFound
	default:
		return RepoNotFound
	}
}
