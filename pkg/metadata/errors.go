package metadata

import "fmt"

// ErrorCode identifies the category of a StoreError.
type ErrorCode int

const (
	ErrUnknown ErrorCode = iota
	ErrNotFound
	ErrAlreadyExists
	ErrConcurrentUpdate
	ErrStaleRevision
	ErrQuotaExceeded
	ErrInvalidArgument
	ErrPermissionDenied
	ErrConflict
)

func (c ErrorCode) String() string {
	switch c {
	case ErrNotFound:
		return "not_found"
	case ErrAlreadyExists:
		return "already_exists"
	case ErrConcurrentUpdate:
		return "concurrent_update"
	case ErrStaleRevision:
		return "stale_revision"
	case ErrQuotaExceeded:
		return "quota_exceeded"
	case ErrInvalidArgument:
		return "invalid_argument"
	case ErrPermissionDenied:
		return "permission_denied"
	case ErrConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// StoreError is the typed error returned by every MetadataStore operation
// that fails for a domain reason (as opposed to a transport/driver failure,
// which is wrapped separately).
type StoreError struct {
	Code     ErrorCode
	Message  string
	Resource string // e.g. "namespace", "repository", "revision", "commit"
	ID       string // the offending identifier, for logging
}

func (e *StoreError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s: %s (%s %q)", e.Code, e.Message, e.Resource, e.ID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewNotFoundError(resource, id string) *StoreError {
	return &StoreError{Code: ErrNotFound, Message: "resource not found", Resource: resource, ID: id}
}

func NewAlreadyExistsError(resource, id string) *StoreError {
	return &StoreError{Code: ErrAlreadyExists, Message: "resource already exists", Resource: resource, ID: id}
}

func NewConcurrentUpdateError(resource, id string) *StoreError {
	return &StoreError{Code: ErrConcurrentUpdate, Message: "ref was updated concurrently", Resource: resource, ID: id}
}

func NewStaleRevisionError(resource, id string) *StoreError {
	return &StoreError{Code: ErrStaleRevision, Message: "expected parent commit is no longer current", Resource: resource, ID: id}
}

func NewQuotaExceededError(resource, id string) *StoreError {
	return &StoreError{Code: ErrQuotaExceeded, Message: "quota exceeded", Resource: resource, ID: id}
}

func NewInvalidArgumentError(resource, message string) *StoreError {
	return &StoreError{Code: ErrInvalidArgument, Message: message, Resource: resource}
}

func NewPermissionDeniedError(resource, id string) *StoreError {
	return &StoreError{Code: ErrPermissionDenied, Message: "permission denied", Resource: resource, ID: id}
}

func NewConflictError(resource, id, message string) *StoreError {
	return &StoreError{Code: ErrConflict, Message: message, Resource: resource, ID: id}
}

// IsNotFound reports whether err is a StoreError of code ErrNotFound.
func IsNotFound(err error) bool {
	se, ok := err.(*StoreError)
	return ok && se.Code == ErrNotFound
}

// IsAlreadyExists reports whether err is a StoreError of code ErrAlreadyExists.
func IsAlreadyExists(err error) bool {
	se, ok := err.(*StoreError)
	return ok && se.Code == ErrAlreadyExists
}

// IsConcurrentUpdate reports whether err is a StoreError of code ErrConcurrentUpdate.
func IsConcurrentUpdate(err error) bool {
	se, ok := err.(*StoreError)
	return ok && se.Code == ErrConcurrentUpdate
}

// IsStaleRevision reports whether err is a StoreError of code ErrStaleRevision.
func IsStaleRevision(err error) bool {
	se, ok := err.(*StoreError)
	return ok && se.Code == ErrStaleRevision
}

// IsQuotaExceeded reports whether err is a StoreError of code ErrQuotaExceeded.
func IsQuotaExceeded(err error) bool {
	se, ok := err.(*StoreError)
	return ok && se.Code == ErrQuotaExceeded
}
