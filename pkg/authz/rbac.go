// Package authz implements the hub's namespace-scoped RBAC matrix and the
// quota admission gate shared by the transfer protocol and commit engine.
package authz

import (
	"errors"

	"github.com/marmos91/hubd/pkg/metadata"
)

var ErrForbidden = errors.New("forbidden")

// Action is a bitmask of the operations the role matrix gates.
type Action uint8

const (
	ActionRead Action = 1 << iota
	ActionWrite
	ActionSettings
	ActionManageMembers
)

// Membership is the caller's relationship to the namespace that owns the
// target repository, resolved by the caller from Principal.Groups (or an
// organization store, once one exists) before calling Authorize.
type Membership uint8

const (
	// MembershipNone means the principal is not the namespace and not a
	// member of it.
	MembershipNone Membership = iota
	// MembershipMember means the principal belongs to the organization
	// namespace as an ordinary member.
	MembershipMember
	// MembershipAdmin means the principal administers the organization
	// namespace (can change settings, manage members, write).
	MembershipAdmin
)

// Decision is the input to a single authorization check.
type Decision struct {
	// Principal is nil for anonymous callers.
	Principal *metadata.Principal
	// OwnNamespace is true when the target namespace is the principal's own
	// user namespace (ns.Slug == principal.Username).
	OwnNamespace bool
	Membership   Membership
	// IsCreator is true when the principal created the target repository,
	// granting write access to members even without admin membership.
	IsCreator bool
	RepoPrivate bool
}

// calculateGranted computes the Action bitmask available to d, mirroring
// the role matrix in order: hub-wide admin override first, then
// public/private visibility, then ownership, then organization membership.
func calculateGranted(d Decision) Action {
	if d.Principal != nil && d.Principal.Role == metadata.RoleAdmin {
		return ActionRead | ActionWrite | ActionSettings | ActionManageMembers
	}

	var granted Action
	if !d.RepoPrivate {
		granted |= ActionRead
	}

	if d.Principal == nil {
		return granted
	}

	if d.OwnNamespace {
		return granted | ActionRead | ActionWrite | ActionSettings | ActionManageMembers
	}

	switch d.Membership {
	case MembershipAdmin:
		granted |= ActionRead | ActionWrite | ActionSettings | ActionManageMembers
	case MembershipMember:
		granted |= ActionRead
		if d.IsCreator {
			granted |= ActionWrite
		}
	}

	return granted
}

// Authorize reports whether d is permitted to perform action, returning
// ErrForbidden if not.
func Authorize(d Decision, action Action) error {
	if calculateGranted(d)&action == 0 {
		return ErrForbidden
	}
	return nil
}

// CanRead, CanWrite, CanAdministerSettings, and CanManageMembers are
// convenience wrappers around Authorize for the common single-action checks.
func CanRead(d Decision) error            { return Authorize(d, ActionRead) }
func CanWrite(d Decision) error           { return Authorize(d, ActionWrite) }
func CanAdministerSettings(d Decision) error { return Authorize(d, ActionSettings) }
func CanManageMembers(d Decision) error   { return Authorize(d, ActionManageMembers) }
