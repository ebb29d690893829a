package authz

import "github.com/marmos91/hubd/pkg/metadata"

// ResolveMembership derives a principal's Membership in the organization
// namespace identified by namespaceSlug from Principal.Groups, per the
// Decision.Membership doc comment ("resolved by the caller from
// Principal.Groups ... before calling Authorize").
//
// Convention: a group entry equal to namespaceSlug grants MembershipMember;
// a group entry of "<namespaceSlug>:admin" grants MembershipAdmin. There is
// no separate organization-membership store in this hub (spec's Non-goals
// exclude a full org-management API), so group strings are the only signal
// available; a principal can belong to many organizations by holding
// multiple such entries.
func ResolveMembership(principal *metadata.Principal, namespaceSlug string) Membership {
	if principal == nil {
		return MembershipNone
	}
	membership := MembershipNone
	for _, g := range principal.Groups {
		if g == namespaceSlug+":admin" {
			return MembershipAdmin
		}
		if g == namespaceSlug {
			membership = MembershipMember
		}
	}
	return membership
}

// BuildDecision assembles a Decision for principal acting against repo,
// owned by ns, resolving OwnNamespace/Membership/IsCreator from the
// persisted records rather than requiring every call site to repeat the
// same three comparisons.
func BuildDecision(principal *metadata.Principal, ns *metadata.Namespace, repo *metadata.Repository) Decision {
	d := Decision{Principal: principal, RepoPrivate: repo.Private}
	if principal != nil {
		d.OwnNamespace = ns.Kind == "user" && ns.Slug == principal.Username
		d.Membership = ResolveMembership(principal, ns.Slug)
		d.IsCreator = repo.CreatedBy == principal.ID
	}
	return d
}
