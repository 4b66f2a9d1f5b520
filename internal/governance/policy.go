package governance

import (
	"context"

	"github.com/google/uuid"
)

// BypassGroup is the sentinel group name that disables membership and role
// checks for a (category, action) pair. It is confined to storage; resolved
// policies carry the typed Bypass variant instead.
const BypassGroup = "bypass"

// AuthPolicy is the resolved authorization directive for a (category, action)
// pair: either Bypass or RequireAnyOf.
type AuthPolicy interface {
	isAuthPolicy()
}

// Bypass disables all downstream gates for the operation.
type Bypass struct{}

func (Bypass) isAuthPolicy() {}

// RequireAnyOf authorizes principals holding a role grant matching any of the
// configured groups. Groups is never empty.
type RequireAnyOf struct {
	Groups []string
}

func (RequireAnyOf) isAuthPolicy() {}

// PolicyResolver resolves the approval policy configured for a (category,
// action) pair.
type PolicyResolver struct {
	repo Repository
}

func NewPolicyResolver(repo Repository) *PolicyResolver {
	return &PolicyResolver{repo: repo}
}

// Resolve returns Bypass when any configured row carries the bypass sentinel,
// otherwise the distinct configured group names. An empty policy fails
// closed: acting without a configured approval group is forbidden.
func (r *PolicyResolver) Resolve(ctx context.Context, categoryID int64, action Action) (AuthPolicy, error) {
	names, err := r.repo.ListApprovalGroups(ctx, categoryID, action)
	if err != nil {
		return nil, errInternal("resolving approval policy", err)
	}
	seen := make(map[string]struct{}, len(names))
	groups := make([]string, 0, len(names))
	for _, name := range names {
		if name == BypassGroup {
			return Bypass{}, nil
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		groups = append(groups, name)
	}
	if len(groups) == 0 {
		return nil, errForbidden("no approval policy configured for action %q on category %d", action, categoryID)
	}
	return RequireAnyOf{Groups: groups}, nil
}

// MembershipGate verifies the acting principal belongs to the workflow bound
// to the entity's category.
type MembershipGate struct {
	repo Repository
}

func NewMembershipGate(repo Repository) *MembershipGate {
	return &MembershipGate{repo: repo}
}

func (g *MembershipGate) Allow(ctx context.Context, principal uuid.UUID, workflowID int64) error {
	ok, err := g.repo.HasWorkflowMembership(ctx, principal, workflowID)
	if err != nil {
		return errInternal("checking workflow membership", err)
	}
	if !ok {
		return errForbidden("principal %s is not a member of workflow %d", principal, workflowID)
	}
	return nil
}

// RoleGate verifies the acting principal holds a role grant matching one of
// the policy's groups. Before looking at the principal it cross-checks every
// configured group against the role registry; an unknown group denies the
// operation even when the principal's own grant would match it.
type RoleGate struct {
	repo Repository
}

func NewRoleGate(repo Repository) *RoleGate {
	return &RoleGate{repo: repo}
}

func (g *RoleGate) Allow(ctx context.Context, principal uuid.UUID, groups []string) error {
	missing, err := g.repo.MissingRoles(ctx, groups)
	if err != nil {
		return errInternal("validating approval groups against role registry", err)
	}
	if len(missing) > 0 {
		return errForbidden("approval policy names unregistered roles %v", missing)
	}
	ok, err := g.repo.HasRoleGrant(ctx, principal, groups)
	if err != nil {
		return errInternal("checking role grants", err)
	}
	if !ok {
		return errForbidden("principal %s holds no grant in the approval groups", principal)
	}
	return nil
}
