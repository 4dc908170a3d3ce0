package authz

import "context"

// Authorizer answers whether a principal may perform a permission on a
// resource. It composes the permission catalog, role defaults, and the
// scope resolver; the decision itself is a pure function of its snapshot
// inputs and performs no writes.
type Authorizer struct {
	resolver *Resolver
}

// NewAuthorizer constructs an Authorizer over the given resolver.
func NewAuthorizer(resolver *Resolver) *Authorizer {
	return &Authorizer{resolver: resolver}
}

// EffectivePermissions returns the union of default permission sets over
// every role the principal holds.
func EffectivePermissions(p Principal) map[Permission]struct{} {
	perms := make(map[Permission]struct{})
	for _, role := range p.Roles {
		for _, perm := range DefaultPermissions(role) {
			perms[perm] = struct{}{}
		}
	}
	return perms
}

// Authorize decides whether the principal may perform the permission on the
// resource. Denials are decision values, never errors; the error return is
// reserved for infrastructure failures while reading the scope graph.
func (a *Authorizer) Authorize(ctx context.Context, p Principal, perm Permission, res Resource) (Decision, error) {
	effective := EffectivePermissions(p)
	if _, ok := effective[PermAll]; ok {
		return Allow(), nil
	}
	if _, ok := effective[perm]; !ok {
		return Deny(ReasonNoPermission), nil
	}
	if res.Type == EntityNone {
		return Allow(), nil
	}

	scope, err := a.resolver.Resolve(ctx, p, res.Type)
	if err != nil {
		return Decision{}, err
	}
	if scope.Contains(res.ID) {
		return Allow(), nil
	}
	missing, err := a.resolver.missing(ctx, res)
	if err != nil {
		return Decision{}, err
	}
	if missing {
		return Deny(ReasonNotFound), nil
	}
	return Deny(ReasonOutOfScope), nil
}

// Resolve exposes scope resolution to callers constraining list and
// aggregate queries.
func (a *Authorizer) Resolve(ctx context.Context, p Principal, entity EntityType) (ScopeSet, error) {
	return a.resolver.Resolve(ctx, p, entity)
}
