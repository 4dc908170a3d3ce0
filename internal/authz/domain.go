package authz

import "sort"

// EntityType identifies a scoped container entity.
type EntityType string

const (
	// EntityNone marks resources without a container scope (self-resources).
	EntityNone      EntityType = ""
	EntityCompany   EntityType = "company"
	EntityPortfolio EntityType = "portfolio"
	EntityProperty  EntityType = "property"
)

// EdgeKind distinguishes authority edges from team-placement edges.
type EdgeKind string

const (
	// EdgeManaged denotes authority over a portfolio or property.
	EdgeManaged EdgeKind = "managed"
	// EdgeAssigned denotes task-level team placement without implied authority.
	EdgeAssigned EdgeKind = "assigned"
)

// Principal is the authenticated actor an authorization decision is made for.
// It is a snapshot taken at authentication time and never mutated afterwards.
type Principal struct {
	ID        int64
	CompanyID int64
	Roles     []Role
}

// HasRole reports whether the principal holds the given role.
func (p Principal) HasRole(role Role) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Resource references the target of an authorization check.
// A zero Type means the resource has no container scope.
type Resource struct {
	Type EntityType
	ID   int64
}

// SelfResource builds a resource reference for principal-owned data such as
// the principal's own profile.
func SelfResource() Resource {
	return Resource{Type: EntityNone}
}

// ScopeSet is the resolved set of entity IDs a principal may enumerate.
// It is either full access or an explicit, possibly empty, ID set.
type ScopeSet struct {
	full bool
	ids  map[int64]struct{}
}

// FullScope grants access to every entity of the resolved type.
func FullScope() ScopeSet {
	return ScopeSet{full: true}
}

// ExplicitScope grants access to exactly the given IDs.
func ExplicitScope(ids ...int64) ScopeSet {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return ScopeSet{ids: set}
}

// IsFull reports whether the scope covers every entity.
func (s ScopeSet) IsFull() bool {
	return s.full
}

// Contains reports whether the given ID is inside the scope.
func (s ScopeSet) Contains(id int64) bool {
	if s.full {
		return true
	}
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of explicit IDs. Full scopes report zero.
func (s ScopeSet) Len() int {
	return len(s.ids)
}

// IDs returns the explicit IDs in ascending order. Full scopes return nil;
// callers must check IsFull before constraining queries with the result.
func (s ScopeSet) IDs() []int64 {
	if s.full || len(s.ids) == 0 {
		return nil
	}
	out := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Union merges another scope into this one. A full operand yields full scope.
func (s ScopeSet) Union(other ScopeSet) ScopeSet {
	if s.full || other.full {
		return FullScope()
	}
	merged := make(map[int64]struct{}, len(s.ids)+len(other.ids))
	for id := range s.ids {
		merged[id] = struct{}{}
	}
	for id := range other.ids {
		merged[id] = struct{}{}
	}
	return ScopeSet{ids: merged}
}

// DenyReason classifies why an authorization check failed.
type DenyReason string

const (
	// ReasonNone is carried by allowing decisions.
	ReasonNone DenyReason = ""
	// ReasonNoPermission means no held role grants the requested permission.
	ReasonNoPermission DenyReason = "no_permission"
	// ReasonOutOfScope means the permission is granted in general but the
	// resource lies outside the principal's resolved scope.
	ReasonOutOfScope DenyReason = "out_of_scope"
	// ReasonNotFound means the resource reference does not resolve to an
	// existing entity. Read-path callers should fold this into the same
	// response as ReasonOutOfScope to avoid leaking existence.
	ReasonNotFound DenyReason = "not_found"
)

// Decision is the verdict of one authorization check.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

// Allow builds an allowing decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny builds a denying decision with the given reason.
func Deny(reason DenyReason) Decision {
	return Decision{Reason: reason}
}
