package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/homeward-pm/homeward/internal/shared"
)

// Resolver computes the authorized ID set for a principal and entity type.
// It is the single implementation of the ownership-chain walk; every caller
// that needs to constrain a query by visibility goes through it.
type Resolver struct {
	graph Graph
}

// NewResolver constructs a Resolver over the given graph.
func NewResolver(graph Graph) *Resolver {
	return &Resolver{graph: graph}
}

// Resolve returns the scope a principal may enumerate for an entity type.
// When the principal holds several roles the result is the union of the
// scopes each role grants on its own; an additional role never shrinks
// the scope.
func (r *Resolver) Resolve(ctx context.Context, p Principal, entity EntityType) (ScopeSet, error) {
	if p.HasRole(RoleSystemAdmin) {
		return FullScope(), nil
	}

	scope := ExplicitScope()
	for _, role := range p.Roles {
		roleScope, err := r.roleScope(ctx, p, role, entity)
		if err != nil {
			return ScopeSet{}, err
		}
		scope = scope.Union(roleScope)
	}
	return scope, nil
}

// missing reports whether a resource reference fails to resolve in the
// ownership graph. Only consulted on the deny path, so allowed requests
// never pay for the existence probe. Companies have no parent lookup, so
// a company reference is never reported missing here.
func (r *Resolver) missing(ctx context.Context, res Resource) (bool, error) {
	var err error
	switch res.Type {
	case EntityPortfolio:
		_, err = r.graph.CompanyOfPortfolio(ctx, res.ID)
	case EntityProperty:
		_, err = r.graph.CompanyOfProperty(ctx, res.ID)
	default:
		return false, nil
	}
	if errors.Is(err, shared.ErrNotFound) {
		return true, nil
	}
	return false, err
}

func (r *Resolver) roleScope(ctx context.Context, p Principal, role Role, entity EntityType) (ScopeSet, error) {
	switch entity {
	case EntityCompany:
		return r.companyScope(p, role)
	case EntityPortfolio:
		return r.portfolioScope(ctx, p, role)
	case EntityProperty:
		return r.propertyScope(ctx, p, role)
	default:
		return ScopeSet{}, fmt.Errorf("authz: resolve: unknown entity type %q", entity)
	}
}

func (r *Resolver) companyScope(p Principal, role Role) (ScopeSet, error) {
	switch role {
	case RoleCompanyAdmin, RoleCompanyOwner:
		if p.CompanyID == 0 {
			return ExplicitScope(), nil
		}
		return ExplicitScope(p.CompanyID), nil
	default:
		return ExplicitScope(), nil
	}
}

func (r *Resolver) portfolioScope(ctx context.Context, p Principal, role Role) (ScopeSet, error) {
	switch role {
	case RoleCompanyAdmin, RoleCompanyOwner:
		if p.CompanyID == 0 {
			return ExplicitScope(), nil
		}
		ids, err := r.graph.PortfoliosOfCompany(ctx, p.CompanyID)
		if err != nil {
			return ScopeSet{}, fmt.Errorf("authz: portfolios of company %d: %w", p.CompanyID, err)
		}
		return ExplicitScope(ids...), nil
	case RolePortfolioManager:
		ids, err := r.graph.ActiveEdges(ctx, p.ID, EdgeManaged, EntityPortfolio)
		if err != nil {
			return ScopeSet{}, fmt.Errorf("authz: managed portfolios of %d: %w", p.ID, err)
		}
		return ExplicitScope(ids...), nil
	default:
		return ExplicitScope(), nil
	}
}

func (r *Resolver) propertyScope(ctx context.Context, p Principal, role Role) (ScopeSet, error) {
	switch role {
	case RoleCompanyAdmin, RoleCompanyOwner:
		if p.CompanyID == 0 {
			return ExplicitScope(), nil
		}
		ids, err := r.graph.PropertiesOfCompany(ctx, p.CompanyID)
		if err != nil {
			return ScopeSet{}, fmt.Errorf("authz: properties of company %d: %w", p.CompanyID, err)
		}
		return ExplicitScope(ids...), nil
	case RolePortfolioManager:
		portfolios, err := r.graph.ActiveEdges(ctx, p.ID, EdgeManaged, EntityPortfolio)
		if err != nil {
			return ScopeSet{}, fmt.Errorf("authz: managed portfolios of %d: %w", p.ID, err)
		}
		scope := ExplicitScope()
		for _, portfolioID := range portfolios {
			ids, err := r.graph.PropertiesOfPortfolio(ctx, portfolioID)
			if err != nil {
				return ScopeSet{}, fmt.Errorf("authz: properties of portfolio %d: %w", portfolioID, err)
			}
			scope = scope.Union(ExplicitScope(ids...))
		}
		return scope, nil
	case RolePropertyManager:
		ids, err := r.graph.ActiveEdges(ctx, p.ID, EdgeManaged, EntityProperty)
		if err != nil {
			return ScopeSet{}, fmt.Errorf("authz: managed properties of %d: %w", p.ID, err)
		}
		return ExplicitScope(ids...), nil
	default:
		return ExplicitScope(), nil
	}
}
