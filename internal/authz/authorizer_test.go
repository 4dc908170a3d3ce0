package authz

import (
	"context"
	"testing"
)

func newTestAuthorizer(graph *stubGraph) *Authorizer {
	return NewAuthorizer(NewResolver(graph))
}

func TestAuthorizeSystemAdminAlwaysAllowed(t *testing.T) {
	auth := newTestAuthorizer(newTestGraph())
	p := Principal{ID: 1, Roles: []Role{RoleSystemAdmin}}

	resources := []Resource{
		{Type: EntityCompany, ID: 42},
		{Type: EntityCompany, ID: 99},
		{Type: EntityPortfolio, ID: 30},
		{Type: EntityProperty, ID: 70},
		SelfResource(),
	}
	for _, perm := range Permissions() {
		for _, res := range resources {
			decision, err := auth.Authorize(context.Background(), p, perm, res)
			if err != nil {
				t.Fatalf("authorize %s on %+v: %v", perm, res, err)
			}
			if !decision.Allowed {
				t.Fatalf("system admin denied %s on %+v (%s)", perm, res, decision.Reason)
			}
		}
	}
}

func TestAuthorizeDeniesMissingPermission(t *testing.T) {
	auth := newTestAuthorizer(newTestGraph())
	p := Principal{ID: 2, CompanyID: 42, Roles: []Role{RoleTenant}}

	decision, err := auth.Authorize(context.Background(), p, PermPortfolioDelete, Resource{Type: EntityPortfolio, ID: 7})
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if decision.Allowed || decision.Reason != ReasonNoPermission {
		t.Fatalf("expected NoPermission denial, got %+v", decision)
	}
}

func TestAuthorizeCompanyAdminOutOfScopeCompany(t *testing.T) {
	auth := newTestAuthorizer(newTestGraph())
	p := Principal{ID: 3, CompanyID: 42, Roles: []Role{RoleCompanyAdmin}}

	decision, err := auth.Authorize(context.Background(), p, PermPortfolioCreate, Resource{Type: EntityCompany, ID: 99})
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if decision.Allowed || decision.Reason != ReasonOutOfScope {
		t.Fatalf("expected OutOfScope denial, got %+v", decision)
	}
}

func TestAuthorizePortfolioManagerReadsPropertyViaPortfolio(t *testing.T) {
	graph := newTestGraph()
	graph.edges[edgeKey{4, EdgeManaged, EntityPortfolio}] = []int64{7}
	auth := newTestAuthorizer(graph)
	p := Principal{ID: 4, CompanyID: 42, Roles: []Role{RolePortfolioManager}}

	decision, err := auth.Authorize(context.Background(), p, PermPropertyRead, Resource{Type: EntityProperty, ID: 55})
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("expected allow for property in managed portfolio, got %+v", decision)
	}

	decision, err = auth.Authorize(context.Background(), p, PermPropertyRead, Resource{Type: EntityProperty, ID: 60})
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if decision.Allowed || decision.Reason != ReasonOutOfScope {
		t.Fatalf("expected OutOfScope for property in unmanaged portfolio, got %+v", decision)
	}
}

func TestAuthorizeUnresolvableResourceDeniesNotFound(t *testing.T) {
	auth := newTestAuthorizer(newTestGraph())
	p := Principal{ID: 3, CompanyID: 42, Roles: []Role{RoleCompanyAdmin}}

	decision, err := auth.Authorize(context.Background(), p, PermPropertyRead, Resource{Type: EntityProperty, ID: 999})
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if decision.Allowed || decision.Reason != ReasonNotFound {
		t.Fatalf("expected NotFound denial, got %+v", decision)
	}
}

func TestAuthorizeSelfResourceSkipsScopeWalk(t *testing.T) {
	graph := newTestGraph()
	auth := newTestAuthorizer(graph)
	p := Principal{ID: 5, CompanyID: 42, Roles: []Role{RoleTenant}}

	before := graph.calls
	decision, err := auth.Authorize(context.Background(), p, PermSettingsRead, SelfResource())
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("expected allow for self resource, got %+v", decision)
	}
	if graph.calls != before {
		t.Fatalf("self resource decision must not read the scope graph")
	}
}

func TestAuthorizeWildcardShortCircuits(t *testing.T) {
	graph := newTestGraph()
	auth := newTestAuthorizer(graph)
	p := Principal{ID: 6, Roles: []Role{RoleSystemAdmin}}

	before := graph.calls
	decision, err := auth.Authorize(context.Background(), p, PermCompanyDelete, Resource{Type: EntityCompany, ID: 99})
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("expected allow, got %+v", decision)
	}
	if graph.calls != before {
		t.Fatalf("wildcard decision must not read the scope graph")
	}
}

func TestEffectivePermissionsUnion(t *testing.T) {
	p := Principal{ID: 7, Roles: []Role{RoleAccountant, RoleInspector}}
	perms := EffectivePermissions(p)

	for _, want := range []Permission{PermFinancialRead, PermReportRead, PermPropertyRead, PermMaintenanceRead} {
		if _, ok := perms[want]; !ok {
			t.Fatalf("expected %s in effective set", want)
		}
	}
	if _, ok := perms[PermPortfolioDelete]; ok {
		t.Fatalf("unexpected portfolio.delete in effective set")
	}
}
