package authz

import "testing"

func TestUnknownRoleHasNoPermissionsAndLowestRank(t *testing.T) {
	unknown := Role("regional_director")
	if perms := DefaultPermissions(unknown); len(perms) != 0 {
		t.Fatalf("expected empty permission set, got %v", perms)
	}
	for _, known := range Roles() {
		if !Outranks(known, unknown) {
			t.Fatalf("known role %s should outrank unknown role", known)
		}
	}
}

func TestRanksOrderAuthority(t *testing.T) {
	if !Outranks(RoleSystemAdmin, RoleCompanyAdmin) {
		t.Fatalf("system admin should outrank company admin")
	}
	if !Outranks(RolePortfolioManager, RolePropertyManager) {
		t.Fatalf("portfolio manager should outrank property manager")
	}
	if Outranks(RoleTenant, RoleLandlord) {
		t.Fatalf("tenant should not outrank landlord")
	}
	if Outranks(RoleTenant, RoleTenant) {
		t.Fatalf("a role never outranks itself")
	}
}

func TestHighestRankPicksBestRole(t *testing.T) {
	p := Principal{Roles: []Role{RoleTenant, RolePropertyManager, RoleVendor}}
	if got := HighestRank(p); got != Rank(RolePropertyManager) {
		t.Fatalf("expected property manager rank, got %d", got)
	}
	if got := HighestRank(Principal{}); got != rankUnknown {
		t.Fatalf("expected lowest rank for roleless principal, got %d", got)
	}
}

func TestDefaultPermissionsReturnsCopy(t *testing.T) {
	perms := DefaultPermissions(RoleTenant)
	if len(perms) == 0 {
		t.Fatalf("tenant should have default permissions")
	}
	perms[0] = PermSystemAdmin
	again := DefaultPermissions(RoleTenant)
	if again[0] == PermSystemAdmin {
		t.Fatalf("mutating the returned slice must not affect the registry")
	}
}

func TestSystemAdminCarriesWildcardOnly(t *testing.T) {
	perms := DefaultPermissions(RoleSystemAdmin)
	if len(perms) != 1 || perms[0] != PermAll {
		t.Fatalf("expected wildcard-only set, got %v", perms)
	}
}

func TestRoleDisplayName(t *testing.T) {
	if got := RoleDisplayName(RolePortfolioManager); got != "Portfolio Manager" {
		t.Fatalf("unexpected display name %q", got)
	}
	if got := RoleDisplayName(RoleMaintenanceSupervisor); got != "Maintenance Supervisor" {
		t.Fatalf("unexpected display name %q", got)
	}
}
