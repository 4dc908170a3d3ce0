package authz

import "testing"

func TestCatalogEntriesAreComplete(t *testing.T) {
	for _, p := range Permissions() {
		if !Known(p) {
			t.Fatalf("permission %s missing from catalog", p)
		}
		if Describe(p) == "" {
			t.Fatalf("permission %s has no description", p)
		}
		if CategoryOf(p) == "" {
			t.Fatalf("permission %s has no category", p)
		}
	}
}

func TestWildcardIsNotACatalogEntry(t *testing.T) {
	if Known(PermAll) {
		t.Fatalf("wildcard must not appear in the catalog")
	}
}

func TestRoleDefaultsDrawFromCatalog(t *testing.T) {
	for _, role := range Roles() {
		for _, p := range DefaultPermissions(role) {
			if p == PermAll {
				continue
			}
			if !Known(p) {
				t.Fatalf("role %s grants unknown permission %s", role, p)
			}
		}
	}
}

func TestPermissionsInCategory(t *testing.T) {
	perms := PermissionsInCategory(CategoryFinancial)
	if len(perms) != 3 {
		t.Fatalf("expected three financial permissions, got %v", perms)
	}
	for _, p := range perms {
		if CategoryOf(p) != CategoryFinancial {
			t.Fatalf("permission %s reported wrong category", p)
		}
	}
}

func TestCategoryDisplayName(t *testing.T) {
	if got := CategoryDisplayName(CategoryUserMgmt); got != "User Management" {
		t.Fatalf("unexpected display name %q", got)
	}
}
