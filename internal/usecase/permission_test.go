package usecase

import (
	"errors"
	"testing"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/domain"
)

func TestResolveDefaultsIsDeterministicSubsetOfCatalog(t *testing.T) {
	engine := NewPermissionEngine()
	full := engine.FullCatalog()

	for _, role := range domain.Roles {
		first := engine.ResolveDefaults(role)
		second := engine.ResolveDefaults(role)
		if len(first) == 0 {
			t.Fatalf("expected non-empty defaults for %s", role)
		}
		if !first.Equal(second) {
			t.Fatalf("defaults for %s differ between calls: %v vs %v", role, first.Strings(), second.Strings())
		}
		for id := range first {
			if !full.Has(id) {
				t.Fatalf("default %s for %s is outside the catalog", id, role)
			}
		}
	}
}

func TestResolveDefaultsSuperAdminIsFullCatalog(t *testing.T) {
	engine := NewPermissionEngine()
	got := engine.ResolveDefaults(domain.RoleSuperAdmin)
	if !got.Equal(engine.FullCatalog()) {
		t.Fatalf("expected full catalog, got %v", got.Strings())
	}
	if len(got) != 12 {
		t.Fatalf("expected 12 permissions, got %d", len(got))
	}
}

func TestResolveDefaultsReturnsCopy(t *testing.T) {
	engine := NewPermissionEngine()
	defaults := engine.ResolveDefaults(domain.RoleSupport)
	defaults[domain.PermSystemConfiguration] = struct{}{}

	if engine.ResolveDefaults(domain.RoleSupport).Has(domain.PermSystemConfiguration) {
		t.Fatal("mutating returned defaults must not affect the engine")
	}
}

func TestResolveDefaultsUnknownRole(t *testing.T) {
	engine := NewPermissionEngine()
	if got := engine.ResolveDefaults(domain.Role("owner")); len(got) != 0 {
		t.Fatalf("expected empty set for unknown role, got %v", got.Strings())
	}
}

func TestHasPermissionMatchesMembership(t *testing.T) {
	engine := NewPermissionEngine()
	identity := testIdentity(domain.RoleModerator, domain.PermContentModeration, domain.PermKYCVerification)

	for _, perm := range engine.Catalog() {
		want := identity.Permissions.Has(perm.ID)
		if got := engine.HasPermission(&identity, perm.ID); got != want {
			t.Fatalf("HasPermission(%s) = %v, want %v", perm.ID, got, want)
		}
	}
}

func TestHasPermissionNilIdentity(t *testing.T) {
	engine := NewPermissionEngine()
	for _, perm := range engine.Catalog() {
		if engine.HasPermission(nil, perm.ID) {
			t.Fatalf("nil identity must not hold %s", perm.ID)
		}
	}
}

func TestHasPermissionIgnoresRole(t *testing.T) {
	engine := NewPermissionEngine()
	identity := testIdentity(domain.RoleSuperAdmin, domain.PermUserManagement)
	if engine.HasPermission(&identity, domain.PermSystemConfiguration) {
		t.Fatal("role must not imply permissions beyond the granted set")
	}
}

func TestGroupedCoversCatalog(t *testing.T) {
	engine := NewPermissionEngine()
	grouped := engine.Grouped()

	total := 0
	for _, category := range domain.Categories {
		entries := grouped[category]
		if len(entries) == 0 {
			t.Fatalf("category %s has no entries", category)
		}
		for _, entry := range entries {
			if entry.Category != category {
				t.Fatalf("entry %s grouped under %s but belongs to %s", entry.ID, category, entry.Category)
			}
		}
		total += len(entries)
	}
	if total != len(engine.Catalog()) {
		t.Fatalf("grouped %d entries, catalog has %d", total, len(engine.Catalog()))
	}
}

func TestParseAndValidatePermissions(t *testing.T) {
	engine := NewPermissionEngine()

	id, err := engine.ParsePermission(" KYC_Approval ")
	if err != nil || id != domain.PermKYCApproval {
		t.Fatalf("unexpected parse result %q, %v", id, err)
	}
	if _, err := engine.ParsePermission("root_access"); !errors.Is(err, ErrUnknownPermission) {
		t.Fatalf("expected ErrUnknownPermission, got %v", err)
	}

	set, err := engine.Validate([]domain.PermissionID{domain.PermUserManagement, domain.PermUserManagement})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(set) != 1 {
		t.Fatalf("expected duplicates collapsed, got %v", set.Strings())
	}
	if _, err := engine.Validate([]domain.PermissionID{"nope"}); !errors.Is(err, ErrUnknownPermission) {
		t.Fatalf("expected ErrUnknownPermission, got %v", err)
	}
}
