package usecase

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/domain"
)

var (
	// ErrUnknownPermission indicates a permission identifier outside the catalog.
	ErrUnknownPermission = errors.New("unknown permission")
	// ErrUnknownRole indicates a role outside the supported set.
	ErrUnknownRole = errors.New("unknown role")
)

// permissionCatalog is the closed set of permissions in presentation order.
var permissionCatalog = []domain.Permission{
	{ID: domain.PermUserManagement, Label: "User Management", Category: domain.CategoryUser},
	{ID: domain.PermAdminManagement, Label: "Admin Management", Category: domain.CategoryUser},
	{ID: domain.PermContentModeration, Label: "Content Moderation", Category: domain.CategoryContent},
	{ID: domain.PermServiceApproval, Label: "Service Approval", Category: domain.CategoryContent},
	{ID: domain.PermPaymentManagement, Label: "Payment Management", Category: domain.CategoryFinancial},
	{ID: domain.PermRefundProcessing, Label: "Refund Processing", Category: domain.CategoryFinancial},
	{ID: domain.PermAnalyticsAccess, Label: "Analytics Access", Category: domain.CategoryAnalytics},
	{ID: domain.PermReportGeneration, Label: "Report Generation", Category: domain.CategoryAnalytics},
	{ID: domain.PermSystemConfiguration, Label: "System Configuration", Category: domain.CategorySystem},
	{ID: domain.PermEmailManagement, Label: "Email Management", Category: domain.CategorySystem},
	{ID: domain.PermKYCVerification, Label: "KYC Verification", Category: domain.CategoryKYC},
	{ID: domain.PermKYCApproval, Label: "KYC Approval", Category: domain.CategoryKYC},
}

// roleDefaults holds the suggested permissions per role. SuperAdmin is resolved to the full catalog.
var roleDefaults = map[domain.Role][]domain.PermissionID{
	domain.RoleAdmin: {
		domain.PermUserManagement,
		domain.PermContentModeration,
		domain.PermServiceApproval,
		domain.PermPaymentManagement,
		domain.PermAnalyticsAccess,
		domain.PermReportGeneration,
		domain.PermEmailManagement,
		domain.PermKYCVerification,
		domain.PermKYCApproval,
	},
	domain.RoleModerator: {
		domain.PermContentModeration,
		domain.PermServiceApproval,
		domain.PermKYCVerification,
		domain.PermAnalyticsAccess,
	},
	domain.RoleSupport: {
		domain.PermUserManagement,
		domain.PermEmailManagement,
		domain.PermKYCVerification,
	},
}

// PermissionEngine answers capability checks against the static catalog.
// It holds no mutable state and is safe for concurrent use.
type PermissionEngine struct {
	byID     map[domain.PermissionID]domain.Permission
	defaults map[domain.Role]domain.PermissionSet
	full     domain.PermissionSet
}

// NewPermissionEngine loads the catalog and role defaults.
func NewPermissionEngine() *PermissionEngine {
	byID := make(map[domain.PermissionID]domain.Permission, len(permissionCatalog))
	full := make(domain.PermissionSet, len(permissionCatalog))
	for _, perm := range permissionCatalog {
		byID[perm.ID] = perm
		full[perm.ID] = struct{}{}
	}

	defaults := make(map[domain.Role]domain.PermissionSet, len(domain.Roles))
	for _, role := range domain.Roles {
		if role == domain.RoleSuperAdmin {
			defaults[role] = full.Clone()
			continue
		}
		defaults[role] = domain.NewPermissionSet(roleDefaults[role]...)
	}

	return &PermissionEngine{byID: byID, defaults: defaults, full: full}
}

// HasPermission reports whether the identity holds the permission. A nil identity holds nothing.
func (e *PermissionEngine) HasPermission(identity *domain.AdminIdentity, permission domain.PermissionID) bool {
	if identity == nil {
		return false
	}
	return identity.Permissions.Has(permission)
}

// ResolveDefaults returns the suggested permission set for a role.
// The returned set is a copy; unknown roles resolve to an empty set.
func (e *PermissionEngine) ResolveDefaults(role domain.Role) domain.PermissionSet {
	defaults, ok := e.defaults[role]
	if !ok {
		return domain.PermissionSet{}
	}
	return defaults.Clone()
}

// Catalog returns every permission in presentation order.
func (e *PermissionEngine) Catalog() []domain.Permission {
	out := make([]domain.Permission, len(permissionCatalog))
	copy(out, permissionCatalog)
	return out
}

// FullCatalog returns the set of every known permission.
func (e *PermissionEngine) FullCatalog() domain.PermissionSet {
	return e.full.Clone()
}

// Grouped returns catalog entries keyed by category.
func (e *PermissionEngine) Grouped() map[domain.PermissionCategory][]domain.Permission {
	grouped := make(map[domain.PermissionCategory][]domain.Permission, len(domain.Categories))
	for _, perm := range permissionCatalog {
		grouped[perm.Category] = append(grouped[perm.Category], perm)
	}
	return grouped
}

// Lookup returns the catalog entry for an identifier.
func (e *PermissionEngine) Lookup(id domain.PermissionID) (domain.Permission, bool) {
	perm, ok := e.byID[id]
	return perm, ok
}

// ParsePermission resolves a wire string to a catalog identifier.
func (e *PermissionEngine) ParsePermission(value string) (domain.PermissionID, error) {
	id := domain.PermissionID(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := e.byID[id]; !ok {
		return "", fmt.Errorf("%q: %w", value, ErrUnknownPermission)
	}
	return id, nil
}

// Validate ensures every identifier belongs to the catalog and returns them as a set.
func (e *PermissionEngine) Validate(ids []domain.PermissionID) (domain.PermissionSet, error) {
	set := make(domain.PermissionSet, len(ids))
	for _, id := range ids {
		if _, ok := e.byID[id]; !ok {
			return nil, fmt.Errorf("%q: %w", id, ErrUnknownPermission)
		}
		set[id] = struct{}{}
	}
	return set, nil
}
