package domain

import (
	"sort"
	"strings"
)

// Role enumerates the administrative roles an operator can hold.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleModerator  Role = "moderator"
	RoleSupport    Role = "support"
)

// Roles lists every known role from most to least privileged.
var Roles = []Role{RoleSuperAdmin, RoleAdmin, RoleModerator, RoleSupport}

// ParseRole normalises textual input into a known role.
func ParseRole(value string) (Role, bool) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	if normalized == "superadmin" {
		normalized = string(RoleSuperAdmin)
	}
	for _, role := range Roles {
		if string(role) == normalized {
			return role, true
		}
	}
	return "", false
}

// PermissionID identifies a capability from the closed permission catalog.
type PermissionID string

const (
	PermUserManagement      PermissionID = "user_management"
	PermAdminManagement     PermissionID = "admin_management"
	PermContentModeration   PermissionID = "content_moderation"
	PermServiceApproval     PermissionID = "service_approval"
	PermPaymentManagement   PermissionID = "payment_management"
	PermRefundProcessing    PermissionID = "refund_processing"
	PermAnalyticsAccess     PermissionID = "analytics_access"
	PermReportGeneration    PermissionID = "report_generation"
	PermSystemConfiguration PermissionID = "system_configuration"
	PermEmailManagement     PermissionID = "email_management"
	PermKYCVerification     PermissionID = "kyc_verification"
	PermKYCApproval         PermissionID = "kyc_approval"
)

// PermissionCategory groups permissions for presentation. It carries no authorization meaning.
type PermissionCategory string

const (
	CategoryUser      PermissionCategory = "user"
	CategoryContent   PermissionCategory = "content"
	CategoryFinancial PermissionCategory = "financial"
	CategoryAnalytics PermissionCategory = "analytics"
	CategorySystem    PermissionCategory = "system"
	CategoryKYC       PermissionCategory = "kyc"
)

// Categories lists permission categories in presentation order.
var Categories = []PermissionCategory{
	CategoryUser,
	CategoryContent,
	CategoryFinancial,
	CategoryAnalytics,
	CategorySystem,
	CategoryKYC,
}

// Permission describes a catalog entry.
type Permission struct {
	ID       PermissionID
	Label    string
	Category PermissionCategory
}

// PermissionSet is an unordered set of permission identifiers.
type PermissionSet map[PermissionID]struct{}

// NewPermissionSet builds a set from the supplied identifiers, dropping duplicates.
func NewPermissionSet(ids ...PermissionID) PermissionSet {
	set := make(PermissionSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Has reports membership. A nil set contains nothing.
func (s PermissionSet) Has(id PermissionID) bool {
	if s == nil {
		return false
	}
	_, ok := s[id]
	return ok
}

// Clone returns an independent copy of the set.
func (s PermissionSet) Clone() PermissionSet {
	out := make(PermissionSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// Equal reports whether both sets contain exactly the same identifiers.
func (s PermissionSet) Equal(other PermissionSet) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if _, ok := other[id]; !ok {
			return false
		}
	}
	return true
}

// Sorted returns the identifiers in lexical order, useful for stable output.
func (s PermissionSet) Sorted() []PermissionID {
	out := make([]PermissionID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Strings returns the sorted identifiers as plain strings.
func (s PermissionSet) Strings() []string {
	sorted := s.Sorted()
	out := make([]string, len(sorted))
	for i, id := range sorted {
		out[i] = string(id)
	}
	return out
}
