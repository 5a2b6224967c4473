package domain

// AdminIdentity is the authenticated operator as reported by the backend.
type AdminIdentity struct {
	ID          string
	DisplayName string
	Email       string
	Role        Role
	Permissions PermissionSet
}

// Clone returns a deep copy so callers never share the permission map.
func (i AdminIdentity) Clone() AdminIdentity {
	out := i
	out.Permissions = i.Permissions.Clone()
	return out
}

// Complete reports whether the identity carries the fields required to hold a session.
func (i AdminIdentity) Complete() bool {
	return i.ID != "" && i.Email != "" && i.Role != ""
}
