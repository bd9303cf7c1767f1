package domain

const (
	RoleAdmin = "admin"
	RoleOwner = "owner"

	PrincipalTypeUser = "USER"
)

// Principal is the authenticated actor a request runs on behalf of.
type Principal struct {
	UserID int64
	Roles  []string
}

// HasRole reports whether the principal holds the named role.
func (p Principal) HasRole(name string) bool {
	for _, r := range p.Roles {
		if r == name {
			return true
		}
	}
	return false
}

// Privileged reports whether the principal bypasses per-user scoping.
func (p Principal) Privileged() bool {
	return p.HasRole(RoleAdmin) || p.HasRole(RoleOwner)
}
