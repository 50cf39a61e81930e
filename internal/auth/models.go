package auth

// Principal is the identity resolved from a session token by the external
// authentication service. The zero value is the anonymous caller.
type Principal struct {
	UserID string   `json:"user_id"`
	Roles  []string `json:"roles"`
}

// AdminRole marks callers allowed to delete any artifact.
const AdminRole = "admin"

// Authenticated reports whether the principal carries a resolved identity.
func (p Principal) Authenticated() bool {
	return p.UserID != ""
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	for _, role := range p.Roles {
		if role == AdminRole {
			return true
		}
	}
	return false
}
