package constants

// Registry roles. A user has exactly one immutable role, issued by the
// identity provider at signup.
const (
	RoleProjectManager = "project_manager"
	RoleNCCRVerifier   = "nccr_verifier"
	RoleBuyer          = "buyer"
)

// ValidRoles is the set of allowed role values accepted at signup.
var ValidRoles = []string{RoleProjectManager, RoleNCCRVerifier, RoleBuyer}

// IsValidRole returns true if role is one of the allowed values.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
