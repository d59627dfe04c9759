package users

import "strings"

// RoleType represents the role reported by the remote API for a user.
type RoleType string

const (
	RoleUser      RoleType = "USER"
	RoleModerator RoleType = "MODERATOR"
	RoleAdmin     RoleType = "ADMIN"
)

// Profile is the in-memory snapshot of the signed-in user returned by the
// remote API. It is never persisted; a reload of the client re-fetches it.
type Profile struct {
	ID        string   `json:"id,omitempty"`         // Unique identifier for the user
	Email     string   `json:"email,omitempty"`      // User's email address
	FirstName string   `json:"first_name,omitempty"` // First name of the user
	LastName  string   `json:"last_name,omitempty"`  // Last name of the user
	Bio       string   `json:"bio,omitempty"`        // Optional short bio
	IsAdmin   bool     `json:"is_admin,omitempty"`   // IsAdmin, whether the user has admin privileges
	Role      RoleType `json:"role,omitempty"`       // Role reported by the server
}

// DisplayName joins the first and last name, skipping empty parts.
func (p *Profile) DisplayName() string {
	switch {
	case p.FirstName != "" && p.LastName != "":
		return p.FirstName + " " + p.LastName
	case p.FirstName != "":
		return p.FirstName
	default:
		return p.LastName
	}
}

// HasAdminAccess returns true if the server flagged the user as an admin,
// either via the is_admin flag or the role field.
func (p *Profile) HasAdminAccess() bool {
	return p.IsAdmin || p.Role == RoleAdmin
}

// SplitDisplayName splits a display name on the first run of whitespace.
// "Jane Doe" becomes ("Jane", "Doe"), "Jane" becomes ("Jane", "") and
// "Jane van Doe" becomes ("Jane", "van Doe").
func SplitDisplayName(name string) (firstName, lastName string) {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}
