package session

import "github.com/jrsteele09/go-auth-client/users"

// Status is the logical authentication state of one UI surface instance.
type Status string

const (
	StatusUnauthenticated Status = "unauthenticated"
	StatusLoading         Status = "loading"
	StatusAuthenticated   Status = "authenticated"
)

// Session is a point-in-time snapshot of the auth state. Invariants:
// StatusAuthenticated implies User != nil, StatusUnauthenticated implies
// User == nil. Snapshots are values; mutating one never affects the Manager.
type Session struct {
	Status    Status
	User      *users.Profile
	LastError string
}

// Authenticated reports whether the session holds a signed-in user.
func (s Session) Authenticated() bool {
	return s.Status == StatusAuthenticated
}
