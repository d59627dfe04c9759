// Package guard decides what a UI surface may render for a given session and
// required privilege. The decision is a pure function of its inputs: no
// caching, no retries, recomputed on every session change.
package guard

import "github.com/jrsteele09/go-auth-client/session"

// Privilege is the access level a resource requires.
type Privilege int

const (
	PrivilegeUser Privilege = iota // any signed-in user
	PrivilegeAdmin
)

// Decision tells the surface what to render.
type Decision int

const (
	RenderContent Decision = iota
	RenderLoading
	RenderLogin
	RenderDenied
)

func (d Decision) String() string {
	switch d {
	case RenderContent:
		return "content"
	case RenderLoading:
		return "loading"
	case RenderLogin:
		return "login"
	case RenderDenied:
		return "denied"
	default:
		return "unknown"
	}
}

// Decide gates a resource by session status and required privilege.
func Decide(s session.Session, required Privilege) Decision {
	switch s.Status {
	case session.StatusLoading:
		return RenderLoading
	case session.StatusUnauthenticated:
		return RenderLogin
	}

	if required == PrivilegeAdmin && (s.User == nil || !s.User.HasAdminAccess()) {
		return RenderDenied
	}
	return RenderContent
}
