package authapi

import (
	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/users"
)

// Registration is the input for creating a new account.
type Registration struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// ProfileUpdate describes a partial profile change. Either DisplayName or the
// explicit fields may be set; a DisplayName is split on the first run of
// whitespace into first and last name.
type ProfileUpdate struct {
	DisplayName *string
	FirstName   *string
	LastName    *string
	Bio         *string
}

// AuthResult is the outcome of login, registration, email verification and
// OAuth completion. Tokens is nil when the account still requires email
// verification; in that case User holds the pending account for the caller to
// display, not to treat as signed in.
type AuthResult struct {
	Tokens              *credentials.Pair
	User                *users.Profile
	PendingVerification bool
	Message             string
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyEmailRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type profileUpdateRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Bio       *string `json:"bio,omitempty"`
}

type oauthCompleteRequest struct {
	Code        string `json:"code"`
	RedirectURI string `json:"redirect_uri,omitempty"`
}

// authResponse covers login, register, verify-email, refresh and OAuth
// completion. The legacy API reuses one shape with optional fields.
type authResponse struct {
	AccessToken          string         `json:"access_token"`
	RefreshToken         string         `json:"refresh_token"`
	User                 *users.Profile `json:"user"`
	Message              string         `json:"message"`
	RequiresVerification bool           `json:"requires_verification"`
}

// profileResponse handles both {"user": {...}} and a bare user object.
type profileResponse struct {
	User *users.Profile `json:"user"`
	users.Profile
}

func (pr *profileResponse) profile() *users.Profile {
	if pr.User != nil {
		return pr.User
	}
	profile := pr.Profile
	return &profile
}

type messageResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}
