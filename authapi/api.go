package authapi

import (
	"context"

	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/users"
)

// API is the contract the session layer consumes. Calls taking an accessToken
// borrow it for the duration of the call only; credential ownership stays
// with the credential store.
type API interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Register(ctx context.Context, registration Registration) (*AuthResult, error)
	VerifyEmail(ctx context.Context, email, code string) (*AuthResult, error)
	ResendVerification(ctx context.Context, email string) (string, error)
	RequestPasswordReset(ctx context.Context, email string) (string, error)

	// Refresh exchanges a refresh token for a new access token. The returned
	// pair's RefreshToken is empty when the server did not rotate it.
	Refresh(ctx context.Context, refreshToken string) (*credentials.Pair, error)

	FetchProfile(ctx context.Context, accessToken string) (*users.Profile, error)
	UpdateProfile(ctx context.Context, accessToken string, update ProfileUpdate) (*users.Profile, error)
	ChangePassword(ctx context.Context, accessToken, currentPassword, newPassword string) error
	Logout(ctx context.Context, accessToken string) error

	StartOAuth(provider string) (string, error)
	CompleteOAuth(ctx context.Context, provider, code string) (*AuthResult, error)
}
