// Package apifake provides a scripted, in-memory implementation of
// authapi.API for session tests. Each call delegates to an optional function
// field and records an invocation count; unscripted calls fail loudly.
package apifake

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-auth-client/authapi"
	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/users"
	"github.com/pkg/errors"
)

var _ authapi.API = (*FakeAuthAPI)(nil)

// FakeAuthAPI is a scripted fake of the remote authentication API.
type FakeAuthAPI struct {
	lock sync.Mutex

	LoginFn                func(email, password string) (*authapi.AuthResult, error)
	RegisterFn             func(registration authapi.Registration) (*authapi.AuthResult, error)
	VerifyEmailFn          func(email, code string) (*authapi.AuthResult, error)
	ResendVerificationFn   func(email string) (string, error)
	RequestPasswordResetFn func(email string) (string, error)
	RefreshFn              func(refreshToken string) (*credentials.Pair, error)
	FetchProfileFn         func(accessToken string) (*users.Profile, error)
	UpdateProfileFn        func(accessToken string, update authapi.ProfileUpdate) (*users.Profile, error)
	ChangePasswordFn       func(accessToken, currentPassword, newPassword string) error
	LogoutFn               func(accessToken string) error
	StartOAuthFn           func(provider string) (string, error)
	CompleteOAuthFn        func(provider, code string) (*authapi.AuthResult, error)

	LoginCalls        int
	RefreshCalls      int
	FetchProfileCalls int
	LogoutCalls       int
}

func NewFakeAuthAPI() *FakeAuthAPI {
	return &FakeAuthAPI{}
}

func (f *FakeAuthAPI) Login(_ context.Context, email, password string) (*authapi.AuthResult, error) {
	f.lock.Lock()
	f.LoginCalls++
	fn := f.LoginFn
	f.lock.Unlock()

	if fn == nil {
		return nil, errors.New("unscripted Login call")
	}
	return fn(email, password)
}

func (f *FakeAuthAPI) Register(_ context.Context, registration authapi.Registration) (*authapi.AuthResult, error) {
	if f.RegisterFn == nil {
		return nil, errors.New("unscripted Register call")
	}
	return f.RegisterFn(registration)
}

func (f *FakeAuthAPI) VerifyEmail(_ context.Context, email, code string) (*authapi.AuthResult, error) {
	if f.VerifyEmailFn == nil {
		return nil, errors.New("unscripted VerifyEmail call")
	}
	return f.VerifyEmailFn(email, code)
}

func (f *FakeAuthAPI) ResendVerification(_ context.Context, email string) (string, error) {
	if f.ResendVerificationFn == nil {
		return "", errors.New("unscripted ResendVerification call")
	}
	return f.ResendVerificationFn(email)
}

func (f *FakeAuthAPI) RequestPasswordReset(_ context.Context, email string) (string, error) {
	if f.RequestPasswordResetFn == nil {
		return "", errors.New("unscripted RequestPasswordReset call")
	}
	return f.RequestPasswordResetFn(email)
}

func (f *FakeAuthAPI) Refresh(_ context.Context, refreshToken string) (*credentials.Pair, error) {
	f.lock.Lock()
	f.RefreshCalls++
	fn := f.RefreshFn
	f.lock.Unlock()

	if fn == nil {
		return nil, errors.New("unscripted Refresh call")
	}
	return fn(refreshToken)
}

func (f *FakeAuthAPI) FetchProfile(_ context.Context, accessToken string) (*users.Profile, error) {
	f.lock.Lock()
	f.FetchProfileCalls++
	fn := f.FetchProfileFn
	f.lock.Unlock()

	if fn == nil {
		return nil, errors.New("unscripted FetchProfile call")
	}
	return fn(accessToken)
}

func (f *FakeAuthAPI) UpdateProfile(_ context.Context, accessToken string, update authapi.ProfileUpdate) (*users.Profile, error) {
	if f.UpdateProfileFn == nil {
		return nil, errors.New("unscripted UpdateProfile call")
	}
	return f.UpdateProfileFn(accessToken, update)
}

func (f *FakeAuthAPI) ChangePassword(_ context.Context, accessToken, currentPassword, newPassword string) error {
	if f.ChangePasswordFn == nil {
		return errors.New("unscripted ChangePassword call")
	}
	return f.ChangePasswordFn(accessToken, currentPassword, newPassword)
}

func (f *FakeAuthAPI) Logout(_ context.Context, accessToken string) error {
	f.lock.Lock()
	f.LogoutCalls++
	fn := f.LogoutFn
	f.lock.Unlock()

	if fn == nil {
		return errors.New("unscripted Logout call")
	}
	return fn(accessToken)
}

func (f *FakeAuthAPI) StartOAuth(provider string) (string, error) {
	if f.StartOAuthFn == nil {
		return "", errors.New("unscripted StartOAuth call")
	}
	return f.StartOAuthFn(provider)
}

func (f *FakeAuthAPI) CompleteOAuth(_ context.Context, provider, code string) (*authapi.AuthResult, error) {
	if f.CompleteOAuthFn == nil {
		return nil, errors.New("unscripted CompleteOAuth call")
	}
	return f.CompleteOAuthFn(provider, code)
}
