// Package session owns the client-side authentication state machine. A
// Manager exists per UI surface; all managers share one credential store and
// one broadcast bus, and converge by re-deriving their state from the store
// whenever any of them mutates it.
package session

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
	"github.com/jrsteele09/go-auth-client/authapi"
	"github.com/jrsteele09/go-auth-client/broadcast"
	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var (
	NotAuthenticatedErr = errors.New("not authenticated")
)

// User-facing messages for inputs rejected before any network call.
const (
	MsgLoginInputInvalid    = "Please enter a valid email address and password."
	MsgRegisterInputInvalid = "Please enter a valid email address and a password of at least 8 characters."
	MsgPasswordInputInvalid = "Please enter your current password and a new password of at least 8 characters."
)

type loginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type registerInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
}

type changePasswordInput struct {
	CurrentPassword string `validate:"required"`
	NewPassword     string `validate:"required,min=8"`
}

// Manager is the session state machine for one UI surface instance.
type Manager struct {
	api      authapi.API
	creds    credentials.Repo
	bus      *broadcast.Bus
	log      zerolog.Logger
	validate *validator.Validate
	onChange func(Session)

	sub        *broadcast.Subscription
	publishing atomic.Bool // true while this instance is broadcasting

	lock    sync.Mutex
	session Session
}

// Option modifies the Manager.
type Option func(*Manager)

// WithLogger sets the manager's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(m *Manager) {
		m.log = log
	}
}

// WithOnChange registers a listener invoked with a snapshot after every
// session change. Intended for UI surfaces to re-render.
func WithOnChange(onChange func(Session)) Option {
	return func(m *Manager) {
		m.onChange = onChange
	}
}

// New creates a Manager in the Loading state and subscribes it to the bus.
// Callers should invoke CheckAuth immediately after construction to derive
// the initial state, and Close on teardown to release the subscription.
func New(api authapi.API, creds credentials.Repo, bus *broadcast.Bus, options ...Option) (*Manager, error) {
	if api == nil {
		return nil, errors.New("[session.New] api is required")
	}
	if creds == nil {
		return nil, errors.New("[session.New] credentials repo is required")
	}
	if bus == nil {
		return nil, errors.New("[session.New] broadcast bus is required")
	}

	m := &Manager{
		api:      api,
		creds:    creds,
		bus:      bus,
		log:      zerolog.Nop(),
		validate: validator.New(),
		session:  Session{Status: StatusLoading},
	}
	for _, opt := range options {
		opt(m)
	}

	m.sub = bus.Subscribe(m.handleAuthChange)
	return m, nil
}

// Close releases the bus subscription. The manager no longer reacts to
// credential changes afterwards.
func (m *Manager) Close() {
	m.sub.Unsubscribe()
}

// Session returns a snapshot of the current state.
func (m *Manager) Session() Session {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.session
}

// CheckAuth re-derives the session from the credential store: no stored
// access token means unauthenticated; otherwise the profile is fetched, with
// a single refresh-then-refetch attempt when the access token has expired.
// The session never remains Loading once CheckAuth returns.
func (m *Manager) CheckAuth(ctx context.Context) {
	previous := m.Session()
	m.update(func(s *Session) { s.Status = StatusLoading })

	pair, err := m.creds.Get()
	if err != nil {
		m.settle(StatusUnauthenticated, nil)
		return
	}

	profile, err := m.api.FetchProfile(ctx, pair.AccessToken)
	switch {
	case err == nil:
		m.settle(StatusAuthenticated, profile)
	case authapi.IsCode(err, authapi.CodeTokenExpired):
		m.refreshAndRefetch(ctx, pair, previous)
	case authapi.IsCode(err, authapi.CodeConnection):
		// Server unreachable: keep credentials and the prior state, only
		// clear the loading flag.
		m.restore(previous)
	default:
		mutated := m.clearCredentials()
		m.settle(StatusUnauthenticated, nil)
		if mutated {
			m.publish()
		}
	}
}

// refreshAndRefetch performs the single refresh-then-refetch step of
// CheckAuth. A successful refresh updates the stored pair and is followed by
// exactly one profile fetch before the session settles.
func (m *Manager) refreshAndRefetch(ctx context.Context, pair *credentials.Pair, previous Session) {
	newPair, err := m.api.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		m.log.Debug().Err(err).Msg("token refresh failed; clearing credentials")
		mutated := m.clearCredentials()
		m.settle(StatusUnauthenticated, nil)
		if mutated {
			m.publish()
		}
		return
	}

	if newPair.RefreshToken == "" { // server did not rotate the refresh token
		newPair.RefreshToken = pair.RefreshToken
	}
	if err := m.creds.Set(newPair); err != nil {
		m.log.Error().Err(err).Msg("failed to persist refreshed credentials")
		m.settle(StatusUnauthenticated, nil)
		return
	}

	profile, err := m.api.FetchProfile(ctx, newPair.AccessToken)
	switch {
	case err == nil:
		m.settle(StatusAuthenticated, profile)
	case authapi.IsCode(err, authapi.CodeConnection):
		m.restore(previous)
	default:
		m.clearCredentials()
		m.settle(StatusUnauthenticated, nil)
	}
	// The refresh mutated the credential store; broadcast exactly once.
	m.publish()
}

// Login validates the input, exchanges it for a token pair and settles
// Authenticated on success. Failures leave the credential store untouched,
// settle Unauthenticated and record the mapped message in LastError.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	if err := m.validate.Struct(loginInput{Email: email, Password: password}); err != nil {
		return m.rejectInput(MsgLoginInputInvalid, err)
	}

	m.update(func(s *Session) {
		s.Status = StatusLoading
		s.LastError = ""
	})

	result, err := m.api.Login(ctx, email, password)
	if err != nil {
		m.fail(err)
		return err
	}
	return m.signIn(result)
}

// Logout invalidates the session remotely on a best-effort basis, then
// unconditionally clears the credential store and settles Unauthenticated.
func (m *Manager) Logout(ctx context.Context) {
	if pair, err := m.creds.Get(); err == nil {
		if err := m.api.Logout(ctx, pair.AccessToken); err != nil {
			m.log.Warn().Err(err).Msg("remote logout failed; clearing local session anyway")
		}
	}

	if err := m.creds.Clear(); err != nil {
		m.log.Error().Err(err).Msg("failed to clear credentials on logout")
	}
	m.update(func(s *Session) {
		s.Status = StatusUnauthenticated
		s.User = nil
		s.LastError = ""
	})
	m.publish()
}

// Register creates an account. When the server requires email verification
// the session stays Unauthenticated and the pending account is returned to
// the caller for display.
func (m *Manager) Register(ctx context.Context, registration authapi.Registration) (*authapi.AuthResult, error) {
	input := registerInput{Email: registration.Email, Password: registration.Password}
	if err := m.validate.Struct(input); err != nil {
		return nil, m.rejectInput(MsgRegisterInputInvalid, err)
	}

	m.update(func(s *Session) {
		s.Status = StatusLoading
		s.LastError = ""
	})

	result, err := m.api.Register(ctx, registration)
	if err != nil {
		m.fail(err)
		return nil, err
	}
	if result.PendingVerification {
		m.settle(StatusUnauthenticated, nil)
		return result, nil
	}
	if err := m.signIn(result); err != nil {
		return nil, err
	}
	return result, nil
}

// VerifyEmail exchanges a one-time code for a signed-in session.
func (m *Manager) VerifyEmail(ctx context.Context, email, code string) error {
	m.update(func(s *Session) {
		s.Status = StatusLoading
		s.LastError = ""
	})

	result, err := m.api.VerifyEmail(ctx, email, code)
	if err != nil {
		m.fail(err)
		return err
	}
	return m.signIn(result)
}

// ResendVerification asks the server for a fresh verification code.
func (m *Manager) ResendVerification(ctx context.Context, email string) (string, error) {
	return m.api.ResendVerification(ctx, email)
}

// RequestPasswordReset starts the reset flow. The returned message never
// reveals whether the email exists.
func (m *Manager) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	return m.api.RequestPasswordReset(ctx, email)
}

// UpdateProfile applies a partial profile change for the signed-in user and
// refreshes the in-memory snapshot. Other instances keep their snapshot until
// their next CheckAuth; only credential mutations are broadcast.
func (m *Manager) UpdateProfile(ctx context.Context, update authapi.ProfileUpdate) (*users.Profile, error) {
	pair, err := m.creds.Get()
	if err != nil {
		return nil, NotAuthenticatedErr
	}

	profile, err := m.api.UpdateProfile(ctx, pair.AccessToken, update)
	if err != nil {
		m.update(func(s *Session) { s.LastError = authapi.UserMessage(err) })
		return nil, err
	}
	m.update(func(s *Session) {
		if s.Status == StatusAuthenticated {
			s.User = profile
		}
		s.LastError = ""
	})
	return profile, nil
}

// ChangePassword replaces the signed-in user's password.
func (m *Manager) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	input := changePasswordInput{CurrentPassword: currentPassword, NewPassword: newPassword}
	if err := m.validate.Struct(input); err != nil {
		return m.rejectInput(MsgPasswordInputInvalid, err)
	}

	pair, err := m.creds.Get()
	if err != nil {
		return NotAuthenticatedErr
	}

	if err := m.api.ChangePassword(ctx, pair.AccessToken, currentPassword, newPassword); err != nil {
		m.update(func(s *Session) { s.LastError = authapi.UserMessage(err) })
		return err
	}
	m.update(func(s *Session) { s.LastError = "" })
	return nil
}

// StartOAuth returns the provider's authorization redirect URL.
func (m *Manager) StartOAuth(provider string) (string, error) {
	return m.api.StartOAuth(provider)
}

// CompleteOAuth exchanges the provider callback code for a signed-in session.
func (m *Manager) CompleteOAuth(ctx context.Context, provider, code string) error {
	m.update(func(s *Session) {
		s.Status = StatusLoading
		s.LastError = ""
	})

	result, err := m.api.CompleteOAuth(ctx, provider, code)
	if err != nil {
		m.fail(err)
		return err
	}
	return m.signIn(result)
}

// signIn persists the token pair, settles Authenticated and broadcasts the
// credential mutation.
func (m *Manager) signIn(result *authapi.AuthResult) error {
	if err := m.creds.Set(result.Tokens); err != nil {
		wrapped := errors.Wrap(err, "[Manager.signIn] failed to persist credentials")
		m.update(func(s *Session) {
			s.Status = StatusUnauthenticated
			s.User = nil
			s.LastError = authapi.MsgGenericFailure
		})
		return wrapped
	}

	m.update(func(s *Session) {
		s.Status = StatusAuthenticated
		s.User = result.User
		s.LastError = ""
	})
	m.log.Debug().Msg("session authenticated")
	m.publish()
	return nil
}

// fail settles Unauthenticated with the mapped user-facing message. No
// broadcast: the credential store was not mutated.
func (m *Manager) fail(err error) {
	m.update(func(s *Session) {
		s.Status = StatusUnauthenticated
		s.User = nil
		s.LastError = authapi.UserMessage(err)
	})
}

// rejectInput records a validation failure without touching the network or
// the credential store.
func (m *Manager) rejectInput(message string, cause error) error {
	m.update(func(s *Session) {
		if s.Status == StatusLoading {
			s.Status = StatusUnauthenticated
		}
		s.LastError = message
	})
	return &authapi.Error{Code: authapi.CodeValidation, Message: message, Detail: cause.Error()}
}

func (m *Manager) handleAuthChange(broadcast.Event) {
	if m.publishing.Load() {
		return // our own broadcast; state is already current
	}
	m.CheckAuth(context.Background())
}

// publish broadcasts one auth change event. Dispatch is synchronous, so every
// other live manager has re-derived its state by the time publish returns.
func (m *Manager) publish() {
	m.publishing.Store(true)
	defer m.publishing.Store(false)
	m.bus.Publish(broadcast.Event{})
}

// clearCredentials removes stored credentials, reporting whether anything was
// actually cleared so callers can decide on broadcasting.
func (m *Manager) clearCredentials() bool {
	if _, err := m.creds.Get(); err != nil {
		return false
	}
	if err := m.creds.Clear(); err != nil {
		m.log.Error().Err(err).Msg("failed to clear credentials")
	}
	return true
}

func (m *Manager) settle(status Status, user *users.Profile) {
	m.update(func(s *Session) {
		s.Status = status
		s.User = user
	})
}

// restore reinstates the pre-check snapshot after a connectivity failure. A
// session that was still Loading settles Unauthenticated; credentials remain
// stored for the next check.
func (m *Manager) restore(previous Session) {
	m.update(func(s *Session) {
		if previous.Status == StatusAuthenticated {
			s.Status = StatusAuthenticated
			s.User = previous.User
		} else {
			s.Status = StatusUnauthenticated
			s.User = nil
		}
		s.LastError = authapi.MsgConnection
	})
}

// update applies a mutation under the lock and notifies the change listener
// with the resulting snapshot.
func (m *Manager) update(mutate func(*Session)) {
	m.lock.Lock()
	mutate(&m.session)
	snapshot := m.session
	m.lock.Unlock()

	if m.onChange != nil {
		m.onChange(snapshot)
	}
}
