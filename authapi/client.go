// Package authapi wraps the remote authentication endpoints behind a uniform
// Go API. Every failure is normalized into an *Error carrying a FailureCode
// and a fixed user-facing message; no server error text leaks to callers.
package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/internal/utils"
	"github.com/jrsteele09/go-auth-client/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const defaultRequestTimeout = 15 * time.Second

// Remote endpoint paths.
const (
	loginPath                = "/api/auth/login"
	registerPath             = "/api/auth/register"
	verifyEmailPath          = "/api/auth/verify-email"
	resendVerificationPath   = "/api/auth/resend-verification"
	requestPasswordResetPath = "/api/auth/request-password-reset"
	refreshPath              = "/api/auth/refresh"
	logoutPath               = "/api/auth/logout"
	profilePath              = "/api/auth/profile"
	changePasswordPath       = "/api/auth/change-password"
	oauthCompletePathPrefix  = "/api/auth/oauth/"
)

var _ API = (*Client)(nil)

// Client is a stateless HTTP client for the remote authentication API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	providers  map[string]OAuthProvider
	log        zerolog.Logger
}

// Option modifies the Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client (primarily for testing).
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithLogger sets the logger used for request failures.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithOAuthProviders registers the identity providers available to StartOAuth.
func WithOAuthProviders(providers map[string]OAuthProvider) Option {
	return func(c *Client) {
		c.providers = providers
	}
}

func New(baseURL string, options ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("[authapi.New] baseURL is required")
	}

	client := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
		providers:  make(map[string]OAuthProvider),
		log:        zerolog.Nop(),
	}
	for _, opt := range options {
		opt(client)
	}
	return client, nil
}

// Login exchanges credentials for a token pair and user profile.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, loginPath, "", loginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	return resultFromAuthResponse(&resp)
}

// Register creates an account. Depending on server policy the account is
// either signed in immediately (tokens present) or left pending email
// verification.
func (c *Client) Register(ctx context.Context, registration Registration) (*AuthResult, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, registerPath, "", registration, &resp); err != nil {
		return nil, err
	}
	if resp.RequiresVerification || resp.AccessToken == "" {
		return &AuthResult{User: resp.User, PendingVerification: true, Message: resp.Message}, nil
	}
	return resultFromAuthResponse(&resp)
}

// VerifyEmail exchanges a one-time code for a token pair and user profile.
func (c *Client) VerifyEmail(ctx context.Context, email, code string) (*AuthResult, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, verifyEmailPath, "", verifyEmailRequest{Email: email, Code: code}, &resp); err != nil {
		return nil, err
	}
	return resultFromAuthResponse(&resp)
}

// ResendVerification asks the server to send a fresh verification code.
func (c *Client) ResendVerification(ctx context.Context, email string) (string, error) {
	var resp messageResponse
	if err := c.do(ctx, http.MethodPost, resendVerificationPath, "", emailRequest{Email: email}, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// RequestPasswordReset starts the password reset flow. The success message
// must not reveal whether the email exists, so the server text is surfaced
// verbatim with a guarded default.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	var resp messageResponse
	if err := c.do(ctx, http.MethodPost, requestPasswordResetPath, "", emailRequest{Email: email}, &resp); err != nil {
		return "", err
	}
	if resp.Message == "" {
		return MsgPasswordResetSent, nil
	}
	return resp.Message, nil
}

// Refresh exchanges a refresh token for a new access token. Each call is
// independent; the server may also rotate the refresh token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*credentials.Pair, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, refreshPath, "", refreshRequest{RefreshToken: refreshToken}, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, NewError(CodeServer, "refresh response missing access token")
	}
	return &credentials.Pair{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}, nil
}

// FetchProfile returns the profile of the token's user. A 401 is normalized
// to CodeTokenExpired so the session layer can attempt a refresh.
func (c *Client) FetchProfile(ctx context.Context, accessToken string) (*users.Profile, error) {
	var resp profileResponse
	if err := c.do(ctx, http.MethodGet, profilePath, accessToken, nil, &resp); err != nil {
		return nil, err
	}
	return resp.profile(), nil
}

// UpdateProfile applies a partial profile change and returns the updated
// profile.
func (c *Client) UpdateProfile(ctx context.Context, accessToken string, update ProfileUpdate) (*users.Profile, error) {
	req := profileUpdateRequest{
		FirstName: update.FirstName,
		LastName:  update.LastName,
		Bio:       update.Bio,
	}
	if update.DisplayName != nil {
		first, last := users.SplitDisplayName(utils.Value(update.DisplayName))
		req.FirstName = utils.Ptr(first)
		req.LastName = utils.Ptr(last)
	}

	var resp profileResponse
	if err := c.do(ctx, http.MethodPut, profilePath, accessToken, req, &resp); err != nil {
		return nil, err
	}
	return resp.profile(), nil
}

// ChangePassword replaces the user's password.
func (c *Client) ChangePassword(ctx context.Context, accessToken, currentPassword, newPassword string) error {
	req := changePasswordRequest{CurrentPassword: currentPassword, NewPassword: newPassword}
	return c.do(ctx, http.MethodPost, changePasswordPath, accessToken, req, &messageResponse{})
}

// Logout asks the server to invalidate the session. Callers treat this as
// best-effort; local cleanup must not depend on it succeeding.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, logoutPath, accessToken, nil, &messageResponse{})
}

// do executes one request/response cycle. Transport failures and malformed
// responses map to CodeConnection; HTTP error statuses are classified through
// the server-message adapter.
func (c *Client) do(ctx context.Context, method, path, accessToken string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		blob, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "[Client.do] encode request body")
		}
		reqBody = bytes.NewReader(blob)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return errors.Wrap(err, "[Client.do] build request")
	}
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("path", path).Msg("request transport failure")
		return NewError(CodeConnection, err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	blob, err := io.ReadAll(resp.Body)
	if err != nil {
		return NewError(CodeConnection, err.Error())
	}

	if resp.StatusCode >= 400 {
		serverMsg := decodeServerMessage(blob)
		code := classifyServerMessage(resp.StatusCode, serverMsg, accessToken != "")
		c.log.Debug().Int("status", resp.StatusCode).Str("path", path).Str("code", string(code)).Msg("request rejected")
		return NewError(code, serverMsg)
	}

	if out != nil && len(blob) > 0 {
		if err := json.Unmarshal(blob, out); err != nil {
			return NewError(CodeConnection, "malformed response: "+err.Error())
		}
	}
	return nil
}

func decodeServerMessage(blob []byte) string {
	var resp messageResponse
	if err := json.Unmarshal(blob, &resp); err != nil {
		return ""
	}
	if resp.Error != "" {
		return resp.Error
	}
	return resp.Message
}

func resultFromAuthResponse(resp *authResponse) (*AuthResult, error) {
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		return nil, NewError(CodeServer, "response missing token pair")
	}
	if resp.User == nil {
		return nil, NewError(CodeServer, "response missing user profile")
	}
	return &AuthResult{
		Tokens: &credentials.Pair{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken},
		User:   resp.User,
	}, nil
}
