package authapi

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// OAuthProvider describes an upstream identity provider the client can start
// an authorization redirect against. Only the redirect is handled here; the
// provider handshake itself belongs to the remote API.
type OAuthProvider struct {
	Name        string
	ClientID    string
	AuthURL     string
	RedirectURL string
	Scopes      []string
}

// StartOAuth builds the provider's authorization redirect URL with a fresh
// state value. The resulting callback code is handed to CompleteOAuth.
func (c *Client) StartOAuth(provider string) (string, error) {
	p, ok := c.providers[provider]
	if !ok {
		return "", errors.Errorf("[Client.StartOAuth] unknown provider %q", provider)
	}

	conf := &oauth2.Config{
		ClientID:    p.ClientID,
		RedirectURL: p.RedirectURL,
		Scopes:      p.Scopes,
		Endpoint:    oauth2.Endpoint{AuthURL: p.AuthURL},
	}
	return conf.AuthCodeURL(uuid.New().String(), oauth2.AccessTypeOffline), nil
}

// CompleteOAuth exchanges the provider callback code at the remote API for a
// token pair and user profile. The code-for-token exchange with the provider
// happens server-side.
func (c *Client) CompleteOAuth(ctx context.Context, provider, code string) (*AuthResult, error) {
	p, ok := c.providers[provider]
	if !ok {
		return nil, errors.Errorf("[Client.CompleteOAuth] unknown provider %q", provider)
	}

	req := oauthCompleteRequest{Code: code, RedirectURI: p.RedirectURL}
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, oauthCompletePathPrefix+provider+"/complete", "", req, &resp); err != nil {
		return nil, err
	}
	return resultFromAuthResponse(&resp)
}
