package credentials

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// TokenInfo is metadata decoded from a stored access token. The claims are
// read without signature verification and are for display and logging only;
// they are never an authentication signal.
type TokenInfo struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token's exp claim is in the past. Tokens
// without an exp claim are never reported as expired.
func (ti *TokenInfo) Expired(now time.Time) bool {
	return !ti.ExpiresAt.IsZero() && ti.ExpiresAt.Before(now)
}

// Inspect decodes the claims of an access token without verifying its
// signature. The server remains the authority on token validity.
func Inspect(accessToken string) (*TokenInfo, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return nil, errors.Wrap(err, "[Inspect] failed to decode access token")
	}

	info := &TokenInfo{}
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		info.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	return info, nil
}
