package credentials_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/stretchr/testify/require"
)

func signedTestToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestInspect(t *testing.T) {
	issued := time.Now().Add(-time.Minute).Truncate(time.Second)
	expires := time.Now().Add(time.Hour).Truncate(time.Second)

	token := signedTestToken(t, jwt.MapClaims{
		"sub": "user-1",
		"iat": issued.Unix(),
		"exp": expires.Unix(),
	})

	info, err := credentials.Inspect(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", info.Subject)
	require.Equal(t, issued.Unix(), info.IssuedAt.Unix())
	require.Equal(t, expires.Unix(), info.ExpiresAt.Unix())
	require.False(t, info.Expired(time.Now()))
	require.True(t, info.Expired(expires.Add(time.Second)))
}

func TestInspectWithoutExpiry(t *testing.T) {
	token := signedTestToken(t, jwt.MapClaims{"sub": "user-1"})

	info, err := credentials.Inspect(token)
	require.NoError(t, err)
	require.True(t, info.ExpiresAt.IsZero())
	require.False(t, info.Expired(time.Now()))
}

func TestInspectGarbage(t *testing.T) {
	_, err := credentials.Inspect("not-a-jwt")
	require.Error(t, err)
}
