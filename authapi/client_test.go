package authapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/go-auth-client/authapi"
	"github.com/jrsteele09/go-auth-client/internal/utils"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *authapi.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := authapi.New(server.URL)
	require.NoError(t, err)
	return client
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func TestLoginSuccess(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/auth/login", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "jane@example.com", req["email"])

		writeJSON(t, w, http.StatusOK, map[string]any{
			"access_token":  "access-1",
			"refresh_token": "refresh-1",
			"user": map[string]any{
				"id":         "user-1",
				"email":      "jane@example.com",
				"first_name": "Jane",
				"last_name":  "Doe",
				"is_admin":   false,
				"role":       "USER",
			},
		})
	}))

	result, err := client.Login(context.Background(), "jane@example.com", "password123")
	require.NoError(t, err)
	require.Equal(t, "access-1", result.Tokens.AccessToken)
	require.Equal(t, "refresh-1", result.Tokens.RefreshToken)
	require.Equal(t, "Jane", result.User.FirstName)
	require.False(t, result.PendingVerification)
}

func TestLoginErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		serverText string
		wantCode   authapi.FailureCode
		wantMsg    string
	}{
		{
			name:       "invalid credentials",
			status:     http.StatusUnauthorized,
			serverText: "Invalid email or password",
			wantCode:   authapi.CodeInvalidCredentials,
			wantMsg:    authapi.MsgInvalidCredentials,
		},
		{
			name:       "deactivated account",
			status:     http.StatusForbidden,
			serverText: "Account is deactivated",
			wantCode:   authapi.CodeAccountDeactivated,
			wantMsg:    authapi.MsgAccountDeactivated,
		},
		{
			name:       "unverified email",
			status:     http.StatusForbidden,
			serverText: "Email address has not been verified",
			wantCode:   authapi.CodeEmailUnverified,
			wantMsg:    authapi.MsgEmailUnverified,
		},
		{
			name:       "unexpected server error",
			status:     http.StatusInternalServerError,
			serverText: "unhandled exception",
			wantCode:   authapi.CodeServer,
			wantMsg:    authapi.MsgGenericFailure,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(t, w, tc.status, map[string]string{"error": tc.serverText})
			}))

			_, err := client.Login(context.Background(), "jane@example.com", "password123")
			require.Error(t, err)
			require.True(t, authapi.IsCode(err, tc.wantCode))
			require.Equal(t, tc.wantMsg, authapi.UserMessage(err))
		})
	}
}

func TestLoginConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close() // unreachable host

	client, err := authapi.New(server.URL)
	require.NoError(t, err)

	_, err = client.Login(context.Background(), "jane@example.com", "password123")
	require.True(t, authapi.IsCode(err, authapi.CodeConnection))
	require.Equal(t, authapi.MsgConnection, authapi.UserMessage(err))
}

func TestMalformedResponseMapsToConnection(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html>gateway error</html>"))
	}))

	_, err := client.Login(context.Background(), "jane@example.com", "password123")
	require.True(t, authapi.IsCode(err, authapi.CodeConnection))
}

func TestRegisterPendingVerification(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusCreated, map[string]any{
			"message":               "Please verify your email address",
			"requires_verification": true,
			"user":                  map[string]any{"id": "user-1", "email": "jane@example.com"},
		})
	}))

	result, err := client.Register(context.Background(), authapi.Registration{
		Email: "jane@example.com", Password: "password123",
	})
	require.NoError(t, err)
	require.True(t, result.PendingVerification)
	require.Nil(t, result.Tokens)
	require.Equal(t, "jane@example.com", result.User.Email)
}

func TestRefreshWithoutRotation(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/refresh", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "refresh-1", req["refresh_token"])

		writeJSON(t, w, http.StatusOK, map[string]string{"access_token": "access-2"})
	}))

	pair, err := client.Refresh(context.Background(), "refresh-1")
	require.NoError(t, err)
	require.Equal(t, "access-2", pair.AccessToken)
	require.Empty(t, pair.RefreshToken)
}

func TestFetchProfileSendsBearerToken(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
		writeJSON(t, w, http.StatusOK, map[string]any{
			"user": map[string]any{"id": "user-1", "email": "jane@example.com", "is_admin": true},
		})
	}))

	profile, err := client.FetchProfile(context.Background(), "access-1")
	require.NoError(t, err)
	require.True(t, profile.IsAdmin)
}

func TestFetchProfileHandlesBareUserObject(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"id": "user-1", "email": "jane@example.com"})
	}))

	profile, err := client.FetchProfile(context.Background(), "access-1")
	require.NoError(t, err)
	require.Equal(t, "user-1", profile.ID)
}

func TestFetchProfileExpiredToken(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized, map[string]string{"error": "Token has expired"})
	}))

	_, err := client.FetchProfile(context.Background(), "stale-access")
	require.True(t, authapi.IsCode(err, authapi.CodeTokenExpired))
}

func TestUpdateProfileSplitsDisplayName(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		firstName string
		lastName  string
	}{
		{name: "two part name", input: "Jane Doe", firstName: "Jane", lastName: "Doe"},
		{name: "single name", input: "Jane", firstName: "Jane", lastName: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, http.MethodPut, r.Method)

				var req map[string]*string
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				require.Equal(t, tc.firstName, utils.Value(req["first_name"]))
				require.Equal(t, tc.lastName, utils.Value(req["last_name"]))

				writeJSON(t, w, http.StatusOK, map[string]any{
					"user": map[string]any{"id": "user-1", "first_name": tc.firstName, "last_name": tc.lastName},
				})
			}))

			profile, err := client.UpdateProfile(context.Background(), "access-1", authapi.ProfileUpdate{
				DisplayName: utils.Ptr(tc.input),
			})
			require.NoError(t, err)
			require.Equal(t, tc.firstName, profile.FirstName)
		})
	}
}

func TestRequestPasswordResetDefaultsMessage(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]string{})
	}))

	msg, err := client.RequestPasswordReset(context.Background(), "jane@example.com")
	require.NoError(t, err)
	require.Equal(t, authapi.MsgPasswordResetSent, msg)
}

func TestRequestPasswordResetSurfacesServerMessage(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]string{"message": "Reset instructions sent"})
	}))

	msg, err := client.RequestPasswordReset(context.Background(), "jane@example.com")
	require.NoError(t, err)
	require.Equal(t, "Reset instructions sent", msg)
}

func TestStartOAuthBuildsRedirectURL(t *testing.T) {
	client, err := authapi.New("http://localhost:10000", authapi.WithOAuthProviders(map[string]authapi.OAuthProvider{
		"google": {
			Name:        "google",
			ClientID:    "client-1",
			AuthURL:     "https://accounts.google.com/o/oauth2/auth",
			RedirectURL: "http://localhost:10000/api/auth/oauth/google/callback",
			Scopes:      []string{"openid", "email"},
		},
	}))
	require.NoError(t, err)

	redirectURL, err := client.StartOAuth("google")
	require.NoError(t, err)
	require.Contains(t, redirectURL, "https://accounts.google.com/o/oauth2/auth")
	require.Contains(t, redirectURL, "client_id=client-1")
	require.Contains(t, redirectURL, "state=")

	_, err = client.StartOAuth("unknown")
	require.Error(t, err)
}

func TestCompleteOAuthSignsIn(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/oauth/google/complete", r.URL.Path)
		writeJSON(t, w, http.StatusOK, map[string]any{
			"access_token":  "access-1",
			"refresh_token": "refresh-1",
			"user":          map[string]any{"id": "user-1", "email": "jane@example.com"},
		})
	})

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := authapi.New(server.URL, authapi.WithOAuthProviders(map[string]authapi.OAuthProvider{
		"google": {Name: "google", ClientID: "client-1", AuthURL: "https://example.com/auth"},
	}))
	require.NoError(t, err)

	result, err := client.CompleteOAuth(context.Background(), "google", "callback-code")
	require.NoError(t, err)
	require.Equal(t, "access-1", result.Tokens.AccessToken)
}

func TestLogoutReportsServerFailure(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusInternalServerError, map[string]string{"error": "session store unavailable"})
	}))

	err := client.Logout(context.Background(), "access-1")
	require.Error(t, err)
	require.True(t, authapi.IsCode(err, authapi.CodeServer))
}
