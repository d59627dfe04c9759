package authapi

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyServerMessage(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		serverText string
		authed     bool
		want       FailureCode
	}{
		{name: "invalid email or password", status: 401, serverText: "Invalid email or password", want: CodeInvalidCredentials},
		{name: "invalid credentials", status: 401, serverText: "invalid credentials supplied", want: CodeInvalidCredentials},
		{name: "incorrect current password", status: 401, serverText: "Current password is incorrect", authed: true, want: CodeInvalidCredentials},
		{name: "deactivated", status: 403, serverText: "Account is deactivated", want: CodeAccountDeactivated},
		{name: "disabled", status: 403, serverText: "account disabled by an administrator", want: CodeAccountDeactivated},
		{name: "not verified", status: 403, serverText: "Email address not verified", want: CodeEmailUnverified},
		{name: "requires verification", status: 403, serverText: "Account requires verification", want: CodeEmailUnverified},
		{name: "case insensitive", status: 403, serverText: "ACCOUNT IS DEACTIVATED", want: CodeAccountDeactivated},
		{name: "authed 401 without recognizable text", status: 401, serverText: "Token is invalid", authed: true, want: CodeTokenExpired},
		{name: "unauthed 401 without recognizable text", status: 401, serverText: "nope", want: CodeServer},
		{name: "unknown failure", status: 500, serverText: "unhandled exception", want: CodeServer},
		{name: "empty server text", status: 502, serverText: "", want: CodeServer},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, classifyServerMessage(tc.status, tc.serverText, tc.authed))
		})
	}
}

func TestNewErrorPicksFixedMessage(t *testing.T) {
	require.Equal(t, MsgInvalidCredentials, NewError(CodeInvalidCredentials, "raw").Message)
	require.Equal(t, MsgConnection, NewError(CodeConnection, "raw").Message)
	require.Equal(t, MsgGenericFailure, NewError(CodeServer, "raw").Message)
}

func TestUserMessageFallsBackToGeneric(t *testing.T) {
	require.Equal(t, MsgGenericFailure, UserMessage(assertedError{}))
}

type assertedError struct{}

func (assertedError) Error() string { return "plain error" }
