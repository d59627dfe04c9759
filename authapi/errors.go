package authapi

import (
	"errors"
	"strings"
)

// FailureCode classifies why a remote call failed. The session layer and UI
// surfaces branch on codes, never on server error text.
type FailureCode string

const (
	CodeValidation         FailureCode = "validation"
	CodeInvalidCredentials FailureCode = "invalid_credentials"
	CodeEmailUnverified    FailureCode = "email_unverified"
	CodeAccountDeactivated FailureCode = "account_deactivated"
	CodeTokenExpired       FailureCode = "token_expired"
	CodeConnection         FailureCode = "connection"
	CodeServer             FailureCode = "server"
)

// Fixed user-facing messages. These are the only strings surfaced to the UI
// for remote failures.
const (
	MsgInvalidCredentials = "Incorrect email or password. Please try again."
	MsgEmailUnverified    = "Please verify your email address before signing in."
	MsgAccountDeactivated = "This account has been deactivated. Please contact support."
	MsgSessionExpired     = "Your session has expired. Please sign in again."
	MsgConnection         = "Couldn't reach the server. Please check your connection and try again."
	MsgGenericFailure     = "Something went wrong. Please try again."

	// MsgPasswordResetSent deliberately does not reveal whether the email
	// exists.
	MsgPasswordResetSent = "If this email exists, a password reset link has been sent."
)

// Error is the normalized outcome of a failed remote call.
type Error struct {
	Code    FailureCode
	Message string // fixed user-facing message
	Detail  string // raw server text or transport error, for logs only
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Message
	}
	return e.Message + " (" + e.Detail + ")"
}

// NewError builds an Error with the fixed message for the given code.
func NewError(code FailureCode, detail string) *Error {
	return &Error{Code: code, Message: messageForCode(code), Detail: detail}
}

// IsCode reports whether err carries the given failure code.
func IsCode(err error, code FailureCode) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// UserMessage extracts the fixed user-facing message from err, falling back
// to the generic failure message for unclassified errors.
func UserMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return MsgGenericFailure
}

func messageForCode(code FailureCode) string {
	switch code {
	case CodeInvalidCredentials:
		return MsgInvalidCredentials
	case CodeEmailUnverified:
		return MsgEmailUnverified
	case CodeAccountDeactivated:
		return MsgAccountDeactivated
	case CodeTokenExpired:
		return MsgSessionExpired
	case CodeConnection:
		return MsgConnection
	default:
		return MsgGenericFailure
	}
}

// classifyServerMessage translates opaque server error text into a
// FailureCode. The legacy API signals outcomes through free-form messages, so
// case-insensitive substring matching is unavoidable; it is confined to this
// single adapter. authed marks calls made with a bearer token, for which an
// unclassified 401 means the access token expired.
func classifyServerMessage(statusCode int, serverMessage string, authed bool) FailureCode {
	msg := strings.ToLower(serverMessage)

	switch {
	case strings.Contains(msg, "verif"): // "not verified", "requires verification"
		return CodeEmailUnverified
	case strings.Contains(msg, "deactivated"), strings.Contains(msg, "disabled"):
		return CodeAccountDeactivated
	case strings.Contains(msg, "invalid email or password"),
		strings.Contains(msg, "invalid credentials"),
		strings.Contains(msg, "incorrect"):
		return CodeInvalidCredentials
	case authed && statusCode == 401:
		return CodeTokenExpired
	default:
		return CodeServer
	}
}
