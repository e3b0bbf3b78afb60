// Package common defines shared constants and sentinel errors used across
// client and server layers of DefComm. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorValidation   = errors.New("validation error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrorRejected     = errors.New("account rejected")

	// ErrSelfAction is returned when an HQ user targets their own account
	// with an approve/reject/update/delete action.
	ErrSelfAction = errors.New("self action")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Error couples a sentinel kind with a message meant for API consumers.
// errors.Is(err, Kind) holds for any *Error.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// NewError builds an *Error of the given kind.
func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

var (
	ErrUserNotFound       = NewError(ErrorNotFound, "User not found")
	ErrGroupNotFound      = NewError(ErrorNotFound, "Group not found")
	ErrMemberNotFound     = NewError(ErrorNotFound, "Group not found or member not in group")
	ErrUserExists         = NewError(ErrorAlreadyExists, "User already exists")
	ErrNotGroupMember     = NewError(ErrorForbidden, "Not a member of this group")
	ErrInvalidCredentials = NewError(ErrorUnauthorized, "Invalid username or password")
	ErrAccountRejected    = NewError(ErrorRejected, "Your account has been rejected by HQ. Access denied.")
	ErrEmptyCiphertext    = NewError(ErrorValidation, "Encrypted message text is required")
)
