package authtest

import "errors"

// Errors returned through completion callbacks. The adapter forwards them
// verbatim, so tests can match on these exact values.
var (
	ErrEmailAlreadyInUse  = errors.New("email already in use")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidActionCode  = errors.New("invalid action code")
	ErrNoCurrentUser      = errors.New("no current user")
)
