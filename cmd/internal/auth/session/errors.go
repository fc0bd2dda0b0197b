package session

import "errors"

var (
	// ErrInvalidCredentials is returned for an unknown username or a wrong password.
	// The two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidUserState is returned when a session is requested for a user
	// that has not been persisted. It signals a programming error in the caller.
	ErrInvalidUserState = errors.New("user is not persisted")

	// ErrStorage wraps any failure of the identity or token store.
	ErrStorage = errors.New("session storage failure")

	// ErrNotAuthenticated is returned by Logout when the request carries no usable credential.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrTokenNotFound is returned by a Store when no token matches the ID.
	ErrTokenNotFound = errors.New("login token not found")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid config")
)
