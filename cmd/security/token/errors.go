package token

import "errors"

// Public, stable errors for callers.
var (
	ErrMalformedID     = errors.New("token: malformed id")
	ErrHMACKeyMissing  = errors.New("token HMAC key missing")
	ErrHMACKeyTooShort = errors.New("token HMAC key too short")
)
