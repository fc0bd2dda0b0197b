package app

import (
	"errors"

	"corecms/cmd/security/token"
)

// ValidateSecurityConfig enforces the token digest policy at startup.
//
// It fails fast rather than falling back to plain SHA-256 digests when HMAC
// is required. Enforcement goes through security/token, the same package
// that computes the digests.
func ValidateSecurityConfig(cfg Config) error {
	if !cfg.RequireTokenHMAC {
		return nil
	}

	// The key is used as raw bytes, so the minimum is measured in bytes.
	if _, err := token.HMACKeyFromEnv(32); err != nil {
		switch {
		case errors.Is(err, token.ErrHMACKeyMissing):
			return errors.New("security policy: CORECMS_REQUIRE_TOKEN_HMAC=true but CORECMS_TOKEN_HMAC_KEY is missing")
		case errors.Is(err, token.ErrHMACKeyTooShort):
			return errors.New("security policy: CORECMS_REQUIRE_TOKEN_HMAC=true but CORECMS_TOKEN_HMAC_KEY is too short (min 32 bytes)")
		default:
			return err
		}
	}

	if !token.HMACEnabled() {
		return errors.New("security policy: CORECMS_REQUIRE_TOKEN_HMAC=true but token digests are not in HMAC mode")
	}

	return nil
}
