package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"os"
	"strings"
)

const (
	// HMACEnvKey is the env var name for the token digest secret.
	// #nosec G101 -- not a credential; it's an environment variable name.
	HMACEnvKey = "CORECMS_TOKEN_HMAC_KEY"

	// IDSize is the number of random bytes in a login token ID (256 bits).
	IDSize = 32

	// EncodedLen is the length of ID.String().
	EncodedLen = 43
)

var idEncoding = base64.RawURLEncoding.Strict()

// ID is an opaque login token identifier.
type ID [IDSize]byte

// NewID returns a fresh random ID.
func NewID() (ID, error) {
	var id ID
	if _, err := rand.Read(id[:]); err != nil {
		return ID{}, err
	}
	return id, nil
}

// Parse decodes the canonical text form produced by ID.String.
// The all-zero ID is rejected.
func Parse(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if len(s) != EncodedLen {
		return ID{}, ErrMalformedID
	}

	var id ID
	n, err := idEncoding.Decode(id[:], []byte(s))
	if err != nil || n != IDSize {
		return ID{}, ErrMalformedID
	}
	if id.IsZero() {
		return ID{}, ErrMalformedID
	}
	return id, nil
}

// String returns the canonical base64url form.
func (id ID) String() string {
	return idEncoding.EncodeToString(id[:])
}

// IsZero reports whether id is the zero value.
func (id ID) IsZero() bool {
	return id == ID{}
}

// Digest returns the server-side storage key for id.
// It uses HMAC-SHA256 if CORECMS_TOKEN_HMAC_KEY is set; otherwise SHA-256.
func Digest(id ID) string {
	key := strings.TrimSpace(os.Getenv(HMACEnvKey))
	if key == "" {
		return HashSHA256Hex(id[:])
	}
	return HashHMACSHA256Hex(id[:], []byte(key))
}

// HashSHA256Hex returns a SHA-256 hex digest of b.
func HashSHA256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// HashHMACSHA256Hex returns an HMAC-SHA256 hex digest of b using key.
func HashHMACSHA256Hex(b []byte, key []byte) string {
	m := hmac.New(sha256.New, key)
	_, _ = m.Write(b)
	return hex.EncodeToString(m.Sum(nil))
}

// HMACKeyFromEnv returns the configured HMAC key bytes (trimmed), enforcing a minimum byte length.
func HMACKeyFromEnv(minBytes int) ([]byte, error) {
	raw := strings.TrimSpace(os.Getenv(HMACEnvKey))
	if raw == "" {
		return nil, ErrHMACKeyMissing
	}
	b := []byte(raw)
	if minBytes > 0 && len(b) < minBytes {
		return nil, ErrHMACKeyTooShort
	}
	return b, nil
}

// HMACEnabled reports whether the env key is present (non-empty after trim).
func HMACEnabled() bool {
	return strings.TrimSpace(os.Getenv(HMACEnvKey)) != ""
}

// Equal compares two strings in constant time with respect to their contents.
// Strings of different length are never equal.
func Equal(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
