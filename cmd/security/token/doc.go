// Package token provides the login-token identifier and its storage digest.
//
// A login token ID is 32 bytes from crypto/rand. Its canonical text form is
// base64url without padding (43 chars) and is what the client holds in the
// session cookie.
//
// Persistent stores never keep the raw ID. They key rows by Digest(id):
// HMAC-SHA256 when CORECMS_TOKEN_HMAC_KEY is set, SHA-256 otherwise.
// Output is always 64 hex chars.
package token
