// Package password hashes and verifies user passwords with Argon2id.
//
// A hash is stored as two opaque strings: the base64 salt and a parameter
// string of the form
//
//	$argon2id$v=19$m=<mem>,t=<iter>,p=<par>$<key_b64>
//
// Parameters travel with the hash so older users keep verifying after the
// configured cost changes. Verify treats both strings as untrusted input.
package password
