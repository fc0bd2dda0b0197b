package identity

import (
	"time"

	"corecms/cmd/security/password"
)

// User is the base CoreCMS principal as persisted by a Store.
type User struct {
	// ID is a ULID assigned by Store.Create. Empty means not persisted yet.
	ID           string
	Username     string
	PasswordSalt string
	PasswordHash string
	AccessLevel  int
	CreatedAt    time.Time
}

// Persisted reports whether the user has been stored.
func (u User) Persisted() bool { return u.ID != "" }

// SetPassword replaces the credential material with a fresh digest of plain.
// It honors the password policy from the environment.
func (u *User) SetPassword(plain string) error {
	cfg, err := password.FromEnv()
	if err != nil {
		return err
	}

	d, err := cfg.Hash(plain)
	if err != nil {
		return err
	}
	u.PasswordSalt = d.Salt
	u.PasswordHash = d.Hash
	return nil
}

// VerifyPassword reports whether candidate matches the stored credential.
// Malformed credential material never verifies.
func (u User) VerifyPassword(candidate string) bool {
	if u.PasswordHash == "" || u.PasswordSalt == "" {
		return false
	}

	cfg, err := password.FromEnv()
	if err != nil {
		cfg = password.DefaultConfig()
	}

	ok, err := cfg.Verify(password.Digest{Salt: u.PasswordSalt, Hash: u.PasswordHash}, candidate)
	return err == nil && ok
}
