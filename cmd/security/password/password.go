package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const argon2Version = 19 // argon2.Version is 0x13

var b64 = base64.RawStdEncoding

// Digest is the stored form of a password: salt and parameterised key, both text.
type Digest struct {
	Salt string
	Hash string
}

// Hash derives a new Digest for password with a fresh random salt.
func (c Config) Hash(password string) (Digest, error) {
	if err := c.Validate(password); err != nil {
		return Digest{}, err
	}

	salt := make([]byte, c.Params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return Digest{}, fmt.Errorf("salt: %w", err)
	}

	key := argon2.IDKey(
		[]byte(password),
		salt,
		c.Params.Iterations,
		c.Params.MemoryKiB,
		c.Params.Parallelism,
		c.Params.KeyLength,
	)

	return Digest{
		Salt: b64.EncodeToString(salt),
		Hash: fmt.Sprintf(
			"$argon2id$v=%d$m=%d,t=%d,p=%d$%s",
			argon2Version,
			c.Params.MemoryKiB,
			c.Params.Iterations,
			c.Params.Parallelism,
			b64.EncodeToString(key),
		),
	}, nil
}

// Verify reports whether password matches d.
// Returns (false, ErrInvalidHash) for malformed digests or digests whose cost
// is far above the configured parameters.
func (c Config) Verify(d Digest, password string) (bool, error) {
	params, expected, err := decodeHash(d.Hash)
	if err != nil {
		return false, err
	}
	salt, err := b64.DecodeString(d.Salt)
	if err != nil || len(salt) < 8 || len(salt) > 64 {
		return false, ErrInvalidHash
	}

	if !withinBounds(params, c.Params) {
		return false, ErrInvalidHash
	}

	key := argon2.IDKey(
		[]byte(password),
		salt,
		params.Iterations,
		params.MemoryKiB,
		params.Parallelism,
		uint32(len(expected)), // #nosec G115 -- bounded by decodeHash.
	)

	return subtle.ConstantTimeCompare(key, expected) == 1, nil
}

// withinBounds accepts digests made with older/smaller settings but rejects
// attacker-sized costs.
func withinBounds(got, limits Argon2idParams) bool {
	if got.MemoryKiB > limits.MemoryKiB*2 {
		return false
	}
	if got.Iterations > limits.Iterations*2 {
		return false
	}
	if uint32(got.Parallelism) > uint32(limits.Parallelism)*2 {
		return false
	}
	return true
}

func decodeHash(encoded string) (Argon2idParams, []byte, error) {
	// "", "argon2id", "v=19", "m=..,t=..,p=..", key
	parts := strings.Split(encoded, "$")
	if len(parts) != 5 || parts[0] != "" || parts[1] != "argon2id" {
		return Argon2idParams{}, nil, ErrInvalidHash
	}
	if parts[2] != fmt.Sprintf("v=%d", argon2Version) {
		return Argon2idParams{}, nil, ErrInvalidHash
	}

	var mem, it, par uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &it, &par); err != nil {
		return Argon2idParams{}, nil, ErrInvalidHash
	}
	if mem == 0 || it == 0 || par == 0 || par > 255 {
		return Argon2idParams{}, nil, ErrInvalidHash
	}

	key, err := b64.DecodeString(parts[4])
	if err != nil || len(key) < 16 || len(key) > 128 {
		return Argon2idParams{}, nil, ErrInvalidHash
	}

	return Argon2idParams{
		MemoryKiB:   mem,
		Iterations:  it,
		Parallelism: uint8(par), // #nosec G115 -- checked above.
		KeyLength:   uint32(len(key)), // #nosec G115 -- bounded above.
	}, key, nil
}
