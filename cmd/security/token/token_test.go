package token

import (
	"strings"
	"testing"
)

func TestNewID_RoundTrip(t *testing.T) {
	id, err := NewID()
	if err != nil {
		t.Fatalf("NewID: %v", err)
	}
	if id.IsZero() {
		t.Fatalf("expected non-zero id")
	}

	s := id.String()
	if len(s) != 43 {
		t.Fatalf("expected 43 chars, got %d (%q)", len(s), s)
	}

	got, err := Parse(s)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got != id {
		t.Fatalf("round trip mismatch")
	}
}

func TestNewID_Unique(t *testing.T) {
	seen := make(map[ID]struct{}, 256)
	for i := 0; i < 256; i++ {
		id, err := NewID()
		if err != nil {
			t.Fatalf("NewID: %v", err)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id after %d draws", i)
		}
		seen[id] = struct{}{}
	}
}

func TestParse_Rejects(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{name: "empty", in: ""},
		{name: "short", in: "abc"},
		{name: "uuid", in: "3f2504e0-4f89-11d3-9a0c-0305e82c3301"},
		{name: "bad alphabet", in: strings.Repeat("*", 43)},
		{name: "zero id", in: ID{}.String()},
		{name: "padded", in: strings.Repeat("A", 42) + "="},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse(tc.in); err != ErrMalformedID {
				t.Fatalf("Parse(%q) err=%v want ErrMalformedID", tc.in, err)
			}
		})
	}
}

func TestDigest_HMACSwitch(t *testing.T) {
	id, err := NewID()
	if err != nil {
		t.Fatalf("NewID: %v", err)
	}

	t.Setenv(HMACEnvKey, "")
	plain := Digest(id)
	if len(plain) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(plain))
	}
	if plain != HashSHA256Hex(id[:]) {
		t.Fatalf("expected sha256 digest without key")
	}

	t.Setenv(HMACEnvKey, strings.Repeat("k", 32))
	keyed := Digest(id)
	if keyed == plain {
		t.Fatalf("expected hmac digest to differ from sha256 digest")
	}
	if !HMACEnabled() {
		t.Fatalf("expected HMACEnabled")
	}
}

func TestHMACKeyFromEnv(t *testing.T) {
	t.Setenv(HMACEnvKey, "")
	if _, err := HMACKeyFromEnv(32); err != ErrHMACKeyMissing {
		t.Fatalf("expected ErrHMACKeyMissing, got %v", err)
	}

	t.Setenv(HMACEnvKey, "short")
	if _, err := HMACKeyFromEnv(32); err != ErrHMACKeyTooShort {
		t.Fatalf("expected ErrHMACKeyTooShort, got %v", err)
	}

	t.Setenv(HMACEnvKey, strings.Repeat("x", 40))
	if _, err := HMACKeyFromEnv(32); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEqual(t *testing.T) {
	if !Equal("10.0.0.1", "10.0.0.1") {
		t.Fatalf("expected equal")
	}
	if Equal("10.0.0.1", "10.0.0.2") {
		t.Fatalf("expected mismatch")
	}
	if Equal("10.0.0.1", "10.0.0.10") {
		t.Fatalf("expected length mismatch")
	}
	if !Equal("", "") {
		t.Fatalf("expected empty strings to compare equal")
	}
}

func TestParse_RejectsNonCanonicalTail(t *testing.T) {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

	id, err := NewID()
	if err != nil {
		t.Fatalf("NewID: %v", err)
	}
	s := id.String()

	last := strings.IndexByte(alphabet, s[len(s)-1])
	if last < 0 || last&3 != 0 {
		t.Fatalf("unexpected canonical tail %q", s[len(s)-1])
	}

	// The final character carries 2 unused bits; setting them must not
	// yield another spelling of the same ID.
	for bits := 1; bits <= 3; bits++ {
		alt := s[:len(s)-1] + string(alphabet[last|bits])
		if _, err := Parse(alt); err != ErrMalformedID {
			t.Fatalf("Parse(%q) err=%v want ErrMalformedID", alt, err)
		}
	}
}
