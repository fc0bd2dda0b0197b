package identity

import "testing"

func useFastArgon2(t *testing.T) {
	t.Helper()
	t.Setenv("CORECMS_ARGON2_MEMORY_KIB", "8192")
	t.Setenv("CORECMS_ARGON2_ITERATIONS", "1")
	t.Setenv("CORECMS_ARGON2_PARALLELISM", "1")
}

func TestUser_SetAndVerifyPassword(t *testing.T) {
	useFastArgon2(t)

	var u User
	if err := u.SetPassword("alice-password"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if u.PasswordSalt == "" || u.PasswordHash == "" {
		t.Fatalf("expected credential material, got %+v", u)
	}

	if !u.VerifyPassword("alice-password") {
		t.Fatalf("expected correct password to verify")
	}
	if u.VerifyPassword("alice-passwore") {
		t.Fatalf("expected wrong password to fail")
	}
}

func TestUser_SetPassword_Policy(t *testing.T) {
	useFastArgon2(t)

	var u User
	if err := u.SetPassword("short"); err == nil {
		t.Fatalf("expected policy error")
	}
	if u.PasswordHash != "" {
		t.Fatalf("credential material must stay untouched on failure")
	}
}

func TestUser_VerifyPassword_NoMaterial(t *testing.T) {
	u := User{ID: "01HZZZZZZZZZZZZZZZZZZZZZZZ", Username: "bob"}
	if u.VerifyPassword("") {
		t.Fatalf("user without credential must never verify")
	}

	u.PasswordSalt = "garbage"
	u.PasswordHash = "garbage"
	if u.VerifyPassword("garbage") {
		t.Fatalf("malformed credential must never verify")
	}
}

func TestUser_Persisted(t *testing.T) {
	if (User{}).Persisted() {
		t.Fatalf("zero user must not be persisted")
	}
	if !(User{ID: "x"}).Persisted() {
		t.Fatalf("user with id must be persisted")
	}
}
