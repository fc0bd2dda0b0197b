package app

import (
	"strings"
	"testing"
)

func TestValidateSecurityConfig(t *testing.T) {
	if err := ValidateSecurityConfig(Config{}); err != nil {
		t.Fatalf("policy off must pass: %v", err)
	}

	cfg := Config{RequireTokenHMAC: true}

	t.Setenv("CORECMS_TOKEN_HMAC_KEY", "")
	if err := ValidateSecurityConfig(cfg); err == nil || !strings.Contains(err.Error(), "missing") {
		t.Fatalf("expected missing key error, got %v", err)
	}

	t.Setenv("CORECMS_TOKEN_HMAC_KEY", "short")
	if err := ValidateSecurityConfig(cfg); err == nil || !strings.Contains(err.Error(), "too short") {
		t.Fatalf("expected short key error, got %v", err)
	}

	t.Setenv("CORECMS_TOKEN_HMAC_KEY", strings.Repeat("k", 32))
	if err := ValidateSecurityConfig(cfg); err != nil {
		t.Fatalf("expected valid key to pass, got %v", err)
	}
}
