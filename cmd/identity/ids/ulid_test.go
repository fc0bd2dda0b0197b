package ids

import (
	"testing"
	"time"
)

func TestNewULID(t *testing.T) {
	id, err := NewULID(time.Now().UTC())
	if err != nil {
		t.Fatalf("NewULID: %v", err)
	}
	if len(id) != 26 {
		t.Fatalf("expected 26 chars, got %d", len(id))
	}
	if !Valid(id) {
		t.Fatalf("expected %q to be valid", id)
	}
}

func TestNewULID_ZeroTime(t *testing.T) {
	id, err := NewULID(time.Time{})
	if err != nil {
		t.Fatalf("NewULID: %v", err)
	}
	if !Valid(id) {
		t.Fatalf("expected %q to be valid", id)
	}
}

func TestValid_Rejects(t *testing.T) {
	for _, in := range []string{"", "U1", "not-a-ulid-at-all-xxxxxxxxx"} {
		if Valid(in) {
			t.Fatalf("expected %q to be invalid", in)
		}
	}
}
