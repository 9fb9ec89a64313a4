package config

import (
	"errors"
	"testing"
)

func TestStoreTokenRoundTrip(t *testing.T) {
	t.Setenv("NODECTL_HOME", t.TempDir())

	s, err := NewStore()
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if _, err := s.Tokens(); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("Tokens on fresh store = %v, want ErrNotLoggedIn", err)
	}

	want := Tokens{Access: "acc", ID: "id", Refresh: "ref"}
	if err := s.SaveTokens("alice", want); err != nil {
		t.Fatalf("SaveTokens: %v", err)
	}

	// Re-open to verify persistence.
	s2, err := NewStore()
	if err != nil {
		t.Fatalf("NewStore (reopen): %v", err)
	}
	got, err := s2.Tokens()
	if err != nil {
		t.Fatalf("Tokens after save: %v", err)
	}
	if got != want {
		t.Errorf("Tokens = %+v, want %+v", got, want)
	}
	if s2.UserName() != "alice" {
		t.Errorf("UserName = %q, want alice", s2.UserName())
	}

	if err := s2.ClearTokens(); err != nil {
		t.Fatalf("ClearTokens: %v", err)
	}
	if _, err := s2.Tokens(); !errors.Is(err, ErrNotLoggedIn) {
		t.Errorf("Tokens after clear = %v, want ErrNotLoggedIn", err)
	}
}
