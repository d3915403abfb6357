package session

import (
	"testing"
)

func testStoreLifecycle(t *testing.T, s Store) {
	if _, ok := s.Credential(); ok {
		t.Fatalf("fresh store reports a credential")
	}

	if err := s.SetCredential(""); err != ErrEmptyCredential {
		t.Errorf("SetCredential(\"\") error = %v, want %v", err, ErrEmptyCredential)
	}

	if err := s.SetCredential("first"); err != nil {
		t.Fatalf("SetCredential() error = %v", err)
	}
	if err := s.SetCredential("second"); err != nil {
		t.Fatalf("SetCredential() error = %v", err)
	}

	got, ok := s.Credential()
	if !ok || got != "second" {
		t.Errorf("Credential() got = %q, %v, want %q, true", got, ok, "second")
	}

	if err := s.ClearCredential(); err != nil {
		t.Fatalf("ClearCredential() error = %v", err)
	}
	if got, ok := s.Credential(); ok {
		t.Errorf("Credential() after clear got = %q", got)
	}

	// clearing twice is fine
	if err := s.ClearCredential(); err != nil {
		t.Errorf("second ClearCredential() error = %v", err)
	}
}

func TestMemory(t *testing.T) {
	testStoreLifecycle(t, NewMemory())
}

func TestDB(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	testStoreLifecycle(t, s)
}

func TestDBSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err = s.SetCredential("tok-123"); err != nil {
		t.Fatalf("SetCredential() error = %v", err)
	}
	s.Close()

	s, err = Open(dir)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()

	got, ok := s.Credential()
	if !ok || got != "tok-123" {
		t.Errorf("Credential() after reopen got = %q, %v", got, ok)
	}
}
