package session

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAuthenticatedDefaultsFalse(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "s.db"))
	ok, err := s.Authenticated(context.Background())
	if err != nil {
		t.Fatalf("Authenticated: %v", err)
	}
	if ok {
		t.Error("fresh store should not be authenticated")
	}
}

func TestSetAuthenticatedRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, filepath.Join(t.TempDir(), "s.db"))
	if err := s.SetAuthenticated(ctx, true); err != nil {
		t.Fatalf("SetAuthenticated: %v", err)
	}
	if ok, _ := s.Authenticated(ctx); !ok {
		t.Error("flag not set")
	}
	if err := s.SetAuthenticated(ctx, false); err != nil {
		t.Fatalf("SetAuthenticated(false): %v", err)
	}
	if ok, _ := s.Authenticated(ctx); ok {
		t.Error("flag not cleared")
	}
}

func TestStatePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "s.db")

	s := openTestStore(t, path)
	if err := s.SetAuthenticated(ctx, true); err != nil {
		t.Fatalf("SetAuthenticated: %v", err)
	}
	if err := s.SetProcessedFile(ctx, "students.xlsx"); err != nil {
		t.Fatalf("SetProcessedFile: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s2 := openTestStore(t, path)
	if ok, _ := s2.Authenticated(ctx); !ok {
		t.Error("flag lost across reopen")
	}
	name, err := s2.ProcessedFile(ctx)
	if err != nil {
		t.Fatalf("ProcessedFile: %v", err)
	}
	if name != "students.xlsx" {
		t.Errorf("processed file = %q", name)
	}
}

func TestClearDropsEverything(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, filepath.Join(t.TempDir(), "s.db"))
	if err := s.SetAuthenticated(ctx, true); err != nil {
		t.Fatalf("SetAuthenticated: %v", err)
	}
	if err := s.SetProcessedFile(ctx, "a.xlsx"); err != nil {
		t.Fatalf("SetProcessedFile: %v", err)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if ok, _ := s.Authenticated(ctx); ok {
		t.Error("flag survived Clear")
	}
	if name, _ := s.ProcessedFile(ctx); name != "" {
		t.Errorf("processed file survived Clear: %q", name)
	}
}

func TestOpenCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "s.db")
	s := openTestStore(t, path)
	if err := s.SetAuthenticated(context.Background(), true); err != nil {
		t.Fatalf("SetAuthenticated: %v", err)
	}
}
