package localstore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileStore_roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "journal.json")

	s := NewFileStore(path)
	if _, ok := s.Get("theme"); ok {
		t.Fatal("fresh store must be empty")
	}
	if err := s.Set("theme", "true"); err != nil {
		t.Fatalf("Set() failed, %v", err)
	}
	if err := s.Set("page", "students"); err != nil {
		t.Fatalf("Set() failed, %v", err)
	}

	// a new instance reads what the first one wrote
	s2 := NewFileStore(path)
	if val, ok := s2.Get("theme"); !ok || val != "true" {
		t.Errorf("Get(theme) = (%q, %v), want (true, true)", val, ok)
	}

	if err := s2.Delete("theme"); err != nil {
		t.Fatalf("Delete() failed, %v", err)
	}
	if _, ok := NewFileStore(path).Get("theme"); ok {
		t.Error("deleted key survived a reload")
	}
	if val, ok := NewFileStore(path).Get("page"); !ok || val != "students" {
		t.Errorf("Get(page) = (%q, %v), want (students, true)", val, ok)
	}
}

func TestFileStore_deleteMissingKey(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "journal.json"))
	if err := s.Delete("nope"); err != nil {
		t.Errorf("Delete() of a missing key = %v, want nil", err)
	}
}

func TestFileStore_corruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewFileStore(path)
	if _, ok := s.Get("theme"); ok {
		t.Fatal("corrupt file must read as empty")
	}

	// writes recover the file
	if err := s.Set("theme", "false"); err != nil {
		t.Fatalf("Set() failed, %v", err)
	}
	if val, ok := NewFileStore(path).Get("theme"); !ok || val != "false" {
		t.Errorf("Get(theme) = (%q, %v) after recovery", val, ok)
	}
}

func TestMemStore_failureInjection(t *testing.T) {
	s := NewMemStore()
	if err := s.Set("k", "v"); err != nil {
		t.Fatalf("Set() failed, %v", err)
	}

	s.Err = os.ErrPermission
	if err := s.Set("k2", "v"); err == nil {
		t.Error("Set() with Err set must fail")
	}
	if err := s.Delete("k"); err == nil {
		t.Error("Delete() with Err set must fail")
	}
	// reads are unaffected
	if val, ok := s.Get("k"); !ok || val != "v" {
		t.Errorf("Get(k) = (%q, %v), want (v, true)", val, ok)
	}
}
