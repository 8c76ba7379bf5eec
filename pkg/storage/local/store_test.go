package local

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestStoreSaveAndDelete(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := New(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	store.now = func() time.Time { return time.UnixMilli(1700000000000) }

	name, url, err := store.Save(context.Background(), "../../Invoice.PDF", []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(name, "1700000000000-") || !strings.HasSuffix(name, ".pdf") {
		t.Fatalf("unexpected name %q", name)
	}
	if url != "/uploads/"+name {
		t.Fatalf("unexpected url %q", url)
	}
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil || string(data) != "%PDF-1.4" {
		t.Fatalf("stored file mismatch: %q %v", data, err)
	}

	if err := store.Delete(name); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(name); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
	if err := store.Delete("../escape.pdf"); err == nil {
		t.Fatal("expected traversal name to be rejected")
	}
}

func TestSafeExt(t *testing.T) {
	cases := map[string]string{
		"scan.JPG":          ".jpg",
		"noext":             "",
		"weird.p$f":         "",
		"archive.verylongx": "",
	}
	for in, want := range cases {
		if got := safeExt(in); got != want {
			t.Fatalf("safeExt(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewRequiresDir(t *testing.T) {
	if _, err := New("  "); err == nil {
		t.Fatal("expected error for empty dir")
	}
}
