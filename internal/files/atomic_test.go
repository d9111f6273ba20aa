package files

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestAtomicWrite_Replaces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "settings.json")

	if err := AtomicWrite(path, []byte(`{"model":"a"}`), 0600); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := AtomicWrite(path, []byte(`{"model":"b"}`), 0600); err != nil {
		t.Fatalf("second write: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != `{"model":"b"}` {
		t.Fatalf("content = %s", got)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat: %v", err)
		}
		if info.Mode().Perm() != 0600 {
			t.Fatalf("perm = %v, want 0600", info.Mode().Perm())
		}
	}
}

func TestWriteNew_NeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json.bak")

	first, err := WriteNew(path, []byte("one"), 0600)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := WriteNew(path, []byte("two"), 0600)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if first != path {
		t.Fatalf("first = %q, want %q", first, path)
	}
	if second == first {
		t.Fatalf("second write reused %q", second)
	}
	got, _ := os.ReadFile(first)
	if string(got) != "one" {
		t.Fatalf("first file overwritten: %s", got)
	}
}
