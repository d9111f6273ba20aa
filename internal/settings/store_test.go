package settings

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func loadStore(t *testing.T, path string) *Store {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s, err := Load(ctx, path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s
}

func TestStore_DefaultsWhenMissing(t *testing.T) {
	s := loadStore(t, filepath.Join(t.TempDir(), FileName))
	if got := s.Snapshot(); got != Defaults() {
		t.Fatalf("Snapshot = %+v, want defaults", got)
	}
	if err := s.Save(); err != nil {
		t.Fatalf("Save of clean store: %v", err)
	}
	if _, err := os.Stat(s.Path()); !os.IsNotExist(err) {
		t.Fatalf("clean store wrote a file")
	}
}

func TestStore_SaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)
	s := loadStore(t, path)

	want := Defaults()
	want.Preprompt = "Fix typos, keep slang:"
	want.Model = "models/gemini-2.5-pro"
	want.TurboMode = true
	want.ShowDuck = false
	if err := s.Apply(want); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	reloaded := loadStore(t, path).Snapshot()
	want.Model = "gemini-2.5-pro"
	if reloaded != want {
		t.Fatalf("reloaded = %+v, want %+v", reloaded, want)
	}
}

func TestStore_WritesBeforeReady(t *testing.T) {
	s := &Store{path: filepath.Join(t.TempDir(), FileName), doc: map[string]any{}, ready: make(chan struct{})}

	if err := s.Set(KeyTurboMode, true); !errors.Is(err, ErrNotReady) {
		t.Fatalf("Set before ready = %v, want ErrNotReady", err)
	}
	if err := s.Save(); !errors.Is(err, ErrNotReady) {
		t.Fatalf("Save before ready = %v, want ErrNotReady", err)
	}
	if got := s.Snapshot(); got != Defaults() {
		t.Fatalf("Snapshot before ready = %+v", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := s.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait = %v, want deadline exceeded", err)
	}

	close(s.ready)
	if err := s.Set(KeyTurboMode, true); err != nil {
		t.Fatalf("Set after ready: %v", err)
	}
}

func TestStore_CorruptFileIsBackedUp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}
	s := loadStore(t, path)
	if got := s.Snapshot(); got != Defaults() {
		t.Fatalf("Snapshot = %+v, want defaults", got)
	}
	backup, err := os.ReadFile(path + ".corrupt")
	if err != nil {
		t.Fatalf("backup missing: %v", err)
	}
	if string(backup) != "{not json" {
		t.Fatalf("backup = %q", backup)
	}
}

func TestStore_WrongTypesFallBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	doc := `{"show_duck": "yes", "model": 7, "turbo_mode": true, "extra": 1}`
	if err := os.WriteFile(path, []byte(doc), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}
	s := loadStore(t, path)
	got := s.Snapshot()
	if !got.ShowDuck || got.Model != Defaults().Model || !got.TurboMode {
		t.Fatalf("Snapshot = %+v", got)
	}
	if strings.Join(s.Keys(), ",") != "extra,model,show_duck,turbo_mode" {
		t.Fatalf("Keys = %v", s.Keys())
	}
}

func TestDir_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(ConfigDirEnv, dir)
	got, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath: %v", err)
	}
	if got != filepath.Join(dir, FileName) {
		t.Fatalf("DefaultPath = %q", got)
	}
}
