package storage

import (
	"context"
	"errors"
	"os"
	"testing"
)

func TestLocalStorage_PutGet(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create local storage: %v", err)
	}

	ctx := context.Background()
	key := "data/recipes.csv"
	content := []byte(",Recipe\n0,Soup\n")

	version, err := storage.Put(ctx, key, content)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if version == "" {
		t.Error("expected non-empty version")
	}

	exists, err := storage.Exists(ctx, key)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("expected object to exist")
	}

	got, gotVersion, err := storage.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q, want %q", got, content)
	}
	if gotVersion != version {
		t.Errorf("version mismatch: got %q, want %q", gotVersion, version)
	}

	if err := storage.Delete(ctx, key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	exists, err = storage.Exists(ctx, key)
	if err != nil {
		t.Fatalf("Exists after delete failed: %v", err)
	}
	if exists {
		t.Error("expected object to not exist after delete")
	}
}

func TestLocalStorage_PutReplacesWholeObject(t *testing.T) {
	baseDir := t.TempDir()
	storage, err := NewLocalStorage(baseDir)
	if err != nil {
		t.Fatalf("failed to create local storage: %v", err)
	}

	ctx := context.Background()
	if _, err := storage.Put(ctx, "obj", []byte("a much longer first version")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	v2, err := storage.Put(ctx, "obj", []byte("short"))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, version, err := storage.Get(ctx, "obj")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "short" {
		t.Errorf("got %q, want %q", got, "short")
	}
	if version != v2 {
		t.Errorf("version mismatch: got %q, want %q", version, v2)
	}

	// No temp files left behind.
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 file in base dir, got %d", len(entries))
	}
}

func TestLocalStorage_ConditionalPut(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create local storage: %v", err)
	}

	ctx := context.Background()
	key := "conditional/object.csv"

	// Empty version requires a missing object
	version, err := storage.ConditionalPut(ctx, key, []byte("v1"), "")
	if err != nil {
		t.Fatalf("initial ConditionalPut failed: %v", err)
	}
	if _, err := storage.ConditionalPut(ctx, key, []byte("v1"), ""); !errors.Is(err, ErrPreconditionFailed) {
		t.Errorf("expected ErrPreconditionFailed for existing object, got %v", err)
	}

	// Conditional put with correct version should succeed
	if _, err := storage.ConditionalPut(ctx, key, []byte("v2"), version); err != nil {
		t.Fatalf("ConditionalPut with correct version failed: %v", err)
	}

	// The old version is now stale
	_, err = storage.ConditionalPut(ctx, key, []byte("v3"), version)
	if !errors.Is(err, ErrPreconditionFailed) {
		t.Errorf("expected ErrPreconditionFailed, got %v", err)
	}

	got, _, err := storage.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "v2" {
		t.Errorf("got %q, want %q", got, "v2")
	}

	if _, err := storage.ConditionalPut(ctx, "missing", []byte("x"), "some-version"); !errors.Is(err, ErrPreconditionFailed) {
		t.Errorf("expected ErrPreconditionFailed for missing object, got %v", err)
	}
}

func TestLocalStorage_GetNotFound(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create local storage: %v", err)
	}

	_, _, err = storage.Get(context.Background(), "nonexistent/object.csv")
	if !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("expected ErrObjectNotFound, got %v", err)
	}
}

func TestLocalStorage_DeleteMissingIsNoop(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create local storage: %v", err)
	}
	if err := storage.Delete(context.Background(), "nope"); err != nil {
		t.Errorf("Delete of missing object returned %v", err)
	}
}

func TestLocalStorage_CanceledContext(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create local storage: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := storage.Put(ctx, "obj", []byte("x")); !errors.Is(err, context.Canceled) {
		t.Errorf("Put: expected context.Canceled, got %v", err)
	}
	if _, _, err := storage.Get(ctx, "obj"); !errors.Is(err, context.Canceled) {
		t.Errorf("Get: expected context.Canceled, got %v", err)
	}
}

func TestContentVersion(t *testing.T) {
	a := contentVersion([]byte("alpha"))
	b := contentVersion([]byte("beta"))
	if a == b {
		t.Error("different content should produce different versions")
	}
	if a != contentVersion([]byte("alpha")) {
		t.Error("version should be deterministic")
	}
	if len(a) != 32 {
		t.Errorf("expected 32 hex chars, got %d", len(a))
	}
}
