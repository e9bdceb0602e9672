package file_storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestScoreRoundTrip(t *testing.T) {
	store := NewScoreFileStore(filepath.Join(t.TempDir(), "state", "last_index.txt"))
	ctx := context.Background()

	if err := store.Save(ctx, 42); err != nil {
		t.Fatalf("save: %v", err)
	}
	score, ok, err := store.Load(ctx)
	if err != nil || !ok || score != 42 {
		t.Fatalf("expected 42/true/nil, got %d/%v/%v", score, ok, err)
	}

	if err := store.Save(ctx, 7); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	score, _, _ = store.Load(ctx)
	if score != 7 {
		t.Errorf("expected 7 after overwrite, got %d", score)
	}
}

func TestLoadMissingFile(t *testing.T) {
	store := NewScoreFileStore(filepath.Join(t.TempDir(), "absent.txt"))
	score, ok, err := store.Load(context.Background())
	if err != nil || ok || score != 0 {
		t.Errorf("expected 0/false/nil, got %d/%v/%v", score, ok, err)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "last_index.txt")
	if err := os.WriteFile(path, []byte("abc"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := NewScoreFileStore(path).Load(context.Background()); err == nil || ok {
		t.Errorf("expected parse error, got ok=%v err=%v", ok, err)
	}
}

func TestLoadTrimsWhitespace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "last_index.txt")
	if err := os.WriteFile(path, []byte(" 55\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	score, ok, err := NewScoreFileStore(path).Load(context.Background())
	if err != nil || !ok || score != 55 {
		t.Errorf("expected 55, got %d/%v/%v", score, ok, err)
	}
}
