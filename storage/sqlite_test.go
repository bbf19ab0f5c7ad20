package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/tgbotkit/tgbotkit/storage"
)

func openTestDB(t *testing.T) *storage.SQLite {
	t.Helper()

	st, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return st
}

func TestSQLiteRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := openTestDB(t)

	got, err := st.Get(ctx, "missing")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "" {
		t.Errorf("Get(missing) = %q, want empty", got)
	}

	if err := st.Set(ctx, "groups:sudo", "1000\n2000"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := st.Set(ctx, "groups:sudo", "1000"); err != nil {
		t.Fatalf("overwrite Set failed: %v", err)
	}

	got, err = st.Get(ctx, "groups:sudo")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "1000" {
		t.Errorf("Get = %q, want %q", got, "1000")
	}

	if err := st.Delete(ctx, "groups:sudo"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	got, err = st.Get(ctx, "groups:sudo")
	if err != nil {
		t.Fatalf("Get after Delete failed: %v", err)
	}
	if got != "" {
		t.Errorf("Get after Delete = %q, want empty", got)
	}

	if err := st.Delete(ctx, "never-set"); err != nil {
		t.Errorf("Delete of absent key failed: %v", err)
	}
}

func TestSQLiteMaintain(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := openTestDB(t)

	if err := st.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := st.Maintain(ctx); err != nil {
		t.Errorf("Maintain failed: %v", err)
	}

	// Data survives maintenance.
	got, err := st.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "v" {
		t.Errorf("Get after Maintain = %q, want %q", got, "v")
	}
}

func TestSQLiteReopenKeepsData(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	st, err := storage.OpenSQLite(path, nil)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	if err := st.Set(ctx, "k", "persisted"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Reopening applies migrations idempotently and sees the old data.
	st, err = storage.OpenSQLite(path, nil)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer st.Close()

	got, err := st.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "persisted" {
		t.Errorf("Get after reopen = %q, want %q", got, "persisted")
	}
}
