package storage_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/tgbotkit/tgbotkit/storage"
)

func TestMemory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := storage.NewMemory()

	got, err := st.Get(ctx, "missing")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "" {
		t.Errorf("Get(missing) = %q, want empty", got)
	}

	if err := st.Set(ctx, "k", "v1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := st.Set(ctx, "k", "v2"); err != nil {
		t.Fatalf("overwrite Set failed: %v", err)
	}

	got, err = st.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "v2" {
		t.Errorf("Get = %q, want %q", got, "v2")
	}

	if err := st.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	got, err = st.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get after Delete failed: %v", err)
	}
	if got != "" {
		t.Errorf("Get after Delete = %q, want empty", got)
	}

	// Deleting an absent key is not an error.
	if err := st.Delete(ctx, "never-set"); err != nil {
		t.Errorf("Delete of absent key failed: %v", err)
	}
}

func TestMemoryConcurrentAccess(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := storage.NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", i%4)
			_ = st.Set(ctx, key, fmt.Sprintf("value-%d", i))
			_, _ = st.Get(ctx, key)
		}(i)
	}
	wg.Wait()
}
