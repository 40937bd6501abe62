package profile

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestMemoryStore(t *testing.T) {
	runStoreSuite(t, func(*testing.T) Service {
		return NewMemoryStore()
	})
}

func TestMemoryReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	p, err := store.Create(ctx, CreateParams{Username: "abc", Name: "Original"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	p.Name = "Mutated"

	got, _ := store.GetByKey(ctx, "abc")
	if got.Name != "Original" {
		t.Fatalf("expected stored copy untouched, got %q", got.Name)
	}
}

func TestMemoryLen(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for _, username := range []string{"abc", "def"} {
		if _, err := store.Create(ctx, CreateParams{Username: username}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if store.Len() != 2 {
		t.Fatalf("expected 2, got %d", store.Len())
	}

	if err := store.Delete(ctx, "abc"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 after delete, got %d", store.Len())
	}
}

func TestMemoryConcurrentDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	_, _ = store.Create(ctx, CreateParams{Username: "delete me"})

	const numGoroutines = 10
	results := make(chan error, numGoroutines)

	var wg sync.WaitGroup
	for range numGoroutines {
		wg.Go(func() {
			results <- store.Delete(ctx, "delete-me")
		})
	}
	wg.Wait()
	close(results)

	var success, notFound int
	for err := range results {
		switch {
		case err == nil:
			success++
		case errors.Is(err, ErrNotFound):
			notFound++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if success != 1 || notFound != numGoroutines-1 {
		t.Fatalf("expected 1 success and %d not found, got %d and %d", numGoroutines-1, success, notFound)
	}
}

func TestMemoryConcurrentRekey(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	for _, username := range []string{"first", "second"} {
		if _, err := store.Create(ctx, CreateParams{Username: username}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	// Both profiles race to the same new key; exactly one may win.
	results := make(chan error, 2)
	var wg sync.WaitGroup
	for _, key := range []string{"first", "second"} {
		wg.Go(func() {
			_, err := store.Update(ctx, key, UpdateParams{Username: "Winner"})
			results <- err
		})
	}
	wg.Wait()
	close(results)

	var success int
	for err := range results {
		if err == nil {
			success++
		} else if !errors.Is(err, ErrAlreadyExists) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if success != 1 {
		t.Fatalf("expected exactly one re-key to win, got %d", success)
	}
	if store.Len() != 2 {
		t.Fatalf("expected 2 profiles, got %d", store.Len())
	}
}
