package profile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// runStoreSuite exercises the Service contract against a backend. newStore
// must return an empty store.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) Service) {
	t.Helper()

	t.Run("CreateTrimsAndDerivesKey", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		p, err := store.Create(ctx, CreateParams{
			Username:    "  Jane   Doe ",
			Name:        "Jane",
			Email:       "jane@example.com",
			SocialLinks: SocialLinks{Website: "https://jane.example", TikTok: "@jane"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Key != "jane-doe" {
			t.Errorf("expected key jane-doe, got %q", p.Key)
		}
		if p.Username != "Jane   Doe" {
			t.Errorf("expected trimmed username, got %q", p.Username)
		}
		if p.IsVerified {
			t.Error("expected isVerified false by default")
		}
		if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
			t.Error("expected timestamps to be set")
		}

		got, err := store.GetByUsername(ctx, "Jane   Doe")
		if err != nil {
			t.Fatalf("exact read: %v", err)
		}
		if got.Key != "jane-doe" || got.Email != "jane@example.com" {
			t.Errorf("unexpected profile %+v", got)
		}
		if got.SocialLinks.TikTok != "@jane" || got.SocialLinks.Website != "https://jane.example" {
			t.Errorf("social links not persisted: %+v", got.SocialLinks)
		}
	})

	t.Run("CreateRejectsShortUsername", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		for _, username := range []string{"", "ab", "   ab   ", "\t\n"} {
			if _, err := store.Create(ctx, CreateParams{Username: username}); !errors.Is(err, ErrInvalidUsername) {
				t.Fatalf("%q: expected ErrInvalidUsername, got %v", username, err)
			}
		}
		list, err := store.List(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != 0 {
			t.Fatalf("expected no profiles, got %d", len(list))
		}
	})

	t.Run("CreateDuplicate", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		if _, err := store.Create(ctx, CreateParams{Username: "Jane Doe"}); err != nil {
			t.Fatalf("first create: %v", err)
		}
		for _, username := range []string{"Jane Doe", "JANE DOE", "jane\tdoe"} {
			if _, err := store.Create(ctx, CreateParams{Username: username}); !errors.Is(err, ErrAlreadyExists) {
				t.Fatalf("%q: expected ErrAlreadyExists, got %v", username, err)
			}
		}
		list, _ := store.List(ctx)
		if len(list) != 1 {
			t.Fatalf("expected exactly one profile, got %d", len(list))
		}
	})

	t.Run("ListOrderedByKey", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		for _, username := range []string{"zed", "Mia", "abc"} {
			if _, err := store.Create(ctx, CreateParams{Username: username}); err != nil {
				t.Fatalf("create %q: %v", username, err)
			}
		}
		list, err := store.List(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		want := []string{"abc", "mia", "zed"}
		if len(list) != len(want) {
			t.Fatalf("expected %d profiles, got %d", len(want), len(list))
		}
		for i, p := range list {
			if p.Key != want[i] {
				t.Fatalf("position %d: expected %s, got %s", i, want[i], p.Key)
			}
		}
	})

	t.Run("GetByUsernameIsExact", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		if _, err := store.Create(ctx, CreateParams{Username: "Jane Doe"}); err != nil {
			t.Fatalf("create: %v", err)
		}

		for _, username := range []string{"jane doe", "jane-doe", "Jane  Doe"} {
			if _, err := store.GetByUsername(ctx, username); !errors.Is(err, ErrNotFound) {
				t.Fatalf("%q: expected ErrNotFound, got %v", username, err)
			}
		}
	})

	t.Run("GetByKeyCaseInsensitive", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		if _, err := store.Create(ctx, CreateParams{Username: "Jane Doe", IsVerified: true}); err != nil {
			t.Fatalf("create: %v", err)
		}

		p, err := store.GetByKey(ctx, CaseInsensitiveKey("JANE-doe"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !p.IsVerified {
			t.Error("expected verified profile")
		}
		if _, err := store.GetByKey(ctx, "Jane-Doe"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected verbatim key lookup to miss, got %v", err)
		}
	})

	t.Run("UpdateFullReplace", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		created, err := store.Create(ctx, CreateParams{
			Username:    "abc",
			Name:        "Old",
			Phone:       "+358401234567",
			SocialLinks: SocialLinks{Instagram: "@abc"},
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		time.Sleep(5 * time.Millisecond)

		updated, err := store.Update(ctx, "abc", UpdateParams{Username: "abc", JobTitle: "Chef", IsVerified: true})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if updated.Name != "" || updated.Phone != "" || updated.SocialLinks.Instagram != "" {
			t.Errorf("expected omitted fields cleared, got %+v", updated)
		}
		if updated.JobTitle != "Chef" || !updated.IsVerified {
			t.Errorf("expected new values, got %+v", updated)
		}
		if !updated.CreatedAt.Equal(created.CreatedAt) {
			t.Errorf("expected CreatedAt preserved: %v vs %v", created.CreatedAt, updated.CreatedAt)
		}
		if !updated.UpdatedAt.After(created.UpdatedAt) {
			t.Errorf("expected UpdatedAt to advance: %v vs %v", created.UpdatedAt, updated.UpdatedAt)
		}

		got, err := store.GetByKey(ctx, "abc")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Name != "" || got.JobTitle != "Chef" {
			t.Errorf("stored profile not replaced: %+v", got)
		}
	})

	t.Run("UpdateRekeys", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		if _, err := store.Create(ctx, CreateParams{Username: "abc"}); err != nil {
			t.Fatalf("create: %v", err)
		}

		p, err := store.Update(ctx, "abc", UpdateParams{Username: "abc two"})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if p.Key != "abc-two" {
			t.Fatalf("expected key abc-two, got %q", p.Key)
		}
		if _, err := store.GetByKey(ctx, "abc"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected old key gone, got %v", err)
		}
		if _, err := store.GetByUsername(ctx, "abc two"); err != nil {
			t.Fatalf("expected new username readable: %v", err)
		}
		list, _ := store.List(ctx)
		if len(list) != 1 {
			t.Fatalf("expected one profile after re-key, got %d", len(list))
		}
	})

	t.Run("UpdateErrors", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		for _, username := range []string{"abc", "xyz"} {
			if _, err := store.Create(ctx, CreateParams{Username: username, Name: username}); err != nil {
				t.Fatalf("create %q: %v", username, err)
			}
		}

		if _, err := store.Update(ctx, "missing", UpdateParams{Username: "missing"}); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if _, err := store.GetByKey(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("update must not create, got %v", err)
		}
		for _, params := range []UpdateParams{{Username: "ab"}, {Name: "x"}} {
			if _, err := store.Update(ctx, "missing", params); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound before validation for %+v, got %v", params, err)
			}
		}
		if _, err := store.Update(ctx, "abc", UpdateParams{Username: "ab"}); !errors.Is(err, ErrInvalidUsername) {
			t.Fatalf("expected ErrInvalidUsername, got %v", err)
		}
		if _, err := store.Update(ctx, "abc", UpdateParams{Username: "XYZ"}); !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}

		p, err := store.GetByKey(ctx, "abc")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if p.Name != "abc" {
			t.Fatalf("expected abc untouched, got %+v", p)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		if _, err := store.Create(ctx, CreateParams{Username: "abc"}); err != nil {
			t.Fatalf("create: %v", err)
		}

		if err := store.Delete(ctx, "abc"); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := store.GetByKey(ctx, "abc"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
		if err := store.Delete(ctx, "abc"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound on second delete, got %v", err)
		}
	})

	t.Run("ConcurrentCreate", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		const numGoroutines = 10
		results := make(chan error, numGoroutines)

		var wg sync.WaitGroup
		for range numGoroutines {
			wg.Go(func() {
				_, err := store.Create(ctx, CreateParams{Username: "Concurrent User"})
				results <- err
			})
		}
		wg.Wait()
		close(results)

		var success, alreadyExists int
		for err := range results {
			switch {
			case err == nil:
				success++
			case errors.Is(err, ErrAlreadyExists):
				alreadyExists++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}
		if success != 1 {
			t.Errorf("expected exactly 1 success, got %d", success)
		}
		if alreadyExists != numGoroutines-1 {
			t.Errorf("expected %d already exists, got %d", numGoroutines-1, alreadyExists)
		}
	})
}
