package profile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/janisto/profile-directory/internal/testutil"
)

func setupPostgresTest(t *testing.T) (*PostgresStore, *gorm.DB) {
	t.Helper()
	dsn := testutil.EnvOrSkip(t, "TEST_DATABASE_URL")

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	store := NewPostgresStore(db)
	ctx := context.Background()
	if err := store.AutoMigrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.WithContext(ctx).Exec("TRUNCATE TABLE profiles").Error; err != nil {
		t.Fatalf("truncate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return store, db
}

func TestPostgresStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) Service {
		store, _ := setupPostgresTest(t)
		return store
	})
}

func TestPostgresRowWithoutProfileKeyNeverMatches(t *testing.T) {
	store, db := setupPostgresTest(t)
	ctx := context.Background()

	if err := db.WithContext(ctx).Exec(
		"INSERT INTO profiles (profile_key, username, is_verified) VALUES ('', 'Legacy User', true)",
	).Error; err != nil {
		t.Fatalf("seed legacy row: %v", err)
	}

	if _, err := store.GetByKey(ctx, "legacy-user"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTranslateWriteError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"gorm duplicate", gorm.ErrDuplicatedKey, ErrAlreadyExists},
		{"pg unique violation", &pgconn.PgError{Code: "23505"}, ErrAlreadyExists},
		{"pg other", &pgconn.PgError{Code: "23502"}, nil},
		{"not found passes through", ErrNotFound, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateWriteError(tt.err)
			if tt.want == nil {
				if errors.Is(got, ErrAlreadyExists) {
					t.Fatalf("expected error to pass through, got %v", got)
				}
				return
			}
			if !errors.Is(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
