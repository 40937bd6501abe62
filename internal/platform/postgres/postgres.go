// Package postgres opens the gorm connection pool used by the Postgres
// profile store.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Pool limits applied to the underlying *sql.DB.
const (
	maxOpenConns    = 20
	maxIdleConns    = 10
	connMaxIdleTime = 60 * time.Second
	connMaxLifetime = 10 * time.Minute
)

// Options tunes connection establishment.
type Options struct {
	Attempts int           // ping attempts before giving up; 0 means 5
	Backoff  time.Duration // delay between attempts; 0 means 1s
}

// Open connects to dsn and waits until the server answers a ping.
// TranslateError is enabled so unique violations surface as
// gorm.ErrDuplicatedKey.
func Open(ctx context.Context, dsn string, opts Options) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("postgres: DSN is required")
	}
	if opts.Attempts <= 0 {
		opts.Attempts = 5
	}
	if opts.Backoff <= 0 {
		opts.Backoff = time.Second
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
		NowFunc:        func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)

	for attempt := 1; ; attempt++ {
		err = sqlDB.PingContext(ctx)
		if err == nil {
			return db, nil
		}
		if attempt >= opts.Attempts {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("ping postgres after %d attempts: %w", attempt, err)
		}
		select {
		case <-ctx.Done():
			_ = sqlDB.Close()
			return nil, ctx.Err()
		case <-time.After(opts.Backoff):
		}
	}
}

// Close releases the pool behind db.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
