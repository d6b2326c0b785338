package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/Pesokrava/products-ms/internal/config"
	"github.com/Pesokrava/products-ms/internal/pkg/logger"
)

// NewPostgresDB opens the products database and checks it answers within ctx
func NewPostgresDB(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

// WaitForDB retries NewPostgresDB until it succeeds, attempts run out or ctx is done.
// Every failed attempt is logged with the delay before the next one.
func WaitForDB(ctx context.Context, cfg *config.Config, log *logger.Logger, attempts int, retryDelay time.Duration) (*sqlx.DB, error) {
	log = log.WithFields(map[string]interface{}{
		"host":     cfg.Database.Host,
		"database": cfg.Database.Name,
	})

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		var db *sqlx.DB
		if db, err = NewPostgresDB(ctx, cfg); err == nil {
			return db, nil
		}
		if attempt == attempts {
			break
		}

		log.Warnf("Database not ready (attempt %d/%d), retrying in %s: %v", attempt, attempts, retryDelay, err)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("gave up waiting for database: %w", ctx.Err())
		case <-time.After(retryDelay):
		}
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", attempts, err)
}
