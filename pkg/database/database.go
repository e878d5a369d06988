// Package database manages the PostgreSQL pool backing the self-hosted tabular store.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Ezzyro/Airtable-Test/pkg/config"
)

const (
	defaultMaxConns    = 10
	maxConnLifetime    = time.Hour
	maxConnIdleTime    = 30 * time.Minute
	healthCheckPeriod  = time.Minute
	connectPingTimeout = 5 * time.Second
)

// DB is the store's connection pool.
type DB struct {
	*pgxpool.Pool
	logger *zap.Logger
}

// Open connects using the store's database settings.
func Open(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	db, err := OpenURL(ctx, cfg.ConnectionString(), cfg.MaxConnections, logger)
	if err != nil {
		return nil, err
	}
	db.logger.Info("Connected to database",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.Int32("max_connections", db.Config().MaxConns))
	return db, nil
}

// OpenURL connects to url and pings once before returning. A zero maxConns
// uses the default pool size.
func OpenURL(ctx context.Context, url string, maxConns int32, logger *zap.Logger) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	if maxConns <= 0 {
		maxConns = defaultMaxConns
	}
	poolConfig.MaxConns = maxConns
	poolConfig.MaxConnLifetime = maxConnLifetime
	poolConfig.MaxConnIdleTime = maxConnIdleTime
	poolConfig.HealthCheckPeriod = healthCheckPeriod

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectPingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool, logger: logger.Named("database")}, nil
}

// Close closes the pool.
func (db *DB) Close() {
	db.Pool.Close()
}
