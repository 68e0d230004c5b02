// Package database manages the PostgreSQL connection pool and migrations.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bookhub/internal/config"

	"github.com/cenkalti/backoff/v4"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Manager wraps the connection pool with lifecycle helpers
type Manager struct {
	db     *sql.DB
	config config.DatabaseConfig
	logger *zap.Logger
}

// NewManager opens the connection pool and verifies connectivity,
// retrying with exponential backoff so the server survives a database
// that comes up a little later than it does.
func NewManager(cfg config.DatabaseConfig, logger *zap.Logger) (*Manager, error) {
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = 30 * time.Second

	err = backoff.RetryNotify(
		func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return db.PingContext(ctx)
		},
		policy,
		func(err error, next time.Duration) {
			logger.Warn("Database not ready, retrying",
				zap.Error(err),
				zap.Duration("next_attempt_in", next),
			)
		},
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Info("Database connection established",
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.MaxIdleConns),
	)

	return &Manager{
		db:     db,
		config: cfg,
		logger: logger,
	}, nil
}

// ===============================
// QUERY PASS-THROUGHS
// ===============================

// ExecContext executes a statement
func (m *Manager) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return m.db.ExecContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows
func (m *Manager) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return m.db.QueryContext(ctx, query, args...)
}

// QueryRowContext executes a query that returns a single row
func (m *Manager) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return m.db.QueryRowContext(ctx, query, args...)
}

// BeginTx starts a transaction
func (m *Manager) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return m.db.BeginTx(ctx, opts)
}

// DB exposes the underlying pool for integrations that need it
func (m *Manager) DB() *sql.DB {
	return m.db
}

// ===============================
// MIGRATIONS
// ===============================

// Migrate runs pending migrations. A separate connection is used so the
// migrator closing its driver does not tear down the main pool.
func (m *Manager) Migrate(migrationsPath string) error {
	migrationDB, err := sql.Open("postgres", m.config.URL)
	if err != nil {
		return fmt.Errorf("failed to create migration connection: %w", err)
	}
	defer migrationDB.Close()

	if err := migrationDB.Ping(); err != nil {
		return fmt.Errorf("migration connection failed: %w", err)
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer migrator.Close()

	currentVersion, dirty, err := migrator.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}
	if dirty {
		return fmt.Errorf("database is in dirty state at version %d", currentVersion)
	}

	if err := migrator.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	newVersion, _, err := migrator.Version()
	if err != nil {
		return fmt.Errorf("failed to get new migration version: %w", err)
	}

	m.logger.Info("Migrations completed successfully",
		zap.Uint("from_version", currentVersion),
		zap.Uint("to_version", newVersion),
	)
	return nil
}

// ===============================
// HEALTH & LIFECYCLE
// ===============================

// HealthStatus reports connectivity and pool usage
type HealthStatus struct {
	Healthy         bool          `json:"healthy"`
	Latency         time.Duration `json:"latency"`
	OpenConnections int           `json:"open_connections"`
	InUse           int           `json:"in_use"`
	Idle            int           `json:"idle"`
	Error           string        `json:"error,omitempty"`
}

// Health pings the database and reports pool statistics
func (m *Manager) Health(ctx context.Context) HealthStatus {
	start := time.Now()
	err := m.db.PingContext(ctx)
	stats := m.db.Stats()

	status := HealthStatus{
		Healthy:         err == nil,
		Latency:         time.Since(start),
		OpenConnections: stats.OpenConnections,
		InUse:           stats.InUse,
		Idle:            stats.Idle,
	}
	if err != nil {
		status.Error = err.Error()
	}
	return status
}

// Close shuts down the connection pool
func (m *Manager) Close() error {
	m.logger.Info("Closing database connection pool")
	return m.db.Close()
}
