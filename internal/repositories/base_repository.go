package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bookhub/internal/database"

	"go.uber.org/zap"
)

// BaseRepository provides common database operations shared by all
// repositories: query execution with slow-query logging, transactions and
// count helpers.
type BaseRepository struct {
	db     *database.Manager
	logger *zap.Logger
}

// NewBaseRepository creates a new base repository.
func NewBaseRepository(db *database.Manager, logger *zap.Logger) *BaseRepository {
	return &BaseRepository{
		db:     db,
		logger: logger,
	}
}

// ===============================
// CORE DATABASE OPERATIONS
// ===============================

// ExecContext executes a statement, logging slow executions and failures.
func (r *BaseRepository) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	result, err := r.db.ExecContext(ctx, query, args...)

	duration := time.Since(start)
	if duration > 100*time.Millisecond {
		r.logger.Warn("Slow query detected",
			zap.String("query", r.truncateQuery(query)),
			zap.Duration("duration", duration),
		)
	}

	if err != nil {
		r.logger.Error("Query execution failed",
			zap.String("query", r.truncateQuery(query)),
			zap.Error(err),
		)
	}

	return result, err
}

// QueryContext executes a query that returns rows.
func (r *BaseRepository) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := r.db.QueryContext(ctx, query, args...)

	duration := time.Since(start)
	if duration > 100*time.Millisecond {
		r.logger.Warn("Slow query detected",
			zap.String("query", r.truncateQuery(query)),
			zap.Duration("duration", duration),
		)
	}

	if err != nil {
		r.logger.Error("Query execution failed",
			zap.String("query", r.truncateQuery(query)),
			zap.Error(err),
		)
	}

	return rows, err
}

// QueryRowContext executes a query that returns a single row.
func (r *BaseRepository) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := r.db.QueryRowContext(ctx, query, args...)

	duration := time.Since(start)
	if duration > 50*time.Millisecond {
		r.logger.Warn("Slow single-row query detected",
			zap.String("query", r.truncateQuery(query)),
			zap.Duration("duration", duration),
		)
	}

	return row
}

// BeginTx starts a new transaction.
func (r *BaseRepository) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return r.db.BeginTx(ctx, opts)
}

// ===============================
// TRANSACTION HELPERS
// ===============================

// WithTransaction executes fn within a transaction, rolling back on error
// or panic.
func (r *BaseRepository) WithTransaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			r.logger.Error("Failed to rollback transaction",
				zap.NamedError("rollback_error", rbErr),
				zap.Error(err),
			)
		}
		return err
	}

	return tx.Commit()
}

// ===============================
// COUNT & UTILITY HELPERS
// ===============================

// GetTotalCount executes a count query.
func (r *BaseRepository) GetTotalCount(ctx context.Context, countQuery string, args ...interface{}) (int64, error) {
	var total int64
	err := r.QueryRowContext(ctx, countQuery, args...).Scan(&total)
	return total, err
}

// truncateQuery truncates long queries for logging.
func (r *BaseRepository) truncateQuery(query string) string {
	const maxLength = 200
	if len(query) <= maxLength {
		return query
	}
	return query[:maxLength] + "..."
}

// IsNotFound checks if error is a "not found" error.
func (r *BaseRepository) IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// HandleNotFound converts sql.ErrNoRows to nil for optional queries.
func (r *BaseRepository) HandleNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return err
}

// GetDB returns the underlying database manager.
func (r *BaseRepository) GetDB() *database.Manager {
	return r.db
}

// GetLogger returns the logger instance.
func (r *BaseRepository) GetLogger() *zap.Logger {
	return r.logger
}
