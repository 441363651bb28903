package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/saskaita/invoice-pipeline/internal/common"
)

// DB bundles the database/sql handle with the pgx pool (when postgres is in
// use) so both can be closed together.
type DB struct {
	SQL  *sql.DB
	pool *pgxpool.Pool
}

// Open connects per config. Postgres goes through a pgx pool wrapped for
// database/sql; sqlite (the zero-config local default) opens directly.
func Open(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.Driver == "postgres" {
		logger.Info("connecting to database", "driver", cfg.Driver)
		pc, err := pgxpool.ParseConfig(cfg.DSN)
		if err != nil {
			logger.Error("failed to parse database config", "error", err)
			return nil, err
		}
		pc.MaxConns = cfg.MaxConns
		pc.MinConns = cfg.MinConns
		pc.MaxConnLifetime = cfg.MaxConnLifetime
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
		pc.ConnConfig.RuntimeParams["application_name"] = "invoice-pipeline"
		if cfg.StatementTimeout > 0 {
			pc.ConnConfig.RuntimeParams["statement_timeout"] = cfg.StatementTimeout.String()
		}

		dialCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
		pool, err := pgxpool.NewWithConfig(dialCtx, pc)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			return nil, err
		}
		db := stdlib.OpenDBFromPool(pool)
		logger.Info("successfully connected to database")
		return &DB{SQL: db, pool: pool}, nil
	}

	logger.Info("opening sqlite database", "dsn", cfg.DSN)
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		logger.Error("failed to open sqlite database", "error", err)
		return nil, err
	}
	return &DB{SQL: db}, nil
}

// Close closes the database connections gracefully
func (d *DB) Close(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("closing database connections")
	if d.SQL != nil {
		if err := d.SQL.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}
	if d.pool != nil {
		d.pool.Close()
	}
	logger.Info("database connections closed")
}

// HealthCheck pings to catch DSN issues early.
func (d *DB) HealthCheck(ctx context.Context, timeout time.Duration, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("pinging database")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := d.SQL.PingContext(ctx); err != nil {
		logger.Error("database ping failed", "error", err)
		return err
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS processed_documents (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	original_name TEXT NOT NULL,
	file_type TEXT NOT NULL,
	compressed_url TEXT NOT NULL,
	original_url TEXT NOT NULL,
	extracted_data TEXT NOT NULL,
	coordinates TEXT NOT NULL,
	status TEXT NOT NULL,
	seller_code TEXT NOT NULL DEFAULT '',
	invoice_number TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_processed_documents_user
	ON processed_documents(user_id);
CREATE INDEX IF NOT EXISTS idx_processed_documents_dup
	ON processed_documents(user_id, seller_code, invoice_number);
`

// EnsureSchema creates the processed_documents table when missing. The DDL is
// the portable subset both backends accept. No uniqueness is enforced on
// (seller_code, invoice_number); duplicates are an advisory, not a constraint.
func (d *DB) EnsureSchema(ctx context.Context) error {
	_, err := d.SQL.ExecContext(ctx, schemaDDL)
	return err
}
