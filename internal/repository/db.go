// Package repository persists classified documents and imported transactions.
// It speaks plain database/sql so the same store runs against an embedded
// SQLite file or a shared Postgres instance, selected by the DSN.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// Store owns the database handle and the two repositories on top of it.
type Store struct {
	db     *sql.DB
	pool   *pgxpool.Pool // nil for sqlite
	logger *slog.Logger
}

// Open connects according to the DSN: postgres:// DSNs go through a pgx pool,
// anything else is treated as a SQLite path. The schema is created when
// missing.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{logger: logger}

	if strings.HasPrefix(cfg.DSN, "postgres://") || strings.HasPrefix(cfg.DSN, "postgresql://") {
		logger.Info("connecting to database", "dialect", "postgres")
		pc, err := pgxpool.ParseConfig(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("parse dsn: %w", err)
		}
		if cfg.MaxConns > 0 {
			pc.MaxConns = cfg.MaxConns
		}
		if cfg.MinConns > 0 {
			pc.MinConns = cfg.MinConns
		}
		if cfg.MaxConnLifetime > 0 {
			pc.MaxConnLifetime = cfg.MaxConnLifetime
		}
		if cfg.MaxConnIdleTime > 0 {
			pc.MaxConnIdleTime = cfg.MaxConnIdleTime
		}
		pc.ConnConfig.RuntimeParams["application_name"] = "cabinet"

		dialCtx := ctx
		if cfg.DialTimeout > 0 {
			var cancel context.CancelFunc
			dialCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
			defer cancel()
		}
		pool, err := pgxpool.NewWithConfig(dialCtx, pc)
		if err != nil {
			return nil, fmt.Errorf("connect: %w", err)
		}
		s.pool = pool
		s.db = stdlib.OpenDBFromPool(pool)
	} else {
		logger.Info("opening database", "dialect", "sqlite", "path", cfg.DSN)
		db, err := sql.Open("sqlite", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		s.db = db
	}

	if err := s.migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	logger.Info("database ready")
	return s, nil
}

// Close releases the database connections.
func (s *Store) Close() {
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("failed to close database", "error", err)
		}
	}
	if s.pool != nil {
		s.pool.Close()
	}
}

// HealthCheck pings the database to catch DSN issues early.
func (s *Store) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return s.db.PingContext(ctx)
}

// Documents returns the document repository.
func (s *Store) Documents() DocumentRepository {
	return &documentRepository{db: s.db, logger: s.logger}
}

// Transactions returns the transaction repository.
func (s *Store) Transactions() TransactionRepository {
	return &transactionRepository{db: s.db, logger: s.logger}
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id          TEXT PRIMARY KEY,
			collection  TEXT NOT NULL,
			doc_type    TEXT NOT NULL,
			reference   TEXT NOT NULL DEFAULT '',
			file_path   TEXT NOT NULL DEFAULT '',
			label       TEXT NOT NULL DEFAULT '',
			file_name   TEXT NOT NULL DEFAULT '',
			attributes  TEXT NOT NULL,
			fetched_at  TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS documents_collection_idx
			ON documents (collection, doc_type)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id      TEXT PRIMARY KEY,
			tx_date TIMESTAMP NOT NULL,
			amount  BIGINT NOT NULL,
			name    TEXT NOT NULL DEFAULT '',
			memo    TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS transactions_date_idx
			ON transactions (tx_date)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
