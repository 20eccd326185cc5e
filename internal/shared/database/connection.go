package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"planets-galaxymap/internal/shared/config"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DB struct {
	*sql.DB
	driver string
}

type Tx struct {
	*sql.Tx
	db *DB
}

type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func (db *DB) Driver() string {
	return db.driver
}

// Rebind rewrites the $N placeholders used throughout the repositories into
// the ?N form understood by SQLite.
func (db *DB) Rebind(query string) string {
	if db.driver != DriverSQLite {
		return query
	}

	var b strings.Builder
	b.Grow(len(query))
	inString := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inString = !inString
			b.WriteByte(c)
		case c == '$' && !inString && i+1 < len(query) && isDigit(query[i+1]):
			b.WriteByte('?')
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func (db *DB) BeginTxContext(ctx context.Context) (*Tx, error) {
	tx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &Tx{Tx: tx, db: db}, nil
}

// RollbackUnlessDone is meant to be deferred right after BeginTxContext.
func (tx *Tx) RollbackUnlessDone(logger *slog.Logger) {
	if err := tx.Tx.Rollback(); err != nil && err != sql.ErrTxDone {
		logger.Error("Failed to rollback transaction", "error", err)
	}
}

// Connect opens the store selected by cfg.Data.Store. It is an error to
// call it for the XML store.
func Connect(ctx context.Context, cfg *config.Config) (*DB, error) {
	switch cfg.Data.Store {
	case config.StorePostgres:
		return ConnectPostgres(ctx, cfg.Database, cfg.ConnectionString())
	case config.StoreSQLite:
		return OpenSQLite(ctx, cfg.Database.SQLitePath)
	default:
		return nil, fmt.Errorf("store %q is not backed by a database", cfg.Data.Store)
	}
}

func ConnectPostgres(ctx context.Context, cfg config.DatabaseConfig, dsn string) (*DB, error) {
	logger := slog.With("component", "database", "operation", "connect", "driver", DriverPostgres)
	logger.Debug("Initializing database connection")

	logger.Info("Connecting to database",
		"host", cfg.Host,
		"port", cfg.Port,
		"user", cfg.User,
		"database", cfg.Name,
		"sslmode", cfg.SSLMode,
		"max_open_conns", cfg.MaxOpenConns,
		"max_idle_conns", cfg.MaxIdleConns,
	)

	sqlDB, err := sql.Open(DriverPostgres, dsn)
	if err != nil {
		logger.Error("Failed to open database connection",
			"error", err, "host", cfg.Host, "database", cfg.Name)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return ping(ctx, logger, &DB{DB: sqlDB, driver: DriverPostgres})
}

// OpenSQLite opens the database file at path. ":memory:" yields a private
// in-memory database.
func OpenSQLite(ctx context.Context, path string) (*DB, error) {
	logger := slog.With("component", "database", "operation", "connect", "driver", DriverSQLite, "path", path)

	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open(DriverSQLite, dsn)
	if err != nil {
		logger.Error("Failed to open database", "error", err)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to :memory: is a database of its own.
	sqlDB.SetMaxOpenConns(1)

	return ping(ctx, logger, &DB{DB: sqlDB, driver: DriverSQLite})
}

func ping(ctx context.Context, logger *slog.Logger, db *DB) (*DB, error) {
	logger.Debug("Testing database connection with ping")
	if err := db.PingContext(ctx); err != nil {
		logger.Error("Failed to ping database", "error", err)
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("Failed to close database after ping failure", "close_error", closeErr, "ping_error", err)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database connection established successfully")
	return db, nil
}
