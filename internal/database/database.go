package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/dbparity/dbparity/internal/config"
)

// Adapter defines the read-only surface the comparison engine consumes. It
// deliberately knows nothing about environments, pooling policy or client
// bootstrap; callers hand the engine an already-open Adapter per side.
type Adapter interface {
	FetchColumns(ctx context.Context, tableName string) ([]ColumnInfo, error)
	CountRows(ctx context.Context, tableName string) (int64, error)
	SelectRows(ctx context.Context, tableName string, columns, orderBy []string, offset, limit int) ([]map[string]interface{}, error)
	Dialect() string
	Ping(ctx context.Context) error
	Close() error
}

var _ Adapter = (*DB)(nil)

// DB holds the database connection pool and dialect handler.
type DB struct {
	Pool    *sql.DB
	Handler DialectHandler
	Config  config.DatabaseConfig
}

// ColumnInfo holds catalog metadata for one column, in the database's native
// type vocabulary. Length, Precision and Scale are invalid where the catalog
// reports NULL.
type ColumnInfo struct {
	Name      string
	DataType  string
	Nullable  bool
	Length    sql.NullInt64
	Precision sql.NullInt64
	Scale     sql.NullInt64
}

// DialectHandler implements the per-database specifics of pool creation and
// catalog/row queries.
type DialectHandler interface {
	CreateStandardPool(cfg config.DatabaseConfig) (*sql.DB, error)
	CreateCloudSQLPool(cfg config.DatabaseConfig) (*sql.DB, error)
	QuoteIdentifier(name string) string
	ListColumns(ctx context.Context, db *DB, tableName string) ([]ColumnInfo, error)
	CountRows(ctx context.Context, db *DB, tableName string) (int64, error)
	SelectRows(ctx context.Context, db *DB, tableName string, columns, orderBy []string, offset, limit int) ([]map[string]interface{}, error)
}

var (
	dialectHandlers = make(map[string]DialectHandler)
	mu              sync.RWMutex
)

func RegisterDialectHandler(dialect string, handler DialectHandler) {
	mu.Lock()
	defer mu.Unlock()
	dialectHandlers[dialect] = handler
}

func GetDialectHandler(dialect string) (DialectHandler, error) {
	mu.RLock()
	defer mu.RUnlock()
	handler, ok := dialectHandlers[dialect]
	if !ok {
		return nil, fmt.Errorf("unsupported database dialect: %s", dialect)
	}
	return handler, nil
}

// New opens a connection pool for the given configuration and verifies it
// with a ping.
func New(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	handler, err := GetDialectHandler(cfg.Dialect)
	if err != nil {
		return nil, err
	}

	var pool *sql.DB
	if strings.HasPrefix(cfg.Dialect, "cloudsql") {
		pool, err = handler.CreateCloudSQLPool(cfg)
	} else {
		pool, err = handler.CreateStandardPool(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool for dialect %s: %w", cfg.Dialect, err)
	}

	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database (ping failed) for dialect %s: %w", cfg.Dialect, err)
	}

	return &DB{
		Pool:    pool,
		Handler: handler,
		Config:  cfg,
	}, nil
}

func (db *DB) Dialect() string {
	return db.Config.Dialect
}

func (db *DB) Ping(ctx context.Context) error {
	if db.Pool == nil {
		return fmt.Errorf("database connection pool is not initialized")
	}
	return db.Pool.PingContext(ctx)
}

func (db *DB) Close() error {
	if db.Pool != nil {
		return db.Pool.Close()
	}
	return nil
}

func (db *DB) FetchColumns(ctx context.Context, tableName string) ([]ColumnInfo, error) {
	if db.Handler == nil {
		return nil, fmt.Errorf("dialect handler not initialized")
	}
	return db.Handler.ListColumns(ctx, db, tableName)
}

func (db *DB) CountRows(ctx context.Context, tableName string) (int64, error) {
	if db.Handler == nil {
		return 0, fmt.Errorf("dialect handler not initialized")
	}
	return db.Handler.CountRows(ctx, db, tableName)
}

func (db *DB) SelectRows(ctx context.Context, tableName string, columns, orderBy []string, offset, limit int) ([]map[string]interface{}, error) {
	if db.Handler == nil {
		return nil, fmt.Errorf("dialect handler not initialized")
	}
	return db.Handler.SelectRows(ctx, db, tableName, columns, orderBy, offset, limit)
}

// ScanRowMaps drains rows into one map per row keyed by column name. All
// dialect handlers share it so driver value representations reach the engine
// unchanged.
func ScanRowMaps(rows *sql.Rows) ([]map[string]interface{}, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("error reading result columns: %w", err)
	}

	var out []map[string]interface{}
	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		record := make(map[string]interface{}, len(cols))
		for i, col := range cols {
			record[col] = values[i]
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}

// QuoteAll applies the handler's identifier quoting to every name.
func QuoteAll(h DialectHandler, names []string) []string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = h.QuoteIdentifier(n)
	}
	return quoted
}
