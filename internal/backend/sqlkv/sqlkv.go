// Package sqlkv implements storage.Storage as a key/value table in SQLite
// or MySQL.
package sqlkv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"mytasks/internal/log"
)

// Dialect captures the statements that differ between drivers.
type Dialect struct {
	Driver      string
	CreateTable string
	Upsert      string
}

var (
	SQLite = Dialect{
		Driver: "sqlite3",
		CreateTable: `CREATE TABLE IF NOT EXISTS kv_items (
			item_key TEXT PRIMARY KEY,
			item_value TEXT NOT NULL,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,
		Upsert: `INSERT INTO kv_items (item_key, item_value, updated_at)
			VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(item_key) DO UPDATE SET
				item_value = excluded.item_value,
				updated_at = CURRENT_TIMESTAMP`,
	}

	MySQL = Dialect{
		Driver: "mysql",
		CreateTable: `CREATE TABLE IF NOT EXISTS kv_items (
			item_key VARCHAR(191) PRIMARY KEY,
			item_value LONGTEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)`,
		Upsert: `INSERT INTO kv_items (item_key, item_value)
			VALUES (?, ?)
			ON DUPLICATE KEY UPDATE item_value = VALUES(item_value)`,
	}
)

// Storage is a storage.Storage over database/sql.
type Storage struct {
	db      *sql.DB
	dialect Dialect
}

// OpenSQLite opens (creating if needed) the database file at path.
func OpenSQLite(ctx context.Context, path string) (*Storage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	// WAL and a busy timeout let a second process read while the UI writes.
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open(SQLite.Driver, dsn)
	if err != nil {
		return nil, err
	}
	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return New(ctx, db, SQLite)
}

// OpenMySQL connects with dsn.
func OpenMySQL(ctx context.Context, dsn string) (*Storage, error) {
	normalized, err := NormalizeMySQLDSN(dsn)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(MySQL.Driver, normalized)
	if err != nil {
		return nil, err
	}
	return New(ctx, db, MySQL)
}

// NormalizeMySQLDSN validates dsn and enables parseTime.
func NormalizeMySQLDSN(dsn string) (string, error) {
	if dsn == "" {
		return "", errors.New("mysql dsn is empty")
	}
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid mysql dsn: %w", err)
	}
	if cfg.DBName == "" {
		return "", errors.New("invalid mysql dsn: database name is required")
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

// New wraps an open database, verifies the connection and creates the table.
// The Storage owns db and closes it on Close.
func New(ctx context.Context, db *sql.DB, dialect Dialect) (*Storage, error) {
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect %s: %w", dialect.Driver, err)
	}
	if _, err := db.ExecContext(ctx, dialect.CreateTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create kv_items table: %w", err)
	}
	log.Debug().Str("driver", dialect.Driver).Msg("sql storage ready")
	return &Storage{db: db, dialect: dialect}, nil
}

// GetItem implements storage.Storage.
func (s *Storage) GetItem(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT item_value FROM kv_items WHERE item_key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

// SetItem implements storage.Storage.
func (s *Storage) SetItem(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.Upsert, key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// RemoveItem implements storage.Storage.
func (s *Storage) RemoveItem(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv_items WHERE item_key = ?", key); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// Close implements storage.Storage.
func (s *Storage) Close() error {
	return s.db.Close()
}
