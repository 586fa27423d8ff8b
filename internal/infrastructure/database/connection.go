package database

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/appcanvas/builder/pkg/config"
	"github.com/appcanvas/builder/pkg/logutils"
)

// Connection wraps the SQL pool together with its dialect.
// sql.DB is already safe for concurrent use, so no extra locking is added here.
type Connection struct {
	db     *sql.DB
	driver string
}

var tlsOnce sync.Once

// Connect opens the database named by cfg and pings it
func Connect(cfg *config.Config) (*Connection, error) {
	switch cfg.Database.Driver {
	case config.DriverMySQL:
		dsn := cfg.Database.DSN
		if dsn == "" {
			dsn = tidbDSN(cfg)
		}
		return Open(config.DriverMySQL, dsn)
	case config.DriverSQLite:
		return Open(config.DriverSQLite, cfg.Database.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// Open connects with an explicit driver and DSN
func Open(driver, dsn string) (*Connection, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	switch driver {
	case config.DriverSQLite:
		// A single writer avoids SQLITE_BUSY; in-memory databases also live per connection.
		db.SetMaxOpenConns(1)
	default:
		// MaxIdleConns matches MaxOpenConns so pooled connections are not churned.
		db.SetMaxOpenConns(100)
		db.SetMaxIdleConns(100)
		db.SetConnMaxLifetime(5 * time.Minute)
		db.SetConnMaxIdleTime(3 * time.Minute)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Connection{db: db, driver: driver}, nil
}

func tidbDSN(cfg *config.Config) string {
	host := cfg.Database.Host
	tlsParam := ""
	if host != "" && host != "127.0.0.1" && host != "localhost" {
		// Remote hosts such as TiDB Cloud require TLS with the server name set.
		tlsOnce.Do(func() {
			if err := mysql.RegisterTLSConfig("tidb", &tls.Config{
				MinVersion: tls.VersionTLS12,
				ServerName: host,
			}); err != nil {
				logutils.Log.Errorf("Failed to register TLS config: %v", err)
			}
		})
		tlsParam = "&tls=tidb"
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local%s",
		cfg.Database.User, cfg.Database.Password, host, cfg.Database.Port, cfg.Database.Name, tlsParam)
}

// Driver is config.DriverMySQL or config.DriverSQLite
func (c *Connection) Driver() string {
	return c.driver
}

// QueryContext executes a SELECT query with context
func (c *Connection) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return c.db.QueryContext(ctx, query, args...)
}

// QueryRowContext executes a query that returns at most one row
func (c *Connection) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return c.db.QueryRowContext(ctx, query, args...)
}

// ExecContext executes an INSERT, UPDATE, or DELETE query with context
func (c *Connection) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return c.db.ExecContext(ctx, query, args...)
}

// BeginTx starts a new transaction with context
func (c *Connection) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return c.db.BeginTx(ctx, opts)
}

// DB returns the underlying *sql.DB
func (c *Connection) DB() *sql.DB {
	return c.db
}

// Close closes the database connection
func (c *Connection) Close() error {
	return c.db.Close()
}
