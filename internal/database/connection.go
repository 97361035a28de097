package database

import (
	"database/sql"
	"fmt"

	"github.com/chipchip/sgl-tracker/internal/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver, registers as "sqlite"
)

func init() {
	// sqlx only knows the mattn driver name; modernc uses "sqlite"
	sqlx.BindDriver(config.DriverSQLite, sqlx.QUESTION)
}

// DB interface defines database operations
type DB interface {
	Get(dest interface{}, query string, args ...interface{}) error
	Select(dest interface{}, query string, args ...interface{}) error
	Exec(query string, args ...interface{}) (sql.Result, error)
	Rebind(query string) string
	Ping() error
	Close() error
}

// SQLDB implements the DB interface using sqlx
type SQLDB struct {
	*sqlx.DB
}

// NewConnection creates a new database connection for the sqlite or postgres driver
func NewConnection(cfg config.DatabaseConfig) (DB, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	switch cfg.Driver {
	case config.DriverSQLite, config.DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported SQL driver: %s", cfg.Driver)
	}

	db, err := sqlx.Connect(cfg.Driver, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Driver == config.DriverSQLite {
		// SQLite allows one writer; a single connection also keeps :memory: databases shared
		db.SetMaxOpenConns(1)
		if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to configure sqlite: %w", err)
		}
	} else {
		db.SetMaxOpenConns(cfg.MaxConnections)
		db.SetMaxIdleConns(cfg.MaxIdleConnections)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		db.SetConnMaxIdleTime(cfg.ConnMaxLifetime / 2)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLDB{DB: db}, nil
}

// Get wraps sqlx.Get
func (db *SQLDB) Get(dest interface{}, query string, args ...interface{}) error {
	return db.DB.Get(dest, query, args...)
}

// Select wraps sqlx.Select
func (db *SQLDB) Select(dest interface{}, query string, args ...interface{}) error {
	return db.DB.Select(dest, query, args...)
}

// Exec wraps sqlx.Exec
func (db *SQLDB) Exec(query string, args ...interface{}) (sql.Result, error) {
	return db.DB.Exec(query, args...)
}

// Rebind converts ? placeholders to the driver's bindvar style
func (db *SQLDB) Rebind(query string) string {
	return db.DB.Rebind(query)
}

// Ping wraps sqlx.Ping
func (db *SQLDB) Ping() error {
	return db.DB.Ping()
}

// Close wraps sqlx.Close
func (db *SQLDB) Close() error {
	return db.DB.Close()
}
