package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Open connects the configured durable store. Driver is one of sqlite,
// mysql, pgx; for sqlite the DSN is a file path.
func Open(driver, dsn string, maxOpen, maxIdle int, maxLifetime time.Duration) (*sql.DB, error) {
	if driver == "sqlite" {
		return OpenSQLite(dsn, maxOpen, maxIdle, maxLifetime)
	}
	if driver == "mysql" {
		dsn = mysqlDSN(dsn)
	}
	database, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	database.SetMaxOpenConns(maxOpen)
	database.SetMaxIdleConns(maxIdle)
	database.SetConnMaxLifetime(maxLifetime)
	if err := database.Ping(); err != nil {
		return nil, err
	}
	return database, nil
}

func OpenSQLite(path string, maxOpen, maxIdle int, maxLifetime time.Duration) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	database, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	database.SetMaxOpenConns(maxOpen)
	database.SetMaxIdleConns(maxIdle)
	database.SetConnMaxLifetime(maxLifetime)
	if err := database.Ping(); err != nil {
		return nil, err
	}
	return database, nil
}

// mysqlDSN forces parseTime on, since every datetime column here scans
// into time.Time and go-sql-driver/mysql returns []byte without it.
func mysqlDSN(dsn string) string {
	if strings.Contains(dsn, "parseTime=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&parseTime=true"
	}
	return dsn + "?parseTime=true"
}

// Placeholder returns a function producing the driver's positional
// parameter marker ($1, $2, ... for pgx, ? otherwise).
func Placeholder(driver string) func(i int) string {
	if strings.EqualFold(driver, "pgx") {
		return func(i int) string { return fmt.Sprintf("$%d", i) }
	}
	return func(int) string { return "?" }
}
