package database

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// DB is the shared connection pool, nil until InitDatabase succeeds.
var DB *sql.DB

// ErrNoDatabase is returned when a database feature is used without DATABASE_URL.
var ErrNoDatabase = errors.New("DATABASE_URL is not set")

// InitDatabase opens and pings the Postgres database at dsn.
func InitDatabase(dsn string) error {
	if dsn == "" {
		return ErrNoDatabase
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	DB = db
	logrus.Info("Successfully connected to database")
	return nil
}

// CreateTables creates the price_checks table if it doesn't exist.
func CreateTables() error {
	if DB == nil {
		return ErrNoDatabase
	}

	queries := []string{
		`CREATE TABLE IF NOT EXISTS price_checks (
			id SERIAL PRIMARY KEY,
			url TEXT NOT NULL,
			kind VARCHAR(16) NOT NULL,
			path VARCHAR(32) NOT NULL,
			regular TEXT NOT NULL DEFAULT '',
			discounted TEXT NOT NULL DEFAULT '',
			regular_value DECIMAL(12,2) DEFAULT 0,
			discounted_value DECIMAL(12,2) DEFAULT 0,
			currency VARCHAR(8) DEFAULT '',
			line TEXT NOT NULL,
			duration_ms INTEGER DEFAULT 0,
			checked_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_price_checks_url ON price_checks (url, checked_at DESC)`,
	}

	for _, query := range queries {
		if _, err := DB.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// CloseDatabase closes the database connection
func CloseDatabase() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}
