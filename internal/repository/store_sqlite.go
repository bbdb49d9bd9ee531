package repository

import (
	"database/sql"
	"fmt"

	"mgacha-dashboard/internal/logger"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// NewSQLiteStore opens a SQLite mirror of the gacha collections.
// dbPath is a file path (e.g., "./data/gacha.db") or ":memory:".
func NewSQLiteStore(dbPath string) (*SQLStore, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		dsn = dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// A single connection keeps :memory: databases shared across queries.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store, err := newSQLStore(db, DialectSQLite)
	if err != nil {
		db.Close()
		return nil, err
	}

	logger.Log.Infof("[SQLiteStore] Initialized with database: %s", dbPath)
	return store, nil
}
