package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"mgacha-dashboard/internal/logger"

	_ "github.com/go-sql-driver/mysql"
)

// NewMySQLStore opens a MySQL mirror of the gacha collections.
// The DSN must set parseTime=true so log timestamps scan into time.Time.
func NewMySQLStore(dsn string) (*SQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	store, err := newSQLStore(db, DialectMySQL)
	if err != nil {
		db.Close()
		return nil, err
	}

	logger.Log.Info("[MySQLStore] Initialized")
	return store, nil
}
