package repository

import (
	"fmt"

	"mgacha-dashboard/internal/config"
)

// New opens the store selected by cfg.Type and wraps it with instrumentation.
func New(cfg config.StoreConfig) (GachaStore, error) {
	var (
		store GachaStore
		err   error
	)

	switch cfg.Type {
	case "mongodb", "mongo":
		store, err = NewMongoStore(cfg.MongoURI, cfg.MongoDatabase)
	case "postgres", "postgresql":
		store, err = NewPostgresStore(cfg.PostgresDSN())
	case "mysql":
		store, err = NewMySQLStore(cfg.MySQLDSN())
	case "sqlite":
		store, err = NewSQLiteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported store type %q", cfg.Type)
	}
	if err != nil {
		return nil, err
	}

	return NewInstrumentedStore(store, cfg.QueryTimeout), nil
}
