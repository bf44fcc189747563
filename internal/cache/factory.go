package cache

import (
	"fmt"
	"log/slog"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// StoreConfig selects and configures the cache store backend.
type StoreConfig struct {
	Type        string // "memory", "sqlite" or "postgres"
	SqlitePath  string // file path; empty means in-memory SQLite
	PostgresDSN string
}

// NewStore creates a cache store from configuration. A persistent backend
// that fails to open degrades to the in-memory store rather than leaving the
// kiosk without any cache.
func NewStore(cfg StoreConfig, log *slog.Logger) (Store, error) {
	switch cfg.Type {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		db, err := openSqlite(cfg.SqlitePath)
		if err != nil {
			log.Error("Failed to open SQLite cache, using in-memory store", "path", cfg.SqlitePath, "error", err)
			return NewMemoryStore(), nil
		}
		store, err := NewGormStore(db)
		if err != nil {
			log.Error("Failed to migrate SQLite cache, using in-memory store", "error", err)
			return NewMemoryStore(), nil
		}
		log.Info("Using SQLite cache store", "path", cfg.SqlitePath)
		return store, nil
	case "postgres":
		db, err := gorm.Open(postgres.New(postgres.Config{
			DSN:                  cfg.PostgresDSN,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			SkipDefaultTransaction: true,
			Logger:                 logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			log.Error("Failed to open Postgres cache, using in-memory store", "error", err)
			return NewMemoryStore(), nil
		}
		store, err := NewGormStore(db)
		if err != nil {
			log.Error("Failed to migrate Postgres cache, using in-memory store", "error", err)
			return NewMemoryStore(), nil
		}
		log.Info("Using Postgres cache store")
		return store, nil
	default:
		return nil, fmt.Errorf("unknown cache store type: %s", cfg.Type)
	}
}

func openSqlite(path string) (*gorm.DB, error) {
	if path == "" {
		path = "file::memory:?cache=shared"
	}
	return gorm.Open(sqlite.Open(path), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
}
