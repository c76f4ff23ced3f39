package database

import (
	"fmt"
	"os"
	"path/filepath"

	"chroni/internal/chroni"
	"chroni/internal/config"
	"chroni/internal/database/migrations"
)

// NewDatabaseFromConfig creates a Database implementation based on the
// database config type. The schema is migrated to the latest version on
// open, so a fresh database is ready to use immediately.
func NewDatabaseFromConfig(cfg config.DatabaseConfig) (chroni.Database, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		return open(filepath.Join(cfg.DataDir, "chroni.db"))
	case "memory":
		return open(":memory:")
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}

func open(path string) (chroni.Database, error) {
	db, err := NewSQLiteDatabase(path)
	if err != nil {
		return nil, err
	}
	if err := migrations.MigrateUp(db.DB()); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return db, nil
}
