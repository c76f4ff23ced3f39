package migrations_test

import (
	"database/sql"
	"testing"

	"chroni/internal/database"
	"chroni/internal/database/migrations"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.OpenConnection(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrateUpCreatesSchema(t *testing.T) {
	db := openTestDB(t)

	if err := migrations.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp failed: %v", err)
	}

	// All tables the application relies on must exist.
	for _, table := range []string{"tracked_paths", "versions", "snapshots", "snapshot_entries", "operations"} {
		var name string
		err := db.QueryRow(
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}

	if err := migrations.CheckStatus(db); err != nil {
		t.Errorf("CheckStatus failed after migration: %v", err)
	}
}

func TestMigrateUpIsIdempotent(t *testing.T) {
	db := openTestDB(t)

	if err := migrations.MigrateUp(db); err != nil {
		t.Fatalf("first MigrateUp failed: %v", err)
	}
	if err := migrations.MigrateUp(db); err != nil {
		t.Fatalf("second MigrateUp failed: %v", err)
	}
}

func TestCheckStatusBeforeMigration(t *testing.T) {
	db := openTestDB(t)

	if err := migrations.CheckStatus(db); err == nil {
		t.Error("expected CheckStatus to fail on an unmigrated database")
	}
}
