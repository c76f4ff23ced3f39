// Package database implements the chroni.Database interface on SQLite.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"chroni/internal/chroni"
	"chroni/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// timeLayout is how timestamps are stored. RFC 3339 strings sort
// lexicographically in timestamp order, which the indexes rely on.
const timeLayout = time.RFC3339Nano

// SQLiteDatabase implements the Database interface using SQLite.
type SQLiteDatabase struct {
	db   *sql.DB
	path string
}

// NewSQLiteDatabase opens a SQLite database at path.
// path can be a file path or ":memory:" for an in-memory database.
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteDatabase{db: db, path: path}, nil
}

// NewSQLiteDatabaseFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly
// configured.
func NewSQLiteDatabaseFromDB(db *sql.DB) *SQLiteDatabase {
	return &SQLiteDatabase{db: db}
}

// OpenConnection opens and configures a SQLite connection with appropriate
// PRAGMAs. Exported for tools and tests that need a raw configured handle.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Foreign keys default to OFF in SQLite for backward compatibility.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// DB exposes the underlying handle for migrations.
func (s *SQLiteDatabase) DB() *sql.DB { return s.db }

func (s *SQLiteDatabase) Close() error { return s.db.Close() }

// Tracked path operations

func (s *SQLiteDatabase) UpsertTrackedPath(path string) error {
	_, err := s.db.Exec(
		`INSERT INTO tracked_paths (path, active) VALUES (?, 1)
		 ON CONFLICT(path) DO UPDATE SET active = 1`, path)
	if err != nil {
		return fmt.Errorf("upserting tracked path: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) DeactivateTrackedPath(path string) error {
	_, err := s.db.Exec(`UPDATE tracked_paths SET active = 0 WHERE path = ?`, path)
	if err != nil {
		return fmt.Errorf("deactivating tracked path: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) IsActiveTracked(path string) (bool, error) {
	var one int
	err := s.db.QueryRow(
		`SELECT 1 FROM tracked_paths WHERE path = ? AND active = 1`, path).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking tracked path: %w", err)
	}
	return true, nil
}

func (s *SQLiteDatabase) PathKnown(path string) (bool, error) {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM tracked_paths WHERE path = ?`, path).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking known path: %w", err)
	}
	return true, nil
}

func (s *SQLiteDatabase) ListActiveTracked() ([]string, error) {
	rows, err := s.db.Query(`SELECT path FROM tracked_paths WHERE active = 1 ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("listing tracked paths: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scanning tracked path: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

func (s *SQLiteDatabase) PurgePath(path string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning purge transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM tracked_paths WHERE path = ?`,
		`DELETE FROM versions WHERE path = ?`,
		`DELETE FROM snapshot_entries WHERE path = ?`,
	} {
		if _, err := tx.Exec(stmt, path); err != nil {
			return fmt.Errorf("purging path: %w", err)
		}
	}

	return tx.Commit()
}

// Version operations

const versionColumns = `path, version, diff, content, timestamp`

func scanVersion(row interface{ Scan(...any) error }) (*model.Version, error) {
	var v model.Version
	var diff, content sql.NullString
	var ts string
	if err := row.Scan(&v.Path, &v.Number, &diff, &content, &ts); err != nil {
		return nil, err
	}
	if diff.Valid {
		v.Diff = &diff.String
	}
	if content.Valid {
		v.Content = &content.String
	}
	parsed, err := time.Parse(timeLayout, ts)
	if err != nil {
		return nil, fmt.Errorf("parsing stored timestamp %q: %w", ts, err)
	}
	v.Timestamp = parsed
	return &v, nil
}

func (s *SQLiteDatabase) LatestVersion(path string) (*model.Version, error) {
	row := s.db.QueryRow(
		`SELECT `+versionColumns+` FROM versions WHERE path = ?
		 ORDER BY version DESC LIMIT 1`, path)
	v, err := scanVersion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading latest version: %w", err)
	}
	return v, nil
}

func (s *SQLiteDatabase) GetVersion(path string, number int64) (*model.Version, error) {
	row := s.db.QueryRow(
		`SELECT `+versionColumns+` FROM versions WHERE path = ? AND version = ?`,
		path, number)
	v, err := scanVersion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading version: %w", err)
	}
	return v, nil
}

func (s *SQLiteDatabase) ListVersions(path string, limit int) ([]*model.Version, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.Query(
		`SELECT `+versionColumns+` FROM versions WHERE path = ?
		 ORDER BY version DESC LIMIT ?`, path, limit)
	if err != nil {
		return nil, fmt.Errorf("listing versions: %w", err)
	}
	defer rows.Close()
	return collectVersions(rows)
}

func (s *SQLiteDatabase) VersionsUpTo(path string, number int64) ([]*model.Version, error) {
	rows, err := s.db.Query(
		`SELECT `+versionColumns+` FROM versions WHERE path = ? AND version <= ?
		 ORDER BY version ASC`, path, number)
	if err != nil {
		return nil, fmt.Errorf("listing versions: %w", err)
	}
	defer rows.Close()
	return collectVersions(rows)
}

func collectVersions(rows *sql.Rows) ([]*model.Version, error) {
	var versions []*model.Version
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning version: %w", err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func (s *SQLiteDatabase) AppendVersion(path string, diff *string, content string, ts time.Time) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning append transaction: %w", err)
	}
	defer tx.Rollback()

	var next int64
	err = tx.QueryRow(
		`SELECT COALESCE(MAX(version), 0) + 1 FROM versions WHERE path = ?`, path).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("allocating version number: %w", err)
	}

	var diffValue sql.NullString
	if diff != nil {
		diffValue = sql.NullString{String: *diff, Valid: true}
	}
	_, err = tx.Exec(
		`INSERT INTO versions (path, version, diff, content, timestamp)
		 VALUES (?, ?, ?, ?, ?)`,
		path, next, diffValue, content, ts.Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("inserting version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing version: %w", err)
	}
	return next, nil
}

func (s *SQLiteDatabase) DropVersionContent(path string, number int64) (bool, error) {
	// The diff IS NOT NULL guard keeps version 1 intact: without a diff its
	// content could never be reconstructed.
	res, err := s.db.Exec(
		`UPDATE versions SET content = NULL
		 WHERE path = ? AND version = ? AND content IS NOT NULL AND diff IS NOT NULL`,
		path, number)
	if err != nil {
		return false, fmt.Errorf("dropping version content: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking affected rows: %w", err)
	}
	return n > 0, nil
}

// Snapshot operations

func (s *SQLiteDatabase) SnapshotExists(name string) (bool, error) {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM snapshots WHERE name = ?`, name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking snapshot: %w", err)
	}
	return true, nil
}

func (s *SQLiteDatabase) CreateSnapshot(snap *model.Snapshot, entries []model.SnapshotEntry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO snapshots (name, note, timestamp) VALUES (?, ?, ?)`,
		snap.Name, snap.Note, snap.Timestamp.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("inserting snapshot: %w", err)
	}

	for _, e := range entries {
		_, err = tx.Exec(
			`INSERT INTO snapshot_entries (snapshot, path, version) VALUES (?, ?, ?)`,
			e.Snapshot, e.Path, e.Version)
		if err != nil {
			return fmt.Errorf("inserting snapshot entry for %s: %w", e.Path, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteDatabase) ListSnapshots() ([]*model.Snapshot, error) {
	rows, err := s.db.Query(
		`SELECT name, note, timestamp FROM snapshots ORDER BY timestamp DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []*model.Snapshot
	for rows.Next() {
		var snap model.Snapshot
		var ts string
		if err := rows.Scan(&snap.Name, &snap.Note, &ts); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		parsed, err := time.Parse(timeLayout, ts)
		if err != nil {
			return nil, fmt.Errorf("parsing stored timestamp %q: %w", ts, err)
		}
		snap.Timestamp = parsed
		snaps = append(snaps, &snap)
	}
	return snaps, rows.Err()
}

func (s *SQLiteDatabase) SnapshotEntries(name string) ([]model.SnapshotEntry, error) {
	rows, err := s.db.Query(
		`SELECT snapshot, path, version FROM snapshot_entries
		 WHERE snapshot = ? ORDER BY path`, name)
	if err != nil {
		return nil, fmt.Errorf("listing snapshot entries: %w", err)
	}
	defer rows.Close()

	var entries []model.SnapshotEntry
	for rows.Next() {
		var e model.SnapshotEntry
		if err := rows.Scan(&e.Snapshot, &e.Path, &e.Version); err != nil {
			return nil, fmt.Errorf("scanning snapshot entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Operation log

func (s *SQLiteDatabase) CreateOperation(op *model.Operation) error {
	_, err := s.db.Exec(
		`INSERT INTO operations (id, operation, parameters, status, started_at)
		 VALUES (?, ?, ?, ?, ?)`,
		op.ID, op.Operation, op.Parameters, op.Status, op.StartedAt.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("inserting operation: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) FinishOperation(id, status string, finishedAt time.Time) error {
	_, err := s.db.Exec(
		`UPDATE operations SET status = ?, finished_at = ? WHERE id = ?`,
		status, finishedAt.Format(timeLayout), id)
	if err != nil {
		return fmt.Errorf("finishing operation: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) ListOperations(limit int) ([]*model.Operation, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(
		`SELECT id, operation, parameters, status, started_at, finished_at
		 FROM operations ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	defer rows.Close()

	var ops []*model.Operation
	for rows.Next() {
		var op model.Operation
		var started string
		var finished sql.NullString
		if err := rows.Scan(&op.ID, &op.Operation, &op.Parameters, &op.Status, &started, &finished); err != nil {
			return nil, fmt.Errorf("scanning operation: %w", err)
		}
		startedAt, err := time.Parse(timeLayout, started)
		if err != nil {
			return nil, fmt.Errorf("parsing stored timestamp %q: %w", started, err)
		}
		op.StartedAt = startedAt
		if finished.Valid {
			finishedAt, err := time.Parse(timeLayout, finished.String)
			if err != nil {
				return nil, fmt.Errorf("parsing stored timestamp %q: %w", finished.String, err)
			}
			op.FinishedAt = &finishedAt
		}
		ops = append(ops, &op)
	}
	return ops, rows.Err()
}

// Compile-time check that SQLiteDatabase implements the Database interface.
var _ chroni.Database = (*SQLiteDatabase)(nil)
