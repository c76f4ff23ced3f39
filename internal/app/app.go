// Package app is the application layer between the CLI and the service:
// it constructs all dependencies from config, exposes operations that
// accept raw string paths, and manages the DB lifecycle on Close.
package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"chroni/internal/chroni"
	"chroni/internal/config"
	"chroni/internal/database"
	"chroni/internal/diff"
	"chroni/internal/fs"
	"chroni/internal/model"
	"chroni/internal/watch"
)

// App wires the service layer to the real database, filesystem, and logger.
type App struct {
	cfg     *config.Config
	db      chroni.Database
	fsmgr   chroni.FilesystemManager
	service *chroni.Service
	logger  chroni.Logger
	op      *Operation
	logFile *os.File
}

// NewApp creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "Track", "ScanAll").
// The caller must call Close when done.
func NewApp(cfg *config.Config, operation string, parameters ...string) (*App, error) {
	fsmgr := fs.NewOSFilesystemManager(cfg.Filesystem.Exclude)

	db, err := database.NewDatabaseFromConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	op := NewOperation(operation, strings.Join(parameters, " "))
	logger, logFile, err := newLogger(cfg.LogDir, op.ID)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	adapter := &slogAdapter{l: logger}
	svc := chroni.NewService(db, fsmgr, diff.NewCodec(), adapter, chroni.RealClock{})

	return &App{
		cfg:     cfg,
		db:      db,
		fsmgr:   fsmgr,
		service: svc,
		logger:  adapter,
		op:      op,
		logFile: logFile,
	}, nil
}

// persistOperation saves the operation record to the database.
// Called only by DB-mutating commands.
func (a *App) persistOperation() error {
	if a.op.Persisted() {
		return nil
	}
	record := &model.Operation{
		ID:         a.op.ID,
		Operation:  a.op.Operation,
		Parameters: a.op.Parameters,
		Status:     "running",
		StartedAt:  a.op.StartedAt,
	}
	if err := a.db.CreateOperation(record); err != nil {
		return fmt.Errorf("persisting operation: %w", err)
	}
	a.op.MarkPersisted()
	return nil
}

// MarkFailed records that the running operation ended in error.
func (a *App) MarkFailed() { a.op.Status = "error" }

// Track resolves the given path and registers it for tracking.
func (a *App) Track(rawPath string) (string, bool, error) {
	if err := a.persistOperation(); err != nil {
		return "", false, err
	}
	path, err := a.fsmgr.Resolve(rawPath)
	if err != nil {
		return "", false, fmt.Errorf("resolving path: %w", err)
	}
	if !a.fsmgr.IsFile(path) && !a.fsmgr.IsDir(path) {
		return path, false, fmt.Errorf("path does not exist: %s", path)
	}
	tracked, err := a.service.Track(path)
	return path, tracked, err
}

// Untrack stops tracking a path but keeps its history.
func (a *App) Untrack(rawPath string) (string, bool, error) {
	if err := a.persistOperation(); err != nil {
		return "", false, err
	}
	path, err := a.fsmgr.Resolve(rawPath)
	if err != nil {
		return "", false, fmt.Errorf("resolving path: %w", err)
	}
	ok, err := a.service.Untrack(path)
	return path, ok, err
}

// Forget permanently erases all history of a path.
func (a *App) Forget(rawPath string) (string, bool, error) {
	if err := a.persistOperation(); err != nil {
		return "", false, err
	}
	path, err := a.fsmgr.Resolve(rawPath)
	if err != nil {
		return "", false, fmt.Errorf("resolving path: %w", err)
	}
	ok, err := a.service.Forget(path)
	return path, ok, err
}

// ListTracked returns all actively tracked paths.
func (a *App) ListTracked() ([]string, error) {
	return a.service.ListTracked()
}

// ScanAll scans every tracked path for changes and records new versions.
func (a *App) ScanAll() ([]string, error) {
	if err := a.persistOperation(); err != nil {
		return nil, err
	}
	return a.service.ScanAll()
}

// History returns a path's version chain, newest first.
func (a *App) History(rawPath string, limit int) ([]*chroni.VersionInfo, error) {
	path, err := a.fsmgr.Resolve(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	return a.service.History(path, limit)
}

// Show returns one version of a path with content, or the latest when
// number is 0. Returns nil when the version does not exist.
func (a *App) Show(rawPath string, number int64) (*chroni.VersionInfo, error) {
	path, err := a.fsmgr.Resolve(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	if number == 0 {
		return a.service.LatestInfo(path)
	}
	return a.service.VersionAt(path, number)
}

// Restore writes one historical version of a path back to disk.
func (a *App) Restore(rawPath string, number int64) (string, error) {
	if err := a.persistOperation(); err != nil {
		return "", err
	}
	path, err := a.fsmgr.Resolve(rawPath)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	return path, a.service.RestoreFile(path, number)
}

// RestoreDate restores a path to the version closest to (not after) the
// given date string. Returns the restored version, or nil when no version
// qualifies.
func (a *App) RestoreDate(rawPath, dateStr string) (*chroni.VersionInfo, error) {
	if err := a.persistOperation(); err != nil {
		return nil, err
	}
	path, err := a.fsmgr.Resolve(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	v, err := a.service.ClosestBefore(path, dateStr)
	if err != nil || v == nil {
		return nil, err
	}
	if err := a.service.RestoreFile(path, v.Number); err != nil {
		return nil, err
	}
	return v, nil
}

// SnapshotCreate captures the current version of every tracked file.
func (a *App) SnapshotCreate(name, note string) (int, error) {
	if err := a.persistOperation(); err != nil {
		return 0, err
	}
	return a.service.CreateSnapshot(name, note)
}

// SnapshotList returns all snapshots, newest first.
func (a *App) SnapshotList() ([]*model.Snapshot, error) {
	return a.service.ListSnapshots()
}

// SnapshotRestore restores every file in a snapshot to its recorded version.
func (a *App) SnapshotRestore(name string) (*chroni.SnapshotRestoreResult, error) {
	if err := a.persistOperation(); err != nil {
		return nil, err
	}
	return a.service.RestoreSnapshot(name)
}

// Compact drops redundant stored content from old versions of a path.
func (a *App) Compact(rawPath string, keepEvery int64) (int, error) {
	if err := a.persistOperation(); err != nil {
		return 0, err
	}
	path, err := a.fsmgr.Resolve(rawPath)
	if err != nil {
		return 0, fmt.Errorf("resolving path: %w", err)
	}
	return a.service.Compact(path, keepEvery)
}

// Operations lists recent CLI invocations, newest first.
func (a *App) Operations(limit int) ([]*model.Operation, error) {
	return a.db.ListOperations(limit)
}

// Watch blocks, recording versions as tracked files change on disk.
func (a *App) Watch(ctx context.Context) error {
	w := watch.New(a.service, a.fsmgr, a.logger)
	return w.Run(ctx)
}

// Close finalizes the operation record and releases all resources.
func (a *App) Close() error {
	var firstErr error

	if a.op.Persisted() {
		if err := a.db.FinishOperation(a.op.ID, a.op.Status, time.Now()); err != nil {
			firstErr = fmt.Errorf("finishing operation: %w", err)
		}
	}

	if err := a.db.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing database: %w", err)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
