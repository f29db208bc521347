package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/handletrace/internal/model"
)

// DB provides SQLite-based persistent storage for probe verdicts.
//
// Design decision: We use a single database file per user rather than a
// file per investigation. Probe verdicts are keyed by (platform, handle,
// probe kind) and are valid across investigations for their TTL, so a
// shared file lets overlapping candidate sets from different seeds reuse
// each other's results.
type DB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string

	// logger records storage errors. Cache lookups are best-effort:
	// a broken cache degrades to a miss, never fails a probe.
	logger *slog.Logger

	// now is swappable for TTL tests.
	now func() time.Time
}

// Options configures DB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a probe cache database at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dbPath := filepath.Join(dbDir, "handletrace.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	pdb := &DB{
		db:     db,
		dbPath: dbPath,
		logger: logger,
		now:    time.Now,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := pdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return pdb, nil
}

// Close closes the database connection.
func (pdb *DB) Close() error {
	return pdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (pdb *DB) createTables() error {
	schema := `
	-- Probe verdicts keyed by the SHA3 of (platform, handle, probe kind).
	-- platform and handle are stored alongside the key for inspection
	-- with the sqlite3 shell; lookups only ever use the key.
	CREATE TABLE IF NOT EXISTS probe_cache (
		key TEXT PRIMARY KEY,
		platform TEXT NOT NULL,
		handle TEXT NOT NULL,
		result_json TEXT NOT NULL,
		stored_at INTEGER NOT NULL,
		expires_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_probe_cache_expires ON probe_cache(expires_at);
	`

	_, err := pdb.db.ExecContext(context.Background(), schema)
	return err
}

// Get implements Cache. Storage errors degrade to a miss.
func (pdb *DB) Get(key string) (model.ProbeResult, bool) {
	query := `SELECT result_json, expires_at FROM probe_cache WHERE key = ?`

	var resultJSON string
	var expiresAt int64
	err := pdb.db.QueryRowContext(context.Background(), query, key).Scan(&resultJSON, &expiresAt)
	if err == sql.ErrNoRows {
		return model.ProbeResult{}, false
	}
	if err != nil {
		pdb.logger.Warn("probe cache lookup failed", "key", key, "error", err)
		return model.ProbeResult{}, false
	}
	if pdb.now().Unix() > expiresAt {
		return model.ProbeResult{}, false
	}

	var result model.ProbeResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		pdb.logger.Warn("probe cache entry corrupt", "key", key, "error", err)
		return model.ProbeResult{}, false
	}
	return result, true
}

// Set implements Cache. Uses UPSERT so refreshed probes overwrite the
// previous verdict and its expiry.
func (pdb *DB) Set(key string, result model.ProbeResult, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		pdb.logger.Warn("probe cache serialization failed", "key", key, "error", err)
		return
	}

	query := `
	INSERT INTO probe_cache (key, platform, handle, result_json, stored_at, expires_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET
		result_json = excluded.result_json,
		stored_at = excluded.stored_at,
		expires_at = excluded.expires_at
	`

	now := pdb.now()
	_, err = pdb.db.ExecContext(context.Background(), query,
		key,
		result.Platform,
		result.Handle,
		string(resultJSON),
		now.Unix(),
		now.Add(ttl).Unix(),
	)
	if err != nil {
		pdb.logger.Warn("probe cache write failed", "key", key, "error", err)
	}
}

// Prune deletes expired entries. Callers may run it on startup to keep
// the shared file from growing without bound.
func (pdb *DB) Prune(ctx context.Context) (int64, error) {
	result, err := pdb.db.ExecContext(ctx, `DELETE FROM probe_cache WHERE expires_at < ?`, pdb.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to prune probe cache: %w", err)
	}
	return result.RowsAffected()
}
