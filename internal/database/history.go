package database

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/sha3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/jsonsweep/internal/model"
)

// FileName is the name of the database file inside the database directory.
const FileName = "jsonsweep.db"

// HistoryDB provides SQLite-based storage for run history.
// Every run gets a row in runs, and every write a stage performed gets a
// row in file_changes.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in dbDir.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

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

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the path of the database file.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- One row per run
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		root TEXT NOT NULL,
		repository TEXT NOT NULL,
		owner TEXT NOT NULL,
		dry_run INTEGER NOT NULL DEFAULT 0,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		scanned INTEGER DEFAULT 0,
		modified INTEGER DEFAULT 0,
		failed INTEGER DEFAULT 0,
		sites_removed INTEGER DEFAULT 0,
		urls_removed INTEGER DEFAULT 0,
		urls_updated INTEGER DEFAULT 0,
		report_json TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- One row per write performed by a stage
	CREATE TABLE IF NOT EXISTS file_changes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		path TEXT NOT NULL,
		stage TEXT NOT NULL,
		before_hash TEXT NOT NULL,
		after_hash TEXT NOT NULL,
		before_size INTEGER NOT NULL,
		after_size INTEGER NOT NULL,
		timestamp TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_changes_run ON file_changes(run_id);
	CREATE INDEX IF NOT EXISTS idx_changes_path ON file_changes(path);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// HashContent returns the hex encoded SHA3-256 digest of data.
func HashContent(data []byte) string {
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// BeginRun inserts a row for report and stores the new identifier in
// report.ID.
func (hdb *HistoryDB) BeginRun(ctx context.Context, report *model.RunReport) (int64, error) {
	query := `
	INSERT INTO runs (root, repository, owner, dry_run, started_at)
	VALUES (?, ?, ?, ?, ?)
	`

	result, err := hdb.db.ExecContext(ctx, query,
		report.Root,
		report.Repository,
		report.Owner,
		report.DryRun,
		formatTimestamp(report.StartedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	report.ID = id
	return id, nil
}

// FinishRun stores the counters and the full report of a finished run.
func (hdb *HistoryDB) FinishRun(ctx context.Context, report *model.RunReport) error {
	if report.ID == 0 {
		return errors.New("run was not started in the history database")
	}

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	query := `
	UPDATE runs SET
		finished_at = ?,
		scanned = ?,
		modified = ?,
		failed = ?,
		sites_removed = ?,
		urls_removed = ?,
		urls_updated = ?,
		report_json = ?
	WHERE id = ?
	`

	result, err := hdb.db.ExecContext(ctx, query,
		formatTimestamp(report.FinishedAt),
		report.Scanned(),
		report.Modified(),
		report.Failed(),
		report.TotalSitesRemoved(),
		report.TotalURLsRemoved(),
		report.TotalURLsUpdated(),
		string(reportJSON),
		report.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run %d not found", report.ID)
	}
	return nil
}

// RecordChange records that stage replaced before with after at path
// during run runID. Only digests and sizes are stored.
func (hdb *HistoryDB) RecordChange(ctx context.Context, runID int64, path, stage string, before, after []byte) error {
	query := `
	INSERT INTO file_changes (run_id, path, stage, before_hash, after_hash, before_size, after_size, timestamp)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := hdb.db.ExecContext(ctx, query,
		runID,
		path,
		stage,
		HashContent(before),
		HashContent(after),
		len(before),
		len(after),
		formatTimestamp(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("failed to insert file change: %w", err)
	}
	return nil
}

// RunMetadata contains summary information about a run.
// This is used for displaying history without loading the full report.
type RunMetadata struct {
	ID           int64
	Root         string
	Repository   string
	Owner        string
	DryRun       bool
	StartedAt    time.Time
	FinishedAt   time.Time
	Scanned      int
	Modified     int
	Failed       int
	SitesRemoved int
	URLsRemoved  int
	URLsUpdated  int
}

// Finished reports whether FinishRun was called for the run.
func (m RunMetadata) Finished() bool {
	return !m.FinishedAt.IsZero()
}

// ListRuns returns the metadata of the most recent runs, newest first.
// A limit of zero or less returns every run.
func (hdb *HistoryDB) ListRuns(ctx context.Context, limit int) ([]RunMetadata, error) {
	query := `
	SELECT id, root, repository, owner, dry_run, started_at, finished_at,
		scanned, modified, failed, sites_removed, urls_removed, urls_updated
	FROM runs
	ORDER BY id DESC
	`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	results := make([]RunMetadata, 0)
	for rows.Next() {
		var (
			meta       RunMetadata
			startedAt  string
			finishedAt sql.NullString
		)

		err := rows.Scan(
			&meta.ID,
			&meta.Root,
			&meta.Repository,
			&meta.Owner,
			&meta.DryRun,
			&startedAt,
			&finishedAt,
			&meta.Scanned,
			&meta.Modified,
			&meta.Failed,
			&meta.SitesRemoved,
			&meta.URLsRemoved,
			&meta.URLsUpdated,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		meta.StartedAt = parseTimestamp(startedAt)
		if finishedAt.Valid {
			meta.FinishedAt = parseTimestamp(finishedAt.String)
		}
		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetRun retrieves the full report of a finished run.
// It returns nil without error when the run does not exist or never
// finished.
func (hdb *HistoryDB) GetRun(ctx context.Context, id int64) (*model.RunReport, error) {
	query := `
	SELECT report_json FROM runs
	WHERE id = ?
	`

	var reportJSON sql.NullString
	err := hdb.db.QueryRowContext(ctx, query, id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	if !reportJSON.Valid {
		return nil, nil
	}

	var report model.RunReport
	if err := json.Unmarshal([]byte(reportJSON.String), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	report.ID = id

	return &report, nil
}

// FileChange represents a stored write.
type FileChange struct {
	ID         int64
	RunID      int64
	Path       string
	Stage      string
	BeforeHash string
	AfterHash  string
	BeforeSize int
	AfterSize  int
	Timestamp  time.Time
}

// ListChanges returns the writes of run runID in the order they happened.
func (hdb *HistoryDB) ListChanges(ctx context.Context, runID int64) ([]FileChange, error) {
	query := `
	SELECT id, run_id, path, stage, before_hash, after_hash, before_size, after_size, timestamp
	FROM file_changes
	WHERE run_id = ?
	ORDER BY id
	`

	rows, err := hdb.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list changes: %w", err)
	}
	defer rows.Close()

	results := make([]FileChange, 0)
	for rows.Next() {
		var (
			change    FileChange
			timestamp string
		)

		err := rows.Scan(
			&change.ID,
			&change.RunID,
			&change.Path,
			&change.Stage,
			&change.BeforeHash,
			&change.AfterHash,
			&change.BeforeSize,
			&change.AfterSize,
			&timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan change: %w", err)
		}

		change.Timestamp = parseTimestamp(timestamp)
		results = append(results, change)
	}

	return results, rows.Err()
}

// formatTimestamp formats t the way it is stored.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,          // formatTimestamp
	time.RFC3339,              // Full RFC3339 format
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
