package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/mobileqa/internal/model"
)

// FileName is the name of the database file inside the data directory.
const FileName = "mobileqa.db"

// timeLayout is fixed width so that stored timestamps sort as text.
const timeLayout = "2006-01-02 15:04:05.000000000"

// RunDB provides SQLite-based storage for run reports.
type RunDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures RunDB behavior.
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

// Open opens or creates the run database in dbDir.
func Open(dbDir string, opts Options) (*RunDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", ErrNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file; mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &RunDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Path returns the database file path.
func (rdb *RunDB) Path() string {
	return rdb.dbPath
}

// Close closes the database connection.
func (rdb *RunDB) Close() error {
	return rdb.db.Close()
}

func (rdb *RunDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		base_url TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		total_pages INTEGER NOT NULL,
		pages_with_issues INTEGER NOT NULL,
		total_issues INTEGER NOT NULL,
		critical INTEGER NOT NULL,
		high INTEGER NOT NULL,
		medium INTEGER NOT NULL,
		low INTEGER NOT NULL,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_runs_base_url ON runs(base_url);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun stores a finished run. Saving the same run ID twice fails.
func (rdb *RunDB) SaveRun(ctx context.Context, report *model.RunReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	s := report.Summary
	query := `
	INSERT INTO runs (run_id, base_url, started_at, finished_at,
		total_pages, pages_with_issues, total_issues,
		critical, high, medium, low, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = rdb.db.ExecContext(ctx, query,
		report.RunID,
		report.BaseURL,
		report.StartedAt.UTC().Format(timeLayout),
		report.FinishedAt.UTC().Format(timeLayout),
		s.TotalPages,
		s.PagesWithIssues,
		s.TotalIssues,
		s.Count(model.SeverityCritical),
		s.Count(model.SeverityHigh),
		s.Count(model.SeverityMedium),
		s.Count(model.SeverityLow),
		string(reportJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by its ID.
func (rdb *RunDB) GetRun(ctx context.Context, runID string) (*model.RunReport, error) {
	return rdb.queryReport(ctx, `SELECT report_json FROM runs WHERE run_id = ?`, runID)
}

// GetLatestRun retrieves the most recently started run.
func (rdb *RunDB) GetLatestRun(ctx context.Context) (*model.RunReport, error) {
	return rdb.queryReport(ctx, `SELECT report_json FROM runs ORDER BY started_at DESC LIMIT 1`)
}

func (rdb *RunDB) queryReport(ctx context.Context, query string, args ...any) (*model.RunReport, error) {
	var reportJSON string
	err := rdb.db.QueryRowContext(ctx, query, args...).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var report model.RunReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	if err := report.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptRun, err)
	}
	return &report, nil
}

// RunMetadata is the summary row of a stored run.
// It is used for listing history without loading the full report.
type RunMetadata struct {
	RunID      string
	BaseURL    string
	StartedAt  time.Time
	FinishedAt time.Time
	Summary    model.RunSummary
}

// ListRuns returns stored runs, newest first. A limit of zero or less
// returns every run.
func (rdb *RunDB) ListRuns(ctx context.Context, limit int) ([]RunMetadata, error) {
	if limit <= 0 {
		limit = -1
	}
	query := `
	SELECT run_id, base_url, started_at, finished_at,
		total_pages, pages_with_issues, total_issues,
		critical, high, medium, low
	FROM runs
	ORDER BY started_at DESC
	LIMIT ?
	`

	rows, err := rdb.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var (
			meta                          RunMetadata
			started, finished             string
			critical, high, medium, lowCt int
		)
		if err := rows.Scan(&meta.RunID, &meta.BaseURL, &started, &finished,
			&meta.Summary.TotalPages, &meta.Summary.PagesWithIssues, &meta.Summary.TotalIssues,
			&critical, &high, &medium, &lowCt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		meta.StartedAt = parseTimestamp(started)
		meta.FinishedAt = parseTimestamp(finished)
		meta.Summary.CountsBySeverity = map[model.Severity]int{
			model.SeverityCritical: critical,
			model.SeverityHigh:     high,
			model.SeverityMedium:   medium,
			model.SeverityLow:      lowCt,
		}
		results = append(results, meta)
	}
	return results, rows.Err()
}

// timestampFormats contains the timestamp formats that may be stored.
var timestampFormats = []string{
	timeLayout,
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
}

// parseTimestamp parses a stored UTC timestamp. Unknown formats yield the
// zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
