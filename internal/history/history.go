// Package history keeps an optional SQLite journal of crawl runs.
// The journal records every fetch attempt and every discovered link, which
// makes re-fetches of already seen pages visible after the run.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// DB is a crawl journal backed by a single SQLite file.
type DB struct {
	db    *sql.DB
	runID string
}

// Open opens or creates the journal at path and ensures the schema exists.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	// SQLite supports a single writer; the crawl loop is the only one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("enable wal mode: %w", err)
	}

	journal := &DB{db: db}
	if err := journal.createTables(); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("create journal tables: %w", err)
	}

	return journal, nil
}

// Close closes the underlying database.
func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed TEXT NOT NULL,
		mode TEXT NOT NULL,
		max_iterations INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		iterations INTEGER,
		fetched INTEGER,
		failed INTEGER,
		links INTEGER,
		dropped INTEGER
	);

	CREATE TABLE IF NOT EXISTS fetches (
		run_id TEXT NOT NULL,
		iteration INTEGER NOT NULL,
		url TEXT NOT NULL,
		ok INTEGER NOT NULL,
		detail TEXT NOT NULL DEFAULT '',
		fetched_at TEXT NOT NULL,
		PRIMARY KEY (run_id, iteration)
	);

	CREATE INDEX IF NOT EXISTS idx_fetches_url ON fetches(url);

	CREATE TABLE IF NOT EXISTS links (
		run_id TEXT NOT NULL,
		iteration INTEGER NOT NULL,
		text TEXT NOT NULL,
		target TEXT NOT NULL,
		discovered_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_links_run ON links(run_id);
	`

	_, err := d.db.ExecContext(context.Background(), schema)

	return err
}

// BeginRun opens a run row; later records are tagged with runID.
func (d *DB) BeginRun(runID, seed, mode string, maxIterations int) error {
	d.runID = runID

	query := `
	INSERT INTO runs (id, seed, mode, max_iterations, started_at)
	VALUES (?, ?, ?, ?, ?)
	`

	_, err := d.db.ExecContext(context.Background(), query,
		runID, seed, mode, maxIterations, timestamp())
	if err != nil {
		return fmt.Errorf("record run start: %w", err)
	}

	return nil
}

// RecordFetch stores the outcome of one iteration's download attempt.
func (d *DB) RecordFetch(iteration int, pageURL string, ok bool, detail string) error {
	query := `
	INSERT INTO fetches (run_id, iteration, url, ok, detail, fetched_at)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := d.db.ExecContext(context.Background(), query,
		d.runID, iteration, pageURL, boolToInt(ok), detail, timestamp())
	if err != nil {
		return fmt.Errorf("record fetch: %w", err)
	}

	return nil
}

// RecordLink stores one accepted link.
func (d *DB) RecordLink(iteration int, text, target string) error {
	query := `
	INSERT INTO links (run_id, iteration, text, target, discovered_at)
	VALUES (?, ?, ?, ?, ?)
	`

	_, err := d.db.ExecContext(context.Background(), query,
		d.runID, iteration, text, target, timestamp())
	if err != nil {
		return fmt.Errorf("record link: %w", err)
	}

	return nil
}

// RunSummary carries the final counters of a crawl.
type RunSummary struct {
	Iterations int
	Fetched    int
	Failed     int
	Links      int
	Dropped    int
}

// FinishRun completes the run row with the final counters.
func (d *DB) FinishRun(summary RunSummary) error {
	query := `
	UPDATE runs SET
		finished_at = ?,
		iterations = ?,
		fetched = ?,
		failed = ?,
		links = ?,
		dropped = ?
	WHERE id = ?
	`

	_, err := d.db.ExecContext(context.Background(), query,
		timestamp(),
		summary.Iterations,
		summary.Fetched,
		summary.Failed,
		summary.Links,
		summary.Dropped,
		d.runID)
	if err != nil {
		return fmt.Errorf("record run summary: %w", err)
	}

	return nil
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}

	return 0
}
