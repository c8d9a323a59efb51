package recorder

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"BistSentinel/internal/logger"
)

// SQLiteRecorder persists scan history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scan_runs (
			id            TEXT PRIMARY KEY,
			timestamp     INTEGER NOT NULL,
			trigger_name  TEXT,
			bar_interval  TEXT,
			period        TEXT,
			ranked_count  INTEGER,
			skipped_count INTEGER,
			skipped       TEXT,
			duration_ms   INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scan_runs_ts ON scan_runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS scan_results (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id  TEXT NOT NULL REFERENCES scan_runs(id),
			rank    INTEGER,
			ticker  TEXT,
			score   REAL,
			price   REAL,
			bias    TEXT,
			pattern TEXT,
			t1      REAL,
			t2      REAL,
			stop    REAL,
			eta     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scan_results_ticker ON scan_results(ticker)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordScan stores the run and its ranked rows in one transaction.
func (r *SQLiteRecorder) RecordScan(run *ScanRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rr, results := rowsFor(run)
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`INSERT INTO scan_runs
		(id, timestamp, trigger_name, bar_interval, period, ranked_count, skipped_count, skipped, duration_ms)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		rr.ID, rr.Timestamp, rr.Trigger, rr.Interval, rr.Period,
		rr.RankedCount, rr.SkippedCount, rr.Skipped, rr.DurationMS,
	); err != nil {
		return fmt.Errorf("insert scan run: %w", err)
	}
	for _, row := range results {
		if _, err := tx.Exec(`INSERT INTO scan_results
			(run_id, rank, ticker, score, price, bias, pattern, t1, t2, stop, eta)
			VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
			row.RunID, row.Rank, row.Ticker, row.Score, row.Price, row.Bias,
			row.Pattern, row.T1, row.T2, row.Stop, row.ETA,
		); err != nil {
			return fmt.Errorf("insert scan result %s: %w", row.Ticker, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
