package recorder

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"BistSentinel/internal/logger"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS scan_runs (
		id            TEXT PRIMARY KEY,
		timestamp     BIGINT NOT NULL,
		trigger_name  TEXT,
		bar_interval  TEXT,
		period        TEXT,
		ranked_count  INTEGER,
		skipped_count INTEGER,
		skipped       TEXT,
		duration_ms   BIGINT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_scan_runs_ts ON scan_runs(timestamp)`,
	`CREATE TABLE IF NOT EXISTS scan_results (
		id      BIGSERIAL PRIMARY KEY,
		run_id  TEXT NOT NULL REFERENCES scan_runs(id),
		rank    INTEGER,
		ticker  TEXT,
		score   DOUBLE PRECISION,
		price   DOUBLE PRECISION,
		bias    TEXT,
		pattern TEXT,
		t1      DOUBLE PRECISION,
		t2      DOUBLE PRECISION,
		stop    DOUBLE PRECISION,
		eta     TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_scan_results_ticker ON scan_results(ticker)`,
}

const (
	insertRunSQL = `INSERT INTO scan_runs
		(id, timestamp, trigger_name, bar_interval, period, ranked_count, skipped_count, skipped, duration_ms)
		VALUES (:id, :timestamp, :trigger_name, :bar_interval, :period, :ranked_count, :skipped_count, :skipped, :duration_ms)`
	insertResultSQL = `INSERT INTO scan_results
		(run_id, rank, ticker, score, price, bias, pattern, t1, t2, stop, eta)
		VALUES (:run_id, :rank, :ticker, :score, :price, :bias, :pattern, :t1, :t2, :stop, :eta)`
)

// PostgresRecorder persists scan history to PostgreSQL.
type PostgresRecorder struct {
	db *sqlx.DB
}

// NewPostgresRecorder connects to dsn and runs migrations.
func NewPostgresRecorder(dsn string) (*PostgresRecorder, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	for _, s := range postgresSchema {
		if _, err := db.Exec(s); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	logger.Info("postgres recorder connected")
	return &PostgresRecorder{db: db}, nil
}

// RecordScan stores the run and its ranked rows in one transaction.
func (r *PostgresRecorder) RecordScan(run *ScanRun) error {
	rr, results := rowsFor(run)
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.NamedExec(insertRunSQL, rr); err != nil {
		return fmt.Errorf("insert scan run: %w", err)
	}
	for _, row := range results {
		if _, err := tx.NamedExec(insertResultSQL, row); err != nil {
			return fmt.Errorf("insert scan result %s: %w", row.Ticker, err)
		}
	}
	return tx.Commit()
}

func (r *PostgresRecorder) Close() error {
	return r.db.Close()
}
