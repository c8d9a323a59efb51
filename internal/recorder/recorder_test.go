package recorder

import (
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"BistSentinel/internal/model"
)

func sampleRun(id string) *ScanRun {
	return &ScanRun{
		Result: &model.ScanResult{
			ID:       id,
			Interval: "60m",
			Period:   "60d",
			Results: []model.Ranked{
				{Ticker: "THYAO.IS", Summary: &model.SignalSummary{Score: 88, Price: 310.5, BiasText: model.LabelBullish, T1: 320, T2: 330, Stop: 300, ETA: "2.5 saat"}},
				{Ticker: "SISE.IS", Summary: &model.SignalSummary{Score: 61, Price: 45.2, BiasText: model.LabelNeutral, T1: 46, T2: 47, Stop: 44, ETA: "60 dk"}},
			},
			Skipped: []string{"KOZAA.IS", "QUAGR.IS"},
		},
		Trigger:   "cron",
		StartedAt: time.Unix(1700000000, 0),
		Duration:  42 * time.Second,
	}
}

func newMemRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteRecorder: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestSQLiteRecorder_RecordScan(t *testing.T) {
	r := newMemRecorder(t)
	if err := r.RecordScan(sampleRun("run-1")); err != nil {
		t.Fatalf("RecordScan: %v", err)
	}

	var ranked, skippedCount int
	var skipped string
	var duration int64
	err := r.db.QueryRow(`SELECT ranked_count, skipped_count, skipped, duration_ms FROM scan_runs WHERE id = ?`, "run-1").
		Scan(&ranked, &skippedCount, &skipped, &duration)
	if err != nil {
		t.Fatalf("query run: %v", err)
	}
	if ranked != 2 || skippedCount != 2 || skipped != "KOZAA.IS,QUAGR.IS" || duration != 42000 {
		t.Errorf("run row = %d %d %q %d", ranked, skippedCount, skipped, duration)
	}

	rows, err := r.db.Query(`SELECT rank, ticker, score FROM scan_results WHERE run_id = ? ORDER BY rank`, "run-1")
	if err != nil {
		t.Fatalf("query results: %v", err)
	}
	defer rows.Close()
	var got []string
	for rows.Next() {
		var rank int
		var ticker string
		var score float64
		if err := rows.Scan(&rank, &ticker, &score); err != nil {
			t.Fatal(err)
		}
		got = append(got, ticker)
		if rank == 1 && score != 88 {
			t.Errorf("rank 1 score = %v", score)
		}
	}
	if strings.Join(got, ",") != "THYAO.IS,SISE.IS" {
		t.Errorf("results = %v", got)
	}
}

func TestSQLiteRecorder_DuplicateRunRollsBack(t *testing.T) {
	r := newMemRecorder(t)
	if err := r.RecordScan(sampleRun("dup")); err != nil {
		t.Fatalf("first RecordScan: %v", err)
	}
	if err := r.RecordScan(sampleRun("dup")); err == nil {
		t.Fatal("expected primary key violation")
	}
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM scan_results`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("expected 2 result rows after rollback, got %d", n)
	}
}

func TestNamedQueriesBindEveryColumn(t *testing.T) {
	rr, results := rowsFor(sampleRun("named"))
	_, args, err := sqlx.Named(insertRunSQL, rr)
	if err != nil {
		t.Fatalf("bind run: %v", err)
	}
	if len(args) != 9 {
		t.Errorf("run insert binds %d args, want 9", len(args))
	}
	_, args, err = sqlx.Named(insertResultSQL, results[0])
	if err != nil {
		t.Fatalf("bind result: %v", err)
	}
	if len(args) != 11 {
		t.Errorf("result insert binds %d args, want 11", len(args))
	}
	if results[1].Rank != 2 || results[1].RunID != "named" {
		t.Errorf("unexpected row: %+v", results[1])
	}
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	if err := r.RecordScan(sampleRun("x")); err != nil {
		t.Errorf("noop RecordScan: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("noop Close: %v", err)
	}
}
