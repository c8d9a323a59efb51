package recorder

import (
	"strings"
	"time"

	"BistSentinel/internal/model"
)

// ScanRun is one completed batch scan.
type ScanRun struct {
	Result    *model.ScanResult
	Trigger   string // "cron" or the chat command that started it
	StartedAt time.Time
	Duration  time.Duration
}

// Recorder persists scan history for later analysis.
type Recorder interface {
	RecordScan(run *ScanRun) error
	Close() error
}

// runRow and resultRow are the persisted shapes shared by the SQL backends.
type runRow struct {
	ID           string `db:"id"`
	Timestamp    int64  `db:"timestamp"`
	Trigger      string `db:"trigger_name"`
	Interval     string `db:"bar_interval"`
	Period       string `db:"period"`
	RankedCount  int    `db:"ranked_count"`
	SkippedCount int    `db:"skipped_count"`
	Skipped      string `db:"skipped"`
	DurationMS   int64  `db:"duration_ms"`
}

type resultRow struct {
	RunID   string  `db:"run_id"`
	Rank    int     `db:"rank"`
	Ticker  string  `db:"ticker"`
	Score   float64 `db:"score"`
	Price   float64 `db:"price"`
	Bias    string  `db:"bias"`
	Pattern string  `db:"pattern"`
	T1      float64 `db:"t1"`
	T2      float64 `db:"t2"`
	Stop    float64 `db:"stop"`
	ETA     string  `db:"eta"`
}

func rowsFor(run *ScanRun) (runRow, []resultRow) {
	res := run.Result
	rr := runRow{
		ID:           res.ID,
		Timestamp:    run.StartedAt.Unix(),
		Trigger:      run.Trigger,
		Interval:     res.Interval,
		Period:       res.Period,
		RankedCount:  len(res.Results),
		SkippedCount: len(res.Skipped),
		Skipped:      strings.Join(res.Skipped, ","),
		DurationMS:   run.Duration.Milliseconds(),
	}
	results := make([]resultRow, 0, len(res.Results))
	for i, r := range res.Results {
		s := r.Summary
		results = append(results, resultRow{
			RunID:   res.ID,
			Rank:    i + 1,
			Ticker:  r.Ticker,
			Score:   s.Score,
			Price:   s.Price,
			Bias:    s.BiasText,
			Pattern: s.PatternText,
			T1:      s.T1,
			T2:      s.T2,
			Stop:    s.Stop,
			ETA:     s.ETA,
		})
	}
	return rr, results
}
