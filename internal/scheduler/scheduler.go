package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"BistSentinel/internal/logger"
	"BistSentinel/internal/model"
	"BistSentinel/internal/notifier"
	"BistSentinel/internal/recorder"
	"BistSentinel/internal/scanner"
	"BistSentinel/internal/strategy"
)

// Sender delivers a report to the configured chat.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs scheduled scans and answers chat commands.
type Scheduler struct {
	Cron     *cron.Cron
	Scanner  *scanner.Scanner
	Notifier Sender
	Recorder recorder.Recorder
	Symbols  []string
	Interval string
	Period   string
	TopN     int
	Ctx      context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, sc *scanner.Scanner, sender Sender, rec recorder.Recorder, symbols []string, interval, period string, topN int) *Scheduler {
	if topN <= 0 {
		topN = 10
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Scanner:  sc,
		Notifier: sender,
		Recorder: rec,
		Symbols:  symbols,
		Interval: interval,
		Period:   period,
		TopN:     topN,
		Ctx:      ctx,
	}
}

// RegisterAll registers the scheduled top-N scan.
func (s *Scheduler) RegisterAll(scanCron string) error {
	if _, err := s.Cron.AddFunc(scanCron, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	logger.Info("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	logger.Info("scheduler stopped")
}

// RunScanNow executes the scheduled scan immediately (for RUN_ON_START).
func (s *Scheduler) RunScanNow() {
	s.scanTask()
}

func (s *Scheduler) scanTask() {
	logger.Info("running scheduled scan: %d symbols %s/%s", len(s.Symbols), s.Interval, s.Period)
	s.trySend(s.topReport(s.Ctx, "cron", s.Interval, s.Period))
}

// topReport scans the universe, records the run and formats the top of the
// normalized ranking.
func (s *Scheduler) topReport(ctx context.Context, trigger, interval, period string) string {
	start := time.Now()
	res := s.Scanner.Scan(ctx, s.Symbols, interval, period, 0)
	elapsed := time.Since(start)

	res.Results = normalizeRanked(res.Results, interval)
	s.record(&recorder.ScanRun{Result: res, Trigger: trigger, StartedAt: start, Duration: elapsed})

	top := res.Results
	if len(top) > s.TopN {
		top = top[:s.TopN]
	}
	return notifier.FormatTop(interval, period, top, res.Skipped, elapsed)
}

func normalizeRanked(ranked []model.Ranked, interval string) []model.Ranked {
	out := make([]model.Ranked, len(ranked))
	for i, r := range ranked {
		n := strategy.Normalize(*r.Summary, interval)
		out[i] = model.Ranked{Ticker: r.Ticker, Summary: &n}
	}
	return out
}

func (s *Scheduler) record(run *recorder.ScanRun) {
	if err := s.Recorder.RecordScan(run); err != nil {
		logger.Error("record scan %s: %v", run.Result.ID, err)
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		logger.Error("send notification: %v", err)
	}
}
