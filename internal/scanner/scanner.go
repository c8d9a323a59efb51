// Package scanner runs the per-instrument analysis chain across many
// instruments concurrently and ranks the outcome.
package scanner

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"BistSentinel/internal/collector"
	"BistSentinel/internal/indicator"
	"BistSentinel/internal/logger"
	"BistSentinel/internal/model"
	"BistSentinel/internal/pattern"
	"BistSentinel/internal/strategy"
)

const (
	DefaultConcurrency = 5
	DefaultPacing      = 200 * time.Millisecond
)

// Scanner fetches, enriches, detects and scores instruments.
type Scanner struct {
	fetcher collector.Fetcher
	gate    Gate
	pool    *Pool
	runner  *pattern.Runner
	pacing  time.Duration
}

// Option configures a Scanner.
type Option func(*Scanner)

func WithGate(g Gate) Option              { return func(s *Scanner) { s.gate = g } }
func WithPool(p *Pool) Option             { return func(s *Scanner) { s.pool = p } }
func WithRunner(r *pattern.Runner) Option { return func(s *Scanner) { s.runner = r } }
func WithPacing(d time.Duration) Option   { return func(s *Scanner) { s.pacing = d } }

// New creates a Scanner with an admission gate of DefaultConcurrency, the
// default pacing delay, a NumCPU worker pool and all pattern detectors.
func New(fetcher collector.Fetcher, opts ...Option) *Scanner {
	s := &Scanner{
		fetcher: fetcher,
		gate:    NewGate(DefaultConcurrency),
		pool:    NewPool(0),
		runner:  pattern.NewRunner(),
		pacing:  DefaultPacing,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze runs the chain for a single ticker without admission control.
func (s *Scanner) Analyze(ctx context.Context, ticker, interval, period string) (*model.SignalSummary, error) {
	bars, err := s.fetcher.FetchBars(ctx, ticker, interval, period)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ticker, err)
	}
	return s.evaluate(bars)
}

func (s *Scanner) evaluate(bars []model.OHLCV) (*model.SignalSummary, error) {
	series, err := indicator.Enrich(bars)
	if err != nil {
		return nil, err
	}
	return strategy.Evaluate(series, s.runner.DetectAll(series))
}

// analyzeOne is the fault boundary for one instrument in a batch. The gate
// covers the pacing delay and the fetch; evaluation runs in the pool after the
// slot is released.
func (s *Scanner) analyzeOne(ctx context.Context, ticker, interval, period string) (sum *model.SignalSummary, err error) {
	defer func() {
		if r := recover(); r != nil {
			sum, err = nil, fmt.Errorf("analysis of %s panicked: %v", ticker, r)
		}
	}()

	bars, err := s.admitAndFetch(ctx, ticker, interval, period)
	if err != nil {
		return nil, err
	}

	var evalErr error
	if err := s.pool.Do(ctx, func() { sum, evalErr = s.evaluate(bars) }); err != nil {
		return nil, err
	}
	return sum, evalErr
}

func (s *Scanner) admitAndFetch(ctx context.Context, ticker, interval, period string) ([]model.OHLCV, error) {
	if err := s.gate.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.gate.Release()

	if s.pacing > 0 {
		t := time.NewTimer(s.pacing)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
	bars, err := s.fetcher.FetchBars(ctx, ticker, interval, period)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ticker, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("fetch %s: %w", ticker, model.ErrNoData)
	}
	return bars, nil
}

// Scan analyzes every ticker and returns the successes ranked by score
// (descending, ties by ticker descending), truncated to limit when limit > 0.
// Each ticker lands in exactly one of Results or Skipped; Skipped keeps input
// order.
func (s *Scanner) Scan(ctx context.Context, tickers []string, interval, period string, limit int) *model.ScanResult {
	type outcome struct {
		sum *model.SignalSummary
		err error
	}
	outcomes := make([]outcome, len(tickers))

	var wg sync.WaitGroup
	for i, t := range tickers {
		wg.Add(1)
		go func(i int, ticker string) {
			defer wg.Done()
			sum, err := s.analyzeOne(ctx, ticker, interval, period)
			outcomes[i] = outcome{sum: sum, err: err}
		}(i, t)
	}
	wg.Wait()

	res := &model.ScanResult{
		ID:       uuid.NewString(),
		Interval: interval,
		Period:   period,
	}
	for i, o := range outcomes {
		if o.err != nil || o.sum == nil {
			logger.Warn("scan %s: skipped %s: %v", res.ID, tickers[i], o.err)
			res.Skipped = append(res.Skipped, tickers[i])
			continue
		}
		res.Results = append(res.Results, model.Ranked{Ticker: tickers[i], Summary: o.sum})
	}
	Rank(res.Results)
	if limit > 0 && len(res.Results) > limit {
		res.Results = res.Results[:limit]
	}
	logger.Info("scan %s %s/%s: %d ranked, %d skipped", res.ID, interval, period, len(res.Results), len(res.Skipped))
	return res
}

// Rank sorts by score descending, breaking ties by ticker descending.
func Rank(r []model.Ranked) {
	sort.SliceStable(r, func(i, j int) bool {
		if r[i].Summary.Score != r[j].Summary.Score {
			return r[i].Summary.Score > r[j].Summary.Score
		}
		return r[i].Ticker > r[j].Ticker
	})
}
