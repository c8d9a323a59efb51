package collector

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"BistSentinel/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Tickers listed in Errs fail, tickers in Bars get their fixed series, and any
// other ticker gets a generated series around Price (or ErrNoData when Price
// is zero).
type MockFetcher struct {
	Price float64
	Count int
	Bars  map[string][]model.OHLCV
	Errs  map[string]error

	calls atomic.Int64
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchBars(_ context.Context, ticker, _, _ string) ([]model.OHLCV, error) {
	m.calls.Add(1)
	if err, ok := m.Errs[ticker]; ok {
		return nil, err
	}
	if bars, ok := m.Bars[ticker]; ok {
		if len(bars) == 0 {
			return nil, fmt.Errorf("%s: %w", ticker, ErrNoData)
		}
		out := make([]model.OHLCV, len(bars))
		copy(out, bars)
		return out, nil
	}
	if m.Price <= 0 {
		return nil, fmt.Errorf("%s: %w", ticker, ErrNoData)
	}
	count := m.Count
	if count <= 0 {
		count = 120
	}
	return generateMockBars(m.Price, count), nil
}

// Calls reports how many fetches were served.
func (m *MockFetcher) Calls() int64 { return m.calls.Load() }

func generateMockBars(basePrice float64, count int) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	start := time.Now().Add(-time.Duration(count) * time.Hour).Truncate(time.Hour)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   start.Add(time.Duration(i) * time.Hour),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
