package collector

import (
	"context"

	"BistSentinel/internal/model"
)

// ErrNoData is returned when a source yields no usable bars.
var ErrNoData = model.ErrNoData

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	// FetchBars returns timestamp-ascending bars for ticker. interval is a
	// bar-size token such as "60m" or "1d"; period is a lookback such as "60d".
	FetchBars(ctx context.Context, ticker, interval, period string) ([]model.OHLCV, error)
	Name() string
}

// supportedIntervals maps request tokens to the intervals the chart API
// serves. Anything else falls back to hourly bars.
var supportedIntervals = map[string]string{
	"30m":  "30m",
	"60m":  "60m",
	"120m": "120m",
	"1d":   "1d",
}

func sourceInterval(interval string) string {
	if itv, ok := supportedIntervals[interval]; ok {
		return itv
	}
	return "60m"
}

func isIntraday(interval string) bool {
	switch interval {
	case "30m", "60m", "120m":
		return true
	}
	return false
}

// dropUnclosed trims the still-forming last bar of an intraday series so that
// repeated scans within the same bar score identically.
func dropUnclosed(bars []model.OHLCV, interval string) []model.OHLCV {
	if isIntraday(interval) && len(bars) > 1 {
		return bars[:len(bars)-1]
	}
	return bars
}
