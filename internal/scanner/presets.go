package scanner

import (
	"context"
	"sort"

	"BistSentinel/internal/model"
)

// Preset is one interval/period pair of a multi-horizon scan.
type Preset struct {
	Interval string
	Period   string
}

// Horizon presets, keyed by the suffix of their chat command.
var Presets = map[string][]Preset{
	"kisa": {{"15m", "14d"}, {"30m", "30d"}},
	"orta": {{"60m", "60d"}, {"90m", "90d"}},
	"uzun": {{"1d", "180d"}, {"1d", "365d"}},
}

// Averaged is a ticker's mean score across presets. Summary and Interval come
// from the first preset in which the ticker was ranked.
type Averaged struct {
	Ticker   string
	Score    float64
	Summary  *model.SignalSummary
	Interval string
	Runs     int
}

// ScanPresets scans tickers once per preset, in order, and averages each
// ticker's score over the presets where it was ranked. The result is sorted
// by average descending (ties by ticker descending) and truncated to limit
// when limit > 0.
func (s *Scanner) ScanPresets(ctx context.Context, tickers []string, presets []Preset, limit int) []Averaged {
	type acc struct {
		sum      float64
		n        int
		summary  *model.SignalSummary
		interval string
	}
	combined := make(map[string]*acc)
	for _, p := range presets {
		res := s.Scan(ctx, tickers, p.Interval, p.Period, 0)
		for _, r := range res.Results {
			a, ok := combined[r.Ticker]
			if !ok {
				a = &acc{summary: r.Summary, interval: p.Interval}
				combined[r.Ticker] = a
			}
			a.sum += r.Summary.Score
			a.n++
		}
	}

	out := make([]Averaged, 0, len(combined))
	for t, a := range combined {
		out = append(out, Averaged{
			Ticker:   t,
			Score:    a.sum / float64(a.n),
			Summary:  a.summary,
			Interval: a.interval,
			Runs:     a.n,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Ticker > out[j].Ticker
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
