package strategy

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// etaByATR is the scorer's coarse estimate, assuming roughly hourly bars.
func etaByATR(atr, price, target float64) string {
	if atr <= 0 {
		return "3-7 gün"
	}
	bars := math.Abs(target-price) / math.Max(atr, 1e-8)
	days := bars / 24
	switch {
	case days < 2:
		return "1-2 gün"
	case days < 6:
		return "2-5 gün"
	default:
		return "5-10 gün"
	}
}

const defaultBarMinutes = 60.0

// ParseIntervalMinutes converts an interval token such as "30m", "4h", "1d"
// or "1wk" into minutes per bar. Unrecognised tokens yield 60 and false.
func ParseIntervalMinutes(interval string) (float64, bool) {
	itv := strings.ToLower(strings.TrimSpace(interval))
	units := []struct {
		suffix string
		mult   float64
	}{
		{"wk", 7 * 24 * 60},
		{"m", 1},
		{"h", 60},
		{"d", 24 * 60},
	}
	for _, u := range units {
		if !strings.HasSuffix(itv, u.suffix) {
			continue
		}
		n, err := strconv.ParseFloat(strings.TrimSuffix(itv, u.suffix), 64)
		if err != nil || n <= 0 {
			return defaultBarMinutes, false
		}
		return n * u.mult, true
	}
	return defaultBarMinutes, false
}

// FormatETA renders a duration in minutes as minutes (< 90), hours with one
// decimal (< 1 day) or days with one decimal.
func FormatETA(minutes float64) string {
	switch {
	case minutes < 90:
		return fmt.Sprintf("%d dk", int(math.Round(minutes)))
	case minutes < 24*60:
		return fmt.Sprintf("%.1f saat", minutes/60)
	default:
		return fmt.Sprintf("%.1f gün", minutes/(24*60))
	}
}

// etaMinutes estimates the time to reach target: distance in ATR units gives
// a bar count (at least one), scaled by the bar length of interval.
func etaMinutes(price, target, atr float64, interval string) float64 {
	perBar, _ := ParseIntervalMinutes(interval)
	bars := math.Max(math.Abs(target-price)/math.Max(atr, 1e-6), 1)
	return bars * perBar
}
