// Package pattern detects chart formations over trailing windows of a series.
package pattern

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"BistSentinel/internal/model"
)

var (
	// ErrInsufficientBars is returned when the series is shorter than a detector's window.
	ErrInsufficientBars = errors.New("insufficient bars")
	// ErrDegenerateFit is returned when a trend line regression produces no finite line.
	ErrDegenerateFit = errors.New("degenerate trend line fit")
)

// FitLine fits y against bar index 0..len(ys)-1 by ordinary least squares.
func FitLine(ys []float64) (model.TrendLine, error) {
	if len(ys) < 2 {
		return model.TrendLine{}, fmt.Errorf("fit %d points: %w", len(ys), ErrInsufficientBars)
	}
	xs := make([]float64, len(ys))
	for i := range xs {
		xs[i] = float64(i)
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	if !finite(alpha) || !finite(beta) {
		return model.TrendLine{}, ErrDegenerateFit
	}
	return model.TrendLine{Slope: beta, Intercept: alpha}, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// channel is the pair of trend lines fitted through a window's highs and lows.
type channel struct {
	upper, lower model.TrendLine
	startWidth   float64 // at x = 0
	endWidth     float64 // at x = window length
	upperLast    float64 // lines evaluated at the last bar
	lowerLast    float64
}

func fitChannel(w model.Series) (channel, error) {
	upper, err := FitLine(w.Highs())
	if err != nil {
		return channel{}, fmt.Errorf("upper line: %w", err)
	}
	lower, err := FitLine(w.Lows())
	if err != nil {
		return channel{}, fmt.Errorf("lower line: %w", err)
	}
	n := float64(len(w))
	return channel{
		upper:      upper,
		lower:      lower,
		startWidth: upper.At(0) - lower.At(0),
		endWidth:   upper.At(n) - lower.At(n),
		upperLast:  upper.At(n - 1),
		lowerLast:  lower.At(n - 1),
	}, nil
}

func (c channel) converging(ratio float64) bool {
	return c.endWidth < c.startWidth*ratio
}

func (c channel) meta(offset int) model.PatternMeta {
	upper, lower := c.upper, c.lower
	return model.PatternMeta{Upper: &upper, Lower: &lower, WindowOffset: offset}
}

const (
	volumeAvgBars  = 20
	volumeSpikeMul = 1.2
	volumeBonus    = 0.1
)

// volumeSpike reports whether the last bar's volume exceeds 1.2x the mean of
// the trailing 20 volumes (last bar included).
func volumeSpike(w model.Series) bool {
	if len(w) < volumeAvgBars {
		return false
	}
	vols := w.Tail(volumeAvgBars).Volumes()
	return w.Last().Volume > stat.Mean(vols, nil)*volumeSpikeMul
}

func confidence(base, ceiling float64, spike bool) float64 {
	if spike {
		base += volumeBonus
	}
	return math.Min(base, ceiling)
}

// consistent drops patterns whose levels contradict their direction.
func consistent(p *model.Pattern) *model.Pattern {
	if p == nil || !p.Consistent() {
		return nil
	}
	return p
}
