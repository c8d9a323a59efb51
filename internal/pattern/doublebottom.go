package pattern

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"BistSentinel/internal/model"
)

// DoubleBottomDetector matches two similar pivot lows and fires when the last
// close clears the neckline between them.
type DoubleBottomDetector struct {
	Lookback  int
	Tolerance float64 // |low1 - low2| / last close
	MinGap    int     // bars between the two pivots
}

// NewDoubleBottomDetector returns a detector over 200 bars with 2% tolerance.
func NewDoubleBottomDetector() DoubleBottomDetector {
	return DoubleBottomDetector{Lookback: 200, Tolerance: 0.02, MinGap: 5}
}

func (d DoubleBottomDetector) Name() string { return "double_bottom" }

func (d DoubleBottomDetector) Detect(s model.Series) (*model.Pattern, error) {
	if len(s) < 5 {
		return nil, fmt.Errorf("double bottom needs 5 bars, have %d: %w", len(s), ErrInsufficientBars)
	}
	w := s.Tail(d.Lookback)
	lows, highs := w.Lows(), w.Highs()
	price := w.Last().Close

	piv := PivotLows(lows)
	if len(piv) < 2 {
		return nil, nil
	}
	i2, i1 := piv[len(piv)-1], -1
	for j := len(piv) - 2; j >= 0; j-- {
		c := piv[j]
		if math.Abs(lows[c]-lows[i2])/math.Max(1e-8, price) < d.Tolerance && i2-c >= d.MinGap {
			i1 = c
			break
		}
	}
	if i1 < 0 {
		return nil, nil
	}

	neckline := floats.Max(highs[i1 : i2+1])
	if price <= neckline {
		return nil, nil
	}
	bottom := math.Min(lows[i1], lows[i2])
	depth := math.Abs(neckline - bottom)

	return consistent(&model.Pattern{
		Name:          "Double Bottom Breakout",
		Confidence:    0.6,
		Direction:     model.Long,
		BreakoutPrice: price,
		Stop:          bottom,
		Targets:       [2]float64{neckline + depth*0.8, neckline + depth*1.2},
		Meta: model.PatternMeta{
			Pivots:       []int{i1, i2},
			Neckline:     neckline,
			WindowOffset: len(s) - len(w),
		},
	}), nil
}

// PivotLows returns indices whose low is strictly below the two neighbours on
// each side.
func PivotLows(lows []float64) []int {
	var out []int
	for i := 2; i < len(lows)-2; i++ {
		l := lows[i]
		if l < lows[i-1] && l < lows[i+1] && l < lows[i-2] && l < lows[i+2] {
			out = append(out, i)
		}
	}
	return out
}
