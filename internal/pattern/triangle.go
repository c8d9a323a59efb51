package pattern

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"BistSentinel/internal/model"
)

// TriangleDetector finds breakouts from a triangle whose apex is tight
// relative to price. Unlike the channel it places no sign constraint on the
// slopes, so ascending and descending triangles qualify.
type TriangleDetector struct {
	Window  int
	Ratio   float64
	MaxApex float64 // end width / last close
}

// NewTriangleDetector returns a detector over 80 bars, ratio 0.65, apex under 8%.
func NewTriangleDetector() TriangleDetector {
	return TriangleDetector{Window: 80, Ratio: 0.65, MaxApex: 0.08}
}

func (d TriangleDetector) Name() string { return "triangle" }

func (d TriangleDetector) Detect(s model.Series) (*model.Pattern, error) {
	if len(s) < d.Window || d.Window < 6 {
		return nil, fmt.Errorf("triangle needs %d bars, have %d: %w", d.Window, len(s), ErrInsufficientBars)
	}
	w := s.Tail(d.Window)
	ch, err := fitChannel(w)
	if err != nil {
		return nil, err
	}
	n := len(w)
	price := w.Last().Close
	if !ch.converging(d.Ratio) || ch.endWidth/price >= d.MaxApex {
		return nil, nil
	}

	base := ch.endWidth
	recent := w[n-6 : n-1]
	conf := confidence(0.55, 0.85, volumeSpike(w))

	var p *model.Pattern
	switch {
	case price > ch.upperLast:
		p = &model.Pattern{
			Name:      "Ascending/Symmetric Triangle Breakout",
			Direction: model.Long,
			Stop:      math.Max(ch.lowerLast, floats.Min(recent.Lows())),
			Targets:   [2]float64{price + base*0.8, price + base*1.2},
		}
	case price < ch.lowerLast:
		p = &model.Pattern{
			Name:      "Descending/Symmetric Triangle Breakdown",
			Direction: model.Short,
			Stop:      math.Min(ch.upperLast, floats.Max(recent.Highs())),
			Targets:   [2]float64{price - base*0.8, price - base*1.2},
		}
	default:
		return nil, nil
	}
	p.Confidence = conf
	p.BreakoutPrice = price
	p.Meta = ch.meta(len(s) - n)
	return consistent(p), nil
}
