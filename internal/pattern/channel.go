package pattern

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"BistSentinel/internal/model"
)

// ChannelDetector finds breakouts from a narrowing pennant/flag channel.
type ChannelDetector struct {
	Window int
	Ratio  float64 // end width must be below Ratio * start width
}

// NewChannelDetector returns a detector over 50 bars with a 0.7 convergence ratio.
func NewChannelDetector() ChannelDetector {
	return ChannelDetector{Window: 50, Ratio: 0.7}
}

func (d ChannelDetector) Name() string { return "channel" }

func (d ChannelDetector) Detect(s model.Series) (*model.Pattern, error) {
	if len(s) < d.Window || d.Window < 5 {
		return nil, fmt.Errorf("channel needs %d bars, have %d: %w", d.Window, len(s), ErrInsufficientBars)
	}
	w := s.Tail(d.Window)
	ch, err := fitChannel(w)
	if err != nil {
		return nil, err
	}
	if ch.upper.Slope >= 0 || ch.lower.Slope <= 0 || !ch.converging(d.Ratio) {
		return nil, nil
	}

	n := len(w)
	price := w.Last().Close
	recent := w[n-5 : n-1]
	conf := confidence(0.6, 0.9, volumeSpike(w))

	var p *model.Pattern
	switch {
	case price > ch.upperLast:
		pole := price - w[0].Low
		p = &model.Pattern{
			Name:      "Bullish Pennant/Flag Breakout",
			Direction: model.Long,
			Stop:      math.Max(ch.lowerLast, floats.Min(recent.Lows())),
			Targets:   [2]float64{price + pole*0.6, price + pole*1.0},
		}
	case price < ch.lowerLast:
		pole := w[0].High - price
		p = &model.Pattern{
			Name:      "Bearish Pennant/Flag Breakdown",
			Direction: model.Short,
			Stop:      math.Min(ch.upperLast, floats.Max(recent.Highs())),
			Targets:   [2]float64{price - pole*0.6, price - pole*1.0},
		}
	default:
		return nil, nil
	}
	p.Confidence = conf
	p.BreakoutPrice = price
	p.Meta = ch.meta(len(s) - n)
	return consistent(p), nil
}
