package strategy

import (
	"fmt"
	"math"

	"BistSentinel/internal/model"
)

const (
	patternWeight = 20.0
	maxScore      = 100.0

	fallbackT1   = 1.5
	fallbackT2   = 3.0
	fallbackStop = 1.2
)

const noPatternText = "Belirgin formasyon yok (indikatör bazlı öneri)"

// Evaluate builds the signal summary for the latest bar of s. The strongest
// long pattern lifts the score and supplies the levels; otherwise levels are
// projected from ATR. The ATR fallback is long-shaped for every bias.
func Evaluate(s model.Series, patterns []model.Pattern) (*model.SignalSummary, error) {
	if len(s) == 0 {
		return nil, model.ErrNoData
	}
	last := s.Last()
	price, atr := last.Close, last.ATR
	bias, biasScore := indicatorBias(last)

	sum := &model.SignalSummary{
		Price:    price,
		ATR:      atr,
		Volume:   last.Volume,
		Bias:     bias,
		BiasText: bias.Label(),
	}

	if best := strongest(patterns); best != nil && best.Direction == model.Long {
		t1, t2 := best.Targets[0], best.Targets[1]
		sum.Score = math.Min(biasScore+best.Confidence*patternWeight, maxScore)
		sum.PatternText = fmt.Sprintf("%s (güven %.0f%%)", best.Name, best.Confidence*100)
		sum.BuyZone = fmt.Sprintf("%.2f üstü", best.BreakoutPrice)
		sum.Stop = round2(best.Stop)
		sum.T1 = round2(t1)
		sum.T2 = round2(t2)
		sum.ETA = etaByATR(atr, price, t1)
		sum.Pattern = best
		return sum, nil
	}

	t1 := price + atr*fallbackT1
	sum.Score = biasScore
	sum.PatternText = noPatternText
	sum.BuyZone = fmt.Sprintf("%.2f ± %.2f", price, atr)
	sum.Stop = round2(price - atr*fallbackStop)
	sum.T1 = round2(t1)
	sum.T2 = round2(price + atr*fallbackT2)
	sum.ETA = etaByATR(atr, price, t1)
	return sum, nil
}

// strongest returns a copy of the highest-confidence pattern; ties keep the first.
func strongest(patterns []model.Pattern) *model.Pattern {
	if len(patterns) == 0 {
		return nil
	}
	best := patterns[0]
	for _, p := range patterns[1:] {
		if p.Confidence > best.Confidence {
			best = p
		}
	}
	return &best
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
