package strategy

import (
	"math"

	"BistSentinel/internal/model"
)

// biasCondition is one indicator check on the latest bar.
type biasCondition struct {
	Name   string
	Points float64
	Test   func(b model.Bar) bool
}

var biasConditions = []biasCondition{
	{"RSI > 50", 10, func(b model.Bar) bool { return b.RSI > 50 }},
	{"MACD > sinyal > 0", 10, func(b model.Bar) bool { return b.MACD > b.MACDSignal && b.MACDSignal > 0 }},
	{"ADX 20-60", 10, func(b model.Bar) bool { return b.ADX >= 20 && b.ADX <= 60 }},
	{"CMF > 0", 5, func(b model.Bar) bool { return b.CMF > 0 }},
	{"Hacim > 1.2x MA20", 5, func(b model.Bar) bool { return b.Volume > b.VolMA20*1.2 }},
}

const (
	biasBase        = 50.0
	bullishScoreCap = 90.0
	neutralScore    = 60.0
	bearishScore    = 45.0
)

// indicatorBias classifies the latest bar: three or more satisfied conditions
// is bullish (score capped at 90), exactly two is neutral (60), otherwise
// bearish (45).
func indicatorBias(last model.Bar) (model.Bias, float64) {
	score := biasBase
	satisfied := 0
	for _, c := range biasConditions {
		if c.Test(last) {
			satisfied++
			score += c.Points
		}
	}
	switch {
	case satisfied >= 3:
		return model.BiasBullish, math.Min(score, bullishScoreCap)
	case satisfied == 2:
		return model.BiasNeutral, neutralScore
	default:
		return model.BiasBearish, bearishScore
	}
}
