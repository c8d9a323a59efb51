package strategy

import (
	"errors"
	"math"
	"testing"

	"BistSentinel/internal/model"
)

type barSpec struct {
	close, atr      float64
	rsi, macd, sig  float64
	adx, cmf        float64
	volume, volMA20 float64
}

func makeBar(b barSpec) model.Bar {
	return model.Bar{
		OHLCV: model.OHLCV{Open: b.close, High: b.close, Low: b.close, Close: b.close, Volume: b.volume},
		Indicators: model.Indicators{
			RSI: b.rsi, MACD: b.macd, MACDSignal: b.sig, ADX: b.adx,
			CMF: b.cmf, ATR: b.atr, VolMA20: b.volMA20,
		},
	}
}

// Three conditions: RSI, MACD and ADX.
var bullishBar = barSpec{close: 100, atr: 2, rsi: 60, macd: 2, sig: 1, adx: 30, cmf: -0.1, volume: 100, volMA20: 100}

// Two conditions: RSI and CMF.
var neutralBar = barSpec{close: 100, atr: 2, rsi: 55, macd: -1, sig: 0, adx: 10, cmf: 0.2, volume: 100, volMA20: 100}

var bearishBar = barSpec{close: 100, atr: 2, rsi: 40, macd: -1, sig: -0.5, adx: 70, cmf: -0.2, volume: 80, volMA20: 100}

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestIndicatorBias(t *testing.T) {
	allMet := bullishBar
	allMet.cmf = 0.1
	allMet.volume = 200

	tests := []struct {
		name      string
		bar       barSpec
		wantBias  model.Bias
		wantScore float64
	}{
		{"three conditions", bullishBar, model.BiasBullish, 80},
		{"all conditions capped", allMet, model.BiasBullish, 90},
		{"two conditions", neutralBar, model.BiasNeutral, 60},
		{"none", bearishBar, model.BiasBearish, 45},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bias, score := indicatorBias(makeBar(tt.bar))
			if bias != tt.wantBias || score != tt.wantScore {
				t.Errorf("indicatorBias = (%v, %.0f), want (%v, %.0f)", bias, score, tt.wantBias, tt.wantScore)
			}
		})
	}
}

func TestIndicatorBias_MACDNeedsPositiveSignal(t *testing.T) {
	b := neutralBar
	b.macd, b.sig = 1, -0.5 // MACD above signal but signal negative
	bias, _ := indicatorBias(makeBar(b))
	if bias != model.BiasNeutral {
		t.Errorf("expected neutral, got %v", bias)
	}
}

func TestEvaluate_EmptySeries(t *testing.T) {
	_, err := Evaluate(nil, nil)
	if !errors.Is(err, model.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestEvaluate_LongPattern(t *testing.T) {
	s := model.Series{makeBar(bullishBar)}
	patterns := []model.Pattern{
		{Name: "weak", Confidence: 0.55, Direction: model.Long, BreakoutPrice: 99, Stop: 90, Targets: [2]float64{105, 110}},
		{Name: "Double Bottom Breakout", Confidence: 0.7, Direction: model.Long, BreakoutPrice: 101, Stop: 95, Targets: [2]float64{110.456, 120}},
	}
	sum, err := Evaluate(s, patterns)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almost(sum.Score, 94) {
		t.Errorf("score = %.2f, want 94", sum.Score)
	}
	if sum.PatternText != "Double Bottom Breakout (güven 70%)" {
		t.Errorf("pattern text = %q", sum.PatternText)
	}
	if sum.BuyZone != "101.00 üstü" {
		t.Errorf("buy zone = %q", sum.BuyZone)
	}
	if !almost(sum.T1, 110.46) || !almost(sum.T2, 120) || !almost(sum.Stop, 95) {
		t.Errorf("levels = %.2f/%.2f stop %.2f", sum.T1, sum.T2, sum.Stop)
	}
	if sum.Pattern == nil || sum.Pattern.Name != "Double Bottom Breakout" {
		t.Errorf("expected strongest pattern attached, got %+v", sum.Pattern)
	}
	if sum.BiasText != model.LabelBullish {
		t.Errorf("bias text = %q", sum.BiasText)
	}
}

func TestEvaluate_ScoreCapped(t *testing.T) {
	b := bullishBar
	b.cmf, b.volume = 0.1, 200
	p := model.Pattern{Name: "x", Confidence: 0.9, Direction: model.Long, BreakoutPrice: 100, Stop: 95, Targets: [2]float64{110, 120}}
	sum, err := Evaluate(model.Series{makeBar(b)}, []model.Pattern{p})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Score != 100 {
		t.Errorf("score = %.2f, want 100", sum.Score)
	}
}

func TestEvaluate_FallbackIsLongShaped(t *testing.T) {
	// A strongest short pattern does not contribute; levels come from ATR and
	// point upward even though the bias is bearish.
	short := model.Pattern{Name: "down", Confidence: 0.8, Direction: model.Short, BreakoutPrice: 99, Stop: 104, Targets: [2]float64{95, 90}}
	sum, err := Evaluate(model.Series{makeBar(bearishBar)}, []model.Pattern{short})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Bias != model.BiasBearish || sum.Score != 45 {
		t.Errorf("bias/score = %v/%.0f", sum.Bias, sum.Score)
	}
	if sum.PatternText != noPatternText || sum.Pattern != nil {
		t.Errorf("expected indicator fallback, got %q", sum.PatternText)
	}
	if !almost(sum.T1, 103) || !almost(sum.T2, 106) || !almost(sum.Stop, 97.6) {
		t.Errorf("levels = %.2f/%.2f stop %.2f", sum.T1, sum.T2, sum.Stop)
	}
	if sum.BuyZone != "100.00 ± 2.00" {
		t.Errorf("buy zone = %q", sum.BuyZone)
	}
	if sum.ETA != "1-2 gün" {
		t.Errorf("eta = %q", sum.ETA)
	}
}

func TestEtaByATR(t *testing.T) {
	tests := []struct {
		atr, price, target float64
		want               string
	}{
		{0, 100, 110, "3-7 gün"},
		{1, 100, 110, "1-2 gün"},  // 10 bars
		{1, 100, 200, "2-5 gün"},  // 100 bars
		{1, 100, 300, "5-10 gün"}, // 200 bars
	}
	for _, tt := range tests {
		if got := etaByATR(tt.atr, tt.price, tt.target); got != tt.want {
			t.Errorf("etaByATR(%v, %v, %v) = %q, want %q", tt.atr, tt.price, tt.target, got, tt.want)
		}
	}
}
